package status

import (
	"github.com/Krajiyah/gtlink/pkg/models"
	"go.uber.org/zap"
)

const mwiMask = 0x01

// DeviceStatus is the last known state reported on the status characteristic
type DeviceStatus struct {
	MessageWaiting bool
}

// Monitor decodes status notifications and reports message-waiting edges
type Monitor struct {
	status   DeviceStatus
	listener models.StatusListener
	logger   *zap.Logger
}

// NewMonitor returns a monitor that starts with no message waiting. listener may be nil.
func NewMonitor(listener models.StatusListener, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{listener: listener, logger: logger}
}

// Decode applies one status notification. The listener fires only when the
// message-waiting bit differs from the stored one.
func (m *Monitor) Decode(raw []byte) {
	if len(raw) == 0 {
		m.logger.Warn("empty status notification")
		return
	}
	waiting := raw[0]&mwiMask != 0
	if waiting == m.status.MessageWaiting {
		return
	}
	m.status.MessageWaiting = waiting
	m.logger.Debug("message waiting changed", zap.Bool("waiting", waiting))
	if m.listener != nil {
		m.listener.OnMwiChanged(waiting)
	}
}

// Status returns the stored device status
func (m *Monitor) Status() DeviceStatus { return m.status }
