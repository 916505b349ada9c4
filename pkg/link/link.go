package link

import (
	"io"
	"time"

	"github.com/Krajiyah/gtlink/pkg/frame"
	"github.com/Krajiyah/gtlink/pkg/models"
	"github.com/Krajiyah/gtlink/pkg/session"
	"github.com/Krajiyah/gtlink/pkg/status"
	"github.com/Krajiyah/gtlink/pkg/util"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Transport is the device side of a link: a connected GATT peripheral
// exposing status, tx and rx characteristics
type Transport interface {
	Write(role models.Role, data []byte, requireAck bool) error
	Subscribe(role models.Role, sink models.NotificationSink) error
	Pump(time.Duration) (bool, error)
}

// Debug selects the per-link debug dumps
type Debug struct {
	GATT     bool
	PDUs     bool
	Commands bool
}

// Link binds framing, command correlation and status decoding to a transport
type Link struct {
	id        string
	transport Transport
	reasm     *frame.Reassembler
	session   *session.Session
	monitor   *status.Monitor
	listener  models.StatusListener
	logger    *zap.Logger
	debug     Debug
	settle    time.Duration
	sessOpts  []session.Option
}

// Option configures a Link
type Option func(*Link)

// WithLogger sets the base logger; the link adds its id to it
func WithLogger(logger *zap.Logger) Option { return func(l *Link) { l.logger = logger } }

// WithDebug enables debug dumps
func WithDebug(d Debug) Option { return func(l *Link) { l.debug = d } }

// WithStatusListener registers the receiver of message-waiting edges
func WithStatusListener(listener models.StatusListener) Option {
	return func(l *Link) { l.listener = listener }
}

// WithSettleInterval sets how long Initialize drains notifications after each subscription
func WithSettleInterval(d time.Duration) Option { return func(l *Link) { l.settle = d } }

// WithSessionOptions passes options through to the command session
func WithSessionOptions(opts ...session.Option) Option {
	return func(l *Link) { l.sessOpts = append(l.sessOpts, opts...) }
}

// New assembles a link over transport. Call Initialize before Execute.
func New(transport Transport, opts ...Option) *Link {
	l := &Link{
		id:        getLinkID(),
		transport: transport,
		logger:    zap.NewNop(),
		settle:    util.SettleInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(zap.String("link", l.id))
	sessOpts := []session.Option{
		session.WithLogger(l.logger.Named("session")),
		session.WithCommandDump(l.debug.Commands),
		session.WithPDUDump(l.debug.PDUs),
	}
	l.session = session.New(dataPath{l}, append(sessOpts, l.sessOpts...)...)
	l.reasm = frame.NewReassembler(l.session.Deliver,
		frame.WithLogger(l.logger.Named("reassembler")),
		frame.WithPDUDump(l.debug.PDUs),
	)
	l.monitor = status.NewMonitor(l.listener, l.logger.Named("status"))
	return l
}

func getLinkID() string {
	return uuid.New().String()[0:8]
}

// ID returns the short identifier tagging this link's log lines
func (l *Link) ID() string { return l.id }

// Initialize enables rx indications and status notifications, draining
// whatever the device pushes after each.
func (l *Link) Initialize() error {
	for _, role := range []models.Role{models.Rx, models.Status} {
		if l.debug.GATT {
			l.logger.Debug("subscribing", zap.Stringer("role", role))
		}
		if err := l.transport.Subscribe(role, l); err != nil {
			return errors.Wrapf(err, "%s activation failed", role)
		}
		if _, err := l.transport.Pump(l.settle); err != nil {
			return errors.Wrap(err, "clearing notifications")
		}
	}
	return nil
}

// Execute runs one command and waits for its result. See session.Session.Execute.
func (l *Link) Execute(opcode byte, payload []byte) (session.Result, error) {
	return l.session.Execute(opcode, payload)
}

// ExecuteWithTimeout runs one command with an explicit deadline
func (l *Link) ExecuteWithTimeout(opcode byte, payload []byte, timeout time.Duration) (session.Result, error) {
	return l.session.ExecuteWithTimeout(opcode, payload, timeout)
}

// Pump delivers pending notifications for at most d, for use between commands
func (l *Link) Pump(d time.Duration) (bool, error) { return l.transport.Pump(d) }

// MessageWaiting reports the last decoded message-waiting flag
func (l *Link) MessageWaiting() bool { return l.monitor.Status().MessageWaiting }

// Stats returns the reassembler counters
func (l *Link) Stats() frame.Stats { return l.reasm.Stats() }

// OnStatus implements models.NotificationSink
func (l *Link) OnStatus(data []byte) {
	if l.debug.GATT {
		l.logger.Debug("rcvd status", zap.Binary("data", data))
	}
	l.monitor.Decode(data)
}

// OnData implements models.NotificationSink
func (l *Link) OnData(data []byte) {
	if l.debug.GATT {
		l.logger.Debug("rcvd data", zap.Binary("data", data))
	}
	l.reasm.Receive(data)
}

// OnUnknown implements models.NotificationSink
func (l *Link) OnUnknown(handle uint16, data []byte) {
	l.logger.Warn("rcvd via unknown handle", zap.Uint16("handle", handle), zap.Binary("data", data))
}

// Close releases the transport if it holds resources
func (l *Link) Close() error {
	if c, ok := l.transport.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type dataPath struct{ l *Link }

func (p dataPath) WriteData(chunk []byte) error {
	if p.l.debug.GATT {
		p.l.logger.Debug("xmit data", zap.Binary("data", chunk))
	}
	return p.l.transport.Write(models.Tx, chunk, false)
}

func (p dataPath) Pump(d time.Duration) (bool, error) { return p.l.transport.Pump(d) }
