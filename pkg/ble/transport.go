package ble

import (
	"time"

	"github.com/Krajiyah/gtlink/pkg/models"
	"github.com/Krajiyah/gtlink/pkg/util"
	"github.com/currantlabs/ble"
	mapset "github.com/deckarep/golang-set"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultDialTimeout = 10 * time.Second

var (
	// ErrNotConnected is returned by operations attempted before Connect
	ErrNotConnected = errors.New("not connected")
	// ErrDisconnected is returned by Pump once the peripheral has gone away
	ErrDisconnected = errors.New("device disconnected")
)

// Profile names the characteristics of the device by UUID
type Profile struct {
	Status string
	Tx     string
	Rx     string
}

func (p Profile) uuid(role models.Role) string {
	switch role {
	case models.Status:
		return p.Status
	case models.Tx:
		return p.Tx
	default:
		return p.Rx
	}
}

var roles = []models.Role{models.Status, models.Tx, models.Rx}

type notification struct {
	handle uint16
	data   []byte
}

// GATTTransport talks to one peripheral through the host HCI device.
// Notifications arrive on stack goroutines and are queued; they reach the
// sink only from inside Pump, on the caller's goroutine.
type GATTTransport struct {
	addr       string
	profile    Profile
	timeout    time.Duration
	methods    coreMethods
	cln        ble.Client
	chars      map[models.Role]*ble.Characteristic
	subscribed mapset.Set
	sink       models.NotificationSink
	queue      chan notification
	logger     *zap.Logger
	debug      bool
}

// Option configures a GATTTransport
type Option func(*GATTTransport)

// WithLogger sets the transport logger
func WithLogger(logger *zap.Logger) Option { return func(t *GATTTransport) { t.logger = logger } }

// WithDialTimeout bounds each connection attempt
func WithDialTimeout(d time.Duration) Option { return func(t *GATTTransport) { t.timeout = d } }

// WithGATTDump logs every write and notification at debug level
func WithGATTDump(enabled bool) Option { return func(t *GATTTransport) { t.debug = enabled } }

// NewGATTTransport returns an unconnected transport for the device at addr
func NewGATTTransport(addr string, profile Profile, opts ...Option) *GATTTransport {
	t := &GATTTransport{
		addr:       addr,
		profile:    profile,
		timeout:    defaultDialTimeout,
		methods:    &realCoreMethods{},
		chars:      map[models.Role]*ble.Characteristic{},
		subscribed: mapset.NewSet(),
		queue:      make(chan notification, util.NotificationQueueSize),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Connect dials the device and locates the status, tx and rx characteristics
func (t *GATTTransport) Connect() error {
	if err := t.methods.SetDefaultDevice(); err != nil {
		return errors.Wrap(err, "SetDefaultDevice issue")
	}
	addr := ble.NewAddr(t.addr)
	var cln ble.Client
	err := retry(t.logger, "Dial", func() error {
		c, e := t.methods.Dial(t.timeout, addr)
		cln = c
		return e
	})
	if err != nil {
		return err
	}
	t.cln = cln
	if err := t.discover(); err != nil {
		t.cln.CancelConnection()
		t.cln = nil
		return err
	}
	t.logger.Info("connected", zap.String("addr", t.addr))
	return nil
}

func (t *GATTTransport) discover() error {
	p, err := t.cln.DiscoverProfile(true)
	if err != nil {
		return errors.Wrap(err, "DiscoverProfile issue")
	}
	for _, s := range p.Services {
		for _, c := range s.Characteristics {
			if t.debug {
				t.logger.Debug("characteristic",
					zap.Uint16("handle", c.Handle), zap.Uint16("valueHandle", c.ValueHandle),
					zap.Uint8("properties", uint8(c.Property)), zap.Stringer("uuid", c.UUID))
			}
			for _, role := range roles {
				if util.UuidEqualStr(c.UUID, t.profile.uuid(role)) {
					t.chars[role] = c
				}
			}
		}
	}
	for _, role := range roles {
		if _, ok := t.chars[role]; !ok {
			return errors.Errorf("could not locate %s characteristic %s", role, t.profile.uuid(role))
		}
	}
	return nil
}

func (t *GATTTransport) getCharacteristic(role models.Role) (*ble.Characteristic, error) {
	if t.cln == nil {
		return nil, ErrNotConnected
	}
	if c, ok := t.chars[role]; ok {
		return c, nil
	}
	return nil, errors.Errorf("no %s characteristic", role)
}

// Write writes data to the characteristic for role. Without requireAck the
// write is a write command and gets no response from the peripheral.
func (t *GATTTransport) Write(role models.Role, data []byte, requireAck bool) error {
	char, err := t.getCharacteristic(role)
	if err != nil {
		return err
	}
	if t.debug {
		t.logger.Debug("write", zap.Uint16("handle", char.ValueHandle), zap.Binary("data", data))
	}
	return util.CatchErrs(func() error {
		return t.cln.WriteCharacteristic(char, data, !requireAck)
	})
}

// Subscribe enables notifications for role and routes them to sink. Rx is
// subscribed with indications, the others with notifications.
func (t *GATTTransport) Subscribe(role models.Role, sink models.NotificationSink) error {
	char, err := t.getCharacteristic(role)
	if err != nil {
		return err
	}
	t.sink = sink
	if t.subscribed.Contains(role) {
		return nil
	}
	handle := char.ValueHandle
	err = util.CatchErrs(func() error {
		return t.cln.Subscribe(char, role == models.Rx, func(data []byte) {
			t.enqueue(handle, data)
		})
	})
	if err != nil {
		return errors.Wrapf(err, "Subscribe %s issue", role)
	}
	t.subscribed.Add(role)
	return nil
}

func (t *GATTTransport) enqueue(handle uint16, data []byte) {
	n := notification{handle, append([]byte{}, data...)}
	select {
	case t.queue <- n:
	default:
		t.logger.Warn("notification queue full, dropping", zap.Uint16("handle", handle))
	}
}

// Pump blocks for at most d waiting for a notification and dispatches the
// first one that arrives.
func (t *GATTTransport) Pump(d time.Duration) (bool, error) {
	if t.cln == nil {
		return false, ErrNotConnected
	}
	select {
	case n := <-t.queue:
		t.dispatch(n)
		return true, nil
	default:
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case n := <-t.queue:
		t.dispatch(n)
		return true, nil
	case <-t.cln.Disconnected():
		return false, ErrDisconnected
	case <-timer.C:
		return false, nil
	}
}

func (t *GATTTransport) dispatch(n notification) {
	if t.debug {
		t.logger.Debug("notification", zap.Uint16("handle", n.handle), zap.Binary("data", n.data))
	}
	if t.sink == nil {
		return
	}
	switch n.handle {
	case t.chars[models.Status].ValueHandle:
		t.sink.OnStatus(n.data)
	case t.chars[models.Rx].ValueHandle:
		t.sink.OnData(n.data)
	default:
		t.sink.OnUnknown(n.handle, n.data)
	}
}

// Close unsubscribes and drops the connection
func (t *GATTTransport) Close() error {
	if t.cln == nil {
		return nil
	}
	for _, r := range t.subscribed.ToSlice() {
		role := r.(models.Role)
		if err := t.cln.Unsubscribe(t.chars[role], role == models.Rx); err != nil {
			t.logger.Warn("unsubscribe failed", zap.Stringer("role", role), zap.Error(err))
		}
	}
	t.subscribed.Clear()
	err := t.cln.CancelConnection()
	t.cln = nil
	return err
}
