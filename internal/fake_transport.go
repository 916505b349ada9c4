package internal

import (
	"time"

	"github.com/Krajiyah/gtlink/pkg/models"
)

// Notification is a raw notification queued on a FakeTransport. Unknown
// sources use a Role outside the defined ones together with Handle.
type Notification struct {
	Role   models.Role
	Handle uint16
	Data   []byte
}

// Write records one call to FakeTransport.Write
type Write struct {
	Role       models.Role
	Data       []byte
	RequireAck bool
}

// FakeTransport is an in-memory link transport delivering one queued
// notification per pump
type FakeTransport struct {
	Clock        *FakeClock
	Writes       []Write
	Subscribed   []models.Role
	Queue        []Notification
	OnWrite      func(Write)
	WriteErr     error
	SubscribeErr map[models.Role]error
	PumpErr      error
	Pumps        int
	Closed       bool
	sink         models.NotificationSink
}

// NewFakeTransport returns a transport with its own fake clock
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{Clock: NewFakeClock(), SubscribeErr: map[models.Role]error{}}
}

func (t *FakeTransport) Write(role models.Role, data []byte, requireAck bool) error {
	if t.WriteErr != nil {
		return t.WriteErr
	}
	w := Write{role, append([]byte{}, data...), requireAck}
	t.Writes = append(t.Writes, w)
	if t.OnWrite != nil {
		t.OnWrite(w)
	}
	return nil
}

func (t *FakeTransport) Subscribe(role models.Role, sink models.NotificationSink) error {
	if err := t.SubscribeErr[role]; err != nil {
		return err
	}
	t.sink = sink
	t.Subscribed = append(t.Subscribed, role)
	return nil
}

func (t *FakeTransport) Pump(d time.Duration) (bool, error) {
	t.Pumps++
	if t.PumpErr != nil {
		return false, t.PumpErr
	}
	if len(t.Queue) == 0 || t.sink == nil {
		t.Clock.Advance(d)
		return false, nil
	}
	n := t.Queue[0]
	t.Queue = t.Queue[1:]
	switch n.Role {
	case models.Status:
		t.sink.OnStatus(n.Data)
	case models.Rx:
		t.sink.OnData(n.Data)
	default:
		t.sink.OnUnknown(n.Handle, n.Data)
	}
	return true, nil
}

// Push queues notifications for later pumps
func (t *FakeTransport) Push(n ...Notification) { t.Queue = append(t.Queue, n...) }

func (t *FakeTransport) Close() error {
	t.Closed = true
	return nil
}
