package status

import (
	"testing"

	"github.com/Krajiyah/gtlink/pkg/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gotest.tools/assert"
)

type recorder struct {
	edges []bool
}

func (r *recorder) OnMwiChanged(waiting bool) { r.edges = append(r.edges, waiting) }

func TestEdgeOnSecondNotificationOnly(t *testing.T) {
	r := &recorder{}
	m := NewMonitor(r, nil)
	m.Decode([]byte{0x00})
	assert.Equal(t, len(r.edges), 0)
	m.Decode([]byte{0x01})
	assert.DeepEqual(t, r.edges, []bool{true})
	assert.Assert(t, m.Status().MessageWaiting)
}

func TestRepeatsAreSilent(t *testing.T) {
	r := &recorder{}
	m := NewMonitor(r, nil)
	for _, b := range []byte{0x01, 0x01, 0x00, 0x00, 0x01, 0x01} {
		m.Decode([]byte{b})
	}
	assert.DeepEqual(t, r.edges, []bool{true, false, true})
}

func TestEmptyNotificationIgnored(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := &recorder{}
	m := NewMonitor(r, zap.New(core))
	m.Decode([]byte{0x01})
	m.Decode(nil)
	assert.Equal(t, logs.Len(), 1)
	assert.DeepEqual(t, r.edges, []bool{true})
	assert.Assert(t, m.Status().MessageWaiting)
}

func TestNilListener(t *testing.T) {
	m := NewMonitor(nil, nil)
	m.Decode([]byte{0x01})
	assert.Assert(t, m.Status().MessageWaiting)
}

func TestListenerFunc(t *testing.T) {
	count := 0
	m := NewMonitor(models.StatusListenerFunc(func(bool) { count++ }), nil)
	m.Decode([]byte{0x01})
	m.Decode([]byte{0x00})
	assert.Equal(t, count, 2)
}
