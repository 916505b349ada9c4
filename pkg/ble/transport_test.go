package ble

import (
	"testing"
	"time"

	. "github.com/Krajiyah/gtlink/internal"
	"github.com/Krajiyah/gtlink/pkg/models"
	"github.com/currantlabs/ble"
	"github.com/pkg/errors"
	"gotest.tools/assert"
)

const testAddr = "11:22:33:44:55:66"

var testProfile = Profile{Status: TestStatusUUID, Tx: TestTxUUID, Rx: TestRxUUID}

type testCoreMethods struct {
	client   *DummyCoreClient
	failures int
	dials    int
}

func (bc *testCoreMethods) SetDefaultDevice() error { return nil }
func (bc *testCoreMethods) Dial(_ time.Duration, a ble.Addr) (ble.Client, error) {
	bc.dials++
	if bc.dials <= bc.failures {
		return nil, errors.New("page timeout")
	}
	return bc.client, nil
}

type sinkRecorder struct {
	status  [][]byte
	data    [][]byte
	unknown []uint16
}

func (s *sinkRecorder) OnStatus(b []byte)            { s.status = append(s.status, b) }
func (s *sinkRecorder) OnData(b []byte)              { s.data = append(s.data, b) }
func (s *sinkRecorder) OnUnknown(h uint16, _ []byte) { s.unknown = append(s.unknown, h) }

func newTestTransport(t *testing.T, profile *ble.Profile, failures int) (*GATTTransport, *testCoreMethods) {
	methods := &testCoreMethods{client: NewDummyCoreClient(testAddr, profile), failures: failures}
	tr := NewGATTTransport(testAddr, testProfile)
	tr.methods = methods
	return tr, methods
}

func TestConnect(t *testing.T) {
	tr, _ := newTestTransport(t, GetTestProfile("00010000-0001-1000-8000-00805F9B34FB"), 0)
	assert.NilError(t, tr.Connect())
	assert.Equal(t, tr.chars[models.Status].ValueHandle, uint16(TestStatusHandle))
	assert.Equal(t, tr.chars[models.Tx].ValueHandle, uint16(TestTxHandle))
	assert.Equal(t, tr.chars[models.Rx].ValueHandle, uint16(TestRxHandle))
}

func TestConnectRetriesDial(t *testing.T) {
	tr, methods := newTestTransport(t, GetTestProfile(), 2)
	assert.NilError(t, tr.Connect())
	assert.Equal(t, methods.dials, 3)
}

func TestConnectGivesUp(t *testing.T) {
	tr, methods := newTestTransport(t, GetTestProfile(), maxRetryAttempts)
	err := tr.Connect()
	assert.ErrorContains(t, err, "Dial exceeded attempts")
	assert.Equal(t, methods.dials, maxRetryAttempts)
}

func TestConnectMissingCharacteristic(t *testing.T) {
	profile := GetTestProfile()
	svc := profile.Services[0]
	svc.Characteristics = svc.Characteristics[:2]
	tr, methods := newTestTransport(t, profile, 0)
	err := tr.Connect()
	assert.ErrorContains(t, err, "could not locate Rx characteristic")
	assert.Assert(t, methods.client.Cancelled)
	_, err = tr.Pump(time.Millisecond)
	assert.Equal(t, errors.Cause(err), ErrNotConnected)
}

func TestWrite(t *testing.T) {
	tr, methods := newTestTransport(t, GetTestProfile(), 0)
	assert.NilError(t, tr.Connect())
	assert.NilError(t, tr.Write(models.Tx, []byte{0x10, 0x02}, false))
	assert.NilError(t, tr.Write(models.Tx, []byte{0x10, 0x03}, true))
	assert.DeepEqual(t, methods.client.Writes, []CharWrite{
		{Handle: TestTxHandle, Value: []byte{0x10, 0x02}, NoRsp: true},
		{Handle: TestTxHandle, Value: []byte{0x10, 0x03}, NoRsp: false},
	})
	methods.client.WriteErr = errors.New("insufficient authentication")
	assert.ErrorContains(t, tr.Write(models.Tx, []byte{0x01}, false), "insufficient authentication")
}

func TestWriteBeforeConnect(t *testing.T) {
	tr, _ := newTestTransport(t, GetTestProfile(), 0)
	err := tr.Write(models.Tx, []byte{0x01}, false)
	assert.Equal(t, errors.Cause(err), ErrNotConnected)
}

func TestSubscribeAndPump(t *testing.T) {
	tr, methods := newTestTransport(t, GetTestProfile(), 0)
	assert.NilError(t, tr.Connect())
	sink := &sinkRecorder{}
	assert.NilError(t, tr.Subscribe(models.Rx, sink))
	assert.NilError(t, tr.Subscribe(models.Status, sink))
	assert.NilError(t, tr.Subscribe(models.Status, sink))
	assert.Assert(t, methods.client.Indications[TestRxHandle])
	assert.Assert(t, !methods.client.Indications[TestStatusHandle])

	buf := []byte{0x01}
	assert.Assert(t, methods.client.Notify(TestStatusHandle, buf))
	buf[0] = 0xFF
	assert.Assert(t, methods.client.Notify(TestRxHandle, []byte{0x10, 0x02}))

	delivered, err := tr.Pump(time.Second)
	assert.NilError(t, err)
	assert.Assert(t, delivered)
	delivered, err = tr.Pump(time.Second)
	assert.NilError(t, err)
	assert.Assert(t, delivered)
	assert.DeepEqual(t, sink.status, [][]byte{{0x01}})
	assert.DeepEqual(t, sink.data, [][]byte{{0x10, 0x02}})

	delivered, err = tr.Pump(5 * time.Millisecond)
	assert.NilError(t, err)
	assert.Assert(t, !delivered)
}

func TestPumpUnknownHandle(t *testing.T) {
	tr, _ := newTestTransport(t, GetTestProfile(), 0)
	assert.NilError(t, tr.Connect())
	sink := &sinkRecorder{}
	assert.NilError(t, tr.Subscribe(models.Rx, sink))
	tr.enqueue(0x0099, []byte{0x01})
	delivered, err := tr.Pump(time.Millisecond)
	assert.NilError(t, err)
	assert.Assert(t, delivered)
	assert.DeepEqual(t, sink.unknown, []uint16{0x0099})
}

func TestPumpDisconnected(t *testing.T) {
	tr, methods := newTestTransport(t, GetTestProfile(), 0)
	assert.NilError(t, tr.Connect())
	methods.client.Disconnect()
	_, err := tr.Pump(time.Second)
	assert.Equal(t, errors.Cause(err), ErrDisconnected)
}

func TestClose(t *testing.T) {
	tr, methods := newTestTransport(t, GetTestProfile(), 0)
	assert.NilError(t, tr.Connect())
	sink := &sinkRecorder{}
	assert.NilError(t, tr.Subscribe(models.Rx, sink))
	assert.NilError(t, tr.Close())
	assert.DeepEqual(t, methods.client.Unsubscribed, []uint16{TestRxHandle})
	assert.Assert(t, methods.client.Cancelled)
	assert.NilError(t, tr.Close())
}
