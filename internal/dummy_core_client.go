package internal

import (
	"github.com/currantlabs/ble"
)

// CharWrite records one WriteCharacteristic call
type CharWrite struct {
	Handle uint16
	Value  []byte
	NoRsp  bool
}

// DummyCoreClient is a ble.Client backed by a fixed profile. Notifications
// are injected with Notify.
type DummyCoreClient struct {
	testAddr     string
	profile      *ble.Profile
	Writes       []CharWrite
	Indications  map[uint16]bool
	handlers     map[uint16]ble.NotificationHandler
	Unsubscribed []uint16
	Cancelled    bool
	WriteErr     error
	disconnected chan struct{}
}

// NewDummyCoreClient returns a client exposing profile
func NewDummyCoreClient(addr string, profile *ble.Profile) *DummyCoreClient {
	return &DummyCoreClient{
		testAddr:     addr,
		profile:      profile,
		Indications:  map[uint16]bool{},
		handlers:     map[uint16]ble.NotificationHandler{},
		disconnected: make(chan struct{}),
	}
}

// Notify invokes the handler subscribed on the given value handle, as the
// HCI stack would from its own goroutine
func (c *DummyCoreClient) Notify(handle uint16, data []byte) bool {
	h, ok := c.handlers[handle]
	if ok {
		h(data)
	}
	return ok
}

// Disconnect closes the Disconnected channel
func (c *DummyCoreClient) Disconnect() { close(c.disconnected) }

func (c *DummyCoreClient) ReadCharacteristic(char *ble.Characteristic) ([]byte, error) {
	return nil, nil
}
func (c *DummyCoreClient) WriteCharacteristic(char *ble.Characteristic, value []byte, noRsp bool) error {
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.Writes = append(c.Writes, CharWrite{char.ValueHandle, append([]byte{}, value...), noRsp})
	return nil
}
func (c *DummyCoreClient) Address() ble.Addr                                { return ble.NewAddr(c.testAddr) }
func (c *DummyCoreClient) Name() string                                     { return "some name" }
func (c *DummyCoreClient) Profile() *ble.Profile                            { return c.profile }
func (c *DummyCoreClient) DiscoverProfile(force bool) (*ble.Profile, error) { return c.profile, nil }
func (c *DummyCoreClient) DiscoverServices(filter []ble.UUID) ([]*ble.Service, error) {
	return nil, nil
}
func (c *DummyCoreClient) DiscoverIncludedServices(filter []ble.UUID, s *ble.Service) ([]*ble.Service, error) {
	return nil, nil
}
func (c *DummyCoreClient) DiscoverCharacteristics(filter []ble.UUID, s *ble.Service) ([]*ble.Characteristic, error) {
	return nil, nil
}
func (c *DummyCoreClient) DiscoverDescriptors(filter []ble.UUID, char *ble.Characteristic) ([]*ble.Descriptor, error) {
	return nil, nil
}
func (c *DummyCoreClient) ReadLongCharacteristic(char *ble.Characteristic) ([]byte, error) {
	return nil, nil
}
func (c *DummyCoreClient) ReadDescriptor(d *ble.Descriptor) ([]byte, error)  { return nil, nil }
func (c *DummyCoreClient) WriteDescriptor(d *ble.Descriptor, v []byte) error { return nil }
func (c *DummyCoreClient) ReadRSSI() int                                     { return 0 }
func (c *DummyCoreClient) ExchangeMTU(rxMTU int) (txMTU int, err error)      { return rxMTU, nil }
func (c *DummyCoreClient) Subscribe(char *ble.Characteristic, ind bool, h ble.NotificationHandler) error {
	c.handlers[char.ValueHandle] = h
	c.Indications[char.ValueHandle] = ind
	return nil
}
func (c *DummyCoreClient) Unsubscribe(char *ble.Characteristic, ind bool) error {
	delete(c.handlers, char.ValueHandle)
	c.Unsubscribed = append(c.Unsubscribed, char.ValueHandle)
	return nil
}
func (c *DummyCoreClient) ClearSubscriptions() error {
	c.handlers = map[uint16]ble.NotificationHandler{}
	return nil
}
func (c *DummyCoreClient) CancelConnection() error {
	c.Cancelled = true
	return nil
}
func (c *DummyCoreClient) Disconnected() <-chan struct{} { return c.disconnected }
