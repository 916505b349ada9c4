package models

// NotificationSink receives inbound notifications, already routed by the
// characteristic they arrived on. The transport calls it only from inside Pump.
type NotificationSink interface {
	OnStatus([]byte)
	OnData([]byte)
	OnUnknown(uint16, []byte)
}

// StatusListener is told about edges of the device message-waiting flag
type StatusListener interface {
	OnMwiChanged(bool)
}

// StatusListenerFunc adapts a plain function to StatusListener
type StatusListenerFunc func(bool)

// OnMwiChanged calls f
func (f StatusListenerFunc) OnMwiChanged(waiting bool) { f(waiting) }
