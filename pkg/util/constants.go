package util

import "time"

const (
	// Control is the reserved framing byte; literal occurrences are doubled on the wire
	Control = 0x10
	// STX follows Control to mark the start of a frame
	STX = 0x02
	// ETX follows Control to mark the end of a frame
	ETX = 0x03
	// MaxChunkSize is the largest write accepted by the device tx characteristic
	MaxChunkSize = 20
	// MaxOpcode is the highest opcode the link will put on the wire
	MaxOpcode = 0xFF
	// ResultOK is the normalized result code of a successful command
	ResultOK = 0x40
	// DefaultTimeout bounds how long a command waits for its response
	DefaultTimeout = 5 * time.Second
	// DefaultPollInterval is the longest single notification pump inside a command
	DefaultPollInterval = 100 * time.Millisecond
	// SettleInterval is how long notifications are drained after enabling a subscription
	SettleInterval = 500 * time.Millisecond
	// NotificationQueueSize is the number of raw notifications buffered between pumps
	NotificationQueueSize = 256
)
