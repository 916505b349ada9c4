package frame

import "github.com/pkg/errors"

var (
	// ErrCRCMismatch is returned when the trailing checksum disagrees with the frame body
	ErrCRCMismatch = errors.New("frame crc mismatch")
	// ErrShortFrame is returned when a frame body is too short to hold its header and checksum
	ErrShortFrame = errors.New("frame too short")
	// ErrInvalidEscape is returned when the control byte is followed by anything but another control byte
	ErrInvalidEscape = errors.New("invalid escape sequence")
	// ErrDanglingEscape is returned when input ends right after a control byte
	ErrDanglingEscape = errors.New("dangling escape at end of input")
	// ErrMissingMarkers is returned when an encoded frame lacks its start or end marker
	ErrMissingMarkers = errors.New("frame start/end markers missing")
)
