package frame

import (
	"github.com/Krajiyah/gtlink/pkg/util"
	"github.com/pkg/errors"
)

const headerSize = 2

// Frame is the logical unit exchanged with the device in both directions
type Frame struct {
	Opcode   byte
	Sequence byte
	Payload  []byte
}

// Encode returns the wire form of the frame
func (f Frame) Encode() []byte {
	return Encode(f.Opcode, f.Sequence, f.Payload)
}

// Encode builds STX + escaped(opcode seq payload crc16) + ETX.
// The checksum covers the unescaped bytes.
func Encode(opcode, sequence byte, payload []byte) []byte {
	body := make([]byte, 0, headerSize+len(payload)+crcSize)
	body = append(body, opcode, sequence)
	body = append(body, payload...)
	body = appendChecksum(body)
	escaped := Escape(body)
	out := make([]byte, 0, len(escaped)+4)
	out = append(out, util.Control, util.STX)
	out = append(out, escaped...)
	return append(out, util.Control, util.ETX)
}

// Decode validates an unescaped frame interior (everything between the
// markers, checksum included) and splits it into its fields.
func Decode(interior []byte) (Frame, error) {
	if len(interior) < headerSize+crcSize {
		return Frame{}, errors.Wrapf(ErrShortFrame, "%d bytes", len(interior))
	}
	body, err := verify(interior)
	if err != nil {
		return Frame{}, err
	}
	payload := make([]byte, len(body)-headerSize)
	copy(payload, body[headerSize:])
	return Frame{Opcode: body[0], Sequence: body[1], Payload: payload}, nil
}

// Interior strips the markers from an encoded frame and unescapes what is left
func Interior(encoded []byte) ([]byte, error) {
	n := len(encoded)
	if n < 4 ||
		encoded[0] != util.Control || encoded[1] != util.STX ||
		encoded[n-2] != util.Control || encoded[n-1] != util.ETX {
		return nil, ErrMissingMarkers
	}
	return Unescape(encoded[2 : n-2])
}
