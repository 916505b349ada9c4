package frame

import (
	"github.com/Krajiyah/gtlink/pkg/util"
	"github.com/pkg/errors"
)

// Escape doubles every literal control byte in data
func Escape(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/8+1)
	for _, b := range data {
		if b == util.Control {
			out = append(out, util.Control)
		}
		out = append(out, b)
	}
	return out
}

// Unescape reverses Escape. Markers are not accepted here; strip them first.
func Unescape(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != util.Control {
			out = append(out, data[i])
			continue
		}
		i++
		if i == len(data) {
			return nil, ErrDanglingEscape
		}
		if data[i] != util.Control {
			return nil, errors.Wrapf(ErrInvalidEscape, "0x%02x at offset %d", data[i], i)
		}
		out = append(out, util.Control)
	}
	return out, nil
}
