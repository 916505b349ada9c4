package frame

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"gotest.tools/assert"
)

func getRandBytes(t *testing.T, r *rand.Rand, n int) []byte {
	b := make([]byte, n)
	_, err := r.Read(b)
	assert.NilError(t, err)
	return b
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, Checksum([]byte("123456789")), uint16(0x31C3))
	assert.Equal(t, Checksum(nil), uint16(0))
}

func TestEncodeLayout(t *testing.T) {
	actual := Encode(0x01, 0x02, []byte{0xAA})
	crc := Checksum([]byte{0x01, 0x02, 0xAA})
	expected := []byte{0x10, 0x02}
	expected = append(expected, Escape([]byte{0x01, 0x02, 0xAA, byte(crc >> 8), byte(crc)})...)
	expected = append(expected, 0x10, 0x03)
	assert.DeepEqual(t, actual, expected)
}

func TestEncodeEscapesControl(t *testing.T) {
	actual := Encode(0x10, 0x11, []byte{0x10})
	interior := actual[2 : len(actual)-2]
	assert.Equal(t, interior[0], byte(0x10))
	assert.Equal(t, interior[1], byte(0x10))
	assert.Equal(t, interior[2], byte(0x11))
	assert.Equal(t, interior[3], byte(0x10))
	assert.Equal(t, interior[4], byte(0x10))
	unescaped, err := Interior(actual)
	assert.NilError(t, err)
	f, err := Decode(unescaped)
	assert.NilError(t, err)
	assert.DeepEqual(t, f, Frame{Opcode: 0x10, Sequence: 0x11, Payload: []byte{0x10}})
}

func TestRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		expected := Frame{
			Opcode:   byte(r.Intn(256)),
			Sequence: byte(r.Intn(256)),
			Payload:  getRandBytes(t, r, r.Intn(64)),
		}
		interior, err := Interior(expected.Encode())
		assert.NilError(t, err)
		actual, err := Decode(interior)
		assert.NilError(t, err)
		assert.DeepEqual(t, actual, expected)
	}
}

func TestEscapeIdempotence(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	inputs := [][]byte{
		{},
		{0x10},
		{0x10, 0x10, 0x10},
		{0x10, 0x02, 0x10, 0x03},
	}
	for i := 0; i < 200; i++ {
		inputs = append(inputs, getRandBytes(t, r, r.Intn(40)))
	}
	for _, expected := range inputs {
		actual, err := Unescape(Escape(expected))
		assert.NilError(t, err)
		assert.Assert(t, bytes.Equal(actual, expected))
	}
}

func TestUnescapeErrors(t *testing.T) {
	_, err := Unescape([]byte{0x01, 0x10})
	assert.Equal(t, errors.Cause(err), ErrDanglingEscape)
	_, err = Unescape([]byte{0x01, 0x10, 0x02})
	assert.Equal(t, errors.Cause(err), ErrInvalidEscape)
}

func TestCorruptionDetected(t *testing.T) {
	interior, err := Interior(Encode(0x05, 0x07, []byte("hello radio")))
	assert.NilError(t, err)
	for i := range interior {
		for _, flip := range []byte{0x01, 0x80, 0xFF} {
			corrupt := append([]byte{}, interior...)
			corrupt[i] ^= flip
			_, err := Decode(corrupt)
			assert.Equal(t, errors.Cause(err), ErrCRCMismatch, "byte %d flip %02x", i, flip)
		}
	}
}

func TestDecodeShort(t *testing.T) {
	_, err := Decode([]byte{0x01, 0x02, 0x03})
	assert.Equal(t, errors.Cause(err), ErrShortFrame)
}

func TestInteriorMissingMarkers(t *testing.T) {
	_, err := Interior([]byte{0x01, 0x02, 0x03, 0x04, 0x10, 0x03})
	assert.Equal(t, errors.Cause(err), ErrMissingMarkers)
}
