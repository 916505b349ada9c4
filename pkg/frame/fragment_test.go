package frame

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"gotest.tools/assert"
)

func TestSplit(t *testing.T) {
	for _, size := range []int{0, 1, 19, 20, 21, 40, 57} {
		encoded := bytes.Repeat([]byte{0xAB}, size)
		chunks := Split(encoded, 20)
		assert.Equal(t, len(chunks), (size+19)/20)
		var joined []byte
		for _, chunk := range chunks {
			assert.Assert(t, len(chunk) <= 20)
			assert.Assert(t, len(chunk) > 0)
			joined = append(joined, chunk...)
		}
		assert.Assert(t, bytes.Equal(joined, encoded))
	}
}

func TestSplitDefaultSize(t *testing.T) {
	chunks := Split(make([]byte, 45), 0)
	assert.Equal(t, len(chunks), 3)
	assert.Equal(t, len(chunks[0]), 20)
	assert.Equal(t, len(chunks[2]), 5)
}

func TestWriteChunksAbortsOnFailure(t *testing.T) {
	encoded := Encode(0x01, 0x01, make([]byte, 50))
	failure := errors.New("gatt write failed")
	var written [][]byte
	err := WriteChunks(encoded, 20, func(chunk []byte) error {
		if len(written) == 1 {
			return failure
		}
		written = append(written, chunk)
		return nil
	})
	assert.Equal(t, errors.Cause(err), failure)
	assert.ErrorContains(t, err, "chunk 2/")
	assert.Equal(t, len(written), 1)
}

func TestWriteChunksInOrder(t *testing.T) {
	encoded := Encode(0x02, 0x03, []byte("a payload long enough to need several chunks"))
	var joined []byte
	err := WriteChunks(encoded, 20, func(chunk []byte) error {
		joined = append(joined, chunk...)
		return nil
	})
	assert.NilError(t, err)
	assert.Assert(t, bytes.Equal(joined, encoded))
}
