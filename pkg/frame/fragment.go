package frame

import (
	"github.com/Krajiyah/gtlink/pkg/util"
	"github.com/pkg/errors"
)

// Split cuts an encoded frame into consecutive chunks of at most maxChunk
// bytes. A non-positive maxChunk selects util.MaxChunkSize.
func Split(encoded []byte, maxChunk int) [][]byte {
	if maxChunk <= 0 {
		maxChunk = util.MaxChunkSize
	}
	var chunk []byte
	chunks := make([][]byte, 0, len(encoded)/maxChunk+1)
	for len(encoded) >= maxChunk {
		chunk, encoded = encoded[:maxChunk], encoded[maxChunk:]
		chunks = append(chunks, chunk)
	}
	if len(encoded) > 0 {
		chunks = append(chunks, encoded)
	}
	return chunks
}

// WriteChunks writes the chunks of encoded in order and stops at the first
// failure. Nothing is retried.
func WriteChunks(encoded []byte, maxChunk int, write func([]byte) error) error {
	chunks := Split(encoded, maxChunk)
	for i, chunk := range chunks {
		if err := write(chunk); err != nil {
			return errors.Wrapf(err, "chunk %d/%d", i+1, len(chunks))
		}
	}
	return nil
}
