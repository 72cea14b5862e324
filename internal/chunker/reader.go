// Package chunker slices a byte stream into fixed-size chunks and decodes
// each chunk into a FASTQ record.
package chunker

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/vertti/bin2fq/internal/encoder"
)

// ErrInvalidChunkSize is returned for chunk sizes below 1.
var ErrInvalidChunkSize = errors.New("chunk size must be positive")

// Record is one decoded chunk.
type Record struct {
	Sequence []byte // Bases, one per input byte (A, C, G, T)
	Quality  []byte // Phred+33 characters, one per input byte
}

// Len returns the number of input bytes the record was decoded from.
func (r Record) Len() int {
	return len(r.Sequence)
}

// Reader reads chunks of a fixed size from an input stream.
type Reader struct {
	reader    *bufio.Reader
	chunk     []byte // reusable buffer for reading chunks
	remainder int
	done      bool
}

// NewReader creates a chunk reader.
func NewReader(r io.Reader, chunkSize int) (*Reader, error) {
	if chunkSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, chunkSize)
	}
	return &Reader{
		reader: bufio.NewReaderSize(r, 1<<20), // 1MB buffer
		chunk:  make([]byte, chunkSize),
	}, nil
}

// Remainder returns the length of the final short chunk, or 0 if the input
// length was a multiple of the chunk size. Valid once Next returned io.EOF.
func (r *Reader) Remainder() int {
	return r.remainder
}

// ReadChunk returns the next raw chunk. The slice is only valid until the
// next call. The last chunk may be shorter than the chunk size.
// Returns io.EOF when no more bytes are available.
func (r *Reader) ReadChunk() ([]byte, error) {
	if r.done {
		return nil, io.EOF
	}

	n, err := io.ReadFull(r.reader, r.chunk)
	switch {
	case err == nil:
		return r.chunk, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		// Short read: this is the final partial chunk
		r.done = true
		r.remainder = n
		return r.chunk[:n], nil
	case errors.Is(err, io.EOF):
		r.done = true
		return nil, io.EOF
	default:
		return nil, fmt.Errorf("reading chunk: %w", err)
	}
}

// Next reads and decodes the next chunk.
// Returns io.EOF when no more records are available.
func (r *Reader) Next() (Record, error) {
	chunk, err := r.ReadChunk()
	if err != nil {
		return Record{}, err
	}
	seq, qual := encoder.DecodeChunk(chunk)
	return Record{Sequence: seq, Quality: qual}, nil
}
