package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/vertti/bin2fq/internal/encoder"
	"github.com/vertti/bin2fq/internal/parser"
)

// Verification errors.
var (
	ErrBadName    = errors.New("unexpected read name")
	ErrBadBase    = errors.New("invalid base")
	ErrBadQuality = errors.New("quality out of range")
	ErrEmptyRead  = errors.New("empty read")
)

// Stats summarizes a verified FASTQ stream.
type Stats struct {
	Records  int
	Bases    int
	Shortest int
	Longest  int
}

// Verify parses FASTQ text produced by Writer and checks that names are
// sequential, sequences hold only A, C, G, T and quality characters lie in
// the range the decoder produces.
func Verify(r io.Reader) (*Stats, error) {
	p := parser.New(r)
	stats := &Stats{}

	for {
		rec, err := p.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("record %d (line %d): %w", stats.Records+1, p.Line(), err)
		}
		n := stats.Records + 1

		if err := checkRecord(rec, n); err != nil {
			// Report the record's header line.
			return stats, fmt.Errorf("record %d (line %d): %w", n, p.Line()-3, err)
		}

		stats.Records = n
		stats.Bases += len(rec.Sequence)
		if stats.Shortest == 0 || len(rec.Sequence) < stats.Shortest {
			stats.Shortest = len(rec.Sequence)
		}
		if len(rec.Sequence) > stats.Longest {
			stats.Longest = len(rec.Sequence)
		}
	}

	return stats, nil
}

func checkRecord(rec *parser.Record, n int) error {
	name := []byte(ReadName(n))
	if !bytes.Equal(rec.Header, name) {
		return fmt.Errorf("%w: header %q, want %q", ErrBadName, rec.Header, name)
	}
	if !bytes.Equal(rec.PlusLine, name) {
		return fmt.Errorf("%w: separator %q, want %q", ErrBadName, rec.PlusLine, name)
	}
	if len(rec.Sequence) == 0 {
		return ErrEmptyRead
	}
	for i, c := range rec.Sequence {
		if !encoder.IsBase(c) {
			return fmt.Errorf("%w: %q at position %d", ErrBadBase, c, i+1)
		}
	}
	for i, c := range rec.Quality {
		if !encoder.IsQuality(c) {
			return fmt.Errorf("%w: %q at position %d", ErrBadQuality, c, i+1)
		}
	}
	return nil
}
