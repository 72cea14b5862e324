// Package parser reads FASTQ records back from text.
package parser

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// Parse errors.
var (
	ErrMissingHeader    = errors.New("invalid FASTQ: header line must start with @")
	ErrMissingSeparator = errors.New("invalid FASTQ: separator line must start with +")
	ErrLengthMismatch   = errors.New("invalid FASTQ: sequence and quality lengths must match")
	ErrTruncated        = errors.New("invalid FASTQ: truncated record")
)

// Record represents a single FASTQ record.
// Slices are owned by the record and stay valid after the next call to Next.
type Record struct {
	Header   []byte // Header line without the leading '@'
	Sequence []byte // Bases
	PlusLine []byte // Separator line without the leading '+'
	Quality  []byte // Quality characters (Phred+33)
}

// Parser reads FASTQ records from an input stream.
type Parser struct {
	reader *bufio.Reader
	line   []byte // reusable buffer for reading lines
	lineNo int
}

// New creates a new FASTQ parser.
func New(r io.Reader) *Parser {
	return &Parser{
		reader: bufio.NewReaderSize(r, 1<<20), // 1MB buffer
		line:   make([]byte, 0, 512),
	}
}

// Line returns the number of lines consumed so far.
func (p *Parser) Line() int {
	return p.lineNo
}

// Next reads and returns the next FASTQ record.
// Returns io.EOF when no more records are available.
func (p *Parser) Next() (*Record, error) {
	rec := &Record{}

	// Line 1: Header (starts with @)
	line, err := p.readLine()
	if err != nil {
		return nil, err
	}
	if len(line) == 0 || line[0] != '@' {
		return nil, ErrMissingHeader
	}
	rec.Header = clone(line[1:])

	// Line 2: Sequence
	line, err = p.readRecordLine()
	if err != nil {
		return nil, err
	}
	rec.Sequence = clone(line)

	// Line 3: Plus line
	line, err = p.readRecordLine()
	if err != nil {
		return nil, err
	}
	if len(line) == 0 || line[0] != '+' {
		return nil, ErrMissingSeparator
	}
	rec.PlusLine = clone(line[1:])

	// Line 4: Quality scores
	line, err = p.readRecordLine()
	if err != nil {
		return nil, err
	}
	rec.Quality = clone(line)

	if len(rec.Sequence) != len(rec.Quality) {
		return nil, ErrLengthMismatch
	}

	return rec, nil
}

// readRecordLine reads a line inside a record, where EOF means truncation.
func (p *Parser) readRecordLine() ([]byte, error) {
	line, err := p.readLine()
	if errors.Is(err, io.EOF) {
		return nil, ErrTruncated
	}
	return line, err
}

// readLine reads a line from the input, stripping the newline.
// Reuses an internal buffer to minimize allocations.
func (p *Parser) readLine() ([]byte, error) {
	p.line = p.line[:0]

	for {
		segment, isPrefix, err := p.reader.ReadLine()
		if err != nil {
			return nil, err
		}

		p.line = append(p.line, segment...)

		if !isPrefix {
			break
		}
	}
	p.lineNo++

	// Trim any trailing CR (for Windows line endings)
	p.line = bytes.TrimSuffix(p.line, []byte{'\r'})

	return p.line, nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
