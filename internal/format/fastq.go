// Package format writes decoded records as FASTQ text and checks the result.
package format

import (
	"bufio"
	"io"
	"strconv"

	"github.com/vertti/bin2fq/internal/chunker"
)

// ReadPrefix starts every record name. Records are numbered from 1.
const ReadPrefix = "READ_"

// ReadName returns the name of the n-th record (1-based).
func ReadName(n int) string {
	return ReadPrefix + strconv.Itoa(n)
}

// Writer emits records as four-line FASTQ blocks:
//
//	@READ_<n>
//	<sequence>
//	+READ_<n>
//	<quality>
type Writer struct {
	w   *bufio.Writer
	n   int
	buf []byte // scratch buffer for one record
}

// NewWriter creates a Writer. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:   bufio.NewWriterSize(w, 1<<20),
		buf: make([]byte, 0, 512),
	}
}

// Write emits the next record.
func (fw *Writer) Write(rec chunker.Record) error {
	fw.n++
	name := strconv.AppendInt(nil, int64(fw.n), 10)

	// Build the whole record in the scratch buffer, one write per record
	buf := fw.buf[:0]
	buf = append(buf, '@')
	buf = append(buf, ReadPrefix...)
	buf = append(buf, name...)
	buf = append(buf, '\n')
	buf = append(buf, rec.Sequence...)
	buf = append(buf, '\n', '+')
	buf = append(buf, ReadPrefix...)
	buf = append(buf, name...)
	buf = append(buf, '\n')
	buf = append(buf, rec.Quality...)
	buf = append(buf, '\n')
	fw.buf = buf

	_, err := fw.w.Write(buf)
	return err
}

// Flush writes any buffered data to the underlying writer.
func (fw *Writer) Flush() error {
	return fw.w.Flush()
}

// WriteRecordSet writes every record of set to w in order.
func WriteRecordSet(w io.Writer, set *chunker.RecordSet) error {
	fw := NewWriter(w)
	for _, rec := range set.Records {
		if err := fw.Write(rec); err != nil {
			return err
		}
	}
	return fw.Flush()
}
