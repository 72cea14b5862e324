// Package compress wraps FASTQ output in gzip or zstd and detects compressed
// input.
package compress

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec selects the output compression.
type Codec string

// Supported codecs.
const (
	None Codec = "none"
	Gzip Codec = "gzip"
	Zstd Codec = "zstd"
)

// ErrUnknownCodec is returned for codec names that are not supported.
var ErrUnknownCodec = errors.New("unknown compression codec")

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// ParseCodec parses a codec name. An empty name means None.
func ParseCodec(name string) (Codec, error) {
	switch c := Codec(strings.ToLower(strings.TrimSpace(name))); c {
	case "", None:
		return None, nil
	case Gzip, "gz":
		return Gzip, nil
	case Zstd, "zst":
		return Zstd, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// CodecForPath guesses the codec from a file extension.
func CodecForPath(path string) Codec {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return Gzip
	case strings.HasSuffix(lower, ".zst"):
		return Zstd
	default:
		return None
	}
}

// NewWriter wraps w so that data written is compressed with codec.
// Close must be called to flush the compressed stream; it does not close w.
func NewWriter(w io.Writer, codec Codec) (io.WriteCloser, error) {
	switch codec {
	case None, "":
		return nopCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, string(codec))
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NewReader sniffs the first bytes of r and transparently decompresses gzip
// or zstd input. Plain input is returned buffered. The returned cleanup
// releases decoder resources; it does not close r.
func NewReader(r io.Reader) (io.Reader, Codec, func(), error) {
	br := bufio.NewReaderSize(r, 1<<20)
	header, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, "", nil, fmt.Errorf("cannot inspect input: %w", err)
	}

	switch {
	case bytes.HasPrefix(header, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, "", nil, fmt.Errorf("cannot open gzip input: %w", err)
		}
		return gz, Gzip, func() { _ = gz.Close() }, nil
	case bytes.HasPrefix(header, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, "", nil, fmt.Errorf("cannot open zstd input: %w", err)
		}
		return dec, Zstd, dec.Close, nil
	default:
		return br, None, func() {}, nil
	}
}
