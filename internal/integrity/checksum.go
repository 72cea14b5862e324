// Package integrity checks an input file before it is converted.
package integrity

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"
)

// Algorithm names a content hash.
type Algorithm string

// Supported checksum algorithms.
const (
	MD5    Algorithm = "md5"
	SHA256 Algorithm = "sha256"
)

// DefaultAlgorithm is used when none is configured and none can be inferred.
const DefaultAlgorithm = MD5

// ErrUnknownAlgorithm is returned for algorithm names other than md5 and sha256.
var ErrUnknownAlgorithm = errors.New("unknown checksum algorithm")

// ParseAlgorithm parses a case-insensitive algorithm name.
// An empty name yields DefaultAlgorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", MD5:
		return MD5, nil
	case SHA256:
		return SHA256, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// DetectAlgorithm infers the algorithm from the length of a hex digest.
func DetectAlgorithm(hexDigest string) Algorithm {
	if len(strings.TrimSpace(hexDigest)) == sha256.Size*2 {
		return SHA256
	}
	return MD5
}

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case MD5, "":
		return md5.New(), nil //nolint:gosec // see import
	case SHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(a))
	}
}

// Sum returns the lowercase hex digest of data.
func Sum(data []byte, algo Algorithm) (string, error) {
	h, err := algo.newHash()
	if err != nil {
		return "", err
	}
	h.Write(data) //nolint:errcheck // hash.Hash never returns an error
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Checksum maps the file at path and returns its hex digest and length.
func Checksum(path string, algo Algorithm) (string, int64, error) {
	content, err := openContent(path)
	if err != nil {
		return "", 0, err
	}
	defer content.Close() //nolint:errcheck // read-only mapping

	sum, err := Sum(content.Bytes(), algo)
	if err != nil {
		return "", 0, err
	}
	return sum, int64(len(content.Bytes())), nil
}

// fileContent is the full content of a file, mapped read-only.
type fileContent struct {
	f    *os.File
	data mmap.MMap
}

// openContent maps the whole file. Empty files cannot be mapped and are
// returned with no data.
func openContent(path string) (*fileContent, error) {
	f, err := os.Open(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("cannot open input: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("cannot stat input: %w", err)
	}
	if info.Size() == 0 {
		return &fileContent{f: f}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("cannot map input: %w", err)
	}
	return &fileContent{f: f, data: m}, nil
}

// Bytes returns the mapped content. The slice is valid until Close.
func (c *fileContent) Bytes() []byte {
	return c.data
}

// Close unmaps the content and closes the file.
func (c *fileContent) Close() error {
	if c.data != nil {
		if err := c.data.Unmap(); err != nil {
			return err
		}
		c.data = nil
	}
	if c.f != nil {
		err := c.f.Close()
		c.f = nil
		return err
	}
	return nil
}
