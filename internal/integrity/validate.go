package integrity

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Validation failures. A rejected input carries exactly one of these.
var (
	ErrPathNotFound      = errors.New("path does not exist")
	ErrNotAFile          = errors.New("not a file")
	ErrIntegrityMismatch = errors.New("integrity check failed")
	ErrInvalidChunkSize  = errors.New("invalid chunk size")
)

// ValidationError describes why an input was rejected.
// Its message is the diagnostic shown to the user.
type ValidationError struct {
	Err  error  // One of the Err* sentinels above
	Path string // Input path as given
	Size int64  // File length, set for ErrInvalidChunkSize
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Err, ErrPathNotFound):
		return fmt.Sprintf("The path '%s' does not exist.", e.Path)
	case errors.Is(e.Err, ErrNotAFile):
		return fmt.Sprintf("'%s' is not a file.", e.Path)
	case errors.Is(e.Err, ErrIntegrityMismatch):
		return "Invalid input file - integrity check failed."
	case errors.Is(e.Err, ErrInvalidChunkSize):
		return fmt.Sprintf("Number 'L' the value must be an integer in the range 1-%d.", e.Size)
	default:
		return e.Err.Error()
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsRejection reports whether err is a validation failure rather than an
// operational error.
func IsRejection(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks path, content checksum and chunk size, in that order, and
// stops at the first failure. The algorithm is inferred from the length of
// expected. Failures are *ValidationError; any other error means the file
// could not be examined.
func Validate(path, expected string, chunkSize int) error {
	return ValidateWith(path, expected, DetectAlgorithm(expected), chunkSize)
}

// ValidateWith is Validate with an explicit checksum algorithm.
func ValidateWith(path, expected string, algo Algorithm, chunkSize int) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ValidationError{Err: ErrPathNotFound, Path: path}
	}
	if err != nil {
		return fmt.Errorf("cannot stat input: %w", err)
	}
	if !info.Mode().IsRegular() {
		return &ValidationError{Err: ErrNotAFile, Path: path}
	}

	sum, size, err := Checksum(path, algo)
	if err != nil {
		return err
	}
	if !strings.EqualFold(sum, strings.TrimSpace(expected)) {
		return &ValidationError{Err: ErrIntegrityMismatch, Path: path}
	}

	if chunkSize <= 0 || int64(chunkSize) > size {
		return &ValidationError{Err: ErrInvalidChunkSize, Path: path, Size: size}
	}

	return nil
}
