// Package convert runs a full conversion: validate, read chunks, decode and
// print.
package convert

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/vertti/bin2fq/internal/chunker"
	"github.com/vertti/bin2fq/internal/compress"
	"github.com/vertti/bin2fq/internal/config"
	"github.com/vertti/bin2fq/internal/format"
	"github.com/vertti/bin2fq/internal/integrity"
)

// State is the stage a conversion reached.
type State uint8

// Conversion states. Validating leads to Converting or Rejected; Converting
// leads to Done.
const (
	Validating State = iota
	Converting
	Rejected
	Done
)

func (s State) String() string {
	switch s {
	case Validating:
		return "validating"
	case Converting:
		return "converting"
	case Rejected:
		return "rejected"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// ErrNotValidated is returned by Convert for a report that has not passed
// validation.
var ErrNotValidated = errors.New("input has not passed validation")

// Options configures diagnostics of a conversion.
type Options struct {
	// Diagnostics receives the length of a final short chunk. Nil discards it.
	Diagnostics *log.Logger
	// InlineDiagnostics writes the bare length into the output ahead of the
	// records instead of to Diagnostics.
	InlineDiagnostics bool
}

// Report describes the outcome of a conversion.
type Report struct {
	State     State
	Rejection error // Validation failure, set when State is Rejected
	Records   int   // Records written
	Bytes     int   // Input bytes decoded
	Remainder int   // Length of the final short record, 0 if none
}

// Validate checks the configured input. A rejected input is not an error:
// the report carries State Rejected and the reason. An error means the input
// could not be examined at all.
func Validate(cfg config.Config) (*Report, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	algo, err := cfg.ChecksumAlgorithm()
	if err != nil {
		return nil, err
	}

	report := &Report{State: Validating}
	err = integrity.ValidateWith(cfg.Input, cfg.Checksum, algo, cfg.ChunkSize)
	switch {
	case integrity.IsRejection(err):
		report.State = Rejected
		report.Rejection = err
	case err != nil:
		return nil, err
	default:
		report.State = Converting
	}
	return report, nil
}

// Convert decodes the validated input and writes it to w as FASTQ, compressed
// with the configured codec.
func Convert(cfg config.Config, report *Report, w io.Writer, opts *Options) error {
	if report == nil || report.State != Converting {
		return ErrNotValidated
	}
	if opts == nil {
		opts = &Options{}
	}

	codec, err := cfg.Codec()
	if err != nil {
		return err
	}

	set, err := readRecordSet(cfg)
	if err != nil {
		return err
	}

	out, err := compress.NewWriter(w, codec)
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if !closed {
			_ = out.Close()
		}
	}()

	if set.Remainder > 0 {
		if opts.InlineDiagnostics {
			if _, err := fmt.Fprintln(out, set.Remainder); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		} else if opts.Diagnostics != nil {
			opts.Diagnostics.Printf("final chunk holds %d of %d bytes", set.Remainder, cfg.ChunkSize)
		}
	}

	if err := format.WriteRecordSet(out, set); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	closed = true
	if err := out.Close(); err != nil {
		return fmt.Errorf("finishing output: %w", err)
	}

	report.State = Done
	report.Records = set.Len()
	report.Bytes = set.Bytes()
	report.Remainder = set.Remainder
	return nil
}

// Run validates the input and converts it to w. On rejection the diagnostic
// line is written to w in place of any records.
func Run(cfg config.Config, w io.Writer, opts *Options) (*Report, error) {
	report, err := Validate(cfg)
	if err != nil {
		return nil, err
	}
	if report.State == Rejected {
		if _, err := fmt.Fprintln(w, report.Rejection); err != nil {
			return report, fmt.Errorf("writing output: %w", err)
		}
		return report, nil
	}

	if err := Convert(cfg, report, w, opts); err != nil {
		return report, err
	}
	return report, nil
}

func readRecordSet(cfg config.Config) (*chunker.RecordSet, error) {
	f, err := os.Open(cfg.Input) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("cannot open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	set, err := chunker.ReadAll(f, cfg.ChunkSize, &chunker.Options{
		Workers:   cfg.Workers,
		BlockSize: cfg.BlockSize,
	})
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return set, nil
}
