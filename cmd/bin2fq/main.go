// bin2fq converts a binary file into FASTQ-style text.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/vertti/bin2fq/internal/compress"
	"github.com/vertti/bin2fq/internal/config"
	"github.com/vertti/bin2fq/internal/convert"
	"github.com/vertti/bin2fq/internal/format"
	"github.com/vertti/bin2fq/internal/integrity"
)

var version = "dev"

const (
	exitSuccess = 0
	exitError   = 1
)

// environment carries the process streams into command Run methods.
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	logger *log.Logger
}

type cli struct {
	Convert  convertCmd       `cmd:"" default:"withargs" help:"Validate a binary file and print it as FASTQ (default command)"`
	Checksum checksumCmd      `cmd:"" help:"Print the checksum of a file"`
	Check    checkCmd         `cmd:"" help:"Verify FASTQ produced by convert"`
	Version  kong.VersionFlag `help:"Show version and exit"`
}

type convertCmd struct {
	Config            string `short:"c" help:"TOML config file"`
	Input             string `short:"i" help:"Binary input file (default: ${default_input})"`
	Checksum          string `help:"Expected hex checksum of the input"`
	Algorithm         string `help:"Checksum algorithm: md5 or sha256 (default: inferred from checksum length)"`
	ChunkSize         int    `short:"l" help:"Bytes per read, L (default: ${default_chunk_size})"`
	Workers           string `short:"w" help:"Decoding workers, a count or auto for one per CPU (default: 1)"`
	Output            string `short:"o" help:"Output file (default: stdout)"`
	Compress          string `help:"Output compression: none, gzip or zstd (default: from output extension)"`
	InlineDiagnostics bool   `help:"Print the final short chunk length into the output, ahead of the reads"`
	Verbose           bool   `short:"v" help:"Log a summary of the conversion"`
}

func (c *convertCmd) Run(env *environment) error {
	workers, err := config.ParseWorkers(c.Workers)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if c.Config != "" {
		loaded, err := config.Load(c.Config)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg = cfg.Apply(config.Overrides{
		Input:     c.Input,
		Checksum:  c.Checksum,
		Algorithm: c.Algorithm,
		ChunkSize: c.ChunkSize,
		Workers:   workers,
		Output:    c.Output,
		Compress:  c.Compress,
	})

	opts := &convert.Options{
		Diagnostics:       env.logger,
		InlineDiagnostics: c.InlineDiagnostics,
	}

	var report *convert.Report
	if isStdout(cfg.Output) {
		report, err = convert.Run(cfg, env.stdout, opts)
	} else {
		report, err = convertToFile(cfg, env.stdout, opts)
	}
	if err != nil {
		return err
	}

	if c.Verbose && report.State == convert.Done {
		env.logger.Printf("%s: %d reads from %d bytes (L=%d)", cfg.Input, report.Records, report.Bytes, cfg.ChunkSize)
	}
	return nil
}

// convertToFile validates before creating the output so a rejected input
// leaves no file behind. The rejection is reported on stdout.
func convertToFile(cfg config.Config, stdout io.Writer, opts *convert.Options) (*convert.Report, error) {
	report, err := convert.Validate(cfg)
	if err != nil {
		return nil, err
	}
	if report.State == convert.Rejected {
		_, err := fmt.Fprintln(stdout, report.Rejection)
		return report, err
	}

	output, cleanup, err := openOutput(cfg.Output)
	if err != nil {
		return report, err
	}
	if err := convert.Convert(cfg, report, output, opts); err != nil {
		_ = cleanup()
		return report, err
	}
	return report, cleanup()
}

type checksumCmd struct {
	File      string `arg:"" help:"File to hash"`
	Algorithm string `short:"a" default:"md5" help:"Checksum algorithm: md5 or sha256"`
}

func (c *checksumCmd) Run(env *environment) error {
	algo, err := integrity.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return err
	}
	sum, _, err := integrity.Checksum(c.File, algo)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(env.stdout, "%s  %s\n", sum, c.File)
	return err
}

type checkCmd struct {
	File string `arg:"" optional:"" help:"FASTQ file, plain, gzip or zstd (default: stdin)"`
}

func (c *checkCmd) Run(env *environment) error {
	input, closeInput, err := openInput(c.File, env.stdin)
	if err != nil {
		return err
	}
	defer closeInput()

	r, _, cleanup, err := compress.NewReader(input)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := format.Verify(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(env.stdout, "reads: %d\nbases: %d\nread length: %d-%d\n",
		stats.Records, stats.Bases, stats.Shortest, stats.Longest)
	return err
}

// numericFlags maps flags whose values may be negative to their long form.
// A zero or negative L must reach the validator so it can print the range
// message.
var numericFlags = map[string]string{
	"-l": "--chunk-size", "--chunk-size": "--chunk-size",
	"-w": "--workers", "--workers": "--workers",
}

// joinNegativeValues rewrites "-l -2" as "--chunk-size=-2". kong otherwise
// reads "-2" as a short flag.
func joinNegativeValues(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if long, ok := numericFlags[arg]; ok && i+1 < len(args) && isNegativeNumber(args[i+1]) {
			out = append(out, long+"="+args[i+1])
			i++
			continue
		}
		out = append(out, arg)
	}
	return out
}

func isNegativeNumber(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var c cli
	exitCode := -1

	parser, err := kong.New(&c,
		kong.Name("bin2fq"),
		kong.Description("Convert a binary file into FASTQ-style reads: the top two bits of each byte "+
			"pick the base (A, C, G, T), the low six bits plus 33 give the quality character."),
		kong.UsageOnError(),
		kong.Vars{
			"version":            version,
			"default_input":      config.DefaultInput,
			"default_chunk_size": fmt.Sprint(config.DefaultChunkSize),
		},
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	ctx, err := parser.Parse(joinNegativeValues(args))
	if exitCode >= 0 {
		// --help or --version already printed
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	env := &environment{
		stdin:  stdin,
		stdout: stdout,
		logger: log.New(stderr, "bin2fq: ", 0),
	}
	if err := ctx.Run(env); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}

	return exitSuccess
}

func isStdout(path string) bool {
	return path == "" || path == "-"
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}

	f, err := os.Open(path) //nolint:gosec // CLI tool needs to open user-specified files
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	f, err := os.Create(path) //nolint:gosec // CLI tool needs to create user-specified files
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create output: %w", err)
	}
	return f, f.Close, nil
}
