// Package config holds the run configuration of a conversion.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/vertti/bin2fq/internal/compress"
	"github.com/vertti/bin2fq/internal/integrity"
)

// Built-in defaults, used when neither a config file nor flags say otherwise.
const (
	DefaultInput     = "./dna_conversion_samples/input"
	DefaultChecksum  = "25a02f1331042be2856e652bda60e8de"
	DefaultChunkSize = 7
)

// Config is the complete description of one conversion.
type Config struct {
	Input     string // Binary file to convert
	Checksum  string // Expected hex digest of Input
	Algorithm string // md5 or sha256; inferred from Checksum when empty
	ChunkSize int    // Bytes per record (L)

	Workers   int    // Decoding workers, 1 = sequential
	BlockSize int    // Chunks per decoding job
	Output    string // Output path, empty or "-" = stdout
	Compress  string // none, gzip or zstd
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Input:     DefaultInput,
		Checksum:  DefaultChecksum,
		ChunkSize: DefaultChunkSize,
		Workers:   1,
	}
}

// Config file keys.
const (
	keyInput     = "input"
	keyChecksum  = "checksum"
	keyAlgorithm = "algorithm"
	keyChunkSize = "chunk_size"
	keyWorkers   = "workers"
	keyBlockSize = "block_size"
	keyOutput    = "output"
	keyCompress  = "compress"
)

// Config file errors.
var (
	ErrUnknownKey = errors.New("unknown config key")
	ErrWrongType  = errors.New("wrong value type")
	ErrBadWorkers = errors.New("workers must be an integer or \"auto\"")
)

// Load reads a TOML file on top of the defaults. Keys missing from the file
// keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.merge(tree); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) merge(tree *toml.Tree) error {
	stringKeys := map[string]*string{
		keyInput:     &c.Input,
		keyChecksum:  &c.Checksum,
		keyAlgorithm: &c.Algorithm,
		keyOutput:    &c.Output,
		keyCompress:  &c.Compress,
	}
	intKeys := map[string]*int{
		keyChunkSize: &c.ChunkSize,
		keyBlockSize: &c.BlockSize,
	}

	for _, key := range tree.Keys() {
		value := tree.Get(key)
		if key == keyWorkers {
			n, err := workersValue(value)
			if err != nil {
				return err
			}
			c.Workers = n
			continue
		}
		if dst, ok := stringKeys[key]; ok {
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: %s must be a string", ErrWrongType, key)
			}
			*dst = s
			continue
		}
		if dst, ok := intKeys[key]; ok {
			n, ok := value.(int64)
			if !ok {
				return fmt.Errorf("%w: %s must be an integer", ErrWrongType, key)
			}
			*dst = int(n)
			continue
		}
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// AutoWorkers asks for one decoding worker per CPU.
const AutoWorkers = -1

// ParseWorkers parses a worker count: an integer, or "auto" for one per CPU.
// An empty string yields 0, meaning not set.
func ParseWorkers(s string) (int, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "auto":
		return AutoWorkers, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadWorkers, s)
	}
	return n, nil
}

func workersValue(value any) (int, error) {
	switch v := value.(type) {
	case int64:
		return int(v), nil
	case string:
		n, err := ParseWorkers(v)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, fmt.Errorf("%w: %q", ErrBadWorkers, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer or \"auto\"", ErrWrongType, keyWorkers)
	}
}

// Overrides carries values set explicitly on the command line.
// Zero values leave the configuration untouched.
type Overrides struct {
	Input     string
	Checksum  string
	Algorithm string
	ChunkSize int
	Workers   int
	Output    string
	Compress  string
}

// Apply returns cfg with every non-zero override applied.
func (c Config) Apply(o Overrides) Config {
	if o.Input != "" {
		c.Input = o.Input
	}
	if o.Checksum != "" {
		c.Checksum = o.Checksum
	}
	if o.Algorithm != "" {
		c.Algorithm = o.Algorithm
	}
	if o.ChunkSize != 0 {
		c.ChunkSize = o.ChunkSize
	}
	if o.Workers != 0 {
		c.Workers = o.Workers
	}
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Compress != "" {
		c.Compress = o.Compress
	}
	return c
}

// ChecksumAlgorithm resolves the configured algorithm, falling back to the
// one implied by the checksum length.
func (c Config) ChecksumAlgorithm() (integrity.Algorithm, error) {
	if c.Algorithm == "" {
		return integrity.DetectAlgorithm(c.Checksum), nil
	}
	return integrity.ParseAlgorithm(c.Algorithm)
}

// Codec resolves the output compression. An explicit setting wins over the
// output file extension.
func (c Config) Codec() (compress.Codec, error) {
	if c.Compress != "" {
		return compress.ParseCodec(c.Compress)
	}
	return compress.CodecForPath(c.Output), nil
}

// ErrNoInput is returned when the configuration names no input file.
var ErrNoInput = errors.New("no input file configured")

// Check reports settings that make a run impossible before the input is
// looked at. Chunk size and checksum are left to input validation.
func (c Config) Check() error {
	if c.Input == "" {
		return ErrNoInput
	}
	if _, err := c.ChecksumAlgorithm(); err != nil {
		return err
	}
	if _, err := c.Codec(); err != nil {
		return err
	}
	return nil
}
