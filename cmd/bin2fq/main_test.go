package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []byte{0x41, 0x9A, 0xFF, 0x00, 0x41, 0x9A, 0xFF, 0x00}

const sampleMD5 = "75594233ac1142ea84494014f7d1cf30"

func writeSample(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "input.bin")
	if err := os.WriteFile(path, sample, 0o600); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestConvertToStdout(t *testing.T) {
	t.Parallel()

	path := writeSample(t)
	code, stdout, stderr := runCLI(t, "", "convert", "-i", path, "--checksum", sampleMD5, "-l", "4")

	require.Equal(t, exitSuccess, code, stderr)
	assert.Equal(t, "@READ_1\nCGTA\n+READ_1\n\";`!\n@READ_2\nCGTA\n+READ_2\n\";`!\n", stdout)
	assert.Empty(t, stderr)
}

func TestConvertIsDefaultCommand(t *testing.T) {
	t.Parallel()

	path := writeSample(t)
	code, stdout, stderr := runCLI(t, "", "-i", path, "--checksum", sampleMD5, "--chunk-size", "3")

	require.Equal(t, exitSuccess, code, stderr)
	assert.Equal(t, 3, strings.Count(stdout, "@READ_"))
	assert.Contains(t, stderr, "bin2fq: final chunk holds 2 of 3 bytes")
}

func TestConvertInlineDiagnostics(t *testing.T) {
	t.Parallel()

	path := writeSample(t)
	code, stdout, stderr := runCLI(t, "", "-i", path, "--checksum", sampleMD5, "-l", "3", "--inline-diagnostics")

	require.Equal(t, exitSuccess, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "2\n@READ_1\n"))
	assert.Empty(t, stderr)
}

func TestConvertRejectionExitsNormally(t *testing.T) {
	t.Parallel()

	path := writeSample(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "bad checksum",
			args: []string{"-i", path, "--checksum", strings.Repeat("f", 32), "-l", "4"},
			want: "Invalid input file - integrity check failed.\n",
		},
		{
			name: "chunk size too large",
			args: []string{"-i", path, "--checksum", sampleMD5, "-l", "9"},
			want: "Number 'L' the value must be an integer in the range 1-8.\n",
		},
		{
			name: "negative chunk size",
			args: []string{"-i", path, "--checksum", sampleMD5, "--chunk-size=-1"},
			want: "Number 'L' the value must be an integer in the range 1-8.\n",
		},
		{
			name: "negative chunk size as separate argument",
			args: []string{"-i", path, "--checksum", sampleMD5, "-l", "-2"},
			want: "Number 'L' the value must be an integer in the range 1-8.\n",
		},
		{
			name: "negative long chunk size as separate argument",
			args: []string{"convert", "-i", path, "--checksum", sampleMD5, "--chunk-size", "-2"},
			want: "Number 'L' the value must be an integer in the range 1-8.\n",
		},
		{
			name: "missing file",
			args: []string{"-i", path + ".missing", "--checksum", sampleMD5},
			want: "The path '" + path + ".missing' does not exist.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			code, stdout, _ := runCLI(t, "", tt.args...)
			assert.Equal(t, exitSuccess, code)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestConvertWorkers(t *testing.T) {
	t.Parallel()

	path := writeSample(t)
	want := "@READ_1\nCGT\n+READ_1\n\";`\n@READ_2\nACG\n+READ_2\n!\";\n@READ_3\nTA\n+READ_3\n`!\n"

	for _, workers := range [][]string{{"-w", "-1"}, {"--workers", "-1"}, {"-w", "auto"}, {"--workers=4"}} {
		t.Run(strings.Join(workers, " "), func(t *testing.T) {
			t.Parallel()

			args := append([]string{"-i", path, "--checksum", sampleMD5, "-l", "3"}, workers...)
			code, stdout, stderr := runCLI(t, "", args...)
			require.Equal(t, exitSuccess, code, stderr)
			assert.Equal(t, want, stdout)
		})
	}
}

func TestConvertBadWorkers(t *testing.T) {
	t.Parallel()

	path := writeSample(t)
	code, stdout, stderr := runCLI(t, "", "-i", path, "--checksum", sampleMD5, "-w", "many")

	assert.Equal(t, exitError, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "workers must be an integer or \"auto\"")
}

func TestJoinNegativeValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"-l", "-2"}, []string{"--chunk-size=-2"}},
		{[]string{"-w", "-1", "-v"}, []string{"--workers=-1", "-v"}},
		{[]string{"--chunk-size", "-7"}, []string{"--chunk-size=-7"}},
		{[]string{"-l", "3", "-v"}, []string{"-l", "3", "-v"}},
		{[]string{"-l", "-v"}, []string{"-l", "-v"}},
		{[]string{"--", "-l", "-2"}, []string{"--", "-l", "-2"}},
		{[]string{"-o", "-1"}, []string{"-o", "-1"}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.in, " "), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, joinNegativeValues(tt.in))
		})
	}
}

func TestConvertToCompressedFileAndCheck(t *testing.T) {
	t.Parallel()

	path := writeSample(t)
	out := filepath.Join(t.TempDir(), "reads.fq.zst")

	code, stdout, stderr := runCLI(t, "", "-i", path, "--checksum", sampleMD5, "-l", "3", "-o", out, "-v")
	require.Equal(t, exitSuccess, code, stderr)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "3 reads from 8 bytes (L=3)")

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, raw[:4])

	code, stdout, stderr = runCLI(t, "", "check", out)
	require.Equal(t, exitSuccess, code, stderr)
	assert.Equal(t, "reads: 3\nbases: 8\nread length: 2-3\n", stdout)
}

func TestConvertRejectedLeavesNoOutputFile(t *testing.T) {
	t.Parallel()

	path := writeSample(t)
	out := filepath.Join(t.TempDir(), "reads.fq")

	code, stdout, _ := runCLI(t, "", "-i", path, "--checksum", sampleMD5, "-l", "100", "-o", out)
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "range 1-8")
	assert.NoFileExists(t, out)
}

func TestConvertWithConfigFile(t *testing.T) {
	t.Parallel()

	path := writeSample(t)
	cfgPath := filepath.Join(t.TempDir(), "bin2fq.toml")
	body := "input = \"" + filepath.ToSlash(path) + "\"\n" +
		"checksum = \"" + sampleMD5 + "\"\n" +
		"chunk_size = 8\n" +
		"workers = 2\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

	code, stdout, stderr := runCLI(t, "", "-c", cfgPath)
	require.Equal(t, exitSuccess, code, stderr)
	assert.Equal(t, "@READ_1\nCGTACGTA\n+READ_1\n\";`!\";`!\n", stdout)

	// Flags win over the file
	code, stdout, stderr = runCLI(t, "", "-c", cfgPath, "-l", "4")
	require.Equal(t, exitSuccess, code, stderr)
	assert.Equal(t, 2, strings.Count(stdout, "@READ_"))
}

func TestConvertBadConfigFails(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "bin2fq.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("chunk_size = \"seven\"\n"), 0o600))

	code, stdout, stderr := runCLI(t, "", "-c", cfgPath)
	assert.Equal(t, exitError, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "error: parsing config")
}

func TestChecksumCommand(t *testing.T) {
	t.Parallel()

	path := writeSample(t)

	code, stdout, stderr := runCLI(t, "", "checksum", path)
	require.Equal(t, exitSuccess, code, stderr)
	assert.Equal(t, sampleMD5+"  "+path+"\n", stdout)

	code, stdout, stderr = runCLI(t, "", "checksum", "-a", "sha256", path)
	require.Equal(t, exitSuccess, code, stderr)
	assert.True(t, strings.HasPrefix(stdout, "bdbd800527fa129934af46f114e80f7f63c8d4c82e926004b0131608676a53bf  "))

	code, _, stderr = runCLI(t, "", "checksum", "-a", "crc32", path)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "unknown checksum algorithm")
}

func TestCheckFromStdin(t *testing.T) {
	t.Parallel()

	code, stdout, stderr := runCLI(t, "@READ_1\nACGT\n+READ_1\n!!!!\n", "check")
	require.Equal(t, exitSuccess, code, stderr)
	assert.Equal(t, "reads: 1\nbases: 4\nread length: 4-4\n", stdout)

	code, _, stderr = runCLI(t, "@READ_1\nACGN\n+READ_1\n!!!!\n", "check", "-")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "invalid base")
}

func TestVersion(t *testing.T) {
	t.Parallel()

	code, stdout, _ := runCLI(t, "", "--version")
	assert.Equal(t, exitSuccess, code)
	assert.Equal(t, version+"\n", stdout)
}

func TestUnknownFlag(t *testing.T) {
	t.Parallel()

	code, _, stderr := runCLI(t, "", "--no-such-flag")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "error:")
}
