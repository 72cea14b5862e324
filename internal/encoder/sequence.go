// Package encoder maps raw bytes onto FASTQ components.
package encoder

// Bases indexes nucleotides by their 2-bit code.
// Encoding: A=00, C=01, G=10, T=11
var Bases = [4]byte{'A', 'C', 'G', 'T'}

// baseShift moves the top two bits of a byte into the 0-3 range.
const baseShift = 6

// baseTable caches the base for every byte value so decoding is a single lookup.
var baseTable [256]byte

func init() {
	for i := range baseTable {
		baseTable[i] = Bases[i>>baseShift]
	}
}

// BaseOf returns the nucleotide encoded by the top two bits of b.
func BaseOf(b byte) byte {
	return baseTable[b]
}

// IsBase reports whether c is one of A, C, G, T.
func IsBase(c byte) bool {
	switch c {
	case 'A', 'C', 'G', 'T':
		return true
	}
	return false
}

// AppendBases appends the base of every byte in chunk to dst.
func AppendBases(dst []byte, chunk []byte) []byte {
	if len(chunk) == 0 {
		return dst
	}

	start := len(dst)
	needed := start + len(chunk)
	if cap(dst) < needed {
		newDst := make([]byte, start, needed)
		copy(newDst, dst)
		dst = newDst
	}
	dst = dst[:needed]

	for i, b := range chunk {
		dst[start+i] = baseTable[b]
	}
	return dst
}
