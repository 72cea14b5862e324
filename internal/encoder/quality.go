package encoder

// Phred33Offset is added to the 6-bit quality value to reach printable ASCII.
const Phred33Offset = 33

// QualityMask selects the low six bits of a byte.
const QualityMask = 0x3F

// Bounds of the quality characters DecodeByte can produce ('!' and '`').
const (
	MinQuality = Phred33Offset
	MaxQuality = QualityMask + Phred33Offset
)

// QualityOf returns the Phred+33 character for the low six bits of b.
// Bits 2-5 count towards the quality value; the top two belong to the base.
func QualityOf(b byte) byte {
	return b&QualityMask + Phred33Offset
}

// IsQuality reports whether c lies in the range QualityOf can produce.
func IsQuality(c byte) bool {
	return c >= MinQuality && c <= MaxQuality
}

// AppendQualities appends the quality character of every byte in chunk to dst.
func AppendQualities(dst []byte, chunk []byte) []byte {
	for _, b := range chunk {
		dst = append(dst, QualityOf(b))
	}
	return dst
}
