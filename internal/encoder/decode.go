package encoder

// DecodeByte splits one raw byte into a base and a quality character.
// It is defined for all 256 byte values.
func DecodeByte(b byte) (base, qual byte) {
	return baseTable[b], QualityOf(b)
}

// DecodeChunk decodes every byte of chunk in order.
// Both returned slices have len(chunk) bytes.
func DecodeChunk(chunk []byte) (seq, qual []byte) {
	return AppendDecoded(nil, nil, chunk)
}

// AppendDecoded appends the decoded bases of chunk to seqDst and the quality
// characters to qualDst.
func AppendDecoded(seqDst, qualDst, chunk []byte) ([]byte, []byte) {
	if len(chunk) == 0 {
		return seqDst, qualDst
	}
	if qualDst == nil {
		qualDst = make([]byte, 0, len(chunk))
	}
	return AppendBases(seqDst, chunk), AppendQualities(qualDst, chunk)
}
