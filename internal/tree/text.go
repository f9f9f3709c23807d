package tree

import "strings"

// MaxCompressedWhitespace is the longest whitespace run stored inline in a
// record rather than in the character buffer.
const MaxCompressedWhitespace = 29

const whitespaceAlphabet = " \n\r\t"

// encodeWhitespace packs s into two 32-bit words: the low 5 bits carry the
// length, then two bits per character indexing whitespaceAlphabet.
func encodeWhitespace(s string) (alpha, beta int32, ok bool) {
	if s == "" || len(s) > MaxCompressedWhitespace {
		return 0, 0, false
	}
	v := uint64(len(s))
	for i := 0; i < len(s); i++ {
		code := strings.IndexByte(whitespaceAlphabet, s[i])
		if code < 0 {
			return 0, 0, false
		}
		v |= uint64(code) << (5 + 2*uint(i))
	}
	return int32(uint32(v >> 32)), int32(uint32(v)), true
}

func decodeWhitespace(alpha, beta int32) string {
	v := uint64(uint32(alpha))<<32 | uint64(uint32(beta))
	n := int(v & 0x1f)
	var b strings.Builder
	b.Grow(n)
	for i := range n {
		b.WriteByte(whitespaceAlphabet[(v>>(5+2*uint(i)))&3])
	}
	return b.String()
}

// textOf returns the character content of a text-bearing record.
func (t *Tree) textOf(nr int32) string {
	r := &t.records[nr]
	switch r.kind {
	case KindText, KindTextualElement:
		return string(t.chars[r.alpha : r.alpha+r.beta])
	case KindWhitespaceText:
		return decodeWhitespace(r.alpha, r.beta)
	case KindComment, KindProcessingInstruction:
		return string(t.comments[r.alpha : r.alpha+r.beta])
	}
	return ""
}

// subtreeText concatenates the text descendants of record nr in document
// order.
func (t *Tree) subtreeText(nr int32) string {
	d := t.records[nr].depth
	var b strings.Builder
	for i := int(nr) + 1; i < len(t.records); i++ {
		r := &t.records[i]
		if r.depth <= d && r.kind != KindParentPointer {
			break
		}
		switch r.kind {
		case KindText, KindTextualElement:
			b.Write(t.chars[r.alpha : r.alpha+r.beta])
		case KindWhitespaceText:
			b.WriteString(decodeWhitespace(r.alpha, r.beta))
		}
	}
	return b.String()
}
