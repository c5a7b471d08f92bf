package span

import "unicode/utf8"

// CharIndex translates byte offsets of a string into character offsets and
// back. Parsers report byte offsets; everything downstream works in
// characters.
type CharIndex struct {
	// chars[b] is the character offset of byte b. Continuation bytes map to
	// the character they belong to.
	chars []int
	// bytes[c] is the byte offset of character c, with one trailing entry
	// for the end of the string.
	bytes []int
}

// NewCharIndex builds the index for s.
func NewCharIndex(s string) *CharIndex {
	idx := &CharIndex{
		chars: make([]int, len(s)+1),
		bytes: make([]int, 0, utf8.RuneCountInString(s)+1),
	}
	c := 0
	for b := 0; b < len(s); {
		_, size := utf8.DecodeRuneInString(s[b:])
		idx.bytes = append(idx.bytes, b)
		for i := 0; i < size; i++ {
			idx.chars[b+i] = c
		}
		b += size
		c++
	}
	idx.chars[len(s)] = c
	idx.bytes = append(idx.bytes, len(s))
	return idx
}

// Len returns the number of characters.
func (x *CharIndex) Len() int { return len(x.bytes) - 1 }

// Char returns the character offset for byte offset b, clamped to the
// string bounds.
func (x *CharIndex) Char(b int) int {
	switch {
	case b <= 0:
		return 0
	case b >= len(x.chars):
		return x.chars[len(x.chars)-1]
	}
	return x.chars[b]
}

// Byte returns the byte offset of character c, clamped to the string
// bounds.
func (x *CharIndex) Byte(c int) int {
	switch {
	case c <= 0:
		return 0
	case c >= len(x.bytes):
		return x.bytes[len(x.bytes)-1]
	}
	return x.bytes[c]
}

// Range converts a byte interval into a character Range.
func (x *CharIndex) Range(startByte, endByte int) Range {
	start, end := x.Char(startByte), x.Char(endByte)
	if end < start {
		end = start
	}
	return Range{Start: start, End: end}
}
