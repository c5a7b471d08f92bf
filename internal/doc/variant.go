package doc

import (
	"strings"
	"unicode/utf8"
)

// VariantKind classifies the comment syntax a chunk was extracted from.
type VariantKind uint8

const (
	Unknown VariantKind = iota
	// CommonMark is a plain markdown file.
	CommonMark
	// TripleSlash is a Rust outer line doc comment: `/// text`.
	TripleSlash
	// DoubleSlashEM is a Rust inner line doc comment: `//! text`.
	DoubleSlashEM
	// DoubleSlash is a Go doc comment: `// text`.
	DoubleSlash
	// MacroDocEq is a doc attribute: `#[doc = "text"]` or `#[doc = r#"text"#]`.
	MacroDocEq
	// SlashAsteriskAsterisk is a Rust outer block doc comment: `/** text */`.
	SlashAsteriskAsterisk
	// SlashAsteriskEM is a Rust inner block doc comment: `/*! text */`.
	SlashAsteriskEM
)

var variantNames = [...]string{
	Unknown:               "unknown",
	CommonMark:            "commonmark",
	TripleSlash:           "triple-slash",
	DoubleSlashEM:         "double-slash-em",
	DoubleSlash:           "double-slash",
	MacroDocEq:            "macro-doc-eq",
	SlashAsteriskAsterisk: "slash-asterisk-asterisk",
	SlashAsteriskEM:       "slash-asterisk-em",
}

func (k VariantKind) String() string {
	if int(k) < len(variantNames) {
		return variantNames[k]
	}
	return variantNames[Unknown]
}

// CommentVariant describes the decoration around every line of a chunk.
// Delimiter, Raw and Hashes are only meaningful for MacroDocEq.
type CommentVariant struct {
	Kind VariantKind
	// Delimiter is the source text between `doc` and the string literal,
	// e.g. " = " or "=".
	Delimiter string
	// Raw marks an r"..." literal; Hashes counts its '#' fence characters.
	Raw    bool
	Hashes int
}

// Variant returns the variant of the given kind without attribute details.
func Variant(kind VariantKind) CommentVariant {
	return CommentVariant{Kind: kind}
}

// DocAttribute returns a MacroDocEq variant.
func DocAttribute(delimiter string, raw bool, hashes int) CommentVariant {
	if !raw {
		hashes = 0
	}
	return CommentVariant{Kind: MacroDocEq, Delimiter: delimiter, Raw: raw, Hashes: hashes}
}

// Prefix is the decoration written in front of each reflowed line.
func (v CommentVariant) Prefix() string {
	switch v.Kind {
	case TripleSlash:
		return "/// "
	case DoubleSlashEM:
		return "//! "
	case DoubleSlash:
		return "// "
	case MacroDocEq:
		var b strings.Builder
		b.WriteString("#[doc")
		b.WriteString(v.Delimiter)
		if v.Raw {
			b.WriteByte('r')
			b.WriteString(strings.Repeat("#", v.Hashes))
		}
		b.WriteByte('"')
		return b.String()
	}
	return ""
}

// PrefixLen is the number of decoration characters that precede the mapped
// text on a source line. It is subtracted from a line's indentation before
// the prefix is written back.
func (v CommentVariant) PrefixLen() int {
	return utf8.RuneCountInString(v.Prefix())
}

// Suffix is the decoration closing each reflowed line.
func (v CommentVariant) Suffix() string {
	if v.Kind == MacroDocEq {
		return `"` + strings.Repeat("#", v.Hashes) + "]"
	}
	return ""
}

func (v CommentVariant) String() string {
	return v.Kind.String()
}
