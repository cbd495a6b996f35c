// Package tokens defines the tagged text units a rendered signature is made of.
// A signature is a flat []Token; separators are tokens too, so joining the
// texts in order reproduces the canonical line exactly.
package tokens

import (
	"fmt"
	"strings"
)

// Tag classifies a token. The declaration order is the sort rank.
type Tag uint8

const (
	// TagQualifier marks pub, unsafe, const, async and ABI names
	TagQualifier Tag = iota
	// TagKind marks item kinds such as struct, fn, trait
	TagKind
	// TagIdentifier marks plain identifiers
	TagIdentifier
	// TagType marks type names
	TagType
	// TagFunction marks function names
	TagFunction
	// TagGeneric marks generic parameter names
	TagGeneric
	// TagLifetime marks lifetimes
	TagLifetime
	// TagPrimitive marks primitive names and literal values
	TagPrimitive
	// TagKeyword marks as, for, where, mut, impl
	TagKeyword
	// TagSymbol marks punctuation
	TagSymbol
	// TagSelf marks the self receiver
	TagSelf
	// TagWhitespace marks a single space
	TagWhitespace
)

var tagNames = [...]string{
	TagQualifier:  "qualifier",
	TagKind:       "kind",
	TagIdentifier: "identifier",
	TagType:       "type",
	TagFunction:   "function",
	TagGeneric:    "generic",
	TagLifetime:   "lifetime",
	TagPrimitive:  "primitive",
	TagKeyword:    "keyword",
	TagSymbol:     "symbol",
	TagSelf:       "self",
	TagWhitespace: "whitespace",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("tag(%d)", uint8(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	if int(t) >= len(tagNames) {
		return nil, fmt.Errorf("unknown token tag %d", uint8(t))
	}
	return []byte(tagNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(text []byte) error {
	s := string(text)
	for i, name := range tagNames {
		if name == s {
			*t = Tag(i)
			return nil
		}
	}
	return fmt.Errorf("unknown token tag %q", s)
}

// Token is one tagged fragment of a signature.
type Token struct {
	Tag  Tag    `json:"tag" yaml:"tag"`
	Text string `json:"text" yaml:"text"`
}

// Whitespace is the only whitespace token the renderer emits.
var Whitespace = Token{Tag: TagWhitespace, Text: " "}

func Qualifier(s string) Token  { return Token{Tag: TagQualifier, Text: s} }
func Kind(s string) Token       { return Token{Tag: TagKind, Text: s} }
func Identifier(s string) Token { return Token{Tag: TagIdentifier, Text: s} }
func Type(s string) Token       { return Token{Tag: TagType, Text: s} }
func Function(s string) Token   { return Token{Tag: TagFunction, Text: s} }
func Generic(s string) Token    { return Token{Tag: TagGeneric, Text: s} }
func Lifetime(s string) Token   { return Token{Tag: TagLifetime, Text: s} }
func Primitive(s string) Token  { return Token{Tag: TagPrimitive, Text: s} }
func Keyword(s string) Token    { return Token{Tag: TagKeyword, Text: s} }
func Symbol(s string) Token     { return Token{Tag: TagSymbol, Text: s} }
func Self(s string) Token       { return Token{Tag: TagSelf, Text: s} }

// String returns the verbatim text of the token.
func (t Token) String() string {
	return t.Text
}

// Compare orders tokens by tag rank, then by text.
func Compare(a, b Token) int {
	if a.Tag != b.Tag {
		if a.Tag < b.Tag {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Text, b.Text)
}

// CompareSeq orders token sequences elementwise; a strict prefix sorts first.
func CompareSeq(a, b []Token) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// Equal reports whether both sequences hold the same tokens in the same order.
func Equal(a, b []Token) bool {
	return CompareSeq(a, b) == 0
}

// String concatenates the token texts with no separators.
func String(ts []Token) string {
	var sb strings.Builder
	for _, t := range ts {
		sb.WriteString(t.Text)
	}
	return sb.String()
}
