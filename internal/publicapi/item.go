// Package publicapi lists the public items of a crate as canonical,
// sortable signatures.
package publicapi

import (
	"slices"
	"strings"

	"pubapi/internal/tokens"
)

// PublicItem is one rendered item of the public surface.
type PublicItem struct {
	// Path is the item's path, outermost segment first.
	Path []string `json:"path" yaml:"path"`
	// Tokens is the rendered declaration.
	Tokens []tokens.Token `json:"tokens" yaml:"tokens"`
}

// String returns the canonical signature line.
func (p PublicItem) String() string {
	return tokens.String(p.Tokens)
}

// PathString joins the path with "::".
func (p PublicItem) PathString() string {
	return strings.Join(p.Path, "::")
}

// Kind returns the kind words of the declaration, e.g. "struct field", or
// "unknown" when the item carries none.
func (p PublicItem) Kind() string {
	var kinds []string
	for _, t := range p.Tokens {
		if t.Tag == tokens.TagKind {
			kinds = append(kinds, t.Text)
		} else if len(kinds) > 0 && t.Tag != tokens.TagWhitespace {
			break
		}
	}
	if len(kinds) == 0 {
		return "unknown"
	}
	return strings.Join(kinds, " ")
}

// Compare orders by path, then by tokens.
func (p PublicItem) Compare(other PublicItem) int {
	return Compare(p, other)
}

// SamePath reports whether both items name the same slot.
func (p PublicItem) SamePath(other PublicItem) bool {
	return slices.Equal(p.Path, other.Path)
}

// Compare orders public items by path (segment-wise), then by tokens.
func Compare(a, b PublicItem) int {
	if c := slices.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	return tokens.CompareSeq(a.Tokens, b.Tokens)
}

// Sort sorts items in place in ascending order.
func Sort(items []PublicItem) {
	slices.SortFunc(items, Compare)
}

// Strings renders every item.
func Strings(items []PublicItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.String()
	}
	return out
}

// Clone returns a deep copy of the item.
func (p PublicItem) Clone() PublicItem {
	return PublicItem{Path: slices.Clone(p.Path), Tokens: slices.Clone(p.Tokens)}
}
