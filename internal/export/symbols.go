package export

import (
	"strconv"
	"strings"
)

type descriptorSuffix int

const (
	descNamespace descriptorSuffix = iota
	descType
	descTerm
	descMethod
	descMacro
)

// symbolBuilder formats SCIP symbols of the form
// "rustdoc cargo <crate> <version> <descriptors>".
type symbolBuilder struct {
	crate   string
	version string
	// kinds maps a "::"-joined path to the kind of the item at that path.
	kinds map[string]string
}

func (b symbolBuilder) symbol(path []string, kind string) string {
	return b.format(path, kind, 0)
}

func (b symbolBuilder) symbolWithDisambiguator(path []string, n int) string {
	return b.format(path, "fn", n)
}

func (b symbolBuilder) format(path []string, kind string, disambiguator int) string {
	var sb strings.Builder
	sb.WriteString(SymbolScheme)
	sb.WriteByte(' ')
	sb.WriteString(PackageManager)
	sb.WriteByte(' ')
	sb.WriteString(packageField(b.crate))
	sb.WriteByte(' ')
	sb.WriteString(packageField(b.version))
	sb.WriteByte(' ')

	for i, name := range path {
		k := kind
		if i < len(path)-1 {
			k = b.kinds[strings.Join(path[:i+1], "::")]
		}
		suffix := b.descriptor(path[:i+1], k)
		sb.WriteString(escapeName(name))
		switch suffix {
		case descNamespace:
			sb.WriteByte('/')
		case descType:
			sb.WriteByte('#')
		case descMethod:
			sb.WriteByte('(')
			if i == len(path)-1 && disambiguator > 0 {
				sb.WriteString("+" + strconv.Itoa(disambiguator))
			}
			sb.WriteString(").")
		case descMacro:
			sb.WriteByte('!')
		default:
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// descriptor picks the suffix for the last segment of path given its kind.
// Intermediate segments missing from the listing are treated as modules.
func (b symbolBuilder) descriptor(path []string, kind string) descriptorSuffix {
	switch {
	case kind == "" || kind == "mod":
		return descNamespace
	case isTypeKind(kind):
		return descType
	case kind == "fn":
		if isTypeKind(b.parentKind(path)) {
			return descMethod
		}
		return descTerm
	case kind == "macro" || kind == "proc macro":
		return descMacro
	default:
		return descTerm
	}
}

func (b symbolBuilder) parentKind(path []string) string {
	if len(path) < 2 {
		return ""
	}
	return b.kinds[strings.Join(path[:len(path)-1], "::")]
}

func isTypeKind(kind string) bool {
	switch kind {
	case "struct", "enum", "union", "trait", "unsafe trait", "trait alias",
		"type", "opaque type", "primitive type":
		return true
	}
	return false
}

// escapeName backtick-quotes names that are not plain identifiers.
func escapeName(name string) string {
	if name != "" && isSimpleIdentifier(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func isSimpleIdentifier(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '+' || r == '-' || r == '$':
		default:
			return false
		}
	}
	return true
}

// packageField escapes a package name or version; an empty one is ".".
func packageField(s string) string {
	if s == "" {
		return "."
	}
	return strings.ReplaceAll(s, " ", "  ")
}
