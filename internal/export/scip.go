// Package export writes public API listings in formats other tools read:
// a SCIP index and a module-grouped text outline.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"pubapi/internal/errors"
	"pubapi/internal/paths"
	"pubapi/internal/publicapi"
	"pubapi/internal/version"
)

const (
	// SymbolScheme is the scheme of every exported symbol.
	SymbolScheme = "rustdoc"
	// PackageManager is the package manager named in exported symbols.
	PackageManager = "cargo"
	// Language is the document language of exported indexes.
	Language = "rust"
)

// SCIPOptions names the crate and where its listing came from.
type SCIPOptions struct {
	Crate   string
	Version string
	// Source is the rustdoc JSON the listing was built from. It becomes the
	// document path, relative to RepoRoot.
	Source   string
	RepoRoot string
	// Arguments are recorded in the index tool info.
	Arguments []string
}

// BuildSCIP converts a listing into a SCIP index with one document holding
// one symbol per public item. Each symbol carries the rendered declaration
// as its signature.
func BuildSCIP(items []publicapi.PublicItem, opts SCIPOptions) (*scippb.Index, error) {
	if opts.Crate == "" {
		return nil, errors.New(errors.InternalError, "SCIP export needs a crate name", nil)
	}

	relPath := filepath.Base(opts.Source)
	if opts.Source != "" && opts.RepoRoot != "" && paths.IsWithinRepo(opts.Source, opts.RepoRoot) {
		if rel, err := paths.CanonicalizePath(opts.Source, opts.RepoRoot); err == nil {
			relPath = rel
		}
	}

	kinds := make(map[string]string, len(items))
	for _, item := range items {
		if _, ok := kinds[item.PathString()]; !ok {
			kinds[item.PathString()] = item.Kind()
		}
	}

	b := symbolBuilder{crate: opts.Crate, version: opts.Version, kinds: kinds}
	doc := &scippb.Document{
		Language:     Language,
		RelativePath: relPath,
		Symbols:      make([]*scippb.SymbolInformation, 0, len(items)),
	}

	seen := make(map[string]*scippb.SymbolInformation, len(items))
	methods := make(map[string]int)
	for _, item := range items {
		kind := item.Kind()
		sym := b.symbol(item.Path, kind)
		if d := b.descriptor(item.Path, kind); d == descMethod {
			n := methods[sym]
			methods[sym]++
			if n > 0 {
				sym = b.symbolWithDisambiguator(item.Path, n)
			}
		}

		if prev, ok := seen[sym]; ok {
			prev.Documentation = append(prev.Documentation, item.String())
			continue
		}

		info := &scippb.SymbolInformation{
			Symbol:      sym,
			Kind:        symbolKind(kind, b.parentKind(item.Path)),
			DisplayName: lastSegment(item.Path),
			SignatureDocumentation: &scippb.Document{
				Language: Language,
				Text:     item.String(),
			},
		}
		if len(item.Path) > 1 {
			parent := item.Path[:len(item.Path)-1]
			if pk, ok := kinds[strings.Join(parent, "::")]; ok {
				info.EnclosingSymbol = b.symbol(parent, pk)
			}
		}
		seen[sym] = info
		doc.Symbols = append(doc.Symbols, info)
	}

	return &scippb.Index{
		Metadata: &scippb.Metadata{
			Version: scippb.ProtocolVersion_UnspecifiedProtocolVersion,
			ToolInfo: &scippb.ToolInfo{
				Name:      "pubapi",
				Version:   version.Version,
				Arguments: opts.Arguments,
			},
			ProjectRoot:          projectRoot(opts.RepoRoot),
			TextDocumentEncoding: scippb.TextEncoding_UTF8,
		},
		Documents: []*scippb.Document{doc},
	}, nil
}

func projectRoot(repoRoot string) string {
	if repoRoot == "" {
		return ""
	}
	abs, err := filepath.Abs(repoRoot)
	if err != nil {
		return ""
	}
	return "file://" + filepath.ToSlash(abs)
}

// WriteSCIP serializes index to path.
func WriteSCIP(path string, index *scippb.Index) error {
	data, err := proto.Marshal(index)
	if err != nil {
		return errors.New(errors.InternalError, "failed to encode SCIP index", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.New(errors.InternalError, fmt.Sprintf("failed to create %s", dir), err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(errors.InternalError, fmt.Sprintf("failed to write SCIP index to %s", path), err)
	}
	return nil
}

// ReadSCIP loads an index written by WriteSCIP.
func ReadSCIP(path string) (*scippb.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.InputNotFound, fmt.Sprintf("failed to read SCIP index from %s", path), err)
	}
	var index scippb.Index
	if err := proto.Unmarshal(data, &index); err != nil {
		return nil, errors.New(errors.InternalError, fmt.Sprintf("failed to parse SCIP index from %s", path), err)
	}
	return &index, nil
}

func lastSegment(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}

func symbolKind(kind, parentKind string) scippb.SymbolInformation_Kind {
	switch kind {
	case "mod":
		return scippb.SymbolInformation_Module
	case "struct":
		return scippb.SymbolInformation_Struct
	case "union":
		return scippb.SymbolInformation_Union
	case "enum":
		return scippb.SymbolInformation_Enum
	case "enum variant":
		return scippb.SymbolInformation_EnumMember
	case "struct field":
		return scippb.SymbolInformation_Field
	case "trait", "unsafe trait", "trait alias":
		return scippb.SymbolInformation_Trait
	case "type", "opaque type":
		return scippb.SymbolInformation_TypeAlias
	case "fn":
		if isTypeKind(parentKind) {
			return scippb.SymbolInformation_Method
		}
		return scippb.SymbolInformation_Function
	case "const":
		return scippb.SymbolInformation_Constant
	case "static", "mut static":
		return scippb.SymbolInformation_Variable
	case "macro", "proc macro":
		return scippb.SymbolInformation_Macro
	default:
		return scippb.SymbolInformation_UnspecifiedKind
	}
}
