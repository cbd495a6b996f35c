package export

import (
	"fmt"
	"slices"
	"strings"

	"pubapi/internal/publicapi"
)

// ModuleOutline is one module of a listing and the items declared directly
// in it.
type ModuleOutline struct {
	Path   string         `json:"path" yaml:"path"`
	ByKind map[string]int `json:"byKind" yaml:"byKind"`
	Items  []string       `json:"items" yaml:"items"`
}

// Outline groups a listing by module.
type Outline struct {
	Crate   string          `json:"crate" yaml:"crate"`
	Modules []ModuleOutline `json:"modules" yaml:"modules"`
	Total   int             `json:"total" yaml:"total"`
}

// BuildOutline assigns every item to the nearest enclosing module. A module
// item belongs to its own module entry. Items under no listed module are
// grouped under their first path segment.
func BuildOutline(crate string, items []publicapi.PublicItem) *Outline {
	modules := map[string]bool{}
	for _, item := range items {
		if item.Kind() == "mod" {
			modules[item.PathString()] = true
		}
	}

	byPath := map[string]*ModuleOutline{}
	for _, item := range items {
		mod := enclosingModule(item, modules)
		m, ok := byPath[mod]
		if !ok {
			m = &ModuleOutline{Path: mod, ByKind: map[string]int{}, Items: []string{}}
			byPath[mod] = m
		}
		m.ByKind[item.Kind()]++
		m.Items = append(m.Items, item.String())
	}

	out := &Outline{Crate: crate, Modules: make([]ModuleOutline, 0, len(byPath)), Total: len(items)}
	for _, m := range byPath {
		out.Modules = append(out.Modules, *m)
	}
	slices.SortFunc(out.Modules, func(a, b ModuleOutline) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

func enclosingModule(item publicapi.PublicItem, modules map[string]bool) string {
	for n := len(item.Path); n > 0; n-- {
		p := strings.Join(item.Path[:n], "::")
		if modules[p] {
			return p
		}
	}
	if len(item.Path) > 0 {
		return item.Path[0]
	}
	return ""
}

// FormatOutline renders an outline as markdown: a module table followed by
// each module's items.
func FormatOutline(o *Outline) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Public API of %s\n\n", o.Crate)

	sb.WriteString("## Module Map\n\n")
	sb.WriteString("| Module | Items | Kinds |\n")
	sb.WriteString("|--------|-------|-------|\n")
	for _, mod := range o.Modules {
		fmt.Fprintf(&sb, "| %s | %d | %s |\n", mod.Path, len(mod.Items), formatKinds(mod.ByKind))
	}
	sb.WriteString("\n")

	sb.WriteString("## Module Details\n\n")
	for _, mod := range o.Modules {
		fmt.Fprintf(&sb, "### %s\n\n", mod.Path)
		for _, item := range mod.Items {
			fmt.Fprintf(&sb, "    %s\n", item)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "Total: %d modules, %d items\n", len(o.Modules), o.Total)
	return sb.String()
}

func formatKinds(byKind map[string]int) string {
	kinds := make([]string, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s=%d", k, byKind[k])
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
