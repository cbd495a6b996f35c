package publicapi

import (
	"slices"

	"pubapi/internal/render"
	"pubapi/internal/rustdoc"
)

// entry is an item reached from the crate root together with the path it
// was reached through.
type entry struct {
	item *rustdoc.Item
	path []render.PathSegment
}

type walker struct {
	crate  *rustdoc.Crate
	opts   Options
	onPath map[rustdoc.Id]bool
	out    []entry
}

// collect walks the crate from its root module and returns every public
// item with its path, in walk order.
func collect(crate *rustdoc.Crate, opts Options) []entry {
	root, ok := crate.RootItem()
	if !ok {
		return nil
	}
	w := &walker{
		crate:  crate,
		opts:   opts,
		onPath: make(map[rustdoc.Id]bool),
	}
	w.walk(root, nil, nil)
	return w.out
}

// effectiveName is the name shown for an item in a path: an explicit
// override (the name a re-export gives it), else the item's own name, else
// the name of the import it is, else empty.
func effectiveName(item *rustdoc.Item, override *string) string {
	if override != nil {
		return *override
	}
	if item.Name != nil {
		return *item.Name
	}
	if imp, ok := item.Inner.(*rustdoc.Import); ok {
		return imp.Name
	}
	return ""
}

func (w *walker) walk(item *rustdoc.Item, name *string, parent []render.PathSegment) {
	if item == nil || !item.IsVisible() || w.onPath[item.ID] {
		return
	}
	w.onPath[item.ID] = true
	defer delete(w.onPath, item.ID)

	switch inner := item.Inner.(type) {
	case *rustdoc.Impl:
		w.walkImpl(inner, parent)
		return
	case *rustdoc.Import:
		if w.walkImport(item, inner, parent) {
			return
		}
	}

	path := append(slices.Clip(parent), render.PathSegment{
		Name: effectiveName(item, name),
		Kind: item.Inner.Kind(),
	})
	w.out = append(w.out, entry{item: item, path: path})

	for _, id := range children(item.Inner) {
		w.walkID(id, path)
	}
}

func (w *walker) walkID(id rustdoc.Id, parent []render.PathSegment) {
	if child, ok := w.crate.Item(id); ok {
		w.walk(child, nil, parent)
	}
}

// walkImpl lists the impl's items under the implementing type. Blanket and
// synthetic (auto trait) impls are skipped unless requested.
func (w *walker) walkImpl(impl *rustdoc.Impl, parent []render.PathSegment) {
	if !w.opts.WithBlanketImplementations && (impl.BlanketImpl != nil || impl.Synthetic) {
		return
	}
	for _, id := range impl.Items {
		w.walkID(id, parent)
	}
}

// walkImport follows a re-export to its target. It reports false when the
// target cannot be resolved, in which case the import is listed as itself.
func (w *walker) walkImport(item *rustdoc.Item, imp *rustdoc.Import, parent []render.PathSegment) bool {
	if imp.ID == nil {
		return false
	}
	target, ok := w.crate.Item(*imp.ID)
	if !ok {
		return false
	}
	if imp.Glob {
		mod, ok := target.Inner.(*rustdoc.Module)
		if !ok {
			return false
		}
		for _, id := range mod.Items {
			w.walkID(id, parent)
		}
		return true
	}
	name := imp.Name
	w.walk(target, &name, parent)
	return true
}

// children returns the ids listed below an item.
func children(inner rustdoc.ItemInner) []rustdoc.Id {
	switch inner := inner.(type) {
	case *rustdoc.Module:
		return inner.Items
	case *rustdoc.Struct:
		return concat(inner.Fields, inner.Impls)
	case *rustdoc.Union:
		return concat(inner.Fields, inner.Impls)
	case *rustdoc.Enum:
		return concat(inner.Variants, inner.Impls)
	case *rustdoc.Variant:
		if inner.VariantKind == rustdoc.VariantStruct {
			return inner.Fields
		}
	case *rustdoc.Trait:
		return inner.Items
	}
	return nil
}

func concat(a, b []rustdoc.Id) []rustdoc.Id {
	out := make([]rustdoc.Id, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
