// Package render turns rustdoc items into canonical token sequences.
//
// Rendering is a pure function of (index, item, path). The index is only
// consulted to name resolved paths that carry no name of their own; an id
// missing from the index renders as nothing rather than failing.
package render

import (
	"pubapi/internal/rustdoc"
	"pubapi/internal/tokens"
)

// PathSegment is one element of an item's path: the effective name shown
// for it and the kind of the item it names.
type PathSegment struct {
	Name string
	Kind rustdoc.ItemKind
}

var ws = tokens.Whitespace

// Item renders the `pub ...` declaration line for item reached through path.
// The last path segment names item itself.
func Item(idx rustdoc.Index, item *rustdoc.Item, path []PathSegment) []tokens.Token {
	r := renderer{idx: idx}
	return r.item(item, path)
}

// Type renders a type expression.
func Type(idx rustdoc.Index, t rustdoc.Type) []tokens.Token {
	r := renderer{idx: idx}
	return r.typ(t)
}

type renderer struct {
	idx rustdoc.Index
}

func (r renderer) item(item *rustdoc.Item, path []PathSegment) []tokens.Token {
	switch inner := item.Inner.(type) {
	case *rustdoc.Module:
		return simple(path, "mod")
	case *rustdoc.ExternCrate:
		return simple(path, "extern", "crate")
	case *rustdoc.Import:
		return simple(path, "use")
	case *rustdoc.Union:
		return simple(path, "union")
	case *rustdoc.Struct:
		return append(simple(path, "struct"), r.generics(inner.Generics)...)
	case *rustdoc.StructField:
		out := simple(path, "struct", "field")
		out = append(out, colon()...)
		return append(out, r.typ(inner.Type)...)
	case *rustdoc.Enum:
		return append(simple(path, "enum"), r.generics(inner.Generics)...)
	case *rustdoc.Variant:
		out := simple(path, "enum", "variant")
		// Struct variant fields are listed as items of their own.
		if inner.VariantKind == rustdoc.VariantTuple {
			out = append(out, r.tuple(r.variantTypes(inner))...)
		}
		return out
	case *rustdoc.Function:
		return r.function(renderPath(path), inner.Decl, inner.Generics, inner.Header)
	case *rustdoc.Method:
		return r.function(renderPath(path), inner.Decl, inner.Generics, inner.Header)
	case *rustdoc.Trait:
		var out []tokens.Token
		if inner.IsUnsafe {
			out = simple(path, "unsafe", "trait")
		} else {
			out = simple(path, "trait")
		}
		return append(out, r.generics(inner.Generics)...)
	case *rustdoc.TraitAlias:
		return simple(path, "trait", "alias")
	case *rustdoc.Impl:
		return simple(path, "impl")
	case *rustdoc.Typedef:
		out := simple(path, "type")
		out = append(out, r.generics(inner.Generics)...)
		out = append(out, equals()...)
		return append(out, r.typ(inner.Type)...)
	case *rustdoc.AssocType:
		out := simple(path, "type")
		out = append(out, r.generics(inner.Generics)...)
		if len(inner.Bounds) > 0 {
			out = append(out, colon()...)
			out = append(out, r.bounds(inner.Bounds)...)
		}
		if inner.Default != nil {
			out = append(out, equals()...)
			out = append(out, r.typ(inner.Default)...)
		}
		return out
	case *rustdoc.OpaqueTy:
		return simple(path, "opaque", "type")
	case *rustdoc.Constant:
		out := simple(path, "const")
		out = append(out, colon()...)
		return append(out, r.constant(*inner)...)
	case *rustdoc.AssocConst:
		out := simple(path, "const")
		out = append(out, colon()...)
		return append(out, r.typ(inner.Type)...)
	case *rustdoc.Static:
		var out []tokens.Token
		if inner.Mutable {
			out = simple(path, "mut", "static")
		} else {
			out = simple(path, "static")
		}
		out = append(out, colon()...)
		return append(out, r.typ(inner.Type)...)
	case *rustdoc.ForeignType:
		return simple(path, "type")
	case *rustdoc.Macro:
		return append(simple(path, "macro"), tokens.Symbol("!"))
	case *rustdoc.ProcMacro:
		return procMacro(item, inner, path)
	case *rustdoc.PrimitiveType:
		return simple(path, "primitive", "type")
	}
	return nil
}

// variantTypes returns the element types of a tuple variant. Newer rustdoc
// formats list field ids instead of types; those are looked up, and a
// stripped or missing field renders as `_`.
func (r renderer) variantTypes(v *rustdoc.Variant) []rustdoc.Type {
	if len(v.Tuple) > 0 || len(v.Fields) == 0 {
		return v.Tuple
	}
	types := make([]rustdoc.Type, 0, len(v.Fields))
	for _, id := range v.Fields {
		var t rustdoc.Type = rustdoc.Infer{}
		if r.idx != nil {
			if field, ok := r.idx.Item(id); ok {
				if sf, ok := field.Inner.(*rustdoc.StructField); ok {
					t = sf.Type
				}
			}
		}
		types = append(types, t)
	}
	return types
}

// procMacro drops the name token the path rendering ends with and rebuilds it
// inside the invocation syntax of the macro kind.
func procMacro(item *rustdoc.Item, inner *rustdoc.ProcMacro, path []PathSegment) []tokens.Token {
	out := simple(path, "proc", "macro")
	out = out[:len(out)-1]
	name := tokens.Identifier(item.NameOr(""))
	switch inner.MacroKind {
	case rustdoc.MacroAttr:
		return append(out, tokens.Symbol("#["), name, tokens.Symbol("]"))
	case rustdoc.MacroDerive:
		return append(out, tokens.Symbol("#[derive("), name, tokens.Symbol(")]"))
	default:
		return append(out, name, tokens.Symbol("!()"))
	}
}

// simple renders `pub <kind>... <path>`.
func simple(path []PathSegment, kinds ...string) []tokens.Token {
	out := make([]tokens.Token, 0, 2+2*len(kinds)+2*len(path))
	out = append(out, tokens.Qualifier("pub"), ws)
	for _, k := range kinds {
		out = append(out, tokens.Kind(k), ws)
	}
	return append(out, renderPath(path)...)
}

func renderPath(path []PathSegment) []tokens.Token {
	var out []tokens.Token
	for i, seg := range path {
		if i > 0 {
			out = append(out, tokens.Symbol("::"))
		}
		out = append(out, segmentToken(seg))
	}
	return out
}

func segmentToken(seg PathSegment) tokens.Token {
	switch seg.Kind {
	case rustdoc.KindFunction, rustdoc.KindMethod:
		return tokens.Function(seg.Name)
	case rustdoc.KindTrait, rustdoc.KindStruct, rustdoc.KindUnion, rustdoc.KindEnum, rustdoc.KindTypedef:
		return tokens.Type(seg.Name)
	default:
		return tokens.Identifier(seg.Name)
	}
}

func (r renderer) function(name []tokens.Token, decl rustdoc.FnDecl, g rustdoc.Generics, h rustdoc.Header) []tokens.Token {
	out := []tokens.Token{tokens.Qualifier("pub"), ws}
	if h.Unsafe {
		out = append(out, tokens.Qualifier("unsafe"), ws)
	}
	if h.Const {
		out = append(out, tokens.Qualifier("const"), ws)
	}
	if h.Async {
		out = append(out, tokens.Qualifier("async"), ws)
	}
	if !h.Abi.IsDefault() {
		out = append(out, tokens.Qualifier(abiName(h.Abi)), ws)
	}
	out = append(out, tokens.Kind("fn"), ws)
	out = append(out, name...)
	out = append(out, r.paramDefs(g.Params)...)
	out = append(out, r.fnDecl(decl)...)
	return append(out, r.wherePredicates(g.WherePredicates)...)
}

func abiName(a rustdoc.Abi) string {
	switch a.Kind {
	case rustdoc.AbiC:
		return "c"
	case rustdoc.AbiCdecl:
		return "cdecl"
	case rustdoc.AbiStdcall:
		return "stdcall"
	case rustdoc.AbiFastcall:
		return "fastcall"
	case rustdoc.AbiAapcs:
		return "aapcs"
	case rustdoc.AbiWin64:
		return "win64"
	case rustdoc.AbiSysV64:
		return "sysV64"
	case rustdoc.AbiSystem:
		return "system"
	default:
		return a.Other
	}
}

func (r renderer) fnDecl(decl rustdoc.FnDecl) []tokens.Token {
	out := sequence(sym("("), sym(")"), comma(), false, decl.Inputs, r.param)
	if decl.Output != nil {
		out = append(out, arrow()...)
		out = append(out, r.typ(decl.Output)...)
	}
	return out
}

func (r renderer) param(p rustdoc.Param) []tokens.Token {
	if out, ok := simplifiedSelf(p); ok {
		return out
	}
	var out []tokens.Token
	if p.Name != "_" {
		out = append(out, tokens.Identifier(p.Name), tokens.Symbol(":"), ws)
	}
	return append(out, r.typ(p.Type)...)
}

// simplifiedSelf renders `self: Self`, `self: &Self` and `self: &mut Self`
// as the receiver shorthand. Any other name or type is left alone.
func simplifiedSelf(p rustdoc.Param) ([]tokens.Token, bool) {
	if p.Name != "self" {
		return nil, false
	}
	switch t := p.Type.(type) {
	case rustdoc.Generic:
		if t == "Self" {
			return []tokens.Token{tokens.Self("self")}, true
		}
	case *rustdoc.BorrowedRef:
		if g, ok := t.Type.(rustdoc.Generic); ok && g == "Self" {
			out := []tokens.Token{tokens.Symbol("&")}
			if t.Lifetime != nil {
				out = append(out, tokens.Lifetime(*t.Lifetime), ws)
			}
			if t.Mutable {
				out = append(out, tokens.Keyword("mut"), ws)
			}
			return append(out, tokens.Self("self")), true
		}
	}
	return nil, false
}

func (r renderer) tuple(types []rustdoc.Type) []tokens.Token {
	return sequence(sym("("), sym(")"), comma(), false, types, r.typ)
}

func (r renderer) constant(c rustdoc.Constant) []tokens.Token {
	out := r.typ(c.Type)
	if c.Value != nil {
		out = append(out, equals()...)
		if c.IsLiteral {
			out = append(out, tokens.Primitive(*c.Value))
		} else {
			out = append(out, tokens.Identifier(*c.Value))
		}
	}
	return out
}

// sequence renders each element followed by between, drops the trailing
// separator and wraps the result in start and end. When emptyIfNone is set
// and nothing was rendered, start and end are omitted too.
func sequence[T any](start, end, between []tokens.Token, emptyIfNone bool, elems []T, render func(T) []tokens.Token) []tokens.Token {
	out := append([]tokens.Token(nil), start...)
	for i, e := range elems {
		if i > 0 {
			out = append(out, between...)
		}
		out = append(out, render(e)...)
	}
	if emptyIfNone && len(out) == len(start) {
		return nil
	}
	return append(out, end...)
}

func sym(s string) []tokens.Token { return []tokens.Token{tokens.Symbol(s)} }

func plus() []tokens.Token   { return []tokens.Token{ws, tokens.Symbol("+"), ws} }
func colon() []tokens.Token  { return []tokens.Token{tokens.Symbol(":"), ws} }
func comma() []tokens.Token  { return []tokens.Token{tokens.Symbol(","), ws} }
func equals() []tokens.Token { return []tokens.Token{ws, tokens.Symbol("="), ws} }
func arrow() []tokens.Token  { return []tokens.Token{ws, tokens.Symbol("->"), ws} }
