package render

import (
	"strings"

	"pubapi/internal/rustdoc"
	"pubapi/internal/tokens"
)

func (r renderer) typ(t rustdoc.Type) []tokens.Token {
	switch t := t.(type) {
	case *rustdoc.ResolvedPath:
		return r.resolvedPath(t)
	case rustdoc.Generic:
		return []tokens.Token{tokens.Generic(string(t))}
	case rustdoc.Primitive:
		return []tokens.Token{tokens.Primitive(string(t))}
	case *rustdoc.FunctionPointer:
		out := r.hrtb(t.GenericParams)
		out = append(out, tokens.Kind("fn"))
		return append(out, r.fnDecl(t.Decl)...)
	case rustdoc.Tuple:
		return r.tuple(t)
	case *rustdoc.Slice:
		out := sym("[")
		out = append(out, r.typ(t.Type)...)
		return append(out, tokens.Symbol("]"))
	case *rustdoc.Array:
		out := sym("[")
		out = append(out, r.typ(t.Type)...)
		return append(out, tokens.Symbol(";"), ws, tokens.Primitive(t.Len), tokens.Symbol("]"))
	case rustdoc.ImplTrait:
		out := []tokens.Token{tokens.Keyword("impl"), ws}
		return append(out, r.bounds(t)...)
	case rustdoc.Infer:
		return sym("_")
	case *rustdoc.RawPointer:
		qual := "const"
		if t.Mutable {
			qual = "mut"
		}
		out := []tokens.Token{tokens.Symbol("*"), tokens.Keyword(qual), ws}
		return append(out, r.typ(t.Type)...)
	case *rustdoc.BorrowedRef:
		out := sym("&")
		if t.Lifetime != nil {
			out = append(out, tokens.Lifetime(*t.Lifetime), ws)
		}
		if t.Mutable {
			out = append(out, tokens.Keyword("mut"), ws)
		}
		return append(out, r.typ(t.Type)...)
	case *rustdoc.QualifiedPath:
		out := sym("<")
		out = append(out, r.typ(t.SelfType)...)
		out = append(out, ws, tokens.Keyword("as"), ws)
		out = append(out, r.typ(t.Trait)...)
		return append(out, tokens.Symbol(">::"), tokens.Identifier(t.Name))
	}
	return nil
}

// resolvedPath renders a named path. Every segment but the last is an
// identifier, except a leading $crate; the last segment is the type name.
// An empty name falls back to the name stored in the index under the id.
func (r renderer) resolvedPath(p *rustdoc.ResolvedPath) []tokens.Token {
	var out []tokens.Token
	if p.Name == "" {
		out = r.id(p.ID)
	} else {
		parts := strings.Split(p.Name, "::")
		for i, part := range parts {
			if i > 0 {
				out = append(out, tokens.Symbol("::"))
			}
			switch {
			case i == 0 && part == "$crate":
				out = append(out, tokens.Identifier(part))
			case i == len(parts)-1:
				out = append(out, tokens.Type(part))
			default:
				out = append(out, tokens.Identifier(part))
			}
		}
		if p.Args != nil {
			out = append(out, r.genericArgs(p.Args)...)
		}
	}
	if len(p.ParamNames) > 0 {
		out = append(out, plus()...)
		out = append(out, r.bounds(p.ParamNames)...)
	}
	return out
}

func (r renderer) id(id rustdoc.Id) []tokens.Token {
	if r.idx == nil {
		return nil
	}
	item, ok := r.idx.Item(id)
	if !ok || item.Name == nil {
		return nil
	}
	return []tokens.Token{tokens.Identifier(*item.Name)}
}

// angleArg is either a positional generic argument or an associated item
// binding; both share one angle-bracketed list.
type angleArg struct {
	arg     rustdoc.GenericArg
	binding *rustdoc.TypeBinding
}

func (r renderer) genericArgs(args rustdoc.GenericArgs) []tokens.Token {
	switch a := args.(type) {
	case *rustdoc.AngleBracketed:
		all := make([]angleArg, 0, len(a.Args)+len(a.Bindings))
		for _, arg := range a.Args {
			all = append(all, angleArg{arg: arg})
		}
		for i := range a.Bindings {
			all = append(all, angleArg{binding: &a.Bindings[i]})
		}
		return sequence(sym("<"), sym(">"), comma(), true, all, r.angleArg)
	case *rustdoc.Parenthesized:
		out := sequence(sym("("), sym(")"), comma(), false, a.Inputs, r.typ)
		if a.Output != nil {
			out = append(out, arrow()...)
			out = append(out, r.typ(a.Output)...)
		}
		return out
	}
	return nil
}

func (r renderer) angleArg(a angleArg) []tokens.Token {
	if a.binding == nil {
		return r.genericArg(a.arg)
	}
	b := a.binding
	out := []tokens.Token{tokens.Identifier(b.Name)}
	if b.Args != nil {
		out = append(out, r.genericArgs(b.Args)...)
	}
	if b.IsEquality {
		out = append(out, equals()...)
		return append(out, r.term(b.Equality)...)
	}
	if len(b.Constraint) > 0 {
		out = append(out, colon()...)
		out = append(out, r.bounds(b.Constraint)...)
	}
	return out
}

func (r renderer) genericArg(arg rustdoc.GenericArg) []tokens.Token {
	switch a := arg.(type) {
	case rustdoc.LifetimeArg:
		return []tokens.Token{tokens.Lifetime(string(a))}
	case rustdoc.TypeArg:
		return r.typ(a.Type)
	case rustdoc.ConstArg:
		return r.constant(a.Constant)
	case rustdoc.InferArg:
		return sym("_")
	}
	return nil
}

func (r renderer) term(t rustdoc.Term) []tokens.Token {
	switch t := t.(type) {
	case rustdoc.TypeTerm:
		return r.typ(t.Type)
	case rustdoc.ConstantTerm:
		return r.constant(t.Constant)
	}
	return nil
}

func (r renderer) bounds(bounds []rustdoc.GenericBound) []tokens.Token {
	return sequence(nil, nil, plus(), true, bounds, r.bound)
}

func (r renderer) bound(b rustdoc.GenericBound) []tokens.Token {
	switch b := b.(type) {
	case *rustdoc.TraitBound:
		out := r.hrtb(b.GenericParams)
		switch b.Modifier {
		case rustdoc.ModifierMaybe:
			out = append(out, tokens.Symbol("?"))
		case rustdoc.ModifierMaybeConst:
			out = append(out, tokens.Symbol("~"), tokens.Keyword("const"), ws)
		}
		return append(out, r.typ(b.Trait)...)
	case rustdoc.Outlives:
		return []tokens.Token{tokens.Lifetime(string(b))}
	}
	return nil
}

// hrtb renders `for<...> ` for bound-scoped parameters, or nothing.
func (r renderer) hrtb(params []rustdoc.GenericParamDef) []tokens.Token {
	if len(params) == 0 {
		return nil
	}
	out := []tokens.Token{tokens.Keyword("for")}
	out = append(out, r.paramDefs(params)...)
	return append(out, ws)
}

func (r renderer) generics(g rustdoc.Generics) []tokens.Token {
	out := r.paramDefs(g.Params)
	return append(out, r.wherePredicates(g.WherePredicates)...)
}

// paramDefs renders `<...>` without compiler-injected parameters.
func (r renderer) paramDefs(params []rustdoc.GenericParamDef) []tokens.Token {
	visible := make([]rustdoc.GenericParamDef, 0, len(params))
	for _, p := range params {
		if tp, ok := p.Kind.(*rustdoc.TypeParam); ok && tp.Synthetic {
			continue
		}
		visible = append(visible, p)
	}
	if len(visible) == 0 {
		return nil
	}
	return sequence(sym("<"), sym(">"), comma(), true, visible, r.paramDef)
}

func (r renderer) paramDef(p rustdoc.GenericParamDef) []tokens.Token {
	switch k := p.Kind.(type) {
	case *rustdoc.LifetimeParam:
		out := []tokens.Token{tokens.Lifetime(p.Name)}
		if len(k.Outlives) > 0 {
			out = append(out, colon()...)
			out = append(out, sequence(nil, nil, plus(), true, k.Outlives, lifetime)...)
		}
		return out
	case *rustdoc.TypeParam:
		out := []tokens.Token{tokens.Generic(p.Name)}
		if len(k.Bounds) > 0 {
			out = append(out, colon()...)
			out = append(out, r.bounds(k.Bounds)...)
		}
		return out
	case *rustdoc.ConstParam:
		out := []tokens.Token{tokens.Qualifier("const"), ws, tokens.Identifier(p.Name)}
		out = append(out, colon()...)
		return append(out, r.typ(k.Type)...)
	}
	return nil
}

func lifetime(s string) []tokens.Token {
	return []tokens.Token{tokens.Lifetime(s)}
}

// wherePredicates renders ` where p1, p2`, or nothing for an empty list.
func (r renderer) wherePredicates(preds []rustdoc.WherePredicate) []tokens.Token {
	if len(preds) == 0 {
		return nil
	}
	out := []tokens.Token{ws, tokens.Keyword("where"), ws}
	return append(out, sequence(nil, nil, comma(), true, preds, r.wherePredicate)...)
}

func (r renderer) wherePredicate(p rustdoc.WherePredicate) []tokens.Token {
	switch p := p.(type) {
	case *rustdoc.BoundPredicate:
		out := r.hrtb(p.GenericParams)
		out = append(out, r.typ(p.Type)...)
		out = append(out, colon()...)
		return append(out, r.bounds(p.Bounds)...)
	case *rustdoc.RegionPredicate:
		out := []tokens.Token{tokens.Lifetime(p.Lifetime)}
		if len(p.Bounds) > 0 {
			out = append(out, colon()...)
			out = append(out, r.bounds(p.Bounds)...)
		}
		return out
	case *rustdoc.EqPredicate:
		out := r.typ(p.LHS)
		out = append(out, equals()...)
		return append(out, r.term(p.RHS)...)
	}
	return nil
}
