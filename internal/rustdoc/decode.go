package rustdoc

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"golang.org/x/crypto/blake2b"

	"pubapi/internal/errors"
)

// Load reads and decodes a rustdoc JSON file.
func Load(path string) (*Crate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.InputNotFound, fmt.Sprintf("rustdoc JSON not found: %s", path), err)
		}
		return nil, errors.New(errors.InputNotFound, fmt.Sprintf("cannot read %s", path), err)
	}
	return Parse(data)
}

// Parse decodes a rustdoc JSON document. Every failure is a
// *errors.PubapiError with code InputMalformed.
func Parse(data []byte) (*Crate, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New(errors.InputMalformed, "input is not valid JSON", nil)
	}
	doc := gjson.ParseBytes(data)

	root := doc.Get("root")
	if !root.Exists() {
		return nil, errors.New(errors.InputMalformed, "missing field: root", nil)
	}
	index := doc.Get("index")
	if !index.IsObject() {
		return nil, errors.New(errors.InputMalformed, "missing or invalid field: index", nil)
	}

	sum := blake2b.Sum256(data)
	crate := &Crate{
		Root:            Id(root.String()),
		CrateVersion:    doc.Get("crate_version").String(),
		IncludesPrivate: doc.Get("includes_private").Bool(),
		FormatVersion:   int(doc.Get("format_version").Int()),
		Index:           make(map[Id]*Item, 256),
		Digest:          hex.EncodeToString(sum[:]),
	}

	d := &decoder{}
	index.ForEach(func(key, value gjson.Result) bool {
		d.at = key.String()
		item := d.item(value)
		if d.err != nil {
			return false
		}
		if item.ID == "" {
			item.ID = Id(key.String())
		}
		crate.Index[Id(key.String())] = item
		return true
	})
	if d.err != nil {
		return nil, d.err
	}
	if _, ok := crate.Index[crate.Root]; !ok {
		return nil, errors.New(errors.InputMalformed, fmt.Sprintf("root item %s is not in the index", crate.Root), nil)
	}
	return crate, nil
}

// decoder keeps the first error it sees; later calls become no-ops that
// return zero values.
type decoder struct {
	at  string
	err error
}

func (d *decoder) fail(format string, args ...interface{}) {
	if d.err != nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	d.err = errors.New(errors.InputMalformed, fmt.Sprintf("item %s: %s", d.at, msg), nil).
		WithDetails(map[string]string{"item": d.at})
}

// variant splits a tagged union value. rustdoc has used two encodings:
// adjacently tagged ({"kind": tag, "inner": payload}) and externally tagged
// ({tag: payload}). A bare string is a unit variant.
func variant(r gjson.Result) (string, gjson.Result) {
	switch {
	case r.Type == gjson.String:
		return r.String(), gjson.Result{}
	case !r.IsObject():
		return "", gjson.Result{}
	}
	fields := r.Map()
	if kind, ok := fields["kind"]; ok && kind.Type == gjson.String {
		if _, hasInner := fields["inner"]; (hasInner && len(fields) == 2) || len(fields) == 1 {
			return kind.String(), fields["inner"]
		}
	}
	if len(fields) != 1 {
		return "", gjson.Result{}
	}
	for tag, payload := range fields {
		return tag, payload
	}
	return "", gjson.Result{}
}

func optString(r gjson.Result) *string {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	s := r.String()
	return &s
}

func ids(r gjson.Result) []Id {
	arr := r.Array()
	if len(arr) == 0 {
		return nil
	}
	out := make([]Id, 0, len(arr))
	for _, v := range arr {
		out = append(out, Id(v.String()))
	}
	return out
}

func strs(r gjson.Result) []string {
	arr := r.Array()
	if len(arr) == 0 {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		out = append(out, v.String())
	}
	return out
}

func (d *decoder) item(r gjson.Result) *Item {
	item := &Item{
		ID:         Id(r.Get("id").String()),
		CrateID:    int(r.Get("crate_id").Int()),
		Name:       optString(r.Get("name")),
		Visibility: visibility(r.Get("visibility")),
	}

	var tag string
	var payload gjson.Result
	if kind := r.Get("kind"); kind.Type == gjson.String {
		tag, payload = kind.String(), r.Get("inner")
	} else {
		tag, payload = variant(r.Get("inner"))
	}
	item.Inner = d.itemInner(tag, payload)
	return item
}

func visibility(r gjson.Result) string {
	if r.Type == gjson.String {
		return r.String()
	}
	if r.IsObject() && r.Get("restricted").Exists() {
		return VisibilityRestricted
	}
	return VisibilityCrate
}

func (d *decoder) itemInner(tag string, r gjson.Result) ItemInner {
	switch ItemKind(tag) {
	case KindModule:
		return &Module{
			IsCrate:    r.Get("is_crate").Bool(),
			Items:      ids(r.Get("items")),
			IsStripped: r.Get("is_stripped").Bool(),
		}
	case KindExternCrate:
		return &ExternCrate{Name: r.Get("name").String(), Rename: optString(r.Get("rename"))}
	case KindImport, "use":
		imp := &Import{
			Source: r.Get("source").String(),
			Name:   r.Get("name").String(),
			Glob:   r.Get("glob").Bool() || r.Get("is_glob").Bool(),
		}
		if id := r.Get("id"); id.Exists() && id.Type != gjson.Null {
			v := Id(id.String())
			imp.ID = &v
		}
		return imp
	case KindUnion:
		return &Union{
			Generics: d.generics(r.Get("generics")),
			Fields:   ids(r.Get("fields")),
			Impls:    ids(r.Get("impls")),
		}
	case KindStruct:
		return d.structInner(r)
	case KindStructField:
		return &StructField{Type: d.typ(r)}
	case KindEnum:
		return &Enum{
			Generics: d.generics(r.Get("generics")),
			Variants: ids(r.Get("variants")),
			Impls:    ids(r.Get("impls")),
		}
	case KindVariant:
		return d.variantInner(r)
	case KindFunction:
		return &Function{
			Decl:     d.fnDecl(firstOf(r, "decl", "sig")),
			Generics: d.generics(r.Get("generics")),
			Header:   d.header(r.Get("header")),
		}
	case KindMethod:
		return &Method{
			Decl:     d.fnDecl(r.Get("decl")),
			Generics: d.generics(r.Get("generics")),
			Header:   d.header(r.Get("header")),
			HasBody:  r.Get("has_body").Bool(),
		}
	case KindTrait:
		return &Trait{
			IsAuto:   r.Get("is_auto").Bool(),
			IsUnsafe: r.Get("is_unsafe").Bool(),
			Items:    ids(r.Get("items")),
			Generics: d.generics(r.Get("generics")),
			Bounds:   d.bounds(r.Get("bounds")),
		}
	case KindTraitAlias:
		return &TraitAlias{Generics: d.generics(r.Get("generics")), Params: d.bounds(r.Get("params"))}
	case KindImpl:
		return &Impl{
			IsUnsafe:    r.Get("is_unsafe").Bool(),
			Generics:    d.generics(r.Get("generics")),
			Trait:       d.optPathOrType(r.Get("trait")),
			For:         d.typ(r.Get("for")),
			Items:       ids(r.Get("items")),
			Negative:    r.Get("negative").Bool() || r.Get("is_negative").Bool(),
			Synthetic:   r.Get("synthetic").Bool() || r.Get("is_synthetic").Bool(),
			BlanketImpl: d.optType(r.Get("blanket_impl")),
		}
	case KindTypedef, "type_alias":
		return &Typedef{Type: d.typ(r.Get("type")), Generics: d.generics(r.Get("generics"))}
	case KindAssocType:
		return &AssocType{
			Generics: d.generics(r.Get("generics")),
			Bounds:   d.bounds(r.Get("bounds")),
			Default:  d.optType(firstOf(r, "default", "type")),
		}
	case KindOpaqueTy:
		return &OpaqueTy{Bounds: d.bounds(r.Get("bounds")), Generics: d.generics(r.Get("generics"))}
	case KindConstant:
		if c := r.Get("const"); c.Exists() {
			v := d.constant(c)
			v.Type = d.typ(r.Get("type"))
			return &v
		}
		v := d.constant(r)
		return &v
	case KindAssocConst:
		return &AssocConst{Type: d.typ(r.Get("type")), Default: optString(firstOf(r, "default", "value"))}
	case KindStatic:
		return &Static{
			Type:    d.typ(r.Get("type")),
			Mutable: r.Get("mutable").Bool() || r.Get("is_mutable").Bool(),
			Expr:    r.Get("expr").String(),
		}
	case KindForeignType, "extern_type":
		return &ForeignType{}
	case KindMacro:
		return &Macro{Definition: r.String()}
	case KindProcMacro:
		return &ProcMacro{MacroKind: MacroKind(r.Get("kind").String()), Helpers: strs(r.Get("helpers"))}
	case KindPrimitiveType, "primitive":
		if r.Type == gjson.String {
			return &PrimitiveType{Name: r.String()}
		}
		return &PrimitiveType{Name: r.Get("name").String()}
	}
	d.fail("unknown item kind %q", tag)
	return &Module{}
}

func firstOf(r gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func (d *decoder) structInner(r gjson.Result) *Struct {
	s := &Struct{
		StructType: StructType(r.Get("struct_type").String()),
		Generics:   d.generics(r.Get("generics")),
		Fields:     ids(r.Get("fields")),
		Impls:      ids(r.Get("impls")),
	}
	// Newer formats nest the shape: {"kind": {"plain": {"fields": [...]}}}.
	if s.StructType == "" {
		tag, payload := variant(r.Get("kind"))
		switch StructType(tag) {
		case StructPlain:
			s.Fields = ids(payload.Get("fields"))
		case StructTuple:
			s.Fields = ids(payload)
		case StructUnit:
		default:
			d.fail("unknown struct kind %q", tag)
		}
		s.StructType = StructType(tag)
	}
	return s
}

func (d *decoder) variantInner(r gjson.Result) *Variant {
	var tag string
	var payload gjson.Result
	if vk := r.Get("variant_kind"); vk.Exists() {
		tag, payload = vk.String(), r.Get("variant_inner")
	} else if k := r.Get("kind"); k.Exists() && !r.Get("inner").Exists() {
		tag, payload = variant(k)
	} else {
		tag, payload = variant(r)
	}

	v := &Variant{VariantKind: VariantKind(tag)}
	switch v.VariantKind {
	case VariantPlain:
	case VariantTuple:
		for _, elem := range payload.Array() {
			// Newer formats list field ids instead of types, with null
			// for a stripped field.
			switch elem.Type {
			case gjson.String, gjson.Number:
				v.Fields = append(v.Fields, Id(elem.String()))
				continue
			case gjson.Null:
				v.Fields = append(v.Fields, Id(""))
				continue
			}
			v.Tuple = append(v.Tuple, d.typ(elem))
		}
	case VariantStruct:
		if payload.IsObject() {
			payload = payload.Get("fields")
		}
		v.Fields = ids(payload)
	default:
		d.fail("unknown variant kind %q", tag)
	}
	return v
}

func (d *decoder) fnDecl(r gjson.Result) FnDecl {
	decl := FnDecl{
		Output:    d.optType(r.Get("output")),
		CVariadic: r.Get("c_variadic").Bool() || r.Get("is_c_variadic").Bool(),
	}
	for _, in := range r.Get("inputs").Array() {
		pair := in.Array()
		if len(pair) != 2 {
			d.fail("function input is not a (name, type) pair")
			return decl
		}
		decl.Inputs = append(decl.Inputs, Param{Name: pair[0].String(), Type: d.typ(pair[1])})
	}
	return decl
}

func (d *decoder) header(r gjson.Result) Header {
	// Older formats encode the header as a list of qualifier names.
	if r.IsArray() {
		var h Header
		for _, q := range r.Array() {
			switch q.String() {
			case "const":
				h.Const = true
			case "unsafe":
				h.Unsafe = true
			case "async":
				h.Async = true
			}
		}
		return h
	}
	return Header{
		Const:  r.Get("const").Bool() || r.Get("is_const").Bool(),
		Unsafe: r.Get("unsafe").Bool() || r.Get("is_unsafe").Bool(),
		Async:  r.Get("async").Bool() || r.Get("is_async").Bool(),
		Abi:    d.abi(r.Get("abi")),
	}
}

func (d *decoder) abi(r gjson.Result) Abi {
	if !r.Exists() || r.Type == gjson.Null {
		return Abi{Kind: AbiRust}
	}
	tag, payload := variant(r)
	switch AbiKind(tag) {
	case AbiRust:
		return Abi{Kind: AbiRust}
	case AbiC, AbiCdecl, AbiStdcall, AbiFastcall, AbiAapcs, AbiWin64, AbiSysV64, AbiSystem:
		return Abi{Kind: AbiKind(tag), Unwind: payload.Get("unwind").Bool()}
	case AbiOther:
		return Abi{Kind: AbiOther, Other: payload.String()}
	}
	d.fail("unknown abi %q", tag)
	return Abi{Kind: AbiRust}
}

func (d *decoder) optType(r gjson.Result) Type {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	return d.typ(r)
}

// optPathOrType accepts either a Type or a bare path object, which newer
// formats use for trait references.
func (d *decoder) optPathOrType(r gjson.Result) Type {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	return d.pathOrType(r)
}

func (d *decoder) pathOrType(r gjson.Result) Type {
	if r.IsObject() && (r.Get("name").Exists() || r.Get("path").Exists()) && r.Get("id").Exists() {
		return d.resolvedPath(r)
	}
	return d.typ(r)
}

func (d *decoder) resolvedPath(r gjson.Result) *ResolvedPath {
	return &ResolvedPath{
		Name:       firstOf(r, "name", "path").String(),
		ID:         Id(r.Get("id").String()),
		Args:       d.genericArgs(r.Get("args")),
		ParamNames: d.bounds(r.Get("param_names")),
	}
}

func (d *decoder) typ(r gjson.Result) Type {
	if d.err != nil {
		return Infer{}
	}
	tag, payload := variant(r)
	switch TypeKind(tag) {
	case TypeResolvedPath:
		return d.resolvedPath(payload)
	case TypeGeneric:
		return Generic(payload.String())
	case TypePrimitive:
		return Primitive(payload.String())
	case TypeFunctionPointer:
		return &FunctionPointer{
			Decl:          d.fnDecl(firstOf(payload, "decl", "sig")),
			GenericParams: d.paramDefs(payload.Get("generic_params")),
			Header:        d.header(payload.Get("header")),
		}
	case TypeTuple:
		elems := payload.Array()
		t := make(Tuple, 0, len(elems))
		for _, e := range elems {
			t = append(t, d.typ(e))
		}
		return t
	case TypeSlice:
		return &Slice{Type: d.typ(payload)}
	case TypeArray:
		return &Array{Type: d.typ(payload.Get("type")), Len: payload.Get("len").String()}
	case TypeImplTrait:
		return ImplTrait(d.bounds(payload))
	case TypeInfer:
		return Infer{}
	case TypeRawPointer:
		return &RawPointer{
			Mutable: payload.Get("mutable").Bool() || payload.Get("is_mutable").Bool(),
			Type:    d.typ(payload.Get("type")),
		}
	case TypeBorrowedRef:
		return &BorrowedRef{
			Lifetime: optString(payload.Get("lifetime")),
			Mutable:  payload.Get("mutable").Bool() || payload.Get("is_mutable").Bool(),
			Type:     d.typ(payload.Get("type")),
		}
	case TypeQualifiedPath:
		return &QualifiedPath{
			Name:     payload.Get("name").String(),
			Args:     d.genericArgs(payload.Get("args")),
			SelfType: d.typ(payload.Get("self_type")),
			Trait:    d.optPathOrType(payload.Get("trait")),
		}
	case "dyn_trait":
		return d.dynTrait(payload)
	}
	d.fail("unknown type kind %q", tag)
	return Infer{}
}

// dynTrait folds `dyn A + B + 'a` into the older resolved-path shape: the
// first trait is the path, the rest become its extra bounds.
func (d *decoder) dynTrait(r gjson.Result) Type {
	traits := r.Get("traits").Array()
	if len(traits) == 0 {
		d.fail("dyn trait without traits")
		return Infer{}
	}
	first := d.resolvedPath(traits[0].Get("trait"))
	for _, extra := range traits[1:] {
		first.ParamNames = append(first.ParamNames, &TraitBound{
			Trait:         d.resolvedPath(extra.Get("trait")),
			GenericParams: d.paramDefs(extra.Get("generic_params")),
			Modifier:      ModifierNone,
		})
	}
	if lt := r.Get("lifetime"); lt.Type == gjson.String {
		first.ParamNames = append(first.ParamNames, Outlives(lt.String()))
	}
	return first
}

func (d *decoder) genericArgs(r gjson.Result) GenericArgs {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	tag, payload := variant(r)
	switch tag {
	case "angle_bracketed":
		ab := &AngleBracketed{}
		for _, a := range payload.Get("args").Array() {
			ab.Args = append(ab.Args, d.genericArg(a))
		}
		for _, b := range firstOf(payload, "bindings", "constraints").Array() {
			ab.Bindings = append(ab.Bindings, d.binding(b))
		}
		return ab
	case "parenthesized":
		p := &Parenthesized{Output: d.optType(payload.Get("output"))}
		for _, in := range payload.Get("inputs").Array() {
			p.Inputs = append(p.Inputs, d.typ(in))
		}
		return p
	}
	d.fail("unknown generic args %q", tag)
	return nil
}

func (d *decoder) genericArg(r gjson.Result) GenericArg {
	tag, payload := variant(r)
	switch tag {
	case "lifetime":
		return LifetimeArg(payload.String())
	case "type":
		return TypeArg{Type: d.typ(payload)}
	case "const":
		return ConstArg{Constant: d.constant(payload)}
	case "infer":
		return InferArg{}
	}
	d.fail("unknown generic arg %q", tag)
	return InferArg{}
}

func (d *decoder) binding(r gjson.Result) TypeBinding {
	b := TypeBinding{
		Name: r.Get("name").String(),
		Args: d.genericArgs(r.Get("args")),
	}
	tag, payload := variant(r.Get("binding"))
	switch tag {
	case "equality":
		b.IsEquality = true
		b.Equality = d.term(payload)
	case "constraint":
		b.Constraint = d.bounds(payload)
	default:
		d.fail("unknown type binding %q", tag)
	}
	return b
}

// term accepts a Term ({"type": T} or {"constant": C}) or, in older formats,
// a bare Type.
func (d *decoder) term(r gjson.Result) Term {
	tag, payload := variant(r)
	switch tag {
	case "type":
		return TypeTerm{Type: d.typ(payload)}
	case "constant":
		return ConstantTerm{Constant: d.constant(payload)}
	}
	return TypeTerm{Type: d.typ(r)}
}

func (d *decoder) constant(r gjson.Result) Constant {
	return Constant{
		Type:      d.optType(r.Get("type")),
		Expr:      r.Get("expr").String(),
		Value:     optString(r.Get("value")),
		IsLiteral: r.Get("is_literal").Bool(),
	}
}

func (d *decoder) bounds(r gjson.Result) []GenericBound {
	arr := r.Array()
	if len(arr) == 0 {
		return nil
	}
	out := make([]GenericBound, 0, len(arr))
	for _, b := range arr {
		out = append(out, d.bound(b))
	}
	return out
}

func (d *decoder) bound(r gjson.Result) GenericBound {
	tag, payload := variant(r)
	switch tag {
	case "trait_bound":
		modifier := TraitBoundModifier(payload.Get("modifier").String())
		if modifier == "" {
			modifier = ModifierNone
		}
		return &TraitBound{
			Trait:         d.pathOrType(payload.Get("trait")),
			GenericParams: d.paramDefs(payload.Get("generic_params")),
			Modifier:      modifier,
		}
	case "outlives":
		return Outlives(payload.String())
	}
	d.fail("unknown generic bound %q", tag)
	return Outlives("")
}

func (d *decoder) generics(r gjson.Result) Generics {
	g := Generics{Params: d.paramDefs(r.Get("params"))}
	for _, p := range r.Get("where_predicates").Array() {
		g.WherePredicates = append(g.WherePredicates, d.wherePredicate(p))
	}
	return g
}

func (d *decoder) paramDefs(r gjson.Result) []GenericParamDef {
	arr := r.Array()
	if len(arr) == 0 {
		return nil
	}
	out := make([]GenericParamDef, 0, len(arr))
	for _, p := range arr {
		out = append(out, GenericParamDef{Name: p.Get("name").String(), Kind: d.paramDefKind(p.Get("kind"))})
	}
	return out
}

func (d *decoder) paramDefKind(r gjson.Result) GenericParamDefKind {
	tag, payload := variant(r)
	switch tag {
	case "lifetime":
		return &LifetimeParam{Outlives: strs(payload.Get("outlives"))}
	case "type":
		return &TypeParam{
			Bounds:    d.bounds(payload.Get("bounds")),
			Default:   d.optType(payload.Get("default")),
			Synthetic: payload.Get("synthetic").Bool() || payload.Get("is_synthetic").Bool(),
		}
	case "const":
		// Older formats carry the const's type directly.
		if payload.Get("type").Exists() {
			return &ConstParam{Type: d.typ(payload.Get("type")), Default: optString(payload.Get("default"))}
		}
		return &ConstParam{Type: d.typ(payload)}
	}
	d.fail("unknown generic param kind %q", tag)
	return &LifetimeParam{}
}

func (d *decoder) wherePredicate(r gjson.Result) WherePredicate {
	tag, payload := variant(r)
	switch tag {
	case "bound_predicate":
		return &BoundPredicate{
			Type:          d.typ(payload.Get("type")),
			Bounds:        d.bounds(payload.Get("bounds")),
			GenericParams: d.paramDefs(payload.Get("generic_params")),
		}
	case "region_predicate", "lifetime_predicate":
		return &RegionPredicate{
			Lifetime: firstOf(payload, "lifetime").String(),
			Bounds:   d.regionBounds(payload),
		}
	case "eq_predicate":
		return &EqPredicate{LHS: d.typ(payload.Get("lhs")), RHS: d.term(payload.Get("rhs"))}
	}
	d.fail("unknown where predicate %q", tag)
	return &RegionPredicate{}
}

// regionBounds reads either generic bounds or, in newer formats, a plain
// list of outlived lifetimes.
func (d *decoder) regionBounds(r gjson.Result) []GenericBound {
	if out := r.Get("outlives"); out.IsArray() {
		var bs []GenericBound
		for _, lt := range out.Array() {
			bs = append(bs, Outlives(lt.String()))
		}
		return bs
	}
	return d.bounds(r.Get("bounds"))
}
