// Package rustdoc models the subset of rustdoc's JSON output that public API
// rendering needs, and decodes it.
//
// Every sum type in the format (item kinds, type kinds, generic args, bounds,
// where predicates) is a sealed interface with one struct per variant, so a
// type switch over the variants is the only way to consume them.
package rustdoc

// Id identifies an item inside a crate's index.
type Id string

// Index resolves ids to items. It is the read-only view of a crate that the
// renderer receives; it cannot add or change items.
type Index interface {
	Item(id Id) (*Item, bool)
}

// Crate is a decoded rustdoc JSON document.
type Crate struct {
	Root            Id
	CrateVersion    string
	IncludesPrivate bool
	Index           map[Id]*Item
	FormatVersion   int

	// Digest is the blake2b-256 of the raw document, hex encoded.
	Digest string
}

// Item returns the item with the given id, if present.
func (c *Crate) Item(id Id) (*Item, bool) {
	if c == nil {
		return nil, false
	}
	item, ok := c.Index[id]
	return item, ok
}

// RootItem returns the crate's root module item.
func (c *Crate) RootItem() (*Item, bool) {
	return c.Item(c.Root)
}

// Visibility values as emitted by rustdoc. Restricted visibilities
// (pub(in path)) decode to VisibilityRestricted.
const (
	VisibilityPublic     = "public"
	VisibilityDefault    = "default"
	VisibilityCrate      = "crate"
	VisibilityRestricted = "restricted"
)

// Item is one node of the documentation tree.
type Item struct {
	ID         Id
	CrateID    int
	Name       *string
	Visibility string
	Inner      ItemInner
}

// NameOr returns the item's name, or fallback if it has none.
func (i *Item) NameOr(fallback string) string {
	if i == nil || i.Name == nil {
		return fallback
	}
	return *i.Name
}

// IsVisible reports whether the item is part of the public surface.
// Trait items, enum variants and trait impl items carry "default".
func (i *Item) IsVisible() bool {
	return i.Visibility == VisibilityPublic || i.Visibility == VisibilityDefault
}

// ItemKind is the stable tag of an item variant.
type ItemKind string

const (
	KindModule        ItemKind = "module"
	KindExternCrate   ItemKind = "extern_crate"
	KindImport        ItemKind = "import"
	KindUnion         ItemKind = "union"
	KindStruct        ItemKind = "struct"
	KindStructField   ItemKind = "struct_field"
	KindEnum          ItemKind = "enum"
	KindVariant       ItemKind = "variant"
	KindFunction      ItemKind = "function"
	KindMethod        ItemKind = "method"
	KindTrait         ItemKind = "trait"
	KindTraitAlias    ItemKind = "trait_alias"
	KindImpl          ItemKind = "impl"
	KindTypedef       ItemKind = "typedef"
	KindAssocType     ItemKind = "assoc_type"
	KindOpaqueTy      ItemKind = "opaque_ty"
	KindConstant      ItemKind = "constant"
	KindAssocConst    ItemKind = "assoc_const"
	KindStatic        ItemKind = "static"
	KindForeignType   ItemKind = "foreign_type"
	KindMacro         ItemKind = "macro"
	KindProcMacro     ItemKind = "proc_macro"
	KindPrimitiveType ItemKind = "primitive_type"
)

// AllItemKinds lists one zero value of every item variant. Tests use it to
// prove that every consumer handles every variant.
var AllItemKinds = []ItemInner{
	&Module{}, &ExternCrate{}, &Import{}, &Union{}, &Struct{}, &StructField{},
	&Enum{}, &Variant{}, &Function{}, &Method{}, &Trait{}, &TraitAlias{},
	&Impl{}, &Typedef{}, &AssocType{}, &OpaqueTy{}, &Constant{},
	&AssocConst{}, &Static{}, &ForeignType{}, &Macro{}, &ProcMacro{},
	&PrimitiveType{},
}

// ItemInner is the kind-specific payload of an item.
type ItemInner interface {
	Kind() ItemKind
	isItemInner()
}

type Module struct {
	IsCrate    bool
	Items      []Id
	IsStripped bool
}

type ExternCrate struct {
	Name   string
	Rename *string
}

// Import is a use declaration. ID is nil when the target is not in the index
// (for example a re-export of a private item or of an external crate).
type Import struct {
	Source string
	Name   string
	ID     *Id
	Glob   bool
}

type Union struct {
	Generics Generics
	Fields   []Id
	Impls    []Id
}

// StructType distinguishes plain, tuple and unit structs.
type StructType string

const (
	StructPlain StructType = "plain"
	StructTuple StructType = "tuple"
	StructUnit  StructType = "unit"
)

type Struct struct {
	StructType StructType
	Generics   Generics
	Fields     []Id
	Impls      []Id
}

type StructField struct {
	Type Type
}

type Enum struct {
	Generics Generics
	Variants []Id
	Impls    []Id
}

// VariantKind distinguishes the shapes of an enum variant.
type VariantKind string

const (
	VariantPlain  VariantKind = "plain"
	VariantTuple  VariantKind = "tuple"
	VariantStruct VariantKind = "struct"
)

// Variant is an enum variant. Tuple holds the element types of a tuple
// variant, Fields the struct field ids of a struct variant.
type Variant struct {
	VariantKind VariantKind
	Tuple       []Type
	Fields      []Id
}

type Function struct {
	Decl     FnDecl
	Generics Generics
	Header   Header
}

type Method struct {
	Decl     FnDecl
	Generics Generics
	Header   Header
	HasBody  bool
}

type Trait struct {
	IsAuto   bool
	IsUnsafe bool
	Items    []Id
	Generics Generics
	Bounds   []GenericBound
}

type TraitAlias struct {
	Generics Generics
	Params   []GenericBound
}

// Impl is an impl block. For is the implementing type; Trait is nil for
// inherent impls.
type Impl struct {
	IsUnsafe    bool
	Generics    Generics
	Trait       Type
	For         Type
	Items       []Id
	Negative    bool
	Synthetic   bool
	BlanketImpl Type
}

type Typedef struct {
	Type     Type
	Generics Generics
}

type AssocType struct {
	Generics Generics
	Bounds   []GenericBound
	Default  Type
}

type OpaqueTy struct {
	Bounds   []GenericBound
	Generics Generics
}

type Constant struct {
	Type      Type
	Expr      string
	Value     *string
	IsLiteral bool
}

type AssocConst struct {
	Type    Type
	Default *string
}

type Static struct {
	Type    Type
	Mutable bool
	Expr    string
}

type ForeignType struct{}

type Macro struct {
	Definition string
}

// MacroKind is the invocation style of a procedural macro.
type MacroKind string

const (
	MacroBang   MacroKind = "bang"
	MacroAttr   MacroKind = "attr"
	MacroDerive MacroKind = "derive"
)

type ProcMacro struct {
	MacroKind MacroKind
	Helpers   []string
}

type PrimitiveType struct {
	Name string
}

func (*Module) Kind() ItemKind        { return KindModule }
func (*ExternCrate) Kind() ItemKind   { return KindExternCrate }
func (*Import) Kind() ItemKind        { return KindImport }
func (*Union) Kind() ItemKind         { return KindUnion }
func (*Struct) Kind() ItemKind        { return KindStruct }
func (*StructField) Kind() ItemKind   { return KindStructField }
func (*Enum) Kind() ItemKind          { return KindEnum }
func (*Variant) Kind() ItemKind       { return KindVariant }
func (*Function) Kind() ItemKind      { return KindFunction }
func (*Method) Kind() ItemKind        { return KindMethod }
func (*Trait) Kind() ItemKind         { return KindTrait }
func (*TraitAlias) Kind() ItemKind    { return KindTraitAlias }
func (*Impl) Kind() ItemKind          { return KindImpl }
func (*Typedef) Kind() ItemKind       { return KindTypedef }
func (*AssocType) Kind() ItemKind     { return KindAssocType }
func (*OpaqueTy) Kind() ItemKind      { return KindOpaqueTy }
func (*Constant) Kind() ItemKind      { return KindConstant }
func (*AssocConst) Kind() ItemKind    { return KindAssocConst }
func (*Static) Kind() ItemKind        { return KindStatic }
func (*ForeignType) Kind() ItemKind   { return KindForeignType }
func (*Macro) Kind() ItemKind         { return KindMacro }
func (*ProcMacro) Kind() ItemKind     { return KindProcMacro }
func (*PrimitiveType) Kind() ItemKind { return KindPrimitiveType }

func (*Module) isItemInner()        {}
func (*ExternCrate) isItemInner()   {}
func (*Import) isItemInner()        {}
func (*Union) isItemInner()         {}
func (*Struct) isItemInner()        {}
func (*StructField) isItemInner()   {}
func (*Enum) isItemInner()          {}
func (*Variant) isItemInner()       {}
func (*Function) isItemInner()      {}
func (*Method) isItemInner()        {}
func (*Trait) isItemInner()         {}
func (*TraitAlias) isItemInner()    {}
func (*Impl) isItemInner()          {}
func (*Typedef) isItemInner()       {}
func (*AssocType) isItemInner()     {}
func (*OpaqueTy) isItemInner()      {}
func (*Constant) isItemInner()      {}
func (*AssocConst) isItemInner()    {}
func (*Static) isItemInner()        {}
func (*ForeignType) isItemInner()   {}
func (*Macro) isItemInner()         {}
func (*ProcMacro) isItemInner()     {}
func (*PrimitiveType) isItemInner() {}

// FnDecl is a function signature without name or generics.
type FnDecl struct {
	Inputs    []Param
	Output    Type
	CVariadic bool
}

// Param is one (name, type) pair of a function's inputs.
type Param struct {
	Name string
	Type Type
}

// Header holds a function's qualifiers.
type Header struct {
	Const  bool
	Unsafe bool
	Async  bool
	Abi    Abi
}

// AbiKind names a calling convention.
type AbiKind string

const (
	AbiRust     AbiKind = "Rust"
	AbiC        AbiKind = "C"
	AbiCdecl    AbiKind = "Cdecl"
	AbiStdcall  AbiKind = "Stdcall"
	AbiFastcall AbiKind = "Fastcall"
	AbiAapcs    AbiKind = "Aapcs"
	AbiWin64    AbiKind = "Win64"
	AbiSysV64   AbiKind = "SysV64"
	AbiSystem   AbiKind = "System"
	AbiOther    AbiKind = "Other"
)

// Abi is a calling convention. Other carries the literal ABI string when
// Kind is AbiOther. The zero value is the Rust ABI.
type Abi struct {
	Kind   AbiKind
	Unwind bool
	Other  string
}

// IsDefault reports whether the ABI is the implicit Rust calling convention.
func (a Abi) IsDefault() bool {
	return a.Kind == "" || a.Kind == AbiRust
}
