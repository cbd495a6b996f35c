package rustdoc

// TypeKind is the stable tag of a type variant.
type TypeKind string

const (
	TypeResolvedPath    TypeKind = "resolved_path"
	TypeGeneric         TypeKind = "generic"
	TypePrimitive       TypeKind = "primitive"
	TypeFunctionPointer TypeKind = "function_pointer"
	TypeTuple           TypeKind = "tuple"
	TypeSlice           TypeKind = "slice"
	TypeArray           TypeKind = "array"
	TypeImplTrait       TypeKind = "impl_trait"
	TypeInfer           TypeKind = "infer"
	TypeRawPointer      TypeKind = "raw_pointer"
	TypeBorrowedRef     TypeKind = "borrowed_ref"
	TypeQualifiedPath   TypeKind = "qualified_path"
)

// AllTypeKinds lists one zero value of every type variant.
var AllTypeKinds = []Type{
	&ResolvedPath{}, Generic(""), Primitive(""), &FunctionPointer{},
	Tuple(nil), &Slice{}, &Array{}, ImplTrait(nil), Infer{},
	&RawPointer{}, &BorrowedRef{}, &QualifiedPath{},
}

// Type is a recursive type expression.
type Type interface {
	TypeKind() TypeKind
	isType()
}

// ResolvedPath is a named type such as std::vec::Vec<T>. Name may be empty,
// in which case the name is looked up through ID. ParamNames holds the extra
// bounds of a trait object (dyn Trait + Send).
type ResolvedPath struct {
	Name       string
	ID         Id
	Args       GenericArgs
	ParamNames []GenericBound
}

// Generic is a reference to a generic parameter, including Self.
type Generic string

// Primitive is a primitive type such as u8 or str.
type Primitive string

type FunctionPointer struct {
	Decl          FnDecl
	GenericParams []GenericParamDef
	Header        Header
}

// Tuple is a tuple type; the empty tuple is the unit type.
type Tuple []Type

type Slice struct {
	Type Type
}

// Array is a fixed size array. Len is the length expression as text.
type Array struct {
	Type Type
	Len  string
}

// ImplTrait is an `impl Bound + Bound` type.
type ImplTrait []GenericBound

// Infer is the `_` placeholder.
type Infer struct{}

type RawPointer struct {
	Mutable bool
	Type    Type
}

type BorrowedRef struct {
	Lifetime *string
	Mutable  bool
	Type     Type
}

// QualifiedPath is `<SelfType as Trait>::Name`.
type QualifiedPath struct {
	Name     string
	Args     GenericArgs
	SelfType Type
	Trait    Type
}

func (*ResolvedPath) TypeKind() TypeKind    { return TypeResolvedPath }
func (Generic) TypeKind() TypeKind          { return TypeGeneric }
func (Primitive) TypeKind() TypeKind        { return TypePrimitive }
func (*FunctionPointer) TypeKind() TypeKind { return TypeFunctionPointer }
func (Tuple) TypeKind() TypeKind            { return TypeTuple }
func (*Slice) TypeKind() TypeKind           { return TypeSlice }
func (*Array) TypeKind() TypeKind           { return TypeArray }
func (ImplTrait) TypeKind() TypeKind        { return TypeImplTrait }
func (Infer) TypeKind() TypeKind            { return TypeInfer }
func (*RawPointer) TypeKind() TypeKind      { return TypeRawPointer }
func (*BorrowedRef) TypeKind() TypeKind     { return TypeBorrowedRef }
func (*QualifiedPath) TypeKind() TypeKind   { return TypeQualifiedPath }

func (*ResolvedPath) isType()    {}
func (Generic) isType()          {}
func (Primitive) isType()        {}
func (*FunctionPointer) isType() {}
func (Tuple) isType()            {}
func (*Slice) isType()           {}
func (*Array) isType()           {}
func (ImplTrait) isType()        {}
func (Infer) isType()            {}
func (*RawPointer) isType()      {}
func (*BorrowedRef) isType()     {}
func (*QualifiedPath) isType()   {}

// GenericArgs is either *AngleBracketed or *Parenthesized. A nil value means
// the path had no arguments.
type GenericArgs interface {
	isGenericArgs()
}

// AngleBracketed is `<'a, T, N, Item = U>`.
type AngleBracketed struct {
	Args     []GenericArg
	Bindings []TypeBinding
}

// Parenthesized is the Fn sugar `(A, B) -> C`. Output is nil for unit.
type Parenthesized struct {
	Inputs []Type
	Output Type
}

func (*AngleBracketed) isGenericArgs() {}
func (*Parenthesized) isGenericArgs()  {}

// GenericArg is one argument inside angle brackets.
type GenericArg interface {
	isGenericArg()
}

type LifetimeArg string

type TypeArg struct {
	Type Type
}

type ConstArg struct {
	Constant Constant
}

type InferArg struct{}

func (LifetimeArg) isGenericArg() {}
func (TypeArg) isGenericArg()     {}
func (ConstArg) isGenericArg()    {}
func (InferArg) isGenericArg()    {}

// TypeBinding is an associated item constraint such as `Item = T` or
// `Item: Clone`. Exactly one of Equality and Constraint is meaningful,
// selected by IsEquality.
type TypeBinding struct {
	Name       string
	Args       GenericArgs
	IsEquality bool
	Equality   Term
	Constraint []GenericBound
}

// Term is the right hand side of an equality: a type or a constant.
type Term interface {
	isTerm()
}

type TypeTerm struct {
	Type Type
}

type ConstantTerm struct {
	Constant Constant
}

func (TypeTerm) isTerm()     {}
func (ConstantTerm) isTerm() {}

// GenericBound is *TraitBound or Outlives.
type GenericBound interface {
	isGenericBound()
}

// TraitBoundModifier is none, maybe (?Trait) or maybe_const (~const Trait).
type TraitBoundModifier string

const (
	ModifierNone       TraitBoundModifier = "none"
	ModifierMaybe      TraitBoundModifier = "maybe"
	ModifierMaybeConst TraitBoundModifier = "maybe_const"
)

type TraitBound struct {
	Trait         Type
	GenericParams []GenericParamDef
	Modifier      TraitBoundModifier
}

// Outlives is a lifetime bound such as 'a.
type Outlives string

func (*TraitBound) isGenericBound() {}
func (Outlives) isGenericBound()    {}

// Generics is a parameter list plus where clause.
type Generics struct {
	Params          []GenericParamDef
	WherePredicates []WherePredicate
}

// GenericParamDef declares one generic parameter.
type GenericParamDef struct {
	Name string
	Kind GenericParamDefKind
}

// GenericParamDefKind is *LifetimeParam, *TypeParam or *ConstParam.
type GenericParamDefKind interface {
	isGenericParamDefKind()
}

type LifetimeParam struct {
	Outlives []string
}

// TypeParam is a type parameter. Synthetic parameters are the ones the
// compiler introduces for argument-position impl Trait.
type TypeParam struct {
	Bounds    []GenericBound
	Default   Type
	Synthetic bool
}

type ConstParam struct {
	Type    Type
	Default *string
}

func (*LifetimeParam) isGenericParamDefKind() {}
func (*TypeParam) isGenericParamDefKind()     {}
func (*ConstParam) isGenericParamDefKind()    {}

// WherePredicate is *BoundPredicate, *RegionPredicate or *EqPredicate.
type WherePredicate interface {
	isWherePredicate()
}

type BoundPredicate struct {
	Type          Type
	Bounds        []GenericBound
	GenericParams []GenericParamDef
}

type RegionPredicate struct {
	Lifetime string
	Bounds   []GenericBound
}

type EqPredicate struct {
	LHS Type
	RHS Term
}

func (*BoundPredicate) isWherePredicate()  {}
func (*RegionPredicate) isWherePredicate() {}
func (*EqPredicate) isWherePredicate()     {}
