package rustdoc

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tidwall/gjson"

	"pubapi/internal/errors"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("..", "..", "testdata", "rustdoc", name)
}

func TestLoadExampleAPI(t *testing.T) {
	crate, err := Load(fixture(t, "example_api-v0.1.0.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if crate.Root != "0:0" {
		t.Errorf("Root = %q, want 0:0", crate.Root)
	}
	if crate.CrateVersion != "0.1.0" {
		t.Errorf("CrateVersion = %q, want 0.1.0", crate.CrateVersion)
	}
	if crate.FormatVersion != 15 {
		t.Errorf("FormatVersion = %d, want 15", crate.FormatVersion)
	}
	if len(crate.Digest) != 64 {
		t.Errorf("Digest = %q, want 64 hex chars", crate.Digest)
	}
	if len(crate.Index) != 7 {
		t.Errorf("len(Index) = %d, want 7", len(crate.Index))
	}

	root, ok := crate.RootItem()
	if !ok {
		t.Fatal("RootItem() not found")
	}
	mod, ok := root.Inner.(*Module)
	if !ok {
		t.Fatalf("root inner = %T, want *Module", root.Inner)
	}
	if !mod.IsCrate || !reflect.DeepEqual(mod.Items, []Id{"0:3", "0:4"}) {
		t.Errorf("root module = %+v", mod)
	}

	fn, _ := crate.Item("0:3")
	f, ok := fn.Inner.(*Function)
	if !ok {
		t.Fatalf("0:3 inner = %T, want *Function", fn.Inner)
	}
	if len(f.Decl.Inputs) != 1 || f.Decl.Inputs[0].Name != "v1_param" {
		t.Fatalf("inputs = %+v", f.Decl.Inputs)
	}
	rp, ok := f.Decl.Inputs[0].Type.(*ResolvedPath)
	if !ok || rp.Name != "Struct" || rp.ID != "0:4" {
		t.Errorf("input type = %#v", f.Decl.Inputs[0].Type)
	}
	if f.Decl.Output != nil {
		t.Errorf("Output = %#v, want nil", f.Decl.Output)
	}
	if !f.Header.Abi.IsDefault() {
		t.Errorf("Abi = %+v, want default", f.Header.Abi)
	}

	blanket, _ := crate.Item("0:7")
	impl, ok := blanket.Inner.(*Impl)
	if !ok {
		t.Fatalf("0:7 inner = %T, want *Impl", blanket.Inner)
	}
	if impl.BlanketImpl != Generic("T") {
		t.Errorf("BlanketImpl = %#v, want Generic(T)", impl.BlanketImpl)
	}
	if impl.Synthetic {
		t.Error("Synthetic = true, want false")
	}
	if blanket.Name != nil {
		t.Errorf("Name = %q, want nil", *blanket.Name)
	}
}

func TestDigestIsContentKey(t *testing.T) {
	a, err := Load(fixture(t, "example_api-v0.1.0.json"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Load(fixture(t, "example_api-v0.2.0.json"))
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(fixture(t, "example_api-v0.1.0.json"))
	if err != nil {
		t.Fatal(err)
	}
	again, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}

	if a.Digest == b.Digest {
		t.Error("different documents share a digest")
	}
	if a.Digest != again.Digest {
		t.Error("same document produced different digests")
	}
}

// The newer format tags unions externally and uses numeric ids.
const externallyTagged = `{
  "root": 0,
  "crate_version": null,
  "includes_private": false,
  "format_version": 30,
  "index": {
    "0": {"id": 0, "crate_id": 0, "name": "krate", "visibility": "public",
          "inner": {"module": {"is_crate": true, "items": [1, 2, 3, 5], "is_stripped": false}}},
    "1": {"id": 1, "crate_id": 0, "name": "read", "visibility": "public",
          "inner": {"function": {
            "decl": {"inputs": [["buf", {"borrowed_ref": {"lifetime": "'a", "mutable": true, "type": {"slice": {"primitive": "u8"}}}}]],
                     "output": {"resolved_path": {"name": "Result", "id": 9, "args": {"angle_bracketed": {"args": [{"type": {"primitive": "usize"}}], "constraints": []}}}},
                     "c_variadic": false},
            "generics": {"params": [{"name": "'a", "kind": {"lifetime": {"outlives": []}}}],
                         "where_predicates": [{"bound_predicate": {"type": {"generic": "T"}, "bounds": [{"trait_bound": {"trait": {"name": "Sized", "id": 10, "args": null}, "generic_params": [], "modifier": "maybe"}}], "generic_params": []}}]},
            "header": {"is_const": false, "is_unsafe": true, "is_async": false, "abi": {"C": {"unwind": false}}}
          }}},
    "2": {"id": 2, "crate_id": 0, "name": "Shape", "visibility": "public",
          "inner": {"enum": {"generics": {"params": [], "where_predicates": []}, "variants": [4], "impls": []}}},
    "3": {"id": 3, "crate_id": 0, "name": "Point", "visibility": "public",
          "inner": {"struct": {"kind": {"tuple": [6, null]}, "generics": {"params": [], "where_predicates": []}, "impls": []}}},
    "4": {"id": 4, "crate_id": 0, "name": "Circle", "visibility": "default",
          "inner": {"variant": {"kind": {"tuple": [7, null]}, "discriminant": null}}},
    "5": {"id": 5, "crate_id": 0, "name": "Dyn", "visibility": {"restricted": {"parent": 0, "path": "crate"}},
          "inner": {"type_alias": {"type": {"dyn_trait": {"traits": [
              {"trait": {"name": "Error", "id": 11, "args": null}, "generic_params": []},
              {"trait": {"name": "Send", "id": 12, "args": null}, "generic_params": []}
            ], "lifetime": "'static"}}, "generics": {"params": [], "where_predicates": []}}}},
    "6": {"id": 6, "crate_id": 0, "name": "0", "visibility": "public", "inner": {"struct_field": {"primitive": "i32"}}},
    "7": {"id": 7, "crate_id": 0, "name": "0", "visibility": "default", "inner": {"struct_field": {"primitive": "f64"}}}
  }
}`

func TestParseExternallyTagged(t *testing.T) {
	crate, err := Parse([]byte(externallyTagged))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if crate.Root != "0" {
		t.Errorf("Root = %q, want 0", crate.Root)
	}

	read, _ := crate.Item("1")
	fn := read.Inner.(*Function)
	if !fn.Header.Unsafe || fn.Header.Abi.Kind != AbiC {
		t.Errorf("Header = %+v", fn.Header)
	}
	ref, ok := fn.Decl.Inputs[0].Type.(*BorrowedRef)
	if !ok || !ref.Mutable || ref.Lifetime == nil || *ref.Lifetime != "'a" {
		t.Errorf("input = %#v", fn.Decl.Inputs[0].Type)
	}
	if _, ok := ref.Type.(*Slice); !ok {
		t.Errorf("ref type = %#v, want *Slice", ref.Type)
	}
	pred := fn.Generics.WherePredicates[0].(*BoundPredicate)
	tb := pred.Bounds[0].(*TraitBound)
	if tb.Modifier != ModifierMaybe {
		t.Errorf("Modifier = %q, want maybe", tb.Modifier)
	}
	if rp, ok := tb.Trait.(*ResolvedPath); !ok || rp.Name != "Sized" || rp.ID != "10" {
		t.Errorf("Trait = %#v", tb.Trait)
	}

	point, _ := crate.Item("3")
	s := point.Inner.(*Struct)
	if s.StructType != StructTuple || !reflect.DeepEqual(s.Fields, []Id{"6", ""}) {
		t.Errorf("struct = %+v", s)
	}

	circle, _ := crate.Item("4")
	v := circle.Inner.(*Variant)
	if v.VariantKind != VariantTuple || !reflect.DeepEqual(v.Fields, []Id{"7", ""}) {
		t.Errorf("variant = %+v", v)
	}

	alias, _ := crate.Item("5")
	if alias.Visibility != VisibilityRestricted {
		t.Errorf("Visibility = %q, want restricted", alias.Visibility)
	}
	td := alias.Inner.(*Typedef)
	dyn, ok := td.Type.(*ResolvedPath)
	if !ok || dyn.Name != "Error" || len(dyn.ParamNames) != 2 {
		t.Fatalf("dyn = %#v", td.Type)
	}
	if dyn.ParamNames[1] != Outlives("'static") {
		t.Errorf("lifetime bound = %#v", dyn.ParamNames[1])
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "{not json"},
		{"empty", ""},
		{"missing root", `{"index": {}}`},
		{"missing index", `{"root": "0:0"}`},
		{"index not an object", `{"root": "0:0", "index": []}`},
		{"root not in index", `{"root": "0:0", "index": {}}`},
		{
			"unknown item kind",
			`{"root": "0:0", "index": {"0:0": {"id": "0:0", "visibility": "public", "kind": "spaceship", "inner": {}}}}`,
		},
		{
			"unknown type kind",
			`{"root": "0:0", "index": {"0:0": {"id": "0:0", "visibility": "public", "kind": "struct_field", "inner": {"kind": "hologram", "inner": null}}}}`,
		},
		{
			"bad function input",
			`{"root": "0:0", "index": {"0:0": {"id": "0:0", "visibility": "public", "kind": "function",
			  "inner": {"decl": {"inputs": [["only_name"]], "output": null}, "generics": {}, "header": {}}}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crate, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatalf("Parse() = %+v, want error", crate)
			}
			if !errors.Is(err, errors.InputMalformed) {
				t.Errorf("Parse() error = %v, want INPUT_MALFORMED", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.InputNotFound) {
		t.Errorf("Load() error = %v, want INPUT_NOT_FOUND", err)
	}
}

func TestVariantEncodings(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantTag string
	}{
		{"adjacent", `{"kind": "generic", "inner": "T"}`, "generic"},
		{"external", `{"generic": "T"}`, "generic"},
		{"unit string", `"infer"`, "infer"},
		{"adjacent without inner", `{"kind": "infer"}`, "infer"},
		{"two keys", `{"a": 1, "b": 2}`, ""},
		{"number", `3`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, _ := variant(gjson.Parse(tt.input))
			if tag != tt.wantTag {
				t.Errorf("variant() tag = %q, want %q", tag, tt.wantTag)
			}
		})
	}
}
