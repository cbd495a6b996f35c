package tokens

import (
	"encoding/json"
	"sort"
	"testing"
)

func TestString(t *testing.T) {
	ts := []Token{
		Qualifier("pub"), Whitespace, Kind("fn"), Whitespace,
		Identifier("krate"), Symbol("::"), Function("f"),
		Symbol("("), Symbol(")"),
	}
	if got := String(ts); got != "pub fn krate::f()" {
		t.Errorf("String() = %q, want %q", got, "pub fn krate::f()")
	}
	if got := String(nil); got != "" {
		t.Errorf("String(nil) = %q, want empty", got)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Token
		want int
	}{
		{"same", Identifier("a"), Identifier("a"), 0},
		{"text", Identifier("a"), Identifier("b"), -1},
		{"tag wins over text", Qualifier("z"), Kind("a"), -1},
		{"same text different tag", Type("Foo"), Identifier("Foo"), 1},
		{"whitespace last", Whitespace, Symbol(" "), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := Compare(tt.b, tt.a); got != -tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}

func TestCompareSeq(t *testing.T) {
	a := []Token{Identifier("a")}
	ab := []Token{Identifier("a"), Identifier("b")}
	b := []Token{Identifier("b")}

	if CompareSeq(a, ab) >= 0 {
		t.Error("prefix should sort first")
	}
	if CompareSeq(ab, b) >= 0 {
		t.Error("first differing element should decide")
	}
	if !Equal(ab, []Token{Identifier("a"), Identifier("b")}) {
		t.Error("identical sequences should be equal")
	}
	if Equal([]Token{Type("a")}, []Token{Identifier("a")}) {
		t.Error("tokens with equal text but different tags must differ")
	}
}

func TestCompareSeqIsTotalOrder(t *testing.T) {
	seqs := [][]Token{
		{Symbol("(")},
		{Qualifier("pub"), Whitespace},
		{Qualifier("pub")},
		{},
		{Kind("struct"), Identifier("x")},
		{Kind("struct")},
	}
	sort.Slice(seqs, func(i, j int) bool { return CompareSeq(seqs[i], seqs[j]) < 0 })
	for i := 1; i < len(seqs); i++ {
		if CompareSeq(seqs[i-1], seqs[i]) > 0 {
			t.Fatalf("sequence %d sorts after %d", i-1, i)
		}
	}
	if len(seqs[0]) != 0 {
		t.Errorf("empty sequence should sort first, got %v", seqs[0])
	}
}

func TestTagText(t *testing.T) {
	for tag := TagQualifier; tag <= TagWhitespace; tag++ {
		text, err := tag.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", tag, err)
		}
		var back Tag
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != tag {
			t.Errorf("round trip of %s gave %s", tag, back)
		}
	}

	var bad Tag
	if err := bad.UnmarshalText([]byte("nonsense")); err == nil {
		t.Error("expected error for unknown tag name")
	}
}

func TestTokenJSON(t *testing.T) {
	data, err := json.Marshal(Lifetime("'a"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"tag":"lifetime","text":"'a"}` {
		t.Errorf("json = %s", data)
	}
}
