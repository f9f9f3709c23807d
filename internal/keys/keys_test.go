package keys

import (
	"strings"
	"testing"

	"github.com/jacoelho/xdm/internal/atomic"
	"github.com/jacoelho/xdm/internal/builder"
	"github.com/jacoelho/xdm/internal/event"
	"github.com/jacoelho/xdm/internal/names"
	"github.com/jacoelho/xdm/internal/seq"
	"github.com/jacoelho/xdm/internal/tree"
	"github.com/jacoelho/xdm/internal/xmlsource"
)

func parse(t *testing.T, doc string, src xmlsource.Options) *tree.Tree {
	t.Helper()
	b := builder.New(builder.Options{})
	if err := xmlsource.ParseString(doc, b, src); err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	tr, err := b.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	return tr
}

// describe renders nodes as name@value for attributes and name(text) for
// elements.
func describe(t *testing.T, it seq.Iterator[tree.Node]) string {
	t.Helper()
	nodes, err := seq.Collect(it)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		switch n.Kind() {
		case tree.KindAttribute:
			parent, _ := n.Parent()
			parts = append(parts, parent.LocalName()+"@"+n.StringValue())
		default:
			parts = append(parts, n.LocalName()+"("+n.StringValue()+")")
		}
	}
	return strings.Join(parts, " ")
}

func attrTokens(local string) func(tree.Node) []string {
	return func(n tree.Node) []string {
		v, _ := n.AttributeValue("", local)
		return atomic.Tokens(v)
	}
}

const keyDoc = `<r><p k="a">1</p><p k="b a a">2</p><q k="a">3</q><p>4</p></r>`

func TestKeyLookup(t *testing.T) {
	t.Parallel()

	tr := parse(t, keyDoc, xmlsource.Options{})
	def := Definition{
		Name:  "by-k",
		Match: tree.NameTest{Kind: tree.KindElement, Local: "p"},
		Use:   attrTokens("k"),
	}
	x := For(tr, def)
	tests := []struct {
		value string
		want  string
	}{
		{value: "a", want: "p(1) p(2)"},
		{value: "b", want: "p(2)"},
		{value: "c", want: ""},
	}
	for _, tt := range tests {
		if got := describe(t, x.Lookup(tt.value)); got != tt.want {
			t.Fatalf("Lookup(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
	if got := x.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	if again := For(tr, def); again != x {
		t.Fatalf("For() rebuilt a cached index")
	}
	if x.Name() != "by-k" {
		t.Fatalf("Name() = %q, want by-k", x.Name())
	}
}

func TestKeyOverAttributes(t *testing.T) {
	t.Parallel()

	tr := parse(t, keyDoc, xmlsource.Options{})
	x := Build(tr, Definition{
		Name:  "attr",
		Match: tree.KindTest(tree.KindAttribute),
		Use:   func(n tree.Node) []string { return []string{n.StringValue()} },
	})
	if got, want := describe(t, x.Lookup("a")), "p@a q@a"; got != want {
		t.Fatalf("Lookup(a) = %q, want %q", got, want)
	}
}

func TestLookupAll(t *testing.T) {
	t.Parallel()

	tr := parse(t, keyDoc, xmlsource.Options{})
	x := For(tr, Definition{Name: "any", Use: attrTokens("k")})
	got, err := x.LookupAll(seq.FromSlice([]string{"b", "a", "missing"}))
	if err != nil {
		t.Fatalf("LookupAll() error = %v", err)
	}
	if s, want := describe(t, got), "p(1) p(2) q(3)"; s != want {
		t.Fatalf("LookupAll() = %q, want %q", s, want)
	}
}

func TestID(t *testing.T) {
	t.Parallel()

	tr := parse(t, `<r><a id="x">1</a><b id="y">2</b><c id="z">3</c></r>`, xmlsource.Options{IDAttributes: []string{"id"}})
	got, err := ID(tr, seq.FromSlice([]string{" z  x ", "x", "nope"}))
	if err != nil {
		t.Fatalf("ID() error = %v", err)
	}
	if s, want := describe(t, got), "a(1) c(3)"; s != want {
		t.Fatalf("ID() = %q, want %q", s, want)
	}
	empty, err := ID(tr, seq.Empty[string]())
	if err != nil {
		t.Fatalf("ID() error = %v", err)
	}
	if n, _ := seq.Count(empty); n != 0 {
		t.Fatalf("ID() of no values = %d nodes, want 0", n)
	}
}

func TestElementWithID(t *testing.T) {
	t.Parallel()

	b := builder.New(builder.Options{})
	steps := []func() error{
		func() error { return b.StartDocument(0) },
		func() error { return b.StartElement(names.QName{Local: "item"}, atomic.Untyped, event.Location{}, 0) },
		func() error { return b.StartContent() },
		func() error { return b.StartElement(names.QName{Local: "code"}, atomic.Untyped, event.Location{}, event.IsID) },
		func() error { return b.StartContent() },
		func() error { return b.Characters("k1", event.Location{}, 0) },
		func() error { return b.EndElement() },
		func() error { return b.EndElement() },
		func() error { return b.EndDocument() },
		func() error { return b.Close() },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d error = %v", i, err)
		}
	}
	tr, err := b.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}

	got, err := ID(tr, seq.Single("k1"))
	if err != nil {
		t.Fatalf("ID() error = %v", err)
	}
	if s := describe(t, got); s != "code(k1)" {
		t.Fatalf("ID() = %q, want code(k1)", s)
	}
	got, err = ElementWithID(tr, seq.Single("k1"))
	if err != nil {
		t.Fatalf("ElementWithID() error = %v", err)
	}
	if s := describe(t, got); s != "item(k1)" {
		t.Fatalf("ElementWithID() = %q, want item(k1)", s)
	}
}

func TestIDRef(t *testing.T) {
	t.Parallel()

	doc := `<r><a id="x"/><b ref="x y"/><c ref="y"/><d ref="x"/></r>`
	tr := parse(t, doc, xmlsource.Options{IDAttributes: []string{"id"}, IDRefAttributes: []string{"ref"}})
	got, err := IDRef(tr, seq.FromSlice([]string{"x", "x"}))
	if err != nil {
		t.Fatalf("IDRef() error = %v", err)
	}
	if s, want := describe(t, got), "b@x y d@x"; s != want {
		t.Fatalf("IDRef(x) = %q, want %q", s, want)
	}
	got, err = IDRef(tr, seq.Single("y"))
	if err != nil {
		t.Fatalf("IDRef() error = %v", err)
	}
	if s, want := describe(t, got), "b@x y c@y"; s != want {
		t.Fatalf("IDRef(y) = %q, want %q", s, want)
	}
}
