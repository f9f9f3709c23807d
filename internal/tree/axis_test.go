package tree_test

import (
	"slices"
	"testing"

	"github.com/jacoelho/xdm/internal/builder"
	"github.com/jacoelho/xdm/internal/tree"
	"github.com/jacoelho/xdm/internal/xmlsource"
)

const axisDoc = `<r xmlns:p="urn:p"><a id="x">t1<b/>t2</a><!--c--><?pi d?><c><d>only</d><e k="v"/><f/><g/></c></r>`

func axisTree(t testing.TB) *tree.Tree {
	t.Helper()
	return parse(t, axisDoc, builder.Options{
		Tree:                    tree.Config{Numbers: &tree.DocumentNumbers{}},
		ParentPointerInterval:   2,
		CollapseTextualElements: true,
	}, xmlsource.Options{IDAttributes: []string{"id"}})
}

var allAxes = []tree.Axis{
	tree.AxisAncestor, tree.AxisAncestorOrSelf, tree.AxisAttribute, tree.AxisChild,
	tree.AxisDescendant, tree.AxisDescendantOrSelf, tree.AxisFollowing, tree.AxisFollowingSibling,
	tree.AxisNamespace, tree.AxisParent, tree.AxisPreceding, tree.AxisPrecedingSibling, tree.AxisSelf,
}

func TestAxesPartitionTree(t *testing.T) {
	t.Parallel()

	tr := axisTree(t)
	nodes := allNodes(t, tr)
	if len(nodes) != 14 {
		t.Fatalf("nodes = %d, want 14: %v", len(nodes), nodes)
	}
	for _, x := range nodes {
		seen := make(map[tree.Node]tree.Axis)
		for _, axis := range []tree.Axis{tree.AxisAncestor, tree.AxisDescendant, tree.AxisFollowing, tree.AxisPreceding, tree.AxisSelf} {
			for _, y := range collect(t, x.IterateAxis(axis, nil)) {
				if prev, dup := seen[y]; dup {
					t.Fatalf("%v is on both %s and %s of %v", y, prev, axis, x)
				}
				seen[y] = axis
			}
		}
		if len(seen) != len(nodes) {
			t.Fatalf("axes of %v cover %d nodes, want %d", x, len(seen), len(nodes))
		}
	}
}

func TestAxesAreOrdered(t *testing.T) {
	t.Parallel()

	tr := axisTree(t)
	nodes := allNodes(t, tr)
	for i, n := range nodes[1:] {
		if tree.Compare(nodes[i], n) >= 0 {
			t.Fatalf("descendant-or-self not in document order at %v, %v", nodes[i], n)
		}
	}
	for _, x := range nodes {
		for _, axis := range allAxes {
			got := collect(t, x.IterateAxis(axis, nil))
			for i := 1; i < len(got); i++ {
				c := tree.Compare(got[i-1], got[i])
				if axis.IsReverse() && c <= 0 || !axis.IsReverse() && c >= 0 {
					t.Fatalf("%s of %v out of order at %v, %v", axis, x, got[i-1], got[i])
				}
			}
		}
	}
}

func TestAxisSymmetry(t *testing.T) {
	t.Parallel()

	tr := axisTree(t)
	nodes := allNodes(t, tr)
	pairs := []struct{ forward, reverse tree.Axis }{
		{tree.AxisChild, tree.AxisParent},
		{tree.AxisDescendant, tree.AxisAncestor},
		{tree.AxisFollowing, tree.AxisPreceding},
		{tree.AxisFollowingSibling, tree.AxisPrecedingSibling},
	}
	for _, p := range pairs {
		for _, x := range nodes {
			for _, y := range nodes {
				fwd := slices.Contains(collect(t, x.IterateAxis(p.forward, nil)), y)
				rev := slices.Contains(collect(t, y.IterateAxis(p.reverse, nil)), x)
				if fwd != rev {
					t.Fatalf("%v on %s of %v = %v, but %v on %s of %v = %v", y, p.forward, x, fwd, x, p.reverse, y, rev)
				}
			}
		}
	}
}

func TestAxisAnotherRestarts(t *testing.T) {
	t.Parallel()

	tr := axisTree(t)
	for _, x := range allNodes(t, tr) {
		for _, axis := range allAxes {
			it := x.IterateAxis(axis, nil)
			again := it.Another()
			first := collect(t, it)
			second := collect(t, again)
			if !slices.Equal(first, second) {
				t.Fatalf("%s of %v: Another() = %v, want %v", axis, x, second, first)
			}
		}
	}
}

func TestAxesFromAttribute(t *testing.T) {
	t.Parallel()

	tr := axisTree(t)
	e := findElement(t, tr, "e")
	attrs := collect(t, e.IterateAxis(tree.AxisAttribute, nil))
	if len(attrs) != 1 || attrs[0].LocalName() != "k" {
		t.Fatalf("attribute axis = %v, want @k", attrs)
	}
	k := attrs[0]

	following := collect(t, k.IterateAxis(tree.AxisFollowing, nil))
	if len(following) != 2 || following[0].LocalName() != "f" || following[1].LocalName() != "g" {
		t.Fatalf("following of @k = %v, want f, g", following)
	}
	preceding := collect(t, k.IterateAxis(tree.AxisPreceding, nil))
	if len(preceding) != 8 {
		t.Fatalf("preceding of @k = %v, want 8 nodes", preceding)
	}
	if first := preceding[0]; first.Kind() != tree.KindText || first.StringValue() != "only" {
		t.Fatalf("first preceding of @k = %v, want text only", first)
	}
	if last := preceding[len(preceding)-1]; last.LocalName() != "a" {
		t.Fatalf("last preceding of @k = %v, want element a", last)
	}
	ancestors := collect(t, k.IterateAxis(tree.AxisAncestor, nil))
	if len(ancestors) != 4 || ancestors[0] != e || ancestors[3].Kind() != tree.KindDocument {
		t.Fatalf("ancestors of @k = %v, want e, c, r, document", ancestors)
	}
	if got := collect(t, k.IterateAxis(tree.AxisFollowingSibling, nil)); len(got) != 0 {
		t.Fatalf("following-sibling of @k = %v, want none", got)
	}
	if got := collect(t, k.IterateAxis(tree.AxisChild, nil)); len(got) != 0 {
		t.Fatalf("child of @k = %v, want none", got)
	}
}

func TestNamespaceAxis(t *testing.T) {
	t.Parallel()

	tr := axisTree(t)
	d := findElement(t, tr, "d")
	got := collect(t, d.IterateAxis(tree.AxisNamespace, nil))
	if len(got) != 2 {
		t.Fatalf("namespace axis = %v, want 2 nodes", got)
	}
	if b, _ := got[0].Binding(); !b.IsXML() {
		t.Fatalf("first binding = %+v, want xml", b)
	}
	if c := tree.Compare(got[0], got[1]); c >= 0 {
		t.Fatalf("Compare(xml, p) = %d, want namespace axis in document order", c)
	}
	if b, _ := got[1].Binding(); b.Prefix != "p" || b.URI != "urn:p" {
		t.Fatalf("second binding = %+v, want p=urn:p", b)
	}
	if p, _ := got[1].Parent(); p != d {
		t.Fatalf("Parent() = %v, want %v", p, d)
	}
	if got[1].StringValue() != "urn:p" || got[1].LocalName() != "p" {
		t.Fatalf("namespace node = %q %q, want p urn:p", got[1].LocalName(), got[1].StringValue())
	}
	if got := d.InScopeNamespaces(); len(got) != 2 || !got[1].IsXML() {
		t.Fatalf("InScopeNamespaces() = %v, want p then xml", got)
	}
	text, _ := d.FirstChild()
	if got := collect(t, text.IterateAxis(tree.AxisNamespace, nil)); len(got) != 0 {
		t.Fatalf("namespace axis of text = %v, want none", got)
	}
}

func TestNodeTests(t *testing.T) {
	t.Parallel()

	tr := axisTree(t)
	root := tr.Root()
	tests := []struct {
		name string
		test tree.NodeTest
		want int
	}{
		{name: "any", test: tree.AnyNode, want: 14},
		{name: "elements", test: tree.KindTest(tree.KindElement), want: 8},
		{name: "text", test: tree.KindTest(tree.KindText), want: 3},
		{name: "name", test: tree.NameTest{Kind: tree.KindElement, Local: "d"}, want: 1},
		{name: "wildcard", test: tree.NameTest{Kind: tree.KindElement, Local: "*", Namespace: "*"}, want: 8},
		{name: "no namespace", test: tree.NameTest{Kind: tree.KindElement, Namespace: "urn:p"}, want: 0},
		{name: "func", test: tree.TestFunc(func(n tree.Node) bool { return n.HasChildren() }), want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := collect(t, root.Document().IterateAxis(tree.AxisDescendantOrSelf, tt.test))
			if len(got) != tt.want {
				t.Fatalf("matches = %d, want %d: %v", len(got), tt.want, got)
			}
		})
	}
}

func TestFingerprintTest(t *testing.T) {
	t.Parallel()

	tr := axisTree(t)
	fp, ok := tr.Pool().Fingerprint("", "g")
	if !ok {
		t.Fatalf("Fingerprint(g) not allocated")
	}
	got := collect(t, tr.Document().IterateAxis(tree.AxisDescendant, tree.FingerprintTest{Kind: tree.KindElement, Fingerprint: fp}))
	if len(got) != 1 || got[0].LocalName() != "g" {
		t.Fatalf("FingerprintTest matches = %v, want g", got)
	}
}

func TestParseAxis(t *testing.T) {
	t.Parallel()

	for _, axis := range allAxes {
		got, ok := tree.ParseAxis(axis.String())
		if !ok || got != axis {
			t.Fatalf("ParseAxis(%q) = %v, %v, want %v", axis.String(), got, ok, axis)
		}
	}
	if _, ok := tree.ParseAxis("sideways"); ok {
		t.Fatalf("ParseAxis(sideways) succeeded")
	}
}
