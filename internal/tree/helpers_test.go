package tree_test

import (
	"testing"

	"github.com/jacoelho/xdm/internal/builder"
	"github.com/jacoelho/xdm/internal/seq"
	"github.com/jacoelho/xdm/internal/tree"
	"github.com/jacoelho/xdm/internal/xmlsource"
)

func parse(t testing.TB, doc string, opts builder.Options, src xmlsource.Options) *tree.Tree {
	t.Helper()
	b := builder.New(opts)
	if err := xmlsource.ParseString(doc, b, src); err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	tr, err := b.Result()
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	return tr
}

func collect(t testing.TB, it seq.Iterator[tree.Node]) []tree.Node {
	t.Helper()
	nodes, err := seq.Collect(it)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	return nodes
}

// allNodes returns the document and every descendant in document order.
func allNodes(t testing.TB, tr *tree.Tree) []tree.Node {
	t.Helper()
	return collect(t, tr.Document().IterateAxis(tree.AxisDescendantOrSelf, nil))
}

func findElement(t testing.TB, tr *tree.Tree, local string) tree.Node {
	t.Helper()
	for _, n := range allNodes(t, tr) {
		if n.Kind() == tree.KindElement && n.LocalName() == local {
			return n
		}
	}
	t.Fatalf("no element %s", local)
	return tree.Node{}
}
