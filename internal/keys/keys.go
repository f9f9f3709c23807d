// Package keys implements value indexes over a tree: named keys declared by
// a match test and a use function, and the id, element-with-id and idref
// lookups over whitespace-separated token lists.
package keys

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/jacoelho/xdm/internal/atomic"
	"github.com/jacoelho/xdm/internal/seq"
	"github.com/jacoelho/xdm/internal/tree"
)

// Definition declares a key. Match selects the indexed nodes, attributes
// included; Use returns the values each matched node is indexed under.
type Definition struct {
	Name  string
	Match tree.NodeTest
	Use   func(tree.Node) []string
}

// Index maps key values to nodes of one tree.
type Index struct {
	name   string
	values map[string][]tree.Node
}

// buildMu serializes lazy index construction across trees.
var buildMu sync.Mutex

func userDataKey(kind, name string) string {
	return "xdm.keys." + kind + ":" + name
}

// For returns the index of def over t, building it on first use and
// caching it in the tree's user data.
func For(t *tree.Tree, def Definition) *Index {
	key := userDataKey("key", def.Name)
	if v, ok := t.UserData(key); ok {
		return v.(*Index)
	}
	buildMu.Lock()
	defer buildMu.Unlock()
	if v, ok := t.UserData(key); ok {
		return v.(*Index)
	}
	x := Build(t, def)
	t.SetUserData(key, x)
	return x
}

// Build indexes t under def without caching.
func Build(t *tree.Tree, def Definition) *Index {
	x := &Index{name: def.Name, values: make(map[string][]tree.Node)}
	walk(t, func(n tree.Node) {
		if def.Match != nil && !def.Match.Matches(n) {
			return
		}
		for _, v := range def.Use(n) {
			x.add(v, n)
		}
	})
	t.Logger().Debug("index built",
		slog.String("index", "key"),
		slog.String("key", def.Name),
		slog.Int64("document", t.DocumentNumber()),
		slog.Int("entries", len(x.values)))
	return x
}

// walk visits every node of t in document order, each element followed by
// its attributes.
func walk(t *tree.Tree, visit func(tree.Node)) {
	for n := range seq.All(t.Document().IterateAxis(tree.AxisDescendantOrSelf, nil)) {
		visit(n)
		if n.Kind() == tree.KindElement {
			for _, a := range n.Attributes() {
				visit(a)
			}
		}
	}
}

// add keeps each list in document order without duplicates, since nodes
// arrive in document order.
func (x *Index) add(value string, n tree.Node) {
	list := x.values[value]
	if len(list) > 0 && tree.Compare(list[len(list)-1], n) == 0 {
		return
	}
	x.values[value] = append(list, n)
}

// Name returns the key name.
func (x *Index) Name() string { return x.name }

// Len returns the number of distinct values.
func (x *Index) Len() int { return len(x.values) }

// Lookup returns the nodes indexed under value, in document order.
func (x *Index) Lookup(value string) seq.Iterator[tree.Node] {
	list, ok := x.values[value]
	if !ok {
		return seq.Empty[tree.Node]()
	}
	return seq.FromSlice(list)
}

// LookupAll returns the nodes indexed under any of values, in document
// order without duplicates.
func (x *Index) LookupAll(values seq.Iterator[string]) (seq.Iterator[tree.Node], error) {
	return inDocumentOrder(seq.FlatMap(values, x.Lookup))
}

// ID returns the elements carrying an ID that matches a token of values.
func ID(t *tree.Tree, values seq.Iterator[string]) (seq.Iterator[tree.Node], error) {
	return selectIDs(t, values, false)
}

// ElementWithID is ID, except that an element typed as ID resolves to its
// parent.
func ElementWithID(t *tree.Tree, values seq.Iterator[string]) (seq.Iterator[tree.Node], error) {
	return selectIDs(t, values, true)
}

func selectIDs(t *tree.Tree, values seq.Iterator[string], wantParent bool) (seq.Iterator[tree.Node], error) {
	found := seq.FlatMap(tokens(values), func(id string) seq.Iterator[tree.Node] {
		n, ok := t.SelectID(id, wantParent)
		if !ok {
			return seq.Empty[tree.Node]()
		}
		return seq.Single(n)
	})
	return inDocumentOrder(found)
}

// IDRef returns the IDREF attributes and elements that refer to a token of
// values.
func IDRef(t *tree.Tree, values seq.Iterator[string]) (seq.Iterator[tree.Node], error) {
	x := For(t, Definition{
		Name:  userDataKey("idref", ""),
		Match: tree.TestFunc(tree.Node.IsIDRef),
		Use:   func(n tree.Node) []string { return atomic.Tokens(n.StringValue()) },
	})
	return x.LookupAll(tokens(values))
}

func tokens(values seq.Iterator[string]) seq.Iterator[string] {
	return seq.FlatMap(values, func(v string) seq.Iterator[string] {
		return seq.FromSlice(atomic.Tokens(v))
	})
}

func inDocumentOrder(src seq.Iterator[tree.Node]) (seq.Iterator[tree.Node], error) {
	nodes, err := seq.Collect(src)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(nodes, tree.Compare)
	nodes = slices.CompactFunc(nodes, func(a, b tree.Node) bool { return tree.Compare(a, b) == 0 })
	return seq.FromSlice(nodes), nil
}
