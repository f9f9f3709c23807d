package tree

import (
	"fmt"
	"slices"

	"github.com/jacoelho/xdm/internal/seq"
)

// Axis names a navigation direction from a context node.
type Axis uint8

const (
	AxisAncestor Axis = iota
	AxisAncestorOrSelf
	AxisAttribute
	AxisChild
	AxisDescendant
	AxisDescendantOrSelf
	AxisFollowing
	AxisFollowingSibling
	AxisNamespace
	AxisParent
	AxisPreceding
	AxisPrecedingSibling
	AxisSelf
)

var axisNames = [...]string{
	AxisAncestor:         "ancestor",
	AxisAncestorOrSelf:   "ancestor-or-self",
	AxisAttribute:        "attribute",
	AxisChild:            "child",
	AxisDescendant:       "descendant",
	AxisDescendantOrSelf: "descendant-or-self",
	AxisFollowing:        "following",
	AxisFollowingSibling: "following-sibling",
	AxisNamespace:        "namespace",
	AxisParent:           "parent",
	AxisPreceding:        "preceding",
	AxisPrecedingSibling: "preceding-sibling",
	AxisSelf:             "self",
}

func (a Axis) String() string {
	if int(a) < len(axisNames) {
		return axisNames[a]
	}
	return fmt.Sprintf("Axis(%d)", a)
}

// ParseAxis resolves an axis from its XPath name.
func ParseAxis(s string) (Axis, bool) {
	for i, name := range axisNames {
		if name == s {
			return Axis(i), true
		}
	}
	return 0, false
}

// IsReverse reports whether a produces nodes in reverse document order.
func (a Axis) IsReverse() bool {
	switch a {
	case AxisAncestor, AxisAncestorOrSelf, AxisPreceding, AxisPrecedingSibling:
		return true
	}
	return false
}

// succ returns the node after n in document order. n must not be an
// attribute or namespace.
func (t *Tree) succ(n Node) (Node, bool) {
	var r int32
	switch n.slot {
	case slotText:
		r = n.owner + 1
	case slotRecord:
		if t.records[n.nr].kind == KindTextualElement {
			return t.textNode(n.nr), true
		}
		r = n.nr + 1
	default:
		panic("tree: succ of " + n.Kind().String())
	}
	for ; int(r) < len(t.records); r++ {
		switch t.records[r].kind {
		case KindParentPointer:
			continue
		case KindStopper:
			return Node{}, false
		}
		return t.Node(r), true
	}
	return Node{}, false
}

// pred returns the node before n in document order. n must not be an
// attribute or namespace.
func (t *Tree) pred(n Node) (Node, bool) {
	switch n.slot {
	case slotText:
		return t.Node(n.owner), true
	case slotRecord:
	default:
		panic("tree: pred of " + n.Kind().String())
	}
	for r := n.nr - 1; r >= 0; r-- {
		switch t.records[r].kind {
		case KindParentPointer:
			continue
		case KindTextualElement:
			return t.textNode(r), true
		}
		return t.Node(r), true
	}
	return Node{}, false
}

// depthOf returns the tree depth of a record or virtual text node.
func (t *Tree) depthOf(n Node) int32 {
	if n.slot == slotText {
		return t.records[n.owner].depth + 1
	}
	return t.records[n.nr].depth
}

// axisIterator walks one axis from a start node. step produces the next
// candidate from the current one; candidates failing the test are skipped.
type axisIterator struct {
	start   Node
	test    NodeTest
	step    func(it *axisIterator) (Node, bool)
	cur     Node
	aux     Node
	started bool
	done    bool
}

func newAxisIterator(start Node, test NodeTest, step func(*axisIterator) (Node, bool)) seq.Iterator[Node] {
	return &axisIterator{start: start, test: test, step: step}
}

func (it *axisIterator) Next() (Node, bool) {
	for !it.done {
		n, ok := it.step(it)
		it.started = true
		if !ok {
			it.done = true
			it.cur = Node{}
			break
		}
		it.cur = n
		if it.test.Matches(n) {
			return n, true
		}
	}
	return Node{}, false
}

func (it *axisIterator) Err() error   { return nil }
func (it *axisIterator) Close() error { return nil }

func (it *axisIterator) Another() seq.Iterator[Node] {
	return &axisIterator{start: it.start, test: it.test, step: it.step}
}

func (it *axisIterator) Properties() seq.Property { return 0 }

func stepParentChain(it *axisIterator) (Node, bool) {
	from := it.start
	if it.started {
		from = it.cur
	}
	return from.Parent()
}

func stepChild(it *axisIterator) (Node, bool) {
	if !it.started {
		return it.start.FirstChild()
	}
	return it.cur.NextSibling()
}

func stepDescendant(it *axisIterator) (Node, bool) {
	t := it.start.tree
	if !it.started {
		return it.start.FirstChild()
	}
	n, ok := t.succ(it.cur)
	if !ok || t.depthOf(n) <= t.depthOf(it.start) {
		return Node{}, false
	}
	return n, true
}

func stepFollowingSibling(it *axisIterator) (Node, bool) {
	from := it.start
	if it.started {
		from = it.cur
	}
	return from.NextSibling()
}

func stepPrecedingSibling(it *axisIterator) (Node, bool) {
	from := it.start
	if it.started {
		from = it.cur
	}
	return from.PreviousSibling()
}

func stepFollowing(it *axisIterator) (Node, bool) {
	t := it.start.tree
	if it.started {
		return t.succ(it.cur)
	}
	s := it.start
	switch s.slot {
	case slotAttribute, slotNamespace:
		return t.succ(t.Node(s.owner))
	case slotText:
		s = t.Node(s.owner)
	}
	if f := t.followingOf(s.nr); f >= 0 {
		return t.Node(f), true
	}
	return Node{}, false
}

// stepPreceding walks backwards in document order from the start node and
// skips its ancestors; aux holds the next ancestor still to be skipped.
func stepPreceding(it *axisIterator) (Node, bool) {
	t := it.start.tree
	if !it.started {
		base := it.start
		if base.slot == slotAttribute || base.slot == slotNamespace {
			base = t.Node(base.owner)
		}
		it.aux, _ = base.Parent()
		it.cur = base
	}
	for {
		n, ok := t.pred(it.cur)
		if !ok {
			return Node{}, false
		}
		if n == it.aux {
			it.aux, _ = n.Parent()
			it.cur = n
			continue
		}
		return n, true
	}
}

// IterateAxis returns the nodes on axis from n that satisfy test, in axis
// order. A nil test matches every node.
func (n Node) IterateAxis(axis Axis, test NodeTest) seq.Iterator[Node] {
	if test == nil {
		test = AnyNode
	}
	switch axis {
	case AxisSelf:
		return matchOne(n, true, test)
	case AxisParent:
		p, ok := n.Parent()
		return matchOne(p, ok, test)
	case AxisAncestor:
		return newAxisIterator(n, test, stepParentChain)
	case AxisAncestorOrSelf:
		return orSelf(n, test, newAxisIterator(n, test, stepParentChain))
	case AxisChild:
		if !n.HasChildren() {
			return seq.Empty[Node]()
		}
		return newAxisIterator(n, test, stepChild)
	case AxisDescendant:
		if !n.HasChildren() {
			return seq.Empty[Node]()
		}
		return newAxisIterator(n, test, stepDescendant)
	case AxisDescendantOrSelf:
		if !n.HasChildren() {
			return matchOne(n, true, test)
		}
		return orSelf(n, test, newAxisIterator(n, test, stepDescendant))
	case AxisFollowingSibling:
		if n.slot != slotRecord {
			return seq.Empty[Node]()
		}
		return newAxisIterator(n, test, stepFollowingSibling)
	case AxisPrecedingSibling:
		if n.slot != slotRecord {
			return seq.Empty[Node]()
		}
		return newAxisIterator(n, test, stepPrecedingSibling)
	case AxisFollowing:
		return newAxisIterator(n, test, stepFollowing)
	case AxisPreceding:
		return newAxisIterator(n, test, stepPreceding)
	case AxisAttribute:
		return filterSlice(n.Attributes(), test)
	case AxisNamespace:
		if !n.isElement() {
			return seq.Empty[Node]()
		}
		// Namespace nodes are in document order by binding index, so the
		// implicit xml binding comes first here, unlike InScopeNamespaces.
		idx := n.tree.inScope(n.nr)
		slices.Sort(idx)
		nodes := make([]Node, len(idx))
		for i, j := range idx {
			nodes[i] = n.tree.namespaceNode(j, n.nr)
		}
		return filterSlice(nodes, test)
	}
	panic(fmt.Sprintf("tree: unknown axis %d", axis))
}

func matchOne(n Node, ok bool, test NodeTest) seq.Iterator[Node] {
	if ok && test.Matches(n) {
		return seq.Single(n)
	}
	return seq.Empty[Node]()
}

func orSelf(n Node, test NodeTest, rest seq.Iterator[Node]) seq.Iterator[Node] {
	if test.Matches(n) {
		return seq.Prepend(n, rest)
	}
	return rest
}

func filterSlice(nodes []Node, test NodeTest) seq.Iterator[Node] {
	if _, ok := test.(anyNode); ok {
		return seq.FromSlice(nodes)
	}
	kept := nodes[:0:0]
	for _, n := range nodes {
		if test.Matches(n) {
			kept = append(kept, n)
		}
	}
	return seq.FromSlice(kept)
}
