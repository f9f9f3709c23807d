package tree

import (
	"fmt"
	"slices"

	xdmatomic "github.com/jacoelho/xdm/internal/atomic"
	"github.com/jacoelho/xdm/internal/event"
	"github.com/jacoelho/xdm/internal/names"
)

type slot uint8

const (
	slotRecord slot = iota
	slotAttribute
	slotNamespace
	slotText
)

// Node is a handle to one node of a tree. It is a small comparable value:
// two handles are equal exactly when they denote the same node.
//
// Attribute handles carry the attribute index, namespace handles the binding
// index and the element whose namespace axis produced them, and the virtual
// text child of a textual element carries the element number.
type Node struct {
	tree  *Tree
	nr    int32
	owner int32
	slot  slot
}

// Node returns the handle of record nr. It panics when nr does not denote a
// node.
func (t *Tree) Node(nr int32) Node {
	t.check(nr)
	if !t.visible(nr) {
		panic(fmt.Sprintf("tree: record %d is a %s, not a node", nr, t.records[nr].kind))
	}
	return Node{tree: t, nr: nr, owner: -1}
}

// Attribute returns the handle of attribute i.
func (t *Tree) Attribute(i int32) Node {
	if i < 0 || int(i) >= len(t.attrs) {
		panic(fmt.Sprintf("tree: attribute %d out of range [0,%d)", i, len(t.attrs)))
	}
	return Node{tree: t, nr: i, owner: t.attrs[i].owner, slot: slotAttribute}
}

// Document returns node 0.
func (t *Tree) Document() Node {
	return t.Node(0)
}

// Root returns the document node, or the top element when the document
// node was synthesized.
func (t *Tree) Root() Node {
	if t.imaginary {
		if c := t.firstChildOf(0); c >= 0 {
			return t.Node(c)
		}
	}
	return t.Node(0)
}

func (t *Tree) namespaceNode(idx, owner int32) Node {
	return Node{tree: t, nr: idx, owner: owner, slot: slotNamespace}
}

func (t *Tree) textNode(elem int32) Node {
	return Node{tree: t, nr: elem, owner: elem, slot: slotText}
}

// IsZero reports whether n is the zero handle.
func (n Node) IsZero() bool { return n.tree == nil }

// Tree returns the tree holding n.
func (n Node) Tree() *Tree { return n.tree }

// Number returns the record number of n. For attributes it is the attribute
// index, for namespaces the binding index and for the virtual text of a
// textual element the element number.
func (n Node) Number() int32 { return n.nr }

// Kind returns the node kind.
func (n Node) Kind() Kind {
	switch n.slot {
	case slotAttribute:
		return KindAttribute
	case slotNamespace:
		return KindNamespace
	case slotText:
		return KindText
	}
	return n.tree.records[n.nr].kind.Visible()
}

// recordNr returns the record standing for n in document order: the owner
// for attributes, namespaces and virtual text.
func (n Node) recordNr() int32 {
	if n.slot == slotRecord {
		return n.nr
	}
	return n.owner
}

// Name returns the expanded name. Text, comment and document nodes have the
// zero name. A processing instruction is named by its target and a namespace
// node by its prefix.
func (n Node) Name() names.QName {
	t := n.tree
	switch n.slot {
	case slotAttribute:
		return t.pool.QName(t.attrs[n.nr].name)
	case slotNamespace:
		return names.QName{Local: t.namespaces[n.nr].binding.Prefix}
	case slotText:
		return names.QName{}
	}
	r := &t.records[n.nr]
	switch r.kind {
	case KindElement, KindTextualElement, KindProcessingInstruction:
		return t.pool.QName(r.name)
	}
	return names.QName{}
}

// LocalName returns the local part of the name.
func (n Node) LocalName() string { return n.Name().Local }

// NamespaceURI returns the namespace part of the name.
func (n Node) NamespaceURI() string { return n.Name().Namespace }

// Prefix returns the prefix part of the name.
func (n Node) Prefix() string { return n.Name().Prefix }

// Fingerprint returns the fingerprint of the name, or -1 for unnamed nodes.
func (n Node) Fingerprint() int32 {
	switch n.slot {
	case slotAttribute:
		return n.tree.attrs[n.nr].name.Fingerprint()
	case slotRecord:
		r := &n.tree.records[n.nr]
		if r.kind == KindElement || r.kind == KindTextualElement || r.kind == KindProcessingInstruction {
			return r.name.Fingerprint()
		}
	}
	return -1
}

// StringValue returns the string value: the text content for documents and
// elements, the value for attributes, namespaces, text, comments and
// processing instructions.
func (n Node) StringValue() string {
	t := n.tree
	switch n.slot {
	case slotAttribute:
		return t.attrs[n.nr].value
	case slotNamespace:
		return t.namespaces[n.nr].binding.URI
	case slotText:
		return t.textOf(n.nr)
	}
	switch t.records[n.nr].kind {
	case KindDocument, KindElement:
		return t.subtreeText(n.nr)
	default:
		return t.textOf(n.nr)
	}
}

// TypeAnnotation returns the type annotation of n. Untyped elements report
// Untyped, untyped attributes and text report UntypedAtomic, and comments,
// processing instructions and namespaces report String.
func (n Node) TypeAnnotation() xdmatomic.Type {
	t := n.tree
	switch n.slot {
	case slotAttribute:
		typ := t.attrs[n.nr].typ
		if typ == xdmatomic.Untyped {
			return xdmatomic.UntypedAtomic
		}
		return typ
	case slotNamespace:
		return xdmatomic.String
	case slotText:
		return xdmatomic.UntypedAtomic
	}
	switch t.records[n.nr].kind {
	case KindElement, KindTextualElement:
		if t.types != nil && t.types[n.nr] != xdmatomic.Untyped {
			return t.types[n.nr]
		}
		return xdmatomic.Untyped
	case KindComment, KindProcessingInstruction:
		return xdmatomic.String
	}
	return xdmatomic.UntypedAtomic
}

// Atomize returns the typed value of n. Untyped nodes yield their string
// value as xs:untypedAtomic.
func (n Node) Atomize() xdmatomic.Value {
	typ := n.TypeAnnotation()
	if typ == xdmatomic.Untyped {
		typ = xdmatomic.UntypedAtomic
	}
	return xdmatomic.Value{Lexical: n.StringValue(), Type: typ}
}

// IsID reports whether n is an ID-typed element or attribute.
func (n Node) IsID() bool {
	switch n.slot {
	case slotAttribute:
		a := &n.tree.attrs[n.nr]
		return a.props.Has(event.IsID) || isXMLID(n.tree, a.name)
	case slotRecord:
		return n.isElement() && n.tree.hasFlag(n.nr, flagID)
	}
	return false
}

// IsIDRef reports whether n is an IDREF or IDREFS typed element or attribute.
func (n Node) IsIDRef() bool {
	switch n.slot {
	case slotAttribute:
		return n.tree.attrs[n.nr].props.Has(event.IsIDRef)
	case slotRecord:
		return n.isElement() && n.tree.hasFlag(n.nr, flagIDRef)
	}
	return false
}

// IsNilled reports whether n is an element marked nilled.
func (n Node) IsNilled() bool {
	return n.slot == slotRecord && n.isElement() && n.tree.hasFlag(n.nr, flagNilled)
}

func (n Node) isElement() bool {
	if n.slot != slotRecord {
		return false
	}
	k := n.tree.records[n.nr].kind
	return k == KindElement || k == KindTextualElement
}

// Parent returns the parent node. Attributes, namespaces and the virtual text
// of a textual element have their element as parent.
func (n Node) Parent() (Node, bool) {
	if n.slot != slotRecord {
		return n.tree.Node(n.owner), true
	}
	if p := n.tree.parentOf(n.nr); p >= 0 {
		return n.tree.Node(p), true
	}
	return Node{}, false
}

// FirstChild returns the first child node.
func (n Node) FirstChild() (Node, bool) {
	if n.slot != slotRecord {
		return Node{}, false
	}
	t := n.tree
	if t.records[n.nr].kind == KindTextualElement {
		return t.textNode(n.nr), true
	}
	if c := t.firstChildOf(n.nr); c >= 0 {
		return t.Node(c), true
	}
	return Node{}, false
}

// HasChildren reports whether n has at least one child.
func (n Node) HasChildren() bool {
	_, ok := n.FirstChild()
	return ok
}

// NextSibling returns the following sibling.
func (n Node) NextSibling() (Node, bool) {
	if n.slot != slotRecord {
		return Node{}, false
	}
	if s := n.tree.nextSiblingOf(n.nr); s >= 0 {
		return n.tree.Node(s), true
	}
	return Node{}, false
}

// PreviousSibling returns the preceding sibling.
func (n Node) PreviousSibling() (Node, bool) {
	if n.slot != slotRecord {
		return Node{}, false
	}
	if s := n.tree.previousSiblingOf(n.nr); s >= 0 {
		return n.tree.Node(s), true
	}
	return Node{}, false
}

// Root returns the root of the tree containing n.
func (n Node) Root() Node {
	nr := n.recordNr()
	for {
		p := n.tree.parentOf(nr)
		if p < 0 {
			return n.tree.Node(nr)
		}
		nr = p
	}
}

// Document returns the document node of the tree containing n.
func (n Node) Document() Node {
	return n.tree.Document()
}

// attributeRange returns the attribute indexes owned by element nr.
func (t *Tree) attributeRange(nr int32) (int32, int32) {
	r := &t.records[nr]
	if r.kind != KindElement || r.alpha < 0 {
		return 0, 0
	}
	end := r.alpha
	for int(end) < len(t.attrs) && t.attrs[end].owner == nr {
		end++
	}
	return r.alpha, end
}

// namespaceRange returns the namespace binding indexes declared on element nr.
func (t *Tree) namespaceRange(nr int32) (int32, int32) {
	r := &t.records[nr]
	if r.kind != KindElement || r.beta < 0 {
		return 0, 0
	}
	end := r.beta
	for int(end) < len(t.namespaces) && t.namespaces[end].owner == nr {
		end++
	}
	return r.beta, end
}

// Attributes returns the attributes of an element in document order.
func (n Node) Attributes() []Node {
	if n.slot != slotRecord {
		return nil
	}
	lo, hi := n.tree.attributeRange(n.nr)
	if lo == hi {
		return nil
	}
	out := make([]Node, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, n.tree.Attribute(i))
	}
	return out
}

// AttributeValue returns the value of the attribute with the given
// expanded name.
func (n Node) AttributeValue(namespace, local string) (string, bool) {
	if n.slot != slotRecord {
		return "", false
	}
	t := n.tree
	fp, ok := t.pool.Fingerprint(namespace, local)
	if !ok {
		return "", false
	}
	lo, hi := t.attributeRange(n.nr)
	for i := lo; i < hi; i++ {
		if t.attrs[i].name.Fingerprint() == fp {
			return t.attrs[i].value, true
		}
	}
	return "", false
}

// DeclaredNamespaces returns the namespace bindings declared on an element,
// including undeclarations.
func (n Node) DeclaredNamespaces() []names.Binding {
	if n.slot != slotRecord {
		return nil
	}
	lo, hi := n.tree.namespaceRange(n.nr)
	if lo == hi {
		return nil
	}
	out := make([]names.Binding, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, n.tree.namespaces[i].binding)
	}
	return out
}

// inScope returns the binding indexes in scope for element nr, nearest
// declaration first per prefix, with undeclared prefixes removed and the xml
// binding last.
func (t *Tree) inScope(nr int32) []int32 {
	var seen []string
	var out []int32
	for e := nr; e >= 0; e = t.parentOf(e) {
		lo, hi := t.namespaceRange(e)
		for i := lo; i < hi; i++ {
			b := t.namespaces[i].binding
			if slices.Contains(seen, b.Prefix) {
				continue
			}
			seen = append(seen, b.Prefix)
			if !b.IsUndeclaration() {
				out = append(out, i)
			}
		}
	}
	return append(out, 0)
}

// InScopeNamespaces returns the namespace bindings in scope for an element.
func (n Node) InScopeNamespaces() []names.Binding {
	if !n.isElement() {
		return nil
	}
	idx := n.tree.inScope(n.nr)
	out := make([]names.Binding, len(idx))
	for i, j := range idx {
		out[i] = n.tree.namespaces[j].binding
	}
	return out
}

// Binding returns the binding of a namespace node.
func (n Node) Binding() (names.Binding, bool) {
	if n.slot != slotNamespace {
		return names.Binding{}, false
	}
	return n.tree.namespaces[n.nr].binding, true
}

// SystemID returns the system identifier of the entity containing n.
func (n Node) SystemID() string {
	return n.tree.SystemID(n.recordNr())
}

// BaseURI returns the base URI of n, which is its system identifier.
func (n Node) BaseURI() string {
	return n.SystemID()
}

// Line returns the source line of n or of its nearest ancestor with a
// recorded position, or -1.
func (n Node) Line() int {
	return n.tree.Line(n.recordNr())
}

func (n Node) String() string {
	if n.IsZero() {
		return "<nil>"
	}
	return n.Kind().String() + " " + n.Path()
}

func isXMLID(t *Tree, name names.NameID) bool {
	q := t.pool.QName(name)
	return q.Local == "id" && q.Namespace == names.XMLNamespace
}
