package tree

import (
	"cmp"
	"strconv"
	"strings"
)

// orderKey places n in document order within its tree: namespaces after
// their element, then attributes, then the virtual text child.
func (n Node) orderKey() (int32, int32, int32) {
	switch n.slot {
	case slotNamespace:
		return n.owner, 1, n.nr
	case slotAttribute:
		return n.owner, 2, n.nr
	case slotText:
		return n.owner, 3, 0
	}
	return n.nr, 0, 0
}

// Compare orders a and b in document order, returning -1, 0 or +1. Nodes of
// different trees are ordered by document number.
func Compare(a, b Node) int {
	if a.tree != b.tree {
		return cmp.Compare(a.tree.docNumber, b.tree.docNumber)
	}
	ar, as, ai := a.orderKey()
	br, bs, bi := b.orderKey()
	if c := cmp.Compare(ar, br); c != 0 {
		return c
	}
	if c := cmp.Compare(as, bs); c != 0 {
		return c
	}
	return cmp.Compare(ai, bi)
}

// Compare orders n relative to other in document order.
func (n Node) Compare(other Node) int {
	return Compare(n, other)
}

// GenerateID returns an identifier unique to n among all trees of the
// process: d<document>n<node>, with a<attribute>, s<namespace> or t suffixes
// for attributes, namespaces and the virtual text of a textual element.
func (n Node) GenerateID() string {
	var b strings.Builder
	b.WriteByte('d')
	b.WriteString(strconv.FormatInt(n.tree.docNumber, 10))
	b.WriteByte('n')
	b.WriteString(strconv.Itoa(int(n.recordNr())))
	switch n.slot {
	case slotAttribute:
		b.WriteByte('a')
		b.WriteString(strconv.Itoa(int(n.nr)))
	case slotNamespace:
		b.WriteByte('s')
		b.WriteString(strconv.Itoa(int(n.nr)))
	case slotText:
		b.WriteByte('t')
	}
	return b.String()
}

// Path returns an XPath-like locator of n for diagnostics, such as
// /a[1]/b[2]/@id or /a[1]/text()[1].
func (n Node) Path() string {
	p, ok := n.Parent()
	var step string
	switch n.Kind() {
	case KindDocument:
		return "/"
	case KindAttribute:
		step = "@" + n.Name().String()
	case KindNamespace:
		step = "namespace::" + n.Name().Local
	case KindElement:
		step = n.Name().String() + "[" + strconv.Itoa(n.position()) + "]"
	case KindText:
		step = "text()[" + strconv.Itoa(n.position()) + "]"
	case KindComment:
		step = "comment()[" + strconv.Itoa(n.position()) + "]"
	case KindProcessingInstruction:
		step = "processing-instruction(" + n.Name().Local + ")[" + strconv.Itoa(n.position()) + "]"
	}
	if !ok {
		return step
	}
	prefix := p.Path()
	if prefix == "/" {
		return "/" + step
	}
	return prefix + "/" + step
}

// position counts n among its preceding siblings of the same kind and name,
// starting at 1.
func (n Node) position() int {
	if n.slot == slotText {
		return 1
	}
	pos := 1
	kind, fp := n.Kind(), n.Fingerprint()
	for s, ok := n.PreviousSibling(); ok; s, ok = s.PreviousSibling() {
		if s.Kind() == kind && s.Fingerprint() == fp {
			pos++
		}
	}
	return pos
}
