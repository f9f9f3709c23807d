package tree

import (
	xdmatomic "github.com/jacoelho/xdm/internal/atomic"
	"github.com/jacoelho/xdm/internal/seq"
)

// Untyped reports whether no node of t carries a type annotation.
func (t *Tree) Untyped() bool {
	if t.types != nil {
		return false
	}
	for i := range t.attrs {
		if !t.attrs[i].typ.IsUntyped() {
			return false
		}
	}
	return true
}

// Atomize maps a node sequence to the typed values of its nodes.
func Atomize(src seq.Iterator[Node]) seq.Iterator[xdmatomic.Value] {
	return seq.Map(src, Node.Atomize)
}

// AtomizeUntyped maps a node sequence to the string values of its nodes as
// xs:untypedAtomic, skipping type lookup. It is only correct for nodes of
// untyped trees.
func AtomizeUntyped(src seq.Iterator[Node]) seq.Iterator[xdmatomic.Value] {
	return seq.Map(src, func(n Node) xdmatomic.Value {
		if n.slot == slotRecord {
			switch n.tree.records[n.nr].kind {
			case KindComment, KindProcessingInstruction:
				return xdmatomic.StringValue(n.StringValue())
			}
		}
		if n.slot == slotNamespace {
			return xdmatomic.StringValue(n.StringValue())
		}
		return xdmatomic.UntypedValue(n.StringValue())
	})
}

// AtomizeIn picks the untyped fast path when every node of src comes from
// t and t is untyped.
func AtomizeIn(t *Tree, src seq.Iterator[Node]) seq.Iterator[xdmatomic.Value] {
	if t != nil && t.Untyped() {
		return AtomizeUntyped(src)
	}
	return Atomize(src)
}
