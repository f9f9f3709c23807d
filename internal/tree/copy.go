package tree

import (
	"fmt"

	"github.com/jacoelho/xdm/internal/event"
	"github.com/jacoelho/xdm/internal/names"
)

// Copy re-emits the subtree rooted at n as events into dst. Copying a
// document produces StartDocument ... EndDocument; copying an element
// also declares the namespaces it inherits. dst is not closed.
func (n Node) Copy(dst event.Receiver) error {
	t := n.tree
	switch n.slot {
	case slotAttribute:
		a := &t.attrs[n.nr]
		return dst.Attribute(t.pool.QName(a.name), a.typ, a.value, t.eventLocation(a.owner), a.props)
	case slotNamespace:
		return dst.Namespace(t.namespaces[n.nr].binding, 0)
	case slotText:
		return dst.Characters(t.textOf(n.nr), event.Location{}, event.WholeTextNode)
	}
	c := copier{tree: t, dst: dst, root: n.nr}
	if err := c.run(); err != nil {
		return fmt.Errorf("copy %s: %w", n.Path(), err)
	}
	return nil
}

type copier struct {
	tree *Tree
	dst  event.Receiver
	open []int32
	root int32
}

func (c *copier) run() error {
	t := c.tree
	base := t.records[c.root].depth
	for r := c.root; int(r) < len(t.records); r++ {
		rec := &t.records[r]
		if r != c.root && rec.depth <= base {
			break
		}
		switch rec.kind {
		case KindParentPointer:
			continue
		case KindStopper:
			return c.closeTo(-1)
		}
		if err := c.closeTo(rec.depth); err != nil {
			return err
		}
		if err := c.emit(r); err != nil {
			return err
		}
	}
	return c.closeTo(-1)
}

// closeTo ends every open container at depth >= d.
func (c *copier) closeTo(d int32) error {
	t := c.tree
	for len(c.open) > 0 {
		top := c.open[len(c.open)-1]
		if t.records[top].depth < d {
			return nil
		}
		c.open = c.open[:len(c.open)-1]
		var err error
		if t.records[top].kind == KindDocument {
			err = c.dst.EndDocument()
		} else {
			err = c.dst.EndElement()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *copier) emit(r int32) error {
	t := c.tree
	rec := &t.records[r]
	switch rec.kind {
	case KindDocument:
		c.open = append(c.open, r)
		return c.dst.StartDocument(0)
	case KindElement:
		if err := c.startElement(r); err != nil {
			return err
		}
		c.open = append(c.open, r)
		return nil
	case KindTextualElement:
		if err := c.startElement(r); err != nil {
			return err
		}
		if err := c.dst.Characters(t.textOf(r), event.Location{}, event.WholeTextNode); err != nil {
			return err
		}
		return c.dst.EndElement()
	case KindText, KindWhitespaceText:
		return c.dst.Characters(t.textOf(r), event.Location{}, event.WholeTextNode)
	case KindComment:
		return c.dst.Comment(t.textOf(r), t.eventLocation(r), 0)
	case KindProcessingInstruction:
		return c.dst.ProcessingInstruction(t.pool.QName(rec.name).Local, t.textOf(r), t.eventLocation(r), 0)
	}
	panic(fmt.Sprintf("tree: cannot copy record %d of kind %s", r, rec.kind))
}

func (c *copier) startElement(r int32) error {
	t := c.tree
	n := Node{tree: t, nr: r, owner: -1}
	var props event.Properties
	if t.flags != nil {
		f := t.flags[r]
		if f&flagID != 0 {
			props |= event.IsID
		}
		if f&flagIDRef != 0 {
			props |= event.IsIDRef
		}
		if f&flagNilled != 0 {
			props |= event.Nilled
		}
	}
	if err := c.dst.StartElement(t.pool.QName(t.records[r].name), n.TypeAnnotation(), t.eventLocation(r), props); err != nil {
		return err
	}
	var bindings []names.Binding
	if r == c.root {
		for _, b := range n.InScopeNamespaces() {
			if !b.IsXML() {
				bindings = append(bindings, b)
			}
		}
	} else {
		bindings = n.DeclaredNamespaces()
	}
	for _, b := range bindings {
		if err := c.dst.Namespace(b, 0); err != nil {
			return err
		}
	}
	lo, hi := t.attributeRange(r)
	for i := lo; i < hi; i++ {
		a := &t.attrs[i]
		if err := c.dst.Attribute(t.pool.QName(a.name), a.typ, a.value, t.eventLocation(r), a.props); err != nil {
			return err
		}
	}
	return c.dst.StartContent()
}

func (t *Tree) eventLocation(nr int32) event.Location {
	line, col := t.location(nr)
	if line < 0 {
		line, col = 0, 0
	}
	return event.Location{SystemID: t.SystemID(nr), Line: line, Column: col}
}
