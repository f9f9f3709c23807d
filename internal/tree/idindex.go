package tree

import (
	"sync"

	xdmatomic "github.com/jacoelho/xdm/internal/atomic"
)

// idEntry locates the node carrying an ID value: an element when attr is -1,
// otherwise attribute attr of element nr.
type idEntry struct {
	nr   int32
	attr int32
}

func (e idEntry) before(o idEntry) bool {
	if e.nr != o.nr {
		return e.nr < o.nr
	}
	return e.attr < o.attr
}

// idIndex maps ID values to their node. The first lookup completes the
// entries registered while building with a walk over all records; after
// ResetIndexes the walk runs again on the next lookup.
type idIndex struct {
	mu    sync.RWMutex
	ids   map[string]idEntry
	built bool
}

// register keeps the entry earliest in document order, so eager
// registration during building and a later rebuild agree.
func (x *idIndex) register(value string, e idEntry) {
	if x.ids == nil {
		x.ids = make(map[string]idEntry)
	}
	if old, ok := x.ids[value]; ok && !e.before(old) {
		return
	}
	x.ids[value] = e
}

// RegisterID indexes element nr, or attribute attr of it when attr >= 0,
// under value. Values that are not NCNames after trimming are ignored.
// When two nodes carry the same value the first in document order wins.
func (t *Tree) RegisterID(value string, nr, attr int32) {
	value = xdmatomic.Trim(value)
	if !xdmatomic.IsNCName(value) {
		return
	}
	t.ids.mu.Lock()
	t.ids.register(value, idEntry{nr: nr, attr: attr})
	t.ids.mu.Unlock()
}

func (t *Tree) rebuildIDs() {
	x := &t.ids
	for i := range t.attrs {
		a := Node{tree: t, nr: int32(i), owner: t.attrs[i].owner, slot: slotAttribute}
		if a.IsID() {
			if v := xdmatomic.Trim(a.StringValue()); xdmatomic.IsNCName(v) {
				x.register(v, idEntry{nr: a.owner, attr: int32(i)})
			}
		}
	}
	for i := range t.records {
		if !t.hasFlag(int32(i), flagID) {
			continue
		}
		if k := t.records[i].kind; k != KindElement && k != KindTextualElement {
			continue
		}
		if v := xdmatomic.Trim(Node{tree: t, nr: int32(i), owner: -1}.StringValue()); xdmatomic.IsNCName(v) {
			x.register(v, idEntry{nr: int32(i), attr: -1})
		}
	}
	x.built = true
}

// SelectID returns the element holding the ID value id. An ID attribute
// resolves to its owning element. An ID-typed element resolves to itself,
// or to its parent when wantParent is set. A miss is not an error.
func (t *Tree) SelectID(id string, wantParent bool) (Node, bool) {
	id = xdmatomic.Trim(id)
	t.ids.mu.RLock()
	built := t.ids.built
	e, ok := t.ids.ids[id]
	t.ids.mu.RUnlock()
	if !built {
		t.ids.mu.Lock()
		if !t.ids.built {
			t.rebuildIDs()
			t.logIndexBuilt("id", len(t.ids.ids))
		}
		e, ok = t.ids.ids[id]
		t.ids.mu.Unlock()
	}
	if !ok {
		return Node{}, false
	}
	n := t.Node(e.nr)
	if e.attr < 0 && wantParent {
		return n.Parent()
	}
	return n, true
}

// Deregister removes id from the ID index. It stays removed until
// ResetIndexes.
func (t *Tree) Deregister(id string) {
	t.ids.mu.Lock()
	if !t.ids.built {
		t.rebuildIDs()
	}
	delete(t.ids.ids, xdmatomic.Trim(id))
	t.ids.mu.Unlock()
}

// ResetIndexes discards every lazily built index. The ID index is rebuilt
// from the records on the next lookup.
func (t *Tree) ResetIndexes() {
	t.ids.mu.Lock()
	t.ids.ids = nil
	t.ids.built = false
	t.ids.mu.Unlock()
	t.elements.reset()
	t.prior.reset()
}
