package tree

import (
	"fmt"
	"sync"
)

// parentOf returns the parent record of nr, or -1 for a depth-0 record. The
// sibling chain is followed until it either reaches the owner link of the
// last sibling or a parent pointer, so the cost is bounded by the parent
// pointer interval.
func (t *Tree) parentOf(nr int32) int32 {
	if t.records[nr].depth == 0 {
		return -1
	}
	start := nr
	for steps := 0; ; steps++ {
		l := t.records[nr].next
		switch {
		case !l.Valid():
			panic(fmt.Sprintf("tree: broken sibling chain at node %d", nr))
		case l.owner:
			return l.target
		}
		nr = l.target
		if t.records[nr].kind == KindParentPointer {
			return t.records[nr].alpha
		}
		if steps > len(t.records) {
			panic(fmt.Sprintf("tree: cycle in sibling chain from node %d", start))
		}
	}
}

// nextSiblingOf returns the following sibling of nr, or -1.
func (t *Tree) nextSiblingOf(nr int32) int32 {
	l := t.records[nr].next
	if !l.Valid() || l.owner {
		return -1
	}
	s := l.target
	if t.records[s].kind == KindParentPointer {
		s = t.records[s].next.target
	}
	return s
}

// firstChildOf returns the first child record of nr, or -1. The virtual
// text child of a textual element is not a record and is not reported.
func (t *Tree) firstChildOf(nr int32) int32 {
	r := &t.records[nr]
	if r.kind != KindElement && r.kind != KindDocument {
		return -1
	}
	c := nr + 1
	if int(c) >= len(t.records) {
		return -1
	}
	if cr := &t.records[c]; cr.depth == r.depth+1 && cr.kind != KindStopper {
		return c
	}
	return -1
}

// previousSiblingOf returns the preceding sibling of nr, or -1.
func (t *Tree) previousSiblingOf(nr int32) int32 {
	if t.records[nr].depth == 0 {
		return -1
	}
	if t.closed {
		return t.prior.get(t)[nr]
	}
	p := t.parentOf(nr)
	prev := int32(-1)
	for c := t.firstChildOf(p); c >= 0 && c != nr; c = t.nextSiblingOf(c) {
		prev = c
	}
	return prev
}

// followingOf returns the first record after the subtree of nr, or -1.
func (t *Tree) followingOf(nr int32) int32 {
	for {
		l := t.records[nr].next
		if !l.Valid() {
			return -1
		}
		if l.owner {
			nr = l.target
			continue
		}
		s := l.target
		if t.records[s].kind == KindParentPointer {
			s = t.records[s].next.target
		}
		return s
	}
}

// visible reports whether record nr is a node rather than bookkeeping.
func (t *Tree) visible(nr int32) bool {
	k := t.records[nr].kind
	return k != KindParentPointer && k != KindStopper
}

// priorIndex maps every record to its preceding sibling. It is built on
// first use after Close.
type priorIndex struct {
	mu    sync.Mutex
	prior []int32
}

func (p *priorIndex) get(t *Tree) []int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.prior != nil {
		return p.prior
	}
	prior := make([]int32, len(t.records))
	for i := range prior {
		prior[i] = -1
	}
	for i := range t.records {
		if !t.visible(int32(i)) {
			continue
		}
		if s := t.nextSiblingOf(int32(i)); s >= 0 {
			prior[s] = int32(i)
		}
	}
	p.prior = prior
	return prior
}

func (p *priorIndex) reset() {
	p.mu.Lock()
	p.prior = nil
	p.mu.Unlock()
}
