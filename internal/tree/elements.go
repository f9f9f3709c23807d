package tree

import (
	"log/slog"
	"sync"

	"github.com/jacoelho/xdm/internal/seq"
)

// elementIndex caches, per name fingerprint, the element numbers in
// document order.
type elementIndex struct {
	mu    sync.Mutex
	lists map[int32][]Node
}

func (x *elementIndex) reset() {
	x.mu.Lock()
	x.lists = nil
	x.mu.Unlock()
}

// AllElements returns the elements named by fingerprint in document order.
// The list is computed on first request and cached.
func (t *Tree) AllElements(fingerprint int32) seq.Iterator[Node] {
	t.elements.mu.Lock()
	list, ok := t.elements.lists[fingerprint]
	if !ok {
		for i := range t.records {
			r := &t.records[i]
			if (r.kind == KindElement || r.kind == KindTextualElement) && r.name.Fingerprint() == fingerprint {
				list = append(list, Node{tree: t, nr: int32(i), owner: -1})
			}
		}
		if t.elements.lists == nil {
			t.elements.lists = make(map[int32][]Node)
		}
		t.elements.lists[fingerprint] = list
		t.logIndexBuilt("elements", len(list))
	}
	t.elements.mu.Unlock()
	return seq.FromSlice(list)
}

func (t *Tree) logIndexBuilt(index string, entries int) {
	t.logger.Debug("index built",
		slog.String("index", index),
		slog.Int64("document", t.docNumber),
		slog.Int("entries", entries))
}
