package tree

import (
	"slices"

	"github.com/jacoelho/xdm/internal/seq"
)

// UnparsedEntity returns the unparsed entity declared under name.
func (t *Tree) UnparsedEntity(name string) (Entity, bool) {
	e, ok := t.entities[name]
	return e, ok
}

// UnparsedEntityNames returns the declared unparsed entity names, sorted.
func (t *Tree) UnparsedEntityNames() []string {
	return slices.Collect(seq.SortedKeys(t.entities))
}

// SetUserData attaches value to the document under key. A nil value
// removes the key.
func (t *Tree) SetUserData(key string, value any) {
	t.userMu.Lock()
	defer t.userMu.Unlock()
	if value == nil {
		delete(t.userData, key)
		return
	}
	if t.userData == nil {
		t.userData = make(map[string]any)
	}
	t.userData[key] = value
}

// UserData returns the value attached under key.
func (t *Tree) UserData(key string) (any, bool) {
	t.userMu.Lock()
	defer t.userMu.Unlock()
	v, ok := t.userData[key]
	return v, ok
}
