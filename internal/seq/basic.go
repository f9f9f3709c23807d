package seq

type empty[T any] struct{}

// Empty returns the iterator over no items. It is stateless: Another returns
// an equal value.
func Empty[T any]() Iterator[T] {
	return empty[T]{}
}

func (empty[T]) Next() (T, bool) {
	var zero T
	return zero, false
}

func (empty[T]) Err() error             { return nil }
func (empty[T]) Close() error           { return nil }
func (e empty[T]) Another() Iterator[T] { return e }
func (empty[T]) Len() int               { return 0 }
func (empty[T]) HasNext() bool          { return false }
func (empty[T]) Materialize() []T       { return nil }

func (empty[T]) Properties() Property {
	return Grounded | LastPosition | Lookahead
}

type single[T any] struct {
	item T
	done bool
}

// Single returns an iterator over exactly one item.
func Single[T any](item T) Iterator[T] {
	return &single[T]{item: item}
}

func (s *single[T]) Next() (T, bool) {
	if s.done {
		var zero T
		return zero, false
	}
	s.done = true
	return s.item, true
}

func (s *single[T]) Err() error           { return nil }
func (s *single[T]) Close() error         { return nil }
func (s *single[T]) Another() Iterator[T] { return &single[T]{item: s.item} }
func (s *single[T]) Len() int             { return 1 }
func (s *single[T]) HasNext() bool        { return !s.done }
func (s *single[T]) Properties() Property { return Grounded | LastPosition | Lookahead }

func (s *single[T]) Materialize() []T {
	if s.done {
		return nil
	}
	return []T{s.item}
}

// List iterates a materialized slice. The slice must not be modified while
// any iterator over it is in use.
type List[T any] struct {
	items   []T
	pos     int
	reverse bool
}

// FromSlice returns an iterator over items in order.
func FromSlice[T any](items []T) Iterator[T] {
	if len(items) == 0 {
		return Empty[T]()
	}
	return &List[T]{items: items}
}

// Reverse returns an iterator over items from last to first.
func Reverse[T any](items []T) Iterator[T] {
	if len(items) == 0 {
		return Empty[T]()
	}
	return &List[T]{items: items, reverse: true}
}

func (l *List[T]) Next() (T, bool) {
	if l.pos >= len(l.items) {
		var zero T
		return zero, false
	}
	i := l.pos
	if l.reverse {
		i = len(l.items) - 1 - l.pos
	}
	l.pos++
	return l.items[i], true
}

func (l *List[T]) Err() error   { return nil }
func (l *List[T]) Close() error { return nil }

func (l *List[T]) Another() Iterator[T] {
	return &List[T]{items: l.items, reverse: l.reverse}
}

// Reverse returns a fresh iterator over the same items in the opposite order.
func (l *List[T]) Reverse() Iterator[T] {
	return &List[T]{items: l.items, reverse: !l.reverse}
}

func (l *List[T]) Len() int      { return len(l.items) }
func (l *List[T]) HasNext() bool { return l.pos < len(l.items) }

// Materialize returns the items not yet read, in iteration order. For
// forward lists the backing slice is returned without copying.
func (l *List[T]) Materialize() []T {
	if !l.reverse {
		return l.items[l.pos:]
	}
	rest := l.items[:len(l.items)-l.pos]
	out := make([]T, len(rest))
	for i, item := range rest {
		out[len(out)-1-i] = item
	}
	return out
}

func (l *List[T]) Properties() Property {
	return Grounded | LastPosition | Lookahead
}
