package seq

import (
	"cmp"
	"iter"
	"slices"
)

// All exposes it as a range-over-func sequence. A failure ends the range
// early and stays observable through it.Err. it is not closed.
func All[T any](it Iterator[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			item, ok := it.Next()
			if !ok || !yield(item) {
				return
			}
		}
	}
}

type pulled[T any] struct {
	seq    iter.Seq[T]
	next   func() (T, bool)
	stop   func()
	closed bool
}

// FromSeq lifts a restartable range-over-func sequence into an Iterator.
// Another ranges over s again.
func FromSeq[T any](s iter.Seq[T]) Iterator[T] {
	return &pulled[T]{seq: s}
}

func (p *pulled[T]) Next() (T, bool) {
	if p.next == nil {
		if p.seq == nil || p.closed {
			var zero T
			return zero, false
		}
		p.next, p.stop = iter.Pull(p.seq)
	}
	return p.next()
}

func (p *pulled[T]) Err() error { return nil }

func (p *pulled[T]) Close() error {
	if p.stop != nil {
		p.stop()
	}
	p.closed = true
	p.next = nil
	p.stop = nil
	return nil
}

func (p *pulled[T]) Another() Iterator[T] { return &pulled[T]{seq: p.seq} }
func (p *pulled[T]) Properties() Property { return 0 }

// SortedKeys yields map keys in sorted order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) iter.Seq[K] {
	keys := make([]K, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return slices.Values(keys)
}
