// Package seq defines the pull-based sequence iterator contract and the
// combinators used to compose query pipelines over it.
package seq

import "slices"

// Property advertises optional capabilities of an iterator.
type Property uint8

const (
	// Grounded iterators hold their items in memory and implement Materializer.
	Grounded Property = 1 << iota
	// LastPosition iterators know their length and implement LastPositionFinder.
	LastPosition
	// Lookahead iterators can report whether another item follows and
	// implement LookaheadIterator.
	Lookahead
)

// Has reports whether all capabilities in q are present in p.
func (p Property) Has(q Property) bool {
	return p&q == q
}

// Iterator produces items one at a time.
//
// Next returns the next item and true, or the zero value and false once the
// sequence is exhausted or has failed; callers must not call Next again after
// it returned false. Err reports the failure, if any, that ended iteration.
// Close releases any held resource and must be called by the owner, also on
// the failure path. Another returns a fresh iterator over the same sequence
// starting from the beginning, without disturbing the receiver's position.
type Iterator[T any] interface {
	Next() (T, bool)
	Err() error
	Close() error
	Another() Iterator[T]
	Properties() Property
}

// LastPositionFinder is implemented by iterators advertising LastPosition.
type LastPositionFinder interface {
	Len() int
}

// LookaheadIterator is implemented by iterators advertising Lookahead.
type LookaheadIterator interface {
	HasNext() bool
}

// Materializer is implemented by iterators advertising Grounded. Materialize
// returns the items that Next has not yet produced.
type Materializer[T any] interface {
	Materialize() []T
}

// isKnownEmpty reports whether it is statically known to yield nothing.
func isKnownEmpty[T any](it Iterator[T]) bool {
	if it == nil {
		return true
	}
	if _, ok := it.(empty[T]); ok {
		return true
	}
	if !it.Properties().Has(Grounded | LastPosition) {
		return false
	}
	lp, ok := it.(LastPositionFinder)
	return ok && lp.Len() == 0
}

// Collect drains it into a slice owned by the caller and closes it.
func Collect[T any](it Iterator[T]) ([]T, error) {
	if it == nil {
		return nil, nil
	}
	if it.Properties().Has(Grounded) {
		if m, ok := it.(Materializer[T]); ok {
			items := slices.Clone(m.Materialize())
			return items, it.Close()
		}
	}
	var out []T
	for {
		item, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, item)
	}
	err := it.Err()
	if closeErr := it.Close(); err == nil {
		err = closeErr
	}
	return out, err
}

// Count returns the number of items in the sequence of it without disturbing
// it: iterators that know their length answer directly, others are counted
// through a fresh copy obtained from Another.
func Count[T any](it Iterator[T]) (int, error) {
	if it == nil {
		return 0, nil
	}
	if it.Properties().Has(LastPosition) {
		if lp, ok := it.(LastPositionFinder); ok {
			return lp.Len(), nil
		}
	}
	other := it.Another()
	n := 0
	for {
		if _, ok := other.Next(); !ok {
			break
		}
		n++
	}
	err := other.Err()
	if closeErr := other.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

// Last returns the final item of the sequence of it, reading a fresh copy.
func Last[T any](it Iterator[T]) (T, bool, error) {
	var last T
	if it == nil {
		return last, false, nil
	}
	other := it.Another()
	found := false
	for {
		item, ok := other.Next()
		if !ok {
			break
		}
		last = item
		found = true
	}
	err := other.Err()
	if closeErr := other.Close(); err == nil {
		err = closeErr
	}
	return last, found, err
}

// First returns the first item of it and closes it.
func First[T any](it Iterator[T]) (T, bool, error) {
	var zero T
	if it == nil {
		return zero, false, nil
	}
	item, ok := it.Next()
	err := it.Err()
	if closeErr := it.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return zero, false, err
	}
	return item, ok, nil
}
