package seq

type concat[T any] struct {
	first, second Iterator[T]
	onSecond      bool
}

// Concat returns the items of first followed by the items of second.
// A side known to be empty is elided.
func Concat[T any](first, second Iterator[T]) Iterator[T] {
	switch {
	case isKnownEmpty(first) && isKnownEmpty(second):
		return Empty[T]()
	case isKnownEmpty(first):
		return second
	case isKnownEmpty(second):
		return first
	}
	return &concat[T]{first: first, second: second}
}

func (c *concat[T]) Next() (T, bool) {
	if !c.onSecond {
		if item, ok := c.first.Next(); ok {
			return item, true
		}
		if c.first.Err() != nil {
			var zero T
			return zero, false
		}
		c.onSecond = true
	}
	return c.second.Next()
}

func (c *concat[T]) Err() error {
	if err := c.first.Err(); err != nil {
		return err
	}
	return c.second.Err()
}

func (c *concat[T]) Close() error {
	err := c.first.Close()
	if err2 := c.second.Close(); err == nil {
		err = err2
	}
	return err
}

func (c *concat[T]) Another() Iterator[T] {
	return &concat[T]{first: c.first.Another(), second: c.second.Another()}
}

func (c *concat[T]) Properties() Property { return 0 }

// Prepend returns head followed by the items of base.
func Prepend[T any](head T, base Iterator[T]) Iterator[T] {
	return Concat(Single(head), base)
}

type mapped[S, T any] struct {
	src Iterator[S]
	fn  func(S) T
}

// Map applies fn to every item of src. Length and lookahead carry over.
func Map[S, T any](src Iterator[S], fn func(S) T) Iterator[T] {
	if isKnownEmpty(src) {
		return Empty[T]()
	}
	return &mapped[S, T]{src: src, fn: fn}
}

func (m *mapped[S, T]) Next() (T, bool) {
	item, ok := m.src.Next()
	if !ok {
		var zero T
		return zero, false
	}
	return m.fn(item), true
}

func (m *mapped[S, T]) Err() error   { return m.src.Err() }
func (m *mapped[S, T]) Close() error { return m.src.Close() }

func (m *mapped[S, T]) Another() Iterator[T] {
	return &mapped[S, T]{src: m.src.Another(), fn: m.fn}
}

func (m *mapped[S, T]) Len() int {
	return m.src.(LastPositionFinder).Len()
}

func (m *mapped[S, T]) HasNext() bool {
	return m.src.(LookaheadIterator).HasNext()
}

func (m *mapped[S, T]) Properties() Property {
	return m.src.Properties() & (LastPosition | Lookahead)
}

type flatMapped[S, T any] struct {
	src Iterator[S]
	fn  func(S) Iterator[T]
	cur Iterator[T]
	err error
}

// FlatMap replaces every item of src with the sequence fn returns for it.
// Each inner sequence is closed once it is exhausted.
func FlatMap[S, T any](src Iterator[S], fn func(S) Iterator[T]) Iterator[T] {
	if isKnownEmpty(src) {
		return Empty[T]()
	}
	return &flatMapped[S, T]{src: src, fn: fn}
}

func (f *flatMapped[S, T]) Next() (T, bool) {
	var zero T
	for f.err == nil {
		if f.cur != nil {
			if item, ok := f.cur.Next(); ok {
				return item, true
			}
			f.err = f.cur.Err()
			if err := f.cur.Close(); f.err == nil {
				f.err = err
			}
			f.cur = nil
			continue
		}
		item, ok := f.src.Next()
		if !ok {
			return zero, false
		}
		f.cur = f.fn(item)
		if f.cur == nil {
			f.cur = Empty[T]()
		}
	}
	return zero, false
}

func (f *flatMapped[S, T]) Err() error {
	if f.err != nil {
		return f.err
	}
	return f.src.Err()
}

func (f *flatMapped[S, T]) Close() error {
	var err error
	if f.cur != nil {
		err = f.cur.Close()
		f.cur = nil
	}
	if err2 := f.src.Close(); err == nil {
		err = err2
	}
	return err
}

func (f *flatMapped[S, T]) Another() Iterator[T] {
	return &flatMapped[S, T]{src: f.src.Another(), fn: f.fn}
}

func (f *flatMapped[S, T]) Properties() Property { return 0 }

type filtered[T any] struct {
	src  Iterator[T]
	keep func(T) bool
}

// Filter yields the items of src for which keep reports true.
func Filter[T any](src Iterator[T], keep func(T) bool) Iterator[T] {
	if isKnownEmpty(src) {
		return Empty[T]()
	}
	return &filtered[T]{src: src, keep: keep}
}

func (f *filtered[T]) Next() (T, bool) {
	for {
		item, ok := f.src.Next()
		if !ok {
			return item, false
		}
		if f.keep(item) {
			return item, true
		}
	}
}

func (f *filtered[T]) Err() error   { return f.src.Err() }
func (f *filtered[T]) Close() error { return f.src.Close() }

func (f *filtered[T]) Another() Iterator[T] {
	return &filtered[T]{src: f.src.Another(), keep: f.keep}
}

func (f *filtered[T]) Properties() Property { return 0 }
