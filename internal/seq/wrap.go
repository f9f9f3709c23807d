package seq

// Source is a pull source of foreign items, such as entries of an archive
// or records of an external reader.
type Source[S any] interface {
	Next() (S, bool)
	Err() error
	Close() error
}

type wrapped[S, T any] struct {
	open      func() (Source[S], error)
	wrap      func(S) (T, error)
	ignorable func(S) bool
	src       Source[S]
	err       error
	done      bool
}

// Wrap adapts a foreign source into an Iterator. open is called lazily on
// the first Next and again by Another, so each copy reads the source from
// the beginning. Items for which ignorable reports true are skipped, the
// rest are converted with wrap. When open, the source or wrap fails the
// iterator closes its source before reporting the failure through Err.
func Wrap[S, T any](open func() (Source[S], error), wrap func(S) (T, error), ignorable func(S) bool) Iterator[T] {
	return &wrapped[S, T]{open: open, wrap: wrap, ignorable: ignorable}
}

func (w *wrapped[S, T]) Next() (T, bool) {
	var zero T
	if w.done {
		return zero, false
	}
	if w.src == nil {
		src, err := w.open()
		if err != nil {
			w.fail(err)
			return zero, false
		}
		w.src = src
	}
	for {
		raw, ok := w.src.Next()
		if !ok {
			w.done = true
			if err := w.src.Err(); err != nil {
				w.fail(err)
			}
			return zero, false
		}
		if w.ignorable != nil && w.ignorable(raw) {
			continue
		}
		item, err := w.wrap(raw)
		if err != nil {
			w.fail(err)
			return zero, false
		}
		return item, true
	}
}

func (w *wrapped[S, T]) fail(err error) {
	w.err = err
	w.done = true
	_ = w.Close()
}

func (w *wrapped[S, T]) Err() error { return w.err }

func (w *wrapped[S, T]) Close() error {
	if w.src == nil {
		return nil
	}
	src := w.src
	w.src = nil
	w.done = true
	return src.Close()
}

func (w *wrapped[S, T]) Another() Iterator[T] {
	return Wrap(w.open, w.wrap, w.ignorable)
}

func (w *wrapped[S, T]) Properties() Property { return 0 }
