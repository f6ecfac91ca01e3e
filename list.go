package hxview

import (
	"errors"
	"fmt"
)

// Reconciler owns a collection of rows and broadcasts every edit to the
// views rendered from it.
//
//	c, _ := hxview.Compile(d, hxview.El("li", hxview.Prop("title")))
//	todos := hxview.NewReconciler[Todo](c, hxview.WithKey(func(t Todo) any { return t.ID }))
//	view, _ := todos.Render(ul)
//	todos.Add(hxview.Push(Todo{ID: 1, Title: "write docs"}))
//
// Add validates and applies an edit to the backing collection, then
// publishes it. Errors from either step, including a view failing to
// render a row, are returned synchronously. A view subscribing later is
// bootstrapped with a single Reset carrying the current rows.
type Reconciler[T any] struct {
	compiled *Compiled
	values   []T
	opts     options[T]
	rawOpts  []Option[T]
	bus      *Bus[Mutation[T]]
	failed   []error
}

// NewReconciler returns an empty collection rendering rows with c.
func NewReconciler[T any](c *Compiled, opts ...Option[T]) *Reconciler[T] {
	r := &Reconciler[T]{
		compiled: c,
		opts:     newOptions(opts),
		rawOpts:  opts,
	}
	r.bus = NewBus(func() Mutation[T] {
		return Reset(r.Values())
	})
	return r
}

// Add applies m to the collection and publishes it to every view.
// Removing an absent item is a no-op and publishes nothing. A Call runs
// against the collection's own values and is not published.
//
// The edit stays applied to the collection when a view fails to apply it;
// the view errors are joined and returned. An Add issued from within a view
// callback is delivered after the current edit and its errors are reported
// by the outer Add.
func (r *Reconciler[T]) Add(m Mutation[T]) error {
	n := len(r.values)
	switch m := m.(type) {
	case PushOp[T]:
		r.values = append(r.values, m.Value)
	case InsertOp[T]:
		if m.Index < 0 || m.Index > n {
			return outOfRange("insert", m.Index, n)
		}
		r.values = insertAt(r.values, m.Index, m.Value)
	case RemoveOp[T]:
		i, err := resolve(m.Selector, n,
			func(i int) T { return r.values[i] },
			func(i int) any { return r.opts.key(r.values[i]) })
		if err != nil {
			return err
		}
		if i < 0 {
			return nil
		}
		r.values = append(r.values[:i], r.values[i+1:]...)
	case MoveOp[T]:
		if err := checkMove(m, n); err != nil {
			return err
		}
		if m.From == m.To {
			return nil
		}
		r.values = moveTo(r.values, m.From, m.To)
	case ResetOp[T]:
		r.values = append([]T(nil), m.Items...)
	case CallOp[T]:
		if m.Fn != nil {
			m.Fn(r.Values())
		}
		return nil
	default:
		return &InvalidMutationError{Op: "add", Err: fmt.Errorf("%w: %T", ErrUnknownMutation, m)}
	}
	nested := r.bus.draining
	r.bus.Publish(m)
	if nested {
		return nil
	}
	err := errors.Join(r.failed...)
	r.failed = nil
	return err
}

// Subscribe registers o for every published edit. o first receives a Reset
// with the current rows.
func (r *Reconciler[T]) Subscribe(o Observer[Mutation[T]]) *Subscription {
	return r.bus.Subscribe(o)
}

// Render mounts a new view of the collection into parent.
func (r *Reconciler[T]) Render(parent Node) (*View[T], error) {
	v, err := NewView(r.compiled, parent, r.rawOpts...)
	if err != nil {
		return nil, err
	}
	// The bootstrap error is returned below, not by Add.
	n := len(r.failed)
	v.sub = r.bus.Subscribe(ObserverFunc[Mutation[T]](func(m Mutation[T]) {
		if err := v.apply(m); err != nil {
			r.failed = append(r.failed, err)
		}
	}))
	r.failed = r.failed[:n]
	if err := v.Err(); err != nil {
		v.Dispose()
		return nil, err
	}
	return v, nil
}

// Find returns the last value matching pred.
func (r *Reconciler[T]) Find(pred func(T) bool) (T, bool) {
	for i := len(r.values) - 1; i >= 0; i-- {
		if pred(r.values[i]) {
			return r.values[i], true
		}
	}
	var zero T
	return zero, false
}

// Item returns the value at index.
func (r *Reconciler[T]) Item(index int) (T, bool) {
	if index < 0 || index >= len(r.values) {
		var zero T
		return zero, false
	}
	return r.values[index], true
}

// Len returns the number of rows.
func (r *Reconciler[T]) Len() int {
	return len(r.values)
}

// Values returns a copy of the rows.
func (r *Reconciler[T]) Values() []T {
	return append([]T(nil), r.values...)
}

// Views returns the number of live subscribers.
func (r *Reconciler[T]) Views() int {
	return r.bus.Len()
}

func checkMove[T any](m MoveOp[T], n int) error {
	if m.From < 0 || m.From >= n {
		return outOfRange("move", m.From, n)
	}
	if m.To < 0 || m.To >= n {
		return outOfRange("move", m.To, n)
	}
	return nil
}

func insertAt[E any](s []E, i int, v E) []E {
	var zero E
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// moveTo relocates s[from] so that it ends up at index to, shifting the
// elements in between.
func moveTo[E any](s []E, from, to int) []E {
	v := s[from]
	if from < to {
		copy(s[from:to], s[from+1:to+1])
	} else {
		copy(s[to+1:from+1], s[to:from])
	}
	s[to] = v
	return s
}
