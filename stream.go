package hxview

// Stream is a source of values a binding can follow. Subscribe must deliver
// values synchronously and stop once the returned Disposable is disposed.
type Stream interface {
	Subscribe(next func(any)) Disposable
}

// State is a mutable value cell. Subscribers receive the current value on
// subscription and every subsequent change.
type State[T comparable] struct {
	value     T
	observers []*stateObserver
}

type stateObserver struct {
	next   func(any)
	active bool
}

// NewState returns a cell holding v.
func NewState[T comparable](v T) *State[T] {
	return &State[T]{value: v}
}

// Get returns the current value.
func (s *State[T]) Get() T {
	return s.value
}

// Set stores v and notifies subscribers when it differs from the current
// value.
func (s *State[T]) Set(v T) {
	if v == s.value {
		return
	}
	s.value = v
	for _, o := range append([]*stateObserver(nil), s.observers...) {
		if o.active {
			o.next(v)
		}
	}
}

// Update applies fn to the current value and stores the result.
func (s *State[T]) Update(fn func(T) T) {
	s.Set(fn(s.value))
}

// Subscribe implements Stream.
func (s *State[T]) Subscribe(next func(any)) Disposable {
	o := &stateObserver{next: next, active: true}
	s.observers = append(s.observers, o)
	next(s.value)
	return Once(func() {
		o.active = false
		for i, x := range s.observers {
			if x == o {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				break
			}
		}
	})
}

// Observers returns the number of live subscriptions.
func (s *State[T]) Observers() int {
	return len(s.observers)
}
