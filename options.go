package hxview

import (
	"log"
	"reflect"
)

// Option configures a Reconciler and the views it renders.
type Option[T any] func(*options[T])

type options[T any] struct {
	key    func(T) any
	logger *log.Logger
}

// WithKey sets the key selector identifying items across edits. Without
// it an item's key is its value, which then must be comparable for keyed
// removal and reset matching to work.
func WithKey[T any](key func(T) any) Option[T] {
	return func(o *options[T]) {
		o.key = key
	}
}

// WithLogger sets the logger for errors that cannot be returned, such as
// disposal failures.
func WithLogger[T any](l *log.Logger) Option[T] {
	return func(o *options[T]) {
		o.logger = l
	}
}

func newOptions[T any](opts []Option[T]) options[T] {
	o := options[T]{
		key:    func(v T) any { return v },
		logger: logger,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger
	}
	return o
}

// keysEqual compares keys with ==, treating keys of different or
// incomparable types as distinct.
func keysEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
