package hxview

import "log"

// Disposable is a releasable resource: a subscription, a listener, a
// render result or a scope. Dispose is idempotent for every implementation
// in this package except DisposeFunc.
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a function to Disposable. It calls the function on
// every Dispose, so it suits owners that release it exactly once, such as a
// Scope or a RenderResult. Use Once where Dispose may be repeated.
type DisposeFunc func()

// Dispose implements Disposable.
func (f DisposeFunc) Dispose() {
	if f != nil {
		f()
	}
}

// Once wraps fn so that repeated Dispose calls run it a single time.
func Once(fn func()) Disposable {
	return &onceDisposable{fn: fn}
}

type onceDisposable struct {
	fn func()
}

func (o *onceDisposable) Dispose() {
	if fn := o.fn; fn != nil {
		o.fn = nil
		fn()
	}
}

// disposeAll releases ds in reverse order so that resources acquired last
// are released first. A panicking disposable is logged and skipped.
func disposeAll(l *log.Logger, ds []Disposable) {
	for i := len(ds) - 1; i >= 0; i-- {
		disposeSafely(l, ds[i])
	}
}

func disposeSafely(l *log.Logger, d Disposable) {
	if d == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.Printf("%v", &DisposalError{Node: d, Err: panicError{r}})
		}
	}()
	d.Dispose()
}

type panicError struct{ v any }

func (p panicError) Error() string { return "panic: " + sprint(p.v) }

// Scope is a hierarchical disposal boundary. Disposing a scope disposes its
// child scopes and registered resources, newest first, then detaches it
// from its parent.
type Scope struct {
	parent    *Scope
	resources []Disposable
	disposed  bool
	logger    *log.Logger
}

// NewScope returns a root scope.
func NewScope() *Scope {
	return &Scope{}
}

// Scope creates a child scope. A child of a disposed scope is returned
// already disposed.
func (s *Scope) Scope() *Scope {
	child := &Scope{parent: s, logger: s.logger}
	if s.disposed {
		child.disposed = true
		return child
	}
	s.resources = append(s.resources, child)
	return child
}

// Add registers d to be released with the scope. Adding to a disposed scope
// disposes d immediately.
func (s *Scope) Add(d Disposable) {
	if d == nil {
		return
	}
	if s.disposed {
		disposeSafely(s.log(), d)
		return
	}
	s.resources = append(s.resources, d)
}

// Disposed reports whether Dispose has run.
func (s *Scope) Disposed() bool {
	return s.disposed
}

// Dispose implements Disposable.
func (s *Scope) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	resources := s.resources
	s.resources = nil
	disposeAll(s.log(), resources)
	if p := s.parent; p != nil {
		p.remove(s)
		s.parent = nil
	}
}

func (s *Scope) remove(child *Scope) {
	for i := len(s.resources) - 1; i >= 0; i-- {
		if c, ok := s.resources[i].(*Scope); ok && c == child {
			s.resources = append(s.resources[:i], s.resources[i+1:]...)
			return
		}
	}
}

func (s *Scope) log() *log.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger
}
