package hxview

// Observer receives messages from a Bus.
type Observer[M any] interface {
	Next(m M)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc[M any] func(m M)

// Next implements Observer.
func (f ObserverFunc[M]) Next(m M) { f(m) }

// Bus is a synchronous multicast channel. Every subscriber first receives
// the snapshot message, then every message published after it joined, in
// publish order. A Publish issued while the bus is delivering is queued and
// delivered once the current message reached every subscriber.
type Bus[M any] struct {
	snapshot  func() M
	observers []*busEntry[M]
	queue     []queued[M]
	seq       uint64
	draining  bool
}

type busEntry[M any] struct {
	sub      *Subscription
	observer Observer[M]
	since    uint64
}

type queued[M any] struct {
	msg M
	seq uint64
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	active bool
	cancel func()
}

// NewBus returns a bus replaying snapshot() to each new subscriber. A nil
// snapshot disables the replay.
func NewBus[M any](snapshot func() M) *Bus[M] {
	return &Bus[M]{snapshot: snapshot}
}

// Subscribe registers o and synchronously delivers the snapshot to it.
// Messages still queued when o subscribes are not delivered to it; the
// snapshot already reflects them.
func (b *Bus[M]) Subscribe(o Observer[M]) *Subscription {
	e := &busEntry[M]{observer: o, since: b.seq}
	e.sub = &Subscription{
		active: true,
		cancel: func() { b.remove(e) },
	}
	b.observers = append(b.observers, e)
	if b.snapshot != nil {
		o.Next(b.snapshot())
	}
	return e.sub
}

// Publish delivers m to every current subscriber.
func (b *Bus[M]) Publish(m M) {
	b.queue = append(b.queue, queued[M]{msg: m, seq: b.seq})
	b.seq++
	if b.draining {
		return
	}
	b.draining = true
	defer func() { b.draining = false }()

	for len(b.queue) > 0 {
		q := b.queue[0]
		b.queue = b.queue[1:]
		for _, e := range b.observers {
			if e.sub.active && e.since <= q.seq {
				e.observer.Next(q.msg)
			}
		}
	}
	b.queue = nil
}

// Len returns the number of active subscribers.
func (b *Bus[M]) Len() int {
	return len(b.observers)
}

// remove drops e without mutating the slice a running Publish iterates.
func (b *Bus[M]) remove(e *busEntry[M]) {
	for i, x := range b.observers {
		if x == e {
			b.observers = append(b.observers[:i:i], b.observers[i+1:]...)
			return
		}
	}
}

// Unsubscribe stops delivery. It is idempotent and safe to call from within
// an observer.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active {
		return
	}
	s.active = false
	s.cancel()
}

// Dispose implements Disposable.
func (s *Subscription) Dispose() {
	s.Unsubscribe()
}
