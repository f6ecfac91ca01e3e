package hxview

import "fmt"

// Mutation is a structural edit of a list. The set of variants is closed:
// PushOp, InsertOp, RemoveOp, MoveOp, ResetOp and CallOp. Mutations are
// plain values; they never reference rendering state.
type Mutation[T any] interface {
	mutation()
	fmt.Stringer
}

// PushOp appends Value.
type PushOp[T any] struct {
	Value T
}

// InsertOp inserts Value so that it ends up at Index.
type InsertOp[T any] struct {
	Value T
	Index int
}

// RemoveOp removes the item Selector resolves to. Removing an absent item
// is a no-op.
type RemoveOp[T any] struct {
	Selector Selector[T]
}

// MoveOp moves the item at From so that it ends up at To.
type MoveOp[T any] struct {
	From, To int
}

// ResetOp replaces the whole sequence with Items.
type ResetOp[T any] struct {
	Items []T
}

// CallOp hands the current values to Fn without changing anything.
type CallOp[T any] struct {
	Fn func(values []T)
}

func (PushOp[T]) mutation()   {}
func (InsertOp[T]) mutation() {}
func (RemoveOp[T]) mutation() {}
func (MoveOp[T]) mutation()   {}
func (ResetOp[T]) mutation()  {}
func (CallOp[T]) mutation()   {}

func (m PushOp[T]) String() string   { return fmt.Sprintf("push(%v)", m.Value) }
func (m InsertOp[T]) String() string { return fmt.Sprintf("insert(%v, %d)", m.Value, m.Index) }
func (m RemoveOp[T]) String() string { return fmt.Sprintf("remove(%v)", m.Selector) }
func (m MoveOp[T]) String() string   { return fmt.Sprintf("move(%d, %d)", m.From, m.To) }
func (m ResetOp[T]) String() string  { return fmt.Sprintf("reset(%d items)", len(m.Items)) }
func (m CallOp[T]) String() string   { return "call" }

// Push returns a mutation appending v.
func Push[T any](v T) Mutation[T] {
	return PushOp[T]{Value: v}
}

// Insert returns a mutation inserting v at index.
func Insert[T any](v T, index int) Mutation[T] {
	return InsertOp[T]{Value: v, Index: index}
}

// Remove returns a mutation removing the item sel resolves to.
func Remove[T any](sel Selector[T]) Mutation[T] {
	return RemoveOp[T]{Selector: sel}
}

// RemoveAt removes the item at index.
func RemoveAt[T any](index int) Mutation[T] {
	return Remove[T](ByIndex(index))
}

// RemoveKey removes the last item whose key equals key.
func RemoveKey[T any](key any) Mutation[T] {
	return Remove[T](ByKey(key))
}

// RemoveWhere removes the last item matching pred.
func RemoveWhere[T any](pred func(T) bool) Mutation[T] {
	return Remove[T](Where(pred))
}

// Move returns a mutation moving the item at from to to.
func Move[T any](from, to int) Mutation[T] {
	return MoveOp[T]{From: from, To: to}
}

// Reset returns a mutation replacing the sequence with items.
func Reset[T any](items []T) Mutation[T] {
	return ResetOp[T]{Items: items}
}

// Call returns a mutation handing the current values to fn.
func Call[T any](fn func(values []T)) Mutation[T] {
	return CallOp[T]{Fn: fn}
}

// Selector picks the item a RemoveOp targets. The variants are IndexSelector,
// KeySelector and PredicateSelector.
type Selector[T any] interface {
	selector()
}

// IndexSelector selects by position.
type IndexSelector int

// KeySelector selects the last item with an equal key.
type KeySelector struct {
	Key any
}

// PredicateSelector selects the last item matching Fn.
type PredicateSelector[T any] struct {
	Fn func(T) bool
}

func (IndexSelector) selector()        {}
func (KeySelector) selector()          {}
func (PredicateSelector[T]) selector() {}

func (s IndexSelector) String() string        { return fmt.Sprintf("index %d", int(s)) }
func (s KeySelector) String() string          { return fmt.Sprintf("key %v", s.Key) }
func (s PredicateSelector[T]) String() string { return "predicate" }

// ByIndex selects the item at i.
func ByIndex(i int) IndexSelector { return IndexSelector(i) }

// ByKey selects the item whose key equals key.
func ByKey(key any) KeySelector { return KeySelector{Key: key} }

// Where selects an item matching pred.
func Where[T any](pred func(T) bool) PredicateSelector[T] {
	return PredicateSelector[T]{Fn: pred}
}

// resolve finds the position sel designates in a sequence of n items, or
// -1. Key and predicate lookups scan from the end.
func resolve[T any](sel Selector[T], n int, value func(int) T, key func(int) any) (int, error) {
	switch s := sel.(type) {
	case IndexSelector:
		if int(s) < 0 || int(s) >= n {
			return -1, nil
		}
		return int(s), nil
	case KeySelector:
		for i := n - 1; i >= 0; i-- {
			if keysEqual(key(i), s.Key) {
				return i, nil
			}
		}
		return -1, nil
	case PredicateSelector[T]:
		if s.Fn == nil {
			return -1, &InvalidMutationError{Op: "remove", Err: fmt.Errorf("nil predicate")}
		}
		for i := n - 1; i >= 0; i-- {
			if s.Fn(value(i)) {
				return i, nil
			}
		}
		return -1, nil
	}
	return -1, &InvalidMutationError{Op: "remove", Err: fmt.Errorf("%w: selector %T", ErrUnknownMutation, sel)}
}
