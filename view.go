package hxview

import (
	"fmt"
	"log"
)

// View is one rendered sequence of rows. It applies mutations to its items
// and to the nodes under its parent, instantiating and disposing fragments
// as needed. Items are inserted before an empty end marker so that content
// following the list in the same parent stays in place.
type View[T any] struct {
	compiled *Compiled
	driver   Driver
	parent   Node
	end      Node
	items    []*item[T]
	opts     options[T]
	scope    *Scope
	sub      *Subscription
	err      error
	disposed bool
}

// item is the record for one rendered row. Its position is never cached:
// locate scans the owning view.
type item[T any] struct {
	key    any
	value  T
	result *RenderResult
	scope  *Scope
	owner  *View[T]
}

func (it *item[T]) locate() int {
	return it.owner.locate(it)
}

// NewView mounts an empty view into parent. Use Apply to feed it, or
// Reconciler.Render to keep it in sync with a collection.
func NewView[T any](c *Compiled, parent Node, opts ...Option[T]) (*View[T], error) {
	if parent == nil {
		return nil, errNilParent
	}
	o := newOptions(opts)
	v := &View[T]{
		compiled: c,
		driver:   c.driver,
		parent:   parent,
		opts:     o,
		scope:    &Scope{logger: o.logger},
	}
	v.end = v.driver.CreateText("")
	v.driver.AppendChild(parent, v.end)
	return v, nil
}

// Next implements Observer. Errors are logged and the first one is kept
// for Err.
func (v *View[T]) Next(m Mutation[T]) {
	v.apply(m)
}

func (v *View[T]) apply(m Mutation[T]) error {
	err := v.Apply(m)
	if err != nil {
		v.opts.logger.Printf("apply %v: %v", m, err)
		if v.err == nil {
			v.err = err
		}
	}
	return err
}

// Err returns the first error raised while applying a published mutation.
func (v *View[T]) Err() error {
	return v.err
}

// Apply applies m to the view.
func (v *View[T]) Apply(m Mutation[T]) error {
	if v.disposed {
		return &InvalidMutationError{Op: "apply", Err: fmt.Errorf("view is disposed")}
	}
	n := len(v.items)
	switch m := m.(type) {
	case PushOp[T]:
		return v.insert(m.Value, n)
	case InsertOp[T]:
		if m.Index < 0 || m.Index > n {
			return outOfRange("insert", m.Index, n)
		}
		return v.insert(m.Value, m.Index)
	case RemoveOp[T]:
		i, err := resolve(m.Selector, n,
			func(i int) T { return v.items[i].value },
			func(i int) any { return v.items[i].key })
		if err != nil || i < 0 {
			return err
		}
		v.remove(v.items[i])
		return nil
	case MoveOp[T]:
		if err := checkMove(m, n); err != nil {
			return err
		}
		v.move(m.From, m.To)
		return nil
	case ResetOp[T]:
		return v.reset(m.Items)
	case CallOp[T]:
		if m.Fn != nil {
			m.Fn(v.Values())
		}
		return nil
	}
	return &InvalidMutationError{Op: "apply", Err: fmt.Errorf("%w: %T", ErrUnknownMutation, m)}
}

func (v *View[T]) insert(value T, index int) error {
	res, err := v.compiled.instantiate(v.parent, v.firstNodeFrom(index), value, v.opts.logger)
	if err != nil {
		return err
	}
	it := &item[T]{
		key:    v.opts.key(value),
		value:  value,
		result: res,
		scope:  v.scope.Scope(),
		owner:  v,
	}
	it.scope.Add(res)
	v.items = insertAt(v.items, index, it)
	return nil
}

func (v *View[T]) remove(it *item[T]) {
	it.scope.Dispose()
	if i := it.locate(); i >= 0 {
		v.items = append(v.items[:i], v.items[i+1:]...)
	}
}

func (v *View[T]) move(from, to int) {
	if from == to {
		return
	}
	it := v.items[from]
	v.items = moveTo(v.items, from, to)
	ref := v.firstNodeFrom(to + 1)
	for _, n := range it.result.Nodes() {
		v.driver.InsertBefore(v.parent, n, ref)
	}
}

// reset converges the items on rows by key: items whose key disappeared
// are disposed, then a single left to right pass inserts missing rows and
// moves misplaced ones, swapping values in place for the rest.
func (v *View[T]) reset(rows []T) error {
	keys := make([]any, len(rows))
	for i, row := range rows {
		keys[i] = v.opts.key(row)
	}

	for i := len(v.items) - 1; i >= 0; i-- {
		if indexOfKey(keys, v.items[i].key, 0) < 0 {
			v.remove(v.items[i])
		}
	}

	for i, row := range rows {
		j := -1
		for k := i; k < len(v.items); k++ {
			if keysEqual(v.items[k].key, keys[i]) {
				j = k
				break
			}
		}
		if j < 0 {
			if err := v.insert(row, i); err != nil {
				return err
			}
			continue
		}
		v.move(j, i)
		v.items[i].value = row
		v.items[i].result.SetRow(row)
	}

	for len(v.items) > len(rows) {
		v.remove(v.items[len(v.items)-1])
	}
	return nil
}

func indexOfKey(keys []any, key any, from int) int {
	for i := from; i < len(keys); i++ {
		if keysEqual(keys[i], key) {
			return i
		}
	}
	return -1
}

// firstNodeFrom returns the first node of the first non-empty item at or
// after index, or the end marker.
func (v *View[T]) firstNodeFrom(index int) Node {
	for i := index; i < len(v.items); i++ {
		if nodes := v.items[i].result.Nodes(); len(nodes) > 0 {
			return nodes[0]
		}
	}
	return v.end
}

func (v *View[T]) locate(it *item[T]) int {
	for i, x := range v.items {
		if x == it {
			return i
		}
	}
	return -1
}

// Len returns the number of rendered items.
func (v *View[T]) Len() int {
	return len(v.items)
}

// Item returns the value rendered at index.
func (v *View[T]) Item(index int) (T, bool) {
	if index < 0 || index >= len(v.items) {
		var zero T
		return zero, false
	}
	return v.items[index].value, true
}

// Find returns the last rendered value matching pred.
func (v *View[T]) Find(pred func(T) bool) (T, bool) {
	for i := len(v.items) - 1; i >= 0; i-- {
		if pred(v.items[i].value) {
			return v.items[i].value, true
		}
	}
	var zero T
	return zero, false
}

// Values returns the rendered values in order.
func (v *View[T]) Values() []T {
	values := make([]T, len(v.items))
	for i, it := range v.items {
		values[i] = it.value
	}
	return values
}

// Result returns the render result of the item at index.
func (v *View[T]) Result(index int) *RenderResult {
	if index < 0 || index >= len(v.items) {
		return nil
	}
	return v.items[index].result
}

// Dispose stops following the collection and releases every item, each
// exactly once, then removes the end marker.
func (v *View[T]) Dispose() {
	if v.disposed {
		return
	}
	v.disposed = true
	v.sub.Unsubscribe()
	v.scope.Dispose()
	v.items = nil
	detach(v.driver, v.logger(), v.end)
}

func (v *View[T]) logger() *log.Logger {
	return v.opts.logger
}
