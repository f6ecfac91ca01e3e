package hxview

import "log"

// RenderResult owns everything one instantiation created: the cloned root
// nodes, bound subscriptions and listeners, and embedded content. Dispose
// releases all of it exactly once, children before the roots.
type RenderResult struct {
	driver    Driver
	logger    *log.Logger
	roots     []Node
	row       any
	mounted   bool
	resources []Disposable
	embeds    []*RenderContext
	disposed  bool
}

// Nodes returns the top-level nodes of the fragment in document order,
// including content embedded at root level.
func (r *RenderResult) Nodes() []Node {
	nodes := make([]Node, 0, len(r.roots))
	for _, root := range r.roots {
		for _, ctx := range r.embeds {
			if ctx.Anchor == root {
				nodes = append(nodes, ctx.placed...)
			}
		}
		nodes = append(nodes, root)
	}
	return nodes
}

// Row returns the row delivered to event handlers of the fragment.
func (r *RenderResult) Row() any {
	return r.row
}

// SetRow replaces the row seen by event handlers. Bound text and
// attributes are not re-evaluated.
func (r *RenderResult) SetRow(row any) {
	r.row = row
}

// Disposed reports whether Dispose has run.
func (r *RenderResult) Disposed() bool {
	return r.disposed
}

// Dispose implements Disposable.
func (r *RenderResult) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	resources := r.resources
	r.resources = nil
	disposeAll(r.logger, resources)

	for i := len(r.embeds) - 1; i >= 0; i-- {
		r.embeds[i].release()
	}
	if r.mounted {
		for i := len(r.roots) - 1; i >= 0; i-- {
			detach(r.driver, r.logger, r.roots[i])
		}
	}
}

func (r *RenderResult) add(d Disposable) {
	if d != nil {
		r.resources = append(r.resources, d)
	}
}

func detach(d Driver, l *log.Logger, n Node) {
	parent := d.Parent(n)
	if parent == nil {
		l.Printf("%v", &DisposalError{Node: n, Err: errDetached})
		return
	}
	if err := d.RemoveChild(parent, n); err != nil {
		l.Printf("%v", &DisposalError{Node: n, Err: err})
	}
}

// RenderContext is handed to an embedded Renderable. Content goes into
// Parent right before Anchor; nodes placed through Mount are tracked so the
// fragment can be moved and released as a whole.
type RenderContext struct {
	Driver Driver
	Parent Node
	Anchor Node
	Row    any

	placed []Node
	owned  map[Node]bool
	logger *log.Logger
}

// Mount inserts nodes before the anchor. Mounted nodes are removed when the
// enclosing render result is disposed.
func (ctx *RenderContext) Mount(nodes ...Node) {
	for _, n := range nodes {
		ctx.Driver.InsertBefore(ctx.Parent, n, ctx.Anchor)
		ctx.placed = append(ctx.placed, n)
		if ctx.owned == nil {
			ctx.owned = make(map[Node]bool)
		}
		ctx.owned[n] = true
	}
}

// Unmount removes a node previously mounted through Mount.
func (ctx *RenderContext) Unmount(n Node) {
	for i, x := range ctx.placed {
		if x == n {
			ctx.placed = append(ctx.placed[:i], ctx.placed[i+1:]...)
			break
		}
	}
	if ctx.owned[n] {
		delete(ctx.owned, n)
		detach(ctx.Driver, ctx.logger, n)
	}
}

// track records nodes placed before the anchor by someone else, such as a
// nested render result that removes them itself.
func (ctx *RenderContext) track(nodes ...Node) {
	ctx.placed = append(ctx.placed, nodes...)
}

func (ctx *RenderContext) release() {
	for i := len(ctx.placed) - 1; i >= 0; i-- {
		if n := ctx.placed[i]; ctx.owned[n] {
			detach(ctx.Driver, ctx.logger, n)
		}
	}
	ctx.placed = nil
	ctx.owned = nil
}
