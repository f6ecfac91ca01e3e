package hxview

import (
	"errors"
	"fmt"
	"log"
)

var errNilParent = errors.New("hxview: instantiate: nil parent")

// Instantiate clones the prototype, binds row into the clone by replaying
// the patch program, and mounts the result into parent before the node
// before (nil appends). Embedded renderables run last, once every root is
// mounted, so they cannot disturb positional addressing.
//
// A bound value that is a Stream keeps its target updated until the
// returned result is disposed.
func (c *Compiled) Instantiate(parent, before Node, row any) (*RenderResult, error) {
	return c.instantiate(parent, before, row, logger)
}

// frame is an entry of the interpreter's address stack. Root-level frames
// carry their position so that sibling addressing does not depend on the
// clones being mounted.
type frame struct {
	node Node
	root int
}

const (
	virtualRoot = -2
	notRoot     = -1
)

type pendingEmbed struct {
	slot   *embedSlot
	anchor Node
}

func (c *Compiled) instantiate(parent, before Node, row any, l *log.Logger) (*RenderResult, error) {
	if parent == nil {
		return nil, errNilParent
	}
	d := c.driver
	r := &RenderResult{driver: d, logger: l, roots: make([]Node, len(c.roots)), row: row}
	for i, proto := range c.roots {
		r.roots[i] = d.Clone(proto)
	}

	stack := make([]frame, 1, 8)
	stack[0] = frame{root: virtualRoot}
	var embeds []pendingEmbed

	for pc, in := range c.program {
		top := stack[len(stack)-1]
		switch in.Op {
		case OpFirstChild, OpChild:
			index := 0
			if in.Op == OpChild {
				index = in.Index
			}
			stack = append(stack, r.child(top, index, pc))
		case OpNextSibling:
			stack[len(stack)-1] = r.sibling(top, pc)
		case OpPop:
			if len(stack) == 1 {
				panic(fmt.Sprintf("hxview: program %d: pop of the root frame", pc))
			}
			stack = stack[:len(stack)-1]
		case OpBindText:
			node := top.node
			err := r.bind(c.exprs[in.Index], row, func(v any) {
				d.SetText(node, sprint(v))
			})
			if err != nil {
				r.Dispose()
				return nil, err
			}
		case OpBindAttr:
			node, name := top.node, in.Name
			err := r.bind(c.exprs[in.Index], row, func(v any) {
				d.SetAttribute(node, name, sprint(v))
			})
			if err != nil {
				r.Dispose()
				return nil, err
			}
		case OpBindEvent:
			lst := c.listeners[in.Index]
			r.add(d.AddEventListener(top.node, lst.Name, func(e Event) {
				e.Row = r.row
				lst.Handler(e)
			}))
		case OpEmbed:
			embeds = append(embeds, pendingEmbed{slot: c.embeds[in.Index], anchor: top.node})
		default:
			panic(fmt.Sprintf("hxview: program %d: unknown instruction %s", pc, in.Op))
		}
	}

	for _, root := range r.roots {
		d.InsertBefore(parent, root, before)
	}
	r.mounted = true

	for _, e := range embeds {
		if err := r.embed(e, row); err != nil {
			r.Dispose()
			return nil, err
		}
	}
	return r, nil
}

func (r *RenderResult) child(top frame, index, pc int) frame {
	if top.root == virtualRoot {
		if index >= len(r.roots) {
			panic(fmt.Sprintf("hxview: program %d: root %d out of range", pc, index))
		}
		return frame{node: r.roots[index], root: index}
	}
	var n Node
	if index == 0 {
		n = r.driver.FirstChild(top.node)
	} else {
		n = r.driver.ChildAt(top.node, index)
	}
	if n == nil {
		panic(fmt.Sprintf("hxview: program %d: no child %d", pc, index))
	}
	return frame{node: n, root: notRoot}
}

func (r *RenderResult) sibling(top frame, pc int) frame {
	switch top.root {
	case virtualRoot:
		panic(fmt.Sprintf("hxview: program %d: next-sibling of the root frame", pc))
	case notRoot:
		n := r.driver.NextSibling(top.node)
		if n == nil {
			panic(fmt.Sprintf("hxview: program %d: no next sibling", pc))
		}
		return frame{node: n, root: notRoot}
	}
	next := top.root + 1
	if next >= len(r.roots) {
		panic(fmt.Sprintf("hxview: program %d: no next root", pc))
	}
	return frame{node: r.roots[next], root: next}
}

// bind evaluates e against row and applies the value, following it when
// it is a Stream.
func (r *RenderResult) bind(e Expression, row any, apply func(any)) error {
	v, err := e.Eval(row)
	if err != nil {
		return err
	}
	if s, ok := v.(Stream); ok {
		r.add(s.Subscribe(apply))
		return nil
	}
	apply(v)
	return nil
}

func (r *RenderResult) embed(e pendingEmbed, row any) error {
	d := r.driver
	ctx := &RenderContext{
		Driver: d,
		Parent: d.Parent(e.anchor),
		Anchor: e.anchor,
		Row:    row,
		logger: r.logger,
	}
	r.embeds = append(r.embeds, ctx)

	if t := e.slot.embed.Template; t != nil {
		sub, err := e.slot.compiledEmbed(d)
		if err != nil {
			return err
		}
		res, err := sub.instantiate(ctx.Parent, ctx.Anchor, row, r.logger)
		if err != nil {
			return err
		}
		ctx.track(res.Nodes()...)
		r.add(res)
		return nil
	}

	res, err := e.slot.embed.Renderable.Render(ctx)
	if err != nil {
		return err
	}
	r.add(res)
	return nil
}
