package hxview

import (
	"fmt"
	"strconv"
	"sync"
)

// Compiled is a template compiled against a Driver: detached prototype
// nodes plus the patch program that binds a row into a clone of them.
// A Compiled is immutable and may be instantiated any number of times.
type Compiled struct {
	driver    Driver
	roots     []Node
	program   Program
	exprs     []Expression
	listeners []*Listener
	embeds    []*embedSlot
}

// embedSlot memoizes the compilation of one embedded template.
type embedSlot struct {
	embed    *Embed
	once     sync.Once
	compiled *Compiled
	err      error
	opts     []CompileOption
}

// CompileOption configures Compile.
type CompileOption func(*compileOptions)

type compileOptions struct {
	noCollapse bool
}

// WithoutCollapse keeps a separate descend/bind/ascend sequence for tags
// whose only child is bound text instead of binding the tag directly.
func WithoutCollapse() CompileOption {
	return func(o *compileOptions) {
		o.noCollapse = true
	}
}

// Compile compiles a single template tree.
//
//	c, err := hxview.Compile(d, hxview.El("li",
//	    hxview.AttrBind("id", hxview.Path("id")),
//	    hxview.Prop("title"),
//	))
//
// The tree is walked once: static structure and static attributes are built
// into the prototype, and every dynamic node costs a handful of program
// instructions. Embedded templates are checked for cycles but compiled on
// first instantiation.
func Compile(d Driver, t Template, opts ...CompileOption) (*Compiled, error) {
	return CompileAll(d, []Template{t}, opts...)
}

// CompileAll compiles a fragment of sibling root templates.
func CompileAll(d Driver, roots []Template, opts ...CompileOption) (*Compiled, error) {
	var o compileOptions
	for _, opt := range opts {
		opt(&o)
	}

	for i, t := range roots {
		if err := checkCycles(t, strconv.Itoa(i), map[Template]bool{}); err != nil {
			return nil, err
		}
	}

	c := &compiler{
		d:       d,
		opts:    o,
		actions: make(map[Node][]action),
		out:     &Compiled{driver: d},
		rawOpts: opts,
	}
	for i, t := range roots {
		if err := c.build(nil, t, strconv.Itoa(i)); err != nil {
			return nil, err
		}
	}
	c.out.program = c.emit()
	return c.out, nil
}

// checkCycles walks the template graph, embedded templates included, and
// fails on any node that is its own ancestor.
func checkCycles(t Template, path string, onPath map[Template]bool) error {
	if t == nil {
		return nil
	}
	if onPath[t] {
		return &CyclicTemplateError{Path: path}
	}
	var next []Template
	switch t := t.(type) {
	case *Tag:
		if t == nil {
			return nil
		}
		next = t.Children
		path += "/" + t.Name
	case *Embed:
		if t == nil || t.Template == nil {
			return nil
		}
		next = []Template{t.Template}
		path += "/embed"
	default:
		return nil
	}
	onPath[t] = true
	for i, child := range next {
		if err := checkCycles(child, path+"/"+strconv.Itoa(i), onPath); err != nil {
			return err
		}
	}
	delete(onPath, t)
	return nil
}

type compiler struct {
	d       Driver
	opts    compileOptions
	rawOpts []CompileOption
	out     *Compiled

	// actions is the node -> runtime action side table. It is keyed by the
	// prototype nodes created during build and dropped once emit ran.
	actions map[Node][]action
}

func (c *compiler) attach(parent, n Node) {
	if parent == nil {
		c.out.roots = append(c.out.roots, n)
		return
	}
	c.d.AppendChild(parent, n)
}

func (c *compiler) record(n Node, a action) {
	c.actions[n] = append(c.actions[n], a)
}

func (c *compiler) bindExpr(e Expression) int {
	c.out.exprs = append(c.out.exprs, e)
	return len(c.out.exprs) - 1
}

func (c *compiler) build(parent Node, t Template, path string) error {
	switch t := t.(type) {
	case *Tag:
		if t == nil {
			break
		}
		if t.Name == "" {
			return &CompileError{Path: path, Reason: "tag without a name"}
		}
		path += "/" + t.Name
		el := c.d.CreateElement(t.Name)
		c.attach(parent, el)
		for _, p := range t.Attrs {
			if err := c.descriptor(el, p, path); err != nil {
				return err
			}
		}
		for i, child := range t.Children {
			if p, ok := child.(Descriptor); ok {
				if err := c.descriptor(el, p, path); err != nil {
					return err
				}
				continue
			}
			if err := c.build(el, child, path+"/"+strconv.Itoa(i)); err != nil {
				return err
			}
		}
		return nil
	case *Text:
		if t == nil {
			break
		}
		c.attach(parent, c.d.CreateText(t.Value))
		return nil
	case *Property:
		if t == nil {
			break
		}
		if t.Expr == nil {
			return &CompileError{Path: path, Reason: "property without an expression"}
		}
		n := c.d.CreateText("")
		c.attach(parent, n)
		c.record(n, action{op: OpBindText, index: c.bindExpr(t.Expr)})
		return nil
	case *Raw:
		if t == nil {
			break
		}
		if t.Node == nil {
			return &CompileError{Path: path, Reason: "raw template without a node"}
		}
		c.attach(parent, c.d.Clone(t.Node))
		return nil
	case *Embed:
		if t == nil {
			break
		}
		if t.Renderable == nil && t.Template == nil {
			return &CompileError{Path: path, Reason: "embed without a renderable or template"}
		}
		anchor := c.d.CreateText("")
		c.attach(parent, anchor)
		c.out.embeds = append(c.out.embeds, &embedSlot{embed: t, opts: c.rawOpts})
		c.record(anchor, action{op: OpEmbed, index: len(c.out.embeds) - 1})
		return nil
	case *Attribute, *Listener:
		return &CompileError{Path: path, Reason: fmt.Sprintf("%T outside of a tag", t)}
	}
	return &CompileError{Path: path, Reason: "nil template"}
}

func (c *compiler) descriptor(el Node, p Descriptor, path string) error {
	switch p := p.(type) {
	case *Attribute:
		if p == nil {
			break
		}
		if p.Name == "" {
			return &CompileError{Path: path, Reason: "attribute without a name"}
		}
		if p.Expr == nil {
			c.d.SetAttribute(el, p.Name, p.Value)
			return nil
		}
		c.record(el, action{op: OpBindAttr, index: c.bindExpr(p.Expr), name: p.Name})
		return nil
	case *Listener:
		if p == nil {
			break
		}
		if p.Name == "" || p.Handler == nil {
			return &CompileError{Path: path, Reason: "event without a name or handler"}
		}
		c.out.listeners = append(c.out.listeners, p)
		c.record(el, action{op: OpBindEvent, index: len(c.out.listeners) - 1, name: p.Name})
		return nil
	}
	return &CompileError{Path: path, Reason: "nil attribute"}
}

// patchNode is the compile-time view of a prototype node that needs at
// least one instruction, itself or below.
type patchNode struct {
	node     Node
	index    int
	actions  []action
	children []*patchNode
}

// flatten builds the patch tree for n bottom-up. Subtrees without actions
// yield nil and cost nothing.
func (c *compiler) flatten(n Node) *patchNode {
	var children []*patchNode
	i := 0
	for ch := c.d.FirstChild(n); ch != nil; ch = c.d.NextSibling(ch) {
		if p := c.flatten(ch); p != nil {
			p.index = i
			children = append(children, p)
		}
		i++
	}
	acts := c.actions[n]
	if len(acts) == 0 && len(children) == 0 {
		return nil
	}
	p := &patchNode{node: n, actions: acts, children: children}
	if !c.opts.noCollapse {
		c.collapse(p)
	}
	return p
}

// collapse folds a lone bound text child into its parent element.
func (c *compiler) collapse(p *patchNode) {
	if len(p.children) != 1 {
		return
	}
	only := p.children[0]
	if only.index != 0 || len(only.children) != 0 || len(only.actions) != 1 || only.actions[0].op != OpBindText {
		return
	}
	if c.d.NextSibling(c.d.FirstChild(p.node)) != nil {
		return
	}
	p.actions = append(p.actions, only.actions[0])
	p.children = nil
}

func (c *compiler) emit() Program {
	var roots []*patchNode
	for i, n := range c.out.roots {
		if p := c.flatten(n); p != nil {
			p.index = i
			roots = append(roots, p)
		}
	}
	c.actions = nil

	var prog Program
	emitChildren(&prog, roots)
	for len(prog) > 0 && prog[len(prog)-1].Op == OpPop {
		prog = prog[:len(prog)-1]
	}
	return prog
}

// emitChildren addresses each patch child of the node on top of the stack,
// emits its actions and subtree, and leaves the stack as it found it.
func emitChildren(prog *Program, children []*patchNode) {
	prev := -1
	for k, ch := range children {
		switch {
		case k == 0 && ch.index == 0:
			*prog = append(*prog, Instruction{Op: OpFirstChild})
		case k == 0:
			*prog = append(*prog, Instruction{Op: OpChild, Index: ch.index})
		case ch.index == prev+1:
			*prog = append(*prog, Instruction{Op: OpNextSibling})
		default:
			*prog = append(*prog, Instruction{Op: OpPop}, Instruction{Op: OpChild, Index: ch.index})
		}
		for _, a := range ch.actions {
			*prog = append(*prog, a.instruction())
		}
		emitChildren(prog, ch.children)
		prev = ch.index
	}
	if len(children) > 0 {
		*prog = append(*prog, Instruction{Op: OpPop})
	}
}

// Driver returns the driver the template was compiled against.
func (c *Compiled) Driver() Driver {
	return c.driver
}

// Program returns a copy of the patch program.
func (c *Compiled) Program() Program {
	return append(Program(nil), c.program...)
}

// Prototypes returns the detached prototype roots. They must not be
// mutated or mounted.
func (c *Compiled) Prototypes() []Node {
	return append([]Node(nil), c.roots...)
}

// Expressions returns the binding expressions referenced by the program.
func (c *Compiled) Expressions() []Expression {
	return append([]Expression(nil), c.exprs...)
}

// Events returns the names of the events referenced by the program.
func (c *Compiled) Events() []string {
	names := make([]string, len(c.listeners))
	for i, l := range c.listeners {
		names[i] = l.Name
	}
	return names
}

// Embeds returns the number of embed positions.
func (c *Compiled) Embeds() int {
	return len(c.embeds)
}

// compiledEmbed returns the compiled form of an embedded template,
// compiling it on first use.
func (s *embedSlot) compiledEmbed(d Driver) (*Compiled, error) {
	s.once.Do(func() {
		s.compiled, s.err = Compile(d, s.embed.Template, s.opts...)
	})
	return s.compiled, s.err
}
