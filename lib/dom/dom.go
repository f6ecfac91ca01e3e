// Package dom is an in-memory node tree implementing hxview.Driver.
//
// It backs the CLI and the tests: templates are instantiated into a
// Document and the result is serialized to HTML with Component.
package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pthm/hxview"
)

// Kind distinguishes element and text nodes.
type Kind int

const (
	ElementNode Kind = iota
	TextNode
)

// ErrNotChild is returned by RemoveChild when the node is attached
// elsewhere or not at all.
var ErrNotChild = errors.New("dom: node is not a child of parent")

type attr struct {
	name, value string
}

type listener struct {
	handler func(hxview.Event)
	active  bool
}

// Node is an element or a text node.
type Node struct {
	Kind Kind
	Tag  string
	Data string

	attrs     []attr
	parent    *Node
	children  []*Node
	listeners map[string][]*listener
}

// Element returns a detached element.
func Element(tag string) *Node {
	return &Node{Kind: ElementNode, Tag: tag}
}

// Text returns a detached text node.
func Text(data string) *Node {
	return &Node{Kind: TextNode, Data: data}
}

// Parent returns the parent node or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Elements returns the element children, skipping text.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.Kind == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// SetAttr sets the named attribute, keeping the position of an existing one.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.attrs {
		if a.name == name {
			n.attrs[i].value = value
			return
		}
	}
	n.attrs = append(n.attrs, attr{name, value})
}

// TextContent concatenates the text of n and its descendants.
func (n *Node) TextContent() string {
	if n.Kind == TextNode {
		return n.Data
	}
	var sb strings.Builder
	for _, c := range n.children {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// Listeners returns the number of active listeners for event.
func (n *Node) Listeners(event string) int {
	count := 0
	for _, l := range n.listeners[event] {
		if l.active {
			count++
		}
	}
	return count
}

// Dispatch runs the active listeners of n for event, in registration order.
// It reports whether any ran.
func (n *Node) Dispatch(event string) bool {
	ran := false
	for _, l := range append([]*listener(nil), n.listeners[event]...) {
		if l.active {
			l.handler(hxview.Event{Type: event, Target: n})
			ran = true
		}
	}
	return ran
}

func (n *Node) String() string {
	if n.Kind == TextNode {
		return fmt.Sprintf("#text %q", n.Data)
	}
	return "<" + n.Tag + ">"
}

func (n *Node) index(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) detach() {
	if p := n.parent; p != nil {
		if i := p.index(n); i >= 0 {
			p.children = append(p.children[:i], p.children[i+1:]...)
		}
		n.parent = nil
	}
}

func (n *Node) clone() *Node {
	c := &Node{
		Kind:  n.Kind,
		Tag:   n.Tag,
		Data:  n.Data,
		attrs: append([]attr(nil), n.attrs...),
	}
	if len(n.children) > 0 {
		c.children = make([]*Node, len(n.children))
		for i, child := range n.children {
			cc := child.clone()
			cc.parent = c
			c.children[i] = cc
		}
	}
	return c
}

// Document implements hxview.Driver over *Node handles. It counts the
// structural operations it performs, which tests use to check that
// updates touch only what they must.
type Document struct {
	Inserts int
	Removes int
	Clones  int
}

// New returns an empty Document.
func New() *Document {
	return &Document{}
}

var _ hxview.Driver = (*Document)(nil)

func node(n hxview.Node) *Node {
	if n == nil {
		return nil
	}
	return n.(*Node)
}

// wrap avoids returning a typed nil inside the Node interface.
func wrap(n *Node) hxview.Node {
	if n == nil {
		return nil
	}
	return n
}

func (d *Document) CreateElement(tag string) hxview.Node {
	return Element(tag)
}

func (d *Document) CreateText(value string) hxview.Node {
	return Text(value)
}

func (d *Document) AppendChild(parent, child hxview.Node) {
	d.InsertBefore(parent, child, nil)
}

func (d *Document) InsertBefore(parent, child, ref hxview.Node) {
	p, c, r := node(parent), node(child), node(ref)
	if c == r {
		return
	}
	c.detach()
	d.Inserts++
	c.parent = p
	i := len(p.children)
	if r != nil {
		if j := p.index(r); j >= 0 {
			i = j
		}
	}
	p.children = append(p.children, nil)
	copy(p.children[i+1:], p.children[i:])
	p.children[i] = c
}

func (d *Document) RemoveChild(parent, child hxview.Node) error {
	p, c := node(parent), node(child)
	if c.parent != p {
		return fmt.Errorf("%w: %v", ErrNotChild, c)
	}
	d.Removes++
	c.detach()
	return nil
}

func (d *Document) SetAttribute(n hxview.Node, name, value string) {
	node(n).SetAttr(name, value)
}

func (d *Document) SetText(n hxview.Node, value string) {
	el := node(n)
	if el.Kind == TextNode {
		el.Data = value
		return
	}
	for _, c := range el.children {
		c.parent = nil
	}
	t := Text(value)
	t.parent = el
	el.children = []*Node{t}
}

func (d *Document) AddEventListener(n hxview.Node, event string, handler func(hxview.Event)) hxview.Disposable {
	el := node(n)
	l := &listener{handler: handler, active: true}
	if el.listeners == nil {
		el.listeners = make(map[string][]*listener)
	}
	el.listeners[event] = append(el.listeners[event], l)
	return hxview.Once(func() {
		l.active = false
		ls := el.listeners[event]
		for i, x := range ls {
			if x == l {
				el.listeners[event] = append(ls[:i], ls[i+1:]...)
				break
			}
		}
	})
}

func (d *Document) FirstChild(n hxview.Node) hxview.Node {
	return d.ChildAt(n, 0)
}

func (d *Document) NextSibling(n hxview.Node) hxview.Node {
	c := node(n)
	if c.parent == nil {
		return nil
	}
	i := c.parent.index(c)
	if i < 0 || i+1 >= len(c.parent.children) {
		return nil
	}
	return c.parent.children[i+1]
}

func (d *Document) ChildAt(n hxview.Node, index int) hxview.Node {
	el := node(n)
	if index < 0 || index >= len(el.children) {
		return nil
	}
	return el.children[index]
}

func (d *Document) Parent(n hxview.Node) hxview.Node {
	return wrap(node(n).parent)
}

func (d *Document) Clone(n hxview.Node) hxview.Node {
	d.Clones++
	return node(n).clone()
}
