package hxview

// Node is an opaque handle to a structural or text node owned by a Driver.
// Handles must be comparable; drivers typically hand out pointers.
type Node = any

// Event is passed to handlers bound with On.
type Event struct {
	Type   string
	Target Node
	Row    any
}

// Driver is the host rendering collaborator. hxview never touches nodes
// except through these primitives. Lifetimes are not a driver concern: see
// Scope.
//
// Creation and mutation:
//   - CreateElement and CreateText build detached nodes.
//   - InsertBefore with a nil ref appends. Inserting a node that already has
//     a parent moves it.
//   - RemoveChild reports an error when child is not attached to parent.
//   - SetText replaces the content of an element with a single text value,
//     or the value of a text node.
//
// Navigation and cloning are used by the instantiator to replay patch
// programs against fresh copies of a prototype:
//   - FirstChild, NextSibling and ChildAt return nil past the end.
//   - Clone returns a detached deep copy without event listeners.
type Driver interface {
	CreateElement(tag string) Node
	CreateText(value string) Node

	AppendChild(parent, child Node)
	InsertBefore(parent, child, ref Node)
	RemoveChild(parent, child Node) error

	SetAttribute(node Node, name, value string)
	SetText(node Node, value string)
	AddEventListener(node Node, event string, handler func(Event)) Disposable

	FirstChild(node Node) Node
	NextSibling(node Node) Node
	ChildAt(node Node, index int) Node
	Parent(node Node) Node
	Clone(node Node) Node
}
