package hxview

import (
	"fmt"
	"strings"
)

// OpCode is a patch program instruction.
type OpCode uint8

const (
	// OpFirstChild pushes the first child of the top node.
	OpFirstChild OpCode = iota
	// OpChild pushes the child at Index of the top node.
	OpChild
	// OpNextSibling replaces the top node with its next sibling.
	OpNextSibling
	// OpPop discards the top node.
	OpPop
	// OpBindText sets the text of the top node from expression Index.
	OpBindText
	// OpBindAttr sets attribute Name of the top node from expression Index.
	OpBindAttr
	// OpBindEvent attaches listener Index to the top node.
	OpBindEvent
	// OpEmbed renders embed Index at the top node, which is its anchor.
	OpEmbed
)

var opNames = [...]string{
	OpFirstChild:  "first-child",
	OpChild:       "child",
	OpNextSibling: "next-sibling",
	OpPop:         "pop",
	OpBindText:    "bind-text",
	OpBindAttr:    "bind-attr",
	OpBindEvent:   "bind-event",
	OpEmbed:       "embed",
}

func (op OpCode) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Instruction is one step of a patch program. Index is a child position for
// OpChild and a side table index for the binding instructions.
type Instruction struct {
	Op    OpCode `msgpack:"op"`
	Index int    `msgpack:"i,omitempty"`
	Name  string `msgpack:"n,omitempty"`
}

func (in Instruction) String() string {
	switch in.Op {
	case OpChild, OpBindText, OpBindEvent, OpEmbed:
		return fmt.Sprintf("%s %d", in.Op, in.Index)
	case OpBindAttr:
		return fmt.Sprintf("%s %s %d", in.Op, in.Name, in.Index)
	}
	return in.Op.String()
}

// Program is a position-addressed instruction sequence. It holds no node
// references and is valid against every clone of its prototype.
type Program []Instruction

// String lists one instruction per line.
func (p Program) String() string {
	var sb strings.Builder
	for i, in := range p {
		fmt.Fprintf(&sb, "%04d %s\n", i, in)
	}
	return sb.String()
}

// action is a runtime binding recorded against a prototype node during
// compilation.
type action struct {
	op    OpCode
	index int
	name  string
}

func (a action) instruction() Instruction {
	return Instruction{Op: a.op, Index: a.index, Name: a.name}
}
