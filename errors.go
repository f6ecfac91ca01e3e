package hxview

import (
	"errors"
	"fmt"
)

// Sentinel errors for compilation, mutation and disposal.
var (
	ErrCompile         = errors.New("hxview: compile failed")
	ErrInvalidMutation = errors.New("hxview: invalid mutation")
	ErrIndexOutOfRange = errors.New("hxview: index out of range")
	ErrUnknownMutation = errors.New("hxview: unknown mutation")
	ErrDisposal        = errors.New("hxview: disposal failed")
	ErrEval            = errors.New("hxview: expression evaluation failed")

	errDetached = errors.New("node is not attached")
)

// CompileError reports a malformed template. Path locates the offending
// node as a slash separated list of child positions and tag names.
type CompileError struct {
	Path   string
	Reason string
}

func (e *CompileError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("hxview: compile: %s", e.Reason)
	}
	return fmt.Sprintf("hxview: compile %s: %s", e.Path, e.Reason)
}

func (e *CompileError) Unwrap() error { return ErrCompile }

// CyclicTemplateError is returned when an embedded template references one
// of its own ancestors.
type CyclicTemplateError struct {
	Path string
}

func (e *CyclicTemplateError) Error() string {
	return fmt.Sprintf("hxview: compile %s: cyclic embedded template", e.Path)
}

func (e *CyclicTemplateError) Unwrap() error { return ErrCompile }

// InvalidMutationError is returned synchronously when a mutation cannot be
// applied, such as an insert past the end of the sequence.
type InvalidMutationError struct {
	Op    string
	Index int
	Len   int
	Err   error
}

func (e *InvalidMutationError) Error() string {
	if errors.Is(e.Err, ErrIndexOutOfRange) {
		return fmt.Sprintf("hxview: %s: index %d out of range (length %d)", e.Op, e.Index, e.Len)
	}
	return fmt.Sprintf("hxview: %s: %v", e.Op, e.Err)
}

func (e *InvalidMutationError) Unwrap() []error {
	return []error{ErrInvalidMutation, e.Err}
}

// DisposalError describes a resource that could not be released. It is
// logged, never returned: disposal always runs to completion.
type DisposalError struct {
	Node any
	Err  error
}

func (e *DisposalError) Error() string {
	return fmt.Sprintf("hxview: dispose %v: %v", e.Node, e.Err)
}

func (e *DisposalError) Unwrap() []error {
	return []error{ErrDisposal, e.Err}
}

// IsCompileError checks if err is a compile error, cyclic templates
// included.
func IsCompileError(err error) bool {
	return errors.Is(err, ErrCompile)
}

// IsCyclic checks if err reports a cyclic embedded template.
func IsCyclic(err error) bool {
	var ce *CyclicTemplateError
	return errors.As(err, &ce)
}

// IsInvalidMutation checks if err is a rejected mutation.
func IsInvalidMutation(err error) bool {
	return errors.Is(err, ErrInvalidMutation)
}

func outOfRange(op string, index, length int) error {
	return &InvalidMutationError{Op: op, Index: index, Len: length, Err: ErrIndexOutOfRange}
}
