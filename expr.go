package hxview

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/itchyny/gojq"
)

// Expression computes a binding value from a row.
type Expression interface {
	Eval(row any) (any, error)
	String() string
}

// Path returns an expression reading a dotted property path such as
// "author.name" or "tags.0". Each segment selects a map key, a struct field
// (matched exactly, then with its first letter upper-cased) or a slice
// index. Pointers and interfaces are followed. The empty path is the row
// itself.
func Path(path string) Expression {
	p := pathExpr{src: path}
	if path != "" {
		p.parts = strings.Split(path, ".")
	}
	return p
}

type pathExpr struct {
	src   string
	parts []string
}

func (p pathExpr) String() string { return p.src }

func (p pathExpr) Eval(row any) (any, error) {
	v := reflect.ValueOf(row)
	for i, part := range p.parts {
		v = indirect(v)
		if !v.IsValid() {
			return nil, fmt.Errorf("%w: %s: nil at %q", ErrEval, p.src, strings.Join(p.parts[:i], "."))
		}
		next, ok := selectField(v, part)
		if !ok {
			return nil, fmt.Errorf("%w: %s: no %q in %s", ErrEval, p.src, part, v.Type())
		}
		v = next
	}
	if !v.IsValid() {
		return nil, nil
	}
	return v.Interface(), nil
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func selectField(v reflect.Value, name string) (reflect.Value, bool) {
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, false
		}
		e := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		return e, e.IsValid()
	case reflect.Struct:
		if f := v.FieldByName(name); f.IsValid() && f.CanInterface() {
			return f, true
		}
		r, size := utf8.DecodeRuneInString(name)
		if f := v.FieldByName(string(unicode.ToUpper(r)) + name[size:]); f.IsValid() && f.CanInterface() {
			return f, true
		}
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= v.Len() {
			return reflect.Value{}, false
		}
		return v.Index(i), true
	}
	return reflect.Value{}, false
}

// Query returns an expression evaluating a jq program against the row. The
// first value the program emits is the result; a program emitting nothing
// yields nil. Rows that are not JSON-shaped are converted through
// encoding/json first.
func Query(src string) (Expression, error) {
	q, err := gojq.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: query %q: %v", ErrCompile, src, err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("%w: query %q: %v", ErrCompile, src, err)
	}
	return queryExpr{src: src, code: code}, nil
}

// MustQuery is like Query but panics on a malformed program.
func MustQuery(src string) Expression {
	e, err := Query(src)
	if err != nil {
		panic(err)
	}
	return e
}

type queryExpr struct {
	src  string
	code *gojq.Code
}

func (q queryExpr) String() string { return q.src }

func (q queryExpr) Eval(row any) (any, error) {
	input, err := jqValue(row)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEval, q.src, err)
	}
	iter := q.code.Run(input)
	v, ok := iter.Next()
	if !ok {
		return nil, nil
	}
	if err, ok := v.(error); ok {
		return nil, fmt.Errorf("%w: %s: %v", ErrEval, q.src, err)
	}
	return v, nil
}

// jqValue converts v into the value space gojq accepts.
func jqValue(v any) (any, error) {
	switch v := v.(type) {
	case nil, bool, string, int, float64:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case float32:
		return float64(v), nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			c, err := jqValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			c, err := jqValue(e)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Func returns an expression calling fn with the row.
func Func(fn func(row any) any) Expression {
	return funcExpr(fn)
}

type funcExpr func(row any) any

func (f funcExpr) String() string { return "func" }

func (f funcExpr) Eval(row any) (any, error) { return f(row), nil }

// Const returns an expression ignoring the row. A Stream constant binds
// every instantiation to the same live source.
func Const(v any) Expression {
	return constExpr{v}
}

type constExpr struct{ v any }

func (c constExpr) String() string { return "const " + sprint(c.v) }

func (c constExpr) Eval(any) (any, error) { return c.v, nil }

// sprint formats a bound value for a text node or attribute.
func sprint(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}
