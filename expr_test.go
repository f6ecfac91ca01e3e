package hxview

import (
	"errors"
	"testing"
)

type author struct {
	Name string
	tags []string
}

type post struct {
	Title  string
	Author *author
	Tags   []string
	Meta   map[string]any
}

func TestPath(t *testing.T) {
	row := post{
		Title:  "hello",
		Author: &author{Name: "ana"},
		Tags:   []string{"go", "dom"},
		Meta:   map[string]any{"views": 3},
	}

	tests := []struct {
		path string
		want any
	}{
		{"Title", "hello"},
		{"title", "hello"},
		{"author.name", "ana"},
		{"Tags.1", "dom"},
		{"Meta.views", 3},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := Path(tt.path).Eval(row)
			if err != nil {
				t.Fatalf("Eval() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Eval() = %v, want %v", got, tt.want)
			}
		})
	}

	if got, _ := Path("").Eval(7); got != 7 {
		t.Errorf("Path(\"\").Eval() = %v, want the row", got)
	}
}

func TestPathErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		row  any
	}{
		{"missing field", "Body", post{}},
		{"unexported field", "Author.tags", post{Author: &author{}}},
		{"nil pointer", "Author.Name", post{}},
		{"index out of range", "Tags.3", post{}},
		{"missing key", "x", map[string]any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Path(tt.path).Eval(tt.row)
			if !errors.Is(err, ErrEval) {
				t.Errorf("Eval() error = %v, want ErrEval", err)
			}
		})
	}
}

func TestQuery(t *testing.T) {
	tests := []struct {
		src  string
		row  any
		want any
	}{
		{".title | ascii_upcase", map[string]any{"title": "go"}, "GO"},
		{".Tags | length", post{Tags: []string{"a", "b"}}, 2},
		{".n + 1", map[string]any{"n": int64(41)}, 42},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			q, err := Query(tt.src)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			got, err := q.Eval(tt.row)
			if err != nil {
				t.Fatalf("Eval() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Eval() = %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestQueryErrors(t *testing.T) {
	if _, err := Query(".a |"); !IsCompileError(err) {
		t.Errorf("Query() error = %v, want a compile error", err)
	}
	q := MustQuery(".a.b")
	if _, err := q.Eval(map[string]any{"a": "text"}); !errors.Is(err, ErrEval) {
		t.Errorf("Eval() error = %v, want ErrEval", err)
	}
}

func TestSprint(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{3, "3"},
		{true, "true"},
		{ErrEval, "hxview: expression evaluation failed"},
	}
	for _, tt := range tests {
		if got := sprint(tt.v); got != tt.want {
			t.Errorf("sprint(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
