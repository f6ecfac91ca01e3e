package hxview_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm/hxview"
	"github.com/pthm/hxview/lib/dom"
	"github.com/pthm/hxview/lib/encoding"
)

func mustCompile(t *testing.T, d hxview.Driver, tmpl hxview.Template, opts ...hxview.CompileOption) *hxview.Compiled {
	t.Helper()
	c, err := hxview.Compile(d, tmpl, opts...)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return c
}

func prototypeHTML(c *hxview.Compiled) string {
	var nodes []*dom.Node
	for _, p := range c.Prototypes() {
		nodes = append(nodes, p.(*dom.Node))
	}
	return dom.Markup(nodes...)
}

func TestCompileProgram(t *testing.T) {
	list := func() hxview.Template {
		return hxview.El("ul",
			hxview.El("li", hxview.Prop("a")),
			hxview.Txt("static"),
			hxview.El("li", hxview.AttrBind("id", hxview.Path("id"))),
		)
	}

	tests := []struct {
		name string
		tmpl hxview.Template
		opts []hxview.CompileOption
		want string
	}{
		{
			name: "collapsed",
			tmpl: list(),
			want: "0000 first-child\n0001 first-child\n0002 bind-text 0\n0003 pop\n0004 child 2\n0005 bind-attr id 1\n",
		},
		{
			name: "without collapse",
			tmpl: list(),
			opts: []hxview.CompileOption{hxview.WithoutCollapse()},
			want: "0000 first-child\n0001 first-child\n0002 first-child\n0003 bind-text 0\n0004 pop\n0005 pop\n0006 child 2\n0007 bind-attr id 1\n",
		},
		{
			name: "next sibling",
			tmpl: hxview.El("p", hxview.El("b", hxview.Prop("x")), hxview.El("i", hxview.Prop("y"))),
			want: "0000 first-child\n0001 first-child\n0002 bind-text 0\n0003 next-sibling\n0004 bind-text 1\n",
		},
		{
			name: "static subtree",
			tmpl: hxview.El("div", hxview.Attr("class", "box"), hxview.El("p", hxview.Txt("static"))),
			want: "",
		},
		{
			name: "events and embeds",
			tmpl: hxview.El("div",
				hxview.On("click", func(hxview.Event) {}),
				hxview.EmbedTemplate(hxview.El("em")),
			),
			want: "0000 first-child\n0001 bind-event 0\n0002 first-child\n0003 embed 0\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustCompile(t, dom.New(), tt.tmpl, tt.opts...)
			if diff := cmp.Diff(tt.want, c.Program().String()); diff != "" {
				t.Errorf("Program() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompileBakesStaticContent(t *testing.T) {
	c := mustCompile(t, dom.New(), hxview.El("a",
		hxview.Attr("href", "/docs"),
		hxview.AttrBind("title", hxview.Path("title")),
		hxview.Txt("docs"),
		hxview.Prop("title"),
	))

	if got, want := prototypeHTML(c), `<a href="/docs">docs</a>`; got != want {
		t.Errorf("prototype = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"title", "title"}, exprStrings(c)); diff != "" {
		t.Errorf("Expressions() mismatch (-want +got):\n%s", diff)
	}
}

func exprStrings(c *hxview.Compiled) []string {
	var out []string
	for _, e := range c.Expressions() {
		out = append(out, e.String())
	}
	return out
}

func TestCompileDeterministic(t *testing.T) {
	tmpl := hxview.El("tr",
		hxview.Attr("class", "row"),
		hxview.El("td", hxview.Prop("name")),
		hxview.El("td", hxview.Bind(hxview.MustQuery(".tags | join(\", \")"))),
		hxview.El("td", hxview.El("button", hxview.On("click", func(hxview.Event) {}), hxview.Txt("x"))),
	)

	a := mustCompile(t, dom.New(), tmpl)
	b := mustCompile(t, dom.New(), tmpl)

	fa, err := encoding.Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	fb, err := encoding.Fingerprint(b)
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if fa != fb {
		t.Errorf("Fingerprint() = %q and %q, want equal", fa, fb)
	}
	if prototypeHTML(a) != prototypeHTML(b) {
		t.Errorf("prototypes differ: %q and %q", prototypeHTML(a), prototypeHTML(b))
	}
}

func TestCompileAll(t *testing.T) {
	d := dom.New()
	c, err := hxview.CompileAll(d, []hxview.Template{
		hxview.El("dt", hxview.Prop("k")),
		hxview.El("dd", hxview.Prop("v")),
	})
	if err != nil {
		t.Fatalf("CompileAll() error = %v", err)
	}
	want := "0000 first-child\n0001 bind-text 0\n0002 next-sibling\n0003 bind-text 1\n"
	if diff := cmp.Diff(want, c.Program().String()); diff != "" {
		t.Errorf("Program() mismatch (-want +got):\n%s", diff)
	}
	if len(c.Prototypes()) != 2 {
		t.Errorf("len(Prototypes()) = %d, want 2", len(c.Prototypes()))
	}

	empty, err := hxview.CompileAll(d, nil)
	if err != nil {
		t.Fatalf("CompileAll(nil) error = %v", err)
	}
	if len(empty.Program()) != 0 || len(empty.Prototypes()) != 0 {
		t.Error("CompileAll(nil) should yield an empty program and no prototypes")
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		tmpl hxview.Template
	}{
		{"nil template", nil},
		{"nil child", hxview.El("p", nil)},
		{"typed nil tag", hxview.El("p", (*hxview.Tag)(nil))},
		{"empty tag name", hxview.El("")},
		{"attribute at root", hxview.Attr("class", "x")},
		{"event at root", hxview.On("click", func(hxview.Event) {})},
		{"attribute without name", hxview.El("p", hxview.Attr("", "x"))},
		{"event without handler", hxview.El("p", hxview.On("click", nil))},
		{"property without expression", hxview.El("p", hxview.Bind(nil))},
		{"empty embed", hxview.El("p", &hxview.Embed{})},
		{"raw without node", hxview.RawNode(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hxview.Compile(dom.New(), tt.tmpl)
			var ce *hxview.CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("Compile() error = %v, want *CompileError", err)
			}
			if !hxview.IsCompileError(err) {
				t.Errorf("IsCompileError(%v) = false, want true", err)
			}
		})
	}
}

func TestCompileCycles(t *testing.T) {
	self := hxview.El("ul")
	self.Children = append(self.Children, hxview.El("li", hxview.EmbedTemplate(self)))

	a := hxview.El("a")
	b := hxview.El("b", hxview.EmbedTemplate(a))
	a.Children = append(a.Children, hxview.EmbedTemplate(b))

	for name, tmpl := range map[string]hxview.Template{"self": self, "mutual": a} {
		t.Run(name, func(t *testing.T) {
			_, err := hxview.Compile(dom.New(), tmpl)
			if !hxview.IsCyclic(err) {
				t.Errorf("Compile() error = %v, want a cyclic template error", err)
			}
			if !errors.Is(err, hxview.ErrCompile) {
				t.Errorf("errors.Is(%v, ErrCompile) = false, want true", err)
			}
		})
	}

	shared := hxview.El("em", hxview.Prop("x"))
	if _, err := hxview.Compile(dom.New(), hxview.El("p", hxview.EmbedTemplate(shared), hxview.EmbedTemplate(shared))); err != nil {
		t.Errorf("Compile() of a shared embed error = %v, want nil", err)
	}
}

func TestCompileRawNode(t *testing.T) {
	hr := dom.Element("hr")
	hr.SetAttr("class", "sep")
	c := mustCompile(t, dom.New(), hxview.El("div", hxview.RawNode(hr)))

	if got, want := prototypeHTML(c), `<div><hr class="sep"></div>`; got != want {
		t.Errorf("prototype = %q, want %q", got, want)
	}
	if hr.Parent() != nil {
		t.Error("raw node should be cloned, not mounted")
	}
}

func TestElSplitsDescriptors(t *testing.T) {
	tag := hxview.El("a",
		hxview.Attr("href", "/"),
		hxview.Prop("title"),
		hxview.On("click", func(hxview.Event) {}),
	)
	if len(tag.Attrs) != 2 || len(tag.Children) != 1 {
		t.Fatalf("El() = %d attrs and %d children, want 2 and 1", len(tag.Attrs), len(tag.Children))
	}
	var _ hxview.Descriptor = tag.Attrs[1]
	if _, ok := tag.Children[0].(*hxview.Property); !ok {
		t.Errorf("child = %T, want *hxview.Property", tag.Children[0])
	}
}
