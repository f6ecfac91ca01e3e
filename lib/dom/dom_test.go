package dom

import (
	"errors"
	"testing"

	"github.com/pthm/hxview"
)

func TestInsertBefore(t *testing.T) {
	d := New()
	ul := Element("ul")
	a, b, c := Element("a"), Element("b"), Element("c")

	d.AppendChild(ul, a)
	d.AppendChild(ul, c)
	d.InsertBefore(ul, b, c)

	if got, want := HTML(ul), "<a></a><b></b><c></c>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}

	// Inserting an attached node moves it.
	d.InsertBefore(ul, c, a)
	if got, want := HTML(ul), "<c></c><a></a><b></b>"; got != want {
		t.Errorf("HTML() after move = %q, want %q", got, want)
	}
	if c.Parent() != ul {
		t.Errorf("Parent() = %v, want %v", c.Parent(), ul)
	}
}

func TestRemoveChild(t *testing.T) {
	d := New()
	ul, li := Element("ul"), Element("li")
	d.AppendChild(ul, li)

	if err := d.RemoveChild(ul, li); err != nil {
		t.Fatalf("RemoveChild() error = %v", err)
	}
	if li.Parent() != nil {
		t.Errorf("Parent() = %v, want nil", li.Parent())
	}
	if err := d.RemoveChild(ul, li); !errors.Is(err, ErrNotChild) {
		t.Errorf("second RemoveChild() error = %v, want ErrNotChild", err)
	}
	if d.Parent(li) != nil {
		t.Error("Parent() of detached node should be an untyped nil")
	}
}

func TestNavigation(t *testing.T) {
	d := New()
	p := Element("p")
	x, y := Text("x"), Element("b")
	d.AppendChild(p, x)
	d.AppendChild(p, y)

	if d.FirstChild(p) != x {
		t.Errorf("FirstChild() = %v, want %v", d.FirstChild(p), x)
	}
	if d.NextSibling(x) != y {
		t.Errorf("NextSibling() = %v, want %v", d.NextSibling(x), y)
	}
	if d.NextSibling(y) != nil {
		t.Errorf("NextSibling() past end = %v, want nil", d.NextSibling(y))
	}
	if d.ChildAt(p, 1) != y {
		t.Errorf("ChildAt(1) = %v, want %v", d.ChildAt(p, 1), y)
	}
	if d.ChildAt(p, 2) != nil {
		t.Errorf("ChildAt(2) = %v, want nil", d.ChildAt(p, 2))
	}
}

func TestCloneDropsListeners(t *testing.T) {
	d := New()
	btn := Element("button")
	btn.SetAttr("class", "primary")
	d.AppendChild(btn, Text("go"))
	d.AddEventListener(btn, "click", func(hxview.Event) {})

	c := d.Clone(btn).(*Node)
	if c == btn || c.Parent() != nil {
		t.Fatal("Clone() should return a detached copy")
	}
	if got, want := Markup(c), `<button class="primary">go</button>`; got != want {
		t.Errorf("HTML(clone) = %q, want %q", got, want)
	}
	if c.Listeners("click") != 0 {
		t.Errorf("clone Listeners() = %d, want 0", c.Listeners("click"))
	}
	if d.Clones != 1 {
		t.Errorf("Clones = %d, want 1", d.Clones)
	}
}

func TestEventListener(t *testing.T) {
	d := New()
	btn := Element("button")
	var got []string
	l := d.AddEventListener(btn, "click", func(e hxview.Event) {
		got = append(got, e.Type)
	})

	if !btn.Dispatch("click") {
		t.Error("Dispatch() = false, want true")
	}
	l.Dispose()
	l.Dispose()
	if btn.Dispatch("click") {
		t.Error("Dispatch() after dispose = true, want false")
	}
	if len(got) != 1 {
		t.Errorf("handler calls = %d, want 1", len(got))
	}
}

func TestSetText(t *testing.T) {
	d := New()
	p := Element("p")
	d.AppendChild(p, Element("b"))
	d.SetText(p, "a < b")

	if got, want := Markup(p), "<p>a &lt; b</p>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if p.TextContent() != "a < b" {
		t.Errorf("TextContent() = %q, want %q", p.TextContent(), "a < b")
	}
}

func TestComponent(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"text", Text(`"quoted" & <tagged>`), "&#34;quoted&#34; &amp; &lt;tagged&gt;"},
		{"void", Element("br"), "<br>"},
		{"attrs in order", func() *Node {
			n := Element("a")
			n.SetAttr("href", "/x?a=1&b=2")
			n.SetAttr("id", "link")
			n.SetAttr("href", "/y")
			return n
		}(), `<a href="/y" id="link"></a>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Markup(tt.node); got != tt.want {
				t.Errorf("HTML() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderString(t *testing.T) {
	d := New()
	c, err := hxview.Compile(d, hxview.El("li",
		hxview.AttrBind("id", hxview.Path("id")),
		hxview.Prop("title"),
	))
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	got, err := RenderString(c, map[string]any{"id": 7, "title": "write docs"})
	if err != nil {
		t.Fatalf("RenderString() error = %v", err)
	}
	if want := `<li id="7">write docs</li>`; got != want {
		t.Errorf("RenderString() = %q, want %q", got, want)
	}
}
