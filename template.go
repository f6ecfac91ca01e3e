package hxview

// Template is a node of a declarative view description. The set of node
// kinds is closed: *Tag, *Text, *Property, *Embed, *Raw, *Attribute and
// *Listener. Templates are immutable once built and may be shared by any
// number of compilations.
type Template interface {
	template()
}

// Descriptor is an attribute or event binding owned by a Tag.
type Descriptor interface {
	Template
	descriptor()
}

// Tag is a structural element with attributes, events and children.
type Tag struct {
	Name     string
	Attrs    []Descriptor
	Children []Template
}

// Text is static text.
type Text struct {
	Value string
}

// Property is text whose content is read from the row when the template is
// instantiated. A Stream value keeps the text live.
type Property struct {
	Expr Expression
}

// Attribute is an attribute of the enclosing Tag. With a nil Expr the
// attribute is static and baked into the prototype; otherwise it is bound
// per row.
type Attribute struct {
	Name  string
	Value string
	Expr  Expression
}

// Listener binds an event handler to the enclosing Tag for every
// instantiation.
type Listener struct {
	Name    string
	Handler func(Event)
}

// Raw passes a driver node through. The node is deep-cloned into the
// prototype, so the original is never mounted.
type Raw struct {
	Node Node
}

// Renderable renders arbitrary content at an embed position.
type Renderable interface {
	Render(ctx *RenderContext) (Disposable, error)
}

// RenderFunc adapts a function to Renderable.
type RenderFunc func(ctx *RenderContext) (Disposable, error)

// Render implements Renderable.
func (f RenderFunc) Render(ctx *RenderContext) (Disposable, error) {
	return f(ctx)
}

// Embed splices either a Renderable or another template tree into the
// enclosing position. Embedded templates are compiled on first use and the
// result is reused by every later instantiation of the same Compiled.
type Embed struct {
	Renderable Renderable
	Template   Template
}

func (*Tag) template()       {}
func (*Text) template()      {}
func (*Property) template()  {}
func (*Attribute) template() {}
func (*Listener) template()  {}
func (*Raw) template()       {}
func (*Embed) template()     {}

func (*Attribute) descriptor() {}
func (*Listener) descriptor()  {}

// El builds a Tag. Attributes and events given among children are moved to
// the tag's attribute list, keeping their relative order.
func El(name string, children ...Template) *Tag {
	t := &Tag{Name: name}
	for _, c := range children {
		if p, ok := c.(Descriptor); ok {
			t.Attrs = append(t.Attrs, p)
			continue
		}
		t.Children = append(t.Children, c)
	}
	return t
}

// Txt builds static text.
func Txt(value string) *Text {
	return &Text{Value: value}
}

// Prop builds text bound to a dotted path of the row.
func Prop(path string) *Property {
	return &Property{Expr: Path(path)}
}

// Bind builds text bound to an arbitrary expression.
func Bind(expr Expression) *Property {
	return &Property{Expr: expr}
}

// Attr builds a static attribute.
func Attr(name, value string) *Attribute {
	return &Attribute{Name: name, Value: value}
}

// AttrBind builds an attribute bound to an expression.
func AttrBind(name string, expr Expression) *Attribute {
	return &Attribute{Name: name, Expr: expr}
}

// On builds an event binding.
func On(name string, handler func(Event)) *Listener {
	return &Listener{Name: name, Handler: handler}
}

// EmbedTemplate embeds a template tree, compiled lazily.
func EmbedTemplate(t Template) *Embed {
	return &Embed{Template: t}
}

// EmbedRenderable embeds a Renderable.
func EmbedRenderable(r Renderable) *Embed {
	return &Embed{Renderable: r}
}

// RawNode passes a driver node through.
func RawNode(n Node) *Raw {
	return &Raw{Node: n}
}
