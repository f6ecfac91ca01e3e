package dom

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/hxview"
)

// voidElements have no closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Component renders nodes as HTML. Attributes keep the order they were
// first set in, so output is stable across runs.
func Component(nodes ...*Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, n := range nodes {
			if err := write(w, n); err != nil {
				return err
			}
		}
		return nil
	})
}

func write(w io.Writer, n *Node) error {
	if n.Kind == TextNode {
		_, err := io.WriteString(w, templ.EscapeString(n.Data))
		return err
	}
	if _, err := io.WriteString(w, "<"+n.Tag); err != nil {
		return err
	}
	for _, a := range n.attrs {
		if _, err := io.WriteString(w, " "+a.name+`="`+templ.EscapeString(a.value)+`"`); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if voidElements[n.Tag] && len(n.children) == 0 {
		return nil
	}
	for _, c := range n.children {
		if err := write(w, c); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</"+n.Tag+">")
	return err
}

// HTML returns the markup of the children of parent.
func HTML(parent *Node) string {
	return Markup(parent.children...)
}

// Markup returns the markup of nodes.
func Markup(nodes ...*Node) string {
	var buf bytes.Buffer
	// Writing to a bytes.Buffer cannot fail.
	_ = Component(nodes...).Render(context.Background(), &buf)
	return buf.String()
}

// RenderString instantiates c with row into a scratch element and returns
// the markup. c must have been compiled against a *Document.
//
//	html, err := dom.RenderString(c, map[string]any{"title": "hello"})
func RenderString(c *hxview.Compiled, row any) (string, error) {
	root := Element("body")
	res, err := c.Instantiate(root, nil, row)
	if err != nil {
		return "", err
	}
	defer res.Dispose()
	return HTML(root), nil
}
