// Package loader reads templates and rows from YAML.
//
// A file holds a fragment of templates, optional rows and an optional key
// path:
//
//	key: id
//	template:
//	  - tag: li
//	    attrs:
//	      class: todo
//	    bind:
//	      id: id
//	      title: .title | ascii_upcase
//	    children:
//	      - prop: title
//	rows:
//	  - {id: 1, title: write docs}
//
// Node entries carry exactly one of tag, text, prop, query or embed. Bound
// values starting with a dot are jq queries; anything else is a dotted
// path. Attributes keep the order they appear in.
package loader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm/hxview"
)

// ErrInvalid is returned for a structurally invalid file.
var ErrInvalid = errors.New("loader: invalid template file")

// Document is a decoded file.
type Document struct {
	Key       string
	Templates []hxview.Template
	Rows      []any
}

type file struct {
	Key      string     `yaml:"key"`
	Template []nodeSpec `yaml:"template"`
	Rows     []any      `yaml:"rows"`
}

type nodeSpec struct {
	Tag      string     `yaml:"tag"`
	Text     *string    `yaml:"text"`
	Prop     string     `yaml:"prop"`
	Query    string     `yaml:"query"`
	Embed    *nodeSpec  `yaml:"embed"`
	Attrs    yaml.Node  `yaml:"attrs"`
	Bind     yaml.Node  `yaml:"bind"`
	Children []nodeSpec `yaml:"children"`
}

// Load reads and parses the file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a template file.
func Parse(data []byte) (*Document, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	doc := &Document{Key: f.Key, Rows: f.Rows}
	for i := range f.Template {
		t, err := f.Template[i].template(fmt.Sprintf("template[%d]", i))
		if err != nil {
			return nil, err
		}
		doc.Templates = append(doc.Templates, t)
	}
	return doc, nil
}

// KeyFunc returns the key selector for rows, or nil when the file has no
// key.
func (d *Document) KeyFunc() func(any) any {
	if d.Key == "" {
		return nil
	}
	e := hxview.Path(d.Key)
	return func(row any) any {
		v, err := e.Eval(row)
		if err != nil {
			return nil
		}
		return v
	}
}

func invalid(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, path, fmt.Sprintf(format, args...))
}

func (n *nodeSpec) template(path string) (hxview.Template, error) {
	kinds := 0
	for _, set := range []bool{n.Tag != "", n.Text != nil, n.Prop != "", n.Query != "", n.Embed != nil} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, invalid(path, "want exactly one of tag, text, prop, query or embed")
	}
	if n.Tag == "" && (n.Attrs.Kind != 0 || n.Bind.Kind != 0 || len(n.Children) > 0) {
		return nil, invalid(path, "attrs, bind and children need a tag")
	}

	switch {
	case n.Text != nil:
		return hxview.Txt(*n.Text), nil
	case n.Prop != "":
		return hxview.Prop(n.Prop), nil
	case n.Query != "":
		q, err := hxview.Query(n.Query)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return hxview.Bind(q), nil
	case n.Embed != nil:
		t, err := n.Embed.template(path + ".embed")
		if err != nil {
			return nil, err
		}
		return hxview.EmbedTemplate(t), nil
	}

	tag := &hxview.Tag{Name: n.Tag}
	err := eachPair(&n.Attrs, path+".attrs", func(name, value string) error {
		tag.Attrs = append(tag.Attrs, hxview.Attr(name, value))
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = eachPair(&n.Bind, path+".bind", func(name, value string) error {
		e, err := expression(value)
		if err != nil {
			return fmt.Errorf("%s.bind.%s: %w", path, name, err)
		}
		tag.Attrs = append(tag.Attrs, hxview.AttrBind(name, e))
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i := range n.Children {
		child, err := n.Children[i].template(fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		tag.Children = append(tag.Children, child)
	}
	return tag, nil
}

// eachPair walks a mapping node in document order.
func eachPair(node *yaml.Node, path string, fn func(key, value string) error) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return invalid(path, "line %d: want a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return invalid(path, "line %d: value of %q is not a scalar", v.Line, k.Value)
		}
		if err := fn(k.Value, v.Value); err != nil {
			return err
		}
	}
	return nil
}

func expression(src string) (hxview.Expression, error) {
	if strings.HasPrefix(src, ".") {
		return hxview.Query(src)
	}
	return hxview.Path(src), nil
}
