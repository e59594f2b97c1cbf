package xsdxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"maps"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

const xmlnsNamespace = "http://www.w3.org/2000/xmlns/"

// Parse reads one XML document into a Document. Non-UTF-8 inputs are
// decoded through the IANA charset registry.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	doc := &Document{root: InvalidNode}
	stack := make([]NodeID, 0, 16)
	rootScope := map[string]string{}
	for {
		line, column := dec.InputPos()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xml read: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			parent := InvalidNode
			scope := rootScope
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
				scope = doc.nodes[parent].scope
			} else if doc.root != InvalidNode {
				return nil, fmt.Errorf("unexpected element %s after document end", t.Name.Local)
			}
			id := doc.addElement(t, parent, scope, line, column)
			if parent == InvalidNode {
				doc.root = id
			}
			stack = append(stack, id)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, fmt.Errorf("unexpected character data outside root element")
				}
				continue
			}
			n := &doc.nodes[stack[len(stack)-1]]
			n.text = append(n.text, t...)
		}
	}
	if doc.root == InvalidNode {
		return nil, io.ErrUnexpectedEOF
	}
	return doc, nil
}

func (d *Document) addElement(t xml.StartElement, parent NodeID, scope map[string]string, line, column int) NodeID {
	id := NodeID(len(d.nodes))
	var attrs []Attr
	copied := false
	for _, a := range t.Attr {
		switch {
		case a.Name.Space == "xmlns":
			scope, copied = declare(scope, copied, a.Name.Local, a.Value)
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			scope, copied = declare(scope, copied, "", a.Value)
		case a.Name.Space == xmlnsNamespace:
		default:
			attrs = append(attrs, Attr{Namespace: a.Name.Space, Local: a.Name.Local, Value: a.Value})
		}
	}
	d.nodes = append(d.nodes, node{
		namespace: t.Name.Space,
		local:     t.Name.Local,
		attrs:     attrs,
		parent:    parent,
		line:      line,
		column:    column,
		scope:     scope,
	})
	if parent != InvalidNode {
		d.nodes[parent].children = append(d.nodes[parent].children, id)
	}
	return id
}

// declare adds a binding, copying the inherited scope on the first write.
func declare(scope map[string]string, copied bool, prefix, uri string) (map[string]string, bool) {
	if !copied {
		scope = maps.Clone(scope)
		if scope == nil {
			scope = map[string]string{}
		}
	}
	scope[prefix] = uri
	return scope, true
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %q: unsupported", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
