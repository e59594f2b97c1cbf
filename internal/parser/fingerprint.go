package parser

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jacoelho/xsdcorpus/internal/value"
	"github.com/jacoelho/xsdcorpus/internal/xsdxml"
)

// fingerprint renders the canonical form of a global declaration: element
// names, attributes sorted by name, collapsed text, annotations dropped.
// Identical declarations reached from different documents compare equal.
func (p *parser) fingerprint(id xsdxml.NodeID) string {
	var b strings.Builder
	p.canonical(&b, id)
	return b.String()
}

func (p *parser) canonical(b *strings.Builder, id xsdxml.NodeID) {
	b.WriteByte('<')
	b.WriteString(p.xml.LocalName(id))
	attrs := slices.Clone(p.xml.Attributes(id))
	slices.SortFunc(attrs, func(a, c xsdxml.Attr) int {
		if n := cmp.Compare(a.Namespace, c.Namespace); n != 0 {
			return n
		}
		return cmp.Compare(a.Local, c.Local)
	})
	for _, a := range attrs {
		b.WriteByte(' ')
		if a.Namespace != "" {
			b.WriteString("{" + a.Namespace + "}")
		}
		b.WriteString(a.Local)
		b.WriteString(`="`)
		b.WriteString(a.Value)
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if text := value.TrimXMLWhitespace(p.xml.Text(id)); text != "" {
		b.WriteString(text)
	}
	for _, c := range p.xml.Children(id) {
		if p.xml.NamespaceURI(c) == XSDNamespace && p.xml.LocalName(c) == "annotation" {
			continue
		}
		p.canonical(b, c)
	}
	b.WriteString("</>")
}
