// Package parser reads XSD documents into the walker contract of package
// schemadoc. It enforces the structural rules the compiler relies on and
// leaves every component constraint to the compiler passes.
package parser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
	"github.com/jacoelho/xsdcorpus/internal/value"
	"github.com/jacoelho/xsdcorpus/internal/xsdxml"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// XSDNamespace is the namespace of schema document elements.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// ParseError is a structural problem in a schema document.
type ParseError struct {
	SystemID string
	Line     int
	Column   int
	Err      error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %v", e.SystemID, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.SystemID, e.Err)
}

// Unwrap returns the wrapped error.
func (e *ParseError) Unwrap() error { return e.Err }

type parser struct {
	xml    *xsdxml.Document
	doc    *schemadoc.Document
	errors []error
}

// Parse reads one schema document. Include and import targets are left
// unresolved; see package loader.
func Parse(r io.Reader, systemID string) (*schemadoc.Document, error) {
	x, err := xsdxml.Parse(r)
	if err != nil {
		return nil, &ParseError{SystemID: systemID, Err: err}
	}
	p := &parser{xml: x, doc: &schemadoc.Document{SystemID: systemID}}
	p.parseSchema(x.Root())
	if len(p.errors) > 0 {
		return nil, errors.Join(p.errors...)
	}
	return p.doc, nil
}

func (p *parser) fail(id xsdxml.NodeID, format string, args ...any) {
	line, col := p.xml.Position(id)
	p.errors = append(p.errors, &ParseError{
		SystemID: p.doc.SystemID,
		Line:     line,
		Column:   col,
		Err:      fmt.Errorf(format, args...),
	})
}

func (p *parser) pos(id xsdxml.NodeID) schemadoc.Pos {
	line, col := p.xml.Position(id)
	return schemadoc.Pos{Line: line, Column: col}
}

func (p *parser) scope(id xsdxml.NodeID) schemadoc.Scope {
	return schemadoc.Scope(p.xml.Scope(id))
}

// children returns the XSD child elements of id, skipping annotations.
func (p *parser) children(id xsdxml.NodeID) []xsdxml.NodeID {
	var out []xsdxml.NodeID
	for _, c := range p.xml.Children(id) {
		if p.xml.NamespaceURI(c) != XSDNamespace {
			p.fail(c, "unexpected element {%s}%s", p.xml.NamespaceURI(c), p.xml.LocalName(c))
			continue
		}
		if p.xml.LocalName(c) == "annotation" {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (p *parser) attr(id xsdxml.NodeID, name string) string {
	return value.Normalize(corpus.WhiteSpaceCollapse, p.xml.GetAttribute(id, name))
}

func (p *parser) parseSchema(root xsdxml.NodeID) {
	if p.xml.NamespaceURI(root) != XSDNamespace || p.xml.LocalName(root) != "schema" {
		p.fail(root, "root element must be xs:schema, got {%s}%s", p.xml.NamespaceURI(root), p.xml.LocalName(root))
		return
	}
	d := p.doc
	d.TargetNamespace = p.attr(root, "targetNamespace")
	if p.xml.HasAttribute(root, "targetNamespace") && d.TargetNamespace == "" {
		p.fail(root, "targetNamespace cannot be empty")
	}
	d.ElementFormQualified = p.form(root, "elementFormDefault", false)
	d.AttributeFormQualified = p.form(root, "attributeFormDefault", false)
	d.BlockDefault = p.derivationSet(root, "blockDefault", blockElement, 0)
	d.FinalDefault = p.derivationSet(root, "finalDefault", finalAll, 0)

	for _, c := range p.children(root) {
		switch p.xml.LocalName(c) {
		case "include":
			loc := p.attr(c, "schemaLocation")
			if loc == "" {
				p.fail(c, "include directive missing schemaLocation")
				continue
			}
			d.Includes = append(d.Includes, &schemadoc.Include{Location: loc, Pos: p.pos(c)})
		case "import":
			ns := p.attr(c, "namespace")
			if ns != "" && ns == d.TargetNamespace {
				p.fail(c, "import namespace %q equals the target namespace", ns)
				continue
			}
			if !p.xml.HasAttribute(c, "namespace") && d.TargetNamespace == "" {
				p.fail(c, "import without namespace in a schema without targetNamespace")
				continue
			}
			d.Imports = append(d.Imports, &schemadoc.Import{
				Namespace: ns,
				Location:  p.attr(c, "schemaLocation"),
				Pos:       p.pos(c),
			})
		case "redefine":
			p.fail(c, "redefine is not supported")
		case "element":
			if e := p.globalElement(c); e != nil {
				d.Elements = append(d.Elements, e)
			}
		case "attribute":
			if a := p.globalAttribute(c); a != nil {
				d.Attributes = append(d.Attributes, a)
			}
		case "simpleType":
			if st := p.simpleType(c, true); st != nil {
				d.SimpleTypes = append(d.SimpleTypes, st)
			}
		case "complexType":
			if ct := p.complexType(c, true); ct != nil {
				d.ComplexTypes = append(d.ComplexTypes, ct)
			}
		case "group":
			if g := p.namedGroup(c); g != nil {
				d.Groups = append(d.Groups, g)
			}
		case "attributeGroup":
			if ag := p.attributeGroup(c); ag != nil {
				d.AttributeGroups = append(d.AttributeGroups, ag)
			}
		case "notation":
		default:
			p.fail(c, "unexpected top-level element %s", p.xml.LocalName(c))
		}
	}
}

func (p *parser) name(id xsdxml.NodeID) string {
	name := p.attr(id, "name")
	if !value.IsNCName(name) {
		p.fail(id, "%s name %q is not an NCName", p.xml.LocalName(id), name)
		return ""
	}
	return name
}

func (p *parser) qname(id xsdxml.NodeID, attr string) schemadoc.QName {
	raw := p.attr(id, attr)
	if raw == "" {
		return schemadoc.QName{}
	}
	q, err := value.ParseQName(raw, p.scope(id).Lookup)
	if err != nil {
		p.fail(id, "%s: %v", attr, err)
		return schemadoc.QName{}
	}
	return q
}

func (p *parser) qnameList(id xsdxml.NodeID, attr string) []schemadoc.QName {
	var out []schemadoc.QName
	for _, raw := range strings.Fields(p.attr(id, attr)) {
		q, err := value.ParseQName(raw, p.scope(id).Lookup)
		if err != nil {
			p.fail(id, "%s: %v", attr, err)
			continue
		}
		out = append(out, q)
	}
	return out
}

func (p *parser) boolAttr(id xsdxml.NodeID, name string) bool {
	raw, ok := p.xml.LookupAttribute(id, name)
	if !ok {
		return false
	}
	switch value.Normalize(corpus.WhiteSpaceCollapse, raw) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	p.fail(id, "invalid %s attribute value %q: must be 'true', 'false', '1', or '0'", name, raw)
	return false
}

func (p *parser) form(id xsdxml.NodeID, attr string, def bool) bool {
	raw, ok := p.xml.LookupAttribute(id, attr)
	if !ok {
		return def
	}
	switch value.Normalize(corpus.WhiteSpaceCollapse, raw) {
	case "qualified":
		return true
	case "unqualified":
		return false
	}
	p.fail(id, "invalid %s attribute value %q", attr, raw)
	return def
}

func (p *parser) occurs(id xsdxml.NodeID) (uint32, uint32) {
	minOccurs := p.occursAttr(id, "minOccurs")
	maxOccurs := p.occursAttr(id, "maxOccurs")
	if maxOccurs != corpus.Unbounded && minOccurs > maxOccurs {
		p.fail(id, "minOccurs %d greater than maxOccurs %d", minOccurs, maxOccurs)
		return 1, 1
	}
	return minOccurs, maxOccurs
}

func (p *parser) occursAttr(id xsdxml.NodeID, attr string) uint32 {
	raw, ok := p.xml.LookupAttribute(id, attr)
	if !ok {
		return 1
	}
	v := value.Normalize(corpus.WhiteSpaceCollapse, raw)
	if v == "unbounded" && attr == "maxOccurs" {
		return corpus.Unbounded
	}
	u, err := strconv.ParseUint(v, 10, 32)
	if err != nil || u == uint64(corpus.Unbounded) {
		p.fail(id, "invalid %s attribute value %q", attr, raw)
		return 1
	}
	return uint32(u)
}

func (p *parser) valueConstraint(id xsdxml.NodeID) schemadoc.ValueConstraint {
	def, hasDefault := p.xml.LookupAttribute(id, "default")
	fixed, hasFixed := p.xml.LookupAttribute(id, "fixed")
	switch {
	case hasDefault && hasFixed:
		p.fail(id, "default and fixed are mutually exclusive")
		return schemadoc.ValueConstraint{}
	case hasDefault:
		return schemadoc.ValueConstraint{Kind: corpus.ConstraintDefault, Lexical: def}
	case hasFixed:
		return schemadoc.ValueConstraint{Kind: corpus.ConstraintFixed, Lexical: fixed}
	}
	return schemadoc.ValueConstraint{}
}

const (
	blockElement = corpus.BlockExtension | corpus.BlockRestriction | corpus.BlockSubstitution
	blockType    = corpus.BlockExtension | corpus.BlockRestriction
	finalAll     = corpus.BlockExtension | corpus.BlockRestriction | corpus.BlockList | corpus.BlockUnion
	finalSimple  = corpus.BlockRestriction | corpus.BlockList | corpus.BlockUnion
)

// derivationSet parses a block or final attribute. #all cannot be combined
// with other values. An absent attribute yields def restricted to allowed.
func (p *parser) derivationSet(id xsdxml.NodeID, attr string, allowed, def corpus.DerivationSet) corpus.DerivationSet {
	raw, ok := p.xml.LookupAttribute(id, attr)
	if !ok {
		return def & allowed
	}
	tokens := strings.Fields(raw)
	var set corpus.DerivationSet
	for _, token := range tokens {
		var m corpus.DerivationSet
		switch token {
		case "#all":
			if len(tokens) > 1 {
				p.fail(id, "%s cannot combine '#all' with other values", attr)
				return 0
			}
			return allowed
		case "extension":
			m = corpus.BlockExtension
		case "restriction":
			m = corpus.BlockRestriction
		case "substitution":
			m = corpus.BlockSubstitution
		case "list":
			m = corpus.BlockList
		case "union":
			m = corpus.BlockUnion
		}
		if m == 0 || !allowed.Has(m) {
			p.fail(id, "invalid %s derivation method %q", attr, token)
			continue
		}
		set |= m
	}
	return set
}
