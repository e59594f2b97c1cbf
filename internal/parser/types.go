package parser

import (
	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
	"github.com/jacoelho/xsdcorpus/internal/xsdxml"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

var facetNames = map[string]bool{
	"length":         true,
	"minLength":      true,
	"maxLength":      true,
	"pattern":        true,
	"enumeration":    true,
	"whiteSpace":     true,
	"maxInclusive":   true,
	"maxExclusive":   true,
	"minInclusive":   true,
	"minExclusive":   true,
	"totalDigits":    true,
	"fractionDigits": true,
}

func (p *parser) simpleType(id xsdxml.NodeID, global bool) *schemadoc.SimpleType {
	st := &schemadoc.SimpleType{Scope: p.scope(id), Pos: p.pos(id)}
	if global {
		if st.Name = p.name(id); st.Name == "" {
			return nil
		}
		st.Final = p.derivationSet(id, "final", finalSimple, p.doc.FinalDefault)
		st.Fingerprint = p.fingerprint(id)
	} else if p.xml.HasAttribute(id, "name") {
		p.fail(id, "anonymous simpleType cannot have a name")
	}

	children := p.children(id)
	if len(children) != 1 {
		p.fail(id, "simpleType must have exactly one of restriction, list or union")
		return nil
	}
	c := children[0]
	switch p.xml.LocalName(c) {
	case "restriction":
		st.Derivation = corpus.DerivationRestriction
		st.Base = p.qname(c, "base")
		rest := p.facets(c, &st.Facets)
		for _, r := range rest {
			if p.xml.LocalName(r) == "simpleType" && st.BaseType == nil && st.Base.Local == "" {
				st.BaseType = p.simpleType(r, false)
				continue
			}
			p.fail(r, "unexpected element %s in simpleType restriction", p.xml.LocalName(r))
		}
		if st.Base.Local == "" && st.BaseType == nil {
			p.fail(c, "restriction has neither a base attribute nor a simpleType child")
			return nil
		}
	case "list":
		st.Derivation = corpus.DerivationList
		st.ItemType = p.qname(c, "itemType")
		for _, r := range p.children(c) {
			if p.xml.LocalName(r) == "simpleType" && st.Item == nil && st.ItemType.Local == "" {
				st.Item = p.simpleType(r, false)
				continue
			}
			p.fail(r, "unexpected element %s in list", p.xml.LocalName(r))
		}
		if st.ItemType.Local == "" && st.Item == nil {
			p.fail(c, "list has neither an itemType attribute nor a simpleType child")
			return nil
		}
	case "union":
		st.Derivation = corpus.DerivationUnion
		st.MemberTypes = p.qnameList(c, "memberTypes")
		for _, r := range p.children(c) {
			if p.xml.LocalName(r) != "simpleType" {
				p.fail(r, "unexpected element %s in union", p.xml.LocalName(r))
				continue
			}
			if m := p.simpleType(r, false); m != nil {
				st.Members = append(st.Members, m)
			}
		}
		if len(st.MemberTypes) == 0 && len(st.Members) == 0 {
			p.fail(c, "union has no member types")
			return nil
		}
	default:
		p.fail(c, "unexpected element %s in simpleType", p.xml.LocalName(c))
		return nil
	}
	return st
}

// facets collects the facet children of a restriction and returns the others.
func (p *parser) facets(id xsdxml.NodeID, out *[]schemadoc.Facet) []xsdxml.NodeID {
	var rest []xsdxml.NodeID
	for _, c := range p.children(id) {
		name := p.xml.LocalName(c)
		if !facetNames[name] {
			rest = append(rest, c)
			continue
		}
		lexical, ok := p.xml.LookupAttribute(c, "value")
		if !ok {
			p.fail(c, "facet %s missing value", name)
			continue
		}
		*out = append(*out, schemadoc.Facet{
			Name:    name,
			Lexical: lexical,
			Fixed:   p.boolAttr(c, "fixed"),
			Pos:     p.pos(c),
		})
	}
	return rest
}

func (p *parser) complexType(id xsdxml.NodeID, global bool) *schemadoc.ComplexType {
	ct := &schemadoc.ComplexType{
		Abstract: p.boolAttr(id, "abstract"),
		Mixed:    p.boolAttr(id, "mixed"),
		Block:    p.derivationSet(id, "block", blockType, p.doc.BlockDefault),
		Final:    p.derivationSet(id, "final", blockType, p.doc.FinalDefault),
		Scope:    p.scope(id),
		Pos:      p.pos(id),
	}
	if global {
		if ct.Name = p.name(id); ct.Name == "" {
			return nil
		}
		ct.Fingerprint = p.fingerprint(id)
	} else {
		for _, attr := range []string{"name", "abstract", "block", "final"} {
			if p.xml.HasAttribute(id, attr) {
				p.fail(id, "anonymous complexType cannot have %s attribute", attr)
			}
		}
	}

	children := p.children(id)
	if len(children) > 0 {
		switch p.xml.LocalName(children[0]) {
		case "simpleContent":
			if len(children) > 1 {
				p.fail(children[1], "unexpected element %s after simpleContent", p.xml.LocalName(children[1]))
			}
			ct.Content = schemadoc.ContentSimple
			p.simpleContent(children[0], ct)
			return ct
		case "complexContent":
			if len(children) > 1 {
				p.fail(children[1], "unexpected element %s after complexContent", p.xml.LocalName(children[1]))
			}
			ct.Content = schemadoc.ContentComplex
			if raw, ok := p.xml.LookupAttribute(children[0], "mixed"); ok && raw != "" {
				ct.Mixed = p.boolAttr(children[0], "mixed")
			}
			p.complexContent(children[0], ct)
			return ct
		}
	}
	p.contentBody(children, ct)
	return ct
}

// contentBody parses an optional particle followed by attribute declarations.
func (p *parser) contentBody(children []xsdxml.NodeID, ct *schemadoc.ComplexType) {
	attrs, groups, anyAttr, rest := p.attributeList(children)
	ct.Attributes, ct.AttributeGroups, ct.AnyAttribute = attrs, groups, anyAttr
	for i, c := range rest {
		switch p.xml.LocalName(c) {
		case "sequence", "choice", "all", "group":
			if i > 0 {
				p.fail(c, "complex type has more than one content particle")
				continue
			}
			ct.Particle = p.particle(c)
		default:
			p.fail(c, "unexpected element %s in complex type", p.xml.LocalName(c))
		}
	}
}

func (p *parser) derivation(id xsdxml.NodeID, ct *schemadoc.ComplexType) (xsdxml.NodeID, bool) {
	children := p.children(id)
	if len(children) != 1 {
		p.fail(id, "%s must have exactly one restriction or extension", p.xml.LocalName(id))
		return xsdxml.InvalidNode, false
	}
	c := children[0]
	switch p.xml.LocalName(c) {
	case "restriction":
		ct.Derivation = corpus.DerivationRestriction
	case "extension":
		ct.Derivation = corpus.DerivationExtension
	default:
		p.fail(c, "unexpected element %s in %s", p.xml.LocalName(c), p.xml.LocalName(id))
		return xsdxml.InvalidNode, false
	}
	ct.Base = p.qname(c, "base")
	if ct.Base.Local == "" {
		p.fail(c, "%s missing base", p.xml.LocalName(c))
		return xsdxml.InvalidNode, false
	}
	return c, true
}

func (p *parser) simpleContent(id xsdxml.NodeID, ct *schemadoc.ComplexType) {
	c, ok := p.derivation(id, ct)
	if !ok {
		return
	}
	rest := p.children(c)
	if ct.Derivation == corpus.DerivationRestriction {
		rest = p.facets(c, &ct.Facets)
		if len(rest) > 0 && p.xml.LocalName(rest[0]) == "simpleType" {
			ct.SimpleType = p.simpleType(rest[0], false)
			rest = rest[1:]
		}
	}
	attrs, groups, anyAttr, other := p.attributeList(rest)
	ct.Attributes, ct.AttributeGroups, ct.AnyAttribute = attrs, groups, anyAttr
	for _, o := range other {
		p.fail(o, "unexpected element %s in simpleContent", p.xml.LocalName(o))
	}
}

func (p *parser) complexContent(id xsdxml.NodeID, ct *schemadoc.ComplexType) {
	c, ok := p.derivation(id, ct)
	if !ok {
		return
	}
	p.contentBody(p.children(c), ct)
}
