package parser

import (
	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
	"github.com/jacoelho/xsdcorpus/internal/xsdxml"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

func (p *parser) globalElement(id xsdxml.NodeID) *schemadoc.Element {
	for _, attr := range []string{"ref", "minOccurs", "maxOccurs", "form"} {
		if p.xml.HasAttribute(id, attr) {
			p.fail(id, "global element cannot have %s attribute", attr)
		}
	}
	e := p.elementBody(id)
	if e == nil {
		return nil
	}
	e.SubstitutionGroup = p.qname(id, "substitutionGroup")
	e.Abstract = p.boolAttr(id, "abstract")
	e.Final = p.derivationSet(id, "final", blockType, p.doc.FinalDefault)
	e.Qualified = true
	e.Fingerprint = p.fingerprint(id)
	return e
}

// elementBody parses what global and local element declarations share.
func (p *parser) elementBody(id xsdxml.NodeID) *schemadoc.Element {
	name := p.name(id)
	if name == "" {
		return nil
	}
	e := &schemadoc.Element{
		Name:       name,
		Type:       p.qname(id, "type"),
		Constraint: p.valueConstraint(id),
		Nillable:   p.boolAttr(id, "nillable"),
		Block:      p.derivationSet(id, "block", blockElement, p.doc.BlockDefault),
		Scope:      p.scope(id),
		Pos:        p.pos(id),
	}
	for _, c := range p.children(id) {
		switch p.xml.LocalName(c) {
		case "simpleType", "complexType":
			if e.SimpleType != nil || e.ComplexType != nil {
				p.fail(c, "element %s has more than one anonymous type", name)
				continue
			}
			if e.Type.Local != "" {
				p.fail(c, "element %s has both a type attribute and an anonymous type", name)
				continue
			}
			if p.xml.LocalName(c) == "simpleType" {
				e.SimpleType = p.simpleType(c, false)
			} else {
				e.ComplexType = p.complexType(c, false)
			}
		case "unique", "key", "keyref":
		default:
			p.fail(c, "unexpected element %s in element declaration", p.xml.LocalName(c))
		}
	}
	return e
}

func (p *parser) localElement(id xsdxml.NodeID) *schemadoc.Element {
	if ref := p.qname(id, "ref"); ref.Local != "" {
		for _, attr := range []string{"name", "type", "nillable", "default", "fixed", "form", "block"} {
			if p.xml.HasAttribute(id, attr) {
				p.fail(id, "element reference cannot have %s attribute", attr)
			}
		}
		return &schemadoc.Element{Ref: ref, Scope: p.scope(id), Pos: p.pos(id)}
	}
	for _, attr := range []string{"substitutionGroup", "abstract", "final"} {
		if p.xml.HasAttribute(id, attr) {
			p.fail(id, "local element cannot have %s attribute", attr)
		}
	}
	e := p.elementBody(id)
	if e == nil {
		return nil
	}
	e.Qualified = p.form(id, "form", p.doc.ElementFormQualified)
	return e
}

func (p *parser) globalAttribute(id xsdxml.NodeID) *schemadoc.Attribute {
	for _, attr := range []string{"ref", "use", "form"} {
		if p.xml.HasAttribute(id, attr) {
			p.fail(id, "global attribute cannot have %s attribute", attr)
		}
	}
	a := p.attributeBody(id)
	if a == nil {
		return nil
	}
	a.Qualified = true
	a.Fingerprint = p.fingerprint(id)
	return a
}

func (p *parser) attributeBody(id xsdxml.NodeID) *schemadoc.Attribute {
	name := p.name(id)
	if name == "" {
		return nil
	}
	if name == "xmlns" {
		p.fail(id, "attribute cannot be named xmlns")
		return nil
	}
	a := &schemadoc.Attribute{
		Name:       name,
		Type:       p.qname(id, "type"),
		Constraint: p.valueConstraint(id),
		Scope:      p.scope(id),
		Pos:        p.pos(id),
	}
	for _, c := range p.children(id) {
		if p.xml.LocalName(c) != "simpleType" || a.SimpleType != nil || a.Type.Local != "" {
			p.fail(c, "unexpected element %s in attribute %s", p.xml.LocalName(c), name)
			continue
		}
		a.SimpleType = p.simpleType(c, false)
	}
	return a
}

func (p *parser) localAttribute(id xsdxml.NodeID) *schemadoc.Attribute {
	use := schemadoc.UseOptional
	switch raw := p.attr(id, "use"); raw {
	case "", "optional":
	case "required":
		use = schemadoc.UseRequired
	case "prohibited":
		use = schemadoc.UseProhibited
	default:
		p.fail(id, "invalid use attribute value %q", raw)
	}
	var a *schemadoc.Attribute
	if ref := p.qname(id, "ref"); ref.Local != "" {
		for _, attr := range []string{"name", "type", "form"} {
			if p.xml.HasAttribute(id, attr) {
				p.fail(id, "attribute reference cannot have %s attribute", attr)
			}
		}
		a = &schemadoc.Attribute{
			Ref:        ref,
			Constraint: p.valueConstraint(id),
			Scope:      p.scope(id),
			Pos:        p.pos(id),
		}
	} else {
		a = p.attributeBody(id)
		if a == nil {
			return nil
		}
		a.Qualified = p.form(id, "form", p.doc.AttributeFormQualified)
	}
	a.Use = use
	if use == schemadoc.UseRequired && a.Constraint.Kind == corpus.ConstraintDefault {
		p.fail(id, "attribute with use=required cannot have a default value")
	}
	if use == schemadoc.UseProhibited && a.Constraint.Kind == corpus.ConstraintDefault {
		a.Constraint = schemadoc.ValueConstraint{}
	}
	return a
}

// attributeList parses the attribute, attributeGroup and anyAttribute children
// that close complex types and attribute groups. rest holds the children left
// before them.
func (p *parser) attributeList(children []xsdxml.NodeID) (attrs []*schemadoc.Attribute, groups []schemadoc.AttributeGroupRef, anyAttr *schemadoc.Wildcard, rest []xsdxml.NodeID) {
	for i, c := range children {
		switch p.xml.LocalName(c) {
		case "attribute":
			if anyAttr != nil {
				p.fail(c, "attribute after anyAttribute")
			}
			if a := p.localAttribute(c); a != nil {
				attrs = append(attrs, a)
			}
		case "attributeGroup":
			if anyAttr != nil {
				p.fail(c, "attributeGroup after anyAttribute")
			}
			ref := p.qname(c, "ref")
			if ref.Local == "" {
				p.fail(c, "attributeGroup reference missing ref")
				continue
			}
			groups = append(groups, schemadoc.AttributeGroupRef{Ref: ref, Pos: p.pos(c)})
		case "anyAttribute":
			if anyAttr != nil {
				p.fail(c, "more than one anyAttribute")
				continue
			}
			anyAttr = p.wildcard(c)
		default:
			if len(attrs) > 0 || len(groups) > 0 || anyAttr != nil {
				p.fail(c, "unexpected element %s after attributes", p.xml.LocalName(c))
				continue
			}
			rest = children[:i+1]
		}
	}
	return attrs, groups, anyAttr, rest
}

func (p *parser) attributeGroup(id xsdxml.NodeID) *schemadoc.AttributeGroup {
	name := p.name(id)
	if name == "" {
		return nil
	}
	attrs, groups, anyAttr, rest := p.attributeList(p.children(id))
	for _, c := range rest {
		p.fail(c, "unexpected element %s in attributeGroup %s", p.xml.LocalName(c), name)
	}
	return &schemadoc.AttributeGroup{
		Name:            name,
		Attributes:      attrs,
		AttributeGroups: groups,
		AnyAttribute:    anyAttr,
		Pos:             p.pos(id),
		Fingerprint:     p.fingerprint(id),
	}
}

func (p *parser) wildcard(id xsdxml.NodeID) *schemadoc.Wildcard {
	w := &schemadoc.Wildcard{Namespace: "##any", Process: corpus.ProcessStrict, Pos: p.pos(id)}
	if ns, ok := p.xml.LookupAttribute(id, "namespace"); ok {
		w.Namespace = ns
	}
	switch raw := p.attr(id, "processContents"); raw {
	case "", "strict":
	case "lax":
		w.Process = corpus.ProcessLax
	case "skip":
		w.Process = corpus.ProcessSkip
	default:
		p.fail(id, "invalid processContents value %q", raw)
	}
	return w
}

func (p *parser) namedGroup(id xsdxml.NodeID) *schemadoc.Group {
	name := p.name(id)
	if name == "" {
		return nil
	}
	if p.xml.HasAttribute(id, "minOccurs") || p.xml.HasAttribute(id, "maxOccurs") {
		p.fail(id, "named group %s cannot have occurrence attributes", name)
	}
	var model *schemadoc.ModelGroup
	for _, c := range p.children(id) {
		switch p.xml.LocalName(c) {
		case "sequence", "choice", "all":
			if model != nil {
				p.fail(c, "group %s has more than one model group", name)
				continue
			}
			if p.xml.HasAttribute(c, "minOccurs") || p.xml.HasAttribute(c, "maxOccurs") {
				p.fail(c, "model group of named group %s cannot have occurrence attributes", name)
			}
			model = p.modelGroup(c)
		default:
			p.fail(c, "unexpected element %s in group %s", p.xml.LocalName(c), name)
		}
	}
	if model == nil {
		p.fail(id, "group %s has no model group", name)
		return nil
	}
	return &schemadoc.Group{Name: name, Model: model, Pos: p.pos(id), Fingerprint: p.fingerprint(id)}
}

func (p *parser) modelGroup(id xsdxml.NodeID) *schemadoc.ModelGroup {
	g := &schemadoc.ModelGroup{Pos: p.pos(id)}
	switch p.xml.LocalName(id) {
	case "choice":
		g.Compositor = corpus.CompositorChoice
	case "all":
		g.Compositor = corpus.CompositorAll
	}
	for _, c := range p.children(id) {
		if part := p.particle(c); part != nil {
			g.Particles = append(g.Particles, part)
		}
	}
	return g
}

// particle parses one content model child. all groups keep every member here;
// the graph builder applies cos-all-limited.
func (p *parser) particle(id xsdxml.NodeID) *schemadoc.Particle {
	minOccurs, maxOccurs := p.occurs(id)
	part := &schemadoc.Particle{MinOccurs: minOccurs, MaxOccurs: maxOccurs, Pos: p.pos(id)}
	switch p.xml.LocalName(id) {
	case "element":
		part.Kind = schemadoc.ParticleElement
		part.Element = p.localElement(id)
		if part.Element == nil {
			return nil
		}
	case "group":
		part.Kind = schemadoc.ParticleGroupRef
		part.GroupRef = p.qname(id, "ref")
		if part.GroupRef.Local == "" {
			p.fail(id, "group reference missing ref")
			return nil
		}
	case "sequence", "choice", "all":
		part.Kind = schemadoc.ParticleModelGroup
		part.Model = p.modelGroup(id)
	case "any":
		part.Kind = schemadoc.ParticleWildcard
		part.Wildcard = p.wildcard(id)
	default:
		p.fail(id, "unexpected element %s in content model", p.xml.LocalName(id))
		return nil
	}
	return part
}
