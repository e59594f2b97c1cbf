package corpus

import (
	"slices"
	"strings"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
)

type qkey struct {
	ns    NamespaceID
	local string
}

// Corpus is the immutable compiled schema set. It is safe for concurrent use.
// Records returned by accessors share their slices with the corpus; callers
// must not modify them.
type Corpus struct {
	nodes []nodeRef

	namespaces    []NamespaceRec
	elements      []ElementRec
	attributes    []AttributeRec
	attributeUses []AttributeUseRec
	simpleTypes   []SimpleTypeRec
	complexTypes  []ComplexTypeRec
	particles     []ParticleRec
	groups        []GroupRec
	wildcards     []WildcardRec

	strings  []string
	variants []Variant

	namespaceOrder []NamespaceID
	namespaceByURI map[string]NamespaceID
	elementByName  map[qkey]ElementID
	attrByName     map[qkey]AttributeID
	typeByName     map[qkey]TypeID

	diagnostics []xsderrors.Diagnostic
}

func newCorpus(b *Builder) *Corpus {
	c := &Corpus{
		nodes:          slices.Clone(b.nodes),
		strings:        slices.Clone(b.strings),
		variants:       slices.Clone(b.variants),
		diagnostics:    slices.Clone(b.diagnostics),
		namespaceByURI: make(map[string]NamespaceID, len(b.namespaces)),
		elementByName:  make(map[qkey]ElementID),
		attrByName:     make(map[qkey]AttributeID),
		typeByName:     make(map[qkey]TypeID),
	}
	for _, r := range b.namespaces {
		rec := *r
		rec.Elements = slices.Clone(r.Elements)
		rec.Attributes = slices.Clone(r.Attributes)
		rec.Types = slices.Clone(r.Types)
		c.namespaces = append(c.namespaces, rec)
	}
	for _, r := range b.elements {
		rec := *r
		rec.SubstitutionMembers = slices.Clone(r.SubstitutionMembers)
		rec.GroupHeadInstances = slices.Clone(r.GroupHeadInstances)
		c.elements = append(c.elements, rec)
	}
	for _, r := range b.attributes {
		c.attributes = append(c.attributes, *r)
	}
	for _, r := range b.attributeUses {
		c.attributeUses = append(c.attributeUses, *r)
	}
	for _, r := range b.simpleTypes {
		rec := *r
		rec.MemberTypes = slices.Clone(r.MemberTypes)
		rec.Facets = r.Facets.Clone()
		c.simpleTypes = append(c.simpleTypes, rec)
	}
	for _, r := range b.complexTypes {
		rec := *r
		rec.AttributeUses = slices.Clone(r.AttributeUses)
		rec.Automaton = r.Automaton.clone()
		c.complexTypes = append(c.complexTypes, rec)
	}
	for _, r := range b.particles {
		c.particles = append(c.particles, *r)
	}
	for _, r := range b.groups {
		rec := *r
		rec.Particles = slices.Clone(r.Particles)
		rec.Automaton = r.Automaton.clone()
		c.groups = append(c.groups, rec)
	}
	for _, r := range b.wildcards {
		rec := *r
		rec.Namespaces = slices.Clone(r.Namespaces)
		c.wildcards = append(c.wildcards, rec)
	}

	for id := NodeID(1); int(id) < len(c.nodes); id++ {
		if c.nodes[id].kind != KindNamespace {
			continue
		}
		nsID := NamespaceID(id)
		c.namespaceOrder = append(c.namespaceOrder, nsID)
		ns := c.namespaces[c.nodes[id].slot]
		c.namespaceByURI[c.strings[ns.URI]] = nsID
		for _, e := range ns.Elements {
			c.elementByName[qkey{nsID, c.strings[c.elements[c.nodes[e].slot].Name]}] = e
		}
		for _, a := range ns.Attributes {
			c.attrByName[qkey{nsID, c.strings[c.attributes[c.nodes[a].slot].Name]}] = a
		}
		for _, t := range ns.Types {
			c.typeByName[qkey{nsID, c.strings[b.typeName(t)]}] = t
		}
	}
	slices.SortStableFunc(c.namespaceOrder, func(a, x NamespaceID) int {
		ab, xb := b.builtinNamespaces[a], b.builtinNamespaces[x]
		switch {
		case ab && xb:
			return 0
		case ab:
			return -1
		case xb:
			return 1
		}
		return strings.Compare(c.NamespaceURI(a), c.NamespaceURI(x))
	})
	return c
}

// Len returns the number of node slots, including the reserved Nil slot.
func (c *Corpus) Len() int { return len(c.nodes) }

// Kind returns the kind of id, or KindInvalid when id is out of range.
func (c *Corpus) Kind(id NodeID) Kind {
	if int(id) >= len(c.nodes) {
		return KindInvalid
	}
	return c.nodes[id].kind
}

func (c *Corpus) slot(op string, id NodeID, want Kind) uint32 {
	if got := c.Kind(id); got != want {
		panicKind(op, id, want, got)
	}
	return c.nodes[id].slot
}

// String returns the interned string for id.
func (c *Corpus) String(id StringID) string { return c.strings[id] }

// Variant returns the variant stored at id; NoVariant yields an invalid Variant.
func (c *Corpus) Variant(id VariantID) Variant {
	if int(id) >= len(c.variants) {
		return Variant{}
	}
	return c.variants[id]
}

// Namespaces returns the namespace nodes: builtin namespaces first, then user
// namespaces ordered by URI.
func (c *Corpus) Namespaces() []NamespaceID { return slices.Clone(c.namespaceOrder) }

// LookupNamespace returns the namespace node for uri.
func (c *Corpus) LookupNamespace(uri string) (NamespaceID, bool) {
	id, ok := c.namespaceByURI[uri]
	return id, ok
}

// NamespaceURI returns the URI of a namespace node.
func (c *Corpus) NamespaceURI(id NamespaceID) string {
	return c.strings[c.Namespace(id).URI]
}

// LookupElement returns the global element declaration named {uri}local.
func (c *Corpus) LookupElement(uri, local string) (ElementID, bool) {
	ns, ok := c.namespaceByURI[uri]
	if !ok {
		return 0, false
	}
	id, ok := c.elementByName[qkey{ns, local}]
	return id, ok
}

// LookupAttribute returns the global attribute declaration named {uri}local.
func (c *Corpus) LookupAttribute(uri, local string) (AttributeID, bool) {
	ns, ok := c.namespaceByURI[uri]
	if !ok {
		return 0, false
	}
	id, ok := c.attrByName[qkey{ns, local}]
	return id, ok
}

// LookupType returns the global type definition named {uri}local.
func (c *Corpus) LookupType(uri, local string) (TypeID, bool) {
	ns, ok := c.namespaceByURI[uri]
	if !ok {
		return 0, false
	}
	id, ok := c.typeByName[qkey{ns, local}]
	return id, ok
}

// Namespace returns the record of a namespace node.
// It panics with a *MisuseError when id names a node of another kind.
func (c *Corpus) Namespace(id NamespaceID) NamespaceRec {
	return c.namespaces[c.slot("Namespace", id.Node(), KindNamespace)]
}

// Element returns the record of an element declaration node.
// It panics with a *MisuseError when id names a node of another kind.
func (c *Corpus) Element(id ElementID) ElementRec {
	return c.elements[c.slot("Element", id.Node(), KindElement)]
}

// Attribute returns the record of an attribute declaration node.
// It panics with a *MisuseError when id names a node of another kind.
func (c *Corpus) Attribute(id AttributeID) AttributeRec {
	return c.attributes[c.slot("Attribute", id.Node(), KindAttribute)]
}

// AttributeUse returns the record of an attribute use node.
// It panics with a *MisuseError when id names a node of another kind.
func (c *Corpus) AttributeUse(id AttributeUseID) AttributeUseRec {
	return c.attributeUses[c.slot("AttributeUse", id.Node(), KindAttributeUse)]
}

// SimpleType returns the record of a simple type node.
// It panics with a *MisuseError when id names a node of another kind.
func (c *Corpus) SimpleType(id TypeID) SimpleTypeRec {
	return c.simpleTypes[c.slot("SimpleType", id.Node(), KindSimpleType)]
}

// ComplexType returns the record of a complex type node.
// It panics with a *MisuseError when id names a node of another kind.
func (c *Corpus) ComplexType(id TypeID) ComplexTypeRec {
	return c.complexTypes[c.slot("ComplexType", id.Node(), KindComplexType)]
}

// Particle returns the record of a particle node.
// It panics with a *MisuseError when id names a node of another kind.
func (c *Corpus) Particle(id ParticleID) ParticleRec {
	return c.particles[c.slot("Particle", id.Node(), KindParticle)]
}

// Group returns the record of a model group node.
// It panics with a *MisuseError when id names a node of another kind.
func (c *Corpus) Group(id GroupID) GroupRec {
	return c.groups[c.slot("Group", id.Node(), KindGroup)]
}

// Wildcard returns the record of a wildcard node.
// It panics with a *MisuseError when id names a node of another kind.
func (c *Corpus) Wildcard(id WildcardID) WildcardRec {
	return c.wildcards[c.slot("Wildcard", id.Node(), KindWildcard)]
}

// IsSimpleType reports whether id names a simple type.
func (c *Corpus) IsSimpleType(id TypeID) bool { return c.Kind(id.Node()) == KindSimpleType }

// ElementName returns the qualified name of an element declaration.
func (c *Corpus) ElementName(id ElementID) QName {
	e := c.Element(id)
	return QName{Namespace: c.NamespaceURI(e.Namespace), Local: c.strings[e.Name]}
}

// AttributeName returns the qualified name of an attribute declaration.
func (c *Corpus) AttributeName(id AttributeID) QName {
	a := c.Attribute(id)
	return QName{Namespace: c.NamespaceURI(a.Namespace), Local: c.strings[a.Name]}
}

// TypeName returns the qualified name of a type; anonymous types have an empty Local.
func (c *Corpus) TypeName(id TypeID) QName {
	var name StringID
	var ns NamespaceID
	if c.IsSimpleType(id) {
		st := c.SimpleType(id)
		name, ns = st.Name, st.Namespace
	} else {
		ct := c.ComplexType(id)
		name, ns = ct.Name, ct.Namespace
	}
	if name == 0 {
		return QName{}
	}
	return QName{Namespace: c.NamespaceURI(ns), Local: c.strings[name]}
}

// SubstitutableElements returns every element that may substitute for head,
// directly or transitively, in breadth-first order. head itself is excluded.
func (c *Corpus) SubstitutableElements(head ElementID) []ElementID {
	var out []ElementID
	seen := map[ElementID]bool{head: true}
	queue := []ElementID{head}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, m := range c.Element(cur).SubstitutionMembers {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
			queue = append(queue, m)
		}
	}
	return out
}

// Diagnostics returns every diagnostic recorded while the corpus was compiled.
func (c *Corpus) Diagnostics() []xsderrors.Diagnostic { return slices.Clone(c.diagnostics) }

// Stats counts the nodes of each kind.
type Stats struct {
	Namespaces    int
	Elements      int
	Attributes    int
	AttributeUses int
	SimpleTypes   int
	ComplexTypes  int
	Particles     int
	Groups        int
	Wildcards     int
	Strings       int
	Variants      int
}

// Stats returns node counts. String and variant counts exclude the reserved zero entries.
func (c *Corpus) Stats() Stats {
	return Stats{
		Namespaces:    len(c.namespaces),
		Elements:      len(c.elements),
		Attributes:    len(c.attributes),
		AttributeUses: len(c.attributeUses),
		SimpleTypes:   len(c.simpleTypes),
		ComplexTypes:  len(c.complexTypes),
		Particles:     len(c.particles),
		Groups:        len(c.groups),
		Wildcards:     len(c.wildcards),
		Strings:       len(c.strings) - 1,
		Variants:      len(c.variants) - 1,
	}
}
