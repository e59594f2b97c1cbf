package corpus

import (
	xsderrors "github.com/jacoelho/xsdcorpus/errors"
)

type nodeRef struct {
	kind Kind
	slot uint32
}

// Builder is the mutable arena used while a corpus is being compiled. Nodes are
// only ever appended; Freeze turns the builder into an immutable Corpus and
// every later write panics with a *MisuseError.
type Builder struct {
	nodes []nodeRef

	namespaces    []*NamespaceRec
	elements      []*ElementRec
	attributes    []*AttributeRec
	attributeUses []*AttributeUseRec
	simpleTypes   []*SimpleTypeRec
	complexTypes  []*ComplexTypeRec
	particles     []*ParticleRec
	groups        []*GroupRec
	wildcards     []*WildcardRec

	builtinNamespaces map[NamespaceID]bool

	strings     []string
	stringIndex map[string]StringID
	variants    []Variant

	diagnostics []xsderrors.Diagnostic
	frozen      bool
}

// NewBuilder returns an empty builder. Node 0, string 0 ("") and variant 0
// are reserved.
func NewBuilder() *Builder {
	return &Builder{
		nodes:             []nodeRef{{kind: KindInvalid}},
		strings:           []string{""},
		stringIndex:       map[string]StringID{"": 0},
		variants:          []Variant{{}},
		builtinNamespaces: make(map[NamespaceID]bool),
	}
}

func (b *Builder) mutable(op string) {
	if b.frozen {
		panic(&MisuseError{Op: op, Frozen: true})
	}
}

// Len returns the number of node slots, including the reserved Nil slot.
func (b *Builder) Len() int { return len(b.nodes) }

// Kind returns the kind of id, or KindInvalid when id is out of range.
func (b *Builder) Kind(id NodeID) Kind {
	if int(id) >= len(b.nodes) {
		return KindInvalid
	}
	return b.nodes[id].kind
}

// Allocate appends a zero-valued node of the given kind.
func (b *Builder) Allocate(kind Kind) NodeID {
	b.mutable("Allocate")
	id := NodeID(len(b.nodes))
	var slot int
	switch kind {
	case KindNamespace:
		slot = len(b.namespaces)
		b.namespaces = append(b.namespaces, &NamespaceRec{})
	case KindElement:
		slot = len(b.elements)
		b.elements = append(b.elements, &ElementRec{})
	case KindAttribute:
		slot = len(b.attributes)
		b.attributes = append(b.attributes, &AttributeRec{})
	case KindAttributeUse:
		slot = len(b.attributeUses)
		b.attributeUses = append(b.attributeUses, &AttributeUseRec{})
	case KindSimpleType:
		slot = len(b.simpleTypes)
		b.simpleTypes = append(b.simpleTypes, &SimpleTypeRec{Facets: NoFacets()})
	case KindComplexType:
		slot = len(b.complexTypes)
		b.complexTypes = append(b.complexTypes, &ComplexTypeRec{})
	case KindParticle:
		slot = len(b.particles)
		b.particles = append(b.particles, &ParticleRec{MinOccurs: 1, MaxOccurs: 1})
	case KindGroup:
		slot = len(b.groups)
		b.groups = append(b.groups, &GroupRec{})
	case KindWildcard:
		slot = len(b.wildcards)
		b.wildcards = append(b.wildcards, &WildcardRec{Process: ProcessStrict})
	default:
		panic(&MisuseError{Op: "Allocate", Want: KindInvalid, Got: kind})
	}
	b.nodes = append(b.nodes, nodeRef{kind: kind, slot: uint32(slot)})
	return id
}

// NewNamespace allocates a namespace node for uri. builtin namespaces are
// listed before user namespaces by the frozen corpus.
func (b *Builder) NewNamespace(uri string, builtin bool) NamespaceID {
	id := NamespaceID(b.Allocate(KindNamespace))
	b.Namespace(id).URI = b.Intern(uri)
	if builtin {
		b.builtinNamespaces[id] = true
	}
	return id
}

func (b *Builder) NewElement() ElementID           { return ElementID(b.Allocate(KindElement)) }
func (b *Builder) NewAttribute() AttributeID       { return AttributeID(b.Allocate(KindAttribute)) }
func (b *Builder) NewAttributeUse() AttributeUseID { return AttributeUseID(b.Allocate(KindAttributeUse)) }
func (b *Builder) NewSimpleType() TypeID           { return TypeID(b.Allocate(KindSimpleType)) }
func (b *Builder) NewComplexType() TypeID          { return TypeID(b.Allocate(KindComplexType)) }
func (b *Builder) NewWildcard() WildcardID         { return WildcardID(b.Allocate(KindWildcard)) }

// NewGroup allocates a model group with the given compositor.
func (b *Builder) NewGroup(c Compositor) GroupID {
	id := GroupID(b.Allocate(KindGroup))
	b.Group(id).Compositor = c
	return id
}

// NewParticle allocates a particle over term.
func (b *Builder) NewParticle(term NodeID, minOccurs, maxOccurs uint32) ParticleID {
	id := ParticleID(b.Allocate(KindParticle))
	p := b.Particle(id)
	p.Term = term
	p.MinOccurs = minOccurs
	p.MaxOccurs = maxOccurs
	p.Serial = uint32(len(b.particles))
	return id
}

// CopyParticle deep-copies a particle tree for a new owner. Element and
// wildcard terms are shared; groups are copied with their definition names.
func (b *Builder) CopyParticle(id ParticleID, owner NodeID) ParticleID {
	src := *b.Particle(id)
	term := src.Term
	if b.Kind(term) == KindGroup {
		from := b.Group(GroupID(term))
		group := b.NewGroup(from.Compositor)
		rec := b.Group(group)
		rec.DefinitionName = from.DefinitionName
		rec.DefinitionNamespace = from.DefinitionNamespace
		rec.Location = from.Location
		members := make([]ParticleID, len(from.Particles))
		for i, m := range from.Particles {
			members[i] = b.CopyParticle(m, group.Node())
		}
		b.Group(group).Particles = members
		term = group.Node()
	}
	copied := b.NewParticle(term, src.MinOccurs, src.MaxOccurs)
	p := b.Particle(copied)
	p.Owner = owner
	p.Location = src.Location
	return copied
}

func (b *Builder) slot(op string, id NodeID, want Kind) uint32 {
	b.mutable(op)
	if got := b.Kind(id); got != want {
		panicKind(op, id, want, got)
	}
	return b.nodes[id].slot
}

// Namespace returns the writable record of a namespace node.
func (b *Builder) Namespace(id NamespaceID) *NamespaceRec {
	return b.namespaces[b.slot("Namespace", id.Node(), KindNamespace)]
}

// Element returns the writable record of an element node.
func (b *Builder) Element(id ElementID) *ElementRec {
	return b.elements[b.slot("Element", id.Node(), KindElement)]
}

// Attribute returns the writable record of an attribute node.
func (b *Builder) Attribute(id AttributeID) *AttributeRec {
	return b.attributes[b.slot("Attribute", id.Node(), KindAttribute)]
}

// AttributeUse returns the writable record of an attribute use node.
func (b *Builder) AttributeUse(id AttributeUseID) *AttributeUseRec {
	return b.attributeUses[b.slot("AttributeUse", id.Node(), KindAttributeUse)]
}

// SimpleType returns the writable record of a simple type node.
func (b *Builder) SimpleType(id TypeID) *SimpleTypeRec {
	return b.simpleTypes[b.slot("SimpleType", id.Node(), KindSimpleType)]
}

// ComplexType returns the writable record of a complex type node.
func (b *Builder) ComplexType(id TypeID) *ComplexTypeRec {
	return b.complexTypes[b.slot("ComplexType", id.Node(), KindComplexType)]
}

// Particle returns the writable record of a particle node.
func (b *Builder) Particle(id ParticleID) *ParticleRec {
	return b.particles[b.slot("Particle", id.Node(), KindParticle)]
}

// Group returns the writable record of a group node.
func (b *Builder) Group(id GroupID) *GroupRec {
	return b.groups[b.slot("Group", id.Node(), KindGroup)]
}

// Wildcard returns the writable record of a wildcard node.
func (b *Builder) Wildcard(id WildcardID) *WildcardRec {
	return b.wildcards[b.slot("Wildcard", id.Node(), KindWildcard)]
}

// IsSimpleType reports whether id names a simple type.
func (b *Builder) IsSimpleType(id TypeID) bool { return b.Kind(id.Node()) == KindSimpleType }

// IsComplexType reports whether id names a complex type.
func (b *Builder) IsComplexType(id TypeID) bool { return b.Kind(id.Node()) == KindComplexType }

// SetElementType sets the type of an element declaration.
func (b *Builder) SetElementType(id ElementID, t TypeID) { b.Element(id).Type = t }

// SetParticleOccurs sets the occurrence bounds of a particle.
func (b *Builder) SetParticleOccurs(id ParticleID, minOccurs, maxOccurs uint32) {
	p := b.Particle(id)
	p.MinOccurs = minOccurs
	p.MaxOccurs = maxOccurs
}

// Intern returns the ID of s, adding it to the string table on first use.
func (b *Builder) Intern(s string) StringID {
	if id, ok := b.stringIndex[s]; ok {
		return id
	}
	b.mutable("Intern")
	id := StringID(len(b.strings))
	b.strings = append(b.strings, s)
	b.stringIndex[s] = id
	return id
}

// String returns the interned string for id.
func (b *Builder) String(id StringID) string { return b.strings[id] }

// AddVariant appends v to the variant table.
func (b *Builder) AddVariant(v Variant) VariantID {
	b.mutable("AddVariant")
	id := VariantID(len(b.variants))
	b.variants = append(b.variants, v)
	return id
}

// Variant returns the variant stored at id.
func (b *Builder) Variant(id VariantID) Variant {
	if int(id) >= len(b.variants) {
		return Variant{}
	}
	return b.variants[id]
}

// Report appends a diagnostic that the frozen corpus will carry.
func (b *Builder) Report(d xsderrors.Diagnostic) {
	b.mutable("Report")
	b.diagnostics = append(b.diagnostics, d)
}

// Frozen reports whether Freeze has been called.
func (b *Builder) Frozen() bool { return b.frozen }

// Freeze checks the node invariants and returns the immutable corpus. The
// builder cannot be written afterwards, whatever the outcome.
func (b *Builder) Freeze() (*Corpus, error) {
	b.mutable("Freeze")
	b.frozen = true
	if err := b.checkInvariants(); err != nil {
		return nil, err
	}
	return newCorpus(b), nil
}
