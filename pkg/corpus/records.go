package corpus

// The record types below are the mutable field sets of arena nodes. They are
// reachable for writing only through a Builder; a frozen Corpus exposes them
// through read-only views.

// NamespaceRec holds the fields of a namespace node.
type NamespaceRec struct {
	URI        StringID
	Elements   []ElementID
	Attributes []AttributeID
	Types      []TypeID
}

// ElementRec holds the fields of an element declaration node.
type ElementRec struct {
	Name       StringID
	Namespace  NamespaceID
	Type       TypeID
	Constraint ValueConstraint
	Nillable   bool
	Abstract   bool
	Global     bool
	Block      DerivationSet
	Final      DerivationSet

	SubstitutionHead    ElementID
	SubstitutionMembers []ElementID
	GroupHeadInstances  []ParticleID

	Location Location
}

// AttributeRec holds the fields of an attribute declaration node.
type AttributeRec struct {
	Name       StringID
	Namespace  NamespaceID
	Type       TypeID
	Constraint ValueConstraint
	Global     bool
	Location   Location
}

// AttributeUseRec holds the fields of an attribute use node.
type AttributeUseRec struct {
	Attribute  AttributeID
	Constraint ValueConstraint
	Required   bool
	Owner      TypeID
	Position   int
	Location   Location
}

// Facets holds the constraining facets of a simple type. Integer facets use -1
// for "absent"; variant facets use NoVariant.
type Facets struct {
	Length         int64
	MinLength      int64
	MaxLength      int64
	TotalDigits    int64
	FractionDigits int64
	Patterns       []StringID
	Enumerations   []VariantID
	MinInclusive   VariantID
	MaxInclusive   VariantID
	MinExclusive   VariantID
	MaxExclusive   VariantID
}

// NoFacets returns a facet set with every facet absent.
func NoFacets() Facets {
	return Facets{
		Length:         -1,
		MinLength:      -1,
		MaxLength:      -1,
		TotalDigits:    -1,
		FractionDigits: -1,
	}
}

// Clone returns a copy that shares no slices with f.
func (f Facets) Clone() Facets {
	out := f
	out.Patterns = append([]StringID(nil), f.Patterns...)
	out.Enumerations = append([]VariantID(nil), f.Enumerations...)
	return out
}

// SimpleTypeRec holds the fields of a simple type node.
type SimpleTypeRec struct {
	Name        StringID
	Namespace   NamespaceID
	Builtin     bool
	Variety     Variety
	Derivation  Derivation
	Base        TypeID
	Primitive   TypeID
	ItemType    TypeID
	MemberTypes []TypeID
	WhiteSpace  WhiteSpace
	Facets      Facets
	Integral    IntegralHint
	Final       DerivationSet
	Location    Location
}

// Automaton holds the substance list and head-substance table of a group or
// of a complex type's content particle.
type Automaton struct {
	Substances []Substance
	// Heads is indexed by offset 0..=memberCount; Nil entries mean "may end here".
	Heads    [][]ParticleID
	Backward []int
}

func (a Automaton) clone() Automaton {
	out := Automaton{
		Substances: append([]Substance(nil), a.Substances...),
		Backward:   append([]int(nil), a.Backward...),
	}
	if a.Heads != nil {
		out.Heads = make([][]ParticleID, len(a.Heads))
		for i, h := range a.Heads {
			out.Heads[i] = append([]ParticleID(nil), h...)
		}
	}
	return out
}

// Substance is one leaf particle of a flattened group, with its ordinal inside
// its immediate parent group.
type Substance struct {
	Particle ParticleID
	Ordinal  int
}

// ComplexTypeRec holds the fields of a complex type node.
type ComplexTypeRec struct {
	Name          StringID
	Namespace     NamespaceID
	Builtin       bool
	Base          TypeID
	Derivation    Derivation
	Content       ContentClass
	Particle      ParticleID
	SimpleType    TypeID
	AttributeUses []AttributeUseID
	AttrWildcard  WildcardID
	Abstract      bool
	Block         DerivationSet
	Final         DerivationSet
	Automaton     Automaton
	Location      Location
}

// ParticleRec holds the fields of a particle node.
type ParticleRec struct {
	Term           NodeID
	MinOccurs      uint32
	MaxOccurs      uint32
	Serial         uint32
	SubstantialMax uint32
	Owner          NodeID
	Location       Location
}

// GroupRec holds the fields of a model group node.
type GroupRec struct {
	Compositor Compositor
	Particles  []ParticleID
	// DefinitionName and DefinitionNamespace name the named group this node
	// expands; both are zero for anonymous groups.
	DefinitionName      StringID
	DefinitionNamespace StringID
	Automaton           Automaton
	Fixture             bool
	Location            Location
}

// WildcardRec holds the fields of a wildcard node. Namespaces lists the
// excluded namespaces for WildcardNot and the admitted ones for
// WildcardNamespaces; the empty string stands for "no namespace".
type WildcardRec struct {
	Constraint WildcardConstraint
	Namespaces []StringID
	Process    ProcessContents
	Location   Location
}
