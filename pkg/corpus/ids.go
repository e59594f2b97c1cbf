package corpus

import "math"

// NodeID indexes a node in the arena. Nil is reserved and never names a real node.
type NodeID uint32

// Nil marks an absent node reference.
const Nil NodeID = 0

// StringID indexes the interned string table. The zero ID is the empty string.
type StringID uint32

// VariantID indexes the variant table.
type VariantID uint32

// NoVariant marks an absent variant reference.
const NoVariant VariantID = 0

// Unbounded is the maxOccurs value of an unbounded particle.
const Unbounded = math.MaxUint32

// Kind identifies the node kind stored at an index.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNamespace
	KindElement
	KindAttribute
	KindAttributeUse
	KindSimpleType
	KindComplexType
	KindParticle
	KindGroup
	KindWildcard
)

// String returns a stable label for the kind.
func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindElement:
		return "element"
	case KindAttribute:
		return "attribute"
	case KindAttributeUse:
		return "attribute-use"
	case KindSimpleType:
		return "simple-type"
	case KindComplexType:
		return "complex-type"
	case KindParticle:
		return "particle"
	case KindGroup:
		return "group"
	case KindWildcard:
		return "wildcard"
	default:
		return "invalid"
	}
}

// NamespaceID is a node index known to name a namespace.
type NamespaceID NodeID

// ElementID is a node index known to name an element declaration.
type ElementID NodeID

// AttributeID is a node index known to name an attribute declaration.
type AttributeID NodeID

// AttributeUseID is a node index known to name an attribute use.
type AttributeUseID NodeID

// TypeID is a node index naming a simple or complex type.
type TypeID NodeID

// ParticleID is a node index known to name a particle.
type ParticleID NodeID

// GroupID is a node index known to name a model group.
type GroupID NodeID

// WildcardID is a node index known to name a wildcard.
type WildcardID NodeID

func (id NamespaceID) Node() NodeID    { return NodeID(id) }
func (id ElementID) Node() NodeID      { return NodeID(id) }
func (id AttributeID) Node() NodeID    { return NodeID(id) }
func (id AttributeUseID) Node() NodeID { return NodeID(id) }
func (id TypeID) Node() NodeID         { return NodeID(id) }
func (id ParticleID) Node() NodeID     { return NodeID(id) }
func (id GroupID) Node() NodeID        { return NodeID(id) }
func (id WildcardID) Node() NodeID     { return NodeID(id) }

// Variety is the variety of a simple type.
type Variety uint8

const (
	VarietyAbsent Variety = iota
	VarietyAtomic
	VarietyList
	VarietyUnion
)

// WhiteSpace is the whiteSpace facet value.
type WhiteSpace uint8

const (
	WhiteSpacePreserve WhiteSpace = iota
	WhiteSpaceReplace
	WhiteSpaceCollapse
)

// ContentClass classifies complex type content.
type ContentClass uint8

const (
	ContentEmpty ContentClass = iota
	ContentSimple
	ContentElementOnly
	ContentMixed
)

// String returns a stable label for the content class.
func (c ContentClass) String() string {
	switch c {
	case ContentEmpty:
		return "empty"
	case ContentSimple:
		return "simple"
	case ContentElementOnly:
		return "element-only"
	case ContentMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// Derivation is the derivation method of a type from its base.
type Derivation uint8

const (
	DerivationNone Derivation = iota
	DerivationRestriction
	DerivationExtension
	DerivationList
	DerivationUnion
)

// String returns the XSD keyword of the derivation.
func (d Derivation) String() string {
	switch d {
	case DerivationRestriction:
		return "restriction"
	case DerivationExtension:
		return "extension"
	case DerivationList:
		return "list"
	case DerivationUnion:
		return "union"
	default:
		return "none"
	}
}

// DerivationSet is a bit set of blocked or final derivation methods.
type DerivationSet uint8

const (
	BlockExtension DerivationSet = 1 << iota
	BlockRestriction
	BlockSubstitution
	BlockList
	BlockUnion
)

// Has reports whether every bit in m is set.
func (s DerivationSet) Has(m DerivationSet) bool { return s&m == m }

// Compositor is the compositor of a model group.
type Compositor uint8

const (
	CompositorSequence Compositor = iota
	CompositorChoice
	CompositorAll
)

// String returns the XSD keyword of the compositor.
func (c Compositor) String() string {
	switch c {
	case CompositorSequence:
		return "sequence"
	case CompositorChoice:
		return "choice"
	case CompositorAll:
		return "all"
	default:
		return "unknown"
	}
}

// WildcardConstraint is the namespace constraint kind of a wildcard.
type WildcardConstraint uint8

const (
	WildcardAny WildcardConstraint = iota
	WildcardNot
	WildcardNamespaces
)

// ProcessContents is the processContents mode of a wildcard, ordered skip < lax < strict.
type ProcessContents uint8

const (
	ProcessSkip ProcessContents = iota
	ProcessLax
	ProcessStrict
)

// String returns the XSD keyword of the mode.
func (p ProcessContents) String() string {
	switch p {
	case ProcessSkip:
		return "skip"
	case ProcessLax:
		return "lax"
	default:
		return "strict"
	}
}

// ValueConstraintKind tells whether a value constraint is a default or a fixed value.
type ValueConstraintKind uint8

const (
	ConstraintNone ValueConstraintKind = iota
	ConstraintDefault
	ConstraintFixed
)

// ValueConstraint is a default or fixed value attached to a declaration or attribute use.
type ValueConstraint struct {
	Kind  ValueConstraintKind
	Value VariantID
}

// IsZero reports whether no constraint is present.
func (v ValueConstraint) IsZero() bool { return v.Kind == ConstraintNone }

// IntegralKind is the codec hint computed for integral simple types.
type IntegralKind uint8

const (
	// IntegralNone marks a type that is not derived from xsd:integer.
	IntegralNone IntegralKind = iota
	IntegralUnconstrained
	IntegralNonNegative
	IntegralBounded
)

// String returns a stable label for the hint.
func (k IntegralKind) String() string {
	switch k {
	case IntegralUnconstrained:
		return "unconstrained"
	case IntegralNonNegative:
		return "non-negative"
	case IntegralBounded:
		return "bounded"
	default:
		return "none"
	}
}

// IntegralHint describes how an integral value of a type can be encoded.
// Width and Min are meaningful only for IntegralBounded.
type IntegralHint struct {
	Kind  IntegralKind
	Width uint8
	Min   VariantID
}

// Location identifies a source position of a declaration.
type Location struct {
	SystemID string
	Line     int
	Column   int
}
