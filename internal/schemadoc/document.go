// Package schemadoc defines the walker contract: structurally valid schema
// documents with resolved QNames, namespace bindings and source positions.
package schemadoc

import "github.com/jacoelho/xsdcorpus/pkg/corpus"

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
}

// QName is a resolved qualified name. A zero Local means absent.
type QName = corpus.QName

// Scope holds the namespace bindings in effect at a declaration. The empty
// prefix maps the default namespace. Scopes are shared and must not be modified.
type Scope map[string]string

// Lookup resolves prefix; it matches value.Resolver.
func (s Scope) Lookup(prefix string) (string, bool) {
	if prefix == "xml" {
		return "http://www.w3.org/XML/1998/namespace", true
	}
	uri, ok := s[prefix]
	if ok && uri == "" && prefix != "" {
		return "", false
	}
	return uri, ok
}

// Document is one parsed schema document.
type Document struct {
	SystemID        string
	TargetNamespace string

	ElementFormQualified   bool
	AttributeFormQualified bool
	BlockDefault           corpus.DerivationSet
	FinalDefault           corpus.DerivationSet

	Includes []*Include
	Imports  []*Import

	Elements        []*Element
	Attributes      []*Attribute
	SimpleTypes     []*SimpleType
	ComplexTypes    []*ComplexType
	Groups          []*Group
	AttributeGroups []*AttributeGroup
}

// Include is an xs:include directive. Doc is set by the loader.
type Include struct {
	Location string
	Doc      *Document
	Pos      Pos
}

// Import is an xs:import directive. Doc is nil when the location was absent
// or skipped.
type Import struct {
	Namespace string
	Location  string
	Doc       *Document
	Pos       Pos
}

// ValueConstraint is an unparsed default or fixed value.
type ValueConstraint struct {
	Kind    corpus.ValueConstraintKind
	Lexical string
}

// Element is a global or local element declaration, or a reference when Ref is set.
type Element struct {
	Name string
	Ref  QName

	Type        QName
	SimpleType  *SimpleType
	ComplexType *ComplexType

	Constraint        ValueConstraint
	Nillable          bool
	Abstract          bool
	Block             corpus.DerivationSet
	Final             corpus.DerivationSet
	SubstitutionGroup QName
	// Qualified reports the resolved form of a local declaration.
	Qualified bool

	Scope       Scope
	Pos         Pos
	Fingerprint string
}

// AttributeUseKind is the use attribute of a local attribute.
type AttributeUseKind uint8

const (
	UseOptional AttributeUseKind = iota
	UseRequired
	UseProhibited
)

// Attribute is a global or local attribute declaration, or a reference.
type Attribute struct {
	Name string
	Ref  QName

	Type       QName
	SimpleType *SimpleType

	Constraint ValueConstraint
	Use        AttributeUseKind
	Qualified  bool

	Scope       Scope
	Pos         Pos
	Fingerprint string
}

// AttributeGroupRef references a named attribute group.
type AttributeGroupRef struct {
	Ref QName
	Pos Pos
}

// AttributeGroup is a named attribute group definition.
type AttributeGroup struct {
	Name            string
	Attributes      []*Attribute
	AttributeGroups []AttributeGroupRef
	AnyAttribute    *Wildcard

	Pos         Pos
	Fingerprint string
}

// Wildcard is an xs:any or xs:anyAttribute. Namespace is the raw attribute
// value with the ##any default applied.
type Wildcard struct {
	Namespace string
	Process   corpus.ProcessContents
	Pos       Pos
}

// ParticleKind identifies the term of a particle.
type ParticleKind uint8

const (
	ParticleElement ParticleKind = iota
	ParticleModelGroup
	ParticleGroupRef
	ParticleWildcard
)

// Particle is one occurrence-bounded term in a content model.
type Particle struct {
	Kind      ParticleKind
	MinOccurs uint32
	MaxOccurs uint32

	Element  *Element
	Model    *ModelGroup
	GroupRef QName
	Wildcard *Wildcard

	Pos Pos
}

// ModelGroup is an inline sequence, choice or all.
type ModelGroup struct {
	Compositor corpus.Compositor
	Particles  []*Particle
	Pos        Pos
}

// Group is a named model group definition.
type Group struct {
	Name  string
	Model *ModelGroup

	Pos         Pos
	Fingerprint string
}

// Facet is an unparsed constraining facet.
type Facet struct {
	Name    string
	Lexical string
	Fixed   bool
	Pos     Pos
}

// SimpleType is a global or anonymous simple type definition.
type SimpleType struct {
	Name       string
	Derivation corpus.Derivation

	Base     QName
	BaseType *SimpleType

	ItemType QName
	Item     *SimpleType

	MemberTypes []QName
	Members     []*SimpleType

	Facets []Facet
	Final  corpus.DerivationSet

	Scope       Scope
	Pos         Pos
	Fingerprint string
}

// ContentKind is the content child of a complex type.
type ContentKind uint8

const (
	// ContentImplicit is a complex type without simpleContent or complexContent.
	ContentImplicit ContentKind = iota
	ContentSimple
	ContentComplex
)

// ComplexType is a global or anonymous complex type definition.
type ComplexType struct {
	Name     string
	Abstract bool
	Mixed    bool
	Block    corpus.DerivationSet
	Final    corpus.DerivationSet

	Content    ContentKind
	Derivation corpus.Derivation
	Base       QName

	Particle        *Particle
	Attributes      []*Attribute
	AttributeGroups []AttributeGroupRef
	AnyAttribute    *Wildcard

	// SimpleType and Facets describe a simpleContent restriction.
	SimpleType *SimpleType
	Facets     []Facet

	Scope       Scope
	Pos         Pos
	Fingerprint string
}
