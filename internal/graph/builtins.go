package graph

import (
	"github.com/jacoelho/xsdcorpus/internal/builtins"
	"github.com/jacoelho/xsdcorpus/internal/num"
	"github.com/jacoelho/xsdcorpus/internal/wildcard"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// addBuiltins materializes the XML Schema and schema instance namespaces.
func (g *graph) addBuiltins() {
	b := g.b
	xsd := b.NewNamespace(builtins.XSDNamespace, true)
	xsi := b.NewNamespace(builtins.XSINamespace, true)
	g.namespaces[builtins.XSDNamespace] = xsd
	g.namespaces[builtins.XSINamespace] = xsi
	g.builtins = Builtins{XSD: xsd, XSI: xsi, Types: make(map[string]corpus.TypeID)}

	for _, bt := range builtins.List() {
		var id corpus.TypeID
		if bt.Complex {
			id = g.addAnyType(xsd)
			g.builtins.AnyType = id
		} else {
			id = g.addBuiltinSimple(xsd, bt)
		}
		g.builtins.Types[bt.Name] = id
		b.Namespace(xsd).Types = append(b.Namespace(xsd).Types, id)
	}
	g.builtins.AnySimpleType = g.builtins.Types[builtins.TypeNameAnySimpleType]

	for _, xa := range builtins.XSIAttributes {
		id := b.NewAttribute()
		rec := b.Attribute(id)
		rec.Name = b.Intern(xa.Name)
		rec.Namespace = xsi
		rec.Global = true
		rec.Type = g.builtins.Types[xa.Type]
		if xa.List {
			rec.Type = g.anonymousList(xsi, rec.Type)
		}
		b.Namespace(xsi).Attributes = append(b.Namespace(xsi).Attributes, id)
	}
}

// addAnyType builds the ur-type: mixed content admitting any element laxly
// and any attribute laxly.
func (g *graph) addAnyType(xsd corpus.NamespaceID) corpus.TypeID {
	b := g.b
	id := b.NewComplexType()

	wc := b.NewWildcard()
	b.Wildcard(wc).Process = corpus.ProcessLax
	wildcard.Any().Store(b.Intern, b.Wildcard(wc))

	group := b.NewGroup(corpus.CompositorSequence)
	b.Group(group).Particles = []corpus.ParticleID{
		g.newParticle(wc.Node(), 0, corpus.Unbounded, group.Node(), corpus.Location{}),
	}

	attrWC := b.NewWildcard()
	b.Wildcard(attrWC).Process = corpus.ProcessLax
	wildcard.Any().Store(b.Intern, b.Wildcard(attrWC))

	rec := b.ComplexType(id)
	rec.Name = b.Intern(builtins.TypeNameAnyType)
	rec.Namespace = xsd
	rec.Builtin = true
	rec.Content = corpus.ContentMixed
	rec.Particle = g.newParticle(group.Node(), 1, 1, id.Node(), corpus.Location{})
	rec.AttrWildcard = attrWC
	return id
}

func (g *graph) addBuiltinSimple(xsd corpus.NamespaceID, bt builtins.Type) corpus.TypeID {
	b := g.b
	id := b.NewSimpleType()
	rec := b.SimpleType(id)
	rec.Name = b.Intern(bt.Name)
	rec.Namespace = xsd
	rec.Builtin = true
	rec.Variety = bt.Variety
	rec.WhiteSpace = bt.WhiteSpace
	rec.Base = g.builtins.Types[bt.Base]

	switch {
	case bt.Name == builtins.TypeNameAnySimpleType:
		rec.Derivation = corpus.DerivationRestriction
	case bt.Variety == corpus.VarietyList:
		rec.Derivation = corpus.DerivationList
		rec.ItemType = g.builtins.Types[bt.ItemType]
	default:
		rec.Derivation = corpus.DerivationRestriction
		if bt.Primitive == bt.Name {
			rec.Primitive = id
		} else {
			rec.Primitive = g.builtins.Types[bt.Primitive]
		}
	}

	f := corpus.NoFacets()
	f.MinLength = bt.MinLength
	f.FractionDigits = bt.FractionDigits
	if base, ok := g.builtins.Types[bt.Base]; ok && b.IsSimpleType(base) {
		f.Patterns = append(f.Patterns, b.SimpleType(base).Facets.Patterns...)
	}
	for _, p := range bt.Patterns {
		f.Patterns = append(f.Patterns, b.Intern(p))
	}
	if r, ok := num.BuiltinRanges[bt.Name]; ok {
		if r.Min != nil {
			f.MinInclusive = b.AddVariant(corpus.IntegerVariant(r.Min))
		}
		if r.Max != nil {
			f.MaxInclusive = b.AddVariant(corpus.IntegerVariant(r.Max))
		}
	}
	rec.Facets = f
	return id
}

// anonymousList returns a fresh list type over item.
func (g *graph) anonymousList(ns corpus.NamespaceID, item corpus.TypeID) corpus.TypeID {
	id := g.b.NewSimpleType()
	rec := g.b.SimpleType(id)
	rec.Namespace = ns
	rec.Variety = corpus.VarietyList
	rec.Derivation = corpus.DerivationList
	rec.Base = g.builtins.AnySimpleType
	rec.ItemType = item
	rec.WhiteSpace = corpus.WhiteSpaceCollapse
	return id
}
