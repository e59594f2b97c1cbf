package graph

import (
	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/builtins"
	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// typeRef resolves a type reference without completing the target. It is
// used where only the identity of the type is needed.
func (g *graph) typeRef(ctx docCtx, q schemadoc.QName, loc corpus.Location, fallback corpus.TypeID) corpus.TypeID {
	q = ctx.ref(q)
	if q.Namespace == builtins.XSDNamespace {
		if id, ok := g.builtins.Types[q.Local]; ok {
			return id
		}
	}
	if t, ok := g.types[q]; ok {
		return t.id
	}
	g.report(xsderrors.ErrSrcResolve, loc, "type %s not found", qnameString(q))
	return fallback
}

// baseRef resolves a type reference whose definition must be complete
// before the caller reads it. ok is false when the reference is circular.
func (g *graph) baseRef(ctx docCtx, q schemadoc.QName, loc corpus.Location, fallback corpus.TypeID) (id corpus.TypeID, ok bool) {
	id = g.typeRef(ctx, q, loc, fallback)
	if t, found := g.types[ctx.ref(q)]; found && t.id == id {
		return id, g.completeType(t)
	}
	return id, true
}

// completeType fills the record of a global type once. It reports false when
// the type is already being completed, that is, when it derives from itself.
func (g *graph) completeType(t *typeEntry) bool {
	switch t.state {
	case stateDone:
		return true
	case stateVisiting:
		return false
	}
	t.state = stateVisiting
	if t.simple != nil {
		g.buildSimpleType(t.ctx, t.id, t.simple)
	} else {
		g.buildComplexType(t.ctx, t.id, t.complex)
	}
	t.state = stateDone
	return true
}

// anonymousSimpleType builds an inline simple type once per declaration and
// effective namespace.
func (g *graph) anonymousSimpleType(ctx docCtx, st *schemadoc.SimpleType) corpus.TypeID {
	key := leafKey{decl: st, tns: ctx.tns}
	if id, ok := g.anonTypes[key]; ok {
		return id
	}
	id := g.b.NewSimpleType()
	g.anonTypes[key] = id
	g.buildSimpleType(ctx, id, st)
	return id
}

// anonymousComplexType allocates an inline complex type and defers its
// definition, so a local type may derive from the global type that contains it.
func (g *graph) anonymousComplexType(ctx docCtx, ct *schemadoc.ComplexType) corpus.TypeID {
	key := leafKey{decl: ct, tns: ctx.tns}
	if id, ok := g.anonTypes[key]; ok {
		return id
	}
	id := g.b.NewComplexType()
	g.anonTypes[key] = id
	g.deferred = append(g.deferred, func() { g.buildComplexType(ctx, id, ct) })
	return id
}

// simpleRef resolves a reference that must name a simple type, completing it
// first. Complex or circular targets fall back to anySimpleType.
func (g *graph) simpleRef(ctx docCtx, q schemadoc.QName, loc corpus.Location) corpus.TypeID {
	id, ok := g.baseRef(ctx, q, loc, g.builtins.AnySimpleType)
	if !ok {
		g.report(xsderrors.ErrSimpleTypeCircular, loc, "simple type %s is circular", qnameString(ctx.ref(q)))
		return g.builtins.AnySimpleType
	}
	if !g.b.IsSimpleType(id) {
		g.report(xsderrors.ErrSimpleTypeBase, loc, "%s is not a simple type", qnameString(ctx.ref(q)))
		return g.builtins.AnySimpleType
	}
	return id
}

func (g *graph) buildSimpleType(ctx docCtx, id corpus.TypeID, st *schemadoc.SimpleType) {
	loc := ctx.loc(st.Pos)
	rec := g.b.SimpleType(id)
	rec.Name = g.b.Intern(st.Name)
	rec.Namespace = g.namespace(ctx.tns)
	rec.Derivation = st.Derivation
	rec.Final = st.Final
	rec.Location = loc

	switch st.Derivation {
	case corpus.DerivationList:
		var item corpus.TypeID
		if st.Item != nil {
			item = g.anonymousSimpleType(ctx, st.Item)
		} else {
			item = g.simpleRef(ctx, st.ItemType, loc)
		}
		rec.Variety = corpus.VarietyList
		rec.Base = g.builtins.AnySimpleType
		rec.ItemType = item
		rec.WhiteSpace = corpus.WhiteSpaceCollapse
		rec.Facets = corpus.NoFacets()
	case corpus.DerivationUnion:
		members := make([]corpus.TypeID, 0, len(st.MemberTypes)+len(st.Members))
		for _, q := range st.MemberTypes {
			members = append(members, g.simpleRef(ctx, q, loc))
		}
		for _, m := range st.Members {
			members = append(members, g.anonymousSimpleType(ctx, m))
		}
		rec.Variety = corpus.VarietyUnion
		rec.Base = g.builtins.AnySimpleType
		rec.MemberTypes = members
		rec.WhiteSpace = corpus.WhiteSpaceCollapse
		rec.Facets = corpus.NoFacets()
	default:
		var base corpus.TypeID
		if st.BaseType != nil {
			base = g.anonymousSimpleType(ctx, st.BaseType)
		} else {
			base = g.simpleRef(ctx, st.Base, loc)
		}
		g.inherit(rec, base)
	}
	g.pendSimpleType(ctx, id, st.Facets, st.Scope)
}

// inherit copies the value space of base into a restriction of it.
func (g *graph) inherit(rec *corpus.SimpleTypeRec, base corpus.TypeID) {
	baseRec := g.b.SimpleType(base)
	rec.Derivation = corpus.DerivationRestriction
	rec.Base = base
	rec.Variety = baseRec.Variety
	rec.Primitive = baseRec.Primitive
	rec.ItemType = baseRec.ItemType
	rec.MemberTypes = append([]corpus.TypeID(nil), baseRec.MemberTypes...)
	rec.WhiteSpace = baseRec.WhiteSpace
	rec.Facets = baseRec.Facets.Clone()
}

func (g *graph) pendSimpleType(ctx docCtx, id corpus.TypeID, facets []schemadoc.Facet, scope schemadoc.Scope) {
	pending := PendingSimpleType{Type: id, Scope: scope}
	for _, f := range facets {
		pending.Facets = append(pending.Facets, PendingFacet{
			Name:     f.Name,
			Lexical:  f.Lexical,
			Fixed:    f.Fixed,
			Location: ctx.loc(f.Pos),
		})
	}
	g.pending.SimpleTypes = append(g.pending.SimpleTypes, pending)
}

func (g *graph) buildComplexType(ctx docCtx, id corpus.TypeID, ct *schemadoc.ComplexType) {
	loc := ctx.loc(ct.Pos)
	rec := g.b.ComplexType(id)
	rec.Name = g.b.Intern(ct.Name)
	rec.Namespace = g.namespace(ctx.tns)
	rec.Abstract = ct.Abstract
	rec.Block = ct.Block
	rec.Final = ct.Final
	rec.Location = loc
	rec.Base = g.builtins.AnyType
	rec.Derivation = corpus.DerivationRestriction

	own := g.ownAttributes(ctx, ct.Attributes, ct.AttributeGroups, ct.AnyAttribute)
	switch ct.Content {
	case schemadoc.ContentSimple:
		g.simpleContent(ctx, id, ct, own)
	case schemadoc.ContentComplex:
		g.complexContent(ctx, id, ct, own)
	default:
		g.setContent(id, g.contentParticle(ctx, ct.Particle, id), ct.Mixed)
		g.commitAttributes(id, g.builtins.AnyType, own, corpus.DerivationRestriction)
	}
	g.pending.ComplexTypes = append(g.pending.ComplexTypes, id)
}

// complexBase resolves the base of a simpleContent or complexContent
// derivation, completing it first.
func (g *graph) complexBase(ctx docCtx, id corpus.TypeID, ct *schemadoc.ComplexType) corpus.TypeID {
	loc := ctx.loc(ct.Pos)
	base, ok := g.baseRef(ctx, ct.Base, loc, g.builtins.AnyType)
	if !ok || base == id {
		g.report(xsderrors.ErrComplexTypeCircular, loc, "complex type %s derives from itself", qnameString(ctx.ref(ct.Base)))
		return g.builtins.AnyType
	}
	return base
}

func (g *graph) simpleContent(ctx docCtx, id corpus.TypeID, ct *schemadoc.ComplexType, own attributeSet) {
	loc := ctx.loc(ct.Pos)
	base := g.complexBase(ctx, id, ct)
	rec := g.b.ComplexType(id)
	rec.Base = base
	rec.Derivation = ct.Derivation
	rec.Content = corpus.ContentSimple

	var baseContent corpus.TypeID
	switch {
	case g.b.IsSimpleType(base) && ct.Derivation == corpus.DerivationExtension:
		baseContent = base
	case g.b.IsComplexType(base) && g.b.ComplexType(base).Content == corpus.ContentSimple:
		baseContent = g.b.ComplexType(base).SimpleType
	default:
		g.report(xsderrors.ErrSimpleContentBase, loc,
			"base %s of simple content has no simple content", qnameString(ctx.ref(ct.Base)))
		rec.Base = g.builtins.AnyType
		rec.Derivation = corpus.DerivationRestriction
		rec.SimpleType = g.builtins.AnySimpleType
		g.commitAttributes(id, g.builtins.AnyType, own, corpus.DerivationRestriction)
		return
	}

	if ct.Derivation == corpus.DerivationExtension {
		rec.SimpleType = baseContent
	} else {
		// restriction: an anonymous simple type carries the facets
		contentBase := baseContent
		if ct.SimpleType != nil {
			contentBase = g.anonymousSimpleType(ctx, ct.SimpleType)
		}
		st := g.b.NewSimpleType()
		strec := g.b.SimpleType(st)
		strec.Namespace = g.namespace(ctx.tns)
		strec.Location = loc
		g.inherit(strec, contentBase)
		g.pendSimpleType(ctx, st, ct.Facets, ct.Scope)
		rec.SimpleType = st
	}
	g.commitAttributes(id, base, own, ct.Derivation)
}

func (g *graph) complexContent(ctx docCtx, id corpus.TypeID, ct *schemadoc.ComplexType, own attributeSet) {
	loc := ctx.loc(ct.Pos)
	base := g.complexBase(ctx, id, ct)
	if g.b.IsSimpleType(base) {
		g.report(xsderrors.ErrComplexContentBase, loc,
			"base %s of complex content is a simple type", qnameString(ctx.ref(ct.Base)))
		base = g.builtins.AnyType
	}
	rec := g.b.ComplexType(id)
	rec.Base = base
	rec.Derivation = ct.Derivation
	derived := g.contentParticle(ctx, ct.Particle, id)

	if ct.Derivation == corpus.DerivationRestriction {
		g.setContent(id, derived, ct.Mixed)
		g.commitAttributes(id, base, own, ct.Derivation)
		return
	}

	baseRec := g.b.ComplexType(base)
	derivedEmpty := g.emptyParticle(derived) && !ct.Mixed
	inherited := InheritedWhole
	switch {
	case derivedEmpty:
		g.copyContent(id, base)
	case baseRec.Content == corpus.ContentSimple:
		g.report(xsderrors.ErrExtensionContent, loc, "cannot extend simple content %s with element content", qnameString(ctx.ref(ct.Base)))
		g.copyContent(id, base)
	case baseRec.Content == corpus.ContentEmpty:
		inherited = InheritedNone
		g.setContent(id, derived, ct.Mixed)
	case (baseRec.Content == corpus.ContentMixed) != ct.Mixed:
		g.report(xsderrors.ErrExtensionContent, loc, "extension of %s must keep its mixed content setting", qnameString(ctx.ref(ct.Base)))
		g.copyContent(id, base)
	case g.isAll(baseRec.Particle) || g.isAll(derived):
		g.report(xsderrors.ErrAllLimited, loc, "all group content of %s cannot be extended", qnameString(ctx.ref(ct.Base)))
		g.copyContent(id, base)
	default:
		inherited = InheritedFirst
		group := g.b.NewGroup(corpus.CompositorSequence)
		g.b.Group(group).Location = loc
		members := []corpus.ParticleID{g.b.CopyParticle(baseRec.Particle, group.Node())}
		if derived != corpus.ParticleID(corpus.Nil) {
			g.b.Particle(derived).Owner = group.Node()
			members = append(members, derived)
		}
		g.b.Group(group).Particles = members
		rec.Content = baseRec.Content
		rec.Particle = g.newParticle(group.Node(), 1, 1, id.Node(), loc)
	}
	g.commitAttributes(id, base, own, ct.Derivation)
	if base != g.builtins.AnyType {
		ext := g.pending.Extensions[id]
		ext.Content = inherited
		g.pending.Extensions[id] = ext
	}
}

// setContent records the content particle, normalizing effectively empty
// content: empty unless mixed, where an empty sequence stands in.
func (g *graph) setContent(id corpus.TypeID, particle corpus.ParticleID, mixed bool) {
	rec := g.b.ComplexType(id)
	if g.emptyParticle(particle) {
		if !mixed {
			rec.Content = corpus.ContentEmpty
			rec.Particle = corpus.ParticleID(corpus.Nil)
			return
		}
		if particle == corpus.ParticleID(corpus.Nil) {
			group := g.b.NewGroup(corpus.CompositorSequence)
			particle = g.newParticle(group.Node(), 1, 1, id.Node(), rec.Location)
		}
	}
	rec.Particle = particle
	rec.Content = corpus.ContentElementOnly
	if mixed {
		rec.Content = corpus.ContentMixed
	}
}

// copyContent gives id the content of base, with its own copy of the particle.
func (g *graph) copyContent(id, base corpus.TypeID) {
	baseRec := g.b.ComplexType(base)
	rec := g.b.ComplexType(id)
	rec.Content = baseRec.Content
	rec.SimpleType = baseRec.SimpleType
	rec.Particle = corpus.ParticleID(corpus.Nil)
	if baseRec.Particle != corpus.ParticleID(corpus.Nil) {
		rec.Particle = g.b.CopyParticle(baseRec.Particle, id.Node())
	}
}

// emptyParticle reports whether a content particle contributes nothing: it
// is absent, never occurs, or is a group without members that cannot
// require anything.
func (g *graph) emptyParticle(id corpus.ParticleID) bool {
	if id == corpus.ParticleID(corpus.Nil) {
		return true
	}
	p := g.b.Particle(id)
	if p.MaxOccurs == 0 {
		return true
	}
	if g.b.Kind(p.Term) != corpus.KindGroup {
		return false
	}
	group := g.b.Group(corpus.GroupID(p.Term))
	if len(group.Particles) > 0 {
		return false
	}
	return group.Compositor != corpus.CompositorChoice || p.MinOccurs == 0
}

func (g *graph) isAll(id corpus.ParticleID) bool {
	if id == corpus.ParticleID(corpus.Nil) {
		return false
	}
	term := g.b.Particle(id).Term
	return g.b.Kind(term) == corpus.KindGroup && g.b.Group(corpus.GroupID(term)).Compositor == corpus.CompositorAll
}
