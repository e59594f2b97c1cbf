package graph

import (
	"cmp"
	"slices"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/builtins"
	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
	"github.com/jacoelho/xsdcorpus/internal/wildcard"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// attrUse is an attribute use before it is materialized for an owning type.
type attrUse struct {
	attr       corpus.AttributeID
	required   bool
	prohibited bool
	constraint schemadoc.ValueConstraint
	scope      schemadoc.Scope
	loc        corpus.Location

	// own marks, in an extension, a use the extension declares itself.
	own bool
}

type attrWildcard struct {
	constraint wildcard.Constraint
	process    corpus.ProcessContents
	loc        corpus.Location
}

// attributeSet is the folded attribute content of a type or attribute group.
type attributeSet struct {
	uses     []attrUse
	wildcard *attrWildcard
}

// ownAttributes folds local attributes, attribute group references and the
// local attribute wildcard. The wildcard is the intersection of the local
// wildcard and those of the referenced groups.
func (g *graph) ownAttributes(ctx docCtx, attrs []*schemadoc.Attribute, groups []schemadoc.AttributeGroupRef, anyAttr *schemadoc.Wildcard) attributeSet {
	var set attributeSet
	for _, a := range attrs {
		if use, ok := g.attributeUse(ctx, a); ok {
			set.uses = append(set.uses, use)
		}
	}
	if anyAttr != nil {
		set.wildcard = &attrWildcard{
			constraint: wildcard.Parse(anyAttr.Namespace, ctx.tns),
			process:    anyAttr.Process,
			loc:        ctx.loc(anyAttr.Pos),
		}
	}
	for _, ref := range groups {
		group := g.attributeGroup(ctx, ref)
		set.uses = append(set.uses, group.uses...)
		if group.wildcard == nil {
			continue
		}
		if set.wildcard == nil {
			wc := *group.wildcard
			set.wildcard = &wc
			continue
		}
		set.wildcard.constraint = wildcard.Intersect(set.wildcard.constraint, group.wildcard.constraint)
	}
	return set
}

// attributeGroup folds a named attribute group once. A group reached again
// while it is being folded is circular; the inner reference contributes nothing.
func (g *graph) attributeGroup(ctx docCtx, ref schemadoc.AttributeGroupRef) attributeSet {
	q := ctx.ref(ref.Ref)
	entry, ok := g.attrGroups[q]
	if !ok {
		g.report(xsderrors.ErrSrcResolve, ctx.loc(ref.Pos), "attribute group %s not found", qnameString(q))
		return attributeSet{}
	}
	switch entry.state {
	case stateDone:
		return entry.set
	case stateVisiting:
		g.report(xsderrors.ErrAttributeGroupCircular, ctx.loc(ref.Pos), "attribute group %s refers to itself", qnameString(q))
		return attributeSet{}
	}
	entry.state = stateVisiting
	d := entry.decl
	entry.set = g.ownAttributes(entry.ctx, d.Attributes, d.AttributeGroups, d.AnyAttribute)
	entry.state = stateDone
	return entry.set
}

// attributeUse resolves one local attribute or attribute reference.
func (g *graph) attributeUse(ctx docCtx, a *schemadoc.Attribute) (attrUse, bool) {
	use := attrUse{
		required:   a.Use == schemadoc.UseRequired,
		prohibited: a.Use == schemadoc.UseProhibited,
		constraint: a.Constraint,
		scope:      a.Scope,
		loc:        ctx.loc(a.Pos),
	}
	if a.Ref.Local != "" {
		q := ctx.ref(a.Ref)
		entry, ok := g.attributes[q]
		if !ok {
			if q.Namespace == builtins.XSINamespace {
				return g.xsiAttributeUse(q.Local, use)
			}
			g.report(xsderrors.ErrSrcResolve, use.loc, "attribute %s not found", qnameString(q))
			return attrUse{}, false
		}
		use.attr = entry.id
		return use, true
	}

	key := leafKey{decl: a, tns: ctx.tns}
	id, ok := g.leafAttributes[key]
	if !ok {
		id = g.b.NewAttribute()
		g.leafAttributes[key] = id
		ns := ""
		if a.Qualified {
			ns = ctx.tns
		}
		g.fillAttribute(ctx, id, a, ns)
	}
	use.attr = id
	return use, true
}

func (g *graph) xsiAttributeUse(local string, use attrUse) (attrUse, bool) {
	for _, id := range g.b.Namespace(g.builtins.XSI).Attributes {
		if g.b.String(g.b.Attribute(id).Name) == local {
			use.attr = id
			return use, true
		}
	}
	g.report(xsderrors.ErrSrcResolve, use.loc, "attribute {%s}%s not found", builtins.XSINamespace, local)
	return attrUse{}, false
}

func (g *graph) completeGlobalAttribute(a *attributeEntry) {
	g.fillAttribute(a.ctx, a.id, a.decl, a.ctx.tns)
	rec := g.b.Attribute(a.id)
	rec.Global = true
	g.pendValue(a.id.Node(), a.decl.Constraint, a.decl.Scope, rec.Location)
}

// fillAttribute sets the declaration fields. Value constraints of local
// declarations belong to their use and are not recorded here.
func (g *graph) fillAttribute(ctx docCtx, id corpus.AttributeID, a *schemadoc.Attribute, ns string) {
	loc := ctx.loc(a.Pos)
	rec := g.b.Attribute(id)
	rec.Name = g.b.Intern(a.Name)
	rec.Namespace = g.namespace(ns)
	rec.Location = loc

	t := g.builtins.AnySimpleType
	switch {
	case a.SimpleType != nil:
		t = g.anonymousSimpleType(ctx, a.SimpleType)
	case a.Type.Local != "":
		t = g.typeRef(ctx, a.Type, loc, g.builtins.AnySimpleType)
		if !g.b.IsSimpleType(t) {
			g.report(xsderrors.ErrSrcResolve, loc, "attribute type %s is not a simple type", qnameString(ctx.ref(a.Type)))
			t = g.builtins.AnySimpleType
		}
	}
	g.b.Attribute(id).Type = t
}

// baseAttributes returns the folded uses and wildcard of a base type. Simple
// types have neither.
func (g *graph) baseAttributes(base corpus.TypeID) ([]attrUse, corpus.WildcardID) {
	if !g.b.IsComplexType(base) {
		return nil, corpus.WildcardID(corpus.Nil)
	}
	rec := g.b.ComplexType(base)
	uses := make([]attrUse, 0, len(rec.AttributeUses))
	for _, id := range rec.AttributeUses {
		if src, ok := g.useSource[id]; ok {
			uses = append(uses, src)
			continue
		}
		u := g.b.AttributeUse(id)
		uses = append(uses, attrUse{attr: u.Attribute, required: u.Required, loc: u.Location})
	}
	return uses, rec.AttrWildcard
}

type attrKey struct {
	ns    corpus.StringID
	local corpus.StringID
}

func (g *graph) attrKey(id corpus.AttributeID) attrKey {
	rec := g.b.Attribute(id)
	return attrKey{ns: g.b.Namespace(rec.Namespace).URI, local: rec.Name}
}

// commitAttributes materializes the attribute uses and wildcard of a complex
// type. A restriction inherits every base use it does not mention; an
// extension appends its own uses to the base uses. Prohibited uses only mask
// inherited ones. Duplicates are kept for the derivation checks.
func (g *graph) commitAttributes(id, base corpus.TypeID, own attributeSet, derivation corpus.Derivation) {
	baseUses, baseWildcard := g.baseAttributes(base)

	var uses []attrUse
	switch derivation {
	case corpus.DerivationExtension:
		for _, u := range baseUses {
			u.own = false
			uses = append(uses, u)
		}
		for _, u := range own.uses {
			if !u.prohibited {
				u.own = true
				uses = append(uses, u)
			}
		}
	default:
		mentioned := make(map[attrKey]bool, len(own.uses))
		for _, u := range own.uses {
			mentioned[g.attrKey(u.attr)] = true
			if !u.prohibited {
				uses = append(uses, u)
			}
		}
		for _, u := range baseUses {
			if !mentioned[g.attrKey(u.attr)] {
				uses = append(uses, u)
			}
		}
	}

	slices.SortStableFunc(uses, func(a, b attrUse) int {
		ka, kb := g.attrKey(a.attr), g.attrKey(b.attr)
		if c := cmp.Compare(g.b.String(ka.local), g.b.String(kb.local)); c != 0 {
			return c
		}
		return cmp.Compare(g.b.String(ka.ns), g.b.String(kb.ns))
	})

	ids := make([]corpus.AttributeUseID, len(uses))
	for i, u := range uses {
		useID := g.b.NewAttributeUse()
		rec := g.b.AttributeUse(useID)
		rec.Attribute = u.attr
		rec.Required = u.required
		rec.Owner = id
		rec.Position = i
		rec.Location = u.loc
		g.useSource[useID] = u
		g.pendValue(useID.Node(), u.constraint, u.scope, u.loc)
		ids[i] = useID
	}
	if derivation == corpus.DerivationExtension && base != g.builtins.AnyType && g.b.IsComplexType(base) {
		ext := g.pending.Extensions[id]
		ext.OwnUses = ext.OwnUses[:0]
		for i, u := range uses {
			if u.own {
				ext.OwnUses = append(ext.OwnUses, ids[i])
			}
		}
		ext.OwnWildcard = own.wildcard != nil
		g.pending.Extensions[id] = ext
	}

	rec := g.b.ComplexType(id)
	rec.AttributeUses = ids
	rec.AttrWildcard = corpus.WildcardID(corpus.Nil)
	if own.wildcard != nil {
		c := own.wildcard.constraint
		if derivation == corpus.DerivationExtension && baseWildcard != corpus.WildcardID(corpus.Nil) {
			c = wildcard.Union(c, wildcard.FromRecord(g.b, *g.b.Wildcard(baseWildcard)))
		}
		rec.AttrWildcard = g.newWildcard(c, own.wildcard.process, own.wildcard.loc)
	} else if derivation == corpus.DerivationExtension {
		rec.AttrWildcard = baseWildcard
	}
}
