package graph

import (
	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// elementTerm returns the element node a particle refers to: the global
// declaration for a reference, or the local declaration built once per
// declaration and effective namespace.
func (g *graph) elementTerm(ctx docCtx, decl *schemadoc.Element) (corpus.ElementID, bool) {
	if decl.Ref.Local != "" {
		q := ctx.ref(decl.Ref)
		entry, ok := g.elements[q]
		if !ok {
			g.report(xsderrors.ErrSrcResolve, ctx.loc(decl.Pos), "element %s not found", qnameString(q))
			return 0, false
		}
		return entry.id, true
	}
	key := leafKey{decl: decl, tns: ctx.tns}
	if id, ok := g.leafElements[key]; ok {
		return id, true
	}
	id := g.b.NewElement()
	g.leafElements[key] = id

	ns := ""
	if decl.Qualified {
		ns = ctx.tns
	}
	g.fillElement(ctx, id, decl, ns)
	if g.b.Element(id).Type == corpus.TypeID(corpus.Nil) {
		g.b.SetElementType(id, g.builtins.AnyType)
	}
	return id, true
}

func (g *graph) completeGlobalElement(e *elementEntry) {
	g.fillElement(e.ctx, e.id, e.decl, e.ctx.tns)
	rec := g.b.Element(e.id)
	rec.Global = true
	rec.Abstract = e.decl.Abstract
	rec.Final = e.decl.Final

	if sg := e.decl.SubstitutionGroup; sg.Local != "" {
		q := e.ctx.ref(sg)
		head, ok := g.elements[q]
		if ok {
			rec.SubstitutionHead = head.id
		} else {
			g.report(xsderrors.ErrSrcResolve, rec.Location, "substitution group head %s not found", qnameString(q))
		}
	}
	if rec.Type == corpus.TypeID(corpus.Nil) {
		if rec.SubstitutionHead != corpus.ElementID(corpus.Nil) {
			g.headTyped = append(g.headTyped, e.id)
		} else {
			rec.Type = g.builtins.AnyType
		}
	}
}

// fillElement sets the fields shared by global and local declarations. The
// type stays Nil when the declaration names none.
func (g *graph) fillElement(ctx docCtx, id corpus.ElementID, decl *schemadoc.Element, ns string) {
	loc := ctx.loc(decl.Pos)
	rec := g.b.Element(id)
	rec.Name = g.b.Intern(decl.Name)
	rec.Namespace = g.namespace(ns)
	rec.Nillable = decl.Nillable
	rec.Block = decl.Block
	rec.Location = loc

	var t corpus.TypeID
	switch {
	case decl.SimpleType != nil:
		t = g.anonymousSimpleType(ctx, decl.SimpleType)
	case decl.ComplexType != nil:
		t = g.anonymousComplexType(ctx, decl.ComplexType)
	case decl.Type.Local != "":
		t = g.typeRef(ctx, decl.Type, loc, g.builtins.AnyType)
	}
	g.b.Element(id).Type = t
	g.pendValue(id.Node(), decl.Constraint, decl.Scope, loc)
}

func (g *graph) pendValue(node corpus.NodeID, vc schemadoc.ValueConstraint, scope schemadoc.Scope, loc corpus.Location) {
	if vc.Kind == corpus.ConstraintNone {
		return
	}
	g.pending.Values = append(g.pending.Values, PendingValue{
		Node:       node,
		Constraint: vc,
		Scope:      scope,
		Location:   loc,
	})
}

// resolveHeadTypes gives untyped substitution members the type of their
// head, following the affiliation chain. Circular chains end at anyType.
func (g *graph) resolveHeadTypes() {
	for _, id := range g.headTyped {
		seen := map[corpus.ElementID]bool{id: true}
		t := g.builtins.AnyType
		for head := g.b.Element(id).SubstitutionHead; head != corpus.ElementID(corpus.Nil) && !seen[head]; head = g.b.Element(head).SubstitutionHead {
			seen[head] = true
			if ht := g.b.Element(head).Type; ht != corpus.TypeID(corpus.Nil) {
				t = ht
				break
			}
		}
		g.b.SetElementType(id, t)
	}
}
