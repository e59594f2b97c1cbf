package graph

import (
	"strconv"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
	"github.com/jacoelho/xsdcorpus/internal/wildcard"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// contentParticle builds the content particle of a complex type.
func (g *graph) contentParticle(ctx docCtx, p *schemadoc.Particle, owner corpus.TypeID) corpus.ParticleID {
	if p == nil {
		return corpus.ParticleID(corpus.Nil)
	}
	id, ok := g.particle(ctx, p, owner.Node(), false)
	if !ok {
		return corpus.ParticleID(corpus.Nil)
	}
	return id
}

// particle builds one particle. ok is false when the particle was dropped.
// nested is set for members of a model group, where all groups may not appear.
func (g *graph) particle(ctx docCtx, p *schemadoc.Particle, owner corpus.NodeID, nested bool) (corpus.ParticleID, bool) {
	loc := ctx.loc(p.Pos)
	minOccurs, maxOccurs := p.MinOccurs, p.MaxOccurs

	var term corpus.NodeID
	switch p.Kind {
	case schemadoc.ParticleElement:
		e, ok := g.elementTerm(ctx, p.Element)
		if !ok {
			return 0, false
		}
		term = e.Node()
	case schemadoc.ParticleWildcard:
		term = g.wildcardTerm(ctx, p.Wildcard).Node()
	case schemadoc.ParticleModelGroup:
		if nested && p.Model.Compositor == corpus.CompositorAll {
			g.report(xsderrors.ErrAllLimited, loc, "all group must be the top-level content of a type")
			return 0, false
		}
		term = g.modelGroup(ctx, p.Model).Node()
	case schemadoc.ParticleGroupRef:
		group, ok := g.groupRef(ctx, p.GroupRef, loc, nested)
		if !ok {
			return 0, false
		}
		term = group.Node()
	}

	if g.b.Kind(term) == corpus.KindGroup && g.b.Group(corpus.GroupID(term)).Compositor == corpus.CompositorAll {
		if maxOccurs != 1 {
			g.report(xsderrors.ErrAllLimited, loc, "all group maxOccurs must be 1, got %s", occursString(maxOccurs))
			maxOccurs = 1
			minOccurs = min(minOccurs, 1)
		}
	}
	return g.newParticle(term, minOccurs, maxOccurs, owner, loc), true
}

// modelGroup builds a fresh group node for an inline model group.
func (g *graph) modelGroup(ctx docCtx, m *schemadoc.ModelGroup) corpus.GroupID {
	id := g.b.NewGroup(m.Compositor)
	g.b.Group(id).Location = ctx.loc(m.Pos)
	all := m.Compositor == corpus.CompositorAll

	members := make([]corpus.ParticleID, 0, len(m.Particles))
	for _, mp := range m.Particles {
		if all && mp.Kind != schemadoc.ParticleElement {
			g.report(xsderrors.ErrAllLimited, ctx.loc(mp.Pos), "all group members must be elements")
			continue
		}
		pid, ok := g.particle(ctx, mp, id.Node(), true)
		if !ok {
			continue
		}
		if all {
			if p := g.b.Particle(pid); p.MaxOccurs > 1 {
				g.log.Debug("all group member maxOccurs repaired",
					"system_id", p.Location.SystemID, "line", p.Location.Line, "max_occurs", occursString(p.MaxOccurs))
				g.b.SetParticleOccurs(pid, min(p.MinOccurs, 1), 1)
			}
		}
		members = append(members, pid)
	}
	g.b.Group(id).Particles = members
	return id
}

// groupRef expands a named group into a fresh group node for this use site.
// Circular references are reported and cut.
func (g *graph) groupRef(ctx docCtx, ref schemadoc.QName, loc corpus.Location, nested bool) (corpus.GroupID, bool) {
	q := ctx.ref(ref)
	entry, ok := g.groups[q]
	if !ok {
		g.report(xsderrors.ErrSrcResolve, loc, "group %s not found", qnameString(q))
		return 0, false
	}
	if entry.expanding {
		g.report(xsderrors.ErrGroupCircular, loc, "group %s refers to itself", qnameString(q))
		return 0, false
	}
	if nested && entry.decl.Model.Compositor == corpus.CompositorAll {
		g.report(xsderrors.ErrAllLimited, loc, "all group %s must be the top-level content of a type", qnameString(q))
		return 0, false
	}
	entry.expanding = true
	id := g.modelGroup(entry.ctx, entry.decl.Model)
	entry.expanding = false

	rec := g.b.Group(id)
	rec.DefinitionName = g.b.Intern(q.Local)
	rec.DefinitionNamespace = g.b.Intern(q.Namespace)
	return id, true
}

// wildcardTerm returns the wildcard node of a declaration, built once per
// declaration and effective namespace.
func (g *graph) wildcardTerm(ctx docCtx, w *schemadoc.Wildcard) corpus.WildcardID {
	key := leafKey{decl: w, tns: ctx.tns}
	if id, ok := g.leafWildcards[key]; ok {
		return id
	}
	id := g.newWildcard(wildcard.Parse(w.Namespace, ctx.tns), w.Process, ctx.loc(w.Pos))
	g.leafWildcards[key] = id
	return id
}

func (g *graph) newWildcard(c wildcard.Constraint, process corpus.ProcessContents, loc corpus.Location) corpus.WildcardID {
	id := g.b.NewWildcard()
	rec := g.b.Wildcard(id)
	c.Store(g.b.Intern, rec)
	rec.Process = process
	rec.Location = loc
	return id
}

func occursString(n uint32) string {
	if n == corpus.Unbounded {
		return "unbounded"
	}
	return strconv.FormatUint(uint64(n), 10)
}
