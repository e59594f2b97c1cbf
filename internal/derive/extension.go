package derive

import (
	"github.com/jacoelho/xsdcorpus/internal/graph"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// inheritRepairs carries the repairs of a complex base into an extension of
// it. Bases are checked before their derivations, so the base is final here.
func (d *deriver) inheritRepairs(t corpus.TypeID, ext graph.Extension) {
	rec := d.b.ComplexType(t)
	baseRec := d.b.ComplexType(rec.Base)
	rec.AttributeUses = d.inheritUses(t, baseRec.AttributeUses, ext.OwnUses, rec.AttributeUses)
	if !ext.OwnWildcard {
		rec.AttrWildcard = baseRec.AttrWildcard
	}
	if !d.repaired[rec.Base] {
		return
	}

	switch ext.Content {
	case graph.InheritedWhole:
		rec.Content = baseRec.Content
		rec.Particle = corpus.ParticleID(corpus.Nil)
		if baseRec.Particle != corpus.ParticleID(corpus.Nil) {
			rec.Particle = d.b.CopyParticle(baseRec.Particle, t.Node())
		}
	case graph.InheritedFirst:
		group := corpus.GroupID(d.b.Particle(rec.Particle).Term)
		g := d.b.Group(group)
		if baseRec.Particle == corpus.ParticleID(corpus.Nil) {
			g.Particles = g.Particles[1:]
			if len(g.Particles) == 0 && rec.Content != corpus.ContentMixed {
				rec.Content = corpus.ContentEmpty
				rec.Particle = corpus.ParticleID(corpus.Nil)
			}
		} else {
			g.Particles[0] = d.b.CopyParticle(baseRec.Particle, group.Node())
		}
	default:
		return
	}
	d.repaired[t] = true
}

// inheritUses rebuilds the attribute uses of an extension from the final
// uses of its base followed by its own. Inherited records are reused by
// name; uses the base gained through a repair are copied.
func (d *deriver) inheritUses(t corpus.TypeID, baseUses, own, current []corpus.AttributeUseID) []corpus.AttributeUseID {
	isOwn := make(map[corpus.AttributeUseID]bool, len(own))
	for _, id := range own {
		isOwn[id] = true
	}
	inherited := make(map[useKey]corpus.AttributeUseID, len(current))
	for _, id := range current {
		if isOwn[id] {
			continue
		}
		if k := d.useKey(id); inherited[k] == corpus.AttributeUseID(corpus.Nil) {
			inherited[k] = id
		}
	}

	out := make([]corpus.AttributeUseID, 0, len(baseUses)+len(own))
	for _, baseID := range baseUses {
		bu := d.b.AttributeUse(baseID)
		if id, ok := inherited[d.useKey(baseID)]; ok {
			d.b.AttributeUse(id).Required = bu.Required
			out = append(out, id)
			continue
		}
		copied := d.b.NewAttributeUse()
		r := d.b.AttributeUse(copied)
		*r = *bu
		r.Owner = t
		out = append(out, copied)
	}
	for _, id := range current {
		if isOwn[id] {
			out = append(out, id)
		}
	}
	return out
}
