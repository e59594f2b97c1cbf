package derive

import (
	"fmt"
	"slices"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/wildcard"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// view is a particle seen through the normalizations of the restriction
// rules: pointless groups unwrapped, nested groups of the same compositor
// flattened. id is Nil for synthesized particles.
type view struct {
	id       corpus.ParticleID
	term     corpus.NodeID
	min, max uint32
}

func (d *deriver) view(id corpus.ParticleID) view {
	p := d.b.Particle(id)
	v := view{id: id, term: p.Term, min: p.MinOccurs, max: p.MaxOccurs}
	// a group that occurs once with a single member is that member
	for v.min == 1 && v.max == 1 && d.b.Kind(v.term) == corpus.KindGroup {
		g := d.b.Group(corpus.GroupID(v.term))
		if len(g.Particles) != 1 {
			break
		}
		v = d.view(g.Particles[0])
	}
	return v
}

func (d *deriver) isGroup(v view) bool { return d.b.Kind(v.term) == corpus.KindGroup }

func (d *deriver) compositor(v view) corpus.Compositor {
	return d.b.Group(corpus.GroupID(v.term)).Compositor
}

// members lists the members of a group view, inlining nested groups of the
// same compositor that occur exactly once.
func (d *deriver) members(v view) []view {
	g := d.b.Group(corpus.GroupID(v.term))
	out := make([]view, 0, len(g.Particles))
	for _, id := range g.Particles {
		m := d.view(id)
		if m.max == 0 {
			continue
		}
		if d.isGroup(m) && m.min == 1 && m.max == 1 && d.compositor(m) == g.Compositor && g.Compositor != corpus.CompositorAll {
			out = append(out, d.members(m)...)
			continue
		}
		out = append(out, m)
	}
	return out
}

// emptiable reports whether a particle can match the empty sequence.
func (d *deriver) emptiable(id corpus.ParticleID) bool {
	if id == corpus.ParticleID(corpus.Nil) {
		return true
	}
	return d.viewEmptiable(d.view(id))
}

func (d *deriver) viewEmptiable(v view) bool {
	if v.min == 0 {
		return true
	}
	if !d.isGroup(v) {
		return false
	}
	g := d.b.Group(corpus.GroupID(v.term))
	if len(g.Particles) == 0 {
		return true
	}
	if g.Compositor == corpus.CompositorChoice {
		return slices.ContainsFunc(g.Particles, d.emptiable)
	}
	for _, m := range g.Particles {
		if !d.emptiable(m) {
			return false
		}
	}
	return true
}

// checkContentRestriction verifies that the content of a restriction is a
// valid restriction of its complex base content.
func (d *deriver) checkContentRestriction(t corpus.TypeID) {
	rec := d.b.ComplexType(t)
	base := rec.Base
	if rec.Derivation != corpus.DerivationRestriction || base == d.builtins.AnyType ||
		!d.b.IsComplexType(base) || rec.Content == corpus.ContentSimple {
		return
	}
	baseRec := d.b.ComplexType(base)
	label, baseLabel := d.typeLabel(t), d.typeLabel(base)

	if rec.Content == corpus.ContentMixed && baseRec.Content != corpus.ContentMixed {
		d.report(xsderrors.ErrRestrictionParticle, rec.Location,
			"type %s: mixed content cannot restrict the element-only content of %s", label, baseLabel)
		rec.Content = corpus.ContentElementOnly
		d.repaired[t] = true
	}
	switch {
	case rec.Content == corpus.ContentEmpty:
		if baseRec.Content == corpus.ContentSimple || !d.emptiable(baseRec.Particle) {
			d.report(xsderrors.ErrRestrictionParticle, rec.Location,
				"type %s: empty content cannot restrict the content of %s", label, baseLabel)
		}
	case baseRec.Content == corpus.ContentSimple || baseRec.Content == corpus.ContentEmpty:
		if !d.emptiable(rec.Particle) {
			d.report(xsderrors.ErrRestrictionParticle, rec.Location,
				"type %s: element content cannot restrict the %s content of %s", label, baseRec.Content, baseLabel)
			rec.Content = corpus.ContentEmpty
			rec.Particle = corpus.ParticleID(corpus.Nil)
			d.repaired[t] = true
		}
	default:
		r := &restriction{d: d, typ: t}
		if !r.particle(d.view(rec.Particle), d.view(baseRec.Particle), true) {
			d.report(xsderrors.ErrRestrictionParticle, rec.Location,
				"type %s: content is not a valid restriction of %s: %s", label, baseLabel, r.reason)
		}
	}
}

// restriction checks one derived content particle against its base. Members
// of the derived top-level group that map to no base particle are removed.
type restriction struct {
	d      *deriver
	typ    corpus.TypeID
	reason string
}

func (r *restriction) fail(format string, args ...any) bool {
	if r.reason == "" {
		r.reason = fmt.Sprintf(format, args...)
	}
	return false
}

// occursWithin reports whether [min, max] lies inside the base range.
func occursWithin(minOccurs, maxOccurs, baseMin, baseMax uint32) bool {
	if minOccurs < baseMin {
		return false
	}
	if baseMax == corpus.Unbounded {
		return true
	}
	return maxOccurs != corpus.Unbounded && maxOccurs <= baseMax
}

func (r *restriction) particle(p, b view, repair bool) bool {
	d := r.d
	pk, bk := d.b.Kind(p.term), d.b.Kind(b.term)
	switch {
	case pk == corpus.KindElement && bk == corpus.KindElement:
		return r.nameAndType(p, b)
	case pk == corpus.KindElement && bk == corpus.KindWildcard:
		return r.nsCompat(p, b)
	case pk == corpus.KindElement && bk == corpus.KindGroup:
		// the element stands for a group of the base's compositor
		return r.group(view{term: b.term, min: 1, max: 1}, b, []view{p}, false)
	case pk == corpus.KindWildcard && bk == corpus.KindWildcard:
		return r.nsSubset(p, b)
	case pk == corpus.KindGroup && bk == corpus.KindWildcard:
		return r.nsRecurseCheckCardinality(p, b)
	case pk == corpus.KindGroup && bk == corpus.KindGroup:
		return r.group(p, b, d.members(p), repair)
	}
	return r.fail("%s cannot restrict %s", pk, bk)
}

// nameAndType is NameAndTypeOK.
func (r *restriction) nameAndType(p, b view) bool {
	d := r.d
	pe, be := d.b.Element(corpus.ElementID(p.term)), d.b.Element(corpus.ElementID(b.term))
	if pe.Name != be.Name || pe.Namespace != be.Namespace {
		return r.fail("element %s does not match base element %s", d.b.String(pe.Name), d.b.String(be.Name))
	}
	if !occursWithin(p.min, p.max, b.min, b.max) {
		return r.fail("element %s occurrence range exceeds the base range", d.b.String(pe.Name))
	}
	if pe.Nillable && !be.Nillable {
		return r.fail("element %s cannot become nillable", d.b.String(pe.Name))
	}
	if be.Constraint.Kind == corpus.ConstraintFixed {
		if pe.Constraint.Kind != corpus.ConstraintFixed ||
			!corpus.Equal(d.b, d.b.Variant(pe.Constraint.Value), d.b.Variant(be.Constraint.Value)) {
			return r.fail("element %s must keep the base fixed value", d.b.String(pe.Name))
		}
	}
	if !pe.Block.Has(be.Block) {
		return r.fail("element %s must block at least what the base blocks", d.b.String(pe.Name))
	}
	if pe.Type != be.Type && !d.derivesFrom(pe.Type, be.Type) {
		return r.fail("element %s type does not derive from the base element type", d.b.String(pe.Name))
	}
	return true
}

func (r *restriction) elementNamespace(p view) string {
	e := r.d.b.Element(corpus.ElementID(p.term))
	return r.d.b.String(r.d.b.Namespace(e.Namespace).URI)
}

// nsCompat is NSCompat.
func (r *restriction) nsCompat(p, b view) bool {
	if !r.d.wildcard(corpus.WildcardID(b.term)).Allows(r.elementNamespace(p)) {
		return r.fail("element namespace %q is not allowed by the base wildcard", r.elementNamespace(p))
	}
	if !occursWithin(p.min, p.max, b.min, b.max) {
		return r.fail("element occurrence range exceeds the base wildcard range")
	}
	return true
}

// nsSubset is NSSubset.
func (r *restriction) nsSubset(p, b view) bool {
	d := r.d
	pw, bw := corpus.WildcardID(p.term), corpus.WildcardID(b.term)
	if !occursWithin(p.min, p.max, b.min, b.max) {
		return r.fail("wildcard occurrence range exceeds the base range")
	}
	if !wildcard.Subset(d.wildcard(pw), d.wildcard(bw)) {
		return r.fail("wildcard %s is not a subset of %s", d.wildcard(pw), d.wildcard(bw))
	}
	if !wildcard.ProcessStrongerOrEqual(d.b.Wildcard(pw).Process, d.b.Wildcard(bw).Process) {
		return r.fail("wildcard processContents is weaker than the base")
	}
	return true
}

// nsRecurseCheckCardinality checks every leaf of a group against a base
// wildcard and the group's total range against the wildcard's range.
func (r *restriction) nsRecurseCheckCardinality(p, b view) bool {
	for _, leaf := range r.leaves(p) {
		if !r.particle(view{term: leaf, min: 0, max: 1}, view{term: b.term, min: 0, max: corpus.Unbounded}, false) {
			return false
		}
	}
	lo, hi := r.totalRange(p)
	if !occursWithin(lo, hi, b.min, b.max) {
		return r.fail("group occurrence range exceeds the base wildcard range")
	}
	return true
}

func (r *restriction) leaves(p view) []corpus.NodeID {
	d := r.d
	if !d.isGroup(p) {
		return []corpus.NodeID{p.term}
	}
	var out []corpus.NodeID
	for _, m := range d.b.Group(corpus.GroupID(p.term)).Particles {
		out = append(out, r.leaves(d.view(m))...)
	}
	return out
}

// totalRange is the effective total range of a particle.
func (r *restriction) totalRange(p view) (uint32, uint32) {
	d := r.d
	if !d.isGroup(p) {
		return p.min, p.max
	}
	g := d.b.Group(corpus.GroupID(p.term))
	var lo, hi uint32
	for i, id := range g.Particles {
		mlo, mhi := r.totalRange(d.view(id))
		if g.Compositor == corpus.CompositorChoice {
			if i == 0 || mlo < lo {
				lo = mlo
			}
			hi = max(hi, mhi)
			if mhi == corpus.Unbounded {
				hi = corpus.Unbounded
			}
			continue
		}
		lo = addOccurs(lo, mlo)
		hi = addOccurs(hi, mhi)
	}
	return mulOccurs(p.min, lo), mulOccurs(p.max, hi)
}

func addOccurs(a, b uint32) uint32 {
	if a == corpus.Unbounded || b == corpus.Unbounded || uint64(a)+uint64(b) >= uint64(corpus.Unbounded) {
		return corpus.Unbounded
	}
	return a + b
}

func mulOccurs(a, b uint32) uint32 {
	if a == 0 || b == 0 {
		return 0
	}
	if a == corpus.Unbounded || b == corpus.Unbounded || uint64(a)*uint64(b) >= uint64(corpus.Unbounded) {
		return corpus.Unbounded
	}
	return a * b
}

// group dispatches a group pair to Recurse, RecurseLax, RecurseUnordered or
// MapAndSum.
func (r *restriction) group(p, b view, members []view, repair bool) bool {
	d := r.d
	pc, bc := d.compositor(p), d.compositor(b)
	base := d.members(b)

	if len(base) == 1 && d.b.Kind(base[0].term) == corpus.KindWildcard && b.min == 1 && b.max == 1 {
		return r.nsRecurseCheckCardinality(p, base[0])
	}
	switch {
	case pc == bc && pc == corpus.CompositorChoice:
		if !occursWithin(p.min, p.max, b.min, b.max) {
			return r.fail("choice occurrence range exceeds the base range")
		}
		return r.recurseLax(p, members, base, repair)
	case pc == bc:
		if !occursWithin(p.min, p.max, b.min, b.max) {
			return r.fail("%s occurrence range exceeds the base range", pc)
		}
		return r.recurse(p, members, base, repair)
	case pc == corpus.CompositorSequence && bc == corpus.CompositorAll:
		if !occursWithin(p.min, p.max, b.min, b.max) {
			return r.fail("sequence occurrence range exceeds the base all range")
		}
		return r.recurseUnordered(members, base)
	case pc == corpus.CompositorSequence && bc == corpus.CompositorChoice:
		n := uint32(len(members))
		if !occursWithin(mulOccurs(p.min, n), mulOccurs(p.max, n), b.min, b.max) {
			return r.fail("sequence occurrence range exceeds the base choice range")
		}
		return r.mapAndSum(members, base)
	}
	return r.fail("%s cannot restrict %s", pc, bc)
}

// recurse maps derived members in order onto base members; skipped base
// members must be emptiable. A base wildcard that may repeat absorbs several
// derived members.
func (r *restriction) recurse(p view, members, base []view, repair bool) bool {
	var unmapped []view
	i := 0
	for _, m := range members {
		j, matched := i, false
		for j < len(base) {
			if r.particle(m, base[j], false) {
				matched = true
				if !r.repeatable(base[j]) {
					j++
				}
				break
			}
			if !r.d.viewEmptiable(base[j]) {
				break
			}
			j++
		}
		if !matched {
			unmapped = append(unmapped, m)
			continue
		}
		i = j
	}
	if !r.drop(p, unmapped, repair) {
		return false
	}
	for ; i < len(base); i++ {
		if !r.d.viewEmptiable(base[i]) && !r.consumed(base[i], members, unmapped) {
			return r.fail("required base particle is not matched")
		}
	}
	return true
}

func (r *restriction) repeatable(b view) bool {
	return r.d.b.Kind(b.term) == corpus.KindWildcard && b.max != 1
}

// consumed reports whether a repeatable base wildcard at the tail already
// absorbed a derived member.
func (r *restriction) consumed(b view, members, unmapped []view) bool {
	if !r.repeatable(b) {
		return false
	}
	for _, m := range members {
		if !slices.Contains(unmapped, m) && r.particle(m, b, false) {
			return true
		}
	}
	return false
}

func (r *restriction) recurseLax(p view, members, base []view, repair bool) bool {
	var unmapped []view
	i := 0
	for _, m := range members {
		matched := false
		for j := i; j < len(base); j++ {
			if r.particle(m, base[j], false) {
				i, matched = j+1, true
				break
			}
		}
		if !matched {
			unmapped = append(unmapped, m)
		}
	}
	return r.drop(p, unmapped, repair)
}

func (r *restriction) recurseUnordered(members, base []view) bool {
	used := make([]bool, len(base))
	for _, m := range members {
		matched := false
		for j, b := range base {
			if !used[j] && r.particle(m, b, false) {
				used[j], matched = true, true
				break
			}
		}
		if !matched {
			return r.fail("sequence member matches no member of the base all group")
		}
	}
	for j, b := range base {
		if !used[j] && !r.d.viewEmptiable(b) {
			return r.fail("required member of the base all group is not matched")
		}
	}
	return true
}

func (r *restriction) mapAndSum(members, base []view) bool {
	for _, m := range members {
		if !slices.ContainsFunc(base, func(b view) bool { return r.particle(m, b, false) }) {
			return r.fail("sequence member matches no branch of the base choice")
		}
	}
	return true
}

// drop removes unmapped members from the derived group when repairing. A
// member that is not a direct particle of the group cannot be removed.
func (r *restriction) drop(p view, unmapped []view, repair bool) bool {
	if len(unmapped) == 0 {
		return true
	}
	if !repair || p.id == corpus.ParticleID(corpus.Nil) {
		return r.fail("derived particle matches no base particle")
	}
	d := r.d
	g := d.b.Group(corpus.GroupID(p.term))
	for _, m := range unmapped {
		if m.id == corpus.ParticleID(corpus.Nil) || !slices.Contains(g.Particles, m.id) {
			return r.fail("derived particle matches no base particle")
		}
	}
	d.repaired[r.typ] = true
	for _, m := range unmapped {
		g.Particles = slices.DeleteFunc(g.Particles, func(id corpus.ParticleID) bool { return id == m.id })
		d.report(xsderrors.ErrRestrictionParticle, d.b.Particle(m.id).Location,
			"type %s: particle matches no base particle and was removed", d.typeLabel(r.typ))
	}
	return true
}
