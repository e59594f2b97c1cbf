// Package automaton computes the substance lists and head-substance tables of
// every model group and complex type content, plus the substitution and
// group-head indexes of element declarations.
package automaton

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// End is the head entry meaning the group may end at this offset.
const End = corpus.ParticleID(corpus.Nil)

type table struct {
	substances []corpus.Substance
	heads      [][]corpus.ParticleID
}

// emptiable reports whether the group can match nothing.
func (t *table) emptiable() bool {
	return slices.Contains(t.heads[0], End)
}

type builder struct {
	b      *corpus.Builder
	tables map[corpus.GroupID]*table
}

// Run fills the automaton fields of the builder. Groups must be acyclic.
func Run(b *corpus.Builder, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &builder{b: b, tables: make(map[corpus.GroupID]*table)}
	types := 0
	for n := corpus.NodeID(1); int(n) < b.Len(); n++ {
		switch b.Kind(n) {
		case corpus.KindGroup:
			if _, err := a.group(corpus.GroupID(n)); err != nil {
				return err
			}
		case corpus.KindComplexType:
			if err := a.complexType(corpus.TypeID(n)); err != nil {
				return err
			}
			types++
		}
	}
	a.substantialMax()
	a.substitutionMembers()
	a.groupHeadInstances()
	logger.Debug("automata built", "groups", len(a.tables), "complex_types", types)
	return nil
}

type frame struct {
	id   corpus.GroupID
	next int
}

// group returns the table of id, computing every nested group first in
// post-order with an explicit stack.
func (a *builder) group(id corpus.GroupID) (*table, error) {
	if t, ok := a.tables[id]; ok {
		return t, nil
	}
	onStack := map[corpus.GroupID]bool{id: true}
	stack := []frame{{id: id}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		members := a.b.Group(top.id).Particles
		if top.next < len(members) {
			p := a.b.Particle(members[top.next])
			top.next++
			if a.b.Kind(p.Term) != corpus.KindGroup {
				continue
			}
			child := corpus.GroupID(p.Term)
			if _, done := a.tables[child]; done {
				continue
			}
			if onStack[child] {
				return nil, fmt.Errorf("automaton: group %d is circular", child)
			}
			onStack[child] = true
			stack = append(stack, frame{id: child})
			continue
		}
		t := a.compute(top.id)
		a.tables[top.id] = t
		a.store(top.id, t)
		delete(onStack, top.id)
		stack = stack[:len(stack)-1]
	}
	return a.tables[id], nil
}

func (a *builder) store(id corpus.GroupID, t *table) {
	g := a.b.Group(id)
	g.Automaton = corpus.Automaton{
		Substances: t.substances,
		Heads:      t.heads,
		Backward:   backward(t.heads),
	}
	g.Fixture = g.Compositor == corpus.CompositorSequence && fixture(t.heads)
}

// member describes what one member particle adds to a head set.
type member struct {
	heads    []corpus.ParticleID
	optional bool
	absent   bool
}

func (a *builder) member(id corpus.ParticleID) member {
	p := a.b.Particle(id)
	if p.MaxOccurs == 0 {
		return member{absent: true, optional: true}
	}
	if a.b.Kind(p.Term) != corpus.KindGroup {
		return member{heads: []corpus.ParticleID{id}, optional: p.MinOccurs == 0}
	}
	t := a.tables[corpus.GroupID(p.Term)]
	heads := slices.DeleteFunc(slices.Clone(t.heads[0]), func(h corpus.ParticleID) bool { return h == End })
	return member{heads: heads, optional: p.MinOccurs == 0 || t.emptiable()}
}

func (a *builder) substances(members []corpus.ParticleID) []corpus.Substance {
	var out []corpus.Substance
	for i, id := range members {
		p := a.b.Particle(id)
		if p.MaxOccurs == 0 {
			continue
		}
		if a.b.Kind(p.Term) == corpus.KindGroup {
			out = append(out, a.tables[corpus.GroupID(p.Term)].substances...)
			continue
		}
		out = append(out, corpus.Substance{Particle: id, Ordinal: i})
	}
	return out
}

func (a *builder) compute(id corpus.GroupID) *table {
	g := a.b.Group(id)
	members := make([]member, len(g.Particles))
	for i, pid := range g.Particles {
		members[i] = a.member(pid)
	}
	t := &table{substances: a.substances(g.Particles)}
	switch g.Compositor {
	case corpus.CompositorChoice:
		t.heads = choiceHeads(members)
	case corpus.CompositorAll:
		t.heads = allHeads(members)
	default:
		t.heads = sequenceHeads(members)
	}
	return t
}

// complexType computes the table of a type's content particle, seen as a
// one-member sequence.
func (a *builder) complexType(id corpus.TypeID) error {
	rec := a.b.ComplexType(id)
	if rec.Particle == corpus.ParticleID(corpus.Nil) {
		rec.Automaton = corpus.Automaton{Heads: [][]corpus.ParticleID{{End}}, Backward: []int{0}}
		return nil
	}
	p := a.b.Particle(rec.Particle)
	if a.b.Kind(p.Term) == corpus.KindGroup {
		if _, err := a.group(corpus.GroupID(p.Term)); err != nil {
			return err
		}
	}
	members := []corpus.ParticleID{rec.Particle}
	heads := sequenceHeads([]member{a.member(rec.Particle)})
	rec = a.b.ComplexType(id)
	rec.Automaton = corpus.Automaton{
		Substances: a.substances(members),
		Heads:      heads,
		Backward:   backward(heads),
	}
	return nil
}

// sequenceHeads lists, for each offset k, the members from k up to and
// including the first mandatory one, or End when none remains.
func sequenceHeads(members []member) [][]corpus.ParticleID {
	heads := make([][]corpus.ParticleID, len(members)+1)
	for k := range heads {
		var h []corpus.ParticleID
		mandatory := false
		for _, m := range members[k:] {
			h = appendUnique(h, m.heads...)
			if !m.optional {
				mandatory = true
				break
			}
		}
		if !mandatory {
			h = append(h, End)
		}
		heads[k] = h
	}
	return heads
}

// choiceHeads lists every branch at offset 0; once a branch is selected the
// consumer recurses into it, so later offsets may only end.
func choiceHeads(members []member) [][]corpus.ParticleID {
	heads := make([][]corpus.ParticleID, len(members)+1)
	var first []corpus.ParticleID
	present, emptiable := false, false
	for _, m := range members {
		if m.absent {
			continue
		}
		present = true
		first = appendUnique(first, m.heads...)
		if m.optional {
			emptiable = true
		}
	}
	// A choice without a present branch matches only the empty sequence.
	if emptiable || !present {
		first = append(first, End)
	}
	heads[0] = first
	for k := 1; k < len(heads); k++ {
		heads[k] = []corpus.ParticleID{End}
	}
	return heads
}

// allHeads lists every member at every offset; the consumer tracks which
// members remain.
func allHeads(members []member) [][]corpus.ParticleID {
	var every []corpus.ParticleID
	optional := true
	for _, m := range members {
		every = appendUnique(every, m.heads...)
		if !m.optional {
			optional = false
		}
	}
	if optional {
		every = append(every, End)
	}
	heads := make([][]corpus.ParticleID, len(members)+1)
	for k := range heads {
		heads[k] = slices.Clone(every)
	}
	return heads
}

func appendUnique(dst []corpus.ParticleID, ids ...corpus.ParticleID) []corpus.ParticleID {
	for _, id := range ids {
		if !slices.Contains(dst, id) {
			dst = append(dst, id)
		}
	}
	return dst
}

// backward returns, for each k >= 1, the number of leading entries of
// heads[k-1] to drop so that the rest is a prefix of heads[k].
func backward(heads [][]corpus.ParticleID) []int {
	out := make([]int, len(heads))
	for k := 1; k < len(heads); k++ {
		prev, cur := heads[k-1], heads[k]
		b := 0
		for ; b < len(prev); b++ {
			rest := prev[b:]
			if len(rest) <= len(cur) && slices.Equal(rest, cur[:len(rest)]) {
				break
			}
		}
		out[k] = b
	}
	return out
}

// fixture reports whether every offset but the last has exactly one
// mandatory head.
func fixture(heads [][]corpus.ParticleID) bool {
	for _, h := range heads[:len(heads)-1] {
		if len(h) != 1 || h[0] == End {
			return false
		}
	}
	return true
}

func (a *builder) substantialMax() {
	for n := corpus.NodeID(1); int(n) < a.b.Len(); n++ {
		if a.b.Kind(n) != corpus.KindParticle {
			continue
		}
		p := a.b.Particle(corpus.ParticleID(n))
		p.SubstantialMax = p.MaxOccurs
		if a.b.Kind(p.Term) == corpus.KindGroup && len(a.tables[corpus.GroupID(p.Term)].substances) == 0 {
			p.SubstantialMax = 0
		}
	}
}

// substitutionMembers mirrors every affiliation onto its head, ordered by
// namespace and then local name.
func (a *builder) substitutionMembers() {
	members := make(map[corpus.ElementID][]corpus.ElementID)
	for n := corpus.NodeID(1); int(n) < a.b.Len(); n++ {
		if a.b.Kind(n) != corpus.KindElement {
			continue
		}
		if h := a.b.Element(corpus.ElementID(n)).SubstitutionHead; h != corpus.ElementID(corpus.Nil) {
			members[h] = append(members[h], corpus.ElementID(n))
		}
	}
	for head, list := range members {
		slices.SortFunc(list, func(x, y corpus.ElementID) int {
			ex, ey := a.b.Element(x), a.b.Element(y)
			nx := a.b.String(a.b.Namespace(ex.Namespace).URI)
			ny := a.b.String(a.b.Namespace(ey.Namespace).URI)
			if c := cmp.Compare(nx, ny); c != 0 {
				return c
			}
			return cmp.Compare(a.b.String(ex.Name), a.b.String(ey.Name))
		})
		a.b.Element(head).SubstitutionMembers = list
	}
}

// groupHeadInstances records, per element, the particles that open a named
// group expansion.
func (a *builder) groupHeadInstances() {
	instances := make(map[corpus.ElementID][]corpus.ParticleID)
	for id, t := range a.tables {
		if a.b.Group(id).DefinitionName == 0 {
			continue
		}
		for _, h := range t.heads[0] {
			if h == End {
				continue
			}
			term := a.b.Particle(h).Term
			if a.b.Kind(term) == corpus.KindElement {
				e := corpus.ElementID(term)
				instances[e] = appendUnique(instances[e], h)
			}
		}
	}
	for e, list := range instances {
		slices.Sort(list)
		a.b.Element(e).GroupHeadInstances = list
	}
}
