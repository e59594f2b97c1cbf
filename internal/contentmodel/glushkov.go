// Package contentmodel checks the Unique Particle Attribution constraint of
// complex type content models over Glushkov positions.
package contentmodel

import (
	"fmt"

	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// PositionKind identifies the kind of Glushkov position.
type PositionKind uint8

const (
	PositionElement PositionKind = iota
	PositionWildcard
)

// Position is one element or wildcard occurrence in the model.
type Position struct {
	Kind     PositionKind
	Particle corpus.ParticleID
	Element  corpus.ElementID
	Wildcard corpus.WildcardID
}

// Glushkov holds the positions of a content particle with their first and
// follow sets. Occurrence bounds are relaxed: a particle that may repeat is
// starred, and all groups are read as choices.
type Glushkov struct {
	Positions []Position
	Nullable  bool

	first  *bitset
	follow []*bitset
}

// First returns the positions that may start the content.
func (g *Glushkov) First() []int {
	if g.first == nil {
		return nil
	}
	return g.first.positions()
}

// Follow returns the positions that may follow position i.
func (g *Glushkov) Follow(i int) []int {
	return g.follow[i].positions()
}

// Reader is the arena view the builder walks. *corpus.Corpus satisfies it;
// a builder is read through builderReader.
type Reader interface {
	Kind(id corpus.NodeID) corpus.Kind
	Particle(id corpus.ParticleID) corpus.ParticleRec
	Group(id corpus.GroupID) corpus.GroupRec
}

// BuildGlushkov compiles a content particle into positions and follow sets.
// A Nil particle yields an empty, nullable model.
func BuildGlushkov(r Reader, particle corpus.ParticleID) (*Glushkov, error) {
	if particle == corpus.ParticleID(corpus.Nil) {
		return &Glushkov{Nullable: true}, nil
	}
	b := &builder{r: r}
	size, err := b.countPositions(particle, 0)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return &Glushkov{Nullable: true}, nil
	}
	b.size = size
	b.positions = make([]Position, 0, size)
	b.follow = make([]*bitset, size)
	for i := range b.follow {
		b.follow[i] = newBitset(size)
	}

	root := b.buildParticle(particle)
	if len(b.positions) != size {
		return nil, fmt.Errorf("glushkov position count mismatch: got %d, want %d", len(b.positions), size)
	}
	b.computeFollowPos(root)
	return &Glushkov{
		Positions: b.positions,
		Nullable:  root.nullable(),
		first:     root.firstPos(),
		follow:    b.follow,
	}, nil
}

// maxDepth bounds group nesting; groups are acyclic once built.
const maxDepth = 4096

type builder struct {
	r         Reader
	positions []Position
	follow    []*bitset
	size      int
}

func (b *builder) countPositions(id corpus.ParticleID, depth int) (int, error) {
	if depth > maxDepth {
		return 0, fmt.Errorf("glushkov: particle %d nested too deeply", id)
	}
	p := b.r.Particle(id)
	if p.MaxOccurs == 0 {
		return 0, nil
	}
	switch b.r.Kind(p.Term) {
	case corpus.KindElement, corpus.KindWildcard:
		return 1, nil
	case corpus.KindGroup:
		total := 0
		for _, child := range b.r.Group(corpus.GroupID(p.Term)).Particles {
			n, err := b.countPositions(child, depth+1)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	default:
		return 0, fmt.Errorf("glushkov: particle %d has term kind %s", id, b.r.Kind(p.Term))
	}
}

// buildParticle returns nil only for an absent particle (maxOccurs 0). A
// present group without positions becomes an epsilon node so that an
// emptiable branch keeps its enclosing choice nullable.
func (b *builder) buildParticle(id corpus.ParticleID) node {
	p := b.r.Particle(id)
	if p.MaxOccurs == 0 {
		return nil
	}
	child := b.buildSingle(id, p)
	optional := p.MinOccurs == 0
	repeats := p.MaxOccurs > 1
	if !optional && !repeats {
		return child
	}
	return newRepeat(child, optional, repeats)
}

func (b *builder) buildSingle(id corpus.ParticleID, p corpus.ParticleRec) node {
	switch b.r.Kind(p.Term) {
	case corpus.KindElement:
		return b.leaf(Position{Kind: PositionElement, Particle: id, Element: corpus.ElementID(p.Term)})
	case corpus.KindWildcard:
		return b.leaf(Position{Kind: PositionWildcard, Particle: id, Wildcard: corpus.WildcardID(p.Term)})
	}
	g := b.r.Group(corpus.GroupID(p.Term))
	parts := make([]node, 0, len(g.Particles))
	for _, child := range g.Particles {
		if n := b.buildParticle(child); n != nil {
			parts = append(parts, n)
		}
	}
	if g.Compositor == corpus.CompositorSequence {
		return b.sequence(parts)
	}
	return b.choice(parts)
}

func (b *builder) leaf(pos Position) node {
	n := newLeaf(len(b.positions), b.size)
	b.positions = append(b.positions, pos)
	return n
}

func (b *builder) sequence(nodes []node) node {
	if len(nodes) == 0 {
		return newEpsilon(b.size)
	}
	result := nodes[0]
	for i := 1; i < len(nodes); i++ {
		result = newSeq(result, nodes[i], b.size)
	}
	return result
}

func (b *builder) choice(nodes []node) node {
	if len(nodes) == 0 {
		return newEpsilon(b.size)
	}
	result := nodes[0]
	for i := 1; i < len(nodes); i++ {
		result = newAlt(result, nodes[i], b.size)
	}
	return result
}
