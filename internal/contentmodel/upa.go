package contentmodel

import (
	"errors"
	"fmt"
	"log/slog"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/wildcard"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

type builderReader struct {
	b *corpus.Builder
}

func (r builderReader) Kind(id corpus.NodeID) corpus.Kind { return r.b.Kind(id) }

func (r builderReader) Particle(id corpus.ParticleID) corpus.ParticleRec { return *r.b.Particle(id) }

func (r builderReader) Group(id corpus.GroupID) corpus.GroupRec { return *r.b.Group(id) }

type qname struct {
	ns    string
	local string
}

type checker struct {
	b        *corpus.Builder
	accepted map[corpus.ElementID][]qname
}

// Run checks every complex type content model and reports one fatal
// cos-nonambig diagnostic per ambiguous type. Substitution members must
// already be mirrored onto their heads. The returned error is an internal
// failure, never a schema problem.
func Run(b *corpus.Builder, diags *xsderrors.Collector, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &checker{b: b, accepted: make(map[corpus.ElementID][]qname)}
	checked, ambiguous := 0, 0
	for n := corpus.NodeID(1); int(n) < b.Len(); n++ {
		if b.Kind(n) != corpus.KindComplexType {
			continue
		}
		rec := b.ComplexType(corpus.TypeID(n))
		if rec.Particle == corpus.ParticleID(corpus.Nil) {
			continue
		}
		checked++
		glu, err := BuildGlushkov(builderReader{b: b}, rec.Particle)
		if err != nil {
			return fmt.Errorf("type %s: %w", c.typeLabel(rec), err)
		}
		err = CheckDeterminism(glu, c.overlap)
		var amb *AmbiguityError
		if !errors.As(err, &amb) {
			continue
		}
		ambiguous++
		loc := rec.Location
		diags.Reportf(xsderrors.SeverityFatal, xsderrors.ErrNonDeterministic, loc.SystemID, loc.Line, loc.Column,
			"type %s: content model is not deterministic: %s and %s can match the same element",
			c.typeLabel(rec), c.describe(amb.Left), c.describe(amb.Right))
	}
	logger.Debug("unique particle attribution checked", "types", checked, "ambiguous", ambiguous)
	return nil
}

func (c *checker) typeLabel(rec *corpus.ComplexTypeRec) string {
	if name := c.b.String(rec.Name); name != "" {
		return name
	}
	return "(anonymous)"
}

func (c *checker) elementName(id corpus.ElementID) qname {
	rec := c.b.Element(id)
	return qname{ns: c.b.String(c.b.Namespace(rec.Namespace).URI), local: c.b.String(rec.Name)}
}

// names returns the names an element position accepts: its own and those
// of its transitive substitution members.
func (c *checker) names(id corpus.ElementID) []qname {
	if names, ok := c.accepted[id]; ok {
		return names
	}
	names := []qname{c.elementName(id)}
	seen := map[corpus.ElementID]bool{id: true}
	queue := append([]corpus.ElementID(nil), c.b.Element(id).SubstitutionMembers...)
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		if seen[m] {
			continue
		}
		seen[m] = true
		names = append(names, c.elementName(m))
		queue = append(queue, c.b.Element(m).SubstitutionMembers...)
	}
	c.accepted[id] = names
	return names
}

func (c *checker) wildcard(id corpus.WildcardID) wildcard.Constraint {
	return wildcard.FromRecord(c.b, *c.b.Wildcard(id))
}

func (c *checker) overlap(left, right Position) bool {
	switch {
	case left.Kind == PositionElement && right.Kind == PositionElement:
		rn := c.names(right.Element)
		for _, l := range c.names(left.Element) {
			for _, r := range rn {
				if l == r {
					return true
				}
			}
		}
		return false
	case left.Kind == PositionWildcard && right.Kind == PositionWildcard:
		return wildcard.Intersects(c.wildcard(left.Wildcard), c.wildcard(right.Wildcard))
	case left.Kind == PositionWildcard:
		left, right = right, left
	}
	w := c.wildcard(right.Wildcard)
	for _, n := range c.names(left.Element) {
		if w.Allows(n.ns) {
			return true
		}
	}
	return false
}

func (c *checker) describe(p Position) string {
	if p.Kind == PositionWildcard {
		return "wildcard " + c.wildcard(p.Wildcard).String()
	}
	n := c.elementName(p.Element)
	if n.ns == "" {
		return "element " + n.local
	}
	return "element {" + n.ns + "}" + n.local
}
