package main

import (
	"fmt"
	"io"
	"strings"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

const (
	ansiReset   = "\x1b[0m"
	ansiYellow  = "\x1b[33m"
	ansiRed     = "\x1b[31m"
	ansiBoldRed = "\x1b[1;31m"
)

func severityLabel(sev xsderrors.Severity, color bool) string {
	label := sev.String()
	if !color {
		return label
	}
	switch sev {
	case xsderrors.SeverityWarning:
		return ansiYellow + label + ansiReset
	case xsderrors.SeverityError:
		return ansiRed + label + ansiReset
	default:
		return ansiBoldRed + label + ansiReset
	}
}

func writeDiagnostic(w io.Writer, d xsderrors.Diagnostic, color bool) {
	_ = writef(w, "%s: %s\n", severityLabel(d.Severity, color), d.Error())
}

func (a *app) printDiagnostic(d xsderrors.Diagnostic) {
	writeDiagnostic(a.stderr, d, a.color)
}

func writeStats(w io.Writer, s corpus.Stats, diagnostics int) error {
	rows := []struct {
		name string
		n    int
	}{
		{"namespaces", s.Namespaces},
		{"elements", s.Elements},
		{"attributes", s.Attributes},
		{"attribute uses", s.AttributeUses},
		{"simple types", s.SimpleTypes},
		{"complex types", s.ComplexTypes},
		{"particles", s.Particles},
		{"groups", s.Groups},
		{"wildcards", s.Wildcards},
		{"strings", s.Strings},
		{"variants", s.Variants},
		{"diagnostics", diagnostics},
	}
	for _, r := range rows {
		if err := writef(w, "%-15s %d\n", r.name, r.n); err != nil {
			return err
		}
	}
	return nil
}

func qname(q corpus.QName) string {
	if q.Local == "" {
		return "(anonymous)"
	}
	if q.Namespace == "" {
		return q.Local
	}
	return "{" + q.Namespace + "}" + q.Local
}

func occurs(p corpus.ParticleRec) string {
	switch {
	case p.MinOccurs == 1 && p.MaxOccurs == 1:
		return ""
	case p.MinOccurs == 0 && p.MaxOccurs == 1:
		return "?"
	case p.MinOccurs == 0 && p.MaxOccurs == corpus.Unbounded:
		return "*"
	case p.MinOccurs == 1 && p.MaxOccurs == corpus.Unbounded:
		return "+"
	case p.MaxOccurs == corpus.Unbounded:
		return fmt.Sprintf("{%d,}", p.MinOccurs)
	default:
		return fmt.Sprintf("{%d,%d}", p.MinOccurs, p.MaxOccurs)
	}
}

// particleLabel names a head entry: "$" for the end marker, "*" for a
// wildcard, the compositor for a nested group.
func particleLabel(c *corpus.Corpus, id corpus.ParticleID) string {
	if id == corpus.ParticleID(corpus.Nil) {
		return "$"
	}
	p := c.Particle(id)
	var term string
	switch c.Kind(p.Term) {
	case corpus.KindElement:
		term = qname(c.ElementName(corpus.ElementID(p.Term)))
	case corpus.KindWildcard:
		term = "*"
	case corpus.KindGroup:
		term = "(" + c.Group(corpus.GroupID(p.Term)).Compositor.String() + ")"
	default:
		term = c.Kind(p.Term).String()
	}
	return term + occurs(p)
}

func writeAutomaton(w io.Writer, c *corpus.Corpus, indent string, a corpus.Automaton) {
	for k, heads := range a.Heads {
		labels := make([]string, len(heads))
		for i, h := range heads {
			labels[i] = particleLabel(c, h)
		}
		_ = writef(w, "%shead[%d] = [%s] back=%d\n", indent, k, strings.Join(labels, " "), a.Backward[k])
	}
}

func writeDump(w io.Writer, c *corpus.Corpus) {
	for _, ns := range c.Namespaces() {
		rec := c.Namespace(ns)
		_ = writef(w, "namespace %q\n", c.NamespaceURI(ns))
		for _, e := range rec.Elements {
			el := c.Element(e)
			_ = writef(w, "  element %s type %s\n", qname(c.ElementName(e)), qname(c.TypeName(el.Type)))
		}
		for _, at := range rec.Attributes {
			_ = writef(w, "  attribute %s type %s\n", qname(c.AttributeName(at)), qname(c.TypeName(c.Attribute(at).Type)))
		}
		for _, t := range rec.Types {
			if c.IsSimpleType(t) {
				st := c.SimpleType(t)
				if st.Builtin {
					continue
				}
				_ = writef(w, "  simpleType %s base %s", qname(c.TypeName(t)), qname(c.TypeName(st.Base)))
				if st.Integral.Kind != corpus.IntegralNone {
					_ = writef(w, " integral %s", st.Integral.Kind)
				}
				_ = writeln(w)
				continue
			}
			ct := c.ComplexType(t)
			if ct.Builtin {
				continue
			}
			_ = writef(w, "  complexType %s base %s content %s\n", qname(c.TypeName(t)), qname(c.TypeName(ct.Base)), ct.Content)
			writeAutomaton(w, c, "    ", ct.Automaton)
			if ct.Particle == corpus.ParticleID(corpus.Nil) {
				continue
			}
			term := c.Particle(ct.Particle).Term
			if c.Kind(term) != corpus.KindGroup {
				continue
			}
			g := c.Group(corpus.GroupID(term))
			_ = writef(w, "    %s fixture=%t\n", g.Compositor, g.Fixture)
			writeAutomaton(w, c, "      ", g.Automaton)
		}
	}
}
