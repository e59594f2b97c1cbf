package wildcard

import (
	"slices"
	"strings"

	"github.com/jacoelho/xsdcorpus/internal/value"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// Namespace tokens of the namespace attribute on xs:any and xs:anyAttribute.
const (
	TokenAny             = "##any"
	TokenOther           = "##other"
	TokenTargetNamespace = "##targetNamespace"
	TokenLocal           = "##local"
)

// Constraint is a wildcard namespace constraint in normalized set form. The
// empty string stands for "no namespace". Namespaces is sorted and unique.
type Constraint struct {
	Kind       corpus.WildcardConstraint
	Namespaces []string
}

// Any returns the constraint admitting every namespace.
func Any() Constraint { return Constraint{Kind: corpus.WildcardAny} }

// Not returns the constraint admitting every namespace except ns.
func Not(ns ...string) Constraint {
	return Constraint{Kind: corpus.WildcardNot, Namespaces: normalize(ns)}
}

// Namespaces returns the constraint admitting exactly ns.
func Namespaces(ns ...string) Constraint {
	return Constraint{Kind: corpus.WildcardNamespaces, Namespaces: normalize(ns)}
}

func normalize(ns []string) []string {
	out := slices.Clone(ns)
	slices.Sort(out)
	return slices.Compact(out)
}

// Parse reads the namespace attribute of a wildcard declared in a schema
// document whose target namespace is targetNS. ##other excludes both the
// target namespace and no-namespace. An empty attribute admits nothing.
func Parse(attr, targetNS string) Constraint {
	attr = value.TrimXMLWhitespace(attr)
	switch attr {
	case TokenAny:
		return Any()
	case TokenOther:
		return Not(targetNS, "")
	}
	var list []string
	for _, tok := range value.Fields(attr) {
		switch tok {
		case TokenTargetNamespace:
			list = append(list, targetNS)
		case TokenLocal:
			list = append(list, "")
		default:
			list = append(list, tok)
		}
	}
	return Namespaces(list...)
}

// Allows reports whether ns is admitted.
func (c Constraint) Allows(ns string) bool {
	switch c.Kind {
	case corpus.WildcardAny:
		return true
	case corpus.WildcardNot:
		return !contains(c.Namespaces, ns)
	default:
		return contains(c.Namespaces, ns)
	}
}

func contains(list []string, ns string) bool {
	_, ok := slices.BinarySearch(list, ns)
	return ok
}

// Equal reports whether two constraints admit the same namespaces.
func (c Constraint) Equal(o Constraint) bool {
	return c.Kind == o.Kind && slices.Equal(c.Namespaces, o.Namespaces)
}

// IsEmpty reports whether no namespace is admitted.
func (c Constraint) IsEmpty() bool {
	return c.Kind == corpus.WildcardNamespaces && len(c.Namespaces) == 0
}

func (c Constraint) String() string {
	switch c.Kind {
	case corpus.WildcardAny:
		return TokenAny
	case corpus.WildcardNot:
		return "not(" + quoteAll(c.Namespaces) + ")"
	default:
		return "{" + quoteAll(c.Namespaces) + "}"
	}
}

func quoteAll(list []string) string {
	parts := make([]string, len(list))
	for i, ns := range list {
		if ns == "" {
			parts[i] = TokenLocal
		} else {
			parts[i] = ns
		}
	}
	return strings.Join(parts, " ")
}

// Subset reports whether every namespace admitted by derived is admitted by base.
func Subset(derived, base Constraint) bool {
	switch {
	case base.Kind == corpus.WildcardAny:
		return true
	case derived.Kind == corpus.WildcardAny:
		return false
	case derived.Kind == corpus.WildcardNamespaces:
		for _, ns := range derived.Namespaces {
			if !base.Allows(ns) {
				return false
			}
		}
		return true
	case base.Kind == corpus.WildcardNamespaces:
		// A co-finite set never fits in a finite one.
		return false
	default:
		// not(D) within not(B) iff B is a subset of D.
		for _, ns := range base.Namespaces {
			if !contains(derived.Namespaces, ns) {
				return false
			}
		}
		return true
	}
}

// Union returns the constraint admitting what either side admits.
func Union(a, b Constraint) Constraint {
	switch {
	case a.Kind == corpus.WildcardAny || b.Kind == corpus.WildcardAny:
		return Any()
	case a.Kind == corpus.WildcardNamespaces && b.Kind == corpus.WildcardNamespaces:
		return Namespaces(append(slices.Clone(a.Namespaces), b.Namespaces...)...)
	case a.Kind == corpus.WildcardNot && b.Kind == corpus.WildcardNot:
		return notOrAny(intersect(a.Namespaces, b.Namespaces))
	case a.Kind == corpus.WildcardNot:
		return notOrAny(difference(a.Namespaces, b.Namespaces))
	default:
		return notOrAny(difference(b.Namespaces, a.Namespaces))
	}
}

// Intersect returns the constraint admitting what both sides admit.
func Intersect(a, b Constraint) Constraint {
	switch {
	case a.Kind == corpus.WildcardAny:
		return b
	case b.Kind == corpus.WildcardAny:
		return a
	case a.Kind == corpus.WildcardNamespaces && b.Kind == corpus.WildcardNamespaces:
		return Namespaces(intersect(a.Namespaces, b.Namespaces)...)
	case a.Kind == corpus.WildcardNot && b.Kind == corpus.WildcardNot:
		return Not(append(slices.Clone(a.Namespaces), b.Namespaces...)...)
	case a.Kind == corpus.WildcardNamespaces:
		return Namespaces(difference(a.Namespaces, b.Namespaces)...)
	default:
		return Namespaces(difference(b.Namespaces, a.Namespaces)...)
	}
}

// Intersects reports whether some namespace is admitted by both constraints.
func Intersects(a, b Constraint) bool {
	return !Intersect(a, b).IsEmpty()
}

func notOrAny(list []string) Constraint {
	if len(list) == 0 {
		return Any()
	}
	return Not(list...)
}

func intersect(a, b []string) []string {
	var out []string
	for _, ns := range a {
		if contains(b, ns) {
			out = append(out, ns)
		}
	}
	return out
}

func difference(a, b []string) []string {
	var out []string
	for _, ns := range a {
		if !contains(b, ns) {
			out = append(out, ns)
		}
	}
	return out
}

// ProcessStrongerOrEqual reports whether derived is at least as strict as base
// in the order skip < lax < strict.
func ProcessStrongerOrEqual(derived, base corpus.ProcessContents) bool {
	return derived >= base
}

// Strings resolves interned strings; corpus.Builder and corpus.Corpus implement it.
type Strings interface {
	String(id corpus.StringID) string
}

// FromRecord returns the constraint stored in a wildcard record.
func FromRecord(s Strings, rec corpus.WildcardRec) Constraint {
	ns := make([]string, len(rec.Namespaces))
	for i, id := range rec.Namespaces {
		ns[i] = s.String(id)
	}
	return Constraint{Kind: rec.Constraint, Namespaces: normalize(ns)}
}

// Store writes c into rec, interning its namespaces.
func (c Constraint) Store(intern func(string) corpus.StringID, rec *corpus.WildcardRec) {
	rec.Constraint = c.Kind
	rec.Namespaces = make([]corpus.StringID, len(c.Namespaces))
	for i, ns := range c.Namespaces {
		rec.Namespaces[i] = intern(ns)
	}
}
