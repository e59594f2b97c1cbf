package derive

import (
	"cmp"
	"slices"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/wildcard"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

type useKey struct {
	ns    string
	local string
}

func (d *deriver) useKey(id corpus.AttributeUseID) useKey {
	attr := d.b.Attribute(d.b.AttributeUse(id).Attribute)
	return useKey{ns: d.b.String(d.b.Namespace(attr.Namespace).URI), local: d.b.String(attr.Name)}
}

func (d *deriver) wildcard(id corpus.WildcardID) wildcard.Constraint {
	return wildcard.FromRecord(d.b, *d.b.Wildcard(id))
}

// checkAttributeUses drops duplicate uses and, for restrictions of a complex
// base, enforces the attribute rules of derivation-ok-restriction.
func (d *deriver) checkAttributeUses(t corpus.TypeID) {
	rec := d.b.ComplexType(t)
	uses := make([]corpus.AttributeUseID, 0, len(rec.AttributeUses))
	seen := make(map[useKey]bool, len(rec.AttributeUses))
	for _, id := range rec.AttributeUses {
		k := d.useKey(id)
		if seen[k] {
			d.report(xsderrors.ErrDuplicateAttributeUse, d.b.AttributeUse(id).Location,
				"type %s: duplicate attribute use %s", d.typeLabel(t), keyString(k))
			continue
		}
		seen[k] = true
		uses = append(uses, id)
	}

	base := rec.Base
	if rec.Derivation == corpus.DerivationRestriction && base != d.builtins.AnyType && d.b.IsComplexType(base) {
		uses = d.restrictUses(t, base, uses)
		d.restrictWildcard(t, base)
	}

	slices.SortStableFunc(uses, func(a, b corpus.AttributeUseID) int {
		ka, kb := d.useKey(a), d.useKey(b)
		if c := cmp.Compare(ka.local, kb.local); c != 0 {
			return c
		}
		return cmp.Compare(ka.ns, kb.ns)
	})
	for i, id := range uses {
		d.b.AttributeUse(id).Position = i
	}
	d.b.ComplexType(t).AttributeUses = uses
}

func (d *deriver) restrictUses(t, base corpus.TypeID, uses []corpus.AttributeUseID) []corpus.AttributeUseID {
	baseRec := d.b.ComplexType(base)
	baseUses := make(map[useKey]corpus.AttributeUseID, len(baseRec.AttributeUses))
	for _, id := range baseRec.AttributeUses {
		baseUses[d.useKey(id)] = id
	}
	baseWildcard := baseRec.AttrWildcard

	kept := uses[:0]
	present := make(map[useKey]bool, len(uses))
	for _, id := range uses {
		k := d.useKey(id)
		if _, ok := baseUses[k]; !ok {
			if baseWildcard == corpus.WildcardID(corpus.Nil) || !d.wildcard(baseWildcard).Allows(k.ns) {
				d.report(xsderrors.ErrRestrictionAttributeNotAllowed, d.b.AttributeUse(id).Location,
					"type %s: attribute %s is not allowed by base type %s", d.typeLabel(t), keyString(k), d.typeLabel(base))
				continue
			}
		}
		present[k] = true
		kept = append(kept, id)
	}

	for _, baseID := range baseRec.AttributeUses {
		bu := d.b.AttributeUse(baseID)
		if !bu.Required {
			continue
		}
		k := d.useKey(baseID)
		if present[k] {
			for _, id := range kept {
				if d.useKey(id) != k || d.b.AttributeUse(id).Required {
					continue
				}
				u := d.b.AttributeUse(id)
				d.report(xsderrors.ErrRestrictionRequiredAttribute, u.Location,
					"type %s: attribute %s is required in base type %s", d.typeLabel(t), keyString(k), d.typeLabel(base))
				u.Required = true
			}
			continue
		}
		d.report(xsderrors.ErrRestrictionRequiredAttribute, d.b.ComplexType(t).Location,
			"type %s: required attribute %s of base type %s is missing", d.typeLabel(t), keyString(k), d.typeLabel(base))
		restored := d.b.NewAttributeUse()
		src := *d.b.AttributeUse(baseID)
		r := d.b.AttributeUse(restored)
		*r = src
		r.Owner = t
		kept = append(kept, restored)
	}
	return kept
}

// restrictWildcard removes an attribute wildcard that is not a subset of the
// base wildcard or whose processContents is weaker.
func (d *deriver) restrictWildcard(t, base corpus.TypeID) {
	rec := d.b.ComplexType(t)
	if rec.AttrWildcard == corpus.WildcardID(corpus.Nil) {
		return
	}
	baseWildcard := d.b.ComplexType(base).AttrWildcard
	if baseWildcard == rec.AttrWildcard {
		return
	}
	if baseWildcard != corpus.WildcardID(corpus.Nil) {
		derived, bw := d.b.Wildcard(rec.AttrWildcard), d.b.Wildcard(baseWildcard)
		if wildcard.Subset(d.wildcard(rec.AttrWildcard), d.wildcard(baseWildcard)) &&
			wildcard.ProcessStrongerOrEqual(derived.Process, bw.Process) {
			return
		}
	}
	d.report(xsderrors.ErrRestrictionWildcard, d.b.Wildcard(rec.AttrWildcard).Location,
		"type %s: attribute wildcard is not a valid restriction of the base wildcard", d.typeLabel(t))
	rec.AttrWildcard = corpus.WildcardID(corpus.Nil)
}

func keyString(k useKey) string {
	if k.ns == "" {
		return k.local
	}
	return "{" + k.ns + "}" + k.local
}
