package derive

import (
	"fmt"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/builtins"
	"github.com/jacoelho/xsdcorpus/internal/graph"
	"github.com/jacoelho/xsdcorpus/internal/num"
	"github.com/jacoelho/xsdcorpus/internal/value"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// val is a validated value not yet stored in the variant table.
type val struct {
	v     corpus.Variant
	list  bool
	items []corpus.Variant
}

func (d *deriver) commit(v val) corpus.VariantID {
	if !v.list {
		return d.b.AddVariant(v.v)
	}
	ids := make([]corpus.VariantID, len(v.items))
	for i, item := range v.items {
		ids[i] = d.b.AddVariant(item)
	}
	return d.b.AddVariant(corpus.ListVariant(ids))
}

// validate checks lexical against simple type t and its effective facets.
func (d *deriver) validate(t corpus.TypeID, lexical string, resolve value.Resolver) (val, error) {
	rec := d.b.SimpleType(t)
	s := value.Normalize(rec.WhiteSpace, lexical)

	var out val
	switch rec.Variety {
	case corpus.VarietyList:
		out.list = true
		for _, item := range value.Fields(s) {
			iv, err := d.validate(rec.ItemType, item, resolve)
			if err != nil {
				return val{}, fmt.Errorf("list item %q: %w", item, err)
			}
			out.items = append(out.items, iv.v)
		}
	case corpus.VarietyUnion:
		matched := false
		for _, m := range rec.MemberTypes {
			mv, err := d.validate(m, lexical, resolve)
			if err == nil {
				out, matched = mv, true
				break
			}
		}
		if !matched {
			return val{}, fmt.Errorf("value %q is not valid for any member type", s)
		}
	case corpus.VarietyAtomic:
		name, _ := d.builtinAncestor(t)
		bt, _ := builtins.Get(name)
		v, err := value.Parse(bt.Space, s, resolve)
		if err != nil {
			return val{}, err
		}
		if err := builtins.Check(name, s, v); err != nil {
			return val{}, err
		}
		out.v = v
	default:
		out.v = corpus.StringVariant(s)
	}
	if err := d.checkFacets(t, s, out); err != nil {
		return val{}, err
	}
	return out, nil
}

// checkFacets enforces the effective facets of t on a parsed value whose
// normalized lexical form is s.
func (d *deriver) checkFacets(t corpus.TypeID, s string, v val) error {
	f := d.b.SimpleType(t).Facets
	if n, ok := d.length(t, v); ok {
		switch {
		case f.Length >= 0 && n != f.Length:
			return fmt.Errorf("length %d differs from length facet %d", n, f.Length)
		case f.MinLength >= 0 && n < f.MinLength:
			return fmt.Errorf("length %d is below minLength %d", n, f.MinLength)
		case f.MaxLength >= 0 && n > f.MaxLength:
			return fmt.Errorf("length %d exceeds maxLength %d", n, f.MaxLength)
		}
	}
	for _, p := range f.Patterns {
		re, err := d.pattern(p)
		if err != nil || re == nil {
			continue
		}
		if !re.MatchString(s) {
			return fmt.Errorf("value %q does not match pattern %q", s, d.b.String(p))
		}
	}
	if len(f.Enumerations) > 0 && !d.anyEnumeration(f.Enumerations, v) {
		return fmt.Errorf("value %q is not in the enumeration", s)
	}
	if v.list {
		return nil
	}
	for _, b := range []struct {
		id   corpus.VariantID
		name string
		ok   func(int) bool
	}{
		{f.MinInclusive, "minInclusive", func(c int) bool { return c >= 0 }},
		{f.MinExclusive, "minExclusive", func(c int) bool { return c > 0 }},
		{f.MaxInclusive, "maxInclusive", func(c int) bool { return c <= 0 }},
		{f.MaxExclusive, "maxExclusive", func(c int) bool { return c < 0 }},
	} {
		if b.id == corpus.NoVariant {
			continue
		}
		c, ok := corpus.Compare(d.b, v.v, d.b.Variant(b.id))
		if !ok || !b.ok(c) {
			return fmt.Errorf("value %s violates %s %s", v.v, b.name, d.b.Variant(b.id))
		}
	}
	if f.TotalDigits >= 0 || f.FractionDigits >= 0 {
		if dec, ok := decimalOf(v.v); ok {
			total, fraction := num.Digits(dec)
			if f.TotalDigits >= 0 && int64(total) > f.TotalDigits {
				return fmt.Errorf("value %s has %d digits, totalDigits is %d", v.v, total, f.TotalDigits)
			}
			if f.FractionDigits >= 0 && int64(fraction) > f.FractionDigits {
				return fmt.Errorf("value %s has %d fraction digits, fractionDigits is %d", v.v, fraction, f.FractionDigits)
			}
		}
	}
	return nil
}

func decimalOf(v corpus.Variant) (corpus.Decimal, bool) {
	if n, ok := v.Integer(); ok {
		return num.FromInteger(n), true
	}
	if v.Kind() == corpus.VariantDecimal {
		return v.Decimal(), true
	}
	return corpus.Decimal{}, false
}

// length measures v for the length facets: items for lists, characters or
// octets for atomic values.
func (d *deriver) length(t corpus.TypeID, v val) (int64, bool) {
	if v.list {
		return int64(len(v.items)), true
	}
	if d.b.SimpleType(t).Variety != corpus.VarietyAtomic {
		return 0, false
	}
	name, _ := d.builtinAncestor(t)
	bt, _ := builtins.Get(name)
	n, ok := value.Length(bt.Space, v.v)
	return int64(n), ok
}

func (d *deriver) anyEnumeration(ids []corpus.VariantID, v val) bool {
	for _, id := range ids {
		if d.sameValue(d.b.Variant(id), v) {
			return true
		}
	}
	return false
}

func (d *deriver) sameValue(stored corpus.Variant, v val) bool {
	if !v.list {
		return corpus.Equal(d.b, stored, v.v)
	}
	if stored.Kind() != corpus.VariantList {
		return false
	}
	ids := stored.List()
	if len(ids) != len(v.items) {
		return false
	}
	for i, id := range ids {
		if !corpus.Equal(d.b, d.b.Variant(id), v.items[i]) {
			return false
		}
	}
	return true
}

// valueType returns the simple type that governs the value of an element of
// type t. Mixed content with an emptiable particle takes string values.
func (d *deriver) valueType(t corpus.TypeID) (corpus.TypeID, error) {
	if d.b.IsSimpleType(t) {
		return t, nil
	}
	ct := d.b.ComplexType(t)
	switch {
	case ct.Content == corpus.ContentSimple:
		return ct.SimpleType, nil
	case ct.Content == corpus.ContentMixed && d.emptiable(ct.Particle):
		return d.builtins.Types[builtins.TypeNameString], nil
	}
	return 0, fmt.Errorf("type %s cannot carry a default or fixed value", d.typeLabel(t))
}

// resolveValue validates a default or fixed value and stores it. An invalid
// value leaves the declaration without a value constraint.
func (d *deriver) resolveValue(p graph.PendingValue) {
	resolve := value.Resolver(p.Scope.Lookup)
	kind := p.Constraint.Kind

	switch d.b.Kind(p.Node) {
	case corpus.KindElement:
		rec := d.b.Element(corpus.ElementID(p.Node))
		rec.Constraint = corpus.ValueConstraint{}
		t, err := d.valueType(rec.Type)
		if err == nil {
			var v val
			if v, err = d.validate(t, p.Constraint.Lexical, resolve); err == nil {
				rec.Constraint = corpus.ValueConstraint{Kind: kind, Value: d.commit(v)}
				return
			}
		}
		d.report(xsderrors.ErrElementValueConstraint, p.Location,
			"element %s: value %q: %v", d.b.String(rec.Name), p.Constraint.Lexical, err)

	case corpus.KindAttribute:
		rec := d.b.Attribute(corpus.AttributeID(p.Node))
		rec.Constraint = corpus.ValueConstraint{}
		if vc, ok := d.attributeValue(rec.Type, p, xsderrors.ErrAttributeValueConstraint, d.b.String(rec.Name)); ok {
			rec.Constraint = vc
		}

	case corpus.KindAttributeUse:
		use := d.b.AttributeUse(corpus.AttributeUseID(p.Node))
		use.Constraint = corpus.ValueConstraint{}
		attr := d.b.Attribute(use.Attribute)
		name := d.b.String(attr.Name)
		vc, ok := d.attributeValue(attr.Type, p, xsderrors.ErrAttributeUseValueConstraint, name)
		if !ok {
			return
		}
		if attr.Constraint.Kind == corpus.ConstraintFixed &&
			(vc.Kind != corpus.ConstraintFixed || !corpus.Equal(d.b, d.b.Variant(vc.Value), d.b.Variant(attr.Constraint.Value))) {
			d.report(xsderrors.ErrAttributeUseValueConstraint, p.Location,
				"attribute %s: use value %q does not match the declaration's fixed value %s",
				name, p.Constraint.Lexical, d.b.Variant(attr.Constraint.Value))
			return
		}
		use.Constraint = vc
	}
}

func (d *deriver) attributeValue(t corpus.TypeID, p graph.PendingValue, code xsderrors.ErrorCode, name string) (corpus.ValueConstraint, bool) {
	if d.derivesFrom(t, d.builtins.Types[builtins.TypeNameID]) {
		d.report(xsderrors.ErrAttributeIDConstraint, p.Location,
			"attribute %s of type ID cannot have a default or fixed value", name)
		return corpus.ValueConstraint{}, false
	}
	v, err := d.validate(t, p.Constraint.Lexical, value.Resolver(p.Scope.Lookup))
	if err != nil {
		d.report(code, p.Location, "attribute %s: value %q: %v", name, p.Constraint.Lexical, err)
		return corpus.ValueConstraint{}, false
	}
	return corpus.ValueConstraint{Kind: p.Constraint.Kind, Value: d.commit(v)}, true
}
