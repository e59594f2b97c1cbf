package derive

import (
	"errors"
	"strings"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/builtins"
	"github.com/jacoelho/xsdcorpus/internal/graph"
	"github.com/jacoelho/xsdcorpus/internal/num"
	"github.com/jacoelho/xsdcorpus/internal/value"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

const (
	facetLength         = "length"
	facetMinLength      = "minLength"
	facetMaxLength      = "maxLength"
	facetTotalDigits    = "totalDigits"
	facetFractionDigits = "fractionDigits"
	facetPattern        = "pattern"
	facetEnumeration    = "enumeration"
	facetWhiteSpace     = "whiteSpace"
	facetMinInclusive   = "minInclusive"
	facetMaxInclusive   = "maxInclusive"
	facetMinExclusive   = "minExclusive"
	facetMaxExclusive   = "maxExclusive"
)

var restrictionCodes = map[string]xsderrors.ErrorCode{
	facetLength:         xsderrors.ErrLengthRestriction,
	facetMinLength:      xsderrors.ErrMinLengthRestriction,
	facetMaxLength:      xsderrors.ErrMaxLengthRestriction,
	facetTotalDigits:    xsderrors.ErrTotalDigitsRestriction,
	facetFractionDigits: xsderrors.ErrFractionDigitsRestriction,
	facetMinInclusive:   xsderrors.ErrMinInclusiveRestriction,
	facetMaxInclusive:   xsderrors.ErrMaxInclusiveRestriction,
	facetMinExclusive:   xsderrors.ErrMinExclusiveRestriction,
	facetMaxExclusive:   xsderrors.ErrMaxExclusiveRestriction,
}

// facetStep is the set of facets one restriction step declares, after each
// one passed its own checks.
type facetStep struct {
	base     corpus.Facets
	next     corpus.Facets
	set      map[string]corpus.Location
	patterns []string
	enums    []corpus.VariantID
	bounds   map[string]corpus.VariantID
}

func (s *facetStep) has(name string) bool {
	_, ok := s.set[name]
	return ok
}

// deriveSimpleType computes the effective facets of a user simple type from
// its base's effective facets and the facets it declares.
func (d *deriver) deriveSimpleType(p graph.PendingSimpleType) {
	rec := d.b.SimpleType(p.Type)
	if rec.Derivation != corpus.DerivationRestriction {
		return
	}
	baseRec := d.b.SimpleType(rec.Base)
	rec.Facets = baseRec.Facets.Clone()
	rec.WhiteSpace = baseRec.WhiteSpace
	if len(p.Facets) == 0 {
		d.fixed[p.Type] = d.fixed[rec.Base]
		return
	}

	step := &facetStep{
		base:   baseRec.Facets,
		next:   baseRec.Facets.Clone(),
		set:    make(map[string]corpus.Location),
		bounds: make(map[string]corpus.VariantID),
	}
	fixed := make(map[string]bool, len(d.fixed[rec.Base]))
	for name := range d.fixed[rec.Base] {
		fixed[name] = true
	}
	primitive := d.names[rec.Primitive]
	resolve := value.Resolver(p.Scope.Lookup)
	ws := rec.WhiteSpace

	for _, f := range p.Facets {
		if err := builtins.Applicable(f.Name, rec.Variety, primitive); err != nil {
			d.report(xsderrors.ErrFacetNotApplicable, f.Location, "type %s: %v", d.typeLabel(p.Type), err)
			continue
		}
		ok := false
		switch f.Name {
		case facetLength, facetMinLength, facetMaxLength, facetTotalDigits, facetFractionDigits:
			ok = d.intFacet(step, f, fixed[f.Name])
		case facetWhiteSpace:
			ok = d.whiteSpaceFacet(f, baseRec.WhiteSpace, &ws, fixed[f.Name])
		case facetPattern:
			ok = d.patternFacet(step, f)
		case facetEnumeration:
			v, err := d.validate(rec.Base, f.Lexical, resolve)
			if err != nil {
				d.report(xsderrors.ErrEnumerationRestriction, f.Location,
					"enumeration value %q is not valid for base type %s: %v", f.Lexical, d.typeLabel(rec.Base), err)
				continue
			}
			step.enums = append(step.enums, d.commit(v))
			ok = true
		case facetMinInclusive, facetMaxInclusive, facetMinExclusive, facetMaxExclusive:
			ok = d.boundFacet(step, p.Type, f, resolve, fixed[f.Name])
		}
		if !ok {
			continue
		}
		step.set[f.Name] = f.Location
		if f.Fixed {
			fixed[f.Name] = true
		}
	}

	if len(step.patterns) > 0 {
		step.next.Patterns = append(step.next.Patterns, d.b.Intern(joinPatterns(step.patterns)))
	}
	if len(step.enums) > 0 {
		step.next.Enumerations = step.enums
	}
	d.applyBounds(step)
	d.checkRelations(p.Type, step)

	rec = d.b.SimpleType(p.Type)
	rec.Facets = step.next
	rec.WhiteSpace = ws
	d.fixed[p.Type] = fixed
}

// joinPatterns combines the patterns of one step; they are alternatives.
func joinPatterns(patterns []string) string {
	if len(patterns) == 1 {
		return patterns[0]
	}
	parts := make([]string, len(patterns))
	for i, p := range patterns {
		parts[i] = "(" + p + ")"
	}
	return strings.Join(parts, "|")
}

func (d *deriver) intFacet(step *facetStep, f graph.PendingFacet, fixed bool) bool {
	lexical := value.Normalize(corpus.WhiteSpaceCollapse, f.Lexical)
	n, perr := num.ParseInteger(lexical)
	if perr != nil || n.Sign() < 0 || !n.IsInt64() || (f.Name == facetTotalDigits && n.Sign() == 0) {
		d.report(xsderrors.ErrDatatypeInvalid, f.Location, "invalid %s value %q", f.Name, f.Lexical)
		return false
	}
	v := n.Int64()
	base := step.base
	var baseValue int64
	var legal bool
	switch f.Name {
	case facetLength:
		baseValue = base.Length
		legal = (base.Length < 0 || v == base.Length) &&
			(base.MinLength < 0 || v >= base.MinLength) &&
			(base.MaxLength < 0 || v <= base.MaxLength)
	case facetMinLength:
		baseValue = base.MinLength
		legal = (base.MinLength < 0 || v >= base.MinLength) &&
			(base.MaxLength < 0 || v <= base.MaxLength) &&
			(base.Length < 0 || v <= base.Length)
	case facetMaxLength:
		baseValue = base.MaxLength
		legal = (base.MaxLength < 0 || v <= base.MaxLength) &&
			(base.MinLength < 0 || v >= base.MinLength) &&
			(base.Length < 0 || v >= base.Length)
	case facetTotalDigits:
		baseValue = base.TotalDigits
		legal = base.TotalDigits < 0 || v <= base.TotalDigits
	case facetFractionDigits:
		baseValue = base.FractionDigits
		legal = base.FractionDigits < 0 || v <= base.FractionDigits
	}
	if fixed && v != baseValue {
		d.report(restrictionCodes[f.Name], f.Location, "%s is fixed to %d in the base type, got %d", f.Name, baseValue, v)
		return false
	}
	if !legal {
		d.report(restrictionCodes[f.Name], f.Location, "%s %d is not a valid restriction of the base facets", f.Name, v)
		return false
	}
	switch f.Name {
	case facetLength:
		step.next.Length = v
	case facetMinLength:
		step.next.MinLength = v
	case facetMaxLength:
		step.next.MaxLength = v
	case facetTotalDigits:
		step.next.TotalDigits = v
	case facetFractionDigits:
		step.next.FractionDigits = v
	}
	return true
}

func (d *deriver) whiteSpaceFacet(f graph.PendingFacet, base corpus.WhiteSpace, ws *corpus.WhiteSpace, fixed bool) bool {
	var mode corpus.WhiteSpace
	switch value.Normalize(corpus.WhiteSpaceCollapse, f.Lexical) {
	case "preserve":
		mode = corpus.WhiteSpacePreserve
	case "replace":
		mode = corpus.WhiteSpaceReplace
	case "collapse":
		mode = corpus.WhiteSpaceCollapse
	default:
		d.report(xsderrors.ErrDatatypeInvalid, f.Location, "invalid whiteSpace value %q", f.Lexical)
		return false
	}
	if mode < base || (fixed && mode != base) {
		d.report(xsderrors.ErrFacetViolation, f.Location, "whiteSpace %s cannot restrict the base whiteSpace", f.Lexical)
		return false
	}
	*ws = mode
	return true
}

func (d *deriver) patternFacet(step *facetStep, f graph.PendingFacet) bool {
	if _, err := translatePattern(f.Lexical); err != nil {
		if isUnsupported(err) {
			d.warn(xsderrors.ErrPatternInvalid, f.Location, "pattern %q is kept but not enforced: %v", f.Lexical, err)
			step.patterns = append(step.patterns, f.Lexical)
			return true
		}
		d.report(xsderrors.ErrPatternInvalid, f.Location, "invalid pattern %q: %v", f.Lexical, err)
		return false
	}
	if _, err := d.pattern(d.b.Intern(f.Lexical)); err != nil {
		d.report(xsderrors.ErrPatternInvalid, f.Location, "invalid pattern %q: %v", f.Lexical, err)
		return false
	}
	step.patterns = append(step.patterns, f.Lexical)
	return true
}

// boundFacet parses a bound facet in the value space of the primitive and
// checks it against the base bounds.
func (d *deriver) boundFacet(step *facetStep, t corpus.TypeID, f graph.PendingFacet, resolve value.Resolver, fixed bool) bool {
	name, _ := d.builtinAncestor(t)
	bt, _ := builtins.Get(name)
	v, err := value.Parse(bt.Space, value.Normalize(corpus.WhiteSpaceCollapse, f.Lexical), resolve)
	if err != nil {
		d.report(xsderrors.ErrDatatypeInvalid, f.Location, "invalid %s value %q: %v", f.Name, f.Lexical, err)
		return false
	}
	base := step.base
	baseID := map[string]corpus.VariantID{
		facetMinInclusive: base.MinInclusive,
		facetMaxInclusive: base.MaxInclusive,
		facetMinExclusive: base.MinExclusive,
		facetMaxExclusive: base.MaxExclusive,
	}[f.Name]
	if fixed && baseID != corpus.NoVariant && !corpus.Equal(d.b, v, d.b.Variant(baseID)) {
		d.report(restrictionCodes[f.Name], f.Location, "%s is fixed to %s in the base type", f.Name, d.b.Variant(baseID))
		return false
	}
	if !d.boundLegal(f.Name, v, base) {
		d.report(restrictionCodes[f.Name], f.Location, "%s %s is not a valid restriction of the base bounds", f.Name, v)
		return false
	}
	step.bounds[f.Name] = d.b.AddVariant(v)
	return true
}

// boundLegal applies the *-valid-restriction rules of one bound facet.
// Unordered pairs are not violations.
func (d *deriver) boundLegal(name string, v corpus.Variant, base corpus.Facets) bool {
	holds := func(id corpus.VariantID, ok func(int) bool) bool {
		if id == corpus.NoVariant {
			return true
		}
		c, ordered := corpus.Compare(d.b, v, d.b.Variant(id))
		return !ordered || ok(c)
	}
	ge := func(c int) bool { return c >= 0 }
	gt := func(c int) bool { return c > 0 }
	le := func(c int) bool { return c <= 0 }
	lt := func(c int) bool { return c < 0 }
	switch name {
	case facetMinInclusive:
		return holds(base.MinInclusive, ge) && holds(base.MaxInclusive, le) &&
			holds(base.MinExclusive, gt) && holds(base.MaxExclusive, lt)
	case facetMaxInclusive:
		return holds(base.MaxInclusive, le) && holds(base.MinInclusive, ge) &&
			holds(base.MinExclusive, gt) && holds(base.MaxExclusive, lt)
	case facetMinExclusive:
		return holds(base.MinExclusive, ge) && holds(base.MaxInclusive, le) &&
			holds(base.MinInclusive, ge) && holds(base.MaxExclusive, lt)
	case facetMaxExclusive:
		return holds(base.MaxExclusive, le) && holds(base.MaxInclusive, le) &&
			holds(base.MinInclusive, gt) && holds(base.MinExclusive, gt)
	}
	return true
}

// applyBounds moves the step's bounds into the effective set. A new lower or
// upper bound replaces both inherited forms of that side.
func (d *deriver) applyBounds(step *facetStep) {
	if step.has(facetMinInclusive) && step.has(facetMinExclusive) {
		d.report(xsderrors.ErrMinInclusiveMinExclusive, step.set[facetMinExclusive],
			"minInclusive and minExclusive cannot both be specified")
		delete(step.bounds, facetMinExclusive)
		delete(step.set, facetMinExclusive)
	}
	if step.has(facetMaxInclusive) && step.has(facetMaxExclusive) {
		d.report(xsderrors.ErrMaxInclusiveMaxExclusive, step.set[facetMaxExclusive],
			"maxInclusive and maxExclusive cannot both be specified")
		delete(step.bounds, facetMaxExclusive)
		delete(step.set, facetMaxExclusive)
	}
	if id, ok := step.bounds[facetMinInclusive]; ok {
		step.next.MinInclusive, step.next.MinExclusive = id, corpus.NoVariant
	}
	if id, ok := step.bounds[facetMinExclusive]; ok {
		step.next.MinExclusive, step.next.MinInclusive = id, corpus.NoVariant
	}
	if id, ok := step.bounds[facetMaxInclusive]; ok {
		step.next.MaxInclusive, step.next.MaxExclusive = id, corpus.NoVariant
	}
	if id, ok := step.bounds[facetMaxExclusive]; ok {
		step.next.MaxExclusive, step.next.MaxInclusive = id, corpus.NoVariant
	}
}

// checkRelations enforces the constraints between facets of the effective
// set. A violation reverts the facets this step declared to the base values.
func (d *deriver) checkRelations(t corpus.TypeID, step *facetStep) {
	next, base := &step.next, step.base
	label := d.typeLabel(t)
	where := func(names ...string) corpus.Location {
		for _, n := range names {
			if loc, ok := step.set[n]; ok {
				return loc
			}
		}
		return d.b.SimpleType(t).Location
	}

	if step.has(facetLength) && (step.has(facetMinLength) || step.has(facetMaxLength)) {
		if (next.MinLength >= 0 && next.MinLength > next.Length) || (next.MaxLength >= 0 && next.MaxLength < next.Length) {
			d.report(xsderrors.ErrLengthWithMinMax, where(facetMinLength, facetMaxLength),
				"type %s: length %d conflicts with minLength/maxLength", label, next.Length)
			next.MinLength, next.MaxLength = base.MinLength, base.MaxLength
		}
	}
	if next.MinLength >= 0 && next.MaxLength >= 0 && next.MinLength > next.MaxLength {
		d.report(xsderrors.ErrMinLengthGreaterThanMax, where(facetMinLength, facetMaxLength),
			"type %s: minLength %d is greater than maxLength %d", label, next.MinLength, next.MaxLength)
		next.MinLength, next.MaxLength = base.MinLength, base.MaxLength
	}
	if next.FractionDigits >= 0 && next.TotalDigits >= 0 && next.FractionDigits > next.TotalDigits {
		d.report(xsderrors.ErrFractionDigitsTotalDigits, where(facetFractionDigits, facetTotalDigits),
			"type %s: fractionDigits %d is greater than totalDigits %d", label, next.FractionDigits, next.TotalDigits)
		next.FractionDigits, next.TotalDigits = base.FractionDigits, base.TotalDigits
	}

	for _, rel := range []struct {
		lower, upper corpus.VariantID
		ok           func(int) bool
		code         xsderrors.ErrorCode
		text         string
	}{
		{next.MinInclusive, next.MaxInclusive, func(c int) bool { return c <= 0 }, xsderrors.ErrMinInclusiveMaxInclusive, "minInclusive must be <= maxInclusive"},
		{next.MinExclusive, next.MaxExclusive, func(c int) bool { return c < 0 }, xsderrors.ErrMinExclusiveMaxExclusive, "minExclusive must be < maxExclusive"},
		{next.MinExclusive, next.MaxInclusive, func(c int) bool { return c < 0 }, xsderrors.ErrMinExclusiveMaxInclusive, "minExclusive must be < maxInclusive"},
		{next.MinInclusive, next.MaxExclusive, func(c int) bool { return c < 0 }, xsderrors.ErrMinInclusiveMaxExclusive, "minInclusive must be < maxExclusive"},
	} {
		if rel.lower == corpus.NoVariant || rel.upper == corpus.NoVariant {
			continue
		}
		c, ordered := corpus.CompareVariants(d.b, rel.lower, rel.upper)
		if !ordered || rel.ok(c) {
			continue
		}
		d.report(rel.code, where(facetMinInclusive, facetMinExclusive, facetMaxInclusive, facetMaxExclusive),
			"type %s: %s", label, rel.text)
		next.MinInclusive, next.MinExclusive = base.MinInclusive, base.MinExclusive
		next.MaxInclusive, next.MaxExclusive = base.MaxInclusive, base.MaxExclusive
		break
	}
}

func isUnsupported(err error) bool {
	return errors.Is(err, errPatternUnsupported)
}
