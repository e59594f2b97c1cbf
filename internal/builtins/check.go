package builtins

import (
	"fmt"
	"strings"

	"github.com/jacoelho/xsdcorpus/internal/num"
	"github.com/jacoelho/xsdcorpus/internal/value"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// Check enforces the lexical and value restrictions that the builtin type
// name adds beyond its primitive: name productions, whitespace rules of the
// string family, and integer ranges. v is the already parsed value.
func Check(name, lexical string, v corpus.Variant) error {
	for t := name; t != ""; t = byName[t].Base {
		if err := checkOne(t, lexical, v); err != nil {
			return err
		}
	}
	return nil
}

func checkOne(name, s string, v corpus.Variant) error {
	switch name {
	case TypeNameNormalizedString:
		if strings.ContainsAny(s, "\t\n\r") {
			return fmt.Errorf("normalizedString cannot contain CR, LF, or Tab")
		}
	case TypeNameToken:
		return value.ValidateToken(s)
	case TypeNameLanguage:
		return value.ValidateLanguage(s)
	case TypeNameNMTOKEN:
		if !value.IsNMTOKEN(s) {
			return fmt.Errorf("invalid NMTOKEN %q", s)
		}
	case TypeNameName:
		if !value.IsName(s) {
			return fmt.Errorf("invalid Name %q", s)
		}
	case TypeNameNCName:
		if !value.IsNCName(s) {
			return fmt.Errorf("invalid NCName %q", s)
		}
	}
	if r, ok := num.BuiltinRanges[name]; ok {
		n, isInt := v.Integer()
		if !isInt {
			return fmt.Errorf("value %s is not an integer", v)
		}
		if !r.Contains(n) {
			return fmt.Errorf("value %s is out of range for %s", n, name)
		}
	}
	return nil
}

var (
	rangeFacets  = map[string]bool{"minExclusive": true, "maxExclusive": true, "minInclusive": true, "maxInclusive": true}
	digitFacets  = map[string]bool{"totalDigits": true, "fractionDigits": true}
	lengthFacets = map[string]bool{"length": true, "minLength": true, "maxLength": true}
)

// Applicable checks whether a constraining facet may restrict a type of the
// given variety whose primitive ancestor is primitive.
func Applicable(facet string, variety corpus.Variety, primitive string) error {
	if variety == corpus.VarietyUnion {
		switch facet {
		case "pattern", "enumeration":
			return nil
		}
		return fmt.Errorf("facet %s is not applicable to union types", facet)
	}
	if variety == corpus.VarietyList {
		if rangeFacets[facet] || digitFacets[facet] {
			return fmt.Errorf("facet %s is not applicable to list types", facet)
		}
		return nil
	}
	p, ok := byName[primitive]
	if !ok {
		return fmt.Errorf("facet %s is not applicable to %s", facet, primitive)
	}
	switch {
	case rangeFacets[facet] && p.Ordered == OrderedFalse:
		return fmt.Errorf("facet %s is only applicable to ordered types, but %s is not ordered", facet, primitive)
	case digitFacets[facet] && primitive != TypeNameDecimal:
		return fmt.Errorf("facet %s is only applicable to decimal types, but %s is not", facet, primitive)
	case lengthFacets[facet] && (p.Ordered != OrderedFalse || primitive == TypeNameBoolean):
		return fmt.Errorf("facet %s is not applicable to %s", facet, primitive)
	}
	return nil
}
