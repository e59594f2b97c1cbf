package value

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/jacoelho/xsdcorpus/internal/num"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// Space identifies the lexical-to-value mapping of a primitive type. Integer is
// split from Decimal so integer-derived types produce integral variants.
type Space uint8

const (
	SpaceNone Space = iota
	SpaceString
	SpaceBoolean
	SpaceDecimal
	SpaceInteger
	SpaceFloat
	SpaceDouble
	SpaceDuration
	SpaceDateTime
	SpaceTime
	SpaceDate
	SpaceGYearMonth
	SpaceGYear
	SpaceGMonthDay
	SpaceGDay
	SpaceGMonth
	SpaceHexBinary
	SpaceBase64Binary
	SpaceAnyURI
	SpaceQName
	SpaceNotation
)

// Resolver maps a QName prefix to a namespace URI. The empty prefix resolves
// the default namespace.
type Resolver func(prefix string) (string, bool)

// Parse maps a whitespace-normalized lexical value to a variant of the given space.
func Parse(space Space, s string, resolve Resolver) (corpus.Variant, error) {
	switch space {
	case SpaceString:
		return corpus.StringVariant(s), nil
	case SpaceAnyURI:
		if err := ValidateAnyURI(s); err != nil {
			return corpus.Variant{}, err
		}
		return corpus.StringVariant(s), nil
	case SpaceBoolean:
		switch s {
		case "true", "1":
			return corpus.BoolVariant(true), nil
		case "false", "0":
			return corpus.BoolVariant(false), nil
		}
		return corpus.Variant{}, fmt.Errorf("invalid boolean: %q", s)
	case SpaceDecimal:
		d, err := num.ParseDecimal(s)
		if err != nil {
			return corpus.Variant{}, fmt.Errorf("invalid decimal: %w", err)
		}
		return corpus.DecimalVariant(d), nil
	case SpaceInteger:
		v, err := num.ParseInteger(s)
		if err != nil {
			return corpus.Variant{}, fmt.Errorf("invalid integer: %w", err)
		}
		return corpus.IntegerVariant(v), nil
	case SpaceFloat:
		f, err := num.ParseFloat(s, 32)
		if err != nil {
			return corpus.Variant{}, fmt.Errorf("invalid float: %w", err)
		}
		return corpus.FloatVariant(float32(f)), nil
	case SpaceDouble:
		f, err := num.ParseFloat(s, 64)
		if err != nil {
			return corpus.Variant{}, fmt.Errorf("invalid double: %w", err)
		}
		return corpus.DoubleVariant(f), nil
	case SpaceDuration:
		d, err := ParseDuration(s)
		if err != nil {
			return corpus.Variant{}, err
		}
		return corpus.DurationVariant(d), nil
	case SpaceDateTime, SpaceTime, SpaceDate, SpaceGYearMonth, SpaceGYear, SpaceGMonthDay, SpaceGDay, SpaceGMonth:
		dt, err := ParseTemporal(temporalKind(space), s)
		if err != nil {
			return corpus.Variant{}, err
		}
		return corpus.DateTimeVariant(dt), nil
	case SpaceHexBinary:
		if len(s)%2 != 0 {
			return corpus.Variant{}, fmt.Errorf("invalid hexBinary: odd length")
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return corpus.Variant{}, fmt.Errorf("invalid hexBinary: %w", err)
		}
		return corpus.BinaryVariant(b), nil
	case SpaceBase64Binary:
		b, err := base64.StdEncoding.Strict().DecodeString(strings.ReplaceAll(s, " ", ""))
		if err != nil {
			return corpus.Variant{}, fmt.Errorf("invalid base64Binary: %w", err)
		}
		return corpus.BinaryVariant(b), nil
	case SpaceQName, SpaceNotation:
		q, err := ParseQName(s, resolve)
		if err != nil {
			return corpus.Variant{}, err
		}
		return corpus.QNameVariant(q), nil
	default:
		return corpus.Variant{}, fmt.Errorf("no value space")
	}
}

func temporalKind(space Space) corpus.DateTimeKind {
	switch space {
	case SpaceTime:
		return corpus.KindTime
	case SpaceDate:
		return corpus.KindDate
	case SpaceGYearMonth:
		return corpus.KindGYearMonth
	case SpaceGYear:
		return corpus.KindGYear
	case SpaceGMonthDay:
		return corpus.KindGMonthDay
	case SpaceGDay:
		return corpus.KindGDay
	case SpaceGMonth:
		return corpus.KindGMonth
	default:
		return corpus.KindDateTime
	}
}

// ParseQName resolves a lexical QName. An unprefixed name takes the default
// namespace when resolve knows one.
func ParseQName(s string, resolve Resolver) (corpus.QName, error) {
	prefix, local, hasPrefix := strings.Cut(s, ":")
	if !hasPrefix {
		prefix, local = "", s
	}
	if !IsNCName(local) || (hasPrefix && !IsNCName(prefix)) {
		return corpus.QName{}, fmt.Errorf("invalid QName: %q", s)
	}
	var ns string
	if resolve != nil {
		uri, ok := resolve(prefix)
		if !ok && hasPrefix {
			return corpus.QName{}, fmt.Errorf("prefix %s not found in namespace context", prefix)
		}
		ns = uri
	} else if hasPrefix {
		return corpus.QName{}, fmt.Errorf("prefix %s not found in namespace context", prefix)
	}
	return corpus.QName{Namespace: ns, Local: local}, nil
}

// Length measures a value for the length facets: characters for strings and
// URIs, octets for binary values. ok is false for spaces the facets ignore.
func Length(space Space, v corpus.Variant) (int, bool) {
	switch space {
	case SpaceString, SpaceAnyURI:
		return len([]rune(v.Text())), true
	case SpaceHexBinary, SpaceBase64Binary:
		return len(v.Binary()), true
	case SpaceQName, SpaceNotation:
		return 0, false
	default:
		return 0, false
	}
}
