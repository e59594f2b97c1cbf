package num

import (
	"math/big"
	"strings"

	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// ParseDecimal parses an xsd:decimal lexical value. The result is normalized:
// trailing fraction zeros are removed, so Scale counts significant fraction digits.
func ParseDecimal(s string) (corpus.Decimal, *ParseError) {
	if s == "" {
		return corpus.Decimal{}, parseErr(s, ParseEmpty)
	}
	i := 0
	neg := false
	switch s[0] {
	case '+':
		i++
	case '-':
		neg = true
		i++
	}
	var intPart, fracPart string
	body := s[i:]
	dot := strings.IndexByte(body, '.')
	if dot >= 0 {
		if strings.IndexByte(body[dot+1:], '.') >= 0 {
			return corpus.Decimal{}, parseErr(s, ParseMultipleDots)
		}
		intPart, fracPart = body[:dot], body[dot+1:]
	} else {
		intPart = body
	}
	if intPart == "" && fracPart == "" {
		return corpus.Decimal{}, parseErr(s, ParseNoDigits)
	}
	for _, part := range []string{intPart, fracPart} {
		for j := 0; j < len(part); j++ {
			if !isDigit(part[j]) {
				return corpus.Decimal{}, parseErr(s, ParseBadChar)
			}
		}
	}
	fracPart = strings.TrimRight(fracPart, "0")
	digits := strings.TrimLeft(intPart+fracPart, "0")
	if digits == "" {
		return corpus.Decimal{Unscaled: new(big.Int)}, nil
	}
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return corpus.Decimal{}, parseErr(s, ParseInvalid)
	}
	if neg {
		v.Neg(v)
	}
	return corpus.Decimal{Unscaled: v, Scale: int32(len(fracPart))}, nil
}

// Normalize strips trailing zeros from the unscaled value of d while Scale > 0.
func Normalize(d corpus.Decimal) corpus.Decimal {
	if d.Unscaled == nil || d.Unscaled.Sign() == 0 {
		return corpus.Decimal{Unscaled: new(big.Int)}
	}
	u := new(big.Int).Set(d.Unscaled)
	scale := d.Scale
	ten := big.NewInt(10)
	rem := new(big.Int)
	for scale > 0 {
		q, r := new(big.Int).QuoRem(u, ten, rem)
		if r.Sign() != 0 {
			break
		}
		u = q
		scale--
	}
	return corpus.Decimal{Unscaled: u, Scale: scale}
}

// Digits returns the totalDigits and fractionDigits measures of d.
func Digits(d corpus.Decimal) (total, fraction int) {
	n := Normalize(d)
	fraction = int(n.Scale)
	if fraction < 0 {
		fraction = 0
	}
	digits := new(big.Int).Abs(n.Unscaled).String()
	if n.Scale < 0 {
		digits += strings.Repeat("0", int(-n.Scale))
	}
	total = len(digits)
	if n.Unscaled.Sign() == 0 {
		total = 1
	}
	if fraction >= total {
		// 0.005 has one significant digit, but its fraction digits still count.
		total = fraction
	}
	return total, fraction
}

// FromInteger returns v as a zero-scale decimal.
func FromInteger(v *big.Int) corpus.Decimal {
	return corpus.Decimal{Unscaled: new(big.Int).Set(v)}
}
