package num

import (
	"errors"
	"math"
	"strconv"
)

// ParseFloat parses an XSD float or double lexical value for the requested bit size.
// INF, -INF and NaN are accepted; "+INF" is not. Out-of-range finite values round
// to the nearest representable value or infinity.
func ParseFloat(s string, bits int) (float64, *ParseError) {
	switch s {
	case "":
		return 0, parseErr(s, ParseEmpty)
	case "INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	}
	if !isFloatLexical(s) {
		return 0, parseErr(s, ParseBadChar)
	}
	f, err := strconv.ParseFloat(s, bits)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, parseErr(s, ParseBadChar)
	}
	return f, nil
}

func isFloatLexical(s string) bool {
	i := 0
	if s[i] == '+' || s[i] == '-' {
		i++
		if i == len(s) {
			return false
		}
	}
	mantissa := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		mantissa++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			mantissa++
		}
	}
	if mantissa == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}
