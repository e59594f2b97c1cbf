package num

import "math/big"

// ParseInteger parses an xsd:integer lexical value: optional sign followed by
// one or more digits.
func ParseInteger(s string) (*big.Int, *ParseError) {
	if s == "" {
		return nil, parseErr(s, ParseEmpty)
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}
	if i == len(s) {
		return nil, parseErr(s, ParseNoDigits)
	}
	for j := i; j < len(s); j++ {
		if !isDigit(s[j]) {
			return nil, parseErr(s, ParseBadChar)
		}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, parseErr(s, ParseInvalid)
	}
	return v, nil
}

// Range is an inclusive integer interval; a nil bound is open.
type Range struct {
	Min *big.Int
	Max *big.Int
}

// Contains reports whether v lies inside r.
func (r Range) Contains(v *big.Int) bool {
	if r.Min != nil && v.Cmp(r.Min) < 0 {
		return false
	}
	if r.Max != nil && v.Cmp(r.Max) > 0 {
		return false
	}
	return true
}

func mustInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("num: bad constant " + s)
	}
	return v
}

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
)

// BuiltinRanges holds the value ranges of the integer-derived builtin types.
var BuiltinRanges = map[string]Range{
	"integer":            {},
	"nonPositiveInteger": {Max: zero},
	"negativeInteger":    {Max: big.NewInt(-1)},
	"nonNegativeInteger": {Min: zero},
	"positiveInteger":    {Min: one},
	"long":               {Min: mustInt("-9223372036854775808"), Max: mustInt("9223372036854775807")},
	"int":                {Min: big.NewInt(-2147483648), Max: big.NewInt(2147483647)},
	"short":              {Min: big.NewInt(-32768), Max: big.NewInt(32767)},
	"byte":               {Min: big.NewInt(-128), Max: big.NewInt(127)},
	"unsignedLong":       {Min: zero, Max: mustInt("18446744073709551615")},
	"unsignedInt":        {Min: zero, Max: big.NewInt(4294967295)},
	"unsignedShort":      {Min: zero, Max: big.NewInt(65535)},
	"unsignedByte":       {Min: zero, Max: big.NewInt(255)},
}

// BitWidth returns the number of bits needed to encode count distinct values:
// ceil(log2(count)), and 0 for a single value.
func BitWidth(count *big.Int) int {
	if count.Cmp(one) <= 0 {
		return 0
	}
	return new(big.Int).Sub(count, one).BitLen()
}
