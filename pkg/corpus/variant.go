package corpus

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// VariantKind identifies the payload stored in a Variant.
type VariantKind uint8

const (
	VariantInvalid VariantKind = iota
	VariantBool
	VariantInt
	VariantLong
	VariantBigInteger
	VariantDecimal
	VariantFloat
	VariantDouble
	VariantString
	VariantBinary
	VariantQName
	VariantDateTime
	VariantDuration
	VariantList
)

var variantKindNames = [...]string{
	VariantInvalid:    "invalid",
	VariantBool:       "bool",
	VariantInt:        "int",
	VariantLong:       "long",
	VariantBigInteger: "integer",
	VariantDecimal:    "decimal",
	VariantFloat:      "float",
	VariantDouble:     "double",
	VariantString:     "string",
	VariantBinary:     "binary",
	VariantQName:      "qname",
	VariantDateTime:   "datetime",
	VariantDuration:   "duration",
	VariantList:       "list",
}

func (k VariantKind) String() string {
	if int(k) < len(variantKindNames) {
		return variantKindNames[k]
	}
	return "invalid"
}

// Decimal is an exact decimal number: Unscaled * 10^-Scale.
type Decimal struct {
	Unscaled *big.Int
	Scale    int32
}

// Rat returns the decimal as an exact rational.
func (d Decimal) Rat() *big.Rat {
	r := new(big.Rat)
	if d.Unscaled == nil {
		return r
	}
	r.SetInt(d.Unscaled)
	if d.Scale == 0 {
		return r
	}
	exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs32(d.Scale))), nil)
	if d.Scale > 0 {
		return r.Quo(r, new(big.Rat).SetInt(exp))
	}
	return r.Mul(r, new(big.Rat).SetInt(exp))
}

// String returns the canonical lexical form of the decimal.
func (d Decimal) String() string {
	if d.Unscaled == nil {
		return "0.0"
	}
	digits := new(big.Int).Abs(d.Unscaled).String()
	neg := d.Unscaled.Sign() < 0
	var s string
	switch {
	case d.Scale <= 0:
		s = digits + strings.Repeat("0", int(-d.Scale)) + ".0"
	case int(d.Scale) >= len(digits):
		s = "0." + strings.Repeat("0", int(d.Scale)-len(digits)) + digits
	default:
		s = digits[:len(digits)-int(d.Scale)] + "." + digits[len(digits)-int(d.Scale):]
	}
	if neg {
		return "-" + s
	}
	return s
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// QName is a resolved qualified name value.
type QName struct {
	Namespace string
	Local     string
}

func (q QName) String() string {
	if q.Namespace == "" {
		return q.Local
	}
	return "{" + q.Namespace + "}" + q.Local
}

// DateTimeKind identifies which date/time primitive a DateTime value belongs to.
type DateTimeKind uint8

const (
	KindDateTime DateTimeKind = iota
	KindTime
	KindDate
	KindGYearMonth
	KindGYear
	KindGMonthDay
	KindGDay
	KindGMonth
)

// DateTime holds the fields of any date/time primitive. Fields that the kind
// does not carry are zero; TZMinutes is meaningful only when HasTZ is set.
type DateTime struct {
	Kind      DateTimeKind
	Year      int64
	Month     int
	Day       int
	Hour      int
	Minute    int
	Second    int
	Nanos     int
	HasTZ     bool
	TZMinutes int
}

func (d DateTime) String() string {
	var b strings.Builder
	switch d.Kind {
	case KindDateTime:
		fmt.Fprintf(&b, "%04d-%02d-%02dT%02d:%02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
	case KindTime:
		fmt.Fprintf(&b, "%02d:%02d:%02d", d.Hour, d.Minute, d.Second)
	case KindDate:
		fmt.Fprintf(&b, "%04d-%02d-%02d", d.Year, d.Month, d.Day)
	case KindGYearMonth:
		fmt.Fprintf(&b, "%04d-%02d", d.Year, d.Month)
	case KindGYear:
		fmt.Fprintf(&b, "%04d", d.Year)
	case KindGMonthDay:
		fmt.Fprintf(&b, "--%02d-%02d", d.Month, d.Day)
	case KindGDay:
		fmt.Fprintf(&b, "---%02d", d.Day)
	case KindGMonth:
		fmt.Fprintf(&b, "--%02d", d.Month)
	}
	if (d.Kind == KindDateTime || d.Kind == KindTime) && d.Nanos > 0 {
		frac := strings.TrimRight(fmt.Sprintf("%09d", d.Nanos), "0")
		b.WriteString("." + frac)
	}
	if d.HasTZ {
		if d.TZMinutes == 0 {
			b.WriteString("Z")
		} else {
			sign := '+'
			m := d.TZMinutes
			if m < 0 {
				sign = '-'
				m = -m
			}
			fmt.Fprintf(&b, "%c%02d:%02d", sign, m/60, m%60)
		}
	}
	return b.String()
}

// Duration is an XSD duration split into a month part and a seconds part.
// Both parts share the sign.
type Duration struct {
	Negative bool
	Months   int64
	Seconds  Decimal
}

func (d Duration) String() string {
	sign := ""
	if d.Negative {
		sign = "-"
	}
	return fmt.Sprintf("%sP%dMT%sS", sign, d.Months, d.Seconds.String())
}

// Variant is a typed schema value: a kind tag plus one native payload.
type Variant struct {
	kind VariantKind
	b    bool
	i    int64
	bi   *big.Int
	dec  Decimal
	f    float64
	s    string
	bin  []byte
	qn   QName
	dt   DateTime
	dur  Duration
	list []VariantID
}

func BoolVariant(v bool) Variant         { return Variant{kind: VariantBool, b: v} }
func IntVariant(v int32) Variant         { return Variant{kind: VariantInt, i: int64(v)} }
func LongVariant(v int64) Variant        { return Variant{kind: VariantLong, i: v} }
func FloatVariant(v float32) Variant     { return Variant{kind: VariantFloat, f: float64(v)} }
func DoubleVariant(v float64) Variant    { return Variant{kind: VariantDouble, f: v} }
func StringVariant(v string) Variant     { return Variant{kind: VariantString, s: v} }
func QNameVariant(v QName) Variant       { return Variant{kind: VariantQName, qn: v} }
func DateTimeVariant(v DateTime) Variant { return Variant{kind: VariantDateTime, dt: v} }

// BigIntegerVariant stores a copy of v.
func BigIntegerVariant(v *big.Int) Variant {
	return Variant{kind: VariantBigInteger, bi: new(big.Int).Set(v)}
}

// IntegerVariant stores v in the narrowest of int, long or big-integer.
func IntegerVariant(v *big.Int) Variant {
	if v.IsInt64() {
		n := v.Int64()
		if n >= -1<<31 && n <= 1<<31-1 {
			return IntVariant(int32(n))
		}
		return LongVariant(n)
	}
	return BigIntegerVariant(v)
}

// DecimalVariant stores a copy of v.
func DecimalVariant(v Decimal) Variant {
	out := Decimal{Scale: v.Scale, Unscaled: new(big.Int)}
	if v.Unscaled != nil {
		out.Unscaled.Set(v.Unscaled)
	}
	return Variant{kind: VariantDecimal, dec: out}
}

// BinaryVariant stores a copy of v.
func BinaryVariant(v []byte) Variant {
	return Variant{kind: VariantBinary, bin: append([]byte{}, v...)}
}

// DurationVariant stores a copy of v.
func DurationVariant(v Duration) Variant {
	d := v
	d.Seconds = DecimalVariant(v.Seconds).dec
	return Variant{kind: VariantDuration, dur: d}
}

// ListVariant stores a copy of items.
func ListVariant(items []VariantID) Variant {
	return Variant{kind: VariantList, list: append([]VariantID{}, items...)}
}

// Kind returns the payload kind.
func (v Variant) Kind() VariantKind { return v.kind }

// IsValid reports whether v carries a payload.
func (v Variant) IsValid() bool { return v.kind != VariantInvalid }

func (v Variant) Bool() bool         { return v.b }
func (v Variant) Int() int32         { return int32(v.i) }
func (v Variant) Long() int64        { return v.i }
func (v Variant) Float() float32     { return float32(v.f) }
func (v Variant) Double() float64    { return v.f }
func (v Variant) Text() string       { return v.s }
func (v Variant) QName() QName       { return v.qn }
func (v Variant) DateTime() DateTime { return v.dt }
func (v Variant) Binary() []byte     { return append([]byte(nil), v.bin...) }
func (v Variant) List() []VariantID  { return append([]VariantID(nil), v.list...) }
func (v Variant) Duration() Duration { return DurationVariant(v.dur).dur }
func (v Variant) Decimal() Decimal   { return DecimalVariant(v.dec).dec }

// BigInteger returns a copy of the big-integer payload.
func (v Variant) BigInteger() *big.Int {
	if v.bi == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v.bi)
}

// Integer returns the value of an int, long or big-integer variant.
func (v Variant) Integer() (*big.Int, bool) {
	switch v.kind {
	case VariantInt, VariantLong:
		return big.NewInt(v.i), true
	case VariantBigInteger:
		return v.BigInteger(), true
	default:
		return nil, false
	}
}

// IsNumeric reports whether v belongs to the decimal value space.
func (v Variant) IsNumeric() bool {
	switch v.kind {
	case VariantInt, VariantLong, VariantBigInteger, VariantDecimal:
		return true
	}
	return false
}

// Rat returns the exact value of a variant in the decimal value space.
func (v Variant) Rat() (*big.Rat, bool) {
	switch v.kind {
	case VariantInt, VariantLong:
		return new(big.Rat).SetInt64(v.i), true
	case VariantBigInteger:
		return new(big.Rat).SetInt(v.bi), true
	case VariantDecimal:
		return v.dec.Rat(), true
	default:
		return nil, false
	}
}

// String renders the variant for diagnostics and dumps. List items are shown by ID.
func (v Variant) String() string {
	switch v.kind {
	case VariantBool:
		return strconv.FormatBool(v.b)
	case VariantInt, VariantLong:
		return strconv.FormatInt(v.i, 10)
	case VariantBigInteger:
		return v.bi.String()
	case VariantDecimal:
		return v.dec.String()
	case VariantFloat:
		return strconv.FormatFloat(v.f, 'G', -1, 32)
	case VariantDouble:
		return strconv.FormatFloat(v.f, 'G', -1, 64)
	case VariantString:
		return strconv.Quote(v.s)
	case VariantBinary:
		return hex.EncodeToString(v.bin)
	case VariantQName:
		return v.qn.String()
	case VariantDateTime:
		return v.dt.String()
	case VariantDuration:
		return v.dur.String()
	case VariantList:
		parts := make([]string, len(v.list))
		for i, id := range v.list {
			parts[i] = "#" + strconv.FormatUint(uint64(id), 10)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return "<invalid>"
	}
}
