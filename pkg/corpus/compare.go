package corpus

import (
	"bytes"
	"math"
	"math/big"
)

// VariantTable resolves variant IDs. Builder and Corpus both implement it.
type VariantTable interface {
	Variant(id VariantID) Variant
}

// tzSlack is the maximum timezone offset, in seconds, used by the partial
// order between zoned and unzoned date/time values.
const tzSlack = 14 * 3600

// CompareVariants orders the variants stored at a and b. The boolean result is
// false when the pair is unordered: different value spaces, NaN, indeterminate
// date/time or duration pairs, or unordered kinds that are not equal.
func CompareVariants(t VariantTable, a, b VariantID) (int, bool) {
	return Compare(t, t.Variant(a), t.Variant(b))
}

// Compare orders two variant values; see CompareVariants.
func Compare(t VariantTable, a, b Variant) (int, bool) {
	switch {
	case a.IsNumeric() && b.IsNumeric():
		return compareNumeric(a, b)
	case isFloating(a) && isFloating(b):
		return compareFloat(a.f, b.f)
	case a.kind == VariantDateTime && b.kind == VariantDateTime:
		return compareDateTime(a.dt, b.dt)
	case a.kind == VariantDuration && b.kind == VariantDuration:
		return compareDuration(a.dur, b.dur)
	}
	if Equal(t, a, b) {
		return 0, true
	}
	return 0, false
}

// Equal reports whether two variants denote the same value.
func Equal(t VariantTable, a, b Variant) bool {
	switch {
	case a.IsNumeric() && b.IsNumeric():
		c, ok := compareNumeric(a, b)
		return ok && c == 0
	case isFloating(a) && isFloating(b):
		if math.IsNaN(a.f) && math.IsNaN(b.f) {
			return true
		}
		return a.f == b.f
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case VariantBool:
		return a.b == b.b
	case VariantString:
		return a.s == b.s
	case VariantBinary:
		return bytes.Equal(a.bin, b.bin)
	case VariantQName:
		return a.qn == b.qn
	case VariantDateTime:
		c, ok := compareDateTime(a.dt, b.dt)
		return ok && c == 0
	case VariantDuration:
		c, ok := compareDuration(a.dur, b.dur)
		return ok && c == 0
	case VariantList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(t, t.Variant(a.list[i]), t.Variant(b.list[i])) {
				return false
			}
		}
		return true
	case VariantInvalid:
		return true
	}
	return false
}

func isFloating(v Variant) bool {
	return v.kind == VariantFloat || v.kind == VariantDouble
}

func compareNumeric(a, b Variant) (int, bool) {
	if (a.kind == VariantInt || a.kind == VariantLong) && (b.kind == VariantInt || b.kind == VariantLong) {
		switch {
		case a.i < b.i:
			return -1, true
		case a.i > b.i:
			return 1, true
		default:
			return 0, true
		}
	}
	ra, _ := a.Rat()
	rb, _ := b.Rat()
	return ra.Cmp(rb), true
}

func compareFloat(a, b float64) (int, bool) {
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return 0, false
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	default:
		return 0, true
	}
}

// timeline returns the position of d in seconds (UTC when zoned) plus nanos.
func timeline(d DateTime) (int64, int) {
	year, month, day := d.Year, d.Month, d.Day
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	switch d.Kind {
	case KindTime:
		year, month, day = 1972, 12, 31
	case KindGMonthDay, KindGDay, KindGMonth:
		year = 1972
	}
	secs := daysFromCivil(year, month, day)*86400 + int64(d.Hour)*3600 + int64(d.Minute)*60 + int64(d.Second)
	if d.HasTZ {
		secs -= int64(d.TZMinutes) * 60
	}
	return secs, d.Nanos
}

// daysFromCivil converts a proleptic Gregorian date to days since 1970-01-01.
func daysFromCivil(y int64, m, d int) int64 {
	if m <= 2 {
		y--
	}
	era := y / 400
	if y < 0 && y%400 != 0 {
		era--
	}
	yoe := y - era*400
	mp := int64((m + 9) % 12)
	doy := (153*mp+2)/5 + int64(d) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

func cmpInstant(as int64, an int, bs int64, bn int) int {
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	case an < bn:
		return -1
	case an > bn:
		return 1
	default:
		return 0
	}
}

func compareDateTime(a, b DateTime) (int, bool) {
	if a.Kind != b.Kind {
		return 0, false
	}
	as, an := timeline(a)
	bs, bn := timeline(b)
	if a.HasTZ == b.HasTZ {
		return cmpInstant(as, an, bs, bn), true
	}
	// One side is unzoned: it is ordered only when it stays on the same side
	// for every possible offset.
	if !a.HasTZ {
		if cmpInstant(as+tzSlack, an, bs, bn) < 0 {
			return -1, true
		}
		if cmpInstant(as-tzSlack, an, bs, bn) > 0 {
			return 1, true
		}
		return 0, false
	}
	if cmpInstant(as, an, bs-tzSlack, bn) < 0 {
		return -1, true
	}
	if cmpInstant(as, an, bs+tzSlack, bn) > 0 {
		return 1, true
	}
	return 0, false
}

// durationReferences are the first days of the months from which durations
// are ordered: a pair is ordered only when adding either duration to each of
// these dates orders the results the same way.
var durationReferences = [...]struct{ year, month int64 }{
	{1696, 9}, {1697, 2}, {1903, 3}, {1903, 7},
}

func compareDuration(a, b Duration) (int, bool) {
	am, bm := signedMonths(a), signedMonths(b)
	ds := new(big.Rat).Sub(signedSeconds(a), signedSeconds(b))
	if am == bm {
		return ds.Sign(), true
	}
	result := 0
	for i, ref := range durationReferences {
		days := monthSpan(ref.year, ref.month, am) - monthSpan(ref.year, ref.month, bm)
		diff := new(big.Rat).SetInt(new(big.Int).Mul(big.NewInt(days), big.NewInt(86400)))
		c := diff.Add(diff, ds).Sign()
		if i == 0 {
			result = c
		} else if c != result {
			return 0, false
		}
	}
	return result, true
}

// monthSpan returns the number of days from the first of year-month to the
// first of the month that lies months later.
func monthSpan(year, month, months int64) int64 {
	total := year*12 + month - 1 + months
	y := floorDiv(total, 12)
	return civilDays(y, total-y*12+1) - civilDays(year, month)
}

// civilDays counts the days from a fixed epoch to the first of year-month in
// the proleptic Gregorian calendar.
func civilDays(year, month int64) int64 {
	if month <= 2 {
		year--
	}
	era := floorDiv(year, 400)
	yoe := year - era*400
	doy := (153*((month+9)%12) + 2) / 5
	return era*146097 + yoe*365 + yoe/4 - yoe/100 + doy
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func signedMonths(d Duration) int64 {
	if d.Negative {
		return -d.Months
	}
	return d.Months
}

func signedSeconds(d Duration) *big.Rat {
	r := d.Seconds.Rat()
	if d.Negative {
		r.Neg(r)
	}
	return r
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
