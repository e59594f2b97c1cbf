package value

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/jacoelho/xsdcorpus/internal/num"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

var temporalNames = map[corpus.DateTimeKind]string{
	corpus.KindDateTime:   "dateTime",
	corpus.KindTime:       "time",
	corpus.KindDate:       "date",
	corpus.KindGYearMonth: "gYearMonth",
	corpus.KindGYear:      "gYear",
	corpus.KindGMonthDay:  "gMonthDay",
	corpus.KindGDay:       "gDay",
	corpus.KindGMonth:     "gMonth",
}

// ParseTemporal parses the lexical form of one of the eight date/time primitives.
func ParseTemporal(kind corpus.DateTimeKind, lexical string) (corpus.DateTime, error) {
	s := TrimXMLWhitespace(lexical)
	bad := func() (corpus.DateTime, error) {
		return corpus.DateTime{}, fmt.Errorf("invalid %s: %q", temporalNames[kind], lexical)
	}
	main, tz := splitTimezone(s)
	out := corpus.DateTime{Kind: kind}
	if tz != "" {
		minutes, ok := parseTimezone(tz)
		if !ok {
			return bad()
		}
		out.HasTZ = true
		out.TZMinutes = minutes
	}

	var ok bool
	switch kind {
	case corpus.KindDateTime:
		date, clock, found := strings.Cut(main, "T")
		if !found {
			return bad()
		}
		if out.Year, out.Month, out.Day, ok = parseYMD(date); !ok {
			return bad()
		}
		if !parseClock(clock, &out) {
			return bad()
		}
	case corpus.KindTime:
		if !parseClock(main, &out) {
			return bad()
		}
	case corpus.KindDate:
		if out.Year, out.Month, out.Day, ok = parseYMD(main); !ok {
			return bad()
		}
	case corpus.KindGYearMonth:
		i := strings.LastIndexByte(main, '-')
		if i <= 0 {
			return bad()
		}
		if out.Year, ok = parseYear(main[:i]); !ok {
			return bad()
		}
		if out.Month, ok = fixedDigits(main[i+1:], 2); !ok || out.Month < 1 || out.Month > 12 {
			return bad()
		}
	case corpus.KindGYear:
		if out.Year, ok = parseYear(main); !ok {
			return bad()
		}
	case corpus.KindGMonthDay:
		if len(main) != 7 || !strings.HasPrefix(main, "--") || main[4] != '-' {
			return bad()
		}
		out.Month, ok = fixedDigits(main[2:4], 2)
		if !ok || out.Month < 1 || out.Month > 12 {
			return bad()
		}
		if out.Day, ok = fixedDigits(main[5:], 2); !ok || out.Day < 1 || out.Day > daysIn(2000, out.Month) {
			return bad()
		}
	case corpus.KindGDay:
		if len(main) != 5 || !strings.HasPrefix(main, "---") {
			return bad()
		}
		if out.Day, ok = fixedDigits(main[3:], 2); !ok || out.Day < 1 || out.Day > 31 {
			return bad()
		}
	case corpus.KindGMonth:
		if len(main) != 4 || !strings.HasPrefix(main, "--") {
			return bad()
		}
		if out.Month, ok = fixedDigits(main[2:], 2); !ok || out.Month < 1 || out.Month > 12 {
			return bad()
		}
	default:
		return bad()
	}
	if out.Hour == 24 {
		out.Hour = 0
		if kind == corpus.KindDateTime {
			out.Year, out.Month, out.Day = nextDay(out.Year, out.Month, out.Day)
		}
	}
	return out, nil
}

func splitTimezone(s string) (string, string) {
	if strings.HasSuffix(s, "Z") {
		return s[:len(s)-1], "Z"
	}
	if len(s) >= 6 {
		tz := s[len(s)-6:]
		if (tz[0] == '+' || tz[0] == '-') && tz[3] == ':' {
			return s[:len(s)-6], tz
		}
	}
	return s, ""
}

func parseTimezone(tz string) (int, bool) {
	if tz == "Z" {
		return 0, true
	}
	hour, ok1 := fixedDigits(tz[1:3], 2)
	minute, ok2 := fixedDigits(tz[4:6], 2)
	if !ok1 || !ok2 || hour > 14 || minute > 59 || (hour == 14 && minute != 0) {
		return 0, false
	}
	minutes := hour*60 + minute
	if tz[0] == '-' {
		minutes = -minutes
	}
	return minutes, true
}

// parseYear accepts an optional minus sign and at least four digits, with no
// leading zero beyond four digits; year zero is rejected.
func parseYear(s string) (int64, bool) {
	digits := strings.TrimPrefix(s, "-")
	if len(digits) < 4 || (len(digits) > 4 && digits[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	y, err := strconv.ParseInt(s, 10, 64)
	if err != nil || y == 0 {
		return 0, false
	}
	return y, true
}

func parseYMD(s string) (int64, int, int, bool) {
	if len(s) < 10 || s[len(s)-3] != '-' || s[len(s)-6] != '-' {
		return 0, 0, 0, false
	}
	year, ok := parseYear(s[:len(s)-6])
	if !ok {
		return 0, 0, 0, false
	}
	month, ok1 := fixedDigits(s[len(s)-5:len(s)-3], 2)
	day, ok2 := fixedDigits(s[len(s)-2:], 2)
	if !ok1 || !ok2 || month < 1 || month > 12 || day < 1 || day > daysIn(year, month) {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

func parseClock(s string, out *corpus.DateTime) bool {
	if len(s) < 8 || s[2] != ':' || s[5] != ':' {
		return false
	}
	var ok1, ok2, ok3 bool
	out.Hour, ok1 = fixedDigits(s[0:2], 2)
	out.Minute, ok2 = fixedDigits(s[3:5], 2)
	out.Second, ok3 = fixedDigits(s[6:8], 2)
	if !ok1 || !ok2 || !ok3 {
		return false
	}
	if rest := s[8:]; rest != "" {
		if rest[0] != '.' || len(rest) == 1 {
			return false
		}
		frac := rest[1:]
		for i := 0; i < len(frac); i++ {
			if frac[i] < '0' || frac[i] > '9' {
				return false
			}
		}
		if len(frac) > 9 {
			frac = frac[:9]
		}
		frac += strings.Repeat("0", 9-len(frac))
		out.Nanos, _ = strconv.Atoi(frac)
	}
	if out.Hour == 24 {
		return out.Minute == 0 && out.Second == 0 && out.Nanos == 0
	}
	return out.Hour < 24 && out.Minute < 60 && out.Second < 60
}

func fixedDigits(s string, n int) (int, bool) {
	if len(s) != n {
		return 0, false
	}
	v := 0
	for i := 0; i < n; i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		v = v*10 + int(s[i]-'0')
	}
	return v, true
}

func isLeap(y int64) bool {
	return (y%4 == 0 && y%100 != 0) || y%400 == 0
}

func daysIn(y int64, m int) int {
	switch m {
	case 2:
		if isLeap(y) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func nextDay(y int64, m, d int) (int64, int, int) {
	d++
	if d > daysIn(y, m) {
		d = 1
		m++
		if m > 12 {
			m = 1
			y++
			if y == 0 {
				y = 1
			}
		}
	}
	return y, m, d
}

// ParseDuration parses an xs:duration lexical value.
func ParseDuration(lexical string) (corpus.Duration, error) {
	s := TrimXMLWhitespace(lexical)
	bad := fmt.Errorf("invalid duration: %q", lexical)
	var out corpus.Duration
	if strings.HasPrefix(s, "-") {
		out.Negative = true
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") {
		return corpus.Duration{}, bad
	}
	s = s[1:]
	datePart, timePart, hasTime := strings.Cut(s, "T")
	if hasTime && timePart == "" {
		return corpus.Duration{}, bad
	}
	seconds := new(big.Rat)
	months := new(big.Int)
	components := 0

	rest := datePart
	for _, unit := range []byte{'Y', 'M', 'D'} {
		n, tail, found, err := durationComponent(rest, unit, false)
		if err != nil {
			return corpus.Duration{}, bad
		}
		if !found {
			continue
		}
		components++
		rest = tail
		v := n.Num()
		switch unit {
		case 'Y':
			months.Add(months, new(big.Int).Mul(v, big.NewInt(12)))
		case 'M':
			months.Add(months, v)
		case 'D':
			seconds.Add(seconds, new(big.Rat).Mul(n, big.NewRat(86400, 1)))
		}
	}
	if rest != "" {
		return corpus.Duration{}, bad
	}
	if hasTime {
		rest = timePart
		timeComponents := 0
		for _, unit := range []byte{'H', 'M', 'S'} {
			n, tail, found, err := durationComponent(rest, unit, unit == 'S')
			if err != nil {
				return corpus.Duration{}, bad
			}
			if !found {
				continue
			}
			timeComponents++
			rest = tail
			switch unit {
			case 'H':
				seconds.Add(seconds, new(big.Rat).Mul(n, big.NewRat(3600, 1)))
			case 'M':
				seconds.Add(seconds, new(big.Rat).Mul(n, big.NewRat(60, 1)))
			case 'S':
				seconds.Add(seconds, n)
			}
		}
		if rest != "" || timeComponents == 0 {
			return corpus.Duration{}, bad
		}
		components += timeComponents
	}
	if components == 0 || !months.IsInt64() {
		return corpus.Duration{}, bad
	}
	out.Months = months.Int64()
	secs, err := num.ParseDecimal(seconds.FloatString(9))
	if err != nil {
		return corpus.Duration{}, bad
	}
	out.Seconds = secs
	return out, nil
}

// durationComponent consumes "<digits>[.<digits>]<unit>" from the head of s when present.
func durationComponent(s string, unit byte, fractional bool) (*big.Rat, string, bool, error) {
	i := 0
	for i < len(s) && ((s[i] >= '0' && s[i] <= '9') || s[i] == '.') {
		i++
	}
	if i == len(s) || s[i] != unit {
		return nil, s, false, nil
	}
	if i == 0 || (!fractional && strings.Contains(s[:i], ".")) {
		return nil, s, false, fmt.Errorf("bad %c component", unit)
	}
	d, perr := num.ParseDecimal(s[:i])
	if perr != nil {
		return nil, s, false, perr
	}
	return d.Rat(), s[i+1:], true, nil
}
