package value

import (
	"testing"

	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		mode corpus.WhiteSpace
		in   string
		want string
	}{
		{corpus.WhiteSpacePreserve, " a\tb ", " a\tb "},
		{corpus.WhiteSpaceReplace, " a\tb\n", " a b "},
		{corpus.WhiteSpaceCollapse, "  a \t\n b  ", "a b"},
		{corpus.WhiteSpaceCollapse, "", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.mode, tt.in); got != tt.want {
			t.Fatalf("Normalize(%d, %q) = %q, want %q", tt.mode, tt.in, got, tt.want)
		}
	}
}

func TestNameProductions(t *testing.T) {
	tests := []struct {
		in      string
		name    bool
		ncname  bool
		nmtoken bool
	}{
		{"a", true, true, true},
		{"a:b", true, false, true},
		{"1a", false, false, true},
		{"_x-1.2", true, true, true},
		{"", false, false, false},
		{"a b", false, false, false},
	}
	for _, tt := range tests {
		if got := IsName(tt.in); got != tt.name {
			t.Fatalf("IsName(%q) = %v, want %v", tt.in, got, tt.name)
		}
		if got := IsNCName(tt.in); got != tt.ncname {
			t.Fatalf("IsNCName(%q) = %v, want %v", tt.in, got, tt.ncname)
		}
		if got := IsNMTOKEN(tt.in); got != tt.nmtoken {
			t.Fatalf("IsNMTOKEN(%q) = %v, want %v", tt.in, got, tt.nmtoken)
		}
	}
}

func TestParseTemporal(t *testing.T) {
	tests := []struct {
		kind    corpus.DateTimeKind
		in      string
		want    string
		wantErr bool
	}{
		{kind: corpus.KindDateTime, in: "2000-01-15T10:20:30.5Z", want: "2000-01-15T10:20:30.5Z"},
		{kind: corpus.KindDateTime, in: "2000-12-31T24:00:00", want: "2001-01-01T00:00:00"},
		{kind: corpus.KindDateTime, in: "-0044-03-15T12:00:00+01:00", want: "-044-03-15T12:00:00+01:00"},
		{kind: corpus.KindDate, in: "2004-02-29", want: "2004-02-29"},
		{kind: corpus.KindDate, in: "2003-02-29", wantErr: true},
		{kind: corpus.KindDate, in: "0000-01-01", wantErr: true},
		{kind: corpus.KindTime, in: "23:59:59-05:00", want: "23:59:59-05:00"},
		{kind: corpus.KindTime, in: "24:00:01", wantErr: true},
		{kind: corpus.KindGYearMonth, in: "1999-13", wantErr: true},
		{kind: corpus.KindGYear, in: "12000", want: "12000"},
		{kind: corpus.KindGYear, in: "02000", wantErr: true},
		{kind: corpus.KindGMonthDay, in: "--02-29", want: "--02-29"},
		{kind: corpus.KindGDay, in: "---31Z", want: "---31Z"},
		{kind: corpus.KindGMonth, in: "--12", want: "--12"},
		{kind: corpus.KindDateTime, in: "2000-01-01T00:00:00+15:00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTemporal(tt.kind, tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTemporal(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTemporal(%q) error = %v", tt.in, err)
			}
			if got.String() != tt.want {
				t.Fatalf("ParseTemporal(%q) = %s, want %s", tt.in, got.String(), tt.want)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		months  int64
		seconds string
		neg     bool
		wantErr bool
	}{
		{in: "P1Y2M", months: 14, seconds: "0.0"},
		{in: "P1DT1H1M1.5S", seconds: "90061.5"},
		{in: "-PT30M", seconds: "1800.0", neg: true},
		{in: "P", wantErr: true},
		{in: "PT", wantErr: true},
		{in: "P1M1Y", wantErr: true},
		{in: "PT1.5H", wantErr: true},
		{in: "1Y", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDuration(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDuration(%q) error = %v", tt.in, err)
			}
			if got.Months != tt.months || got.Seconds.String() != tt.seconds || got.Negative != tt.neg {
				t.Fatalf("ParseDuration(%q) = %+v (%s)", tt.in, got, got.Seconds.String())
			}
		})
	}
}

func TestParseSpaces(t *testing.T) {
	resolve := func(prefix string) (string, bool) {
		switch prefix {
		case "p":
			return "urn:p", true
		case "":
			return "urn:default", true
		}
		return "", false
	}
	tests := []struct {
		space   Space
		in      string
		kind    corpus.VariantKind
		want    string
		wantErr bool
	}{
		{space: SpaceBoolean, in: "1", kind: corpus.VariantBool, want: "true"},
		{space: SpaceBoolean, in: "yes", wantErr: true},
		{space: SpaceInteger, in: "42", kind: corpus.VariantInt, want: "42"},
		{space: SpaceInteger, in: "9999999999", kind: corpus.VariantLong, want: "9999999999"},
		{space: SpaceDecimal, in: "1.10", kind: corpus.VariantDecimal, want: "1.1"},
		{space: SpaceDouble, in: "INF", kind: corpus.VariantDouble, want: "+Inf"},
		{space: SpaceHexBinary, in: "0aFF", kind: corpus.VariantBinary, want: "0aff"},
		{space: SpaceHexBinary, in: "abc", wantErr: true},
		{space: SpaceBase64Binary, in: "aGk=", kind: corpus.VariantBinary, want: "6869"},
		{space: SpaceQName, in: "p:x", kind: corpus.VariantQName, want: "{urn:p}x"},
		{space: SpaceQName, in: "x", kind: corpus.VariantQName, want: "{urn:default}x"},
		{space: SpaceQName, in: "q:x", wantErr: true},
		{space: SpaceAnyURI, in: "http://a/b%zz", wantErr: true},
		{space: SpaceString, in: "hi", kind: corpus.VariantString, want: `"hi"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.space, tt.in, resolve)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if got.Kind() != tt.kind || got.String() != tt.want {
				t.Fatalf("Parse(%q) = %s %s, want %s %s", tt.in, got.Kind(), got.String(), tt.kind, tt.want)
			}
		})
	}
}
