package num

import (
	"math"
	"math/big"
	"testing"
)

func TestParseInteger(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		errKind ParseErrKind
		wantErr bool
	}{
		{name: "zero", input: "0", want: "0"},
		{name: "neg zero", input: "-0", want: "0"},
		{name: "pos sign", input: "+007", want: "7"},
		{name: "negative", input: "-456", want: "-456"},
		{name: "huge", input: "123456789012345678901234567890", want: "123456789012345678901234567890"},
		{name: "empty", input: "", wantErr: true, errKind: ParseEmpty},
		{name: "sign only", input: "+", wantErr: true, errKind: ParseNoDigits},
		{name: "bad char", input: "12a", wantErr: true, errKind: ParseBadChar},
		{name: "decimal point", input: "1.0", wantErr: true, errKind: ParseBadChar},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseInteger(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				if err.Kind != tc.errKind {
					t.Fatalf("error kind = %v, want %v", err.Kind, tc.errKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tc.want {
				t.Fatalf("ParseInteger(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input    string
		want     string
		total    int
		fraction int
		wantErr  bool
	}{
		{input: "1.50", want: "1.5", total: 2, fraction: 1},
		{input: "-0.005", want: "-0.005", total: 3, fraction: 3},
		{input: ".5", want: "0.5", total: 1, fraction: 1},
		{input: "5.", want: "5.0", total: 1, fraction: 0},
		{input: "000", want: "0.0", total: 1, fraction: 0},
		{input: "1200", want: "1200.0", total: 4, fraction: 0},
		{input: "+12.340", want: "12.34", total: 4, fraction: 2},
		{input: ".", wantErr: true},
		{input: "1.2.3", wantErr: true},
		{input: "1e3", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseDecimal(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimal(%q) expected error", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tc.want {
				t.Fatalf("ParseDecimal(%q) = %s, want %s", tc.input, got.String(), tc.want)
			}
			total, fraction := Digits(got)
			if total != tc.total || fraction != tc.fraction {
				t.Fatalf("Digits(%s) = %d, %d, want %d, %d", tc.input, total, fraction, tc.total, tc.fraction)
			}
		})
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		nan     bool
		wantErr bool
	}{
		{input: "1.5", want: 1.5},
		{input: "-1E4", want: -1e4},
		{input: "INF", want: math.Inf(1)},
		{input: "-INF", want: math.Inf(-1)},
		{input: "NaN", nan: true},
		{input: "+INF", wantErr: true},
		{input: "1e", wantErr: true},
		{input: "e5", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseFloat(tc.input, 64)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseFloat(%q) expected error", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.nan {
				if !math.IsNaN(got) {
					t.Fatalf("ParseFloat(%q) = %v, want NaN", tc.input, got)
				}
				return
			}
			if got != tc.want {
				t.Fatalf("ParseFloat(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestBitWidth(t *testing.T) {
	tests := []struct {
		count int64
		want  int
	}{
		{1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {256, 8}, {257, 9}, {4096, 12},
	}
	for _, tc := range tests {
		if got := BitWidth(big.NewInt(tc.count)); got != tc.want {
			t.Fatalf("BitWidth(%d) = %d, want %d", tc.count, got, tc.want)
		}
	}
}

func TestBuiltinRanges(t *testing.T) {
	r := BuiltinRanges["unsignedByte"]
	if !r.Contains(big.NewInt(255)) || r.Contains(big.NewInt(256)) || r.Contains(big.NewInt(-1)) {
		t.Fatalf("unsignedByte range = [%v, %v]", r.Min, r.Max)
	}
	if !BuiltinRanges["integer"].Contains(mustInt("-99999999999999999999999")) {
		t.Fatalf("integer range should be open")
	}
}
