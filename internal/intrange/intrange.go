// Package intrange computes the integral codec hint of every simple type
// derived from xsd:integer.
package intrange

import (
	"log/slog"
	"math/big"
	"math/bits"

	"github.com/jacoelho/xsdcorpus/internal/builtins"
	"github.com/jacoelho/xsdcorpus/internal/graph"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// MaxBoundedValues is the largest range size encoded as an n-bit integer.
const MaxBoundedValues = 4096

// Range is an inclusive integer interval; a nil end is unbounded.
type Range struct {
	Min *big.Int
	Max *big.Int
}

// Classify returns the codec kind and bit width for a range.
func Classify(r Range) (corpus.IntegralKind, uint8) {
	if r.Min != nil && r.Max != nil {
		size := new(big.Int).Sub(r.Max, r.Min)
		if size.Sign() >= 0 && size.Cmp(big.NewInt(MaxBoundedValues-1)) <= 0 {
			// width = ceil(log2(size+1)), size+1 values
			return corpus.IntegralBounded, uint8(bits.Len64(size.Uint64()))
		}
	}
	if r.Min != nil && r.Min.Sign() >= 0 {
		return corpus.IntegralNonNegative, 0
	}
	return corpus.IntegralUnconstrained, 0
}

// Effective converts the bound facets of a type into an inclusive range.
// Exclusive bounds move inward by one; fractional bounds round inward.
func Effective(table corpus.VariantTable, f corpus.Facets) Range {
	var r Range
	if lo, ok := rat(table, f.MinInclusive); ok {
		r.Min = ceil(lo)
	} else if lo, ok := rat(table, f.MinExclusive); ok {
		r.Min = floor(lo)
		r.Min.Add(r.Min, big.NewInt(1))
	}
	if hi, ok := rat(table, f.MaxInclusive); ok {
		r.Max = floor(hi)
	} else if hi, ok := rat(table, f.MaxExclusive); ok {
		r.Max = ceil(hi)
		r.Max.Sub(r.Max, big.NewInt(1))
	}
	return r
}

func rat(table corpus.VariantTable, id corpus.VariantID) (*big.Rat, bool) {
	if id == corpus.NoVariant {
		return nil, false
	}
	return table.Variant(id).Rat()
}

// floor relies on Div being Euclidean and the denominator being positive.
func floor(r *big.Rat) *big.Int {
	return new(big.Int).Div(r.Num(), r.Denom())
}

func ceil(r *big.Rat) *big.Int {
	q := floor(new(big.Rat).Neg(r))
	return q.Neg(q)
}

// Run sets the Integral hint of every atomic simple type whose base chain
// reaches xsd:integer. Other types keep IntegralNone.
func Run(b *corpus.Builder, logger *slog.Logger, bt graph.Builtins) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	integer, ok := bt.Types[builtins.TypeNameInteger]
	if !ok {
		return
	}
	counts := make(map[corpus.IntegralKind]int)
	for n := corpus.NodeID(1); int(n) < b.Len(); n++ {
		if b.Kind(n) != corpus.KindSimpleType {
			continue
		}
		id := corpus.TypeID(n)
		rec := b.SimpleType(id)
		if rec.Variety != corpus.VarietyAtomic || !reaches(b, id, integer) {
			continue
		}
		r := Effective(b, rec.Facets)
		kind, width := Classify(r)
		hint := corpus.IntegralHint{Kind: kind}
		if kind == corpus.IntegralBounded {
			hint.Width = width
			hint.Min = b.AddVariant(corpus.IntegerVariant(r.Min))
		}
		rec.Integral = hint
		counts[kind]++
	}
	logger.Debug("integral ranges analyzed",
		"bounded", counts[corpus.IntegralBounded],
		"non_negative", counts[corpus.IntegralNonNegative],
		"unconstrained", counts[corpus.IntegralUnconstrained])
}

func reaches(b *corpus.Builder, t, ancestor corpus.TypeID) bool {
	for t != corpus.TypeID(corpus.Nil) && b.IsSimpleType(t) {
		if t == ancestor {
			return true
		}
		next := b.SimpleType(t).Base
		if next == t {
			return false
		}
		t = next
	}
	return false
}
