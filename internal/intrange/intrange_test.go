package intrange

import (
	"math/big"
	"testing"
	"testing/fstest"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/builtins"
	"github.com/jacoelho/xsdcorpus/internal/derive"
	"github.com/jacoelho/xsdcorpus/internal/graph"
	"github.com/jacoelho/xsdcorpus/internal/loader"
	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

func TestClassify(t *testing.T) {
	n := func(v int64) *big.Int { return big.NewInt(v) }
	tests := []struct {
		name  string
		r     Range
		kind  corpus.IntegralKind
		width uint8
	}{
		{name: "single value", r: Range{Min: n(7), Max: n(7)}, kind: corpus.IntegralBounded, width: 0},
		{name: "two values", r: Range{Min: n(0), Max: n(1)}, kind: corpus.IntegralBounded, width: 1},
		{name: "byte", r: Range{Min: n(-128), Max: n(127)}, kind: corpus.IntegralBounded, width: 8},
		{name: "limit", r: Range{Min: n(1), Max: n(4096)}, kind: corpus.IntegralBounded, width: 12},
		{name: "over limit non-negative", r: Range{Min: n(0), Max: n(4096)}, kind: corpus.IntegralNonNegative},
		{name: "over limit negative", r: Range{Min: n(-1), Max: n(4095)}, kind: corpus.IntegralUnconstrained},
		{name: "lower only", r: Range{Min: n(5)}, kind: corpus.IntegralNonNegative},
		{name: "upper only", r: Range{Max: n(5)}, kind: corpus.IntegralUnconstrained},
		{name: "empty", r: Range{Min: n(5), Max: n(4)}, kind: corpus.IntegralNonNegative},
		{name: "none", kind: corpus.IntegralUnconstrained},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, width := Classify(tt.r)
			if kind != tt.kind || width != tt.width {
				t.Fatalf("Classify() = %s/%d, want %s/%d", kind, width, tt.kind, tt.width)
			}
		})
	}
}

func TestEffectiveRoundsInward(t *testing.T) {
	b := corpus.NewBuilder()
	dec := func(unscaled int64, scale int32) corpus.VariantID {
		return b.AddVariant(corpus.DecimalVariant(corpus.Decimal{Unscaled: big.NewInt(unscaled), Scale: scale}))
	}
	f := corpus.NoFacets()
	f.MinExclusive = dec(-25, 1) // -2.5
	f.MaxInclusive = dec(75, 1)  // 7.5
	r := Effective(b, f)
	if r.Min.Int64() != -2 || r.Max.Int64() != 7 {
		t.Fatalf("Effective() = [%v, %v], want [-2, 7]", r.Min, r.Max)
	}

	f = corpus.NoFacets()
	f.MinExclusive = b.AddVariant(corpus.IntVariant(3))
	f.MaxExclusive = b.AddVariant(corpus.IntVariant(10))
	r = Effective(b, f)
	if r.Min.Int64() != 4 || r.Max.Int64() != 9 {
		t.Fatalf("Effective() = [%v, %v], want [4, 9]", r.Min, r.Max)
	}
}

func TestRun(t *testing.T) {
	src := `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:simpleType name="Percent">
    <xs:restriction base="xs:int"><xs:minInclusive value="0"/><xs:maxInclusive value="100"/></xs:restriction>
  </xs:simpleType>
  <xs:simpleType name="Offset">
    <xs:restriction base="xs:integer"><xs:minExclusive value="-10"/><xs:maxExclusive value="10"/></xs:restriction>
  </xs:simpleType>
  <xs:simpleType name="Big">
    <xs:restriction base="xs:long"><xs:minInclusive value="1"/></xs:restriction>
  </xs:simpleType>
  <xs:simpleType name="Name"><xs:restriction base="xs:string"/></xs:simpleType>
  <xs:simpleType name="Ints"><xs:list itemType="xs:byte"/></xs:simpleType>
</xs:schema>`
	fsys := fstest.MapFS{"a.xsd": &fstest.MapFile{Data: []byte(src)}}
	doc, err := loader.New(loader.Config{FS: fsys}).Load("a.xsd")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	b := corpus.NewBuilder()
	diags := xsderrors.NewCollector(nil)
	res := graph.Build(b, diags, nil, []*schemadoc.Document{doc})
	derive.Run(b, diags, nil, res)
	Run(b, nil, res.Builtins)
	c, err := b.Freeze()
	if err != nil {
		t.Fatalf("Freeze() error = %v", err)
	}
	if diags.Len() != 0 {
		t.Fatalf("diagnostics = %v, want none", diags.Diagnostics())
	}

	hint := func(ns, local string) corpus.IntegralHint {
		t.Helper()
		id, ok := c.LookupType(ns, local)
		if !ok {
			t.Fatalf("type %s not found", local)
		}
		return c.SimpleType(id).Integral
	}
	tests := []struct {
		ns, local string
		kind      corpus.IntegralKind
		width     uint8
		min       int64
	}{
		{local: "Percent", kind: corpus.IntegralBounded, width: 7, min: 0},
		{local: "Offset", kind: corpus.IntegralBounded, width: 5, min: -9},
		{local: "Big", kind: corpus.IntegralNonNegative},
		{local: "Name", kind: corpus.IntegralNone},
		{local: "Ints", kind: corpus.IntegralNone},
		{ns: builtins.XSDNamespace, local: "byte", kind: corpus.IntegralBounded, width: 8, min: -128},
		{ns: builtins.XSDNamespace, local: "unsignedByte", kind: corpus.IntegralBounded, width: 8, min: 0},
		{ns: builtins.XSDNamespace, local: "unsignedInt", kind: corpus.IntegralNonNegative},
		{ns: builtins.XSDNamespace, local: "int", kind: corpus.IntegralUnconstrained},
		{ns: builtins.XSDNamespace, local: "integer", kind: corpus.IntegralUnconstrained},
		{ns: builtins.XSDNamespace, local: "decimal", kind: corpus.IntegralNone},
	}
	for _, tt := range tests {
		got := hint(tt.ns, tt.local)
		if got.Kind != tt.kind || got.Width != tt.width {
			t.Fatalf("%s hint = %s/%d, want %s/%d", tt.local, got.Kind, got.Width, tt.kind, tt.width)
		}
		if tt.kind != corpus.IntegralBounded {
			continue
		}
		if lo, _ := c.Variant(got.Min).Integer(); lo.Int64() != tt.min {
			t.Fatalf("%s min = %v, want %d", tt.local, lo, tt.min)
		}
	}
}
