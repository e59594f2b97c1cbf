package contentmodel

import (
	"testing"
	"testing/fstest"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/automaton"
	"github.com/jacoelho/xsdcorpus/internal/derive"
	"github.com/jacoelho/xsdcorpus/internal/graph"
	"github.com/jacoelho/xsdcorpus/internal/loader"
	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

func checkSchema(t *testing.T, body string) (*corpus.Builder, *xsderrors.Collector) {
	t.Helper()
	src := `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">` + body + `</xs:schema>`
	fsys := fstest.MapFS{"a.xsd": &fstest.MapFile{Data: []byte(src)}}
	doc, err := loader.New(loader.Config{FS: fsys}).Load("a.xsd")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	b := corpus.NewBuilder()
	diags := xsderrors.NewCollector(nil)
	res := graph.Build(b, diags, nil, []*schemadoc.Document{doc})
	derive.Run(b, diags, nil, res)
	if err := automaton.Run(b, nil); err != nil {
		t.Fatalf("automaton.Run() error = %v", err)
	}
	if diags.Len() != 0 {
		t.Fatalf("diagnostics before UPA = %v, want none", diags.Diagnostics())
	}
	if err := Run(b, diags, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return b, diags
}

func TestUniqueParticleAttribution(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		ambiguous int
	}{
		{
			name: "choice then repeated branch",
			body: `<xs:complexType name="T"><xs:sequence>
  <xs:choice minOccurs="0"><xs:element name="B"/><xs:element name="C"/></xs:choice>
  <xs:element name="B"/>
</xs:sequence></xs:complexType>`,
			ambiguous: 1,
		},
		{
			name: "empty sequence makes choice emptiable",
			body: `<xs:complexType name="T"><xs:sequence>
  <xs:choice><xs:sequence/><xs:element name="A"/></xs:choice>
  <xs:element name="A"/>
</xs:sequence></xs:complexType>`,
			ambiguous: 1,
		},
		{
			name: "empty sequence branch before distinct name",
			body: `<xs:complexType name="T"><xs:sequence>
  <xs:choice><xs:sequence/><xs:element name="A"/></xs:choice>
  <xs:element name="B"/>
</xs:sequence></xs:complexType>`,
		},
		{
			name: "disjoint choice",
			body: `<xs:complexType name="T"><xs:sequence>
  <xs:choice minOccurs="0"><xs:element name="B"/><xs:element name="C"/></xs:choice>
  <xs:element name="D"/>
</xs:sequence></xs:complexType>`,
		},
		{
			name:      "optional before same name",
			body:      `<xs:complexType name="T"><xs:sequence><xs:element name="a" minOccurs="0"/><xs:element name="a"/></xs:sequence></xs:complexType>`,
			ambiguous: 1,
		},
		{
			name: "mandatory repetition",
			body: `<xs:complexType name="T"><xs:sequence><xs:element name="a"/><xs:element name="a"/></xs:sequence></xs:complexType>`,
		},
		{
			name:      "bounded repeat before same name",
			body:      `<xs:complexType name="T"><xs:sequence><xs:element name="a" maxOccurs="2"/><xs:element name="a"/></xs:sequence></xs:complexType>`,
			ambiguous: 1,
		},
		{
			name:      "wildcard before element",
			body:      `<xs:complexType name="T"><xs:sequence><xs:any minOccurs="0"/><xs:element name="e"/></xs:sequence></xs:complexType>`,
			ambiguous: 1,
		},
		{
			name: "other-namespace wildcard before unqualified element",
			body: `<xs:complexType name="T"><xs:sequence><xs:any namespace="##other" minOccurs="0"/><xs:element name="e"/></xs:sequence></xs:complexType>`,
		},
		{
			name:      "overlapping wildcards",
			body:      `<xs:complexType name="T"><xs:choice><xs:any namespace="##other"/><xs:any namespace="urn:x"/></xs:choice></xs:complexType>`,
			ambiguous: 1,
		},
		{
			name:      "disjoint wildcards",
			body:      `<xs:complexType name="T"><xs:choice><xs:any namespace="urn:y"/><xs:any namespace="urn:x"/></xs:choice></xs:complexType>`,
			ambiguous: 0,
		},
		{
			name: "substitution member beside its head",
			body: `<xs:element name="head" type="xs:string"/>
  <xs:element name="member" type="xs:string" substitutionGroup="head"/>
  <xs:complexType name="T"><xs:choice><xs:element ref="head"/><xs:element ref="member"/></xs:choice></xs:complexType>`,
			ambiguous: 1,
		},
		{
			name: "one diagnostic per type",
			body: `<xs:complexType name="T"><xs:choice>
  <xs:element name="a"/><xs:element name="a"/><xs:element name="b"/><xs:element name="b"/>
</xs:choice></xs:complexType>
  <xs:complexType name="U"><xs:choice><xs:element name="c"/><xs:element name="c"/></xs:choice></xs:complexType>`,
			ambiguous: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := checkSchema(t, tt.body)
			if got := diags.Count(xsderrors.ErrNonDeterministic); got != tt.ambiguous {
				t.Fatalf("Count(cos-nonambig) = %d, want %d (%v)", got, tt.ambiguous, diags.Diagnostics())
			}
			if diags.HasFatal() != (tt.ambiguous > 0) {
				t.Fatalf("HasFatal() = %v, want %v", diags.HasFatal(), tt.ambiguous > 0)
			}
			for _, d := range diags.Diagnostics() {
				if d.Severity != xsderrors.SeverityFatal {
					t.Fatalf("severity = %v, want fatal", d.Severity)
				}
			}
		})
	}
}

func TestOverlapIsSymmetric(t *testing.T) {
	b, _ := checkSchema(t, `<xs:element name="head" type="xs:string"/>
  <xs:element name="member" type="xs:string" substitutionGroup="head"/>
  <xs:complexType name="T"><xs:sequence>
    <xs:element ref="head"/>
    <xs:element name="member"/>
    <xs:element name="plain"/>
    <xs:any namespace="##other"/>
    <xs:any namespace="##local urn:x"/>
    <xs:any namespace="urn:y"/>
  </xs:sequence></xs:complexType>`)
	var root corpus.ParticleID
	for n := corpus.NodeID(1); int(n) < b.Len(); n++ {
		if b.Kind(n) == corpus.KindComplexType && b.String(b.ComplexType(corpus.TypeID(n)).Name) == "T" {
			root = b.ComplexType(corpus.TypeID(n)).Particle
		}
	}
	glu, err := BuildGlushkov(builderReader{b: b}, root)
	if err != nil {
		t.Fatalf("BuildGlushkov() error = %v", err)
	}
	c := &checker{b: b, accepted: make(map[corpus.ElementID][]qname)}
	for _, l := range glu.Positions {
		for _, r := range glu.Positions {
			if c.overlap(l, r) != c.overlap(r, l) {
				t.Fatalf("overlap(%s, %s) is not symmetric", c.describe(l), c.describe(r))
			}
		}
	}
	if !c.overlap(glu.Positions[0], glu.Positions[1]) {
		t.Fatalf("head does not overlap a local element named like its member")
	}
	if c.overlap(glu.Positions[2], glu.Positions[3]) {
		t.Fatalf("unqualified element overlaps ##other")
	}
}
