package automaton

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/derive"
	"github.com/jacoelho/xsdcorpus/internal/graph"
	"github.com/jacoelho/xsdcorpus/internal/loader"
	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

const head = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">`

func compile(t *testing.T, body string) *corpus.Corpus {
	t.Helper()
	fsys := fstest.MapFS{"a.xsd": &fstest.MapFile{Data: []byte(head + body + `</xs:schema>`)}}
	doc, err := loader.New(loader.Config{FS: fsys}).Load("a.xsd")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	b := corpus.NewBuilder()
	diags := xsderrors.NewCollector(nil)
	res := graph.Build(b, diags, nil, []*schemadoc.Document{doc})
	derive.Run(b, diags, nil, res)
	if err := Run(b, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diags.Len() != 0 {
		t.Fatalf("diagnostics = %v, want none", diags.Diagnostics())
	}
	c, err := b.Freeze()
	if err != nil {
		t.Fatalf("Freeze() error = %v", err)
	}
	return c
}

// contentGroup returns the group of a named type's content particle.
func contentGroup(t *testing.T, c *corpus.Corpus, local string) corpus.GroupRec {
	t.Helper()
	id, ok := c.LookupType("", local)
	if !ok {
		t.Fatalf("type %s not found", local)
	}
	p := c.Particle(c.ComplexType(id).Particle)
	if c.Kind(p.Term) != corpus.KindGroup {
		t.Fatalf("type %s content is %s, want group", local, c.Kind(p.Term))
	}
	return c.Group(corpus.GroupID(p.Term))
}

func particleName(c *corpus.Corpus, id corpus.ParticleID) string {
	if id == End {
		return "$"
	}
	term := c.Particle(id).Term
	switch c.Kind(term) {
	case corpus.KindElement:
		return c.String(c.Element(corpus.ElementID(term)).Name)
	case corpus.KindWildcard:
		return "*"
	}
	return "?"
}

func headNames(c *corpus.Corpus, heads [][]corpus.ParticleID) [][]string {
	out := make([][]string, len(heads))
	for i, h := range heads {
		out[i] = []string{}
		for _, id := range h {
			out[i] = append(out[i], particleName(c, id))
		}
	}
	return out
}

func TestHeadTables(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		heads    [][]string
		backward []int
		fixture  bool
	}{
		{
			name:     "sequence with optional member",
			content:  `<xs:sequence><xs:element name="a"/><xs:element name="b" minOccurs="0"/><xs:element name="c"/></xs:sequence>`,
			heads:    [][]string{{"a"}, {"b", "c"}, {"c"}, {"$"}},
			backward: []int{0, 1, 1, 1},
		},
		{
			name:     "fixed sequence",
			content:  `<xs:sequence><xs:element name="a"/><xs:element name="b"/><xs:element name="c" maxOccurs="3"/></xs:sequence>`,
			heads:    [][]string{{"a"}, {"b"}, {"c"}, {"$"}},
			backward: []int{0, 1, 1, 1},
			fixture:  true,
		},
		{
			name:     "all optional sequence",
			content:  `<xs:sequence><xs:element name="a" minOccurs="0"/><xs:element name="b" minOccurs="0"/></xs:sequence>`,
			heads:    [][]string{{"a", "b", "$"}, {"b", "$"}, {"$"}},
			backward: []int{0, 1, 1},
		},
		{
			name:     "choice",
			content:  `<xs:choice><xs:element name="a"/><xs:element name="b" minOccurs="0"/></xs:choice>`,
			heads:    [][]string{{"a", "b", "$"}, {"$"}, {"$"}},
			backward: []int{0, 2, 0},
		},
		{
			name: "nested choice",
			content: `<xs:sequence>
  <xs:element name="a" minOccurs="0"/>
  <xs:choice><xs:element name="b"/><xs:element name="c"/></xs:choice>
  <xs:element name="d"/>
</xs:sequence>`,
			heads:    [][]string{{"a", "b", "c"}, {"b", "c"}, {"d"}, {"$"}},
			backward: []int{0, 1, 2, 1},
		},
		{
			name: "emptiable nested group",
			content: `<xs:sequence>
  <xs:sequence><xs:element name="a" minOccurs="0"/></xs:sequence>
  <xs:element name="b"/>
</xs:sequence>`,
			heads:    [][]string{{"a", "b"}, {"b"}, {"$"}},
			backward: []int{0, 1, 1},
		},
		{
			name:     "all",
			content:  `<xs:all><xs:element name="a"/><xs:element name="b" minOccurs="0"/></xs:all>`,
			heads:    [][]string{{"a", "b"}, {"a", "b"}, {"a", "b"}},
			backward: []int{0, 0, 0},
		},
		{
			name: "choice without present branch",
			content: `<xs:sequence>
  <xs:choice><xs:element name="a" minOccurs="0" maxOccurs="0"/></xs:choice>
  <xs:element name="b" minOccurs="0"/>
</xs:sequence>`,
			heads:    [][]string{{"b", "$"}, {"b", "$"}, {"$"}},
			backward: []int{0, 0, 1},
		},
		{
			name:     "prohibited member",
			content:  `<xs:sequence><xs:element name="a" minOccurs="0" maxOccurs="0"/><xs:element name="b"/></xs:sequence>`,
			heads:    [][]string{{"b"}, {"b"}, {"$"}},
			backward: []int{0, 0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := compile(t, `<xs:complexType name="T">`+tt.content+`</xs:complexType>`)
			g := contentGroup(t, c, "T")
			if diff := cmp.Diff(tt.heads, headNames(c, g.Automaton.Heads)); diff != "" {
				t.Fatalf("heads mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.backward, g.Automaton.Backward); diff != "" {
				t.Fatalf("backward mismatch (-want +got):\n%s", diff)
			}
			if g.Fixture != tt.fixture {
				t.Fatalf("Fixture = %v, want %v", g.Fixture, tt.fixture)
			}
		})
	}
}

// TestSequenceHeadProperties checks the overlap relation between consecutive
// offsets and that every head set ends with a mandatory particle or End.
func TestSequenceHeadProperties(t *testing.T) {
	c := compile(t, `<xs:complexType name="T"><xs:sequence>
  <xs:element name="a" minOccurs="0"/>
  <xs:choice minOccurs="0"><xs:element name="b"/><xs:element name="c"/></xs:choice>
  <xs:element name="d" minOccurs="0" maxOccurs="unbounded"/>
  <xs:sequence><xs:element name="e"/><xs:element name="f" minOccurs="0"/></xs:sequence>
  <xs:any namespace="##other" minOccurs="0"/>
</xs:sequence></xs:complexType>`)
	g := contentGroup(t, c, "T")
	heads, back := g.Automaton.Heads, g.Automaton.Backward
	if len(heads) != len(g.Particles)+1 || len(back) != len(heads) {
		t.Fatalf("table sizes = %d/%d, want %d", len(heads), len(back), len(g.Particles)+1)
	}
	for k := 1; k < len(heads); k++ {
		rest := heads[k-1][back[k]:]
		if diff := cmp.Diff(rest, heads[k][:len(rest)]); diff != "" {
			t.Fatalf("offset %d overlap mismatch (-prev +cur):\n%s", k, diff)
		}
	}
	for k, h := range heads {
		last := h[len(h)-1]
		if last == End {
			continue
		}
		if p := c.Particle(last); p.MinOccurs == 0 {
			t.Fatalf("head(%d) ends with optional %s", k, particleName(c, last))
		}
	}
}

func TestSubstances(t *testing.T) {
	c := compile(t, `<xs:complexType name="T"><xs:sequence>
  <xs:element name="a"/>
  <xs:element name="skip" minOccurs="0" maxOccurs="0"/>
  <xs:choice><xs:element name="b"/><xs:element name="c"/></xs:choice>
  <xs:any/>
</xs:sequence></xs:complexType>`)
	g := contentGroup(t, c, "T")
	type entry struct {
		Name    string
		Ordinal int
	}
	var got []entry
	for _, s := range g.Automaton.Substances {
		got = append(got, entry{Name: particleName(c, s.Particle), Ordinal: s.Ordinal})
	}
	want := []entry{{"a", 0}, {"b", 0}, {"c", 1}, {"*", 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("substances mismatch (-want +got):\n%s", diff)
	}

	id, _ := c.LookupType("", "T")
	ct := c.ComplexType(id).Automaton
	if diff := cmp.Diff([][]string{{"a"}, {"$"}}, headNames(c, ct.Heads)); diff != "" {
		t.Fatalf("type heads mismatch (-want +got):\n%s", diff)
	}
	if len(ct.Substances) != len(g.Automaton.Substances) {
		t.Fatalf("type substances = %d, want %d", len(ct.Substances), len(g.Automaton.Substances))
	}
}

func TestEmptyContentAutomaton(t *testing.T) {
	c := compile(t, `<xs:complexType name="E"/>`)
	id, _ := c.LookupType("", "E")
	a := c.ComplexType(id).Automaton
	if diff := cmp.Diff([][]string{{"$"}}, headNames(c, a.Heads)); diff != "" {
		t.Fatalf("heads mismatch (-want +got):\n%s", diff)
	}
	if len(a.Substances) != 0 {
		t.Fatalf("substances = %d, want 0", len(a.Substances))
	}
}

func TestSubstantialMax(t *testing.T) {
	c := compile(t, `<xs:complexType name="T"><xs:sequence>
  <xs:element name="a" maxOccurs="4"/>
  <xs:sequence minOccurs="0" maxOccurs="2"/>
  <xs:choice maxOccurs="unbounded"><xs:element name="b"/></xs:choice>
</xs:sequence></xs:complexType>`)
	g := contentGroup(t, c, "T")
	want := []uint32{4, 0, corpus.Unbounded}
	for i, pid := range g.Particles {
		if got := c.Particle(pid).SubstantialMax; got != want[i] {
			t.Fatalf("member %d SubstantialMax = %d, want %d", i, got, want[i])
		}
	}
}

func TestSubstitutionMembersSorted(t *testing.T) {
	c := compile(t, `
  <xs:element name="head" type="xs:string"/>
  <xs:element name="zeta" type="xs:string" substitutionGroup="head"/>
  <xs:element name="alpha" type="xs:string" substitutionGroup="head"/>
  <xs:element name="mid" type="xs:string" substitutionGroup="head"/>
  <xs:element name="deep" type="xs:string" substitutionGroup="alpha"/>`)
	names := func(local string) []string {
		id, ok := c.LookupElement("", local)
		if !ok {
			t.Fatalf("element %s not found", local)
		}
		out := []string{}
		for _, m := range c.Element(id).SubstitutionMembers {
			out = append(out, c.String(c.Element(m).Name))
		}
		return out
	}
	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, names("head")); diff != "" {
		t.Fatalf("head members mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"deep"}, names("alpha")); diff != "" {
		t.Fatalf("alpha members mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupHeadInstances(t *testing.T) {
	c := compile(t, `
  <xs:element name="x" type="xs:string"/>
  <xs:element name="y" type="xs:string"/>
  <xs:element name="z" type="xs:string"/>
  <xs:group name="G"><xs:sequence><xs:element ref="x" minOccurs="0"/><xs:element ref="y"/><xs:element ref="z"/></xs:sequence></xs:group>
  <xs:complexType name="A"><xs:sequence><xs:group ref="G"/></xs:sequence></xs:complexType>
  <xs:complexType name="B"><xs:sequence><xs:element ref="z"/><xs:group ref="G"/></xs:sequence></xs:complexType>`)
	count := func(local string) int {
		id, _ := c.LookupElement("", local)
		return len(c.Element(id).GroupHeadInstances)
	}
	for local, want := range map[string]int{"x": 2, "y": 2, "z": 0} {
		if got := count(local); got != want {
			t.Fatalf("%s GroupHeadInstances = %d, want %d", local, got, want)
		}
	}
	id, _ := c.LookupElement("", "x")
	for _, pid := range c.Element(id).GroupHeadInstances {
		if term := c.Particle(pid).Term; term != id.Node() {
			t.Fatalf("instance %d term = %d, want x", pid, term)
		}
	}
}
