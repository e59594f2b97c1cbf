package graph

import (
	"testing"
	"testing/fstest"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/builtins"
	"github.com/jacoelho/xsdcorpus/internal/loader"
	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

const head = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"`

type built struct {
	corpus *corpus.Corpus
	diags  *xsderrors.Collector
	result *Result
}

func build(t *testing.T, files map[string]string, roots ...string) built {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, src := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(src)}
	}
	l := loader.New(loader.Config{FS: fsys})
	docs := make([]*schemadoc.Document, 0, len(roots))
	for _, root := range roots {
		doc, err := l.Load(root)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", root, err)
		}
		docs = append(docs, doc)
	}
	b := corpus.NewBuilder()
	diags := xsderrors.NewCollector(nil)
	res := Build(b, diags, nil, docs)
	c, err := b.Freeze()
	if err != nil {
		t.Fatalf("Freeze() error = %v", err)
	}
	return built{corpus: c, diags: diags, result: res}
}

func (b built) element(t *testing.T, ns, local string) corpus.ElementRec {
	t.Helper()
	id, ok := b.corpus.LookupElement(ns, local)
	if !ok {
		t.Fatalf("element {%s}%s not found", ns, local)
	}
	return b.corpus.Element(id)
}

func (b built) complexType(t *testing.T, ns, local string) corpus.ComplexTypeRec {
	t.Helper()
	id, ok := b.corpus.LookupType(ns, local)
	if !ok {
		t.Fatalf("type {%s}%s not found", ns, local)
	}
	return b.corpus.ComplexType(id)
}

// contentMembers returns the member particles of a type's content group.
func (b built) contentMembers(t *testing.T, ct corpus.ComplexTypeRec) (corpus.GroupID, []corpus.ParticleID) {
	t.Helper()
	p := b.corpus.Particle(ct.Particle)
	if b.corpus.Kind(p.Term) != corpus.KindGroup {
		t.Fatalf("content term kind = %s, want group", b.corpus.Kind(p.Term))
	}
	gid := corpus.GroupID(p.Term)
	return gid, b.corpus.Group(gid).Particles
}

func TestBuildEmptyInput(t *testing.T) {
	got := build(t, nil)
	if n := len(got.corpus.Namespaces()); n != 2 {
		t.Fatalf("namespaces = %d, want 2", n)
	}
	if got.diags.Len() != 0 {
		t.Fatalf("diagnostics = %v, want none", got.diags.Diagnostics())
	}
	xsd := got.corpus.Namespace(got.result.Builtins.XSD)
	if n := len(xsd.Types); n != len(builtins.List()) {
		t.Fatalf("builtin types = %d, want %d", n, len(builtins.List()))
	}
	if n := len(xsd.Elements) + len(xsd.Attributes); n != 0 {
		t.Fatalf("XSD namespace declarations = %d, want 0", n)
	}
	if n := len(got.corpus.Namespace(got.result.Builtins.XSI).Attributes); n != 4 {
		t.Fatalf("xsi attributes = %d, want 4", n)
	}
	anyType := got.corpus.ComplexType(got.result.Builtins.AnyType)
	if anyType.Content != corpus.ContentMixed || anyType.AttrWildcard == corpus.WildcardID(corpus.Nil) {
		t.Fatalf("anyType = %+v, want mixed content with attribute wildcard", anyType)
	}
	byteType, ok := got.corpus.LookupType(builtins.XSDNamespace, "byte")
	if !ok {
		t.Fatalf("xs:byte not found")
	}
	f := got.corpus.SimpleType(byteType).Facets
	if lo := got.corpus.Variant(f.MinInclusive); lo.Long() != -128 {
		t.Fatalf("byte minInclusive = %v, want -128", lo)
	}
	ncname, _ := got.corpus.LookupType(builtins.XSDNamespace, "NCName")
	if n := len(got.corpus.SimpleType(ncname).Facets.Patterns); n != 2 {
		t.Fatalf("NCName patterns = %d, want the Name and NCName patterns", n)
	}
}

func TestBuildCircularImports(t *testing.T) {
	got := build(t, map[string]string{
		"a.xsd": head + ` xmlns:b="urn:b" targetNamespace="urn:a">
  <xs:import namespace="urn:b" schemaLocation="b.xsd"/>
  <xs:element name="a" type="b:T"/>
</xs:schema>`,
		"b.xsd": head + ` xmlns:a="urn:a" targetNamespace="urn:b">
  <xs:import namespace="urn:a" schemaLocation="a.xsd"/>
  <xs:complexType name="T"><xs:sequence><xs:element ref="a:a" minOccurs="0"/></xs:sequence></xs:complexType>
  <xs:element name="b" type="T" xmlns="urn:b"/>
</xs:schema>`,
	}, "a.xsd")
	if got.diags.Len() != 0 {
		t.Fatalf("diagnostics = %v, want none", got.diags.Diagnostics())
	}
	a := got.element(t, "urn:a", "a")
	if name := got.corpus.TypeName(a.Type); name != (corpus.QName{Namespace: "urn:b", Local: "T"}) {
		t.Fatalf("type of a = %v, want {urn:b}T", name)
	}
	got.element(t, "urn:b", "b")
	if n := len(got.corpus.Namespaces()); n != 4 {
		t.Fatalf("namespaces = %d, want 4", n)
	}
}

func TestBuildCircularIncludeThroughHub(t *testing.T) {
	got := build(t, map[string]string{
		"hub.xsd": head + ` targetNamespace="urn:h" xmlns:h="urn:h">
  <xs:include schemaLocation="a.xsd"/>
  <xs:include schemaLocation="b.xsd"/>
  <xs:element name="root" type="h:A"/>
</xs:schema>`,
		"a.xsd": head + ` targetNamespace="urn:h" xmlns:h="urn:h">
  <xs:include schemaLocation="hub.xsd"/>
  <xs:complexType name="A"><xs:sequence><xs:element name="b" type="h:B"/></xs:sequence></xs:complexType>
</xs:schema>`,
		"b.xsd": head + ` targetNamespace="urn:h" xmlns:h="urn:h">
  <xs:include schemaLocation="hub.xsd"/>
  <xs:include schemaLocation="a.xsd"/>
  <xs:simpleType name="B"><xs:restriction base="xs:string"/></xs:simpleType>
</xs:schema>`,
	}, "hub.xsd", "a.xsd")
	if got.diags.Len() != 0 {
		t.Fatalf("diagnostics = %v, want none", got.diags.Diagnostics())
	}
	root := got.element(t, "urn:h", "root")
	if name := got.corpus.TypeName(root.Type); name != (corpus.QName{Namespace: "urn:h", Local: "A"}) {
		t.Fatalf("type of root = %v, want {urn:h}A", name)
	}
	if _, ok := got.corpus.LookupType("urn:h", "B"); !ok {
		t.Fatalf("type {urn:h}B not found")
	}
	var ns corpus.NamespaceRec
	for _, id := range got.corpus.Namespaces() {
		if got.corpus.NamespaceURI(id) == "urn:h" {
			ns = got.corpus.Namespace(id)
		}
	}
	if len(ns.Elements) != 1 || len(ns.Types) != 2 {
		t.Fatalf("urn:h globals = %d elements, %d types, want 1 and 2", len(ns.Elements), len(ns.Types))
	}
}

func TestBuildNamedGroupExpandedPerUse(t *testing.T) {
	got := build(t, map[string]string{
		"a.xsd": head + `>
  <xs:group name="g"><xs:sequence><xs:element name="x" type="xs:int"/></xs:sequence></xs:group>
  <xs:complexType name="T1"><xs:group ref="g"/></xs:complexType>
  <xs:complexType name="T2"><xs:group ref="g" maxOccurs="2"/></xs:complexType>
</xs:schema>`,
	}, "a.xsd")
	if got.diags.Len() != 0 {
		t.Fatalf("diagnostics = %v, want none", got.diags.Diagnostics())
	}
	t1 := got.complexType(t, "", "T1")
	t2 := got.complexType(t, "", "T2")
	if t1.Particle == t2.Particle {
		t.Fatalf("content particles shared between uses")
	}
	g1, m1 := got.contentMembers(t, t1)
	g2, m2 := got.contentMembers(t, t2)
	if g1 == g2 {
		t.Fatalf("group %d shared between uses", g1)
	}
	if got.corpus.String(got.corpus.Group(g1).DefinitionName) != "g" {
		t.Fatalf("definition name = %q, want g", got.corpus.String(got.corpus.Group(g1).DefinitionName))
	}
	if m1[0] == m2[0] {
		t.Fatalf("member particles shared between uses")
	}
	if e1, e2 := got.corpus.Particle(m1[0]).Term, got.corpus.Particle(m2[0]).Term; e1 != e2 {
		t.Fatalf("element terms = %d and %d, want one shared declaration", e1, e2)
	}
	if p := got.corpus.Particle(t2.Particle); p.MaxOccurs != 2 {
		t.Fatalf("group reference maxOccurs = %d, want 2", p.MaxOccurs)
	}
}

func TestBuildDuplicateGlobals(t *testing.T) {
	tests := []struct {
		name  string
		other string
		want  int
	}{
		{name: "identical", other: `<xs:element name="e" type="xs:string"/>`, want: 0},
		{name: "conflicting", other: `<xs:element name="e" type="xs:int"/>`, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := build(t, map[string]string{
				"a.xsd": head + ` targetNamespace="urn:a">
  <xs:include schemaLocation="b.xsd"/>
  <xs:include schemaLocation="c.xsd"/>
</xs:schema>`,
				"b.xsd": head + ` targetNamespace="urn:a"><xs:element name="e" type="xs:string"/></xs:schema>`,
				"c.xsd": head + ` targetNamespace="urn:a">` + tt.other + `</xs:schema>`,
			}, "a.xsd")
			if n := got.diags.Count(xsderrors.ErrDuplicateGlobal); n != tt.want {
				t.Fatalf("%s diagnostics = %d, want %d", xsderrors.ErrDuplicateGlobal, n, tt.want)
			}
			e := got.element(t, "urn:a", "e")
			if name := got.corpus.TypeName(e.Type); name.Local != "string" {
				t.Fatalf("type of e = %v, want the first declaration's string", name)
			}
		})
	}
}

func TestBuildChameleonInclude(t *testing.T) {
	got := build(t, map[string]string{
		"a.xsd": head + ` targetNamespace="urn:a"><xs:include schemaLocation="c.xsd"/></xs:schema>`,
		"c.xsd": head + `>
  <xs:complexType name="T"><xs:sequence><xs:element name="x"/></xs:sequence></xs:complexType>
  <xs:element name="e" type="T"/>
</xs:schema>`,
	}, "a.xsd")
	if got.diags.Len() != 0 {
		t.Fatalf("diagnostics = %v, want none", got.diags.Diagnostics())
	}
	e := got.element(t, "urn:a", "e")
	if name := got.corpus.TypeName(e.Type); name != (corpus.QName{Namespace: "urn:a", Local: "T"}) {
		t.Fatalf("type of e = %v, want {urn:a}T", name)
	}
	if _, ok := got.corpus.LookupElement("", "e"); ok {
		t.Fatalf("chameleon declaration also registered without namespace")
	}
}

func TestBuildDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		body string
		code xsderrors.ErrorCode
	}{
		{
			name: "unresolved type",
			body: `<xs:element name="e" type="missing"/>`,
			code: xsderrors.ErrSrcResolve,
		},
		{
			name: "circular group",
			body: `<xs:group name="g"><xs:sequence><xs:element name="a"/><xs:group ref="g"/></xs:sequence></xs:group>
<xs:complexType name="T"><xs:group ref="g"/></xs:complexType>`,
			code: xsderrors.ErrGroupCircular,
		},
		{
			name: "circular simple type",
			body: `<xs:simpleType name="a"><xs:restriction base="b"/></xs:simpleType>
<xs:simpleType name="b"><xs:restriction base="a"/></xs:simpleType>`,
			code: xsderrors.ErrSimpleTypeCircular,
		},
		{
			name: "circular complex type",
			body: `<xs:complexType name="a"><xs:complexContent><xs:extension base="b"/></xs:complexContent></xs:complexType>
<xs:complexType name="b"><xs:complexContent><xs:extension base="a"/></xs:complexContent></xs:complexType>`,
			code: xsderrors.ErrComplexTypeCircular,
		},
		{
			name: "circular attribute group",
			body: `<xs:attributeGroup name="g"><xs:attributeGroup ref="g"/></xs:attributeGroup>
<xs:complexType name="T"><xs:attributeGroup ref="g"/></xs:complexType>`,
			code: xsderrors.ErrAttributeGroupCircular,
		},
		{
			name: "wildcard in all",
			body: `<xs:complexType name="T"><xs:all><xs:element name="a"/><xs:any/></xs:all></xs:complexType>`,
			code: xsderrors.ErrAllLimited,
		},
		{
			name: "complex content over simple type",
			body: `<xs:complexType name="T"><xs:complexContent><xs:extension base="xs:int"/></xs:complexContent></xs:complexType>`,
			code: xsderrors.ErrComplexContentBase,
		},
		{
			name: "simple content over element content",
			body: `<xs:complexType name="B"><xs:sequence><xs:element name="a"/></xs:sequence></xs:complexType>
<xs:complexType name="T"><xs:simpleContent><xs:extension base="B"/></xs:simpleContent></xs:complexType>`,
			code: xsderrors.ErrSimpleContentBase,
		},
		{
			name: "extension changes mixed",
			body: `<xs:complexType name="B" mixed="true"><xs:sequence><xs:element name="a"/></xs:sequence></xs:complexType>
<xs:complexType name="T"><xs:complexContent><xs:extension base="B"><xs:sequence><xs:element name="b"/></xs:sequence></xs:extension></xs:complexContent></xs:complexType>`,
			code: xsderrors.ErrExtensionContent,
		},
		{
			name: "simple type over complex type",
			body: `<xs:complexType name="C"/>
<xs:simpleType name="S"><xs:restriction base="C"/></xs:simpleType>`,
			code: xsderrors.ErrSimpleTypeBase,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := build(t, map[string]string{"a.xsd": head + `>` + tt.body + `</xs:schema>`}, "a.xsd")
			if n := got.diags.Count(tt.code); n != 1 {
				t.Fatalf("%s diagnostics = %d, want 1 (all: %v)", tt.code, n, got.diags.Diagnostics())
			}
		})
	}
}

func TestBuildAllMemberRepair(t *testing.T) {
	got := build(t, map[string]string{
		"a.xsd": head + `>
  <xs:complexType name="T"><xs:all><xs:element name="a" maxOccurs="3"/><xs:element name="b" minOccurs="0"/></xs:all></xs:complexType>
</xs:schema>`,
	}, "a.xsd")
	if got.diags.Len() != 0 {
		t.Fatalf("diagnostics = %v, want none", got.diags.Diagnostics())
	}
	_, members := got.contentMembers(t, got.complexType(t, "", "T"))
	if p := got.corpus.Particle(members[0]); p.MinOccurs != 1 || p.MaxOccurs != 1 {
		t.Fatalf("repaired member occurs = %d..%d, want 1..1", p.MinOccurs, p.MaxOccurs)
	}
}

func TestBuildExtension(t *testing.T) {
	got := build(t, map[string]string{
		"a.xsd": head + `>
  <xs:complexType name="B">
    <xs:sequence><xs:element name="a"/></xs:sequence>
    <xs:attribute name="z" use="required"/>
    <xs:anyAttribute namespace="urn:x"/>
  </xs:complexType>
  <xs:complexType name="D">
    <xs:complexContent>
      <xs:extension base="B">
        <xs:sequence><xs:element name="b"/></xs:sequence>
        <xs:attribute name="m"/>
        <xs:anyAttribute namespace="urn:y"/>
      </xs:extension>
    </xs:complexContent>
  </xs:complexType>
</xs:schema>`,
	}, "a.xsd")
	if got.diags.Len() != 0 {
		t.Fatalf("diagnostics = %v, want none", got.diags.Diagnostics())
	}
	base := got.complexType(t, "", "B")
	d := got.complexType(t, "", "D")
	if d.Derivation != corpus.DerivationExtension || d.Content != corpus.ContentElementOnly {
		t.Fatalf("D = %+v", d)
	}
	_, members := got.contentMembers(t, d)
	if len(members) != 2 {
		t.Fatalf("extension members = %d, want 2", len(members))
	}
	if members[0] == base.Particle {
		t.Fatalf("base particle shared instead of copied")
	}
	var names []string
	for i, id := range d.AttributeUses {
		u := got.corpus.AttributeUse(id)
		if u.Position != i || u.Owner != got.must(t, "D") {
			t.Fatalf("use %d = %+v", i, u)
		}
		names = append(names, got.corpus.AttributeName(u.Attribute).Local)
	}
	if len(names) != 2 || names[0] != "m" || names[1] != "z" {
		t.Fatalf("attribute uses = %v, want [m z]", names)
	}
	wc := got.corpus.Wildcard(d.AttrWildcard)
	if wc.Constraint != corpus.WildcardNamespaces || len(wc.Namespaces) != 2 {
		t.Fatalf("attribute wildcard = %+v, want union of both namespaces", wc)
	}

	ext, ok := got.result.Pending.Extensions[got.must(t, "D")]
	if !ok {
		t.Fatalf("extension of D not recorded")
	}
	if ext.Content != InheritedFirst || !ext.OwnWildcard {
		t.Fatalf("extension = %+v, want base content first and an own wildcard", ext)
	}
	if len(ext.OwnUses) != 1 || got.corpus.AttributeName(got.corpus.AttributeUse(ext.OwnUses[0]).Attribute).Local != "m" {
		t.Fatalf("own uses = %v, want [m]", ext.OwnUses)
	}
	if _, ok := got.result.Pending.Extensions[got.must(t, "B")]; ok {
		t.Fatalf("B recorded as an extension")
	}
}

func (b built) must(t *testing.T, local string) corpus.TypeID {
	t.Helper()
	id, ok := b.corpus.LookupType("", local)
	if !ok {
		t.Fatalf("type %s not found", local)
	}
	return id
}

func TestBuildRestrictionInheritsAttributes(t *testing.T) {
	got := build(t, map[string]string{
		"a.xsd": head + `>
  <xs:complexType name="B">
    <xs:attribute name="a"/>
    <xs:attribute name="b"/>
    <xs:attribute name="c" use="required"/>
  </xs:complexType>
  <xs:complexType name="R">
    <xs:complexContent>
      <xs:restriction base="B">
        <xs:attribute name="b" use="prohibited"/>
        <xs:attribute name="c" use="required" fixed="x"/>
      </xs:restriction>
    </xs:complexContent>
  </xs:complexType>
</xs:schema>`,
	}, "a.xsd")
	r := got.complexType(t, "", "R")
	var names []string
	for _, id := range r.AttributeUses {
		names = append(names, got.corpus.AttributeName(got.corpus.AttributeUse(id).Attribute).Local)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "c" {
		t.Fatalf("restricted uses = %v, want [a c]", names)
	}
	var pending int
	for _, v := range got.result.Pending.Values {
		if v.Constraint.Lexical == "x" {
			pending++
		}
	}
	if pending != 1 {
		t.Fatalf("pending use values = %d, want 1", pending)
	}
}

func TestBuildSimpleContentRestriction(t *testing.T) {
	got := build(t, map[string]string{
		"a.xsd": head + `>
  <xs:complexType name="B"><xs:simpleContent><xs:extension base="xs:string"/></xs:simpleContent></xs:complexType>
  <xs:complexType name="R"><xs:simpleContent><xs:restriction base="B"><xs:length value="3"/></xs:restriction></xs:simpleContent></xs:complexType>
</xs:schema>`,
	}, "a.xsd")
	if got.diags.Len() != 0 {
		t.Fatalf("diagnostics = %v, want none", got.diags.Diagnostics())
	}
	r := got.complexType(t, "", "R")
	if r.Content != corpus.ContentSimple {
		t.Fatalf("content = %s, want simple", r.Content)
	}
	st := got.corpus.SimpleType(r.SimpleType)
	str, _ := got.corpus.LookupType(builtins.XSDNamespace, "string")
	if st.Base != str || st.Name != 0 {
		t.Fatalf("content simple type = %+v, want anonymous restriction of string", st)
	}
	var found bool
	for _, p := range got.result.Pending.SimpleTypes {
		if p.Type == r.SimpleType && len(p.Facets) == 1 && p.Facets[0].Name == "length" {
			found = true
		}
	}
	if !found {
		t.Fatalf("length facet not pending on the content simple type")
	}
}

func TestBuildSubstitutionHeadType(t *testing.T) {
	got := build(t, map[string]string{
		"a.xsd": head + `>
  <xs:element name="h" type="xs:int"/>
  <xs:element name="m" substitutionGroup="h"/>
  <xs:element name="n" substitutionGroup="m"/>
</xs:schema>`,
	}, "a.xsd")
	intType, _ := got.corpus.LookupType(builtins.XSDNamespace, "int")
	for _, name := range []string{"m", "n"} {
		if e := got.element(t, "", name); e.Type != intType {
			t.Fatalf("type of %s = %v, want xs:int", name, got.corpus.TypeName(e.Type))
		}
	}
}

func TestBuildLocalTypeDerivesFromEnclosingType(t *testing.T) {
	got := build(t, map[string]string{
		"a.xsd": head + `>
  <xs:complexType name="T">
    <xs:sequence>
      <xs:element name="child" minOccurs="0">
        <xs:complexType><xs:complexContent><xs:extension base="T"/></xs:complexContent></xs:complexType>
      </xs:element>
    </xs:sequence>
  </xs:complexType>
</xs:schema>`,
	}, "a.xsd")
	if got.diags.Len() != 0 {
		t.Fatalf("diagnostics = %v, want none", got.diags.Diagnostics())
	}
}
