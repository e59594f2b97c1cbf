package compiler

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

const head = `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"`

func inline(systemID, body string) Root {
	return Root{SystemID: systemID, Data: []byte(head + ">" + body + "</xs:schema>")}
}

func compile(t *testing.T, cfg BuildConfig, roots ...Root) (*corpus.Corpus, error) {
	t.Helper()
	docs, err := Load(LoadConfig{}, roots)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return Build(docs, cfg)
}

func TestBuildRecoverableDiagnosticsAreCarried(t *testing.T) {
	var sunk []xsderrors.Diagnostic
	c, err := compile(t, BuildConfig{Sink: func(d xsderrors.Diagnostic) { sunk = append(sunk, d) }},
		inline("a.xsd", `
  <xs:simpleType name="S"><xs:restriction base="xs:string"><xs:length value="10"/></xs:restriction></xs:simpleType>
  <xs:simpleType name="R"><xs:restriction base="S"><xs:length value="0"/></xs:restriction></xs:simpleType>`))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	got := c.Diagnostics()
	if len(got) != 1 || got[0].Code != string(xsderrors.ErrLengthRestriction) {
		t.Fatalf("Diagnostics() = %v, want one length-valid-restriction", got)
	}
	if len(sunk) != 1 || sunk[0] != got[0] {
		t.Fatalf("sink received %v, want %v", sunk, got)
	}
}

func TestBuildFatalReturnsDiagnosticList(t *testing.T) {
	var sunk []xsderrors.Diagnostic
	c, err := compile(t, BuildConfig{Sink: func(d xsderrors.Diagnostic) { sunk = append(sunk, d) }},
		inline("a.xsd", `
  <xs:simpleType name="S"><xs:restriction base="xs:string"><xs:length value="10"/></xs:restriction></xs:simpleType>
  <xs:simpleType name="R"><xs:restriction base="S"><xs:length value="0"/></xs:restriction></xs:simpleType>
  <xs:complexType name="T"><xs:sequence>
    <xs:element name="a" minOccurs="0"/><xs:element name="a"/>
  </xs:sequence></xs:complexType>`))
	if c != nil {
		t.Fatalf("Build() corpus = %v, want nil", c)
	}
	list, ok := xsderrors.AsDiagnostics(err)
	if !ok {
		t.Fatalf("Build() error = %v, want diagnostics", err)
	}
	if len(list) != 1 || list[0].Code != string(xsderrors.ErrNonDeterministic) || list[0].Severity != xsderrors.SeverityFatal {
		t.Fatalf("diagnostics = %v, want one fatal cos-nonambig", list)
	}
	if list[0].SystemID != "a.xsd" || list[0].Line == 0 {
		t.Fatalf("location = %s:%d, want a.xsd with a line", list[0].SystemID, list[0].Line)
	}
	if len(sunk) != 2 {
		t.Fatalf("sink received %d diagnostics, want 2", len(sunk))
	}
}

func TestBuildLogsPasses(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if _, err := compile(t, BuildConfig{Logger: logger}, inline("a.xsd", `<xs:element name="e" type="xs:string"/>`)); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	out := buf.String()
	for _, pass := range []string{"graph", "derive", "intrange", "automaton", "contentmodel"} {
		if !strings.Contains(out, "pass="+pass) {
			t.Fatalf("log output missing pass %s:\n%s", pass, out)
		}
	}
	if !strings.Contains(out, "corpus compiled") {
		t.Fatalf("log output missing completion line:\n%s", out)
	}
}

func TestLoadMixedRoots(t *testing.T) {
	fsys := fstest.MapFS{
		"main.xsd": {Data: []byte(head + ` targetNamespace="urn:m" xmlns:c="urn:c">
  <xs:import namespace="urn:c" schemaLocation="common.xsd"/>
  <xs:element name="m" type="c:T"/>
</xs:schema>`)},
		"common.xsd": {Data: []byte(head + ` targetNamespace="urn:c">
  <xs:complexType name="T"/>
</xs:schema>`)},
	}
	roots := []Root{
		{FS: fsys, Location: "main.xsd"},
		{SystemID: "extra.xsd", Data: []byte(head + ` targetNamespace="urn:c">
  <xs:include schemaLocation="shared.xsd"/>
  <xs:element name="x" type="xs:int"/>
</xs:schema>`)},
		inline("shared.xsd", `<xs:element name="shared" type="xs:string"/>`),
	}
	docs, err := Load(LoadConfig{}, roots)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("documents = %d, want 3", len(docs))
	}
	if docs[1].Includes[0].Doc != docs[2] {
		t.Fatalf("inline include did not resolve to the inline root")
	}
	c, err := Build(docs, BuildConfig{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for _, q := range []corpus.QName{{Namespace: "urn:m", Local: "m"}, {Namespace: "urn:c", Local: "x"}, {Namespace: "urn:c", Local: "shared"}} {
		if _, ok := c.LookupElement(q.Namespace, q.Local); !ok {
			t.Fatalf("element %v not found", q)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(LoadConfig{}, []Root{{FS: fstest.MapFS{}, Location: "missing.xsd"}})
	if !errors.Is(err, fs.ErrNotExist) || !strings.Contains(err.Error(), "load missing.xsd") {
		t.Fatalf("Load() error = %v, want wrapped fs.ErrNotExist", err)
	}
	_, err = Load(LoadConfig{}, []Root{{SystemID: "bad.xsd", Data: []byte("<xs:schema")}})
	if err == nil || !strings.Contains(err.Error(), "load bad.xsd") {
		t.Fatalf("Load() error = %v, want syntax error for bad.xsd", err)
	}
}

func TestBuildEmpty(t *testing.T) {
	c, err := Build(nil, BuildConfig{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if n := len(c.Namespaces()); n != 2 {
		t.Fatalf("namespaces = %d, want 2", n)
	}
	if s := c.Stats(); s.Elements != 0 || s.Attributes != 4 {
		t.Fatalf("Stats() = %+v, want no elements and the four xsi attributes", s)
	}
}
