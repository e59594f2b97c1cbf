package corpus

import (
	"errors"
	"strings"
	"testing"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
)

func mustPanicMisuse(t *testing.T, fn func()) *MisuseError {
	t.Helper()
	var got *MisuseError
	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatalf("expected panic")
			}
			err, ok := r.(*MisuseError)
			if !ok {
				t.Fatalf("panic value = %T, want *MisuseError", r)
			}
			got = err
		}()
		fn()
	}()
	return got
}

func newSimpleCorpus(t *testing.T) (*Builder, NamespaceID, ElementID, TypeID) {
	t.Helper()
	b := NewBuilder()
	xsd := b.NewNamespace("http://www.w3.org/2001/XMLSchema", true)
	str := b.NewSimpleType()
	st := b.SimpleType(str)
	st.Name = b.Intern("string")
	st.Namespace = xsd
	st.Builtin = true
	st.Variety = VarietyAtomic
	b.Namespace(xsd).Types = append(b.Namespace(xsd).Types, str)

	ns := b.NewNamespace("urn:a", false)
	el := b.NewElement()
	e := b.Element(el)
	e.Name = b.Intern("root")
	e.Namespace = ns
	e.Global = true
	b.SetElementType(el, str)
	b.Namespace(ns).Elements = append(b.Namespace(ns).Elements, el)
	return b, ns, el, str
}

func TestInternDedupes(t *testing.T) {
	b := NewBuilder()
	a := b.Intern("a")
	if again := b.Intern("a"); again != a {
		t.Fatalf("Intern(a) = %d, want %d", again, a)
	}
	if b.Intern("") != 0 {
		t.Fatalf("Intern(\"\") = %d, want 0", b.Intern(""))
	}
	if got := b.String(a); got != "a" {
		t.Fatalf("String(%d) = %q, want a", a, got)
	}
}

func TestNilIsReserved(t *testing.T) {
	b := NewBuilder()
	if b.Kind(Nil) != KindInvalid {
		t.Fatalf("Kind(Nil) = %s, want invalid", b.Kind(Nil))
	}
	id := b.Allocate(KindElement)
	if id == Nil {
		t.Fatalf("Allocate returned Nil")
	}
	if b.Kind(NodeID(9999)) != KindInvalid {
		t.Fatalf("Kind(out of range) should be invalid")
	}
}

func TestFreezeAndLookup(t *testing.T) {
	b, ns, el, str := newSimpleCorpus(t)
	b.Report(xsderrors.NewDiagnostic(xsderrors.SeverityWarning, xsderrors.ErrPatternInvalid, "kept"))
	c, err := b.Freeze()
	if err != nil {
		t.Fatalf("Freeze() error = %v", err)
	}
	got, ok := c.LookupElement("urn:a", "root")
	if !ok || got != el {
		t.Fatalf("LookupElement(urn:a, root) = %d, %v, want %d", got, ok, el)
	}
	if c.Element(got).Type != str {
		t.Fatalf("element type = %d, want %d", c.Element(got).Type, str)
	}
	if id, ok := c.LookupNamespace("urn:a"); !ok || id != ns {
		t.Fatalf("LookupNamespace(urn:a) = %d, %v", id, ok)
	}
	if _, ok := c.LookupElement("urn:missing", "root"); ok {
		t.Fatalf("LookupElement(urn:missing) found")
	}
	if name := c.ElementName(el); name.Local != "root" || name.Namespace != "urn:a" {
		t.Fatalf("ElementName = %v", name)
	}
	if name := c.TypeName(str); name.Local != "string" {
		t.Fatalf("TypeName = %v", name)
	}
	if len(c.Diagnostics()) != 1 {
		t.Fatalf("Diagnostics() len = %d, want 1", len(c.Diagnostics()))
	}
	order := c.Namespaces()
	if len(order) != 2 || c.NamespaceURI(order[0]) != "http://www.w3.org/2001/XMLSchema" {
		t.Fatalf("Namespaces() = %v", order)
	}
	if s := c.Stats(); s.Elements != 1 || s.SimpleTypes != 1 || s.Namespaces != 2 {
		t.Fatalf("Stats() = %+v", s)
	}
}

func TestNamespaceOrderBuiltinsFirst(t *testing.T) {
	b := NewBuilder()
	b.NewNamespace("urn:z", false)
	b.NewNamespace("http://www.w3.org/2001/XMLSchema", true)
	b.NewNamespace("urn:a", false)
	b.NewNamespace("http://www.w3.org/2001/XMLSchema-instance", true)
	c, err := b.Freeze()
	if err != nil {
		t.Fatalf("Freeze() error = %v", err)
	}
	var got []string
	for _, id := range c.Namespaces() {
		got = append(got, c.NamespaceURI(id))
	}
	want := "http://www.w3.org/2001/XMLSchema http://www.w3.org/2001/XMLSchema-instance urn:a urn:z"
	if strings.Join(got, " ") != want {
		t.Fatalf("Namespaces() = %v, want %s", got, want)
	}
}

func TestWriteAfterFreezePanics(t *testing.T) {
	b, _, el, _ := newSimpleCorpus(t)
	if _, err := b.Freeze(); err != nil {
		t.Fatalf("Freeze() error = %v", err)
	}
	err := mustPanicMisuse(t, func() { b.Element(el) })
	if !err.Frozen {
		t.Fatalf("MisuseError.Frozen = false")
	}
	mustPanicMisuse(t, func() { b.Allocate(KindGroup) })
	mustPanicMisuse(t, func() { b.Intern("new string") })
	mustPanicMisuse(t, func() { b.AddVariant(BoolVariant(true)) })
	mustPanicMisuse(t, func() { _, _ = b.Freeze() })
}

func TestWrongKindAccessorPanics(t *testing.T) {
	b, _, el, str := newSimpleCorpus(t)
	err := mustPanicMisuse(t, func() { b.ComplexType(str) })
	if err.Want != KindComplexType || err.Got != KindSimpleType {
		t.Fatalf("MisuseError = %+v", err)
	}
	c, ferr := b.Freeze()
	if ferr != nil {
		t.Fatalf("Freeze() error = %v", ferr)
	}
	mustPanicMisuse(t, func() { c.Particle(ParticleID(el)) })
	mustPanicMisuse(t, func() { c.Element(ElementID(Nil)) })

	node := el.Node()
	accessors := map[string]func(){
		"Namespace":    func() { c.Namespace(NamespaceID(node)) },
		"Element":      func() { c.Element(ElementID(str.Node())) },
		"Attribute":    func() { c.Attribute(AttributeID(node)) },
		"AttributeUse": func() { c.AttributeUse(AttributeUseID(node)) },
		"SimpleType":   func() { c.SimpleType(TypeID(node)) },
		"ComplexType":  func() { c.ComplexType(TypeID(node)) },
		"Particle":     func() { c.Particle(ParticleID(node)) },
		"Group":        func() { c.Group(GroupID(node)) },
		"Wildcard":     func() { c.Wildcard(WildcardID(node)) },
	}
	for name, call := range accessors {
		t.Run(name, func(t *testing.T) {
			if err := mustPanicMisuse(t, call); err.Frozen {
				t.Fatalf("MisuseError.Frozen = true, want a kind mismatch")
			}
		})
	}
}

func TestFreezeReportsInvariantViolations(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *Builder)
		want  string
	}{
		{
			name: "particle occurs",
			setup: func(b *Builder) {
				el := b.NewElement()
				b.Element(el).Namespace = b.NewNamespace("", false)
				b.NewParticle(el.Node(), 3, 2)
			},
			want: "minOccurs 3 > maxOccurs 2",
		},
		{
			name: "empty content with particle",
			setup: func(b *Builder) {
				g := b.NewGroup(CompositorSequence)
				ct := b.NewComplexType()
				b.ComplexType(ct).Particle = b.NewParticle(g.Node(), 1, 1)
			},
			want: "content empty with particle",
		},
		{
			name: "element-only without particle",
			setup: func(b *Builder) {
				ct := b.NewComplexType()
				b.ComplexType(ct).Content = ContentElementOnly
			},
			want: "content element-only with particle 0",
		},
		{
			name: "all member is a group",
			setup: func(b *Builder) {
				all := b.NewGroup(CompositorAll)
				inner := b.NewGroup(CompositorSequence)
				b.Group(all).Particles = []ParticleID{b.NewParticle(inner.Node(), 1, 1)}
			},
			want: "all member",
		},
		{
			name: "all member repeats",
			setup: func(b *Builder) {
				el := b.NewElement()
				b.Element(el).Namespace = b.NewNamespace("", false)
				all := b.NewGroup(CompositorAll)
				b.Group(all).Particles = []ParticleID{b.NewParticle(el.Node(), 1, 2)}
			},
			want: "has maxOccurs 2",
		},
		{
			name: "duplicate attribute uses",
			setup: func(b *Builder) {
				ns := b.NewNamespace("", false)
				attr := b.NewAttribute()
				b.Attribute(attr).Name = b.Intern("a")
				b.Attribute(attr).Namespace = ns
				ct := b.NewComplexType()
				for range 2 {
					u := b.NewAttributeUse()
					b.AttributeUse(u).Attribute = attr
					b.ComplexType(ct).AttributeUses = append(b.ComplexType(ct).AttributeUses, u)
				}
			},
			want: "duplicate attribute use",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			tt.setup(b)
			_, err := b.Freeze()
			if err == nil {
				t.Fatalf("Freeze() error = nil, want %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Freeze() error = %v, want %q", err, tt.want)
			}
			var misuse *MisuseError
			if errors.As(err, &misuse) {
				t.Fatalf("invariant failure should not be a MisuseError")
			}
		})
	}
}

func TestCorpusIsolatedFromBuilderPointers(t *testing.T) {
	b, _, el, _ := newSimpleCorpus(t)
	rec := b.Element(el)
	c, err := b.Freeze()
	if err != nil {
		t.Fatalf("Freeze() error = %v", err)
	}
	rec.Nillable = true
	if c.Element(el).Nillable {
		t.Fatalf("corpus observed a write through a stale builder pointer")
	}
}

func TestSubstitutableElementsTransitive(t *testing.T) {
	b := NewBuilder()
	ns := b.NewNamespace("", false)
	head := b.NewElement()
	mid := b.NewElement()
	leaf := b.NewElement()
	for _, id := range []ElementID{head, mid, leaf} {
		b.Element(id).Namespace = ns
	}
	b.Element(head).SubstitutionMembers = []ElementID{mid}
	b.Element(mid).SubstitutionHead = head
	b.Element(mid).SubstitutionMembers = []ElementID{leaf}
	b.Element(leaf).SubstitutionHead = mid
	c, err := b.Freeze()
	if err != nil {
		t.Fatalf("Freeze() error = %v", err)
	}
	got := c.SubstitutableElements(head)
	if len(got) != 2 || got[0] != mid || got[1] != leaf {
		t.Fatalf("SubstitutableElements(head) = %v, want [%d %d]", got, mid, leaf)
	}
}
