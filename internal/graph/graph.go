// Package graph folds parsed schema documents into corpus nodes. It resolves
// references, expands named groups per use site, and folds attribute uses;
// derivation legality is left to package derive, which consumes Pending.
package graph

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/internal/schemadoc"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// PendingFacet is a facet still in lexical form.
type PendingFacet struct {
	Name     string
	Lexical  string
	Fixed    bool
	Location corpus.Location
}

// PendingSimpleType lists the facets a user simple type declares. Its
// effective facets are the base's effective facets refined by these.
type PendingSimpleType struct {
	Type   corpus.TypeID
	Facets []PendingFacet
	Scope  schemadoc.Scope
}

// PendingValue is a default or fixed value of an element, attribute or
// attribute use, still in lexical form.
type PendingValue struct {
	Node       corpus.NodeID
	Constraint schemadoc.ValueConstraint
	Scope      schemadoc.Scope
	Location   corpus.Location
}

// Pending holds what the derivation validator still has to check. Type lists
// are ordered with every base before its derivations.
type Pending struct {
	SimpleTypes  []PendingSimpleType
	ComplexTypes []corpus.TypeID
	Values       []PendingValue

	// Extensions records what each extension of a complex type copied from
	// its base, so repairs of the base can be carried into it.
	Extensions map[corpus.TypeID]Extension
}

// Extension describes the inherited part of an extension's content and
// attribute uses.
type Extension struct {
	// OwnUses are the uses the extension declares itself.
	OwnUses []corpus.AttributeUseID

	// OwnWildcard is set when the extension declares an attribute wildcard;
	// otherwise it shares the base wildcard.
	OwnWildcard bool

	// Content tells how the base content was inherited.
	Content InheritedContent
}

// InheritedContent tells how an extension holds its base content.
type InheritedContent uint8

const (
	// InheritedNone means the extension content does not contain the base's.
	InheritedNone InheritedContent = iota
	// InheritedWhole means the content is a copy of the base content.
	InheritedWhole
	// InheritedFirst means the content is a sequence whose first member is a
	// copy of the base content particle.
	InheritedFirst
)

// Builtins names the builtin nodes every corpus contains.
type Builtins struct {
	XSD           corpus.NamespaceID
	XSI           corpus.NamespaceID
	AnyType       corpus.TypeID
	AnySimpleType corpus.TypeID
	Types         map[string]corpus.TypeID
}

// Result is the outcome of Build.
type Result struct {
	Pending  Pending
	Builtins Builtins
}

type visitState uint8

const (
	stateNew visitState = iota
	stateVisiting
	stateDone
)

type docKey struct {
	systemID string
	tns      string
}

// docCtx is a document visited under an effective target namespace. The two
// differ only for chameleon includes.
type docCtx struct {
	doc *schemadoc.Document
	tns string
}

// ref maps a reference to the effective namespace: unqualified references
// inside a chameleon document belong to the includer's namespace.
func (c docCtx) ref(q schemadoc.QName) schemadoc.QName {
	if q.Namespace == "" && c.tns != c.doc.TargetNamespace {
		q.Namespace = c.tns
	}
	return q
}

func (c docCtx) loc(pos schemadoc.Pos) corpus.Location {
	return corpus.Location{SystemID: c.doc.SystemID, Line: pos.Line, Column: pos.Column}
}

type typeEntry struct {
	ctx     docCtx
	simple  *schemadoc.SimpleType
	complex *schemadoc.ComplexType
	id      corpus.TypeID
	state   visitState
}

type elementEntry struct {
	ctx  docCtx
	decl *schemadoc.Element
	id   corpus.ElementID
}

type attributeEntry struct {
	ctx  docCtx
	decl *schemadoc.Attribute
	id   corpus.AttributeID
}

type groupEntry struct {
	ctx       docCtx
	decl      *schemadoc.Group
	expanding bool
}

type attrGroupEntry struct {
	ctx   docCtx
	decl  *schemadoc.AttributeGroup
	state visitState
	set   attributeSet
}

type leafKey struct {
	decl any
	tns  string
}

type graph struct {
	b     *corpus.Builder
	diags *xsderrors.Collector
	log   *slog.Logger

	builtins   Builtins
	namespaces map[string]corpus.NamespaceID

	visited    map[docKey]bool
	types      map[schemadoc.QName]*typeEntry
	typeOrder  []*typeEntry
	elements   map[schemadoc.QName]*elementEntry
	elemOrder  []*elementEntry
	attributes map[schemadoc.QName]*attributeEntry
	attrOrder  []*attributeEntry
	groups     map[schemadoc.QName]*groupEntry
	attrGroups map[schemadoc.QName]*attrGroupEntry

	leafElements   map[leafKey]corpus.ElementID
	leafWildcards  map[leafKey]corpus.WildcardID
	leafAttributes map[leafKey]corpus.AttributeID
	anonTypes      map[leafKey]corpus.TypeID
	useSource      map[corpus.AttributeUseID]attrUse

	// headTyped lists elements whose type defaults to their substitution head's.
	headTyped []corpus.ElementID
	// deferred holds anonymous complex type definitions not yet built.
	deferred []func()
	pending  Pending
}

// Build materializes the builtin namespaces and every document reachable
// from roots into b. Schema problems are reported to diags.
func Build(b *corpus.Builder, diags *xsderrors.Collector, logger *slog.Logger, roots []*schemadoc.Document) *Result {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	g := &graph{
		b:              b,
		diags:          diags,
		log:            logger,
		namespaces:     make(map[string]corpus.NamespaceID),
		visited:        make(map[docKey]bool),
		types:          make(map[schemadoc.QName]*typeEntry),
		elements:       make(map[schemadoc.QName]*elementEntry),
		attributes:     make(map[schemadoc.QName]*attributeEntry),
		groups:         make(map[schemadoc.QName]*groupEntry),
		attrGroups:     make(map[schemadoc.QName]*attrGroupEntry),
		leafElements:   make(map[leafKey]corpus.ElementID),
		leafWildcards:  make(map[leafKey]corpus.WildcardID),
		leafAttributes: make(map[leafKey]corpus.AttributeID),
		anonTypes:      make(map[leafKey]corpus.TypeID),
		useSource:      make(map[corpus.AttributeUseID]attrUse),
		pending:        Pending{Extensions: make(map[corpus.TypeID]Extension)},
	}
	g.addBuiltins()
	for _, doc := range roots {
		g.visit(doc, doc.TargetNamespace)
	}
	for _, t := range g.typeOrder {
		g.completeType(t)
	}
	for _, a := range g.attrOrder {
		g.completeGlobalAttribute(a)
	}
	for _, e := range g.elemOrder {
		g.completeGlobalElement(e)
	}
	for len(g.deferred) > 0 {
		next := g.deferred[0]
		g.deferred = g.deferred[1:]
		next()
	}
	g.resolveHeadTypes()
	g.sortNamespaces()
	g.log.Debug("graph built",
		"documents", len(g.visited),
		"nodes", b.Len(),
		"types", len(g.typeOrder),
		"elements", len(g.elemOrder),
		"attributes", len(g.attrOrder))
	return &Result{Pending: g.pending, Builtins: g.builtins}
}

func (g *graph) report(code xsderrors.ErrorCode, loc corpus.Location, format string, args ...any) {
	g.diags.Reportf(xsderrors.SeverityError, code, loc.SystemID, loc.Line, loc.Column, format, args...)
}

func (g *graph) namespace(uri string) corpus.NamespaceID {
	if id, ok := g.namespaces[uri]; ok {
		return id
	}
	id := g.b.NewNamespace(uri, false)
	g.namespaces[uri] = id
	return id
}

func (g *graph) newParticle(term corpus.NodeID, minOccurs, maxOccurs uint32, owner corpus.NodeID, loc corpus.Location) corpus.ParticleID {
	id := g.b.NewParticle(term, minOccurs, maxOccurs)
	p := g.b.Particle(id)
	p.Owner = owner
	p.Location = loc
	return id
}

// visit registers the globals of doc under tns, then follows its directives.
// A document is visited once per effective namespace; marking it before the
// directives are followed makes circular include and import terminate.
func (g *graph) visit(doc *schemadoc.Document, tns string) {
	key := docKey{systemID: doc.SystemID, tns: tns}
	if g.visited[key] {
		return
	}
	g.visited[key] = true
	ctx := docCtx{doc: doc, tns: tns}
	g.register(ctx)

	for _, inc := range doc.Includes {
		if inc.Doc == nil {
			continue
		}
		switch inc.Doc.TargetNamespace {
		case tns, "":
			g.visit(inc.Doc, tns)
		default:
			g.report(xsderrors.ErrSrcInclude, ctx.loc(inc.Pos),
				"included document %s has target namespace %q, want %q", inc.Doc.SystemID, inc.Doc.TargetNamespace, tns)
		}
	}
	for _, imp := range doc.Imports {
		if imp.Doc == nil {
			continue
		}
		if imp.Doc.TargetNamespace != imp.Namespace {
			g.report(xsderrors.ErrSrcImport, ctx.loc(imp.Pos),
				"imported document %s has target namespace %q, want %q", imp.Doc.SystemID, imp.Doc.TargetNamespace, imp.Namespace)
			continue
		}
		g.visit(imp.Doc, imp.Doc.TargetNamespace)
	}
}

// duplicate handles a second global with a taken name. Identical
// declarations reached through several documents are unified silently.
func (g *graph) duplicate(kind string, name schemadoc.QName, existing, fingerprint string, loc corpus.Location) {
	if existing == fingerprint {
		return
	}
	g.report(xsderrors.ErrDuplicateGlobal, loc, "duplicate global %s %s", kind, qnameString(name))
}

func (g *graph) register(ctx docCtx) {
	d := ctx.doc
	qn := func(local string) schemadoc.QName { return schemadoc.QName{Namespace: ctx.tns, Local: local} }
	for _, st := range d.SimpleTypes {
		g.registerType(ctx, qn(st.Name), &typeEntry{ctx: ctx, simple: st}, st.Fingerprint, st.Pos)
	}
	for _, ct := range d.ComplexTypes {
		g.registerType(ctx, qn(ct.Name), &typeEntry{ctx: ctx, complex: ct}, ct.Fingerprint, ct.Pos)
	}
	for _, e := range d.Elements {
		name := qn(e.Name)
		if prev, ok := g.elements[name]; ok {
			g.duplicate("element", name, prev.decl.Fingerprint, e.Fingerprint, ctx.loc(e.Pos))
			continue
		}
		entry := &elementEntry{ctx: ctx, decl: e, id: g.b.NewElement()}
		g.elements[name] = entry
		g.elemOrder = append(g.elemOrder, entry)
		ns := g.namespace(ctx.tns)
		g.b.Namespace(ns).Elements = append(g.b.Namespace(ns).Elements, entry.id)
	}
	for _, a := range d.Attributes {
		name := qn(a.Name)
		if prev, ok := g.attributes[name]; ok {
			g.duplicate("attribute", name, prev.decl.Fingerprint, a.Fingerprint, ctx.loc(a.Pos))
			continue
		}
		entry := &attributeEntry{ctx: ctx, decl: a, id: g.b.NewAttribute()}
		g.attributes[name] = entry
		g.attrOrder = append(g.attrOrder, entry)
		ns := g.namespace(ctx.tns)
		g.b.Namespace(ns).Attributes = append(g.b.Namespace(ns).Attributes, entry.id)
	}
	for _, gr := range d.Groups {
		name := qn(gr.Name)
		if prev, ok := g.groups[name]; ok {
			g.duplicate("group", name, prev.decl.Fingerprint, gr.Fingerprint, ctx.loc(gr.Pos))
			continue
		}
		g.groups[name] = &groupEntry{ctx: ctx, decl: gr}
	}
	for _, ag := range d.AttributeGroups {
		name := qn(ag.Name)
		if prev, ok := g.attrGroups[name]; ok {
			g.duplicate("attributeGroup", name, prev.decl.Fingerprint, ag.Fingerprint, ctx.loc(ag.Pos))
			continue
		}
		g.attrGroups[name] = &attrGroupEntry{ctx: ctx, decl: ag}
	}
}

func (g *graph) registerType(ctx docCtx, name schemadoc.QName, entry *typeEntry, fingerprint string, pos schemadoc.Pos) {
	if prev, ok := g.types[name]; ok {
		g.duplicate("type", name, prev.fingerprint(), fingerprint, ctx.loc(pos))
		return
	}
	if entry.simple != nil {
		entry.id = g.b.NewSimpleType()
	} else {
		entry.id = g.b.NewComplexType()
	}
	g.types[name] = entry
	g.typeOrder = append(g.typeOrder, entry)
	ns := g.namespace(ctx.tns)
	g.b.Namespace(ns).Types = append(g.b.Namespace(ns).Types, entry.id)
}

func (t *typeEntry) fingerprint() string {
	if t.simple != nil {
		return t.simple.Fingerprint
	}
	return t.complex.Fingerprint
}

// sortNamespaces orders each namespace's declarations by local name.
func (g *graph) sortNamespaces() {
	for _, id := range g.namespaces {
		ns := g.b.Namespace(id)
		slices.SortFunc(ns.Elements, func(a, b corpus.ElementID) int {
			return cmp.Compare(g.b.String(g.b.Element(a).Name), g.b.String(g.b.Element(b).Name))
		})
		slices.SortFunc(ns.Attributes, func(a, b corpus.AttributeID) int {
			return cmp.Compare(g.b.String(g.b.Attribute(a).Name), g.b.String(g.b.Attribute(b).Name))
		})
		slices.SortFunc(ns.Types, func(a, b corpus.TypeID) int {
			return cmp.Compare(g.typeLocal(a), g.typeLocal(b))
		})
	}
}

func (g *graph) typeLocal(id corpus.TypeID) string {
	if g.b.IsSimpleType(id) {
		return g.b.String(g.b.SimpleType(id).Name)
	}
	return g.b.String(g.b.ComplexType(id).Name)
}

func qnameString(q schemadoc.QName) string {
	if q.Namespace == "" {
		return q.Local
	}
	return fmt.Sprintf("{%s}%s", q.Namespace, q.Local)
}
