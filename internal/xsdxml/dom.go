package xsdxml

// NodeID identifies an element in the document arena.
type NodeID int

// InvalidNode represents an invalid node reference.
const InvalidNode NodeID = -1

// Document is a compact element arena for a parsed schema document.
type Document struct {
	nodes []node
	root  NodeID
}

type node struct {
	namespace string
	local     string
	attrs     []Attr
	children  []NodeID
	text      []byte
	parent    NodeID
	line      int
	column    int
	scope     map[string]string
}

// Attr is a namespace-resolved attribute. Namespace declarations are not
// reported as attributes; see Scope.
type Attr struct {
	Namespace string
	Local     string
	Value     string
}

// Root returns the document element.
func (d *Document) Root() NodeID {
	if d == nil {
		return InvalidNode
	}
	return d.root
}

func (d *Document) valid(id NodeID) bool {
	return d != nil && id >= 0 && int(id) < len(d.nodes)
}

// Parent returns the parent element of id, or InvalidNode for the root.
func (d *Document) Parent(id NodeID) NodeID {
	if !d.valid(id) {
		return InvalidNode
	}
	return d.nodes[id].parent
}

// NamespaceURI returns the namespace URI of an element.
func (d *Document) NamespaceURI(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	return d.nodes[id].namespace
}

// LocalName returns the local name of an element.
func (d *Document) LocalName(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	return d.nodes[id].local
}

// Attributes returns the element attributes in document order.
// The returned slice aliases the document; do not modify it.
func (d *Document) Attributes(id NodeID) []Attr {
	if !d.valid(id) {
		return nil
	}
	return d.nodes[id].attrs
}

// Children returns the child elements in document order.
// The returned slice aliases the document; do not modify it.
func (d *Document) Children(id NodeID) []NodeID {
	if !d.valid(id) {
		return nil
	}
	return d.nodes[id].children
}

// Text returns the character data directly under the element.
func (d *Document) Text(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	return string(d.nodes[id].text)
}

// Position returns the 1-based line and column of the element start tag.
func (d *Document) Position(id NodeID) (int, int) {
	if !d.valid(id) {
		return 0, 0
	}
	return d.nodes[id].line, d.nodes[id].column
}

// Scope returns the namespace bindings in effect at the element. The map is
// shared between elements that declare no namespaces; do not modify it.
func (d *Document) Scope(id NodeID) map[string]string {
	if !d.valid(id) {
		return nil
	}
	return d.nodes[id].scope
}

// GetAttribute returns the value of an unqualified attribute.
func (d *Document) GetAttribute(id NodeID, name string) string {
	v, _ := d.LookupAttribute(id, name)
	return v
}

// HasAttribute reports whether the element has an unqualified attribute.
func (d *Document) HasAttribute(id NodeID, name string) bool {
	_, ok := d.LookupAttribute(id, name)
	return ok
}

// LookupAttribute returns the value of an unqualified attribute and whether it is present.
func (d *Document) LookupAttribute(id NodeID, name string) (string, bool) {
	for _, a := range d.Attributes(id) {
		if a.Namespace == "" && a.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
