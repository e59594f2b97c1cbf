package contentmodel

// node is a term of the position tree; first and last sets are computed
// lazily and cached.
type node interface {
	nullable() bool
	firstPos() *bitset
	lastPos() *bitset
}

type leafNode struct {
	first *bitset
	pos   int
	size  int
}

func newLeaf(pos, size int) *leafNode {
	return &leafNode{pos: pos, size: size}
}

func (n *leafNode) nullable() bool { return false }

func (n *leafNode) firstPos() *bitset {
	if n.first == nil {
		b := newBitset(n.size)
		b.set(n.pos)
		n.first = b
	}
	return n.first
}

func (n *leafNode) lastPos() *bitset { return n.firstPos() }

// epsilonNode matches the empty sequence. It stands for a present group
// that contributes no positions.
type epsilonNode struct {
	empty *bitset
}

func newEpsilon(size int) *epsilonNode {
	return &epsilonNode{empty: newBitset(size)}
}

func (n *epsilonNode) nullable() bool    { return true }
func (n *epsilonNode) firstPos() *bitset { return n.empty }
func (n *epsilonNode) lastPos() *bitset  { return n.empty }

type seqNode struct {
	left  node
	right node
	first *bitset
	last  *bitset
	size  int
}

func newSeq(left, right node, size int) *seqNode {
	return &seqNode{left: left, right: right, size: size}
}

func (n *seqNode) nullable() bool {
	return n.left.nullable() && n.right.nullable()
}

func (n *seqNode) firstPos() *bitset {
	if n.first != nil {
		return n.first
	}
	n.first = newBitset(n.size)
	n.first.or(n.left.firstPos())
	if n.left.nullable() {
		n.first.or(n.right.firstPos())
	}
	return n.first
}

func (n *seqNode) lastPos() *bitset {
	if n.last != nil {
		return n.last
	}
	n.last = newBitset(n.size)
	n.last.or(n.right.lastPos())
	if n.right.nullable() {
		n.last.or(n.left.lastPos())
	}
	return n.last
}

type altNode struct {
	left  node
	right node
	first *bitset
	last  *bitset
	size  int
}

func newAlt(left, right node, size int) *altNode {
	return &altNode{left: left, right: right, size: size}
}

func (n *altNode) nullable() bool {
	return n.left.nullable() || n.right.nullable()
}

func (n *altNode) firstPos() *bitset {
	if n.first != nil {
		return n.first
	}
	n.first = newBitset(n.size)
	n.first.or(n.left.firstPos())
	n.first.or(n.right.firstPos())
	return n.first
}

func (n *altNode) lastPos() *bitset {
	if n.last != nil {
		return n.last
	}
	n.last = newBitset(n.size)
	n.last.or(n.left.lastPos())
	n.last.or(n.right.lastPos())
	return n.last
}

// repeatNode wraps a child in ?, * or +. Repetition adds follow edges from
// the child's last positions back to its first positions.
type repeatNode struct {
	child    node
	optional bool
	repeats  bool
	first    *bitset
	last     *bitset
}

func newRepeat(child node, optional, repeats bool) *repeatNode {
	return &repeatNode{child: child, optional: optional, repeats: repeats}
}

func (n *repeatNode) nullable() bool { return n.optional || n.child.nullable() }

func (n *repeatNode) firstPos() *bitset {
	if n.first == nil {
		n.first = n.child.firstPos().clone()
	}
	return n.first
}

func (n *repeatNode) lastPos() *bitset {
	if n.last == nil {
		n.last = n.child.lastPos().clone()
	}
	return n.last
}
