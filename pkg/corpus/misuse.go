package corpus

import "fmt"

// MisuseError is the panic value raised when the arena API is used incorrectly:
// a write through a frozen Builder, or a kind-specific accessor applied to a
// node of another kind.
type MisuseError struct {
	Op     string
	Node   NodeID
	Want   Kind
	Got    Kind
	Frozen bool
}

func (e *MisuseError) Error() string {
	if e.Frozen {
		return fmt.Sprintf("corpus: %s on a frozen builder", e.Op)
	}
	return fmt.Sprintf("corpus: %s: node %d is %s, want %s", e.Op, e.Node, e.Got, e.Want)
}

func panicKind(op string, id NodeID, want, got Kind) {
	panic(&MisuseError{Op: op, Node: id, Want: want, Got: got})
}
