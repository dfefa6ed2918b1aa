// Package netgraph is the net view: read-only random access to
// interaction-net nodes, their kinds, and their port wiring.
package netgraph

import (
	"fmt"

	"github.com/vic/readback/pkg/term"
)

// SlotID is a port's slot number on its node: 0 is principal, 1 and 2 are
// auxiliary.
type SlotID uint8

const (
	Slot0 SlotID = iota
	Slot1
	Slot2
)

// NodeID is an arbitrary, opaque node handle.
type NodeID uint64

// Port identifies a connection point as (node, slot).
type Port struct {
	Node NodeID
	Slot SlotID
}

func (p Port) String() string { return fmt.Sprintf("%d:%d", p.Node, p.Slot) }

// Kind is the closed set of agent kinds a node can have.
type Kind int

const (
	Root Kind = iota
	Eraser
	Con
	Dup
	Mat
	Num
	Op2
	Tup
	Ref
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "Root"
	case Eraser:
		return "Eraser"
	case Con:
		return "Con"
	case Dup:
		return "Dup"
	case Mat:
		return "Mat"
	case Num:
		return "Num"
	case Op2:
		return "Op2"
	case Tup:
		return "Tup"
	case Ref:
		return "Ref"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is one agent: its kind and the payload the kind carries (Dup's
// label, Num's value, or Ref's definition id — the other fields are zero).
type Node struct {
	Kind  Kind
	Label uint8
	Value uint32
	DefID term.DefID
}

// View is the read-only surface the readback engine walks. It is purely
// functional from the engine's perspective: no call mutates the net.
type View interface {
	// Node looks up a node by id. ok is false for an id with no node,
	// which the engine treats as a malformed net (soft failure).
	Node(id NodeID) (Node, bool)
	// Enter returns the peer of a port: enter(p) = peer(p).
	Enter(p Port) Port
	// Root is the distinguished root port the engine starts its walk from.
	Root() Port
}

// Net is the concrete, in-memory View implementation: an arena of nodes
// addressed by integer id, with ports stored as explicit peer pairs.
type Net struct {
	nodes map[NodeID]Node
	peers map[Port]Port
	root  Port
}

// NewNet returns an empty net with a single Root node at id 0, wired as its
// own peer until Link connects it to something (Enter(Root) on an
// unconnected root therefore returns the root port itself, which the
// engine's Rot-kind handling treats as the same shape as any other
// self-reference: no defined meaning, soft failure).
func NewNet() *Net {
	root := Port{Node: 0, Slot: Slot0}
	n := &Net{
		nodes: map[NodeID]Node{0: {Kind: Root}},
		peers: map[Port]Port{},
		root:  root,
	}
	return n
}

// AddNode inserts or overwrites the node at id.
func (n *Net) AddNode(id NodeID, node Node) {
	n.nodes[id] = node
}

// Link connects two ports as mutual peers. It overwrites any prior peer of
// either port, matching how an interaction net's wiring is a plain
// involution with no concept of partial edges.
func (n *Net) Link(a, b Port) {
	n.peers[a] = b
	n.peers[b] = a
}

// Node implements View.
func (n *Net) Node(id NodeID) (Node, bool) {
	node, ok := n.nodes[id]
	return node, ok
}

// Enter implements View.
func (n *Net) Enter(p Port) Port {
	if peer, ok := n.peers[p]; ok {
		return peer
	}
	// An unlinked port is its own peer: entering it just bounces back,
	// which every reader case treats as an unrecognized shape.
	return p
}

// Root implements View.
func (n *Net) Root() Port {
	return n.root
}

// SetRoot overrides the port the engine starts its walk from. Fixtures that
// don't need the implicit node-0/slot-0 root (e.g. one recorded mid-reduction,
// where the interesting redex sits elsewhere) call this after building the
// net.
func (n *Net) SetRoot(p Port) {
	n.root = p
}

// CheckWellFormed reports the first invariant violation found: peer(peer(p))
// = p for every linked port. It is diagnostic tooling for
// fixtures and tests, not something the engine itself calls — readback must
// detect malformed nets inline (via valid=false) without aborting, but a
// fixture author benefits from a loud check before handing a net to the
// engine at all.
func (n *Net) CheckWellFormed() error {
	for p, q := range n.peers {
		if back := n.Enter(q); back != p {
			return fmt.Errorf("netgraph: involution broken at %s <-> %s (back = %s)", p, q, back)
		}
	}
	return nil
}
