package readback

import (
	"testing"

	"github.com/vic/readback/pkg/netgraph"
	"github.com/vic/readback/pkg/term"
)

// link is a tiny convenience wrapper so the net builders below read close
// to the port-wiring diagrams they construct.
func link(n *netgraph.Net, aNode netgraph.NodeID, aSlot netgraph.SlotID, bNode netgraph.NodeID, bSlot netgraph.SlotID) {
	n.Link(netgraph.Port{Node: aNode, Slot: aSlot}, netgraph.Port{Node: bNode, Slot: bSlot})
}

func wantName(t *testing.T, n *term.Name, want string) {
	t.Helper()
	if n == nil {
		t.Fatalf("name = nil, want %q", want)
	}
	if string(*n) != want {
		t.Fatalf("name = %q, want %q", *n, want)
	}
}
