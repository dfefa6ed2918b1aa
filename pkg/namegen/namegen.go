// Package namegen assigns stable, fresh textual names to binder ports.
package namegen

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/vic/readback/pkg/netgraph"
	"github.com/vic/readback/pkg/term"
)

// NameGen maintains the declaring-port -> fresh-id map and the counter new
// ids are drawn from. A variable's name must be keyed by the declaring
// port, not the edge or the use site, so that entering the same binder from
// either end of its edge yields the same name.
type NameGen struct {
	varPortToID map[netgraph.Port]uint64
	idCounter   term.IDCounter
}

// New returns a NameGen with its counter starting at zero.
func New() *NameGen {
	return &NameGen{varPortToID: map[netgraph.Port]uint64{}}
}

// Counter exposes the shared id counter, for passing to term.FixNames when
// an inlined generated definition needs fresh names past whatever this
// NameGen has already allocated.
func (g *NameGen) Counter() *term.IDCounter {
	return &g.idCounter
}

// VarName returns the name assigned to port, allocating a fresh id on first
// use. Calling VarName on the same port from both ends of an edge yields
// the same name, because the map is keyed by port identity, not by edge.
func (g *NameGen) VarName(port netgraph.Port) term.Name {
	id, ok := g.varPortToID[port]
	if !ok {
		id = g.idCounter.Next
		g.idCounter.Next++
		g.varPortToID[port] = id
	}
	return term.VarIDToName(id)
}

// DeclName inspects enter(port): if the peer is an Eraser, the binder is
// unused and DeclName returns nil. Otherwise it returns the name assigned
// to port via VarName.
func DeclName(view netgraph.View, g *NameGen, port netgraph.Port) *term.Name {
	peer := view.Enter(port)
	peerNode, ok := view.Node(peer.Node)
	if ok && peerNode.Kind == netgraph.Eraser {
		return nil
	}
	name := g.VarName(port)
	return &name
}

// DeclaringPorts returns every port a name has been assigned to, in a
// deterministic order (sorted by node id then slot) independent of Go's
// randomized map iteration. Linear mode's unread-node check walks this set
// after draining all deferred scopes; determinism here is what keeps
// readback's non-linear determinism guarantee extending to linear mode's
// effect on the validity bit.
func (g *NameGen) DeclaringPorts() []netgraph.Port {
	ports := maps.Keys(g.varPortToID)
	slices.SortFunc(ports, func(a, b netgraph.Port) bool {
		if a.Node != b.Node {
			return a.Node < b.Node
		}
		return a.Slot < b.Slot
	})
	return ports
}
