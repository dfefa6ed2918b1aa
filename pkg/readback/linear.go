package readback

import (
	"time"

	"github.com/vic/readback/internal/portset"
	"github.com/vic/readback/pkg/book"
	"github.com/vic/readback/pkg/namegen"
	"github.com/vic/readback/pkg/netgraph"
	"github.com/vic/readback/pkg/scope"
	"github.com/vic/readback/pkg/term"
)

// NetToTermLinear converts a net into a term visiting each edge at most
// once: every duplicator becomes an explicit Dup/Let binder instead of
// being resolved during the walk.
func NetToTermLinear(view netgraph.View, bk *book.Book, opts ...Option) (term.Term, bool) {
	o := resolveOptions(opts)
	start := time.Now()

	ng := namegen.New()
	r := &linearReader{
		view:     view,
		book:     bk,
		namegen:  ng,
		dupScope: scope.New[netgraph.NodeID](),
		tupScope: scope.New[netgraph.NodeID](),
		seen:     portset.New(),
		recorder: o.recorder,
	}

	main, valid := r.read(view.Enter(view.Root()))

	for {
		node, ok := r.dupScope.Pop()
		if !ok {
			break
		}
		r.seen.Insert(netgraph.Port{Node: node, Slot: netgraph.Slot0})
		valPort := view.Enter(netgraph.Port{Node: node, Slot: netgraph.Slot0})
		val, valValid := r.read(valPort)
		fst := namegen.DeclName(view, ng, netgraph.Port{Node: node, Slot: netgraph.Slot1})
		snd := namegen.DeclName(view, ng, netgraph.Port{Node: node, Slot: netgraph.Slot2})
		main = term.Dup{Tag: nil, Fst: fst, Snd: snd, Val: val, Nxt: main}
		valid = valid && valValid
	}

	for {
		node, ok := r.tupScope.Pop()
		if !ok {
			break
		}
		r.seen.Insert(netgraph.Port{Node: node, Slot: netgraph.Slot0})
		valPort := view.Enter(netgraph.Port{Node: node, Slot: netgraph.Slot0})
		val, valValid := r.read(valPort)
		fst := namegen.DeclName(view, ng, netgraph.Port{Node: node, Slot: netgraph.Slot1})
		snd := namegen.DeclName(view, ng, netgraph.Port{Node: node, Slot: netgraph.Slot2})
		main = term.Let{Pat: term.TupPat{Fst: fst, Snd: snd}, Val: val, Nxt: main}
		valid = valid && valValid
	}

	// Unread-node check: every slot of every declaring node must have been
	// visited, unless its peer is an Eraser (an orphaned fragment of the
	// net is otherwise invisible to the rest of the checks above).
	for _, declPort := range ng.DeclaringPorts() {
		for slot := netgraph.SlotID(0); slot < 3; slot++ {
			checkPort := netgraph.Port{Node: declPort.Node, Slot: slot}
			if r.seen.Contains(checkPort) {
				continue
			}
			otherPort := view.Enter(checkPort)
			otherNode, ok := view.Node(otherPort.Node)
			if !ok || otherNode.Kind != netgraph.Eraser {
				valid = false
			}
		}
	}

	o.recorder.ObserveDone("linear", valid, time.Since(start))
	return main, valid
}

type linearReader struct {
	view     netgraph.View
	book     *book.Book
	namegen  *namegen.NameGen
	dupScope *scope.Buffer[netgraph.NodeID]
	tupScope *scope.Buffer[netgraph.NodeID]
	seen     *portset.Set
	recorder interface {
		ObserveNode(netgraph.Kind)
		ObserveRefInlined()
	}
}

func (r *linearReader) read(next netgraph.Port) (term.Term, bool) {
	if r.seen.Contains(next) {
		return term.Var{Name: "..."}, false
	}
	r.seen.Insert(next)

	node, ok := r.view.Node(next.Node)
	if !ok {
		return term.Era{}, false
	}
	r.recorder.ObserveNode(node.Kind)

	switch node.Kind {
	case netgraph.Eraser:
		return term.Era{}, next.Slot == netgraph.Slot0

	case netgraph.Con:
		switch next.Slot {
		case netgraph.Slot0:
			r.seen.Insert(netgraph.Port{Node: next.Node, Slot: netgraph.Slot2})
			nam := namegen.DeclName(r.view, r.namegen, netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
			bodyPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot2})
			bod, valid := r.read(bodyPort)
			return term.Lam{Name: nam, Body: bod}, valid
		case netgraph.Slot1:
			return term.Var{Name: r.namegen.VarName(next)}, true
		case netgraph.Slot2:
			r.seen.Insert(netgraph.Port{Node: next.Node, Slot: netgraph.Slot0})
			r.seen.Insert(netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
			funPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot0})
			fun, funValid := r.read(funPort)
			argPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
			arg, argValid := r.read(argPort)
			return term.App{Fun: fun, Arg: arg}, funValid && argValid
		default:
			return term.Era{}, false
		}

	case netgraph.Mat:
		if next.Slot != netgraph.Slot2 {
			return term.Era{}, false
		}
		r.seen.Insert(netgraph.Port{Node: next.Node, Slot: netgraph.Slot0})
		r.seen.Insert(netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
		condPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot0})
		condTerm, condValid := r.read(condPort)

		selPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
		selNode, selOk := r.view.Node(selPort.Node)
		r.seen.Insert(netgraph.Port{Node: selPort.Node, Slot: netgraph.Slot0})
		r.seen.Insert(netgraph.Port{Node: selPort.Node, Slot: netgraph.Slot1})
		r.seen.Insert(netgraph.Port{Node: selPort.Node, Slot: netgraph.Slot2})
		if !selOk || selNode.Kind != netgraph.Con {
			return term.Match{Cond: condTerm, Zero: term.Era{}, Succ: term.Era{}}, false
		}

		zeroPort := r.view.Enter(netgraph.Port{Node: selPort.Node, Slot: netgraph.Slot1})
		zeroTerm, zeroValid := r.read(zeroPort)
		succPort := r.view.Enter(netgraph.Port{Node: selPort.Node, Slot: netgraph.Slot2})
		succTerm, succValid := r.read(succPort)

		return term.Match{Cond: condTerm, Zero: zeroTerm, Succ: succTerm}, condValid && zeroValid && succValid

	case netgraph.Ref:
		if r.book.IsGenerated(node.DefID) {
			r.book.AssertNoPatternMatchingRules(node.DefID)
			body := r.book.GeneratedBody(node.DefID)
			fixed := term.FixNames(body, r.namegen.Counter(), r.book)
			r.recorder.ObserveRefInlined()
			return fixed, true
		}
		return term.Ref{DefID: node.DefID}, true

	case netgraph.Dup:
		switch next.Slot {
		case netgraph.Slot0:
			r.seen.Insert(netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
			r.seen.Insert(netgraph.Port{Node: next.Node, Slot: netgraph.Slot2})
			fstPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
			sndPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot2})
			fst, fstValid := r.read(fstPort)
			snd, sndValid := r.read(sndPort)
			return term.Sup{Fst: fst, Snd: snd}, fstValid && sndValid
		case netgraph.Slot1, netgraph.Slot2:
			r.dupScope.Insert(next.Node)
			return term.Var{Name: r.namegen.VarName(next)}, true
		default:
			return term.Era{}, false
		}

	case netgraph.Num:
		return term.Num{Value: node.Value}, true

	case netgraph.Op2:
		if next.Slot != netgraph.Slot2 {
			return term.Era{}, false
		}
		r.seen.Insert(netgraph.Port{Node: next.Node, Slot: netgraph.Slot0})
		r.seen.Insert(netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
		opPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot0})
		opTerm, opValid := r.read(opPort)
		argPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
		argTerm, argValid := r.read(argPort)
		result, reassocValid := reassocLinear(opTerm, argTerm)
		return result, opValid && argValid && reassocValid

	case netgraph.Root:
		return term.Era{}, false

	case netgraph.Tup:
		switch next.Slot {
		case netgraph.Slot0:
			r.seen.Insert(netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
			r.seen.Insert(netgraph.Port{Node: next.Node, Slot: netgraph.Slot2})
			fstPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
			sndPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot2})
			fst, fstValid := r.read(fstPort)
			snd, sndValid := r.read(sndPort)
			return term.Tup{Fst: fst, Snd: snd}, fstValid && sndValid
		case netgraph.Slot1, netgraph.Slot2:
			r.tupScope.Insert(next.Node)
			return term.Var{Name: r.namegen.VarName(next)}, true
		default:
			return term.Era{}, false
		}

	default:
		return term.Era{}, false
	}
}
