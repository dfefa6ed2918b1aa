package readback

import (
	"time"

	"github.com/vic/readback/pkg/book"
	"github.com/vic/readback/pkg/namegen"
	"github.com/vic/readback/pkg/netgraph"
	"github.com/vic/readback/pkg/scope"
	"github.com/vic/readback/pkg/term"
)

// NetToTermNonLinear converts a net into a term, pairing Dups with Sups by
// walking a path-context and letting matched pairs annihilate during the
// traversal.
func NetToTermNonLinear(view netgraph.View, bk *book.Book, opts ...Option) (term.Term, bool) {
	o := resolveOptions(opts)
	start := time.Now()

	ng := namegen.New()
	r := &nonLinearReader{
		view:     view,
		book:     bk,
		namegen:  ng,
		dupScope: map[uint8]*scope.Stack[netgraph.SlotID]{},
		tupScope: scope.New[netgraph.NodeID](),
		recorder: o.recorder,
	}

	main, valid := r.read(view.Enter(view.Root()))

	for {
		node, ok := r.tupScope.Pop()
		if !ok {
			break
		}
		valPort := view.Enter(netgraph.Port{Node: node, Slot: netgraph.Slot0})
		val, valValid := r.read(valPort)
		fst := namegen.DeclName(view, ng, netgraph.Port{Node: node, Slot: netgraph.Slot1})
		snd := namegen.DeclName(view, ng, netgraph.Port{Node: node, Slot: netgraph.Slot2})
		main = term.Let{Pat: term.TupPat{Fst: fst, Snd: snd}, Val: val, Nxt: main}
		valid = valid && valValid
	}

	o.recorder.ObserveDone("non-linear", valid, time.Since(start))
	return main, valid
}

type nonLinearReader struct {
	view     netgraph.View
	book     *book.Book
	namegen  *namegen.NameGen
	dupScope map[uint8]*scope.Stack[netgraph.SlotID]
	tupScope *scope.Buffer[netgraph.NodeID]
	recorder interface {
		ObserveNode(netgraph.Kind)
		ObserveRefInlined()
	}
}

func (r *nonLinearReader) read(next netgraph.Port) (term.Term, bool) {
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
			nam := namegen.DeclName(r.view, r.namegen, netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
			bodyPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot2})
			bod, valid := r.read(bodyPort)
			return term.Lam{Name: nam, Body: bod}, valid
		case netgraph.Slot1:
			return term.Var{Name: r.namegen.VarName(next)}, true
		case netgraph.Slot2:
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
		condPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot0})
		condTerm, condValid := r.read(condPort)

		selPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
		selNode, selOk := r.view.Node(selPort.Node)
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
			stack := r.dupStack(node.Label)
			if slot, ok := stack.Pop(); ok {
				chosen := r.view.Enter(netgraph.Port{Node: next.Node, Slot: slot})
				val, valid := r.read(chosen)
				stack.Push(slot)
				return val, valid
			}
			fstPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
			sndPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot2})
			fst, fstValid := r.read(fstPort)
			snd, sndValid := r.read(sndPort)
			return term.Sup{Fst: fst, Snd: snd}, fstValid && sndValid
		case netgraph.Slot1, netgraph.Slot2:
			bodyPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot0})
			stack := r.dupStack(node.Label)
			stack.Push(next.Slot)
			body, valid := r.read(bodyPort)
			stack.Pop()
			return body, valid
		default:
			return term.Era{}, false
		}

	case netgraph.Num:
		return term.Num{Value: node.Value}, true

	case netgraph.Op2:
		if next.Slot != netgraph.Slot2 {
			return term.Era{}, false
		}
		opPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot0})
		opTerm, opValid := r.read(opPort)
		argPort := r.view.Enter(netgraph.Port{Node: next.Node, Slot: netgraph.Slot1})
		argTerm, argValid := r.read(argPort)
		result, reassocValid := reassocNonLinear(opTerm, argTerm, 0)
		return result, opValid && argValid && reassocValid

	case netgraph.Root:
		return term.Era{}, false

	case netgraph.Tup:
		switch next.Slot {
		case netgraph.Slot0:
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

func (r *nonLinearReader) dupStack(label uint8) *scope.Stack[netgraph.SlotID] {
	s, ok := r.dupScope[label]
	if !ok {
		s = &scope.Stack[netgraph.SlotID]{}
		r.dupScope[label] = s
	}
	return s
}
