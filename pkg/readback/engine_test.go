package readback

import (
	"testing"
	"time"

	"github.com/vic/readback/pkg/book"
	"github.com/vic/readback/pkg/netgraph"
	"github.com/vic/readback/pkg/term"
)

// A Con whose port 1 is its own port 2 is the smallest possible closed
// term, λa.a.
func TestIdentityNetProducesLambda(t *testing.T) {
	n := netgraph.NewNet()
	n.AddNode(1, netgraph.Node{Kind: netgraph.Con})
	link(n, 0, netgraph.Slot0, 1, netgraph.Slot0)
	link(n, 1, netgraph.Slot1, 1, netgraph.Slot2)

	got, valid := NetToTermNonLinear(n, book.New())
	if !valid {
		t.Fatal("expected valid=true")
	}
	lam, ok := got.(term.Lam)
	if !ok {
		t.Fatalf("got %T, want Lam", got)
	}
	wantName(t, lam.Name, "a")
	v, ok := lam.Body.(term.Var)
	if !ok {
		t.Fatalf("body is %T, want Var", lam.Body)
	}
	if v.Name != "a" {
		t.Fatalf("body var name = %q, want %q", v.Name, "a")
	}
}

// (λa.a) 7.
func TestApplyingIdentityToALiteral(t *testing.T) {
	n := netgraph.NewNet()
	n.AddNode(1, netgraph.Node{Kind: netgraph.Con}) // c1: identity lambda
	n.AddNode(2, netgraph.Node{Kind: netgraph.Num, Value: 7})
	n.AddNode(3, netgraph.Node{Kind: netgraph.Con}) // c2: application

	link(n, 1, netgraph.Slot1, 1, netgraph.Slot2) // c1 self-loop: λa.a
	link(n, 0, netgraph.Slot0, 3, netgraph.Slot2) // root -> c2 (entry slot 2 = App)
	link(n, 3, netgraph.Slot0, 1, netgraph.Slot0) // c2.fun -> c1
	link(n, 3, netgraph.Slot1, 2, netgraph.Slot0) // c2.arg -> Num{7}

	got, valid := NetToTermNonLinear(n, book.New())
	if !valid {
		t.Fatal("expected valid=true")
	}
	app, ok := got.(term.App)
	if !ok {
		t.Fatalf("got %T, want App", got)
	}
	lam, ok := app.Fun.(term.Lam)
	if !ok {
		t.Fatalf("fun is %T, want Lam", app.Fun)
	}
	wantName(t, lam.Name, "a")
	num, ok := app.Arg.(term.Num)
	if !ok || num.Value != 7 {
		t.Fatalf("arg = %#v, want Num{7}", app.Arg)
	}
}

// match 0 { 0: 1; +n: n }.
func TestMatchZeroSucc(t *testing.T) {
	n := netgraph.NewNet()
	n.AddNode(1, netgraph.Node{Kind: netgraph.Mat})
	n.AddNode(2, netgraph.Node{Kind: netgraph.Num, Value: 0})
	n.AddNode(3, netgraph.Node{Kind: netgraph.Con}) // selector
	n.AddNode(4, netgraph.Node{Kind: netgraph.Num, Value: 1})
	n.AddNode(5, netgraph.Node{Kind: netgraph.Con}) // λn.n, the succ branch

	link(n, 0, netgraph.Slot0, 1, netgraph.Slot2) // root -> mat (entry slot 2)
	link(n, 1, netgraph.Slot0, 2, netgraph.Slot0) // mat.cond -> Num{0}
	link(n, 1, netgraph.Slot1, 3, netgraph.Slot0) // mat.selector -> selCon
	link(n, 3, netgraph.Slot1, 4, netgraph.Slot0) // selCon.zero -> Num{1}
	link(n, 3, netgraph.Slot2, 5, netgraph.Slot0) // selCon.succ -> λn.n
	link(n, 5, netgraph.Slot1, 5, netgraph.Slot2) // λn.n self-loop

	got, valid := NetToTermNonLinear(n, book.New())
	if !valid {
		t.Fatal("expected valid=true")
	}
	m, ok := got.(term.Match)
	if !ok {
		t.Fatalf("got %T, want Match", got)
	}
	if num, ok := m.Cond.(term.Num); !ok || num.Value != 0 {
		t.Fatalf("cond = %#v, want Num{0}", m.Cond)
	}
	if num, ok := m.Zero.(term.Num); !ok || num.Value != 1 {
		t.Fatalf("zero = %#v, want Num{1}", m.Zero)
	}
	lam, ok := m.Succ.(term.Lam)
	if !ok {
		t.Fatalf("succ = %T, want Lam", m.Succ)
	}
	wantName(t, lam.Name, "a")
}

// A Dup whose label never appears in the traversal context resolves to
// an unreducible Sup.
func TestUnresolvableSup(t *testing.T) {
	n := netgraph.NewNet()
	n.AddNode(1, netgraph.Node{Kind: netgraph.Dup, Label: 7})
	n.AddNode(2, netgraph.Node{Kind: netgraph.Num, Value: 1})
	n.AddNode(3, netgraph.Node{Kind: netgraph.Num, Value: 2})

	link(n, 0, netgraph.Slot0, 1, netgraph.Slot0)
	link(n, 1, netgraph.Slot1, 2, netgraph.Slot0)
	link(n, 1, netgraph.Slot2, 3, netgraph.Slot0)

	got, valid := NetToTermNonLinear(n, book.New())
	if !valid {
		t.Fatal("expected valid=true")
	}
	sup, ok := got.(term.Sup)
	if !ok {
		t.Fatalf("got %T, want Sup", got)
	}
	if num, ok := sup.Fst.(term.Num); !ok || num.Value != 1 {
		t.Fatalf("fst = %#v, want Num{1}", sup.Fst)
	}
	if num, ok := sup.Snd.(term.Num); !ok || num.Value != 2 {
		t.Fatalf("snd = %#v, want Num{2}", sup.Snd)
	}
}

// A self-referencing Con forms a cycle; linear mode must terminate, cut
// the recursion with Var{"..."}, and report valid=false.
func TestCyclicNetLinearModeTerminates(t *testing.T) {
	n := netgraph.NewNet()
	n.AddNode(1, netgraph.Node{Kind: netgraph.Con})
	link(n, 0, netgraph.Slot0, 1, netgraph.Slot2) // root -> con (entry slot 2 = App)
	link(n, 1, netgraph.Slot0, 1, netgraph.Slot1) // con.fun <-> con.arg, a 2-cycle

	done := make(chan struct{})
	var got term.Term
	var valid bool
	go func() {
		got, valid = NetToTermLinear(n, book.New())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("NetToTermLinear did not terminate on a cyclic net")
	}

	if valid {
		t.Fatal("expected valid=false for a cyclic net")
	}
	app, ok := got.(term.App)
	if !ok {
		t.Fatalf("got %T, want App", got)
	}
	if _, ok := app.Fun.(term.Var); !ok {
		t.Fatalf("fun = %#v, want Var{\"...\"}", app.Fun)
	}
	if v, ok := app.Fun.(term.Var); ok && v.Name != "..." {
		t.Fatalf("fun var name = %q, want \"...\"", v.Name)
	}
}
