package term

import "testing"

func TestVarIDToName(t *testing.T) {
	cases := []struct {
		id   uint64
		want Name
	}{
		{0, "a"},
		{1, "b"},
		{25, "z"},
		{26, "aa"},
		{27, "ab"},
		{51, "az"},
		{52, "ba"},
	}
	for _, c := range cases {
		got := VarIDToName(c.id)
		if got != c.want {
			t.Errorf("VarIDToName(%d) = %q, want %q", c.id, got, c.want)
		}
	}
}

func TestVarIDToNameInjective(t *testing.T) {
	seen := map[Name]uint64{}
	for id := uint64(0); id < 2000; id++ {
		n := VarIDToName(id)
		if prev, ok := seen[n]; ok {
			t.Fatalf("VarIDToName not injective: id %d and %d both produced %q", prev, id, n)
		}
		seen[n] = id
	}
}

func TestOpLabelRoundTrip(t *testing.T) {
	ops := []Op{ADD, SUB, MUL, DIV, MOD, EQ, NE, LT, GT, AND, OR, XOR, NOT, LSH, RSH}
	for _, op := range ops {
		label := op.Label()
		if label < 0x1 || label > 0xf {
			t.Fatalf("Op %v has out-of-range label %#x", op, label)
		}
		got, ok := FromLabel(label)
		if !ok || got != op {
			t.Fatalf("FromLabel(%#x) = %v, %v, want %v, true", label, got, ok, op)
		}
	}
}

func TestFromLabelRejectsOutOfRange(t *testing.T) {
	for _, v := range []uint32{0, 0x10, 0xff} {
		if _, ok := FromLabel(v); ok {
			t.Errorf("FromLabel(%#x) unexpectedly succeeded", v)
		}
	}
}

func TestSubstShadowing(t *testing.T) {
	x := Name("x")
	// \x. x, substituting x -> Num{9} must not touch the bound occurrence.
	lam := Lam{Name: &x, Body: Var{Name: x}}
	got := Subst(lam, x, Num{Value: 9})
	if gotLam, ok := got.(Lam); !ok || gotLam.Body.(Var).Name != x {
		t.Fatalf("Subst rewrote a shadowed occurrence: %#v", got)
	}
}

func TestSubstFreeOccurrence(t *testing.T) {
	got := Subst(App{Fun: Var{Name: "y"}, Arg: Var{Name: "x"}}, "x", Num{Value: 5})
	app := got.(App)
	if _, ok := app.Arg.(Num); !ok {
		t.Fatalf("Subst did not rewrite free occurrence: %#v", got)
	}
	if _, ok := app.Fun.(Var); !ok {
		t.Fatalf("Subst touched an unrelated name: %#v", got)
	}
}
