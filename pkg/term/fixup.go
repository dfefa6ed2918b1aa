package term

// Generated is the narrow view of a book that fix-up and the readback engine
// need: whether a definition is compiler-generated (its name contains '$')
// and, if so, the sole rule's body to inline. Kept as an interface here so
// this package never imports the book package.
type Generated interface {
	IsGenerated(id DefID) bool
	// GeneratedBody returns the sole rule body of a generated definition.
	// Callers must only invoke this after IsGenerated reports true; it
	// panics (a hard error, not a soft one) if the definition has more than
	// one rule or any pattern-matching rule, mirroring the source's
	// assert_no_pattern_matching_rules.
	GeneratedBody(id DefID) Term
}

// IDCounter is the fresh-id source fix-up draws new binder names from. It is
// the same counter the name generator uses, passed by reference so inlined
// subtrees get names past whatever the engine has already allocated.
type IDCounter struct {
	Next uint64
}

func (c *IDCounter) alloc() Name {
	n := VarIDToName(c.Next)
	c.Next++
	return n
}

// FixNames walks t, and at every binder (Lam, Dup) rewrites the bound name
// to a fresh one drawn from counter, substituting the old occurrence
// throughout the relevant subtree. At every Ref whose definition is
// generated, it inlines the sole rule's body and recursively fixes names in
// the inlined copy. Let must never appear here: readback assigns Let's
// names before insertion, never via fix-up.
func FixNames(t Term, counter *IDCounter, book Generated) Term {
	switch v := t.(type) {
	case Lam:
		fixOptionalName(&v.Name, counter, &v.Body)
		v.Body = FixNames(v.Body, counter, book)
		return v
	case Ref:
		if book.IsGenerated(v.DefID) {
			inlined := book.GeneratedBody(v.DefID)
			return FixNames(inlined, counter, book)
		}
		return v
	case Dup:
		v.Val = FixNames(v.Val, counter, book)
		fixOptionalName(&v.Fst, counter, &v.Nxt)
		fixOptionalName(&v.Snd, counter, &v.Nxt)
		v.Nxt = FixNames(v.Nxt, counter, book)
		return v
	case Chn:
		v.Body = FixNames(v.Body, counter, book)
		return v
	case App:
		v.Fun = FixNames(v.Fun, counter, book)
		v.Arg = FixNames(v.Arg, counter, book)
		return v
	case Sup:
		v.Fst = FixNames(v.Fst, counter, book)
		v.Snd = FixNames(v.Snd, counter, book)
		return v
	case Tup:
		v.Fst = FixNames(v.Fst, counter, book)
		v.Snd = FixNames(v.Snd, counter, book)
		return v
	case Opx:
		v.Fst = FixNames(v.Fst, counter, book)
		v.Snd = FixNames(v.Snd, counter, book)
		return v
	case Match:
		v.Cond = FixNames(v.Cond, counter, book)
		v.Zero = FixNames(v.Zero, counter, book)
		v.Succ = FixNames(v.Succ, counter, book)
		return v
	case Let:
		panic("term: FixNames encountered a Let; readback must assign Let names before insertion")
	case Var, Lnk, Num, Era:
		return t
	default:
		panic("term: FixNames: unhandled term variant")
	}
}

// fixOptionalName rewrites *nam to a fresh name and replaces every free
// occurrence of the old name in *scope with a Var of the new name, when *nam
// is present.
// It returns the old name for callers that want it (none currently do; kept
// to mirror the source's fix_name helper shape).
func fixOptionalName(nam **Name, counter *IDCounter, scope *Term) *Name {
	if nam == nil || *nam == nil {
		return nil
	}
	old := **nam
	fresh := counter.alloc()
	*scope = Subst(*scope, old, Var{Name: fresh})
	*nam = &fresh
	return &old
}

// Subst replaces every free occurrence of a variable named old with
// replacement inside t, stopping at any binder that rebinds old (shadowing).
func Subst(t Term, old Name, replacement Term) Term {
	switch v := t.(type) {
	case Var:
		if v.Name == old {
			return replacement
		}
		return v
	case Lam:
		if v.Name != nil && *v.Name == old {
			return v
		}
		v.Body = Subst(v.Body, old, replacement)
		return v
	case App:
		v.Fun = Subst(v.Fun, old, replacement)
		v.Arg = Subst(v.Arg, old, replacement)
		return v
	case Ref:
		return v
	case Sup:
		v.Fst = Subst(v.Fst, old, replacement)
		v.Snd = Subst(v.Snd, old, replacement)
		return v
	case Tup:
		v.Fst = Subst(v.Fst, old, replacement)
		v.Snd = Subst(v.Snd, old, replacement)
		return v
	case Opx:
		v.Fst = Subst(v.Fst, old, replacement)
		v.Snd = Subst(v.Snd, old, replacement)
		return v
	case Match:
		v.Cond = Subst(v.Cond, old, replacement)
		v.Zero = Subst(v.Zero, old, replacement)
		v.Succ = Subst(v.Succ, old, replacement)
		return v
	case Dup:
		v.Val = Subst(v.Val, old, replacement)
		shadowed := (v.Fst != nil && *v.Fst == old) || (v.Snd != nil && *v.Snd == old)
		if !shadowed {
			v.Nxt = Subst(v.Nxt, old, replacement)
		}
		return v
	case Let:
		v.Val = Subst(v.Val, old, replacement)
		shadowed := (v.Pat.Fst != nil && *v.Pat.Fst == old) || (v.Pat.Snd != nil && *v.Pat.Snd == old)
		if !shadowed {
			v.Nxt = Subst(v.Nxt, old, replacement)
		}
		return v
	case Chn:
		if v.Name == old {
			return v
		}
		v.Body = Subst(v.Body, old, replacement)
		return v
	case Lnk, Num, Era:
		return v
	default:
		panic("term: Subst: unhandled term variant")
	}
}
