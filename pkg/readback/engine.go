// Package readback implements the two net-to-term traversals: non-linear,
// which resolves matched Dup/Sup pairs during the walk, and linear, which
// emits explicit Dup/Let binders and visits every port at most once.
package readback

import (
	"github.com/vic/readback/pkg/metrics"
	"github.com/vic/readback/pkg/term"
)

// Option configures a readback call. The zero-argument call (no options)
// must keep compiling and behaving exactly as before; options only add
// optional observation.
type Option func(*options)

type options struct {
	recorder metrics.Recorder
}

// WithRecorder injects a metrics.Recorder the engine reports node visits
// and completion to. The default, used when no option is given, is
// metrics.Noop{}.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

func resolveOptions(opts []Option) options {
	o := options{recorder: metrics.Noop{}}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// reassocMaxDepth bounds the operator-reassembly recursion. A well-formed
// net's operator chains are only ever as deep as the source program's
// explicit operator nesting, so this is never reached in practice; it only
// guards against a malformed net whose Op2 chain cycles back on itself,
// which would otherwise recurse forever in reassocNonLinear's flip branches.
const reassocMaxDepth = 1 << 16

// splitNumWithOp splits a Num payload into its low 24 bits and, if the high
// byte decodes to a known Op, that operator.
func splitNumWithOp(v uint32) (low24 uint32, op term.Op, hasOp bool) {
	low24 = v & 0x00FFFFFF
	op, hasOp = term.FromLabel(v >> 24)
	return low24, op, hasOp
}

func isEra(t term.Term) bool {
	_, ok := t.(term.Era)
	return ok
}

// reassocNonLinear reassembles a chain of partially-applied Op2 nodes back
// into a single binary Opx: it can recurse up to the depth of the operator
// chain, which is what lets non-linear mode resolve Op-chains produced by
// duplicator copying.
func reassocNonLinear(opTerm, argTerm term.Term, depth int) (term.Term, bool) {
	if depth > reassocMaxDepth {
		return term.Era{}, false
	}
	switch v := opTerm.(type) {
	case term.Num:
		low24, op, hasOp := splitNumWithOp(v.Value)
		if hasOp {
			return term.Opx{Op: op, Fst: term.Num{Value: low24}, Snd: argTerm}, true
		}
		if op2, ok2 := term.FromLabel(low24); ok2 {
			return term.Opx{Op: op2, Fst: argTerm, Snd: term.Era{}}, true
		}
		// No Op corresponds to this label: treated conservatively as a
		// soft failure rather than a panic, since the encoder contract
		// that every such value is a well-formed Op label is not
		// something readback can verify.
		return term.Era{}, false
	case term.Opx:
		if isEra(v.Snd) {
			// We came from the first Op2 node.
			return term.Opx{Op: v.Op, Fst: v.Fst, Snd: argTerm}, true
		}
		// A chain of partially applied Op2 nodes: flip and keep unwinding.
		return reassocNonLinear(argTerm, v, depth+1)
	default:
		// opTerm came through slot 0 of an Op2 used as an Op1-like partial
		// application: flip to undo the Op2~Num interaction.
		return reassocNonLinear(argTerm, opTerm, depth+1)
	}
}

// reassocLinear implements the same cases, but does not recurse in the
// flip branches: the linear net is only ever expected to produce the
// canonical Num/Opx-first shapes, and a mismatch here degrades to
// valid=false rather than panicking.
func reassocLinear(opTerm, argTerm term.Term) (term.Term, bool) {
	switch v := opTerm.(type) {
	case term.Num:
		low24, op, hasOp := splitNumWithOp(v.Value)
		if hasOp {
			return term.Opx{Op: op, Fst: term.Num{Value: low24}, Snd: argTerm}, true
		}
		if op2, ok2 := term.FromLabel(low24); ok2 {
			return term.Opx{Op: op2, Fst: argTerm, Snd: term.Era{}}, true
		}
		return term.Era{}, false
	case term.Opx:
		// An Opx whose Snd is not Era would need the chain flip; linear mode
		// keeps the non-flipped Opx and reports the shape as invalid.
		return term.Opx{Op: v.Op, Fst: v.Fst, Snd: argTerm}, isEra(v.Snd)
	default:
		return term.Era{}, false
	}
}
