package readback_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/vic/readback/pkg/book"
	"github.com/vic/readback/pkg/metrics"
	"github.com/vic/readback/pkg/netgraph"
	"github.com/vic/readback/pkg/readback"
	"github.com/vic/readback/pkg/term"
)

func identityNet() *netgraph.Net {
	n := netgraph.NewNet()
	n.AddNode(1, netgraph.Node{Kind: netgraph.Con})
	n.Link(netgraph.Port{Node: 0, Slot: netgraph.Slot0}, netgraph.Port{Node: 1, Slot: netgraph.Slot0})
	n.Link(netgraph.Port{Node: 1, Slot: netgraph.Slot1}, netgraph.Port{Node: 1, Slot: netgraph.Slot2})
	return n
}

var _ = Describe("readback", func() {
	Context("on the identity net", func() {
		It("produces a valid Lam in non-linear mode", func() {
			got, valid := readback.NetToTermNonLinear(identityNet(), book.New())
			Expect(valid).To(BeTrue())
			Expect(got).To(BeAssignableToTypeOf(term.Lam{}))
		})

		It("produces a valid Lam in linear mode", func() {
			got, valid := readback.NetToTermLinear(identityNet(), book.New())
			Expect(valid).To(BeTrue())
			Expect(got).To(BeAssignableToTypeOf(term.Lam{}))
		})

		It("agrees between the two modes on a net with no sharing", func() {
			nonLinear, nlValid := readback.NetToTermNonLinear(identityNet(), book.New())
			linear, lValid := readback.NetToTermLinear(identityNet(), book.New())
			Expect(nlValid).To(Equal(lValid))
			Expect(nonLinear.String()).To(Equal(linear.String()))
		})
	})

	Context("on a malformed net", func() {
		It("reports valid=false instead of panicking", func() {
			n := netgraph.NewNet()
			// root left dangling: Enter(root) bounces back to itself, a Root
			// node, which has no defined reading.
			Expect(func() {
				_, valid := readback.NetToTermNonLinear(n, book.New())
				Expect(valid).To(BeFalse())
			}).NotTo(Panic())
		})
	})

	Context("WithRecorder", func() {
		It("does not change the result, only adds observation", func() {
			plain, plainValid := readback.NetToTermNonLinear(identityNet(), book.New())
			recorder := &countingRecorder{}
			observed, observedValid := readback.NetToTermNonLinear(identityNet(), book.New(), readback.WithRecorder(recorder))
			Expect(observedValid).To(Equal(plainValid))
			Expect(observed.String()).To(Equal(plain.String()))
			Expect(recorder.nodes).To(BeNumerically(">", 0))
			Expect(recorder.done).To(BeTrue())
		})
	})
})

type countingRecorder struct {
	nodes int
	done  bool
}

func (c *countingRecorder) ObserveNode(netgraph.Kind) { c.nodes++ }
func (c *countingRecorder) ObserveRefInlined()        {}
func (c *countingRecorder) ObserveDone(mode string, valid bool, d time.Duration) {
	c.done = true
}

var _ metrics.Recorder = (*countingRecorder)(nil)
