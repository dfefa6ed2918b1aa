// Package metrics turns ad hoc reduction-counter printouts into a typed
// observation point the readback engine can call without caring whether
// anyone is listening.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vic/readback/pkg/netgraph"
)

// Recorder observes engine progress. It never affects the term or validity
// a readback call produces.
type Recorder interface {
	// ObserveNode is called each time a reader enters a node present in the
	// net, with that node's kind. A linear-mode revisit cut by the cycle
	// guard, or a port whose node is missing, is not reported.
	ObserveNode(kind netgraph.Kind)
	// ObserveRefInlined is called each time a generated Ref is inlined.
	ObserveRefInlined()
	// ObserveDone is called once, when the top-level readback call
	// returns, with the mode name ("linear" or "non-linear"), the
	// resulting validity bit, and the wall-clock duration of the call.
	ObserveDone(mode string, valid bool, d time.Duration)
}

// Noop is the default Recorder: every method is a no-op, so passing no
// recorder costs nothing beyond an interface call that the compiler can
// often devirtualize.
type Noop struct{}

func (Noop) ObserveNode(netgraph.Kind)                    {}
func (Noop) ObserveRefInlined()                           {}
func (Noop) ObserveDone(string, bool, time.Duration)      {}

var _ Recorder = Noop{}

// Prometheus is a Recorder backed by client_golang collectors: a duration
// histogram partitioned by mode and validity, and counters for nodes
// visited and generated-refs inlined.
type Prometheus struct {
	duration     *prometheus.HistogramVec
	nodesVisited prometheus.Counter
	refsInlined  prometheus.Counter
}

// NewPrometheus constructs a Prometheus recorder and registers its
// collectors with reg. Passing prometheus.NewRegistry() keeps a readback
// call's metrics isolated from the process-wide default registry, which
// matters for tests and for a CLI that runs many fixtures in one process.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "readback",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of a net_to_term call.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode", "valid"}),
		nodesVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "readback",
			Name:      "nodes_visited_total",
			Help:      "Number of nodes entered by the reader across all calls in this process.",
		}),
		refsInlined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "readback",
			Name:      "generated_refs_inlined_total",
			Help:      "Number of generated Ref definitions inlined across all calls in this process.",
		}),
	}
	reg.MustRegister(p.duration, p.nodesVisited, p.refsInlined)
	return p
}

func (p *Prometheus) ObserveNode(netgraph.Kind) {
	p.nodesVisited.Inc()
}

func (p *Prometheus) ObserveRefInlined() {
	p.refsInlined.Inc()
}

func (p *Prometheus) ObserveDone(mode string, valid bool, d time.Duration) {
	validLabel := "false"
	if valid {
		validLabel = "true"
	}
	p.duration.WithLabelValues(mode, validLabel).Observe(d.Seconds())
}

var _ Recorder = (*Prometheus)(nil)
