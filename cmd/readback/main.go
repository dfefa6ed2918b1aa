// Command readback reads a net/book fixture and prints the term it reads
// back to, in the tradition of cmd/godnet's main.go: read input, run the
// core, print the result, report stats to stderr.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	"github.com/vic/readback/pkg/book"
	"github.com/vic/readback/pkg/metrics"
	"github.com/vic/readback/pkg/netgraph"
	"github.com/vic/readback/pkg/netio"
	"github.com/vic/readback/pkg/readback"
	"github.com/vic/readback/pkg/term"
)

// readFunc is the shape shared by NetToTermNonLinear and NetToTermLinear.
type readFunc func(view netgraph.View, bk *book.Book, opts ...readback.Option) (term.Term, bool)

func main() {
	mode := flag.String("mode", "non-linear", "readback mode: linear, non-linear, or both")
	fixturePath := flag.String("fixture", "", "path to a net/book fixture (.yaml or .yaml.gz)")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address for the run's duration")
	flag.Parse()

	runID := uuid.New()
	log := func(format string, args ...interface{}) {
		fmt.Fprintf(os.Stderr, "run=%s "+format+"\n", append([]interface{}{runID}, args...)...)
	}

	if err := run(*mode, *fixturePath, *metricsAddr, log); err != nil {
		log("error: %+v", err)
		os.Exit(1)
	}
}

func run(mode, fixturePath, metricsAddr string, log func(string, ...interface{})) error {
	if fixturePath == "" {
		return errors.New("cmd/readback: --fixture is required")
	}

	fx, err := netio.Load(fixturePath)
	if err != nil {
		return errors.WithMessage(err, "cmd/readback: loading fixture")
	}

	reg := prometheus.NewRegistry()
	recorder := metrics.NewPrometheus(reg)

	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log("metrics server stopped: %v", err)
			}
		}()
		defer srv.Close()
	}

	switch mode {
	case "non-linear":
		return runOne("non-linear", fx, recorder, readback.NetToTermNonLinear, log)
	case "linear":
		return runOne("linear", fx, recorder, readback.NetToTermLinear, log)
	case "both":
		if err := runOne("non-linear", fx, recorder, readback.NetToTermNonLinear, log); err != nil {
			return err
		}
		return runOne("linear", fx, recorder, readback.NetToTermLinear, log)
	default:
		return errors.Errorf("cmd/readback: unknown --mode %q", mode)
	}
}

func runOne(mode string, fx *netio.Fixture, recorder metrics.Recorder, f readFunc, log func(string, ...interface{})) error {
	start := time.Now()
	result, valid := f(fx.Net, fx.Book, readback.WithRecorder(recorder))
	elapsed := time.Since(start)

	fmt.Println(result)
	log("mode=%s valid=%v elapsed=%v", mode, valid, elapsed)
	return nil
}
