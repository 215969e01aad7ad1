// Package metrics records board operation and persistence outcomes.
package metrics

import (
	"net/http"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation results.
const (
	ResultApplied  = "applied"
	ResultNoop     = "noop"
	ResultRejected = "rejected"
)

// Load outcomes.
const (
	LoadStored   = "stored"
	LoadMissing  = "missing"
	LoadInvalid  = "invalid"
	LoadReadFail = "read_error"
)

// Recorder receives board events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Operation(op, result string)
	Load(outcome string)
	Save(ok bool)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) Operation(string, string) {}
func (NoopRecorder) Load(string)              {}
func (NoopRecorder) Save(bool)                {}

// PrometheusRecorder implements Recorder using Prometheus counters.
type PrometheusRecorder struct {
	once       sync.Once
	reg        *prom.Registry
	operations *prom.CounterVec
	loads      *prom.CounterVec
	saves      *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the board metrics on reg,
// or on a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.operations = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kanboard",
			Name:      "operations_total",
			Help:      "Board operations by kind and result",
		}, []string{"op", "result"})
		pr.loads = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kanboard",
			Name:      "loads_total",
			Help:      "Board loads by outcome",
		}, []string{"outcome"})
		pr.saves = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kanboard",
			Name:      "saves_total",
			Help:      "Board saves by result",
		}, []string{"result"})
		reg.MustRegister(pr.operations, pr.loads, pr.saves)
	})
	return pr
}

func (pr *PrometheusRecorder) Operation(op, result string) {
	pr.operations.WithLabelValues(op, result).Inc()
}

func (pr *PrometheusRecorder) Load(outcome string) {
	pr.loads.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) Save(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	pr.saves.WithLabelValues(result).Inc()
}

// Handler serves the recorder's registry.
func (pr *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(pr.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
