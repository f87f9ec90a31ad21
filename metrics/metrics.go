// Package metrics counts catalog operations. The catalog takes the
// interface; main wires the Prometheus implementation.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records per-operation outcomes.
type Metrics interface {
	IncOp(operation, status string)
}

// Noop implements Metrics without emitting anything.
type Noop struct{}

func (Noop) IncOp(string, string) {}

// Prom implements Metrics backed by Prometheus counters.
type Prom struct {
	ops  *prometheus.CounterVec
	once sync.Once
}

func NewProm(namespace string) *Prom {
	p := &Prom{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ops_total",
			Help:      "Catalog operations by name and status",
		}, []string{"operation", "status"}),
	}
	p.register()

	return p
}

func (p *Prom) register() {
	p.once.Do(func() {
		prometheus.MustRegister(p.ops)
	})
}

func (p *Prom) IncOp(operation, status string) {
	p.ops.WithLabelValues(operation, status).Inc()
}

// Handler exposes the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
