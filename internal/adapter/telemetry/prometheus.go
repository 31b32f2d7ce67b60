package telemetry

import (
	"fmt"
	"net/http"

	"github.com/burenotti/go_health_risk/internal/domain"
	"github.com/burenotti/go_health_risk/internal/domain/record"
	"github.com/burenotti/go_health_risk/internal/domain/risk"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "health_risk"

// Metrics owns its registry so tests and multiple servers in one process do
// not collide on the default one.
type Metrics struct {
	registry          *prometheus.Registry
	assessments       *prometheus.CounterVec
	narrativeFailures prometheus.Counter
	recordsCreated    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		assessments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Completed risk assessments by level",
		}, []string{"level"}),
		narrativeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narrative_failures_total",
			Help:      "Narrative generation calls replaced by an error marker",
		}),
		recordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_created_total",
			Help:      "Assessment records written to history by level",
		}, []string{"level"}),
	}

	for _, l := range risk.Levels {
		m.assessments.WithLabelValues(string(l))
	}
	return m
}

func (m *Metrics) AssessmentCompleted(level risk.Level) {
	m.assessments.WithLabelValues(string(level)).Inc()
}

func (m *Metrics) NarrativeFailed() {
	m.narrativeFailures.Inc()
}

// RecordCreated is a message bus handler for record.created.
func (m *Metrics) RecordCreated(event domain.Event) error {
	e, ok := event.(record.CreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, record.EventCreated)
	}
	m.recordsCreated.WithLabelValues(string(e.Level)).Inc()
	return nil
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
