package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"taq/internal/taq"
)

// Metrics holds the conversion counters on a private registry. It implements
// taq.Observer.
type Metrics struct {
	reg *prometheus.Registry

	inputRows  *prometheus.CounterVec
	outputRows *prometheus.CounterVec
	skipped    *prometheus.CounterVec
	duration   prometheus.Gauge
	lastRun    prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{reg: prometheus.NewRegistry()}
	m.inputRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taq_input_rows_total",
		Help: "OB input rows read, by Event code.",
	}, []string{"event"})
	m.outputRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taq_output_rows_total",
		Help: "TAQ rows produced, by Event code.",
	}, []string{"event"})
	m.skipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "taq_skipped_rows_total",
		Help: "Input rows that produced no output, by reason.",
	}, []string{"reason"})
	m.duration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "taq_conversion_duration_seconds",
		Help: "Wall time of the last conversion.",
	})
	m.lastRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "taq_last_conversion_timestamp_seconds",
		Help: "Unix time the last conversion finished.",
	})
	m.reg.MustRegister(m.inputRows, m.outputRows, m.skipped, m.duration, m.lastRun)
	return m
}

func (m *Metrics) Observe(o taq.Observation) {
	m.inputRows.WithLabelValues(o.Code).Inc()
	switch o.Outcome {
	case taq.Projected:
		m.outputRows.WithLabelValues(string(o.Event.Kind())).Inc()
	default:
		m.skipped.WithLabelValues(o.Outcome.String()).Inc()
	}
}

// Finish records the duration of a completed conversion.
func (m *Metrics) Finish(d time.Duration, now time.Time) {
	m.duration.Set(d.Seconds())
	m.lastRun.Set(float64(now.Unix()))
}

func (m *Metrics) Gatherer() prometheus.Gatherer { return m.reg }

// WriteTextfile writes the registry in the text exposition format for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
