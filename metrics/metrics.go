// Package metrics collects the counters of one pipeline invocation and renders
// them in the Prometheus text format, to be stored next to the artifacts.
package metrics

import (
	"bytes"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Metrics is a registry of the pipeline metrics
type Metrics struct {
	registry *prometheus.Registry

	samplesGenerated *prometheus.CounterVec
	hashtronsTrained prometheus.Counter
	fitSeconds       prometheus.Histogram
	programLength    prometheus.Histogram
	evalAccuracy     prometheus.Gauge
	phaseSeconds     *prometheus.GaugeVec
}

// New creates an empty registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		samplesGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "letters_samples_generated_total",
			Help: "Samples generated, by subset",
		}, []string{"split"}),
		hashtronsTrained: factory.NewCounter(prometheus.CounterOpts{
			Name: "letters_hashtrons_trained_total",
			Help: "Hashtrons fitted",
		}),
		fitSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "letters_hashtron_fit_seconds",
			Help:    "Time to fit one hashtron in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 10},
		}),
		programLength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "letters_program_length",
			Help:    "Hashing commands per fitted hashtron",
			Buckets: prometheus.ExponentialBuckets(2, 2, 10),
		}),
		evalAccuracy: factory.NewGauge(prometheus.GaugeOpts{
			Name: "letters_eval_accuracy",
			Help: "Fraction of evaluation samples classified correctly",
		}),
		phaseSeconds: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "letters_phase_duration_seconds",
			Help: "Wall time of a pipeline phase in seconds",
		}, []string{"phase"}),
	}
}

// SamplesGenerated counts samples of the train or eval split
func (m *Metrics) SamplesGenerated(split string, n int) {
	m.samplesGenerated.WithLabelValues(split).Add(float64(n))
}

// HashtronFitted records one fitted hashtron
func (m *Metrics) HashtronFitted(n int, programLen int, elapsed time.Duration) {
	m.hashtronsTrained.Inc()
	m.fitSeconds.Observe(elapsed.Seconds())
	m.programLength.Observe(float64(programLen))
}

// EvalAccuracy sets the evaluation accuracy
func (m *Metrics) EvalAccuracy(accuracy float64) {
	m.evalAccuracy.Set(accuracy)
}

// PhaseDuration sets the wall time of a phase
func (m *Metrics) PhaseDuration(phase string, d time.Duration) {
	m.phaseSeconds.WithLabelValues(phase).Set(d.Seconds())
}

// Text renders every metric in the text exposition format
func (m *Metrics) Text() ([]byte, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
