package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dshills/medscore/internal/dosing"
	"github.com/dshills/medscore/internal/risk"
)

// Evaluation outcomes used as metric labels.
const (
	outcomeOK           = "ok"
	outcomeInvalid      = "invalid"
	outcomeUnknownScale = "unknown_scale"
	outcomeError        = "error"

	outcomeUnknownMedication = "unknown_medication"
)

// Metrics holds the evaluation collectors.
type Metrics struct {
	evaluations *prometheus.CounterVec
	tiers       *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	doses       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medscore",
			Name:      "evaluations_total",
			Help:      "Scale evaluations by scale and outcome.",
		}, []string{"scale", "outcome"}),
		tiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medscore",
			Name:      "tier_assignments_total",
			Help:      "Successful evaluations by scale and assigned tier.",
		}, []string{"scale", "tier"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medscore",
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent validating and scoring one input.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}, []string{"scale"}),
		doses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medscore",
			Name:      "dose_calculations_total",
			Help:      "Dose calculations by medication and outcome.",
		}, []string{"medication", "outcome"}),
	}
	reg.MustRegister(m.evaluations, m.tiers, m.duration, m.doses)
	return m
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// observe records one evaluation. Unknown scales share a single label value.
func (m *Metrics) observe(scale, outcome string, res *risk.Result, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "unknown"
	if id, err := risk.ParseScaleID(scale); err == nil {
		label = string(id)
	}
	m.evaluations.WithLabelValues(label, outcome).Inc()
	if outcome == outcomeUnknownScale {
		return
	}
	m.duration.WithLabelValues(label).Observe(elapsed.Seconds())
	if res != nil {
		tier := string(res.Tier)
		if tier == "" {
			tier = "none"
		}
		m.tiers.WithLabelValues(label, tier).Inc()
	}
}

// observeDose records one dose calculation. Medications outside f share a single label value.
func (m *Metrics) observeDose(f *dosing.Formulary, medication, outcome string) {
	if m == nil {
		return
	}
	label := "unknown"
	if med, err := f.Get(medication); err == nil {
		label = med.ID
	}
	m.doses.WithLabelValues(label, outcome).Inc()
}
