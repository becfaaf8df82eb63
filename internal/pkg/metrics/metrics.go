package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors holds the prometheus instruments for the timeclock engine.
type Collectors struct {
	Punches       *prometheus.CounterVec
	Anomalies     *prometheus.CounterVec
	Remediations  *prometheus.CounterVec
	OpenOvernight prometheus.Gauge
}

// New registers the timeclock collectors on the given registerer.
func New(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)
	return &Collectors{
		Punches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "timeclock_punches_total",
			Help: "Recorded punch events by action type.",
		}, []string{"action"}),
		Anomalies: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "timeclock_anomalies_total",
			Help: "Detected attendance anomalies by kind.",
		}, []string{"kind"}),
		Remediations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "timeclock_remediations_total",
			Help: "Completed anomaly remediations by kind.",
		}, []string{"kind"}),
		OpenOvernight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "timeclock_open_overnight_sessions",
			Help: "Sessions found open from a prior day by the nightly sweep.",
		}),
	}
}

// PunchRecorded increments the punch counter. Safe on a nil receiver.
func (c *Collectors) PunchRecorded(action string) {
	if c == nil {
		return
	}
	c.Punches.WithLabelValues(action).Inc()
}

// AnomalyDetected increments the anomaly counter. Safe on a nil receiver.
func (c *Collectors) AnomalyDetected(kind string) {
	if c == nil {
		return
	}
	c.Anomalies.WithLabelValues(kind).Inc()
}

// RemediationCompleted increments the remediation counter. Safe on a nil
// receiver.
func (c *Collectors) RemediationCompleted(kind string) {
	if c == nil {
		return
	}
	c.Remediations.WithLabelValues(kind).Inc()
}

// SetOpenOvernight records the sweep result. Safe on a nil receiver.
func (c *Collectors) SetOpenOvernight(n int) {
	if c == nil {
		return
	}
	c.OpenOvernight.Set(float64(n))
}
