package healthcheck

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HealthMetrics publishes check outcomes to Prometheus
type HealthMetrics struct {
	checksTotal   *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	healthStatus  *prometheus.GaugeVec
}

// NewHealthMetrics creates the health metric collectors on the given
// registerer
func NewHealthMetrics(reg prometheus.Registerer) *HealthMetrics {
	hm := &HealthMetrics{
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mealsmith",
				Subsystem: "healthcheck",
				Name:      "checks_total",
				Help:      "Total number of health checks performed",
			},
			[]string{"check_name", "status"},
		),

		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mealsmith",
				Subsystem: "healthcheck",
				Name:      "check_duration_seconds",
				Help:      "Duration of health checks in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"check_name"},
		),

		healthStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "mealsmith",
				Subsystem: "healthcheck",
				Name:      "status",
				Help:      "Current health status (0=unhealthy, 1=degraded, 2=healthy)",
			},
			[]string{"check_name"},
		),
	}

	reg.MustRegister(hm.checksTotal, hm.checkDuration, hm.healthStatus)
	return hm
}

// Observe records one check result
func (hm *HealthMetrics) Observe(check Check) {
	hm.checksTotal.WithLabelValues(check.Name, string(check.Status)).Inc()
	hm.checkDuration.WithLabelValues(check.Name).Observe(check.Duration.Seconds())
	hm.healthStatus.WithLabelValues(check.Name).Set(statusToFloat(check.Status))
}

func statusToFloat(status Status) float64 {
	switch status {
	case StatusHealthy:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}
