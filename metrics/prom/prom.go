// Package prom exports pool measurements as Prometheus series.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer implements pool.Observer on top of a Prometheus registry.
type Observer struct {
	poolSize     *prometheus.GaugeVec
	waitSeconds  *prometheus.HistogramVec
	usageSeconds *prometheus.HistogramVec
	errors       *prometheus.CounterVec
	healthChecks *prometheus.CounterVec
}

// NewObserver creates an observer and registers its collectors. reg may be
// nil, in which case the default registerer is used.
func NewObserver(reg prometheus.Registerer) *Observer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &Observer{
		poolSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "connpool_pool_size",
			Help: "Current number of connections per pool and state.",
		}, []string{"pool", "state"}),
		waitSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "connpool_wait_seconds",
			Help:    "Time spent waiting to acquire a connection.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"pool"}),
		usageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "connpool_usage_seconds",
			Help:    "Time a lease held a connection.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		}, []string{"pool"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "connpool_errors_total",
			Help: "Pool errors by type.",
		}, []string{"pool", "type"}),
		healthChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "connpool_health_checks_total",
			Help: "Health probe outcomes.",
		}, []string{"pool", "result"}),
	}

	reg.MustRegister(o.poolSize, o.waitSeconds, o.usageSeconds, o.errors, o.healthChecks)
	return o
}

func (o *Observer) PoolSize(pool, state string, n int) {
	o.poolSize.WithLabelValues(pool, state).Set(float64(n))
}

func (o *Observer) WaitTime(pool string, d time.Duration) {
	o.waitSeconds.WithLabelValues(pool).Observe(d.Seconds())
}

func (o *Observer) UsageTime(pool string, d time.Duration) {
	o.usageSeconds.WithLabelValues(pool).Observe(d.Seconds())
}

func (o *Observer) PoolError(pool, errType string) {
	o.errors.WithLabelValues(pool, errType).Inc()
}

func (o *Observer) HealthCheck(pool string, passed bool) {
	result := "pass"
	if !passed {
		result = "fail"
	}
	o.healthChecks.WithLabelValues(pool, result).Inc()
}
