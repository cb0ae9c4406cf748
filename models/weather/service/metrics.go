package service

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	cacheResults     *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
}

var (
	metricsInstance *metrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func newMetrics() *metrics {
	metricsOnce.Do(func() {
		metricsInstance = &metrics{
			cacheResults: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "tripweave_weather_cache_total",
				Help: "Forecast cache lookups by result",
			}, []string{"result"}),
			upstreamDuration: promauto.With(defaultRegistry).NewHistogramVec(prometheus.HistogramOpts{
				Name:    "tripweave_weather_upstream_duration_seconds",
				Help:    "Duration of individual geocode and forecast attempts",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 7.5},
			}, []string{"call"}),
		}
	})
	return metricsInstance
}

func resetMetricsForTesting() {
	defaultRegistry = prometheus.NewRegistry()
	metricsInstance = nil
	metricsOnce = sync.Once{}
}
