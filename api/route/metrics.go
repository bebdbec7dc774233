package routeapi

import "github.com/prometheus/client_golang/prometheus"

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hns_runs_total",
			Help: "Total number of planning runs by terminal status",
		},
		[]string{"status"},
	)
	routeSteps = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hns_route_steps",
			Help:    "Number of directional steps per planned route",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
)

func init() {
	prometheus.MustRegister(runsTotal, routeSteps)
}
