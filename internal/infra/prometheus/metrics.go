package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/relinkd/relink/internal/app/resolver"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relink_resolutions_total",
		Help: "Resolution outcomes by status.",
	}, []string{"outcome"})

	storeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relink_store_errors_total",
		Help: "Link store lookups that failed for infrastructure reasons.",
	})
)

// ResolverMetrics implements resolver.Metrics on the process-wide registry.
type ResolverMetrics struct{}

func (ResolverMetrics) Resolution(status resolver.Status) {
	resolutionsTotal.WithLabelValues(string(status)).Inc()
}

func (ResolverMetrics) StoreError() {
	storeErrorsTotal.Inc()
}
