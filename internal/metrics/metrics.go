package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecommendationsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendations_generated_total",
		Help: "Number of recommendation sets generated.",
	})

	SimilarityFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "similarity_fallbacks_total",
		Help: "Times the external similarity service failed and the local strategy took over.",
	})

	CleanupRemovedOwnerships = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cleanup_removed_ownerships_total",
		Help: "Subscription-granted ownership records revoked by the lapse-cleanup sweep.",
	})

	AffinityRowsExported = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "affinity_rows_exported_total",
		Help: "Like-ledger rows exported to the similarity service.",
	})
)

func init() {
	prometheus.MustRegister(
		RecommendationsGenerated,
		SimilarityFallbacks,
		CleanupRemovedOwnerships,
		AffinityRowsExported,
	)
}
