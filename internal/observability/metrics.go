// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acervo_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "acervo_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PublishOutcomes counts publish attempts by outcome (created, validation, upload, insert).
	PublishOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acervo_publish_outcomes_total",
		Help: "Publish attempts by outcome",
	}, []string{"outcome"})

	// AssetUploads counts asset store writes by slot and result.
	AssetUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acervo_asset_uploads_total",
		Help: "Asset uploads by manifest slot and result",
	}, []string{"slot", "result"})

	// AssetUploadBytes records the size of uploaded assets by slot.
	AssetUploadBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "acervo_asset_upload_bytes",
		Help:    "Size of uploaded assets in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	}, []string{"slot"})

	// OrphanedAssets counts assets left in the store after a failed publish.
	OrphanedAssets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "acervo_orphaned_assets_total",
		Help: "Assets uploaded by a publish call whose row insert failed",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
