package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blobCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "blob_cache",
		Name:      "lookups_total",
		Help:      "Count of blob cache lookups by result.",
	}, []string{"kind", "result"})

	blobCacheFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "blob_cache",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of fetching a blob from the KV store on a miss.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind", "status"})
)

// BlobCache tracks metrics for the blob read-through cache.
type BlobCache struct{}

// NewBlobCache constructs a BlobCache collector.
func NewBlobCache() *BlobCache {
	return &BlobCache{}
}

// Hit records a lookup served from memory.
func (m BlobCache) Hit(kind string) {
	blobCacheLookupsTotal.WithLabelValues(kind, "hit").Inc()
}

// Miss records a lookup that went to the KV store.
func (m BlobCache) Miss(kind string) {
	blobCacheLookupsTotal.WithLabelValues(kind, "miss").Inc()
}

// ObserveFetch records a KV fetch on a miss.
func (m BlobCache) ObserveFetch(kind string, err error, started time.Time) {
	blobCacheFetchDuration.WithLabelValues(kind, statusOf(err)).Observe(time.Since(started).Seconds())
}
