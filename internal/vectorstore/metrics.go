package vectorstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchDuration tracks linear-scan search latency.
	// Labels: kind (learning, session)
	searchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cai",
			Subsystem: "vectorstore",
			Name:      "search_duration_seconds",
			Help:      "Duration of exact similarity searches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// vectorsScanned records how many vectors each search had to score.
	vectorsScanned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cai",
			Subsystem: "vectorstore",
			Name:      "search_vectors_scanned",
			Help:      "Number of stored vectors scored per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"kind"},
	)

	// vectorsWritten counts upserted vectors.
	vectorsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cai",
			Subsystem: "vectorstore",
			Name:      "vectors_written_total",
			Help:      "Total number of vectors upserted",
		},
		[]string{"kind"},
	)

	// storedVectors is the last observed row count per kind.
	storedVectors = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "cai",
			Subsystem: "vectorstore",
			Name:      "stored_vectors",
			Help:      "Number of vectors stored per kind at last count",
		},
		[]string{"kind"},
	)
)
