package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Batch segmentation metrics, exposed when the CLI is started with
// --metrics-addr.
var (
	LinesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "khseg_lines_processed_total",
		Help: "Input lines segmented",
	})

	SegmentsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "khseg_segments_emitted_total",
		Help: "Segments produced across all lines",
	})

	UnknownSegments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "khseg_unknown_segments_total",
		Help: "Segments the dictionary could not vouch for",
	})

	LineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "khseg_line_duration_seconds",
		Help:    "Per-line segmentation duration in seconds",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	})
)
