package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the segmentation pipeline.
type Metrics struct {
	// Source file metrics
	FilesProcessed     prometheus.Counter
	BoundariesDetected prometheus.Counter

	// Render metrics
	SegmentsRendered prometheus.Counter
	SegmentsSkipped  prometheus.Counter
	SegmentDuration  prometheus.Histogram
	BytesWritten     prometheus.Counter
	RenderDuration   prometheus.Histogram

	// Export metrics
	BoundariesExported  prometheus.Counter
	TextSegmentsWritten prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FilesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavecut_files_processed_total",
			Help: "Total number of source files processed",
		}),
		BoundariesDetected: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavecut_boundaries_detected_total",
			Help: "Total number of segment boundaries produced by detection",
		}),
		SegmentsRendered: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavecut_segments_rendered_total",
			Help: "Total number of segments written as audio files",
		}),
		SegmentsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavecut_segments_skipped_total",
			Help: "Total number of candidate segments discarded by the minimum-length policy",
		}),
		SegmentDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wavecut_segment_duration_seconds",
			Help:    "Duration of rendered segments",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~3.5 minutes
		}),
		BytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavecut_bytes_written_total",
			Help: "Total number of audio bytes written to disk",
		}),
		RenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wavecut_render_duration_seconds",
			Help:    "Wall-clock duration of complete render runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~2.7 minutes
		}),
		BoundariesExported: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavecut_boundaries_exported_total",
			Help: "Total number of boundary lines written to text exports",
		}),
		TextSegmentsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "wavecut_text_segments_written_total",
			Help: "Total number of segments written by the text-driven segmenter",
		}),
	}
}

// RecordFileProcessed increments the processed files counter.
func (m *Metrics) RecordFileProcessed() {
	m.FilesProcessed.Inc()
}

// RecordBoundariesDetected adds the number of detected boundaries.
func (m *Metrics) RecordBoundariesDetected(count int) {
	m.BoundariesDetected.Add(float64(count))
}

// RecordSegmentRendered records one written segment.
func (m *Metrics) RecordSegmentRendered(durationSeconds float64, sizeBytes int64) {
	m.SegmentsRendered.Inc()
	m.SegmentDuration.Observe(durationSeconds)
	m.BytesWritten.Add(float64(sizeBytes))
}

// RecordSegmentSkipped records one candidate discarded by the
// minimum-length policy.
func (m *Metrics) RecordSegmentSkipped() {
	m.SegmentsSkipped.Inc()
}

// RecordRenderCompleted records the wall-clock duration of a render run.
func (m *Metrics) RecordRenderCompleted(durationSeconds float64) {
	m.RenderDuration.Observe(durationSeconds)
}

// RecordBoundariesExported adds the number of lines written to a text
// export.
func (m *Metrics) RecordBoundariesExported(lines int) {
	m.BoundariesExported.Add(float64(lines))
}

// RecordTextSegmentWritten records one segment written by the text-driven
// segmenter.
func (m *Metrics) RecordTextSegmentWritten() {
	m.TextSegmentsWritten.Inc()
}
