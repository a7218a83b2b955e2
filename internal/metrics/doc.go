// Package metrics provides Prometheus instrumentation for the segmentation
// pipeline: boundary detection counts, rendered and skipped segments, bytes
// written, and run durations.
package metrics
