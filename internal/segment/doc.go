// Package segment implements the core of the segmentation pipeline: unit-aware
// boundary sets, the segment renderer with its short-segment policy and
// fade/filter/normalize conditioning chain, the plain-text boundary exporter,
// the text-driven segmenter, and the interactive mode selector.
package segment
