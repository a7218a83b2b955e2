// Package detect provides the boundary sources for the segmentation
// pipeline: an energy-flux onset detector and an autocorrelation beat
// detector. Both operate on frame-RMS envelopes of the whole signal and
// emit frame-indexed boundary sets.
package detect
