// Package audio handles WAV decoding and encoding for the segmentation pipeline.
// It loads source files into float64 sample buffers at their native rate and
// writes conditioned segments as 24-bit PCM or 32-bit IEEE float WAV files.
package audio
