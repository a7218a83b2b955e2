// Package dsp provides the pure signal conditioners used on rendered segments:
// edge fades with selectable curve shapes, single-pole high/low-pass filtering,
// and amplitude normalization. Every function returns a new buffer and never
// mutates its input, so repeated runs over the same signal are deterministic.
package dsp
