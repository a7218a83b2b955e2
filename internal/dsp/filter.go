package dsp

import (
	"fmt"
	"math"
)

// FilterType selects the pass band of the frequency filter.
type FilterType string

// Supported filter types.
const (
	FilterHigh FilterType = "high"
	FilterLow  FilterType = "low"
)

// ParseFilterType validates a filter type name from configuration.
func ParseFilterType(name string) (FilterType, error) {
	switch FilterType(name) {
	case FilterHigh, FilterLow:
		return FilterType(name), nil
	}
	return "", fmt.Errorf("filter type must be 'high' or 'low', got '%s'", name)
}

// Filter applies a single-pole IIR filter of the given cutoff frequency.
// A cutoff of 0 (or below) disables filtering and returns an untouched copy.
func Filter(buf []float64, sampleRate int, cutoffHz float64, kind FilterType) []float64 {
	out := make([]float64, len(buf))
	copy(out, buf)

	if cutoffHz <= 0 || sampleRate <= 0 || len(out) == 0 {
		return out
	}

	rc := 1.0 / (2 * math.Pi * cutoffHz)
	dt := 1.0 / float64(sampleRate)

	switch kind {
	case FilterLow:
		a := dt / (rc + dt)
		out[0] = a * buf[0]
		for i := 1; i < len(buf); i++ {
			out[i] = out[i-1] + a*(buf[i]-out[i-1])
		}
	default:
		a := rc / (rc + dt)
		out[0] = buf[0]
		for i := 1; i < len(buf); i++ {
			out[i] = a * (out[i-1] + buf[i] - buf[i-1])
		}
	}
	return out
}
