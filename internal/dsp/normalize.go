package dsp

import (
	"fmt"
	"math"
)

// NormMode selects how the normalization target level is measured.
type NormMode string

// Supported normalization modes.
const (
	NormPeak     NormMode = "peak"
	NormRMS      NormMode = "rms"
	NormLoudness NormMode = "loudness"
)

// ParseNormMode validates a normalization mode name from configuration.
func ParseNormMode(name string) (NormMode, error) {
	switch NormMode(name) {
	case NormPeak, NormRMS, NormLoudness:
		return NormMode(name), nil
	}
	return "", fmt.Errorf("normalisation mode must be one of [peak, rms, loudness], got '%s'", name)
}

// Normalize scales the buffer so its measured level matches targetDB.
// Peak mode measures the absolute sample maximum, RMS mode the root mean
// square, and loudness mode a gated block loudness in the style of the
// broadcast loudness recommendation (400 ms blocks, -70 absolute and -10
// relative gates). Silent buffers are returned unchanged.
func Normalize(buf []float64, sampleRate int, targetDB float64, mode NormMode) []float64 {
	out := make([]float64, len(buf))
	copy(out, buf)
	if len(out) == 0 {
		return out
	}

	var gain float64
	switch mode {
	case NormRMS:
		r := rms(out)
		if r <= 0 {
			return out
		}
		gain = math.Pow(10, targetDB/20) / r
	case NormLoudness:
		l, ok := blockLoudness(out, sampleRate)
		if !ok {
			return out
		}
		gain = math.Pow(10, (targetDB-l)/20)
	default:
		p := peak(out)
		if p <= 0 {
			return out
		}
		gain = math.Pow(10, targetDB/20) / p
	}

	for i := range out {
		out[i] *= gain
	}
	return out
}

func peak(buf []float64) float64 {
	var p float64
	for _, v := range buf {
		if a := math.Abs(v); a > p {
			p = a
		}
	}
	return p
}

func rms(buf []float64) float64 {
	var sum float64
	for _, v := range buf {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(buf)))
}

// blockLoudness measures gated loudness over 400 ms blocks with 75% overlap.
// Returns false when the buffer is too short or entirely below the gates,
// in which case the caller leaves the signal untouched.
func blockLoudness(buf []float64, sampleRate int) (float64, bool) {
	if sampleRate <= 0 {
		return 0, false
	}

	block := sampleRate * 400 / 1000
	hop := block / 4
	if block < 1 || hop < 1 || len(buf) < block {
		// Fall back to a single block over the whole segment.
		block = len(buf)
		hop = block
	}

	var powers []float64
	for i := 0; i+block <= len(buf); i += hop {
		var sum float64
		for j := i; j < i+block; j++ {
			sum += buf[j] * buf[j]
		}
		powers = append(powers, sum/float64(block))
	}
	if len(powers) == 0 {
		return 0, false
	}

	const absoluteGate = -70.0
	gated := gatedMean(powers, absoluteGate)
	if gated <= 0 {
		return 0, false
	}

	// Relative gate sits 10 LU below the absolute-gated loudness.
	relativeGate := powerToLoudness(gated) - 10
	gated = gatedMean(powers, relativeGate)
	if gated <= 0 {
		return 0, false
	}
	return powerToLoudness(gated), true
}

func gatedMean(powers []float64, gateDB float64) float64 {
	var sum float64
	var n int
	for _, p := range powers {
		if p > 0 && powerToLoudness(p) > gateDB {
			sum += p
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func powerToLoudness(p float64) float64 {
	return -0.691 + 10*math.Log10(p)
}
