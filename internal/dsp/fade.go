package dsp

import (
	"fmt"
	"math"
)

// Curve identifies the amplitude envelope shape applied at segment edges.
type Curve string

// Supported fade curve shapes.
const (
	CurveExponential  Curve = "exp"
	CurveLogarithmic  Curve = "log"
	CurveLinear       Curve = "linear"
	CurveSCurve       Curve = "s_curve"
	CurveRaisedCosine Curve = "hann"
)

// ParseCurve validates a curve name from configuration.
func ParseCurve(name string) (Curve, error) {
	switch Curve(name) {
	case CurveExponential, CurveLogarithmic, CurveLinear, CurveSCurve, CurveRaisedCosine:
		return Curve(name), nil
	}
	return "", fmt.Errorf("curve must be one of [exp, log, linear, s_curve, hann], got '%s'", name)
}

// Fade applies a fade-in and fade-out of fadeMs milliseconds to both edges
// of the buffer using the given curve shape. The fade window is clamped to
// half the buffer length so the two ramps never overlap.
func Fade(buf []float64, sampleRate, fadeMs int, curve Curve) []float64 {
	out := make([]float64, len(buf))
	copy(out, buf)

	if fadeMs <= 0 || sampleRate <= 0 || len(out) == 0 {
		return out
	}

	n := sampleRate * fadeMs / 1000
	if n > len(out)/2 {
		n = len(out) / 2
	}
	if n < 1 {
		return out
	}

	for i := 0; i < n; i++ {
		t := float64(i+1) / float64(n+1)
		g := curveGain(curve, t)
		out[i] *= g
		out[len(out)-1-i] *= g
	}
	return out
}

// curveGain maps normalized position t in [0, 1] to a gain in [0, 1].
func curveGain(curve Curve, t float64) float64 {
	switch curve {
	case CurveExponential:
		return t * t
	case CurveLogarithmic:
		return math.Sqrt(t)
	case CurveSCurve:
		return smoothstep(t)
	case CurveRaisedCosine:
		return 0.5 * (1 - math.Cos(math.Pi*t))
	default:
		return t
	}
}

// smoothstep is the 3t^2 - 2t^3 interpolation curve.
func smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
