package detect

import (
	"math"
	"sort"
)

// frameRMS computes the root-mean-square energy envelope over windows of
// windowSize samples advanced by hopSize. The final partial window is
// included so the envelope covers the whole signal.
func frameRMS(samples []float64, windowSize, hopSize int) []float64 {
	if windowSize < 1 || hopSize < 1 || len(samples) == 0 {
		return nil
	}

	numFrames := 1 + (len(samples)-1)/hopSize
	env := make([]float64, 0, numFrames)
	for start := 0; start < len(samples); start += hopSize {
		end := start + windowSize
		if end > len(samples) {
			end = len(samples)
		}
		var sum float64
		for i := start; i < end; i++ {
			sum += samples[i] * samples[i]
		}
		env = append(env, math.Sqrt(sum/float64(end-start)))
	}
	return env
}

// energyFlux returns the positive first difference of the envelope,
// normalized to [0, 1]. Index i of the flux corresponds to envelope frame
// i+1, the frame where the energy rise lands.
func energyFlux(env []float64) []float64 {
	if len(env) < 2 {
		return nil
	}
	flux := make([]float64, len(env)-1)
	var max float64
	for i := 1; i < len(env); i++ {
		d := env[i] - env[i-1]
		if d < 0 {
			d = 0
		}
		flux[i-1] = d
		if d > max {
			max = d
		}
	}
	if max > 0 {
		for i := range flux {
			flux[i] /= max
		}
	}
	return flux
}

// percentile returns the p-th percentile of xs using nearest-rank rounding.
func percentile(xs []float64, p int) float64 {
	if len(xs) == 0 {
		return 0
	}
	tmp := append([]float64(nil), xs...)
	sort.Float64s(tmp)
	if p <= 0 {
		return tmp[0]
	}
	if p >= 100 {
		return tmp[len(tmp)-1]
	}
	idx := int(math.Round(float64(p) / 100 * float64(len(tmp)-1)))
	return tmp[idx]
}
