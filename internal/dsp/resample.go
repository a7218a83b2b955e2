package dsp

import "math"

// Resample converts the buffer from srcRate to dstRate by linear
// interpolation. The output length is the input length scaled by the rate
// ratio, rounded to the nearest sample. Equal rates or invalid arguments
// return an untouched copy.
func Resample(buf []float64, srcRate, dstRate int) []float64 {
	if srcRate <= 0 || dstRate <= 0 || srcRate == dstRate || len(buf) == 0 {
		out := make([]float64, len(buf))
		copy(out, buf)
		return out
	}

	n := int(math.Round(float64(len(buf)) * float64(dstRate) / float64(srcRate)))
	if n < 1 {
		n = 1
	}

	ratio := float64(srcRate) / float64(dstRate)
	out := make([]float64, n)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(buf)-1 {
			out[i] = buf[len(buf)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = buf[j]*(1-frac) + buf[j+1]*frac
	}
	return out
}
