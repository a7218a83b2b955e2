package segment

import (
	"fmt"
	"math"
)

// Units declares which grid a boundary position is expressed on. Boundary
// producers tag their output so the renderer and exporter can convert to
// absolute sample offsets without assuming an implicit unit.
type Units int

// Boundary position units.
const (
	UnitFrames Units = iota // analysis-frame indices from onset/beat detection
	UnitSamples             // absolute sample offsets
	UnitSeconds             // time positions, converted via whole milliseconds
)

// String returns the unit name for logging.
func (u Units) String() string {
	switch u {
	case UnitFrames:
		return "frames"
	case UnitSamples:
		return "samples"
	case UnitSeconds:
		return "seconds"
	}
	return "unknown"
}

// Boundaries is an ordered set of segment boundary positions together with
// the unit they are expressed in. N boundaries delimit N-1 candidate
// segments.
type Boundaries struct {
	Units     Units
	Positions []float64
}

// FromFrames builds a frame-indexed boundary set.
func FromFrames(frames []int) Boundaries {
	pos := make([]float64, len(frames))
	for i, f := range frames {
		pos[i] = float64(f)
	}
	return Boundaries{Units: UnitFrames, Positions: pos}
}

// FromSamples builds a sample-indexed boundary set.
func FromSamples(samples []int) Boundaries {
	pos := make([]float64, len(samples))
	for i, s := range samples {
		pos[i] = float64(s)
	}
	return Boundaries{Units: UnitSamples, Positions: pos}
}

// FromSeconds builds a time-indexed boundary set.
func FromSeconds(seconds []float64) Boundaries {
	pos := make([]float64, len(seconds))
	copy(pos, seconds)
	return Boundaries{Units: UnitSeconds, Positions: pos}
}

// Len returns the number of boundaries.
func (b Boundaries) Len() int {
	return len(b.Positions)
}

// Candidates returns the number of candidate segments the set delimits.
func (b Boundaries) Candidates() int {
	if len(b.Positions) < 2 {
		return 0
	}
	return len(b.Positions) - 1
}

// ToSamples converts every boundary to an absolute sample offset. Frame
// positions use the same hop and transform size that produced them
// (sample = frame*hop + fft/2); time positions are rounded to whole
// milliseconds first. Offsets are clamped to [0, signalLen]. The sequence
// must be non-decreasing.
func (b Boundaries) ToSamples(sampleRate, hopSize, fftSize, signalLen int) ([]int, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if b.Units == UnitFrames && hopSize < 1 {
		return nil, fmt.Errorf("hop size must be positive for frame boundaries, got %d", hopSize)
	}

	out := make([]int, len(b.Positions))
	for i, p := range b.Positions {
		var s int
		switch b.Units {
		case UnitFrames:
			s = int(p)*hopSize + fftSize/2
		case UnitSeconds:
			ms := int64(math.Round(p * 1000))
			s = int(ms * int64(sampleRate) / 1000)
		default:
			s = int(p)
		}
		if s < 0 {
			s = 0
		}
		if s > signalLen {
			s = signalLen
		}
		out[i] = s
	}

	for i := 1; i < len(out); i++ {
		if out[i] < out[i-1] {
			return nil, fmt.Errorf("boundaries are not ordered: position %d (%d samples) precedes position %d (%d samples)",
				i, out[i], i-1, out[i-1])
		}
	}
	return out, nil
}

// ToSeconds converts every boundary to a time value in seconds at the given
// sample rate, using the same frame conversion as ToSamples.
func (b Boundaries) ToSeconds(sampleRate, hopSize, fftSize int) ([]float64, error) {
	if b.Units == UnitSeconds {
		out := make([]float64, len(b.Positions))
		copy(out, b.Positions)
		return out, nil
	}

	// Unclamped sample conversion keeps the export a lossless record.
	samples, err := b.ToSamples(sampleRate, hopSize, fftSize, math.MaxInt32)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) / float64(sampleRate)
	}
	return out, nil
}
