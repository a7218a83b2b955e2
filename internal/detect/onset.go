package detect

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wavecut/wavecut/internal/segment"
)

// Detector produces an ordered boundary set for a signal. Implementations
// declare the boundary units through the returned set's tag.
type Detector interface {
	Detect(ctx context.Context, samples []float64, sampleRate int) (segment.Boundaries, error)
}

// OnsetDetector finds segment boundaries at energy onsets. It computes a
// frame-RMS envelope (window = FFT size, step = hop size), takes the
// positive energy flux, and peak-picks frames whose flux clears both the
// configured threshold and an adaptive noise floor.
type OnsetDetector struct {
	nfft      int
	hopSize   int
	threshold float64
	logger    *slog.Logger

	// Statistics
	lastRun       time.Time
	lastOnsets    int
	framesScanned uint64
}

// NewOnsetDetector creates an onset detector for the given analysis
// resolution.
func NewOnsetDetector(nfft, hopSize int, threshold float64, logger *slog.Logger) (*OnsetDetector, error) {
	if nfft < 1 {
		return nil, fmt.Errorf("n_fft must be positive, got %d", nfft)
	}
	if hopSize < 1 || hopSize > nfft {
		return nil, fmt.Errorf("hop_size must be in [1, n_fft], got %d", hopSize)
	}
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold must be in (0, 1], got %f", threshold)
	}
	return &OnsetDetector{
		nfft:      nfft,
		hopSize:   hopSize,
		threshold: threshold,
		logger:    logger,
	}, nil
}

// Detect returns frame-indexed boundaries. Frame 0 and the final frame are
// always included so N boundaries delimit the whole signal.
func (d *OnsetDetector) Detect(ctx context.Context, samples []float64, sampleRate int) (segment.Boundaries, error) {
	if len(samples) == 0 {
		return segment.Boundaries{}, fmt.Errorf("cannot detect onsets in an empty signal")
	}
	if err := ctx.Err(); err != nil {
		return segment.Boundaries{}, err
	}

	env := frameRMS(samples, d.nfft, d.hopSize)
	d.framesScanned += uint64(len(env))
	lastFrame := len(env)

	flux := energyFlux(env)
	if len(flux) == 0 {
		d.logger.Warn("Signal too short for onset analysis, using a single segment",
			slog.Int("frames", len(env)),
		)
		return segment.FromFrames([]int{0, lastFrame}), nil
	}

	// The noise floor keeps sustained material from firing on every frame.
	floor := percentile(flux, 75)
	gate := d.threshold
	if floor > gate {
		gate = floor
	}

	// Onsets closer than one analysis window apart collapse into one.
	minSep := d.nfft / d.hopSize
	if minSep < 1 {
		minSep = 1
	}

	frames := []int{0}
	lastPick := -minSep
	for i, f := range flux {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return segment.Boundaries{}, err
			}
		}
		if f < gate || !isLocalMax(flux, i) {
			continue
		}
		frame := i + 1
		if frame-lastPick < minSep {
			continue
		}
		frames = append(frames, frame)
		lastPick = frame
	}
	if frames[len(frames)-1] != lastFrame {
		frames = append(frames, lastFrame)
	}

	d.lastRun = time.Now()
	d.lastOnsets = len(frames)
	d.logger.Info("Onset detection complete",
		slog.Int("frames", len(env)),
		slog.Int("boundaries", len(frames)),
		slog.Float64("gate", gate),
	)
	return segment.FromFrames(frames), nil
}

// isLocalMax reports whether flux[i] is at least as large as its immediate
// neighbors.
func isLocalMax(flux []float64, i int) bool {
	if i > 0 && flux[i] < flux[i-1] {
		return false
	}
	if i < len(flux)-1 && flux[i] < flux[i+1] {
		return false
	}
	return true
}
