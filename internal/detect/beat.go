package detect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wavecut/wavecut/internal/segment"
)

// Tempo search range in beats per minute.
const (
	minBPM = 30
	maxBPM = 300
)

// BeatDetector finds segment boundaries on a regular beat grid. It picks a
// tempo by autocorrelating the onset-strength envelope across the plausible
// lag range, aligns the grid phase to the strongest envelope response, and
// emits every beat position as a frame boundary.
type BeatDetector struct {
	nfft    int
	hopSize int
	logger  *slog.Logger
}

// NewBeatDetector creates a beat detector for the given analysis resolution.
func NewBeatDetector(nfft, hopSize int, logger *slog.Logger) (*BeatDetector, error) {
	if nfft < 1 {
		return nil, fmt.Errorf("n_fft must be positive, got %d", nfft)
	}
	if hopSize < 1 || hopSize > nfft {
		return nil, fmt.Errorf("hop_size must be in [1, n_fft], got %d", hopSize)
	}
	return &BeatDetector{nfft: nfft, hopSize: hopSize, logger: logger}, nil
}

// Detect returns frame-indexed boundaries on the estimated beat grid,
// always including frame 0 and the final frame.
func (d *BeatDetector) Detect(ctx context.Context, samples []float64, sampleRate int) (segment.Boundaries, error) {
	if len(samples) == 0 {
		return segment.Boundaries{}, fmt.Errorf("cannot detect beats in an empty signal")
	}
	if sampleRate <= 0 {
		return segment.Boundaries{}, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if err := ctx.Err(); err != nil {
		return segment.Boundaries{}, err
	}

	env := frameRMS(samples, d.nfft, d.hopSize)
	lastFrame := len(env)
	flux := energyFlux(env)

	framesPerSecond := float64(sampleRate) / float64(d.hopSize)
	minLag := int(framesPerSecond * 60 / maxBPM)
	maxLag := int(framesPerSecond * 60 / minBPM)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(flux) {
		maxLag = len(flux) - 1
	}
	if maxLag < minLag {
		d.logger.Warn("Signal too short for beat analysis, using a single segment",
			slog.Int("frames", len(env)),
		)
		return segment.FromFrames([]int{0, lastFrame}), nil
	}

	lag, err := bestLag(ctx, flux, minLag, maxLag)
	if err != nil {
		return segment.Boundaries{}, err
	}

	phase := bestPhase(flux, lag)
	frames := []int{}
	if phase != 0 {
		frames = append(frames, 0)
	}
	for f := phase; f < lastFrame; f += lag {
		frames = append(frames, f)
	}
	if frames[len(frames)-1] != lastFrame {
		frames = append(frames, lastFrame)
	}

	bpm := framesPerSecond * 60 / float64(lag)
	d.logger.Info("Beat detection complete",
		slog.Float64("bpm", bpm),
		slog.Int("beat_interval_frames", lag),
		slog.Int("boundaries", len(frames)),
	)
	return segment.FromFrames(frames), nil
}

// bestLag returns the autocorrelation lag with the strongest response.
func bestLag(ctx context.Context, flux []float64, minLag, maxLag int) (int, error) {
	best := minLag
	var bestScore float64
	for lag := minLag; lag <= maxLag; lag++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		var score float64
		for i := 0; i+lag < len(flux); i++ {
			score += flux[i] * flux[i+lag]
		}
		// Normalize so long lags are not penalized for fewer products.
		score /= float64(len(flux) - lag)
		if score > bestScore {
			bestScore = score
			best = lag
		}
	}
	return best, nil
}

// bestPhase returns the grid offset in [0, lag) whose beat positions align
// with the most onset energy.
func bestPhase(flux []float64, lag int) int {
	best := 0
	var bestScore float64
	for phase := 0; phase < lag; phase++ {
		var score float64
		for i := phase; i < len(flux); i += lag {
			score += flux[i]
		}
		if score > bestScore {
			bestScore = score
			best = phase
		}
	}
	return best
}
