package segment

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wavecut/wavecut/internal/audio"
	"github.com/wavecut/wavecut/internal/config"
	"github.com/wavecut/wavecut/internal/dsp"
	"github.com/wavecut/wavecut/internal/metadata"
	"github.com/wavecut/wavecut/internal/metrics"
)

// Conditioners holds the signal conditioning stages applied to each
// surviving segment, in the order fade, filter, normalize. The fields are
// function values so tests can substitute stubs that record call order.
type Conditioners struct {
	Fade      func(buf []float64, sampleRate, fadeMs int, curve dsp.Curve) []float64
	Filter    func(buf []float64, sampleRate int, cutoffHz float64, kind dsp.FilterType) []float64
	Normalize func(buf []float64, sampleRate int, targetDB float64, mode dsp.NormMode) []float64
}

// DefaultConditioners returns the production conditioning chain.
func DefaultConditioners() Conditioners {
	return Conditioners{
		Fade:      dsp.Fade,
		Filter:    dsp.Filter,
		Normalize: dsp.Normalize,
	}
}

// Renderer converts a boundary set into on-disk audio segments. Candidates
// shorter than the configured minimum length are discarded; surviving
// segments are conditioned, written as 24-bit WAV files with sequential
// 1-based numbering, and stamped with the shared metadata record.
type Renderer struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	// Conditioners may be replaced before Render is called.
	Conditioners Conditioners
}

// NewRenderer creates a segment renderer with the production conditioners.
func NewRenderer(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) *Renderer {
	return &Renderer{
		cfg:          cfg,
		logger:       logger,
		metrics:      m,
		Conditioners: DefaultConditioners(),
	}
}

// RenderResult summarizes a completed render run.
type RenderResult struct {
	Written     []string // segment file paths in output order
	Skipped     int      // candidates discarded by the minimum-length policy
	SidecarPath string   // metadata side-car path, empty when no record was given
	TextPath    string   // boundary export path when save_text is enabled
}

// Render slices the signal at the boundary positions and writes every
// surviving segment. A write failure aborts the remaining iterations;
// files written before the failure are left on disk.
func (r *Renderer) Render(sig *audio.Signal, b Boundaries, rec *metadata.Record) (*RenderResult, error) {
	if sig == nil || sig.Len() == 0 {
		return nil, fmt.Errorf("cannot render segments from an empty signal")
	}
	if b.Candidates() == 0 {
		return nil, fmt.Errorf("need at least two boundaries to form a segment, got %d", b.Len())
	}

	if err := os.MkdirAll(r.cfg.IO.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", r.cfg.IO.OutputDir, err)
	}

	cuts, err := b.ToSamples(sig.SampleRate, r.cfg.Segmentation.HopSize, r.cfg.Segmentation.NFFT, sig.Len())
	if err != nil {
		return nil, fmt.Errorf("failed to convert boundaries to sample offsets: %w", err)
	}

	basePath := BasePath(r.cfg.IO.OutputDir, r.cfg.IO.Input)
	minLength := r.cfg.Segmentation.MinLength
	curve := dsp.Curve(r.cfg.Fade.Curve)
	filterType := dsp.FilterType(r.cfg.Filter.Type)
	normMode := dsp.NormMode(r.cfg.Normalization.Mode)

	r.logger.Info("Rendering segments",
		slog.Int("candidates", len(cuts)-1),
		slog.String("boundary_units", b.Units.String()),
		slog.String("output_dir", r.cfg.IO.OutputDir),
	)

	start := time.Now()
	result := &RenderResult{}
	count := 0

	for i := 0; i < len(cuts)-1; i++ {
		candidate := sig.Samples[cuts[i]:cuts[i+1]]
		duration := float64(len(candidate)) / float64(sig.SampleRate)

		if duration < minLength {
			result.Skipped++
			r.metrics.RecordSegmentSkipped()
			r.logger.Warn("Skipping segment below minimum length",
				slog.Int("candidate", i+1),
				slog.Float64("duration_seconds", duration),
				slog.Float64("min_length_seconds", minLength),
			)
			continue
		}
		count++

		buf := r.Conditioners.Fade(candidate, sig.SampleRate, r.cfg.Fade.DurationMs, curve)
		buf = r.Conditioners.Filter(buf, sig.SampleRate, r.cfg.Filter.Frequency, filterType)
		buf = r.Conditioners.Normalize(buf, sig.SampleRate, r.cfg.Normalization.LevelDB, normMode)

		path := fmt.Sprintf("%s_%d.wav", basePath, count)
		r.logger.Info("Saving segment",
			slog.Int("segment", count),
			slog.Float64("duration_seconds", duration),
			slog.String("path", path),
		)

		if err := audio.WritePCM24(path, buf, sig.SampleRate, rec.WavTags()); err != nil {
			return result, fmt.Errorf("failed to write segment %d: %w", count, err)
		}
		result.Written = append(result.Written, path)

		var size int64
		if info, statErr := os.Stat(path); statErr == nil {
			size = info.Size()
		}
		r.metrics.RecordSegmentRendered(duration, size)
	}

	if rec != nil {
		sidecar, err := metadata.ExportSidecar(rec, basePath)
		if err != nil {
			return result, err
		}
		result.SidecarPath = sidecar
	}

	if r.cfg.Segmentation.SaveText {
		exporter := NewExporter(r.cfg, r.logger, r.metrics)
		textPath, err := exporter.Export(b, sig.SampleRate)
		if err != nil {
			return result, err
		}
		result.TextPath = textPath
	}

	r.metrics.RecordRenderCompleted(time.Since(start).Seconds())
	r.logger.Info("Render complete",
		slog.Int("written", len(result.Written)),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

// BasePath derives the per-source output prefix: the output directory joined
// with the source filename minus its extension.
func BasePath(outputDir, inputPath string) string {
	name := filepath.Base(inputPath)
	return filepath.Join(outputDir, strings.TrimSuffix(name, filepath.Ext(name)))
}
