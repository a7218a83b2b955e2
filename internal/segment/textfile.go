package segment

import (
	"bufio"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wavecut/wavecut/internal/audio"
	"github.com/wavecut/wavecut/internal/config"
	"github.com/wavecut/wavecut/internal/dsp"
	"github.com/wavecut/wavecut/internal/metrics"
)

// TextSegmenter slices a source file at externally supplied timestamps.
// Cut points come from a plain-text file with one whitespace-delimited
// `<start_seconds> <end_seconds>` pair per line. Segments get fade-in/out
// only: the cut points are externally curated, so no filtering or
// normalization is imposed. Every line produces one output file; there is
// no minimum-length policy on this path.
type TextSegmenter struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	// Conditioners may be replaced before Run is called; only Fade is used.
	Conditioners Conditioners
}

// NewTextSegmenter creates a text-driven segmenter.
func NewTextSegmenter(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) *TextSegmenter {
	return &TextSegmenter{
		cfg:          cfg,
		logger:       logger,
		metrics:      m,
		Conditioners: DefaultConditioners(),
	}
}

// TextResult summarizes a completed text-driven run.
type TextResult struct {
	Written    []string // output file paths in line order
	Ranges     [][2]int // absolute sample ranges, one per line
	SampleRate int      // native rate of the reloaded source
}

// span is one parsed boundary line.
type span struct {
	start, end float64
}

// Run reloads the source audio at its native sample rate, parses the
// boundary file, and writes one float-encoded segment per line. Any
// malformed line fails the whole operation before a single file is
// written; a truncated segment list is worse than a loud failure.
func (t *TextSegmenter) Run(audioPath, txtPath, outDir string) (*TextResult, error) {
	spans, err := parseBoundaryFile(txtPath)
	if err != nil {
		return nil, err
	}

	sig, err := audio.ReadFile(audioPath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	t.logger.Info("Segmenting from boundary file",
		slog.String("audio", audioPath),
		slog.String("boundaries", txtPath),
		slog.Int("segments", len(spans)),
		slog.Int("sample_rate", sig.SampleRate),
	)

	curve := dsp.Curve(t.cfg.Fade.Curve)
	result := &TextResult{SampleRate: sig.SampleRate}

	for i, sp := range spans {
		startSample, endSample := sp.sampleRange(sig.SampleRate)
		if startSample >= sig.Len() {
			return result, fmt.Errorf("boundary file %s line %d: start %.6fs is beyond the end of %s",
				txtPath, i+1, sp.start, audioPath)
		}
		if endSample > sig.Len() {
			t.logger.Warn("Clamping segment end to signal length",
				slog.Int("line", i+1),
				slog.Float64("end_seconds", sp.end),
			)
			endSample = sig.Len()
		}

		seg := sig.Samples[startSample:endSample]
		faded := t.Conditioners.Fade(seg, sig.SampleRate, t.cfg.Fade.DurationMs, curve)

		path := filepath.Join(outDir, fmt.Sprintf("segment_%d.wav", i))
		if err := audio.WriteFloat32(path, faded, sig.SampleRate); err != nil {
			return result, fmt.Errorf("failed to write segment for line %d: %w", i+1, err)
		}

		result.Written = append(result.Written, path)
		result.Ranges = append(result.Ranges, [2]int{startSample, endSample})
		t.metrics.RecordTextSegmentWritten()
		t.logger.Info("Saving segment",
			slog.Int("line", i+1),
			slog.String("path", path),
		)
	}

	t.logger.Info("Text-driven segmentation complete",
		slog.Int("written", len(result.Written)),
	)
	return result, nil
}

// sampleRange converts the span's times to absolute sample offsets via
// whole milliseconds: sample = time_ms * sample_rate / 1000.
func (s span) sampleRange(sampleRate int) (int, int) {
	return secondsToSample(s.start, sampleRate), secondsToSample(s.end, sampleRate)
}

func secondsToSample(sec float64, sampleRate int) int {
	ms := int64(math.Round(sec * 1000))
	return int(ms * int64(sampleRate) / 1000)
}

// parseBoundaryFile reads every line up front so malformed input fails the
// whole operation before anything is written.
func parseBoundaryFile(path string) ([]span, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open boundary file %s: %w", path, err)
	}
	defer f.Close()

	var spans []span
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		sp, err := parseBoundaryLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("boundary file %s line %d: %w", path, lineNo, err)
		}
		spans = append(spans, sp)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read boundary file %s: %w", path, err)
	}
	if len(spans) == 0 {
		return nil, fmt.Errorf("boundary file %s contains no segments", path)
	}
	return spans, nil
}

// parseBoundaryLine parses one `<start> <end>` pair. Extra tokens after the
// first two are ignored, matching the historical reader.
func parseBoundaryLine(line string) (span, error) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return span{}, fmt.Errorf("expected two time values, got %d", len(tokens))
	}
	start, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return span{}, fmt.Errorf("invalid start time '%s'", tokens[0])
	}
	end, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return span{}, fmt.Errorf("invalid end time '%s'", tokens[1])
	}
	if start < 0 {
		return span{}, fmt.Errorf("start time %.6f cannot be negative", start)
	}
	if start >= end {
		return span{}, fmt.Errorf("start time %.6f must precede end time %.6f", start, end)
	}
	return span{start: start, end: end}, nil
}
