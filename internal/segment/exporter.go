package segment

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/wavecut/wavecut/internal/config"
	"github.com/wavecut/wavecut/internal/metrics"
)

// Exporter writes a boundary set as a tab-delimited timestamp table, one
// line per candidate segment. No minimum-length filtering is applied: the
// export is a complete record of the detected boundaries, and callers who
// want filtering apply it when feeding the file back through the
// text-driven segmenter.
type Exporter struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewExporter creates a boundary exporter.
func NewExporter(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) *Exporter {
	return &Exporter{cfg: cfg, logger: logger, metrics: m}
}

// Export writes one `<start>\t<end>` line per adjacent boundary pair, each
// value in seconds with exactly six decimal places, and returns the path of
// the written file.
func (e *Exporter) Export(b Boundaries, sampleRate int) (string, error) {
	if b.Candidates() == 0 {
		return "", fmt.Errorf("need at least two boundaries to export, got %d", b.Len())
	}

	if err := os.MkdirAll(e.cfg.IO.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", e.cfg.IO.OutputDir, err)
	}

	times, err := b.ToSeconds(sampleRate, e.cfg.Segmentation.HopSize, e.cfg.Segmentation.NFFT)
	if err != nil {
		return "", fmt.Errorf("failed to convert boundaries to seconds: %w", err)
	}

	path := BasePath(e.cfg.IO.OutputDir, e.cfg.IO.Input) + "_segments.txt"
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create boundary export %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := 0; i < len(times)-1; i++ {
		if _, err := fmt.Fprintf(w, "%.6f\t%.6f\n", times[i], times[i+1]); err != nil {
			return "", fmt.Errorf("failed to write boundary export %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to write boundary export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close boundary export %s: %w", path, err)
	}

	lines := len(times) - 1
	e.metrics.RecordBoundariesExported(lines)
	e.logger.Info("Exported boundaries",
		slog.Int("lines", lines),
		slog.String("path", path),
	)
	return path, nil
}
