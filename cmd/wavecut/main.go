package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wavecut/wavecut/internal/audio"
	"github.com/wavecut/wavecut/internal/config"
	"github.com/wavecut/wavecut/internal/detect"
	"github.com/wavecut/wavecut/internal/metadata"
	"github.com/wavecut/wavecut/internal/metrics"
	"github.com/wavecut/wavecut/internal/segment"
)

const (
	toolName    = "wavecut"
	toolVersion = "1.0.0"
)

func main() {
	// Parse command line flags over the defaults (or a config file).
	configPath := flag.String("config", "", "Path to YAML configuration file")
	input := flag.String("i", "", "Path to the source audio file (WAV)")
	inputText := flag.String("it", "", "Boundary text file for the text method (defaults to <input>.txt)")
	outputDir := flag.String("o", "", "Output directory (defaults to <input>_segments)")
	method := flag.String("m", "", "Segmentation method: onset, beat or text")
	saveText := flag.Bool("st", false, "Also export boundary times as a text file when rendering")
	minLength := flag.Float64("ml", 0, "Minimum segment length in seconds")
	fadeDuration := flag.Int("f", 0, "Fade in/out duration in milliseconds")
	curveType := flag.String("c", "", "Fade curve: exp, log, linear, s_curve or hann")
	filterFreq := flag.Float64("ff", -1, "Filter cutoff frequency in Hz (0 disables filtering)")
	filterType := flag.String("ft", "", "Filter type: high or low")
	normLevel := flag.Float64("nl", 1, "Normalisation level in dB")
	normMode := flag.String("nm", "", "Normalisation mode: peak, rms or loudness")
	sampleRate := flag.Int("sample-rate", 0, "Analysis sample rate in Hz; input at another rate is resampled")
	nFFT := flag.Int("n-fft", 0, "Analysis FFT size")
	hopSize := flag.Int("hop-size", 0, "Analysis hop size in samples")
	metricsListen := flag.String("metrics-listen", "", "Expose Prometheus metrics on this address during the run")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Flags set on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.IO.Input = *input
		case "it":
			cfg.IO.InputText = *inputText
		case "o":
			cfg.IO.OutputDir = *outputDir
		case "m":
			cfg.Segmentation.Method = *method
		case "st":
			cfg.Segmentation.SaveText = *saveText
		case "ml":
			cfg.Segmentation.MinLength = *minLength
		case "f":
			cfg.Fade.DurationMs = *fadeDuration
		case "c":
			cfg.Fade.Curve = *curveType
		case "ff":
			cfg.Filter.Frequency = *filterFreq
		case "ft":
			cfg.Filter.Type = *filterType
		case "nl":
			cfg.Normalization.LevelDB = *normLevel
		case "nm":
			cfg.Normalization.Mode = *normMode
		case "sample-rate":
			cfg.Segmentation.SampleRate = *sampleRate
		case "n-fft":
			cfg.Segmentation.NFFT = *nFFT
		case "hop-size":
			cfg.Segmentation.HopSize = *hopSize
		case "metrics-listen":
			cfg.Metrics.Enabled = true
			cfg.Metrics.Listen = *metricsListen
		}
	})

	cfg = cfg.Resolved()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)
	logger.Info("Starting",
		slog.String("tool", toolName),
		slog.String("version", toolVersion),
		slog.String("input", cfg.IO.Input),
		slog.String("method", cfg.Segmentation.Method),
		slog.String("output_dir", cfg.IO.OutputDir),
	)

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Listen, logger)
	}

	// Detection is interruptible; rendering of an accepted choice runs to
	// completion or first write failure.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Segmentation.Method == "text" {
		runTextMethod(cfg, logger, appMetrics)
		return
	}

	sig, err := audio.ReadFile(cfg.IO.Input)
	if err != nil {
		logger.Error("Failed to load input", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Loaded signal",
		slog.Int("samples", sig.Len()),
		slog.Int("sample_rate", sig.SampleRate),
		slog.Float64("duration_seconds", sig.Duration()),
	)

	if target := cfg.Segmentation.SampleRate; target != sig.SampleRate {
		logger.Info("Resampling signal to analysis rate",
			slog.Int("from_hz", sig.SampleRate),
			slog.Int("to_hz", target),
		)
		sig = sig.Resampled(target)
	}

	adjusted := cfg.WithAnalysisResolution(sig.Len())
	if adjusted.Segmentation.NFFT != cfg.Segmentation.NFFT {
		logger.Info("Adjusted analysis resolution for short signal",
			slog.Int("n_fft", adjusted.Segmentation.NFFT),
			slog.Int("hop_size", adjusted.Segmentation.HopSize),
		)
	}
	cfg = adjusted

	detector, err := newDetector(cfg, logger)
	if err != nil {
		logger.Error("Failed to create detector", slog.String("error", err.Error()))
		os.Exit(1)
	}

	boundaries, err := detector.Detect(ctx, sig.Samples, sig.SampleRate)
	if err != nil {
		logger.Error("Boundary detection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	appMetrics.RecordBoundariesDetected(boundaries.Len())

	selector := segment.NewPromptSelector(os.Stdin, os.Stdout)
	choice, err := selector.Choose()
	if err != nil {
		logger.Error("Selection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	switch choice {
	case segment.ChoiceAbort:
		logger.Info("Aborted, no output written")
		return
	case segment.ChoiceExport:
		exporter := segment.NewExporter(cfg, logger, appMetrics)
		path, err := exporter.Export(boundaries, sig.SampleRate)
		if err != nil {
			logger.Error("Boundary export failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		appMetrics.RecordFileProcessed()
		logger.Info("Done", slog.String("export", path))
	case segment.ChoiceRender:
		rec, err := metadata.Extract(cfg.IO.Input)
		if err != nil {
			logger.Warn("Metadata extraction failed, continuing without tags",
				slog.String("error", err.Error()))
			rec = nil
		}
		renderer := segment.NewRenderer(cfg, logger, appMetrics)
		result, err := renderer.Render(sig, boundaries, rec)
		if err != nil {
			logger.Error("Render failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		appMetrics.RecordFileProcessed()
		logger.Info("Done",
			slog.Int("segments_written", len(result.Written)),
			slog.Int("segments_skipped", result.Skipped),
			slog.String("sidecar", result.SidecarPath),
		)
	}
}

// runTextMethod drives the text-driven segmentation path.
func runTextMethod(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) {
	segmenter := segment.NewTextSegmenter(cfg, logger, m)
	result, err := segmenter.Run(cfg.IO.Input, cfg.IO.InputText, cfg.IO.OutputDir)
	if err != nil {
		logger.Error("Text-driven segmentation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	m.RecordFileProcessed()
	logger.Info("Done", slog.Int("segments_written", len(result.Written)))
}

// newDetector builds the boundary source for the configured method.
func newDetector(cfg config.Config, logger *slog.Logger) (detect.Detector, error) {
	switch cfg.Segmentation.Method {
	case "beat":
		return detect.NewBeatDetector(cfg.Segmentation.NFFT, cfg.Segmentation.HopSize, logger)
	default:
		return detect.NewOnsetDetector(cfg.Segmentation.NFFT, cfg.Segmentation.HopSize,
			cfg.Segmentation.OnsetThreshold, logger)
	}
}

// serveMetrics exposes the Prometheus endpoint for the duration of the run.
func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	logger.Info("Metrics endpoint listening", slog.String("address", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Metrics endpoint failed", slog.String("error", err.Error()))
	}
}

// initLogger creates the structured logger from configuration.
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "stderr", "":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stderr\n", cfg.Output, err)
			output = os.Stderr
		} else {
			output = file
		}
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	return slog.New(handler)
}
