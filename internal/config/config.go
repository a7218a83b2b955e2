package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wavecut/wavecut/internal/dsp"
)

// Config represents the complete invocation configuration. It is resolved
// once at startup and treated as read-only afterwards; adjustments produce
// new values (see WithAnalysisResolution).
type Config struct {
	IO            IOConfig            `yaml:"io"`
	Segmentation  SegmentationConfig  `yaml:"segmentation"`
	Fade          FadeConfig          `yaml:"fade"`
	Filter        FilterConfig        `yaml:"filter"`
	Normalization NormalizationConfig `yaml:"normalization"`
	Logging       LoggingConfig       `yaml:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

// IOConfig contains input and output locations.
type IOConfig struct {
	Input     string `yaml:"input"`      // source audio file
	InputText string `yaml:"input_text"` // boundary text file for the text method
	OutputDir string `yaml:"output_dir"` // segment output directory
}

// SegmentationConfig contains boundary detection and slicing parameters.
type SegmentationConfig struct {
	Method         string  `yaml:"method"`          // onset, beat or text
	MinLength      float64 `yaml:"min_length"`      // seconds
	SampleRate     int     `yaml:"sample_rate"`     // analysis rate; input at another rate is resampled
	NFFT           int     `yaml:"n_fft"`           // analysis transform size
	HopSize        int     `yaml:"hop_size"`        // analysis hop in samples
	OnsetThreshold float64 `yaml:"onset_threshold"` // onset picking threshold
	SaveText       bool    `yaml:"save_text"`       // also export boundaries when rendering
}

// FadeConfig contains segment edge fade parameters.
type FadeConfig struct {
	DurationMs int    `yaml:"duration_ms"`
	Curve      string `yaml:"curve"`
}

// FilterConfig contains the post-fade frequency filter parameters.
type FilterConfig struct {
	Frequency float64 `yaml:"frequency"` // Hz, 0 disables filtering
	Type      string  `yaml:"type"`      // high or low
}

// NormalizationConfig contains the final level adjustment parameters.
type NormalizationConfig struct {
	LevelDB float64 `yaml:"level_db"`
	Mode    string  `yaml:"mode"` // peak, rms or loudness
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MetricsConfig contains the optional Prometheus endpoint configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Default returns the configuration used when no file or flag overrides
// a value. The numbers mirror the historical CLI defaults.
func Default() Config {
	return Config{
		Segmentation: SegmentationConfig{
			Method:         "onset",
			MinLength:      0.1,
			SampleRate:     48000,
			NFFT:           2048,
			HopSize:        512,
			OnsetThreshold: 0.1,
		},
		Fade: FadeConfig{
			DurationMs: 20,
			Curve:      string(dsp.CurveExponential),
		},
		Filter: FilterConfig{
			Frequency: 40,
			Type:      string(dsp.FilterHigh),
		},
		Normalization: NormalizationConfig{
			LevelDB: -3,
			Mode:    string(dsp.NormPeak),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Listen: ":9094",
		},
	}
}

// Load reads a YAML configuration file over the defaults. The result is
// not validated here: command-line flags are merged on top afterwards,
// and the caller validates the final configuration once.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Resolved returns a copy with derived paths filled in: the output
// directory defaults to "<input stem>_segments" and the boundary text file
// to "<input stem>.txt", matching the historical behavior.
func (c Config) Resolved() Config {
	if c.IO.Input == "" {
		return c
	}
	stem := strings.TrimSuffix(c.IO.Input, filepath.Ext(c.IO.Input))
	if c.IO.OutputDir == "" {
		c.IO.OutputDir = stem + "_segments"
	}
	if c.IO.InputText == "" {
		c.IO.InputText = stem + ".txt"
	}
	return c
}

// WithAnalysisResolution returns a copy whose FFT and hop sizes are scaled
// down for short signals so at least minAnalysisFrames analysis frames fit.
// The receiver is never modified.
func (c Config) WithAnalysisResolution(numSamples int) Config {
	const minAnalysisFrames = 8
	const minNFFT = 256

	if numSamples <= 0 {
		return c
	}
	for c.Segmentation.HopSize > 1 && c.Segmentation.NFFT > minNFFT &&
		numSamples/c.Segmentation.HopSize < minAnalysisFrames {
		c.Segmentation.NFFT /= 2
		c.Segmentation.HopSize /= 2
	}
	return c
}

// Validate performs comprehensive validation of the configuration.
func (c *Config) Validate() error {
	if err := c.IO.Validate(); err != nil {
		return fmt.Errorf("io config: %w", err)
	}
	if err := c.Segmentation.Validate(); err != nil {
		return fmt.Errorf("segmentation config: %w", err)
	}
	if err := c.Fade.Validate(); err != nil {
		return fmt.Errorf("fade config: %w", err)
	}
	if err := c.Filter.Validate(); err != nil {
		return fmt.Errorf("filter config: %w", err)
	}
	if err := c.Normalization.Validate(); err != nil {
		return fmt.Errorf("normalization config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates input and output locations.
func (i *IOConfig) Validate() error {
	if i.Input == "" {
		return fmt.Errorf("input cannot be empty")
	}
	return nil
}

// Validate validates segmentation parameters.
func (s *SegmentationConfig) Validate() error {
	validMethods := map[string]bool{"onset": true, "beat": true, "text": true}
	if !validMethods[s.Method] {
		return fmt.Errorf("method must be one of [onset, beat, text], got '%s'", s.Method)
	}
	if s.MinLength < 0 {
		return fmt.Errorf("min_length cannot be negative, got %f", s.MinLength)
	}
	if s.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", s.SampleRate)
	}
	if s.NFFT < 32 {
		return fmt.Errorf("n_fft must be at least 32, got %d", s.NFFT)
	}
	if s.HopSize < 1 {
		return fmt.Errorf("hop_size must be positive, got %d", s.HopSize)
	}
	if s.HopSize > s.NFFT {
		return fmt.Errorf("hop_size (%d) cannot exceed n_fft (%d)", s.HopSize, s.NFFT)
	}
	if s.OnsetThreshold <= 0 || s.OnsetThreshold > 1 {
		return fmt.Errorf("onset_threshold must be in (0, 1], got %f", s.OnsetThreshold)
	}
	return nil
}

// Validate validates fade parameters.
func (f *FadeConfig) Validate() error {
	if f.DurationMs < 0 {
		return fmt.Errorf("duration_ms cannot be negative, got %d", f.DurationMs)
	}
	if _, err := dsp.ParseCurve(f.Curve); err != nil {
		return err
	}
	return nil
}

// Validate validates filter parameters.
func (f *FilterConfig) Validate() error {
	if f.Frequency < 0 {
		return fmt.Errorf("frequency cannot be negative, got %f", f.Frequency)
	}
	if _, err := dsp.ParseFilterType(f.Type); err != nil {
		return err
	}
	return nil
}

// Validate validates normalization parameters.
func (n *NormalizationConfig) Validate() error {
	if n.LevelDB > 0 {
		return fmt.Errorf("level_db must be at or below 0 dBFS, got %f", n.LevelDB)
	}
	if _, err := dsp.ParseNormMode(n.Mode); err != nil {
		return err
	}
	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}
	return nil
}

// MinLengthDuration returns the minimum segment length as a time.Duration.
func (s *SegmentationConfig) MinLengthDuration() time.Duration {
	return time.Duration(s.MinLength * float64(time.Second))
}

// FadeDuration returns the edge fade length as a time.Duration.
func (f *FadeConfig) FadeDuration() time.Duration {
	return time.Duration(f.DurationMs) * time.Millisecond
}
