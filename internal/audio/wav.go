package audio

import (
	"fmt"
	"math"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/wavecut/wavecut/internal/dsp"
)

// Signal is an immutable audio signal. Samples are mono float64 values in
// [-1, 1] at SampleRate. Multi-channel sources are mixed down to mono at
// load time.
type Signal struct {
	Samples        []float64
	SampleRate     int
	SourceBitDepth int
	SourceChannels int
}

// Len returns the number of samples in the signal.
func (s *Signal) Len() int {
	return len(s.Samples)
}

// Duration returns the signal duration in seconds.
func (s *Signal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Resampled returns the signal converted to the given sample rate by
// linear interpolation. The receiver is returned unchanged when the rate
// already matches.
func (s *Signal) Resampled(rate int) *Signal {
	if rate <= 0 || rate == s.SampleRate {
		return s
	}
	return &Signal{
		Samples:        dsp.Resample(s.Samples, s.SampleRate, rate),
		SampleRate:     rate,
		SourceBitDepth: s.SourceBitDepth,
		SourceChannels: s.SourceChannels,
	}
}

// ReadFile loads a WAV file into a Signal at its native sample rate.
func ReadFile(path string) (*Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data from %s: %w", path, err)
	}
	if buf.Format == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("no audio data found in %s", path)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bit depth %d in %s", bitDepth, path)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count %d in %s", channels, path)
	}

	scale := float64(int64(1) << uint(bitDepth-1))
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch]) / scale
		}
		samples[i] = sum / float64(channels)
	}

	return &Signal{
		Samples:        samples,
		SampleRate:     buf.Format.SampleRate,
		SourceBitDepth: bitDepth,
		SourceChannels: channels,
	}, nil
}

// WritePCM24 writes mono samples as a 24-bit fixed-point WAV file. Samples
// outside [-1, 1] are clipped. When tags is non-nil the record is stamped
// into the file's LIST/INFO chunk.
func WritePCM24(path string, samples []float64, sampleRate int, tags *wav.Metadata) error {
	if len(samples) == 0 {
		return fmt.Errorf("cannot write empty audio segment to %s", path)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	const maxInt24 = 1<<23 - 1

	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(math.Round(clip(v) * maxInt24))
	}

	enc := wav.NewEncoder(f, sampleRate, 24, 1, 1)
	enc.Metadata = tags
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 24,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio data to %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return f.Close()
}

// WriteFloat32 writes mono samples as a 32-bit IEEE float WAV file.
func WriteFloat32(path string, samples []float64, sampleRate int) error {
	if len(samples) == 0 {
		return fmt.Errorf("cannot write empty audio segment to %s", path)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 32, 1, 3)
	for i, v := range samples {
		if err := enc.WriteFrame(float32(v)); err != nil {
			return fmt.Errorf("failed to write sample %d to %s: %w", i, path, err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return f.Close()
}

func clip(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
