package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTone(n, sampleRate int, amplitude float64) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate))
	}
	return samples
}

func TestWritePCM24ReadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	samples := testTone(4800, 48000, 0.5)

	require.NoError(t, WritePCM24(path, samples, 48000, nil))

	sig, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 48000, sig.SampleRate)
	assert.Equal(t, 24, sig.SourceBitDepth)
	assert.Equal(t, 1, sig.SourceChannels)
	require.Equal(t, len(samples), sig.Len())
	assert.InDelta(t, 0.1, sig.Duration(), 1e-9)

	for i := range samples {
		require.InDelta(t, samples[i], sig.Samples[i], 1e-6, "sample %d", i)
	}
}

func TestWritePCM24ClipsOutOfRangeSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot.wav")

	require.NoError(t, WritePCM24(path, []float64{1.5, -2, 0.25}, 8000, nil))

	sig, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 3, sig.Len())
	assert.InDelta(t, 1, sig.Samples[0], 1e-6)
	assert.InDelta(t, -1, sig.Samples[1], 1e-6)
	assert.InDelta(t, 0.25, sig.Samples[2], 1e-6)
}

func TestWritePCM24StampsMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagged.wav")
	tags := &wav.Metadata{Artist: "someone", Software: "wavecut"}

	require.NoError(t, WritePCM24(path, testTone(800, 8000, 0.5), 8000, tags))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	dec.ReadMetadata()
	require.NotNil(t, dec.Metadata)
	assert.Equal(t, "someone", dec.Metadata.Artist)
	assert.Equal(t, "wavecut", dec.Metadata.Software)
}

func TestWriteFloat32Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "float.wav")
	samples := testTone(1000, 8000, 0.5)

	require.NoError(t, WriteFloat32(path, samples, 8000))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(8000), dec.SampleRate)
	assert.Equal(t, uint16(32), dec.BitDepth)
	assert.Equal(t, uint16(1), dec.NumChans)
	assert.Equal(t, uint16(3), dec.WavAudioFormat)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, info.Size(), int64(44+4*len(samples)))
}

func TestWriteRejectsEmptyOrInvalidInput(t *testing.T) {
	dir := t.TempDir()

	err := WritePCM24(filepath.Join(dir, "a.wav"), nil, 48000, nil)
	assert.Error(t, err)
	err = WritePCM24(filepath.Join(dir, "b.wav"), []float64{0.1}, 0, nil)
	assert.Error(t, err)
	err = WriteFloat32(filepath.Join(dir, "c.wav"), nil, 48000)
	assert.Error(t, err)
	err = WriteFloat32(filepath.Join(dir, "d.wav"), []float64{0.1}, -1)
	assert.Error(t, err)
}

func TestReadFileMixesStereoToMono(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")

	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, 8000, 16, 2, 1)
	// Left at +0.5, right at -0.5: the mono mix should cancel to zero.
	data := make([]int, 200)
	for i := 0; i < len(data); i += 2 {
		data[i] = 16384
		data[i+1] = -16384
	}
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 2, SampleRate: 8000},
		Data:           data,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	sig, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, sig.SourceChannels)
	require.Equal(t, 100, sig.Len())
	for i, v := range sig.Samples {
		require.InDelta(t, 0, v, 1e-6, "sample %d", i)
	}
}

func TestSignalResampled(t *testing.T) {
	sig := &Signal{
		Samples:        testTone(48000, 48000, 0.5),
		SampleRate:     48000,
		SourceBitDepth: 24,
		SourceChannels: 1,
	}

	down := sig.Resampled(24000)
	assert.Equal(t, 24000, down.SampleRate)
	assert.Equal(t, 24000, down.Len())
	assert.Equal(t, 24, down.SourceBitDepth)
	assert.InDelta(t, sig.Duration(), down.Duration(), 1e-3)

	// Matching rate is a no-op.
	same := sig.Resampled(48000)
	assert.Same(t, sig, same)
	assert.Same(t, sig, sig.Resampled(0))
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing.wav"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("not a wav file"), 0o644))
	_, err = ReadFile(garbage)
	assert.Error(t, err)
}
