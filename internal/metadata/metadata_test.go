package metadata

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavecut/wavecut/internal/audio"
)

func writeTaggedWav(t *testing.T, dir string, tags *wav.Metadata) string {
	t.Helper()
	path := filepath.Join(dir, "take.wav")
	samples := make([]float64, 8000)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/8000)
	}
	require.NoError(t, audio.WritePCM24(path, samples, 8000, tags))
	return path
}

func TestExtractReadsFormatAndTags(t *testing.T) {
	dir := t.TempDir()
	path := writeTaggedWav(t, dir, &wav.Metadata{
		Artist: "someone",
		Title:  "first take",
	})

	rec, err := Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "take.wav", rec.SourceFile)
	assert.Equal(t, 8000, rec.SampleRate)
	assert.Equal(t, 1, rec.Channels)
	assert.Equal(t, 24, rec.BitDepth)
	assert.Greater(t, rec.SizeBytes, int64(0))
	assert.False(t, rec.Modified.IsZero())
	assert.InDelta(t, 1.0, rec.Duration, 0.05)
	assert.Equal(t, "someone", rec.Tags["artist"])
	assert.Equal(t, "first take", rec.Tags["title"])
}

func TestExtractWithoutTags(t *testing.T) {
	path := writeTaggedWav(t, t.TempDir(), nil)

	rec, err := Extract(path)
	require.NoError(t, err)
	assert.Empty(t, rec.Tags)
}

func TestExtractErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Extract(filepath.Join(dir, "missing.wav"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not audio"), 0o644))
	_, err = Extract(garbage)
	assert.Error(t, err)
}

func TestWavTagsCarriesSourceAndOriginals(t *testing.T) {
	rec := &Record{
		SourceFile: "take.wav",
		Tags: map[string]string{
			"artist": "someone",
			"title":  "first take",
		},
	}

	tags := rec.WavTags()
	require.NotNil(t, tags)
	assert.Equal(t, "take.wav", tags.Source)
	assert.Equal(t, "wavecut", tags.Software)
	assert.Equal(t, "someone", tags.Artist)
	assert.Equal(t, "first take", tags.Title)
}

func TestWavTagsNilRecord(t *testing.T) {
	var rec *Record
	assert.Nil(t, rec.WavTags())
}

func TestWavTagsWithoutOriginals(t *testing.T) {
	tags := (&Record{SourceFile: "take.wav"}).WavTags()
	require.NotNil(t, tags)
	assert.Equal(t, "take.wav", tags.Source)
	assert.Empty(t, tags.Artist)
}

func TestExportSidecar(t *testing.T) {
	dir := t.TempDir()
	rec := &Record{
		SourceFile: "take.wav",
		SampleRate: 48000,
		Channels:   2,
		BitDepth:   24,
		Duration:   12.5,
		Tags:       map[string]string{"artist": "someone"},
	}

	basePath := filepath.Join(dir, "take")
	path, err := ExportSidecar(rec, basePath)
	require.NoError(t, err)
	assert.Equal(t, basePath+"_seg_metadata.json", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Record
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *rec, decoded)
}

func TestExportSidecarBadPath(t *testing.T) {
	rec := &Record{SourceFile: "take.wav"}
	_, err := ExportSidecar(rec, filepath.Join(t.TempDir(), "nope", "deeper", "take"))
	assert.Error(t, err)
}
