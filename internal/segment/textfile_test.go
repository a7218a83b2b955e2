package segment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavecut/wavecut/internal/audio"
)

// writeTestWav renders a mono tone of n samples to disk and returns its path.
func writeTestWav(t *testing.T, dir string, n, sampleRate int) string {
	t.Helper()
	path := filepath.Join(dir, "source.wav")
	sig := testSignal(n, sampleRate)
	require.NoError(t, audio.WritePCM24(path, sig.Samples, sampleRate, nil))
	return path
}

func writeBoundaryText(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "cuts.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTextRunSlicesAtMillisecondPositions(t *testing.T) {
	dir := t.TempDir()
	audioPath := writeTestWav(t, dir, 72000, 48000)
	txtPath := writeBoundaryText(t, dir, "0.0\t1.5\n")
	outDir := filepath.Join(dir, "out")

	seg := NewTextSegmenter(testRenderConfig(outDir), testLogger(), testMetrics())
	result, err := seg.Run(audioPath, txtPath, outDir)
	require.NoError(t, err)

	assert.Equal(t, 48000, result.SampleRate)
	require.Len(t, result.Written, 1)
	assert.Equal(t, filepath.Join(outDir, "segment_0.wav"), result.Written[0])
	require.Len(t, result.Ranges, 1)
	assert.Equal(t, [2]int{0, 72000}, result.Ranges[0])

	_, err = os.Stat(result.Written[0])
	assert.NoError(t, err)
}

func TestTextRunNamesSegmentsFromZero(t *testing.T) {
	dir := t.TempDir()
	audioPath := writeTestWav(t, dir, 48000, 48000)
	txtPath := writeBoundaryText(t, dir, "0.0\t0.5\n0.5\t1.0\n")
	outDir := filepath.Join(dir, "out")

	seg := NewTextSegmenter(testRenderConfig(outDir), testLogger(), testMetrics())
	result, err := seg.Run(audioPath, txtPath, outDir)
	require.NoError(t, err)

	require.Len(t, result.Written, 2)
	assert.Equal(t, filepath.Join(outDir, "segment_0.wav"), result.Written[0])
	assert.Equal(t, filepath.Join(outDir, "segment_1.wav"), result.Written[1])
	assert.Equal(t, [2]int{0, 24000}, result.Ranges[0])
	assert.Equal(t, [2]int{24000, 48000}, result.Ranges[1])
}

func TestTextRunAppliesFadeOnly(t *testing.T) {
	dir := t.TempDir()
	audioPath := writeTestWav(t, dir, 48000, 48000)
	txtPath := writeBoundaryText(t, dir, "0.0\t1.0\n")
	outDir := filepath.Join(dir, "out")

	var calls []string
	seg := NewTextSegmenter(testRenderConfig(outDir), testLogger(), testMetrics())
	seg.Conditioners = recordingConditioners(&calls)

	_, err := seg.Run(audioPath, txtPath, outDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"fade"}, calls)
}

func TestTextRunMalformedLineFailsBeforeWriting(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"non-numeric start", "0.0\t1.0\nbogus\t2.0\n"},
		{"non-numeric end", "0.0\tlater\n"},
		{"single token", "1.0\n"},
		{"negative start", "-0.5\t1.0\n"},
		{"start not before end", "1.0\t1.0\n"},
		{"empty file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			audioPath := writeTestWav(t, dir, 48000, 48000)
			txtPath := writeBoundaryText(t, dir, tt.content)
			outDir := filepath.Join(dir, "out")

			seg := NewTextSegmenter(testRenderConfig(outDir), testLogger(), testMetrics())
			_, err := seg.Run(audioPath, txtPath, outDir)
			require.Error(t, err)

			// Parsing fails the run before the output directory appears.
			_, statErr := os.Stat(outDir)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestTextRunStartBeyondSignalFails(t *testing.T) {
	dir := t.TempDir()
	audioPath := writeTestWav(t, dir, 72000, 48000) // 1.5s
	txtPath := writeBoundaryText(t, dir, "2.0\t3.0\n")
	outDir := filepath.Join(dir, "out")

	seg := NewTextSegmenter(testRenderConfig(outDir), testLogger(), testMetrics())
	_, err := seg.Run(audioPath, txtPath, outDir)
	require.Error(t, err)

	entries, readErr := os.ReadDir(outDir)
	if readErr == nil {
		assert.Empty(t, entries)
	}
}

func TestTextRunClampsEndToSignal(t *testing.T) {
	dir := t.TempDir()
	audioPath := writeTestWav(t, dir, 72000, 48000) // 1.5s
	txtPath := writeBoundaryText(t, dir, "0.0\t2.0\n")
	outDir := filepath.Join(dir, "out")

	seg := NewTextSegmenter(testRenderConfig(outDir), testLogger(), testMetrics())
	result, err := seg.Run(audioPath, txtPath, outDir)
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 72000}, result.Ranges[0])
}

func TestTextRunIgnoresExtraTokens(t *testing.T) {
	dir := t.TempDir()
	audioPath := writeTestWav(t, dir, 48000, 48000)
	txtPath := writeBoundaryText(t, dir, "0.0\t0.5\tchorus take 2\n")
	outDir := filepath.Join(dir, "out")

	seg := NewTextSegmenter(testRenderConfig(outDir), testLogger(), testMetrics())
	result, err := seg.Run(audioPath, txtPath, outDir)
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 24000}, result.Ranges[0])
}

func TestTextRunMissingInputsFail(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	seg := NewTextSegmenter(testRenderConfig(outDir), testLogger(), testMetrics())

	_, err := seg.Run(filepath.Join(dir, "missing.wav"), filepath.Join(dir, "missing.txt"), outDir)
	assert.Error(t, err)

	txtPath := writeBoundaryText(t, dir, "0.0\t1.0\n")
	_, err = seg.Run(filepath.Join(dir, "missing.wav"), txtPath, outDir)
	assert.Error(t, err)
}

func TestExportedBoundariesRoundTripWithinOneSample(t *testing.T) {
	dir := t.TempDir()
	audioPath := writeTestWav(t, dir, 48000, 48000)
	outDir := filepath.Join(dir, "out")
	cfg := testRenderConfig(outDir)

	cuts := []int{0, 24000, 48000}
	exporter := NewExporter(cfg, testLogger(), testMetrics())
	txtPath, err := exporter.Export(FromSamples(cuts), 48000)
	require.NoError(t, err)

	seg := NewTextSegmenter(cfg, testLogger(), testMetrics())
	result, err := seg.Run(audioPath, txtPath, outDir)
	require.NoError(t, err)

	require.Len(t, result.Ranges, len(cuts)-1)
	for i, r := range result.Ranges {
		assert.InDelta(t, cuts[i], r[0], 1, "segment %d start", i)
		assert.InDelta(t, cuts[i+1], r[1], 1, "segment %d end", i)
	}
}

func TestParseBoundaryLine(t *testing.T) {
	sp, err := parseBoundaryLine("1.25 2.5")
	require.NoError(t, err)
	assert.Equal(t, 1.25, sp.start)
	assert.Equal(t, 2.5, sp.end)

	_, err = parseBoundaryLine("")
	assert.Error(t, err)
}
