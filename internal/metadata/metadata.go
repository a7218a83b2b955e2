package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/wav"
)

// Record is the metadata extracted once per source file and shared
// read-only across all segments derived from it.
type Record struct {
	SourceFile string            `json:"source_file"`
	SizeBytes  int64             `json:"size_bytes"`
	Modified   time.Time         `json:"modified"`
	SampleRate int               `json:"sample_rate"`
	Channels   int               `json:"channels"`
	BitDepth   int               `json:"bit_depth"`
	Duration   float64           `json:"duration_seconds"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// Extract reads format information and any existing LIST/INFO tags from a
// WAV file and returns the combined record.
func Extract(path string) (*Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s is not a valid WAV file", path)
	}

	rec := &Record{
		SourceFile: filepath.Base(path),
		SizeBytes:  info.Size(),
		Modified:   info.ModTime().UTC(),
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}

	if d, err := dec.Duration(); err == nil {
		rec.Duration = d.Seconds()
	}

	dec.ReadMetadata()
	if dec.Metadata != nil {
		rec.Tags = infoTags(dec.Metadata)
	}
	return rec, nil
}

// WavTags converts the record into the LIST/INFO chunk stamped onto each
// rendered segment. Original tags are carried over; the source filename is
// always recorded. A nil record yields nil tags.
func (r *Record) WavTags() *wav.Metadata {
	if r == nil {
		return nil
	}
	m := &wav.Metadata{
		Source:   r.SourceFile,
		Software: "wavecut",
	}
	if r.Tags != nil {
		m.Artist = r.Tags["artist"]
		m.Title = r.Tags["title"]
		m.Product = r.Tags["product"]
		m.Genre = r.Tags["genre"]
		m.Comments = r.Tags["comments"]
		m.Copyright = r.Tags["copyright"]
		m.CreationDate = r.Tags["creation_date"]
	}
	return m
}

// ExportSidecar writes the record as a JSON document next to the rendered
// segments and returns its path.
func ExportSidecar(r *Record, basePath string) (string, error) {
	path := basePath + "_seg_metadata.json"
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize metadata record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write metadata side-car %s: %w", path, err)
	}
	return path, nil
}

func infoTags(m *wav.Metadata) map[string]string {
	tags := make(map[string]string)
	set := func(key, value string) {
		if value != "" {
			tags[key] = value
		}
	}
	set("artist", m.Artist)
	set("title", m.Title)
	set("product", m.Product)
	set("genre", m.Genre)
	set("comments", m.Comments)
	set("copyright", m.Copyright)
	set("creation_date", m.CreationDate)
	set("software", m.Software)
	set("source", m.Source)
	if len(tags) == 0 {
		return nil
	}
	return tags
}
