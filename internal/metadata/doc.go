// Package metadata extracts a descriptive record from a source audio file,
// stamps it onto rendered segment files as LIST/INFO tags, and serializes it
// once per render run as a JSON side-car document.
package metadata
