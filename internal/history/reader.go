package history

import (
	"os"
	"strings"

	"github.com/book-expert/logger"
)

// Preview text handling.
const (
	previewPlaceholder = "No text found"
	previewEllipsis    = "..."
)

// Entry is a read-only projection of one artifact pair for display.
type Entry struct {
	Name       string
	AudioPath  string
	Preview    string
	Transcript string
}

// Reader lists the current artifact set back out for display. It never
// returns an error: an unreadable directory yields an empty listing, and a
// missing transcript yields a placeholder preview.
type Reader struct {
	dir        string
	limit      int
	previewLen int
	log        *logger.Logger
}

// NewReader creates a reader over dir that lists at most limit entries
// with previews truncated to previewLen characters.
func NewReader(dir string, limit, previewLen int, log *logger.Logger) *Reader {
	return &Reader{
		dir:        dir,
		limit:      limit,
		previewLen: previewLen,
		log:        log,
	}
}

// List returns the current history, most recent first. The rotator keeps
// the directory at the history depth already, but the reader caps the
// listing independently rather than assume that.
func (r *Reader) List() []Entry {
	artifacts, err := listAudioArtifacts(r.dir)
	if err != nil {
		r.log.Warn("history listing: %v", err)

		return []Entry{}
	}

	if len(artifacts) > r.limit {
		artifacts = artifacts[:r.limit]
	}

	entries := make([]Entry, 0, len(artifacts))

	for _, art := range artifacts {
		transcript := r.readTranscript(art.path)

		entries = append(entries, Entry{
			Name:       art.name,
			AudioPath:  art.path,
			Preview:    preview(transcript, r.previewLen),
			Transcript: transcript,
		})
	}

	return entries
}

// readTranscript returns the trimmed sidecar text, or empty when the
// sidecar is absent or unreadable.
func (r *Reader) readTranscript(audioPath string) string {
	data, err := os.ReadFile(TranscriptPath(audioPath))
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

// preview truncates a transcript for display. An empty transcript yields
// the placeholder; anything longer than maxLen characters is cut there and
// marked with an ellipsis.
func preview(transcript string, maxLen int) string {
	if transcript == "" {
		return previewPlaceholder
	}

	runes := []rune(transcript)
	if len(runes) <= maxLen {
		return transcript
	}

	return string(runes[:maxLen]) + previewEllipsis
}
