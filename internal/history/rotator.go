package history

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/book-expert/logger"
)

// Rotator enforces a bounded, most-recent-first set of artifact pairs in
// the output directory. Both of its operations are idempotent and
// best-effort: a delete that fails becomes a warning, never an error to
// the caller.
type Rotator struct {
	dir  string
	keep int
	log  *logger.Logger
}

// NewRotator creates a rotator that retains the keep most recent artifact
// pairs under dir.
func NewRotator(dir string, keep int, log *logger.Logger) *Rotator {
	return &Rotator{
		dir:  dir,
		keep: keep,
		log:  log,
	}
}

// SanitizeOnLaunch removes every file in the output directory whose name
// does not match the artifact naming convention. It returns the paths it
// removed and a warning per file it could not remove.
func (r *Rotator) SanitizeOnLaunch() (removed []string, warnings []error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read output directory %s: %w", r.dir, err)}
	}

	for _, entry := range entries {
		if entry.IsDir() || IsArtifactName(entry.Name()) {
			continue
		}

		path := filepath.Join(r.dir, entry.Name())

		removeErr := os.Remove(path)
		if removeErr != nil {
			warnings = append(warnings, fmt.Errorf("failed to remove stray file %s: %w", path, removeErr))

			continue
		}

		removed = append(removed, path)
	}

	return removed, warnings
}

// Rotate deletes every artifact pair beyond the keep most recent ones.
// The audio file and its transcript sidecar are deleted together; a
// missing sidecar is not a warning. Rotate is called once per successful
// generation, after the new pair is fully written, so the new pair is
// evaluated in the same pass and always survives as most recent.
func (r *Rotator) Rotate() (removed []string, warnings []error) {
	artifacts, err := listAudioArtifacts(r.dir)
	if err != nil {
		return nil, []error{err}
	}

	if len(artifacts) <= r.keep {
		return nil, nil
	}

	for _, stale := range artifacts[r.keep:] {
		audioErr := os.Remove(stale.path)
		if audioErr != nil {
			warnings = append(warnings, fmt.Errorf("failed to remove artifact %s: %w", stale.path, audioErr))
		} else {
			removed = append(removed, stale.path)
		}

		transcript := TranscriptPath(stale.path)

		transcriptErr := os.Remove(transcript)
		if transcriptErr == nil {
			removed = append(removed, transcript)
		} else if !os.IsNotExist(transcriptErr) {
			warnings = append(warnings, fmt.Errorf("failed to remove transcript %s: %w", transcript, transcriptErr))
		}
	}

	return removed, warnings
}

// LogWarnings writes a warning list through the rotator's logger. Hygiene
// failures are logged here and go no further.
func (r *Rotator) LogWarnings(operation string, warnings []error) {
	for _, warning := range warnings {
		r.log.Warn("%s: %v", operation, warning)
	}
}
