// Package reference persists uploaded reference voice clips.
//
// A clip is identified by its filename; re-uploading under the same name
// overwrites the previous clip. The store never validates audio content:
// a corrupt clip only surfaces when the model tries to encode it, and is
// reported there as a synthesis error.
package reference

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/book-expert/logger"
)

// File and directory permissions.
const (
	filePermissions = 0o600
	dirPermissions  = 0o750
)

// Clip filename handling.
const (
	extWAV                 = ".wav"
	extMP3                 = ".mp3"
	extOGG                 = ".ogg"
	invalidCharReplacement = "_"
)

// ErrEmptyFilename is returned when a clip is saved without a name.
var ErrEmptyFilename = errors.New("reference filename cannot be empty")

// Clip describes one stored reference voice clip.
type Clip struct {
	Name string
	Path string
	Size int64
}

// Store writes and enumerates reference clips in a single flat directory.
type Store struct {
	dir string
	log *logger.Logger
}

// NewStore creates a reference store rooted at dir.
func NewStore(dir string, log *logger.Logger) *Store {
	return &Store{
		dir: dir,
		log: log,
	}
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data verbatim to <dir>/<filename>, creating the directory if
// absent and overwriting any existing clip of the same name. It returns the
// full path written.
func (s *Store) Save(filename string, data []byte) (string, error) {
	name := sanitizeFilename(strings.TrimSpace(filename))
	if name == "" {
		return "", ErrEmptyFilename
	}

	err := os.MkdirAll(s.dir, dirPermissions)
	if err != nil {
		return "", fmt.Errorf("failed to create reference directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, name)

	err = os.WriteFile(path, data, filePermissions)
	if err != nil {
		return "", fmt.Errorf("failed to write reference clip %s: %w", path, err)
	}

	s.log.Info("Saved reference clip: %s (%d bytes)", path, len(data))

	return path, nil
}

// List enumerates the stored clips that carry a supported audio extension,
// in directory order. The listing is read fresh on every call.
func (s *Store) List() ([]Clip, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference directory %s: %w", s.dir, err)
	}

	clips := make([]Clip, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !isReferenceAudio(entry.Name()) {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			continue
		}

		clips = append(clips, Clip{
			Name: entry.Name(),
			Path: filepath.Join(s.dir, entry.Name()),
			Size: info.Size(),
		})
	}

	return clips, nil
}

// Path returns the full path a clip of the given name would live at.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, sanitizeFilename(name))
}

// isReferenceAudio checks if a filename has a supported clip extension.
func isReferenceAudio(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case extWAV, extMP3, extOGG:
		return true
	default:
		return false
	}
}

// sanitizeFilename replaces characters that are invalid in most filesystems
// and strips any path components from user-controlled names.
func sanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}

	replacer := strings.NewReplacer(
		"<", invalidCharReplacement,
		">", invalidCharReplacement,
		":", invalidCharReplacement,
		"\"", invalidCharReplacement,
		"/", invalidCharReplacement,
		"\\", invalidCharReplacement,
		"|", invalidCharReplacement,
		"?", invalidCharReplacement,
		"*", invalidCharReplacement,
	)

	return replacer.Replace(base)
}
