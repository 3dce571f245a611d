package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// artifact is one discovered audio file, carrying the ordering key.
type artifact struct {
	name    string
	path    string
	modTime time.Time
}

// listAudioArtifacts enumerates the audio files under the artifact prefix
// in dir, most recent first. Discovery is deliberately looser than the
// strict naming convention: any mira_*.wav counts toward the rotation
// depth, so a loosely named file dropped in mid-run is still rotated out
// rather than lingering until the next startup sanitation. Modification
// time at full resolution is the primary ordering key; the base name
// breaks ties, so two artifacts written within the same timestamp
// granularity still order deterministically.
func listAudioArtifacts(dir string) ([]artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory %s: %w", dir, err)
	}

	artifacts := make([]artifact, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, baseNamePrefix) || !strings.HasSuffix(name, audioExt) {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			// The file vanished between listing and stat; skip it.
			continue
		}

		artifacts = append(artifacts, artifact{
			name:    name,
			path:    filepath.Join(dir, name),
			modTime: info.ModTime(),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		if !artifacts[i].modTime.Equal(artifacts[j].modTime) {
			return artifacts[i].modTime.After(artifacts[j].modTime)
		}

		return artifacts[i].name > artifacts[j].name
	})

	return artifacts, nil
}
