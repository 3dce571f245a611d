// Package history manages the bounded, self-healing rotation of generation
// artifacts and reads them back for display.
//
// An artifact is a pair of files sharing a base name: the synthesized
// waveform and a sidecar transcript. The pair is created, rotated, and
// listed as a unit.
package history

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// Artifact naming.
const (
	baseNamePrefix  = "mira_"
	timestampLayout = "20060102-150405"
	audioExt        = ".wav"
	transcriptExt   = ".txt"
)

// artifactNamePattern is the fixed naming convention for the output
// directory; anything else present there is removed at startup.
var artifactNamePattern = regexp.MustCompile(`^mira_\d{8}-\d{6}\.(wav|txt)$`)

// IsArtifactName reports whether a filename conforms to the artifact
// naming convention.
func IsArtifactName(name string) bool {
	return artifactNamePattern.MatchString(name)
}

// TranscriptPath derives the sidecar transcript path from an audio path.
func TranscriptPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, audioExt) + transcriptExt
}

// Namer issues artifact base names from the wall clock at second
// granularity. Issued names are strictly increasing within a process: if
// two generations complete within the same second, the second one is named
// one second ahead, so base names never collide while staying
// human-readable.
type Namer struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewNamer creates a namer backed by the system clock.
func NewNamer() *Namer {
	return &Namer{
		mu:   sync.Mutex{},
		last: time.Time{},
		now:  time.Now,
	}
}

// Next returns the next artifact base name, without extension.
func (n *Namer) Next() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	stamp := n.now().Truncate(time.Second)
	if !stamp.After(n.last) {
		stamp = n.last.Add(time.Second)
	}

	n.last = stamp

	return baseNamePrefix + stamp.Format(timestampLayout)
}
