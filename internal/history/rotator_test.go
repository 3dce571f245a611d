package history_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/mira-studio/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHistoryDepth = 5

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	testLogger, err := logger.New(t.TempDir(), "history-test.log")
	require.NoError(t, err)

	return testLogger
}

// writeArtifactPair writes a wav/txt pair and pushes its modification time
// back by age so rotation ordering is deterministic.
func writeArtifactPair(t *testing.T, dir, base, transcript string, age time.Duration) {
	t.Helper()

	audioPath := filepath.Join(dir, base+".wav")
	require.NoError(t, os.WriteFile(audioPath, []byte("RIFF-fake"), 0o600))

	if transcript != "" {
		textPath := filepath.Join(dir, base+".txt")
		require.NoError(t, os.WriteFile(textPath, []byte(transcript), 0o600))
	}

	stamp := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(audioPath, stamp, stamp))
}

func listBaseNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names
}

func TestRotator_SanitizeOnLaunch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeArtifactPair(t, dir, "mira_20260826-120000", "keep me", 0)

	for _, stray := range []string{"leftover.bin", "mira_notes.txt", "output.wav"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, stray), []byte("stray"), 0o600))
	}

	rotator := history.NewRotator(dir, testHistoryDepth, newTestLogger(t))

	removed, warnings := rotator.SanitizeOnLaunch()
	assert.Empty(t, warnings)
	assert.Len(t, removed, 3)

	assert.ElementsMatch(
		t,
		[]string{"mira_20260826-120000.wav", "mira_20260826-120000.txt"},
		listBaseNames(t, dir),
	)
}

func TestRotator_SanitizeOnLaunch_Idempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeArtifactPair(t, dir, "mira_20260826-120000", "keep me", 0)

	rotator := history.NewRotator(dir, testHistoryDepth, newTestLogger(t))

	removed, warnings := rotator.SanitizeOnLaunch()
	assert.Empty(t, removed)
	assert.Empty(t, warnings)

	removed, warnings = rotator.SanitizeOnLaunch()
	assert.Empty(t, removed)
	assert.Empty(t, warnings)
}

func TestRotator_Rotate_KeepsMostRecent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// Eight pairs, oldest first; only the five youngest must survive.
	for i := range 8 {
		base := fmt.Sprintf("mira_20260826-1200%02d", i)
		writeArtifactPair(t, dir, base, "text", time.Duration(8-i)*time.Minute)
	}

	rotator := history.NewRotator(dir, testHistoryDepth, newTestLogger(t))

	removed, warnings := rotator.Rotate()
	assert.Empty(t, warnings)
	assert.Len(t, removed, 6, "three pairs of wav+txt removed")

	survivors := listBaseNames(t, dir)
	assert.Len(t, survivors, 10)

	for i := 3; i < 8; i++ {
		assert.Contains(t, survivors, fmt.Sprintf("mira_20260826-1200%02d.wav", i))
	}
}

func TestRotator_Rotate_UnderLimitIsNoOp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for i := range 3 {
		base := fmt.Sprintf("mira_20260826-1200%02d", i)
		writeArtifactPair(t, dir, base, "text", time.Duration(i)*time.Minute)
	}

	rotator := history.NewRotator(dir, testHistoryDepth, newTestLogger(t))

	removed, warnings := rotator.Rotate()
	assert.Empty(t, removed)
	assert.Empty(t, warnings)
	assert.Len(t, listBaseNames(t, dir), 6)
}

func TestRotator_Rotate_ToleratesMissingTranscript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeArtifactPair(t, dir, "mira_20260826-120000", "", 10*time.Minute)

	for i := 1; i <= testHistoryDepth; i++ {
		base := fmt.Sprintf("mira_20260826-1200%02d", i)
		writeArtifactPair(t, dir, base, "text", time.Duration(testHistoryDepth-i)*time.Minute)
	}

	rotator := history.NewRotator(dir, testHistoryDepth, newTestLogger(t))

	removed, warnings := rotator.Rotate()
	assert.Empty(t, warnings, "a missing sidecar is not a warning")
	assert.Equal(t, []string{filepath.Join(dir, "mira_20260826-120000.wav")}, removed)
}

// TestRotator_Rotate_WarnsPerFailedDelete blocks one delete by placing a
// non-empty directory at the stale pair's transcript path: rotation must
// report exactly one warning for it and still remove everything it can.
func TestRotator_Rotate_WarnsPerFailedDelete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	staleAudio := filepath.Join(dir, "mira_20260826-110000.wav")
	require.NoError(t, os.WriteFile(staleAudio, []byte("RIFF-fake"), 0o600))

	blockedTranscript := filepath.Join(dir, "mira_20260826-110000.txt")
	require.NoError(t, os.MkdirAll(filepath.Join(blockedTranscript, "inner"), 0o750))

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(staleAudio, old, old))

	for i := 1; i <= testHistoryDepth; i++ {
		base := fmt.Sprintf("mira_20260826-1200%02d", i)
		writeArtifactPair(t, dir, base, "text", time.Duration(testHistoryDepth-i)*time.Minute)
	}

	rotator := history.NewRotator(dir, testHistoryDepth, newTestLogger(t))

	removed, warnings := rotator.Rotate()
	require.Len(t, warnings, 1)
	assert.ErrorContains(t, warnings[0], "mira_20260826-110000.txt")
	assert.Equal(t, []string{staleAudio}, removed, "the audio file is still removed")

	survivors := listBaseNames(t, dir)
	assert.NotContains(t, survivors, "mira_20260826-110000.wav")

	for i := 1; i <= testHistoryDepth; i++ {
		assert.Contains(t, survivors, fmt.Sprintf("mira_20260826-1200%02d.wav", i))
	}
}

// TestRotator_Rotate_IncludesLooselyNamedAudio: any mira_*.wav counts
// toward the rotation depth, even when it does not carry the strict
// timestamp shape, so a file dropped in mid-run is rotated out instead of
// lingering until the next startup sanitation.
func TestRotator_Rotate_IncludesLooselyNamedAudio(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	loose := filepath.Join(dir, "mira_manual-copy.wav")
	require.NoError(t, os.WriteFile(loose, []byte("RIFF-fake"), 0o600))

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(loose, old, old))

	for i := 1; i <= testHistoryDepth; i++ {
		base := fmt.Sprintf("mira_20260826-1200%02d", i)
		writeArtifactPair(t, dir, base, "text", time.Duration(testHistoryDepth-i)*time.Minute)
	}

	rotator := history.NewRotator(dir, testHistoryDepth, newTestLogger(t))

	removed, warnings := rotator.Rotate()
	assert.Empty(t, warnings)
	assert.Equal(t, []string{loose}, removed)
}

// TestRotator_RepeatedGenerations mimics N generations each followed by a
// rotate call: the directory must always hold min(N, depth) pairs and the
// survivors must be the most recently created ones.
func TestRotator_RepeatedGenerations(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rotator := history.NewRotator(dir, testHistoryDepth, newTestLogger(t))

	const totalGenerations = 9

	for i := range totalGenerations {
		base := fmt.Sprintf("mira_20260826-1300%02d", i)
		writeArtifactPair(t, dir, base, "generation", time.Duration(totalGenerations-i)*time.Second)

		_, warnings := rotator.Rotate()
		require.Empty(t, warnings)

		expected := i + 1
		if expected > testHistoryDepth {
			expected = testHistoryDepth
		}

		assert.Len(t, listBaseNames(t, dir), expected*2)
	}
}
