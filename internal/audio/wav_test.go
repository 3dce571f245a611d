// Package audio_test tests waveform normalization and WAV serialization.
package audio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/mira-studio/internal/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 48000

func TestToFloat32(t *testing.T) {
	t.Parallel()

	samples := []float64{0.0, 0.5, -0.5, 1.0, -1.0}
	normalized := audio.ToFloat32(samples)

	require.Len(t, normalized, len(samples))

	for i, sample := range samples {
		assert.InDelta(t, sample, float64(normalized[i]), 0.000001)
	}
}

func TestToFloat32_ClampsOutOfRangeSamples(t *testing.T) {
	t.Parallel()

	normalized := audio.ToFloat32([]float64{2.5, -7.0, 0.5})

	require.Len(t, normalized, 3)
	assert.InDelta(t, 1.0, float64(normalized[0]), 0.000001)
	assert.InDelta(t, -1.0, float64(normalized[1]), 0.000001)
	assert.InDelta(t, 0.5, float64(normalized[2]), 0.000001)
}

func TestToFloat32_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, audio.ToFloat32(nil))
}

func TestWriteWAV_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.wav")
	samples := []float32{0.0, 0.25, -0.25, 0.9, -0.9}

	err := audio.WriteWAV(path, samples, testSampleRate)
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, file.Close())
	}()

	decoder := wav.NewDecoder(file)
	require.True(t, decoder.IsValidFile())

	buffer, err := decoder.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, int(testSampleRate), buffer.Format.SampleRate)
	assert.Equal(t, 1, buffer.Format.NumChannels)
	require.Len(t, buffer.Data, len(samples))

	for i, sample := range samples {
		decoded := float32(buffer.Data[i]) / 32767.0
		assert.InDelta(t, sample, decoded, 0.001)
	}
}

func TestWriteWAV_ClampsOutOfRangeSamples(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clamped.wav")

	err := audio.WriteWAV(path, []float32{2.0, -3.0}, testSampleRate)
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, file.Close())
	}()

	buffer, err := wav.NewDecoder(file).FullPCMBuffer()
	require.NoError(t, err)
	require.Len(t, buffer.Data, 2)

	assert.Equal(t, 32767, buffer.Data[0])
	assert.Equal(t, -32767, buffer.Data[1])
}
