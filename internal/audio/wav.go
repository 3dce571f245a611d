// Package audio converts model waveforms into WAV artifacts.
package audio

import (
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV container settings. Artifacts are mono 16-bit PCM at the studio's
// fixed sample rate.
const (
	bitDepth    = 16
	numChannels = 1
	pcmFormat   = 1
	maxPCMValue = 32767
)

// ToFloat32 normalizes a model waveform to the fixed interleaved 32-bit
// floating point sample format, clamped to [-1, 1], regardless of the
// numeric representation the engine boundary delivered.
func ToFloat32(samples []float64) []float32 {
	normalized := make([]float32, len(samples))
	for i, sample := range samples {
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}

		normalized[i] = float32(sample)
	}

	return normalized
}

// WriteWAV serializes samples to path as a mono 16-bit PCM WAV file at the
// given sample rate. Samples are clamped to [-1, 1] before quantization.
func WriteWAV(path string, samples []float32, sampleRate int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file %s: %w", path, err)
	}

	intData := make([]int, len(samples))

	for i, sample := range samples {
		clamped := sample
		if clamped > 1.0 {
			clamped = 1.0
		} else if clamped < -1.0 {
			clamped = -1.0
		}

		intData[i] = int(clamped * maxPCMValue)
	}

	encoder := wav.NewEncoder(file, sampleRate, bitDepth, numChannels, pcmFormat)
	buffer := &gaudio.IntBuffer{
		Data: intData,
		Format: &gaudio.Format{
			NumChannels: numChannels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: bitDepth,
	}

	writeErr := encoder.Write(buffer)
	if writeErr != nil {
		_ = encoder.Close()
		_ = file.Close()

		return fmt.Errorf("failed to encode wav file %s: %w", path, writeErr)
	}

	closeErr := encoder.Close()
	if closeErr != nil {
		_ = file.Close()

		return fmt.Errorf("failed to finalize wav file %s: %w", path, closeErr)
	}

	fileCloseErr := file.Close()
	if fileCloseErr != nil {
		return fmt.Errorf("failed to close wav file %s: %w", path, fileCloseErr)
	}

	return nil
}
