// Package studio implements the synthesis orchestration for generation
// requests: encode the reference, split the text, batch-generate, persist
// the artifact pair, rotate, and refresh the history.
package studio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/book-expert/logger"
	"github.com/book-expert/mira-studio/internal/audio"
	"github.com/book-expert/mira-studio/internal/core"
	"github.com/book-expert/mira-studio/internal/history"
	"github.com/book-expert/mira-studio/internal/text"
	"github.com/google/uuid"
)

const transcriptPermissions = 0o600

// Validation errors. These carry no side effects: a request that fails
// validation writes nothing and calls nothing.
var (
	ErrTextEmpty      = errors.New("input text cannot be empty")
	ErrReferenceEmpty = errors.New("a reference clip must be selected")
	ErrNoSentences    = errors.New("input text contains no sentences")
)

// Request is one user-initiated generation.
type Request struct {
	Text          string
	ReferencePath string
}

// Result reports a completed generation together with the refreshed
// history, so the caller renders from a single read.
type Result struct {
	RequestID string
	BaseName  string
	AudioPath string
	TextPath  string
	Sentences int
	History   []history.Entry
}

// Studio is the long-lived orchestrator. It owns no global state: the
// engine, rotator, and reader are constructed once at startup and passed
// in by reference.
type Studio struct {
	engine     core.SpeechEngine
	splitter   *text.Splitter
	rotator    *history.Rotator
	reader     *history.Reader
	namer      *history.Namer
	announcer  core.Announcer
	outputDir  string
	sampleRate int
	log        *logger.Logger
}

// New creates a studio. The announcer may be nil, in which case artifacts
// are not announced.
func New(
	speechEngine core.SpeechEngine,
	rotator *history.Rotator,
	reader *history.Reader,
	announcer core.Announcer,
	outputDir string,
	sampleRate int,
	log *logger.Logger,
) *Studio {
	return &Studio{
		engine:     speechEngine,
		splitter:   text.NewSplitter(),
		rotator:    rotator,
		reader:     reader,
		namer:      history.NewNamer(),
		announcer:  announcer,
		outputDir:  outputDir,
		sampleRate: sampleRate,
		log:        log,
	}
}

// Generate runs one synthesis request end to end, synchronously. A model
// or write failure aborts the remaining steps and surfaces the underlying
// error; no rollback of partially written files is attempted, since the
// history reader tolerates a missing sidecar.
func (s *Studio) Generate(ctx context.Context, req Request) (*Result, error) {
	requestID := uuid.NewString()

	validationErr := validateRequest(req)
	if validationErr != nil {
		return nil, validationErr
	}

	style, err := s.engine.EncodeAudio(ctx, req.ReferencePath)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reference clip: %w", err)
	}

	sentences := s.splitter.Split(req.Text)
	if len(sentences) == 0 {
		return nil, ErrNoSentences
	}

	s.log.Info("Request %s: synthesizing %d sentences", requestID, len(sentences))

	// One style entry per sentence, batched into a single model call.
	styles := make([]core.StyleTokens, len(sentences))
	for i := range styles {
		styles[i] = style
	}

	samples, err := s.engine.BatchGenerate(ctx, sentences, styles)
	if err != nil {
		return nil, fmt.Errorf("failed to generate speech: %w", err)
	}

	result, err := s.persistArtifact(requestID, req.Text, audio.ToFloat32(samples))
	if err != nil {
		return nil, err
	}

	result.Sentences = len(sentences)

	s.finishGeneration(ctx, result)
	result.History = s.reader.List()

	return result, nil
}

// History returns the current rotated set for display.
func (s *Studio) History() []history.Entry {
	return s.reader.List()
}

// persistArtifact writes the waveform and the verbatim input text as an
// artifact pair under a fresh timestamped base name.
func (s *Studio) persistArtifact(requestID, inputText string, samples []float32) (*Result, error) {
	baseName := s.namer.Next()
	audioPath := filepath.Join(s.outputDir, baseName+".wav")
	textPath := history.TranscriptPath(audioPath)

	err := audio.WriteWAV(audioPath, samples, s.sampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to write audio artifact: %w", err)
	}

	err = os.WriteFile(textPath, []byte(inputText), transcriptPermissions)
	if err != nil {
		// The audio file stays behind; the reader shows it with a
		// placeholder preview and rotation reclaims it in time.
		return nil, fmt.Errorf("failed to write transcript artifact: %w", err)
	}

	s.log.Info("Request %s: wrote artifact %s (%d samples)", requestID, baseName, len(samples))

	return &Result{
		RequestID: requestID,
		BaseName:  baseName,
		AudioPath: audioPath,
		TextPath:  textPath,
		Sentences: 0,
		History:   nil,
	}, nil
}

// finishGeneration runs the post-write hygiene and announce steps. Neither
// may fail the request.
func (s *Studio) finishGeneration(ctx context.Context, result *Result) {
	removed, warnings := s.rotator.Rotate()
	if len(removed) > 0 {
		s.log.Info("Request %s: rotation removed %d files", result.RequestID, len(removed))
	}

	s.rotator.LogWarnings("rotation", warnings)

	if s.announcer == nil {
		return
	}

	announceErr := s.announcer.Announce(ctx, result.AudioPath, result.TextPath)
	if announceErr != nil {
		s.log.Warn("Request %s: artifact announce failed: %v", result.RequestID, announceErr)
	}
}

func validateRequest(req Request) error {
	if req.Text == "" {
		return ErrTextEmpty
	}

	if req.ReferencePath == "" {
		return ErrReferenceEmpty
	}

	return nil
}
