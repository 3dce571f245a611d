// Package announce publishes finished artifact pairs to NATS so downstream
// consumers can pick them up. The studio works fine without it; announcing
// is wired in only when a NATS URL is configured.
package announce

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/mira-studio/internal/core"
)

// Announcer uploads artifact pairs to an object store and publishes an
// event naming the audio key.
type Announcer struct {
	conn    *nats.Conn
	store   core.ObjectStore
	subject string
	log     *logger.Logger
}

// New creates an Announcer publishing on subject.
func New(conn *nats.Conn, store core.ObjectStore, subject string, log *logger.Logger) *Announcer {
	return &Announcer{
		conn:    conn,
		store:   store,
		subject: subject,
		log:     log,
	}
}

// Announce uploads the audio file and its transcript sidecar under their
// base names, then publishes an event carrying the audio key.
func (a *Announcer) Announce(ctx context.Context, audioPath, transcriptPath string) error {
	audioKey := filepath.Base(audioPath)

	err := a.uploadFile(ctx, audioKey, audioPath)
	if err != nil {
		return err
	}

	err = a.uploadFile(ctx, filepath.Base(transcriptPath), transcriptPath)
	if err != nil {
		return err
	}

	err = a.publishEvent(audioKey)
	if err != nil {
		return err
	}

	a.log.Info("Announced artifact '%s' on subject '%s'", audioKey, a.subject)

	return nil
}

func (a *Announcer) uploadFile(ctx context.Context, key, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact file '%s': %w", path, err)
	}

	err = a.store.Upload(ctx, key, data)
	if err != nil {
		return fmt.Errorf("failed to upload artifact '%s': %w", key, err)
	}

	return nil
}

func (a *Announcer) publishEvent(audioKey string) error {
	event := &events.AudioChunkCreatedEvent{
		Header: events.EventHeader{
			Timestamp:  time.Now(),
			WorkflowID: uuid.NewString(),
			EventID:    uuid.NewString(),
			UserID:     "",
			TenantID:   "",
		},
		AudioKey:   audioKey,
		PageNumber: 0,
		TotalPages: 0,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact event: %w", err)
	}

	err = a.conn.Publish(a.subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish artifact event on '%s': %w", a.subject, err)
	}

	return nil
}
