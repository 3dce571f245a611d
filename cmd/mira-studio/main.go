// main package for the mira-studio web service
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/mira-studio/internal/announce"
	"github.com/book-expert/mira-studio/internal/config"
	"github.com/book-expert/mira-studio/internal/core"
	"github.com/book-expert/mira-studio/internal/engine"
	"github.com/book-expert/mira-studio/internal/history"
	"github.com/book-expert/mira-studio/internal/httpapi"
	"github.com/book-expert/mira-studio/internal/objectstore"
	"github.com/book-expert/mira-studio/internal/reference"
	"github.com/book-expert/mira-studio/internal/studio"
)

const (
	healthCheckTimeout = 10 * time.Second
	readHeaderTimeout  = 5 * time.Second
)

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "mira-studio.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// setupAnnouncer wires the optional NATS artifact announcer. An empty URL
// means announcing is disabled and nil is returned.
func setupAnnouncer(cfg *config.Config, log *logger.Logger) (core.Announcer, error) {
	if cfg.NATS.URL == "" {
		log.Info("NATS URL not configured; artifact announcing disabled.")

		return nil, nil
	}

	conn, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}

	jetstreamContext, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	store, err := objectstore.New(jetstreamContext, cfg.NATS.ArtifactObjectStoreBkt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize artifact object store: %w", err)
	}

	return announce.New(conn, store, cfg.NATS.ArtifactSubject, log), nil
}

func run() error {
	// Bootstrap logger until the configured log directory is known.
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	err = cfg.EnsureDirectories()
	if err != nil {
		bootstrapLog.Error("Failed to create directories: %v", err)

		return fmt.Errorf("failed to create directories: %w", err)
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	return serve(cfg, finalLog)
}

func serve(cfg *config.Config, log *logger.Logger) error {
	speechEngine := engine.NewClient(
		cfg.Engine.BaseURL,
		time.Duration(cfg.Engine.TimeoutSeconds)*time.Second,
	)

	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	err := speechEngine.HealthCheck(ctx)
	if err != nil {
		log.Error("Synthesis model is not reachable at %s: %v", cfg.Engine.BaseURL, err)

		return fmt.Errorf("synthesis model health check failed: %w", err)
	}

	rotator := history.NewRotator(cfg.Paths.OutputDir, cfg.Studio.HistoryDepth, log)

	removed, warnings := rotator.SanitizeOnLaunch()
	if len(removed) > 0 {
		log.Info("Removed %d non-conforming files from output directory: %v", len(removed), removed)
	}

	rotator.LogWarnings("startup sanitation", warnings)

	announcer, err := setupAnnouncer(cfg, log)
	if err != nil {
		return err
	}

	reader := history.NewReader(
		cfg.Paths.OutputDir, cfg.Studio.HistoryDepth, cfg.Studio.PreviewLength, log)
	refs := reference.NewStore(cfg.Paths.ReferenceDir, log)
	st := studio.New(
		speechEngine, rotator, reader, announcer,
		cfg.Paths.OutputDir, cfg.Studio.SampleRate, log)

	server := &http.Server{
		Addr:              cfg.Studio.ListenAddr,
		Handler:           httpapi.NewServer(st, refs, cfg.Paths.OutputDir, cfg.Paths.WebDir, log),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	log.System("Mira studio listening on %s", cfg.Studio.ListenAddr)

	err = server.ListenAndServe()
	if err != nil {
		return fmt.Errorf("http server stopped: %w", err)
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
