// main package for the mira-cli one-shot synthesis client
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/mira-studio/internal/config"
	"github.com/book-expert/mira-studio/internal/engine"
	"github.com/book-expert/mira-studio/internal/history"
	"github.com/book-expert/mira-studio/internal/studio"
)

// Flag names.
const (
	flagText      = "text"
	flagReference = "reference"
	flagHealth    = "health"
)

// Flag descriptions.
const (
	flagTextDesc      = "Text to synthesize"
	flagReferenceDesc = "Path to the reference voice clip"
	flagHealthDesc    = "Check synthesis model health and exit"
)

// Error and log messages.
const (
	errTextRequired      = "--text is required"
	errReferenceRequired = "--reference is required"
	msgModelHealthy      = "Synthesis model is healthy"
	msgModelNotHealthy   = "Synthesis model is not healthy: %v\n"
	msgGenerated         = "Generated: %s (%d sentences)\n"
)

const (
	logFileName        = "mira-cli.log"
	healthCheckTimeout = 10 * time.Second
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	text      string
	reference string
	health    bool
}

func main() {
	err := run()
	if err != nil {
		// The logger might not be initialized yet; use the standard log package.
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	flags := parseFlags()

	bootstrapLog, err := logger.New(os.TempDir(), logFileName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLog, err := logger.New(cfg.Paths.BaseLogsDir, logFileName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = appLog.Close() }()

	client := engine.NewClient(
		cfg.Engine.BaseURL,
		time.Duration(cfg.Engine.TimeoutSeconds)*time.Second,
	)

	if flags.health {
		return handleHealthCheck(client)
	}

	return handleGeneration(cfg, appLog, client, flags)
}

// parseFlags defines and parses command-line flags, returning them in a struct.
func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.text, flagText, "", flagTextDesc)
	flag.StringVar(&flags.reference, flagReference, "", flagReferenceDesc)
	flag.BoolVar(&flags.health, flagHealth, false, flagHealthDesc)
	flag.Parse()

	return flags
}

func handleHealthCheck(client *engine.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	err := client.HealthCheck(ctx)
	if err != nil {
		fmt.Printf(msgModelNotHealthy, err)

		return err
	}

	fmt.Println(msgModelHealthy)

	return nil
}

func handleGeneration(
	cfg *config.Config,
	appLog *logger.Logger,
	client *engine.Client,
	flags appFlags,
) error {
	if flags.text == "" {
		flag.Usage()

		return errors.New(errTextRequired)
	}

	if flags.reference == "" {
		flag.Usage()

		return errors.New(errReferenceRequired)
	}

	err := cfg.EnsureDirectories()
	if err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	rotator := history.NewRotator(cfg.Paths.OutputDir, cfg.Studio.HistoryDepth, appLog)
	reader := history.NewReader(
		cfg.Paths.OutputDir, cfg.Studio.HistoryDepth, cfg.Studio.PreviewLength, appLog)
	st := studio.New(
		client, rotator, reader, nil, cfg.Paths.OutputDir, cfg.Studio.SampleRate, appLog)

	result, err := st.Generate(context.Background(), studio.Request{
		Text:          flags.text,
		ReferencePath: flags.reference,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	fmt.Printf(msgGenerated, result.AudioPath, result.Sentences)

	return nil
}
