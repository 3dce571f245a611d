// Package config provides the configuration structure for mira-studio.
package config

import (
	"fmt"
	"os"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// Default values. These mirror the constants the studio has always run
// with; a config file only needs to override what differs.
const (
	DefaultReferenceDir   = "./static/reference_audio/"
	DefaultOutputDir      = "./static/output/"
	DefaultWebDir         = "./web/"
	DefaultLogsDir        = "/tmp"
	DefaultListenAddr     = ":8080"
	DefaultHistoryDepth   = 5
	DefaultSampleRate     = 48000
	DefaultPreviewLength  = 60
	DefaultEngineURL      = "http://localhost:8000"
	DefaultTimeoutSeconds = 300
)

const dirPermissions = 0o750

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	ReferenceDir string `toml:"reference_dir"`
	OutputDir    string `toml:"output_dir"`
	WebDir       string `toml:"web_dir"`
	BaseLogsDir  string `toml:"base_logs_dir"`
}

// StudioConfig holds the studio's generation and history settings.
type StudioConfig struct {
	ListenAddr    string `toml:"listen_addr"`
	HistoryDepth  int    `toml:"history_depth"`
	SampleRate    int    `toml:"sample_rate"`
	PreviewLength int    `toml:"preview_length"`
}

// EngineConfig holds the configuration for the external synthesis model.
type EngineConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// NATSConfig holds the optional artifact announcing configuration. An
// empty URL disables announcing entirely.
type NATSConfig struct {
	URL                    string `toml:"url"`
	ArtifactSubject        string `toml:"artifact_subject"`
	ArtifactObjectStoreBkt string `toml:"artifact_object_store_bucket"`
}

// Config is the root configuration structure.
type Config struct {
	Paths  PathsConfig  `toml:"paths"`
	Studio StudioConfig `toml:"studio"`
	Engine EngineConfig `toml:"engine"`
	NATS   NATSConfig   `toml:"nats"`
}

// Default returns a configuration populated entirely from the built-in
// defaults.
func Default() *Config {
	cfg := &Config{
		Paths:  PathsConfig{ReferenceDir: "", OutputDir: "", WebDir: "", BaseLogsDir: ""},
		Studio: StudioConfig{ListenAddr: "", HistoryDepth: 0, SampleRate: 0, PreviewLength: 0},
		Engine: EngineConfig{BaseURL: "", TimeoutSeconds: 0},
		NATS:   NATSConfig{URL: "", ArtifactSubject: "", ArtifactObjectStoreBkt: ""},
	}
	cfg.applyDefaults()

	return cfg
}

// Load loads the configuration for mira-studio and fills any field the
// config file leaves unset with its default.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// EnsureDirectories creates the reference and output directories if they
// do not exist yet.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ReferenceDir, c.Paths.OutputDir} {
		err := os.MkdirAll(dir, dirPermissions)
		if err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Paths.ReferenceDir == "" {
		c.Paths.ReferenceDir = DefaultReferenceDir
	}

	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = DefaultOutputDir
	}

	if c.Paths.WebDir == "" {
		c.Paths.WebDir = DefaultWebDir
	}

	if c.Paths.BaseLogsDir == "" {
		c.Paths.BaseLogsDir = DefaultLogsDir
	}

	if c.Studio.ListenAddr == "" {
		c.Studio.ListenAddr = DefaultListenAddr
	}

	if c.Studio.HistoryDepth == 0 {
		c.Studio.HistoryDepth = DefaultHistoryDepth
	}

	if c.Studio.SampleRate == 0 {
		c.Studio.SampleRate = DefaultSampleRate
	}

	if c.Studio.PreviewLength == 0 {
		c.Studio.PreviewLength = DefaultPreviewLength
	}

	if c.Engine.BaseURL == "" {
		c.Engine.BaseURL = DefaultEngineURL
	}

	if c.Engine.TimeoutSeconds == 0 {
		c.Engine.TimeoutSeconds = DefaultTimeoutSeconds
	}
}
