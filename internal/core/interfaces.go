// Package core defines the core types and interfaces for the studio.
package core

import "context"

// StyleTokens is the model's opaque encoding of a reference clip's vocal
// characteristics. One encoding is reusable across every sentence of a
// single generation request.
type StyleTokens []int64

// SpeechEngine is the boundary to the external synthesis model. The model
// runs out of process; this interface covers the only two operations the
// studio needs, plus a liveness probe used at startup.
type SpeechEngine interface {
	EncodeAudio(ctx context.Context, referencePath string) (StyleTokens, error)
	BatchGenerate(ctx context.Context, sentences []string, styles []StyleTokens) ([]float64, error)
	HealthCheck(ctx context.Context) error
}

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// Announcer publishes a freshly written artifact pair to interested
// consumers. Announcing is best-effort: the orchestrator logs a failed
// announce and still reports the generation as successful.
type Announcer interface {
	Announce(ctx context.Context, audioPath, transcriptPath string) error
}
