package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations return explicit errors; the pipeline boundary decides
// the degraded behaviour (a zero vector of the deployment dimension), so
// search quality degrades but ingestion and querying never halt.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size. This is determined
	// by the model and must match the chunk index configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
