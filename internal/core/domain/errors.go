package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexUnavailable indicates the chunk index is not initialised or reachable.
	// Pipeline operations degrade to empty results instead of failing.
	ErrIndexUnavailable = errors.New("chunk index unavailable")

	// ErrEmbeddingUnavailable indicates the embedding backend is down.
	// The pipeline degrades to zero-vector embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the generation backend is down.
	// Answers carry an in-band explanatory message instead.
	ErrLLMUnavailable = errors.New("generation service unavailable")

	// Scheduler errors.

	// ErrJobNotFound indicates the referenced job is not registered.
	ErrJobNotFound = errors.New("job not found")

	// ErrUnknownTrigger indicates a trigger kind the scheduler cannot fire.
	ErrUnknownTrigger = errors.New("unknown trigger kind")
)
