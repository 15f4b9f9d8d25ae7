// Package domain defines the core business entities for the earnings-call
// retrieval pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A raw earnings disclosure before chunking
//   - Chunk: An indexed, retrievable slice of a document
//   - QueryResult / Answer: Retrieval and synthesis outputs
//   - Job / Trigger: Scheduled background work
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
