// Package domain defines the core business entities for semsearch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: stored text, its embedding and where it came from
//   - IndexEntry: the (id, vector) pair held by a vector index
//   - QueryHit: one ranked nearest-neighbour result
//   - IngestResult / BatchReport: per-item ingestion outcomes
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
