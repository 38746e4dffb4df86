// Package mcp exposes the query and ingestion pipelines as Model Context
// Protocol tools, so AI assistants can search and add documents.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

// errServiceUnavailable is returned by tools whose port was not wired.
var errServiceUnavailable = errors.New("service not available in this configuration")

// errorCode names the failure class so clients can react without parsing
// messages. It follows the HTTP API's status mapping.
func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrHashCollision):
		return "hash_collision"
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return "embedding_unavailable"
	case errors.Is(err, domain.ErrIndex),
		errors.Is(err, domain.ErrStoreRead),
		errors.Is(err, domain.ErrStoreWrite),
		errors.Is(err, domain.ErrObjectStore):
		return "backend_unavailable"
	default:
		return "internal"
	}
}

// toolError prefixes err with its code. The SDK turns a handler error into
// a tool result with IsError set.
func toolError(err error) error {
	return fmt.Errorf("%s: %w", errorCode(err), err)
}
