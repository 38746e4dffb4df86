package mcp

import (
	"github.com/custodia-labs/semsearch/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Query runs semantic search (required).
	Query driving.QueryService

	// Document fetches stored documents.
	Document driving.DocumentService

	// Ingestion adds documents. Without it the write tools report an error.
	Ingestion driving.IngestionService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
