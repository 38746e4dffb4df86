// Package tui provides an interactive terminal UI for querying the index:
// a query input, the ranked hits and a scrollable view of the selected
// document.
package tui

import (
	"github.com/custodia-labs/semsearch/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI calls.
type Ports struct {
	// Query runs semantic search (required).
	Query driving.QueryService

	// Document fetches a hit's text. Without it hits cannot be opened.
	Document driving.DocumentService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
