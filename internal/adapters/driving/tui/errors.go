package tui

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("tui: query service is required")

// ErrDocumentServiceUnavailable is reported when a hit is opened without a
// document service.
var ErrDocumentServiceUnavailable = errors.New("tui: document service not available")
