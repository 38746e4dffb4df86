package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Text string `json:"text" jsonschema:"the text to find similar documents for"`
	K    int    `json:"k,omitempty" jsonschema:"number of neighbours to return (default 3)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Hits  []domain.QueryHit `json:"hits"`
	Count int               `json:"count"`
}

// GetDocumentInput is the input schema for the get_document tool.
type GetDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the id returned by query"`
}

// DocumentOutput is the output schema for the get_document tool.
type DocumentOutput struct {
	DocumentID    string `json:"document_id"`
	Text          string `json:"text"`
	SourceLocator string `json:"source_locator,omitempty"`
}

// IngestTextInput is the input schema for the ingest_text tool.
type IngestTextInput struct {
	Text          string `json:"text" jsonschema:"the document text"`
	SourceLocator string `json:"source_locator,omitempty" jsonschema:"where the text came from"`
}

// IngestTextOutput is the output schema for the ingest_text tool.
type IngestTextOutput struct {
	DocumentID string `json:"document_id,omitempty"`
	Status     string `json:"status"`
}

// UploadTextInput is the input schema for the upload_text tool.
type UploadTextInput struct {
	Text string `json:"text" jsonschema:"the document text to store as an object"`
}

// UploadTextOutput is the output schema for the upload_text tool.
type UploadTextOutput struct {
	Locator string `json:"locator"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Find the stored documents semantically closest to a text",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Fetch the text of a document by id",
	}, s.handleGetDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_text",
		Description: "Embed, store and index a text. Identical text is stored once",
	}, s.handleIngestText)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upload_text",
		Description: "Store a text in object storage for later bulk ingestion",
	}, s.handleUploadText)
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	hits, err := s.ports.Query.Query(ctx, input.Text, input.K)
	if err != nil {
		return nil, QueryOutput{}, toolError(err)
	}
	if hits == nil {
		hits = []domain.QueryHit{}
	}
	return nil, QueryOutput{Hits: hits, Count: len(hits)}, nil
}

func (s *Server) handleGetDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	if s.ports.Document == nil {
		return nil, DocumentOutput{}, toolError(errServiceUnavailable)
	}

	doc, err := s.ports.Document.Get(ctx, input.DocumentID)
	if err != nil {
		return nil, DocumentOutput{}, toolError(err)
	}
	return nil, DocumentOutput{
		DocumentID:    doc.ID,
		Text:          doc.Text,
		SourceLocator: doc.SourceLocator,
	}, nil
}

func (s *Server) handleIngestText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestTextInput,
) (*mcp.CallToolResult, IngestTextOutput, error) {
	if s.ports.Ingestion == nil {
		return nil, IngestTextOutput{}, toolError(errServiceUnavailable)
	}

	result, err := s.ports.Ingestion.Ingest(ctx, input.Text, input.SourceLocator)
	if err != nil {
		return nil, IngestTextOutput{}, toolError(fmt.Errorf("ingest %s: %w", result.DocumentID, err))
	}
	return nil, IngestTextOutput{DocumentID: result.DocumentID, Status: string(result.Status)}, nil
}

func (s *Server) handleUploadText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadTextInput,
) (*mcp.CallToolResult, UploadTextOutput, error) {
	if s.ports.Ingestion == nil {
		return nil, UploadTextOutput{}, toolError(errServiceUnavailable)
	}

	locator, err := s.ports.Ingestion.Upload(ctx, input.Text)
	if err != nil {
		return nil, UploadTextOutput{}, toolError(err)
	}
	return nil, UploadTextOutput{Locator: locator}, nil
}
