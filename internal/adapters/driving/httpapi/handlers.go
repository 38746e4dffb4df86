package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// documentResponse is the body of a successful document fetch.
// s3_file_path duplicates source_locator for existing clients.
type documentResponse struct {
	DocumentID    string `json:"document_id"`
	Text          string `json:"text"`
	SourceLocator string `json:"source_locator"`
	S3FilePath    string `json:"s3_file_path"`
}

// ingestRequest is the body of POST /ingest.
type ingestRequest struct {
	Text          string `json:"text"`
	SourceLocator string `json:"source_locator"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleQuery serves GET /query?text=...&k=... as [{score, document_id}].
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")

	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: k must be a non-negative integer", domain.ErrInvalidInput))
			return
		}
		k = n
	}

	hits, err := s.ports.Query.Query(r.Context(), text, k)
	if err != nil {
		writeError(w, err)
		return
	}
	if hits == nil {
		hits = []domain.QueryHit{}
	}
	writeJSON(w, http.StatusOK, hits)
}

// handleDocument serves GET /documents/{id} and GET /documents?document_id=.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	if s.ports.Documents == nil {
		writeError(w, errServiceUnavailable)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		id = r.URL.Query().Get("document_id")
	}
	if id == "" {
		writeError(w, fmt.Errorf("%w: document_id is required", domain.ErrInvalidInput))
		return
	}

	doc, err := s.ports.Documents.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, documentNotFound)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentResponse{
		DocumentID:    doc.ID,
		Text:          doc.Text,
		SourceLocator: doc.SourceLocator,
		S3FilePath:    doc.SourceLocator,
	})
}

// handleUpload serves PUT /upload. The text comes from the document query
// parameter, or the raw body when the parameter is absent. The response is
// the JSON string "bucket/key".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.ports.Ingestion == nil {
		writeError(w, errServiceUnavailable)
		return
	}

	text := r.URL.Query().Get("document")
	if !r.URL.Query().Has("document") {
		body, err := readBody(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		text = string(body)
	}

	locator, err := s.ports.Ingestion.Upload(r.Context(), text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, locator)
}

// handleIngest serves POST /ingest with {text, source_locator}. The body is
// the per-item result, with the status code taken from its error.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.ports.Ingestion == nil {
		writeError(w, errServiceUnavailable)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req ingestRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, fmt.Errorf("%w: decode body: %w", domain.ErrInvalidInput, err))
		return
	}

	result, err := s.ports.Ingestion.Ingest(r.Context(), req.Text, req.SourceLocator)
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}
	writeJSON(w, status, result)
}

// handleEvents serves POST /events with a storage notification payload.
// Per-item failures are reported in the body; the status is 200 unless the
// payload itself is malformed.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.ports.Ingestion == nil {
		writeError(w, errServiceUnavailable)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	events, err := domain.ParseObjectEvents(body)
	if err != nil {
		writeError(w, err)
		return
	}

	report := s.ports.Ingestion.IngestEvents(r.Context(), events)
	writeJSON(w, http.StatusOK, report)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrInvalidInput, err)
	}
	return body, nil
}
