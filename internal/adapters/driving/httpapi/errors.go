package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/logger"
)

// documentNotFound is the body of a 404 from the document endpoints.
const documentNotFound = "Document ID not found"

var (
	errServiceUnavailable = errors.New("service not available in this configuration")
	errMethodNotAllowed   = errors.New("method not allowed")
)

// errorResponse is the JSON body of every other error.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps domain sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, domain.ErrHashCollision):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrIndex),
		errors.Is(err, domain.ErrStoreRead),
		errors.Is(err, domain.ErrStoreWrite),
		errors.Is(err, domain.ErrObjectStore),
		errors.Is(err, errServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusConflict:
		return "hash_collision"
	case http.StatusBadGateway:
		return "embedding_unavailable"
	case http.StatusServiceUnavailable:
		return "backend_unavailable"
	default:
		return "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Warn("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: codeFor(status)})
}
