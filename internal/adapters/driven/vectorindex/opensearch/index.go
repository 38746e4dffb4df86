// Package opensearch provides a VectorIndex backed by the OpenSearch k-NN
// plugin, spoken over its REST API.
package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// Default configuration values.
const (
	DefaultIndex   = "documents"
	DefaultTimeout = 30 * time.Second

	// Engine is the k-NN engine for new indexes. nmslib is refused by
	// OpenSearch 3.x.
	Engine = "lucene"
)

// Config holds configuration for the OpenSearch index.
type Config struct {
	// Endpoint is the cluster base URL, e.g. https://search.example.com:9200 (required).
	Endpoint string

	// Index is the index name (default: documents).
	Index string

	// Username and Password enable HTTP basic auth when Username is set.
	Username string
	Password string

	// Dimensions sizes the knn_vector field when the index is created.
	Dimensions int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// VectorIndex stores {document_id, vector_field} documents, using the
// document id as the OpenSearch _id so re-indexing replaces.
type VectorIndex struct {
	client     *http.Client
	endpoint   string
	index      string
	username   string
	password   string
	dimensions int
}

// NewVectorIndex creates a new OpenSearch index client.
func NewVectorIndex(cfg Config) (*VectorIndex, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("opensearch: endpoint is required")
	}
	if cfg.Index == "" {
		cfg.Index = DefaultIndex
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &VectorIndex{
		client:     &http.Client{Timeout: cfg.Timeout},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		index:      cfg.Index,
		username:   cfg.Username,
		password:   cfg.Password,
		dimensions: cfg.Dimensions,
	}, nil
}

// EnsureIndex creates the index with a cosine knn_vector mapping if it does
// not exist yet.
func (v *VectorIndex) EnsureIndex(ctx context.Context) error {
	resp, err := v.do(ctx, http.MethodHead, "/"+url.PathEscape(v.index), "", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: opensearch: index check returned status %d", domain.ErrIndex, resp.StatusCode)
	}
	if v.dimensions <= 0 {
		return fmt.Errorf("%w: opensearch: creating index %s needs a vector dimension", domain.ErrIndex, v.index)
	}

	mapping := map[string]any{
		"settings": map[string]any{
			"index": map[string]any{"knn": true},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"document_id": map[string]any{"type": "keyword"},
				"vector_field": map[string]any{
					"type":      "knn_vector",
					"dimension": v.dimensions,
					"method": map[string]any{
						"name":       "hnsw",
						"space_type": "cosinesimil",
						"engine":     Engine,
					},
				},
			},
		},
	}
	return v.send(ctx, http.MethodPut, "/"+url.PathEscape(v.index), mapping, nil)
}

// Index adds or replaces one entry.
func (v *VectorIndex) Index(ctx context.Context, entry domain.IndexEntry) error {
	if entry.DocumentID == "" || len(entry.Vector) == 0 {
		return fmt.Errorf("%w: entry needs an id and a vector", domain.ErrIndex)
	}
	path := "/" + url.PathEscape(v.index) + "/_doc/" + url.PathEscape(entry.DocumentID)
	return v.send(ctx, http.MethodPut, path, entry, nil)
}

// bulkResponse is the subset of the _bulk response we read.
type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

// BulkIndex sends entries through the _bulk API and counts the items the
// cluster accepted.
func (v *VectorIndex) BulkIndex(ctx context.Context, entries []domain.IndexEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, entry := range entries {
		action := map[string]any{"index": map[string]string{"_index": v.index, "_id": entry.DocumentID}}
		if err := enc.Encode(action); err != nil {
			return 0, fmt.Errorf("%w: encode bulk action: %w", domain.ErrIndex, err)
		}
		if err := enc.Encode(entry); err != nil {
			return 0, fmt.Errorf("%w: encode bulk entry: %w", domain.ErrIndex, err)
		}
	}

	resp, err := v.do(ctx, http.MethodPost, "/_bulk", "application/x-ndjson", &body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	data, err := readOK(resp)
	if err != nil {
		return 0, err
	}

	var result bulkResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, fmt.Errorf("%w: decode bulk response: %w", domain.ErrIndex, err)
	}

	accepted := 0
	var firstErr error
	for _, item := range result.Items {
		for _, outcome := range item {
			if outcome.Status >= 200 && outcome.Status < 300 {
				accepted++
				continue
			}
			if firstErr == nil {
				reason := fmt.Sprintf("status %d", outcome.Status)
				if outcome.Error != nil {
					reason = outcome.Error.Type + ": " + outcome.Error.Reason
				}
				firstErr = fmt.Errorf("%w: opensearch: bulk item %s: %s", domain.ErrIndex, outcome.ID, reason)
			}
		}
	}
	return accepted, firstErr
}

// searchResponse is the subset of the _search response we read.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64 `json:"_score"`
			Source struct {
				DocumentID string `json:"document_id"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Query runs an approximate k-NN search on vector_field.
func (v *VectorIndex) Query(ctx context.Context, vector []float32, k int) ([]driven.VectorHit, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrIndex)
	}
	if k <= 0 {
		k = domain.DefaultTopK
	}

	body := map[string]any{
		"size":    k,
		"_source": []string{"document_id"},
		"query": map[string]any{
			"knn": map[string]any{
				"vector_field": map[string]any{
					"vector": vector,
					"k":      k,
				},
			},
		},
	}

	var result searchResponse
	if err := v.send(ctx, http.MethodPost, "/"+url.PathEscape(v.index)+"/_search", body, &result); err != nil {
		return nil, err
	}

	hits := make([]driven.VectorHit, 0, len(result.Hits.Hits))
	for _, h := range result.Hits.Hits {
		hits = append(hits, driven.VectorHit{
			DocumentID: h.Source.DocumentID,
			Score:      cosineFromScore(h.Score),
		})
	}
	return hits, nil
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	v.client.CloseIdleConnections()
	return nil
}

// cosineFromScore inverts the lucene cosinesimil scoring, score = (1 + cos) / 2.
func cosineFromScore(score float64) float64 {
	return math.Max(-1, math.Min(1, 2*score-1))
}

// send marshals in as JSON, checks for a 2xx status and decodes into out
// when out is non-nil.
func (v *VectorIndex) send(ctx context.Context, method, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: marshal request: %w", domain.ErrIndex, err)
	}
	resp, err := v.do(ctx, method, path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := readOK(resp)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrIndex, err)
	}
	return nil
}

func (v *VectorIndex) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, v.endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrIndex, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if v.username != "" {
		req.SetBasicAuth(v.username, v.password)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: opensearch: %w", domain.ErrIndex, err)
	}
	return resp, nil
}

func readOK(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrIndex, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: opensearch error (status %d): %s", domain.ErrIndex, resp.StatusCode, string(data))
	}
	return data, nil
}
