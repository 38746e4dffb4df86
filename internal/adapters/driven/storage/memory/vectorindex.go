package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a brute-force cosine index. Indexing an id again replaces
// its vector.
type VectorIndex struct {
	mu         sync.RWMutex
	vectors    map[string][]float32
	dimensions int
}

// NewVectorIndex creates an empty index. A dimensions of 0 takes the size
// of the first vector indexed.
func NewVectorIndex(dimensions int) *VectorIndex {
	return &VectorIndex{
		vectors:    make(map[string][]float32),
		dimensions: dimensions,
	}
}

// Index adds or replaces one entry.
func (v *VectorIndex) Index(_ context.Context, entry domain.IndexEntry) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.add(entry)
}

// BulkIndex adds entries, skipping any that are rejected.
func (v *VectorIndex) BulkIndex(_ context.Context, entries []domain.IndexEntry) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var (
		accepted int
		firstErr error
	)
	for _, entry := range entries {
		if err := v.add(entry); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		accepted++
	}
	return accepted, firstErr
}

// Query ranks every entry by cosine similarity to vector.
func (v *VectorIndex) Query(_ context.Context, vector []float32, k int) ([]driven.VectorHit, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrIndex)
	}

	v.mu.RLock()
	if v.dimensions > 0 && len(vector) != v.dimensions {
		v.mu.RUnlock()
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrIndex, len(vector), v.dimensions)
	}
	hits := make([]driven.VectorHit, 0, len(v.vectors))
	for id, stored := range v.vectors {
		hits = append(hits, driven.VectorHit{DocumentID: id, Score: cosineSimilarity(vector, stored)})
	}
	v.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocumentID < hits[j].DocumentID
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of indexed entries.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.vectors)
}

// Close is a no-op for the memory index.
func (v *VectorIndex) Close() error {
	return nil
}

// add must be called with the write lock held.
func (v *VectorIndex) add(entry domain.IndexEntry) error {
	if entry.DocumentID == "" || len(entry.Vector) == 0 {
		return fmt.Errorf("%w: entry needs an id and a vector", domain.ErrIndex)
	}
	if v.dimensions == 0 {
		v.dimensions = len(entry.Vector)
	}
	if len(entry.Vector) != v.dimensions {
		return fmt.Errorf("%w: %s has %d dimensions, index has %d",
			domain.ErrIndex, entry.DocumentID, len(entry.Vector), v.dimensions)
	}
	v.vectors[entry.DocumentID] = cloneVector(entry.Vector)
	return nil
}

// cosineSimilarity returns a value in [-1, 1]; zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
