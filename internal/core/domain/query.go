package domain

// QueryHit is a single ranked result of a nearest-neighbour query.
// Score is cosine similarity: higher means closer, 1 is an exact match.
type QueryHit struct {
	Score      float64 `json:"score"`
	DocumentID string  `json:"document_id"`
}

// DefaultTopK is the number of neighbours returned by a query when the
// caller does not ask for a specific count.
const DefaultTopK = 3
