package domain

import "time"

// Document is the unit of ingestion. It is created once, on first
// successful ingestion, and keyed by an identifier derived from Text.
type Document struct {
	// ID is the content-derived identifier.
	ID string `json:"document_id"`

	// Text is the raw document content.
	Text string `json:"text"`

	// Vector is the embedding of Text. Its length is fixed by the
	// embedding provider.
	Vector []float32 `json:"vector_field"`

	// SourceLocator identifies where the text came from (bucket/key).
	// It is stored for retrieval only and plays no part in search.
	SourceLocator string `json:"s3_file_path"`

	// CreatedAt is when the document was first stored.
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// IndexEntry returns the index entry derived from the document.
func (d Document) IndexEntry() IndexEntry {
	return IndexEntry{DocumentID: d.ID, Vector: d.Vector}
}

// IndexEntry is the pair submitted to a vector index. It is derived data
// and can always be rebuilt from a Document. The JSON form is also the
// record format of the offline bulk-load file.
type IndexEntry struct {
	DocumentID string    `json:"document_id"`
	Vector     []float32 `json:"vector_field"`
}

// SourceDocument is one input to a batch ingestion.
type SourceDocument struct {
	Text          string
	SourceLocator string
}
