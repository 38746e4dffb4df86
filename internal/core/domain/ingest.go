package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// IngestStatus describes what happened to one document during ingestion.
type IngestStatus string

// Ingestion outcomes.
const (
	// IngestStatusIngested means the document was embedded, stored and indexed.
	IngestStatusIngested IngestStatus = "ingested"

	// IngestStatusDuplicate means a document with the same identifier was
	// already stored and the duplicate policy chose to skip it.
	IngestStatusDuplicate IngestStatus = "duplicate"

	// IngestStatusEmpty means the text was empty and nothing was done.
	IngestStatusEmpty IngestStatus = "empty"

	// IngestStatusFailed means one of the pipeline steps failed. See Err.
	IngestStatusFailed IngestStatus = "failed"
)

// String returns the string representation.
func (s IngestStatus) String() string {
	return string(s)
}

// IngestResult is the outcome of ingesting a single document.
type IngestResult struct {
	// DocumentID is the content identifier. Empty when the text was empty.
	DocumentID string

	// SourceLocator is where the text came from.
	SourceLocator string

	// Status is the outcome.
	Status IngestStatus

	// Stored is true once the document reached the document store. A failed
	// result with Stored set needs a reindex, not a re-ingest.
	Stored bool

	// Err is set when Status is IngestStatusFailed.
	Err error
}

// OK reports whether the result is not a failure.
func (r IngestResult) OK() bool {
	return r.Status != IngestStatusFailed
}

// MarshalJSON renders Err as its message.
func (r IngestResult) MarshalJSON() ([]byte, error) {
	out := struct {
		DocumentID    string `json:"document_id,omitempty"`
		SourceLocator string `json:"source_locator,omitempty"`
		Status        string `json:"status"`
		Stored        bool   `json:"stored"`
		Error         string `json:"error,omitempty"`
	}{
		DocumentID:    r.DocumentID,
		SourceLocator: r.SourceLocator,
		Status:        string(r.Status),
		Stored:        r.Stored,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// BatchReport collects per-item results of a batch ingestion.
type BatchReport struct {
	Results []IngestResult
}

// Add appends a result to the report.
func (b *BatchReport) Add(r IngestResult) {
	b.Results = append(b.Results, r)
}

// Total returns the number of items processed.
func (b *BatchReport) Total() int {
	return len(b.Results)
}

// Ingested returns the number of newly ingested documents.
func (b *BatchReport) Ingested() int {
	return b.count(IngestStatusIngested)
}

// Duplicates returns the number of items skipped as already present.
func (b *BatchReport) Duplicates() int {
	return b.count(IngestStatusDuplicate)
}

// Empty returns the number of items skipped for having no text.
func (b *BatchReport) Empty() int {
	return b.count(IngestStatusEmpty)
}

// Failed returns the number of failed items.
func (b *BatchReport) Failed() int {
	return b.count(IngestStatusFailed)
}

// Err joins the errors of all failed items, or returns nil.
func (b *BatchReport) Err() error {
	var errs []error
	for _, r := range b.Results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.SourceLocator, r.Err))
		}
	}
	return errors.Join(errs...)
}

// MarshalJSON adds the per-status counters to the item list.
func (b BatchReport) MarshalJSON() ([]byte, error) {
	results := b.Results
	if results == nil {
		results = []IngestResult{}
	}
	return json.Marshal(struct {
		Total      int            `json:"total"`
		Ingested   int            `json:"ingested"`
		Duplicates int            `json:"duplicates"`
		Empty      int            `json:"empty"`
		Failed     int            `json:"failed"`
		Results    []IngestResult `json:"results"`
	}{
		Total:      b.Total(),
		Ingested:   b.Ingested(),
		Duplicates: b.Duplicates(),
		Empty:      b.Empty(),
		Failed:     b.Failed(),
		Results:    results,
	})
}

func (b *BatchReport) count(status IngestStatus) int {
	n := 0
	for _, r := range b.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// ReindexReport summarises a rebuild of the vector index from the document store.
type ReindexReport struct {
	// Scanned is the number of stored documents visited.
	Scanned int

	// Indexed is the number of entries the index accepted.
	Indexed int

	// Failed is the number of entries that could not be indexed.
	Failed int
}

// ObjectEvent is a notification that one object landed in object storage.
type ObjectEvent struct {
	Bucket string
	Key    string
}

// objectNotification mirrors the storage notification payload:
// {"Records":[{"s3":{"bucket":{"name":...},"object":{"key":...}}}]}.
type objectNotification struct {
	Records []struct {
		S3 struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// ParseObjectEvents decodes a storage notification payload into events.
// Records without an object key are rejected.
func ParseObjectEvents(payload []byte) ([]ObjectEvent, error) {
	var n objectNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("%w: decode notification: %w", ErrInvalidInput, err)
	}

	events := make([]ObjectEvent, 0, len(n.Records))
	for i, rec := range n.Records {
		if rec.S3.Object.Key == "" {
			return nil, fmt.Errorf("%w: record %d has no object key", ErrInvalidInput, i)
		}
		events = append(events, ObjectEvent{
			Bucket: rec.S3.Bucket.Name,
			Key:    rec.S3.Object.Key,
		})
	}
	return events, nil
}
