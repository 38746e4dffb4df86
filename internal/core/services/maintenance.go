package services

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
	"github.com/custodia-labs/semsearch/internal/core/ports/driving"
	"github.com/custodia-labs/semsearch/internal/logger"
)

// Ensure MaintenanceService implements the interface.
var _ driving.IndexMaintenanceService = (*MaintenanceService)(nil)

const (
	// reindexBatchSize is the number of entries per BulkIndex call during reindex.
	reindexBatchSize = 100

	// loadBatchSize is the number of entries per BulkIndex call when loading a bulk file.
	loadBatchSize = 500

	// maxBulkLine bounds a single NDJSON line; a 3072-dim vector is ~60KB.
	maxBulkLine = 16 << 20
)

// MaintenanceService rebuilds the vector index from the document store and
// moves index entries through the NDJSON bulk file format.
type MaintenanceService struct {
	docStore driven.DocumentStore
	index    driven.VectorIndex
}

// NewMaintenanceService creates a new maintenance service.
func NewMaintenanceService(docStore driven.DocumentStore, index driven.VectorIndex) *MaintenanceService {
	return &MaintenanceService{docStore: docStore, index: index}
}

// Reindex replays every stored document into the vector index.
// Indexing failures are counted, not returned; only a failed scan aborts.
func (s *MaintenanceService) Reindex(ctx context.Context) (domain.ReindexReport, error) {
	logger.Section("Reindex")
	var report domain.ReindexReport
	batch := make([]domain.IndexEntry, 0, reindexBatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		n, err := s.index.BulkIndex(ctx, batch)
		report.Indexed += n
		report.Failed += len(batch) - n
		if err != nil {
			logger.Warn("Bulk index of %d entries failed: %v", len(batch), err)
		}
		batch = batch[:0]
	}

	err := s.docStore.Scan(ctx, func(doc domain.Document) error {
		report.Scanned++
		if len(doc.Vector) == 0 {
			logger.Warn("Document %s has no vector, skipping", doc.ID)
			report.Failed++
			return nil
		}
		batch = append(batch, doc.IndexEntry())
		if len(batch) == reindexBatchSize {
			flush()
		}
		return ctx.Err()
	})
	if err != nil {
		return report, fmt.Errorf("scan documents: %w", classify(err, domain.ErrStoreRead))
	}
	flush()

	logger.Info("Reindex complete: %d scanned, %d indexed, %d failed",
		report.Scanned, report.Indexed, report.Failed)
	return report, nil
}

// ExportBulk writes one {"document_id", "vector_field"} line per stored document.
func (s *MaintenanceService) ExportBulk(ctx context.Context, w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	count := 0

	err := s.docStore.Scan(ctx, func(doc domain.Document) error {
		if err := enc.Encode(doc.IndexEntry()); err != nil {
			return fmt.Errorf("write entry %s: %w", doc.ID, err)
		}
		count++
		return ctx.Err()
	})
	if err != nil {
		return count, fmt.Errorf("export: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return count, fmt.Errorf("export: %w", err)
	}

	logger.Info("Exported %d entries", count)
	return count, nil
}

// LoadBulk reads NDJSON index entries and bulk-indexes them.
// Blank lines are ignored. A malformed line stops the load and reports its
// line number; entries before it are already indexed.
func (s *MaintenanceService) LoadBulk(ctx context.Context, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxBulkLine)

	batch := make([]domain.IndexEntry, 0, loadBatchSize)
	loaded := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.index.BulkIndex(ctx, batch)
		loaded += n
		batch = batch[:0]
		if err != nil {
			return fmt.Errorf("bulk index: %w", classify(err, domain.ErrIndex))
		}
		return nil
	}

	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var entry domain.IndexEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			flushErr := flush()
			return loaded, errors.Join(fmt.Errorf("%w: line %d: %w", domain.ErrInvalidInput, line, err), flushErr)
		}
		if entry.DocumentID == "" || len(entry.Vector) == 0 {
			flushErr := flush()
			return loaded, errors.Join(
				fmt.Errorf("%w: line %d: missing document_id or vector_field", domain.ErrInvalidInput, line), flushErr)
		}

		batch = append(batch, entry)
		if len(batch) == loadBatchSize {
			if err := flush(); err != nil {
				return loaded, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return loaded, fmt.Errorf("read bulk file: %w", err)
	}
	if err := flush(); err != nil {
		return loaded, err
	}

	logger.Info("Loaded %d entries", loaded)
	return loaded, nil
}
