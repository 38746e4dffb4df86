package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// IndexMaintenanceService rebuilds and bulk-loads the vector index.
type IndexMaintenanceService interface {
	// Reindex replays every stored document into the vector index.
	Reindex(ctx context.Context) (domain.ReindexReport, error)

	// ExportBulk writes one NDJSON index entry per stored document.
	ExportBulk(ctx context.Context, w io.Writer) (int, error)

	// LoadBulk reads NDJSON index entries and bulk-indexes them.
	LoadBulk(ctx context.Context, r io.Reader) (int, error)
}
