package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semsearch/internal/core/domain"
	"github.com/custodia-labs/semsearch/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Ingest objects as they are written",
	Long: `Watches the object store and ingests each new object once it has settled.
Only the filesystem backend delivers notifications; for GCS, point a
bucket notification at the HTTP API's POST /events instead.

Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}
	if objectWatcher == nil {
		return errors.New("object store does not support watching")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events, err := objectWatcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch: %w", err)
	}

	cmd.Println("Watching for new objects. Press Ctrl+C to stop.")
	return consumeEvents(ctx, cmd, events)
}

// consumeEvents ingests one event at a time until the channel closes.
func consumeEvents(ctx context.Context, cmd *cobra.Command, events <-chan domain.ObjectEvent) error {
	for ev := range events {
		report := ingestionService.IngestEvents(ctx, []domain.ObjectEvent{ev})
		for _, r := range report.Results {
			if r.Status == domain.IngestStatusFailed {
				logger.Warn("Failed to ingest %s: %v", r.SourceLocator, r.Err)
				continue
			}
			cmd.Printf("%s %s -> %s\n", r.Status, r.SourceLocator, r.DocumentID)
		}
	}
	return nil
}
