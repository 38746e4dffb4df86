package cli

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semsearch/internal/adapters/driving/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the query, document, upload, ingest and events endpoints over HTTP.

Endpoints:
  GET  /query?text=...&k=...
  GET  /documents/{id}      (or /documents?document_id=...)
  PUT  /upload?document=... (or the raw body)
  POST /ingest              {"text": ..., "source_locator": ...}
  POST /events              storage notification payload
  GET  /health

Every response carries permissive CORS headers.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	addr, _ := cmd.Flags().GetString("addr") //nolint:errcheck // flag is registered above
	if addr == "" {
		addr = defaultServerAddr
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Query:     queryService,
		Documents: documentService,
		Ingestion: ingestionService,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("HTTP API listening on %s\n", addr)
	return server.Run(ctx, addr)
}
