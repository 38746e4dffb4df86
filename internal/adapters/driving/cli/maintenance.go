package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// defaultBulkFile is the NDJSON file name used when none is given.
const defaultBulkFile = "bulk_request.json"

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index from the document store",
	Long: `Scans every stored document and writes its vector to the index again.
Use it after switching index backends or when ingestion stored a document
but failed to index it.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Export or load the index in bulk",
	Long: `Move index entries through an NDJSON bulk file: one action line followed
by one document line per entry.`,
}

var bulkExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write every stored document to a bulk file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBulkExport,
}

var bulkLoadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Load a bulk file into the vector index",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBulkLoad,
}

func init() {
	bulkCmd.AddCommand(bulkExportCmd)
	bulkCmd.AddCommand(bulkLoadCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(bulkCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if maintenanceService == nil {
		return errors.New("maintenance service not configured")
	}

	cmd.Println("Reindexing stored documents...")
	report, err := maintenanceService.Reindex(cmd.Context())
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	cmd.Printf("Scanned %d, indexed %d, failed %d\n", report.Scanned, report.Indexed, report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d documents could not be indexed", report.Failed)
	}
	return nil
}

func bulkPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultBulkFile
}

func runBulkExport(cmd *cobra.Command, args []string) error {
	if maintenanceService == nil {
		return errors.New("maintenance service not configured")
	}

	path := bulkPath(args)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	n, err := maintenanceService.ExportBulk(cmd.Context(), f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	cmd.Printf("Exported %d documents to %s\n", n, path)
	return nil
}

func runBulkLoad(cmd *cobra.Command, args []string) error {
	if maintenanceService == nil {
		return errors.New("maintenance service not configured")
	}

	path := bulkPath(args)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	n, err := maintenanceService.LoadBulk(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("load failed after %d entries: %w", n, err)
	}

	cmd.Printf("Loaded %d entries from %s\n", n, path)
	return nil
}
