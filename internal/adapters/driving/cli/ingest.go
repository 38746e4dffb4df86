package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

var (
	ingestJSON   bool
	ingestSource string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest documents",
	Long: `Embed, store and index documents. Each document is identified by the
hash of its text; documents already stored are skipped unless
ingest.on_duplicate is "overwrite".`,
}

var ingestPrefixCmd = &cobra.Command{
	Use:   "prefix [prefix]",
	Short: "Ingest every object under a prefix",
	Long: `Lists the object store under prefix (the whole bucket when omitted) and
ingests each object. Empty objects are skipped; failures are reported per
object and do not stop the run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngestPrefix,
}

var ingestTextCmd = &cobra.Command{
	Use:   "text <text>",
	Short: "Ingest text directly",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestText,
}

var ingestObjectCmd = &cobra.Command{
	Use:   "object <key>...",
	Short: "Ingest specific objects",
	Long:  `Ingests the named object keys as if a storage event had arrived for each.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngestObject,
}

func init() {
	ingestCmd.PersistentFlags().BoolVar(&ingestJSON, "json", false, "output the report as JSON")
	ingestTextCmd.Flags().StringVarP(&ingestSource, "source", "s", "cli", "source locator recorded with the document")
	ingestCmd.AddCommand(ingestPrefixCmd)
	ingestCmd.AddCommand(ingestTextCmd)
	ingestCmd.AddCommand(ingestObjectCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngestPrefix(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}

	report, err := ingestionService.IngestPrefix(cmd.Context(), prefix)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return outputReport(cmd, report)
}

func runIngestText(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	result, err := ingestionService.Ingest(cmd.Context(), args[0], ingestSource)
	if ingestJSON {
		if jsonErr := printJSON(cmd, result); jsonErr != nil {
			return jsonErr
		}
	} else if err == nil {
		cmd.Printf("%s %s\n", result.Status, result.DocumentID)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return nil
}

func runIngestObject(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	events := make([]domain.ObjectEvent, len(args))
	for i, key := range args {
		events[i] = domain.ObjectEvent{Key: key}
	}
	return outputReport(cmd, ingestionService.IngestEvents(cmd.Context(), events))
}

// outputReport prints a batch report and returns an error when any item
// failed, so the exit status reflects partial failure.
func outputReport(cmd *cobra.Command, report domain.BatchReport) error {
	if ingestJSON {
		if err := printJSON(cmd, report); err != nil {
			return err
		}
	} else {
		for _, r := range report.Results {
			switch r.Status {
			case domain.IngestStatusFailed:
				cmd.Printf("  FAIL %s: %v\n", r.SourceLocator, r.Err)
			case domain.IngestStatusIngested:
				cmd.Printf("  ok   %s -> %s\n", r.SourceLocator, r.DocumentID)
			default:
				cmd.Printf("  skip %s (%s)\n", r.SourceLocator, r.Status)
			}
		}
		cmd.Printf("Processed %d: %d ingested, %d duplicate, %d empty, %d failed\n",
			report.Total(), report.Ingested(), report.Duplicates(), report.Empty(), report.Failed())
	}

	if report.Failed() > 0 {
		return fmt.Errorf("%d of %d documents failed", report.Failed(), report.Total())
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
