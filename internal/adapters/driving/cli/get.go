package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

var getJSON bool

var getCmd = &cobra.Command{
	Use:   "get <document-id>",
	Short: "Print a stored document",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().BoolVar(&getJSON, "json", false, "output the document as JSON")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("document %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if getJSON {
		return printJSON(cmd, map[string]string{
			"document_id":    doc.ID,
			"text":           doc.Text,
			"source_locator": doc.SourceLocator,
		})
	}

	cmd.Printf("ID:     %s\n", doc.ID)
	cmd.Printf("Source: %s\n", doc.SourceLocator)
	cmd.Println()
	cmd.Println(doc.Text)
	return nil
}
