package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

var (
	queryK    int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Find the documents closest to a query",
	Long: `Embeds the query text and returns the nearest stored documents by cosine
similarity, best first.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryK, "top-k", "k", 0, "number of results (0 uses query.top_k)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	hits, err := queryService.Query(cmd.Context(), args[0], queryK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		if hits == nil {
			hits = []domain.QueryHit{}
		}
		return printJSON(cmd, hits)
	}

	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	cmd.Println("Results:")
	cmd.Println()
	for i, hit := range hits {
		cmd.Printf("  [%d] %s (%.4f)\n", i+1, hit.DocumentID, hit.Score)
	}
	return nil
}
