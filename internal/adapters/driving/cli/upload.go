package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [text]",
	Short: "Store text in the object store",
	Long: `Writes text to the object store as <content id>.txt and prints its
"bucket/key" location. Without an argument the text is read from stdin.

Uploading does not ingest; a storage event or 'semsearch ingest object'
does that.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	var text string
	if len(args) > 0 {
		text = args[0]
	} else {
		if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return errors.New("no text given: pass it as an argument or pipe it on stdin")
		}
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}

	locator, err := ingestionService.Upload(cmd.Context(), text)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	cmd.Println(locator)
	return nil
}
