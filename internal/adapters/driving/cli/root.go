// Package cli implements the semsearch command line with cobra. Commands
// register themselves in init and call the driving ports set through
// SetServices.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/semsearch/internal/core/ports/driven"
	"github.com/custodia-labs/semsearch/internal/core/ports/driving"
	"github.com/custodia-labs/semsearch/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=1.2.3".
var version = "dev"

var verbose bool

// Services holds the ports the commands call. A nil field makes the
// commands that need it fail with "<name> service not configured".
type Services struct {
	Ingestion   driving.IngestionService
	Query       driving.QueryService
	Documents   driving.DocumentService
	Maintenance driving.IndexMaintenanceService
	Settings    driving.SettingsService

	// Watcher feeds the watch command. Nil for backends without push
	// notifications.
	Watcher driven.ObjectWatcher

	// ServerAddr is the default listen address for serve.
	ServerAddr string
}

var (
	ingestionService   driving.IngestionService
	queryService       driving.QueryService
	documentService    driving.DocumentService
	maintenanceService driving.IndexMaintenanceService
	settingsService    driving.SettingsService
	objectWatcher      driven.ObjectWatcher
	defaultServerAddr  = ":8080"
)

var rootCmd = &cobra.Command{
	Use:   "semsearch",
	Short: "Semantic document search",
	Long: `semsearch embeds documents, stores them by content hash and answers
nearest-neighbour queries over their vectors.

Documents arrive from an object store prefix, storage events, uploads or
direct text. Queries return the closest documents by cosine similarity.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline trace to stderr")
}

// SetServices installs the ports used by every command.
func SetServices(s Services) {
	ingestionService = s.Ingestion
	queryService = s.Query
	documentService = s.Documents
	maintenanceService = s.Maintenance
	settingsService = s.Settings
	objectWatcher = s.Watcher
	if s.ServerAddr != "" {
		defaultServerAddr = s.ServerAddr
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
