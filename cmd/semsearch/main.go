// Command semsearch is the semantic document search CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/semsearch/internal/adapters/driven/ai"
	"github.com/custodia-labs/semsearch/internal/adapters/driven/config/file"
	"github.com/custodia-labs/semsearch/internal/adapters/driving/cli"
	"github.com/custodia-labs/semsearch/internal/app"
	"github.com/custodia-labs/semsearch/internal/core/services"
	"github.com/custodia-labs/semsearch/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is normal.
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	svc := cli.Services{Settings: settingsService}

	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	ctx := context.Background()
	a, err := app.New(ctx, *settings, app.Options{HomeDir: filepath.Dir(configStore.Path())})
	if err != nil {
		// Only settings commands work until the pipeline can be built.
		logger.Warn("pipeline unavailable: %v", err)
		logger.Warn("run 'semsearch settings show' to check the configuration")
	} else {
		defer a.Close()
		svc.Ingestion = a.Ingestion
		svc.Query = a.Query
		svc.Documents = a.Documents
		svc.Maintenance = a.Maintenance
		svc.Watcher = a.Watcher
		svc.ServerAddr = settings.Server.Addr
	}

	cli.SetServices(svc)
	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}
