package main

import (
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/harbourview/driftsync/internal/adapters/driven/auth"
	"github.com/harbourview/driftsync/internal/adapters/driven/config/file"
	"github.com/harbourview/driftsync/internal/adapters/driven/index/meili"
	"github.com/harbourview/driftsync/internal/adapters/driven/index/noop"
	"github.com/harbourview/driftsync/internal/adapters/driven/storage/sqlite"
	"github.com/harbourview/driftsync/internal/adapters/driving/cli"
	"github.com/harbourview/driftsync/internal/connectors"
	"github.com/harbourview/driftsync/internal/core/ports/driven"
	"github.com/harbourview/driftsync/internal/core/services"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)

	logger, err := buildLogger()
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failure is not actionable

	// Load application config (index backend, data dir)
	configStore, err := file.NewStore("")
	if err != nil {
		logger.Error("failed to create config store", zap.Error(err))
		return 1
	}
	cfg, err := configStore.Load()
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return 1
	}

	// Create unified SQLite store for all metadata persistence
	sqliteStore, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		logger.Error("failed to create SQLite store", zap.Error(err))
		return 1
	}
	defer sqliteStore.Close()

	// Get individual store interfaces from unified store
	sourceStore := sqliteStore.SourceStore()
	syncStore := sqliteStore.SyncStateStore()
	docStore := sqliteStore.DocumentStore()

	// Search index: Meilisearch when configured, no-op otherwise
	var indexer driven.Indexer
	if cfg.Index.URL != "" {
		indexer = meili.New(cfg.Index.URL, cfg.Index.APIKey, logger)
	} else {
		logger.Warn("no search index configured, search is disabled")
		indexer = noop.New()
	}
	defer indexer.Close()

	// Auth and connector factories
	tokenProviderFactory := auth.NewFactory(logger)
	connectorFactory := connectors.NewFactory(tokenProviderFactory, logger)

	// Core services
	sourceSvc := services.NewSourceService(
		sourceStore, syncStore, docStore, connectorFactory, indexer, logger)
	syncSvc := services.NewSyncService(
		sourceStore, syncStore, docStore, connectorFactory, indexer, logger)
	searchSvc := services.NewSearchService(indexer)

	// Inject services into CLI commands
	cli.SetServices(&cli.Services{
		Source: sourceSvc,
		Sync:   syncSvc,
		Search: searchSvc,
	})

	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}

// buildLogger creates the process logger. DRIFTSYNC_DEBUG=1 enables
// debug output.
func buildLogger() (*zap.Logger, error) {
	if os.Getenv("DRIFTSYNC_DEBUG") != "" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}
