package main

import (
	"context"
	"fmt"

	"sales-dashboard/config"
	"sales-dashboard/services"
	"sales-dashboard/storage"
	"sales-dashboard/utils"
)

// app wires the store and services every command shares.
type app struct {
	store    storage.DocumentStore
	cleaner  *services.Cleaner
	insights *services.InsightService
	session  *services.Session
	uploader *services.Uploader
}

func openStore(ctx context.Context, cfg *config.Config) (storage.DocumentStore, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		return storage.OpenSQLiteStore(ctx, cfg.SQLitePath)
	case "postgres":
		return storage.NewPostgresStore(ctx, cfg.DSN())
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *utils.Logger, status services.StatusFunc) (*app, error) {
	aliases := services.DefaultAliases()
	if cfg.FieldAliasesFile != "" {
		loaded, err := services.LoadAliases(cfg.FieldAliasesFile)
		if err != nil {
			return nil, err
		}
		aliases = loaded
		logger.Info("Field aliases loaded from %s", cfg.FieldAliasesFile)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	cleaner := services.NewCleanerWithAliases(logger, aliases)
	insights := services.NewInsightService(logger, cfg.HistogramBinWidth)

	return &app{
		store:    store,
		cleaner:  cleaner,
		insights: insights,
		session: services.NewSession(store, cleaner, insights, logger, services.SessionOptions{
			Collection:   cfg.Collection,
			FetchTimeout: cfg.FetchTimeout,
			Status:       status,
		}),
		uploader: services.NewUploader(store, cleaner, logger, services.UploaderOptions{
			Collection:  cfg.Collection,
			ChunkSize:   cfg.UploadChunkSize,
			MaxAttempts: cfg.UploadMaxAttempts,
			RetryDelay:  cfg.UploadRetryDelay,
		}),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
