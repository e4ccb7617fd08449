package main

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sales-dashboard/httpapi"
	"sales-dashboard/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load sales and serve the dashboard API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "listen host (overrides HTTP_HOST)")
	serveCmd.Flags().Int("port", 0, "listen port (overrides HTTP_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	host := cfg.HTTPHost
	if h, _ := cmd.Flags().GetString("host"); h != "" {
		host = h
	}
	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetInt("port"); p > 0 {
		port = p
	}

	logger.Info("=== Sales Dashboard starting ===")
	logger.Info("Config: store %s | collection %s | fetch timeout %v | chunk %d",
		cfg.StoreDriver, cfg.Collection, cfg.FetchTimeout, cfg.UploadChunkSize)

	a, err := newApp(ctx, cfg, logger, func(stage services.Stage, msg string) {
		logger.Debug("[session] %s: %s", stage, msg)
	})
	if err != nil {
		return err
	}
	defer a.Close()

	// An unreachable or empty store still serves; a later reload or upload fills it.
	if _, err := a.session.Load(ctx); err != nil {
		if errors.Is(err, services.ErrNoData) {
			logger.Warn("No sales data yet. Upload a spreadsheet to get started.")
		} else {
			logger.Error("Initial load failed: %v", err)
		}
	}

	srv := httpapi.NewServer(a.session, a.uploader, logger.Zerolog(), httpapi.Options{
		Host: host,
		Port: port,
	})
	return srv.Start(ctx)
}
