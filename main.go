package main

import (
	"os"

	"github.com/spf13/cobra"

	"sales-dashboard/config"
	"sales-dashboard/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:           "sales-dashboard",
	Short:         "Real-estate sales ingest, dedup and dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		l, err := utils.NewLoggerFor(cfg.Environment, cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger == nil {
			logger = utils.NewLogger()
		}
		logger.Error("%v", err)
		os.Exit(1)
	}
}
