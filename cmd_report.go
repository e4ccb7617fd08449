package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"sales-dashboard/models"
	"sales-dashboard/services"
	"sales-dashboard/storage"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print KPIs and chart data for the stored sales",
	Long: `Loads every stored sale, deduplicates, applies the optional filters and
prints the dashboard. Filters take comma-separated values, e.g.

  report --year 2022,2023 --city Austin --export`,
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringSlice("year", nil, "only include these sale years")
	f.StringSlice("city", nil, "only include these cities")
	f.StringSlice("new-construction", nil, "Yes and/or No")
	f.StringSlice("inside-city-limits", nil, "Yes, No and/or Unknown")
	f.Bool("export", false, "also write the filtered sales to EXPORT_PATH")
	rootCmd.AddCommand(reportCmd)
}

var reportFilterFlags = map[string]services.Dimension{
	"year":               services.DimYear,
	"city":               services.DimCity,
	"new-construction":   services.DimNewConstruction,
	"inside-city-limits": services.DimInsideCityLimits,
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, func(stage services.Stage, msg string) {
		logger.Info("[%s] %s", stage, msg)
	})
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.session.Load(ctx); err != nil {
		return err
	}

	for flag, dim := range reportFilterFlags {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		values, _ := cmd.Flags().GetStringSlice(flag)
		if err := a.session.Clear(dim); err != nil {
			return err
		}
		for _, v := range values {
			if err := a.session.Toggle(dim, strings.TrimSpace(v), true); err != nil {
				return fmt.Errorf("--%s: %w", flag, err)
			}
		}
	}

	a.insights.Print(a.session.Dashboard())

	if export, _ := cmd.Flags().GetBool("export"); export {
		sales := a.session.Filtered()
		w, err := storage.NewCSVWriter(cfg.ExportPath)
		if err != nil {
			return err
		}
		if err := exportSales(w, sales); err != nil {
			return err
		}
		logger.Info("Exported %d sales to %s", len(sales), cfg.ExportPath)
	}
	return nil
}

func exportSales(w storage.SaleWriter, sales []models.Sale) error {
	if err := w.WriteSales(sales); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
