package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"sales-dashboard/services"
	"sales-dashboard/sources/spreadsheet"
)

var uploadCmd = &cobra.Command{
	Use:   "upload --file <sales.xlsx>",
	Short: "Normalize a sales spreadsheet and upsert it into the store",
	Long: `Reads an .xlsx or .csv export, normalizes every row and writes the valid
sales to the store in atomic chunks keyed by fingerprint. Re-uploading the
same file overwrites instead of duplicating.`,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringP("file", "f", "", "spreadsheet to upload (.xlsx or .csv)")
	_ = uploadCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path, _ := cmd.Flags().GetString("file")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	rows, err := spreadsheet.Parse(filepath.Base(path), data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s contains no data rows", path)
	}
	logger.Info("Parsed %d rows from %s", len(rows), path)

	a, err := newApp(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	res, err := a.uploader.Upload(ctx, rows, func(p services.Progress) {
		fmt.Fprintf(out, "\rUploading... %3.0f%% (%d/%d)", p.Percent, p.Processed, p.Total)
	})
	fmt.Fprintln(out)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Uploaded %d valid sales from %d rows (run %s)\n", res.Uploaded, res.Total, res.RunID)
	fmt.Fprintf(out, "Skipped: %d bad date | %d bad price | %d before 2001\n",
		res.Stats.BadDate, res.Stats.BadPrice, res.Stats.TooOld)
	return nil
}
