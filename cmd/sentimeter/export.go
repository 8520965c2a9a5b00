package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zulandar/sentimeter/internal/db"
	"github.com/zulandar/sentimeter/internal/export"
	"github.com/zulandar/sentimeter/internal/store"
)

func newExportCmd() *cobra.Command {
	var (
		configPath string
		outPath    string
		jobID      string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export analysis history or a batch job to XLSX",
		Long:  "Writes recent analysis history, or the results of one batch job with --job, to an Excel workbook.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, configPath, outPath, jobID, limit)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Sentimeter config file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output .xlsx path (default history.xlsx or batch-<id>.xlsx)")
	cmd.Flags().StringVar(&jobID, "job", "", "export this batch job instead of history")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of history records (default history.limit)")
	return cmd
}

func runExport(cmd *cobra.Command, configPath, outPath, jobID string, limit int) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	ctx := context.Background()
	var data []byte

	if jobID != "" {
		job, err := store.NewJobStore(gormDB).Get(ctx, jobID)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("job %s not found", jobID)
		}
		if err != nil {
			return err
		}
		if !job.Status.Terminal() {
			return fmt.Errorf("job %s is still processing (%d/%d)", jobID, job.ProcessedItems, job.TotalItems)
		}
		if data, err = export.JobResults(job); err != nil {
			return err
		}
		if outPath == "" {
			outPath = fmt.Sprintf("batch-%s.xlsx", jobID)
		}
	} else {
		if limit <= 0 {
			limit = cfg.History.Limit
		}
		recs, err := store.NewAnalysisStore(gormDB).Recent(ctx, limit)
		if err != nil {
			return err
		}
		if data, err = export.History(recs); err != nil {
			return err
		}
		if outPath == "" {
			outPath = "history.xlsx"
		}
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
	return nil
}
