package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/sentimeter/internal/batch"
	"github.com/zulandar/sentimeter/internal/db"
	"github.com/zulandar/sentimeter/internal/models"
	"github.com/zulandar/sentimeter/internal/store"
)

func newStatusCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "status [job-id]",
		Short: "Show batch job status",
		Long:  "Shows one batch job with its per-item results, or lists recent jobs when no id is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, configPath, args, limit)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Sentimeter config file")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of jobs to list")
	return cmd
}

func runStatus(cmd *cobra.Command, configPath string, args []string, limit int) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	reporter := batch.NewReporter(store.NewJobStore(gormDB))
	ctx := context.Background()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		jobs, err := reporter.Recent(ctx, limit)
		if err != nil {
			return err
		}
		printJobList(out, jobs)
		return nil
	}

	job, err := reporter.Status(ctx, args[0])
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("job %s not found", args[0])
	}
	if err != nil {
		return err
	}
	printJob(out, job)
	return nil
}

func printJobList(out io.Writer, jobs []models.BatchJob) {
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No batch jobs.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPROGRESS\tCREATED")
	for _, j := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\n", j.ID, j.Status, j.ProcessedItems, j.TotalItems, j.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
}

func printJob(out io.Writer, job *models.BatchJob) {
	fmt.Fprintf(out, "Job:       %s\n", job.ID)
	fmt.Fprintf(out, "Status:    %s\n", job.Status)
	fmt.Fprintf(out, "Progress:  %d/%d\n", job.ProcessedItems, job.TotalItems)
	fmt.Fprintf(out, "Created:   %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))
	if job.CompletedAt != nil {
		fmt.Fprintf(out, "Completed: %s\n", job.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if job.Error != "" {
		fmt.Fprintf(out, "Error:     %s\n", job.Error)
	}
	if len(job.Results) == 0 {
		return
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSENTIMENT\tSCORE\tTEXT")
	for i, r := range job.Results {
		if !r.Success {
			fmt.Fprintf(w, "%d\tfailed\t-\t%s (%s)\n", i+1, clip(r.Text, 50), r.Error)
			continue
		}
		score := "-"
		if r.Score != nil {
			score = fmt.Sprintf("%.2f", *r.Score)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, r.Sentiment, score, clip(r.Text, 60))
	}
	w.Flush()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
