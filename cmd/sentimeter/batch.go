package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/sentimeter/internal/ingest"
	"github.com/zulandar/sentimeter/internal/models"
	"golang.org/x/term"
)

const defaultServerURL = "http://localhost:8080"

func newBatchCmd() *cobra.Command {
	var (
		serverURL string
		interval  time.Duration
		noWait    bool
	)

	cmd := &cobra.Command{
		Use:   "batch <file.csv>",
		Short: "Submit a CSV of texts as a background batch job",
		Long:  "Reads one text per line from a CSV file, submits it to a running Sentimeter server and polls the job until it finishes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args[0], serverURL, interval, noWait)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL, "base URL of the Sentimeter server")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "how often to poll job status")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "print the job id and exit without polling")
	return cmd
}

func runBatch(cmd *cobra.Command, path, serverURL string, interval time.Duration, noWait bool) error {
	texts, err := ingest.ParseFile(path)
	if err != nil {
		return err
	}
	if interval <= 0 {
		return fmt.Errorf("--interval must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := newAPIClient(serverURL)
	accepted, err := client.SubmitBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("submit batch: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Submitted %d texts as job %s\n", len(texts), accepted.JobID)
	if noWait {
		return nil
	}

	job, err := pollJob(ctx, client, accepted.JobID, interval, newProgressPrinter(out))
	if err != nil {
		return err
	}
	printJobSummary(out, job)
	if job.Status == models.JobFailed {
		return fmt.Errorf("job %s failed: %s", job.ID, job.Error)
	}
	return nil
}

type statusFetcher interface {
	BatchStatus(ctx context.Context, id string) (*models.BatchJob, error)
}

// pollJob fetches the job every interval until it reaches a terminal status.
func pollJob(ctx context.Context, client statusFetcher, id string, interval time.Duration, progress func(*models.BatchJob)) (*models.BatchJob, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		job, err := client.BatchStatus(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("poll job %s: %w", id, err)
		}
		progress(job)
		if job.Status.Terminal() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// newProgressPrinter redraws a single line on terminals and prints one
// line per change otherwise.
func newProgressPrinter(out io.Writer) func(*models.BatchJob) {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	last := -1
	return func(job *models.BatchJob) {
		line := fmt.Sprintf("Processing: %d/%d (%s)", job.ProcessedItems, job.TotalItems, job.Status)
		if tty {
			fmt.Fprintf(out, "\r%s", line)
			if job.Status.Terminal() {
				fmt.Fprintln(out)
			}
			return
		}
		if job.ProcessedItems != last || job.Status.Terminal() {
			fmt.Fprintln(out, line)
			last = job.ProcessedItems
		}
	}
}

func printJobSummary(out io.Writer, job *models.BatchJob) {
	var ok, failed int
	counts := map[string]int{}
	for _, r := range job.Results {
		if r.Success {
			ok++
			counts[r.Sentiment]++
		} else {
			failed++
		}
	}
	fmt.Fprintf(out, "Job %s %s: %d succeeded, %d failed\n", job.ID, job.Status, ok, failed)
	if ok > 0 {
		fmt.Fprintf(out, "  positive: %d  negative: %d  neutral: %d\n", counts["positive"], counts["negative"], counts["neutral"])
	}
	if job.Error != "" {
		fmt.Fprintf(out, "  error: %s\n", job.Error)
	}
}
