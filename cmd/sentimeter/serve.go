package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/sentimeter/internal/analysis"
	"github.com/zulandar/sentimeter/internal/batch"
	"github.com/zulandar/sentimeter/internal/db"
	"github.com/zulandar/sentimeter/internal/logging"
	"github.com/zulandar/sentimeter/internal/oracle"
	"github.com/zulandar/sentimeter/internal/server"
	"github.com/zulandar/sentimeter/internal/store"
)

const drainTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the sentiment analysis API server",
		Long:  "Starts the HTTP API for single-text analysis, batch jobs, history and stats. Batches run in the background of this process.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Sentimeter config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides server.port)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	if port > 0 {
		cfg.Server.Port = port
	}

	log, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	classifier, err := oracle.New(ctx, cfg.Oracle, log)
	if err != nil {
		return err
	}

	jobs := store.NewJobStore(gormDB)
	history := store.NewAnalysisStore(gormDB)
	analyzer := analysis.New(classifier, history, log)

	runner, err := batch.NewRunner(batch.RunnerOpts{
		Jobs:     jobs,
		Analyzer: analyzer,
		Backoff:  batch.PolicyFromConfig(cfg.Batch),
		Log:      log,
	})
	if err != nil {
		return err
	}

	sweeper, err := batch.NewSweeper(batch.SweeperOpts{
		Jobs:       jobs,
		StaleAfter: cfg.Batch.StaleAfter,
		Schedule:   cfg.Batch.SweepSchedule,
		Log:        log,
	})
	if err != nil {
		return err
	}
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweeper.Run(ctx)
	}()

	serveErr := server.Start(ctx, server.StartOpts{
		Deps: server.Deps{
			Batches:          runner,
			Reports:          batch.NewReporter(jobs),
			Analyzer:         analyzer,
			History:          history,
			OracleConfigured: oracle.IsConfigured(classifier),
			HistoryLimit:     cfg.History.Limit,
			Log:              log,
		},
		Config: cfg.Server,
		Out:    cmd.OutOrStdout(),
	})
	cancel()
	<-sweepDone

	drainCtx, drainCancel := context.WithTimeout(context.Background(), drainTimeout)
	defer drainCancel()
	if err := runner.Wait(drainCtx); err != nil {
		log.WithError(err).Warn("batch jobs still running at shutdown; the sweeper will fail them on next start")
	}
	return serveErr
}
