package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/sentimeter/internal/analysis"
	"github.com/zulandar/sentimeter/internal/db"
	"github.com/zulandar/sentimeter/internal/logging"
	"github.com/zulandar/sentimeter/internal/oracle"
	"github.com/zulandar/sentimeter/internal/store"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		configPath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <text>",
		Short: "Classify a single text",
		Long:  "Sends one text to the configured AI provider and prints its sentiment, score, explanation and keywords. The result is recorded in history.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, configPath, strings.Join(args, " "), asJSON)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Sentimeter config file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw classification as JSON")
	return cmd
}

func runAnalyze(cmd *cobra.Command, configPath, text string, asJSON bool) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	log, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	ctx := context.Background()
	classifier, err := oracle.New(ctx, cfg.Oracle, log)
	if err != nil {
		return err
	}

	result, err := analysis.New(classifier, store.NewAnalysisStore(gormDB), log).Analyze(ctx, text)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	return printClassification(cmd, result, asJSON)
}

func printClassification(cmd *cobra.Command, c oracle.Classification, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}
	fmt.Fprintf(out, "Sentiment:   %s (%.2f)\n", c.Sentiment, c.Score)
	fmt.Fprintf(out, "Explanation: %s\n", c.Explanation)
	if len(c.Keywords) > 0 {
		fmt.Fprintf(out, "Keywords:    %s\n", strings.Join(c.Keywords, ", "))
	}
	return nil
}
