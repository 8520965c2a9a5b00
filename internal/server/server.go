// Package server exposes the analysis and batch APIs over HTTP.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/zulandar/sentimeter/internal/config"
	"github.com/zulandar/sentimeter/internal/logging"
	"github.com/zulandar/sentimeter/internal/models"
	"github.com/zulandar/sentimeter/internal/oracle"
	"github.com/zulandar/sentimeter/internal/store"
)

// BatchSubmitter starts background batch jobs.
type BatchSubmitter interface {
	Submit(ctx context.Context, texts []string) (*models.BatchJob, error)
}

// StatusReporter reads batch job state.
type StatusReporter interface {
	Status(ctx context.Context, id string) (*models.BatchJob, error)
	Recent(ctx context.Context, limit int) ([]models.BatchJob, error)
}

// TextAnalyzer classifies a single text synchronously.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string) (oracle.Classification, error)
}

// HistoryReader serves the analysis history window.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]models.AnalysisRecord, error)
	Stats(ctx context.Context, limit int) (store.Stats, error)
}

// Deps are the services behind the routes.
type Deps struct {
	Batches          BatchSubmitter
	Reports          StatusReporter
	Analyzer         TextAnalyzer
	History          HistoryReader
	OracleConfigured bool
	HistoryLimit     int
	Log              logrus.FieldLogger
}

func (d Deps) validate() error {
	switch {
	case d.Batches == nil:
		return fmt.Errorf("server: batch runner is required")
	case d.Reports == nil:
		return fmt.Errorf("server: status reporter is required")
	case d.Analyzer == nil:
		return fmt.Errorf("server: analyzer is required")
	case d.History == nil:
		return fmt.Errorf("server: history store is required")
	}
	return nil
}

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Deps
	Config config.ServerConfig
	Out    io.Writer
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	deps.Log = logging.OrDiscard(deps.Log)
	if deps.HistoryLimit <= 0 {
		deps.HistoryLimit = 50
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(deps.Log))
	router.Use(corsMiddleware(corsOrigins))

	registerRoutes(router, deps)
	return router, nil
}

// Start launches the API server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	router, err := NewRouter(opts.Deps, opts.Config.CORSOrigins)
	if err != nil {
		return err
	}
	if opts.Config.Port <= 0 {
		opts.Config.Port = 8080
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Config.Port),
		Handler:      router,
		ReadTimeout:  opts.Config.ReadTimeout,
		WriteTimeout: opts.Config.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Sentimeter API listening on http://localhost:%d\n", opts.Config.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
