package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/sentimeter/internal/analysis"
	"github.com/zulandar/sentimeter/internal/batch"
	"github.com/zulandar/sentimeter/internal/export"
	"github.com/zulandar/sentimeter/internal/ingest"
	"github.com/zulandar/sentimeter/internal/oracle"
	"github.com/zulandar/sentimeter/internal/store"
)

const (
	msgNotConfigured   = "AI service not configured"
	msgEmptyBatch      = "texts array is required and must not be empty"
	msgCreateFailed    = "Failed to create batch job"
	msgEmptyCSV        = "No valid text found in CSV"
	msgTextRequired    = "Text is required"
	msgRateLimited     = "Rate limit exceeded. Please try again later."
	msgCreditsDepleted = "AI credits depleted. Please add credits to continue."
	msgInvalidFormat   = "Invalid AI response format"
	msgAnalyzeFailed   = "Failed to analyze sentiment"
	msgNoResponse      = "No response from AI"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxUploadBytes  = 10 << 20
	defaultJobLimit = 20
)

func registerRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handleHealth)

	api := router.Group("/api")
	api.POST("/analyze", handleAnalyze(deps))
	api.POST("/batches", handleSubmitBatch(deps))
	api.POST("/batches/upload", handleUploadBatch(deps))
	api.GET("/batches", handleListBatches(deps))
	api.GET("/batches/:id", handleBatchStatus(deps))
	api.GET("/batches/:id/export", handleExportBatch(deps))
	api.GET("/history", handleHistory(deps))
	api.GET("/history/export", handleExportHistory(deps))
	api.GET("/stats", handleStats(deps))
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

type analyzeRequest struct {
	Text string `json:"text"`
}

func handleAnalyze(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req analyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
			errorJSON(c, http.StatusBadRequest, msgTextRequired)
			return
		}

		result, err := deps.Analyzer.Analyze(c.Request.Context(), req.Text)
		if err != nil {
			status, msg := analyzeError(err)
			deps.Log.WithError(err).WithField("status", status).Warn("analyze failed")
			errorJSON(c, status, msg)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// analyzeError maps classifier failures onto the single-text API responses.
func analyzeError(err error) (int, string) {
	var (
		rateErr   *oracle.RateLimitError
		statusErr *oracle.StatusError
		formatErr *oracle.MalformedResponseError
	)
	switch {
	case errors.Is(err, analysis.ErrEmptyText):
		return http.StatusBadRequest, msgTextRequired
	case errors.Is(err, oracle.ErrNotConfigured):
		return http.StatusInternalServerError, msgNotConfigured
	case errors.As(err, &rateErr):
		return http.StatusTooManyRequests, msgRateLimited
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests:
		return http.StatusTooManyRequests, msgRateLimited
	case errors.As(err, &statusErr) && statusErr.QuotaExhausted():
		return http.StatusPaymentRequired, msgCreditsDepleted
	case errors.As(err, &formatErr):
		return http.StatusInternalServerError, msgInvalidFormat
	case errors.Is(err, oracle.ErrEmptyResponse):
		return http.StatusInternalServerError, msgNoResponse
	}
	return http.StatusInternalServerError, msgAnalyzeFailed
}

type batchRequest struct {
	Texts []string `json:"texts"`
}

type batchAccepted struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func handleSubmitBatch(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req batchRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.Texts) == 0 {
			errorJSON(c, http.StatusBadRequest, msgEmptyBatch)
			return
		}
		submit(c, deps, req.Texts)
	}
}

func handleUploadBatch(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "file is required")
			return
		}
		if fh.Size > maxUploadBytes {
			errorJSON(c, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		f, err := fh.Open()
		if err != nil {
			errorJSON(c, http.StatusBadRequest, "file could not be read")
			return
		}
		defer f.Close()

		texts, err := ingest.ParseTexts(f)
		if err != nil {
			if errors.Is(err, ingest.ErrNoText) {
				errorJSON(c, http.StatusBadRequest, msgEmptyCSV)
				return
			}
			errorJSON(c, http.StatusBadRequest, "file could not be parsed")
			return
		}
		submit(c, deps, texts)
	}
}

func submit(c *gin.Context, deps Deps, texts []string) {
	if !deps.OracleConfigured {
		errorJSON(c, http.StatusInternalServerError, msgNotConfigured)
		return
	}

	job, err := deps.Batches.Submit(c.Request.Context(), texts)
	if err != nil {
		if errors.Is(err, batch.ErrEmptyBatch) || errors.Is(err, batch.ErrBlankText) {
			errorJSON(c, http.StatusBadRequest, msgEmptyBatch)
			return
		}
		deps.Log.WithError(err).Error("failed to create batch job")
		errorJSON(c, http.StatusInternalServerError, msgCreateFailed)
		return
	}

	c.JSON(http.StatusOK, batchAccepted{
		JobID:   job.ID,
		Status:  string(job.Status),
		Message: "Batch job started. Check status with the job_id.",
	})
}

func handleListBatches(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := queryLimit(c, defaultJobLimit)
		jobs, err := deps.Reports.Recent(c.Request.Context(), limit)
		if err != nil {
			deps.Log.WithError(err).Error("failed to list batch jobs")
			errorJSON(c, http.StatusInternalServerError, "Failed to list batch jobs")
			return
		}
		c.JSON(http.StatusOK, gin.H{"jobs": jobs})
	}
}

func handleBatchStatus(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := deps.Reports.Status(c.Request.Context(), c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, "Job not found")
			return
		}
		if err != nil {
			deps.Log.WithError(err).Error("failed to fetch batch job")
			errorJSON(c, http.StatusInternalServerError, "Failed to fetch batch job")
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func handleExportBatch(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		job, err := deps.Reports.Status(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, "Job not found")
			return
		}
		if err != nil {
			deps.Log.WithError(err).Error("failed to fetch batch job")
			errorJSON(c, http.StatusInternalServerError, "Failed to fetch batch job")
			return
		}
		if !job.Status.Terminal() {
			errorJSON(c, http.StatusConflict, "Job is still processing")
			return
		}

		data, err := export.JobResults(job)
		if err != nil {
			deps.Log.WithError(err).WithField("job_id", id).Error("failed to export batch job")
			errorJSON(c, http.StatusInternalServerError, "Failed to export batch job")
			return
		}
		attachment(c, fmt.Sprintf("batch-%s.xlsx", id), data)
	}
}

func handleHistory(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		recs, err := deps.History.Recent(c.Request.Context(), queryLimit(c, deps.HistoryLimit))
		if err != nil {
			deps.Log.WithError(err).Error("failed to load history")
			errorJSON(c, http.StatusInternalServerError, "Failed to load history")
			return
		}
		c.JSON(http.StatusOK, recs)
	}
}

func handleExportHistory(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		recs, err := deps.History.Recent(c.Request.Context(), queryLimit(c, deps.HistoryLimit))
		if err != nil {
			deps.Log.WithError(err).Error("failed to load history")
			errorJSON(c, http.StatusInternalServerError, "Failed to load history")
			return
		}
		data, err := export.History(recs)
		if err != nil {
			deps.Log.WithError(err).Error("failed to export history")
			errorJSON(c, http.StatusInternalServerError, "Failed to export history")
			return
		}
		attachment(c, "history.xlsx", data)
	}
}

func handleStats(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := deps.History.Stats(c.Request.Context(), queryLimit(c, deps.HistoryLimit))
		if err != nil {
			deps.Log.WithError(err).Error("failed to compute stats")
			errorJSON(c, http.StatusInternalServerError, "Failed to compute stats")
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// queryLimit reads ?limit=N, falling back to def for missing or invalid values.
func queryLimit(c *gin.Context, def int) int {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func attachment(c *gin.Context, name string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}
