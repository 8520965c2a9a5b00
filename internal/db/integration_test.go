//go:build integration

package db

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/sentimeter/internal/config"
	"github.com/zulandar/sentimeter/internal/models"
)

// mysqlConfig returns connection settings from SENTIMETER_TEST_MYSQL_* or
// skips the test when no server is configured.
func mysqlConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	host := os.Getenv("SENTIMETER_TEST_MYSQL_HOST")
	if host == "" {
		t.Skip("SENTIMETER_TEST_MYSQL_HOST not set")
	}
	cfg := config.DatabaseConfig{
		Driver:   config.DriverMySQL,
		Host:     host,
		Port:     3306,
		User:     os.Getenv("SENTIMETER_TEST_MYSQL_USER"),
		Password: os.Getenv("SENTIMETER_TEST_MYSQL_PASSWORD"),
		Name:     "sentimeter_test",
	}
	if cfg.User == "" {
		cfg.User = "root"
	}
	return cfg
}

func TestIntegration_MySQLMigrateAndRoundTrip(t *testing.T) {
	gormDB, err := Open(mysqlConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer Close(gormDB)

	if err := AutoMigrate(gormDB); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	rec := models.AnalysisRecord{
		Text:      "integration",
		Sentiment: "neutral",
		Score:     0.5,
		Keywords:  models.StringList{"integration"},
	}
	if err := gormDB.Create(&rec).Error; err != nil {
		t.Fatalf("create record: %v", err)
	}
	defer gormDB.Delete(&rec)

	var got models.AnalysisRecord
	if err := gormDB.First(&got, rec.ID).Error; err != nil {
		t.Fatalf("read record: %v", err)
	}
	if len(got.Keywords) != 1 || got.Keywords[0] != "integration" {
		t.Errorf("Keywords = %v, want [integration]", got.Keywords)
	}
}

func TestIntegration_MySQLLargeBatchResults(t *testing.T) {
	gormDB, err := Open(mysqlConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer Close(gormDB)

	if err := AutoMigrate(gormDB); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	const items = 1000
	score := 0.42
	results := make(models.ItemResults, items)
	for i := range results {
		results[i] = models.ItemResult{
			Text:        fmt.Sprintf("review %d: %s", i, strings.Repeat("quite long text ", 10)),
			Sentiment:   "neutral",
			Score:       &score,
			Explanation: strings.Repeat("balanced wording ", 5),
			Keywords:    []string{"review"},
			Success:     true,
		}
	}
	now := time.Now()
	job := models.BatchJob{
		ID:             fmt.Sprintf("it-%d", now.UnixNano()),
		Status:         models.JobCompleted,
		TotalItems:     items,
		ProcessedItems: items,
		Results:        results,
		CompletedAt:    &now,
	}
	if err := gormDB.Create(&job).Error; err != nil {
		t.Fatalf("create job with %d results: %v", items, err)
	}
	defer gormDB.Delete(&job)

	var got models.BatchJob
	if err := gormDB.Where("id = ?", job.ID).First(&got).Error; err != nil {
		t.Fatalf("read job: %v", err)
	}
	if len(got.Results) != items {
		t.Errorf("len(Results) = %d, want %d", len(got.Results), items)
	}
}
