package db

import (
	"fmt"

	"github.com/zulandar/sentimeter/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model managed by Sentimeter.
func AllModels() []interface{} {
	return []interface{}{
		&models.BatchJob{},
		&models.AnalysisRecord{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
