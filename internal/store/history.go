package store

import (
	"context"
	"fmt"

	"github.com/zulandar/sentimeter/internal/models"
	"gorm.io/gorm"
)

// MaxHistoryLimit caps how many records a single history query returns.
const MaxHistoryLimit = 500

// Stats summarizes a window of analysis history.
type Stats struct {
	Total    int     `json:"total"`
	Positive int     `json:"positive"`
	Negative int     `json:"negative"`
	Neutral  int     `json:"neutral"`
	AvgScore float64 `json:"avg_score"`
}

// AnalysisStore appends and reads AnalysisRecord rows. Records are never
// updated or deleted.
type AnalysisStore struct {
	db *gorm.DB
}

// NewAnalysisStore returns an AnalysisStore backed by db.
func NewAnalysisStore(db *gorm.DB) *AnalysisStore {
	return &AnalysisStore{db: db}
}

// Record appends rec.
func (s *AnalysisStore) Record(ctx context.Context, rec *models.AnalysisRecord) error {
	if rec.Keywords == nil {
		rec.Keywords = models.StringList{}
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("store: record analysis: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *AnalysisStore) Recent(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	limit = clampLimit(limit)
	var recs []models.AnalysisRecord
	err := s.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("store: recent analyses: %w", err)
	}
	return recs, nil
}

// Stats summarizes the most recent limit records.
func (s *AnalysisStore) Stats(ctx context.Context, limit int) (Stats, error) {
	recs, err := s.Recent(ctx, limit)
	if err != nil {
		return Stats{}, err
	}
	return Summarize(recs), nil
}

// Summarize counts sentiments and averages scores over recs.
func Summarize(recs []models.AnalysisRecord) Stats {
	var st Stats
	var sum float64
	for _, r := range recs {
		st.Total++
		sum += r.Score
		switch r.Sentiment {
		case "positive":
			st.Positive++
		case "negative":
			st.Negative++
		case "neutral":
			st.Neutral++
		}
	}
	if st.Total > 0 {
		st.AvgScore = sum / float64(st.Total)
	}
	return st
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
