package models

import "time"

// JobStatus is the lifecycle state of a BatchJob.
type JobStatus string

const (
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// IsValid reports whether s is a known status.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobProcessing, JobCompleted, JobFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// BatchJob tracks one bulk-analysis request from submission to completion.
type BatchJob struct {
	ID             string      `gorm:"primaryKey;size:36" json:"id"`
	Status         JobStatus   `gorm:"size:16;default:processing;index;not null" json:"status"`
	TotalItems     int         `gorm:"not null" json:"total_items"`
	ProcessedItems int         `gorm:"default:0;not null" json:"processed_items"`
	Results        ItemResults `json:"results"`
	Error          string      `gorm:"type:text" json:"error,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `gorm:"index" json:"updated_at"`
	CompletedAt    *time.Time  `json:"completed_at"`
}

// ItemResult is the outcome of classifying one text within a batch.
type ItemResult struct {
	Text        string   `json:"text"`
	Sentiment   string   `json:"sentiment,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Keywords    []string `json:"keywords"`
	Success     bool     `json:"success"`
	Error       string   `json:"error,omitempty"`
}

// ItemResults is stored as a JSON array column.
type ItemResults []ItemResult
