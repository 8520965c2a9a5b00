package models

import "time"

// AnalysisRecord is one append-only history entry written for every
// successful classification, single or batch.
type AnalysisRecord struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Text        string     `gorm:"type:text;not null" json:"text"`
	Sentiment   string     `gorm:"size:16;not null;index" json:"sentiment"`
	Score       float64    `gorm:"not null" json:"score"`
	Explanation string     `gorm:"type:text" json:"explanation"`
	Keywords    StringList `gorm:"type:text" json:"keywords"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}
