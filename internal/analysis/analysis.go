// Package analysis runs one synchronous classification and records it in
// the analysis history.
package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zulandar/sentimeter/internal/logging"
	"github.com/zulandar/sentimeter/internal/models"
	"github.com/zulandar/sentimeter/internal/oracle"
)

// ErrEmptyText is returned for blank input.
var ErrEmptyText = errors.New("analysis: text is required")

// Recorder appends history entries.
type Recorder interface {
	Record(ctx context.Context, rec *models.AnalysisRecord) error
}

// Analyzer classifies a text and records successful results.
type Analyzer struct {
	oracle  oracle.Classifier
	history Recorder
	log     logrus.FieldLogger
}

// New returns an Analyzer. history may be nil to skip recording.
func New(c oracle.Classifier, history Recorder, log logrus.FieldLogger) *Analyzer {
	return &Analyzer{oracle: c, history: history, log: logging.OrDiscard(log)}
}

// Analyze classifies text. The history write is best effort: a failure is
// logged and the classification is still returned.
func (a *Analyzer) Analyze(ctx context.Context, text string) (oracle.Classification, error) {
	if strings.TrimSpace(text) == "" {
		return oracle.Classification{}, ErrEmptyText
	}

	start := time.Now()
	c, err := a.oracle.Classify(ctx, text)
	if err != nil {
		return oracle.Classification{}, err
	}
	if c.Keywords == nil {
		c.Keywords = []string{}
	}
	a.log.WithFields(logrus.Fields{
		"sentiment": c.Sentiment,
		"score":     c.Score,
		"duration":  time.Since(start).String(),
	}).Debug("text classified")

	if a.history != nil {
		rec := &models.AnalysisRecord{
			Text:        text,
			Sentiment:   string(c.Sentiment),
			Score:       c.Score,
			Explanation: c.Explanation,
			Keywords:    models.StringList(c.Keywords),
		}
		if err := a.history.Record(ctx, rec); err != nil {
			a.log.WithError(err).WithField("text", preview(text)).Error("failed to store analysis")
		}
	}
	return c, nil
}

// preview shortens text for log lines.
func preview(text string) string {
	r := []rune(text)
	if len(r) <= 50 {
		return text
	}
	return string(r[:50]) + "..."
}
