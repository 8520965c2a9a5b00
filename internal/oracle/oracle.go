// Package oracle classifies text sentiment by delegating to an external
// language model. Providers share one prompt and one response parser so
// every backend yields the same four-field Classification.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentiment is the polarity label returned by the model.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// Valid reports whether s is one of the three accepted labels.
func (s Sentiment) Valid() bool {
	return s == Positive || s == Negative || s == Neutral
}

// Classification is the structured result of one analysis.
type Classification struct {
	Sentiment   Sentiment `json:"sentiment"`
	Score       float64   `json:"score"`
	Explanation string    `json:"explanation"`
	Keywords    []string  `json:"keywords"`
}

// Classifier classifies a single text.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

var (
	// ErrNotConfigured is returned when no API key is available.
	ErrNotConfigured = errors.New("oracle: AI service not configured")
	// ErrEmptyResponse is returned when the model produced no content.
	ErrEmptyResponse = errors.New("oracle: no response from AI")
	// ErrTransport marks failures to reach the provider at all.
	ErrTransport = errors.New("oracle: transport failure")
)

// StatusError is a non-success HTTP status from the provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("oracle: %s error: %d", e.Provider, e.StatusCode)
}

// QuotaExhausted reports whether the provider rejected the call for billing reasons.
func (e *StatusError) QuotaExhausted() bool {
	return e.StatusCode == http.StatusPaymentRequired
}

// RateLimitError is returned when the provider throttled the request.
// RetryAfter is zero when the provider gave no hint.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("oracle: %s rate limit exceeded (retry after %s)", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("oracle: %s rate limit exceeded", e.Provider)
}

// MalformedResponseError is returned when the model output is not a valid
// classification object.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("oracle: invalid AI response format: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// RetryAfter extracts the provider's retry hint from err, or zero.
func RetryAfter(err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}

// Unavailable reports whether err means the provider cannot serve any
// request right now: missing credentials, rejected credentials, exhausted
// quota or an unreachable endpoint. Throttling and bad output are not
// availability failures.
func Unavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrTransport) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusUnauthorized, http.StatusPaymentRequired, http.StatusForbidden:
			return true
		}
	}
	return false
}
