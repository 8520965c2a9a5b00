package oracle

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not configured", ErrNotConfigured, true},
		{"wrapped not configured", fmt.Errorf("analyze: %w", ErrNotConfigured), true},
		{"transport", fmt.Errorf("%w: connection refused", ErrTransport), true},
		{"unauthorized", &StatusError{Provider: "gateway", StatusCode: 401}, true},
		{"quota", &StatusError{Provider: "gateway", StatusCode: 402}, true},
		{"server error", &StatusError{Provider: "gateway", StatusCode: 500}, false},
		{"rate limit", &RateLimitError{Provider: "gateway"}, false},
		{"malformed", &MalformedResponseError{Err: errors.New("bad")}, false},
		{"empty", ErrEmptyResponse, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unavailable(tt.err); got != tt.want {
				t.Errorf("Unavailable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryAfter(t *testing.T) {
	err := fmt.Errorf("item 3: %w", &RateLimitError{Provider: "gateway", RetryAfter: 2 * time.Second})
	if got := RetryAfter(err); got != 2*time.Second {
		t.Errorf("RetryAfter() = %v, want 2s", got)
	}
	if got := RetryAfter(errors.New("other")); got != 0 {
		t.Errorf("RetryAfter(other) = %v, want 0", got)
	}
}

func TestErrorMessages(t *testing.T) {
	se := &StatusError{Provider: "gateway", StatusCode: 503}
	if !strings.Contains(se.Error(), "503") {
		t.Errorf("StatusError.Error() = %q, want status code", se.Error())
	}
	if se.QuotaExhausted() {
		t.Error("503 should not be quota exhausted")
	}
	if !(&StatusError{StatusCode: 402}).QuotaExhausted() {
		t.Error("402 should be quota exhausted")
	}

	rl := &RateLimitError{Provider: "gemini", RetryAfter: 1500 * time.Millisecond}
	if !strings.Contains(rl.Error(), "retry after 1.5s") {
		t.Errorf("RateLimitError.Error() = %q, want retry hint", rl.Error())
	}

	inner := errors.New("unexpected token")
	me := &MalformedResponseError{Raw: "x", Err: inner}
	if !errors.Is(me, inner) {
		t.Error("MalformedResponseError should unwrap to its cause")
	}
}
