package oracle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingClassifier struct{ calls atomic.Int32 }

func (c *countingClassifier) Classify(context.Context, string) (Classification, error) {
	c.calls.Add(1)
	return Classification{Sentiment: Neutral, Score: 0.5, Keywords: []string{}}, nil
}

func TestLimited_PassesThrough(t *testing.T) {
	inner := &countingClassifier{}
	l := NewLimited(inner, 1000)
	for i := 0; i < 5; i++ {
		if _, err := l.Classify(context.Background(), "x"); err != nil {
			t.Fatalf("Classify: %v", err)
		}
	}
	if got := inner.calls.Load(); got != 5 {
		t.Errorf("calls = %d, want 5", got)
	}
}

func TestLimited_Throttles(t *testing.T) {
	inner := &countingClassifier{}
	l := NewLimited(inner, 20)

	start := time.Now()
	for i := 0; i < 25; i++ {
		if _, err := l.Classify(context.Background(), "x"); err != nil {
			t.Fatalf("Classify: %v", err)
		}
	}
	// 20 burst tokens, then 5 more at 20/s.
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Errorf("elapsed = %v, want throttling to at least 200ms", elapsed)
	}
}

func TestLimited_ContextCancelled(t *testing.T) {
	inner := &countingClassifier{}
	l := NewLimited(inner, 0.001)
	l.Classify(context.Background(), "drain burst")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Classify(ctx, "x")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}
