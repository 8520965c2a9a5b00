package oracle

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"
)

// Limited shares one token bucket across every caller of the wrapped
// classifier, so concurrent batches do not multiply the request rate.
type Limited struct {
	next    Classifier
	limiter *rate.Limiter
}

// NewLimited wraps next with a limit of rps requests per second.
func NewLimited(next Classifier, rps float64) *Limited {
	burst := int(math.Ceil(rps))
	if burst < 1 {
		burst = 1
	}
	return &Limited{next: next, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Classify implements Classifier.
func (l *Limited) Classify(ctx context.Context, text string) (Classification, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return Classification{}, fmt.Errorf("oracle: rate limiter: %w", err)
	}
	return l.next.Classify(ctx, text)
}
