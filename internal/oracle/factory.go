package oracle

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zulandar/sentimeter/internal/config"
)

// Unconfigured is used when no API key is available. Every call fails with
// ErrNotConfigured so the service can still start and report the problem.
type Unconfigured struct{}

// Classify implements Classifier.
func (Unconfigured) Classify(context.Context, string) (Classification, error) {
	return Classification{}, ErrNotConfigured
}

// IsConfigured reports whether c can reach a provider at all.
func IsConfigured(c Classifier) bool {
	_, missing := c.(Unconfigured)
	return c != nil && !missing
}

// New builds the classifier selected by cfg.Provider, wrapped in a shared
// rate limiter when requests_per_second is set.
func New(ctx context.Context, cfg config.OracleConfig, log logrus.FieldLogger) (Classifier, error) {
	fields := logrus.Fields{"provider": cfg.Provider, "model": cfg.Model}
	if cfg.ResolvedAPIKey() == "" {
		if log != nil {
			log.WithFields(fields).WithField("env", cfg.APIKeyEnv).Warn("oracle API key is not configured")
		}
		return Unconfigured{}, nil
	}

	var c Classifier
	switch cfg.Provider {
	case config.ProviderGateway, "":
		c = NewGateway(cfg, nil)
	case config.ProviderAnthropic:
		c = NewAnthropic(cfg)
	case config.ProviderGemini:
		g, err := NewGemini(ctx, cfg)
		if errors.Is(err, ErrNotConfigured) {
			return Unconfigured{}, nil
		}
		if err != nil {
			return nil, err
		}
		c = g
	default:
		return nil, fmt.Errorf("oracle: unknown provider %q", cfg.Provider)
	}

	if cfg.RequestsPerSecond > 0 {
		c = NewLimited(c, cfg.RequestsPerSecond)
		fields["requests_per_second"] = cfg.RequestsPerSecond
	}
	if log != nil {
		log.WithFields(fields).Info("oracle ready")
	}
	return c, nil
}
