package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/zulandar/sentimeter/internal/config"
	"github.com/zulandar/sentimeter/internal/logging"
)

func TestNew_Unconfigured(t *testing.T) {
	c, err := New(context.Background(), config.OracleConfig{
		Provider:  config.ProviderGateway,
		APIKeyEnv: "SENTIMETER_UNSET_FOR_TEST",
	}, logging.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if IsConfigured(c) {
		t.Error("IsConfigured() = true, want false without API key")
	}
	if _, err := c.Classify(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Classify error = %v, want ErrNotConfigured", err)
	}
}

func TestNew_Providers(t *testing.T) {
	tests := []struct {
		provider string
		check    func(Classifier) bool
	}{
		{config.ProviderGateway, func(c Classifier) bool { _, ok := c.(*Gateway); return ok }},
		{config.ProviderAnthropic, func(c Classifier) bool { _, ok := c.(*Anthropic); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			c, err := New(context.Background(), config.OracleConfig{Provider: tt.provider, APIKey: "k"}, nil)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if !tt.check(c) {
				t.Errorf("New() returned %T", c)
			}
			if !IsConfigured(c) {
				t.Error("IsConfigured() = false, want true")
			}
		})
	}
}

func TestNew_RateLimitedWrapper(t *testing.T) {
	c, err := New(context.Background(), config.OracleConfig{
		Provider:          config.ProviderGateway,
		APIKey:            "k",
		RequestsPerSecond: 2,
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.(*Limited); !ok {
		t.Errorf("New() returned %T, want *Limited", c)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.OracleConfig{Provider: "openai", APIKey: "k"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestIsConfigured_Nil(t *testing.T) {
	if IsConfigured(nil) {
		t.Error("IsConfigured(nil) = true, want false")
	}
}
