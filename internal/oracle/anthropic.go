package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/zulandar/sentimeter/internal/config"
)

// Anthropic classifies with Claude via the Anthropic Messages API.
type Anthropic struct {
	client      anthropic.Client
	configured  bool
	model       string
	temperature float64
	maxTokens   int64
	timeout     time.Duration
}

// NewAnthropic returns a Claude-backed classifier. Extra request options are
// appended after the configured key and base URL.
func NewAnthropic(cfg config.OracleConfig, opts ...option.RequestOption) *Anthropic {
	key := cfg.ResolvedAPIKey()
	reqOpts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &Anthropic{
		client:      anthropic.NewClient(reqOpts...),
		configured:  key != "",
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   int64(cfg.MaxTokens),
		timeout:     cfg.Timeout,
	}
}

// Classify implements Classifier.
func (a *Anthropic) Classify(ctx context.Context, text string) (Classification, error) {
	if !a.configured {
		return Classification{}, ErrNotConfigured
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(a.temperature),
		System:      []anthropic.TextBlockParam{{Text: SystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(UserPrompt(text))),
		},
	})
	if err != nil {
		return Classification{}, mapAnthropicError(err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return Classification{}, ErrEmptyResponse
	}
	return ParseResponse(sb.String())
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if apiErr.StatusCode == http.StatusTooManyRequests {
		var retry time.Duration
		if apiErr.Response != nil {
			retry = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
		}
		return &RateLimitError{Provider: "anthropic", RetryAfter: retry}
	}
	return &StatusError{Provider: "anthropic", StatusCode: apiErr.StatusCode, Body: truncate(apiErr.Error(), 512)}
}
