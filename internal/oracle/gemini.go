package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/zulandar/sentimeter/internal/config"
	"google.golang.org/genai"
)

// Gemini classifies with Google's Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
}

// NewGemini returns a Gemini-backed classifier. Without an API key it
// returns ErrNotConfigured.
func NewGemini(ctx context.Context, cfg config.OracleConfig) (*Gemini, error) {
	key := cfg.ResolvedAPIKey()
	if key == "" {
		return nil, ErrNotConfigured
	}
	cc := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("oracle: init gemini client: %w", err)
	}
	return &Gemini{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxTokens),
		timeout:     cfg.Timeout,
	}, nil
}

// Classify implements Classifier.
func (g *Gemini) Classify(ctx context.Context, text string) (Classification, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	gc := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(g.temperature),
		MaxOutputTokens:   g.maxTokens,
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}
	contents := []*genai.Content{genai.NewContentFromText(UserPrompt(text), genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, gc)
	if err != nil {
		return Classification{}, mapGeminiError(err)
	}

	var sb strings.Builder
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand == nil || cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part != nil && part.Text != "" {
					sb.WriteString(part.Text)
				}
			}
			if sb.Len() > 0 {
				break
			}
		}
	}
	if sb.Len() == 0 {
		return Classification{}, ErrEmptyResponse
	}
	return ParseResponse(sb.String())
}

var geminiRetryPattern = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// geminiRetryDelay parses the retry hint embedded in a RESOURCE_EXHAUSTED message.
func geminiRetryDelay(msg string) time.Duration {
	m := geminiRetryPattern.FindStringSubmatch(msg)
	if len(m) < 2 {
		return 0
	}
	secs, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if apiErr.Code == http.StatusTooManyRequests {
		return &RateLimitError{Provider: "gemini", RetryAfter: geminiRetryDelay(apiErr.Message)}
	}
	return &StatusError{Provider: "gemini", StatusCode: apiErr.Code, Body: truncate(apiErr.Message, 512)}
}
