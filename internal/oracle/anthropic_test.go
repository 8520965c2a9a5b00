package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zulandar/sentimeter/internal/config"
)

func anthropicServer(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q, want /v1/messages", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("X-Api-Key = %q, want test-key", got)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(status)
			w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude-sonnet-4-20250514",
			"stop_reason": "end_turn",
			"content":     []map[string]string{{"type": "text", "text": text}},
			"usage":       map[string]int{"input_tokens": 10, "output_tokens": 20},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testAnthropic(url string) *Anthropic {
	return NewAnthropic(config.OracleConfig{
		BaseURL:     url + "/",
		APIKey:      "test-key",
		Model:       "claude-sonnet-4-20250514",
		Temperature: 0.3,
		MaxTokens:   256,
		Timeout:     5 * time.Second,
	})
}

func TestAnthropic_Classify(t *testing.T) {
	srv := anthropicServer(t, http.StatusOK, `{"sentiment":"negative","score":0.77,"explanation":"Complaint.","keywords":["broken"]}`)

	got, err := testAnthropic(srv.URL).Classify(context.Background(), "It arrived broken")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Sentiment != Negative || got.Score != 0.77 {
		t.Errorf("Classify() = %+v, want negative/0.77", got)
	}
	if len(got.Keywords) != 1 || got.Keywords[0] != "broken" {
		t.Errorf("Keywords = %v, want [broken]", got.Keywords)
	}
}

func TestAnthropic_RateLimited(t *testing.T) {
	srv := anthropicServer(t, http.StatusTooManyRequests, "")

	_, err := testAnthropic(srv.URL).Classify(context.Background(), "x")
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("error = %v, want *RateLimitError", err)
	}
	if rl.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", rl.RetryAfter)
	}
}

func TestAnthropic_NotConfigured(t *testing.T) {
	a := NewAnthropic(config.OracleConfig{APIKeyEnv: "SENTIMETER_UNSET_FOR_TEST"})
	if _, err := a.Classify(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}
