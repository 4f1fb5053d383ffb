package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func writeCompletion(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	payload := map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestCompleteSendsPromptsAndBudget(t *testing.T) {
	var captured chatRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeCompletion(t, w, "  Invoices are documents.  ")
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL, Model: "demo-model"})
	got, err := client.Complete(context.Background(), "system text", "user text", 50)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "Invoices are documents." {
		t.Fatalf("unexpected content %q", got)
	}
	if auth != "Bearer secret" {
		t.Fatalf("unexpected authorization header %q", auth)
	}
	if captured.Model != "demo-model" || captured.MaxTokens != 50 {
		t.Fatalf("unexpected request %+v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Content != "user text" {
		t.Fatalf("unexpected messages %+v", captured.Messages)
	}
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Complete(context.Background(), "s", "u", 10); err == nil {
		t.Fatal("expected missing api key error")
	}
}

func TestCompleteDefaultsToSingleAttempt(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	_, err := client.Complete(context.Background(), "s", "u", 10)
	if err == nil {
		t.Fatal("expected error")
	}
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected http status error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 call, got %d", got)
	}
}

func TestCompleteEmptyContentIncludesSnippet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(t, w, "   ")
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	_, err := client.Complete(context.Background(), "s", "u", 10)
	if err == nil {
		t.Fatal("expected empty content error")
	}
	var emptyErr *emptyContentError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected emptyContentError, got %T", err)
	}
	if emptyErr.FinishReason != "stop" {
		t.Fatalf("unexpected finish reason %q", emptyErr.FinishReason)
	}
	if !strings.Contains(err.Error(), "response_snippet=") {
		t.Fatalf("expected snippet in error, got %v", err)
	}
}

func TestCompleteUsesDeltaContentFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"delta":{"content":"Receipts"}}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	got, err := client.Complete(context.Background(), "s", "u", 10)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "Receipts" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestCompleteUsesLegacyTextFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"text":"Budget"}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	got, err := client.Complete(context.Background(), "s", "u", 10)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "Budget" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestCompleteAPIErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"model not found"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	_, err := client.Complete(context.Background(), "s", "u", 10)
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestCompleteRetriesOn429WithRetryAfter(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		writeCompletion(t, w, "Invoice")
	}))
	defer server.Close()

	var sleeps []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithRetryMaxAttempts(3),
		WithSleeper(func(d time.Duration) { sleeps = append(sleeps, d) }),
	)
	got, err := client.Complete(context.Background(), "s", "u", 10)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "Invoice" {
		t.Fatalf("unexpected content %q", got)
	}
	if len(sleeps) != 1 || sleeps[0] != time.Second {
		t.Fatalf("expected one 1s sleep, got %v", sleeps)
	}
}

func TestCompleteRetriesEmptyContent(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeCompletion(t, w, "")
			return
		}
		writeCompletion(t, w, "Report")
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithRetryMaxAttempts(3),
		WithRetryBackoff(0, 0),
	)
	got, err := client.Complete(context.Background(), "s", "u", 10)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "Report" {
		t.Fatalf("unexpected content %q", got)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL}, WithRetryMaxAttempts(4))
	if _, err := client.Complete(context.Background(), "s", "u", 10); err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected 1 call, got %d", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("unexpected parse result %v %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("expected negative value to be rejected")
	}
	if _, ok := parseRetryAfter(""); ok {
		t.Fatal("expected blank value to be rejected")
	}
}

func TestBackoffDelayCaps(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 4*time.Second))
	if got := client.backoffDelay(1); got != time.Second {
		t.Fatalf("attempt 1: got %v", got)
	}
	if got := client.backoffDelay(2); got != 2*time.Second {
		t.Fatalf("attempt 2: got %v", got)
	}
	if got := client.backoffDelay(5); got != 4*time.Second {
		t.Fatalf("attempt 5: got %v", got)
	}
}
