package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"slidesmith/internal/deck"
	"slidesmith/internal/llm"
	"slidesmith/pkg/prompts"
)

func chatResponse(content string) string {
	resp := map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func slideJSON() string {
	return `{"title":"Better","bullets":["a","b","c","d"],"notes":"Speak up."}`
}

func newTestEngine(t *testing.T, serverURL string) *llm.ChatEngine {
	t.Helper()
	engine, err := NewEngine(Config{APIKey: "test-api-key", Model: "gpt-4o-mini", BaseURL: serverURL + "/"},
		prompts.Default(), llm.Temperatures{Generate: 0.7, Regenerate: 0.8})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Config{Model: "gpt-4o-mini"}); err == nil {
		t.Error("NewClient() should fail without an api key")
	}
}

func TestCompleteRequestShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-api-key" {
			t.Errorf("Authorization = %q", got)
		}

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model          string  `json:"model"`
			Temperature    float64 `json:"temperature"`
			ResponseFormat struct {
				Type       string `json:"type"`
				JSONSchema struct {
					Name   string `json:"name"`
					Strict bool   `json:"strict"`
				} `json:"json_schema"`
			} `json:"response_format"`
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Temperature != 0.8 {
			t.Errorf("temperature = %v, want 0.8", req.Temperature)
		}
		if req.ResponseFormat.Type != "json_schema" || req.ResponseFormat.JSONSchema.Name != "slide" || !req.ResponseFormat.JSONSchema.Strict {
			t.Errorf("response_format = %+v", req.ResponseFormat)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse(slideJSON())))
	}))
	defer server.Close()

	engine := newTestEngine(t, server.URL)
	text, err := engine.RegenerateSlide(context.Background(), llm.RegenerateRequest{Title: "Old", Bullets: []string{"x"}, Notes: "n"})
	if err != nil {
		t.Fatalf("RegenerateSlide() error = %v", err)
	}
	if text.Title != "Better" {
		t.Errorf("Title = %q, want Better", text.Title)
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{name: "rateLimited", statusCode: http.StatusTooManyRequests, body: `{"error":{"message":"slow down","type":"rate_limit"}}`},
		{name: "serverError", statusCode: http.StatusInternalServerError, body: `{"error":{"message":"boom"}}`},
		{name: "emptyContent", statusCode: http.StatusOK, body: chatResponse("")},
		{name: "invalidDeck", statusCode: http.StatusOK, body: chatResponse(`{"slides":[]}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attempts, 1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			engine := newTestEngine(t, server.URL)
			_, err := engine.GenerateDeck(context.Background(), deck.Brief{Topic: "t", Audience: "a", Objective: "o", Situation: "s"})
			if !errors.Is(err, deck.ErrGeneration) {
				t.Errorf("GenerateDeck() error = %v, want ErrGeneration", err)
			}
			if n := atomic.LoadInt32(&attempts); n != 1 {
				t.Errorf("attempts = %d, want 1 (no retry)", n)
			}
		})
	}
}
