package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/querymorph/querymorph/internal/domain"
)

// chatServer is a fake OpenAI-compatible chat completion endpoint that
// records the last user message and replies with a fixed string.
func chatServer(t *testing.T, reply string, lastUserMsg *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		for _, m := range req.Messages {
			if m.Role == "user" {
				*lastUserMsg = m.Content
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "test-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": ` + jsonString(reply) + `}, "finish_reason": "stop"}]
		}`))
	}))
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestCompleter_ExpandQuery(t *testing.T) {
	var userMsg string
	server := chatServer(t, "expanded query about felines", &userMsg)
	defer server.Close()

	c := NewCompleter(&CompleterConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	expanded, err := c.ExpandQuery(context.Background(), "cats")
	if err != nil {
		t.Fatalf("ExpandQuery failed: %v", err)
	}
	if expanded != "expanded query about felines" {
		t.Errorf("unexpected expansion: %q", expanded)
	}
	if !strings.Contains(userMsg, "rephrase or expand") {
		t.Errorf("expansion prompt missing instruction, got %q", userMsg)
	}
	if !strings.Contains(userMsg, "cats") {
		t.Errorf("expansion prompt missing original query, got %q", userMsg)
	}
}

func TestCompleter_SynthesizeAnswer(t *testing.T) {
	var userMsg string
	server := chatServer(t, "cats are small carnivores", &userMsg)
	defer server.Close()

	c := NewCompleter(&CompleterConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	answer, err := c.SynthesizeAnswer(context.Background(), "what are cats?", []string{"doc one", "doc two"})
	if err != nil {
		t.Fatalf("SynthesizeAnswer failed: %v", err)
	}
	if answer != "cats are small carnivores" {
		t.Errorf("unexpected answer: %q", answer)
	}
	if !strings.Contains(userMsg, "doc one") || !strings.Contains(userMsg, "doc two") {
		t.Errorf("synthesis prompt missing contexts, got %q", userMsg)
	}
	if !strings.Contains(userMsg, "what are cats?") {
		t.Errorf("synthesis prompt missing question, got %q", userMsg)
	}
}

func TestCompleter_APIErrorWrapsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer server.Close()

	c := NewCompleter(&CompleterConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := c.ExpandQuery(context.Background(), "cats")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
