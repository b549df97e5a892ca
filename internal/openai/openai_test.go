package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/radassist/internal/providers"
)

func TestGenerate(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected /chat/completions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Expected bearer token, got %s", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"diagnosis\":\"D\"}"}}]}`))
	}))
	defer srv.Close()

	p := New("sk-test", srv.URL+"/")
	got, err := p.Generate(context.Background(), providers.Request{
		Model:             "gpt-4o",
		Temperature:       0.2,
		SystemInstruction: "system",
		Prompt:            "prompt",
		Images:            []providers.Image{{Data: "aGVsbG8=", MIMEType: "image/png"}},
		ResponseSchema:    &providers.Schema{Type: "object"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"diagnosis":"D"}` {
		t.Errorf("Unexpected content %s", got)
	}

	if captured["model"] != "gpt-4o" {
		t.Errorf("Expected model gpt-4o, got %v", captured["model"])
	}
	messages, _ := captured["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("Expected system + user messages, got %d", len(messages))
	}
	raw, _ := json.Marshal(messages[1])
	if !strings.Contains(string(raw), "data:image/png;base64,aGVsbG8=") {
		t.Errorf("Expected image data URL in user message, got %s", raw)
	}
	format, _ := captured["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Errorf("Expected json_schema response format, got %v", format["type"])
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantSub string
	}{
		{name: "non-200", status: http.StatusTooManyRequests, body: "slow down", wantSub: "429"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantSub: "no choices"},
		{name: "bad json", status: http.StatusOK, body: `nope`, wantSub: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New("sk-test", srv.URL).Generate(context.Background(), providers.Request{})
			if err == nil || !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("Expected error containing %q, got %v", tt.wantSub, err)
			}
		})
	}
}

func TestGenerateWithoutKey(t *testing.T) {
	if _, err := New("", "").Generate(context.Background(), providers.Request{}); err == nil {
		t.Fatal("expected error without API key")
	}
}
