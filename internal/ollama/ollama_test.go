package ollama

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
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected /api/generate, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"{\"report\":\"R\"}"}`))
	}))
	defer srv.Close()

	got, err := New(srv.URL).Generate(context.Background(), providers.Request{
		Model:             "llava",
		SystemInstruction: "system",
		Prompt:            "prompt",
		Images:            []providers.Image{{Data: "aGVsbG8=", MIMEType: "image/png"}},
		ResponseSchema:    &providers.Schema{Type: "object", Required: []string{"report"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"report":"R"}` {
		t.Errorf("Unexpected response %s", got)
	}

	if captured["stream"] != false {
		t.Errorf("Expected stream=false, got %v", captured["stream"])
	}
	if captured["system"] != "system" {
		t.Errorf("Expected system prompt, got %v", captured["system"])
	}
	images, _ := captured["images"].([]any)
	if len(images) != 1 || images[0] != "aGVsbG8=" {
		t.Errorf("Expected base64 image, got %v", captured["images"])
	}
	format, _ := captured["format"].(map[string]any)
	if format["type"] != "object" {
		t.Errorf("Expected schema format, got %v", captured["format"])
	}
}

func TestGenerateNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Generate(context.Background(), providers.Request{Model: "missing"})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("Expected 404 error, got %v", err)
	}
}

func TestGenerateConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := New(url).Generate(context.Background(), providers.Request{}); err == nil {
		t.Fatal("expected error when server is down")
	}
}
