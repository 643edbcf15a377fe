package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"vibe-curation-be/pkg/enrich"
)

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	resp := chatResponse{Message: chatMessage{Role: "assistant", Content: content}, Done: true}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("encode reply: %v", err)
	}
}

func TestRefineParsesStrictJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s, want /api/chat", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("streaming must be off")
		}
		if req.Format != "json" {
			t.Errorf("format = %q, want json", req.Format)
		}
		chatReply(t, w, `{"query": " moody forest fog ", "tags": ["moody", "forest"]}`)
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "llama3")
	res, err := provider.Refine(context.Background(), "a moody forest", nil)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if res.Query != "moody forest fog" {
		t.Errorf("Query = %q, want trimmed %q", res.Query, "moody forest fog")
	}
	if len(res.Tags) != 2 {
		t.Errorf("Tags = %v, want 2 entries", res.Tags)
	}
}

func TestRefineToleratesProseWrappedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `Sure! Here is the JSON: {"query": "dark coastline", "tags": []} Hope that helps.`)
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "llama3")
	res, err := provider.Refine(context.Background(), "dark coast", nil)
	if err != nil {
		t.Fatalf("Refine: %v", err)
	}
	if res.Query != "dark coastline" {
		t.Errorf("Query = %q, want %q", res.Query, "dark coastline")
	}
}

func TestRefineMalformedOutput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "no braces at all", content: "I cannot help with that."},
		{name: "broken json", content: `{"query": forest}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				chatReply(t, w, tt.content)
			}))
			defer srv.Close()

			provider := NewOllamaProvider(srv.URL, "llama3")
			_, err := provider.Refine(context.Background(), "anything", nil)

			var malformed *enrich.MalformedError
			if !errors.As(err, &malformed) {
				t.Fatalf("err = %v, want MalformedError", err)
			}
		})
	}
}

func TestRefineNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "missing")
	if _, err := provider.Refine(context.Background(), "anything", nil); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestRefineHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := NewOllamaProvider("http://localhost:1", "llama3")
	if _, err := provider.Refine(ctx, "anything", nil); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
