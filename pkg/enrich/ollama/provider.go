package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vibe-curation-be/pkg/enrich"
)

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

var _ enrich.Provider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llama3"
	}
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			// The orchestrator enforces its own (much shorter) deadline via
			// ctx; this is only a hard upper bound for stray calls.
			Timeout: 30 * time.Second,
		},
	}
}

const systemPrompt = `You turn a user's free-text image "vibe" into a compact search query.
Respond with STRICT JSON only, no prose, in the shape:
{"query": "space separated keywords", "tags": ["descriptive", "tags"]}
Keep the query under 12 words. Prefer concrete visual vocabulary (colors, moods, composition).`

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

func (o *OllamaProvider) Refine(ctx context.Context, text string, keptTitles []string) (*enrich.Result, error) {
	var user strings.Builder
	user.WriteString("Vibe text: ")
	user.WriteString(text)
	if len(keptTitles) > 0 {
		user.WriteString("\nTitles the user already liked: ")
		user.WriteString(strings.Join(keptTitles, "; "))
	}

	reqBody := chatRequest{
		Model: o.ModelName,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user.String()},
		},
		Stream: false,
		Format: "json",
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/chat", o.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama enrich error: %s", string(bodyBytes))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return nil, &enrich.MalformedError{Raw: string(bodyBytes)}
	}

	return parseResult(chatResp.Message.Content)
}

// parseResult extracts the JSON object from the model output. Models
// occasionally wrap the JSON in prose even when asked not to, so we cut to
// the outermost braces before decoding.
func parseResult(content string) (*enrich.Result, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, &enrich.MalformedError{Raw: content}
	}

	var result enrich.Result
	if err := json.Unmarshal([]byte(content[start:end+1]), &result); err != nil {
		return nil, &enrich.MalformedError{Raw: content}
	}
	result.Query = strings.TrimSpace(result.Query)
	return &result, nil
}
