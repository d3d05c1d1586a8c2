// Package semantic implements the external semantic scorer on top of the
// OpenAI chat completions API. The engine only sees the narrow
// recon.SemanticScorer interface, so this implementation is swappable and
// tests run against a deterministic stub instead.
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ledgerlens/backend/internal/domain/recon"
)

const defaultBaseURL = "https://api.openai.com/v1"

const systemPrompt = "You are an expert financial analyst. Decide whether two " +
	"transaction descriptions refer to the same real-world merchant. Respond " +
	"with JSON: {\"confidence\": 0.0-1.0, \"reasoning\": \"...\"}."

// OpenAIScorer scores merchant-text pairs with a chat completion call.
type OpenAIScorer struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Compile-time check that OpenAIScorer implements the engine interface.
var _ recon.SemanticScorer = (*OpenAIScorer)(nil)

// Option customizes the scorer.
type Option func(*OpenAIScorer)

// WithBaseURL overrides the API endpoint (used by tests).
func WithBaseURL(url string) Option {
	return func(s *OpenAIScorer) { s.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *OpenAIScorer) { s.httpClient = c }
}

// NewOpenAIScorer creates a scorer for the given API key and model.
func NewOpenAIScorer(apiKey, model string, opts ...Option) *OpenAIScorer {
	s := &OpenAIScorer{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Score asks the model whether the two snippets name the same merchant.
// Context cancellation and timeouts propagate through the HTTP request; the
// engine treats any error here as ScoringUnavailable and falls back.
func (s *OpenAIScorer) Score(ctx context.Context, a, b string) (recon.SemanticJudgment, error) {
	prompt := fmt.Sprintf("Snippet A: %q\nSnippet B: %q", a, b)

	reqBody, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.1,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return recon.SemanticJudgment{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return recon.SemanticJudgment{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return recon.SemanticJudgment{}, fmt.Errorf("calling OpenAI: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return recon.SemanticJudgment{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return recon.SemanticJudgment{}, fmt.Errorf("OpenAI API error: %s (type: %s)", apiErr.Error.Message, apiErr.Error.Type)
		}
		return recon.SemanticJudgment{}, fmt.Errorf("OpenAI API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return recon.SemanticJudgment{}, fmt.Errorf("parsing response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return recon.SemanticJudgment{}, fmt.Errorf("response contained no choices")
	}

	var judgment recon.SemanticJudgment
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &judgment); err != nil {
		return recon.SemanticJudgment{}, fmt.Errorf("parsing judgment: %w", err)
	}
	if judgment.Confidence < 0 || judgment.Confidence > 1 {
		return recon.SemanticJudgment{}, fmt.Errorf("confidence %v out of range", judgment.Confidence)
	}
	return judgment, nil
}
