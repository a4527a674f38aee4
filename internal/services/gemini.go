// Gemini implementation of [Suggester] via an OpenAI-compatible completion API.
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/v04/jukebox/internal/models"
	"github.com/v04/jukebox/internal/shared"
)

const (
	defaultSuggestionBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	defaultSuggestionModel   = "gemini-1.5-pro"
	defaultPrompt            = "suggest me music"
)

// SuggestionService sends composed prompts to the generative model and parses
// its output into structured suggestions. The full response is buffered before
// parsing; there is no streaming.
type SuggestionService struct {
	client *openai.Client
	model  string
}

// NewSuggestionService creates a suggestion client from the given credentials.
func NewSuggestionService(cfg shared.GeminiConfig, timeout time.Duration) (*SuggestionService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing gemini api_key", shared.ErrMissingCredentials)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultSuggestionBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultSuggestionModel
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = baseURL
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &SuggestionService{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Suggest composes the user prompt with listening context, requests a single
// completion, and parses the track list out of the response text.
func (s *SuggestionService) Suggest(ctx context.Context, prompt, likedSummary, recentSummary string) ([]models.Suggestion, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: ComposePrompt(prompt, likedSummary, recentSummary),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("suggestion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion response", shared.ErrMalformedSuggestion)
	}

	return ParseSuggestions(resp.Choices[0].Message.Content)
}

// ComposePrompt builds the single request sent to the model: the user's free-text
// prompt, a compact listening-context summary, and the output format instruction.
func ComposePrompt(prompt, likedSummary, recentSummary string) string {
	if strings.TrimSpace(prompt) == "" {
		prompt = defaultPrompt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User prompt: %s\n", prompt)
	fmt.Fprintf(&b, "Liked: %s\n", likedSummary)
	fmt.Fprintf(&b, "Recent: %s\n", recentSummary)
	b.WriteString("Return a JSON object: { tracks: [{ title: string, artist: string }] }")

	return b.String()
}
