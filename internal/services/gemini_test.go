package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/v04/jukebox/internal/shared"
)

func completionResponse(content string) map[string]any {
	return map[string]any{
		"id":     "cmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}

func newSuggestionServer(t *testing.T, handler http.HandlerFunc) *SuggestionService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewSuggestionService(shared.GeminiConfig{
		APIKey:  "test_key",
		BaseURL: server.URL,
		Model:   "test-model",
	}, time.Second)
	if err != nil {
		t.Fatalf("failed to create suggestion service: %v", err)
	}

	return svc
}

func TestComposePrompt(t *testing.T) {
	t.Run("Includes Context Summaries", func(t *testing.T) {
		prompt := ComposePrompt("rainy night drive", "Song A - Artist A", "Song B - Artist B")

		for _, want := range []string{
			"User prompt: rainy night drive",
			"Liked: Song A - Artist A",
			"Recent: Song B - Artist B",
			"tracks",
		} {
			if !strings.Contains(prompt, want) {
				t.Errorf("prompt should contain %q:\n%s", want, prompt)
			}
		}
	})

	t.Run("Empty Prompt Falls Back", func(t *testing.T) {
		prompt := ComposePrompt("   ", "", "")
		if !strings.Contains(prompt, "User prompt: suggest me music") {
			t.Errorf("expected fallback prompt, got:\n%s", prompt)
		}
	})
}

func TestSuggestionService(t *testing.T) {
	ctx := context.Background()

	t.Run("NewSuggestionService", func(t *testing.T) {
		t.Run("Missing API Key", func(t *testing.T) {
			_, err := NewSuggestionService(shared.GeminiConfig{}, 0)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Defaults", func(t *testing.T) {
			svc, err := NewSuggestionService(shared.GeminiConfig{APIKey: "k"}, 0)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.model != defaultSuggestionModel {
				t.Errorf("expected default model, got %s", svc.model)
			}
		})
	})

	t.Run("Suggest", func(t *testing.T) {
		t.Run("Parses Fenced Output", func(t *testing.T) {
			svc := newSuggestionServer(t, func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
					t.Errorf("expected chat completions path, got %s", r.URL.Path)
				}

				var req struct {
					Model    string `json:"model"`
					Messages []struct {
						Content string `json:"content"`
					} `json:"messages"`
				}
				json.NewDecoder(r.Body).Decode(&req)

				if req.Model != "test-model" {
					t.Errorf("expected model test-model, got %s", req.Model)
				}
				if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "rainy night drive") {
					t.Errorf("expected composed prompt in single message, got %+v", req.Messages)
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(completionResponse(
					"```json\n{\"tracks\": [{\"title\": \"Night Drive\", \"artist\": \"X\"}]}\n```",
				))
			})

			suggestions, err := svc.Suggest(ctx, "rainy night drive", "liked summary", "recent summary")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(suggestions) != 1 || suggestions[0].Title != "Night Drive" {
				t.Errorf("unexpected suggestions %+v", suggestions)
			}
		})

		t.Run("Malformed Output", func(t *testing.T) {
			svc := newSuggestionServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(completionResponse("I refuse to answer with JSON."))
			})

			_, err := svc.Suggest(ctx, "anything", "", "")
			if !errors.Is(err, shared.ErrMalformedSuggestion) {
				t.Errorf("expected ErrMalformedSuggestion, got %v", err)
			}
		})

		t.Run("Upstream Failure", func(t *testing.T) {
			svc := newSuggestionServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			})

			if _, err := svc.Suggest(ctx, "anything", "", ""); err == nil {
				t.Error("expected error from upstream failure")
			}
		})
	})
}
