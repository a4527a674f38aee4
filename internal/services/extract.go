package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/v04/jukebox/internal/models"
	"github.com/v04/jukebox/internal/shared"
)

// ExtractJSON isolates the JSON payload embedded in free-form model output.
//
// Known wrapper markers (code fences) are stripped, then the substring between
// the first opening brace or bracket and the last matching closer is excised.
// The payload is returned verbatim; validity is the caller's concern.
func ExtractJSON(text string) (string, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	objStart := strings.Index(cleaned, "{")
	arrStart := strings.Index(cleaned, "[")

	start, closer := objStart, "}"
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start, closer = arrStart, "]"
	}

	if start == -1 {
		return "", fmt.Errorf("%w: no JSON payload found", shared.ErrMalformedSuggestion)
	}

	end := strings.LastIndex(cleaned, closer)
	if end <= start {
		return "", fmt.Errorf("%w: unterminated JSON payload", shared.ErrMalformedSuggestion)
	}

	return cleaned[start : end+1], nil
}

// ParseSuggestions recovers the suggestion list from raw model output.
//
// Accepts either {"tracks": [...]} or a bare array. The parse is strict: a
// payload that fails to unmarshal is rejected, never repaired. Elements with
// an empty title or artist are dropped; if nothing survives the filter the
// whole response is treated as malformed so callers never receive
// partially-typed records.
func ParseSuggestions(text string) ([]models.Suggestion, error) {
	payload, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var parsed []models.Suggestion

	if strings.HasPrefix(payload, "[") {
		if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrMalformedSuggestion, err)
		}
	} else {
		var wrapper struct {
			Tracks []models.Suggestion `json:"tracks"`
		}
		if err := json.Unmarshal([]byte(payload), &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrMalformedSuggestion, err)
		}
		parsed = wrapper.Tracks
	}

	suggestions := make([]models.Suggestion, 0, len(parsed))
	for _, s := range parsed {
		if strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.Artist) == "" {
			continue
		}
		suggestions = append(suggestions, s)
	}

	if len(suggestions) == 0 {
		return nil, fmt.Errorf("%w: no usable suggestions in response", shared.ErrMalformedSuggestion)
	}

	return suggestions, nil
}
