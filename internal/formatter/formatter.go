// package formatter provides functions to export suggestions and enriched
// tracks to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/v04/jukebox/internal/models"
)

// SuggestionsToCSV converts suggestions to CSV format with columns: Title, Artist
func SuggestionsToCSV(suggestions []models.Suggestion) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Title", "Artist"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range suggestions {
		if err := writer.Write([]string{s.Title, s.Artist}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToCSV converts enriched tracks to CSV format with columns: ID, Title, Artist, URI, URL
func TracksToCSV(tracks []models.EnrichedTrack) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Title", "Artist", "URI", "URL"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.CatalogID,
			track.Title,
			track.Artist,
			track.URI,
			track.ExternalURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// SuggestionsToText converts suggestions to a numbered plain text listing
func SuggestionsToText(prompt string, suggestions []models.Suggestion) []byte {
	var buf bytes.Buffer

	if prompt != "" {
		buf.WriteString(fmt.Sprintf("Prompt: %s\n", prompt))
	}
	buf.WriteString(fmt.Sprintf("Suggestions: %d\n\n", len(suggestions)))

	for i, s := range suggestions {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, s.Artist, s.Title))
	}

	return buf.Bytes()
}

// TracksToMarkdown converts enriched tracks to a Markdown listing with links
func TracksToMarkdown(title string, tracks []models.EnrichedTrack) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(tracks)))

	for i, track := range tracks {
		if track.ExternalURL != "" {
			buf.WriteString(fmt.Sprintf("%d. [%s - %s](%s)\n", i+1, track.Artist, track.Title, track.ExternalURL))
		} else {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
		}
	}

	return buf.Bytes()
}
