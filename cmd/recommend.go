package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/v04/jukebox/internal/formatter"
	"github.com/v04/jukebox/internal/services"
	"github.com/v04/jukebox/internal/shared"
	"github.com/v04/jukebox/internal/ui"
)

// Recommend asks the suggestion model for tracks matching a prompt.
//
// This is the suggestion pipeline without the catalog half: no login, no
// enrichment, just structured model output for quick experimentation.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	prompt := cmd.StringArg("prompt")
	if prompt == "" {
		return fmt.Errorf("%w: a prompt argument is required", shared.ErrInvalidArgument)
	}

	config := r.loadConfig(cmd.String("config"))

	suggester := r.suggester
	if suggester == nil {
		svc, err := services.NewSuggestionService(config.Credentials.Gemini, config.Timeouts.SuggestionTimeout())
		if err != nil {
			return fmt.Errorf("failed to create suggestion client: %w", err)
		}
		suggester = svc
	}

	r.logger.Info("requesting suggestions", "prompt", prompt)

	suggestions, err := suggester.Suggest(ctx, prompt, "", "")
	if err != nil {
		return fmt.Errorf("suggestion request failed: %w", err)
	}

	if outputPath := cmd.String("output"); outputPath != "" {
		csvData, err := formatter.SuggestionsToCSV(suggestions)
		if err != nil {
			return fmt.Errorf("failed to format CSV: %w", err)
		}
		if err := os.WriteFile(outputPath, csvData, 0644); err != nil {
			return fmt.Errorf("failed to write CSV file: %w", err)
		}
		r.writePlain("%s\n", ui.Styles.OK(fmt.Sprintf("✓ Saved %d suggestions to %s", len(suggestions), outputPath)))
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"tracks": suggestions}, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", ui.Styles.Title(fmt.Sprintf("Suggestions for %q", prompt)))
	r.writePlain("%s", formatter.SuggestionsToText("", suggestions))
	r.writePlain("%s\n", ui.Styles.Help("Run 'jukebox serve' and log in to turn these into a playlist."))

	return nil
}

// Health checks a running jukebox server's root endpoint and reports its state.
func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	baseURL := cmd.String("url")
	if baseURL == "" {
		config := r.loadConfig(cmd.String("config"))
		baseURL = "http://" + config.Server.Addr()
	}
	baseURL = strings.TrimRight(baseURL, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.writePlain("%s\n", ui.Styles.Err(fmt.Sprintf("✗ Server unreachable at %s", baseURL)))
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	var status struct {
		Status        string `json:"status"`
		Service       string `json:"service"`
		Authenticated bool   `json:"authenticated"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("unreadable health response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || status.Status != "ok" {
		r.writePlain("%s\n", ui.Styles.Err(fmt.Sprintf("✗ Server unhealthy (HTTP %d)", resp.StatusCode)))
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}

	r.writePlain("%s\n", ui.Styles.OK(fmt.Sprintf("✓ %s healthy at %s", status.Service, baseURL)))
	return nil
}
