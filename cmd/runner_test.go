package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
	"github.com/v04/jukebox/internal/models"
	"github.com/v04/jukebox/internal/shared"
	tu "github.com/v04/jukebox/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			catalog := &tu.MockCatalog{}
			suggester := &tu.MockSuggester{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Catalog:    catalog,
				Suggester:  suggester,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
			if runner.suggester != suggester {
				t.Error("expected suggester to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be built from the catalog")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("without a catalog leaves the engine unset", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.engine != nil {
				t.Error("expected no engine without a catalog")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

func runCommand(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "jukebox", Commands: runner.register()}
	return app.Run(context.Background(), append([]string{"jukebox"}, args...))
}

func TestSetupCommand(t *testing.T) {
	t.Run("creates a config file from the template", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runCommand(t, runner, "setup", "--config", configPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, configPath)

		content := tu.MustReadFile(t, configPath)
		if !strings.Contains(content, "[credentials.spotify]") {
			t.Errorf("template missing spotify section: %s", content)
		}
		if !strings.Contains(content, "[credentials.gemini]") {
			t.Errorf("template missing gemini section: %s", content)
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("# existing"), 0644); err != nil {
			t.Fatal(err)
		}

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		err := runCommand(t, runner, "setup", "--config", configPath)
		if err == nil {
			t.Fatal("expected error for existing config")
		}
		if content := tu.MustReadFile(t, configPath); content != "# existing" {
			t.Error("existing config was modified")
		}
	})

	t.Run("overwrites with force", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("# existing"), 0644); err != nil {
			t.Fatal(err)
		}

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		if err := runCommand(t, runner, "setup", "--config", configPath, "--force"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if content := tu.MustReadFile(t, configPath); !strings.Contains(content, "[server]") {
			t.Error("config was not replaced with the template")
		}
	})
}

func TestRecommendCommand(t *testing.T) {
	suggestions := []models.Suggestion{
		{Title: "Basket Case", Artist: "Green Day"},
		{Title: "Longview", Artist: "Green Day"},
	}

	t.Run("requires a prompt", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Suggester: &tu.MockSuggester{Suggestions: suggestions},
			Output:    &bytes.Buffer{},
		})

		if err := runCommand(t, runner, "recommend"); err == nil {
			t.Fatal("expected error for missing prompt")
		}
	})

	t.Run("prints a numbered listing", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Suggester: &tu.MockSuggester{Suggestions: suggestions},
			Output:    output,
		})

		if err := runCommand(t, runner, "recommend", "90s punk"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "1. Green Day - Basket Case") {
			t.Errorf("missing first suggestion: %q", result)
		}
		if !strings.Contains(result, "2. Green Day - Longview") {
			t.Errorf("missing second suggestion: %q", result)
		}
	})

	t.Run("emits JSON with --json", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Suggester: &tu.MockSuggester{Suggestions: suggestions},
			Output:    output,
		})

		if err := runCommand(t, runner, "recommend", "--json", "90s punk"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var parsed struct {
			Tracks []models.Suggestion `json:"tracks"`
		}
		if err := json.Unmarshal(output.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(parsed.Tracks) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(parsed.Tracks))
		}
	})

	t.Run("writes CSV with --output", func(t *testing.T) {
		csvPath := filepath.Join(t.TempDir(), "suggestions.csv")
		runner := NewRunner(RunnerOpts{
			Suggester: &tu.MockSuggester{Suggestions: suggestions},
			Output:    &bytes.Buffer{},
		})

		if err := runCommand(t, runner, "recommend", "--output", csvPath, "90s punk"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		content := tu.MustReadFile(t, csvPath)
		if !strings.Contains(content, "Title,Artist") {
			t.Errorf("missing CSV header: %q", content)
		}
		if !strings.Contains(content, "Basket Case,Green Day") {
			t.Errorf("missing CSV row: %q", content)
		}
	})
}

func TestHealthCommand(t *testing.T) {
	t.Run("reports a healthy server", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"status": "ok", "service": "jukebox"})
		}))
		defer srv.Close()

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runCommand(t, runner, "health", "--url", srv.URL); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "healthy") {
			t.Errorf("expected healthy report, got %q", output.String())
		}
	})

	t.Run("fails for an unhealthy server", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]any{"status": "down"})
		}))
		defer srv.Close()

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		if err := runCommand(t, runner, "health", "--url", srv.URL); err == nil {
			t.Fatal("expected error for unhealthy server")
		}
	})

	t.Run("fails for an unreachable server", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		if err := runCommand(t, runner, "health", "--url", "http://127.0.0.1:1"); err == nil {
			t.Fatal("expected error for unreachable server")
		}
	})
}
