package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/v04/jukebox/internal/services"
	"github.com/v04/jukebox/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var catalog services.Catalog
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map(), config.Timeouts.CatalogTimeout()); err == nil {
			catalog = svc
		}
	}

	var suggester services.Suggester
	if svc, err := services.NewSuggestionService(config.Credentials.Gemini, config.Timeouts.SuggestionTimeout()); err == nil {
		suggester = svc
	}

	runner := NewRunner(RunnerOpts{
		Config:    config,
		Catalog:   catalog,
		Suggester: suggester,
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "jukebox",
		Usage:    "AI playlist generator backed by Spotify",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
