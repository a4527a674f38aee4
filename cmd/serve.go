package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/v04/jukebox/internal/server"
	"github.com/v04/jukebox/internal/services"
	"github.com/v04/jukebox/internal/session"
	"github.com/v04/jukebox/internal/shared"
	"github.com/v04/jukebox/internal/tasks"
)

const defaultCookieName = "jukebox_session"

// Serve starts the jukebox HTTP server and blocks until interrupted.
//
// Builds the catalog client, suggestion client, session store and pipeline
// engine from configuration, wires the router, and shuts down gracefully on
// SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	if host := cmd.String("host"); host != "" {
		config.Server.Host = host
	}
	if port := int(cmd.Int("port")); port != 0 {
		config.Server.Port = port
	}

	catalog := r.catalog
	if catalog == nil {
		if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
			return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
		}

		svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map(), config.Timeouts.CatalogTimeout())
		if err != nil {
			return fmt.Errorf("failed to create catalog client: %w", err)
		}
		catalog = svc
	}

	suggester := r.suggester
	if suggester == nil {
		svc, err := services.NewSuggestionService(config.Credentials.Gemini, config.Timeouts.SuggestionTimeout())
		if err != nil {
			return fmt.Errorf("failed to create suggestion client: %w", err)
		}
		suggester = svc
	}

	engine := r.engine
	if engine == nil {
		engine = tasks.NewJukeboxEngine(catalog, 0)
	}

	sessions := session.NewStore(catalog)

	cookieName := config.Server.CookieName
	if cookieName == "" {
		cookieName = defaultCookieName
	}

	router := server.NewBasicRouter()
	router.Use(
		server.RequestLogger(r.logger),
		server.CORS(config.Server.CORSOrigin),
		server.WithSession(cookieName),
	)

	server.NewAPIHandler(catalog, suggester, engine, sessions, cookieName, r.logger).Register(router)
	router.Handler(server.NewAuthHandler(catalog, sessions, cookieName, r.logger))

	srv := &http.Server{
		Addr:              config.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	r.logger.Info("jukebox listening", "addr", srv.Addr, "catalog", catalog.Name())
	r.writePlain("Jukebox server running at http://%s\n", srv.Addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
