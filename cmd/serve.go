package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lehigh-university-libraries/radassist/internal/analysis"
	"github.com/lehigh-university-libraries/radassist/internal/config"
	"github.com/lehigh-university-libraries/radassist/internal/gemini"
	"github.com/lehigh-university-libraries/radassist/internal/handlers"
	"github.com/lehigh-university-libraries/radassist/internal/ingest"
	"github.com/lehigh-university-libraries/radassist/internal/ollama"
	"github.com/lehigh-university-libraries/radassist/internal/openai"
	"github.com/lehigh-university-libraries/radassist/internal/providers"
	"github.com/lehigh-university-libraries/radassist/internal/render"
	"github.com/lehigh-university-libraries/radassist/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var (
		port     string
		provider string
		model    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface",
		Long: `Starts the radassist web interface on the specified port.

Upload a scan, add clinical notes and the configured provider (Gemini by default)
returns a diagnosis, a detailed report and a recommended course of action.`,
		Example: `  # Start server on default port 8888
  radassist serve

  # Use a local Ollama model
  radassist serve --provider ollama --model llava`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags win over the environment; PROVIDER must be set before Load
			// so the matching credential and default model are resolved.
			if cmd.Flags().Changed("provider") {
				if err := os.Setenv("PROVIDER", provider); err != nil {
					return err
				}
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("model") {
				cfg.Model = model
			}

			logger := newLogger(cfg)
			return run(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&provider, "provider", config.ProviderGemini, "Inference provider (gemini, openai, ollama)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults per provider)")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client := analysis.NewClient(newProvider(cfg), analysis.Options{
		Model:      cfg.Model,
		Configured: !cfg.RequiresCredential() || cfg.APIKey != "",
		Timeout:    cfg.RequestTimeout,
	})
	if err := client.Ready(); err != nil {
		// Not fatal: every submission reports the configuration error to the user.
		logger.Warn("No inference credential configured", "provider", cfg.Provider)
	}

	sessions := storage.New(client).WithMaxSessions(cfg.MaxSessions)
	handler := handlers.New(sessions, ingest.New(cfg.MaxUploadBytes()), render.New(cfg.MaxUploadSizeMB)).
		WithSecureCookies(cfg.SecureCookies)

	addr := ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("radassist interface available", "addr", addr, "url", "http://localhost"+addr, "provider", cfg.Provider, "model", cfg.Model)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")
		// Give server 5 seconds to shut down gracefully
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		sweepSessions(gctx, sessions, cfg.SessionTTL)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

func newProvider(cfg *config.Config) providers.Provider {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.New(cfg.APIKey, cfg.OpenAIBaseURL)
	case config.ProviderOllama:
		return ollama.New(cfg.OllamaURL)
	default:
		return gemini.New(cfg.APIKey)
	}
}

func sweepSessions(ctx context.Context, sessions *storage.SessionStore, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(ttl); n > 0 {
				slog.Info("Expired idle sessions", "removed", n, "remaining", sessions.Len())
			}
		}
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	return logger
}
