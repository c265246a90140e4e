package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
	"google.golang.org/genai"

	"github.com/teemow/minutegen/internal/config"
	"github.com/teemow/minutegen/internal/drive"
	"github.com/teemow/minutegen/internal/google"
	"github.com/teemow/minutegen/internal/instrumentation"
	"github.com/teemow/minutegen/internal/logging"
	"github.com/teemow/minutegen/internal/minutes"
	"github.com/teemow/minutegen/internal/pipeline"
	"github.com/teemow/minutegen/internal/transcribe"
)

// newOAuthConfig resolves client credentials from the environment first and
// falls back to the client secret file.
func newOAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	if cfg.HasClientCredentials() {
		return google.NewOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.RedirectURL()), nil
	}
	return google.OAuthConfigFromFile(cfg.ClientSecretFile, cfg.RedirectURL())
}

func newAuthorizer(cfg *config.Config, logger *slog.Logger) (*google.Authorizer, error) {
	conf, err := newOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}
	return google.NewAuthorizer(conf, google.NewCredentialStore(cfg.TokenFile), logger), nil
}

// newOrchestrator wires the full pipeline: Drive acquisition, transcription
// and minutes generation against the Gemini API.
func newOrchestrator(ctx context.Context, cfg *config.Config, session *drive.Session,
	metrics *instrumentation.Metrics, logger *slog.Logger) (*pipeline.Orchestrator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return pipeline.New(
		session,
		transcribe.New(client, cfg.TranscriptionModel, logger),
		minutes.New(client, cfg.MinutesModel, logger),
		metrics,
		logger,
	), nil
}

// loadConfig reads and validates the environment and builds the logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logging.NewLogger(cfg.LogFormat, cfg.LogLevel), nil
}
