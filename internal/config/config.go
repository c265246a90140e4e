// Package config loads application configuration from the process
// environment and validates that the credentials the pipeline depends on are
// present before anything starts.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration for the application.
type Config struct {
	// Google OAuth client credentials. Either these are set directly, or a
	// client secret file is supplied via ClientSecretFile.
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`

	// GeminiAPIKey authenticates transcription and minutes generation.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// ClientSecretFile is an optional Google client secret JSON file. When
	// present it supplies client credentials not covered by the env vars.
	ClientSecretFile string `env:"GOOGLE_CLIENT_SECRET_FILE" envDefault:"credentials.json"`

	// TokenFile is where the OAuth credential record is cached between runs.
	TokenFile string `env:"TOKEN_FILE" envDefault:"token.json"`

	// ListenAddr is the address of the application HTTP server.
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":7860"`

	// BaseURL is the externally reachable base URL used to build the OAuth
	// redirect URI.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:7860"`

	// MetricsAddr is the address of the dedicated metrics server.
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`

	// TranscriptionModel identifies the speech-to-text model.
	TranscriptionModel string `env:"TRANSCRIPTION_MODEL" envDefault:"gemini-2.5-flash"`

	// MinutesModel identifies the completion model used for minutes.
	MinutesModel string `env:"MINUTES_MODEL" envDefault:"gemini-2.5-flash"`

	// LogFormat is "text" or "json".
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// RedirectURL returns the OAuth callback URL derived from the base URL.
func (c *Config) RedirectURL() string {
	return strings.TrimRight(c.BaseURL, "/") + "/oauth/callback"
}

// HasClientCredentials reports whether explicit OAuth client credentials are
// set in the environment.
func (c *Config) HasClientCredentials() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Validate checks that all required settings are present. It returns a single
// error enumerating every missing variable so operators can fix them in one
// pass. Client credentials may come from the environment or from the client
// secret file; only when neither source exists are they reported missing.
func (c *Config) Validate() error {
	var missing []string

	if !c.HasClientCredentials() {
		if _, err := os.Stat(c.ClientSecretFile); err != nil {
			missing = append(missing, "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET")
		}
	}
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}
