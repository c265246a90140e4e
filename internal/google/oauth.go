package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
)

// AuthStatus is the externally visible authorization state.
type AuthStatus string

const (
	StatusUnauthorized AuthStatus = "unauthorized"
	StatusAuthorized   AuthStatus = "authorized"
)

// StartResult is the outcome of StartAuthorization.
type StartResult struct {
	// AlreadyAuthorized is true when a usable credential record already
	// exists and no new authorization was started.
	AlreadyAuthorized bool

	// AuthURL is the provider authorization URL to present to the user.
	// Empty when AlreadyAuthorized is true.
	AuthURL string
}

// NewOAuthConfig builds the OAuth2 configuration from explicit client
// credentials.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     googleauth.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{drive.DriveReadonlyScope},
	}
}

// OAuthConfigFromFile builds the OAuth2 configuration from a Google client
// secret JSON file (the credentials.json downloaded from the cloud console).
func OAuthConfigFromFile(path, redirectURL string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client secret file %s: %w", path, err)
	}

	conf, err := googleauth.ConfigFromJSON(data, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secret file %s: %w", path, err)
	}

	conf.RedirectURL = redirectURL
	return conf, nil
}

// RefreshRecorder observes token refresh outcomes.
type RefreshRecorder interface {
	RecordTokenRefresh(ctx context.Context, result string)
}

// Authorizer drives the three-legged OAuth authorization-code flow:
// Unauthorized -> AuthorizationPending -> Authorized, with Reset returning
// to Unauthorized. Pending CSRF states are owned by this instance.
type Authorizer struct {
	conf     *oauth2.Config
	store    *CredentialStore
	states   *StateStore
	logger   *slog.Logger
	recorder RefreshRecorder
}

// NewAuthorizer creates an Authorizer with its own pending-state set.
func NewAuthorizer(conf *oauth2.Config, store *CredentialStore, logger *slog.Logger) *Authorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authorizer{
		conf:   conf,
		store:  store,
		states: NewStateStore(),
		logger: logger,
	}
}

// States exposes the pending-state set, primarily for tests.
func (a *Authorizer) States() *StateStore {
	return a.states
}

// SetRefreshRecorder attaches a recorder for token refresh outcomes.
func (a *Authorizer) SetRefreshRecorder(recorder RefreshRecorder) {
	a.recorder = recorder
}

func (a *Authorizer) recordRefresh(ctx context.Context, result string) {
	if a.recorder != nil {
		a.recorder.RecordTokenRefresh(ctx, result)
	}
}

// StartAuthorization begins a new authorization flow.
//
// If client credentials are missing it fails with
// ErrClientCredentialsMissing. If a usable credential record already exists
// it short-circuits without creating a new pending state. Otherwise it
// issues a fresh CSRF state token and returns the provider authorization
// URL; presenting the URL to the user is the caller's job.
func (a *Authorizer) StartAuthorization(ctx context.Context) (*StartResult, error) {
	if a.conf == nil || a.conf.ClientID == "" || a.conf.ClientSecret == "" {
		return nil, ErrClientCredentialsMissing
	}

	// Short-circuit only when the stored credentials are actually usable: an
	// expired record whose refresh token the provider has revoked must fall
	// through to a fresh flow, or the user can never re-authorize.
	if _, err := a.Credentials(ctx); err == nil {
		a.logger.Debug("authorization short-circuit, credentials already usable")
		return &StartResult{AlreadyAuthorized: true}, nil
	}

	state, err := a.states.Issue()
	if err != nil {
		return nil, err
	}

	// Offline access for a refresh token, forced consent so Google issues
	// one even when the user approved the app before.
	url := a.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))

	a.logger.Info("authorization started", "pending_states", a.states.Len())
	return &StartResult{AuthURL: url}, nil
}

// CompleteAuthorization finishes the flow with the parameters from the
// provider's redirect. On success the credential record is persisted and the
// state token is retired.
func (a *Authorizer) CompleteAuthorization(ctx context.Context, code, state, providerErr string) error {
	if providerErr != "" {
		return &ProviderDeniedError{Reason: providerErr}
	}

	if code == "" || state == "" {
		return ErrMalformedCallback
	}

	if !a.states.Has(state) {
		return ErrStateMismatch
	}

	token, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return &ExchangeError{Err: err}
	}

	record := NewCredentialRecord(token, a.conf.Scopes)
	if err := a.store.Save(record); err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}

	a.states.Remove(state)
	a.logger.Info("authorization completed")
	return nil
}

// Reset clears the persisted credentials and all pending states.
func (a *Authorizer) Reset() error {
	a.states.Clear()
	if err := a.store.Clear(); err != nil {
		return err
	}
	a.logger.Info("authorization reset")
	return nil
}

// Status reports the current authorization state. An expired record with a
// refresh token is transparently refreshed and re-persisted before
// Authorized is reported; a failed refresh reports Unauthorized.
func (a *Authorizer) Status(ctx context.Context) AuthStatus {
	if _, err := a.Credentials(ctx); err != nil {
		return StatusUnauthorized
	}
	return StatusAuthorized
}

// Credentials returns a usable OAuth token, refreshing and re-persisting an
// expired record when a refresh token is available. It returns
// ErrNotAuthorized when no record exists or the record is expired with no
// refresh token.
func (a *Authorizer) Credentials(ctx context.Context) (*oauth2.Token, error) {
	record := a.store.Load()
	if record == nil {
		return nil, ErrNotAuthorized
	}

	if record.Valid() {
		return record.Token(), nil
	}

	if !record.Refreshable() {
		return nil, ErrNotAuthorized
	}

	refreshed, err := a.conf.TokenSource(ctx, record.Token()).Token()
	if err != nil {
		a.recordRefresh(ctx, "error")
		return nil, fmt.Errorf("failed to refresh credentials: %w", err)
	}
	a.recordRefresh(ctx, "success")

	if err := a.store.Save(NewCredentialRecord(refreshed, a.conf.Scopes)); err != nil {
		a.logger.Warn("failed to persist refreshed credentials", "error", err)
	}

	a.logger.Debug("credentials refreshed")
	return refreshed, nil
}

// HTTPClient returns an HTTP client that authenticates requests with the
// stored credentials, refreshing them as needed.
func (a *Authorizer) HTTPClient(ctx context.Context) (*http.Client, error) {
	token, err := a.Credentials(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, a.conf.TokenSource(ctx, token)), nil
}
