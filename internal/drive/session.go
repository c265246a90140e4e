package drive

import (
	"context"
	"log/slog"

	"github.com/teemow/minutegen/internal/google"
)

// Session builds authenticated Drive clients on demand. Credentials are
// resolved (and refreshed) at call time, so a Session created before the
// user authorizes becomes usable as soon as a credential record exists.
type Session struct {
	authorizer *google.Authorizer
	logger     *slog.Logger
}

// NewSession creates a Session backed by the given authorizer.
func NewSession(authorizer *google.Authorizer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{authorizer: authorizer, logger: logger}
}

// Client returns an authenticated Drive client, or google.ErrNotAuthorized
// when no usable credentials exist.
func (s *Session) Client(ctx context.Context) (*Client, error) {
	httpClient, err := s.authorizer.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, httpClient, s.logger)
}

// SearchAudioCandidates runs the audio search with fresh credentials.
func (s *Session) SearchAudioCandidates(ctx context.Context) ([]Candidate, string, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return nil, "", err
	}
	return client.SearchAudioCandidates(ctx)
}

// Download fetches a remote file with fresh credentials. It satisfies the
// pipeline's fetcher contract.
func (s *Session) Download(ctx context.Context, reference string) (string, string, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return "", "", err
	}
	return client.Download(ctx, reference)
}
