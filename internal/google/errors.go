package google

import (
	"errors"
	"fmt"
)

// Sentinel errors for the authorization flow. All are recoverable by
// re-initiating authorization.
var (
	// ErrClientCredentialsMissing indicates the OAuth client ID or secret is
	// not configured. Terminal until an operator supplies credentials.
	ErrClientCredentialsMissing = errors.New("google OAuth client credentials not configured")

	// ErrMalformedCallback indicates the callback was missing the code or
	// state parameter.
	ErrMalformedCallback = errors.New("authorization callback missing code or state parameter")

	// ErrStateMismatch indicates the callback state was never issued, was
	// already used, or belongs to a previous process.
	ErrStateMismatch = errors.New("authorization state mismatch")

	// ErrNotAuthorized indicates no usable credential record exists.
	ErrNotAuthorized = errors.New("not authorized")
)

// ProviderDeniedError reports that the OAuth provider returned an error on
// the callback (e.g. access_denied).
type ProviderDeniedError struct {
	Reason string
}

func (e *ProviderDeniedError) Error() string {
	return fmt.Sprintf("authorization denied by provider: %s", e.Reason)
}

// ExchangeError reports a failed authorization-code exchange at the token
// endpoint.
type ExchangeError struct {
	Err error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("failed to exchange authorization code: %v", e.Err)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}
