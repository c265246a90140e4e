// Package google implements the OAuth authorization-code flow against
// Google's endpoints: credential caching, CSRF state tracking, the
// authorization state machine, and authenticated HTTP client construction
// for the Drive API.
package google
