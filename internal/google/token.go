package google

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
)

// CredentialRecord is the self-describing persisted form of an OAuth token.
// All fields are spelled out so the file survives reimplementations instead
// of being an opaque library blob.
type CredentialRecord struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
}

// Token converts the record to an oauth2.Token.
func (r *CredentialRecord) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		Expiry:       r.Expiry,
	}
}

// NewCredentialRecord builds a record from an oauth2.Token.
func NewCredentialRecord(tok *oauth2.Token, scopes []string) *CredentialRecord {
	return &CredentialRecord{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		Scopes:       scopes,
	}
}

// Valid reports whether the record carries an unexpired access token.
func (r *CredentialRecord) Valid() bool {
	if r == nil || r.AccessToken == "" {
		return false
	}
	if r.Expiry.IsZero() {
		return true
	}
	return time.Now().Before(r.Expiry)
}

// Refreshable reports whether an expired record can be refreshed.
func (r *CredentialRecord) Refreshable() bool {
	return r != nil && r.RefreshToken != ""
}

// CredentialStore persists a single CredentialRecord to a local file.
//
// There is no cross-process locking: concurrent processes racing on
// Save/Clear can interleave. That hazard is accepted here and called out in
// the tests.
type CredentialStore struct {
	path string
}

// NewCredentialStore creates a store backed by the given file path.
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

// Path returns the backing file path.
func (s *CredentialStore) Path() string {
	return s.path
}

// Load reads the persisted record. A missing or undecodable file is treated
// as "no record" rather than an error, so a corrupt token file degrades to
// re-authorization instead of a crash.
func (s *CredentialStore) Load() *CredentialRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var record CredentialRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil
	}

	return &record
}

// Save serializes the record and atomically replaces the previous file.
// The record is written fully to a temporary file first so a crash mid-write
// never leaves a partially written token behind.
func (s *CredentialStore) Save(record *CredentialRecord) error {
	if record == nil {
		return fmt.Errorf("cannot save nil credential record")
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize credentials: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary token file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set token file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close token file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace token file: %w", err)
	}

	return nil
}

// Clear removes the persisted record. Removing an absent file is not an
// error.
func (s *CredentialStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}
