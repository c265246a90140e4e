package google

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
)

// stateTokenBytes is the entropy of a CSRF state token. 32 bytes gives 256
// bits, comfortably above the 128-bit minimum required for collision
// resistance between concurrent authorizations.
const stateTokenBytes = 32

// StateStore tracks outstanding CSRF state tokens for in-flight
// authorizations. Each token is single-use: it is issued when an
// authorization starts and removed when the matching callback completes.
//
// The store is owned by an Authorizer instance rather than being ambient
// process state, so independent instances (and tests) cannot interfere with
// each other. It is not persisted: a process restart invalidates all pending
// authorizations, which then fail the state check and must be retried.
type StateStore struct {
	mu     sync.Mutex
	states map[string]struct{}
}

// NewStateStore creates an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{
		states: make(map[string]struct{}),
	}
}

// Issue generates a new cryptographically random state token and registers
// it as pending.
func (s *StateStore) Issue() (string, error) {
	buf := make([]byte, stateTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = struct{}{}

	return state, nil
}

// Has reports whether the state token is currently pending.
func (s *StateStore) Has(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.states[state]
	return ok
}

// Remove marks a state token as used. Removing an unknown token is a no-op.
func (s *StateStore) Remove(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, state)
}

// Clear drops all pending state tokens.
func (s *StateStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = make(map[string]struct{})
}

// Len returns the number of pending tokens.
func (s *StateStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}
