package auth

import (
	"context"
	"strings"
	"sync"
)

// MemoryCredentialStore is an in-memory CredentialStore keyed by lower-cased email
type MemoryCredentialStore struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewMemoryCredentialStore creates an empty store
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{creds: make(map[string]Credential)}
}

// Put adds or replaces a credential
func (s *MemoryCredentialStore) Put(cred Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[strings.ToLower(cred.Email)] = cred
}

// FindCredential implements CredentialStore
func (s *MemoryCredentialStore) FindCredential(ctx context.Context, identifier string) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[strings.ToLower(identifier)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &cred, nil
}
