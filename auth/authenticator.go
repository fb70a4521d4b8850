package auth

import (
	"context"
	"errors"
	"fmt"
)

// Credential is the stored secret for one identity
type Credential struct {
	Email        string
	PasswordHash string
}

// CredentialStore looks up credentials by identifier.
// Implementations return ErrUserNotFound when no credential exists.
type CredentialStore interface {
	FindCredential(ctx context.Context, identifier string) (*Credential, error)
}

// Authenticator verifies a username/password pair against a CredentialStore
type Authenticator struct {
	store  CredentialStore
	hasher PasswordHasher
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(store CredentialStore, hasher PasswordHasher) *Authenticator {
	return &Authenticator{
		store:  store,
		hasher: hasher,
	}
}

// Authenticate returns a principal with the default role when the password matches
func (a *Authenticator) Authenticate(ctx context.Context, identifier, rawPassword string) (*Principal, error) {
	cred, err := a.store.FindCredential(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}
	if cred == nil {
		return nil, ErrUserNotFound
	}

	if err := a.hasher.Compare(cred.PasswordHash, rawPassword); err != nil {
		return nil, ErrBadCredentials
	}

	return &Principal{
		Subject: cred.Email,
		Roles:   []string{DefaultRole},
	}, nil
}
