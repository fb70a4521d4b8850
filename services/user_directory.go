package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/paymybuddy/api/auth"
	"github.com/paymybuddy/api/repositories"
)

// UserDirectory serves login credentials from the users table
type UserDirectory struct {
	users repositories.UserRepository
}

// NewUserDirectory creates a new UserDirectory
func NewUserDirectory(users repositories.UserRepository) *UserDirectory {
	return &UserDirectory{users: users}
}

// FindCredential implements auth.CredentialStore. The identifier is an email.
func (d *UserDirectory) FindCredential(ctx context.Context, identifier string) (*auth.Credential, error) {
	user, err := d.users.GetByEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", auth.ErrUserNotFound, identifier)
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	return &auth.Credential{
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}, nil
}
