package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/paymybuddy/api/auth"
	"github.com/paymybuddy/api/models"
	"github.com/paymybuddy/api/repositories"
	"go.uber.org/zap"
)

// RegisterInput holds the fields needed to create an account
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// UserPatch holds the fields to change on a user. Nil fields are left untouched.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
	Balance  *float64
}

// UserService manages user accounts and their connections
type UserService struct {
	users  repositories.UserRepository
	hasher auth.PasswordHasher
	logger *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, hasher auth.PasswordHasher, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		logger: logger,
	}
}

// Register creates a user with a zero balance
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, NewDomainError(ErrorTypeValidation, "username, email and password are required", nil)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrDuplicateEmail(email, nil)
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return nil, WrapInternal("failed to look up user", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(username, email, hash)
	if err := s.users.Create(ctx, user); err != nil {
		return nil, s.mapWriteError(err, user)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))
	return user, nil
}

// ListUsers returns all users
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, WrapInternal("failed to list users", err)
	}
	return users, nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound.Message, "failed to get user")
	}
	return user, nil
}

// GetUserByEmail returns a user by email, ignoring case
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound.Message, "failed to get user")
	}
	return user, nil
}

// UpdateUser applies patch to the user. A new password is hashed before it is stored.
func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, patch UserPatch) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		if username == "" {
			return nil, NewDomainError(ErrorTypeValidation, "username cannot be empty", nil)
		}
		user.Username = username
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == "" {
			return nil, NewDomainError(ErrorTypeValidation, "email cannot be empty", nil)
		}
		user.Email = email
	}
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, NewDomainError(ErrorTypeValidation, "password cannot be empty", nil)
		}
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, WrapInternal("failed to hash password", err)
		}
		user.PasswordHash = hash
	}
	if patch.Balance != nil {
		if *patch.Balance < 0 {
			return nil, NewDomainError(ErrorTypeValidation, "balance cannot be negative", nil)
		}
		user.Balance = models.RoundAmount(*patch.Balance)
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewDomainError(ErrorTypeNotFound, ErrUserNotFound.Message, err)
		}
		return nil, s.mapWriteError(err, user)
	}

	s.logger.Info("user updated", zap.String("user_id", user.ID.String()))
	return user, nil
}

// DeleteUser removes a user together with their connections and transactions
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return notFound(err, ErrUserNotFound.Message, "failed to delete user")
	}
	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}

// AddConnection connects userID to connectionID
func (s *UserService) AddConnection(ctx context.Context, userID, connectionID uuid.UUID) error {
	if userID == connectionID {
		return NewDomainError(ErrorTypeValidation, "a user cannot connect to themselves", nil)
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, connectionID); err != nil {
		return notFound(err, "connection user not found", "failed to get connection user").
			WithDetail("connection_id", connectionID.String())
	}
	if user.IsConnectedTo(connectionID) {
		return NewDomainError(ErrorTypeConflict, ErrDuplicateConnection.Message, nil).
			WithDetail("connection_id", connectionID.String())
	}

	if err := s.users.AddConnection(ctx, userID, connectionID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return NewDomainError(ErrorTypeConflict, ErrDuplicateConnection.Message, err)
		case errors.Is(err, repositories.ErrForeignKey):
			return NewDomainError(ErrorTypeNotFound, ErrUserNotFound.Message, err)
		}
		return WrapInternal("failed to add connection", err)
	}

	s.logger.Info("connection added",
		zap.String("user_id", userID.String()),
		zap.String("connection_id", connectionID.String()))
	return nil
}

// ListConnections returns the users connected from userID
func (s *UserService) ListConnections(ctx context.Context, userID uuid.UUID) ([]*models.User, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.users.ListConnections(ctx, userID)
	if err != nil {
		return nil, WrapInternal("failed to list connections", err)
	}
	return users, nil
}

func (s *UserService) mapWriteError(err error, user *models.User) error {
	switch {
	case errors.Is(err, repositories.ErrDuplicateEmail):
		return ErrDuplicateEmail(user.Email, err)
	case errors.Is(err, repositories.ErrDuplicateUsername):
		return ErrDuplicateUsername(user.Username, err)
	case errors.Is(err, repositories.ErrDuplicate):
		return NewDomainError(ErrorTypeConflict, "user already exists", err)
	}
	return WrapInternal("failed to save user", err)
}
