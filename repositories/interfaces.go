package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/paymybuddy/api/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate record")

	// ErrForeignKey is returned when a referenced row does not exist
	ErrForeignKey = errors.New("referenced record does not exist")

	// ErrDuplicateEmail and ErrDuplicateUsername narrow ErrDuplicate for users
	ErrDuplicateEmail    = fmt.Errorf("email: %w", ErrDuplicate)
	ErrDuplicateUsername = fmt.Errorf("username: %w", ErrDuplicate)
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns a context that routes repository calls through the transaction
	Context() context.Context
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID, including connections
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email, case-insensitively
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*models.User, error)

	// Update updates a user's username, email, password hash and balance
	Update(ctx context.Context, user *models.User) error

	// Delete deletes a user together with their connections and transactions
	Delete(ctx context.Context, id uuid.UUID) error

	// AddConnection records a directed connection from userID to connectionID
	AddConnection(ctx context.Context, userID, connectionID uuid.UUID) error

	// ListConnections retrieves the users connected from userID
	ListConnections(ctx context.Context, userID uuid.UUID) ([]*models.User, error)
}

// TransactionRepository handles transaction record operations
type TransactionRepository interface {
	// Create creates a new transaction record
	Create(ctx context.Context, tx *models.Transaction) error

	// GetByID retrieves a transaction by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)

	// List retrieves all transactions, newest first
	List(ctx context.Context) ([]*models.Transaction, error)

	// ListByUser retrieves transactions where the user is sender or receiver, newest first
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)

	// Update updates a transaction record
	Update(ctx context.Context, tx *models.Transaction) error

	// Delete deletes a transaction record
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users        UserRepository
	Transactions TransactionRepository
}
