package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/paymybuddy/api/models"
	"github.com/paymybuddy/api/repositories"
	"go.uber.org/zap"
)

const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "idx_users_email_lower"
)

// selectUsers loads users with their outgoing connections aggregated into one column
const selectUsers = `
	SELECT u.id, u.username, u.email, u.password_hash, u.balance, u.created_at, u.updated_at,
	       COALESCE(array_agg(c.connected_user_id::text) FILTER (WHERE c.connected_user_id IS NOT NULL), '{}') AS connections
	FROM users u
	LEFT JOIN user_connections c ON c.user_id = u.id
`

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var connections pq.StringArray
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Balance,
		&user.CreatedAt,
		&user.UpdatedAt,
		&connections,
	)
	if err != nil {
		return nil, err
	}

	user.Connections = make([]uuid.UUID, 0, len(connections))
	for _, c := range connections {
		id, err := uuid.Parse(c)
		if err != nil {
			return nil, fmt.Errorf("invalid connection id %q: %w", c, err)
		}
		user.Connections = append(user.Connections, id)
	}
	return user, nil
}

// mapUserError narrows unique violations to the column that caused them
func mapUserError(err error, op string) error {
	mapped := mapError(err, op)
	if !errors.Is(mapped, repositories.ErrDuplicate) {
		return mapped
	}
	switch constraintName(err) {
	case emailConstraint:
		return fmt.Errorf("%s: %w", op, repositories.ErrDuplicateEmail)
	case usernameConstraint:
		return fmt.Errorf("%s: %w", op, repositories.ErrDuplicateUsername)
	}
	return mapped
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Balance,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return mapUserError(err, "create user")
	}

	r.logger.Debug("user created", zap.String("id", user.ID.String()), zap.String("email", user.Email))
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := selectUsers + `
		WHERE u.id = $1
		GROUP BY u.id
	`

	executor := GetExecutor(ctx, r.db)
	user, err := scanUser(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "get user")
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := selectUsers + `
		WHERE LOWER(u.email) = LOWER($1)
		GROUP BY u.id
	`

	executor := GetExecutor(ctx, r.db)
	user, err := scanUser(executor.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, mapError(err, "get user by email")
	}
	return user, nil
}

// List retrieves all users
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := selectUsers + `
		GROUP BY u.id
		ORDER BY u.created_at DESC
	`
	return r.queryUsers(ctx, "list users", query)
}

// ListConnections retrieves the users connected from userID
func (r *UserRepository) ListConnections(ctx context.Context, userID uuid.UUID) ([]*models.User, error) {
	query := selectUsers + `
		WHERE u.id IN (SELECT connected_user_id FROM user_connections WHERE user_id = $1)
		GROUP BY u.id
		ORDER BY u.username
	`
	return r.queryUsers(ctx, "list connections", query, userID)
}

func (r *UserRepository) queryUsers(ctx context.Context, op, query string, args ...interface{}) ([]*models.User, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, op)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = $2,
		    email = $3,
		    password_hash = $4,
		    balance = $5,
		    updated_at = $6
		WHERE id = $1
	`

	user.UpdatedAt = time.Now().UTC()

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Balance,
		user.UpdatedAt,
	)
	if err != nil {
		return mapUserError(err, "update user")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("update user %s: %w", user.ID, repositories.ErrNotFound)
	}

	r.logger.Debug("user updated", zap.String("id", user.ID.String()))
	return nil
}

// Delete deletes a user. Connections and transactions cascade.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return mapError(err, "delete user")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("delete user %s: %w", id, repositories.ErrNotFound)
	}

	r.logger.Debug("user deleted", zap.String("id", id.String()))
	return nil
}

// AddConnection records a directed connection from userID to connectionID
func (r *UserRepository) AddConnection(ctx context.Context, userID, connectionID uuid.UUID) error {
	query := `
		INSERT INTO user_connections (user_id, connected_user_id, created_at)
		VALUES ($1, $2, $3)
	`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, userID, connectionID, time.Now().UTC()); err != nil {
		return mapError(err, "add connection")
	}

	r.logger.Debug("connection added",
		zap.String("user_id", userID.String()),
		zap.String("connection_id", connectionID.String()))
	return nil
}
