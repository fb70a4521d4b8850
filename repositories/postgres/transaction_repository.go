package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/paymybuddy/api/models"
	"github.com/paymybuddy/api/repositories"
	"go.uber.org/zap"
)

const selectTransactions = `
	SELECT id, sender_id, receiver_id, description, amount, timestamp
	FROM transactions
`

// TransactionRepository implements the repositories.TransactionRepository interface
type TransactionRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB, logger *zap.Logger) repositories.TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	tx := &models.Transaction{}
	err := row.Scan(
		&tx.ID,
		&tx.SenderID,
		&tx.ReceiverID,
		&tx.Description,
		&tx.Amount,
		&tx.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Create creates a new transaction record
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, sender_id, receiver_id, description, amount, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		tx.ID,
		tx.SenderID,
		tx.ReceiverID,
		tx.Description,
		tx.Amount,
		tx.Timestamp,
	)
	if err != nil {
		return mapError(err, "create transaction")
	}

	r.logger.Debug("transaction created",
		zap.String("id", tx.ID.String()),
		zap.String("sender_id", tx.SenderID.String()),
		zap.String("receiver_id", tx.ReceiverID.String()))
	return nil
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	query := selectTransactions + `WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	tx, err := scanTransaction(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "get transaction")
	}
	return tx, nil
}

// List retrieves all transactions, newest first
func (r *TransactionRepository) List(ctx context.Context) ([]*models.Transaction, error) {
	query := selectTransactions + `ORDER BY timestamp DESC`
	return r.queryTransactions(ctx, "list transactions", query)
}

// ListByUser retrieves transactions where the user is sender or receiver, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	query := selectTransactions + `
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY timestamp DESC
	`
	return r.queryTransactions(ctx, "list user transactions", query, userID)
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, op, query string, args ...interface{}) ([]*models.Transaction, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, op)
	}
	defer rows.Close()

	txs := make([]*models.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return txs, nil
}

// Update updates a transaction record
func (r *TransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	query := `
		UPDATE transactions
		SET sender_id = $2,
		    receiver_id = $3,
		    description = $4,
		    amount = $5
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		tx.ID,
		tx.SenderID,
		tx.ReceiverID,
		tx.Description,
		tx.Amount,
	)
	if err != nil {
		return mapError(err, "update transaction")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("update transaction %s: %w", tx.ID, repositories.ErrNotFound)
	}

	r.logger.Debug("transaction updated", zap.String("id", tx.ID.String()))
	return nil
}

// Delete deletes a transaction record
func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM transactions WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return mapError(err, "delete transaction")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("delete transaction %s: %w", id, repositories.ErrNotFound)
	}

	r.logger.Debug("transaction deleted", zap.String("id", id.String()))
	return nil
}
