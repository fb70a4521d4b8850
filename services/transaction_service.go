package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/paymybuddy/api/models"
	"github.com/paymybuddy/api/repositories"
	"go.uber.org/zap"
)

const maxDescriptionLength = 255

// CreateTransactionInput holds the fields of a new transaction
type CreateTransactionInput struct {
	SenderID    uuid.UUID
	ReceiverID  uuid.UUID
	Amount      float64
	Description string
}

// TransactionPatch holds the fields to change on a transaction. Nil fields are left untouched.
type TransactionPatch struct {
	SenderID    *uuid.UUID
	ReceiverID  *uuid.UUID
	Amount      *float64
	Description *string
}

// TransactionService records transfers between users. Balances are not moved.
type TransactionService struct {
	transactions repositories.TransactionRepository
	users        repositories.UserRepository
	txManager    repositories.TransactionManager
	logger       *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactions repositories.TransactionRepository,
	users repositories.UserRepository,
	txManager repositories.TransactionManager,
	logger *zap.Logger,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		users:        users,
		txManager:    txManager,
		logger:       logger,
	}
}

// ListTransactions returns all transactions, newest first
func (s *TransactionService) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	txs, err := s.transactions.List(ctx)
	if err != nil {
		return nil, WrapInternal("failed to list transactions", err)
	}
	return txs, nil
}

// ListTransactionsForUser returns the transactions the user sent or received
func (s *TransactionService) ListTransactionsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, notFound(err, ErrUserNotFound.Message, "failed to get user")
	}
	txs, err := s.transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, WrapInternal("failed to list transactions", err)
	}
	return txs, nil
}

// GetTransaction returns a transaction by ID
func (s *TransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTransactionNotFound.Message, "failed to get transaction")
	}
	return tx, nil
}

// CreateTransaction records a transfer. Both parties are checked and the
// row inserted inside one database transaction.
func (s *TransactionService) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*models.Transaction, error) {
	record := models.NewTransaction(in.SenderID, in.ReceiverID, in.Amount, strings.TrimSpace(in.Description))
	if err := validateTransaction(record); err != nil {
		return nil, err
	}

	err := WithTransaction(ctx, s.txManager, func(ctx context.Context, _ repositories.Transaction) error {
		if err := s.checkParties(ctx, record); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, record); err != nil {
			return mapTransactionWriteError(err, "failed to create transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction created",
		zap.String("transaction_id", record.ID.String()),
		zap.String("sender_id", record.SenderID.String()),
		zap.String("receiver_id", record.ReceiverID.String()),
		zap.Float64("amount", record.Amount))
	return record, nil
}

// UpdateTransaction applies patch to a transaction under the same rules as CreateTransaction
func (s *TransactionService) UpdateTransaction(ctx context.Context, id uuid.UUID, patch TransactionPatch) (*models.Transaction, error) {
	return WithTransactionResult(ctx, s.txManager, func(ctx context.Context, _ repositories.Transaction) (*models.Transaction, error) {
		record, err := s.GetTransaction(ctx, id)
		if err != nil {
			return nil, err
		}

		if patch.SenderID != nil {
			record.SenderID = *patch.SenderID
		}
		if patch.ReceiverID != nil {
			record.ReceiverID = *patch.ReceiverID
		}
		if patch.Amount != nil {
			record.Amount = models.RoundAmount(*patch.Amount)
		}
		if patch.Description != nil {
			record.Description = strings.TrimSpace(*patch.Description)
		}

		if err := validateTransaction(record); err != nil {
			return nil, err
		}
		if err := s.checkParties(ctx, record); err != nil {
			return nil, err
		}

		if err := s.transactions.Update(ctx, record); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, NewDomainError(ErrorTypeNotFound, ErrTransactionNotFound.Message, err)
			}
			return nil, mapTransactionWriteError(err, "failed to update transaction")
		}

		s.logger.Info("transaction updated", zap.String("transaction_id", record.ID.String()))
		return record, nil
	})
}

// DeleteTransaction removes a transaction
func (s *TransactionService) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if err := s.transactions.Delete(ctx, id); err != nil {
		return notFound(err, ErrTransactionNotFound.Message, "failed to delete transaction")
	}
	s.logger.Info("transaction deleted", zap.String("transaction_id", id.String()))
	return nil
}

func validateTransaction(t *models.Transaction) error {
	switch {
	case t.SenderID == uuid.Nil:
		return NewDomainError(ErrorTypeValidation, "sender is required", nil)
	case t.ReceiverID == uuid.Nil:
		return NewDomainError(ErrorTypeValidation, "receiver is required", nil)
	case t.SenderID == t.ReceiverID:
		return NewDomainError(ErrorTypeValidation, "sender and receiver must be different users", nil)
	case t.Amount <= 0:
		return NewDomainError(ErrorTypeValidation, "amount must be greater than zero", nil).
			WithDetail("amount", t.Amount)
	case len(t.Description) > maxDescriptionLength:
		return NewDomainError(ErrorTypeValidation, "description is too long", nil).
			WithDetail("max_length", maxDescriptionLength)
	}
	return nil
}

// checkParties requires both sender and receiver to exist
func (s *TransactionService) checkParties(ctx context.Context, t *models.Transaction) error {
	if _, err := s.users.GetByID(ctx, t.SenderID); err != nil {
		return notFound(err, "sender not found", "failed to get sender").
			WithDetail("sender_id", t.SenderID.String())
	}
	if _, err := s.users.GetByID(ctx, t.ReceiverID); err != nil {
		return notFound(err, "receiver not found", "failed to get receiver").
			WithDetail("receiver_id", t.ReceiverID.String())
	}
	return nil
}

func mapTransactionWriteError(err error, message string) error {
	if errors.Is(err, repositories.ErrForeignKey) {
		return NewDomainError(ErrorTypeNotFound, "sender or receiver not found", err)
	}
	return WrapInternal(message, err)
}
