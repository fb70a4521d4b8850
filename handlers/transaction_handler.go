package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/paymybuddy/api/models"
	"github.com/paymybuddy/api/services"
	"github.com/paymybuddy/api/utils"
	"go.uber.org/zap"
)

// TransactionService is the transaction behaviour the handlers depend on
type TransactionService interface {
	ListTransactions(ctx context.Context) ([]*models.Transaction, error)
	ListTransactionsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, in services.CreateTransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id uuid.UUID, patch services.TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

// CreateTransactionRequest is the body of POST /api/transactions
type CreateTransactionRequest struct {
	SenderID    string  `json:"sender_id" validate:"required,uuid"`
	ReceiverID  string  `json:"receiver_id" validate:"required,uuid,nefield=SenderID"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=255"`
}

// UpdateTransactionRequest is the body of PUT /api/transactions/{id}. Absent fields are unchanged.
type UpdateTransactionRequest struct {
	SenderID    *string  `json:"sender_id,omitempty" validate:"omitempty,uuid"`
	ReceiverID  *string  `json:"receiver_id,omitempty" validate:"omitempty,uuid"`
	Amount      *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=255"`
}

// TransactionHandler handles transaction record endpoints
type TransactionHandler struct {
	transactions TransactionService
	logger       *zap.Logger
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactions TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		logger:       logger,
	}
}

// HandleList handles GET /api/transactions with an optional ?user_id= filter
func (h *TransactionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var (
		txs []*models.Transaction
		err error
	)

	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, parseErr := utils.ParseUUID(raw, "user_id")
		if parseErr != nil {
			HandleValidationError(w, parseErr, h.logger)
			return
		}
		txs, err = h.transactions.ListTransactionsForUser(r.Context(), userID)
	} else {
		txs, err = h.transactions.ListTransactions(r.Context())
	}
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, txs)
}

// HandleGet handles GET /api/transactions/{id}
func (h *TransactionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	tx, err := h.transactions.GetTransaction(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, tx)
}

// HandleCreate handles POST /api/transactions
func (h *TransactionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	senderID, err := utils.ParseUUID(req.SenderID, "sender_id")
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}
	receiverID, err := utils.ParseUUID(req.ReceiverID, "receiver_id")
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	tx, err := h.transactions.CreateTransaction(r.Context(), services.CreateTransactionInput{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteCreated(w, tx)
}

// HandleUpdate handles PUT /api/transactions/{id}
func (h *TransactionHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateTransactionRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	patch := services.TransactionPatch{
		Amount:      req.Amount,
		Description: req.Description,
	}
	if req.SenderID != nil {
		sender, err := utils.ParseUUID(*req.SenderID, "sender_id")
		if err != nil {
			HandleValidationError(w, err, h.logger)
			return
		}
		patch.SenderID = &sender
	}
	if req.ReceiverID != nil {
		receiver, err := utils.ParseUUID(*req.ReceiverID, "receiver_id")
		if err != nil {
			HandleValidationError(w, err, h.logger)
			return
		}
		patch.ReceiverID = &receiver
	}

	tx, err := h.transactions.UpdateTransaction(r.Context(), id, patch)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, tx)
}

// HandleDelete handles DELETE /api/transactions/{id}
func (h *TransactionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.transactions.DeleteTransaction(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteMessage(w, "Transaction deleted successfully")
}
