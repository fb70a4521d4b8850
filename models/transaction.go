package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is a recorded transfer between two users.
// Recording a transaction does not move balances.
type Transaction struct {
	ID          uuid.UUID `json:"id" db:"id"`
	SenderID    uuid.UUID `json:"sender_id" db:"sender_id"`
	ReceiverID  uuid.UUID `json:"receiver_id" db:"receiver_id"`
	Description string    `json:"description" db:"description"`
	Amount      float64   `json:"amount" db:"amount"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// NewTransaction creates a new Transaction stamped with the current time
func NewTransaction(senderID, receiverID uuid.UUID, amount float64, description string) *Transaction {
	return &Transaction{
		ID:          uuid.New(),
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Description: description,
		Amount:      RoundAmount(amount),
		Timestamp:   time.Now().UTC(),
	}
}
