package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// User is an account holder. The password hash never leaves the server.
type User struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Username     string      `json:"username" db:"username"`
	Email        string      `json:"email" db:"email"`
	PasswordHash string      `json:"-" db:"password_hash"`
	Balance      float64     `json:"balance" db:"balance"`
	Connections  []uuid.UUID `json:"connections" db:"-"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User with a zero balance
func NewUser(username, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Balance:      0,
		Connections:  []uuid.UUID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsConnectedTo returns true if other is among the user's connections
func (u *User) IsConnectedTo(other uuid.UUID) bool {
	for _, id := range u.Connections {
		if id == other {
			return true
		}
	}
	return false
}

// RoundAmount rounds a monetary value to the two decimal places stored in NUMERIC(15,2)
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}
