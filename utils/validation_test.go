package utils

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

type transferRequest struct {
	SenderID   string  `json:"sender_id" validate:"required,uuid"`
	ReceiverID string  `json:"receiver_id" validate:"required,uuid,nefield=SenderID"`
	Amount     float64 `json:"amount" validate:"gt=0"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		err := ValidateStruct(registerRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "password123",
		})
		assert.NoError(t, err)
	})

	t.Run("reports json field names", func(t *testing.T) {
		err := ValidateStruct(registerRequest{Email: "not-an-email", Password: "short"})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))

		fields := GetValidationFields(err)
		assert.Equal(t, "username is required", fields["username"])
		assert.Equal(t, "email must be a valid email", fields["email"])
		assert.Equal(t, "password must be at least 8", fields["password"])
	})

	t.Run("max length", func(t *testing.T) {
		long := make([]byte, 51)
		for i := range long {
			long[i] = 'a'
		}
		err := ValidateStruct(registerRequest{
			Username: string(long),
			Email:    "alice@example.com",
			Password: "password123",
		})
		require.Error(t, err)
		assert.Equal(t, "username must be at most 50", GetValidationFields(err)["username"])
	})

	t.Run("amount and distinct parties", func(t *testing.T) {
		id := uuid.NewString()
		err := ValidateStruct(transferRequest{SenderID: id, ReceiverID: id, Amount: 0})
		require.Error(t, err)

		fields := GetValidationFields(err)
		assert.Equal(t, "amount must be greater than 0", fields["amount"])
		assert.Contains(t, fields["receiver_id"], "must differ from")
	})
}

func TestValidationDetails(t *testing.T) {
	t.Run("validation error", func(t *testing.T) {
		err := &ValidationError{Message: "Validation failed", Fields: map[string]string{"email": "bad"}}
		details := ValidationDetails(err)
		assert.Equal(t, map[string]interface{}{"email": "bad"}, details)
	})

	t.Run("other error", func(t *testing.T) {
		assert.Nil(t, ValidationDetails(errors.New("boom")))
	})
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Message: "Validation failed"}
	assert.Equal(t, "Validation failed", err.Error())
}

func TestParseUUID(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		want := uuid.New()
		got, err := ParseUUID(want.String(), "id")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("invalid", func(t *testing.T) {
		got, err := ParseUUID("not-a-uuid", "sender_id")
		require.Error(t, err)
		assert.Equal(t, uuid.Nil, got)
		assert.Equal(t, "sender_id must be a valid UUID", err.Error())
	})
}
