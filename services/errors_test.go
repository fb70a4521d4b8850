package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/paymybuddy/api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "user not found",
				Err:     errors.New("db error"),
			},
			wantMsg: "not_found: user not found (db error)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same error type", NewDomainError(ErrorTypeNotFound, "not found", nil), ErrUserNotFound, true},
		{"different error type", NewDomainError(ErrorTypeValidation, "validation", nil), ErrUserNotFound, false},
		{"not a domain error", NewDomainError(ErrorTypeNotFound, "not found", nil), errors.New("regular error"), false},
		{"wrapped cause", NewDomainError(ErrorTypeNotFound, "not found", repositories.ErrNotFound), repositories.ErrNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "validation error", nil)

	err.WithDetail("field", "email").WithDetail("value", "invalid-email")

	assert.Equal(t, "email", err.Details["field"])
	assert.Equal(t, "invalid-email", err.Details["value"])
}

func TestErrDuplicateEmail(t *testing.T) {
	err := ErrDuplicateEmail("bob@example.com", repositories.ErrDuplicateEmail)

	assert.True(t, IsValidationError(err))
	assert.Equal(t, "User already exist with given email:bob@example.com", GetErrorMessage(err))
	assert.Equal(t, "bob@example.com", GetErrorDetails(err)["email"])
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestErrDuplicateUsername(t *testing.T) {
	err := ErrDuplicateUsername("bob", nil)

	assert.True(t, IsValidationError(err))
	assert.Contains(t, GetErrorMessage(err), "bob")
	assert.Equal(t, "bob", GetErrorDetails(err)["username"])
}

func TestErrorTypeChecks(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", ErrUserNotFound, IsNotFoundError, true},
		{"wrapped not found", fmt.Errorf("wrapped: %w", ErrTransactionNotFound), IsNotFoundError, true},
		{"validation is not not found", ErrDuplicateUsername("bob", nil), IsNotFoundError, false},
		{"regular error is not not found", errors.New("regular"), IsNotFoundError, false},
		{"nil error is not not found", nil, IsNotFoundError, false},
		{"validation", ErrDuplicateUsername("bob", nil), IsValidationError, true},
		{"unauthorized", NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil), IsUnauthorizedError, true},
		{"forbidden", NewDomainError(ErrorTypeForbidden, "access forbidden", nil), IsForbiddenError, true},
		{"unauthorized is not forbidden", NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil), IsForbiddenError, false},
		{"conflict", ErrDuplicateConnection, IsConflictError, true},
		{"wrap internal", WrapInternal("db down", errors.New("x")), IsInternalError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"not found", ErrUserNotFound, ErrorTypeNotFound},
		{"validation", ErrDuplicateEmail("bob@example.com", nil), ErrorTypeValidation},
		{"conflict", ErrDuplicateConnection, ErrorTypeConflict},
		{"wrapped", fmt.Errorf("ctx: %w", NewDomainError(ErrorTypeForbidden, "access forbidden", nil)), ErrorTypeForbidden},
		{"regular error", errors.New("regular"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "user not found", GetErrorMessage(fmt.Errorf("ctx: %w", ErrUserNotFound)))
	assert.Equal(t, "plain", GetErrorMessage(errors.New("plain")))
}

func TestGetErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "bad", nil).WithDetail("field", "amount")

	details := GetErrorDetails(fmt.Errorf("ctx: %w", err))
	require.NotNil(t, details)
	assert.Equal(t, "amount", details["field"])
	assert.Nil(t, GetErrorDetails(errors.New("regular")))
}

func TestNotFound(t *testing.T) {
	missing := notFound(fmt.Errorf("get user: %w", repositories.ErrNotFound), "user not found", "failed")
	assert.Equal(t, ErrorTypeNotFound, missing.Type)
	assert.Equal(t, "user not found", missing.Message)

	broken := notFound(errors.New("connection reset"), "user not found", "failed to get user")
	assert.Equal(t, ErrorTypeInternal, broken.Type)
	assert.Equal(t, "failed to get user", broken.Message)
}
