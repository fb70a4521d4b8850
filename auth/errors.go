package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound is returned when no credential exists for an identifier
	ErrUserNotFound = errors.New("user not found")

	// ErrBadCredentials is returned when the password does not match the stored hash
	ErrBadCredentials = errors.New("bad credentials")

	// ErrInvalidToken is returned for a bad signature, wrong algorithm, or any other verification failure
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when the token's exp claim has passed
	ErrExpiredToken = errors.New("token expired")

	// ErrMalformedToken is returned when the token is not a well-formed compact JWS
	ErrMalformedToken = errors.New("malformed token")
)

// KeyKind identifies which half of the key pair failed to load
type KeyKind string

const (
	PublicKey  KeyKind = "public"
	PrivateKey KeyKind = "private"
)

// KeyParseError reports an RSA key that could not be read or parsed.
// Source is the file path, or "inline" when parsing raw bytes.
type KeyParseError struct {
	Kind   KeyKind
	Source string
	Err    error
}

// Error implements the error interface
func (e *KeyParseError) Error() string {
	return fmt.Sprintf("parse %s key from %s: %v", e.Kind, e.Source, e.Err)
}

// Unwrap returns the underlying error
func (e *KeyParseError) Unwrap() error {
	return e.Err
}

// IsKeyParseError checks if an error is a KeyParseError
func IsKeyParseError(err error) bool {
	var kpe *KeyParseError
	return errors.As(err, &kpe)
}
