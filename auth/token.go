package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultIssuer is written to the iss claim when none is configured
	DefaultIssuer = "self"

	// DefaultTokenTTL is the lifetime of an issued token when none is configured
	DefaultTokenTTL = time.Hour
)

// TokenConfig holds token issuance settings
type TokenConfig struct {
	Issuer string
	TTL    time.Duration
}

// TokenOption customizes a TokenService
type TokenOption func(*TokenService)

// WithClock overrides the time source used for iat/exp and expiry checks
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// TokenService issues and verifies RS256-signed JWTs
type TokenService struct {
	keys   *KeyPair
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenService creates a TokenService that signs with keys.Private and verifies with keys.Public
func NewTokenService(keys *KeyPair, cfg TokenConfig, opts ...TokenOption) *TokenService {
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}

	s := &TokenService{
		keys:   keys,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	return s
}

// TTL returns the lifetime applied to issued tokens
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// GenerateToken issues a signed token for the principal
func (s *TokenService) GenerateToken(principal *Principal) (string, error) {
	if principal == nil || principal.Subject == "" {
		return "", errors.New("principal subject is required")
	}
	if s.keys == nil || s.keys.Private == nil {
		return "", errors.New("signing key not configured")
	}

	roles := make([]string, 0, len(principal.Roles))
	for _, r := range principal.Roles {
		roles = append(roles, stripRolePrefix(r))
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   principal.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Roles: roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(s.keys.Private)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the token signature and expiry and returns its principal.
// Roles in the returned principal carry the ROLE_ prefix.
func (s *TokenService) ValidateToken(ctx context.Context, tokenString string) (*Principal, error) {
	if s.keys == nil || s.keys.Public == nil {
		return nil, fmt.Errorf("%w: verification key not configured", ErrInvalidToken)
	}

	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.keys.Public, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) && s.expiredUnverified(tokenString) {
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		return nil, classifyTokenError(err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	roles := make([]string, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		roles = append(roles, withRolePrefix(r))
	}

	return &Principal{
		Subject: claims.Subject,
		Roles:   roles,
	}, nil
}

// expiredUnverified reports whether the token's exp claim has passed, without
// checking the signature. An expired token is reported as expired whoever signed it.
func (s *TokenService) expiredUnverified(tokenString string) bool {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}
