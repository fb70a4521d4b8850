package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/paymybuddy/api/utils"
	"go.uber.org/zap"
)

// invalidLoginMessage is shared by unknown users and wrong passwords
const invalidLoginMessage = "Invalid username or password"

// PasswordAuthenticator verifies a username/password pair
type PasswordAuthenticator interface {
	Authenticate(ctx context.Context, identifier, rawPassword string) (*Principal, error)
}

// TokenIssuer issues signed tokens for a principal
type TokenIssuer interface {
	GenerateToken(principal *Principal) (string, error)
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the body returned on a successful login
type LoginResponse struct {
	Token string `json:"token"`
}

// Handler handles the password login flow
type Handler struct {
	authenticator PasswordAuthenticator
	issuer        TokenIssuer
	logger        *zap.Logger
}

// NewHandler creates a new auth handler
func NewHandler(authenticator PasswordAuthenticator, issuer TokenIssuer, logger *zap.Logger) *Handler {
	return &Handler{
		authenticator: authenticator,
		issuer:        issuer,
		logger:        logger,
	}
}

// HandleLogin verifies credentials and responds with a signed token
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetReqID(r.Context())

	var req LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.logger.Info("login rejected",
			zap.String("request_id", requestID),
			zap.Any("fields", utils.GetValidationFields(err)))
		_ = utils.WriteUnauthorized(w, invalidLoginMessage)
		return
	}

	principal, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrBadCredentials) {
			h.logger.Info("login rejected",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, invalidLoginMessage)
			return
		}
		h.logger.Error("login failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to authenticate")
		return
	}

	token, err := h.issuer.GenerateToken(principal)
	if err != nil {
		h.logger.Error("failed to issue token",
			zap.String("request_id", requestID),
			zap.String("subject", principal.Subject),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to issue token")
		return
	}

	h.logger.Info("login succeeded",
		zap.String("request_id", requestID),
		zap.String("subject", principal.Subject))

	_ = utils.WriteJSON(w, http.StatusOK, LoginResponse{Token: token})
}
