package handlers

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/paymybuddy/api/middleware"
	"github.com/paymybuddy/api/models"
	"github.com/paymybuddy/api/services"
	"github.com/paymybuddy/api/utils"
	"go.uber.org/zap"
)

// UserService is the user behaviour the handlers depend on
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, patch services.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	AddConnection(ctx context.Context, userID, connectionID uuid.UUID) error
	ListConnections(ctx context.Context, userID uuid.UUID) ([]*models.User, error)
}

// RegisterRequest is the body of POST /api/auth/register and POST /user
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest is the body of PUT /api/users/{id}. Absent fields are unchanged.
type UpdateUserRequest struct {
	Username *string  `json:"username,omitempty" validate:"omitempty,max=50"`
	Email    *string  `json:"email,omitempty" validate:"omitempty,email,max=100"`
	Password *string  `json:"password,omitempty"`
	Balance  *float64 `json:"balance,omitempty" validate:"omitempty,gte=0"`
}

// AddConnectionRequest is the body of POST /api/users/{id}/connections
type AddConnectionRequest struct {
	ConnectionID string `json:"connection_id" validate:"required,uuid"`
}

// UserHandler handles user account endpoints
type UserHandler struct {
	users  UserService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// HandleRegister handles POST /api/auth/register and POST /user
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	user, err := h.users.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Info("registration rejected",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.String("email", req.Email),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse{
		Data:    user,
		Message: "User registered successfully!",
	})
}

// HandleList handles GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, users)
}

// HandleMe handles GET /api/users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), principal.Subject)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, user)
}

// HandleGet handles GET /api/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, user)
}

// HandleUpdate handles PUT /api/users/{id}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	user, err := h.users.UpdateUser(r.Context(), id, services.UserPatch{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Balance:  req.Balance,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, user)
}

// HandleDelete handles DELETE /api/users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteMessage(w, "User deleted successfully")
}

// HandleListConnections handles GET /api/users/{id}/connections
func (h *UserHandler) HandleListConnections(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	users, err := h.users.ListConnections(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteOK(w, users)
}

// HandleAddConnection handles POST /api/users/{id}/connections
func (h *UserHandler) HandleAddConnection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req AddConnectionRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}
	connectionID, err := utils.ParseUUID(req.ConnectionID, "connection_id")
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	if err := h.users.AddConnection(r.Context(), id, connectionID); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	_ = utils.WriteMessage(w, "Connection added successfully")
}
