package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/paymybuddy/api/utils"
	"go.uber.org/zap"
)

// decodeAndValidate reads the JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}, logger *zap.Logger) bool {
	if err := utils.DecodeJSON(r, dst); err != nil {
		HandleValidationError(w, err, logger)
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		HandleValidationError(w, err, logger)
		return false
	}
	return true
}

// pathUUID parses a chi URL parameter as a UUID, writing a 400 on failure
func pathUUID(w http.ResponseWriter, r *http.Request, param string, logger *zap.Logger) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(chi.URLParam(r, param), param)
	if err != nil {
		HandleValidationError(w, err, logger)
		return uuid.Nil, false
	}
	return id, true
}

var errDatabaseNotConfigured = errors.New("database not configured")
