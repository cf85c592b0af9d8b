package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"smartshop/internal/domain"
	"smartshop/internal/middleware"
	"smartshop/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PagedResponse wraps a paginated collection.
type PagedResponse struct {
	Items    interface{} `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// handleServiceError maps domain errors onto HTTP statuses and writes the
// error envelope. Unrecognized errors become opaque 500s so internals never
// leak to clients.
func handleServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var insufficientStock *domain.InsufficientStockError
	var invalidTransition *domain.InvalidTransitionError

	switch {
	case errors.As(err, &insufficientStock):
		middleware.RespondWithError(w, http.StatusBadRequest, insufficientStock.Error())
	case errors.As(err, &invalidTransition):
		middleware.RespondWithError(w, http.StatusBadRequest, invalidTransition.Error())
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, repository.ErrCategoryHasChildren):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		middleware.RespondWithError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, repository.ErrUserNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrConflict), errors.Is(err, repository.ErrCategoryAlreadyExists),
		errors.Is(err, repository.ErrUserAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody decodes and validates a JSON request body, writing the
// appropriate 400 response itself. Returns false when the request was bad.
func decodeBody(w http.ResponseWriter, r *http.Request, logger *zap.Logger, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// urlUUID parses a UUID path parameter, writing the 400 response on failure.
func urlUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s", param))
		return uuid.Nil, false
	}
	return id, true
}

// requester extracts the authenticated user's id and role from the context,
// writing the 401 response on failure.
func requester(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, bool) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, "", false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, "", false
	}
	role, ok := middleware.GetUserRole(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, "", false
	}
	return userID, role, true
}

// queryInt reads an integer query parameter with a fallback.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
