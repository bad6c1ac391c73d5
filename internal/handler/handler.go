package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MessageResponse is returned by operations that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// CountResponse is returned by the count endpoints.
type CountResponse struct {
	Count int `json:"count"`
}

var validate = validator.New()

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent.
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: message})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// On failure it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", logger)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation failed",
			Message: validationMessage(err),
		})
		return false
	}
	return true
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// domainStatus maps a domain error to its HTTP status.
func domainStatus(err *model.DomainError) int {
	switch err.Code {
	case model.ErrCodeInvalidCredentials, model.ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case model.ErrCodeEmailTaken:
		return http.StatusConflict
	case model.ErrCodeSessionNotFound, model.ErrCodeUserNotFound,
		model.ErrCodeCartItemNotFound, model.ErrCodeAddressNotFound,
		model.ErrCodeOrderNotFound, model.ErrCodeProductNotFound, model.ErrCodeCollectionNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidQuantity, model.ErrCodeNoValidItems, model.ErrCodeInvalidShipping:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes a domain error with its mapped status, or a 500
// carrying fallback for anything else.
func writeServiceError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, domainStatus(domainErr), domainErr.Message, logger)
		return
	}
	logger.Error().Err(err).Msg(fallback)
	writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: fallback})
}

// currentUser returns the authenticated caller. Routes using it sit behind
// the JWT middleware, so a miss is answered with 401.
func currentUser(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (*auth.Claims, uuid.UUID, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", logger)
		return nil, uuid.Nil, false
	}
	userID := claims.UserUUID()
	if userID == uuid.Nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", logger)
		return nil, uuid.Nil, false
	}
	return claims, userID, true
}

// pathUUID parses a UUID path value. On failure it writes notFound as a 404.
func pathUUID(w http.ResponseWriter, raw, notFound string, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusNotFound, notFound, logger)
		return uuid.Nil, false
	}
	return id, true
}
