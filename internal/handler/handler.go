package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// retryAfterSeconds is advertised on dependency failures.
const retryAfterSeconds = "2"

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError maps err to a status code and writes the standard error body.
// Domain errors carry their own message; anything else is reported as an
// internal error without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	status, code, message := classify(err)

	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Int("status", status).
		Str("code", code).
		Str("path", r.URL.Path).
		Msg("handler error")

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: middleware.RequestIDFromContext(r.Context()),
	})
}

func classify(err error) (int, string, string) {
	if errors.Is(err, model.ErrDependency) {
		return http.StatusServiceUnavailable, model.ErrCodeDependency, model.ErrDependency.Message
	}

	de, ok := model.AsDomainError(err)
	if !ok {
		return http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error"
	}

	switch de.Code {
	case model.ErrCodeValidation, model.ErrCodeInvalidJSON, model.ErrCodeEmptyCart, model.ErrCodeInvalidOrExpiredOTP:
		return http.StatusBadRequest, de.Code, de.Message
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized, de.Code, de.Message
	case model.ErrCodeForbidden:
		return http.StatusForbidden, de.Code, de.Message
	case model.ErrCodeNotFound:
		return http.StatusNotFound, de.Code, de.Message
	case model.ErrCodeOutOfStock, model.ErrCodeUnavailable, model.ErrCodeInvalidTransition, model.ErrCodeTooLateToCancel:
		return http.StatusConflict, de.Code, de.Message
	default:
		return http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error"
	}
}

// decodeJSON decodes the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewDomainError(model.ErrCodeInvalidJSON, "invalid request body")
	}
	return nil
}

// principal returns the authenticated caller. The zero principal is
// rejected by the services.
func principal(r *http.Request) model.Principal {
	p, _ := model.PrincipalFromContext(r.Context())
	return p
}

// pagination parses the limit and offset query parameters. Zero means
// "use the service default".
func pagination(r *http.Request) (int, int, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return 0, 0, err
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.Validationf("invalid %s parameter", name)
	}
	return v, nil
}

// pathUUID parses a UUID route variable.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, model.Validationf("invalid %s", name)
	}
	return id, nil
}
