// Package handler provides HTTP handlers for the Kurosawa Movies API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/kurosawa-movies/internal/domain"
	"github.com/prn-tf/kurosawa-movies/internal/service"
)

// Envelope status markers. Every response body carries one of them; clients
// key off the marker, not the HTTP status, for business outcomes.
const (
	statusSuccess = 1
	statusFailure = -1
)

// writeJSON writes payload as JSON with the given HTTP status.
func writeJSON(w http.ResponseWriter, httpStatus int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeSuccess writes a success envelope, merging the extra fields into it.
func writeSuccess(w http.ResponseWriter, fields map[string]any) {
	payload := map[string]any{"status": statusSuccess}
	for k, v := range fields {
		payload[k] = v
	}
	writeJSON(w, http.StatusOK, payload)
}

// writeFailure writes a failure envelope under the "errors" key. Business
// failures keep HTTP 200; only auth and not-found outcomes use 4xx.
func writeFailure(w http.ResponseWriter, httpStatus int, errs any) {
	writeJSON(w, httpStatus, map[string]any{
		"status": statusFailure,
		"errors": errs,
	})
}

// writeServiceError maps a service error onto the envelope convention:
// validation and conflict errors stay HTTP 200 with status -1, permission
// failures are 403, missing entities are 404, everything else is 500.
func writeServiceError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	if verr, ok := service.AsValidationError(err); ok {
		writeFailure(w, http.StatusOK, verr.Fields)
		return
	}

	switch {
	case errors.Is(err, domain.ErrMovieAlreadyExists):
		writeFailure(w, http.StatusOK, "Movie already exists")
	case errors.Is(err, service.ErrPermissionDenied):
		writeFailure(w, http.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, domain.ErrMovieNotFound), errors.Is(err, domain.ErrUserNotFound):
		writeFailure(w, http.StatusNotFound, "Not found.")
	default:
		logger.Error().Err(err).Msg("request failed")
		writeFailure(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody decodes the request body into dst. A body that is not valid
// JSON is reported as a 400 with the failure envelope.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
