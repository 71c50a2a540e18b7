package handler

// RESPONSE HELPERS:
// Every error response from the API has the same shape:
//   {"error": "Invalid email format."}
// The front-end form shows that string inline, so it must always be
// human-readable and must never carry internal detail.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/mailinglist/internal/apperror"
)

// ErrorResponse is the error body returned by all API endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent, all we can do is log
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends it.
//
//	apperror.ErrValidation → 400, AppError.Message
//	apperror.ErrConflict   → 400, AppError.Message
//	anything else          → 500, internalMsg
//
// A duplicate email is a 400 rather than a 409 because the form treats it
// like any other input problem.
func writeError(w http.ResponseWriter, err error, internalMsg string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) &&
		(errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrConflict)) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: appErr.Message})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: internalMsg})
}
