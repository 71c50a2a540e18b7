// Package handler contains HTTP request handlers for the mailing list.
//
// Handlers parse the request, call the service, and write the response. They
// hold no business rules: validation lives in the service layer.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/mailinglist/internal/model"
	"github.com/sakif/mailinglist/internal/service"
)

// Response messages owned by the HTTP layer.
const (
	MsgSignupSuccess   = "Signup successful!"
	MsgInvalidBody     = "Invalid request body."
	MsgInsertFailed    = "Failed to insert data."
	MsgRetrieveFailed  = "Failed to retrieve emails."
	maxSignupBodyBytes = 1 << 16
)

// SubscriberService is the slice of service.SignupService the handlers need.
type SubscriberService interface {
	Signup(ctx context.Context, req service.SignupRequest) (*model.Subscriber, error)
	EmailsByInterest(ctx context.Context, tag string) ([]string, error)
	Ready(ctx context.Context) error
}

// SignupResponse is returned by a successful signup.
type SignupResponse struct {
	Message string `json:"message"`
}

// EmailsResponse lists the addresses subscribed to one interest.
type EmailsResponse struct {
	Emails []string `json:"emails"`
}

// SubscriberHandler serves the signup and email-list endpoints.
type SubscriberHandler struct {
	svc    SubscriberService
	logger *slog.Logger
}

// NewSubscriberHandler creates a new SubscriberHandler.
func NewSubscriberHandler(svc SubscriberService, logger *slog.Logger) *SubscriberHandler {
	return &SubscriberHandler{
		svc:    svc,
		logger: logger,
	}
}

// HandleSignup registers a new subscriber.
//
// HTTP: POST /api/signup
// REQUEST BODY: {"name": "Ada", "email": "ada@x.com", "interests": ["band", "choir"]}
func (h *SubscriberHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxSignupBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid signup JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: MsgInvalidBody})
		return
	}

	if _, err := h.svc.Signup(r.Context(), req); err != nil {
		writeError(w, err, MsgInsertFailed)
		return
	}

	writeJSON(w, http.StatusOK, SignupResponse{Message: MsgSignupSuccess})
}

// HandleEmailsByInterest lists subscriber emails for one interest.
//
// HTTP: GET /api/emails/{interest}
// RESPONSE: {"emails": ["ada@x.com", ...]}
func (h *SubscriberHandler) HandleEmailsByInterest(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "interest")

	emails, err := h.svc.EmailsByInterest(r.Context(), tag)
	if err != nil {
		writeError(w, err, MsgRetrieveFailed)
		return
	}

	writeJSON(w, http.StatusOK, EmailsResponse{Emails: emails})
}

// HandleHealth reports whether the store is reachable.
//
// HTTP: GET /healthz
func (h *SubscriberHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ready(r.Context()); err != nil {
		h.logger.Error("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
