// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// The service takes a repository.SubscriberRepository, never a concrete
// database type, and holds no subscriber state between calls.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/asaskevich/govalidator"

	"github.com/sakif/mailinglist/internal/apperror"
	"github.com/sakif/mailinglist/internal/model"
	"github.com/sakif/mailinglist/internal/repository"
)

// emailPattern is deliberately loose: something@something.something with no
// whitespace and no extra "@". RE2's \s is ASCII only, so the class also
// excludes \v, the Unicode separators (NBSP, U+2000-U+200A, U+3000, ...) and
// the byte order mark.
const (
	emailChar    = `[^\s\v\p{Z}\x{FEFF}@]`
	emailPattern = `^` + emailChar + `+@` + emailChar + `+\.` + emailChar + `+$`
)

// User-facing validation messages.
const (
	MsgRequiredFields  = "Name and email are required."
	MsgInvalidEmail    = "Invalid email format."
	MsgNoInterest      = "At least one interest must be selected."
	MsgInvalidInterest = "Invalid interest."
)

// SignupRequest is the decoded body of a signup submission.
type SignupRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Interests []string `json:"interests"`
}

// SignupService validates signups and reads the list back by interest.
type SignupService struct {
	repo   repository.SubscriberRepository
	logger *slog.Logger
}

// NewSignupService creates a new SignupService.
func NewSignupService(repo repository.SubscriberRepository, logger *slog.Logger) *SignupService {
	return &SignupService{
		repo:   repo,
		logger: logger,
	}
}

// Signup validates req and persists one subscriber.
//
// Checks run in a fixed order and the first failure is returned:
//  1. name (trimmed) or email empty
//  2. email does not match emailPattern
//  3. no recognised interest tag
//
// Unrecognised tags are dropped silently. A validation failure never reaches
// the repository. A duplicate email comes back wrapping apperror.ErrConflict;
// any other error is a storage failure.
func (s *SignupService) Signup(ctx context.Context, req SignupRequest) (*model.Subscriber, error) {
	subscriber, err := validateSignup(req)
	if err != nil {
		logRejected(ctx, s.logger, err)
		return nil, err
	}

	if err := s.repo.Insert(ctx, subscriber); err != nil {
		if _, ok := apperror.Message(err); ok {
			logRejected(ctx, s.logger, err)
			return nil, err
		}
		s.logger.Error("failed to insert subscriber", slog.String("error", err.Error()))
		return nil, fmt.Errorf("inserting subscriber: %w", err)
	}

	attrs := []any{slog.Int64("id", subscriber.ID)}
	for _, interest := range model.Interests {
		attrs = append(attrs, slog.Bool(string(interest), subscriber.HasInterest(interest)))
	}
	s.logger.Info("subscriber created", attrs...)

	return subscriber, nil
}

// logRejected records which field a signup failed on. The submitted values
// are left out of the log.
func logRejected(ctx context.Context, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return
	}
	logger.DebugContext(ctx, "signup rejected",
		slog.String("field", appErr.Field),
		slog.String("reason", appErr.Message),
	)
}

func validateSignup(req SignupRequest) (*model.Subscriber, error) {
	name := strings.TrimSpace(req.Name)
	if govalidator.IsNull(name) {
		return nil, apperror.ValidationFailed("name", MsgRequiredFields)
	}
	if govalidator.IsNull(req.Email) {
		return nil, apperror.ValidationFailed("email", MsgRequiredFields)
	}

	if !govalidator.Matches(req.Email, emailPattern) {
		return nil, apperror.ValidationFailed("email", MsgInvalidEmail)
	}

	subscriber := &model.Subscriber{
		Name:  name,
		Email: req.Email,
	}
	for _, tag := range req.Interests {
		if interest, ok := model.ParseInterest(tag); ok {
			subscriber.SetInterest(interest)
		}
	}
	if !subscriber.AnyInterest() {
		return nil, apperror.ValidationFailed("interests", MsgNoInterest)
	}

	return subscriber, nil
}

// EmailsByInterest returns the emails subscribed to tag. An unknown tag is a
// validation error and no query is run. The result is never nil.
func (s *SignupService) EmailsByInterest(ctx context.Context, tag string) ([]string, error) {
	interest, ok := model.ParseInterest(tag)
	if !ok {
		return nil, apperror.ValidationFailed("interest", MsgInvalidInterest)
	}

	emails, err := s.repo.ListEmailsByInterest(ctx, interest)
	if err != nil {
		s.logger.Error("failed to list emails",
			slog.String("interest", tag),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing %s emails: %w", tag, err)
	}
	if emails == nil {
		emails = []string{}
	}

	return emails, nil
}

// Ready reports whether the backing store is reachable.
func (s *SignupService) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
