// package http implements the HTTP transport layer for the service.
// It handles incoming requests, decodes them, calls the appropriate service methods,
// and encodes the responses.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/notifyhq/recipient-router/internal/apperrors"
	"github.com/notifyhq/recipient-router/internal/digest"
	"github.com/notifyhq/recipient-router/internal/domain"
	"github.com/notifyhq/recipient-router/internal/service"
	"github.com/notifyhq/recipient-router/internal/validation"
	"github.com/notifyhq/recipient-router/pkg/logger/sl"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	log           *slog.Logger
	notifications service.NotificationService
}

// NewServer creates a new instance of the HTTP server.
func NewServer(log *slog.Logger, ns service.NotificationService) *Server {
	return &Server{
		log:           log,
		notifications: ns,
	}
}

// Routes sets up the router with all middleware and API endpoints.
// There are deliberately no endpoints for editing ownership rules:
// rule configuration is owned by the surrounding admin surface.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)

	mux.Handle("/metrics", promhttp.Handler())

	mux.Post("/recipients/resolve", s.PostRecipientsResolve)
	mux.Post("/owners/preview", s.PostOwnersPreview)
	mux.Post("/digest/build", s.PostDigestBuild)

	return mux
}

func (s *Server) PostRecipientsResolve(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostRecipientsResolve"

	var req resolveRecipientsRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	target := domain.Target{
		Type:       domain.TargetType(req.TargetType),
		Identifier: req.TargetIdentifier,
	}

	userIDs, err := s.notifications.ResolveRecipients(r.Context(), req.ProjectID, target, req.Event.attributes())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	if userIDs == nil {
		userIDs = []string{}
	}

	s.respond(w, http.StatusOK, map[string][]string{"user_ids": userIDs})
}

func (s *Server) PostOwnersPreview(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostOwnersPreview"

	var req previewOwnersRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	attrs := domain.EventAttributes{Paths: req.Event.Paths, URL: req.Event.URL}

	resolved, err := s.notifications.PreviewOwners(r.Context(), req.ProjectID, attrs)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	owners := make([]map[string]string, 0, len(resolved.Owners))
	for _, owner := range resolved.Owners {
		owners = append(owners, map[string]string{
			"type":       string(owner.Kind),
			"identifier": owner.Identifier,
		})
	}

	s.respond(w, http.StatusOK, map[string]interface{}{
		"owners":           owners,
		"used_fallthrough": resolved.UsedFallthrough,
	})
}

func (s *Server) PostDigestBuild(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.PostDigestBuild"

	var req buildDigestRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	target := domain.Target{
		Type:       domain.TargetType(req.TargetType),
		Identifier: req.TargetIdentifier,
	}

	records := make([]digest.Record, len(req.Records))
	for i, rec := range req.Records {
		records[i] = digest.Record{
			Event: domain.Event{
				ID:        rec.EventID,
				IssueID:   rec.IssueID,
				ProjectID: req.ProjectID,
				Attributes: domain.EventAttributes{
					Paths: rec.Paths,
					URL:   rec.URL,
				},
			},
			RuleIDs: rec.RuleIDs,
		}
	}

	d, userIDs, err := s.notifications.BuildDigest(r.Context(), req.ProjectID, target, records)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	if userIDs == nil {
		userIDs = []string{}
	}

	groups := make([]map[string]interface{}, 0, len(d.Groups))
	for _, g := range d.Groups {
		groups = append(groups, map[string]interface{}{
			"issue_id":                g.IssueID,
			"rules_triggered":         g.RulesTriggered,
			"event_count":             g.EventCount,
			"representative_event_id": g.Representative.ID,
		})
	}

	s.respond(w, http.StatusOK, map[string]interface{}{
		"project_id":   d.ProjectID,
		"groups":       groups,
		"total_events": d.TotalEvents,
		"total_issues": d.TotalIssues,
		"user_ids":     userIDs,
	})
}

// attributes converts an optional event payload into event attributes.
// A nil payload stays nil so the service can distinguish "no event" from
// an event without matchable attributes.
func (p *eventPayload) attributes() *domain.EventAttributes {
	if p == nil {
		return nil
	}

	return &domain.EventAttributes{Paths: p.Paths, URL: p.URL}
}

// respond is a helper function to encode data to JSON and write it to the response.
func (s *Server) respond(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("failed to encode response", sl.Err(err))
		}
	}
}

// respondError is a convenience wrapper around respond for sending simple error messages.
func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.respond(w, code, map[string]string{"error": message})
}

// decodeAndValidate is a helper that deserializes a JSON request body into a struct
// and then runs validation checks on it.
func (s *Server) decodeAndValidate(r *http.Request, v interface{}) error {
	if err := s.decode(r.Body, v); err != nil {
		return err
	}

	if err := validation.ValidateStruct(v); err != nil {
		return err
	}

	return nil
}

// decode is a helper function to decode a JSON request body.
func (s *Server) decode(body io.ReadCloser, v interface{}) error {
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}

// handleServiceError provides centralized error handling for all HTTP handlers.
// It logs the internal error and maps it to a user-friendly HTTP response.
// An empty recipient set is a valid result and never reaches this path;
// only genuine configuration and data errors do.
func (s *Server) handleServiceError(w http.ResponseWriter, op string, err error) {
	log := s.log.With(slog.String("op", op))
	log.Error("service error occurred", sl.Err(err))

	var validationErr *validation.ValidationError

	switch {
	case errors.As(err, &validationErr):
		wrappedErr := fmt.Errorf("%w: %s", apperrors.ErrValidation, validationErr.Error())
		s.respondError(w, http.StatusBadRequest, wrappedErr.Error())
	case errors.Is(err, apperrors.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, "invalid request body")
	case errors.Is(err, apperrors.ErrUnknownTarget):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrMissingAttributes):
		s.respondError(w, http.StatusBadRequest, apperrors.ErrMissingAttributes.Error())
	case errors.Is(err, apperrors.ErrTeamNotInProject):
		s.respondError(w, http.StatusConflict, apperrors.ErrTeamNotInProject.Error())
	case errors.Is(err, apperrors.ErrMalformedSchema):
		s.respondError(w, http.StatusUnprocessableEntity, apperrors.ErrMalformedSchema.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "resource not found")
	default:
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
