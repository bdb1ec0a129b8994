package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/huddle/backend/internal/logging"
	"github.com/huddle/backend/internal/relationships"
)

// RelationshipHandler exposes the relationship state machine over HTTP.
type RelationshipHandler struct {
	Relationships RelationshipService
	Limiter       RateLimiter
}

type pairRequest struct {
	UserID  string `json:"userId"`
	OtherID string `json:"otherId"`
}

// Request handles POST /api/v1/relationships/request.
func (h RelationshipHandler) Request(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, userID, otherID string) (any, error) {
		outcome, err := h.Relationships.SendRequest(ctx, userID, otherID)
		if err != nil {
			return nil, err
		}
		return map[string]string{"outcome": string(outcome)}, nil
	})
}

// Accept handles POST /api/v1/relationships/accept.
func (h RelationshipHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, userID, otherID string) (any, error) {
		return okPayload, h.Relationships.AcceptRequest(ctx, userID, otherID)
	})
}

// Decline handles POST /api/v1/relationships/decline.
func (h RelationshipHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, userID, otherID string) (any, error) {
		return okPayload, h.Relationships.DeclineRequest(ctx, userID, otherID)
	})
}

// Cancel handles POST /api/v1/relationships/cancel.
func (h RelationshipHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, userID, otherID string) (any, error) {
		return okPayload, h.Relationships.CancelRequest(ctx, userID, otherID)
	})
}

// Unfriend handles POST /api/v1/relationships/unfriend.
func (h RelationshipHandler) Unfriend(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, userID, otherID string) (any, error) {
		return okPayload, h.Relationships.Unfriend(ctx, userID, otherID)
	})
}

// Block handles POST /api/v1/relationships/block.
func (h RelationshipHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, userID, otherID string) (any, error) {
		return okPayload, h.Relationships.Block(ctx, userID, otherID)
	})
}

// Unblock handles POST /api/v1/relationships/unblock.
func (h RelationshipHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(ctx context.Context, userID, otherID string) (any, error) {
		return okPayload, h.Relationships.Unblock(ctx, userID, otherID)
	})
}

// Status handles GET /api/v1/relationships/status.
func (h RelationshipHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Relationships == nil {
		logger.Error("relationship service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "relationship services unavailable"})
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("user"))
	otherID := strings.TrimSpace(r.URL.Query().Get("other"))
	if userID == "" || otherID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "user and other query parameters are required"})
		return
	}

	status, err := h.Relationships.Status(ctx, userID, otherID)
	if err != nil {
		respondRelationshipError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": string(status)})
}

// Friends handles GET /api/v1/friends.
func (h RelationshipHandler) Friends(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "friends", func(ctx context.Context, userID string) ([]string, error) {
		return h.Relationships.Friends(ctx, userID)
	})
}

// Incoming handles GET /api/v1/requests/incoming.
func (h RelationshipHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "requests", func(ctx context.Context, userID string) ([]string, error) {
		return h.Relationships.IncomingRequests(ctx, userID)
	})
}

// Outgoing handles GET /api/v1/requests/outgoing.
func (h RelationshipHandler) Outgoing(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "requests", func(ctx context.Context, userID string) ([]string, error) {
		return h.Relationships.OutgoingRequests(ctx, userID)
	})
}

// Blocked handles GET /api/v1/blocked.
func (h RelationshipHandler) Blocked(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "blocked", func(ctx context.Context, userID string) ([]string, error) {
		return h.Relationships.Blocked(ctx, userID)
	})
}

var okPayload = map[string]string{"status": "ok"}

func (h RelationshipHandler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, otherID string) (any, error)) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Relationships == nil {
		logger.Error("relationship service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "relationship services unavailable"})
		return
	}

	var req pairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid relationship payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	req.OtherID = strings.TrimSpace(req.OtherID)
	if req.UserID == "" || req.OtherID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "userId and otherId are required"})
		return
	}

	if !allowMutation(h.Limiter, r, req.UserID) {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	payload, err := op(ctx, req.UserID, req.OtherID)
	if err != nil {
		respondRelationshipError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, payload)
}

func (h RelationshipHandler) list(w http.ResponseWriter, r *http.Request, field string, op func(ctx context.Context, userID string) ([]string, error)) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Relationships == nil {
		logger.Error("relationship service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "relationship services unavailable"})
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("user"))
	if userID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "user query parameter is required"})
		return
	}

	ids, err := op(ctx, userID)
	if err != nil {
		respondRelationshipError(ctx, w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	respondJSON(ctx, w, http.StatusOK, map[string][]string{field: ids})
}

func respondRelationshipError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, relationships.ErrInvalidPair):
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, relationships.ErrPermissionDenied):
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, relationships.ErrBlocked):
		respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, relationships.ErrNotFound):
		respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, relationships.ErrContention):
		respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "operation contended, retry"})
	case errors.Is(err, relationships.ErrUnavailable):
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"error": "storage unavailable"})
	default:
		logging.FromContext(ctx).Error("relationship operation failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
