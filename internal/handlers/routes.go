package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	rel := RelationshipHandler{Relationships: deps.Relationships, Limiter: deps.MutationLimiter}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/relationships/request", rel.Request)
	mux.HandleFunc("/api/v1/relationships/accept", rel.Accept)
	mux.HandleFunc("/api/v1/relationships/decline", rel.Decline)
	mux.HandleFunc("/api/v1/relationships/cancel", rel.Cancel)
	mux.HandleFunc("/api/v1/relationships/unfriend", rel.Unfriend)
	mux.HandleFunc("/api/v1/relationships/block", rel.Block)
	mux.HandleFunc("/api/v1/relationships/unblock", rel.Unblock)
	mux.HandleFunc("/api/v1/relationships/status", rel.Status)
	mux.HandleFunc("/api/v1/friends", rel.Friends)
	mux.HandleFunc("/api/v1/requests/incoming", rel.Incoming)
	mux.HandleFunc("/api/v1/requests/outgoing", rel.Outgoing)
	mux.HandleFunc("/api/v1/blocked", rel.Blocked)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Relationships   RelationshipService
	MutationLimiter RateLimiter
}
