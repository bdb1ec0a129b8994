package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huddle/backend/internal/relationships"
	"github.com/huddle/backend/internal/repositories"
)

func newHandlerService() *relationships.Service {
	return relationships.NewService(repositories.NewMemoryRelationshipStore(), nil)
}

type stubRelationshipService struct {
	err error
}

func (s *stubRelationshipService) SendRequest(context.Context, string, string) (relationships.RequestOutcome, error) {
	if s.err != nil {
		return "", s.err
	}
	return relationships.OutcomeRequested, nil
}

func (s *stubRelationshipService) AcceptRequest(context.Context, string, string) error  { return s.err }
func (s *stubRelationshipService) DeclineRequest(context.Context, string, string) error { return s.err }
func (s *stubRelationshipService) CancelRequest(context.Context, string, string) error  { return s.err }
func (s *stubRelationshipService) Unfriend(context.Context, string, string) error       { return s.err }
func (s *stubRelationshipService) Block(context.Context, string, string) error          { return s.err }
func (s *stubRelationshipService) Unblock(context.Context, string, string) error        { return s.err }

func (s *stubRelationshipService) Status(context.Context, string, string) (relationships.Status, error) {
	if s.err != nil {
		return "", s.err
	}
	return relationships.StatusNone, nil
}

func (s *stubRelationshipService) Friends(context.Context, string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []string{"user-2"}, nil
}

func (s *stubRelationshipService) IncomingRequests(context.Context, string) ([]string, error) {
	return s.Friends(nil, "")
}

func (s *stubRelationshipService) OutgoingRequests(context.Context, string) ([]string, error) {
	return s.Friends(nil, "")
}

func (s *stubRelationshipService) Blocked(context.Context, string) ([]string, error) {
	return s.Friends(nil, "")
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func postPair(t *testing.T, handler http.HandlerFunc, path, userID, otherID string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(pairRequest{UserID: userID, OtherID: otherID})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRelationshipHandlerRequest(t *testing.T) {
	handler := RelationshipHandler{Relationships: newHandlerService()}

	rec := postPair(t, handler.Request, "/api/v1/relationships/request", "alice", "bob")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["outcome"] != string(relationships.OutcomeRequested) {
		t.Fatalf("unexpected outcome %q", resp["outcome"])
	}
}

func TestRelationshipHandlerRequestFailures(t *testing.T) {
	body := []byte(`{"userId":"alice","otherId":"bob"}`)

	cases := []struct {
		name       string
		handler    RelationshipHandler
		method     string
		body       []byte
		wantStatus int
	}{
		{"wrongMethod", RelationshipHandler{Relationships: newHandlerService()}, http.MethodGet, body, http.StatusMethodNotAllowed},
		{"missingService", RelationshipHandler{}, http.MethodPost, body, http.StatusInternalServerError},
		{"badJSON", RelationshipHandler{Relationships: newHandlerService()}, http.MethodPost, []byte("{"), http.StatusBadRequest},
		{"missingFields", RelationshipHandler{Relationships: newHandlerService()}, http.MethodPost, []byte(`{"userId":"","otherId":""}`), http.StatusBadRequest},
		{"selfPair", RelationshipHandler{Relationships: newHandlerService()}, http.MethodPost, []byte(`{"userId":"same","otherId":"same"}`), http.StatusBadRequest},
		{"rateLimited", RelationshipHandler{Relationships: newHandlerService(), Limiter: denyAllLimiter{}}, http.MethodPost, body, http.StatusTooManyRequests},
		{"permissionDenied", RelationshipHandler{Relationships: &stubRelationshipService{err: relationships.ErrPermissionDenied}}, http.MethodPost, body, http.StatusForbidden},
		{"blocked", RelationshipHandler{Relationships: &stubRelationshipService{err: relationships.ErrBlocked}}, http.MethodPost, body, http.StatusConflict},
		{"notFound", RelationshipHandler{Relationships: &stubRelationshipService{err: relationships.ErrNotFound}}, http.MethodPost, body, http.StatusNotFound},
		{"contention", RelationshipHandler{Relationships: &stubRelationshipService{err: relationships.ErrContention}}, http.MethodPost, body, http.StatusConflict},
		{"unavailable", RelationshipHandler{Relationships: &stubRelationshipService{err: relationships.ErrUnavailable}}, http.MethodPost, body, http.StatusServiceUnavailable},
		{"internal", RelationshipHandler{Relationships: &stubRelationshipService{err: errors.New("boom")}}, http.MethodPost, body, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/v1/relationships/request", bytes.NewReader(tc.body))
			rec := httptest.NewRecorder()

			tc.handler.Request(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestRelationshipHandlerAcceptFlow(t *testing.T) {
	svc := newHandlerService()
	handler := RelationshipHandler{Relationships: svc}

	if rec := postPair(t, handler.Request, "/api/v1/relationships/request", "alice", "bob"); rec.Code != http.StatusOK {
		t.Fatalf("request: expected 200 got %d", rec.Code)
	}

	// The requester may not accept their own request.
	if rec := postPair(t, handler.Accept, "/api/v1/relationships/accept", "alice", "bob"); rec.Code != http.StatusForbidden {
		t.Fatalf("requester accept: expected 403 got %d", rec.Code)
	}

	if rec := postPair(t, handler.Accept, "/api/v1/relationships/accept", "bob", "alice"); rec.Code != http.StatusOK {
		t.Fatalf("accept: expected 200 got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/relationships/status?user=alice&other=bob", nil)
	rec := httptest.NewRecorder()
	handler.Status(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: expected 200 got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != string(relationships.StatusAccepted) {
		t.Fatalf("expected accepted status got %q", resp["status"])
	}
}

func TestRelationshipHandlerStatusFailures(t *testing.T) {
	handler := RelationshipHandler{Relationships: newHandlerService()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/relationships/status", nil)
	rec := httptest.NewRecorder()
	handler.Status(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected method not allowed got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/relationships/status?user=alice", nil)
	rec = httptest.NewRecorder()
	handler.Status(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request got %d", rec.Code)
	}

	handler = RelationshipHandler{}
	req = httptest.NewRequest(http.MethodGet, "/api/v1/relationships/status?user=alice&other=bob", nil)
	rec = httptest.NewRecorder()
	handler.Status(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected internal error got %d", rec.Code)
	}
}

func TestRelationshipHandlerFriends(t *testing.T) {
	svc := newHandlerService()
	handler := RelationshipHandler{Relationships: svc}

	if rec := postPair(t, handler.Request, "/api/v1/relationships/request", "alice", "bob"); rec.Code != http.StatusOK {
		t.Fatalf("request: expected 200 got %d", rec.Code)
	}
	if rec := postPair(t, handler.Accept, "/api/v1/relationships/accept", "bob", "alice"); rec.Code != http.StatusOK {
		t.Fatalf("accept: expected 200 got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/friends?user=alice", nil)
	rec := httptest.NewRecorder()
	handler.Friends(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var resp map[string][]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp["friends"]) != 1 || resp["friends"][0] != "bob" {
		t.Fatalf("unexpected friends payload: %+v", resp)
	}
}

func TestRelationshipHandlerListFailures(t *testing.T) {
	handler := RelationshipHandler{Relationships: newHandlerService()}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/friends?user=alice", nil)
	rec := httptest.NewRecorder()
	handler.Friends(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected method not allowed got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/friends", nil)
	rec = httptest.NewRecorder()
	handler.Friends(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request got %d", rec.Code)
	}

	handler = RelationshipHandler{Relationships: &stubRelationshipService{err: errors.New("db down")}}
	req = httptest.NewRequest(http.MethodGet, "/api/v1/friends?user=alice", nil)
	rec = httptest.NewRecorder()
	handler.Friends(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected internal error got %d", rec.Code)
	}

	// Empty result sets serialize as an empty array, not null.
	handler = RelationshipHandler{Relationships: newHandlerService()}
	req = httptest.NewRequest(http.MethodGet, "/api/v1/friends?user=nobody", nil)
	rec = httptest.NewRecorder()
	handler.Friends(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if body := rec.Body.String(); !bytes.Contains([]byte(body), []byte(`"friends":[]`)) {
		t.Fatalf("expected empty array payload, got %s", body)
	}
}

func TestRelationshipHandlerBlockUnblock(t *testing.T) {
	svc := newHandlerService()
	handler := RelationshipHandler{Relationships: svc}

	if rec := postPair(t, handler.Block, "/api/v1/relationships/block", "alice", "bob"); rec.Code != http.StatusOK {
		t.Fatalf("block: expected 200 got %d", rec.Code)
	}

	// Blocked pairs refuse new requests.
	if rec := postPair(t, handler.Request, "/api/v1/relationships/request", "bob", "alice"); rec.Code != http.StatusConflict {
		t.Fatalf("request while blocked: expected 409 got %d", rec.Code)
	}

	// Only the blocker may unblock.
	if rec := postPair(t, handler.Unblock, "/api/v1/relationships/unblock", "bob", "alice"); rec.Code != http.StatusForbidden {
		t.Fatalf("counterparty unblock: expected 403 got %d", rec.Code)
	}
	if rec := postPair(t, handler.Unblock, "/api/v1/relationships/unblock", "alice", "bob"); rec.Code != http.StatusOK {
		t.Fatalf("unblock: expected 200 got %d", rec.Code)
	}
}
