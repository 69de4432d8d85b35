package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
	pgrepo "github.com/olzhas-sembi/dating-backend/internal/repo/postgres"
	discoverysvc "github.com/olzhas-sembi/dating-backend/internal/services/discovery"
	identitysvc "github.com/olzhas-sembi/dating-backend/internal/services/identity"
)

type candidateStoreStub struct {
	lastQuery pgrepo.CandidateQuery
	page      []model.Profile
	total     int
}

func (s *candidateStoreStub) ListCandidates(_ context.Context, q pgrepo.CandidateQuery) ([]model.Profile, int, error) {
	s.lastQuery = q
	return s.page, s.total, nil
}

type relationStoreStub struct{}

func (relationStoreStub) FindByParticipant(_ context.Context, _ int64) ([]model.Match, error) {
	return nil, nil
}

func newDiscoveryHandler(store *candidateStoreStub) *DiscoveryHandler {
	svc := discoverysvc.NewService(discoverysvc.Dependencies{
		Users:    &userStoreStub{users: map[int64]model.User{1: {ID: 1}}},
		Profiles: store,
		Matches:  relationStoreStub{},
	}, discoverysvc.Config{DefaultPageSize: 20, MaxPageSize: 50})
	return NewDiscoveryHandler(svc)
}

func performSearchRequest(h *DiscoveryHandler, callerID int64, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/discovery/search"+query, nil)
	if callerID > 0 {
		req = req.WithContext(identitysvc.WithIdentity(req.Context(), identitysvc.Identity{UserID: callerID}))
	}

	rec := httptest.NewRecorder()
	h.Search(rec, req)
	return rec
}

func TestDiscoveryHandlerParsesFilters(t *testing.T) {
	store := &candidateStoreStub{
		page: []model.Profile{{
			UserID:      7,
			DisplayName: "Dana",
			Birthdate:   time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
			Gender:      enums.GenderFemale,
		}},
		total: 12,
	}
	h := newDiscoveryHandler(store)

	resp := performSearchRequest(h, 1, "?gender=female&city=Almaty&min_age=20&max_age=30&page=2&limit=5")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}

	if store.lastQuery.Gender != enums.GenderFemale || store.lastQuery.City != "Almaty" {
		t.Fatalf("filters not forwarded: %+v", store.lastQuery)
	}
	if store.lastQuery.Limit != 5 || store.lastQuery.Offset != 5 {
		t.Fatalf("paging = limit %d offset %d, want 5/5", store.lastQuery.Limit, store.lastQuery.Offset)
	}

	var payload struct {
		Candidates []struct {
			UserID      int64  `json:"user_id"`
			DisplayName string `json:"display_name"`
		} `json:"candidates"`
		Total   int  `json:"total"`
		HasMore bool `json:"has_more"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Total != 12 || !payload.HasMore {
		t.Fatalf("unexpected page meta: %+v", payload)
	}
	if len(payload.Candidates) != 1 || payload.Candidates[0].UserID != 7 {
		t.Fatalf("unexpected candidates: %+v", payload.Candidates)
	}
}

func TestDiscoveryHandlerRejectsBadAge(t *testing.T) {
	h := newDiscoveryHandler(&candidateStoreStub{})

	resp := performSearchRequest(h, 1, "?min_age=abc")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusBadRequest)
	}
}

func TestDiscoveryHandlerRequiresIdentity(t *testing.T) {
	h := newDiscoveryHandler(&candidateStoreStub{})

	resp := performSearchRequest(h, 0, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusUnauthorized)
	}
}
