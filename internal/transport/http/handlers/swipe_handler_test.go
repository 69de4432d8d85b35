package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
	pgrepo "github.com/olzhas-sembi/dating-backend/internal/repo/postgres"
	redrepo "github.com/olzhas-sembi/dating-backend/internal/repo/redis"
	identitysvc "github.com/olzhas-sembi/dating-backend/internal/services/identity"
	ratesvc "github.com/olzhas-sembi/dating-backend/internal/services/rate"
	swipesvc "github.com/olzhas-sembi/dating-backend/internal/services/swipes"
)

type userStoreStub struct {
	users map[int64]model.User
}

func (s *userStoreStub) FindActive(_ context.Context, userID int64) (model.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return u, nil
}

type matchStoreStub struct {
	nextID  int64
	matches map[[2]int64]model.Match
}

func newMatchStoreStub() *matchStoreStub {
	return &matchStoreStub{matches: make(map[[2]int64]model.Match)}
}

func (s *matchStoreStub) key(userID, targetID int64) [2]int64 {
	a, b := model.NormalizePair(userID, targetID)
	return [2]int64{a, b}
}

func (s *matchStoreStub) FindByPair(_ context.Context, userID, targetID int64) (model.Match, error) {
	m, ok := s.matches[s.key(userID, targetID)]
	if !ok {
		return model.Match{}, pgrepo.ErrMatchNotFound
	}
	return m, nil
}

func (s *matchStoreStub) Create(_ context.Context, m model.Match) (model.Match, error) {
	k := s.key(m.UserAID, m.UserBID)
	if _, ok := s.matches[k]; ok {
		return model.Match{}, pgrepo.ErrMatchAlreadyExists
	}
	s.nextID++
	m.ID = s.nextID
	m.Version = 1
	s.matches[k] = m
	return m, nil
}

func (s *matchStoreStub) Save(_ context.Context, m model.Match) (model.Match, error) {
	k := s.key(m.UserAID, m.UserBID)
	stored, ok := s.matches[k]
	if !ok {
		return model.Match{}, pgrepo.ErrMatchNotFound
	}
	if stored.Version != m.Version {
		return model.Match{}, pgrepo.ErrMatchVersionConflict
	}
	m.Version++
	s.matches[k] = m
	return m, nil
}

func newSwipeHandlerWithLimits(t *testing.T, perMinute, per10Sec int) *SwipeHandler {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	limiter := ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient), perMinute, per10Sec)

	svc := swipesvc.NewService(swipesvc.Dependencies{
		Users: &userStoreStub{users: map[int64]model.User{
			1: {ID: 1}, 2: {ID: 2}, 3: {ID: 3}, 4: {ID: 4},
		}},
		Matches:     newMatchStoreStub(),
		RateLimiter: limiter,
	}, swipesvc.Config{})

	return NewSwipeHandler(svc)
}

func performLikeRequest(t *testing.T, h *SwipeHandler, callerID, targetID int64) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]any{"target_id": targetID})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/swipes/like", bytes.NewReader(body))
	if callerID > 0 {
		req = req.WithContext(identitysvc.WithIdentity(req.Context(), identitysvc.Identity{UserID: callerID}))
	}

	rec := httptest.NewRecorder()
	h.Like(rec, req)
	return rec
}

func TestSwipeHandlerLikeCreatesPending(t *testing.T) {
	h := newSwipeHandlerWithLimits(t, 100, 100)

	resp := performLikeRequest(t, h, 1, 2)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		OK          bool   `json:"ok"`
		MatchID     int64  `json:"match_id"`
		Status      string `json:"status"`
		MutualMatch bool   `json:"mutual_match"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.OK || payload.Status != "pending" || payload.MutualMatch {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.MatchID <= 0 {
		t.Fatalf("expected assigned match id, got %d", payload.MatchID)
	}
}

func TestSwipeHandlerMutualLikeReportsMatch(t *testing.T) {
	h := newSwipeHandlerWithLimits(t, 100, 100)

	if resp := performLikeRequest(t, h, 1, 2); resp.Code != http.StatusOK {
		t.Fatalf("first like: status %d", resp.Code)
	}
	resp := performLikeRequest(t, h, 2, 1)
	if resp.Code != http.StatusOK {
		t.Fatalf("second like: status %d", resp.Code)
	}

	var payload struct {
		Status      string `json:"status"`
		MutualMatch bool   `json:"mutual_match"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "matched" || !payload.MutualMatch {
		t.Fatalf("expected mutual match, got %+v", payload)
	}
}

func TestSwipeHandlerRejectsSelfTarget(t *testing.T) {
	h := newSwipeHandlerWithLimits(t, 100, 100)

	resp := performLikeRequest(t, h, 1, 1)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusBadRequest)
	}

	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "INVALID_OPERATION" {
		t.Fatalf("code = %q, want INVALID_OPERATION", payload.Code)
	}
}

func TestSwipeHandlerRequiresIdentity(t *testing.T) {
	h := newSwipeHandlerWithLimits(t, 100, 100)

	resp := performLikeRequest(t, h, 0, 2)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusUnauthorized)
	}
}

func TestSwipeHandlerReturnsTooFastOnBurst(t *testing.T) {
	h := newSwipeHandlerWithLimits(t, 100, 2)

	for _, targetID := range []int64{2, 3} {
		if resp := performLikeRequest(t, h, 1, targetID); resp.Code != http.StatusOK {
			t.Fatalf("warmup like on %d: status %d", targetID, resp.Code)
		}
	}

	resp := performLikeRequest(t, h, 1, 4)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", resp.Code, http.StatusTooManyRequests)
	}

	var payload struct {
		Code          string `json:"code"`
		RetryAfterSec int64  `json:"retry_after_sec"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "TOO_FAST" {
		t.Fatalf("code = %q, want TOO_FAST", payload.Code)
	}
	if payload.RetryAfterSec <= 0 {
		t.Fatalf("expected positive retry_after_sec, got %d", payload.RetryAfterSec)
	}
}
