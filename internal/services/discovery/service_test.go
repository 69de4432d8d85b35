package discovery

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
	pgrepo "github.com/olzhas-sembi/dating-backend/internal/repo/postgres"
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

type profileStoreStub struct {
	lastQuery pgrepo.CandidateQuery
	calls     int
	page      []model.Profile
	total     int
}

func (s *profileStoreStub) ListCandidates(_ context.Context, q pgrepo.CandidateQuery) ([]model.Profile, int, error) {
	s.calls++
	s.lastQuery = q
	return s.page, s.total, nil
}

type matchStoreStub struct {
	relations []model.Match
}

func (s *matchStoreStub) FindByParticipant(_ context.Context, _ int64) ([]model.Match, error) {
	return s.relations, nil
}

type signerStub struct {
	failKeys map[string]bool
}

func (s *signerStub) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if s.failKeys[key] {
		return "", errors.New("presign failed")
	}
	return "https://cdn.example.test/" + key, nil
}

func pendingWithLike(id, a, b, liker int64) model.Match {
	return model.Match{
		ID:      id,
		UserAID: a,
		UserBID: b,
		Status:  enums.MatchStatusPending,
		Likes:   []model.LikeEvent{{UserID: liker}},
	}
}

func settled(id, a, b int64, status enums.MatchStatus) model.Match {
	return model.Match{ID: id, UserAID: a, UserBID: b, Status: status}
}

func newTestService(users *userStoreStub, profiles *profileStoreStub, matches *matchStoreStub, signer PhotoURLSigner) *Service {
	svc := NewService(Dependencies{
		Users:     users,
		Profiles:  profiles,
		Matches:   matches,
		PhotoSign: signer,
	}, Config{DefaultPageSize: 20, MaxPageSize: 50})
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestBuildExclusions(t *testing.T) {
	relations := []model.Match{
		settled(1, 10, 20, enums.MatchStatusMatched),
		settled(2, 10, 21, enums.MatchStatusRejected),
		settled(3, 10, 22, enums.MatchStatusBlocked),
		pendingWithLike(4, 10, 23, 10),
		pendingWithLike(5, 10, 24, 24),
		settled(6, 30, 31, enums.MatchStatusMatched),
	}

	got := BuildExclusions(10, relations)
	want := []int64{10, 20, 21, 22, 23}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("exclusions = %v, want %v", got, want)
	}
}

func TestBuildExclusionsOnlySelfWithoutRelations(t *testing.T) {
	got := BuildExclusions(7, nil)
	if !reflect.DeepEqual(got, []int64{7}) {
		t.Fatalf("exclusions = %v, want [7]", got)
	}
}

func TestSearchPassesStorageQuery(t *testing.T) {
	profiles := &profileStoreStub{total: 0}
	matches := &matchStoreStub{relations: []model.Match{
		settled(1, 5, 9, enums.MatchStatusMatched),
		pendingWithLike(2, 5, 11, 11),
	}}
	svc := newTestService(&userStoreStub{users: map[int64]model.User{5: {ID: 5}}}, profiles, matches, nil)

	_, err := svc.Search(context.Background(), 5, Filters{
		Gender: enums.GenderFemale,
		City:   "Almaty",
		MinAge: 25,
		MaxAge: 30,
		Page:   3,
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	q := profiles.lastQuery
	if q.Gender != enums.GenderFemale || q.City != "Almaty" {
		t.Fatalf("unexpected filter passthrough: %+v", q)
	}
	if q.Limit != 10 || q.Offset != 20 {
		t.Fatalf("paging = limit %d offset %d, want 10/20", q.Limit, q.Offset)
	}
	// 2025-06-15 viewer: ages 25..30 inclusive.
	if !q.EarliestBirthdate.Equal(time.Date(1994, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("earliest birthdate = %v", q.EarliestBirthdate)
	}
	if !q.LatestBirthdate.Equal(time.Date(2000, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("latest birthdate = %v", q.LatestBirthdate)
	}
	// Self and matched counterpart are excluded; the admirer who liked a
	// still-pending pair is not.
	if !reflect.DeepEqual(q.ExcludedUserIDs, []int64{5, 9}) {
		t.Fatalf("excluded ids = %v, want [5 9]", q.ExcludedUserIDs)
	}
}

func TestSearchHasMore(t *testing.T) {
	cases := []struct {
		name    string
		page    int
		limit   int
		total   int
		rows    int
		hasMore bool
	}{
		{name: "first of many", page: 1, limit: 2, total: 5, rows: 2, hasMore: true},
		{name: "last full page", page: 3, limit: 2, total: 6, rows: 2, hasMore: false},
		{name: "short last page", page: 2, limit: 4, total: 5, rows: 1, hasMore: false},
		{name: "empty", page: 1, limit: 4, total: 0, rows: 0, hasMore: false},
	}

	for _, tc := range cases {
		page := make([]model.Profile, tc.rows)
		for i := range page {
			page[i] = model.Profile{
				UserID:      int64(100 + i),
				DisplayName: "candidate",
				Birthdate:   time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
				Gender:      enums.GenderFemale,
			}
		}

		profiles := &profileStoreStub{page: page, total: tc.total}
		svc := newTestService(&userStoreStub{users: map[int64]model.User{1: {ID: 1}}}, profiles, &matchStoreStub{}, nil)

		res, err := svc.Search(context.Background(), 1, Filters{Page: tc.page, Limit: tc.limit})
		if err != nil {
			t.Fatalf("%s: search: %v", tc.name, err)
		}
		if res.HasMore != tc.hasMore {
			t.Fatalf("%s: has_more = %v, want %v", tc.name, res.HasMore, tc.hasMore)
		}
		if res.Total != tc.total || len(res.Candidates) != tc.rows {
			t.Fatalf("%s: total %d rows %d, want %d/%d", tc.name, res.Total, len(res.Candidates), tc.total, tc.rows)
		}
	}
}

func TestSearchInvertedAgeRangeReturnsEmpty(t *testing.T) {
	profiles := &profileStoreStub{total: 100}
	svc := newTestService(&userStoreStub{users: map[int64]model.User{1: {ID: 1}}}, profiles, &matchStoreStub{}, nil)

	res, err := svc.Search(context.Background(), 1, Filters{MinAge: 40, MaxAge: 20})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Candidates) != 0 || res.Total != 0 || res.HasMore {
		t.Fatalf("inverted range must yield an empty page, got %+v", res)
	}
	if profiles.calls != 0 {
		t.Fatalf("inverted range must not hit storage")
	}
}

func TestSearchCapsPageSize(t *testing.T) {
	profiles := &profileStoreStub{}
	svc := newTestService(&userStoreStub{users: map[int64]model.User{1: {ID: 1}}}, profiles, &matchStoreStub{}, nil)

	if _, err := svc.Search(context.Background(), 1, Filters{Limit: 500}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if profiles.lastQuery.Limit != 50 {
		t.Fatalf("limit = %d, want capped 50", profiles.lastQuery.Limit)
	}
}

func TestSearchUnknownRequester(t *testing.T) {
	svc := newTestService(&userStoreStub{users: map[int64]model.User{}}, &profileStoreStub{}, &matchStoreStub{}, nil)

	if _, err := svc.Search(context.Background(), 404, Filters{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchSignsPhotosAndSkipsFailures(t *testing.T) {
	profiles := &profileStoreStub{
		page: []model.Profile{{
			UserID:      9,
			DisplayName: "candidate",
			Birthdate:   time.Date(1997, 6, 15, 0, 0, 0, 0, time.UTC),
			Gender:      enums.GenderMale,
			Photos:      []string{"photos/9/a.jpg", "photos/9/broken.jpg"},
			Location:    &model.Location{Lat: 43.2, Lon: 76.9, City: "Almaty"},
		}},
		total: 1,
	}
	signer := &signerStub{failKeys: map[string]bool{"photos/9/broken.jpg": true}}
	svc := newTestService(&userStoreStub{users: map[int64]model.User{1: {ID: 1}}}, profiles, &matchStoreStub{}, signer)

	res, err := svc.Search(context.Background(), 1, Filters{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(res.Candidates) != 1 {
		t.Fatalf("expected one candidate, got %d", len(res.Candidates))
	}

	c := res.Candidates[0]
	if c.Age != 28 {
		t.Fatalf("age = %d, want 28", c.Age)
	}
	if c.City != "Almaty" {
		t.Fatalf("city = %q", c.City)
	}
	want := []string{"https://cdn.example.test/photos/9/a.jpg"}
	if !reflect.DeepEqual(c.PhotoURLs, want) {
		t.Fatalf("photo urls = %v, want %v", c.PhotoURLs, want)
	}
}
