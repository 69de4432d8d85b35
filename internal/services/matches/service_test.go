package matches

import (
	"context"
	"errors"
	"testing"
	"time"

	pgrepo "github.com/olzhas-sembi/dating-backend/internal/repo/postgres"
)

type storeStub struct {
	records   []pgrepo.MatchedRecord
	lastLimit int
}

func (s *storeStub) ListMatchedForUser(_ context.Context, _ int64, limit int) ([]pgrepo.MatchedRecord, error) {
	s.lastLimit = limit
	return s.records, nil
}

func TestListMapsRecords(t *testing.T) {
	matchedAt := time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)
	store := &storeStub{records: []pgrepo.MatchedRecord{
		{ID: 11, TargetUserID: 2, DisplayName: "Dana", City: "Astana", UpdatedAt: matchedAt},
	}}
	svc := NewService(store)

	items, err := svc.List(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
	got := items[0]
	if got.MatchID != 11 || got.UserID != 2 || got.DisplayName != "Dana" || got.City != "Astana" {
		t.Fatalf("unexpected item: %+v", got)
	}
	if !got.MatchedAt.Equal(matchedAt) {
		t.Fatalf("matched_at = %v, want %v", got.MatchedAt, matchedAt)
	}
	if store.lastLimit != 20 {
		t.Fatalf("limit = %d, want 20", store.lastLimit)
	}
}

func TestListNormalizesLimit(t *testing.T) {
	store := &storeStub{}
	svc := NewService(store)

	if _, err := svc.List(context.Background(), 1, 0); err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.lastLimit != 50 {
		t.Fatalf("zero limit must default to 50, got %d", store.lastLimit)
	}

	if _, err := svc.List(context.Background(), 1, 9000); err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.lastLimit != 50 {
		t.Fatalf("oversized limit must cap at 50, got %d", store.lastLimit)
	}
}

func TestListRejectsBadUser(t *testing.T) {
	svc := NewService(&storeStub{})

	if _, err := svc.List(context.Background(), 0, 10); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
