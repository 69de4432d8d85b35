package matches

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgrepo "github.com/olzhas-sembi/dating-backend/internal/repo/postgres"
)

var ErrValidation = errors.New("validation error")

const defaultListLimit = 50

type Store interface {
	ListMatchedForUser(ctx context.Context, userID int64, limit int) ([]pgrepo.MatchedRecord, error)
}

// Item is one confirmed match as shown to its participant.
type Item struct {
	MatchID     int64
	UserID      int64
	DisplayName string
	City        string
	MatchedAt   time.Time
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns the caller's confirmed matches, most recently active
// first.
func (s *Service) List(ctx context.Context, userID int64, limit int) ([]Item, error) {
	if userID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("match store is not configured")
	}

	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	records, err := s.store.ListMatchedForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	items := make([]Item, 0, len(records))
	for _, rec := range records {
		items = append(items, Item{
			MatchID:     rec.ID,
			UserID:      rec.TargetUserID,
			DisplayName: rec.DisplayName,
			City:        rec.City,
			MatchedAt:   rec.UpdatedAt.UTC(),
		})
	}

	return items, nil
}
