package swipes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
	"github.com/olzhas-sembi/dating-backend/internal/domain/rules"
	pgrepo "github.com/olzhas-sembi/dating-backend/internal/repo/postgres"
)

var (
	ErrValidation             = errors.New("validation error")
	ErrInvalidOperation       = errors.New("cannot act on own profile")
	ErrTargetNotFound         = errors.New("target user not found")
	ErrConflictRetryExhausted = errors.New("match save retries exhausted")
)

// TooFastError is returned when the like rate limiter blocks the actor.
type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too many like actions, retry after " + strconv.FormatInt(e.RetryAfterSec, 10) + "s"
}

type UserStore interface {
	FindActive(ctx context.Context, userID int64) (model.User, error)
}

type MatchStore interface {
	FindByPair(ctx context.Context, userID, targetID int64) (model.Match, error)
	Create(ctx context.Context, m model.Match) (model.Match, error)
	Save(ctx context.Context, m model.Match) (model.Match, error)
}

type RateLimiter interface {
	AllowLike(ctx context.Context, userID int64) (int64, bool, error)
}

// Notifier receives outbound events after a successful commit. Delivery
// is a messaging collaborator concern; the recorder only emits.
type Notifier interface {
	MatchUpdated(ctx context.Context, event MatchEvent)
}

type MatchEvent struct {
	ID          string
	MatchID     int64
	ActorUserID int64
	OtherUserID int64
	Status      string
	At          time.Time
}

type Config struct {
	SaveRetries int
}

type Dependencies struct {
	Users       UserStore
	Matches     MatchStore
	RateLimiter RateLimiter
	Notifier    Notifier
}

type LikeResult struct {
	Match       model.Match
	MutualMatch bool
}

type Service struct {
	users       UserStore
	matches     MatchStore
	rateLimiter RateLimiter
	notifier    Notifier
	cfg         Config
	now         func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.SaveRetries <= 0 {
		cfg.SaveRetries = 3
	}

	return &Service{
		users:       deps.Users,
		matches:     deps.Matches,
		rateLimiter: deps.RateLimiter,
		notifier:    deps.Notifier,
		cfg:         cfg,
		now:         time.Now,
	}
}

// RecordLike applies a like from userID to targetID and returns the
// resulting match state. The call is idempotent: a repeated like
// observes the already-applied event and returns unchanged state.
//
// The read-transition-persist sequence runs under optimistic
// concurrency: a version conflict on save (or a pair created by a
// concurrent first like) re-reads and replays the transition, so
// concurrent likes from both participants converge to matched without
// losing an event.
func (s *Service) RecordLike(ctx context.Context, userID, targetID int64) (LikeResult, error) {
	if userID <= 0 || targetID <= 0 {
		return LikeResult{}, ErrValidation
	}
	if userID == targetID {
		return LikeResult{}, ErrInvalidOperation
	}
	if s.users == nil || s.matches == nil {
		return LikeResult{}, fmt.Errorf("swipe dependencies are not configured")
	}

	if _, err := s.users.FindActive(ctx, targetID); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return LikeResult{}, ErrTargetNotFound
		}
		return LikeResult{}, err
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowLike(ctx, userID)
		if err != nil {
			return LikeResult{}, fmt.Errorf("apply like rate limiter: %w", err)
		}
		if !allowed {
			return LikeResult{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	now := s.now().UTC()

	for attempt := 0; attempt < s.cfg.SaveRetries; attempt++ {
		m, err := s.matches.FindByPair(ctx, userID, targetID)
		if err != nil {
			if !errors.Is(err, pgrepo.ErrMatchNotFound) {
				return LikeResult{}, err
			}

			created, err := s.matches.Create(ctx, rules.NewPendingMatch(userID, targetID, now))
			if err != nil {
				if errors.Is(err, pgrepo.ErrMatchAlreadyExists) {
					continue
				}
				return LikeResult{}, err
			}

			s.emit(ctx, created, userID)
			return LikeResult{Match: created}, nil
		}

		changed := rules.ApplyLike(&m, userID, now)
		if !changed {
			return LikeResult{Match: m, MutualMatch: m.Status == enums.MatchStatusMatched}, nil
		}

		saved, err := s.matches.Save(ctx, m)
		if err != nil {
			if errors.Is(err, pgrepo.ErrMatchVersionConflict) {
				continue
			}
			return LikeResult{}, err
		}

		s.emit(ctx, saved, userID)
		return LikeResult{Match: saved, MutualMatch: saved.Status == enums.MatchStatusMatched}, nil
	}

	return LikeResult{}, ErrConflictRetryExhausted
}

// RecordDislike drives the pair's match to rejected, creating the
// record if the pair never interacted. Always reports true on success.
func (s *Service) RecordDislike(ctx context.Context, userID, targetID int64) (bool, error) {
	if userID <= 0 || targetID <= 0 {
		return false, ErrValidation
	}
	if userID == targetID {
		return false, ErrInvalidOperation
	}
	if s.users == nil || s.matches == nil {
		return false, fmt.Errorf("swipe dependencies are not configured")
	}

	if _, err := s.users.FindActive(ctx, targetID); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return false, ErrTargetNotFound
		}
		return false, err
	}

	now := s.now().UTC()

	for attempt := 0; attempt < s.cfg.SaveRetries; attempt++ {
		m, err := s.matches.FindByPair(ctx, userID, targetID)
		if err != nil {
			if !errors.Is(err, pgrepo.ErrMatchNotFound) {
				return false, err
			}

			created, err := s.matches.Create(ctx, rules.NewRejectedMatch(userID, targetID, now))
			if err != nil {
				if errors.Is(err, pgrepo.ErrMatchAlreadyExists) {
					continue
				}
				return false, err
			}

			s.emit(ctx, created, userID)
			return true, nil
		}

		changed := rules.ApplyDislike(&m, now)
		if !changed {
			return true, nil
		}

		saved, err := s.matches.Save(ctx, m)
		if err != nil {
			if errors.Is(err, pgrepo.ErrMatchVersionConflict) {
				continue
			}
			return false, err
		}

		s.emit(ctx, saved, userID)
		return true, nil
	}

	return false, ErrConflictRetryExhausted
}

func (s *Service) emit(ctx context.Context, m model.Match, actorID int64) {
	if s.notifier == nil {
		return
	}

	s.notifier.MatchUpdated(ctx, MatchEvent{
		ID:          uuid.NewString(),
		MatchID:     m.ID,
		ActorUserID: actorID,
		OtherUserID: m.OtherParticipant(actorID),
		Status:      string(m.Status),
		At:          s.now().UTC(),
	})
}
