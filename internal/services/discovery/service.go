package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
	"github.com/olzhas-sembi/dating-backend/internal/domain/rules"
	pgrepo "github.com/olzhas-sembi/dating-backend/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

const candidatePhotoURLTTL = 5 * time.Minute

type UserStore interface {
	FindActive(ctx context.Context, userID int64) (model.User, error)
}

type ProfileStore interface {
	ListCandidates(ctx context.Context, q pgrepo.CandidateQuery) ([]model.Profile, int, error)
}

type MatchStore interface {
	FindByParticipant(ctx context.Context, userID int64) ([]model.Match, error)
}

type PhotoURLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

type Dependencies struct {
	Users     UserStore
	Profiles  ProfileStore
	Matches   MatchStore
	PhotoSign PhotoURLSigner
}

// Filters carries the requester's search criteria. Zero values mean
// "no constraint" for that dimension.
type Filters struct {
	Gender enums.Gender
	City   string
	MinAge int
	MaxAge int
	Page   int
	Limit  int
}

type Candidate struct {
	UserID      int64
	DisplayName string
	Age         int
	Gender      enums.Gender
	City        string
	Bio         string
	PhotoURLs   []string
}

type Result struct {
	Candidates []Candidate
	Total      int
	Page       int
	Limit      int
	HasMore    bool
}

type Service struct {
	users     UserStore
	profiles  ProfileStore
	matches   MatchStore
	photoSign PhotoURLSigner
	cfg       Config
	now       func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 50
	}

	return &Service{
		users:     deps.Users,
		profiles:  deps.Profiles,
		matches:   deps.Matches,
		photoSign: deps.PhotoSign,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Search returns one page of discoverable profiles for the requester.
//
// A counterpart becomes invisible once the relationship is settled
// (matched, rejected, blocked) or once the requester has already liked
// a still-pending pair. A pending pair where only the other side liked
// stays visible, so the requester can still swipe on their admirer.
func (s *Service) Search(ctx context.Context, userID int64, f Filters) (Result, error) {
	if userID <= 0 {
		return Result{}, ErrValidation
	}
	if f.Gender != "" && !f.Gender.Valid() {
		return Result{}, ErrValidation
	}
	if f.MinAge < 0 || f.MaxAge < 0 {
		return Result{}, ErrValidation
	}
	if s.users == nil || s.profiles == nil || s.matches == nil {
		return Result{}, fmt.Errorf("discovery dependencies are not configured")
	}

	if _, err := s.users.FindActive(ctx, userID); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Result{}, ErrNotFound
		}
		return Result{}, err
	}

	page := f.Page
	if page <= 0 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	offset := (page - 1) * limit

	// An inverted age range matches nobody. Accepted, not rejected:
	// clients may send it transiently while the user drags sliders.
	if f.MinAge > 0 && f.MaxAge > 0 && f.MinAge > f.MaxAge {
		return Result{Candidates: []Candidate{}, Page: page, Limit: limit}, nil
	}

	relations, err := s.matches.FindByParticipant(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("load match relations: %w", err)
	}
	excluded := BuildExclusions(userID, relations)

	earliest, latest := rules.BirthdateBounds(f.MinAge, f.MaxAge, s.now().UTC())

	profiles, total, err := s.profiles.ListCandidates(ctx, pgrepo.CandidateQuery{
		Gender:            f.Gender,
		City:              f.City,
		EarliestBirthdate: earliest,
		LatestBirthdate:   latest,
		ExcludedUserIDs:   excluded,
		Limit:             limit,
		Offset:            offset,
	})
	if err != nil {
		return Result{}, fmt.Errorf("list candidates: %w", err)
	}

	candidates := make([]Candidate, 0, len(profiles))
	for _, p := range profiles {
		candidates = append(candidates, s.toCandidate(ctx, p))
	}

	return Result{
		Candidates: candidates,
		Total:      total,
		Page:       page,
		Limit:      limit,
		HasMore:    offset+len(candidates) < total,
	}, nil
}

// BuildExclusions derives the set of user ids hidden from the
// requester's search: the requester, every counterpart of a settled
// match, and every pending counterpart the requester already liked.
func BuildExclusions(userID int64, relations []model.Match) []int64 {
	seen := map[int64]struct{}{userID: {}}

	for _, m := range relations {
		if !m.HasParticipant(userID) {
			continue
		}

		hide := false
		switch m.Status {
		case enums.MatchStatusMatched:
			hide = true
		case enums.MatchStatusPending:
			hide = m.HasLikeFrom(userID)
		default:
			hide = m.Status.Absorbing()
		}

		if hide {
			seen[m.OtherParticipant(userID)] = struct{}{}
		}
	}

	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

func (s *Service) toCandidate(ctx context.Context, p model.Profile) Candidate {
	c := Candidate{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Age:         rules.AgeAt(p.Birthdate, s.now().UTC()),
		Gender:      p.Gender,
		Bio:         p.Bio,
		PhotoURLs:   []string{},
	}
	if p.Location != nil {
		c.City = p.Location.City
	}

	if s.photoSign == nil {
		return c
	}
	for _, key := range p.Photos {
		url, err := s.photoSign.PresignGet(ctx, key, candidatePhotoURLTTL)
		if err != nil {
			continue
		}
		c.PhotoURLs = append(c.PhotoURLs, url)
	}

	return c
}
