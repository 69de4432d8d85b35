package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
	pgrepo "github.com/olzhas-sembi/dating-backend/internal/repo/postgres"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

const (
	maxDisplayNameLen = 100
	maxBioLen         = 1000
	maxPhotos         = 6
	profilePhotoTTL   = 5 * time.Minute
)

type Store interface {
	FindOne(ctx context.Context, userID int64) (model.Profile, error)
	Upsert(ctx context.Context, p model.Profile) error
	SoftDelete(ctx context.Context, userID int64) error
}

type PhotoURLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// SaveInput is the owner-submitted profile payload. Photos hold object
// keys in display order.
type SaveInput struct {
	DisplayName string
	Birthdate   time.Time
	Gender      enums.Gender
	Bio         string
	Photos      []string
	Location    *model.Location
	LookingFor  []string
}

type View struct {
	Profile   model.Profile
	PhotoURLs []string
}

type Service struct {
	store     Store
	photoSign PhotoURLSigner
	now       func() time.Time
}

func NewService(store Store, photoSign PhotoURLSigner) *Service {
	return &Service{
		store:     store,
		photoSign: photoSign,
		now:       time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID int64) (View, error) {
	if userID <= 0 {
		return View{}, ErrValidation
	}
	if s.store == nil {
		return View{}, fmt.Errorf("profile store is not configured")
	}

	p, err := s.store.FindOne(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return View{}, ErrNotFound
		}
		return View{}, err
	}

	view := View{Profile: p, PhotoURLs: []string{}}
	if s.photoSign == nil {
		return view, nil
	}
	for _, key := range p.Photos {
		url, err := s.photoSign.PresignGet(ctx, key, profilePhotoTTL)
		if err != nil {
			continue
		}
		view.PhotoURLs = append(view.PhotoURLs, url)
	}

	return view, nil
}

// Save creates or fully replaces the caller's own profile.
func (s *Service) Save(ctx context.Context, userID int64, in SaveInput) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, ErrValidation
	}
	if s.store == nil {
		return model.Profile{}, fmt.Errorf("profile store is not configured")
	}

	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.DisplayName == "" || len([]rune(in.DisplayName)) > maxDisplayNameLen {
		return model.Profile{}, ErrValidation
	}
	if in.Birthdate.IsZero() || !in.Birthdate.Before(s.now().UTC()) {
		return model.Profile{}, ErrValidation
	}
	if !in.Gender.Valid() {
		return model.Profile{}, ErrValidation
	}
	if len([]rune(in.Bio)) > maxBioLen {
		return model.Profile{}, ErrValidation
	}
	if len(in.Photos) == 0 || len(in.Photos) > maxPhotos {
		return model.Profile{}, ErrValidation
	}
	for _, key := range in.Photos {
		if strings.TrimSpace(key) == "" {
			return model.Profile{}, ErrValidation
		}
	}
	// Location comes as a unit: coordinates without a city are rejected.
	if in.Location != nil && strings.TrimSpace(in.Location.City) == "" {
		return model.Profile{}, ErrValidation
	}

	p := model.Profile{
		UserID:      userID,
		DisplayName: in.DisplayName,
		Birthdate:   in.Birthdate.UTC(),
		Gender:      in.Gender,
		Bio:         in.Bio,
		Photos:      in.Photos,
		Location:    in.Location,
		LookingFor:  in.LookingFor,
	}
	if p.LookingFor == nil {
		p.LookingFor = []string{}
	}

	if err := s.store.Upsert(ctx, p); err != nil {
		return model.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	return p, nil
}

// Delete soft-deletes the caller's own profile; the row stays for the
// retention window and is purged by the cleanup job.
func (s *Service) Delete(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrValidation
	}
	if s.store == nil {
		return fmt.Errorf("profile store is not configured")
	}

	if _, err := s.store.FindOne(ctx, userID); err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.store.SoftDelete(ctx, userID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}

	return nil
}
