package profiles

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
	pgrepo "github.com/olzhas-sembi/dating-backend/internal/repo/postgres"
)

type storeStub struct {
	profiles map[int64]model.Profile
	deleted  map[int64]bool
}

func newStoreStub() *storeStub {
	return &storeStub{
		profiles: make(map[int64]model.Profile),
		deleted:  make(map[int64]bool),
	}
}

func (s *storeStub) FindOne(_ context.Context, userID int64) (model.Profile, error) {
	p, ok := s.profiles[userID]
	if !ok || s.deleted[userID] {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

func (s *storeStub) Upsert(_ context.Context, p model.Profile) error {
	s.profiles[p.UserID] = p
	s.deleted[p.UserID] = false
	return nil
}

func (s *storeStub) SoftDelete(_ context.Context, userID int64) error {
	s.deleted[userID] = true
	return nil
}

type signerStub struct{}

func (signerStub) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://cdn.example.test/" + key, nil
}

func validInput() SaveInput {
	return SaveInput{
		DisplayName: "Aigerim",
		Birthdate:   time.Date(1998, 4, 2, 0, 0, 0, 0, time.UTC),
		Gender:      enums.GenderFemale,
		Bio:         "coffee and climbing",
		Photos:      []string{"photos/8/a.jpg"},
		Location:    &model.Location{Lat: 43.2, Lon: 76.9, City: "Almaty"},
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	store := newStoreStub()
	svc := NewService(store, signerStub{})

	saved, err := svc.Save(context.Background(), 8, validInput())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.UserID != 8 || saved.DisplayName != "Aigerim" {
		t.Fatalf("unexpected saved profile: %+v", saved)
	}

	view, err := svc.Get(context.Background(), 8)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Profile.Gender != enums.GenderFemale {
		t.Fatalf("gender = %q", view.Profile.Gender)
	}
	if len(view.PhotoURLs) != 1 || !strings.HasPrefix(view.PhotoURLs[0], "https://cdn.example.test/") {
		t.Fatalf("photo urls = %v", view.PhotoURLs)
	}
}

func TestSaveValidation(t *testing.T) {
	svc := NewService(newStoreStub(), nil)

	cases := []struct {
		name   string
		mutate func(*SaveInput)
	}{
		{name: "empty display name", mutate: func(in *SaveInput) { in.DisplayName = "   " }},
		{name: "display name too long", mutate: func(in *SaveInput) { in.DisplayName = strings.Repeat("x", 101) }},
		{name: "zero birthdate", mutate: func(in *SaveInput) { in.Birthdate = time.Time{} }},
		{name: "future birthdate", mutate: func(in *SaveInput) { in.Birthdate = time.Now().Add(24 * time.Hour) }},
		{name: "bad gender", mutate: func(in *SaveInput) { in.Gender = "robot" }},
		{name: "bio too long", mutate: func(in *SaveInput) { in.Bio = strings.Repeat("b", 1001) }},
		{name: "no photos", mutate: func(in *SaveInput) { in.Photos = nil }},
		{name: "too many photos", mutate: func(in *SaveInput) { in.Photos = make([]string, 7) }},
		{name: "blank photo key", mutate: func(in *SaveInput) { in.Photos = []string{" "} }},
		{name: "location without city", mutate: func(in *SaveInput) { in.Location.City = "  " }},
	}

	for _, tc := range cases {
		in := validInput()
		tc.mutate(&in)
		if _, err := svc.Save(context.Background(), 1, in); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestGetMissingProfile(t *testing.T) {
	svc := NewService(newStoreStub(), nil)

	if _, err := svc.Get(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteHidesProfile(t *testing.T) {
	store := newStoreStub()
	svc := NewService(store, nil)

	if _, err := svc.Save(context.Background(), 3, validInput()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.Delete(context.Background(), 3); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted profile must be invisible, got %v", err)
	}
	if err := svc.Delete(context.Background(), 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete must report ErrNotFound, got %v", err)
	}
}
