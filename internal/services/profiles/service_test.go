package profiles

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
	pgrepo "github.com/ThisIsMahim/Upp-campus/internal/repo/postgres"
)

func TestUpdateRejectsUnknownCampus(t *testing.T) {
	svc, store := newProfilesServiceForTest(t)
	store.profiles["u1"] = model.Profile{UserID: "u1", Username: "mahim"}

	campusID := "missing"
	if _, err := svc.Update(context.Background(), "u1", UpdateInput{CampusID: &campusID}); !errors.Is(err, ErrCampusNotFound) {
		t.Fatalf("expected ErrCampusNotFound, got %v", err)
	}
}

func TestUpdateRejectsLongBio(t *testing.T) {
	svc, store := newProfilesServiceForTest(t)
	store.profiles["u1"] = model.Profile{UserID: "u1", Username: "mahim"}

	bio := strings.Repeat("x", 501)
	if _, err := svc.Update(context.Background(), "u1", UpdateInput{Bio: &bio}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUpdateAppliesOnlyGivenFields(t *testing.T) {
	svc, store := newProfilesServiceForTest(t)
	store.profiles["u1"] = model.Profile{UserID: "u1", Username: "mahim", Bio: "old bio", AvatarURL: "old.png"}

	bio := "new bio"
	updated, err := svc.Update(context.Background(), "u1", UpdateInput{Bio: &bio})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Bio != "new bio" {
		t.Fatalf("bio = %q, want new bio", updated.Bio)
	}
	if updated.AvatarURL != "old.png" {
		t.Fatalf("avatar url changed unexpectedly: %q", updated.AvatarURL)
	}
}

func TestUpdateWithNoFieldsReturnsCurrent(t *testing.T) {
	svc, store := newProfilesServiceForTest(t)
	store.profiles["u1"] = model.Profile{UserID: "u1", Username: "mahim", Bio: "bio"}

	profile, err := svc.Update(context.Background(), "u1", UpdateInput{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if profile.Bio != "bio" {
		t.Fatalf("bio = %q, want bio", profile.Bio)
	}
	if store.updates != 0 {
		t.Fatalf("empty update must not write, got %d writes", store.updates)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	svc, store := newProfilesServiceForTest(t)

	in := EnsureInput{Username: "mahim", Email: "mahim@nstu.edu.bd"}
	first, err := svc.Ensure(context.Background(), "u1", in)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if first.Username != "mahim" {
		t.Fatalf("username = %q, want mahim", first.Username)
	}

	second, err := svc.Ensure(context.Background(), "u1", in)
	if err != nil {
		t.Fatalf("second ensure must be a no-op: %v", err)
	}
	if second.UserID != "u1" {
		t.Fatalf("user id = %q, want u1", second.UserID)
	}
	if len(store.profiles) != 1 {
		t.Fatalf("profiles = %d, want 1", len(store.profiles))
	}
}

func TestEnsureRejectsTakenUsername(t *testing.T) {
	svc, store := newProfilesServiceForTest(t)
	store.profiles["u1"] = model.Profile{UserID: "u1", Username: "mahim"}

	_, err := svc.Ensure(context.Background(), "u2", EnsureInput{Username: "mahim", Email: "other@nstu.edu.bd"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestGetByUsername(t *testing.T) {
	svc, store := newProfilesServiceForTest(t)
	store.profiles["u1"] = model.Profile{UserID: "u1", Username: "mahim"}

	profile, err := svc.GetByUsername(context.Background(), " mahim ")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if profile.UserID != "u1" {
		t.Fatalf("user id = %q, want u1", profile.UserID)
	}

	if _, err := svc.GetByUsername(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func newProfilesServiceForTest(t *testing.T) (*Service, *fakeProfileStore) {
	t.Helper()

	store := &fakeProfileStore{profiles: map[string]model.Profile{}}
	campuses := &fakeCampusStore{campuses: map[string]model.Campus{}}
	return NewService(store, campuses), store
}

type fakeProfileStore struct {
	profiles map[string]model.Profile
	updates  int
}

func (f *fakeProfileStore) Get(_ context.Context, userID string) (model.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeProfileStore) GetByUsername(_ context.Context, username string) (model.Profile, error) {
	for _, profile := range f.profiles {
		if profile.Username == username {
			return profile, nil
		}
	}
	return model.Profile{}, pgrepo.ErrProfileNotFound
}

func (f *fakeProfileStore) Ensure(_ context.Context, profile model.Profile) error {
	if _, ok := f.profiles[profile.UserID]; ok {
		return nil
	}
	for _, existing := range f.profiles {
		if existing.Username == profile.Username {
			return pgrepo.ErrUsernameTaken
		}
	}
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeProfileStore) Update(_ context.Context, userID string, update pgrepo.ProfileUpdate) (model.Profile, error) {
	profile, ok := f.profiles[userID]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	if update.Bio != nil {
		profile.Bio = *update.Bio
	}
	if update.AvatarURL != nil {
		profile.AvatarURL = *update.AvatarURL
	}
	if update.CampusID != nil {
		profile.CampusID = *update.CampusID
	}
	f.profiles[userID] = profile
	f.updates++
	return profile, nil
}

type fakeCampusStore struct {
	campuses map[string]model.Campus
}

func (f *fakeCampusStore) Get(_ context.Context, id string) (model.Campus, error) {
	campus, ok := f.campuses[id]
	if !ok {
		return model.Campus{}, pgrepo.ErrCampusNotFound
	}
	return campus, nil
}
