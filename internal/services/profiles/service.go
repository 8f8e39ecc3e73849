package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
	"github.com/ThisIsMahim/Upp-campus/internal/pkg/validate"
	pgrepo "github.com/ThisIsMahim/Upp-campus/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("profile not found")
	ErrCampusNotFound  = errors.New("campus not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrDependenciesNil = errors.New("profiles dependencies are not configured")
)

type ProfileStore interface {
	Get(ctx context.Context, userID string) (model.Profile, error)
	GetByUsername(ctx context.Context, username string) (model.Profile, error)
	Ensure(ctx context.Context, profile model.Profile) error
	Update(ctx context.Context, userID string, update pgrepo.ProfileUpdate) (model.Profile, error)
}

type CampusStore interface {
	Get(ctx context.Context, id string) (model.Campus, error)
}

type UpdateInput struct {
	Bio       *string
	AvatarURL *string
	CampusID  *string
}

type Service struct {
	store    ProfileStore
	campuses CampusStore
}

func NewService(store ProfileStore, campuses CampusStore) *Service {
	return &Service{
		store:    store,
		campuses: campuses,
	}
}

func (s *Service) Get(ctx context.Context, userID string) (model.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return model.Profile{}, ErrValidation
	}
	if s.store == nil {
		return model.Profile{}, ErrDependenciesNil
	}

	profile, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (model.Profile, error) {
	if strings.TrimSpace(username) == "" {
		return model.Profile{}, ErrValidation
	}
	if s.store == nil {
		return model.Profile{}, ErrDependenciesNil
	}

	profile, err := s.store.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile by username: %w", err)
	}
	return profile, nil
}

type EnsureInput struct {
	Username string
	Email    string
	Bio      string
	CampusID string
}

// Ensure makes sure a profile row exists for the user. Normal registration
// creates it transactionally; this covers sessions provisioned without one.
// Losing a concurrent creation race is treated as success.
func (s *Service) Ensure(ctx context.Context, userID string, in EnsureInput) (model.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return model.Profile{}, ErrValidation
	}
	if s.store == nil {
		return model.Profile{}, ErrDependenciesNil
	}

	username := strings.TrimSpace(in.Username)
	if !validate.Username(username) {
		return model.Profile{}, fmt.Errorf("invalid username: %w", ErrValidation)
	}
	if !validate.Email(in.Email) {
		return model.Profile{}, fmt.Errorf("invalid email: %w", ErrValidation)
	}
	bio := strings.TrimSpace(in.Bio)
	if len([]rune(bio)) > validate.MaxBioLen {
		return model.Profile{}, fmt.Errorf("bio is too long: %w", ErrValidation)
	}
	campusID := strings.TrimSpace(in.CampusID)
	if campusID != "" && s.campuses != nil {
		if _, err := s.campuses.Get(ctx, campusID); err != nil {
			if errors.Is(err, pgrepo.ErrCampusNotFound) {
				return model.Profile{}, ErrCampusNotFound
			}
			return model.Profile{}, fmt.Errorf("check campus: %w", err)
		}
	}

	err := s.store.Ensure(ctx, model.Profile{
		UserID:   userID,
		Username: username,
		Email:    strings.TrimSpace(in.Email),
		Bio:      bio,
		CampusID: campusID,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrUsernameTaken) {
			return model.Profile{}, ErrUsernameTaken
		}
		return model.Profile{}, fmt.Errorf("ensure profile: %w", err)
	}

	return s.Get(ctx, userID)
}

// Update applies only the fields present in the input. A campus change is
// checked against the campus directory first so profiles never point at a
// campus that does not exist.
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (model.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return model.Profile{}, ErrValidation
	}
	if s.store == nil {
		return model.Profile{}, ErrDependenciesNil
	}

	update := pgrepo.ProfileUpdate{}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if len([]rune(bio)) > validate.MaxBioLen {
			return model.Profile{}, fmt.Errorf("bio is too long: %w", ErrValidation)
		}
		update.Bio = &bio
	}
	if in.AvatarURL != nil {
		avatarURL := strings.TrimSpace(*in.AvatarURL)
		update.AvatarURL = &avatarURL
	}
	if in.CampusID != nil {
		campusID := strings.TrimSpace(*in.CampusID)
		if campusID == "" {
			return model.Profile{}, fmt.Errorf("campus id is empty: %w", ErrValidation)
		}
		if s.campuses != nil {
			if _, err := s.campuses.Get(ctx, campusID); err != nil {
				if errors.Is(err, pgrepo.ErrCampusNotFound) {
					return model.Profile{}, ErrCampusNotFound
				}
				return model.Profile{}, fmt.Errorf("check campus: %w", err)
			}
		}
		update.CampusID = &campusID
	}

	if update.Bio == nil && update.AvatarURL == nil && update.CampusID == nil {
		return s.Get(ctx, userID)
	}

	profile, err := s.store.Update(ctx, userID, update)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrNotFound
		}
		return model.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	return profile, nil
}
