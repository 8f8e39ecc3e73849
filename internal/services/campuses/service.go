package campuses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
	pgrepo "github.com/ThisIsMahim/Upp-campus/internal/repo/postgres"
)

const maxCampusNameLen = 120

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("campus not found")
	ErrNameTaken       = errors.New("campus name already exists")
	ErrDependenciesNil = errors.New("campuses dependencies are not configured")
)

type CampusStore interface {
	Create(ctx context.Context, campus model.Campus) error
	Get(ctx context.Context, id string) (model.Campus, error)
	List(ctx context.Context) ([]model.Campus, error)
}

type CreateInput struct {
	Name        string
	ShortName   string
	Description string
}

type Service struct {
	store CampusStore
	now   func() time.Time
}

func NewService(store CampusStore) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

func (s *Service) Create(ctx context.Context, creatorID string, in CreateInput) (model.Campus, error) {
	if s.store == nil {
		return model.Campus{}, ErrDependenciesNil
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || utf8.RuneCountInString(name) > maxCampusNameLen {
		return model.Campus{}, ErrValidation
	}

	campus := model.Campus{
		ID:          uuid.NewString(),
		Name:        name,
		ShortName:   strings.TrimSpace(in.ShortName),
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   creatorID,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.store.Create(ctx, campus); err != nil {
		if errors.Is(err, pgrepo.ErrCampusNameTaken) {
			return model.Campus{}, ErrNameTaken
		}
		return model.Campus{}, fmt.Errorf("create campus: %w", err)
	}

	return campus, nil
}

func (s *Service) List(ctx context.Context) ([]model.Campus, error) {
	if s.store == nil {
		return nil, ErrDependenciesNil
	}

	campuses, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list campuses: %w", err)
	}
	return campuses, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Campus, error) {
	if strings.TrimSpace(id) == "" {
		return model.Campus{}, ErrValidation
	}
	if s.store == nil {
		return model.Campus{}, ErrDependenciesNil
	}

	campus, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrCampusNotFound) {
			return model.Campus{}, ErrNotFound
		}
		return model.Campus{}, fmt.Errorf("get campus: %w", err)
	}
	return campus, nil
}
