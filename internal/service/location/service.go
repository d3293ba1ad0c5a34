package location

import (
	"context"
	"fmt"
	"strings"

	"github.com/waitingboard/api/internal/model"
	"github.com/waitingboard/api/internal/repository"
	apperrors "github.com/waitingboard/api/pkg/errors"
)

type LocationServicer interface {
	List(ctx context.Context) ([]*model.Location, error)
	Get(ctx context.Context, id int64) (*model.Location, error)
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string) (*model.Location, error)
	ResolveNames(ctx context.Context, names []string) ([]*model.Location, error)
}

type Service struct {
	repo repository.LocationRepository
}

func NewService(repo repository.LocationRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]*model.Location, error) {
	locations, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Location, error) {
	location, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	return location, nil
}

// Exists matches the name exactly after trimming.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}

	if _, err := s.repo.GetByName(ctx, name); err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up location: %w", err)
	}
	return true, nil
}

func (s *Service) Create(ctx context.Context, name string) (*model.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}

	// The unique index on name still catches a concurrent insert.
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("location already exists", nil)
	}

	location := &model.Location{Name: name}
	if err := s.repo.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	return location, nil
}

// ResolveNames looks up every name in one query and returns the known
// locations in the order of names. Unknown names are left out.
func (s *Service) ResolveNames(ctx context.Context, names []string) ([]*model.Location, error) {
	found, err := s.repo.ListByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve locations: %w", err)
	}

	byName := make(map[string]*model.Location, len(found))
	for _, l := range found {
		byName[l.Name] = l
	}

	resolved := make([]*model.Location, 0, len(found))
	for _, name := range names {
		if l, ok := byName[name]; ok {
			resolved = append(resolved, l)
		}
	}
	return resolved, nil
}
