package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/waitingboard/api/internal/model"
	"github.com/waitingboard/api/internal/repository"
	"github.com/waitingboard/api/internal/service/event"
	apperrors "github.com/waitingboard/api/pkg/errors"
)

const (
	msgAllFieldsRequired  = "All fields are required"
	msgNoFieldsToUpdate   = "No fields to update"
	msgDuplicateProvider  = "A provider with this first and last name already exists"
	msgNegativeWaitTime   = "waitTime must be zero or greater"
	msgFieldCannotBeEmpty = "%s cannot be empty"
)

type ProviderServicer interface {
	List(ctx context.Context, filter model.ProviderFilter) ([]*model.Provider, error)
	ListActive(ctx context.Context) ([]*model.Provider, error)
	Get(ctx context.Context, id int64) (*model.Provider, error)
	Create(ctx context.Context, req *model.CreateProviderRequest) (*model.CreateProviderResult, error)
	Update(ctx context.Context, id int64, req *model.UpdateProviderRequest) error
	SetWaitTime(ctx context.Context, id int64, waitTime int) error
	ClearWaitTime(ctx context.Context, id int64) error
	Remove(ctx context.Context, id int64) error
}

// EventPublisher receives wait-time changes after they are stored.
type EventPublisher interface {
	Publish(ctx context.Context, evt model.WaitTimeEvent)
}

type Service struct {
	repo      repository.ProviderRepository
	locations LocationResolver
	events    EventPublisher
	now       func() time.Time
}

func NewService(repo repository.ProviderRepository, locations LocationResolver, events EventPublisher) *Service {
	return &Service{
		repo:      repo,
		locations: locations,
		events:    events,
		now:       time.Now,
	}
}

func (s *Service) List(ctx context.Context, filter model.ProviderFilter) ([]*model.Provider, error) {
	providers, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return providers, nil
}

func (s *Service) ListActive(ctx context.Context) ([]*model.Provider, error) {
	providers, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active providers: %w", err)
	}
	return providers, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Provider, error) {
	provider, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}
	return provider, nil
}

// Create rejects duplicate names first, then drops unknown locations and
// stores the provider with the remaining ones.
func (s *Service) Create(ctx context.Context, req *model.CreateProviderRequest) (*model.CreateProviderResult, error) {
	provider := &model.Provider{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Specialty: strings.TrimSpace(req.Specialty),
		Title:     strings.TrimSpace(req.Title),
	}
	if provider.FirstName == "" || provider.LastName == "" || provider.Specialty == "" || provider.Title == "" {
		return nil, apperrors.Validation(msgAllFieldsRequired)
	}

	exists, err := s.repo.ExistsActiveByName(ctx, provider.FirstName, provider.LastName, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate provider: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict(msgDuplicateProvider, nil)
	}

	validation, err := ValidateLocations(ctx, s.locations, req.Locations)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, provider, validation.IDs()); err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	return &model.CreateProviderResult{
		Provider: provider,
		Accepted: validation.Names(),
		Dropped:  validation.Invalid,
	}, nil
}

// Update writes only the supplied fields. A supplied location list
// replaces the current assignments.
func (s *Service) Update(ctx context.Context, id int64, req *model.UpdateProviderRequest) error {
	if req.IsEmpty() {
		return apperrors.Validation(msgNoFieldsToUpdate)
	}

	changes := model.ProviderChanges{}
	fields := []struct {
		column string
		field  string
		value  *string
	}{
		{"first_name", "firstName", req.FirstName},
		{"last_name", "lastName", req.LastName},
		{"specialty", "specialty", req.Specialty},
		{"title", "title", req.Title},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		v := strings.TrimSpace(*f.value)
		if v == "" {
			return apperrors.Validationf(msgFieldCannotBeEmpty, f.field)
		}
		changes[f.column] = v
	}

	var locationIDs []int64
	if req.Locations != nil {
		validation, err := ValidateLocations(ctx, s.locations, *req.Locations)
		if err != nil {
			return err
		}
		locationIDs = validation.IDs()
	}

	if req.FirstName != nil || req.LastName != nil {
		if err := s.checkRename(ctx, id, changes); err != nil {
			return err
		}
	}

	if err := s.repo.Update(ctx, id, changes, locationIDs); err != nil {
		return fmt.Errorf("failed to update provider: %w", err)
	}
	return nil
}

// checkRename rejects a rename onto another active provider's name.
func (s *Service) checkRename(ctx context.Context, id int64, changes model.ProviderChanges) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get provider: %w", err)
	}

	firstName, lastName := current.FirstName, current.LastName
	if v, ok := changes["first_name"].(string); ok {
		firstName = v
	}
	if v, ok := changes["last_name"].(string); ok {
		lastName = v
	}

	exists, err := s.repo.ExistsActiveByName(ctx, firstName, lastName, id)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate provider: %w", err)
	}
	if exists {
		return apperrors.Conflict(msgDuplicateProvider, nil)
	}
	return nil
}

func (s *Service) SetWaitTime(ctx context.Context, id int64, waitTime int) error {
	if waitTime < 0 {
		return apperrors.Validation(msgNegativeWaitTime)
	}

	now := s.now()
	if err := s.repo.SetWaitTime(ctx, id, &waitTime, &now); err != nil {
		return fmt.Errorf("failed to set wait time: %w", err)
	}

	s.events.Publish(ctx, event.NewWaitTimeEvent(model.EventWaitTimeSet, id, &waitTime, now))
	return nil
}

func (s *Service) ClearWaitTime(ctx context.Context, id int64) error {
	if err := s.repo.SetWaitTime(ctx, id, nil, nil); err != nil {
		return fmt.Errorf("failed to clear wait time: %w", err)
	}

	s.events.Publish(ctx, event.NewWaitTimeEvent(model.EventWaitTimeCleared, id, nil, s.now()))
	return nil
}

// Remove soft-deletes the provider. Unknown or already removed ids succeed
// without publishing anything.
func (s *Service) Remove(ctx context.Context, id int64) error {
	removed, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to remove provider: %w", err)
	}

	if removed {
		s.events.Publish(ctx, event.NewWaitTimeEvent(model.EventProviderRemoved, id, nil, s.now()))
	}
	return nil
}
