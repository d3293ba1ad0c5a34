package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/waitingboard/api/internal/model"
	"github.com/waitingboard/api/internal/repository"
	apperrors "github.com/waitingboard/api/pkg/errors"
	"github.com/waitingboard/api/pkg/security"
)

const msgAllFieldsRequired = "All fields are required"

type UserServicer interface {
	List(ctx context.Context) ([]*model.User, error)
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
}

type Service struct {
	repo   repository.UserRepository
	hasher security.PasswordHasher
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
	}
}

func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Create stores a new user with a bcrypt hash of the supplied password.
func (s *Service) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	user := &model.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Role:     strings.TrimSpace(req.Role),
		Admin:    bool(req.Admin),
	}
	if user.Username == "" || user.Email == "" || user.Role == "" || req.Password == "" {
		return nil, apperrors.Validation(msgAllFieldsRequired)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return nil, apperrors.Validation(err.Error())
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
