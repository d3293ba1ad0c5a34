package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/waitingboard/api/internal/model"
	"github.com/waitingboard/api/internal/repository"
	"github.com/waitingboard/api/pkg/auth"
	apperrors "github.com/waitingboard/api/pkg/errors"
	"github.com/waitingboard/api/pkg/security"
)

const msgInvalidCredentials = "invalid credentials"

type AuthServicer interface {
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
}

type Service struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	jwtSvc   auth.JWTService
	now      func() time.Time
}

func NewService(userRepo repository.UserRepository, hasher security.PasswordHasher, jwtSvc auth.JWTService) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		jwtSvc:   jwtSvc,
		now:      time.Now,
	}
}

// Login verifies the credential, stamps the login time and location, and
// issues an access token. Unknown users and wrong passwords look the same
// to the caller.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(msgInvalidCredentials)
	}

	now := s.now()
	location := strings.TrimSpace(req.Location)
	if err := s.userRepo.RecordLogin(ctx, user.ID, now, location); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLoggedIn = model.TimestampPtr(now)
	user.LastLocation = nil
	if location != "" {
		user.LastLocation = &location
	}

	resp := &model.LoginResponse{Success: true, User: user}
	if s.jwtSvc != nil {
		token, err := s.jwtSvc.GenerateAccessToken(user)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}
		resp.Token = token
	}
	return resp, nil
}
