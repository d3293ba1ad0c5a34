package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/waitingboard/api/internal/model"
	"github.com/waitingboard/api/pkg/auth"
	apperrors "github.com/waitingboard/api/pkg/errors"
	"github.com/waitingboard/api/pkg/security"
)

type loginRecord struct {
	id       int64
	at       time.Time
	location string
}

type mockUserRepo struct {
	users  map[string]*model.User
	logins []loginRecord
	err    error
}

func (m *mockUserRepo) Create(context.Context, *model.User) error { return nil }

func (m *mockUserRepo) List(context.Context) ([]*model.User, error) { return nil, nil }

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[username]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

func (m *mockUserRepo) RecordLogin(_ context.Context, id int64, at time.Time, location string) error {
	m.logins = append(m.logins, loginRecord{id: id, at: at, location: location})
	return nil
}

func setup(t *testing.T) (*Service, *mockUserRepo) {
	t.Helper()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)

	repo := &mockUserRepo{users: map[string]*model.User{
		"nurse1": {ID: 7, Username: "nurse1", PasswordHash: hash, Role: "nurse"},
	}}
	svc := NewService(repo, hasher, auth.NewJWTService("test-secret", time.Hour))
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local) }
	return svc, repo
}

func TestLogin(t *testing.T) {
	svc, repo := setup(t)

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Username: "nurse1",
		Password: "s3cret",
		Location: "Main Clinic",
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User.LastLocation)
	assert.Equal(t, "Main Clinic", *resp.User.LastLocation)

	require.Len(t, repo.logins, 1)
	assert.Equal(t, int64(7), repo.logins[0].id)
	assert.Equal(t, "Main Clinic", repo.logins[0].location)
	assert.Equal(t, svc.now(), repo.logins[0].at)
}

func TestLoginTokenCarriesUser(t *testing.T) {
	svc, _ := setup(t)
	resp, err := svc.Login(context.Background(), &model.LoginRequest{Username: "nurse1", Password: "s3cret"})
	require.NoError(t, err)

	claims, err := auth.NewJWTService("test-secret", time.Hour).ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "nurse", claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, repo := setup(t)

	_, err := svc.Login(context.Background(), &model.LoginRequest{Username: "nurse1", Password: "nope"})
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
	assert.Equal(t, "invalid credentials", appErr.Message)
	assert.Empty(t, repo.logins)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Login(context.Background(), &model.LoginRequest{Username: "ghost", Password: "s3cret"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrUnauthorized))
}

func TestLoginStoreError(t *testing.T) {
	svc, repo := setup(t)
	repo.err = errors.New("connection reset")

	_, err := svc.Login(context.Background(), &model.LoginRequest{Username: "nurse1", Password: "s3cret"})
	require.Error(t, err)
	assert.False(t, apperrors.HasCode(err, apperrors.ErrUnauthorized))
}
