package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/waitingboard/api/internal/model"
	"github.com/waitingboard/api/internal/repository"
	apperrors "github.com/waitingboard/api/pkg/errors"
)

const userColumns = `id, username, email, password_hash, role, admin,
	last_logged_in, last_location, created_at`

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (err error) {
	defer func(start time.Time) { r.observe("user.create", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO waitingboard_users (username, email, password_hash, role, admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Admin,
	).Scan(&user.ID, &user.CreatedAt); err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err, "user", "username already exists"))
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) (_ []*model.User, err error) {
	defer func(start time.Time) { r.observe("user.list", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM waitingboard_users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (_ *model.User, err error) {
	defer func(start time.Time) { r.observe("user.get_by_username", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var user model.User
	if err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM waitingboard_users WHERE username = $1`, username); err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", mapError(err, "user", ""))
	}
	return &user, nil
}

func (r *userRepository) RecordLogin(ctx context.Context, id int64, at time.Time, location string) (err error) {
	defer func(start time.Time) { r.observe("user.record_login", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var lastLocation *string
	if location != "" {
		lastLocation = &location
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE waitingboard_users SET last_logged_in = $1, last_location = $2 WHERE id = $3`,
		at, lastLocation, id,
	)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("user", nil)
	}
	return nil
}
