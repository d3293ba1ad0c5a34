package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/waitingboard/api/internal/model"
	"github.com/waitingboard/api/internal/repository"
)

type locationRepository struct {
	BaseRepository
}

func NewLocationRepository(base BaseRepository) repository.LocationRepository {
	return &locationRepository{base}
}

func (r *locationRepository) Create(ctx context.Context, location *model.Location) (err error) {
	defer func(start time.Time) { r.observe("location.create", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO locations (name)
		VALUES ($1)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(ctx, query, location.Name).Scan(&location.ID, &location.CreatedAt); err != nil {
		return fmt.Errorf("failed to create location: %w", mapError(err, "location", "location already exists"))
	}
	return nil
}

func (r *locationRepository) Get(ctx context.Context, id int64) (_ *model.Location, err error) {
	defer func(start time.Time) { r.observe("location.get", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var location model.Location
	if err := r.db.GetContext(ctx, &location, `SELECT id, name, created_at FROM locations WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get location: %w", mapError(err, "location", ""))
	}
	return &location, nil
}

func (r *locationRepository) GetByName(ctx context.Context, name string) (_ *model.Location, err error) {
	defer func(start time.Time) { r.observe("location.get_by_name", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var location model.Location
	if err := r.db.GetContext(ctx, &location, `SELECT id, name, created_at FROM locations WHERE name = $1`, name); err != nil {
		return nil, fmt.Errorf("failed to get location by name: %w", mapError(err, "location", ""))
	}
	return &location, nil
}

func (r *locationRepository) List(ctx context.Context) (_ []*model.Location, err error) {
	defer func(start time.Time) { r.observe("location.list", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	locations := []*model.Location{}
	if err := r.db.SelectContext(ctx, &locations, `SELECT id, name, created_at FROM locations ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (r *locationRepository) ListByNames(ctx context.Context, names []string) (_ []*model.Location, err error) {
	if len(names) == 0 {
		return []*model.Location{}, nil
	}

	defer func(start time.Time) { r.observe("location.list_by_names", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args, err := sqlx.In(`SELECT id, name, created_at FROM locations WHERE name IN (?)`, names)
	if err != nil {
		return nil, fmt.Errorf("failed to build location lookup: %w", err)
	}

	locations := []*model.Location{}
	if err := r.db.SelectContext(ctx, &locations, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to look up locations: %w", err)
	}
	return locations, nil
}
