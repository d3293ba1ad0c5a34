package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/waitingboard/api/internal/model"
	"github.com/waitingboard/api/internal/repository"
	apperrors "github.com/waitingboard/api/pkg/errors"
)

const (
	providerColumns = `p.id, p.first_name, p.last_name, p.specialty, p.title,
		p.wait_time, p.last_changed, p.deleted, p.created_at, p.updated_at`

	duplicateProviderMsg = "A provider with this first and last name already exists"
)

// updatableProviderColumns guards the dynamic SET clause.
var updatableProviderColumns = map[string]bool{
	"first_name": true,
	"last_name":  true,
	"specialty":  true,
	"title":      true,
}

type providerRepository struct {
	BaseRepository
}

func NewProviderRepository(base BaseRepository) repository.ProviderRepository {
	return &providerRepository{base}
}

func (r *providerRepository) Create(ctx context.Context, provider *model.Provider, locationIDs []int64) (err error) {
	defer func(start time.Time) { r.observe("provider.create", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO providers (first_name, last_name, specialty, title)
		VALUES ($1, $2, $3, $4)
		RETURNING id, deleted, created_at, updated_at
	`

	err = r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, query,
			provider.FirstName,
			provider.LastName,
			provider.Specialty,
			provider.Title,
		).Scan(&provider.ID, &provider.Deleted, &provider.CreatedAt, &provider.UpdatedAt); err != nil {
			return err
		}

		if err := insertAssignments(ctx, tx, provider.ID, locationIDs); err != nil {
			return err
		}

		locations, err := r.loadLocations(ctx, tx, []int64{provider.ID})
		if err != nil {
			return err
		}
		provider.Locations = nonNil(locations[provider.ID])
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", mapError(err, "provider", duplicateProviderMsg))
	}
	return nil
}

func (r *providerRepository) Get(ctx context.Context, id int64) (_ *model.Provider, err error) {
	defer func(start time.Time) { r.observe("provider.get", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var provider model.Provider
	query := `SELECT ` + providerColumns + ` FROM providers p WHERE p.id = $1 AND p.deleted = FALSE`
	if err := r.db.GetContext(ctx, &provider, query, id); err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", mapError(err, "provider", ""))
	}

	locations, err := r.loadLocations(ctx, r.db, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("failed to load provider locations: %w", err)
	}
	provider.Locations = nonNil(locations[id])
	return &provider, nil
}

func (r *providerRepository) ExistsActiveByName(ctx context.Context, firstName, lastName string, excludeID int64) (_ bool, err error) {
	defer func(start time.Time) { r.observe("provider.exists_by_name", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM providers
			WHERE first_name = $1 AND last_name = $2 AND deleted = FALSE AND id <> $3
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, firstName, lastName, excludeID); err != nil {
		return false, fmt.Errorf("failed to check provider name: %w", err)
	}
	return exists, nil
}

func (r *providerRepository) Update(ctx context.Context, id int64, changes model.ProviderChanges, locationIDs []int64) (err error) {
	defer func(start time.Time) { r.observe("provider.update", start, err) }(time.Now())

	query, args, err := buildUpdate(id, changes)
	if err != nil {
		return err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err = r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("provider", nil)
		}

		if locationIDs == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM provider_locations WHERE provider_id = $1`, id); err != nil {
			return err
		}
		return insertAssignments(ctx, tx, id, locationIDs)
	})
	if err != nil {
		return fmt.Errorf("failed to update provider: %w", mapError(err, "provider", duplicateProviderMsg))
	}
	return nil
}

func (r *providerRepository) SetWaitTime(ctx context.Context, id int64, waitTime *int, changedAt *time.Time) (err error) {
	defer func(start time.Time) { r.observe("provider.set_wait_time", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE providers
		SET wait_time = $1, last_changed = $2, updated_at = NOW()
		WHERE id = $3 AND deleted = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, waitTime, changedAt, id)
	if err != nil {
		return fmt.Errorf("failed to set wait time: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("provider", nil)
	}
	return nil
}

// SoftDelete reports whether a live provider was marked deleted. Unknown
// and already-deleted ids are not an error.
func (r *providerRepository) SoftDelete(ctx context.Context, id int64) (_ bool, err error) {
	defer func(start time.Time) { r.observe("provider.soft_delete", start, err) }(time.Now())

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.db.ExecContext(ctx,
		`UPDATE providers SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete provider: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *providerRepository) List(ctx context.Context, filter model.ProviderFilter) (_ []*model.Provider, err error) {
	defer func(start time.Time) { r.observe("provider.list", start, err) }(time.Now())

	query, args := buildListQuery(filter)
	return r.selectWithLocations(ctx, query, args...)
}

func (r *providerRepository) ListActive(ctx context.Context) (_ []*model.Provider, err error) {
	defer func(start time.Time) { r.observe("provider.list_active", start, err) }(time.Now())

	query := `SELECT ` + providerColumns + ` FROM providers p
		WHERE p.wait_time IS NOT NULL AND p.deleted = FALSE
		ORDER BY p.updated_at DESC, p.id DESC`
	return r.selectWithLocations(ctx, query)
}

func (r *providerRepository) selectWithLocations(ctx context.Context, query string, args ...interface{}) ([]*model.Provider, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	providers := []*model.Provider{}
	if err := r.db.SelectContext(ctx, &providers, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	if len(providers) == 0 {
		return providers, nil
	}

	ids := make([]int64, len(providers))
	for i, p := range providers {
		ids[i] = p.ID
	}

	locations, err := r.loadLocations(ctx, r.db, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider locations: %w", err)
	}
	for _, p := range providers {
		p.Locations = nonNil(locations[p.ID])
	}
	return providers, nil
}

// loadLocations returns the assignments of each provider in position order.
func (r *providerRepository) loadLocations(ctx context.Context, q sqlx.QueryerContext, providerIDs []int64) (map[int64][]model.ProviderLocation, error) {
	query, args, err := sqlx.In(`
		SELECT pl.provider_id, pl.location_id, l.name
		FROM provider_locations pl
		JOIN locations l ON l.id = pl.location_id
		WHERE pl.provider_id IN (?)
		ORDER BY pl.provider_id, pl.position`, providerIDs)
	if err != nil {
		return nil, err
	}

	var rows []model.ProviderLocation
	if err := sqlx.SelectContext(ctx, q, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	byProvider := make(map[int64][]model.ProviderLocation, len(providerIDs))
	for _, row := range rows {
		byProvider[row.ProviderID] = append(byProvider[row.ProviderID], row)
	}
	return byProvider, nil
}

func insertAssignments(ctx context.Context, tx *sqlx.Tx, providerID int64, locationIDs []int64) error {
	for position, locationID := range locationIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO provider_locations (provider_id, location_id, position) VALUES ($1, $2, $3)`,
			providerID, locationID, position,
		); err != nil {
			return fmt.Errorf("failed to assign location %d: %w", locationID, err)
		}
	}
	return nil
}

// buildUpdate renders the UPDATE for a partial change set. Columns are
// emitted in sorted order so the statement is stable; updated_at is always
// stamped.
func buildUpdate(id int64, changes model.ProviderChanges) (string, []interface{}, error) {
	columns := make([]string, 0, len(changes))
	for column := range changes {
		if !updatableProviderColumns[column] {
			return "", nil, fmt.Errorf("column %q cannot be updated", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	sets := make([]string, 0, len(columns)+1)
	args := make([]interface{}, 0, len(columns)+1)
	for _, column := range columns {
		args = append(args, changes[column])
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(
		"UPDATE providers SET %s WHERE id = $%d AND deleted = FALSE",
		strings.Join(sets, ", "),
		len(args),
	)
	return query, args, nil
}

// buildListQuery selects live providers, optionally narrowed to one location
// by id or by case-insensitive name. LocationID wins when both are set.
func buildListQuery(filter model.ProviderFilter) (string, []interface{}) {
	query := `SELECT ` + providerColumns + ` FROM providers p WHERE p.deleted = FALSE`
	var args []interface{}

	switch {
	case filter.LocationID != nil:
		args = append(args, *filter.LocationID)
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM provider_locations pl
			WHERE pl.provider_id = p.id AND pl.location_id = $%d)`, len(args))
	case filter.LocationName != "":
		args = append(args, filter.LocationName)
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM provider_locations pl
			JOIN locations l ON l.id = pl.location_id
			WHERE pl.provider_id = p.id AND LOWER(l.name) = LOWER($%d))`, len(args))
	}

	return query + ` ORDER BY p.id`, args
}

func nonNil(locations []model.ProviderLocation) []model.ProviderLocation {
	if locations == nil {
		return []model.ProviderLocation{}
	}
	return locations
}
