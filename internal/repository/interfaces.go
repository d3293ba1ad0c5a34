package repository

import (
	"context"
	"time"

	"github.com/waitingboard/api/internal/model"
)

// All repository interfaces in one file
type (
	LocationRepository interface {
		Create(ctx context.Context, location *model.Location) error
		Get(ctx context.Context, id int64) (*model.Location, error)
		GetByName(ctx context.Context, name string) (*model.Location, error)
		List(ctx context.Context) ([]*model.Location, error)
		// ListByNames returns the locations whose name is in names, in no
		// particular order. Unknown names are skipped.
		ListByNames(ctx context.Context, names []string) ([]*model.Location, error)
	}

	ProviderRepository interface {
		// Create inserts the provider and its location assignments atomically.
		Create(ctx context.Context, provider *model.Provider, locationIDs []int64) error
		Get(ctx context.Context, id int64) (*model.Provider, error)
		// ExistsActiveByName reports whether a non-deleted provider other
		// than excludeID carries the given name. excludeID 0 excludes nothing.
		ExistsActiveByName(ctx context.Context, firstName, lastName string, excludeID int64) (bool, error)
		// Update writes changes and, when locationIDs is non-nil, replaces the
		// location assignments. Both happen in one transaction.
		Update(ctx context.Context, id int64, changes model.ProviderChanges, locationIDs []int64) error
		// SetWaitTime sets or, with a nil waitTime, clears the wait time.
		SetWaitTime(ctx context.Context, id int64, waitTime *int, changedAt *time.Time) error
		SoftDelete(ctx context.Context, id int64) (bool, error)
		List(ctx context.Context, filter model.ProviderFilter) ([]*model.Provider, error)
		ListActive(ctx context.Context) ([]*model.Provider, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		List(ctx context.Context) ([]*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		RecordLogin(ctx context.Context, id int64, at time.Time, location string) error
	}

	// Pinger is satisfied by *sqlx.DB.
	Pinger interface {
		PingContext(ctx context.Context) error
	}
)
