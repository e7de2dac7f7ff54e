package route

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for route aggregates.
type Repository interface {
	// FindByID retrieves a route by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Route, error)

	// FindByOwnerID retrieves routes belonging to a specific owner with pagination.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*Route, int64, error)

	// ListAll retrieves all routes with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Route, int64, error)

	// CountBySource returns route counts grouped by source (admin).
	CountBySource(ctx context.Context) (map[string]int64, error)

	// Save persists a new route.
	Save(ctx context.Context, route *Route) error

	// Update persists changes to an existing route with optimistic locking.
	Update(ctx context.Context, route *Route) error

	// Delete removes a route.
	Delete(ctx context.Context, id uuid.UUID) error
}
