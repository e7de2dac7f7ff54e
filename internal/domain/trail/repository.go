package trail

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for saved trails.
type Repository interface {
	Save(ctx context.Context, trail *Trail) error
	FindByID(ctx context.Context, id uuid.UUID) (*Trail, error)
	List(ctx context.Context, page, limit int) ([]*Trail, int64, error)
	SearchByName(ctx context.Context, query string, page, limit int) ([]*Trail, int64, error)
}
