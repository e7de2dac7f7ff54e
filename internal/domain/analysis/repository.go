package analysis

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for trail analyses.
type Repository interface {
	// FindByID retrieves an analysis by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*TrailAnalysis, error)

	// FindByUserID retrieves a user's analyses with pagination.
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*TrailAnalysis, int64, error)

	// CountByStatus returns analysis counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new analysis.
	Save(ctx context.Context, analysis *TrailAnalysis) error

	// Update persists changes to an existing analysis with optimistic locking.
	Update(ctx context.Context, analysis *TrailAnalysis) error
}
