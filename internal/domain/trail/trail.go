package trail

import (
	"time"

	"github.com/google/uuid"
	"github.com/swharr/TrailblazerAI-sub001/internal/domain"
)

// Difficulty is a trail difficulty rating. The set is open: ratings parsed
// from search results that match no constant are stored as-is.
type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyModerate  Difficulty = "moderate"
	DifficultyDifficult Difficulty = "difficult"
	DifficultySevere    Difficulty = "severe"
	DifficultyUnknown   Difficulty = "unknown"
)

// IsKnown returns true if the difficulty is one of the standard ratings.
func (d Difficulty) IsKnown() bool {
	switch d {
	case DifficultyEasy, DifficultyModerate, DifficultyDifficult, DifficultySevere:
		return true
	}
	return false
}

// Trail is a saved off-road trail, typically curated from trail search
// results.
type Trail struct {
	id           uuid.UUID
	name         string
	location     string
	difficulty   Difficulty
	description  string
	sourceURL    string
	lat          *float64
	lng          *float64
	discoveredBy uuid.UUID
	createdAt    time.Time
	updatedAt    time.Time
}

// NewTrail creates a saved trail with validated fields.
func NewTrail(
	discoveredBy uuid.UUID,
	name, location string,
	difficulty Difficulty,
	description, sourceURL string,
	lat, lng *float64,
) (*Trail, error) {
	if discoveredBy == uuid.Nil {
		return nil, domain.NewValidationError("discovering user ID is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("trail name is required")
	}
	if difficulty == "" {
		difficulty = DifficultyUnknown
	}
	if (lat == nil) != (lng == nil) {
		return nil, domain.NewValidationError("latitude and longitude must be provided together")
	}

	now := time.Now().UTC()
	return &Trail{
		id:           uuid.New(),
		name:         name,
		location:     location,
		difficulty:   difficulty,
		description:  description,
		sourceURL:    sourceURL,
		lat:          lat,
		lng:          lng,
		discoveredBy: discoveredBy,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a Trail from persistence data (no validation).
func Reconstruct(
	id, discoveredBy uuid.UUID,
	name, location string,
	difficulty Difficulty,
	description, sourceURL string,
	lat, lng *float64,
	createdAt, updatedAt time.Time,
) *Trail {
	return &Trail{
		id:           id,
		name:         name,
		location:     location,
		difficulty:   difficulty,
		description:  description,
		sourceURL:    sourceURL,
		lat:          lat,
		lng:          lng,
		discoveredBy: discoveredBy,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// Getters.
func (t *Trail) ID() uuid.UUID           { return t.id }
func (t *Trail) Name() string            { return t.name }
func (t *Trail) Location() string        { return t.location }
func (t *Trail) Difficulty() Difficulty  { return t.difficulty }
func (t *Trail) Description() string     { return t.description }
func (t *Trail) SourceURL() string       { return t.sourceURL }
func (t *Trail) Lat() *float64           { return t.lat }
func (t *Trail) Lng() *float64           { return t.lng }
func (t *Trail) DiscoveredBy() uuid.UUID { return t.discoveredBy }
func (t *Trail) CreatedAt() time.Time    { return t.createdAt }
func (t *Trail) UpdatedAt() time.Time    { return t.updatedAt }
