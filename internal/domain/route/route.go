package route

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/swharr/TrailblazerAI-sub001/internal/domain"
	"github.com/swharr/TrailblazerAI-sub001/internal/gpx"
)

// Route is the aggregate root for planned and recorded off-road routes. The
// waypoint sequence is insertion-ordered and defines travel direction.
type Route struct {
	id           uuid.UUID
	ownerID      uuid.UUID
	name         string
	description  string
	author       string
	source       Source
	waypoints    []gpx.Waypoint
	includeTrack bool

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewRoute creates a new Route aggregate after validating its inputs.
func NewRoute(
	ownerID uuid.UUID,
	name string,
	description string,
	author string,
	waypoints []gpx.Waypoint,
	includeTrack bool,
	source Source,
) (*Route, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("route name is required")
	}
	if !source.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid route source: %s", source))
	}
	if err := ValidateWaypoints(waypoints); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Route{
		id:           uuid.New(),
		ownerID:      ownerID,
		name:         name,
		description:  description,
		author:       author,
		source:       source,
		waypoints:    waypoints,
		includeTrack: includeTrack,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructRoute rebuilds a Route from persistence data (no validation).
func ReconstructRoute(
	id uuid.UUID,
	ownerID uuid.UUID,
	name string,
	description string,
	author string,
	source Source,
	waypoints []gpx.Waypoint,
	includeTrack bool,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Route {
	return &Route{
		id:           id,
		ownerID:      ownerID,
		name:         name,
		description:  description,
		author:       author,
		source:       source,
		waypoints:    waypoints,
		includeTrack: includeTrack,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ValidateWaypoints rejects waypoints with non-finite or out-of-range
// coordinates. The geometry functions themselves are total and would
// propagate NaN silently, so this gate runs once at ingestion.
func ValidateWaypoints(waypoints []gpx.Waypoint) error {
	for i, w := range waypoints {
		if math.IsNaN(w.Lat) || math.IsInf(w.Lat, 0) || math.IsNaN(w.Lng) || math.IsInf(w.Lng, 0) {
			return domain.NewValidationError(fmt.Sprintf("waypoint %d has non-finite coordinates", i))
		}
		if w.Lat < -90 || w.Lat > 90 {
			return domain.NewValidationError(fmt.Sprintf("waypoint %d latitude out of range: %v", i, w.Lat))
		}
		if w.Lng < -180 || w.Lng > 180 {
			return domain.NewValidationError(fmt.Sprintf("waypoint %d longitude out of range: %v", i, w.Lng))
		}
		if w.Elevation != nil && (math.IsNaN(*w.Elevation) || math.IsInf(*w.Elevation, 0)) {
			return domain.NewValidationError(fmt.Sprintf("waypoint %d has non-finite elevation", i))
		}
	}
	return nil
}

// --- Getters ---

// ID returns the route's unique identifier.
func (r *Route) ID() uuid.UUID { return r.id }

// OwnerID returns the owning user's ID.
func (r *Route) OwnerID() uuid.UUID { return r.ownerID }

// Name returns the route name.
func (r *Route) Name() string { return r.name }

// Description returns the route description.
func (r *Route) Description() string { return r.description }

// Author returns the route author, or empty if unset.
func (r *Route) Author() string { return r.author }

// Source returns how the route came to exist.
func (r *Route) Source() Source { return r.source }

// Waypoints returns the ordered waypoint sequence.
func (r *Route) Waypoints() []gpx.Waypoint { return r.waypoints }

// IncludeTrack reports whether GPX exports duplicate the route as a track.
func (r *Route) IncludeTrack() bool { return r.includeTrack }

// Version returns the entity version for optimistic locking.
func (r *Route) Version() int64 { return r.version }

// CreatedAt returns the creation timestamp.
func (r *Route) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Route) UpdatedAt() time.Time { return r.updatedAt }

// --- Behavior ---

// Rename changes the route name.
func (r *Route) Rename(name string) error {
	if name == "" {
		return domain.NewValidationError("route name is required")
	}
	r.name = name
	r.updatedAt = time.Now().UTC()
	return nil
}

// SetDescription updates the route description.
func (r *Route) SetDescription(description string) {
	r.description = description
	r.updatedAt = time.Now().UTC()
}

// UpdateWaypoints replaces the waypoint sequence after validating it.
func (r *Route) UpdateWaypoints(waypoints []gpx.Waypoint) error {
	if err := ValidateWaypoints(waypoints); err != nil {
		return err
	}
	r.waypoints = waypoints
	r.updatedAt = time.Now().UTC()
	return nil
}

// AppendWaypoint adds a waypoint to the end of the sequence.
func (r *Route) AppendWaypoint(wp gpx.Waypoint) error {
	if err := ValidateWaypoints([]gpx.Waypoint{wp}); err != nil {
		return err
	}
	r.waypoints = append(r.waypoints, wp)
	r.updatedAt = time.Now().UTC()
	return nil
}

// SetIncludeTrack toggles track duplication on GPX export.
func (r *Route) SetIncludeTrack(include bool) {
	r.includeTrack = include
	r.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (r *Route) IncrementVersion() {
	r.version++
	r.updatedAt = time.Now().UTC()
}

// Stats summarizes route geometry: total distance, climb, and an off-road
// travel time estimate at the default average speed.
type Stats struct {
	DistanceMiles    float64 `json:"distance_miles"`
	ElevationGain    float64 `json:"elevation_gain"`
	EstimatedMinutes int     `json:"estimated_minutes"`
}

// Stats computes the route's geometry summary.
func (r *Route) Stats() Stats {
	distance := gpx.RouteDistance(r.waypoints)
	return Stats{
		DistanceMiles:    distance,
		ElevationGain:    gpx.ElevationGain(r.waypoints),
		EstimatedMinutes: gpx.EstimateTravelTime(distance, 0),
	}
}

// GPXRoute converts the aggregate into the exporter's input shape.
func (r *Route) GPXRoute() gpx.Route {
	return gpx.Route{
		Name:         r.name,
		Description:  r.description,
		Author:       r.author,
		Waypoints:    r.waypoints,
		IncludeTrack: r.includeTrack,
	}
}
