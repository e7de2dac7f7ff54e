package application

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/swharr/TrailblazerAI-sub001/internal/domain"
	routeDomain "github.com/swharr/TrailblazerAI-sub001/internal/domain/route"
	"github.com/swharr/TrailblazerAI-sub001/internal/events"
	"github.com/swharr/TrailblazerAI-sub001/internal/gpx"
	gpxgo "github.com/tkrajina/gpxgo/gpx"
	"go.uber.org/zap"
)

// CreateRouteRequest holds the data needed to create a new route.
type CreateRouteRequest struct {
	Name         string         `json:"name" binding:"required"`
	Description  string         `json:"description"`
	Author       string         `json:"author"`
	Source       string         `json:"source"`
	Waypoints    []gpx.Waypoint `json:"waypoints"`
	IncludeTrack *bool          `json:"include_track"`
}

// UpdateRouteRequest holds the mutable fields of a route.
type UpdateRouteRequest struct {
	Name         *string         `json:"name"`
	Description  *string         `json:"description"`
	Waypoints    *[]gpx.Waypoint `json:"waypoints"`
	IncludeTrack *bool           `json:"include_track"`
}

// RouteDTO is the response representation of a route.
type RouteDTO struct {
	ID               uuid.UUID      `json:"id"`
	OwnerID          uuid.UUID      `json:"owner_id"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	Author           string         `json:"author,omitempty"`
	Source           string         `json:"source"`
	Waypoints        []gpx.Waypoint `json:"waypoints"`
	IncludeTrack     bool           `json:"include_track"`
	DistanceMiles    float64        `json:"distance_miles"`
	ElevationGainFt  float64        `json:"elevation_gain_ft"`
	EstimatedMinutes int            `json:"estimated_minutes"`
	Version          int64          `json:"version"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// GPXExport is a rendered GPX document plus its download filename.
type GPXExport struct {
	Filename string
	Content  string
}

// RouteService is the application service orchestrating route use cases.
type RouteService struct {
	repo     routeDomain.Repository
	producer events.Publisher
	logger   *zap.Logger
}

// NewRouteService creates a new RouteService.
func NewRouteService(repo routeDomain.Repository, producer events.Publisher, logger *zap.Logger) *RouteService {
	return &RouteService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateRoute creates a new route for the given owner.
func (s *RouteService) CreateRoute(ctx context.Context, ownerID uuid.UUID, req CreateRouteRequest) (*RouteDTO, error) {
	source := routeDomain.SourcePlanned
	if req.Source != "" {
		parsed, err := routeDomain.ParseSource(req.Source)
		if err != nil {
			return nil, err
		}
		source = parsed
	}

	includeTrack := true
	if req.IncludeTrack != nil {
		includeTrack = *req.IncludeTrack
	}

	rt, err := routeDomain.NewRoute(ownerID, req.Name, req.Description, req.Author, req.Waypoints, includeTrack, source)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, rt); err != nil {
		return nil, fmt.Errorf("failed to save route: %w", err)
	}

	s.publishRouteCreated(ctx, rt)

	result := toRouteDTO(rt)
	return &result, nil
}

// GetRoute retrieves a single route. Only the owner may read it.
func (s *RouteService) GetRoute(ctx context.Context, routeID, callerID uuid.UUID) (*RouteDTO, error) {
	rt, err := s.repo.FindByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if rt.OwnerID() != callerID {
		return nil, domain.NewForbiddenError("route does not belong to this user")
	}
	result := toRouteDTO(rt)
	return &result, nil
}

// GetOwnerRoutes retrieves paginated routes for a specific owner.
func (s *RouteService) GetOwnerRoutes(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[RouteDTO], error) {
	routes, total, err := s.repo.FindByOwnerID(ctx, ownerID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]RouteDTO, len(routes))
	for i, rt := range routes {
		dtos[i] = toRouteDTO(rt)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// UpdateRoute applies the supplied changes to an owned route.
func (s *RouteService) UpdateRoute(ctx context.Context, routeID, callerID uuid.UUID, req UpdateRouteRequest) (*RouteDTO, error) {
	rt, err := s.repo.FindByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if rt.OwnerID() != callerID {
		return nil, domain.NewForbiddenError("route does not belong to this user")
	}

	if req.Name != nil {
		if err := rt.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		rt.SetDescription(*req.Description)
	}
	if req.Waypoints != nil {
		if err := rt.UpdateWaypoints(*req.Waypoints); err != nil {
			return nil, err
		}
	}
	if req.IncludeTrack != nil {
		rt.SetIncludeTrack(*req.IncludeTrack)
	}

	rt.IncrementVersion()
	if err := s.repo.Update(ctx, rt); err != nil {
		return nil, err
	}

	result := toRouteDTO(rt)
	return &result, nil
}

// DeleteRoute removes an owned route.
func (s *RouteService) DeleteRoute(ctx context.Context, routeID, callerID uuid.UUID) error {
	rt, err := s.repo.FindByID(ctx, routeID)
	if err != nil {
		return err
	}
	if rt.OwnerID() != callerID {
		return domain.NewForbiddenError("route does not belong to this user")
	}
	return s.repo.Delete(ctx, routeID)
}

// ExportGPX renders an owned route as a GPX 1.1 document.
func (s *RouteService) ExportGPX(ctx context.Context, routeID, callerID uuid.UUID) (*GPXExport, error) {
	rt, err := s.repo.FindByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if rt.OwnerID() != callerID {
		return nil, domain.NewForbiddenError("route does not belong to this user")
	}

	content, err := gpx.Generate(rt.GPXRoute())
	if err != nil {
		return nil, fmt.Errorf("failed to generate GPX document: %w", err)
	}

	filename := SanitizeFilename(rt.Name()) + ".gpx"

	evt := events.RouteExportedEvent{
		RouteID:       rt.ID(),
		OwnerID:       rt.OwnerID(),
		Filename:      filename,
		WaypointCount: len(rt.Waypoints()),
		IncludeTrack:  rt.IncludeTrack(),
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicRouteEvents, events.RouteExported, evt)

	return &GPXExport{Filename: filename, Content: content}, nil
}

// ImportGPX parses an uploaded GPX file into a new route for the owner.
// Track and route points are flattened into the waypoint sequence in
// document order; named GPX waypoints keep their name and symbol type.
func (s *RouteService) ImportGPX(ctx context.Context, ownerID uuid.UUID, name string, r io.Reader) (*RouteDTO, error) {
	parsed, err := gpxgo.Parse(r)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid GPX file: %v", err))
	}

	waypoints := flattenGPX(parsed)
	if len(waypoints) == 0 {
		return nil, domain.NewValidationError("GPX file contains no points")
	}

	if name == "" {
		name = parsed.Name
	}
	if name == "" {
		name = "Imported Route"
	}

	rt, err := routeDomain.NewRoute(ownerID, name, parsed.Description, parsed.AuthorName, waypoints, true, routeDomain.SourceImported)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, rt); err != nil {
		return nil, fmt.Errorf("failed to save imported route: %w", err)
	}

	s.publishRouteCreated(ctx, rt)

	result := toRouteDTO(rt)
	return &result, nil
}

// --- Admin methods ---

// RouteStatsDTO holds route statistics for the admin dashboard.
type RouteStatsDTO struct {
	TotalRoutes int64            `json:"total_routes"`
	BySource    map[string]int64 `json:"by_source"`
}

// ListAllRoutes returns a paginated list of all routes (admin).
func (s *RouteService) ListAllRoutes(ctx context.Context, page, limit int) ([]RouteDTO, int64, error) {
	routes, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list routes: %w", err)
	}

	dtos := make([]RouteDTO, len(routes))
	for i, rt := range routes {
		dtos[i] = toRouteDTO(rt)
	}
	return dtos, total, nil
}

// GetRouteStats returns aggregate route statistics (admin).
func (s *RouteService) GetRouteStats(ctx context.Context) (*RouteStatsDTO, error) {
	counts, err := s.repo.CountBySource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get route stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &RouteStatsDTO{
		TotalRoutes: total,
		BySource:    counts,
	}, nil
}

// --- Helpers ---

// SanitizeFilename lowercases the name and collapses every run of
// non-alphanumeric characters into a single hyphen, trimming hyphens
// from both ends. An empty result falls back to "route".
func SanitizeFilename(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}
	out := b.String()
	if out == "" {
		return "route"
	}
	return out
}

func toRouteDTO(rt *routeDomain.Route) RouteDTO {
	stats := rt.Stats()
	return RouteDTO{
		ID:               rt.ID(),
		OwnerID:          rt.OwnerID(),
		Name:             rt.Name(),
		Description:      rt.Description(),
		Author:           rt.Author(),
		Source:           string(rt.Source()),
		Waypoints:        rt.Waypoints(),
		IncludeTrack:     rt.IncludeTrack(),
		DistanceMiles:    stats.DistanceMiles,
		ElevationGainFt:  stats.ElevationGain,
		EstimatedMinutes: stats.EstimatedMinutes,
		Version:          rt.Version(),
		CreatedAt:        rt.CreatedAt(),
		UpdatedAt:        rt.UpdatedAt(),
	}
}

func flattenGPX(parsed *gpxgo.GPX) []gpx.Waypoint {
	var waypoints []gpx.Waypoint

	appendPoint := func(p gpxgo.GPXPoint, name, pointType, desc string) {
		wp := gpx.Waypoint{
			Lat:         p.Latitude,
			Lng:         p.Longitude,
			Name:        name,
			Type:        pointType,
			Description: desc,
		}
		if p.Elevation.NotNull() {
			ele := p.Elevation.Value()
			wp.Elevation = &ele
		}
		waypoints = append(waypoints, wp)
	}

	for _, w := range parsed.Waypoints {
		appendPoint(w, w.Name, w.Type, w.Description)
	}
	for _, rte := range parsed.Routes {
		for _, p := range rte.Points {
			appendPoint(p, p.Name, p.Type, p.Description)
		}
	}
	for _, trk := range parsed.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				appendPoint(p, "", "", "")
			}
		}
	}
	return waypoints
}

func (s *RouteService) publishRouteCreated(ctx context.Context, rt *routeDomain.Route) {
	evt := events.RouteCreatedEvent{
		RouteID:       rt.ID(),
		OwnerID:       rt.OwnerID(),
		Name:          rt.Name(),
		Source:        string(rt.Source()),
		WaypointCount: len(rt.Waypoints()),
		DistanceMiles: rt.Stats().DistanceMiles,
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicRouteEvents, events.RouteCreated, evt)
}

func (s *RouteService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := events.NewCloudEvent("trailblazer-api", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
