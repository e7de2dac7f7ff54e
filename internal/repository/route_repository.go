package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/swharr/TrailblazerAI-sub001/internal/domain"
	routeDomain "github.com/swharr/TrailblazerAI-sub001/internal/domain/route"
	"github.com/swharr/TrailblazerAI-sub001/internal/gpx"
	"gorm.io/gorm"
)

// RouteModel is the GORM model for the routes table.
type RouteModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Name         string          `gorm:"not null;size:200"`
	Description  string          `gorm:"size:2000"`
	Author       string          `gorm:"size:100"`
	Source       string          `gorm:"not null;size:20;index"`
	Waypoints    json.RawMessage `gorm:"type:jsonb;not null"`
	IncludeTrack bool            `gorm:"not null;default:true"`
	Version      int64           `gorm:"not null;default:1"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RouteModel) TableName() string {
	return "routes"
}

// GormRouteRepository is the GORM-based implementation of route.Repository.
type GormRouteRepository struct {
	db *gorm.DB
}

// NewGormRouteRepository creates a new GormRouteRepository.
func NewGormRouteRepository(db *gorm.DB) *GormRouteRepository {
	return &GormRouteRepository{db: db}
}

// FindByID retrieves a route by its unique identifier.
func (r *GormRouteRepository) FindByID(ctx context.Context, id uuid.UUID) (*routeDomain.Route, error) {
	var model RouteModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Route", id.String())
		}
		return nil, fmt.Errorf("failed to find route by ID: %w", err)
	}
	return toDomainRoute(&model)
}

// FindByOwnerID retrieves routes for a specific owner with pagination.
func (r *GormRouteRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*routeDomain.Route, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RouteModel{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner routes: %w", err)
	}

	var models []RouteModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner routes: %w", err)
	}

	return toDomainRoutes(models, total)
}

// ListAll retrieves all routes with pagination (admin).
func (r *GormRouteRepository) ListAll(ctx context.Context, page, limit int) ([]*routeDomain.Route, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&RouteModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count routes: %w", err)
	}

	var models []RouteModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list routes: %w", err)
	}

	return toDomainRoutes(models, total)
}

// CountBySource returns route counts grouped by source (admin).
func (r *GormRouteRepository) CountBySource(ctx context.Context) (map[string]int64, error) {
	type sourceCount struct {
		Source string
		Count  int64
	}
	var results []sourceCount
	if err := r.db.WithContext(ctx).Model(&RouteModel{}).
		Select("source, count(*) as count").
		Group("source").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by source: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Source] = sc.Count
	}
	return counts, nil
}

// Save persists a new route.
func (r *GormRouteRepository) Save(ctx context.Context, rt *routeDomain.Route) error {
	model, err := toRouteModel(rt)
	if err != nil {
		return fmt.Errorf("failed to convert route to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save route: %w", err)
	}
	return nil
}

// Update persists changes to an existing route with optimistic locking.
func (r *GormRouteRepository) Update(ctx context.Context, rt *routeDomain.Route) error {
	model, err := toRouteModel(rt)
	if err != nil {
		return fmt.Errorf("failed to convert route to model: %w", err)
	}

	expectedVersion := rt.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&RouteModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":          model.Name,
			"description":   model.Description,
			"author":        model.Author,
			"source":        model.Source,
			"waypoints":     model.Waypoints,
			"include_track": model.IncludeTrack,
			"version":       model.Version,
			"updated_at":    model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update route: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("route was modified by another transaction")
	}
	return nil
}

// Delete removes a route.
func (r *GormRouteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&RouteModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete route: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Route", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toRouteModel(rt *routeDomain.Route) (*RouteModel, error) {
	waypointsJSON, err := json.Marshal(rt.Waypoints())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal waypoints: %w", err)
	}

	return &RouteModel{
		ID:           rt.ID(),
		OwnerID:      rt.OwnerID(),
		Name:         rt.Name(),
		Description:  rt.Description(),
		Author:       rt.Author(),
		Source:       string(rt.Source()),
		Waypoints:    waypointsJSON,
		IncludeTrack: rt.IncludeTrack(),
		Version:      rt.Version(),
		CreatedAt:    rt.CreatedAt(),
		UpdatedAt:    rt.UpdatedAt(),
	}, nil
}

func toDomainRoute(m *RouteModel) (*routeDomain.Route, error) {
	var waypoints []gpx.Waypoint
	if len(m.Waypoints) > 0 {
		if err := json.Unmarshal(m.Waypoints, &waypoints); err != nil {
			return nil, fmt.Errorf("failed to unmarshal waypoints: %w", err)
		}
	}

	source, err := routeDomain.ParseSource(m.Source)
	if err != nil {
		return nil, err
	}

	return routeDomain.ReconstructRoute(
		m.ID,
		m.OwnerID,
		m.Name,
		m.Description,
		m.Author,
		source,
		waypoints,
		m.IncludeTrack,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainRoutes(models []RouteModel, total int64) ([]*routeDomain.Route, int64, error) {
	routes := make([]*routeDomain.Route, len(models))
	for i, m := range models {
		rt, err := toDomainRoute(&m)
		if err != nil {
			return nil, 0, err
		}
		routes[i] = rt
	}
	return routes, total, nil
}
