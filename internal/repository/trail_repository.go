package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/swharr/TrailblazerAI-sub001/internal/domain"
	trailDomain "github.com/swharr/TrailblazerAI-sub001/internal/domain/trail"
	"gorm.io/gorm"
)

// TrailModel is the GORM model for the trails table.
type TrailModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"not null;size:200;index"`
	Location     string    `gorm:"size:200"`
	Difficulty   string    `gorm:"not null;size:20"`
	Description  string    `gorm:"size:2000"`
	SourceURL    string    `gorm:"size:500"`
	Lat          *float64  `gorm:""`
	Lng          *float64  `gorm:""`
	DiscoveredBy uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TrailModel) TableName() string {
	return "trails"
}

// GormTrailRepository is the GORM-based implementation of trail.Repository.
type GormTrailRepository struct {
	db *gorm.DB
}

// NewGormTrailRepository creates a new GormTrailRepository.
func NewGormTrailRepository(db *gorm.DB) *GormTrailRepository {
	return &GormTrailRepository{db: db}
}

// Save persists a new trail.
func (r *GormTrailRepository) Save(ctx context.Context, t *trailDomain.Trail) error {
	model := toTrailModel(t)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save trail: %w", err)
	}
	return nil
}

// FindByID retrieves a trail by its unique identifier.
func (r *GormTrailRepository) FindByID(ctx context.Context, id uuid.UUID) (*trailDomain.Trail, error) {
	var model TrailModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Trail", id.String())
		}
		return nil, fmt.Errorf("failed to find trail by ID: %w", err)
	}
	return toDomainTrail(&model), nil
}

// List retrieves trails with pagination, newest first.
func (r *GormTrailRepository) List(ctx context.Context, page, limit int) ([]*trailDomain.Trail, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&TrailModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trails: %w", err)
	}

	var models []TrailModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list trails: %w", err)
	}
	return toDomainTrails(models), total, nil
}

// SearchByName retrieves trails whose name matches the query, case-insensitively.
func (r *GormTrailRepository) SearchByName(ctx context.Context, query string, page, limit int) ([]*trailDomain.Trail, int64, error) {
	pattern := "%" + query + "%"

	var total int64
	if err := r.db.WithContext(ctx).Model(&TrailModel{}).
		Where("name ILIKE ?", pattern).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count matching trails: %w", err)
	}

	var models []TrailModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("name ILIKE ?", pattern).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search trails: %w", err)
	}
	return toDomainTrails(models), total, nil
}

// --- Conversion Helpers ---

func toTrailModel(t *trailDomain.Trail) *TrailModel {
	return &TrailModel{
		ID:           t.ID(),
		Name:         t.Name(),
		Location:     t.Location(),
		Difficulty:   string(t.Difficulty()),
		Description:  t.Description(),
		SourceURL:    t.SourceURL(),
		Lat:          t.Lat(),
		Lng:          t.Lng(),
		DiscoveredBy: t.DiscoveredBy(),
		CreatedAt:    t.CreatedAt(),
		UpdatedAt:    t.UpdatedAt(),
	}
}

func toDomainTrail(m *TrailModel) *trailDomain.Trail {
	return trailDomain.Reconstruct(
		m.ID,
		m.DiscoveredBy,
		m.Name,
		m.Location,
		trailDomain.Difficulty(m.Difficulty),
		m.Description,
		m.SourceURL,
		m.Lat,
		m.Lng,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainTrails(models []TrailModel) []*trailDomain.Trail {
	trails := make([]*trailDomain.Trail, len(models))
	for i, m := range models {
		trails[i] = toDomainTrail(&m)
	}
	return trails
}
