package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/swharr/TrailblazerAI-sub001/internal/domain"
	analysisDomain "github.com/swharr/TrailblazerAI-sub001/internal/domain/analysis"
	"gorm.io/gorm"
)

// AnalysisModel is the GORM model for the trail_analyses table.
type AnalysisModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	Images        json.RawMessage `gorm:"type:jsonb;not null"`
	Vehicle       json.RawMessage `gorm:"type:jsonb"`
	TrailName     string          `gorm:"size:200"`
	TrailLocation string          `gorm:"size:200"`
	Notes         string          `gorm:"size:1000"`
	Status        string          `gorm:"not null;size:20;index"`
	ResultText    string          `gorm:"type:text"`
	InputTokens   int             `gorm:"not null;default:0"`
	OutputTokens  int             `gorm:"not null;default:0"`
	CostUSD       *float64        `gorm:""`
	FailReason    string          `gorm:"size:500"`
	CompletedAt   *time.Time      `gorm:""`
	Version       int64           `gorm:"not null;default:1"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (AnalysisModel) TableName() string {
	return "trail_analyses"
}

// GormAnalysisRepository is the GORM-based implementation of analysis.Repository.
type GormAnalysisRepository struct {
	db *gorm.DB
}

// NewGormAnalysisRepository creates a new GormAnalysisRepository.
func NewGormAnalysisRepository(db *gorm.DB) *GormAnalysisRepository {
	return &GormAnalysisRepository{db: db}
}

// FindByID retrieves an analysis by its unique identifier.
func (r *GormAnalysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*analysisDomain.TrailAnalysis, error) {
	var model AnalysisModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("TrailAnalysis", id.String())
		}
		return nil, fmt.Errorf("failed to find analysis by ID: %w", err)
	}
	return toDomainAnalysis(&model)
}

// FindByUserID retrieves a user's analyses with pagination.
func (r *GormAnalysisRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*analysisDomain.TrailAnalysis, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&AnalysisModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count user analyses: %w", err)
	}

	var models []AnalysisModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find user analyses: %w", err)
	}

	analyses := make([]*analysisDomain.TrailAnalysis, len(models))
	for i, m := range models {
		a, err := toDomainAnalysis(&m)
		if err != nil {
			return nil, 0, err
		}
		analyses[i] = a
	}
	return analyses, total, nil
}

// CountByStatus returns analysis counts grouped by status (admin).
func (r *GormAnalysisRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&AnalysisModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new analysis.
func (r *GormAnalysisRepository) Save(ctx context.Context, a *analysisDomain.TrailAnalysis) error {
	model, err := toAnalysisModel(a)
	if err != nil {
		return fmt.Errorf("failed to convert analysis to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// Update persists changes to an existing analysis with optimistic locking.
func (r *GormAnalysisRepository) Update(ctx context.Context, a *analysisDomain.TrailAnalysis) error {
	model, err := toAnalysisModel(a)
	if err != nil {
		return fmt.Errorf("failed to convert analysis to model: %w", err)
	}

	expectedVersion := a.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&AnalysisModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":        model.Status,
			"result_text":   model.ResultText,
			"input_tokens":  model.InputTokens,
			"output_tokens": model.OutputTokens,
			"cost_usd":      model.CostUSD,
			"fail_reason":   model.FailReason,
			"completed_at":  model.CompletedAt,
			"version":       model.Version,
			"updated_at":    model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update analysis: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("analysis was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toAnalysisModel(a *analysisDomain.TrailAnalysis) (*AnalysisModel, error) {
	imagesJSON, err := json.Marshal(a.Images())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}

	var vehicleJSON json.RawMessage
	if a.Vehicle() != nil {
		data, err := json.Marshal(a.Vehicle())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal vehicle context: %w", err)
		}
		vehicleJSON = data
	}

	usage := a.Usage()
	return &AnalysisModel{
		ID:            a.ID(),
		UserID:        a.UserID(),
		Images:        imagesJSON,
		Vehicle:       vehicleJSON,
		TrailName:     a.TrailName(),
		TrailLocation: a.TrailLocation(),
		Notes:         a.Notes(),
		Status:        string(a.Status()),
		ResultText:    a.ResultText(),
		InputTokens:   usage.InputTokens,
		OutputTokens:  usage.OutputTokens,
		CostUSD:       usage.CostUSD,
		FailReason:    a.FailReason(),
		CompletedAt:   a.CompletedAt(),
		Version:       a.Version(),
		CreatedAt:     a.CreatedAt(),
		UpdatedAt:     a.UpdatedAt(),
	}, nil
}

func toDomainAnalysis(m *AnalysisModel) (*analysisDomain.TrailAnalysis, error) {
	var images []string
	if err := json.Unmarshal(m.Images, &images); err != nil {
		return nil, fmt.Errorf("failed to unmarshal images: %w", err)
	}

	var vehicle *analysisDomain.VehicleContext
	if len(m.Vehicle) > 0 {
		var v analysisDomain.VehicleContext
		if err := json.Unmarshal(m.Vehicle, &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vehicle context: %w", err)
		}
		vehicle = &v
	}

	status, err := analysisDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return analysisDomain.ReconstructTrailAnalysis(
		m.ID,
		m.UserID,
		images,
		vehicle,
		m.TrailName,
		m.TrailLocation,
		m.Notes,
		status,
		m.ResultText,
		analysisDomain.Usage{
			InputTokens:  m.InputTokens,
			OutputTokens: m.OutputTokens,
			CostUSD:      m.CostUSD,
		},
		m.FailReason,
		m.CompletedAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
