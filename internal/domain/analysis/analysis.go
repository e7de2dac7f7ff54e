package analysis

import (
	"time"

	"github.com/google/uuid"
	"github.com/swharr/TrailblazerAI-sub001/internal/domain"
)

// VehicleContext describes the vehicle an analysis is tailored to.
type VehicleContext struct {
	Make             string   `json:"make"`
	Model            string   `json:"model"`
	Year             *int     `json:"year,omitempty"`
	Features         []string `json:"features,omitempty"`
	SuspensionBrand  string   `json:"suspension_brand,omitempty"`
	SuspensionTravel string   `json:"suspension_travel,omitempty"`
}

// Usage records the token usage and cost for a completed analysis.
type Usage struct {
	InputTokens  int      `json:"input_tokens"`
	OutputTokens int      `json:"output_tokens"`
	CostUSD      *float64 `json:"cost_usd,omitempty"`
}

// TrailAnalysis is the aggregate root for AI terrain analyses of trail
// photos. It moves through pending, processing, and a terminal completed or
// failed state.
type TrailAnalysis struct {
	id            uuid.UUID
	userID        uuid.UUID
	images        []string
	vehicle       *VehicleContext
	trailName     string
	trailLocation string
	notes         string

	status     Status
	resultText string
	usage      Usage
	failReason string

	completedAt *time.Time
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewTrailAnalysis creates a pending analysis for the given photos.
func NewTrailAnalysis(
	userID uuid.UUID,
	images []string,
	vehicle *VehicleContext,
	trailName string,
	trailLocation string,
	notes string,
) (*TrailAnalysis, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if len(images) == 0 {
		return nil, domain.NewValidationError("at least one photo is required")
	}

	now := time.Now().UTC()
	return &TrailAnalysis{
		id:            uuid.New(),
		userID:        userID,
		images:        images,
		vehicle:       vehicle,
		trailName:     trailName,
		trailLocation: trailLocation,
		notes:         notes,
		status:        StatusPending,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructTrailAnalysis rebuilds a TrailAnalysis from persistence data.
func ReconstructTrailAnalysis(
	id uuid.UUID,
	userID uuid.UUID,
	images []string,
	vehicle *VehicleContext,
	trailName string,
	trailLocation string,
	notes string,
	status Status,
	resultText string,
	usage Usage,
	failReason string,
	completedAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *TrailAnalysis {
	return &TrailAnalysis{
		id:            id,
		userID:        userID,
		images:        images,
		vehicle:       vehicle,
		trailName:     trailName,
		trailLocation: trailLocation,
		notes:         notes,
		status:        status,
		resultText:    resultText,
		usage:         usage,
		failReason:    failReason,
		completedAt:   completedAt,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

func (a *TrailAnalysis) ID() uuid.UUID            { return a.id }
func (a *TrailAnalysis) UserID() uuid.UUID        { return a.userID }
func (a *TrailAnalysis) Images() []string         { return a.images }
func (a *TrailAnalysis) Vehicle() *VehicleContext { return a.vehicle }
func (a *TrailAnalysis) TrailName() string        { return a.trailName }
func (a *TrailAnalysis) TrailLocation() string    { return a.trailLocation }
func (a *TrailAnalysis) Notes() string            { return a.notes }
func (a *TrailAnalysis) Status() Status           { return a.status }
func (a *TrailAnalysis) ResultText() string       { return a.resultText }
func (a *TrailAnalysis) Usage() Usage             { return a.usage }
func (a *TrailAnalysis) FailReason() string       { return a.failReason }
func (a *TrailAnalysis) CompletedAt() *time.Time  { return a.completedAt }
func (a *TrailAnalysis) Version() int64           { return a.version }
func (a *TrailAnalysis) CreatedAt() time.Time     { return a.createdAt }
func (a *TrailAnalysis) UpdatedAt() time.Time     { return a.updatedAt }

// --- Behavior ---

// Begin transitions the analysis from pending to processing.
func (a *TrailAnalysis) Begin() error {
	if !a.status.CanTransitionTo(StatusProcessing) {
		return domain.NewInvalidStateError(string(a.status), string(StatusProcessing))
	}
	a.status = StatusProcessing
	a.updatedAt = time.Now().UTC()
	return nil
}

// Complete records the analysis result and transitions to completed.
func (a *TrailAnalysis) Complete(resultText string, usage Usage) error {
	if !a.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(a.status), string(StatusCompleted))
	}
	now := time.Now().UTC()
	a.status = StatusCompleted
	a.resultText = resultText
	a.usage = usage
	a.completedAt = &now
	a.updatedAt = now
	return nil
}

// Fail records the failure reason and transitions to failed.
func (a *TrailAnalysis) Fail(reason string) error {
	if !a.status.CanTransitionTo(StatusFailed) {
		return domain.NewInvalidStateError(string(a.status), string(StatusFailed))
	}
	now := time.Now().UTC()
	a.status = StatusFailed
	a.failReason = reason
	a.completedAt = &now
	a.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (a *TrailAnalysis) IncrementVersion() {
	a.version++
	a.updatedAt = time.Now().UTC()
}
