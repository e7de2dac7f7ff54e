package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/swharr/TrailblazerAI-sub001/internal/ai"
	"github.com/swharr/TrailblazerAI-sub001/internal/domain"
	analysisDomain "github.com/swharr/TrailblazerAI-sub001/internal/domain/analysis"
	"github.com/swharr/TrailblazerAI-sub001/internal/events"
	"go.uber.org/zap"
)

// SubmitAnalysisRequest holds the data needed to queue a trail analysis.
type SubmitAnalysisRequest struct {
	Images        []string                       `json:"images" binding:"required"`
	Vehicle       *analysisDomain.VehicleContext `json:"vehicle"`
	TrailName     string                         `json:"trail_name"`
	TrailLocation string                         `json:"trail_location"`
	Notes         string                         `json:"notes"`
}

// AnalysisDTO is the response representation of a trail analysis.
type AnalysisDTO struct {
	ID            uuid.UUID                      `json:"id"`
	UserID        uuid.UUID                      `json:"user_id"`
	PhotoCount    int                            `json:"photo_count"`
	Vehicle       *analysisDomain.VehicleContext `json:"vehicle,omitempty"`
	TrailName     string                         `json:"trail_name,omitempty"`
	TrailLocation string                         `json:"trail_location,omitempty"`
	Notes         string                         `json:"notes,omitempty"`
	Status        string                         `json:"status"`
	ResultText    string                         `json:"result_text,omitempty"`
	Usage         analysisDomain.Usage           `json:"usage"`
	FailReason    string                         `json:"fail_reason,omitempty"`
	CompletedAt   *time.Time                     `json:"completed_at,omitempty"`
	CreatedAt     time.Time                      `json:"created_at"`
	UpdatedAt     time.Time                      `json:"updated_at"`
}

// AnalysisService orchestrates the async trail photo analysis pipeline.
// SubmitAnalysis queues work onto Kafka; ProcessAnalysis is driven by the
// request consumer and calls out to the AI proxy.
type AnalysisService struct {
	repo     analysisDomain.Repository
	aiClient *ai.Client
	producer events.Publisher
	logger   *zap.Logger
}

// NewAnalysisService creates a new AnalysisService.
func NewAnalysisService(
	repo analysisDomain.Repository,
	aiClient *ai.Client,
	producer events.Publisher,
	logger *zap.Logger,
) *AnalysisService {
	return &AnalysisService{
		repo:     repo,
		aiClient: aiClient,
		producer: producer,
		logger:   logger,
	}
}

// SubmitAnalysis stores a pending analysis and queues it for processing.
func (s *AnalysisService) SubmitAnalysis(ctx context.Context, userID uuid.UUID, req SubmitAnalysisRequest) (*AnalysisDTO, error) {
	a, err := analysisDomain.NewTrailAnalysis(userID, req.Images, req.Vehicle, req.TrailName, req.TrailLocation, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	evt := events.AnalysisRequestedEvent{
		AnalysisID: a.ID(),
		UserID:     a.UserID(),
		PhotoCount: len(a.Images()),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicAnalysisRequests, events.AnalysisRequested, evt)

	result := toAnalysisDTO(a)
	return &result, nil
}

// ProcessAnalysis runs a queued analysis through the AI proxy and records
// the outcome. Called by the request consumer.
func (s *AnalysisService) ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	a, err := s.repo.FindByID(ctx, analysisID)
	if err != nil {
		return err
	}

	if a.Status().IsTerminal() {
		s.logger.Info("skipping analysis in terminal state",
			zap.String("analysis_id", analysisID.String()),
			zap.String("status", string(a.Status())),
		)
		return nil
	}

	if err := a.Begin(); err != nil {
		return err
	}
	a.IncrementVersion()
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}

	resp, err := s.aiClient.Analyze(ctx, buildAnalyzeRequest(a))
	if err != nil {
		return s.failAnalysis(ctx, a, err.Error())
	}
	if !resp.Success {
		return s.failAnalysis(ctx, a, resp.Error)
	}

	usage := analysisDomain.Usage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		CostUSD:      resp.Usage.Cost,
	}
	if err := a.Complete(resp.Text, usage); err != nil {
		return err
	}
	a.IncrementVersion()
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}

	evt := events.AnalysisCompletedEvent{
		AnalysisID:   a.ID(),
		UserID:       a.UserID(),
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		OccurredAt:   time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicAnalysisEvents, events.AnalysisCompleted, evt)

	return nil
}

// GetAnalysis retrieves a single analysis. Only the submitter may read it.
func (s *AnalysisService) GetAnalysis(ctx context.Context, analysisID, callerID uuid.UUID) (*AnalysisDTO, error) {
	a, err := s.repo.FindByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if a.UserID() != callerID {
		return nil, domain.NewForbiddenError("analysis does not belong to this user")
	}
	result := toAnalysisDTO(a)
	return &result, nil
}

// GetUserAnalyses retrieves paginated analyses for a specific user.
func (s *AnalysisService) GetUserAnalyses(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[AnalysisDTO], error) {
	analyses, total, err := s.repo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]AnalysisDTO, len(analyses))
	for i, a := range analyses {
		dtos[i] = toAnalysisDTO(a)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// AnalysisStatsDTO holds analysis statistics for the admin dashboard.
type AnalysisStatsDTO struct {
	TotalAnalyses int64            `json:"total_analyses"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// GetAnalysisStats returns aggregate analysis statistics (admin).
func (s *AnalysisService) GetAnalysisStats(ctx context.Context) (*AnalysisStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &AnalysisStatsDTO{
		TotalAnalyses: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func (s *AnalysisService) failAnalysis(ctx context.Context, a *analysisDomain.TrailAnalysis, reason string) error {
	if reason == "" {
		reason = "analysis proxy returned no result"
	}

	if err := a.Fail(reason); err != nil {
		return err
	}
	a.IncrementVersion()
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}

	evt := events.AnalysisFailedEvent{
		AnalysisID: a.ID(),
		UserID:     a.UserID(),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicAnalysisEvents, events.AnalysisFailed, evt)

	return nil
}

func buildAnalyzeRequest(a *analysisDomain.TrailAnalysis) ai.AnalyzeRequest {
	req := ai.AnalyzeRequest{
		Images: a.Images(),
		UserID: a.UserID().String(),
	}

	if v := a.Vehicle(); v != nil {
		req.VehicleInfo = &ai.VehicleInfo{
			Make:             v.Make,
			Model:            v.Model,
			Year:             v.Year,
			Features:         v.Features,
			SuspensionBrand:  v.SuspensionBrand,
			SuspensionTravel: v.SuspensionTravel,
		}
	}

	if a.TrailName() != "" || a.TrailLocation() != "" || a.Notes() != "" {
		req.Context = &ai.AnalysisContext{
			TrailName:       a.TrailName(),
			TrailLocation:   a.TrailLocation(),
			AdditionalNotes: a.Notes(),
		}
	}
	return req
}

func toAnalysisDTO(a *analysisDomain.TrailAnalysis) AnalysisDTO {
	return AnalysisDTO{
		ID:            a.ID(),
		UserID:        a.UserID(),
		PhotoCount:    len(a.Images()),
		Vehicle:       a.Vehicle(),
		TrailName:     a.TrailName(),
		TrailLocation: a.TrailLocation(),
		Notes:         a.Notes(),
		Status:        string(a.Status()),
		ResultText:    a.ResultText(),
		Usage:         a.Usage(),
		FailReason:    a.FailReason(),
		CompletedAt:   a.CompletedAt(),
		CreatedAt:     a.CreatedAt(),
		UpdatedAt:     a.UpdatedAt(),
	}
}

func (s *AnalysisService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
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
