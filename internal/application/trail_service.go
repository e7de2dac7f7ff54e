package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/swharr/TrailblazerAI-sub001/internal/ai"
	"github.com/swharr/TrailblazerAI-sub001/internal/domain"
	trailDomain "github.com/swharr/TrailblazerAI-sub001/internal/domain/trail"
	"go.uber.org/zap"
)

// TrailSearchRequest holds the criteria for an AI trail search.
type TrailSearchRequest struct {
	Location   string `json:"location" binding:"required"`
	Vehicle    string `json:"vehicle"`
	Difficulty string `json:"difficulty"`
	Keywords   string `json:"keywords"`
}

// TrailSearchResultDTO is the raw result of an AI trail search.
type TrailSearchResultDTO struct {
	Text         string `json:"text"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// SaveTrailRequest holds the data needed to save a discovered trail.
type SaveTrailRequest struct {
	Name        string   `json:"name" binding:"required"`
	Location    string   `json:"location"`
	Difficulty  string   `json:"difficulty"`
	Description string   `json:"description"`
	SourceURL   string   `json:"source_url"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}

// TrailDTO is the response representation of a saved trail.
type TrailDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location,omitempty"`
	Difficulty   string    `json:"difficulty"`
	Description  string    `json:"description,omitempty"`
	SourceURL    string    `json:"source_url,omitempty"`
	Lat          *float64  `json:"lat,omitempty"`
	Lng          *float64  `json:"lng,omitempty"`
	DiscoveredBy uuid.UUID `json:"discovered_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TrailService orchestrates trail discovery and the saved trail catalog.
type TrailService struct {
	repo     trailDomain.Repository
	aiClient *ai.Client
	logger   *zap.Logger
}

// NewTrailService creates a new TrailService.
func NewTrailService(repo trailDomain.Repository, aiClient *ai.Client, logger *zap.Logger) *TrailService {
	return &TrailService{
		repo:     repo,
		aiClient: aiClient,
		logger:   logger,
	}
}

// SearchTrails runs a web-backed trail search through the AI proxy.
func (s *TrailService) SearchTrails(ctx context.Context, userID uuid.UUID, req TrailSearchRequest) (*TrailSearchResultDTO, error) {
	resp, err := s.aiClient.FindTrails(ctx, ai.TrailFinderRequest{
		Prompt: buildTrailPrompt(req),
		UserID: userID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("trail search failed: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("trail search failed: %s", resp.Error)
	}

	return &TrailSearchResultDTO{
		Text:         resp.Text,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}

// SaveTrail stores a trail the user wants to keep from search results.
func (s *TrailService) SaveTrail(ctx context.Context, userID uuid.UUID, req SaveTrailRequest) (*TrailDTO, error) {
	t, err := trailDomain.NewTrail(
		userID,
		req.Name,
		req.Location,
		trailDomain.Difficulty(req.Difficulty),
		req.Description,
		req.SourceURL,
		req.Lat,
		req.Lng,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save trail: %w", err)
	}

	result := toTrailDTO(t)
	return &result, nil
}

// GetTrail retrieves a single saved trail.
func (s *TrailService) GetTrail(ctx context.Context, trailID uuid.UUID) (*TrailDTO, error) {
	t, err := s.repo.FindByID(ctx, trailID)
	if err != nil {
		return nil, err
	}
	result := toTrailDTO(t)
	return &result, nil
}

// ListTrails retrieves saved trails with pagination, optionally filtered by
// a case-insensitive name query.
func (s *TrailService) ListTrails(ctx context.Context, query string, page, limit int) (*domain.PaginatedResult[TrailDTO], error) {
	var (
		trails []*trailDomain.Trail
		total  int64
		err    error
	)
	if query != "" {
		trails, total, err = s.repo.SearchByName(ctx, query, page, limit)
	} else {
		trails, total, err = s.repo.List(ctx, page, limit)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]TrailDTO, len(trails))
	for i, t := range trails {
		dtos[i] = toTrailDTO(t)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// --- Helpers ---

func buildTrailPrompt(req TrailSearchRequest) string {
	var b strings.Builder
	b.WriteString("Find off-road trails near ")
	b.WriteString(req.Location)
	if req.Vehicle != "" {
		b.WriteString(" suitable for a ")
		b.WriteString(req.Vehicle)
	}
	if req.Difficulty != "" {
		b.WriteString(" with difficulty around ")
		b.WriteString(req.Difficulty)
	}
	if req.Keywords != "" {
		b.WriteString(". Additional preferences: ")
		b.WriteString(req.Keywords)
	}
	return b.String()
}

func toTrailDTO(t *trailDomain.Trail) TrailDTO {
	return TrailDTO{
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
