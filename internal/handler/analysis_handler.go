package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/swharr/TrailblazerAI-sub001/internal/application"
	"github.com/swharr/TrailblazerAI-sub001/internal/auth"
	"github.com/swharr/TrailblazerAI-sub001/internal/middleware"
	"github.com/swharr/TrailblazerAI-sub001/internal/response"
)

// AnalysisHandler handles HTTP requests for trail photo analyses.
type AnalysisHandler struct {
	service *application.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(service *application.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// RegisterRoutes registers all analysis endpoints on the given router group.
func (h *AnalysisHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	analyses := r.Group("/api/v1/analyses")
	analyses.Use(authMW)
	{
		analyses.POST("", h.SubmitAnalysis)
		analyses.GET("", h.ListAnalyses)
		analyses.GET("/:id", h.GetAnalysis)
	}
}

// SubmitAnalysis handles POST /api/v1/analyses. The analysis is queued and
// processed asynchronously; poll GET /:id for the result.
func (h *AnalysisHandler) SubmitAnalysis(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.SubmitAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SubmitAnalysis(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"success": true, "data": result})
}

// ListAnalyses handles GET /api/v1/analyses.
func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	result, err := h.service.GetUserAnalyses(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetAnalysis handles GET /api/v1/analyses/:id.
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	analysisID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid analysis ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetAnalysis(c.Request.Context(), analysisID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
