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

// TrailHandler handles HTTP requests for trail discovery and the saved
// trail catalog.
type TrailHandler struct {
	service *application.TrailService
}

// NewTrailHandler creates a new TrailHandler.
func NewTrailHandler(service *application.TrailService) *TrailHandler {
	return &TrailHandler{service: service}
}

// RegisterRoutes registers all trail endpoints on the given router group.
func (h *TrailHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	trails := r.Group("/api/v1/trails")
	trails.Use(authMW)
	{
		trails.POST("/search", h.SearchTrails)
		trails.POST("", h.SaveTrail)
		trails.GET("", h.ListTrails)
		trails.GET("/:id", h.GetTrail)
	}
}

// SearchTrails handles POST /api/v1/trails/search.
func (h *TrailHandler) SearchTrails(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.TrailSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SearchTrails(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SaveTrail handles POST /api/v1/trails.
func (h *TrailHandler) SaveTrail(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.SaveTrailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SaveTrail(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListTrails handles GET /api/v1/trails. An optional "q" query filters by
// name.
func (h *TrailHandler) ListTrails(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListTrails(c.Request.Context(), c.Query("q"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetTrail handles GET /api/v1/trails/:id.
func (h *TrailHandler) GetTrail(c *gin.Context) {
	trailID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid trail ID")
		return
	}

	result, err := h.service.GetTrail(c.Request.Context(), trailID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
