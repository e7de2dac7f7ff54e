package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/swharr/TrailblazerAI-sub001/internal/application"
	"github.com/swharr/TrailblazerAI-sub001/internal/auth"
	"github.com/swharr/TrailblazerAI-sub001/internal/middleware"
	"github.com/swharr/TrailblazerAI-sub001/internal/response"
)

// AdminHandler handles admin HTTP requests for the route and analysis
// dashboards.
type AdminHandler struct {
	routes   *application.RouteService
	analyses *application.AnalysisService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(routes *application.RouteService, analyses *application.AnalysisService) *AdminHandler {
	return &AdminHandler{routes: routes, analyses: analyses}
}

// RegisterRoutes registers admin endpoints.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/routes", h.ListRoutes)
		admin.GET("/stats/routes", h.RouteStats)
		admin.GET("/stats/analyses", h.AnalysisStats)
	}
}

// ListRoutes handles GET /api/v1/admin/routes.
func (h *AdminHandler) ListRoutes(c *gin.Context) {
	page, limit := parsePagination(c)

	routes, total, err := h.routes.ListAllRoutes(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, routes, total, page, limit)
}

// RouteStats handles GET /api/v1/admin/stats/routes.
func (h *AdminHandler) RouteStats(c *gin.Context) {
	stats, err := h.routes.GetRouteStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// AnalysisStats handles GET /api/v1/admin/stats/analyses.
func (h *AdminHandler) AnalysisStats(c *gin.Context) {
	stats, err := h.analyses.GetAnalysisStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
