package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velotrace/velotrace-backend-go/internal/geojson"
	"github.com/velotrace/velotrace-backend-go/internal/service"
	"github.com/velotrace/velotrace-backend-go/pkg/response"
)

// RouteHandler handles HTTP requests for the aggregated road model
type RouteHandler struct {
	service *service.RouteService
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(service *service.RouteService) *RouteHandler {
	return &RouteHandler{service: service}
}

// Aggregate handles POST /api/v1/routes/aggregate, rebuilding the road
// model from all stored segments
func (h *RouteHandler) Aggregate(c *gin.Context) {
	summary, err := h.service.Aggregate()
	if err != nil {
		response.InternalError(c, "Failed to aggregate routes")
		return
	}

	response.Success(c, summary)
}

// GetRoutes handles GET /api/v1/routes, returning the aggregated model
// as a GeoJSON FeatureCollection
func (h *RouteHandler) GetRoutes(c *gin.Context) {
	routes, err := h.service.Routes()
	if err != nil {
		response.InternalError(c, "Failed to load routes")
		return
	}

	c.JSON(http.StatusOK, geojson.EncodeRoutes(routes))
}

// GetSummary handles GET /api/v1/routes/summary
func (h *RouteHandler) GetSummary(c *gin.Context) {
	summary, err := h.service.LatestSummary()
	if err != nil {
		response.InternalError(c, "Failed to load summary")
		return
	}
	if summary == nil {
		response.NotFound(c, "No aggregation run yet")
		return
	}

	response.Success(c, summary)
}
