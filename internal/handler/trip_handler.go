package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velotrace/velotrace-backend-go/internal/geojson"
	"github.com/velotrace/velotrace-backend-go/internal/models"
	"github.com/velotrace/velotrace-backend-go/internal/service"
	"github.com/velotrace/velotrace-backend-go/pkg/response"
)

// TripHandler handles HTTP requests for trip processing
type TripHandler struct {
	service *service.TripService
}

// NewTripHandler creates a new trip handler
func NewTripHandler(service *service.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// ProcessTrip handles POST /api/v1/trips/:id/process with a raw trip
// FeatureCollection as the request body
func (h *TripHandler) ProcessTrip(c *gin.Context) {
	tripID := c.Param("id")
	if tripID == "" {
		response.BadRequest(c, "Missing trip id")
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "Failed to read request body")
		return
	}

	result := h.service.ProcessTrip(tripID, raw)
	if result.Status == models.TripStatusFailed {
		response.Error(c, http.StatusUnprocessableEntity, result.Err.Error())
		return
	}

	response.Success(c, result)
}

// ImportTrips handles POST /api/v1/trips/import, processing every raw
// trip file under the configured input directory
func (h *TripHandler) ImportTrips(c *gin.Context) {
	summary, err := h.service.ImportAll(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to import trips")
		return
	}

	response.Success(c, summary)
}

// ListTrips handles GET /api/v1/trips
func (h *TripHandler) ListTrips(c *gin.Context) {
	trips, err := h.service.ListTrips()
	if err != nil {
		response.InternalError(c, "Failed to list trips")
		return
	}

	response.Success(c, gin.H{
		"data":  trips,
		"total": len(trips),
	})
}

// GetTripSegments handles GET /api/v1/trips/:id/segments, returning the
// trip's quality-annotated segments as a GeoJSON FeatureCollection
func (h *TripHandler) GetTripSegments(c *gin.Context) {
	tripID := c.Param("id")

	segments, err := h.service.GetTripSegments(tripID)
	if err != nil {
		response.InternalError(c, "Failed to load segments")
		return
	}
	if len(segments) == 0 {
		response.NotFound(c, "No segments for trip "+tripID)
		return
	}

	c.JSON(http.StatusOK, geojson.EncodeSegments(segments))
}
