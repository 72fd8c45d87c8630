package service

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/velotrace/velotrace-backend-go/internal/aggregate"
	"github.com/velotrace/velotrace-backend-go/internal/config"
	"github.com/velotrace/velotrace-backend-go/internal/geojson"
	"github.com/velotrace/velotrace-backend-go/internal/models"
	"github.com/velotrace/velotrace-backend-go/internal/repository"
)

// RouteService runs cross-trip aggregation over all stored segments and
// serves the resulting road model
type RouteService struct {
	cfg      *config.Config
	segments *repository.SegmentRepository
	routes   *repository.RouteRepository
}

// NewRouteService creates a new route service
func NewRouteService(cfg *config.Config, segments *repository.SegmentRepository, routes *repository.RouteRepository) *RouteService {
	return &RouteService{
		cfg:      cfg,
		segments: segments,
		routes:   routes,
	}
}

// Aggregate rebuilds the road model from every stored speed segment.
// Requires all per-trip outputs to be materialized first; this is a batch
// merge with no incremental mode.
func (s *RouteService) Aggregate() (*models.RouteSummary, error) {
	segments, err := s.segments.GetAll()
	if err != nil {
		return nil, err
	}

	aggregator := aggregate.New(s.cfg.Pipeline)
	routes, summary := aggregator.Aggregate(segments)
	summary.RunID = uuid.NewString()

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run summary: %w", err)
	}

	if err := s.routes.ReplaceRun(summary.RunID, routes, string(summaryJSON)); err != nil {
		return nil, err
	}

	// Mirror the model to disk for the downstream tile pipeline.
	fc := geojson.EncodeRoutes(routes)
	data, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode aggregated routes: %w", err)
	}
	path := filepath.Join(s.cfg.OutputDir, "aggregated_routes.geojson")
	if err := writeFileAtomic(path, data); err != nil {
		return nil, err
	}

	log.Printf("[RouteService] Run %s: %d aggregated segments written to %s",
		summary.RunID, summary.RetainedSegments, path)

	return &summary, nil
}

// Routes returns the current aggregated model
func (s *RouteService) Routes() ([]models.RouteSegment, error) {
	return s.routes.List()
}

// LatestSummary returns the report of the most recent aggregation run,
// or nil when none has happened yet
func (s *RouteService) LatestSummary() (*models.RouteSummary, error) {
	_, summaryJSON, err := s.routes.LatestSummary()
	if err != nil {
		return nil, err
	}
	if summaryJSON == "" {
		return nil, nil
	}

	var summary models.RouteSummary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to decode run summary: %w", err)
	}
	return &summary, nil
}
