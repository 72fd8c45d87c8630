package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/velotrace/velotrace-backend-go/internal/config"
	"github.com/velotrace/velotrace-backend-go/internal/geojson"
	"github.com/velotrace/velotrace-backend-go/internal/metadata"
	"github.com/velotrace/velotrace-backend-go/internal/models"
	"github.com/velotrace/velotrace-backend-go/internal/pipeline"
	"github.com/velotrace/velotrace-backend-go/internal/repository"
	"github.com/velotrace/velotrace-backend-go/internal/stats"
)

// TripService orchestrates per-trip processing: decode, wheel resolution,
// the pipeline itself, persistence and the per-trip output file
type TripService struct {
	cfg       *config.Config
	trips     *repository.TripRepository
	segments  *repository.SegmentRepository
	metaStore *metadata.Store
}

// NewTripService creates a new trip service. Creating the output directory
// is the one hard-stop condition: without it no trip can produce output.
func NewTripService(cfg *config.Config, trips *repository.TripRepository, segments *repository.SegmentRepository, metaStore *metadata.Store) (*TripService, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}
	return &TripService{
		cfg:       cfg,
		trips:     trips,
		segments:  segments,
		metaStore: metaStore,
	}, nil
}

// ProcessTrip runs one trip through the pipeline and persists the outcome.
// The returned result is always meaningful; Err is set only for failures
// that were recorded, never for skipped or empty trips.
func (s *TripService) ProcessTrip(tripID string, raw []byte) models.TripResult {
	serial, tripName := splitTripID(tripID)

	if s.cfg.Pipeline.ShouldSkip(serial, tripName) {
		log.Printf("[TripService] Skipping %s (on skip list)", tripID)
		return s.record(tripID, models.TripResult{TripID: tripID, Status: models.TripStatusSkipped})
	}

	samples, fileMeta, err := geojson.DecodeTrip(raw)
	if err != nil {
		log.Printf("[TripService] %s: %v", tripID, err)
		return s.record(tripID, models.TripResult{
			TripID: tripID,
			Status: models.TripStatusFailed,
			Err:    err,
		})
	}

	fileMeta = metadata.Normalize(fileMeta)
	savedMeta, err := s.metaStore.Get(tripID)
	if err != nil {
		// Metadata store trouble only degrades wheel resolution.
		log.Printf("[TripService] %s: metadata store unavailable: %v", tripID, err)
		savedMeta = map[string]interface{}{}
	}

	wheelMM, wheelSource := metadata.ResolveWheelDiameter(fileMeta, savedMeta, s.cfg.Pipeline.DefaultWheelDiameterMM)
	if wheelSource == models.WheelSourceDefault {
		log.Printf("[TripService] %s: wheel diameter not found, using default %.0fmm", tripID, wheelMM)
	}

	segments := pipeline.Process(s.cfg.Pipeline, pipeline.TripInput{
		TripID:          tripID,
		WheelDiameterMM: wheelMM,
		Samples:         samples,
	})

	result := models.TripResult{
		TripID:          tripID,
		PointCount:      len(samples),
		WheelDiameterMM: wheelMM,
		WheelSource:     wheelSource,
	}

	if len(segments) == 0 {
		// No motion detected; the trip yields no output file or segments.
		result.Status = models.TripStatusEmpty
		return s.record(tripID, result)
	}

	result.SegmentCount = len(segments)
	result.QualityCounts = pipeline.QualityCounts(segments)

	if err := s.persist(tripID, segments); err != nil {
		result.Status = models.TripStatusFailed
		result.Err = err
		return s.record(tripID, result)
	}

	if len(fileMeta) > 0 {
		if err := s.metaStore.Save(tripID, fileMeta); err != nil {
			log.Printf("[TripService] %s: failed to save metadata: %v", tripID, err)
		}
	}

	result.Status = models.TripStatusProcessed
	log.Printf("[TripService] %s: %d segments from %d points (wheel %.1fmm from %s)",
		tripID, len(segments), len(samples), wheelMM, wheelSource)
	return s.record(tripID, result)
}

// persist stores the segments and writes the per-trip output file. Either
// both land in full or the trip is reported failed.
func (s *TripService) persist(tripID string, segments []models.SpeedSegment) error {
	if err := s.segments.ReplaceForTrip(tripID, segments); err != nil {
		return err
	}

	fc := geojson.EncodeSegments(segments)
	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("failed to encode output for %s: %w", tripID, err)
	}

	path := filepath.Join(s.cfg.OutputDir, tripID+"_processed.geojson")
	return writeFileAtomic(path, data)
}

// record persists the trip row and returns the result unchanged
func (s *TripService) record(tripID string, result models.TripResult) models.TripResult {
	serial, tripName := splitTripID(tripID)

	errMsg := ""
	if result.Err != nil {
		errMsg = result.Err.Error()
	}

	trip := &models.Trip{
		TripID:          tripID,
		SensorID:        serial,
		TripName:        tripName,
		WheelDiameterMM: result.WheelDiameterMM,
		WheelSource:     result.WheelSource,
		PointCount:      result.PointCount,
		SegmentCount:    result.SegmentCount,
		Status:          result.Status,
		ErrorMessage:    errMsg,
	}
	if err := s.trips.Upsert(trip); err != nil {
		log.Printf("[TripService] %s: failed to record trip: %v", tripID, err)
	}

	return result
}

// ImportAll processes every raw trip file under the input directory with a
// fixed-size worker pool. A malformed file is reported in its result and
// the run continues; there is no globally fatal condition here.
func (s *TripService) ImportAll(ctx context.Context) (*models.RunSummary, error) {
	pattern := filepath.Join(s.cfg.InputDir, "*", "*.geojson")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	jobs := make([]pipeline.Job, 0, len(files))
	for _, file := range files {
		file := file
		tripID := tripIDFromFilename(file)
		jobs = append(jobs, func() models.TripResult {
			raw, err := os.ReadFile(file)
			if err != nil {
				return s.record(tripID, models.TripResult{
					TripID: tripID,
					Status: models.TripStatusFailed,
					Err:    fmt.Errorf("failed to read %s: %w", file, err),
				})
			}
			return s.ProcessTrip(tripID, raw)
		})
	}

	results := pipeline.RunJobs(ctx, s.cfg.Workers, jobs)

	summary := &models.RunSummary{
		TotalFiles: len(files),
		Results:    results,
	}
	quality := make(map[int]int)
	var speeds []float64
	for _, r := range results {
		switch r.Status {
		case models.TripStatusProcessed:
			summary.Processed++
			summary.TotalSegments += r.SegmentCount
			for level, n := range r.QualityCounts {
				quality[level] += n
			}
			segments, err := s.segments.GetByTrip(r.TripID)
			if err != nil {
				log.Printf("[TripService] %s: failed to load segments for run summary: %v", r.TripID, err)
				continue
			}
			for _, seg := range segments {
				if seg.SpeedKmh > 0 {
					speeds = append(speeds, seg.SpeedKmh)
				}
			}
		case models.TripStatusSkipped:
			summary.Skipped++
		case models.TripStatusEmpty:
			summary.Empty++
		case models.TripStatusFailed:
			summary.Failed++
		}
	}

	if len(quality) > 0 {
		summary.QualityDistribution = quality
	}
	if len(speeds) > 0 {
		summary.MinSpeedKmh = stats.Min(speeds)
		summary.MaxSpeedKmh = stats.Max(speeds)
		summary.AvgSpeedKmh = stats.Mean(speeds)
		summary.MedianSpeedKmh = stats.Median(speeds)
	}

	log.Printf("[TripService] Import complete: %d files, %d processed, %d skipped, %d empty, %d failed, %d segments",
		summary.TotalFiles, summary.Processed, summary.Skipped, summary.Empty, summary.Failed, summary.TotalSegments)
	for level := models.QualityPerfect; level <= models.QualityNoRoad; level++ {
		if n := quality[level]; n > 0 {
			log.Printf("[TripService]   %s: %d segments", models.QualityLabels[level], n)
		}
	}

	return summary, nil
}

// ListTrips returns all trip processing records
func (s *TripService) ListTrips() ([]models.Trip, error) {
	return s.trips.List()
}

// GetTripSegments returns one trip's stored segments
func (s *TripService) GetTripSegments(tripID string) ([]models.SpeedSegment, error) {
	return s.segments.GetByTrip(tripID)
}

// splitTripID splits "{serial}_{trip}" into its parts. An id without an
// underscore is treated as both serial and trip name.
func splitTripID(tripID string) (string, string) {
	parts := strings.SplitN(tripID, "_", 2)
	if len(parts) < 2 {
		return tripID, tripID
	}
	return parts[0], parts[1]
}

// tripIDFromFilename derives the trip id from a raw file path, dropping
// the extension and the historical "_clean" suffix
func tripIDFromFilename(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.TrimSuffix(stem, "_clean")
}

// writeFileAtomic writes via a temp file and rename so the destination
// exists in full or not at all, even on a failure mid-write
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
