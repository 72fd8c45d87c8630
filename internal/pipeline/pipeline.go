package pipeline

import (
	"log"

	"github.com/velotrace/velotrace-backend-go/internal/config"
	"github.com/velotrace/velotrace-backend-go/internal/models"
)

// TripInput is everything the per-trip pipeline needs: the decoded raw
// samples and the externally resolved wheel diameter.
type TripInput struct {
	TripID          string
	WheelDiameterMM float64
	Samples         []models.RawSample
}

// Process runs one trip through the full pipeline: point extraction,
// segment speed estimation, road quality scoring and the temporal mapping
// of window scores back onto segments. A pure transformation over
// immutable inputs; all I/O stays with the caller.
//
// Returns nil when the trip contains no usable motion. That is a normal
// outcome (counted as empty), not an error.
func Process(cfg config.PipelineConfig, in TripInput) []models.SpeedSegment {
	points := ExtractPoints(in.Samples)
	if len(points) < 2 {
		return nil
	}

	estimator := NewSegmentSpeedEstimator(cfg, in.TripID, in.WheelDiameterMM)
	segments := estimator.Estimate(points)
	if len(segments) == 0 {
		return nil
	}

	// Quality scoring uses the acceleration channel in stream order,
	// aligned one-to-one with the trip's sample indices.
	accY := make([]float64, len(in.Samples))
	for i, s := range in.Samples {
		accY[i] = s.AccY
	}

	windows := ScoreRoadQuality(cfg, accY)
	if windows == nil {
		log.Printf("[Pipeline] %s: not enough acceleration data for road quality (%d samples)", in.TripID, len(accY))
	}
	MapQuality(segments, windows)

	return segments
}

// QualityCounts tallies segments per road quality level, skipping unknown
func QualityCounts(segments []models.SpeedSegment) map[int]int {
	counts := make(map[int]int)
	for _, s := range segments {
		if s.RoadQuality > models.QualityUnknown {
			counts[s.RoadQuality]++
		}
	}
	return counts
}
