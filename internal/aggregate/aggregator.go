package aggregate

import (
	"fmt"
	"log"
	"sort"

	"github.com/velotrace/velotrace-backend-go/internal/config"
	"github.com/velotrace/velotrace-backend-go/internal/models"
	"github.com/velotrace/velotrace-backend-go/internal/stats"
)

// Aggregator merges the speed segments of many trips onto a canonical,
// direction-independent road-segment grid. A batch, non-streaming merge:
// every aggregation run rebuilds the model from the full segment set.
type Aggregator struct {
	precision  int // decimal degrees for key rounding
	minSamples int // buckets below this are dropped
}

// New creates an aggregator with the configured grouping precision
func New(cfg config.PipelineConfig) *Aggregator {
	return &Aggregator{
		precision:  cfg.RoundPrecision,
		minSamples: cfg.MinBucketSamples,
	}
}

type bucket struct {
	speeds []float64
	// first-seen unrounded geometry, the representative to emit
	startLon, startLat float64
	endLon, endLat     float64
}

// Key returns the canonical bucket key for a segment: both endpoints
// rounded independently to the configured precision, then ordered so that
// traversal direction does not change the key.
func (a *Aggregator) Key(startLon, startLat, endLon, endLat float64) string {
	s := fmt.Sprintf("%.*f,%.*f", a.precision, startLon, a.precision, startLat)
	e := fmt.Sprintf("%.*f,%.*f", a.precision, endLon, a.precision, endLat)
	if s > e {
		s, e = e, s
	}
	return s + "|" + e
}

// Aggregate buckets segments into canonical road segments and computes
// per-bucket speed statistics. Zero-speed segments (vehicle stopped) carry
// no speed signal and are excluded before bucketing; buckets with fewer
// than the minimum samples are dropped as too unreliable for a shared
// road claim. Output order and statistics are independent of input order:
// buckets are emitted sorted by key and per-bucket speeds are sorted
// before accumulation.
func (a *Aggregator) Aggregate(segments []models.SpeedSegment) ([]models.RouteSegment, models.RouteSummary) {
	buckets := make(map[string]*bucket)
	consumed := 0

	for _, s := range segments {
		if s.SpeedKmh == 0 {
			continue
		}

		key := a.Key(s.StartLon, s.StartLat, s.EndLon, s.EndLat)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				startLon: s.StartLon, startLat: s.StartLat,
				endLon: s.EndLon, endLat: s.EndLat,
			}
			buckets[key] = b
		}
		b.speeds = append(b.speeds, s.SpeedKmh)
		consumed++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	routes := make([]models.RouteSegment, 0, len(buckets))
	for _, key := range keys {
		b := buckets[key]
		if len(b.speeds) < a.minSamples {
			continue
		}

		sort.Float64s(b.speeds)
		routes = append(routes, models.RouteSegment{
			Key:           key,
			StartLon:      b.startLon,
			StartLat:      b.startLat,
			EndLon:        b.endLon,
			EndLat:        b.endLat,
			AvgSpeed:      stats.Mean(b.speeds),
			MinSpeed:      b.speeds[0],
			MaxSpeed:      b.speeds[len(b.speeds)-1],
			MedianSpeed:   stats.Median(b.speeds),
			SpeedVariance: b.speeds[len(b.speeds)-1] - b.speeds[0],
			SampleCount:   len(b.speeds),
		})
	}

	summary := a.summarize(routes, consumed, len(buckets))
	log.Printf("[Aggregator] %d segments into %d buckets, %d retained", consumed, len(buckets), len(routes))

	return routes, summary
}

// summarize produces the per-run observability report: global speed
// range and average over retained buckets, plus well-sampled bucket counts
func (a *Aggregator) summarize(routes []models.RouteSegment, consumed, unique int) models.RouteSummary {
	summary := models.RouteSummary{
		SegmentsIn:       consumed,
		UniqueSegments:   unique,
		RetainedSegments: len(routes),
	}

	if len(routes) == 0 {
		return summary
	}

	avgSpeeds := make([]float64, len(routes))
	for i, r := range routes {
		avgSpeeds[i] = r.AvgSpeed
		if r.SampleCount >= 5 {
			summary.BucketsWith5++
		}
		if r.SampleCount >= 10 {
			summary.BucketsWith10++
		}
	}

	summary.MinAvgSpeed = stats.Min(avgSpeeds)
	summary.MaxAvgSpeed = stats.Max(avgSpeeds)
	summary.OverallAvgSpeed = stats.Mean(avgSpeeds)

	return summary
}
