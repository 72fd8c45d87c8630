package geojson

import (
	"github.com/paulmach/orb"
	orbjson "github.com/paulmach/orb/geojson"

	"github.com/velotrace/velotrace-backend-go/internal/models"
	"github.com/velotrace/velotrace-backend-go/internal/stats"
)

// EncodeSegments builds the per-trip output FeatureCollection: one
// two-point LineString per speed segment with the fixed property schema.
// Numeric fields are rounded to their documented decimal places.
func EncodeSegments(segments []models.SpeedSegment) *orbjson.FeatureCollection {
	fc := orbjson.NewFeatureCollection()

	for _, s := range segments {
		f := orbjson.NewFeature(orb.LineString{
			{s.StartLon, s.StartLat},
			{s.EndLon, s.EndLat},
		})

		f.Properties = orbjson.Properties{
			"Speed":             stats.Round(s.SpeedKmh, 1),
			"marker":            s.Marker,
			"trip_id":           s.TripID,
			"hrot_diff":         s.RotationDelta,
			"sample_diff":       s.SampleDelta,
			"time_diff_s":       stats.Round(s.DurationS, 3),
			"gps_distance_m":    stats.Round(s.GPSDistanceM, 1),
			"wheel_diameter_mm": s.WheelDiameterMM,
		}
		if s.RoadQuality > models.QualityUnknown {
			f.Properties["road_quality"] = s.RoadQuality
		}
		if s.ReportedSpeed != nil {
			f.Properties["original_speed"] = *s.ReportedSpeed
		}

		fc.Append(f)
	}

	return fc
}

// EncodeRoutes builds the aggregated road-model FeatureCollection
func EncodeRoutes(routes []models.RouteSegment) *orbjson.FeatureCollection {
	fc := orbjson.NewFeatureCollection()

	for _, r := range routes {
		f := orbjson.NewFeature(orb.LineString{
			{r.StartLon, r.StartLat},
			{r.EndLon, r.EndLat},
		})

		f.Properties = orbjson.Properties{
			"avg_speed":      stats.Round(r.AvgSpeed, 1),
			"min_speed":      stats.Round(r.MinSpeed, 1),
			"max_speed":      stats.Round(r.MaxSpeed, 1),
			"median_speed":   stats.Round(r.MedianSpeed, 1),
			"sample_count":   r.SampleCount,
			"speed_variance": stats.Round(r.SpeedVariance, 1),
		}

		fc.Append(f)
	}

	return fc
}
