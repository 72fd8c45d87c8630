package pipeline

import (
	"math"

	"github.com/velotrace/velotrace-backend-go/internal/config"
	"github.com/velotrace/velotrace-backend-go/internal/models"
	"github.com/velotrace/velotrace-backend-go/internal/spatial"
)

// SegmentSpeedEstimator scans a sorted point sequence and emits discrete
// motion segments with a wheel-derived speed estimate. The rotation
// counter, not raw sample cadence, delimits real motion: the scan holds a
// start cursor and advances an end cursor past every point whose counter
// has not moved.
type SegmentSpeedEstimator struct {
	cfg             config.PipelineConfig
	tripID          string
	wheelDiameterMM float64
	circumferenceM  float64
}

// NewSegmentSpeedEstimator creates an estimator for one trip. The wheel
// circumference is derived from the resolved diameter in millimeters.
func NewSegmentSpeedEstimator(cfg config.PipelineConfig, tripID string, wheelDiameterMM float64) *SegmentSpeedEstimator {
	return &SegmentSpeedEstimator{
		cfg:             cfg,
		tripID:          tripID,
		wheelDiameterMM: wheelDiameterMM,
		circumferenceM:  wheelDiameterMM / 1000 * math.Pi,
	}
}

// Estimate performs the single-pass scan. Invalid candidate segments
// (non-positive or excessive duration, excessive GPS jump, implausible
// speed, coordinate-identical endpoints) are discarded silently and the
// scan continues from the rejected end cursor.
func (e *SegmentSpeedEstimator) Estimate(points []models.Point) []models.SpeedSegment {
	var segments []models.SpeedSegment

	i := 0
	for i < len(points)-1 {
		start := points[i]

		// Find the next point where the rotation counter has changed,
		// skipping points with no wheel movement.
		j := i + 1
		for j < len(points) && points[j].RotationCount == start.RotationCount {
			j++
		}
		if j >= len(points) {
			break
		}
		end := points[j]

		// Prefer wall-clock duration when both timestamps parsed; device
		// clocks drift and transmission gaps exist, but the fixed-rate
		// fallback keeps files without reliable timestamps usable.
		var durationS float64
		if start.Time != nil && end.Time != nil {
			durationS = end.Time.Sub(*start.Time).Seconds()
		} else {
			durationS = float64(end.SampleIndex-start.SampleIndex) * e.cfg.SecondsPerSample()
		}

		if durationS <= 0 || durationS > e.cfg.MaxSegmentDurationS {
			i = j
			continue
		}

		// Speed from wheel rotations: two pulses per revolution.
		rotationDelta := end.RotationCount - start.RotationCount
		var speedKmh float64
		if rotationDelta > 0 {
			revolutions := float64(rotationDelta) / 2.0
			distanceM := revolutions * e.circumferenceM
			speedKmh = distanceM / durationS * 3.6
		}

		gpsDistance := spatial.HaversineDistance(start.Lat, start.Lon, end.Lat, end.Lon)
		if gpsDistance > e.cfg.MaxGPSJumpM {
			i = j
			continue
		}

		// Sensor noise on short intervals produces spurious spikes.
		if speedKmh > e.cfg.SpeedCapKmh {
			speedKmh = e.cfg.SpeedCapKmh
		}

		if (start.Lon != end.Lon || start.Lat != end.Lat) && speedKmh < e.cfg.MaxSpeedKmh {
			segments = append(segments, models.SpeedSegment{
				TripID:          e.tripID,
				StartLon:        start.Lon,
				StartLat:        start.Lat,
				EndLon:          end.Lon,
				EndLat:          end.Lat,
				SpeedKmh:        speedKmh,
				DurationS:       durationS,
				GPSDistanceM:    gpsDistance,
				RotationDelta:   rotationDelta,
				SampleDelta:     end.SampleIndex - start.SampleIndex,
				StartSample:     start.SampleIndex,
				EndSample:       end.SampleIndex,
				Marker:          start.Marker,
				ReportedSpeed:   start.ReportedSpeed,
				WheelDiameterMM: e.wheelDiameterMM,
			})
		}

		i = j
	}

	return segments
}
