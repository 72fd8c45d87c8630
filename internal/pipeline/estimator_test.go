package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velotrace/velotrace-backend-go/internal/config"
	"github.com/velotrace/velotrace-backend-go/internal/models"
)

var baseClock = time.Date(0, 1, 1, 10, 0, 0, 0, time.UTC)

func at(offset time.Duration) *time.Time {
	t := baseClock.Add(offset)
	return &t
}

// point builds a test point; coordinates are offset a few meters per
// sample so endpoints differ without tripping the GPS jump bound.
func point(sample, rotation int64, clock *time.Time) models.Point {
	return models.Point{
		Lon:           13.40000 + float64(sample)*0.00001,
		Lat:           52.50000,
		SampleIndex:   sample,
		RotationCount: rotation,
		Time:          clock,
	}
}

func TestSegmentSpeedEstimator(t *testing.T) {
	t.Parallel()
	cfg := config.DefaultPipeline()

	t.Run("speed formula determinism", func(t *testing.T) {
		t.Parallel()
		// 4 pulses = 2 revolutions; 660.4mm wheel gives ~2.074m
		// circumference, so ~4.15m in 1s is ~14.93 km/h.
		est := NewSegmentSpeedEstimator(cfg, "T1", 660.4)
		segments := est.Estimate([]models.Point{
			point(0, 100, at(0)),
			point(50, 104, at(time.Second)),
		})

		require.Len(t, segments, 1)
		assert.InDelta(t, 14.93, segments[0].SpeedKmh, 0.02)
		assert.Equal(t, int64(4), segments[0].RotationDelta)
		assert.Equal(t, int64(50), segments[0].SampleDelta)
		assert.InDelta(t, 1.0, segments[0].DurationS, 1e-9)
	})

	t.Run("default wheel yields proportionally higher speed", func(t *testing.T) {
		t.Parallel()
		est := NewSegmentSpeedEstimator(cfg, "T1", 711)
		segments := est.Estimate([]models.Point{
			point(0, 100, at(0)),
			point(50, 104, at(time.Second)),
		})

		require.Len(t, segments, 1)
		assert.InDelta(t, 16.08, segments[0].SpeedKmh, 0.01)
	})

	t.Run("caps raw speed above 40 to exactly 40", func(t *testing.T) {
		t.Parallel()
		// 20 pulses in 1s on a 711mm wheel is ~80 km/h raw; the segment
		// survives capped at 40.0 rather than being discarded.
		est := NewSegmentSpeedEstimator(cfg, "T1", 711)
		segments := est.Estimate([]models.Point{
			point(0, 100, at(0)),
			point(50, 120, at(time.Second)),
		})

		require.Len(t, segments, 1)
		assert.Equal(t, 40.0, segments[0].SpeedKmh)
	})

	t.Run("prefers wall clock over sample cadence", func(t *testing.T) {
		t.Parallel()
		// 50 samples is 1s at 50Hz, but the timestamps say 2s; a
		// transmission gap must not double the speed.
		est := NewSegmentSpeedEstimator(cfg, "T1", 711)
		segments := est.Estimate([]models.Point{
			point(0, 100, at(0)),
			point(50, 104, at(2*time.Second)),
		})

		require.Len(t, segments, 1)
		assert.InDelta(t, 2.0, segments[0].DurationS, 1e-9)
	})

	t.Run("falls back to sample rate without timestamps", func(t *testing.T) {
		t.Parallel()
		est := NewSegmentSpeedEstimator(cfg, "T1", 711)
		segments := est.Estimate([]models.Point{
			point(0, 100, nil),
			point(100, 104, nil),
		})

		require.Len(t, segments, 1)
		assert.InDelta(t, 2.0, segments[0].DurationS, 1e-9) // 100 samples at 50Hz
	})

	t.Run("rejects non-positive duration", func(t *testing.T) {
		t.Parallel()
		est := NewSegmentSpeedEstimator(cfg, "T1", 711)
		segments := est.Estimate([]models.Point{
			point(0, 100, at(time.Second)),
			point(50, 104, at(0)), // clock runs backwards
		})

		assert.Empty(t, segments)
	})

	t.Run("rejects duration above 600s", func(t *testing.T) {
		t.Parallel()
		est := NewSegmentSpeedEstimator(cfg, "T1", 711)
		segments := est.Estimate([]models.Point{
			point(0, 100, at(0)),
			point(50, 104, at(601*time.Second)),
		})

		assert.Empty(t, segments)
	})

	t.Run("rejects GPS jumps above 1000m", func(t *testing.T) {
		t.Parallel()
		est := NewSegmentSpeedEstimator(cfg, "T1", 711)
		far := point(50, 104, at(time.Second))
		far.Lon += 1.0 // ~68km east at this latitude
		segments := est.Estimate([]models.Point{
			point(0, 100, at(0)),
			far,
		})

		assert.Empty(t, segments)
	})

	t.Run("discards coordinate-identical endpoints", func(t *testing.T) {
		t.Parallel()
		est := NewSegmentSpeedEstimator(cfg, "T1", 711)
		a := point(0, 100, at(0))
		b := point(50, 104, at(time.Second))
		b.Lon, b.Lat = a.Lon, a.Lat
		segments := est.Estimate([]models.Point{a, b})

		assert.Empty(t, segments)
	})

	t.Run("no rotation change means no motion", func(t *testing.T) {
		t.Parallel()
		est := NewSegmentSpeedEstimator(cfg, "T1", 711)
		segments := est.Estimate([]models.Point{
			point(0, 100, at(0)),
			point(50, 100, at(time.Second)),
			point(100, 100, at(2*time.Second)),
		})

		assert.Empty(t, segments)
	})

	t.Run("counter reset yields a zero-speed segment", func(t *testing.T) {
		t.Parallel()
		est := NewSegmentSpeedEstimator(cfg, "T1", 711)
		segments := est.Estimate([]models.Point{
			point(0, 100, at(0)),
			point(50, 3, at(time.Second)), // sensor rebooted mid-trip
		})

		require.Len(t, segments, 1)
		assert.Equal(t, 0.0, segments[0].SpeedKmh)
	})

	t.Run("skips stationary points between segments", func(t *testing.T) {
		t.Parallel()
		est := NewSegmentSpeedEstimator(cfg, "T1", 711)
		segments := est.Estimate([]models.Point{
			point(0, 100, at(0)),
			point(50, 100, at(time.Second)),
			point(100, 100, at(2*time.Second)),
			point(150, 102, at(3*time.Second)),
			point(200, 104, at(4*time.Second)),
		})

		require.Len(t, segments, 2)
		assert.Equal(t, int64(0), segments[0].StartSample)
		assert.Equal(t, int64(150), segments[0].EndSample)
		assert.Equal(t, int64(150), segments[1].StartSample)
		assert.Equal(t, int64(200), segments[1].EndSample)
	})

	t.Run("never emits out-of-bounds segments", func(t *testing.T) {
		t.Parallel()
		est := NewSegmentSpeedEstimator(cfg, "T1", 711)

		// A mixed bag of valid and invalid candidates.
		points := []models.Point{
			point(0, 100, at(0)),
			point(50, 110, at(time.Second)),
			point(100, 110, at(700*time.Second)),
			point(150, 130, at(701*time.Second)),
			point(200, 131, at(702*time.Second)),
		}

		for _, s := range est.Estimate(points) {
			assert.Greater(t, s.DurationS, 0.0)
			assert.LessOrEqual(t, s.DurationS, 600.0)
			assert.LessOrEqual(t, s.GPSDistanceM, 1000.0)
			assert.Less(t, s.SpeedKmh, 100.0)
		}
	})
}
