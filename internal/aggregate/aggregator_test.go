package aggregate

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velotrace/velotrace-backend-go/internal/config"
	"github.com/velotrace/velotrace-backend-go/internal/models"
)

func seg(startLon, startLat, endLon, endLat, speed float64) models.SpeedSegment {
	return models.SpeedSegment{
		StartLon: startLon, StartLat: startLat,
		EndLon: endLon, EndLat: endLat,
		SpeedKmh: speed,
	}
}

func TestAggregatorKey(t *testing.T) {
	t.Parallel()
	a := New(config.DefaultPipeline())

	t.Run("direction independent", func(t *testing.T) {
		t.Parallel()
		forward := a.Key(1.00001, 2.00001, 1.00009, 2.00009)
		reverse := a.Key(1.00009, 2.00009, 1.00001, 2.00001)
		assert.Equal(t, forward, reverse)
	})

	t.Run("jitter within the rounding cell shares a key", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t,
			a.Key(1.00001, 2.00001, 1.00101, 2.00101),
			a.Key(1.00004, 2.00004, 1.00104, 2.00104),
		)
	})

	t.Run("distinct cells get distinct keys", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t,
			a.Key(1.0000, 2.0000, 1.0010, 2.0010),
			a.Key(1.0000, 2.0000, 1.0020, 2.0020),
		)
	})
}

func TestAggregate(t *testing.T) {
	t.Parallel()
	a := New(config.DefaultPipeline())

	t.Run("merges both travel directions into one bucket", func(t *testing.T) {
		t.Parallel()
		routes, summary := a.Aggregate([]models.SpeedSegment{
			seg(1.00001, 2.00001, 1.00009, 2.00009, 10),
			seg(1.00009, 2.00009, 1.00001, 2.00001, 20),
		})

		require.Len(t, routes, 1)
		assert.Equal(t, 2, routes[0].SampleCount)
		assert.Equal(t, 1, summary.UniqueSegments)
	})

	t.Run("drops single-sample buckets, keeps two-sample buckets", func(t *testing.T) {
		t.Parallel()
		routes, summary := a.Aggregate([]models.SpeedSegment{
			seg(1.0, 2.0, 1.001, 2.001, 10),
			seg(1.0, 2.0, 1.001, 2.001, 12),
			seg(5.0, 6.0, 5.001, 6.001, 15), // lone observation
		})

		require.Len(t, routes, 1)
		assert.Equal(t, 2, routes[0].SampleCount)
		assert.Equal(t, 2, summary.UniqueSegments)
		assert.Equal(t, 1, summary.RetainedSegments)
	})

	t.Run("excludes stopped segments before bucketing", func(t *testing.T) {
		t.Parallel()
		routes, summary := a.Aggregate([]models.SpeedSegment{
			seg(1.0, 2.0, 1.001, 2.001, 0),
			seg(1.0, 2.0, 1.001, 2.001, 0),
			seg(1.0, 2.0, 1.001, 2.001, 18),
		})

		assert.Empty(t, routes) // one real sample left, below retention
		assert.Equal(t, 1, summary.SegmentsIn)
	})

	t.Run("per-bucket statistics", func(t *testing.T) {
		t.Parallel()
		routes, _ := a.Aggregate([]models.SpeedSegment{
			seg(1.0, 2.0, 1.001, 2.001, 10),
			seg(1.0, 2.0, 1.001, 2.001, 30),
			seg(1.0, 2.0, 1.001, 2.001, 20),
			seg(1.0, 2.0, 1.001, 2.001, 16),
		})

		require.Len(t, routes, 1)
		r := routes[0]
		assert.InDelta(t, 19.0, r.AvgSpeed, 1e-9)
		assert.Equal(t, 10.0, r.MinSpeed)
		assert.Equal(t, 30.0, r.MaxSpeed)
		assert.Equal(t, 20.0, r.MedianSpeed) // sorted[4/2] of 10,16,20,30
		assert.Equal(t, 20.0, r.SpeedVariance)
		assert.Equal(t, 4, r.SampleCount)
	})

	t.Run("keeps the first-seen geometry as representative", func(t *testing.T) {
		t.Parallel()
		routes, _ := a.Aggregate([]models.SpeedSegment{
			seg(1.00001, 2.00001, 1.00101, 2.00101, 10),
			seg(1.00004, 2.00004, 1.00104, 2.00104, 20),
		})

		require.Len(t, routes, 1)
		assert.Equal(t, 1.00001, routes[0].StartLon)
		assert.Equal(t, 2.00001, routes[0].StartLat)
	})

	t.Run("summary counts well-sampled buckets", func(t *testing.T) {
		t.Parallel()
		var segments []models.SpeedSegment
		for i := 0; i < 10; i++ {
			segments = append(segments, seg(1.0, 2.0, 1.001, 2.001, 10+float64(i)))
		}
		for i := 0; i < 5; i++ {
			segments = append(segments, seg(3.0, 4.0, 3.001, 4.001, 20+float64(i)))
		}
		segments = append(segments,
			seg(5.0, 6.0, 5.001, 6.001, 30),
			seg(5.0, 6.0, 5.001, 6.001, 34),
		)

		_, summary := a.Aggregate(segments)
		assert.Equal(t, 3, summary.RetainedSegments)
		assert.Equal(t, 2, summary.BucketsWith5)
		assert.Equal(t, 1, summary.BucketsWith10)
		assert.Greater(t, summary.MaxAvgSpeed, summary.MinAvgSpeed)
	})

	t.Run("idempotent and input-order independent", func(t *testing.T) {
		t.Parallel()
		var segments []models.SpeedSegment
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 200; i++ {
			lon := 1.0 + float64(i%10)*0.001
			segments = append(segments, seg(lon, 2.0, lon+0.001, 2.001, 5+rng.Float64()*30))
		}

		first, _ := a.Aggregate(segments)

		shuffled := make([]models.SpeedSegment, len(segments))
		copy(shuffled, segments)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		second, _ := a.Aggregate(shuffled)

		// Representative geometry depends on first-seen order, so compare
		// everything else.
		ignoreGeometry := cmp.FilterPath(func(p cmp.Path) bool {
			switch p.Last().String() {
			case ".StartLon", ".StartLat", ".EndLon", ".EndLat":
				return true
			}
			return false
		}, cmp.Ignore())

		if diff := cmp.Diff(first, second, ignoreGeometry); diff != "" {
			t.Errorf("aggregation differs under input reordering (-first +second):\n%s", diff)
		}
	})
}
