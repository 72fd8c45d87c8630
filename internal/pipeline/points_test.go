package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velotrace/velotrace-backend-go/internal/models"
)

func TestExtractPoints(t *testing.T) {
	t.Parallel()

	t.Run("drops samples with zero coordinates", func(t *testing.T) {
		t.Parallel()
		samples := []models.RawSample{
			{Lon: 13.4, Lat: 52.5, SampleIndex: 1},
			{Lon: 0, Lat: 52.5, SampleIndex: 2},
			{Lon: 13.4, Lat: 0, SampleIndex: 3},
			{Lon: 0, Lat: 0, SampleIndex: 4},
			{Lon: 13.5, Lat: 52.6, SampleIndex: 5},
		}

		points := ExtractPoints(samples)
		require.Len(t, points, 2)
		assert.Equal(t, int64(1), points[0].SampleIndex)
		assert.Equal(t, int64(5), points[1].SampleIndex)
	})

	t.Run("sorts by sample index", func(t *testing.T) {
		t.Parallel()
		samples := []models.RawSample{
			{Lon: 13.4, Lat: 52.5, SampleIndex: 300},
			{Lon: 13.4, Lat: 52.5, SampleIndex: 100},
			{Lon: 13.4, Lat: 52.5, SampleIndex: 200},
		}

		points := ExtractPoints(samples)
		require.Len(t, points, 3)
		assert.Equal(t, int64(100), points[0].SampleIndex)
		assert.Equal(t, int64(200), points[1].SampleIndex)
		assert.Equal(t, int64(300), points[2].SampleIndex)
	})

	t.Run("ties keep stream order", func(t *testing.T) {
		t.Parallel()
		// A degenerate file where every sample index defaulted to 0 must
		// keep its original order, not get silently reordered.
		samples := []models.RawSample{
			{Lon: 1, Lat: 1, RotationCount: 10},
			{Lon: 2, Lat: 2, RotationCount: 20},
			{Lon: 3, Lat: 3, RotationCount: 30},
		}

		points := ExtractPoints(samples)
		require.Len(t, points, 3)
		assert.Equal(t, int64(10), points[0].RotationCount)
		assert.Equal(t, int64(20), points[1].RotationCount)
		assert.Equal(t, int64(30), points[2].RotationCount)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, ExtractPoints(nil))
	})
}
