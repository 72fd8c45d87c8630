package pipeline

import (
	"sort"

	"github.com/velotrace/velotrace-backend-go/internal/models"
)

// ExtractPoints converts the raw per-sample records of one trip into a
// cleaned sequence of points sorted by sample index. Samples with missing
// or zero coordinates are dropped silently; those are expected gaps in the
// device output, not errors. The sort is stable so that samples sharing an
// index (degenerate files collapse to index 0) keep their stream order.
func ExtractPoints(samples []models.RawSample) []models.Point {
	points := make([]models.Point, 0, len(samples))
	for _, s := range samples {
		if s.Lon == 0 || s.Lat == 0 {
			continue
		}
		points = append(points, models.Point(s))
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].SampleIndex < points[j].SampleIndex
	})

	return points
}
