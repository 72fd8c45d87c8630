package pipeline

import (
	"sort"

	"github.com/velotrace/velotrace-backend-go/internal/config"
	"github.com/velotrace/velotrace-backend-go/internal/models"
	"github.com/velotrace/velotrace-backend-go/internal/stats"
)

// ScoreRoadQuality slides a fixed-size, overlapping window across the
// vertical-acceleration channel and scores each window on the 1..5 ordinal
// scale. The metric is the sample standard deviation of acceleration
// within the window: a rougher surface produces higher-amplitude vertical
// jolts. Windows overlap to smooth transitions without discarding data at
// window boundaries.
//
// Returns nil when there are too few samples to score meaningfully; the
// caller degrades to unknown quality rather than fabricating scores.
func ScoreRoadQuality(cfg config.PipelineConfig, accY []float64) []models.QualityWindow {
	if len(accY) < cfg.QualityMinSamples {
		return nil
	}

	windowSize := cfg.QualityWindowSize
	if windowSize <= 0 || windowSize > len(accY) {
		return nil
	}

	overlap := cfg.QualityOverlap
	if overlap < 0 || overlap >= 1 {
		overlap = 0
	}
	stride := int(float64(windowSize) * (1 - overlap))
	if stride < 1 {
		stride = 1
	}

	var windows []models.QualityWindow
	for start := 0; start+windowSize <= len(accY); start += stride {
		roughness := stats.StdDev(accY[start : start+windowSize])
		windows = append(windows, models.QualityWindow{
			SampleIndex: int64(start + windowSize/2),
			Level:       qualityLevel(roughness, cfg.QualityThresholds),
		})
	}

	return windows
}

// qualityLevel maps a roughness value onto the ordinal scale using the
// ascending threshold table: below thresholds[0] is level 1, and so on up
// to level len(thresholds)+1 above the last bound.
func qualityLevel(roughness float64, thresholds []float64) int {
	for level, bound := range thresholds {
		if roughness < bound {
			return level + 1
		}
	}
	return len(thresholds) + 1
}

// QualityAt returns the level of the window whose representative sample
// index is closest to the given index. Road quality is treated as
// piecewise-constant per window, so this is a nearest-neighbor lookup over
// the index-sorted window sequence, not interpolation. Returns
// QualityUnknown when no quality data exists.
func QualityAt(windows []models.QualityWindow, sampleIndex int64) int {
	if len(windows) == 0 {
		return models.QualityUnknown
	}

	// First window at or above the query index.
	pos := sort.Search(len(windows), func(i int) bool {
		return windows[i].SampleIndex >= sampleIndex
	})

	if pos == 0 {
		return windows[0].Level
	}
	if pos == len(windows) {
		return windows[len(windows)-1].Level
	}

	before := windows[pos-1]
	after := windows[pos]
	if sampleIndex-before.SampleIndex <= after.SampleIndex-sampleIndex {
		return before.Level
	}
	return after.Level
}

// MapQuality attaches the nearest window level to every segment, keyed by
// the segment's midpoint sample index. With no quality data every segment
// keeps QualityUnknown.
func MapQuality(segments []models.SpeedSegment, windows []models.QualityWindow) {
	if len(windows) == 0 {
		return
	}
	for i := range segments {
		segments[i].RoadQuality = QualityAt(windows, segments[i].MidpointSample())
	}
}
