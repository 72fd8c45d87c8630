package models

// RouteSegment is a canonical, direction-independent road segment with
// speed statistics merged across trips. Rebuilt in full on every
// aggregation run; there is no partial-update path.
type RouteSegment struct {
	ID  int64  `json:"id,omitempty" db:"id"`
	Key string `json:"key" db:"key"` // rounded, ordered endpoint pair

	// Representative geometry: the first-seen unrounded coordinates
	StartLon float64 `json:"start_lon" db:"start_lon"`
	StartLat float64 `json:"start_lat" db:"start_lat"`
	EndLon   float64 `json:"end_lon" db:"end_lon"`
	EndLat   float64 `json:"end_lat" db:"end_lat"`

	AvgSpeed    float64 `json:"avg_speed" db:"avg_speed"`
	MinSpeed    float64 `json:"min_speed" db:"min_speed"`
	MaxSpeed    float64 `json:"max_speed" db:"max_speed"`
	MedianSpeed float64 `json:"median_speed" db:"median_speed"`
	// max - min, a cheap dispersion proxy rather than true variance
	SpeedVariance float64 `json:"speed_variance" db:"speed_variance"`
	SampleCount   int     `json:"sample_count" db:"sample_count"`
}

// RouteSummary is the observability report of one aggregation run
type RouteSummary struct {
	RunID            string  `json:"run_id"`
	SegmentsIn       int     `json:"segments_in"`        // individual segments consumed
	UniqueSegments   int     `json:"unique_segments"`    // distinct buckets seen
	RetainedSegments int     `json:"retained_segments"`  // buckets with enough samples
	MinAvgSpeed      float64 `json:"min_avg_speed"`
	MaxAvgSpeed      float64 `json:"max_avg_speed"`
	OverallAvgSpeed  float64 `json:"overall_avg_speed"`
	BucketsWith5     int     `json:"buckets_with_5_plus"`
	BucketsWith10    int     `json:"buckets_with_10_plus"`
}
