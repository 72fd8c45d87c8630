package models

// SpeedSegment is one motion-detected straight-line unit of a trip,
// carrying the wheel-derived speed estimate. Immutable once written.
type SpeedSegment struct {
	ID     int64  `json:"id,omitempty" db:"id"`
	TripID string `json:"trip_id" db:"trip_id"`

	// Geometry (unrounded endpoint coordinates)
	StartLon float64 `json:"start_lon" db:"start_lon"`
	StartLat float64 `json:"start_lat" db:"start_lat"`
	EndLon   float64 `json:"end_lon" db:"end_lon"`
	EndLat   float64 `json:"end_lat" db:"end_lat"`

	// Estimation results
	SpeedKmh     float64 `json:"speed_kmh" db:"speed_kmh"`
	RoadQuality  int     `json:"road_quality" db:"road_quality"` // 1..5, 0 = unknown
	DurationS    float64 `json:"duration_s" db:"duration_s"`
	GPSDistanceM float64 `json:"gps_distance_m" db:"gps_distance_m"`

	// Measurement deltas
	RotationDelta int64 `json:"rotation_delta" db:"rotation_delta"`
	SampleDelta   int64 `json:"sample_delta" db:"sample_delta"`
	StartSample   int64 `json:"start_sample" db:"start_sample"`
	EndSample     int64 `json:"end_sample" db:"end_sample"`

	// Diagnostics
	Marker          int64    `json:"marker" db:"marker"`
	ReportedSpeed   *float64 `json:"original_speed,omitempty" db:"original_speed"`
	WheelDiameterMM float64  `json:"wheel_diameter_mm" db:"wheel_diameter_mm"`
}

// MidpointSample is the representative sample index used for
// road-quality lookup, the integer midpoint of the endpoint indices.
func (s *SpeedSegment) MidpointSample() int64 {
	return (s.StartSample + s.EndSample) / 2
}
