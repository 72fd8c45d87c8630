package models

import "time"

// Trip processing statuses
const (
	TripStatusProcessed = "processed"
	TripStatusSkipped   = "skipped"
	TripStatusEmpty     = "empty" // no motion detected, no output written
	TripStatusFailed    = "failed"
)

// Wheel diameter sources, in resolution precedence order
const (
	WheelSourceFile    = "file"    // metadata embedded in the trip file
	WheelSourceStore   = "store"   // previously recorded trip metadata
	WheelSourceDefault = "default" // documented 711mm fallback
)

// Trip is the processing record of one recording session
type Trip struct {
	TripID          string     `json:"trip_id" db:"trip_id"` // "{serial}_{trip}"
	SensorID        string     `json:"sensor_id" db:"sensor_id"`
	TripName        string     `json:"trip_name" db:"trip_name"`
	WheelDiameterMM float64    `json:"wheel_diameter_mm" db:"wheel_diameter_mm"`
	WheelSource     string     `json:"wheel_source" db:"wheel_source"`
	PointCount      int        `json:"point_count" db:"point_count"`
	SegmentCount    int        `json:"segment_count" db:"segment_count"`
	Status          string     `json:"status" db:"status"`
	ErrorMessage    string     `json:"error_message,omitempty" db:"error_message"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty" db:"processed_at"`
}

// TripResult is the typed outcome of processing one trip, so callers can
// distinguish "skipped, recoverable" from "aborted" deterministically
// instead of relying on side-channel logging.
type TripResult struct {
	TripID          string          `json:"trip_id"`
	Status          string          `json:"status"`
	SegmentCount    int             `json:"segment_count"`
	PointCount      int             `json:"point_count"`
	WheelDiameterMM float64         `json:"wheel_diameter_mm,omitempty"`
	WheelSource     string          `json:"wheel_source,omitempty"`
	QualityCounts   map[int]int     `json:"quality_counts,omitempty"` // level -> segments
	Err             error           `json:"-"`
}

// RunSummary aggregates the results of one batch import run. Speed stats
// exclude stopped (zero-speed) segments; the quality distribution counts
// segments per level 1..5 across all processed trips.
type RunSummary struct {
	TotalFiles    int `json:"total_files"`
	Processed     int `json:"processed"`
	Skipped       int `json:"skipped"`
	Empty         int `json:"empty"`
	Failed        int `json:"failed"`
	TotalSegments int `json:"total_segments"`

	MinSpeedKmh    float64 `json:"min_speed_kmh,omitempty"`
	MaxSpeedKmh    float64 `json:"max_speed_kmh,omitempty"`
	AvgSpeedKmh    float64 `json:"avg_speed_kmh,omitempty"`
	MedianSpeedKmh float64 `json:"median_speed_kmh,omitempty"`

	QualityDistribution map[int]int `json:"quality_distribution,omitempty"`

	Results []TripResult `json:"results"`
}
