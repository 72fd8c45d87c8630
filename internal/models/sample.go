package models

import "time"

// RawSample is one per-sample record decoded from a raw trip file.
// Produced by the GeoJSON codec, consumed once by the point extractor.
type RawSample struct {
	Lon           float64
	Lat           float64
	SampleIndex   int64      // monotonic position in the recording, 0 when absent
	RotationCount int64      // cumulative wheel pulse count, two pulses per revolution
	Marker        int64      // trip-level marker code, passed through
	Time          *time.Time // wall clock (time-of-day + ms), nil when unparseable
	AccY          float64    // vertical acceleration (g)
	ReportedSpeed *float64   // device-reported speed, diagnostic passthrough only
}

// Point is a RawSample whose coordinates passed validation.
// Points are ordered by sample index before segmentation begins.
type Point RawSample
