package models

// Road quality levels, ordinal scale over the windowed roughness metric
const (
	QualityUnknown  = 0 // no quality data for the trip
	QualityPerfect  = 1
	QualityNormal   = 2
	QualityOutdated = 3
	QualityBad      = 4
	QualityNoRoad   = 5
)

// QualityLabels maps levels 1..5 to display names
var QualityLabels = map[int]string{
	QualityPerfect:  "Perfect",
	QualityNormal:   "Normal",
	QualityOutdated: "Outdated",
	QualityBad:      "Bad",
	QualityNoRoad:   "No road",
}

// QualityWindow is one scored slice of the acceleration signal
type QualityWindow struct {
	SampleIndex int64 // representative (midpoint) sample index of the window
	Level       int   // 1..5
}
