package geojson

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	orbjson "github.com/paulmach/orb/geojson"

	"github.com/velotrace/velotrace-backend-go/internal/models"
)

// Acceleration property names seen across device firmware revisions
var accYKeys = []string{"Acc Y (g)", "Acc Y", "AccY", "acc_y"}

// DecodeTrip parses a raw trip FeatureCollection into per-sample records
// plus the trip-level metadata bag. Data features carry a two-point
// LineString whose last position is the sample's position; features with
// absent or empty geometry are metadata-only records and their properties
// are merged into the returned map. A malformed document fails the whole
// file: no partial output.
func DecodeTrip(data []byte) ([]models.RawSample, map[string]interface{}, error) {
	fc, err := orbjson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feature collection: %w", err)
	}

	var samples []models.RawSample
	meta := make(map[string]interface{})

	for _, f := range fc.Features {
		ls, ok := geometryLine(f.Geometry)
		if !ok {
			for k, v := range f.Properties {
				meta[k] = v
			}
			continue
		}
		if len(ls) < 2 {
			continue
		}

		pos := ls[len(ls)-1]
		props := f.Properties

		samples = append(samples, models.RawSample{
			Lon:           pos.Lon(),
			Lat:           pos.Lat(),
			SampleIndex:   asInt64(props["Samples"]),
			RotationCount: asInt64(props["HRot Count"]),
			Marker:        asInt64(props["marker"]),
			Time:          parseClock(props["HH:mm:ss"], props["SSS"]),
			AccY:          accelerationY(props),
			ReportedSpeed: asFloatPtr(props["Speed"]),
		})
	}

	return samples, meta, nil
}

// geometryLine returns the LineString of a data feature. Nil or empty
// geometry marks a metadata feature.
func geometryLine(g orb.Geometry) (orb.LineString, bool) {
	if g == nil {
		return nil, false
	}
	ls, ok := g.(orb.LineString)
	if !ok || len(ls) == 0 {
		return nil, false
	}
	return ls, true
}

func accelerationY(props orbjson.Properties) float64 {
	for _, key := range accYKeys {
		if v, ok := props[key]; ok {
			if f, ok := asFloat(v); ok {
				return f
			}
		}
	}
	return 0
}

// asInt64 converts loosely typed property values. Missing or malformed
// values default to 0 rather than falling back to stream position, so
// degenerate files collapse to a single bucket instead of silently
// reordering. ISO-formatted date strings become millisecond timestamps,
// matching historical exports that put a timestamp in the Samples column.
func asInt64(v interface{}) int64 {
	switch val := v.(type) {
	case nil:
		return 0
	case float64:
		return int64(val)
	case int:
		return int64(val)
	case int64:
		return val
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f)
		}
		if strings.Contains(s, "-") {
			for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
				if t, err := time.Parse(layout, s); err == nil {
					return t.UnixMilli()
				}
			}
		}
		return 0
	default:
		return 0
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func asFloatPtr(v interface{}) *float64 {
	if f, ok := asFloat(v); ok {
		return &f
	}
	return nil
}

// parseClock combines the HH:mm:ss and SSS properties into a time-of-day
// value. Either part missing means no reliable timestamp; the estimator
// falls back to fixed-rate duration.
func parseClock(timeVal, msVal interface{}) *time.Time {
	timeStr, ok := timeVal.(string)
	if !ok || timeStr == "" || msVal == nil {
		return nil
	}
	if s, ok := msVal.(string); ok && s == "" {
		return nil
	}

	base, err := time.Parse("15:04:05", strings.TrimSpace(timeStr))
	if err != nil {
		return nil
	}

	t := base.Add(time.Duration(asInt64(msVal)) * time.Millisecond)
	return &t
}
