package metadata

import (
	"strconv"
	"strings"

	"github.com/velotrace/velotrace-backend-go/internal/models"
)

// Metadata keys that may carry the wheel diameter, checked in order
var wheelKeys = []string{"WheelDiam", "Wheel mm"}

// ParseWheelDiameter parses a wheel diameter from a metadata value.
// String values arrive with a unit suffix, e.g. ", 26.0 inch", and are
// converted from inches to millimeters; bare numeric values are already
// millimeters. Returns false when the value is missing or unparseable.
func ParseWheelDiameter(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case string:
		trimmed := strings.Trim(v, ", ")
		fields := strings.Fields(trimmed)
		if len(fields) == 0 {
			return 0, false
		}
		inches, err := strconv.ParseFloat(fields[0], 64)
		if err != nil || inches == 0 {
			return 0, false
		}
		return inches * 25.4, true
	case float64:
		if v == 0 {
			return 0, false
		}
		return v, true
	case int:
		if v == 0 {
			return 0, false
		}
		return float64(v), true
	case int64:
		if v == 0 {
			return 0, false
		}
		return float64(v), true
	default:
		return 0, false
	}
}

// ResolveWheelDiameter applies the documented precedence: metadata embedded
// in the trip file, then the previously recorded metadata for the trip,
// then the configured default. Never fails; the default is the documented
// fallback. Returns the diameter in millimeters and its source.
func ResolveWheelDiameter(fileMeta, savedMeta map[string]interface{}, defaultMM float64) (float64, string) {
	for _, key := range wheelKeys {
		if d, ok := ParseWheelDiameter(fileMeta[key]); ok {
			return d, models.WheelSourceFile
		}
	}
	for _, key := range wheelKeys {
		if d, ok := ParseWheelDiameter(savedMeta[key]); ok {
			return d, models.WheelSourceStore
		}
	}
	return defaultMM, models.WheelSourceDefault
}
