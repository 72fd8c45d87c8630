package geojson

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velotrace/velotrace-backend-go/internal/models"
)

const rawTrip = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": null,
			"properties": {"WheelDiam": ", 26.0 inch", "SENSOR": "602B3"}
		},
		{
			"type": "Feature",
			"geometry": {
				"type": "LineString",
				"coordinates": [[13.40000, 52.50000], [13.40010, 52.50005]]
			},
			"properties": {
				"Samples": 50,
				"HRot Count": "104",
				"HH:mm:ss": "10:00:01",
				"SSS": "250",
				"Acc Y (g)": 0.12,
				"Speed": 14.2,
				"marker": 1
			}
		},
		{
			"type": "Feature",
			"geometry": {
				"type": "LineString",
				"coordinates": [[13.40010, 52.50005], [13.40020, 52.50010]]
			},
			"properties": {
				"Samples": "garbage",
				"HRot Count": 106,
				"Acc Y (g)": "0.31"
			}
		}
	]
}`

func TestDecodeTrip(t *testing.T) {
	t.Parallel()

	samples, meta, err := DecodeTrip([]byte(rawTrip))
	require.NoError(t, err)

	assert.Equal(t, ", 26.0 inch", meta["WheelDiam"])
	assert.Equal(t, "602B3", meta["SENSOR"])

	require.Len(t, samples, 2)

	s := samples[0]
	assert.Equal(t, 13.40010, s.Lon) // last position of the two-point line
	assert.Equal(t, 52.50005, s.Lat)
	assert.Equal(t, int64(50), s.SampleIndex)
	assert.Equal(t, int64(104), s.RotationCount)
	assert.Equal(t, int64(1), s.Marker)
	assert.Equal(t, 0.12, s.AccY)
	require.NotNil(t, s.ReportedSpeed)
	assert.Equal(t, 14.2, *s.ReportedSpeed)
	require.NotNil(t, s.Time)
	assert.Equal(t, 10, s.Time.Hour())
	assert.Equal(t, 1, s.Time.Second())
	assert.Equal(t, 250*int(1e6), s.Time.Nanosecond())

	// Malformed sample index defaults to 0; missing clock stays nil.
	s = samples[1]
	assert.Equal(t, int64(0), s.SampleIndex)
	assert.Equal(t, int64(106), s.RotationCount)
	assert.Equal(t, 0.31, s.AccY)
	assert.Nil(t, s.Time)
	assert.Nil(t, s.ReportedSpeed)
}

func TestDecodeTripMalformed(t *testing.T) {
	t.Parallel()

	_, _, err := DecodeTrip([]byte("not geojson at all"))
	assert.Error(t, err)
}

func TestAsInt64(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), asInt64(nil))
	assert.Equal(t, int64(42), asInt64(42.0))
	assert.Equal(t, int64(42), asInt64("42"))
	assert.Equal(t, int64(42), asInt64("42.7"))
	assert.Equal(t, int64(0), asInt64(""))
	assert.Equal(t, int64(0), asInt64("n/a"))
	// Historical exports put an ISO timestamp in the Samples column.
	assert.Equal(t, int64(1136214245000), asInt64("2006-01-02T15:04:05Z"))
}

func TestEncodeSegments(t *testing.T) {
	t.Parallel()

	reported := 13.9
	segments := []models.SpeedSegment{
		{
			TripID:   "602B3_Trip1",
			StartLon: 13.4, StartLat: 52.5,
			EndLon: 13.401, EndLat: 52.501,
			SpeedKmh:        14.938,
			RoadQuality:     2,
			DurationS:       1.00042,
			GPSDistanceM:    17.26,
			RotationDelta:   4,
			SampleDelta:     50,
			Marker:          1,
			ReportedSpeed:   &reported,
			WheelDiameterMM: 660.4,
		},
		{
			TripID:   "602B3_Trip1",
			StartLon: 13.401, StartLat: 52.501,
			EndLon: 13.402, EndLat: 52.502,
			SpeedKmh: 0, // stopped, quality unknown
		},
	}

	fc := EncodeSegments(segments)
	require.Len(t, fc.Features, 2)

	props := fc.Features[0].Properties
	assert.Equal(t, 14.9, props["Speed"])
	assert.Equal(t, 2, props["road_quality"])
	assert.Equal(t, "602B3_Trip1", props["trip_id"])
	assert.Equal(t, 1.0, props["time_diff_s"])
	assert.Equal(t, 17.3, props["gps_distance_m"])
	assert.Equal(t, 13.9, props["original_speed"])
	assert.Equal(t, 660.4, props["wheel_diameter_mm"])

	// Unknown quality and absent reported speed are omitted entirely.
	props = fc.Features[1].Properties
	assert.NotContains(t, props, "road_quality")
	assert.NotContains(t, props, "original_speed")

	// The collection must serialize as plain GeoJSON.
	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"FeatureCollection"`)
	assert.Contains(t, string(data), `"LineString"`)
}

func TestEncodeRoutes(t *testing.T) {
	t.Parallel()

	fc := EncodeRoutes([]models.RouteSegment{
		{
			StartLon: 13.4, StartLat: 52.5, EndLon: 13.401, EndLat: 52.501,
			AvgSpeed: 19.04, MinSpeed: 10.0, MaxSpeed: 30.06,
			MedianSpeed: 20.0, SpeedVariance: 20.06, SampleCount: 4,
		},
	})

	require.Len(t, fc.Features, 1)
	props := fc.Features[0].Properties
	assert.Equal(t, 19.0, props["avg_speed"])
	assert.Equal(t, 30.1, props["max_speed"])
	assert.Equal(t, 20.1, props["speed_variance"])
	assert.Equal(t, 4, props["sample_count"])
}
