package repository

import (
	"database/sql"
	"fmt"

	"github.com/velotrace/velotrace-backend-go/internal/database"
	"github.com/velotrace/velotrace-backend-go/internal/models"
)

// SegmentRepository handles database operations for per-trip speed segments
type SegmentRepository struct {
	db *sql.DB
}

// NewSegmentRepository creates a new segment repository
func NewSegmentRepository(db *sql.DB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

// ReplaceForTrip replaces a trip's segments inside one transaction, so a
// failure mid-write never leaves a partial set: the trip's segments are
// stored in full or not at all.
func (r *SegmentRepository) ReplaceForTrip(tripID string, segments []models.SpeedSegment) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM speed_segments WHERE trip_id = ?", tripID); err != nil {
			return fmt.Errorf("failed to clear segments for %s: %w", tripID, err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO speed_segments (trip_id, start_lon, start_lat, end_lon, end_lat,
				speed_kmh, road_quality, duration_s, gps_distance_m,
				rotation_delta, sample_delta, start_sample, end_sample,
				marker, original_speed, wheel_diameter_mm)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare segment insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range segments {
			var original sql.NullFloat64
			if s.ReportedSpeed != nil {
				original = sql.NullFloat64{Float64: *s.ReportedSpeed, Valid: true}
			}
			if _, err := stmt.Exec(
				tripID, s.StartLon, s.StartLat, s.EndLon, s.EndLat,
				s.SpeedKmh, s.RoadQuality, s.DurationS, s.GPSDistanceM,
				s.RotationDelta, s.SampleDelta, s.StartSample, s.EndSample,
				s.Marker, original, s.WheelDiameterMM,
			); err != nil {
				return fmt.Errorf("failed to insert segment for %s: %w", tripID, err)
			}
		}

		return nil
	})
}

// GetByTrip retrieves one trip's segments in insertion order
func (r *SegmentRepository) GetByTrip(tripID string) ([]models.SpeedSegment, error) {
	return r.query("WHERE trip_id = ?", tripID)
}

// GetAll retrieves every stored segment across all trips, the input of an
// aggregation run
func (r *SegmentRepository) GetAll() ([]models.SpeedSegment, error) {
	return r.query("")
}

func (r *SegmentRepository) query(where string, args ...interface{}) ([]models.SpeedSegment, error) {
	query := `
		SELECT id, trip_id, start_lon, start_lat, end_lon, end_lat,
			speed_kmh, road_quality, duration_s, gps_distance_m,
			rotation_delta, sample_delta, start_sample, end_sample,
			marker, original_speed, wheel_diameter_mm
		FROM speed_segments
	`
	if where != "" {
		query += " " + where
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	var segments []models.SpeedSegment
	for rows.Next() {
		var s models.SpeedSegment
		var original sql.NullFloat64
		if err := rows.Scan(
			&s.ID, &s.TripID, &s.StartLon, &s.StartLat, &s.EndLon, &s.EndLat,
			&s.SpeedKmh, &s.RoadQuality, &s.DurationS, &s.GPSDistanceM,
			&s.RotationDelta, &s.SampleDelta, &s.StartSample, &s.EndSample,
			&s.Marker, &original, &s.WheelDiameterMM,
		); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		if original.Valid {
			v := original.Float64
			s.ReportedSpeed = &v
		}
		segments = append(segments, s)
	}

	return segments, rows.Err()
}
