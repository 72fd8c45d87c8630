package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/velotrace/velotrace-backend-go/internal/models"
)

// TripRepository handles database operations for trip processing records
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

// Upsert records the outcome of processing one trip
func (r *TripRepository) Upsert(trip *models.Trip) error {
	query := `
		INSERT INTO trips (trip_id, sensor_id, trip_name, wheel_diameter_mm,
			wheel_source, point_count, segment_count, status, error_message, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(trip_id) DO UPDATE SET
			wheel_diameter_mm = excluded.wheel_diameter_mm,
			wheel_source = excluded.wheel_source,
			point_count = excluded.point_count,
			segment_count = excluded.segment_count,
			status = excluded.status,
			error_message = excluded.error_message,
			processed_at = excluded.processed_at
	`

	processedAt := time.Now()
	_, err := r.db.Exec(query,
		trip.TripID, trip.SensorID, trip.TripName, trip.WheelDiameterMM,
		trip.WheelSource, trip.PointCount, trip.SegmentCount, trip.Status,
		trip.ErrorMessage, processedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert trip %s: %w", trip.TripID, err)
	}
	return nil
}

// List retrieves all trip records ordered by trip id
func (r *TripRepository) List() ([]models.Trip, error) {
	query := `
		SELECT trip_id, sensor_id, trip_name, wheel_diameter_mm, wheel_source,
			point_count, segment_count, status, error_message, processed_at
		FROM trips
		ORDER BY trip_id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var t models.Trip
		var processedAt sql.NullTime
		if err := rows.Scan(
			&t.TripID, &t.SensorID, &t.TripName, &t.WheelDiameterMM,
			&t.WheelSource, &t.PointCount, &t.SegmentCount, &t.Status,
			&t.ErrorMessage, &processedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		if processedAt.Valid {
			t.ProcessedAt = &processedAt.Time
		}
		trips = append(trips, t)
	}

	return trips, rows.Err()
}

// Get retrieves one trip record by id
func (r *TripRepository) Get(tripID string) (*models.Trip, error) {
	query := `
		SELECT trip_id, sensor_id, trip_name, wheel_diameter_mm, wheel_source,
			point_count, segment_count, status, error_message, processed_at
		FROM trips
		WHERE trip_id = ?
	`

	var t models.Trip
	var processedAt sql.NullTime
	err := r.db.QueryRow(query, tripID).Scan(
		&t.TripID, &t.SensorID, &t.TripName, &t.WheelDiameterMM,
		&t.WheelSource, &t.PointCount, &t.SegmentCount, &t.Status,
		&t.ErrorMessage, &processedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip %s: %w", tripID, err)
	}
	if processedAt.Valid {
		t.ProcessedAt = &processedAt.Time
	}

	return &t, nil
}
