package repository

import (
	"database/sql"
	"fmt"

	"github.com/velotrace/velotrace-backend-go/internal/database"
	"github.com/velotrace/velotrace-backend-go/internal/models"
)

// RouteRepository handles database operations for the aggregated road model
type RouteRepository struct {
	db *sql.DB
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(db *sql.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// ReplaceRun stores the output of one aggregation run, replacing any
// previous model. There is no partial-update path: the model is rebuilt
// fresh on every run, inside one transaction.
func (r *RouteRepository) ReplaceRun(runID string, routes []models.RouteSegment, summaryJSON string) error {
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM route_segments"); err != nil {
			return fmt.Errorf("failed to clear route segments: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO route_segments (run_id, key, start_lon, start_lat, end_lon, end_lat,
				avg_speed, min_speed, max_speed, median_speed, speed_variance, sample_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare route insert: %w", err)
		}
		defer stmt.Close()

		for _, route := range routes {
			if _, err := stmt.Exec(
				runID, route.Key, route.StartLon, route.StartLat, route.EndLon, route.EndLat,
				route.AvgSpeed, route.MinSpeed, route.MaxSpeed, route.MedianSpeed,
				route.SpeedVariance, route.SampleCount,
			); err != nil {
				return fmt.Errorf("failed to insert route segment: %w", err)
			}
		}

		if _, err := tx.Exec(
			"INSERT INTO aggregate_runs (run_id, segment_count, summary_json) VALUES (?, ?, ?)",
			runID, len(routes), summaryJSON,
		); err != nil {
			return fmt.Errorf("failed to record aggregate run: %w", err)
		}

		return nil
	})
}

// List retrieves the current aggregated model ordered by key
func (r *RouteRepository) List() ([]models.RouteSegment, error) {
	query := `
		SELECT id, key, start_lon, start_lat, end_lon, end_lat,
			avg_speed, min_speed, max_speed, median_speed, speed_variance, sample_count
		FROM route_segments
		ORDER BY key
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query route segments: %w", err)
	}
	defer rows.Close()

	var routes []models.RouteSegment
	for rows.Next() {
		var route models.RouteSegment
		if err := rows.Scan(
			&route.ID, &route.Key, &route.StartLon, &route.StartLat,
			&route.EndLon, &route.EndLat, &route.AvgSpeed, &route.MinSpeed,
			&route.MaxSpeed, &route.MedianSpeed, &route.SpeedVariance, &route.SampleCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan route segment: %w", err)
		}
		routes = append(routes, route)
	}

	return routes, rows.Err()
}

// LatestSummary retrieves the summary report of the most recent run.
// Returns empty values when no run has happened yet.
func (r *RouteRepository) LatestSummary() (string, string, error) {
	var runID, summaryJSON string
	err := r.db.QueryRow(
		"SELECT run_id, summary_json FROM aggregate_runs ORDER BY created_at DESC, run_id DESC LIMIT 1",
	).Scan(&runID, &summaryJSON)
	if err == sql.ErrNoRows {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to query latest aggregate run: %w", err)
	}
	return runID, summaryJSON, nil
}
