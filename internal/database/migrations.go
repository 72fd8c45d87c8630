package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration is one versioned schema change
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are applied in order; append only, never edit a shipped entry
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_trips",
		SQL: `
			CREATE TABLE IF NOT EXISTS trips (
				trip_id TEXT PRIMARY KEY,
				sensor_id TEXT NOT NULL,
				trip_name TEXT NOT NULL,
				wheel_diameter_mm REAL NOT NULL,
				wheel_source TEXT NOT NULL,
				point_count INTEGER NOT NULL DEFAULT 0,
				segment_count INTEGER NOT NULL DEFAULT 0,
				status TEXT NOT NULL,
				error_message TEXT NOT NULL DEFAULT '',
				processed_at TIMESTAMP
			)
		`,
	},
	{
		Version: 2,
		Name:    "create_trip_metadata",
		SQL: `
			CREATE TABLE IF NOT EXISTS trip_metadata (
				trip_id TEXT PRIMARY KEY,
				metadata_json TEXT NOT NULL,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
	{
		Version: 3,
		Name:    "create_speed_segments",
		SQL: `
			CREATE TABLE IF NOT EXISTS speed_segments (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				trip_id TEXT NOT NULL,
				start_lon REAL NOT NULL,
				start_lat REAL NOT NULL,
				end_lon REAL NOT NULL,
				end_lat REAL NOT NULL,
				speed_kmh REAL NOT NULL,
				road_quality INTEGER NOT NULL DEFAULT 0,
				duration_s REAL NOT NULL,
				gps_distance_m REAL NOT NULL,
				rotation_delta INTEGER NOT NULL,
				sample_delta INTEGER NOT NULL,
				start_sample INTEGER NOT NULL,
				end_sample INTEGER NOT NULL,
				marker INTEGER NOT NULL DEFAULT 0,
				original_speed REAL,
				wheel_diameter_mm REAL NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_speed_segments_trip ON speed_segments(trip_id)
		`,
	},
	{
		Version: 4,
		Name:    "create_route_segments",
		SQL: `
			CREATE TABLE IF NOT EXISTS route_segments (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id TEXT NOT NULL,
				key TEXT NOT NULL,
				start_lon REAL NOT NULL,
				start_lat REAL NOT NULL,
				end_lon REAL NOT NULL,
				end_lat REAL NOT NULL,
				avg_speed REAL NOT NULL,
				min_speed REAL NOT NULL,
				max_speed REAL NOT NULL,
				median_speed REAL NOT NULL,
				speed_variance REAL NOT NULL,
				sample_count INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_route_segments_run ON route_segments(run_id)
		`,
	},
	{
		Version: 5,
		Name:    "create_aggregate_runs",
		SQL: `
			CREATE TABLE IF NOT EXISTS aggregate_runs (
				run_id TEXT PRIMARY KEY,
				segment_count INTEGER NOT NULL,
				summary_json TEXT NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`,
	},
}

// Migrate applies all pending migrations in version order
func Migrate(db *sql.DB) error {
	if err := initMigrationsTable(db); err != nil {
		return err
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		log.Printf("[Database] Applied migration %d: %s", m.Version, m.Name)
	}

	return nil
}

func initMigrationsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

func applyMigration(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(m.SQL); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
