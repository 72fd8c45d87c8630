package metadata

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// Store persists per-trip constant attributes (wheel size, device
// identity, trip start/stop codes) across runs, keyed by trip identifier.
type Store struct {
	db *sql.DB
}

// NewStore creates a metadata store backed by the given database
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get loads the metadata record for a trip, already normalized to the
// canonical flat shape. A missing record yields an empty map, not an
// error; the wheel resolver treats it as "nothing recorded".
func (s *Store) Get(tripID string) (map[string]interface{}, error) {
	var raw string
	err := s.db.QueryRow("SELECT metadata_json FROM trip_metadata WHERE trip_id = ?", tripID).Scan(&raw)
	if err == sql.ErrNoRows {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata for %s: %w", tripID, err)
	}

	var meta map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata for %s: %w", tripID, err)
	}

	return Normalize(meta), nil
}

// Save stores the metadata record for a trip, normalizing first so only
// the canonical flat shape ever reaches disk
func (s *Store) Save(tripID string, meta map[string]interface{}) error {
	raw, err := json.Marshal(Normalize(meta))
	if err != nil {
		return fmt.Errorf("failed to encode metadata for %s: %w", tripID, err)
	}

	query := `
		INSERT INTO trip_metadata (trip_id, metadata_json, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(trip_id) DO UPDATE SET
			metadata_json = excluded.metadata_json,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.Exec(query, tripID, string(raw)); err != nil {
		return fmt.Errorf("failed to save metadata for %s: %w", tripID, err)
	}
	return nil
}

// Normalize collapses the two historical on-disk shapes of a trip record
// (attributes nested under a "metadata" key, or flat) into one canonical
// flat map. Runs once at load/save time so nothing downstream ever
// branches on storage shape again. Raw sensor-data rows that leaked into
// old metadata files are dropped.
func Normalize(meta map[string]interface{}) map[string]interface{} {
	flat := make(map[string]interface{}, len(meta))

	for key, value := range meta {
		if key == "metadata" {
			if nested, ok := value.(map[string]interface{}); ok {
				for k, v := range nested {
					if isMetadataKey(k) {
						flat[k] = v
					}
				}
				continue
			}
		}
		if isMetadataKey(key) {
			flat[key] = value
		}
	}

	return flat
}

// isMetadataKey filters out coordinate/sensor-data rows masquerading as
// keys: CSV fragments start with ",," or run very long with many commas.
func isMetadataKey(key string) bool {
	if strings.HasPrefix(key, ",,") {
		return false
	}
	if len(key) > 100 {
		return false
	}
	return true
}
