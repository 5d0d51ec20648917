// Package database persists forecast run history in PostgreSQL.
package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/macrolabs/laborcast/models"
)

// DB represents a database connection.
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters.
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection and ensures the schema exists.
func New(params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS forecast_runs (
			run_id           TEXT PRIMARY KEY,
			schema_version   TEXT NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL,
			registry_version TEXT NOT NULL,
			base_rate        DOUBLE PRECISION NOT NULL,
			final_value      DOUBLE PRECISION NOT NULL,
			confidence       DOUBLE PRECISION NOT NULL,
			payload          JSONB NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS forecast_runs_created_at_idx
		ON forecast_runs (created_at DESC)
	`)
	return err
}

// SaveRun stores one complete run record.
func (db *DB) SaveRun(rec *models.RunRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding run payload: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO forecast_runs (
			run_id, schema_version, created_at, registry_version,
			base_rate, final_value, confidence, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		rec.RunID, rec.SchemaVersion, rec.CreatedAt, rec.RegistryVersion,
		rec.BaseRate, rec.FinalValue, rec.Confidence, payload)

	return err
}

// GetRun retrieves one stored run by id, or nil when absent.
func (db *DB) GetRun(runID string) (*models.RunRecord, error) {
	var payload []byte
	err := db.QueryRow(`
		SELECT payload FROM forecast_runs WHERE run_id = $1
	`, runID).Scan(&payload)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var rec models.RunRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decoding run payload: %w", err)
	}
	return &rec, nil
}

// RecentRuns lists the newest stored runs, most recent first.
func (db *DB) RecentRuns(limit int) ([]models.RunSummary, error) {
	rows, err := db.Query(`
		SELECT run_id, created_at, registry_version, base_rate, final_value, confidence
		FROM forecast_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.RunSummary
	for rows.Next() {
		var s models.RunSummary
		if err := rows.Scan(&s.RunID, &s.CreatedAt, &s.RegistryVersion, &s.BaseRate, &s.FinalValue, &s.Confidence); err != nil {
			return nil, err
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}
