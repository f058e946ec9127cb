// Package store persists datasets and generation runs in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound marks a lookup for a dataset or run that does not exist.
// Dataset-not-found is the one hard error of the generation flow: it is
// surfaced, never recovered.
var ErrNotFound = errors.New("not found")

// Run statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Dataset is one uploaded source table.
type Dataset struct {
	ID        string
	Name      string
	CSVData   string
	Columns   int
	Rows      int
	CreatedAt time.Time
}

// Run is one generation run against a dataset.
type Run struct {
	ID           string
	DatasetID    string
	Engine       string
	ModelType    string
	Fallback     bool
	Status       string
	SyntheticCSV string
	ReportJSON   string
	Error        string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS datasets (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		csv_data   TEXT NOT NULL,
		columns    INTEGER NOT NULL,
		rows       INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS runs (
		id            TEXT PRIMARY KEY,
		dataset_id    TEXT NOT NULL REFERENCES datasets(id),
		engine        TEXT NOT NULL,
		model_type    TEXT NOT NULL,
		fallback      INTEGER NOT NULL DEFAULT 0,
		status        TEXT NOT NULL,
		synthetic_csv TEXT NOT NULL DEFAULT '',
		report_json   TEXT NOT NULL DEFAULT '',
		error         TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		completed_at  TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// CreateDataset stores a new dataset and returns it with a fresh ID.
func (s *Store) CreateDataset(name, csvData string, columns, rows int) (*Dataset, error) {
	d := &Dataset{
		ID:        uuid.New().String(),
		Name:      name,
		CSVData:   csvData,
		Columns:   columns,
		Rows:      rows,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO datasets (id, name, csv_data, columns, rows, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.CSVData, d.Columns, d.Rows, d.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert dataset: %w", err)
	}
	return d, nil
}

// GetDataset fetches a dataset by ID.
func (s *Store) GetDataset(id string) (*Dataset, error) {
	row := s.db.QueryRow(
		`SELECT id, name, csv_data, columns, rows, created_at FROM datasets WHERE id = ?`, id,
	)
	var d Dataset
	var created string
	err := row.Scan(&d.ID, &d.Name, &d.CSVData, &d.Columns, &d.Rows, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dataset %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	d.CreatedAt = parseTime(created)
	return &d, nil
}

// ListDatasets returns all datasets, newest first, without CSV payloads.
func (s *Store) ListDatasets() ([]Dataset, error) {
	rows, err := s.db.Query(
		`SELECT id, name, columns, rows, created_at FROM datasets ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		var d Dataset
		var created string
		if err := rows.Scan(&d.ID, &d.Name, &d.Columns, &d.Rows, &created); err != nil {
			return nil, err
		}
		d.CreatedAt = parseTime(created)
		out = append(out, d)
	}
	return out, rows.Err()
}

// CreateRun records the start of a generation run.
func (s *Store) CreateRun(datasetID, engine, modelType string) (*Run, error) {
	r := &Run{
		ID:        uuid.New().String(),
		DatasetID: datasetID,
		Engine:    engine,
		ModelType: modelType,
		Status:    StatusRunning,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (id, dataset_id, engine, model_type, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.DatasetID, r.Engine, r.ModelType, r.Status, r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return r, nil
}

// CompleteRun finalizes a run with its outcome.
func (s *Store) CompleteRun(r *Run) error {
	now := time.Now().UTC()
	r.CompletedAt = &now
	_, err := s.db.Exec(
		`UPDATE runs SET engine = ?, fallback = ?, status = ?, synthetic_csv = ?, report_json = ?, error = ?, completed_at = ? WHERE id = ?`,
		r.Engine, boolToInt(r.Fallback), r.Status, r.SyntheticCSV, r.ReportJSON, r.Error,
		now.Format(time.RFC3339Nano), r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun fetches a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, dataset_id, engine, model_type, fallback, status, synthetic_csv, report_json, error, created_at, completed_at
		 FROM runs WHERE id = ?`, id,
	)
	r, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return r, err
}

// ListRuns returns runs newest first, optionally filtered by dataset.
// Synthetic payloads are included; callers listing large histories
// should page by dataset.
func (s *Store) ListRuns(datasetID string) ([]Run, error) {
	query := `SELECT id, dataset_id, engine, model_type, fallback, status, synthetic_csv, report_json, error, created_at, completed_at
	          FROM runs`
	var args []any
	if datasetID != "" {
		query += ` WHERE dataset_id = ?`
		args = append(args, datasetID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func scanRun(scan func(...any) error) (*Run, error) {
	var r Run
	var fallback int
	var created string
	var completed sql.NullString
	err := scan(&r.ID, &r.DatasetID, &r.Engine, &r.ModelType, &fallback, &r.Status,
		&r.SyntheticCSV, &r.ReportJSON, &r.Error, &created, &completed)
	if err != nil {
		return nil, err
	}
	r.Fallback = fallback != 0
	r.CreatedAt = parseTime(created)
	if completed.Valid {
		t := parseTime(completed.String)
		r.CompletedAt = &t
	}
	return &r, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
