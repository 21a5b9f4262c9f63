package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"datadesc/internal/describe"
)

type Store struct {
	db *sql.DB
}

// Dataset is the registry row for one source file. Columns holds the
// caller-supplied column names in order; the files carry no header.
type Dataset struct {
	ID           int64
	Name         string
	Path         string
	Columns      []string
	RowCount     int
	RegisteredAt time.Time
	UpdatedAt    time.Time
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) InitSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS datasets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	path TEXT NOT NULL,
	columns TEXT NOT NULL,
	row_count INTEGER NOT NULL DEFAULT 0,
	registered_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS column_summaries (
	dataset_id INTEGER NOT NULL,
	column_name TEXT NOT NULL,
	count INTEGER NOT NULL,
	mean REAL NOT NULL,
	std REAL NOT NULL,
	min REAL NOT NULL,
	q25 REAL NOT NULL,
	median REAL NOT NULL,
	q75 REAL NOT NULL,
	max REAL NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (dataset_id, column_name)
);
CREATE TABLE IF NOT EXISTS dataset_queue (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	dataset_id INTEGER NOT NULL,
	enqueued_at INTEGER NOT NULL,
	processed_at INTEGER
);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// UpsertDataset registers a dataset by name, updating path and columns when
// it already exists, and returns its id.
func (s *Store) UpsertDataset(ctx context.Context, ds Dataset) (int64, error) {
	if ds.Name == "" {
		return 0, errors.New("dataset name required")
	}
	if ds.Path == "" {
		return 0, errors.New("dataset path required")
	}
	if len(ds.Columns) == 0 {
		return 0, errors.New("dataset columns required")
	}

	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO datasets (name, path, columns, registered_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	path = excluded.path,
	columns = excluded.columns,
	updated_at = excluded.updated_at
`, ds.Name, ds.Path, strings.Join(ds.Columns, ","), now, now)
	if err != nil {
		return 0, err
	}

	row := s.db.QueryRowContext(ctx, `
SELECT id
FROM datasets
WHERE name = ?
`, ds.Name)
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) GetDataset(ctx context.Context, id int64) (Dataset, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, path, columns, row_count, registered_at, updated_at
FROM datasets
WHERE id = ?
`, id)
	return scanDataset(row)
}

func (s *Store) GetDatasetByName(ctx context.Context, name string) (Dataset, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, path, columns, row_count, registered_at, updated_at
FROM datasets
WHERE name = ?
`, name)
	return scanDataset(row)
}

func scanDataset(row *sql.Row) (Dataset, error) {
	var ds Dataset
	var columns string
	var registeredAt, updatedAt int64
	if err := row.Scan(&ds.ID, &ds.Name, &ds.Path, &columns, &ds.RowCount, &registeredAt, &updatedAt); err != nil {
		return Dataset{}, err
	}
	ds.Columns = strings.Split(columns, ",")
	ds.RegisteredAt = time.Unix(registeredAt, 0)
	ds.UpdatedAt = time.Unix(updatedAt, 0)
	return ds, nil
}

func (s *Store) ListDatasets(ctx context.Context) ([]Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, path, columns, row_count, registered_at, updated_at
FROM datasets
ORDER BY name
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var datasets []Dataset
	for rows.Next() {
		var ds Dataset
		var columns string
		var registeredAt, updatedAt int64
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.Path, &columns, &ds.RowCount, &registeredAt, &updatedAt); err != nil {
			return nil, err
		}
		ds.Columns = strings.Split(columns, ",")
		ds.RegisteredAt = time.Unix(registeredAt, 0)
		ds.UpdatedAt = time.Unix(updatedAt, 0)
		datasets = append(datasets, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return datasets, nil
}

func (s *Store) SetRowCount(ctx context.Context, datasetID int64, rowCount int) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE datasets
SET row_count = ?, updated_at = ?
WHERE id = ?
`, rowCount, time.Now().Unix(), datasetID)
	return err
}

func (s *Store) UpsertColumnSummary(ctx context.Context, datasetID int64, summary describe.Summary) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO column_summaries (dataset_id, column_name, count, mean, std, min, q25, median, q75, max, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(dataset_id, column_name) DO UPDATE SET
	count = excluded.count,
	mean = excluded.mean,
	std = excluded.std,
	min = excluded.min,
	q25 = excluded.q25,
	median = excluded.median,
	q75 = excluded.q75,
	max = excluded.max,
	updated_at = excluded.updated_at
`, datasetID, summary.Column, summary.Count, summary.Mean, summary.Std, summary.Min, summary.Q25, summary.Median, summary.Q75, summary.Max, time.Now().Unix())
	return err
}

func (s *Store) GetColumnSummary(ctx context.Context, datasetID int64, column string) (describe.Summary, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT column_name, count, mean, std, min, q25, median, q75, max
FROM column_summaries
WHERE dataset_id = ? AND column_name = ?
`, datasetID, column)
	var summary describe.Summary
	if err := row.Scan(&summary.Column, &summary.Count, &summary.Mean, &summary.Std, &summary.Min, &summary.Q25, &summary.Median, &summary.Q75, &summary.Max); err != nil {
		return describe.Summary{}, err
	}
	return summary, nil
}

// ListColumnSummaries returns summaries in the dataset's declared column
// order, skipping columns not yet summarized.
func (s *Store) ListColumnSummaries(ctx context.Context, datasetID int64) ([]describe.Summary, error) {
	ds, err := s.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT column_name, count, mean, std, min, q25, median, q75, max
FROM column_summaries
WHERE dataset_id = ?
`, datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byName := make(map[string]describe.Summary)
	for rows.Next() {
		var summary describe.Summary
		if err := rows.Scan(&summary.Column, &summary.Count, &summary.Mean, &summary.Std, &summary.Min, &summary.Q25, &summary.Median, &summary.Q75, &summary.Max); err != nil {
			return nil, err
		}
		byName[summary.Column] = summary
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var summaries []describe.Summary
	for _, name := range ds.Columns {
		if summary, ok := byName[name]; ok {
			summaries = append(summaries, summary)
		}
	}
	return summaries, nil
}

func (s *Store) CountColumnSummaries(ctx context.Context, datasetID int64) (int, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM column_summaries
WHERE dataset_id = ?
`, datasetID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) EnqueueDataset(ctx context.Context, datasetID int64) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO dataset_queue (dataset_id, enqueued_at)
VALUES (?, ?)
`, datasetID, time.Now().Unix())
	return err
}

func (s *Store) DequeueDataset(ctx context.Context) (queueID int64, datasetID int64, err error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, dataset_id
FROM dataset_queue
WHERE processed_at IS NULL
ORDER BY id
LIMIT 1
`)
	if err := row.Scan(&queueID, &datasetID); err != nil {
		return 0, 0, err
	}
	return queueID, datasetID, nil
}

func (s *Store) MarkProcessed(ctx context.Context, queueID int64) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE dataset_queue
SET processed_at = ?
WHERE id = ?
`, time.Now().Unix(), queueID)
	return err
}

func (s *Store) CountQueue(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM dataset_queue
WHERE processed_at IS NULL
`)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
