package data

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

const (
	insertRunSQL = `INSERT INTO training_run (
			id,
			created_at,
			samples,
			train_rows,
			test_rows,
			seed,
			best_model,
			duration_ms
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			best_model = ?,
			duration_ms = ?
	`

	selectRunSQL = `SELECT
			id,
			created_at,
			samples,
			train_rows,
			test_rows,
			seed,
			best_model,
			duration_ms
		FROM training_run
		WHERE id = ?
	`

	selectRunsSQL = `SELECT
			id,
			created_at,
			samples,
			train_rows,
			test_rows,
			seed,
			best_model,
			duration_ms
		FROM training_run
		ORDER BY created_at DESC
		LIMIT ?
	`
)

// TrainingRun records one execution of the train command.
type TrainingRun struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Samples    int       `json:"samples"`
	TrainRows  int       `json:"train_rows"`
	TestRows   int       `json:"test_rows"`
	Seed       int64     `json:"seed"`
	BestModel  string    `json:"best_model,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// SaveRun upserts a training run record.
func SaveRun(db *sql.DB, r *TrainingRun) error {
	if db == nil {
		return errDBNotInitialized
	}
	if r == nil || r.ID == "" {
		return errors.New("run with ID required")
	}

	if _, err := db.Exec(insertRunSQL,
		r.ID, r.CreatedAt.UTC().Format(time.RFC3339), r.Samples, r.TrainRows,
		r.TestRows, r.Seed, r.BestModel, r.DurationMS,
		r.BestModel, r.DurationMS,
	); err != nil {
		return errors.Wrapf(err, "failed to save training run: %s", r.ID)
	}
	return nil
}

// GetRun returns a single training run by ID.
func GetRun(db *sql.DB, id string) (*TrainingRun, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if id == "" {
		return nil, errors.New("run ID required")
	}

	row := db.QueryRow(selectRunSQL, id)
	return scanRun(row)
}

// GetRuns lists training runs, newest first.
func GetRuns(db *sql.DB, limit int) ([]*TrainingRun, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit < 1 {
		return nil, errors.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := db.Query(selectRunsSQL, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query training runs")
	}
	defer rows.Close()

	list := make([]*TrainingRun, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating training run rows")
	}

	return list, nil
}

// GetLatestRun returns the most recent training run, or nil if none exist.
func GetLatestRun(db *sql.DB) (*TrainingRun, error) {
	runs, err := GetRuns(db, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*TrainingRun, error) {
	var r TrainingRun
	var created string
	if err := row.Scan(&r.ID, &created, &r.Samples, &r.TrainRows, &r.TestRows,
		&r.Seed, &r.BestModel, &r.DurationMS); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("training run not found")
		}
		return nil, errors.Wrap(err, "failed to scan training run row")
	}

	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid created_at value: %s", created)
	}
	r.CreatedAt = t

	return &r, nil
}
