package data

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/dataset"
)

const (
	insertPredictionSQL = `INSERT INTO prediction_log (
			id,
			created_at,
			model,
			input,
			estimate
		)
		VALUES (?, ?, ?, ?, ?)
	`

	selectPredictionsSQL = `SELECT
			id,
			created_at,
			model,
			input,
			estimate
		FROM prediction_log
		ORDER BY created_at DESC
		LIMIT ?
	`
)

// Prediction is one served estimate, kept for audit.
type Prediction struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Model     string            `json:"model"`
	Input     dataset.Encounter `json:"input"`
	Estimate  float64           `json:"estimate"`
}

// LogPrediction records a served prediction.
func LogPrediction(db *sql.DB, model string, input dataset.Encounter, estimate float64) error {
	if db == nil {
		return errDBNotInitialized
	}
	if model == "" {
		return errors.New("model name required")
	}

	b, err := json.Marshal(input)
	if err != nil {
		return errors.Wrap(err, "failed to marshal prediction input")
	}

	if _, err := db.Exec(insertPredictionSQL,
		uuid.NewString(), time.Now().UTC().Format(time.RFC3339), model, string(b), estimate,
	); err != nil {
		return errors.Wrap(err, "failed to insert prediction log")
	}
	return nil
}

// GetPredictions lists logged predictions, newest first.
func GetPredictions(db *sql.DB, limit int) ([]*Prediction, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit < 1 {
		return nil, errors.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := db.Query(selectPredictionsSQL, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query prediction log")
	}
	defer rows.Close()

	list := make([]*Prediction, 0)
	for rows.Next() {
		var p Prediction
		var created, input string
		if err := rows.Scan(&p.ID, &created, &p.Model, &input, &p.Estimate); err != nil {
			return nil, errors.Wrap(err, "failed to scan prediction row")
		}

		t, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid created_at value: %s", created)
		}
		p.CreatedAt = t

		if err := json.Unmarshal([]byte(input), &p.Input); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal prediction input")
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating prediction rows")
	}

	return list, nil
}
