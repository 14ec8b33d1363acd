package data

import (
	"database/sql"

	"github.com/pkg/errors"
)

const (
	insertMetricSQL = `INSERT INTO model_metric (
			run_id,
			model,
			metric,
			attribute,
			grp,
			value
		)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, model, metric, attribute, grp) DO UPDATE SET
			value = ?
	`

	selectMetricsSQL = `SELECT
			run_id,
			model,
			metric,
			attribute,
			grp,
			value
		FROM model_metric
		WHERE run_id = ?
		ORDER BY model, metric, attribute, grp
	`
)

// ModelMetric is one evaluation value for a run and model. Attribute and
// Group are empty for overall accuracy metrics, and set for group-wise
// fairness metrics (e.g. attribute "race", group "Asian").
type ModelMetric struct {
	RunID     string  `json:"run_id"`
	Model     string  `json:"model"`
	Metric    string  `json:"metric"`
	Attribute string  `json:"attribute,omitempty"`
	Group     string  `json:"group,omitempty"`
	Value     float64 `json:"value"`
}

// SaveMetrics upserts the metrics in a single transaction.
func SaveMetrics(db *sql.DB, metrics []*ModelMetric) error {
	if db == nil {
		return errDBNotInitialized
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	stmt, err := tx.Prepare(insertMetricSQL)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "failed to prepare metric insert statement")
	}
	defer stmt.Close()

	for _, m := range metrics {
		if m.RunID == "" || m.Model == "" || m.Metric == "" {
			tx.Rollback()
			return errors.Errorf("run ID, model, and metric are all required: %+v", m)
		}
		if _, err := stmt.Exec(m.RunID, m.Model, m.Metric, m.Attribute, m.Group,
			m.Value, m.Value); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to insert metric: %s/%s/%s", m.Model, m.Metric, m.Group)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit metric inserts")
	}
	return nil
}

// GetMetrics lists all metrics stored for a run.
func GetMetrics(db *sql.DB, runID string) ([]*ModelMetric, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if runID == "" {
		return nil, errors.New("run ID required")
	}

	rows, err := db.Query(selectMetricsSQL, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query metrics")
	}
	defer rows.Close()

	list := make([]*ModelMetric, 0)
	for rows.Next() {
		var m ModelMetric
		if err := rows.Scan(&m.RunID, &m.Model, &m.Metric, &m.Attribute, &m.Group, &m.Value); err != nil {
			return nil, errors.Wrap(err, "failed to scan metric row")
		}
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating metric rows")
	}

	return list, nil
}
