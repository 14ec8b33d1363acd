package data

import (
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
)

const (
	// Group-wise aggregate over the stored dataset. The column is validated
	// against groupColumns before interpolation.
	selectGroupChargesSQL = `SELECT
			%s AS grp,
			COUNT(*) AS cnt,
			AVG(total_charges) AS mean_charges,
			MIN(total_charges) AS min_charges,
			MAX(total_charges) AS max_charges
		FROM encounter
		GROUP BY grp
		ORDER BY cnt DESC
	`
)

var groupColumns = []string{"gender", "race", "insurance_type", "treatment_type"}

// GroupStat summarizes observed charges for one value of a grouping column.
type GroupStat struct {
	Group       string  `json:"group"`
	Count       int     `json:"count"`
	MeanCharges float64 `json:"mean_charges"`
	MinCharges  float64 `json:"min_charges"`
	MaxCharges  float64 `json:"max_charges"`
}

// GetGroupCharges aggregates observed charges by one of the categorical
// columns (gender, race, insurance_type, treatment_type).
func GetGroupCharges(db *sql.DB, column string) ([]*GroupStat, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if !Contains(groupColumns, column) {
		return nil, errors.Errorf("unsupported group column: %s", column)
	}

	rows, err := db.Query(fmt.Sprintf(selectGroupChargesSQL, column))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query group charges by %s", column)
	}
	defer rows.Close()

	list := make([]*GroupStat, 0)
	for rows.Next() {
		var s GroupStat
		if err := rows.Scan(&s.Group, &s.Count, &s.MeanCharges, &s.MinCharges, &s.MaxCharges); err != nil {
			return nil, errors.Wrap(err, "failed to scan group stat row")
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating group stat rows")
	}

	return list, nil
}
