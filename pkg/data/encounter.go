package data

import (
	"database/sql"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/dataset"
)

const (
	insertEncounterSQL = `INSERT INTO encounter (
			id,
			age,
			gender,
			race,
			diagnosis_code,
			procedure_code,
			length_of_stay,
			treatment_type,
			insurance_type,
			total_charges
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			age = ?,
			gender = ?,
			race = ?,
			diagnosis_code = ?,
			procedure_code = ?,
			length_of_stay = ?,
			treatment_type = ?,
			insurance_type = ?,
			total_charges = ?
	`

	selectEncounterSQL = `SELECT
			id,
			age,
			gender,
			race,
			diagnosis_code,
			procedure_code,
			length_of_stay,
			treatment_type,
			insurance_type,
			total_charges
		FROM encounter
		ORDER BY id
		LIMIT ?
	`

	countEncounterSQL  = `SELECT COUNT(*) FROM encounter`
	deleteEncounterSQL = `DELETE FROM encounter`
)

// SaveEncounters upserts the rows in a single transaction.
func SaveEncounters(db *sql.DB, rows []dataset.Encounter) error {
	if db == nil {
		return errDBNotInitialized
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	stmt, err := tx.Prepare(insertEncounterSQL)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "failed to prepare encounter insert statement")
	}
	defer stmt.Close()

	for i := range rows {
		e := rows[i]
		if _, err = stmt.Exec(
			e.ID, e.Age, e.Gender, e.Race, e.DiagnosisCode, e.ProcedureCode,
			e.LengthOfStay, e.TreatmentType, e.InsuranceType, e.TotalCharges,
			e.Age, e.Gender, e.Race, e.DiagnosisCode, e.ProcedureCode,
			e.LengthOfStay, e.TreatmentType, e.InsuranceType, e.TotalCharges,
		); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "failed to insert encounter: %s", e.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit encounter inserts")
	}

	log.Debugf("saved %d encounters", len(rows))
	return nil
}

// GetEncounters returns up to limit encounters ordered by ID.
func GetEncounters(db *sql.DB, limit int) ([]dataset.Encounter, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit < 1 {
		return nil, errors.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := db.Query(selectEncounterSQL, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query encounters")
	}
	defer rows.Close()

	list := make([]dataset.Encounter, 0)
	for rows.Next() {
		var e dataset.Encounter
		if err := rows.Scan(
			&e.ID, &e.Age, &e.Gender, &e.Race, &e.DiagnosisCode, &e.ProcedureCode,
			&e.LengthOfStay, &e.TreatmentType, &e.InsuranceType, &e.TotalCharges,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan encounter row")
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating encounter rows")
	}

	return list, nil
}

// CountEncounters returns the number of stored encounters.
func CountEncounters(db *sql.DB) (int, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}

	var count int
	if err := db.QueryRow(countEncounterSQL).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count encounters")
	}
	return count, nil
}

// DeleteEncounters removes all stored encounters.
func DeleteEncounters(db *sql.DB) error {
	if db == nil {
		return errDBNotInitialized
	}

	if _, err := db.Exec(deleteEncounterSQL); err != nil {
		return errors.Wrap(err, "failed to delete encounters")
	}
	return nil
}
