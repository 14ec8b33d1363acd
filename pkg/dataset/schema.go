package dataset

import (
	"slices"

	"github.com/pkg/errors"
)

const (
	AgeMin = 18
	AgeMax = 95

	StayMin = 1
	StayMax = 30

	ChargesMin = 1000.0
	ChargesMax = 50000.0
)

var (
	// Category vocabularies. The generator, the encoder, and the form
	// validation all share these, so an encounter that validates here is
	// guaranteed to encode without an unknown-category error.
	Genders        = []string{"Male", "Female"}
	Races          = []string{"White", "Black", "Hispanic", "Asian", "Other"}
	DiagnosisCodes = []string{
		"I10", "E11.9", "J45.909", "I50.9", "E78.5",
		"K21.9", "N18.9", "I25.10", "E03.9", "M79.3",
		"F41.9", "I63.9", "C50.919", "E66.9", "I48.91",
	}
	ProcedureCodes = []string{
		"0U5B7ZZ", "3E0P3MZ", "0WQF0ZZ", "4A02X4Z", "0D160Z4",
		"0U5B8ZZ", "3E0P3NZ", "0WQF1ZZ", "4A02X5Z", "0D160Z5",
	}
	TreatmentTypes = []string{"Surgery", "Medical Therapy", "Observation", "Emergency Care", "Rehabilitation"}
	InsuranceTypes = []string{"Medicare", "Private Insurance", "Medicaid", "Uninsured"}
)

// Encounter is a single synthetic patient billing record. TotalCharges is
// the regression target; everything else is a feature.
type Encounter struct {
	ID            string  `json:"encounter_id,omitempty" csv:"encounter_id"`
	Age           int     `json:"age" csv:"age"`
	Gender        string  `json:"gender" csv:"gender"`
	Race          string  `json:"race" csv:"race"`
	DiagnosisCode string  `json:"diagnosis_code" csv:"diagnosis_code"`
	ProcedureCode string  `json:"procedure_code" csv:"procedure_code"`
	LengthOfStay  int     `json:"length_of_stay" csv:"length_of_stay"`
	TreatmentType string  `json:"treatment_type" csv:"treatment_type"`
	InsuranceType string  `json:"insurance_type" csv:"insurance_type"`
	TotalCharges  float64 `json:"total_charges" csv:"total_charges"`
}

// Validate checks numeric ranges and category membership. The target is not
// checked so the same method works for prediction input where charges are
// unknown.
func (e *Encounter) Validate() error {
	if e.Age < AgeMin || e.Age > AgeMax {
		return errors.Errorf("age %d out of range [%d, %d]", e.Age, AgeMin, AgeMax)
	}
	if e.LengthOfStay < StayMin || e.LengthOfStay > StayMax {
		return errors.Errorf("length_of_stay %d out of range [%d, %d]", e.LengthOfStay, StayMin, StayMax)
	}
	if !slices.Contains(Genders, e.Gender) {
		return errors.Errorf("unknown gender: %q", e.Gender)
	}
	if !slices.Contains(Races, e.Race) {
		return errors.Errorf("unknown race: %q", e.Race)
	}
	if !slices.Contains(DiagnosisCodes, e.DiagnosisCode) {
		return errors.Errorf("unknown diagnosis_code: %q", e.DiagnosisCode)
	}
	if !slices.Contains(ProcedureCodes, e.ProcedureCode) {
		return errors.Errorf("unknown procedure_code: %q", e.ProcedureCode)
	}
	if !slices.Contains(TreatmentTypes, e.TreatmentType) {
		return errors.Errorf("unknown treatment_type: %q", e.TreatmentType)
	}
	if !slices.Contains(InsuranceTypes, e.InsuranceType) {
		return errors.Errorf("unknown insurance_type: %q", e.InsuranceType)
	}
	return nil
}

// ValidateAll validates a batch, reporting the first failing row.
func ValidateAll(rows []Encounter) error {
	for i := range rows {
		if err := rows[i].Validate(); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
	}
	return nil
}

// Targets extracts the total_charges column.
func Targets(rows []Encounter) []float64 {
	y := make([]float64, len(rows))
	for i := range rows {
		y[i] = rows[i].TotalCharges
	}
	return y
}

// GroupValues extracts the value of one protected attribute per row.
// Supported attributes: gender, race, insurance_type.
func GroupValues(rows []Encounter, attribute string) ([]string, error) {
	vals := make([]string, len(rows))
	for i := range rows {
		switch attribute {
		case "gender":
			vals[i] = rows[i].Gender
		case "race":
			vals[i] = rows[i].Race
		case "insurance_type":
			vals[i] = rows[i].InsuranceType
		default:
			return nil, errors.Errorf("unsupported group attribute: %s", attribute)
		}
	}
	return vals, nil
}
