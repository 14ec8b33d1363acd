package dataset

import (
	"math"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Encoder turns encounters into numeric feature vectors: standardized age and
// length of stay followed by one-hot blocks for each categorical field. Each
// block drops its first vocabulary entry as the reference level, which keeps
// the design matrix full rank next to the intercept column. The vocabularies
// and standardization parameters are captured at fit time and serialized with
// the model artifact so serving encodes input exactly the way training did.
type Encoder struct {
	AgeMean  float64 `json:"age_mean"`
	AgeStd   float64 `json:"age_std"`
	StayMean float64 `json:"stay_mean"`
	StayStd  float64 `json:"stay_std"`

	GenderVocab    []string `json:"gender_vocab"`
	RaceVocab      []string `json:"race_vocab"`
	DiagnosisVocab []string `json:"diagnosis_vocab"`
	ProcedureVocab []string `json:"procedure_vocab"`
	TreatmentVocab []string `json:"treatment_vocab"`
	InsuranceVocab []string `json:"insurance_vocab"`
}

// NewEncoder returns an encoder over the canonical vocabularies with identity
// standardization. Call Fit to capture train-set statistics.
func NewEncoder() *Encoder {
	return &Encoder{
		AgeStd:         1,
		StayStd:        1,
		GenderVocab:    slices.Clone(Genders),
		RaceVocab:      slices.Clone(Races),
		DiagnosisVocab: slices.Clone(DiagnosisCodes),
		ProcedureVocab: slices.Clone(ProcedureCodes),
		TreatmentVocab: slices.Clone(TreatmentTypes),
		InsuranceVocab: slices.Clone(InsuranceTypes),
	}
}

// Fit captures mean and standard deviation of the numeric features from the
// training rows.
func (e *Encoder) Fit(rows []Encounter) error {
	if len(rows) == 0 {
		return errors.New("cannot fit encoder on empty dataset")
	}

	ages := make([]float64, len(rows))
	stays := make([]float64, len(rows))
	for i := range rows {
		ages[i] = float64(rows[i].Age)
		stays[i] = float64(rows[i].LengthOfStay)
	}

	e.AgeMean = stat.Mean(ages, nil)
	e.StayMean = stat.Mean(stays, nil)
	e.AgeStd = stat.StdDev(ages, nil)
	e.StayStd = stat.StdDev(stays, nil)

	// Constant columns standardize to zero rather than NaN.
	if e.AgeStd == 0 || math.IsNaN(e.AgeStd) {
		e.AgeStd = 1
	}
	if e.StayStd == 0 || math.IsNaN(e.StayStd) {
		e.StayStd = 1
	}
	return nil
}

// NumFeatures is the width of the encoded vector.
func (e *Encoder) NumFeatures() int {
	return 2 + (len(e.GenderVocab) - 1) + (len(e.RaceVocab) - 1) +
		(len(e.DiagnosisVocab) - 1) + (len(e.ProcedureVocab) - 1) +
		(len(e.TreatmentVocab) - 1) + (len(e.InsuranceVocab) - 1)
}

// FeatureNames returns column names aligned with Vector output. The first
// vocabulary entry of each block is the reference level and has no column.
func (e *Encoder) FeatureNames() []string {
	names := make([]string, 0, e.NumFeatures())
	names = append(names, "age", "length_of_stay")
	for _, v := range e.GenderVocab[1:] {
		names = append(names, "gender="+v)
	}
	for _, v := range e.RaceVocab[1:] {
		names = append(names, "race="+v)
	}
	for _, v := range e.DiagnosisVocab[1:] {
		names = append(names, "diagnosis_code="+v)
	}
	for _, v := range e.ProcedureVocab[1:] {
		names = append(names, "procedure_code="+v)
	}
	for _, v := range e.TreatmentVocab[1:] {
		names = append(names, "treatment_type="+v)
	}
	for _, v := range e.InsuranceVocab[1:] {
		names = append(names, "insurance_type="+v)
	}
	return names
}

// Vector encodes a single encounter. Unknown categories are an error, never a
// silent all-zero block.
func (e *Encoder) Vector(enc Encounter) ([]float64, error) {
	x := make([]float64, 0, e.NumFeatures())
	x = append(x,
		(float64(enc.Age)-e.AgeMean)/e.AgeStd,
		(float64(enc.LengthOfStay)-e.StayMean)/e.StayStd,
	)

	blocks := []struct {
		field string
		value string
		vocab []string
	}{
		{"gender", enc.Gender, e.GenderVocab},
		{"race", enc.Race, e.RaceVocab},
		{"diagnosis_code", enc.DiagnosisCode, e.DiagnosisVocab},
		{"procedure_code", enc.ProcedureCode, e.ProcedureVocab},
		{"treatment_type", enc.TreatmentType, e.TreatmentVocab},
		{"insurance_type", enc.InsuranceType, e.InsuranceVocab},
	}

	for _, b := range blocks {
		hot := slices.Index(b.vocab, b.value)
		if hot < 0 {
			return nil, errors.Errorf("cannot encode unknown %s: %q", b.field, b.value)
		}
		for i := 1; i < len(b.vocab); i++ {
			if i == hot {
				x = append(x, 1)
			} else {
				x = append(x, 0)
			}
		}
	}
	return x, nil
}

// Transform encodes rows into a dense design matrix, one encounter per row.
func (e *Encoder) Transform(rows []Encounter) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, errors.New("cannot transform empty dataset")
	}

	cols := e.NumFeatures()
	x := mat.NewDense(len(rows), cols, nil)
	for i := range rows {
		v, err := e.Vector(rows[i])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		x.SetRow(i, v)
	}
	return x, nil
}
