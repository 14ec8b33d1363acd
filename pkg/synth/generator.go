// Package synth generates the synthetic hospital billing dataset. Feature
// distributions and the charge formula follow the published shape of real
// inpatient billing data: normal age, exponential length of stay, and charges
// driven by a daily rate scaled by treatment and insurance multipliers.
package synth

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/dataset"
)

const (
	SamplesDefault = 1000
	SeedDefault    = 42

	ageMean   = 55.0
	ageStdDev = 18.0

	stayMeanDays = 3.0

	baseCharge    = 5000.0
	ageChargeUnit = 1000.0
	dailyRate     = 800.0
	chargeNoise   = 0.2
)

var (
	genderWeights    = []float64{0.48, 0.52}
	raceWeights      = []float64{0.60, 0.13, 0.18, 0.06, 0.03}
	treatmentWeights = []float64{0.25, 0.35, 0.20, 0.15, 0.05}
	insuranceWeights = []float64{0.40, 0.35, 0.20, 0.05}

	treatmentFactors = map[string]float64{
		"Surgery":         1.8,
		"Medical Therapy": 1.0,
		"Observation":     0.7,
		"Emergency Care":  1.5,
		"Rehabilitation":  1.2,
	}

	insuranceFactors = map[string]float64{
		"Medicare":          0.9,
		"Private Insurance": 1.1,
		"Medicaid":          0.8,
		"Uninsured":         0.7,
	}
)

// Generator produces seeded, reproducible encounters.
type Generator struct {
	rnd *rand.Rand
}

func New(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate produces n encounters. Two generators built with the same seed
// produce identical output.
func (g *Generator) Generate(n int) ([]dataset.Encounter, error) {
	if n < 1 {
		return nil, errors.Errorf("sample count must be positive, got %d", n)
	}

	rows := make([]dataset.Encounter, 0, n)
	for i := 0; i < n; i++ {
		e, err := g.encounter()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to generate encounter %d", i)
		}
		rows = append(rows, e)
	}

	log.Debugf("generated %d encounters", len(rows))
	return rows, nil
}

func (g *Generator) encounter() (dataset.Encounter, error) {
	id, err := uuid.NewRandomFromReader(g.rnd)
	if err != nil {
		return dataset.Encounter{}, errors.Wrap(err, "failed to generate encounter ID")
	}

	e := dataset.Encounter{
		ID:            id.String(),
		Age:           g.age(),
		Gender:        g.choice(dataset.Genders, genderWeights),
		Race:          g.choice(dataset.Races, raceWeights),
		DiagnosisCode: g.uniform(dataset.DiagnosisCodes),
		ProcedureCode: g.uniform(dataset.ProcedureCodes),
		LengthOfStay:  g.lengthOfStay(),
		TreatmentType: g.choice(dataset.TreatmentTypes, treatmentWeights),
		InsuranceType: g.choice(dataset.InsuranceTypes, insuranceWeights),
	}
	e.TotalCharges = g.charges(e)

	return e, nil
}

func (g *Generator) age() int {
	a := g.rnd.NormFloat64()*ageStdDev + ageMean
	return int(clamp(a, dataset.AgeMin, dataset.AgeMax))
}

func (g *Generator) lengthOfStay() int {
	d := g.rnd.ExpFloat64() * stayMeanDays
	return int(clamp(d, dataset.StayMin, dataset.StayMax))
}

// charges is the labeling function: a base charge plus an age premium and a
// daily rate, scaled by treatment and insurance multipliers, with
// multiplicative gaussian noise. Clipped and rounded to cents.
func (g *Generator) charges(e dataset.Encounter) float64 {
	ageFactor := (float64(e.Age) - 40) / 20
	losFactor := float64(e.LengthOfStay) * dailyRate
	noise := g.rnd.NormFloat64() * chargeNoise

	total := (baseCharge + ageFactor*ageChargeUnit + losFactor) *
		treatmentFactors[e.TreatmentType] *
		insuranceFactors[e.InsuranceType] *
		(1 + noise)

	total = clamp(total, dataset.ChargesMin, dataset.ChargesMax)
	return math.Round(total*100) / 100
}

// choice picks a value using the given probability weights.
func (g *Generator) choice(values []string, weights []float64) string {
	r := g.rnd.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return values[i]
		}
	}
	return values[len(values)-1]
}

func (g *Generator) uniform(values []string) string {
	return values[g.rnd.Intn(len(values))]
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
