package main

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/data"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/dataset"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/explain"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/model"
)

var (
	ageFlag = &cli.IntFlag{
		Name:     "age",
		Usage:    "Patient age in years",
		Required: true,
	}

	genderFlag = &cli.StringFlag{
		Name:     "gender",
		Usage:    "Patient gender",
		Required: true,
	}

	raceFlag = &cli.StringFlag{
		Name:     "race",
		Usage:    "Patient race",
		Required: true,
	}

	diagnosisFlag = &cli.StringFlag{
		Name:     "diagnosis",
		Usage:    "ICD-10 diagnosis code",
		Required: true,
	}

	procedureFlag = &cli.StringFlag{
		Name:     "procedure",
		Usage:    "ICD-10-PCS procedure code",
		Required: true,
	}

	stayFlag = &cli.IntFlag{
		Name:     "stay",
		Usage:    "Length of stay in days",
		Required: true,
	}

	treatmentFlag = &cli.StringFlag{
		Name:     "treatment",
		Usage:    "Treatment type",
		Required: true,
	}

	insuranceFlag = &cli.StringFlag{
		Name:     "insurance",
		Usage:    "Insurance type",
		Required: true,
	}

	explainPredictionFlag = &cli.BoolFlag{
		Name:  "explain",
		Usage: "Include per-feature contributions in the output",
	}

	predictCmd = &cli.Command{
		Name:    "predict",
		Aliases: []string{"p"},
		Usage:   "Predict total charges for one encounter",
		Action:  cmdPredict,
		Flags: []cli.Flag{
			ageFlag,
			genderFlag,
			raceFlag,
			diagnosisFlag,
			procedureFlag,
			stayFlag,
			treatmentFlag,
			insuranceFlag,
			modelNameFlag,
			explainPredictionFlag,
		},
	}
)

type PredictResult struct {
	Model       string               `json:"model"`
	Estimate    float64              `json:"estimate"`
	Explanation *explain.Explanation `json:"explanation,omitempty"`
}

func cmdPredict(c *cli.Context) error {
	enc := dataset.Encounter{
		Age:           c.Int(ageFlag.Name),
		Gender:        c.String(genderFlag.Name),
		Race:          c.String(raceFlag.Name),
		DiagnosisCode: c.String(diagnosisFlag.Name),
		ProcedureCode: c.String(procedureFlag.Name),
		LengthOfStay:  c.Int(stayFlag.Name),
		TreatmentType: c.String(treatmentFlag.Name),
		InsuranceType: c.String(insuranceFlag.Name),
	}
	if err := enc.Validate(); err != nil {
		return errors.Wrap(err, "invalid input")
	}

	db := getDBOrFail()
	defer db.Close()

	name := c.String(modelNameFlag.Name)
	if name == "" {
		run, err := resolveRun(db, "")
		if err != nil {
			return err
		}
		name = run.BestModel
	}

	artifact, err := model.LoadArtifact(modelDir, name)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s artifact", name)
	}

	estimate, err := artifact.Predict(enc)
	if err != nil {
		return errors.Wrap(err, "prediction failed")
	}

	res := &PredictResult{
		Model:    name,
		Estimate: estimate,
	}

	if c.Bool(explainPredictionFlag.Name) {
		explainer, err := explain.New(artifact)
		if err != nil {
			return errors.Wrap(err, "failed to build explainer")
		}
		x, err := artifact.Encoder.Vector(enc)
		if err != nil {
			return errors.Wrap(err, "failed to encode input")
		}
		exp, err := explainer.Explain(x)
		if err != nil {
			return errors.Wrap(err, "failed to explain prediction")
		}
		res.Explanation = exp
	}

	if err := data.LogPrediction(db, name, enc, estimate); err != nil {
		return errors.Wrap(err, "failed to log prediction")
	}

	return writeJSON(res)
}
