package main

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/data"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/dataset"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/metrics"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/model"
)

// Protected attributes reported on by the fairness evaluation.
var fairnessAttributes = []string{"gender", "race", "insurance_type"}

var (
	runIDFlag = &cli.StringFlag{
		Name:  "run",
		Usage: "Training run ID (optional, defaults to the latest run)",
	}

	quantileFlag = &cli.Float64Flag{
		Name:  "quantile",
		Usage: "Observed-charge quantile that defines a high-cost encounter",
	}

	evaluateCmd = &cli.Command{
		Name:    "evaluate",
		Aliases: []string{"e"},
		Usage:   "Evaluate accuracy and fairness of a training run",
		Action:  cmdEvaluate,
		Flags: []cli.Flag{
			runIDFlag,
			quantileFlag,
		},
	}
)

type ModelEvaluation struct {
	Model    string                    `json:"model"`
	Accuracy *metrics.Accuracy         `json:"accuracy"`
	Fairness []*metrics.FairnessReport `json:"fairness"`
}

type EvaluateResult struct {
	RunID    string             `json:"run_id"`
	TestRows int                `json:"test_rows"`
	Models   []*ModelEvaluation `json:"models"`
	Duration string             `json:"duration"`
}

func cmdEvaluate(c *cli.Context) error {
	start := time.Now()

	quantile := cfg.HighCostQuantile
	if c.IsSet(quantileFlag.Name) {
		quantile = c.Float64(quantileFlag.Name)
	}

	db := getDBOrFail()
	defer db.Close()

	run, err := resolveRun(db, c.String(runIDFlag.Name))
	if err != nil {
		return err
	}

	test, err := heldOutRows(db, run)
	if err != nil {
		return err
	}

	yTest := dataset.Targets(test)
	threshold, err := metrics.HighCostThreshold(yTest, quantile)
	if err != nil {
		return errors.Wrap(err, "failed to compute high-cost threshold")
	}

	res := &EvaluateResult{
		RunID:    run.ID,
		TestRows: len(test),
	}

	stored := make([]*data.ModelMetric, 0)
	for _, name := range []string{model.NameOLS, model.NameRidge, model.NameElastic} {
		artifact, err := model.LoadArtifact(modelDir, name)
		if err != nil {
			log.Debugf("skipping %s: %v", name, err)
			continue
		}
		if artifact.RunID != run.ID {
			log.Warnf("artifact %s belongs to run %s, not %s; skipping", name, artifact.RunID, run.ID)
			continue
		}

		xTest, err := artifact.Encoder.Transform(test)
		if err != nil {
			return errors.Wrapf(err, "failed to encode test set for %s", name)
		}
		yhat, err := predictAll(artifact, xTest)
		if err != nil {
			return errors.Wrapf(err, "failed to predict with %s", name)
		}

		acc, err := metrics.ComputeAccuracy(yTest, yhat)
		if err != nil {
			return errors.Wrapf(err, "failed to score %s", name)
		}

		eval := &ModelEvaluation{Model: name, Accuracy: acc}
		stored = append(stored,
			&data.ModelMetric{RunID: run.ID, Model: name, Metric: metrics.MetricMAE, Value: acc.MAE},
			&data.ModelMetric{RunID: run.ID, Model: name, Metric: metrics.MetricRMSE, Value: acc.RMSE},
			&data.ModelMetric{RunID: run.ID, Model: name, Metric: metrics.MetricR2, Value: acc.R2},
		)

		for _, attr := range fairnessAttributes {
			groups, err := dataset.GroupValues(test, attr)
			if err != nil {
				return errors.Wrapf(err, "failed to extract %s groups", attr)
			}

			report, err := metrics.EvaluateFairness(attr, groups, yTest, yhat, threshold)
			if err != nil {
				return errors.Wrapf(err, "failed to evaluate %s fairness for %s", attr, name)
			}
			eval.Fairness = append(eval.Fairness, report)

			stored = append(stored,
				&data.ModelMetric{RunID: run.ID, Model: name, Metric: metrics.MetricParityGap, Attribute: attr, Value: report.ParityGap},
				&data.ModelMetric{RunID: run.ID, Model: name, Metric: metrics.MetricTPRGap, Attribute: attr, Value: report.TPRGap},
				&data.ModelMetric{RunID: run.ID, Model: name, Metric: metrics.MetricFPRGap, Attribute: attr, Value: report.FPRGap},
			)
			for _, g := range report.Groups {
				stored = append(stored,
					&data.ModelMetric{RunID: run.ID, Model: name, Metric: metrics.MetricSelectionRate, Attribute: attr, Group: g.Group, Value: g.SelectionRate},
					&data.ModelMetric{RunID: run.ID, Model: name, Metric: metrics.MetricGroupMAE, Attribute: attr, Group: g.Group, Value: g.MAE},
					&data.ModelMetric{RunID: run.ID, Model: name, Metric: metrics.MetricMeanPredicted, Attribute: attr, Group: g.Group, Value: g.MeanPredicted},
				)
			}
		}

		res.Models = append(res.Models, eval)
	}

	if len(res.Models) == 0 {
		return errors.Errorf("no artifacts found for run %s, run train first", run.ID)
	}

	if err := data.SaveMetrics(db, stored); err != nil {
		return errors.Wrap(err, "failed to save metrics")
	}

	res.Duration = time.Since(start).String()
	return writeJSON(res)
}
