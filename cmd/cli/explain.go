package main

import (
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/dataset"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/explain"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/model"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/report"
)

const importanceTopDefault = 10

var (
	modelNameFlag = &cli.StringFlag{
		Name:  "model",
		Usage: "Model to use: ols, ridge, or elastic (optional, defaults to the best model of the latest run)",
	}

	reportDirFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Directory for rendered plots (optional, defaults to $HOME/.chargepredict/reports)",
	}

	importanceTopFlag = &cli.IntFlag{
		Name:  "top",
		Usage: "Number of features to include in the importance output",
		Value: importanceTopDefault,
	}

	explainCmd = &cli.Command{
		Name:    "explain",
		Aliases: []string{"x"},
		Usage:   "Render interpretability output for a trained model",
		Action:  cmdExplain,
		Flags: []cli.Flag{
			runIDFlag,
			modelNameFlag,
			reportDirFlag,
			importanceTopFlag,
		},
	}
)

type ExplainResult struct {
	RunID      string                `json:"run_id"`
	Model      string                `json:"model"`
	Baseline   float64               `json:"baseline"`
	Importance []explain.Attribution `json:"importance"`
	Plots      []string              `json:"plots"`
	Duration   string                `json:"duration"`
}

func cmdExplain(c *cli.Context) error {
	start := time.Now()

	db := getDBOrFail()
	defer db.Close()

	run, err := resolveRun(db, c.String(runIDFlag.Name))
	if err != nil {
		return err
	}

	name := c.String(modelNameFlag.Name)
	if name == "" {
		name = run.BestModel
	}

	artifact, err := model.LoadArtifact(modelDir, name)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s artifact", name)
	}
	if artifact.RunID != run.ID {
		return errors.Errorf("artifact %s belongs to run %s, not %s; retrain first", name, artifact.RunID, run.ID)
	}

	explainer, err := explain.New(artifact)
	if err != nil {
		return errors.Wrap(err, "failed to build explainer")
	}

	test, err := heldOutRows(db, run)
	if err != nil {
		return err
	}

	xTest, err := artifact.Encoder.Transform(test)
	if err != nil {
		return errors.Wrap(err, "failed to encode test set")
	}
	yTest := dataset.Targets(test)
	yhat, err := predictAll(artifact, xTest)
	if err != nil {
		return errors.Wrap(err, "failed to predict test set")
	}

	importance, err := explainer.GlobalImportance(xTest)
	if err != nil {
		return errors.Wrap(err, "failed to compute global importance")
	}

	top := c.Int(importanceTopFlag.Name)
	if top < 1 || top > len(importance) {
		top = len(importance)
	}
	importance = importance[:top]

	out := c.String(reportDirFlag.Name)
	if out == "" {
		out = filepath.Join(homeDir, "reports")
	}
	if err := ensureDir(out); err != nil {
		return err
	}

	res := &ExplainResult{
		RunID:      run.ID,
		Model:      name,
		Baseline:   explainer.Baseline(),
		Importance: importance,
	}

	scatterPath := filepath.Join(out, name+"_predicted_vs_actual.png")
	if err := report.PredictedVsActual(yTest, yhat, scatterPath); err != nil {
		return err
	}
	res.Plots = append(res.Plots, scatterPath)

	residPath := filepath.Join(out, name+"_residuals.png")
	if err := report.ResidualHistogram(yTest, yhat, residPath); err != nil {
		return err
	}
	res.Plots = append(res.Plots, residPath)

	names := make([]string, len(importance))
	values := make([]float64, len(importance))
	for i, a := range importance {
		names[i] = a.Feature
		values[i] = a.Value
	}
	impPath := filepath.Join(out, name+"_importance.png")
	if err := report.Bars("Feature Importance (mean |contribution|)", "Contribution ($)", names, values, impPath); err != nil {
		return err
	}
	res.Plots = append(res.Plots, impPath)

	// Mean model prediction by race over the held-out rows.
	races, err := dataset.GroupValues(test, "race")
	if err != nil {
		return errors.Wrap(err, "failed to extract race groups")
	}
	groupNames, groupPreds, err := groupMeans(races, yhat)
	if err != nil {
		return errors.Wrap(err, "failed to average group predictions")
	}
	groupPath := filepath.Join(out, name+"_group_mean_predicted.png")
	if err := report.Bars("Mean Predicted Charges by Race", "Mean predicted ($)", groupNames, groupPreds, groupPath); err != nil {
		return err
	}
	res.Plots = append(res.Plots, groupPath)

	res.Duration = time.Since(start).String()
	return writeJSON(res)
}
