package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/data"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/dataset"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/metrics"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/model"
)

var (
	testFractionFlag = &cli.Float64Flag{
		Name:  "test-fraction",
		Usage: "Fraction of the dataset held out for evaluation",
	}

	ridgeLambdaFlag = &cli.Float64Flag{
		Name:  "lambda",
		Usage: "Ridge regularization strength",
	}

	elasticAlphaFlag = &cli.Float64Flag{
		Name:  "alpha",
		Usage: "Elastic net regularization strength",
	}

	elasticL1RatioFlag = &cli.Float64Flag{
		Name:  "l1-ratio",
		Usage: "Elastic net L1/L2 mix (0 = ridge, 1 = lasso)",
	}

	trainCmd = &cli.Command{
		Name:    "train",
		Aliases: []string{"t"},
		Usage:   "Train the three regressors on the stored dataset",
		Action:  cmdTrain,
		Flags: []cli.Flag{
			seedFlag,
			testFractionFlag,
			ridgeLambdaFlag,
			elasticAlphaFlag,
			elasticL1RatioFlag,
		},
	}
)

type TrainedModel struct {
	Model    string  `json:"model"`
	TestMAE  float64 `json:"test_mae"`
	TestRMSE float64 `json:"test_rmse"`
	TestR2   float64 `json:"test_r2"`
	Artifact string  `json:"artifact"`
}

type TrainResult struct {
	RunID     string          `json:"run_id"`
	TrainRows int             `json:"train_rows"`
	TestRows  int             `json:"test_rows"`
	BestModel string          `json:"best_model"`
	Models    []*TrainedModel `json:"models"`
	Duration  string          `json:"duration"`
}

func cmdTrain(c *cli.Context) error {
	start := time.Now()

	seed := cfg.Seed
	if c.IsSet(seedFlag.Name) {
		seed = c.Int64(seedFlag.Name)
	}
	testFraction := cfg.TestFraction
	if c.IsSet(testFractionFlag.Name) {
		testFraction = c.Float64(testFractionFlag.Name)
	}
	lambda := cfg.RidgeLambda
	if c.IsSet(ridgeLambdaFlag.Name) {
		lambda = c.Float64(ridgeLambdaFlag.Name)
	}
	alpha := cfg.ElasticAlpha
	if c.IsSet(elasticAlphaFlag.Name) {
		alpha = c.Float64(elasticAlphaFlag.Name)
	}
	l1Ratio := cfg.ElasticL1Ratio
	if c.IsSet(elasticL1RatioFlag.Name) {
		l1Ratio = c.Float64(elasticL1RatioFlag.Name)
	}

	db := getDBOrFail()
	defer db.Close()

	count, err := data.CountEncounters(db)
	if err != nil {
		return errors.Wrap(err, "failed to count encounters")
	}
	if count < 2 {
		return errors.New("no stored dataset, run generate first")
	}

	rows, err := data.GetEncounters(db, count)
	if err != nil {
		return errors.Wrap(err, "failed to load encounters")
	}

	train, test, err := dataset.Split(rows, testFraction, seed)
	if err != nil {
		return errors.Wrap(err, "failed to split dataset")
	}

	enc := dataset.NewEncoder()
	if err := enc.Fit(train); err != nil {
		return errors.Wrap(err, "failed to fit encoder")
	}

	xTrain, err := enc.Transform(train)
	if err != nil {
		return errors.Wrap(err, "failed to encode train set")
	}
	xTest, err := enc.Transform(test)
	if err != nil {
		return errors.Wrap(err, "failed to encode test set")
	}
	yTrain := dataset.Targets(train)
	yTest := dataset.Targets(test)

	runID := uuid.NewString()
	regressors := []model.Regressor{
		model.NewOLS(),
		model.NewRidge(lambda),
		model.NewElastic(alpha, l1Ratio),
	}

	res := &TrainResult{
		RunID:     runID,
		TrainRows: len(train),
		TestRows:  len(test),
	}

	stored := make([]*data.ModelMetric, 0, len(regressors)*3)
	best := ""
	bestRMSE := 0.0

	for _, reg := range regressors {
		log.Debugf("fitting %s...", reg.Name())
		if err := reg.Fit(xTrain, yTrain); err != nil {
			return errors.Wrapf(err, "failed to fit %s", reg.Name())
		}

		yhat, err := reg.Predict(xTest)
		if err != nil {
			return errors.Wrapf(err, "failed to predict with %s", reg.Name())
		}

		acc, err := metrics.ComputeAccuracy(yTest, yhat)
		if err != nil {
			return errors.Wrapf(err, "failed to score %s", reg.Name())
		}

		artifact, err := model.NewArtifact(reg, enc, xTrain, runID)
		if err != nil {
			return errors.Wrapf(err, "failed to build %s artifact", reg.Name())
		}
		artifact.TestRMSE = acc.RMSE

		path, err := artifact.Save(modelDir)
		if err != nil {
			return errors.Wrapf(err, "failed to save %s artifact", reg.Name())
		}

		res.Models = append(res.Models, &TrainedModel{
			Model:    reg.Name(),
			TestMAE:  acc.MAE,
			TestRMSE: acc.RMSE,
			TestR2:   acc.R2,
			Artifact: path,
		})

		stored = append(stored,
			&data.ModelMetric{RunID: runID, Model: reg.Name(), Metric: metrics.MetricMAE, Value: acc.MAE},
			&data.ModelMetric{RunID: runID, Model: reg.Name(), Metric: metrics.MetricRMSE, Value: acc.RMSE},
			&data.ModelMetric{RunID: runID, Model: reg.Name(), Metric: metrics.MetricR2, Value: acc.R2},
		)

		if best == "" || acc.RMSE < bestRMSE {
			best = reg.Name()
			bestRMSE = acc.RMSE
		}
	}

	res.BestModel = best
	res.Duration = time.Since(start).String()

	run := &data.TrainingRun{
		ID:         runID,
		CreatedAt:  start,
		Samples:    count,
		TrainRows:  len(train),
		TestRows:   len(test),
		Seed:       seed,
		BestModel:  best,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err := data.SaveRun(db, run); err != nil {
		return errors.Wrap(err, "failed to save training run")
	}
	if err := data.SaveMetrics(db, stored); err != nil {
		return errors.Wrap(err, "failed to save metrics")
	}

	return writeJSON(res)
}
