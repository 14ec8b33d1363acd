package main

import (
	"database/sql"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/data"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/dataset"
	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/model"
)

// resolveRun returns the run with the given ID, or the latest run when the ID
// is empty.
func resolveRun(db *sql.DB, id string) (*data.TrainingRun, error) {
	if id != "" {
		run, err := data.GetRun(db, id)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load run: %s", id)
		}
		return run, nil
	}

	run, err := data.GetLatestRun(db)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load latest run")
	}
	if run == nil {
		return nil, errors.New("no training runs found, run train first")
	}
	return run, nil
}

// heldOutRows reproduces the test split of a training run from the stored
// dataset. The split is deterministic in the run's seed, so this only works
// while the dataset is unchanged since the run; a changed row count is
// rejected.
func heldOutRows(db *sql.DB, run *data.TrainingRun) ([]dataset.Encounter, error) {
	count, err := data.CountEncounters(db)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count encounters")
	}
	if count != run.Samples {
		return nil, errors.Errorf("dataset has %d rows but run %s trained on %d; regenerate or retrain",
			count, run.ID, run.Samples)
	}

	rows, err := data.GetEncounters(db, count)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load encounters")
	}

	_, test, err := dataset.SplitN(rows, run.TestRows, run.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reproduce test split")
	}
	return test, nil
}

// groupMeans averages predictions per group value, groups sorted
// alphabetically.
func groupMeans(groups []string, yhat []float64) ([]string, []float64, error) {
	if len(groups) == 0 || len(groups) != len(yhat) {
		return nil, nil, errors.Errorf("length mismatch: %d groups, %d predictions", len(groups), len(yhat))
	}

	sums := map[string]float64{}
	counts := map[string]int{}
	for i, g := range groups {
		sums[g] += yhat[i]
		counts[g]++
	}

	names := make([]string, 0, len(sums))
	for g := range sums {
		names = append(names, g)
	}
	sort.Strings(names)

	means := make([]float64, len(names))
	for i, g := range names {
		means[i] = sums[g] / float64(counts[g])
	}
	return names, means, nil
}

// predictAll scores every row of an encoded matrix with an artifact.
func predictAll(a *model.Artifact, x mat.Matrix) ([]float64, error) {
	r, c := x.Dims()
	if c != len(a.Coefficients) {
		return nil, errors.Errorf("input has %d features, model has %d", c, len(a.Coefficients))
	}

	out := make([]float64, r)
	for i := 0; i < r; i++ {
		v := a.Intercept
		for j := 0; j < c; j++ {
			v += a.Coefficients[j] * x.At(i, j)
		}
		out[i] = v
	}
	return out, nil
}
