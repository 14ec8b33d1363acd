// Package explain produces additive feature attributions for the linear
// models. For a linear model the Shapley value of feature j has the closed
// form coef_j * (x_j - mean_j) against the train-set mean baseline, so no
// sampling explainer is needed: attributions are exact and sum to the
// difference between the prediction and the baseline prediction.
package explain

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/snehaaa8/hospital-treatment-pricing-predictor/pkg/model"
)

// Attribution is one feature's contribution to a prediction (or, for global
// importance, its mean absolute contribution).
type Attribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// Explanation attributes a single prediction to its input features.
type Explanation struct {
	Baseline      float64       `json:"baseline"`
	Prediction    float64       `json:"prediction"`
	Contributions []Attribution `json:"contributions"`
}

// Explainer derives attributions from a model artifact.
type Explainer struct {
	artifact *model.Artifact
}

func New(a *model.Artifact) (*Explainer, error) {
	if a == nil {
		return nil, errors.New("artifact required")
	}
	if len(a.FeatureMeans) != len(a.Coefficients) {
		return nil, errors.Errorf("artifact has %d feature means for %d coefficients",
			len(a.FeatureMeans), len(a.Coefficients))
	}
	return &Explainer{artifact: a}, nil
}

// Baseline is the model's prediction at the train-set feature mean.
func (e *Explainer) Baseline() float64 {
	v := e.artifact.Intercept
	for j, c := range e.artifact.Coefficients {
		v += c * e.artifact.FeatureMeans[j]
	}
	return v
}

// Explain attributes one encoded observation. Contributions are ordered by
// absolute value, largest first, and sum to Prediction - Baseline.
func (e *Explainer) Explain(x []float64) (*Explanation, error) {
	a := e.artifact
	if len(x) != len(a.Coefficients) {
		return nil, errors.Errorf("input has %d features, model has %d", len(x), len(a.Coefficients))
	}

	out := &Explanation{
		Baseline:      e.Baseline(),
		Contributions: make([]Attribution, len(x)),
	}

	pred := a.Intercept
	for j, c := range a.Coefficients {
		pred += c * x[j]
		out.Contributions[j] = Attribution{
			Feature: a.FeatureNames[j],
			Value:   c * (x[j] - a.FeatureMeans[j]),
		}
	}
	out.Prediction = pred

	sort.Slice(out.Contributions, func(i, j int) bool {
		return abs(out.Contributions[i].Value) > abs(out.Contributions[j].Value)
	})
	return out, nil
}

// GlobalImportance is the mean absolute contribution of each feature over a
// dataset, ordered largest first.
func (e *Explainer) GlobalImportance(x mat.Matrix) ([]Attribution, error) {
	a := e.artifact
	r, c := x.Dims()
	if r == 0 {
		return nil, errors.New("no observations")
	}
	if c != len(a.Coefficients) {
		return nil, errors.Errorf("input has %d features, model has %d", c, len(a.Coefficients))
	}

	sums := make([]float64, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sums[j] += abs(a.Coefficients[j] * (x.At(i, j) - a.FeatureMeans[j]))
		}
	}

	out := make([]Attribution, c)
	for j := 0; j < c; j++ {
		out[j] = Attribution{Feature: a.FeatureNames[j], Value: sums[j] / float64(r)}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
