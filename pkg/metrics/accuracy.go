// Package metrics computes regression accuracy and group fairness measures
// over held-out predictions.
package metrics

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

const (
	MetricMAE  = "mae"
	MetricRMSE = "rmse"
	MetricR2   = "r2"
)

// Accuracy holds the standard regression error measures.
type Accuracy struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}

// ComputeAccuracy evaluates predictions against observed values.
func ComputeAccuracy(y, yhat []float64) (*Accuracy, error) {
	if len(y) == 0 {
		return nil, errors.New("no observations")
	}
	if len(y) != len(yhat) {
		return nil, errors.Errorf("length mismatch: %d observations, %d predictions", len(y), len(yhat))
	}

	n := float64(len(y))
	mean := stat.Mean(y, nil)

	var absSum, sqSum, totSum float64
	for i := range y {
		r := y[i] - yhat[i]
		absSum += math.Abs(r)
		sqSum += r * r
		d := y[i] - mean
		totSum += d * d
	}

	a := &Accuracy{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
	}

	// R2 is undefined for a constant target; report 0 rather than NaN.
	if totSum > 0 {
		a.R2 = 1 - sqSum/totSum
	}
	return a, nil
}
