// Package model wraps gonum solvers behind three regressors with a common
// fit/predict interface. All three are linear in the encoded features, so a
// fitted model is fully described by an intercept and a coefficient vector.
package model

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const (
	NameOLS     = "ols"
	NameRidge   = "ridge"
	NameElastic = "elastic"
)

// Regressor is the common surface of the three models.
type Regressor interface {
	Name() string
	Fit(x mat.Matrix, y []float64) error
	Predict(x mat.Matrix) ([]float64, error)
	Intercept() float64
	Coefficients() []float64
}

var errNotFitted = errors.New("model not fitted")

// withBias prepends a column of ones so the solver estimates the intercept
// along with the coefficients.
func withBias(x mat.Matrix) *mat.Dense {
	r, c := x.Dims()
	a := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		a.Set(i, 0, 1)
		for j := 0; j < c; j++ {
			a.Set(i, j+1, x.At(i, j))
		}
	}
	return a
}

func checkFitInput(x mat.Matrix, y []float64) error {
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return errors.New("empty design matrix")
	}
	if len(y) != r {
		return errors.Errorf("target length %d does not match %d rows", len(y), r)
	}
	if r < c+1 {
		return errors.Errorf("underdetermined system: %d rows for %d features", r, c)
	}
	return nil
}

func predictLinear(x mat.Matrix, intercept float64, coefs []float64) ([]float64, error) {
	if coefs == nil {
		return nil, errNotFitted
	}

	r, c := x.Dims()
	if c != len(coefs) {
		return nil, errors.Errorf("input has %d features, model has %d", c, len(coefs))
	}

	out := make([]float64, r)
	for i := 0; i < r; i++ {
		v := intercept
		for j := 0; j < c; j++ {
			v += x.At(i, j) * coefs[j]
		}
		out[i] = v
	}
	return out, nil
}
