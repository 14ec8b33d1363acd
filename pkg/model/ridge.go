package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const RidgeLambdaDefault = 1.0

// Ridge is L2-penalized least squares. The penalty is applied by appending
// sqrt(lambda) identity rows to the design matrix and solving the augmented
// system with QR, so the same library solver does all the work. The intercept
// is not penalized.
type Ridge struct {
	Lambda float64

	intercept float64
	coefs     []float64
}

func NewRidge(lambda float64) *Ridge {
	return &Ridge{Lambda: lambda}
}

func (m *Ridge) Name() string {
	return NameRidge
}

func (m *Ridge) Fit(x mat.Matrix, y []float64) error {
	if err := checkFitInput(x, y); err != nil {
		return errors.Wrap(err, "invalid ridge input")
	}
	if m.Lambda < 0 {
		return errors.Errorf("lambda must be non-negative, got %f", m.Lambda)
	}

	r, c := x.Dims()
	root := math.Sqrt(m.Lambda)

	// Augmented system: [X 1; sqrt(lambda) I] w = [y; 0]. The identity rows
	// skip the bias column.
	a := mat.NewDense(r+c, c+1, nil)
	b := mat.NewDense(r+c, 1, nil)
	for i := 0; i < r; i++ {
		a.Set(i, 0, 1)
		for j := 0; j < c; j++ {
			a.Set(i, j+1, x.At(i, j))
		}
		b.Set(i, 0, y[i])
	}
	for j := 0; j < c; j++ {
		a.Set(r+j, j+1, root)
	}

	var qr mat.QR
	qr.Factorize(a)

	var w mat.Dense
	if err := qr.SolveTo(&w, false, b); err != nil {
		return errors.Wrap(err, "ridge solve failed")
	}

	m.intercept = w.At(0, 0)
	m.coefs = make([]float64, c)
	for j := 0; j < c; j++ {
		m.coefs[j] = w.At(j+1, 0)
	}
	return nil
}

func (m *Ridge) Predict(x mat.Matrix) ([]float64, error) {
	return predictLinear(x, m.intercept, m.coefs)
}

func (m *Ridge) Intercept() float64 {
	return m.intercept
}

func (m *Ridge) Coefficients() []float64 {
	return m.coefs
}
