package model

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// OLS is ordinary least squares, solved through a QR factorization.
type OLS struct {
	intercept float64
	coefs     []float64
}

func NewOLS() *OLS {
	return &OLS{}
}

func (m *OLS) Name() string {
	return NameOLS
}

func (m *OLS) Fit(x mat.Matrix, y []float64) error {
	if err := checkFitInput(x, y); err != nil {
		return errors.Wrap(err, "invalid OLS input")
	}

	a := withBias(x)
	b := mat.NewDense(len(y), 1, y)

	var qr mat.QR
	qr.Factorize(a)

	var w mat.Dense
	if err := qr.SolveTo(&w, false, b); err != nil {
		return errors.Wrap(err, "OLS solve failed")
	}

	_, c := x.Dims()
	m.intercept = w.At(0, 0)
	m.coefs = make([]float64, c)
	for j := 0; j < c; j++ {
		m.coefs[j] = w.At(j+1, 0)
	}
	return nil
}

func (m *OLS) Predict(x mat.Matrix) ([]float64, error) {
	return predictLinear(x, m.intercept, m.coefs)
}

func (m *OLS) Intercept() float64 {
	return m.intercept
}

func (m *OLS) Coefficients() []float64 {
	return m.coefs
}
