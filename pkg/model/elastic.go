package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

const (
	ElasticAlphaDefault   = 0.1
	ElasticL1RatioDefault = 0.5

	// Smoothing constant for |w| so the objective stays differentiable and
	// L-BFGS applies.
	l1Epsilon = 1e-8
)

// Elastic is an elastic-net regressor: squared loss with a mix of L1 and L2
// penalties, minimized with gonum's L-BFGS. The intercept is not penalized.
type Elastic struct {
	Alpha   float64
	L1Ratio float64

	intercept float64
	coefs     []float64
}

func NewElastic(alpha, l1Ratio float64) *Elastic {
	return &Elastic{Alpha: alpha, L1Ratio: l1Ratio}
}

func (m *Elastic) Name() string {
	return NameElastic
}

func (m *Elastic) Fit(x mat.Matrix, y []float64) error {
	if err := checkFitInput(x, y); err != nil {
		return errors.Wrap(err, "invalid elastic net input")
	}
	if m.Alpha < 0 {
		return errors.Errorf("alpha must be non-negative, got %f", m.Alpha)
	}
	if m.L1Ratio < 0 || m.L1Ratio > 1 {
		return errors.Errorf("l1 ratio must be in [0, 1], got %f", m.L1Ratio)
	}

	r, c := x.Dims()
	n := float64(r)
	l1 := m.Alpha * m.L1Ratio
	l2 := m.Alpha * (1 - m.L1Ratio)

	// w[0] is the intercept, w[1:] the coefficients.
	residuals := func(w []float64) []float64 {
		res := make([]float64, r)
		for i := 0; i < r; i++ {
			v := w[0]
			for j := 0; j < c; j++ {
				v += x.At(i, j) * w[j+1]
			}
			res[i] = v - y[i]
		}
		return res
	}

	problem := optimize.Problem{
		Func: func(w []float64) float64 {
			res := residuals(w)
			loss := 0.0
			for _, v := range res {
				loss += v * v
			}
			loss /= 2 * n
			for j := 1; j <= c; j++ {
				loss += l1*math.Sqrt(w[j]*w[j]+l1Epsilon) + l2/2*w[j]*w[j]
			}
			return loss
		},
		Grad: func(grad, w []float64) {
			res := residuals(w)

			g0 := 0.0
			for _, v := range res {
				g0 += v
			}
			grad[0] = g0 / n

			for j := 0; j < c; j++ {
				g := 0.0
				for i := 0; i < r; i++ {
					g += res[i] * x.At(i, j)
				}
				wj := w[j+1]
				grad[j+1] = g/n + l1*wj/math.Sqrt(wj*wj+l1Epsilon) + l2*wj
			}
		},
	}

	result, err := optimize.Minimize(problem, make([]float64, c+1), nil, &optimize.LBFGS{})
	if err != nil {
		return errors.Wrap(err, "elastic net minimization failed")
	}
	if err := result.Status.Err(); err != nil {
		return errors.Wrap(err, "elastic net did not converge")
	}

	m.intercept = result.X[0]
	m.coefs = make([]float64, c)
	copy(m.coefs, result.X[1:])
	return nil
}

func (m *Elastic) Predict(x mat.Matrix) ([]float64, error) {
	return predictLinear(x, m.intercept, m.coefs)
}

func (m *Elastic) Intercept() float64 {
	return m.intercept
}

func (m *Elastic) Coefficients() []float64 {
	return m.coefs
}
