// Package report renders evaluation and interpretability plots to PNG files.
package report

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	plotWidth  = 7 * vg.Inch
	plotHeight = 5 * vg.Inch

	histogramBins = 20
)

// PredictedVsActual draws a scatter of predictions against observations with
// the identity line for reference.
func PredictedVsActual(y, yhat []float64, path string) error {
	if len(y) == 0 || len(y) != len(yhat) {
		return errors.Errorf("invalid input: %d observations, %d predictions", len(y), len(yhat))
	}

	pts := make(plotter.XYs, len(y))
	lo, hi := y[0], y[0]
	for i := range y {
		pts[i].X = y[i]
		pts[i].Y = yhat[i]
		lo = min(lo, y[i])
		hi = max(hi, y[i])
	}

	p := plot.New()
	p.Title.Text = "Predicted vs Actual Charges"
	p.X.Label.Text = "Actual ($)"
	p.Y.Label.Text = "Predicted ($)"

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "failed to build scatter")
	}
	p.Add(s)

	ident, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return errors.Wrap(err, "failed to build identity line")
	}
	p.Add(ident)

	return savePlot(p, path)
}

// ResidualHistogram draws the distribution of prediction errors.
func ResidualHistogram(y, yhat []float64, path string) error {
	if len(y) == 0 || len(y) != len(yhat) {
		return errors.Errorf("invalid input: %d observations, %d predictions", len(y), len(yhat))
	}

	vals := make(plotter.Values, len(y))
	for i := range y {
		vals[i] = y[i] - yhat[i]
	}

	p := plot.New()
	p.Title.Text = "Residual Distribution"
	p.X.Label.Text = "Residual ($)"
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(vals, histogramBins)
	if err != nil {
		return errors.Wrap(err, "failed to build histogram")
	}
	p.Add(h)

	return savePlot(p, path)
}

// Bars draws a labeled bar chart, used for feature importance and group mean
// predictions.
func Bars(title, yLabel string, names []string, values []float64, path string) error {
	if len(names) == 0 || len(names) != len(values) {
		return errors.Errorf("invalid input: %d names, %d values", len(names), len(values))
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(18))
	if err != nil {
		return errors.Wrap(err, "failed to build bar chart")
	}
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = -0.9
	p.X.Tick.Label.XAlign = -1
	p.X.Tick.Label.YAlign = 0

	return savePlot(p, path)
}

func savePlot(p *plot.Plot, path string) error {
	if path == "" {
		return errors.New("output path required")
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return errors.Wrapf(err, "failed to save plot: %s", path)
	}
	log.Debugf("saved plot: %s", path)
	return nil
}
