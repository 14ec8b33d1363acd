package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPlotFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPredictedVsActual(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scatter.png")

	y := []float64{1000, 2000, 3000, 4000}
	yhat := []float64{1100, 1900, 3200, 3900}
	require.NoError(t, PredictedVsActual(y, yhat, path))
	assertPlotFile(t, path)
}

func TestPredictedVsActual_Invalid(t *testing.T) {
	assert.Error(t, PredictedVsActual(nil, nil, "out.png"))
	assert.Error(t, PredictedVsActual([]float64{1}, []float64{1, 2}, "out.png"))
}

func TestResidualHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "residuals.png")

	y := []float64{1000, 2000, 3000, 4000, 5000}
	yhat := []float64{900, 2100, 2950, 4300, 4800}
	require.NoError(t, ResidualHistogram(y, yhat, path))
	assertPlotFile(t, path)
}

func TestBars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.png")

	names := []string{"age", "length_of_stay", "treatment_type=Surgery"}
	values := []float64{1200, 800, 2400}
	require.NoError(t, Bars("Feature Importance", "Mean |contribution| ($)", names, values, path))
	assertPlotFile(t, path)
}

func TestBars_Invalid(t *testing.T) {
	assert.Error(t, Bars("t", "y", nil, nil, "out.png"))
	assert.Error(t, Bars("t", "y", []string{"a"}, []float64{1, 2}, "out.png"))
}

func TestSavePlot_EmptyPath(t *testing.T) {
	assert.Error(t, PredictedVsActual([]float64{1}, []float64{1}, ""))
}
