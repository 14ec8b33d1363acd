package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighCostThreshold(t *testing.T) {
	y := []float64{100, 200, 300, 400, 500}

	v, err := HighCostThreshold(y, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 300, v, 1e-12)
}

func TestHighCostThreshold_Invalid(t *testing.T) {
	_, err := HighCostThreshold(nil, 0.5)
	assert.Error(t, err)

	_, err = HighCostThreshold([]float64{1}, 0)
	assert.Error(t, err)

	_, err = HighCostThreshold([]float64{1}, 1)
	assert.Error(t, err)
}

func TestEvaluateFairness_ZeroGapsForIdenticalGroups(t *testing.T) {
	// Both groups see the same values, so every gap must be zero.
	groups := []string{"a", "a", "a", "b", "b", "b"}
	y := []float64{100, 200, 300, 100, 200, 300}
	yhat := []float64{110, 190, 310, 110, 190, 310}

	r, err := EvaluateFairness("gender", groups, y, yhat, 150)
	require.NoError(t, err)

	assert.Equal(t, "gender", r.Attribute)
	require.Len(t, r.Groups, 2)
	assert.Zero(t, r.ParityGap)
	assert.Zero(t, r.TPRGap)
	assert.Zero(t, r.FPRGap)
	assert.InDelta(t, r.Groups[0].MAE, r.Groups[1].MAE, 1e-12)
}

func TestEvaluateFairness_HandChecked(t *testing.T) {
	// Group a: both predicted high, one actually high.
	// Group b: neither predicted high, one actually high.
	groups := []string{"a", "a", "b", "b"}
	y := []float64{200, 100, 200, 100}
	yhat := []float64{250, 250, 50, 50}

	r, err := EvaluateFairness("race", groups, y, yhat, 150)
	require.NoError(t, err)

	require.Len(t, r.Groups, 2)
	ga, gb := r.Groups[0], r.Groups[1]
	assert.Equal(t, "a", ga.Group)
	assert.Equal(t, "b", gb.Group)

	assert.InDelta(t, 1.0, ga.SelectionRate, 1e-12)
	assert.InDelta(t, 0.0, gb.SelectionRate, 1e-12)
	assert.InDelta(t, 1.0, r.ParityGap, 1e-12)

	assert.InDelta(t, 1.0, ga.TPR, 1e-12)
	assert.InDelta(t, 0.0, gb.TPR, 1e-12)
	assert.InDelta(t, 1.0, r.TPRGap, 1e-12)

	assert.InDelta(t, 1.0, ga.FPR, 1e-12)
	assert.InDelta(t, 0.0, gb.FPR, 1e-12)
	assert.InDelta(t, 1.0, r.FPRGap, 1e-12)
}

func TestEvaluateFairness_GroupsSorted(t *testing.T) {
	groups := []string{"z", "m", "a"}
	y := []float64{1, 2, 3}
	yhat := []float64{1, 2, 3}

	r, err := EvaluateFairness("insurance_type", groups, y, yhat, 2)
	require.NoError(t, err)

	require.Len(t, r.Groups, 3)
	assert.Equal(t, "a", r.Groups[0].Group)
	assert.Equal(t, "m", r.Groups[1].Group)
	assert.Equal(t, "z", r.Groups[2].Group)
}

func TestEvaluateFairness_SingleGroup(t *testing.T) {
	groups := []string{"a", "a"}
	y := []float64{100, 200}
	yhat := []float64{100, 200}

	r, err := EvaluateFairness("gender", groups, y, yhat, 150)
	require.NoError(t, err)

	assert.Zero(t, r.ParityGap)
	assert.Zero(t, r.TPRGap)
	assert.Zero(t, r.FPRGap)
}

func TestEvaluateFairness_Invalid(t *testing.T) {
	_, err := EvaluateFairness("gender", nil, nil, nil, 0)
	assert.Error(t, err)

	_, err = EvaluateFairness("gender", []string{"a"}, []float64{1, 2}, []float64{1, 2}, 0)
	assert.Error(t, err)
}
