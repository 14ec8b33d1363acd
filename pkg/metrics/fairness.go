package metrics

import (
	"math"
	"slices"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

const (
	MetricSelectionRate = "selection_rate"
	MetricTPR           = "tpr"
	MetricFPR           = "fpr"
	MetricGroupMAE      = "group_mae"
	MetricMeanPredicted = "mean_predicted"

	MetricParityGap = "parity_gap"
	MetricTPRGap    = "tpr_gap"
	MetricFPRGap    = "fpr_gap"

	HighCostQuantileDefault = 0.5
)

// GroupRates holds the per-group fairness measures for one value of a
// protected attribute, computed on the high-cost binarization of the target.
type GroupRates struct {
	Group         string  `json:"group"`
	Count         int     `json:"count"`
	SelectionRate float64 `json:"selection_rate"`
	TPR           float64 `json:"tpr"`
	FPR           float64 `json:"fpr"`
	MAE           float64 `json:"mae"`
	MeanPredicted float64 `json:"mean_predicted"`
}

// FairnessReport compares model outcomes across the groups of one attribute.
// ParityGap is the demographic parity difference (max pairwise selection rate
// gap); TPRGap and FPRGap together bound the equalized odds violation.
type FairnessReport struct {
	Attribute string       `json:"attribute"`
	Threshold float64      `json:"threshold"`
	Groups    []GroupRates `json:"groups"`
	ParityGap float64      `json:"parity_gap"`
	TPRGap    float64      `json:"tpr_gap"`
	FPRGap    float64      `json:"fpr_gap"`
}

// HighCostThreshold returns the quantile of observed charges used to binarize
// the target for the parity and odds metrics.
func HighCostThreshold(y []float64, quantile float64) (float64, error) {
	if len(y) == 0 {
		return 0, errors.New("no observations")
	}
	if quantile <= 0 || quantile >= 1 {
		return 0, errors.Errorf("quantile must be in (0, 1), got %f", quantile)
	}

	sorted := slices.Clone(y)
	sort.Float64s(sorted)
	return stat.Quantile(quantile, stat.Empirical, sorted, nil), nil
}

// EvaluateFairness computes the fairness report for one protected attribute.
// groups[i] is the attribute value of observation i.
func EvaluateFairness(attribute string, groups []string, y, yhat []float64, threshold float64) (*FairnessReport, error) {
	if len(y) == 0 {
		return nil, errors.New("no observations")
	}
	if len(groups) != len(y) || len(yhat) != len(y) {
		return nil, errors.Errorf("length mismatch: %d groups, %d observations, %d predictions",
			len(groups), len(y), len(yhat))
	}

	type counts struct {
		n, selected     int
		tp, fp, fn, tn  int
		absErr, predSum float64
	}

	byGroup := map[string]*counts{}
	order := []string{}
	for i := range y {
		c, ok := byGroup[groups[i]]
		if !ok {
			c = &counts{}
			byGroup[groups[i]] = c
			order = append(order, groups[i])
		}

		actualHigh := y[i] > threshold
		predictedHigh := yhat[i] > threshold

		c.n++
		c.absErr += math.Abs(y[i] - yhat[i])
		c.predSum += yhat[i]
		if predictedHigh {
			c.selected++
		}
		switch {
		case actualHigh && predictedHigh:
			c.tp++
		case actualHigh && !predictedHigh:
			c.fn++
		case !actualHigh && predictedHigh:
			c.fp++
		default:
			c.tn++
		}
	}
	sort.Strings(order)

	report := &FairnessReport{
		Attribute: attribute,
		Threshold: threshold,
		Groups:    make([]GroupRates, 0, len(order)),
	}

	var selRates, tprs, fprs []float64
	for _, name := range order {
		c := byGroup[name]
		g := GroupRates{
			Group:         name,
			Count:         c.n,
			SelectionRate: float64(c.selected) / float64(c.n),
			MAE:           c.absErr / float64(c.n),
			MeanPredicted: c.predSum / float64(c.n),
		}
		selRates = append(selRates, g.SelectionRate)

		// TPR/FPR are undefined for groups with no positives/negatives;
		// those groups are excluded from the corresponding gap.
		if c.tp+c.fn > 0 {
			g.TPR = float64(c.tp) / float64(c.tp+c.fn)
			tprs = append(tprs, g.TPR)
		}
		if c.fp+c.tn > 0 {
			g.FPR = float64(c.fp) / float64(c.fp+c.tn)
			fprs = append(fprs, g.FPR)
		}
		report.Groups = append(report.Groups, g)
	}

	report.ParityGap = maxGap(selRates)
	report.TPRGap = maxGap(tprs)
	report.FPRGap = maxGap(fprs)

	return report, nil
}

func maxGap(rates []float64) float64 {
	if len(rates) < 2 {
		return 0
	}
	lo, hi := rates[0], rates[0]
	for _, r := range rates[1:] {
		lo = math.Min(lo, r)
		hi = math.Max(hi, r)
	}
	return hi - lo
}
