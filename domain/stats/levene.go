package stats

import (
	"math"

	"github.com/montanaflynn/stats"

	"qastats/domain/core"
)

// Levene tests equality of variances with the Brown-Forsythe variant of
// Levene's test: each sample is replaced by absolute deviations from its
// median and a one-way ANOVA F statistic is computed across the two groups.
func Levene(a, b Sample) (TestResult, error) {
	if len(a) < 2 {
		return TestResult{}, core.NewInsufficientDataError("A", len(a), 2)
	}
	if len(b) < 2 {
		return TestResult{}, core.NewInsufficientDataError("B", len(b), 2)
	}

	za, err := absoluteDeviations(a)
	if err != nil {
		return TestResult{}, err
	}
	zb, err := absoluteDeviations(b)
	if err != nil {
		return TestResult{}, err
	}

	n1, n2 := float64(len(za)), float64(len(zb))
	total := n1 + n2
	meanA := mean(za)
	meanB := mean(zb)
	grand := (n1*meanA + n2*meanB) / total

	between := n1*(meanA-grand)*(meanA-grand) + n2*(meanB-grand)*(meanB-grand)
	within := sumSquaredDeviations(za, meanA) + sumSquaredDeviations(zb, meanB)

	const k = 2.0
	df1, df2 := k-1, total-k

	var w float64
	switch {
	case within == 0 && between == 0:
		// Both groups spread identically around their medians with no
		// within-group variation, e.g. two constant samples.
		return TestResult{}, core.ErrDegenerateVariance
	case within == 0:
		w = math.Inf(1)
	default:
		w = (df2 / df1) * between / within
	}

	p := FSurvival(w, df1, df2)
	result := TestResult{
		Test:             TestLevene,
		Statistic:        w,
		PValue:           p,
		DegreesOfFreedom: df2,
		Significant:      p < SignificanceLevel,
		N1:               len(a),
		N2:               len(b),
	}
	if result.Significant {
		result.Verdict = "Variances are statistically different. Consider using the Welch test."
	} else {
		result.Verdict = "Variances are NOT statistically different. Proceed with the t-test."
	}
	return result, nil
}

func absoluteDeviations(s Sample) ([]float64, error) {
	median, err := stats.Median(stats.Float64Data(s))
	if err != nil {
		return nil, err
	}
	z := make([]float64, len(s))
	for i, x := range s {
		z[i] = math.Abs(x - median)
	}
	return z, nil
}

func mean(data []float64) float64 {
	m, _ := stats.Mean(data)
	return m
}

func sumSquaredDeviations(data []float64, center float64) float64 {
	sum := 0.0
	for _, x := range data {
		d := x - center
		sum += d * d
	}
	return sum
}
