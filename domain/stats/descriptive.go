package stats

import (
	"math"

	"github.com/montanaflynn/stats"

	"qastats/domain/core"
)

// Describe computes descriptive statistics for a non-empty sample.
func Describe(s Sample) (Summary, error) {
	if len(s) == 0 {
		return Summary{}, core.ErrInsufficientData
	}

	data := stats.Float64Data(s)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)

	summary := Summary{
		N:      len(s),
		Mean:   mean,
		Median: median,
		Min:    min,
		Max:    max,
	}
	if len(s) >= 2 && !s.constant() {
		variance, _ := stats.SampleVariance(data)
		summary.Variance = variance
		summary.StdDev = math.Sqrt(variance)
	}
	return summary, nil
}

// moments holds the quantities every two-sample formula needs.
type moments struct {
	n        float64
	mean     float64
	variance float64 // ddof=1
	constant bool    // every value equal; variance is exactly 0
}

func sampleMoments(s Sample, group string) (moments, error) {
	if len(s) < 2 {
		return moments{}, core.NewInsufficientDataError(group, len(s), 2)
	}
	data := stats.Float64Data(s)
	mean, err := stats.Mean(data)
	if err != nil {
		return moments{}, err
	}
	m := moments{n: float64(len(s)), mean: mean, constant: s.constant()}
	if m.constant {
		// Rounding in the mean leaves a tiny spurious variance otherwise
		m.mean = s[0]
		return m, nil
	}
	if m.variance, err = stats.SampleVariance(data); err != nil {
		return moments{}, err
	}
	return m, nil
}

func (s Sample) constant() bool {
	if len(s) == 0 {
		return true
	}
	for _, v := range s[1:] {
		if v != s[0] {
			return false
		}
	}
	return true
}

func pairMoments(a, b Sample) (moments, moments, error) {
	ma, err := sampleMoments(a, "A")
	if err != nil {
		return moments{}, moments{}, err
	}
	mb, err := sampleMoments(b, "B")
	if err != nil {
		return moments{}, moments{}, err
	}
	return ma, mb, nil
}
