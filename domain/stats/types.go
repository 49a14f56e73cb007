package stats

import (
	"encoding/json"
	"math"
)

// ============================================================================
// SAMPLES AND RESULTS
// ============================================================================

// SignificanceLevel is the fixed threshold every verdict in this package is
// decided against. It is not the confidence level of an interval.
const SignificanceLevel = 0.05

// Sample is an ordered sequence of finite observations for one group.
type Sample []float64

// Len returns the number of observations
func (s Sample) Len() int {
	return len(s)
}

// Value is one cleaned cell: either a number or missing.
type Value struct {
	Number  float64 `json:"number"`
	Missing bool    `json:"missing"`
}

// TestKind identifies which comparison produced a TestResult
type TestKind string

const (
	TestLevene  TestKind = "levene"
	TestStudent TestKind = "student"
	TestWelch   TestKind = "welch"
)

// Method is the standard-error / degrees-of-freedom formula used for a mean difference.
type Method string

const (
	MethodPooled Method = "pooled"
	MethodWelch  Method = "unequal-variance"
)

// Label returns the human-readable method name used in reports
func (m Method) Label() string {
	switch m {
	case MethodPooled:
		return "Student (equal variances)"
	case MethodWelch:
		return "Welch (unequal variances)"
	default:
		return string(m)
	}
}

// TestResult is the immutable outcome of a single two-sample test.
type TestResult struct {
	Test             TestKind `json:"test"`
	Verdict          string   `json:"verdict"`           // Human-readable decision
	Statistic        float64  `json:"statistic"`         // W for Levene, t otherwise
	PValue           float64  `json:"p_value"`           // Two-sided (0.0 to 1.0)
	DegreesOfFreedom float64  `json:"degrees_of_freedom"` // Denominator df for Levene
	MeanDifference   float64  `json:"mean_difference"`   // mean(a) - mean(b); zero for Levene
	Significant      bool     `json:"significant"`       // PValue < SignificanceLevel
	N1               int      `json:"n1"`
	N2               int      `json:"n2"`
}

// MarshalJSON writes a non-finite statistic (W = +Inf when both groups have
// zero spread around their own medians) as null.
func (r TestResult) MarshalJSON() ([]byte, error) {
	type plain TestResult
	out := struct {
		plain
		Statistic *float64 `json:"statistic"`
	}{plain: plain(r)}
	if !math.IsInf(r.Statistic, 0) && !math.IsNaN(r.Statistic) {
		out.Statistic = &r.Statistic
	}
	return json.Marshal(out)
}

// ConfidenceIntervalReport describes a two-sided interval for mean(a) - mean(b).
type ConfidenceIntervalReport struct {
	Method            Method  `json:"method"`
	MeanDifference    float64 `json:"mean_difference"`
	Lower             float64 `json:"lower"`
	Upper             float64 `json:"upper"`
	DegreesOfFreedom  float64 `json:"degrees_of_freedom"`
	StandardError     float64 `json:"standard_error"`
	CriticalValue     float64 `json:"critical_value"`
	Margin            float64 `json:"margin"`
	Alpha             float64 `json:"alpha"`
	ConfidencePercent float64 `json:"confidence_percent"` // 100 * (1 - Alpha)
	LevenePValue      float64 `json:"levene_p_value"`     // Drove the Method choice
}

// Width returns Upper - Lower
func (r ConfidenceIntervalReport) Width() float64 {
	return r.Upper - r.Lower
}

// Summary holds descriptive statistics for one sample
type Summary struct {
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Variance float64 `json:"variance"` // ddof=1; zero when N < 2
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}
