package stats

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qastats/domain/core"
)

var (
	lowGroup  = Sample{2, 1, 3, 4}
	highGroup = Sample{6, 5, 7, 9}
)

// aeq returns true if expect and got are equal to 8 significant
// figures (1 part in 100 million).
func aeq(expect, got float64) bool {
	if expect < 0 && got < 0 {
		expect, got = -expect, -got
	}
	return expect*0.99999999 <= got && got*0.99999999 <= expect
}

func TestTTest_ReferenceValues(t *testing.T) {
	r, err := TTest(lowGroup, highGroup)
	require.NoError(t, err)
	if !aeq(-3.9703446152237674, r.Statistic) || !aeq(0.0073640592242113214, r.PValue) || !aeq(6, r.DegreesOfFreedom) {
		t.Errorf("unexpected pooled result %+v", r)
	}
	assert.Equal(t, TestStudent, r.Test)
	assert.True(t, r.Significant)
	assert.Equal(t, "Means are statistically different.", r.Verdict)
	assert.Equal(t, 4, r.N1)
	assert.Equal(t, 4, r.N2)

	w, err := WelchTTest(lowGroup, highGroup)
	require.NoError(t, err)
	if !aeq(-3.9703446152237674, w.Statistic) || !aeq(0.0085128631313781695, w.PValue) || !aeq(5.584615384615385, w.DegreesOfFreedom) {
		t.Errorf("unexpected Welch result %+v", w)
	}
	assert.Equal(t, "Means are statistically different (Welch).", w.Verdict)
}

func TestTTest_IdenticalSamples(t *testing.T) {
	r, err := TTest(lowGroup, lowGroup)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Statistic)
	assert.InDelta(t, 1.0, r.PValue, 1e-12)
	assert.False(t, r.Significant)
	assert.Equal(t, "Means are NOT statistically different.", r.Verdict)

	w, err := WelchTTest(lowGroup, lowGroup)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, w.PValue, 1e-12)
	assert.Equal(t, "Means are NOT statistically different (Welch).", w.Verdict)
}

func TestTTest_Symmetry(t *testing.T) {
	a := Sample{3.1, 4.7, 5.2, 2.9, 4.4, 3.8}
	b := Sample{5.5, 6.1, 4.9, 7.3, 6.6}

	for _, run := range []func(a, b Sample) (TestResult, error){TTest, WelchTTest} {
		ab, err := run(a, b)
		require.NoError(t, err)
		ba, err := run(b, a)
		require.NoError(t, err)

		assert.InDelta(t, ab.PValue, ba.PValue, 1e-12)
		assert.Equal(t, ab.MeanDifference, -ba.MeanDifference)
		assert.InDelta(t, ab.Statistic, -ba.Statistic, 1e-12)
		assert.InDelta(t, ab.DegreesOfFreedom, ba.DegreesOfFreedom, 1e-12)
	}
}

func TestPooledMatchesWelchForEqualSizeAndVariance(t *testing.T) {
	a := Sample{1, 2, 3, 4, 5}
	b := Sample{3, 4, 5, 6, 7}

	pooled, err := TTest(a, b)
	require.NoError(t, err)
	welch, err := WelchTTest(a, b)
	require.NoError(t, err)

	assert.InDelta(t, pooled.Statistic, welch.Statistic, 1e-12)
	assert.InDelta(t, pooled.PValue, welch.PValue, 1e-12)
	assert.InDelta(t, pooled.DegreesOfFreedom, welch.DegreesOfFreedom, 1e-9)
}

func TestWelchDegreesOfFreedomBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		n1 := 2 + rng.Intn(30)
		n2 := 2 + rng.Intn(30)
		a := make(Sample, n1)
		b := make(Sample, n2)
		scaleA := 0.1 + rng.Float64()*10
		scaleB := 0.1 + rng.Float64()*10
		for j := range a {
			a[j] = rng.NormFloat64() * scaleA
		}
		for j := range b {
			b[j] = 5 + rng.NormFloat64()*scaleB
		}

		df, err := WelchDegreesOfFreedom(a, b)
		require.NoError(t, err)

		lower := float64(min(n1, n2) - 1)
		upper := float64(n1 + n2 - 2)
		if df < lower-1e-9 || df > upper+1e-9 {
			t.Fatalf("n1=%d n2=%d: df %.6f outside [%.0f, %.0f]", n1, n2, df, lower, upper)
		}
	}
}

func TestTTest_ClearlySeparatedGroups(t *testing.T) {
	a := Sample{10, 12, 9, 11, 10}
	b := Sample{20, 18, 19, 21, 22}

	r, err := TTest(a, b)
	require.NoError(t, err)
	assert.Less(t, r.PValue, 0.05)
	assert.True(t, r.Significant)
	assert.Equal(t, "Means are statistically different.", r.Verdict)
	assert.InDelta(t, -9.6, r.MeanDifference, 1e-12)
	assert.InDelta(t, -10.0, r.MeanDifference, 0.5)
}

func TestTTest_InsufficientData(t *testing.T) {
	tests := []struct {
		name string
		a, b Sample
	}{
		{"empty A", Sample{}, Sample{1, 2}},
		{"single A", Sample{1}, Sample{1, 2}},
		{"single B", Sample{1, 2}, Sample{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TTest(tt.a, tt.b)
			assert.ErrorIs(t, err, core.ErrInsufficientData)
			_, err = WelchTTest(tt.a, tt.b)
			assert.ErrorIs(t, err, core.ErrInsufficientData)
			_, err = Levene(tt.a, tt.b)
			assert.ErrorIs(t, err, core.ErrInsufficientData)
			_, err = ConfidenceInterval(tt.a, tt.b, 0.05)
			assert.ErrorIs(t, err, core.ErrInsufficientData)
		})
	}
}

func TestTTest_ConstantSamples(t *testing.T) {
	a := Sample{5, 5, 5, 5}
	b := Sample{7, 7, 7}

	_, err := TTest(a, b)
	assert.ErrorIs(t, err, core.ErrDegenerateVariance)
	_, err = WelchTTest(a, b)
	assert.ErrorIs(t, err, core.ErrDegenerateVariance)
	_, err = WelchDegreesOfFreedom(a, b)
	assert.ErrorIs(t, err, core.ErrDegenerateVariance)
}

func TestConstantSamplesWithInexactMeans(t *testing.T) {
	// The float mean of {0.1, 0.1, 0.1} is not exactly 0.1
	a := Sample{0.1, 0.1, 0.1}
	b := Sample{0.2, 0.2, 0.2}

	_, err := Levene(a, b)
	assert.ErrorIs(t, err, core.ErrDegenerateVariance)
	_, err = TTest(a, b)
	assert.ErrorIs(t, err, core.ErrDegenerateVariance)
	_, err = WelchTTest(a, b)
	assert.ErrorIs(t, err, core.ErrDegenerateVariance)
	_, err = WelchDegreesOfFreedom(a, b)
	assert.ErrorIs(t, err, core.ErrDegenerateVariance)
	_, err = ConfidenceInterval(a, b, 0.05)
	assert.ErrorIs(t, err, core.ErrDegenerateVariance)

	s, err := Describe(a)
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Variance)
	assert.Equal(t, 0.0, s.StdDev)
}

func TestTTest_OneConstantSample(t *testing.T) {
	result, err := TTest(Sample{0.1, 0.1, 0.1}, Sample{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, aeq(-1.9, result.MeanDifference))
	assert.True(t, result.PValue > 0 && result.PValue < 1)
}

func TestLevene_ReferenceStatistic(t *testing.T) {
	r, err := Levene(lowGroup, highGroup)
	require.NoError(t, err)

	// Absolute median deviations are {0.5,1.5,0.5,1.5} and {0.5,1.5,0.5,2.5}.
	assert.InDelta(t, 0.2, r.Statistic, 1e-12)
	assert.Equal(t, 6.0, r.DegreesOfFreedom)
	// F(1, d) is the square of t(d).
	assert.InDelta(t, TwoSidedPValue(math.Sqrt(0.2), 6), r.PValue, 1e-9)
	assert.False(t, r.Significant)
	assert.Equal(t, "Variances are NOT statistically different. Proceed with the t-test.", r.Verdict)
}

func TestLevene_DifferentSpreads(t *testing.T) {
	tight := Sample{10, 10.1, 9.9, 10, 10.05, 9.95, 10, 10.02}
	wide := Sample{0, 20, 5, 15, -10, 30, 2, 18}

	r, err := Levene(tight, wide)
	require.NoError(t, err)
	assert.Less(t, r.PValue, 0.05)
	assert.True(t, r.Significant)
	assert.Equal(t, "Variances are statistically different. Consider using the Welch test.", r.Verdict)

	method, levene, err := SelectMethod(tight, wide)
	require.NoError(t, err)
	assert.Equal(t, MethodWelch, method)
	assert.Equal(t, r.PValue, levene.PValue)
}

func TestLevene_ConstantSamples(t *testing.T) {
	_, err := Levene(Sample{5, 5, 5, 5}, Sample{5, 5, 5, 5})
	assert.ErrorIs(t, err, core.ErrDegenerateVariance)

	_, err = Levene(Sample{1, 1, 1}, Sample{9, 9})
	assert.ErrorIs(t, err, core.ErrDegenerateVariance)

	_, _, err = SelectMethod(Sample{5, 5, 5, 5}, Sample{5, 5, 5, 5})
	assert.ErrorIs(t, err, core.ErrDegenerateVariance)
}

func TestLevene_ZeroWithinGroupSpread(t *testing.T) {
	// Deviations are {1,1} and {0,0}: no within-group spread but clearly different groups.
	r, err := Levene(Sample{1, 3}, Sample{5, 5})
	require.NoError(t, err)
	assert.True(t, math.IsInf(r.Statistic, 1))
	assert.Equal(t, 0.0, r.PValue)
	assert.True(t, r.Significant)

	encoded, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"statistic":null`)
	assert.Contains(t, string(encoded), `"test":"levene"`)
}

func TestTestResult_MarshalFinite(t *testing.T) {
	r, err := TTest(lowGroup, highGroup)
	require.NoError(t, err)

	encoded, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded TestResult
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, r, decoded)
}

func TestSelectMethod_EqualSpreads(t *testing.T) {
	method, levene, err := SelectMethod(Sample{1, 2, 3, 4, 5}, Sample{2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, MethodPooled, method)
	assert.InDelta(t, 1.0, levene.PValue, 1e-12)
}

func TestCompareMeans(t *testing.T) {
	pooled, err := CompareMeans(MethodPooled, lowGroup, highGroup)
	require.NoError(t, err)
	assert.Equal(t, TestStudent, pooled.Test)

	welch, err := CompareMeans(MethodWelch, lowGroup, highGroup)
	require.NoError(t, err)
	assert.Equal(t, TestWelch, welch.Test)

	_, err = CompareMeans(Method("bogus"), lowGroup, highGroup)
	assert.Error(t, err)
}

func TestConfidenceInterval_PooledScenario(t *testing.T) {
	r, err := ConfidenceInterval(Sample{1, 2, 3, 4, 5}, Sample{2, 3, 4, 5, 6}, 0.05)
	require.NoError(t, err)

	assert.Equal(t, MethodPooled, r.Method)
	assert.Equal(t, "Student (equal variances)", r.Method.Label())
	assert.InDelta(t, -1.0, r.MeanDifference, 1e-12)
	assert.InDelta(t, r.MeanDifference-r.Lower, r.Upper-r.MeanDifference, 1e-12)
	assert.InDelta(t, 8.0, r.DegreesOfFreedom, 1e-12)
	assert.InDelta(t, 1.0, r.StandardError, 1e-12)
	assert.InDelta(t, 2.306004135, r.CriticalValue, 1e-6)
	assert.InDelta(t, -3.306004135, r.Lower, 1e-6)
	assert.InDelta(t, 1.306004135, r.Upper, 1e-6)
	assert.InDelta(t, 95.0, r.ConfidencePercent, 1e-9)
}

func TestConfidenceInterval_WelchScenario(t *testing.T) {
	tight := Sample{10, 10.1, 9.9, 10, 10.05, 9.95, 10, 10.02}
	wide := Sample{0, 20, 5, 15, -10, 30, 2, 18}

	r, err := ConfidenceInterval(tight, wide, 0.05)
	require.NoError(t, err)

	df, err := WelchDegreesOfFreedom(tight, wide)
	require.NoError(t, err)

	assert.Equal(t, MethodWelch, r.Method)
	assert.Equal(t, "Welch (unequal variances)", r.Method.Label())
	assert.InDelta(t, df, r.DegreesOfFreedom, 1e-12)
	assert.Less(t, r.LevenePValue, 0.05)
	assert.InDelta(t, r.CriticalValue*r.StandardError, r.Margin, 1e-12)
}

func TestConfidenceInterval_WidthGrowsWithConfidence(t *testing.T) {
	a := Sample{12.1, 14.3, 11.8, 13.5, 12.9, 15.0}
	b := Sample{10.2, 11.7, 12.4, 9.8, 10.9}

	var widths []float64
	for _, alpha := range []float64{0.10, 0.05, 0.01} {
		r, err := ConfidenceInterval(a, b, alpha)
		require.NoError(t, err)
		widths = append(widths, r.Width())
	}

	assert.GreaterOrEqual(t, widths[1], widths[0], "95%% interval narrower than 90%%")
	assert.GreaterOrEqual(t, widths[2], widths[1], "99%% interval narrower than 95%%")
}

func TestConfidenceInterval_InvalidAlpha(t *testing.T) {
	a := Sample{1, 2, 3}
	b := Sample{2, 3, 5}
	for _, alpha := range []float64{0, 1, -0.1, 1.5, math.NaN()} {
		_, err := ConfidenceInterval(a, b, alpha)
		assert.ErrorIs(t, err, core.ErrInvalidAlpha, "alpha=%v", alpha)
	}

	r, err := ConfidenceInterval(a, b, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, r.ConfidencePercent, 1e-9)
}

func TestConfidenceInterval_Degenerate(t *testing.T) {
	_, err := ConfidenceInterval(Sample{5, 5, 5, 5}, Sample{5, 5, 5, 5}, 0.05)
	assert.ErrorIs(t, err, core.ErrDegenerateVariance)
}

func TestDescribe(t *testing.T) {
	s, err := Describe(Sample{4, 1, 3, 2})
	require.NoError(t, err)
	assert.Equal(t, 4, s.N)
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 2.5, s.Median)
	assert.InDelta(t, 1.6666666667, s.Variance, 1e-9)
	assert.InDelta(t, math.Sqrt(s.Variance), s.StdDev, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)

	single, err := Describe(Sample{7})
	require.NoError(t, err)
	assert.Equal(t, 0.0, single.Variance)

	_, err = Describe(Sample{})
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestDistributionHelpers(t *testing.T) {
	assert.Equal(t, 1.0, TwoSidedPValue(1.0, 0))
	assert.Equal(t, 1.0, TwoSidedPValue(math.NaN(), 5))
	assert.InDelta(t, 1.0, TwoSidedPValue(0, 5), 1e-12)
	assert.Equal(t, 0.0, FSurvival(math.Inf(1), 1, 5))
	assert.Equal(t, 1.0, FSurvival(1, 0, 5))

	// Large df approaches the normal critical value.
	assert.InDelta(t, 1.959964, CriticalValue(0.05, 1e6), 1e-4)
}
