package stats

import (
	"math"

	"qastats/domain/core"
)

// TTest runs Student's two-sample t-test assuming equal population variances.
func TTest(a, b Sample) (TestResult, error) {
	ma, mb, err := pairMoments(a, b)
	if err != nil {
		return TestResult{}, err
	}
	se, df := pooledError(ma, mb)
	return meanDifferenceTest(TestStudent, ma, mb, se, df)
}

// WelchTTest runs Welch's two-sample t-test, which does not assume equal
// population variances. Degrees of freedom follow Welch-Satterthwaite and are
// generally fractional.
func WelchTTest(a, b Sample) (TestResult, error) {
	ma, mb, err := pairMoments(a, b)
	if err != nil {
		return TestResult{}, err
	}
	se, df := welchError(ma, mb)
	return meanDifferenceTest(TestWelch, ma, mb, se, df)
}

// WelchDegreesOfFreedom returns the Welch-Satterthwaite approximation for two samples.
func WelchDegreesOfFreedom(a, b Sample) (float64, error) {
	ma, mb, err := pairMoments(a, b)
	if err != nil {
		return 0, err
	}
	if ma.constant && mb.constant {
		return 0, core.ErrDegenerateVariance
	}
	_, df := welchError(ma, mb)
	return df, nil
}

// pooledError returns the standard error of the mean difference under a
// pooled variance estimate and its n1+n2-2 degrees of freedom.
func pooledError(a, b moments) (se, df float64) {
	df = a.n + b.n - 2
	pooled := ((a.n-1)*a.variance + (b.n-1)*b.variance) / df
	se = math.Sqrt(pooled * (1/a.n + 1/b.n))
	return se, df
}

// welchError returns the unpooled standard error and Welch-Satterthwaite df.
func welchError(a, b moments) (se, df float64) {
	qa := a.variance / a.n
	qb := b.variance / b.n
	se = math.Sqrt(qa + qb)
	df = (qa + qb) * (qa + qb) / (qa*qa/(a.n-1) + qb*qb/(b.n-1))
	return se, df
}

func meanDifferenceTest(kind TestKind, a, b moments, se, df float64) (TestResult, error) {
	if (a.constant && b.constant) || se == 0 || math.IsNaN(se) {
		return TestResult{}, core.ErrDegenerateVariance
	}

	diff := a.mean - b.mean
	t := diff / se
	p := TwoSidedPValue(t, df)

	result := TestResult{
		Test:             kind,
		Statistic:        t,
		PValue:           p,
		DegreesOfFreedom: df,
		MeanDifference:   diff,
		Significant:      p < SignificanceLevel,
		N1:               int(a.n),
		N2:               int(b.n),
	}

	suffix := ""
	if kind == TestWelch {
		suffix = " (Welch)"
	}
	if result.Significant {
		result.Verdict = "Means are statistically different" + suffix + "."
	} else {
		result.Verdict = "Means are NOT statistically different" + suffix + "."
	}
	return result, nil
}
