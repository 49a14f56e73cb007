package stats

import (
	"fmt"

	"qastats/domain/core"
)

// SelectMethod is the single place that decides between the pooled and the
// unequal-variance formulas. It runs Levene's test and picks MethodWelch when
// the variances differ at SignificanceLevel. The Levene result is returned so
// callers can report it.
func SelectMethod(a, b Sample) (Method, TestResult, error) {
	levene, err := Levene(a, b)
	if err != nil {
		return "", TestResult{}, err
	}
	if levene.PValue < SignificanceLevel {
		return MethodWelch, levene, nil
	}
	return MethodPooled, levene, nil
}

// CompareMeans runs the t-test matching method.
func CompareMeans(method Method, a, b Sample) (TestResult, error) {
	switch method {
	case MethodPooled:
		return TTest(a, b)
	case MethodWelch:
		return WelchTTest(a, b)
	default:
		return TestResult{}, fmt.Errorf("unknown method %q", method)
	}
}

// ConfidenceInterval computes a two-sided (1 - alpha) interval for
// mean(a) - mean(b). The standard error and degrees of freedom come from the
// method chosen by SelectMethod.
func ConfidenceInterval(a, b Sample, alpha float64) (ConfidenceIntervalReport, error) {
	if !(alpha > 0 && alpha < 1) {
		return ConfidenceIntervalReport{}, fmt.Errorf("%w: got %v", core.ErrInvalidAlpha, alpha)
	}

	method, levene, err := SelectMethod(a, b)
	if err != nil {
		return ConfidenceIntervalReport{}, err
	}

	ma, mb, err := pairMoments(a, b)
	if err != nil {
		return ConfidenceIntervalReport{}, err
	}

	var se, df float64
	if method == MethodWelch {
		se, df = welchError(ma, mb)
	} else {
		se, df = pooledError(ma, mb)
	}
	if (ma.constant && mb.constant) || se == 0 {
		return ConfidenceIntervalReport{}, core.ErrDegenerateVariance
	}

	diff := ma.mean - mb.mean
	critical := CriticalValue(alpha, df)
	margin := critical * se

	return ConfidenceIntervalReport{
		Method:            method,
		MeanDifference:    diff,
		Lower:             diff - margin,
		Upper:             diff + margin,
		DegreesOfFreedom:  df,
		StandardError:     se,
		CriticalValue:     critical,
		Margin:            margin,
		Alpha:             alpha,
		ConfidencePercent: 100 * (1 - alpha),
		LevenePValue:      levene.PValue,
	}, nil
}
