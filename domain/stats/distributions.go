package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// TwoSidedPValue returns P(|T| >= |t|) for Student's t with df degrees of
// freedom. df may be fractional (Welch).
func TwoSidedPValue(t, df float64) float64 {
	if df <= 0 || math.IsNaN(t) {
		return 1.0
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return clampProbability(2 * tDist.Survival(math.Abs(t)))
}

// CriticalValue returns the (1 - alpha/2) quantile of Student's t with df
// degrees of freedom.
func CriticalValue(alpha, df float64) float64 {
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return tDist.Quantile(1.0 - alpha/2.0)
}

// FSurvival returns P(F >= f) for the F distribution with (d1, d2) degrees of freedom.
func FSurvival(f, d1, d2 float64) float64 {
	if d1 <= 0 || d2 <= 0 || math.IsNaN(f) {
		return 1.0
	}
	if math.IsInf(f, 1) {
		return 0.0
	}
	fDist := distuv.F{D1: d1, D2: d2}
	return clampProbability(fDist.Survival(f))
}

func clampProbability(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
