package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// StdStats is the standardized effect triple (b, se_b, t) consumed by the
// Bayes Factor kernel. Subgroups without enough samples carry the zero
// triple and contribute no evidence downstream.
type StdStats struct {
	B  float64
	Se float64
	T  float64
}

// Standardize rescales the regression estimates by the residual standard
// deviation and applies the small-sample correction: the t statistic is
// mapped through the Student-t CDF (df = n-2) to its Gaussian-quantile
// equivalent, and the scale is recomputed so that b/se equals that mapped
// statistic.
//
// The mapped t is negative (one-sided CDF of a negative value); downstream
// formulas only use its magnitude, and se may inherit a flipped sign
// through se = b/t. Both are preserved as-is.
func Standardize(sum Summary) StdStats {
	n := float64(sum.N)
	b := sum.Betahat / sum.Sigmahat
	se := sum.Sebetahat / sum.Sigmahat
	t := distuv.UnitNormal.Quantile(
		distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 2}.CDF(-math.Abs(b / se)))

	if math.Abs(t) > 1e-8 {
		sigma := math.Abs(sum.Betahat) / (math.Abs(t) * se)
		b = sum.Betahat / sigma
		se = b / t
	} else {
		b = 0
		se = math.Inf(1)
	}

	return StdStats{B: b, Se: se, T: t}
}
