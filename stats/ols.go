// Package stats implements the per-pair statistical kernel: simple linear
// regression summary statistics, the small-sample standardization used by
// the Bayes Factor machinery, quantile normalization, and log-scale
// averaging.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// varTol is the threshold below which a genotype vector is treated as
// constant across samples.
const varTol = 1e-8

// Summary holds the summary statistics of the simple linear regression
// y_i = mu + g_i*beta + e_i with e_i ~ N(0, sigma^2).
type Summary struct {
	N         int
	Betahat   float64
	Sebetahat float64
	Sigmahat  float64
	Pval      float64
	Pve       float64
}

// OLS fits the regression on paired vectors g (genotype dosages) and y
// (phenotypes). Missing values must already be filtered out and both
// vectors must have the same length n >= 2.
//
// When g is (nearly) constant the effect is inestimable: the fit degrades
// to betahat=0, sebetahat=+Inf, pval=1, pve=0, with sigmahat from the
// intercept-only model.
func OLS(g, y []float64) Summary {
	n := len(g)
	nf := float64(n)

	var ym, gm, yty, gtg, gty float64
	for i := 0; i < n; i++ {
		ym += y[i]
		gm += g[i]
		yty += y[i] * y[i]
		gtg += g[i] * g[i]
		gty += g[i] * y[i]
	}
	ym /= nf
	gm /= nf

	vg := gtg - nf*gm*gm

	if vg <= varTol {
		return Summary{
			N:         n,
			Betahat:   0,
			Sebetahat: math.Inf(1),
			Sigmahat:  math.Sqrt((yty - nf*ym*ym) / (nf - 2)),
			Pval:      1,
			Pve:       0,
		}
	}

	out := Summary{N: n}
	out.Betahat = (gty - nf*gm*ym) / vg

	rss1 := yty - 1/vg*(nf*ym*(gtg*ym-gm*gty)-gty*(nf*gm*ym-gty))
	if math.Abs(out.Betahat) > varTol {
		out.Sigmahat = math.Sqrt(rss1 / (nf - 2))
	} else {
		// y is not variable enough among samples
		out.Sigmahat = math.Sqrt((yty - nf*ym*ym) / (nf - 2))
	}
	out.Sebetahat = out.Sigmahat / math.Sqrt(vg)

	muhat := (ym*gtg - gm*gty) / vg
	var mss float64
	for i := 0; i < n; i++ {
		d := muhat + out.Betahat*g[i] - ym
		mss += d * d
	}
	out.Pval = fSurvival(mss/(out.Sigmahat*out.Sigmahat), nf-2)
	out.Pve = mss / (mss + rss1)

	return out
}

// fSurvival is the upper tail of the F(1, d2) distribution. An infinite
// statistic (perfect fit, sigmahat=0) must map to 0 rather than the NaN the
// regularized-beta ratio would produce.
func fSurvival(x, d2 float64) float64 {
	if math.IsInf(x, 1) {
		return 0
	}
	return distuv.F{D1: 1, D2: d2}.Survival(x)
}
