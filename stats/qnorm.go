package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// QNorm replaces y in place with standard-normal quantiles of its Blom
// ranks, (r - 0.375) / (n + 0.25) with r the 1-based rank. Ties keep their
// original relative order.
func QNorm(y []float64) {
	n := len(y)
	if n == 0 {
		return
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return y[idx[a]] < y[idx[b]] })

	nf := float64(n)
	for rank, i := range idx {
		y[i] = distuv.UnitNormal.Quantile((float64(rank+1) - 0.375) / (nf + 0.25))
	}
}
