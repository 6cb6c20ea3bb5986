package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Log10WeightedSum returns log10(sum_i w_i * 10^v_i) for values v given on
// the log10 scale, computed stably by factoring out the largest value. A
// nil w means uniform weights 1/len(v).
//
// NaN entries contribute zero; the result is NaN only when every entry is
// NaN.
func Log10WeightedSum(v, w []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	if w != nil && len(w) != len(v) {
		panic("stats: weight length mismatch")
	}

	uniform := 1 / float64(len(v))

	max := math.Inf(-1)
	allNaN := true
	for _, x := range v {
		if math.IsNaN(x) {
			continue
		}
		allNaN = false
		if x > max {
			max = x
		}
	}
	if allNaN {
		return math.NaN()
	}
	if math.IsInf(max, -1) {
		return math.Inf(-1)
	}

	terms := make([]float64, 0, len(v))
	for i, x := range v {
		if math.IsNaN(x) {
			continue
		}
		wi := uniform
		if w != nil {
			wi = w[i]
		}
		terms = append(terms, wi*math.Pow(10, x-max))
	}

	return max + math.Log10(floats.Sum(terms))
}
