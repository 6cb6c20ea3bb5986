package hwe

import (
	"math"

	"github.com/tokenme/probab/dst"
)

// ChiSquareP approximates the Hardy-Weinberg P-value with a one-degree
// chi-square test of observed versus expected genotype counts under the
// observed allele frequencies.
func (g GenotypeCounts) ChiSquareP() (p float64) {
	defer func() { recover() }()

	p = 1.0 - dst.ChiSquareCDF(1)(g.chiSquare())

	return
}

func (g GenotypeCounts) chiSquare() float64 {
	nA := float64(g.AA*2 + g.AB)
	na := float64(g.BB*2 + g.AB)

	// Monomorphic site: the expectation is trivially met
	if nA == 0 || na == 0 {
		return 0
	}

	n := float64(g.N())
	alleles := nA + na
	fA := nA / alleles
	fa := na / alleles

	eAA := fA * fA * n
	eAB := 2 * fA * fa * n
	eBB := fa * fa * n

	return math.Pow(eAA-float64(g.AA), 2)/eAA +
		math.Pow(eAB-float64(g.AB), 2)/eAB +
		math.Pow(eBB-float64(g.BB), 2)/eBB
}

// P uses the chi-square approximation, refining with the exact test when
// the approximate P-value falls below cutoff.
func (g GenotypeCounts) P(cutoff float64) float64 {
	if p := g.ChiSquareP(); p >= cutoff {
		return p
	}
	return g.ExactP()
}
