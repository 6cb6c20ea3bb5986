// Package hwe tests SNPs for departure from Hardy-Weinberg equilibrium,
// working from genotype counts derived from dosage data. Used for the SNP
// QC output; a low P-value usually flags a genotyping artifact rather than
// biology.
package hwe

import (
	"math"

	"github.com/BenLubar/memoize"
)

// GenotypeCounts holds the per-SNP genotype class counts: homozygous for
// the first allele (dosage 0), heterozygous, homozygous for the second
// allele (dosage 2). Either homozygous class may be the rarer one.
type GenotypeCounts struct {
	AA int64
	AB int64
	BB int64
}

// CountDosages classifies allele dosages (0..2) into genotype classes by
// rounding to the nearest integer. Missing samples are skipped.
func CountDosages(dose []float64, isNA []bool) GenotypeCounts {
	var g GenotypeCounts
	for i, d := range dose {
		if isNA[i] {
			continue
		}
		switch int(math.Round(d)) {
		case 0:
			g.AA++
		case 1:
			g.AB++
		default:
			g.BB++
		}
	}
	return g
}

// N is the number of genotyped samples.
func (g GenotypeCounts) N() int64 {
	return g.AA + g.AB + g.BB
}

var memoizedExactP = memoize.Memoize(exactP).(func(int64, int64, int64) float64)

// ExactP computes the exact Hardy-Weinberg P-value after RA Fisher, summing
// the probabilities of every heterozygote count at least as extreme as the
// observed one. Safe for concurrent use. Truth values cross-checked against
// https://www.cog-genomics.org/software/stats
func (g GenotypeCounts) ExactP() float64 {
	return memoizedExactP(g.AA, g.AB, g.BB)
}

func exactP(aa, ab, bb int64) float64 {
	// Enforce aa common, bb rare
	if bb > aa {
		aa, bb = bb, aa
	}

	baseP := hetProb(aa, ab, bb)
	sumP := baseP

	// Left tail: more heterozygotes than observed
	for nAA, nAB, nBB := aa-1, ab+2, bb-1; nBB >= 0; nAA, nAB, nBB = nAA-1, nAB+2, nBB-1 {
		p := hetProb(nAA, nAB, nBB)
		if p > baseP {
			continue
		}
		if p <= math.SmallestNonzeroFloat64 {
			break
		}
		sumP += p
	}

	// Right tail: fewer heterozygotes than observed
	for nAA, nAB, nBB := aa+1, ab-2, bb+1; nAB >= 0; nAA, nAB, nBB = nAA+1, nAB-2, nBB+1 {
		p := hetProb(nAA, nAB, nBB)
		if p > baseP {
			continue
		}
		if p <= math.SmallestNonzeroFloat64 {
			break
		}
		sumP += p
	}

	return sumP
}
