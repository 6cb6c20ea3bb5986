package assoc

import (
	"log"
	"math/rand"

	"github.com/quantgen/cisbma/abf"
	"github.com/quantgen/cisbma/stats"
)

// exceedanceCap is the counter value (the counter starts at 1, so ten hits)
// at which the early-stopping trick fires: stop permuting (trick=1) or keep
// shuffling without testing (trick=2).
const exceedanceCap = 11

// PermuteSeparate estimates one permutation P-value per (feature,
// subgroup) from the minimum per-SNP regression P-value. Both RNG streams
// are re-seeded before each subgroup so subgroups see identical shuffle
// sequences.
func (e *Engine) PermuteSeparate() {
	if e.Opts.Verbose > 0 {
		log.Printf("get feature-level P-values by permuting phenotypes in each subgroup ...")
		log.Printf("permutations=%d, seed=%d, trick=%d", e.Opts.NPerms, e.Opts.Seed, e.Opts.Trick)
	}

	for s := range e.Subgroups {
		rngPerm := rand.New(rand.NewSource(e.Opts.Seed))
		var rngTrick *rand.Rand
		if e.Opts.Trick != TrickOff {
			rngTrick = rand.New(rand.NewSource(e.Opts.Seed))
		}

		for _, f := range e.Ftrs {
			if len(f.CisSnps) == 0 {
				continue
			}
			e.permuteSepFeature(f, s, rngPerm, rngTrick)
		}
	}
}

// minTrueBetaPval is the smallest regression P-value over the feature's
// cis-SNPs in subgroup s, from the unpermuted analysis.
func (f *Ftr) minTrueBetaPval(s int) float64 {
	min := 1.0
	for _, r := range f.Results {
		if r.Ns[s] > 1 && r.BetaPval[s] < min {
			min = r.BetaPval[s]
		}
	}
	return min
}

func (e *Engine) permuteSepFeature(f *Ftr, s int, rngPerm, rngTrick *rand.Rand) {
	minTrueP := f.minTrueBetaPval(s)
	f.PermPvalSep[s] = 1
	f.NPermsSep[s] = 0
	shuffleOnly := false

	perm := identityPerm(len(e.Samples))
	for permID := 0; permID < e.Opts.NPerms; permID++ {
		rngPerm.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		if shuffleOnly {
			continue
		}

		f.NPermsSep[s]++
		minPermP := 1.0
		for _, si := range f.CisSnps {
			permP := 1.0
			g, y := e.alignedPair(f, &e.Snps[si], s, perm)
			if len(y) > 1 {
				permP = stats.OLS(g, y).Pval
			}
			if permP < minPermP {
				minPermP = permP
			}
		}

		if minPermP <= minTrueP {
			f.PermPvalSep[s]++
		}
		if e.Opts.Trick != TrickOff && f.PermPvalSep[s] == exceedanceCap {
			if e.Opts.Trick == TrickStop {
				break
			}
			shuffleOnly = true
		}
	}

	f.PermPvalSep[s] = calibrate(f.PermPvalSep[s], f.NPermsSep[s], e.Opts.NPerms, rngTrick)
}

// PermuteJoint estimates one permutation P-value per feature from the
// maximum Bayes Factor statistic of the family selected by pbf. The RNG
// streams are re-seeded once, before the loop over features.
func (e *Engine) PermuteJoint() {
	if e.Opts.Verbose > 0 {
		log.Printf("get feature-level P-values by permuting phenotypes, all subgroups jointly ...")
		log.Printf("permutations=%d, seed=%d, trick=%d, pbf=%v", e.Opts.NPerms, e.Opts.Seed, e.Opts.Trick, e.Opts.PermBF)
	}

	rngPerm := rand.New(rand.NewSource(e.Opts.Seed))
	var rngTrick *rand.Rand
	if e.Opts.Trick != TrickOff {
		rngTrick = rand.New(rand.NewSource(e.Opts.Seed))
	}

	for _, f := range e.Ftrs {
		if len(f.CisSnps) == 0 {
			continue
		}
		e.permuteJointFeature(f, rngPerm, rngTrick)
	}
}

// maxTrueAbf is the largest weighted ABF over the feature's cis-SNPs among
// the labels of the selected permutation family, floored at 0: when every
// such ABF is negative (or NaN) the result is 0.
func (f *Ftr) maxTrueAbf(permBF abf.BFs, nbSubgroups int) float64 {
	labels := []string{"const"}
	switch permBF {
	case abf.BFSubset:
		for _, cfg := range abf.SingleConfigs(nbSubgroups) {
			labels = append(labels, cfg.Label)
		}
	case abf.BFAll:
		for _, cfg := range abf.AllConfigs(nbSubgroups) {
			labels = append(labels, cfg.Label)
		}
	}

	max := 0.0
	for _, r := range f.Results {
		for _, label := range labels {
			if v := r.ABFs.Weighted[label]; v > max {
				max = v
			}
		}
	}
	return max
}

// permStat is the per-permutation test statistic for one pair: the
// grid-averaged const ABF, or its uniform average with the family's
// configuration ABFs.
func (e *Engine) permStat(ns []int, std []stats.StdStats) float64 {
	switch e.Opts.PermBF {
	case abf.BFSubset:
		return abf.SubsetStat(ns, std, e.Opts.Grid)
	case abf.BFAll:
		return abf.AllStat(ns, std, e.Opts.Grid)
	}
	return abf.ConstStat(ns, std, e.Opts.Grid)
}

func (e *Engine) permuteJointFeature(f *Ftr, rngPerm, rngTrick *rand.Rand) {
	f.JointPermPval = 1
	f.NPermsJoint = 0
	f.MaxL10TrueAbf = f.maxTrueAbf(e.Opts.PermBF, len(e.Subgroups))
	shuffleOnly := false

	perm := identityPerm(len(e.Samples))
	for permID := 0; permID < e.Opts.NPerms; permID++ {
		rngPerm.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		if shuffleOnly {
			continue
		}

		f.NPermsJoint++
		maxPermAbf := 0.0
		for _, si := range f.CisSnps {
			snp := &e.Snps[si]
			r := newPairResult(si, snp.Name, len(e.Subgroups))
			for s := range e.Subgroups {
				if len(f.Phenos[s]) == 0 {
					continue
				}
				g, y := e.alignedPair(f, snp, s, perm)
				r.Ns[s] = len(y)
				if r.Ns[s] > 1 {
					r.setSummary(s, stats.OLS(g, y))
				}
			}
			r.standardize()
			if v := e.permStat(r.Ns, r.Std); v > maxPermAbf {
				maxPermAbf = v
			}
		}

		if maxPermAbf >= f.MaxL10TrueAbf {
			f.JointPermPval++
		}
		if e.Opts.Trick != TrickOff && f.JointPermPval == exceedanceCap {
			if e.Opts.Trick == TrickStop {
				break
			}
			shuffleOnly = true
		}
	}

	f.JointPermPval = calibrate(f.JointPermPval, f.NPermsJoint, e.Opts.NPerms, rngTrick)
}

// calibrate turns the exceedance counter (initialized to 1) into the final
// P-value: (1+hits)/(N+1) when all N permutations ran, otherwise a draw
// from Uniform(11/(m+2), 11/(m+1)) where m permutations were tested before
// the early stop.
func calibrate(counter float64, ran, requested int, rngTrick *rand.Rand) float64 {
	if ran == requested {
		return counter / float64(requested+1)
	}
	lo := exceedanceCap / float64(ran+2)
	hi := exceedanceCap / float64(ran+1)
	return lo + rngTrick.Float64()*(hi-lo)
}

func identityPerm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}
