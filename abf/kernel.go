package abf

import (
	"fmt"
	"math"

	"github.com/quantgen/cisbma/stats"
)

// BFs selects which Bayes Factor family to compute on top of the
// consistent configuration: none, the subgroup-specific configurations, or
// every non-empty proper subset.
type BFs int

const (
	BFConst BFs = iota
	BFSubset
	BFAll
)

func ParseBFs(s string) (BFs, error) {
	switch s {
	case "const":
		return BFConst, nil
	case "subset":
		return BFSubset, nil
	case "all":
		return BFAll, nil
	}
	return 0, fmt.Errorf("bfs should be 'const', 'subset' or 'all', got %q", s)
}

func (b BFs) String() string {
	switch b {
	case BFSubset:
		return "subset"
	case BFAll:
		return "all"
	}
	return "const"
}

// tTol mirrors the OLS variance tolerance: subgroups whose mapped t
// statistic is this small carry no evidence.
const tTol = 1e-8

// FromStdStats computes the log10 ABF for one (phi2, oma2) pair from the
// standardized triples of the S subgroups. Subgroups with fewer than two
// samples, or with a vanishing t, contribute nothing; with no informative
// subgroup at all the ABF is 0 (no data, no evidence).
func FromStdStats(ns []int, ss []stats.StdStats, phi2, oma2 float64) float64 {
	var sumSingles, num, den float64
	for s := range ns {
		if ns[s] <= 1 {
			continue
		}
		b := ss[s].B
		v := ss[s].Se * ss[s].Se
		t := ss[s].T
		if math.Abs(t) < tTol {
			continue
		}
		num += b / (v + phi2)
		den += 1 / (v + phi2)
		sumSingles += 0.5*math.Log10(v) - 0.5*math.Log10(v+phi2) +
			(0.5*t*t*phi2/(v+phi2))/math.Ln10
	}

	bbar, vbar := 0.0, math.Inf(1)
	if den != 0 {
		bbar = num / den
		vbar = 1 / den
	}
	t2 := bbar * bbar / vbar

	var lbar float64
	if t2 != 0 {
		lbar = 0.5*math.Log10(vbar) - 0.5*math.Log10(vbar+oma2) +
			(0.5*t2*oma2/(vbar+oma2))/math.Ln10
	}

	return lbar + sumSingles
}

// PairABFs holds, for one (feature, SNP) pair, the grid-indexed log10 ABFs
// and their grid-averaged scalars, keyed by configuration label.
type PairABFs struct {
	Unweighted map[string][]float64
	Weighted   map[string]float64
}

// Compute fills the const, const-fix (fixed-effect: phi2=0) and const-maxh
// (maximum heterogeneity: oma2=0) families, plus the subgroup-specific or
// all-subset configurations per sel. Averaging over the grid uses uniform
// weights.
func Compute(ns []int, ss []stats.StdStats, grid Grid, sel BFs) *PairABFs {
	p := &PairABFs{
		Unweighted: make(map[string][]float64),
		Weighted:   make(map[string]float64),
	}

	vConst := make([]float64, len(grid))
	vFix := make([]float64, len(grid))
	vMaxh := make([]float64, len(grid))
	for i, gp := range grid {
		vConst[i] = FromStdStats(ns, ss, gp.Phi2, gp.Omega2)
		vFix[i] = FromStdStats(ns, ss, 0, gp.Phi2+gp.Omega2)
		vMaxh[i] = FromStdStats(ns, ss, gp.Phi2+gp.Omega2, 0)
	}
	p.set("const", vConst)
	p.set("const-fix", vFix)
	p.set("const-maxh", vMaxh)

	switch sel {
	case BFSubset:
		for _, cfg := range SingleConfigs(len(ns)) {
			p.setConfig(ns, ss, grid, cfg)
		}
	case BFAll:
		for _, cfg := range AllConfigs(len(ns)) {
			p.setConfig(ns, ss, grid, cfg)
		}
	}

	return p
}

func (p *PairABFs) set(label string, v []float64) {
	p.Unweighted[label] = v
	p.Weighted[label] = stats.Log10WeightedSum(v, nil)
}

func (p *PairABFs) setConfig(ns []int, ss []stats.StdStats, grid Grid, cfg Config) {
	mns, mss, any := maskStats(ns, ss, cfg.In)
	if !any {
		v := make([]float64, len(grid))
		for i := range v {
			v[i] = math.NaN()
		}
		p.Unweighted[cfg.Label] = v
		p.Weighted[cfg.Label] = math.NaN()
		return
	}

	v := make([]float64, len(grid))
	for i, gp := range grid {
		v[i] = FromStdStats(mns, mss, gp.Phi2, gp.Omega2)
	}
	p.set(cfg.Label, v)
}

// maskStats keeps the summary data of the subgroups in the configuration
// (those with at least two samples) and zeroes out the rest. any reports
// whether the configuration retains any data at all.
func maskStats(ns []int, ss []stats.StdStats, in []bool) ([]int, []stats.StdStats, bool) {
	mns := make([]int, len(ns))
	mss := make([]stats.StdStats, len(ns))
	any := false
	for s := range ns {
		if in[s] && ns[s] > 1 {
			mns[s] = ns[s]
			mss[s] = ss[s]
			any = true
		}
	}
	return mns, mss, any
}

// ConstStat is the grid-averaged log10 ABF of the consistent
// configuration, the test statistic for pbf=const permutations.
func ConstStat(ns []int, ss []stats.StdStats, grid Grid) float64 {
	v := make([]float64, len(grid))
	for i, gp := range grid {
		v[i] = FromStdStats(ns, ss, gp.Phi2, gp.Omega2)
	}
	return stats.Log10WeightedSum(v, nil)
}

// SubsetStat is the uniform log10 average of the const statistic and each
// subgroup-specific grid-averaged ABF, the test statistic for pbf=subset
// permutations.
func SubsetStat(ns []int, ss []stats.StdStats, grid Grid) float64 {
	return familyStat(ns, ss, grid, SingleConfigs(len(ns)))
}

// AllStat extends SubsetStat to every non-empty proper subset, the test
// statistic for pbf=all permutations.
func AllStat(ns []int, ss []stats.StdStats, grid Grid) float64 {
	return familyStat(ns, ss, grid, AllConfigs(len(ns)))
}

func familyStat(ns []int, ss []stats.StdStats, grid Grid, cfgs []Config) float64 {
	vals := make([]float64, 0, 1+len(cfgs))
	vals = append(vals, ConstStat(ns, ss, grid))
	for _, cfg := range cfgs {
		mns, mss, any := maskStats(ns, ss, cfg.In)
		if !any {
			vals = append(vals, math.NaN())
			continue
		}
		v := make([]float64, len(grid))
		for i, gp := range grid {
			v[i] = FromStdStats(mns, mss, gp.Phi2, gp.Omega2)
		}
		vals = append(vals, stats.Log10WeightedSum(v, nil))
	}
	return stats.Log10WeightedSum(vals, nil)
}
