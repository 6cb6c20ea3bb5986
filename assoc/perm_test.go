package assoc

import (
	"math"
	"testing"

	"github.com/quantgen/cisbma/abf"
)

// permTestEngine builds a one-subgroup engine with eight samples, one
// feature, and one cis-SNP with dosages 0..7, with the phenotype row given
// by y. The true pair result is set by the caller.
func permTestEngine(y []float64, opts Options) *Engine {
	n := len(y)
	samples := make([]string, n)
	idx := make([]int, n)
	for i := range samples {
		samples[i] = "ind" + string(rune('1'+i))
		idx[i] = i
	}

	genos := make([]float64, n)
	for i := range genos {
		genos[i] = float64(i)
	}
	snp := Snp{Name: "rs1", Chr: "chr1", Coord: 1000, Genos: genos, IsNA: make([]bool, n)}

	f := newFtr("gene1", 1)
	f.Chr, f.Start, f.End = "chr1", 1000, 1000
	f.Phenos[0] = y
	f.IsNA[0] = make([]bool, n)
	f.CisSnps = []SnpIndex{0}

	return &Engine{
		Opts:      opts,
		Subgroups: []string{"s1"},
		Samples:   samples,
		PhenoIdx:  [][]int{idx},
		GenoIdx:   idx,
		Snps:      []Snp{snp},
		snpsByChr: map[string][]SnpIndex{"chr1": {0}},
		Ftrs:      []*Ftr{f},
	}
}

func truePair(f *Ftr, n int, betaPval float64) {
	r := newPairResult(0, "rs1", 1)
	r.Ns[0] = n
	r.BetaPval[0] = betaPval
	f.Results = []*PairResult{r}
}

// Every permutation P-value is <= 1, so a true minimum of 1 is always
// matched: the counter ends at 1+N and the P-value at 1.
func TestPermuteSeparateAlwaysHit(t *testing.T) {
	y := []float64{1, 2.5, 2, 4, 3.5, 5.5, 5, 7.3}
	e := permTestEngine(y, Options{NPerms: 20, Seed: 7, Trick: TrickOff})
	truePair(e.Ftrs[0], len(y), 1)

	e.PermuteSeparate()

	f := e.Ftrs[0]
	if f.NPermsSep[0] != 20 {
		t.Errorf("NPermsSep: got %d, want 20", f.NPermsSep[0])
	}
	if f.PermPvalSep[0] != 1 {
		t.Errorf("PermPvalSep: got %v, want 1", f.PermPvalSep[0])
	}
}

// A true minimum of 0 can only be matched by a perfect permuted fit, which
// this phenotype vector cannot produce: zero hits, so P = 1/(N+1).
func TestPermuteSeparateNeverHit(t *testing.T) {
	y := []float64{1, 2.5, 2, 4, 3.5, 5.5, 5, 7.3}
	e := permTestEngine(y, Options{NPerms: 20, Seed: 7, Trick: TrickOff})
	truePair(e.Ftrs[0], len(y), 0)

	e.PermuteSeparate()

	f := e.Ftrs[0]
	if want := 1.0 / 21; math.Abs(f.PermPvalSep[0]-want) > 1e-15 {
		t.Errorf("PermPvalSep: got %v, want %v", f.PermPvalSep[0], want)
	}
}

// With every permutation a hit, the counter (starting at 1) reaches 11 after
// ten permutations; trick=1 stops there and draws from (11/12, 11/11).
func TestPermuteSeparateTrickStop(t *testing.T) {
	y := []float64{1, 2.5, 2, 4, 3.5, 5.5, 5, 7.3}
	e := permTestEngine(y, Options{NPerms: 1000, Seed: 7, Trick: TrickStop})
	truePair(e.Ftrs[0], len(y), 1)

	e.PermuteSeparate()

	f := e.Ftrs[0]
	if f.NPermsSep[0] != 10 {
		t.Errorf("NPermsSep: got %d, want 10", f.NPermsSep[0])
	}
	lo, hi := 11.0/12, 11.0/11
	if p := f.PermPvalSep[0]; p < lo || p > hi {
		t.Errorf("PermPvalSep %v outside (%v, %v)", p, lo, hi)
	}
}

// trick=2 keeps shuffling without testing: same counter and calibration as
// trick=1, and the run stays reproducible under the same seed.
func TestPermuteSeparateTrickShuffleOnly(t *testing.T) {
	y := []float64{1, 2.5, 2, 4, 3.5, 5.5, 5, 7.3}

	run := func() (int, float64) {
		e := permTestEngine(y, Options{NPerms: 1000, Seed: 7, Trick: TrickShuffleOnly})
		truePair(e.Ftrs[0], len(y), 1)
		e.PermuteSeparate()
		return e.Ftrs[0].NPermsSep[0], e.Ftrs[0].PermPvalSep[0]
	}

	n1, p1 := run()
	n2, p2 := run()
	if n1 != 10 {
		t.Errorf("NPermsSep: got %d, want 10", n1)
	}
	if lo, hi := 11.0/12, 11.0/11; p1 < lo || p1 > hi {
		t.Errorf("PermPvalSep %v outside (%v, %v)", p1, lo, hi)
	}
	if n1 != n2 || p1 != p2 {
		t.Errorf("same seed, different results: (%d, %v) vs (%d, %v)", n1, p1, n2, p2)
	}
}

func jointPair(f *Ftr, n int, constAbf float64) {
	r := newPairResult(0, "rs1", 1)
	r.Ns[0] = n
	r.ABFs = &abf.PairABFs{Weighted: map[string]float64{"const": constAbf}}
	f.Results = []*PairResult{r}
}

// The true maximum never goes below zero, and neither does the permuted
// maximum, so a weak true ABF makes every permutation a hit.
func TestPermuteJointAlwaysHit(t *testing.T) {
	y := []float64{1, 2.5, 2, 4, 3.5, 5.5, 5, 7.3}
	e := permTestEngine(y, Options{
		NPerms: 5, Seed: 7, Trick: TrickOff,
		Grid: abf.Grid{{Phi2: 0.1, Omega2: 0.4}}, PermBF: abf.BFConst,
	})
	jointPair(e.Ftrs[0], len(y), -5)

	e.PermuteJoint()

	f := e.Ftrs[0]
	if f.MaxL10TrueAbf != 0 {
		t.Errorf("MaxL10TrueAbf: got %v, want 0", f.MaxL10TrueAbf)
	}
	if f.NPermsJoint != 5 {
		t.Errorf("NPermsJoint: got %d, want 5", f.NPermsJoint)
	}
	if f.JointPermPval != 1 {
		t.Errorf("JointPermPval: got %v, want 1", f.JointPermPval)
	}
}

// An unbeatable true ABF yields zero hits: P = 1/(N+1).
func TestPermuteJointNeverHit(t *testing.T) {
	y := []float64{1, 2.5, 2, 4, 3.5, 5.5, 5, 7.3}
	e := permTestEngine(y, Options{
		NPerms: 5, Seed: 7, Trick: TrickOff,
		Grid: abf.Grid{{Phi2: 0.1, Omega2: 0.4}}, PermBF: abf.BFConst,
	})
	jointPair(e.Ftrs[0], len(y), 50)

	e.PermuteJoint()

	f := e.Ftrs[0]
	if f.MaxL10TrueAbf != 50 {
		t.Errorf("MaxL10TrueAbf: got %v, want 50", f.MaxL10TrueAbf)
	}
	if want := 1.0 / 6; math.Abs(f.JointPermPval-want) > 1e-15 {
		t.Errorf("JointPermPval: got %v, want %v", f.JointPermPval, want)
	}
}
