// Package assoc drives the cis association scan: it holds the SNP and
// feature catalogues, aligns samples across subgroups, runs the per-pair
// regression and Bayes Factor kernels, and assesses feature-level
// significance by phenotype permutation.
package assoc

import (
	"fmt"
	"math"

	"github.com/quantgen/cisbma/abf"
	"github.com/quantgen/cisbma/stats"
)

// SnpIndex is a stable index into the Engine's SNP catalogue. Features
// reference their cis-SNPs by index rather than by pointer.
type SnpIndex int

// Snp is one variant of the single genotype source shared by all
// subgroups. Coord is 1-based.
type Snp struct {
	Name  string
	Chr   string
	Coord int64

	// Genos holds allele dosages (0*AA + 1*AB + 2*BB) per genotype-source
	// column; IsNA marks samples whose probability triple was all zero.
	Genos []float64
	IsNA  []bool

	// Maf is min(p, 1-p) with p the mean dose over genotyped samples / 2.
	Maf        float64
	NGenotyped int
	HwePval    float64
}

// Ftr is one molecular phenotype (eg. a gene) with per-subgroup
// measurement rows. Start and End are 1-based inclusive.
type Ftr struct {
	Name  string
	Chr   string
	Start int64
	End   int64

	// Phenos[s] is subgroup s's measurement row (empty when the subgroup
	// does not carry this feature); IsNA[s] marks its NA cells.
	Phenos [][]float64
	IsNA   [][]bool

	CisSnps []SnpIndex
	Results []*PairResult

	// Permutation bookkeeping. The separate fields are per subgroup.
	PermPvalSep []float64
	NPermsSep   []int

	JointPermPval float64
	NPermsJoint   int
	MaxL10TrueAbf float64
}

func newFtr(name string, nbSubgroups int) *Ftr {
	f := &Ftr{
		Name:          name,
		Phenos:        make([][]float64, nbSubgroups),
		IsNA:          make([][]bool, nbSubgroups),
		PermPvalSep:   make([]float64, nbSubgroups),
		NPermsSep:     make([]int, nbSubgroups),
		JointPermPval: math.NaN(),
	}
	for s := range f.PermPvalSep {
		f.PermPvalSep[s] = math.NaN()
	}
	return f
}

// PairResult holds the per-subgroup regression summaries and the ABFs of
// one (feature, cis-SNP) pair. Subgroups that were never fit keep NaN
// statistics; their sample count is 0 when the subgroup does not measure
// the feature, otherwise the number of aligned samples (at most 1).
type PairResult struct {
	Snp     SnpIndex
	SnpName string

	Ns        []int
	Betahat   []float64
	Sebetahat []float64
	Sigmahat  []float64
	BetaPval  []float64
	Pve       []float64

	Std  []stats.StdStats
	ABFs *abf.PairABFs
}

func newPairResult(snp SnpIndex, name string, nbSubgroups int) *PairResult {
	r := &PairResult{
		Snp:       snp,
		SnpName:   name,
		Ns:        make([]int, nbSubgroups),
		Betahat:   make([]float64, nbSubgroups),
		Sebetahat: make([]float64, nbSubgroups),
		Sigmahat:  make([]float64, nbSubgroups),
		BetaPval:  make([]float64, nbSubgroups),
		Pve:       make([]float64, nbSubgroups),
	}
	for s := 0; s < nbSubgroups; s++ {
		r.Betahat[s] = math.NaN()
		r.Sebetahat[s] = math.NaN()
		r.Sigmahat[s] = math.NaN()
		r.BetaPval[s] = math.NaN()
		r.Pve[s] = math.NaN()
	}
	return r
}

func (r *PairResult) setSummary(s int, sum stats.Summary) {
	r.Betahat[s] = sum.Betahat
	r.Sebetahat[s] = sum.Sebetahat
	r.Sigmahat[s] = sum.Sigmahat
	r.BetaPval[s] = sum.Pval
	r.Pve[s] = sum.Pve
}

func (r *PairResult) summary(s int) stats.Summary {
	return stats.Summary{
		N:         r.Ns[s],
		Betahat:   r.Betahat[s],
		Sebetahat: r.Sebetahat[s],
		Sigmahat:  r.Sigmahat[s],
		Pval:      r.BetaPval[s],
		Pve:       r.Pve[s],
	}
}

// standardize fills the per-subgroup standardized triples: the
// small-sample correction where a fit exists, the zero triple elsewhere.
func (r *PairResult) standardize() {
	r.Std = make([]stats.StdStats, len(r.Ns))
	for s := range r.Ns {
		if r.Ns[s] > 1 {
			r.Std[s] = stats.Standardize(r.summary(s))
		}
	}
}

// Anchor picks the feature boundaries the cis window hangs from.
type Anchor int

const (
	AnchorFSS    Anchor = iota // window around the feature start only
	AnchorFSSFES               // window from start-L to end+L
)

func ParseAnchor(s string) (Anchor, error) {
	switch s {
	case "FSS":
		return AnchorFSS, nil
	case "FSS+FES":
		return AnchorFSSFES, nil
	}
	return 0, fmt.Errorf("anchor should be 'FSS' or 'FSS+FES', got %q", s)
}

func (a Anchor) String() string {
	if a == AnchorFSSFES {
		return "FSS+FES"
	}
	return "FSS"
}

// Trick selects the permutation early-stop behavior: off, stop at the
// tenth exceedance, or keep shuffling without testing (so a later run
// with a different statistic sees the identical shuffle sequence).
type Trick int

const (
	TrickOff Trick = iota
	TrickStop
	TrickShuffleOnly
)

func ParseTrick(v int) (Trick, error) {
	if v < 0 || v > 2 {
		return 0, fmt.Errorf("trick should be 0, 1 or 2, got %d", v)
	}
	return Trick(v), nil
}
