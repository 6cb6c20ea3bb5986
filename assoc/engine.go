package assoc

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/quantgen/cisbma"
	"github.com/quantgen/cisbma/abf"
	"github.com/quantgen/cisbma/stats"
)

// Options configures a full analysis run. Validation of flag combinations
// happens in the CLI; the engine trusts its Options.
type Options struct {
	GenoPathsFile  string
	PhenoPathsFile string
	FtrCoordsFile  string
	OutPrefix      string

	Anchor Anchor
	CisLen int64
	Step   int
	QNorm  bool
	Grid   abf.Grid
	BFs    abf.BFs

	NPerms int
	Seed   int64
	Trick  Trick
	PermBF abf.BFs

	FtrsFile string
	SnpsFile string
	MafMin   float64

	Workers int
	Verbose int
}

// Engine holds the loaded catalogues and sample alignment, and runs the
// association and permutation phases over them. The catalogues are
// read-only once built; only per-feature results and permutation counters
// are mutated, each by a single owner.
type Engine struct {
	Opts Options

	Subgroups []string
	Samples   []string

	// PhenoIdx[s][i] / GenoIdx[i] map universe position i to the source
	// column, or -1 when the sample is absent from that source.
	PhenoIdx [][]int
	GenoIdx  []int

	Snps      []Snp
	snpsByChr map[string][]SnpIndex

	// Ftrs is sorted by name so every downstream pass (and every output
	// file) has a reproducible order.
	Ftrs []*Ftr
}

// Load reads all inputs and assembles the engine.
func Load(opts Options) (*Engine, error) {
	ftrsToKeep, err := cisbma.ReadIDList(opts.FtrsFile)
	if err != nil {
		return nil, err
	}
	snpsToKeep, err := cisbma.ReadIDList(opts.SnpsFile)
	if err != nil {
		return nil, err
	}

	phenoPaths, err := cisbma.ReadSubgroupPaths(opts.PhenoPathsFile)
	if err != nil {
		return nil, err
	}
	genoPaths, err := cisbma.ReadSubgroupPaths(opts.GenoPathsFile)
	if err != nil {
		return nil, err
	}
	if len(genoPaths) != 1 {
		return nil, fmt.Errorf("current version can't handle several genotype files (got %d)", len(genoPaths))
	}

	e := &Engine{Opts: opts}
	for _, sp := range phenoPaths {
		e.Subgroups = append(e.Subgroups, sp.ID)
	}

	phenoSamples := make([][]string, len(phenoPaths))
	for s, sp := range phenoPaths {
		if phenoSamples[s], err = phenoHeader(sp.Path); err != nil {
			return nil, err
		}
	}

	var genoSamples []string
	e.Snps, e.snpsByChr, genoSamples, err = loadGenos(genoPaths[0].Path, snpsToKeep, opts.MafMin)
	if err != nil {
		return nil, err
	}

	e.Samples, e.PhenoIdx, e.GenoIdx = buildSampleMaps(phenoSamples, genoSamples)
	if opts.Verbose > 0 {
		log.Printf("%d subgroups, %d samples in total", len(e.Subgroups), len(e.Samples))
		for s, id := range e.Subgroups {
			log.Printf("s%d (%s): %d samples (phenotypes)", s+1, id, len(phenoSamples[s]))
		}
		log.Printf("genotypes: %d samples, %d SNPs", len(genoSamples), len(e.Snps))
	}

	ftrs, err := loadPhenos(phenoPaths, ftrsToKeep)
	if err != nil {
		return nil, err
	}
	if err := loadFtrCoords(opts.FtrCoordsFile, ftrs); err != nil {
		return nil, err
	}

	e.Ftrs = make([]*Ftr, 0, len(ftrs))
	for _, f := range ftrs {
		e.Ftrs = append(e.Ftrs, f)
	}
	sort.Slice(e.Ftrs, func(a, b int) bool { return e.Ftrs[a].Name < e.Ftrs[b].Name })
	if opts.Verbose > 0 {
		log.Printf("nb of features: %d", len(e.Ftrs))
	}

	return e, nil
}

// alignedPair collects the paired (genotype, phenotype) values of subgroup
// s for one feature-SNP pair, keeping only universe samples present and
// non-missing in both sources. A non-nil perm permutes the phenotype side;
// permutations also route the genotype side through subgroup 1's phenotype
// map, matching the alignment the permutation engines are defined on.
// Quantile normalization, when enabled, applies to the collected phenotype
// vector.
func (e *Engine) alignedPair(f *Ftr, snp *Snp, s int, perm []int) (g, y []float64) {
	pheno := e.PhenoIdx[s]
	for i := range pheno {
		var ip, ig int
		if perm == nil {
			ip = pheno[i]
			ig = e.GenoIdx[i]
		} else {
			ip = pheno[perm[i]]
			ig = e.PhenoIdx[0][i]
		}
		if ip == absent || ig == absent || f.IsNA[s][ip] || snp.IsNA[ig] {
			continue
		}
		g = append(g, snp.Genos[ig])
		y = append(y, f.Phenos[s][ip])
	}

	if e.Opts.QNorm {
		stats.QNorm(y)
	}

	return g, y
}

// pairResult runs the per-subgroup regressions for one feature-SNP pair.
func (e *Engine) pairResult(f *Ftr, si SnpIndex) *PairResult {
	snp := &e.Snps[si]
	r := newPairResult(si, snp.Name, len(e.Subgroups))
	for s := range e.Subgroups {
		if len(f.Phenos[s]) == 0 {
			continue
		}
		g, y := e.alignedPair(f, snp, s, nil)
		r.Ns[s] = len(y)
		if r.Ns[s] > 1 {
			r.setSummary(s, stats.OLS(g, y))
		}
	}
	return r
}

// inferFeature fills one feature's cis-SNP list and pair results.
func (e *Engine) inferFeature(f *Ftr) {
	f.CisSnps = e.cisSnps(f)
	if e.Opts.Verbose > 1 && len(f.CisSnps) > 0 {
		log.Printf("%s: %d SNPs in cis", f.Name, len(f.CisSnps))
	}
	for _, si := range f.CisSnps {
		r := e.pairResult(f, si)
		if e.Opts.Step >= 3 {
			r.standardize()
			r.ABFs = abf.Compute(r.Ns, r.Std, e.Opts.Grid, e.Opts.BFs)
		}
		f.Results = append(f.Results, r)
	}
}

// InferAssociations locates each feature's cis-SNPs and computes the
// per-pair summary statistics and, for joint steps, the ABFs. Features are
// independent; with Workers > 1 they are processed by a bounded pool.
func (e *Engine) InferAssociations() {
	if e.Opts.Verbose > 0 {
		log.Printf("look for association between each pair feature-SNP (anchor=%v lenCis=%d) ...",
			e.Opts.Anchor, e.Opts.CisLen)
	}

	if e.Opts.Workers > 1 {
		var pool sync.WaitGroup
		limit := make(chan struct{}, e.Opts.Workers)
		for _, f := range e.Ftrs {
			f := f
			pool.Add(1)
			limit <- struct{}{}
			go func() {
				defer pool.Done()
				e.inferFeature(f)
				<-limit
			}()
		}
		pool.Wait()
	} else {
		for _, f := range e.Ftrs {
			e.inferFeature(f)
		}
	}

	if e.Opts.Verbose > 0 {
		pairs := 0
		for _, f := range e.Ftrs {
			pairs += len(f.Results)
		}
		log.Printf("nb of analyzed feature-SNP pairs: %d", pairs)
	}
}
