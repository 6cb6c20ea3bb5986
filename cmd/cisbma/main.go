// cisbma maps cis associations between genetic variants and molecular
// phenotypes across subgroups (tissues, populations, conditions): simple
// linear regression per subgroup, Approximate Bayes Factors for the joint
// meta-analysis, and feature-level significance by phenotype permutation.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/quantgen/cisbma/assoc"
)

const version = "0.1"

func main() {
	var (
		genoFile   string
		phenoFile  string
		fcoordFile string
		anchor     string
		cisLen     int64
		outPrefix  string
		step       int
		qnorm      bool
		gridFile   string
		bfs        string
		nperm      int
		seed       int64
		trick      int
		pbf        string
		ftrFile    string
		snpFile    string
		mafMin     float64
		workers    int
		verbose    int
		doVersion  bool
	)
	flag.StringVar(&genoFile, "geno", "", "File with two columns: subgroup identifier<WS>path to the IMPUTE genotype file. A single genotype file, shared by all subgroups, is supported; '#' comments a line.")
	flag.StringVar(&phenoFile, "pheno", "", "File with two columns: subgroup identifier<WS>path to the phenotype matrix (row 1 sample names, column 1 feature names). Subgroups can have different features; '#' comments a line.")
	flag.StringVar(&fcoordFile, "fcoord", "", "Feature coordinates in BED format.")
	flag.StringVar(&anchor, "anchor", "FSS", "Feature boundary(ies) for the cis region: FSS or FSS+FES.")
	flag.Int64Var(&cisLen, "cis", 100000, "Length of half of the cis region, in bp, apart from the anchor(s).")
	flag.StringVar(&outPrefix, "out", "", "Prefix for the output files (all gzipped).")
	flag.IntVar(&step, "step", 0, "Step of the analysis: 1=separate; 2=separate+permutation; 3=separate+joint; 4=joint permutation added; 5=both permutations.")
	flag.BoolVar(&qnorm, "qnorm", false, "Quantile-normalize the phenotypes.")
	flag.StringVar(&gridFile, "grid", "", "File with the grid of phi2/omega2 values (required for steps 3-5).")
	flag.StringVar(&bfs, "bfs", "const", "Which Bayes Factors to compute for the joint analysis: const, subset or all.")
	flag.IntVar(&nperm, "nperm", 0, "Number of permutations (recommended: 10000).")
	flag.Int64Var(&seed, "seed", 0, "Seed for the two random number generators (default: microseconds from epoch). The RNGs are re-seeded before each subgroup and before the joint analysis.")
	flag.IntVar(&trick, "trick", 0, "Speed up permutations: stop after the tenth permutation whose statistic is better than or equal to the true value and sample the P-value from a uniform between 11/(nbPerms+2) and 11/(nbPerms+1). 1 really stops; 2 keeps shuffling without testing, so different statistics can be compared on the same permutations.")
	flag.StringVar(&pbf, "pbf", "const", "Which Bayes Factor to use as the joint-permutation test statistic: const, subset or all.")
	flag.StringVar(&ftrFile, "ftr", "", "Optional file with a list of features to analyze, one name per line.")
	flag.StringVar(&snpFile, "snp", "", "Optional file with a list of SNPs to analyze, one name per line.")
	flag.Float64Var(&mafMin, "maf", 0, "Skip SNPs whose minor allele frequency is below this threshold.")
	flag.IntVar(&workers, "threads", 1, "Number of concurrent workers for the association scan.")
	flag.IntVar(&verbose, "verbose", 1, "Verbosity level (0/1/2).")
	flag.BoolVar(&doVersion, "version", false, "Print version information and exit.")
	flag.Parse()

	if doVersion {
		fmt.Printf("cisbma %s\n", version)
		return
	}

	opts, err := buildOptions(genoFile, phenoFile, fcoordFile, anchor, cisLen,
		outPrefix, step, qnorm, gridFile, bfs, nperm, seed, trick, pbf,
		ftrFile, snpFile, mafMin, workers, verbose)
	if err != nil {
		flag.PrintDefaults()
		log.Fatalln("ERROR:", err)
	}

	start := time.Now()
	if verbose > 0 {
		log.Printf("START cisbma %s", version)
	}

	if err := run(opts); err != nil {
		log.Fatalln("ERROR:", err)
	}

	if verbose > 0 {
		log.Printf("END cisbma (elapsed %v)", time.Since(start).Round(time.Millisecond))
	}
}

func run(opts assoc.Options) error {
	e, err := assoc.Load(opts)
	if err != nil {
		return err
	}

	e.InferAssociations()

	if opts.Step == 2 || opts.Step == 5 {
		e.PermuteSeparate()
	}
	if opts.Step == 4 || opts.Step == 5 {
		e.PermuteJoint()
	}

	return e.WriteResults()
}
