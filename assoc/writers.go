package assoc

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"

	"github.com/quantgen/cisbma"
	"github.com/quantgen/cisbma/abf"
)

// ftoa formats a statistic for the output files: 6 significant digits,
// lowercase nan/inf.
func ftoa(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// writeConfigs lists the configuration labels the output files carry for
// the given selector, in enumerator order: singletons for subset, every
// proper subset for all, nothing for const.
func writeConfigs(sel abf.BFs, nbSubgroups int) []abf.Config {
	switch sel {
	case abf.BFSubset:
		return abf.SingleConfigs(nbSubgroups)
	case abf.BFAll:
		return abf.AllConfigs(nbSubgroups)
	}
	return nil
}

// WriteSumstats writes <prefix>_sumstats_<subgroup>.txt.gz for every
// subgroup: one row per analyzed feature-SNP pair.
func (e *Engine) WriteSumstats() error {
	for s, id := range e.Subgroups {
		path := fmt.Sprintf("%s_sumstats_%s.txt.gz", e.Opts.OutPrefix, id)
		if e.Opts.Verbose > 0 {
			log.Printf("file %s", path)
		}
		w, err := cisbma.CreateGz(path)
		if err != nil {
			return err
		}

		fmt.Fprintln(w, "ftr snp maf n betahat sebetahat sigmahat betaPval pve")
		for _, f := range e.Ftrs {
			for _, r := range f.Results {
				fmt.Fprintf(w, "%s %s %s %d %s %s %s %s %s\n",
					f.Name, r.SnpName,
					ftoa(e.Snps[r.Snp].Maf),
					r.Ns[s],
					ftoa(r.Betahat[s]), ftoa(r.Sebetahat[s]), ftoa(r.Sigmahat[s]),
					ftoa(r.BetaPval[s]), ftoa(r.Pve[s]))
			}
		}

		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

// WriteSepPermPvals writes <prefix>_permPval_<subgroup>.txt.gz: the
// separate-permutation P-value of every feature, cis-SNP-less ones
// included.
func (e *Engine) WriteSepPermPvals() error {
	for s, id := range e.Subgroups {
		path := fmt.Sprintf("%s_permPval_%s.txt.gz", e.Opts.OutPrefix, id)
		if e.Opts.Verbose > 0 {
			log.Printf("file %s", path)
		}
		w, err := cisbma.CreateGz(path)
		if err != nil {
			return err
		}

		fmt.Fprintln(w, "ftr nbSnps permPval nbPerms")
		for _, f := range e.Ftrs {
			fmt.Fprintf(w, "%s %d %s %d\n",
				f.Name, len(f.CisSnps), ftoa(f.PermPvalSep[s]), f.NPermsSep[s])
		}

		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

// WriteAbfsUnweighted writes <prefix>_abfs_unweighted.txt.gz: the
// grid-indexed ABFs, one row per (feature, SNP, configuration) with const
// first and the selector's configurations after, in enumerator order.
func (e *Engine) WriteAbfsUnweighted() error {
	path := e.Opts.OutPrefix + "_abfs_unweighted.txt.gz"
	if e.Opts.Verbose > 0 {
		log.Printf("file %s", path)
	}
	w, err := cisbma.CreateGz(path)
	if err != nil {
		return err
	}

	fmt.Fprint(w, "ftr snp config")
	for i := range e.Opts.Grid {
		fmt.Fprintf(w, " ABFgrid%d", i+1)
	}
	fmt.Fprintln(w)

	configs := writeConfigs(e.Opts.BFs, len(e.Subgroups))
	for _, f := range e.Ftrs {
		for _, r := range f.Results {
			writeAbfRow(w, f.Name, r, "const")
			for _, cfg := range configs {
				writeAbfRow(w, f.Name, r, cfg.Label)
			}
		}
	}

	return w.Close()
}

func writeAbfRow(w *cisbma.GzWriter, ftrName string, r *PairResult, label string) {
	fmt.Fprintf(w, "%s %s %s", ftrName, r.SnpName, label)
	for _, v := range r.ABFs.Unweighted[label] {
		fmt.Fprintf(w, " %s", ftoa(v))
	}
	fmt.Fprintln(w)
}

// WriteAbfsWeighted writes <prefix>_abfs_weighted.txt.gz: the
// grid-averaged ABFs of every pair, one column per configuration.
func (e *Engine) WriteAbfsWeighted() error {
	path := e.Opts.OutPrefix + "_abfs_weighted.txt.gz"
	if e.Opts.Verbose > 0 {
		log.Printf("file %s", path)
	}
	w, err := cisbma.CreateGz(path)
	if err != nil {
		return err
	}

	configs := writeConfigs(e.Opts.BFs, len(e.Subgroups))

	fmt.Fprint(w, "ftr snp nb.subgroups nb.samples abf.const abf.const.fix abf.const.maxh")
	for _, cfg := range configs {
		fmt.Fprintf(w, " abf.%s", cfg.Label)
	}
	fmt.Fprintln(w)

	for _, f := range e.Ftrs {
		for _, r := range f.Results {
			nbSubgroups, nbSamples := 0, 0
			for _, n := range r.Ns {
				if n > 0 {
					nbSubgroups++
				}
				nbSamples += n
			}
			fmt.Fprintf(w, "%s %s %d %d %s %s %s",
				f.Name, r.SnpName, nbSubgroups, nbSamples,
				ftoa(r.ABFs.Weighted["const"]),
				ftoa(r.ABFs.Weighted["const-fix"]),
				ftoa(r.ABFs.Weighted["const-maxh"]))
			for _, cfg := range configs {
				fmt.Fprintf(w, " %s", ftoa(r.ABFs.Weighted[cfg.Label]))
			}
			fmt.Fprintln(w)
		}
	}

	return w.Close()
}

// WriteJointPermPvals writes <prefix>_jointPermPvals.txt.gz: the joint
// permutation P-value of every feature.
func (e *Engine) WriteJointPermPvals() error {
	path := e.Opts.OutPrefix + "_jointPermPvals.txt.gz"
	if e.Opts.Verbose > 0 {
		log.Printf("file %s", path)
	}
	w, err := cisbma.CreateGz(path)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "ftr nbSnps jointPermPval nbPerms maxL10TrueAbf")
	for _, f := range e.Ftrs {
		fmt.Fprintf(w, "%s %d %s %d %s\n",
			f.Name, len(f.CisSnps), ftoa(f.JointPermPval), f.NPermsJoint, ftoa(f.MaxL10TrueAbf))
	}

	return w.Close()
}

// WriteSnpInfo writes <prefix>_snpinfo.txt.gz: per-SNP QC, chromosomes in
// lexicographic order, coord order within.
func (e *Engine) WriteSnpInfo() error {
	path := e.Opts.OutPrefix + "_snpinfo.txt.gz"
	if e.Opts.Verbose > 0 {
		log.Printf("file %s", path)
	}
	w, err := cisbma.CreateGz(path)
	if err != nil {
		return err
	}

	chrs := make([]string, 0, len(e.snpsByChr))
	for chr := range e.snpsByChr {
		chrs = append(chrs, chr)
	}
	sort.Strings(chrs)

	fmt.Fprintln(w, "snp chr coord maf n.genotyped hwePval")
	for _, chr := range chrs {
		for _, si := range e.snpsByChr[chr] {
			snp := &e.Snps[si]
			fmt.Fprintf(w, "%s %s %d %s %d %s\n",
				snp.Name, snp.Chr, snp.Coord, ftoa(snp.Maf), snp.NGenotyped, ftoa(snp.HwePval))
		}
	}

	return w.Close()
}

// WriteResults emits every output file the step calls for.
func (e *Engine) WriteResults() error {
	if e.Opts.Verbose > 0 {
		log.Println("write results ...")
	}

	if err := e.WriteSumstats(); err != nil {
		return err
	}
	if err := e.WriteSnpInfo(); err != nil {
		return err
	}

	if e.Opts.Step == 2 || e.Opts.Step == 5 {
		if err := e.WriteSepPermPvals(); err != nil {
			return err
		}
	}
	if e.Opts.Step >= 3 {
		if err := e.WriteAbfsUnweighted(); err != nil {
			return err
		}
		if err := e.WriteAbfsWeighted(); err != nil {
			return err
		}
	}
	if e.Opts.Step == 4 || e.Opts.Step == 5 {
		if err := e.WriteJointPermPvals(); err != nil {
			return err
		}
	}

	return nil
}
