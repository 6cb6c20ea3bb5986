package main

import (
	"fmt"
	"time"

	"github.com/quantgen/cisbma/abf"
	"github.com/quantgen/cisbma/assoc"
)

// buildOptions validates the flag values and assembles the engine options,
// loading the grid when the step needs it.
func buildOptions(genoFile, phenoFile, fcoordFile, anchor string, cisLen int64,
	outPrefix string, step int, qnorm bool, gridFile, bfs string, nperm int,
	seed int64, trick int, pbf, ftrFile, snpFile string, mafMin float64,
	workers, verbose int) (assoc.Options, error) {

	var opts assoc.Options

	if genoFile == "" {
		return opts, fmt.Errorf("missing compulsory option -geno")
	}
	if phenoFile == "" {
		return opts, fmt.Errorf("missing compulsory option -pheno")
	}
	if fcoordFile == "" {
		return opts, fmt.Errorf("missing compulsory option -fcoord")
	}
	if outPrefix == "" {
		return opts, fmt.Errorf("missing compulsory option -out")
	}
	if step < 1 || step > 5 {
		return opts, fmt.Errorf("-step should be 1, 2, 3, 4 or 5")
	}

	anc, err := assoc.ParseAnchor(anchor)
	if err != nil {
		return opts, err
	}
	if cisLen < 0 {
		return opts, fmt.Errorf("-cis should be non-negative")
	}

	whichBfs, err := abf.ParseBFs(bfs)
	if err != nil {
		return opts, err
	}
	whichPermBf, err := abf.ParseBFs(pbf)
	if err != nil {
		return opts, err
	}
	tr, err := assoc.ParseTrick(trick)
	if err != nil {
		return opts, err
	}

	permuting := step == 2 || step == 4 || step == 5
	if permuting && nperm <= 0 {
		return opts, fmt.Errorf("-step %d but no permutations, see -nperm", step)
	}
	if (step == 4 || step == 5) && whichBfs == abf.BFConst && whichPermBf != abf.BFConst {
		return opts, fmt.Errorf("if -bfs const, then -pbf should be const")
	}
	if (step == 4 || step == 5) && whichBfs == abf.BFSubset && whichPermBf == abf.BFAll {
		return opts, fmt.Errorf("if -bfs subset, then -pbf should be const or subset")
	}

	var grid abf.Grid
	if step >= 3 {
		if gridFile == "" {
			return opts, fmt.Errorf("missing compulsory option -grid when -step is 3, 4 or 5")
		}
		if grid, err = abf.LoadGrid(gridFile); err != nil {
			return opts, err
		}
	}

	if seed == 0 {
		seed = time.Now().UnixMicro()
	}
	if workers < 1 {
		workers = 1
	}

	opts = assoc.Options{
		GenoPathsFile:  genoFile,
		PhenoPathsFile: phenoFile,
		FtrCoordsFile:  fcoordFile,
		OutPrefix:      outPrefix,
		Anchor:         anc,
		CisLen:         cisLen,
		Step:           step,
		QNorm:          qnorm,
		Grid:           grid,
		BFs:            whichBfs,
		NPerms:         nperm,
		Seed:           seed,
		Trick:          tr,
		PermBF:         whichPermBf,
		FtrsFile:       ftrFile,
		SnpsFile:       snpFile,
		MafMin:         mafMin,
		Workers:        workers,
		Verbose:        verbose,
	}
	return opts, nil
}
