package assoc

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	mstats "github.com/montanaflynn/stats"
	"github.com/quantgen/cisbma"
	"github.com/quantgen/cisbma/hwe"
)

// hweCutoff: below this chi-square P-value the exact test is used instead.
const hweCutoff = 0.05

// genoSampleNames extracts the sample names of an IMPUTE header: three
// probability columns per sample named like indX_a1a1, indX_a1a2,
// indX_a2a2, stripped at the first "_a".
func genoSampleNames(header []string) ([]string, error) {
	if (len(header)-5)%3 != 0 {
		return nil, fmt.Errorf("badly formatted IMPUTE header: %d columns", len(header))
	}
	names := make([]string, 0, (len(header)-5)/3)
	for i := 5; i < len(header); i += 3 {
		names = append(names, strings.SplitN(header[i], "_a", 2)[0])
	}
	return names, nil
}

// loadGenos reads the single IMPUTE genotype file: header, then rows
// `chr id coord a1 a2` followed by 3 probability columns per sample.
// Dosage = 0*AA + 1*AB + 2*BB; an all-zero triple is missing. SNPs whose
// MAF falls below mafMin are skipped. Returns the SNP catalogue, the
// coord-sorted per-chromosome index, and the genotype sample names.
func loadGenos(path string, snpsToKeep map[string]struct{}, mafMin float64) ([]Snp, map[string][]SnpIndex, []string, error) {
	r, err := cisbma.OpenText(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer r.Close()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, nil, nil, pfx.Err(err)
		}
		return nil, nil, nil, fmt.Errorf("%s: empty genotype file", path)
	}
	header := strings.Fields(sc.Text())
	samples, err := genoSampleNames(header)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %v", path, err)
	}
	nbSamples := len(samples)

	var snps []Snp
	byChr := make(map[string][]SnpIndex)
	seen := make(map[string]struct{})

	lineNo := 1
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo++
		fields := strings.Fields(line)
		if snpsToKeep != nil {
			if _, keep := snpsToKeep[fields[1]]; !keep {
				continue
			}
		}
		if len(fields) != 3*nbSamples+5 {
			return nil, nil, nil, fmt.Errorf("%s: not enough columns on line %d (got %d, want %d)",
				path, lineNo, len(fields), 3*nbSamples+5)
		}
		if _, dup := seen[fields[1]]; dup {
			continue
		}

		snp := Snp{
			Name:  fields[1],
			Chr:   fields[0],
			Genos: make([]float64, nbSamples),
			IsNA:  make([]bool, nbSamples),
		}
		snp.Coord, err = strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%s line %d: bad coordinate %q: %v", path, lineNo, fields[2], err)
		}

		var doses []float64
		for i := 0; i < nbSamples; i++ {
			aa, err1 := strconv.ParseFloat(fields[5+3*i], 64)
			ab, err2 := strconv.ParseFloat(fields[5+3*i+1], 64)
			bb, err3 := strconv.ParseFloat(fields[5+3*i+2], 64)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, nil, nil, fmt.Errorf("%s line %d: bad probability triple for sample %d", path, lineNo, i+1)
			}
			if aa == 0 && ab == 0 && bb == 0 {
				snp.IsNA[i] = true
				continue
			}
			snp.Genos[i] = ab + 2*bb
			doses = append(doses, snp.Genos[i])
		}

		snp.NGenotyped = len(doses)
		if len(doses) > 0 {
			mean, err := mstats.Mean(doses)
			if err != nil {
				return nil, nil, nil, pfx.Err(err)
			}
			p := mean / 2
			if p <= 0.5 {
				snp.Maf = p
			} else {
				snp.Maf = 1 - p
			}
		}
		if snp.Maf < mafMin {
			continue
		}
		snp.HwePval = hwe.CountDosages(snp.Genos, snp.IsNA).P(hweCutoff)

		seen[fields[1]] = struct{}{}
		snps = append(snps, snp)
		byChr[snp.Chr] = append(byChr[snp.Chr], SnpIndex(len(snps)-1))
	}
	if err := sc.Err(); err != nil {
		return nil, nil, nil, pfx.Err(err)
	}
	if len(snps) == 0 {
		return nil, nil, nil, fmt.Errorf("%s: no SNP to analyze", path)
	}

	for _, idxs := range byChr {
		idxs := idxs
		sort.SliceStable(idxs, func(a, b int) bool {
			return snps[idxs[a]].Coord < snps[idxs[b]].Coord
		})
	}

	return snps, byChr, samples, nil
}
