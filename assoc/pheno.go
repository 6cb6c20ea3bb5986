package assoc

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/quantgen/cisbma"
)

// phenoHeader reads the sample-name header of one phenotype matrix,
// dropping the optional leading "Id" cell.
func phenoHeader(path string) ([]string, error) {
	r, err := cisbma.OpenText(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, pfx.Err(err)
		}
		return nil, fmt.Errorf("%s: empty phenotype file", path)
	}

	samples := strings.Fields(sc.Text())
	if len(samples) > 0 && samples[0] == "Id" {
		samples = samples[1:]
	}

	return samples, nil
}

// loadPhenos reads every subgroup's phenotype matrix into the feature
// catalogue. A feature keeps an empty row for subgroups that do not
// measure it. Cell values are numeric or NA; column 1 is the feature name.
func loadPhenos(paths []cisbma.SubgroupPath, ftrsToKeep map[string]struct{}) (map[string]*Ftr, error) {
	ftrs := make(map[string]*Ftr)

	for s, sp := range paths {
		r, err := cisbma.OpenText(sp.Path)
		if err != nil {
			return nil, err
		}

		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
		if !sc.Scan() {
			r.Close()
			return nil, fmt.Errorf("%s: empty phenotype file", sp.Path)
		}
		header := strings.Fields(sc.Text())
		nbSamples := len(header)
		if nbSamples > 0 && header[0] == "Id" {
			nbSamples--
		}

		lineNo := 1
		for sc.Scan() {
			line := sc.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			lineNo++
			fields := strings.Fields(line)
			if ftrsToKeep != nil {
				if _, keep := ftrsToKeep[fields[0]]; !keep {
					continue
				}
			}
			if len(fields) != nbSamples+1 {
				r.Close()
				return nil, fmt.Errorf("%s: not enough columns on line %d (got %d, want %d)",
					sp.Path, lineNo, len(fields), nbSamples+1)
			}

			f, ok := ftrs[fields[0]]
			if !ok {
				f = newFtr(fields[0], len(paths))
				ftrs[fields[0]] = f
			}
			f.Phenos[s] = make([]float64, nbSamples)
			f.IsNA[s] = make([]bool, nbSamples)
			for i, cell := range fields[1:] {
				if cell == "NA" {
					f.Phenos[s][i] = math.NaN()
					f.IsNA[s][i] = true
					continue
				}
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					r.Close()
					return nil, fmt.Errorf("%s line %d: bad phenotype value %q: %v", sp.Path, lineNo, cell, err)
				}
				f.Phenos[s][i] = v
			}
		}
		if err := sc.Err(); err != nil {
			r.Close()
			return nil, pfx.Err(err)
		}
		r.Close()
	}

	if len(ftrs) == 0 {
		return nil, fmt.Errorf("no feature to analyze")
	}

	return ftrs, nil
}
