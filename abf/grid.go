// Package abf computes Approximate Bayes Factors (log10 scale) for the
// meta-analysis model: per-subgroup effects b_s drawn around a shared mean
// with heterogeneity phi2 and prior variance omega2 on the mean, averaged
// over a grid of (phi2, omega2) pairs and over configurations describing
// which subgroups carry the effect.
package abf

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/quantgen/cisbma"
)

// GridPoint is one pair of prior variances: phi2 for the effect
// heterogeneity across subgroups, omega2 for the mean effect.
type GridPoint struct {
	Phi2   float64
	Omega2 float64
}

type Grid []GridPoint

// LoadGrid reads a grid file with two whitespace-separated columns,
// phi2<WS>omega2, one grid point per line.
func LoadGrid(path string) (Grid, error) {
	r, err := cisbma.OpenText(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var grid Grid
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s: format should be phi2<space/tab>oma2, got %d columns", path, len(fields))
		}
		phi2, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, pfx.Err(err)
		}
		oma2, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, pfx.Err(err)
		}
		grid = append(grid, GridPoint{Phi2: phi2, Omega2: oma2})
	}
	if err := sc.Err(); err != nil {
		return nil, pfx.Err(err)
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("%s: empty grid", path)
	}

	return grid, nil
}
