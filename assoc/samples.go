package assoc

// absent marks a universe sample with no column in a given source.
const absent = -1

// buildSampleMaps merges the per-subgroup phenotype sample lists and the
// genotype sample list into one universe, in first-seen order, and builds
// the universe-position -> source-column maps.
//
// phenoIdx[s][i] is the column of universe sample i in subgroup s's
// phenotype matrix, or absent; genoIdx[i] likewise for the single genotype
// source.
func buildSampleMaps(phenoSamples [][]string, genoSamples []string) (samples []string, phenoIdx [][]int, genoIdx []int) {
	pos := make(map[string]int)
	add := func(name string) {
		if _, ok := pos[name]; !ok {
			pos[name] = len(samples)
			samples = append(samples, name)
		}
	}
	for _, list := range phenoSamples {
		for _, name := range list {
			add(name)
		}
	}
	for _, name := range genoSamples {
		add(name)
	}

	phenoIdx = make([][]int, len(phenoSamples))
	for s, list := range phenoSamples {
		phenoIdx[s] = make([]int, len(samples))
		for i := range phenoIdx[s] {
			phenoIdx[s][i] = absent
		}
		for col, name := range list {
			// first occurrence wins for duplicated sample names
			if phenoIdx[s][pos[name]] == absent {
				phenoIdx[s][pos[name]] = col
			}
		}
	}

	genoIdx = make([]int, len(samples))
	for i := range genoIdx {
		genoIdx[i] = absent
	}
	for col, name := range genoSamples {
		if genoIdx[pos[name]] == absent {
			genoIdx[pos[name]] = col
		}
	}

	return samples, phenoIdx, genoIdx
}
