package assoc

// cisPosition classifies a SNP against a feature's cis window: 0 inside,
// 1 beyond the upper bound (terminates a coord-sorted walk), -1 below.
func cisPosition(snp *Snp, f *Ftr, anchor Anchor, lenCis int64) int {
	lo := f.Start - lenCis
	if lo < 0 {
		lo = 0
	}
	hi := f.Start + lenCis
	if anchor == AnchorFSSFES {
		hi = f.End + lenCis
	}

	switch {
	case snp.Coord > hi:
		return 1
	case snp.Coord >= lo:
		return 0
	}
	return -1
}

// cisSnps walks the coord-sorted SNPs of the feature's chromosome and
// collects those in cis, stopping at the first SNP past the window.
func (e *Engine) cisSnps(f *Ftr) []SnpIndex {
	var out []SnpIndex
	for _, si := range e.snpsByChr[f.Chr] {
		switch cisPosition(&e.Snps[si], f, e.Opts.Anchor, e.Opts.CisLen) {
		case 1:
			return out
		case 0:
			out = append(out, si)
		}
	}
	return out
}
