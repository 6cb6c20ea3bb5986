package assoc

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/quantgen/cisbma"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGenoSampleNames(t *testing.T) {
	header := []string{"chr", "name", "coord", "a1", "a2",
		"ind1_a1a1", "ind1_a1a2", "ind1_a2a2",
		"ind2_a1a1", "ind2_a1a2", "ind2_a2a2"}

	names, err := genoSampleNames(header)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "ind1" || names[1] != "ind2" {
		t.Errorf("got %v", names)
	}

	if _, err := genoSampleNames(header[:10]); err == nil {
		t.Error("expected an error for a truncated header")
	}
}

func TestLoadGenos(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "geno.txt",
		"chr name coord a1 a2 ind1_a1a1 ind1_a1a2 ind1_a2a2 ind2_a1a1 ind2_a1a2 ind2_a2a2 ind3_a1a1 ind3_a1a2 ind3_a2a2\n"+
			"chr1 rs1 1500 A G 1 0 0 0 1 0 0 0 1\n"+
			"chr1 rs2 1000 A G 0 0 0 1 0 0 1 0 0\n")

	snps, byChr, samples, err := loadGenos(path, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 3 || samples[0] != "ind1" {
		t.Errorf("samples: %v", samples)
	}
	if len(snps) != 2 {
		t.Fatalf("got %d SNPs, want 2", len(snps))
	}

	// rs1: doses 0,1,2 -> mean 1, p=0.5, maf=0.5
	rs1 := snps[0]
	if rs1.Name != "rs1" || rs1.Coord != 1500 {
		t.Errorf("rs1: %+v", rs1)
	}
	if math.Abs(rs1.Maf-0.5) > 1e-12 {
		t.Errorf("rs1 maf: got %v, want 0.5", rs1.Maf)
	}
	if rs1.NGenotyped != 3 {
		t.Errorf("rs1 NGenotyped: got %d, want 3", rs1.NGenotyped)
	}

	// rs2: first sample missing (all-zero triple), doses 0,0 -> maf 0
	rs2 := snps[1]
	if !rs2.IsNA[0] || rs2.IsNA[1] || rs2.IsNA[2] {
		t.Errorf("rs2 IsNA: %v", rs2.IsNA)
	}
	if rs2.Maf != 0 || rs2.NGenotyped != 2 {
		t.Errorf("rs2: maf=%v n=%d", rs2.Maf, rs2.NGenotyped)
	}

	// chromosome index is coord-sorted: rs2 (1000) before rs1 (1500)
	idx := byChr["chr1"]
	if len(idx) != 2 || snps[idx[0]].Name != "rs2" || snps[idx[1]].Name != "rs1" {
		t.Errorf("chr1 order: %v", idx)
	}
}

func TestLoadGenosMafFilter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "geno.txt",
		"chr name coord a1 a2 ind1_a1a1 ind1_a1a2 ind1_a2a2 ind2_a1a1 ind2_a1a2 ind2_a2a2\n"+
			"chr1 rs1 1000 A G 1 0 0 0 1 0\n"+ // maf 0.25
			"chr1 rs2 2000 A G 1 0 0 1 0 0\n") // maf 0

	snps, _, _, err := loadGenos(path, nil, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if len(snps) != 1 || snps[0].Name != "rs1" {
		t.Errorf("maf filter: got %v", snps)
	}
}

func TestLoadGenosAllowList(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "geno.txt",
		"chr name coord a1 a2 ind1_a1a1 ind1_a1a2 ind1_a2a2\n"+
			"chr1 rs1 1000 A G 0 1 0\n"+
			"chr1 rs2 2000 A G 0 0 1\n")

	snps, _, _, err := loadGenos(path, map[string]struct{}{"rs2": {}}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(snps) != 1 || snps[0].Name != "rs2" {
		t.Errorf("allow list: got %v", snps)
	}
}

func TestLoadPhenos(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "pheno1.txt",
		"Id ind1 ind2 ind3\ngene1 1.5 NA 2.5\ngene2 0.1 0.2 0.3\n")
	p2 := writeFile(t, dir, "pheno2.txt",
		"ind2 ind4\ngene1 7 8\n")

	paths := []cisbma.SubgroupPath{{ID: "s1", Path: p1}, {ID: "s2", Path: p2}}
	ftrs, err := loadPhenos(paths, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ftrs) != 2 {
		t.Fatalf("got %d features, want 2", len(ftrs))
	}

	g1 := ftrs["gene1"]
	if len(g1.Phenos[0]) != 3 || len(g1.Phenos[1]) != 2 {
		t.Fatalf("gene1 rows: %d and %d columns", len(g1.Phenos[0]), len(g1.Phenos[1]))
	}
	if !g1.IsNA[0][1] || g1.IsNA[0][0] || g1.IsNA[0][2] {
		t.Errorf("gene1 s1 NA flags: %v", g1.IsNA[0])
	}
	if g1.Phenos[1][0] != 7 || g1.Phenos[1][1] != 8 {
		t.Errorf("gene1 s2: %v", g1.Phenos[1])
	}

	// gene2 only measured in subgroup 1
	g2 := ftrs["gene2"]
	if len(g2.Phenos[1]) != 0 {
		t.Errorf("gene2 should have no row in subgroup 2: %v", g2.Phenos[1])
	}
}

func TestLoadPhenosAllowList(t *testing.T) {
	dir := t.TempDir()
	p1 := writeFile(t, dir, "pheno.txt", "ind1 ind2\ngene1 1 2\ngene2 3 4\n")

	ftrs, err := loadPhenos([]cisbma.SubgroupPath{{ID: "s1", Path: p1}},
		map[string]struct{}{"gene2": {}})
	if err != nil {
		t.Fatal(err)
	}
	if len(ftrs) != 1 {
		t.Fatalf("got %d features, want 1", len(ftrs))
	}
	if _, ok := ftrs["gene2"]; !ok {
		t.Error("gene2 missing")
	}
}

func TestLoadFtrCoordsMissing(t *testing.T) {
	dir := t.TempDir()
	bed := writeFile(t, dir, "coords.bed", "chr1\t999\t1100\tgene1\n")

	ftrs := map[string]*Ftr{
		"gene1": newFtr("gene1", 1),
		"gene2": newFtr("gene2", 1),
	}
	if err := loadFtrCoords(bed, ftrs); err == nil {
		t.Error("expected an error for a feature without coordinates")
	}

	if ftrs["gene1"].Chr != "chr1" || ftrs["gene1"].Start != 1000 || ftrs["gene1"].End != 1100 {
		t.Errorf("gene1 coords: %+v", ftrs["gene1"])
	}
}

func TestBuildSampleMaps(t *testing.T) {
	phenoSamples := [][]string{
		{"ind1", "ind2"},
		{"ind2", "ind3"},
	}
	genoSamples := []string{"ind3", "ind1", "ind4"}

	samples, phenoIdx, genoIdx := buildSampleMaps(phenoSamples, genoSamples)

	want := []string{"ind1", "ind2", "ind3", "ind4"}
	if len(samples) != len(want) {
		t.Fatalf("universe: %v", samples)
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("universe[%d]: got %s, want %s", i, samples[i], want[i])
		}
	}

	// subgroup 1 lacks ind3 and ind4
	if got := phenoIdx[0]; got[0] != 0 || got[1] != 1 || got[2] != absent || got[3] != absent {
		t.Errorf("phenoIdx[0]: %v", got)
	}
	// subgroup 2 lacks ind1 and ind4
	if got := phenoIdx[1]; got[0] != absent || got[1] != 0 || got[2] != 1 || got[3] != absent {
		t.Errorf("phenoIdx[1]: %v", got)
	}
	// genotypes lack ind2
	if genoIdx[0] != 1 || genoIdx[1] != absent || genoIdx[2] != 0 || genoIdx[3] != 2 {
		t.Errorf("genoIdx: %v", genoIdx)
	}
}
