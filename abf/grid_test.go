package abf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.txt")
	if err := os.WriteFile(path, []byte("0.1 0.4\n0.2\t0.8\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	grid, err := LoadGrid(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(grid) != 2 {
		t.Fatalf("got %d grid points, want 2", len(grid))
	}
	if grid[0] != (GridPoint{0.1, 0.4}) || grid[1] != (GridPoint{0.2, 0.8}) {
		t.Errorf("got %+v", grid)
	}
}

func TestLoadGridMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.txt")
	if err := os.WriteFile(path, []byte("0.1 0.4 0.9\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGrid(path); err == nil {
		t.Error("expected an error for a 3-column grid file")
	}
}

func TestLoadGridEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGrid(path); err == nil {
		t.Error("expected an error for an empty grid file")
	}
}
