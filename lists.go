package cisbma

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/carbocation/pfx"
)

// SubgroupPath is one row of a genotype or phenotype list file: a subgroup
// identifier and the path to its data file.
type SubgroupPath struct {
	ID   string
	Path string
}

// ReadSubgroupPaths parses a two-column list file (subgroup<WS>path). Lines
// starting with # are comments. Row order is preserved; it defines the
// subgroup order for the whole run.
func ReadSubgroupPaths(path string) ([]SubgroupPath, error) {
	r, err := OpenText(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out []SubgroupPath
	seen := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s: expected 2 columns (subgroup<WS>path), got %d", path, len(fields))
		}
		if _, ok := seen[fields[0]]; ok {
			return nil, fmt.Errorf("%s: duplicate subgroup %q", path, fields[0])
		}
		seen[fields[0]] = struct{}{}
		out = append(out, SubgroupPath{ID: fields[0], Path: fields[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}

// ReadIDList parses a one-identifier-per-line allow-list. A nil map is
// returned for an empty path, meaning "keep everything".
func ReadIDList(path string) (map[string]struct{}, error) {
	if path == "" {
		return nil, nil
	}

	r, err := OpenText(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		id := strings.TrimSpace(sc.Text())
		if id == "" || strings.HasPrefix(id, "#") {
			continue
		}
		out[id] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}
