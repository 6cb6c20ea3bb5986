package abf

import (
	"strconv"
	"strings"
)

// Config is a subset of the S subgroups assumed to carry the effect. The
// label is the 1-based member list joined by dashes, eg. "1-3" for subgroups
// 1 and 3 out of S>=3.
type Config struct {
	In    []bool
	Label string
}

func newConfig(members []int, n int) Config {
	in := make([]bool, n)
	parts := make([]string, len(members))
	for i, m := range members {
		in[m] = true
		parts[i] = strconv.Itoa(m + 1)
	}
	return Config{In: in, Label: strings.Join(parts, "-")}
}

// Combinations yields the k-combinations of {0..n-1} in lexicographic
// order as configurations. The same enumeration is used when computing and
// when writing, so label-keyed maps always align.
func Combinations(n, k int) []Config {
	if k < 1 || k > n {
		return nil
	}

	comb := make([]int, k)
	for i := range comb {
		comb[i] = i
	}

	var out []Config
	for {
		out = append(out, newConfig(comb, n))

		// advance to the next combination; stop when exhausted
		i := k - 1
		for i >= 0 && comb[i] == n-k+i {
			i--
		}
		if i < 0 {
			break
		}
		comb[i]++
		for j := i + 1; j < k; j++ {
			comb[j] = comb[j-1] + 1
		}
	}

	return out
}

// SingleConfigs returns the S singleton configurations "1".."S".
func SingleConfigs(n int) []Config {
	return Combinations(n, 1)
}

// AllConfigs returns every non-empty proper subset of the n subgroups:
// k = 1..n-1, each k-block in lexicographic order. Size is 2^n - 2.
func AllConfigs(n int) []Config {
	var out []Config
	for k := 1; k < n; k++ {
		out = append(out, Combinations(n, k)...)
	}
	return out
}
