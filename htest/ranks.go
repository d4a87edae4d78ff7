package htest

import (
	"cmp"
	"slices"
)

// midranks assigns 1-based ranks to the values, with tied values
// receiving the average of the ranks they span.
func midranks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(v1, v2 int) int {
		return cmp.Compare(values[v1], values[v2])
	})
	ranks := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		// ranks are 1-based, tied entries share the average rank
		avg := float64(i+j+2) / 2
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// tieAdjustment computes sum(t^3 - t) over all tie groups, the term
// used by the Kruskal-Wallis tie correction.
func tieAdjustment(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	slices.Sort(sorted)
	var ans float64
	for i := 0; i < len(sorted); {
		j := i
		for j+1 < len(sorted) && sorted[j+1] == sorted[i] {
			j++
		}
		t := float64(j - i + 1)
		ans += t*t*t - t
		i = j + 1
	}
	return ans
}
