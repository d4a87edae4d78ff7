// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package htest

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// PairFailure records a single group pair whose rank-sum comparison
// could not be computed. The corresponding matrix entries stay NaN.
type PairFailure struct {
	A      int
	B      int
	Reason string
}

// PairwiseResult holds raw and Bonferroni-adjusted p-values of all
// unordered group-pair comparisons. Both matrices are symmetric with
// an undefined (NaN) diagonal.
type PairwiseResult struct {
	Names          []string
	Raw            [][]float64
	Adjusted       [][]float64
	NumComparisons int
	Failed         []PairFailure
}

// PairwiseMannWhitney runs a two-sided Mann-Whitney U test for every
// unordered pair of groups and applies a Bonferroni correction (raw
// p-value times the number of comparisons, capped at 1) across all
// pairs. A pair that cannot be compared (e.g. both samples identical)
// is reported in Failed rather than aborting the whole matrix.
func PairwiseMannWhitney(names []string, groups [][]float64) (PairwiseResult, error) {
	if len(names) != len(groups) {
		return PairwiseResult{}, fmt.Errorf(
			"failed to run pairwise test: names and groups length mismatch (%d vs %d)",
			len(names), len(groups),
		)
	}
	if len(groups) < 2 {
		return PairwiseResult{}, fmt.Errorf(
			"failed to run pairwise test: need at least 2 groups, got %d", len(groups))
	}
	for i, group := range groups {
		if len(group) == 0 {
			return PairwiseResult{}, notComputable("group %s is empty", names[i])
		}
	}

	k := len(groups)
	ans := PairwiseResult{
		Names:          names,
		Raw:            nanMatrix(k),
		Adjusted:       nanMatrix(k),
		NumComparisons: k * (k - 1) / 2,
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			res, err := stats.MannWhitneyUTest(groups[i], groups[j], stats.LocationDiffers)
			if err != nil {
				ans.Failed = append(ans.Failed, PairFailure{
					A:      i,
					B:      j,
					Reason: err.Error(),
				})
				continue
			}
			adj := math.Min(1, res.P*float64(ans.NumComparisons))
			ans.Raw[i][j] = res.P
			ans.Raw[j][i] = res.P
			ans.Adjusted[i][j] = adj
			ans.Adjusted[j][i] = adj
		}
	}
	return ans, nil
}

func nanMatrix(size int) [][]float64 {
	ans := make([][]float64, size)
	for i := range ans {
		ans[i] = make([]float64, size)
		for j := range ans[i] {
			ans[i][j] = math.NaN()
		}
	}
	return ans
}
