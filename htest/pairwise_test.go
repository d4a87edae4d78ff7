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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairwiseMannWhitneyMatrixShape(t *testing.T) {
	names := []string{"A", "B", "C"}
	groups := [][]float64{
		{0.80, 0.82, 0.81},
		{0.85, 0.86, 0.84},
		{0.90, 0.91, 0.89},
	}
	res, err := PairwiseMannWhitney(names, groups)
	require.NoError(t, err)
	assert.Equal(t, 3, res.NumComparisons)
	assert.Empty(t, res.Failed)
	for i := 0; i < 3; i++ {
		assert.True(t, math.IsNaN(res.Adjusted[i][i]))
		for j := 0; j < 3; j++ {
			if i == j {
				continue
			}
			// symmetric, adjusted = min(1, raw * ncomp)
			assert.Equal(t, res.Adjusted[i][j], res.Adjusted[j][i])
			assert.Equal(t, res.Raw[i][j], res.Raw[j][i])
			assert.InDelta(
				t,
				math.Min(1, res.Raw[i][j]*float64(res.NumComparisons)),
				res.Adjusted[i][j],
				1e-12,
			)
		}
	}
}

func TestPairwiseMannWhitneyExactSmallSamples(t *testing.T) {
	// with n=3 vs n=3 and full separation, the exact two-sided
	// Mann-Whitney p-value bottoms out at 2/20
	res, err := PairwiseMannWhitney(
		[]string{"A", "B"},
		[][]float64{{0.80, 0.82, 0.81}, {0.90, 0.91, 0.89}},
	)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, res.Raw[0][1], 1e-9)
	assert.InDelta(t, 0.1, res.Adjusted[0][1], 1e-9)
}

func TestPairwiseMannWhitneyAllPairsSignificant(t *testing.T) {
	// six runs per group keep all three pairs significant even after
	// the Bonferroni correction
	names := []string{"A", "B", "C"}
	groups := [][]float64{
		{0.800, 0.820, 0.810, 0.795, 0.815, 0.805},
		{0.850, 0.860, 0.840, 0.845, 0.855, 0.865},
		{0.900, 0.910, 0.890, 0.895, 0.905, 0.915},
	}
	res, err := PairwiseMannWhitney(names, groups)
	require.NoError(t, err)
	assert.Empty(t, res.Failed)
	pairs := [][2]int{{0, 1}, {0, 2}, {1, 2}}
	for _, pair := range pairs {
		assert.Less(t, res.Adjusted[pair[0]][pair[1]], 0.05)
	}
}

func TestPairwiseMannWhitneyDegeneratePair(t *testing.T) {
	// two identical samples cannot be compared; the failure is
	// reported per pair, the rest of the matrix is still computed
	names := []string{"A", "B", "C"}
	groups := [][]float64{
		{0.5, 0.5, 0.5},
		{0.5, 0.5, 0.5},
		{0.9, 0.91, 0.92},
	}
	res, err := PairwiseMannWhitney(names, groups)
	require.NoError(t, err)
	require.Equal(t, 1, len(res.Failed))
	assert.Equal(t, 0, res.Failed[0].A)
	assert.Equal(t, 1, res.Failed[0].B)
	assert.True(t, math.IsNaN(res.Adjusted[0][1]))
	assert.False(t, math.IsNaN(res.Adjusted[0][2]))
	assert.False(t, math.IsNaN(res.Adjusted[1][2]))
}

func TestPairwiseMannWhitneyEmptyGroup(t *testing.T) {
	_, err := PairwiseMannWhitney([]string{"A", "B"}, [][]float64{{1}, {}})
	assert.Error(t, err)
	assert.True(t, IsNotComputable(err))
}

func TestPairwiseMannWhitneyLengthMismatch(t *testing.T) {
	_, err := PairwiseMannWhitney([]string{"A"}, [][]float64{{1}, {2}})
	assert.Error(t, err)
	assert.False(t, IsNotComputable(err))
}
