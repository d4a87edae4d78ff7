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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// balanced 2x2 design, 3 replicates per cell, with a strong A effect
// (+4), a tiny B effect (+0.05) and no interaction
func testingDesign() (y []float64, factorA, factorB []string) {
	cells := []struct {
		a, b string
		base float64
	}{
		{"a1", "b1", 1.0},
		{"a1", "b2", 1.05},
		{"a2", "b1", 5.0},
		{"a2", "b2", 5.05},
	}
	for _, cell := range cells {
		for _, noise := range []float64{0, 0.1, -0.1} {
			y = append(y, cell.base+noise)
			factorA = append(factorA, cell.a)
			factorB = append(factorB, cell.b)
		}
	}
	return
}

func TestAlignedRankANOVA(t *testing.T) {
	y, factorA, factorB := testingDesign()
	res, err := AlignedRankANOVA(y, factorA, factorB)
	require.NoError(t, err)

	// A-aligned ranks separate the two A levels completely:
	// SS_A = 108, MS_E = 4
	assert.Equal(t, "A", res.FactorA.Name)
	assert.InDelta(t, 27.0, res.FactorA.F, 1e-9)
	assert.Equal(t, 1, res.FactorA.DF1)
	assert.Equal(t, 8, res.FactorA.DF2)
	assert.Less(t, res.FactorA.PValue, 0.01)

	// the B effect is dwarfed by the within-cell noise
	assert.Equal(t, "B", res.FactorB.Name)
	assert.InDelta(t, 0.75, res.FactorB.F, 1e-9)
	assert.Greater(t, res.FactorB.PValue, 0.05)

	// purely additive data: the interaction alignment leaves
	// nothing but noise
	assert.Equal(t, "A:B", res.Interaction.Name)
	assert.InDelta(t, 0.0, res.Interaction.F, 1e-9)
	assert.InDelta(t, 1.0, res.Interaction.PValue, 1e-9)
	assert.Equal(t, 1, res.Interaction.DF1)
}

func TestAlignedRankANOVAEmptyCell(t *testing.T) {
	y := []float64{1, 2, 3, 4, 5, 6}
	factorA := []string{"a1", "a1", "a1", "a2", "a2", "a2"}
	factorB := []string{"b1", "b2", "b1", "b1", "b1", "b1"}
	_, err := AlignedRankANOVA(y, factorA, factorB)
	assert.Error(t, err)
	assert.True(t, IsNotComputable(err))
}

func TestAlignedRankANOVANoErrorDF(t *testing.T) {
	// one observation per cell leaves no error degrees of freedom
	y := []float64{1, 2, 3, 4}
	factorA := []string{"a1", "a1", "a2", "a2"}
	factorB := []string{"b1", "b2", "b1", "b2"}
	_, err := AlignedRankANOVA(y, factorA, factorB)
	assert.Error(t, err)
	assert.True(t, IsNotComputable(err))
}

func TestAlignedRankANOVASingleLevelFactor(t *testing.T) {
	y := []float64{1, 2, 3, 4}
	factorA := []string{"a1", "a1", "a1", "a1"}
	factorB := []string{"b1", "b2", "b1", "b2"}
	_, err := AlignedRankANOVA(y, factorA, factorB)
	assert.Error(t, err)
	assert.True(t, IsNotComputable(err))
}

func TestAlignedRankANOVALengthMismatch(t *testing.T) {
	_, err := AlignedRankANOVA([]float64{1, 2}, []string{"a"}, []string{"b", "b"})
	assert.Error(t, err)
	assert.False(t, IsNotComputable(err))
}
