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

	"gonum.org/v1/gonum/stat/distuv"
)

type EffectResult struct {
	Name   string
	F      float64
	DF1    int
	DF2    int
	PValue float64
}

type TwoWayARTResult struct {
	FactorA     EffectResult
	FactorB     EffectResult
	Interaction EffectResult
}

// Effects lists the three tested effects in their reporting order.
func (res TwoWayARTResult) Effects() []EffectResult {
	return []EffectResult{res.FactorA, res.FactorB, res.Interaction}
}

// effect selects which term of the two-way layout is being tested.
type effect int

const (
	effectA effect = iota
	effectB
	effectAB
)

// AlignedRankANOVA tests response ~ factorA * factorB using the
// aligned rank transform: for each effect the responses are stripped of
// everything but that effect (subtract the cell mean, add back the
// estimable component), the aligned values are ranked, and an ordinary
// two-way ANOVA F-test is run on the ranks. One F-test per alignment is
// kept: main effect A, main effect B and the A:B interaction.
//
// Every factor-level cell must be non-empty and the error degrees of
// freedom must stay positive, otherwise the test is not computable.
func AlignedRankANOVA(y []float64, factorA, factorB []string) (TwoWayARTResult, error) {
	if len(y) == 0 {
		return TwoWayARTResult{}, fmt.Errorf("failed to run ART ANOVA: empty response")
	}
	if len(y) != len(factorA) || len(y) != len(factorB) {
		return TwoWayARTResult{}, fmt.Errorf(
			"failed to run ART ANOVA: response and factor lengths mismatch")
	}
	dsg, err := newTwoWayDesign(factorA, factorB)
	if err != nil {
		return TwoWayARTResult{}, err
	}

	var ans TwoWayARTResult
	for _, item := range []struct {
		eff  effect
		name string
		dst  *EffectResult
	}{
		{effectA, "A", &ans.FactorA},
		{effectB, "B", &ans.FactorB},
		{effectAB, "A:B", &ans.Interaction},
	} {
		aligned := dsg.align(y, item.eff)
		res, err := dsg.anovaF(midranks(aligned), item.eff)
		if err != nil {
			return TwoWayARTResult{}, err
		}
		res.Name = item.name
		*item.dst = res
	}
	return ans, nil
}

// twoWayDesign indexes observations of a full two-factor layout.
type twoWayDesign struct {
	n     int
	a, b  int
	ai    []int
	bi    []int
	cellN [][]int
}

func newTwoWayDesign(factorA, factorB []string) (*twoWayDesign, error) {
	levelsA := indexLevels(factorA)
	levelsB := indexLevels(factorB)
	if len(levelsA) < 2 {
		return nil, notComputable("factor A has fewer than 2 levels")
	}
	if len(levelsB) < 2 {
		return nil, notComputable("factor B has fewer than 2 levels")
	}
	dsg := &twoWayDesign{
		n:  len(factorA),
		a:  len(levelsA),
		b:  len(levelsB),
		ai: make([]int, len(factorA)),
		bi: make([]int, len(factorB)),
	}
	dsg.cellN = make([][]int, dsg.a)
	for i := range dsg.cellN {
		dsg.cellN[i] = make([]int, dsg.b)
	}
	for i := range factorA {
		dsg.ai[i] = levelsA[factorA[i]]
		dsg.bi[i] = levelsB[factorB[i]]
		dsg.cellN[dsg.ai[i]][dsg.bi[i]]++
	}
	for i := 0; i < dsg.a; i++ {
		for j := 0; j < dsg.b; j++ {
			if dsg.cellN[i][j] == 0 {
				return nil, notComputable("empty design cell (%d, %d)", i, j)
			}
		}
	}
	if dsg.n-dsg.a*dsg.b <= 0 {
		return nil, notComputable(
			"no error degrees of freedom (%d observations, %d cells)", dsg.n, dsg.a*dsg.b)
	}
	return dsg, nil
}

func indexLevels(factor []string) map[string]int {
	levels := make(map[string]int)
	for _, v := range factor {
		if _, ok := levels[v]; !ok {
			levels[v] = len(levels)
		}
	}
	return levels
}

// means computes cell, marginal and grand means of v.
func (dsg *twoWayDesign) means(v []float64) (cell [][]float64, margA, margB []float64, grand float64) {
	cell = make([][]float64, dsg.a)
	for i := range cell {
		cell[i] = make([]float64, dsg.b)
	}
	margA = make([]float64, dsg.a)
	margB = make([]float64, dsg.b)
	nA := make([]float64, dsg.a)
	nB := make([]float64, dsg.b)
	for i, x := range v {
		cell[dsg.ai[i]][dsg.bi[i]] += x
		margA[dsg.ai[i]] += x
		margB[dsg.bi[i]] += x
		nA[dsg.ai[i]]++
		nB[dsg.bi[i]]++
		grand += x
	}
	for i := 0; i < dsg.a; i++ {
		for j := 0; j < dsg.b; j++ {
			cell[i][j] /= float64(dsg.cellN[i][j])
		}
		margA[i] /= nA[i]
	}
	for j := 0; j < dsg.b; j++ {
		margB[j] /= nB[j]
	}
	grand /= float64(dsg.n)
	return
}

// align strips y of everything except the tested effect: the residual
// (observation minus cell mean) plus the estimable component of the
// effect, per the standard ART procedure.
func (dsg *twoWayDesign) align(y []float64, eff effect) []float64 {
	cell, margA, margB, grand := dsg.means(y)
	ans := make([]float64, len(y))
	for i, x := range y {
		ai, bi := dsg.ai[i], dsg.bi[i]
		residual := x - cell[ai][bi]
		switch eff {
		case effectA:
			ans[i] = residual + margA[ai] - grand
		case effectB:
			ans[i] = residual + margB[bi] - grand
		case effectAB:
			ans[i] = residual + cell[ai][bi] - margA[ai] - margB[bi] + grand
		}
	}
	return ans
}

// anovaF runs a two-way ANOVA on v and returns the F-test of the
// selected effect. Sums of squares are computed from cell and marginal
// means (exact for balanced layouts).
func (dsg *twoWayDesign) anovaF(v []float64, eff effect) (EffectResult, error) {
	cell, margA, margB, grand := dsg.means(v)

	var ssA, ssB, ssAB, ssE float64
	nA := make([]float64, dsg.a)
	nB := make([]float64, dsg.b)
	for i := 0; i < dsg.a; i++ {
		for j := 0; j < dsg.b; j++ {
			nA[i] += float64(dsg.cellN[i][j])
			nB[j] += float64(dsg.cellN[i][j])
			interaction := cell[i][j] - margA[i] - margB[j] + grand
			ssAB += float64(dsg.cellN[i][j]) * interaction * interaction
		}
	}
	for i := 0; i < dsg.a; i++ {
		diff := margA[i] - grand
		ssA += nA[i] * diff * diff
	}
	for j := 0; j < dsg.b; j++ {
		diff := margB[j] - grand
		ssB += nB[j] * diff * diff
	}
	for i, x := range v {
		diff := x - cell[dsg.ai[i]][dsg.bi[i]]
		ssE += diff * diff
	}
	if ssE == 0 {
		return EffectResult{}, notComputable("zero error variance in ANOVA")
	}

	dfE := dsg.n - dsg.a*dsg.b
	msE := ssE / float64(dfE)
	var ss float64
	var df int
	switch eff {
	case effectA:
		ss, df = ssA, dsg.a-1
	case effectB:
		ss, df = ssB, dsg.b-1
	case effectAB:
		ss, df = ssAB, (dsg.a-1)*(dsg.b-1)
	}
	f := (ss / float64(df)) / msE
	fDist := distuv.F{D1: float64(df), D2: float64(dfE)}
	return EffectResult{
		F:      f,
		DF1:    df,
		DF2:    dfE,
		PValue: fDist.Survival(f),
	}, nil
}
