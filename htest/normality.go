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

	"gonum.org/v1/gonum/stat/distuv"
)

type NormalityResult struct {
	Stat   float64
	PValue float64
	N      int
}

// ResidualNormality fits a one-way fixed-effect model of y on a single
// categorical factor (i.e. group means), extracts the residuals and
// runs a Jarque-Bera normality test on them. The JB statistic combines
// the residuals' skewness and excess kurtosis and is chi-squared with
// 2 degrees of freedom under the normal null.
//
// The test is not computable when any factor level has fewer than 3
// observations or when the residuals are constant.
func ResidualNormality(y []float64, factor []string) (NormalityResult, error) {
	if len(y) == 0 {
		return NormalityResult{}, fmt.Errorf("failed to test normality: empty response")
	}
	if len(y) != len(factor) {
		return NormalityResult{}, fmt.Errorf(
			"failed to test normality: response and factor length mismatch (%d vs %d)",
			len(y), len(factor),
		)
	}

	counts := make(map[string]int)
	sums := make(map[string]float64)
	for i, level := range factor {
		counts[level]++
		sums[level] += y[i]
	}
	for level, cnt := range counts {
		if cnt < 3 {
			return NormalityResult{}, notComputable(
				"group %s has fewer than 3 observations", level)
		}
	}

	residuals := make([]float64, len(y))
	for i, level := range factor {
		residuals[i] = y[i] - sums[level]/float64(counts[level])
	}

	n := float64(len(residuals))
	var m2, m3, m4 float64
	for _, r := range residuals {
		m2 += r * r
		m3 += r * r * r
		m4 += r * r * r * r
	}
	m2 /= n
	m3 /= n
	m4 /= n
	if m2 == 0 {
		return NormalityResult{}, notComputable("zero-variance residuals")
	}

	skew := m3 / math.Pow(m2, 1.5)
	exKurt := m4/(m2*m2) - 3
	jb := n / 6 * (skew*skew + exKurt*exKurt/4)
	chi2 := distuv.ChiSquared{K: 2}
	return NormalityResult{
		Stat:   jb,
		PValue: chi2.Survival(jb),
		N:      len(residuals),
	}, nil
}
