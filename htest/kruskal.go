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

type KruskalResult struct {
	H      float64
	DF     int
	PValue float64
}

// KruskalWallis is a rank-based test of whether response distributions
// differ across two or more independent groups. It uses midranks with
// the standard tie correction; the H statistic is approximately
// chi-squared with k-1 degrees of freedom under the null.
func KruskalWallis(groups [][]float64) (KruskalResult, error) {
	if len(groups) < 2 {
		return KruskalResult{}, fmt.Errorf(
			"failed to run Kruskal-Wallis test: need at least 2 groups, got %d", len(groups))
	}
	var n int
	for i, group := range groups {
		if len(group) == 0 {
			return KruskalResult{}, notComputable("group %d is empty", i)
		}
		n += len(group)
	}

	pooled := make([]float64, 0, n)
	for _, group := range groups {
		pooled = append(pooled, group...)
	}
	ranks := midranks(pooled)

	nf := float64(n)
	h := 0.0
	offset := 0
	for _, group := range groups {
		var rankSum float64
		for i := range group {
			rankSum += ranks[offset+i]
		}
		offset += len(group)
		meanRank := rankSum / float64(len(group))
		diff := meanRank - (nf+1)/2
		h += float64(len(group)) * diff * diff
	}
	h *= 12 / (nf * (nf + 1))

	correction := 1 - tieAdjustment(pooled)/(nf*nf*nf-nf)
	if correction == 0 {
		return KruskalResult{}, notComputable("all pooled values are identical")
	}
	h /= correction

	df := len(groups) - 1
	chi2 := distuv.ChiSquared{K: float64(df)}
	return KruskalResult{
		H:      h,
		DF:     df,
		PValue: chi2.Survival(h),
	}, nil
}
