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

// Package bootstrap computes percentile bootstrap confidence intervals
// for sample means. The percentile method makes no normality assumption
// and - unlike z-based formulas - degrades gracefully on constant data,
// where both bounds collapse to the constant.
package bootstrap

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/czcorpus/quantreport/agg"
	"gonum.org/v1/gonum/stat"
)

const (
	DfltResamples = 2000
	DfltAlpha     = 0.01
)

type Interval struct {
	Lower float64
	Upper float64
}

// Estimator draws bootstrap resamples using an explicitly injected
// random generator. There is no package-level shared generator - a
// caller wanting reproducible intervals seeds its own rand.Rand and
// keeps it for the whole report run.
type Estimator struct {
	Resamples int
	Alpha     float64
	rng       *rand.Rand
}

// NewEstimator creates an estimator with the provided resample count,
// significance level and random generator. Non-positive resamples or
// alpha select the defaults (2000, 0.01). A nil rng gets a time-seeded
// generator, which is convenient for one-off runs but not reproducible.
func NewEstimator(resamples int, alpha float64, rng *rand.Rand) *Estimator {
	if resamples <= 0 {
		resamples = DfltResamples
	}
	if alpha <= 0 {
		alpha = DfltAlpha
	}
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>32))
	}
	return &Estimator{
		Resamples: resamples,
		Alpha:     alpha,
		rng:       rng,
	}
}

// MeanCI computes a two-sided percentile confidence interval for the
// mean of x. An empty sample is a contract violation and produces an
// explicit error, never a silent NaN interval.
func (est *Estimator) MeanCI(x []float64) (Interval, error) {
	if len(x) == 0 {
		return Interval{}, fmt.Errorf("failed to estimate CI: empty sample")
	}
	if est.Alpha <= 0 || est.Alpha >= 1 {
		return Interval{}, fmt.Errorf("failed to estimate CI: invalid alpha %f", est.Alpha)
	}
	means := make([]float64, est.Resamples)
	resample := make([]float64, len(x))
	for r := 0; r < est.Resamples; r++ {
		for i := range resample {
			resample[i] = x[est.rng.IntN(len(x))]
		}
		means[r] = stat.Mean(resample, nil)
	}
	slices.Sort(means)
	ans := Interval{
		Lower: agg.Quantile(means, est.Alpha/2),
		Upper: agg.Quantile(means, 1-est.Alpha/2),
	}
	return ans, nil
}
