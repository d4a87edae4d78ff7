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

package bootstrap

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func testingRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func TestMeanCIEmptySample(t *testing.T) {
	est := NewEstimator(100, 0.05, testingRNG(1))
	_, err := est.MeanCI([]float64{})
	assert.Error(t, err)
}

func TestMeanCIConstantSample(t *testing.T) {
	for _, resamples := range []int{10, 500} {
		for _, alpha := range []float64{0.01, 0.05, 0.5} {
			est := NewEstimator(resamples, alpha, testingRNG(7))
			ci, err := est.MeanCI([]float64{2.5, 2.5, 2.5, 2.5})
			require.NoError(t, err)
			assert.Equal(t, 2.5, ci.Lower)
			assert.Equal(t, 2.5, ci.Upper)
		}
	}
}

func TestMeanCISingleValue(t *testing.T) {
	est := NewEstimator(200, 0.01, testingRNG(11))
	ci, err := est.MeanCI([]float64{0.42})
	require.NoError(t, err)
	assert.Equal(t, 0.42, ci.Lower)
	assert.Equal(t, 0.42, ci.Upper)
}

func TestMeanCIBoundsOrderedAroundMean(t *testing.T) {
	x := []float64{0.80, 0.82, 0.81, 0.85, 0.86, 0.84, 0.90, 0.91, 0.89}
	est := NewEstimator(2000, 0.01, testingRNG(3))
	ci, err := est.MeanCI(x)
	require.NoError(t, err)
	mean := stat.Mean(x, nil)
	assert.LessOrEqual(t, ci.Lower, mean)
	assert.GreaterOrEqual(t, ci.Upper, mean)
	assert.Less(t, ci.Lower, ci.Upper)
}

func TestMeanCIReproducibleWithSeed(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	ci1, err := NewEstimator(500, 0.05, testingRNG(99)).MeanCI(x)
	require.NoError(t, err)
	ci2, err := NewEstimator(500, 0.05, testingRNG(99)).MeanCI(x)
	require.NoError(t, err)
	assert.Equal(t, ci1, ci2)
}

func TestNewEstimatorDefaults(t *testing.T) {
	est := NewEstimator(0, 0, testingRNG(1))
	assert.Equal(t, DfltResamples, est.Resamples)
	assert.Equal(t, DfltAlpha, est.Alpha)
}

// TestMeanCICoverage is a Monte Carlo check of the statistical contract:
// over repeated normal samples, the interval should contain the true
// mean with probability close to 1 - alpha.
func TestMeanCICoverage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Monte Carlo coverage test in short mode")
	}
	const (
		trials     = 500
		sampleSize = 30
		trueMean   = 10.0
		trueStdDev = 2.0
	)
	rng := testingRNG(2025)
	est := NewEstimator(2000, 0.01, rng)
	covered := 0
	x := make([]float64, sampleSize)
	for trial := 0; trial < trials; trial++ {
		for i := range x {
			x[i] = trueMean + trueStdDev*rng.NormFloat64()
		}
		ci, err := est.MeanCI(x)
		require.NoError(t, err)
		if ci.Lower <= trueMean && trueMean <= ci.Upper {
			covered++
		}
	}
	coverage := float64(covered) / float64(trials)
	// nominal coverage is 0.99; the percentile bootstrap on n=30 tends
	// to undercover slightly, hence the loose bound
	assert.GreaterOrEqual(t, coverage, 0.95)
}
