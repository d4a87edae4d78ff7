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

package agg

import (
	"math"
	"testing"

	"github.com/czcorpus/quantreport/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantileInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	// type 7: pos = p*(n-1)
	assert.InDelta(t, 1.75, Quantile(sorted, 0.25), 1e-12)
	assert.InDelta(t, 2.5, Quantile(sorted, 0.5), 1e-12)
	assert.InDelta(t, 3.25, Quantile(sorted, 0.75), 1e-12)
	assert.Equal(t, 1.0, Quantile(sorted, 0))
	assert.Equal(t, 4.0, Quantile(sorted, 1))
}

func TestQuantileSingleValue(t *testing.T) {
	assert.Equal(t, 3.14, Quantile([]float64{3.14}, 0.25))
	assert.Equal(t, 3.14, Quantile([]float64{3.14}, 0.99))
}

func TestQuantileMatchesMedian(t *testing.T) {
	samples := [][]float64{
		{0.8},
		{0.8, 0.9},
		{0.1, 0.5, 0.9},
		{-2, 0, 1, 7, 11},
		{3, 3, 3, 3},
	}
	for _, smpl := range samples {
		summary, err := Summarize(smpl, 0.5)
		require.NoError(t, err)
		assert.InDelta(t, summary.Median, summary.Quantiles[0.5], 1e-12)
	}
}

func TestSummarizeSingleRecordGroup(t *testing.T) {
	summary, err := Summarize([]float64{0.83}, 0.05, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, 0.83, summary.Mean)
	assert.Equal(t, 0.83, summary.Median)
	assert.Equal(t, 0.83, summary.Min)
	assert.Equal(t, 0.83, summary.Max)
	assert.Equal(t, 0.83, summary.Quantiles[0.05])
	assert.Equal(t, 0.83, summary.Quantiles[0.95])
}

func TestSummarizeExcludesNaN(t *testing.T) {
	summary, err := Summarize([]float64{1, math.NaN(), 3})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Count)
	assert.Equal(t, 2.0, summary.Mean)
}

func TestSummarizeEmptySample(t *testing.T) {
	_, err := Summarize([]float64{})
	assert.Error(t, err)
	_, err = Summarize([]float64{math.NaN()})
	assert.Error(t, err)
}

func sizeRec(size dataset.Size, acc float64) dataset.RunRecord {
	return dataset.RunRecord{
		Size:     size,
		Quant:    QuantForTest,
		Accuracy: acc,
		F1:       acc,
	}
}

const QuantForTest = dataset.QuantBF16

func TestBySizeDeclaredOrder(t *testing.T) {
	recs := []dataset.RunRecord{
		sizeRec(dataset.Size11B, 0.9),
		sizeRec(dataset.Size1B, 0.7),
		sizeRec(dataset.Size3B, 0.8),
	}
	rows := BySize(recs, []dataset.Metric{dataset.MetricAccuracy})
	require.Equal(t, 3, len(rows))
	assert.Equal(t, "1B", rows[0].Key)
	assert.Equal(t, "3B", rows[1].Key)
	assert.Equal(t, "11B", rows[2].Key)
}

func TestBySizeMergesDuplicateKeys(t *testing.T) {
	recs := []dataset.RunRecord{
		sizeRec(dataset.Size1B, 0.7),
		sizeRec(dataset.Size1B, 0.8),
		sizeRec(dataset.Size1B, 0.9),
	}
	rows := BySize(recs, []dataset.Metric{dataset.MetricAccuracy})
	require.Equal(t, 1, len(rows))
	assert.Equal(t, 3, rows[0].Count)
	assert.InDelta(t, 0.8, rows[0].Metrics[dataset.MetricAccuracy].Mean, 1e-12)
}

func TestBySizeGroupSkipsUnclassified(t *testing.T) {
	seed := 1
	recs := []dataset.RunRecord{
		{Size: dataset.Size1B, Quant: dataset.QuantBF16, Accuracy: 0.7},
		{Size: dataset.Size1B, Quant: dataset.Quant4Bit, Seed: &seed, Accuracy: 0.72},
		// bf16 + seed has no defined group
		{Size: dataset.Size1B, Quant: dataset.QuantBF16, Seed: &seed, Accuracy: 0.99},
	}
	rows := BySizeGroup(recs, []dataset.Metric{dataset.MetricAccuracy})
	require.Equal(t, 2, len(rows))
	assert.Equal(t, SizeGroupKey(dataset.Size1B, dataset.GroupBaseBF16), rows[0].Key)
	assert.Equal(t, SizeGroupKey(dataset.Size1B, dataset.GroupFT4Bit), rows[1].Key)
}

func TestAggregateOmitsAbsentKeys(t *testing.T) {
	recs := []dataset.RunRecord{
		sizeRec(dataset.Size3B, 0.8),
	}
	rows := BySize(recs, []dataset.Metric{dataset.MetricAccuracy})
	require.Equal(t, 1, len(rows))
	assert.Equal(t, "3B", rows[0].Key)
}
