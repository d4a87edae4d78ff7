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

// Package agg provides group-by summary statistics over run records.
// Result rows are always emitted in the declared category order of the
// grouping factor(s), never in insertion or hash order.
package agg

import (
	"fmt"
	"math"
	"slices"

	"github.com/czcorpus/quantreport/dataset"
	"gonum.org/v1/gonum/stat"
)

// Quantile computes the p-th quantile of a sorted sample using the
// Hyndman-Fan type 7 estimator (linear interpolation between the two
// bracketing order statistics). The input must be sorted and non-empty;
// violating that is a programming error.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		panic("Quantile requires a non-empty sample")
	}
	if p < 0 || p > 1 {
		panic(fmt.Sprintf("Quantile probability out of range: %f", p))
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summary holds the supported reductions of a single numeric column
// within one group.
type Summary struct {
	Count     int
	Mean      float64
	Median    float64
	Min       float64
	Max       float64
	Quantiles map[float64]float64
}

// Summarize computes all reductions of a sample. NaN values are treated
// as missing and excluded; an effectively empty sample is an error.
// A single-value sample yields median = min = max = quantile(p) = the value.
func Summarize(values []float64, quantiles ...float64) (Summary, error) {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return Summary{}, fmt.Errorf("failed to summarize: empty sample")
	}
	slices.Sort(sorted)
	ans := Summary{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: Quantile(sorted, 0.5),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	if len(quantiles) > 0 {
		ans.Quantiles = make(map[float64]float64, len(quantiles))
		for _, p := range quantiles {
			ans.Quantiles[p] = Quantile(sorted, p)
		}
	}
	return ans, nil
}

// Row is one output row of a generic aggregation.
type Row struct {
	Key     string
	Count   int
	Metrics map[dataset.Metric]Summary
}

// KeyFunc maps a record to its grouping key. Records reporting ok=false
// (e.g. an unclassifiable group) are excluded from the aggregation.
type KeyFunc func(rec dataset.RunRecord) (key string, ok bool)

// Aggregate produces one summary row per distinct key, in the order
// given by keyOrder. Keys absent from the data produce no row. Within
// a row, each metric is summarized independently, so a missing value
// in one column does not exclude the record from the others.
func Aggregate(
	recs []dataset.RunRecord,
	keyOrder []string,
	keyOf KeyFunc,
	metrics []dataset.Metric,
	quantiles ...float64,
) []Row {
	buckets := make(map[string][]dataset.RunRecord)
	for _, rec := range recs {
		key, ok := keyOf(rec)
		if !ok {
			continue
		}
		buckets[key] = append(buckets[key], rec)
	}
	ans := make([]Row, 0, len(keyOrder))
	for _, key := range keyOrder {
		group, ok := buckets[key]
		if !ok {
			continue
		}
		row := Row{
			Key:     key,
			Count:   len(group),
			Metrics: make(map[dataset.Metric]Summary, len(metrics)),
		}
		for _, m := range metrics {
			values := make([]float64, len(group))
			for i, rec := range group {
				values[i] = rec.Value(m)
			}
			summary, err := Summarize(values, quantiles...)
			if err != nil {
				// all values of the column missing - the reduction
				// is simply absent from the row
				continue
			}
			row.Metrics[m] = summary
		}
		ans = append(ans, row)
	}
	return ans
}

// SizeGroupKey builds the composite key used by BySizeGroup rows.
func SizeGroupKey(size dataset.Size, group dataset.Group) string {
	return fmt.Sprintf("%s/%s", size, group)
}

// BySize aggregates records by model size, in the declared size order.
func BySize(recs []dataset.RunRecord, metrics []dataset.Metric, quantiles ...float64) []Row {
	keyOrder := make([]string, len(dataset.SizeOrder))
	for i, s := range dataset.SizeOrder {
		keyOrder[i] = string(s)
	}
	return Aggregate(
		recs,
		keyOrder,
		func(rec dataset.RunRecord) (string, bool) {
			return string(rec.Size), true
		},
		metrics,
		quantiles...,
	)
}

// BySizeGroup aggregates records by (size, derived group), sizes-major,
// in the declared category orders. Unclassifiable records are excluded.
func BySizeGroup(recs []dataset.RunRecord, metrics []dataset.Metric, quantiles ...float64) []Row {
	keyOrder := make([]string, 0, len(dataset.SizeOrder)*len(dataset.GroupOrder))
	for _, s := range dataset.SizeOrder {
		for _, g := range dataset.GroupOrder {
			keyOrder = append(keyOrder, SizeGroupKey(s, g))
		}
	}
	return Aggregate(
		recs,
		keyOrder,
		func(rec dataset.RunRecord) (string, bool) {
			group := rec.Group()
			if group == dataset.GroupUnclassified {
				return "", false
			}
			return SizeGroupKey(rec.Size, group), true
		},
		metrics,
		quantiles...,
	)
}

// ByGroup aggregates records by the derived group alone.
func ByGroup(recs []dataset.RunRecord, metrics []dataset.Metric, quantiles ...float64) []Row {
	keyOrder := make([]string, len(dataset.GroupOrder))
	for i, g := range dataset.GroupOrder {
		keyOrder[i] = string(g)
	}
	return Aggregate(
		recs,
		keyOrder,
		func(rec dataset.RunRecord) (string, bool) {
			group := rec.Group()
			if group == dataset.GroupUnclassified {
				return "", false
			}
			return string(group), true
		},
		metrics,
		quantiles...,
	)
}
