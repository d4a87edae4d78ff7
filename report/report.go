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

// Package report turns a set of run records into the final evaluation
// report: summary tables, bootstrap confidence intervals, hypothesis
// tests, a metric correlation matrix and charts. Any cell that cannot
// be computed is recorded in the failure summary instead of aborting
// the rest of the report.
package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/czcorpus/quantreport/agg"
	"github.com/czcorpus/quantreport/bootstrap"
	"github.com/czcorpus/quantreport/dataset"
	"github.com/czcorpus/quantreport/htest"
	"gonum.org/v1/gonum/stat"
)

// ResponseMetrics are the quality metrics the hypothesis tests run on.
var ResponseMetrics = []dataset.Metric{dataset.MetricAccuracy, dataset.MetricF1}

// tableQuantiles are the extra quantiles summary tables report besides
// the median.
var tableQuantiles = []float64{0.25, 0.75}

// CIRow is one (size, group) cell of a confidence interval table.
type CIRow struct {
	Size    dataset.Size  `json:"size"`
	Group   dataset.Group `json:"group"`
	Count   int           `json:"count"`
	Mean    float64       `json:"mean"`
	CILower float64       `json:"ciLower"`
	CIUpper float64       `json:"ciUpper"`

	// HasCI is false when the interval could not be estimated;
	// the corresponding reason is in the failure summary.
	HasCI bool `json:"hasCI"`
}

// CITable holds per-cell mean estimates with bootstrap confidence
// intervals for a single metric. Rows follow the declared category
// orders, sizes-major.
type CITable struct {
	Metric dataset.Metric `json:"metric"`
	Rows   []CIRow        `json:"rows"`
}

// MetricTests bundles the results of all hypothesis tests run on one
// response metric. A nil entry means the respective test failed (see
// the failure summary).
type MetricTests struct {
	Metric      dataset.Metric         `json:"metric"`
	Normality   *htest.NormalityResult `json:"normality"`
	GroupDiff   *htest.KruskalResult   `json:"groupDiff"`
	Pairwise    *htest.PairwiseResult  `json:"pairwise"`
	SizeByGroup *htest.TwoWayARTResult `json:"sizeByGroup"`
}

// CorrelationMatrix is a symmetric Pearson correlation matrix over all
// numeric metrics. An undefined entry (constant column) is NaN and
// reported in the failure summary.
type CorrelationMatrix struct {
	Metrics []dataset.Metric `json:"metrics"`
	Values  [][]float64      `json:"values"`
}

// Report is the complete result of one pipeline run.
type Report struct {
	GeneratedAt     time.Time         `json:"generatedAt"`
	Resamples       int               `json:"resamples"`
	Alpha           float64           `json:"alpha"`
	NumRecords      int               `json:"numRecords"`
	NumUnclassified int               `json:"numUnclassified"`
	BySize          []agg.Row         `json:"bySize"`
	BySizeGroup     []agg.Row         `json:"bySizeGroup"`
	CITables        []CITable         `json:"ciTables"`
	Tests           []MetricTests     `json:"tests"`
	Correlations    CorrelationMatrix `json:"correlations"`
	Failures        FailureSummary    `json:"failures"`
}

// Builder computes reports. The estimator is shared across all CI
// cells so a single seeded generator makes the whole report
// reproducible.
type Builder struct {
	Est *bootstrap.Estimator

	// OnCell, if set, is called once per finished bootstrap cell
	// (used by the CLI to advance its progress bar).
	OnCell func()
}

func NewBuilder(est *bootstrap.Estimator) *Builder {
	return &Builder{Est: est}
}

// CountBootstrapCells returns the number of bootstrap CI cells Build
// will process for the given records, i.e. the number of OnCell calls
// to expect.
func CountBootstrapCells(recs []dataset.RunRecord) int {
	cells := make(map[string]bool)
	for _, rec := range recs {
		group := rec.Group()
		if group == dataset.GroupUnclassified {
			continue
		}
		cells[agg.SizeGroupKey(rec.Size, group)] = true
	}
	return len(cells) * len(dataset.MetricOrder)
}

// Build computes the full report from the provided records. An empty
// input is an error; any other problem is local to its report cell and
// ends up in the failure summary. The context is checked between
// bootstrap cells so an interrupted run stops within one cell.
func (b *Builder) Build(ctx context.Context, recs []dataset.RunRecord) (*Report, error) {
	if len(recs) == 0 {
		return nil, fmt.Errorf("failed to build report: no records")
	}
	rep := &Report{
		GeneratedAt: time.Now(),
		Resamples:   b.Est.Resamples,
		Alpha:       b.Est.Alpha,
		NumRecords:  len(recs),
	}

	classified := make([]dataset.RunRecord, 0, len(recs))
	for _, rec := range recs {
		if rec.Group() == dataset.GroupUnclassified {
			rep.NumUnclassified++
			continue
		}
		classified = append(classified, rec)
	}
	if rep.NumUnclassified > 0 {
		rep.Failures.Addf(
			"grouping", "bf16+seed",
			"%d record(s) with an undefined quant/seed combination excluded from grouped results",
			rep.NumUnclassified,
		)
	}
	if len(classified) == 0 {
		return nil, fmt.Errorf("failed to build report: no classifiable records")
	}

	rep.BySize = agg.BySize(recs, dataset.MetricOrder, tableQuantiles...)
	rep.BySizeGroup = agg.BySizeGroup(classified, dataset.MetricOrder, tableQuantiles...)
	tables, err := b.buildCITables(ctx, classified, &rep.Failures)
	if err != nil {
		return nil, err
	}
	rep.CITables = tables
	for _, m := range ResponseMetrics {
		rep.Tests = append(rep.Tests, b.runTests(classified, m, &rep.Failures))
	}
	rep.Correlations = buildCorrelations(recs, &rep.Failures)
	return rep, nil
}

func (b *Builder) buildCITables(
	ctx context.Context,
	recs []dataset.RunRecord,
	failures *FailureSummary,
) ([]CITable, error) {
	buckets := make(map[string][]dataset.RunRecord)
	for _, rec := range recs {
		key := agg.SizeGroupKey(rec.Size, rec.Group())
		buckets[key] = append(buckets[key], rec)
	}
	ans := make([]CITable, 0, len(dataset.MetricOrder))
	for _, m := range dataset.MetricOrder {
		table := CITable{Metric: m}
		for _, size := range dataset.SizeOrder {
			for _, group := range dataset.GroupOrder {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				default:
				}
				cell := agg.SizeGroupKey(size, group)
				cellRecs, ok := buckets[cell]
				if !ok {
					continue
				}
				values := make([]float64, len(cellRecs))
				for i, rec := range cellRecs {
					values[i] = rec.Value(m)
				}
				row := CIRow{
					Size:  size,
					Group: group,
					Count: len(values),
					Mean:  stat.Mean(values, nil),
				}
				ci, err := b.Est.MeanCI(values)
				if err != nil {
					failures.Add(
						fmt.Sprintf("bootstrap:%s", m), cell, err.Error())

				} else {
					row.CILower = ci.Lower
					row.CIUpper = ci.Upper
					row.HasCI = true
				}
				table.Rows = append(table.Rows, row)
				if b.OnCell != nil {
					b.OnCell()
				}
			}
		}
		ans = append(ans, table)
	}
	return ans, nil
}

// groupSamples splits classified records into per-group samples of one
// metric, in the declared group order. Groups absent from the data are
// absent from the answer.
func groupSamples(
	recs []dataset.RunRecord,
	m dataset.Metric,
) (names []string, samples [][]float64) {
	byGroup := make(map[dataset.Group][]float64)
	for _, rec := range recs {
		group := rec.Group()
		byGroup[group] = append(byGroup[group], rec.Value(m))
	}
	for _, group := range dataset.GroupOrder {
		sample, ok := byGroup[group]
		if !ok {
			continue
		}
		names = append(names, string(group))
		samples = append(samples, sample)
	}
	return
}

func (b *Builder) runTests(
	recs []dataset.RunRecord,
	m dataset.Metric,
	failures *FailureSummary,
) MetricTests {
	ans := MetricTests{Metric: m}

	y := make([]float64, len(recs))
	groupFactor := make([]string, len(recs))
	sizeFactor := make([]string, len(recs))
	for i, rec := range recs {
		y[i] = rec.Value(m)
		groupFactor[i] = string(rec.Group())
		sizeFactor[i] = string(rec.Size)
	}

	if normality, err := htest.ResidualNormality(y, groupFactor); err != nil {
		failures.Add("normality", string(m), err.Error())

	} else {
		ans.Normality = &normality
	}

	names, samples := groupSamples(recs, m)
	if kw, err := htest.KruskalWallis(samples); err != nil {
		failures.Add("kruskal-wallis", string(m), err.Error())

	} else {
		ans.GroupDiff = &kw
	}

	if pw, err := htest.PairwiseMannWhitney(names, samples); err != nil {
		failures.Add("pairwise", string(m), err.Error())

	} else {
		ans.Pairwise = &pw
		for _, pf := range pw.Failed {
			failures.Addf(
				"pairwise", string(m),
				"%s vs %s: %s", names[pf.A], names[pf.B], pf.Reason)
		}
	}

	if art, err := htest.AlignedRankANOVA(y, sizeFactor, groupFactor); err != nil {
		failures.Add("size-by-group", string(m), err.Error())

	} else {
		ans.SizeByGroup = &art
	}
	return ans
}

// buildCorrelations computes the Pearson correlation of every metric
// pair over all records (the derived group plays no role here, so
// unclassified records contribute too).
func buildCorrelations(
	recs []dataset.RunRecord,
	failures *FailureSummary,
) CorrelationMatrix {
	ans := CorrelationMatrix{
		Metrics: dataset.MetricOrder,
		Values:  make([][]float64, len(dataset.MetricOrder)),
	}
	columns := make([][]float64, len(dataset.MetricOrder))
	for i, m := range dataset.MetricOrder {
		columns[i] = make([]float64, len(recs))
		for j, rec := range recs {
			columns[i][j] = rec.Value(m)
		}
	}
	for i := range dataset.MetricOrder {
		ans.Values[i] = make([]float64, len(dataset.MetricOrder))
		for j := range dataset.MetricOrder {
			if i == j {
				ans.Values[i][j] = 1
				continue
			}
			if j < i {
				ans.Values[i][j] = ans.Values[j][i]
				continue
			}
			r := stat.Correlation(columns[i], columns[j], nil)
			ans.Values[i][j] = r
			if math.IsNaN(r) {
				failures.Addf(
					"correlation",
					fmt.Sprintf("%s~%s", dataset.MetricOrder[i], dataset.MetricOrder[j]),
					"correlation undefined (constant column or too few records)",
				)
			}
		}
	}
	return ans
}
