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

package dataset

import (
	"fmt"
	"strings"
)

// Size is a model parameter count category. The declared order
// (1B, 3B, 11B) is the order all aggregations emit their rows in.
type Size string

const (
	Size1B  Size = "1B"
	Size3B  Size = "3B"
	Size11B Size = "11B"
)

// SizeOrder is the declared category order of the size factor.
var SizeOrder = []Size{Size1B, Size3B, Size11B}

func (s Size) Index() int {
	for i, v := range SizeOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// ParseSize normalizes a raw size value ("1", "1B") into a declared
// category. Values outside the category set are an error.
func ParseSize(v string) (Size, error) {
	norm := strings.ToUpper(strings.TrimSpace(v))
	if !strings.HasSuffix(norm, "B") {
		norm += "B"
	}
	s := Size(norm)
	if s.Index() == -1 {
		return "", fmt.Errorf("unknown size category: %s", v)
	}
	return s, nil
}

// Quant is a weight quantization category.
type Quant string

const (
	QuantBF16 Quant = "bf16"
	Quant4Bit Quant = "4bit"
)

// QuantOrder is the declared category order of the quantization factor.
var QuantOrder = []Quant{QuantBF16, Quant4Bit}

func (q Quant) Index() int {
	for i, v := range QuantOrder {
		if v == q {
			return i
		}
	}
	return -1
}

func ParseQuant(v string) (Quant, error) {
	q := Quant(strings.ToLower(strings.TrimSpace(v)))
	if q.Index() == -1 {
		return "", fmt.Errorf("unknown quant category: %s", v)
	}
	return q, nil
}

// Group is the derived three-way classification of a run based on
// quantization and the presence of a fine-tuning seed.
type Group string

const (
	GroupBaseBF16 Group = "Base BF16"
	GroupBase4Bit Group = "Base 4-bit"
	GroupFT4Bit   Group = "FT 4-bit"

	// GroupUnclassified marks the bf16 + seed combination for which
	// no group is defined. Such rows are skipped by grouped
	// computations and surfaced in the report's failure summary.
	GroupUnclassified Group = "unclassified"
)

// GroupOrder is the declared category order of the derived group factor.
// GroupUnclassified is intentionally not part of it.
var GroupOrder = []Group{GroupBaseBF16, GroupBase4Bit, GroupFT4Bit}

func (g Group) Index() int {
	for i, v := range GroupOrder {
		if v == g {
			return i
		}
	}
	return -1
}

// Metric identifies a numeric column of a run record.
type Metric string

const (
	MetricAccuracy     Metric = "accuracy"
	MetricF1           Metric = "f1"
	MetricThroughput   Metric = "throughput"
	MetricLatency      Metric = "latency"
	MetricGPUPeakMemMB Metric = "gpu_peak_mem_mb"
	MetricCPURSSMB     Metric = "cpu_rss_mb"
)

// MetricOrder is the order numeric columns appear in tables and in
// the correlation matrix.
var MetricOrder = []Metric{
	MetricAccuracy,
	MetricF1,
	MetricThroughput,
	MetricLatency,
	MetricGPUPeakMemMB,
	MetricCPURSSMB,
}

type RunRecord struct {

	// ID is an idempotent identifier derived from the record's
	// attributes so repeated imports of the same file do not
	// duplicate rows.
	ID string

	Size  Size
	Quant Quant

	// Seed is the fine-tuning seed. A nil value marks a base
	// (non-fine-tuned) model run.
	Seed *int

	// Accuracy and F1 are scores in [0, 1]. The range is expected,
	// not enforced.
	Accuracy float64
	F1       float64

	// Throughput is measured in examples/sec.
	Throughput float64

	// Latency is measured in sec/example.
	Latency float64

	GPUPeakMemMB float64
	CPURSSMB     float64
}

// Group classifies the run into the derived three-way group.
// The bf16 + seed combination has no defined group and maps
// to GroupUnclassified.
func (rec RunRecord) Group() Group {
	switch {
	case rec.Quant == QuantBF16 && rec.Seed == nil:
		return GroupBaseBF16
	case rec.Quant == Quant4Bit && rec.Seed == nil:
		return GroupBase4Bit
	case rec.Quant == Quant4Bit && rec.Seed != nil:
		return GroupFT4Bit
	}
	return GroupUnclassified
}

// Value returns the record's value of a numeric column.
func (rec RunRecord) Value(m Metric) float64 {
	switch m {
	case MetricAccuracy:
		return rec.Accuracy
	case MetricF1:
		return rec.F1
	case MetricThroughput:
		return rec.Throughput
	case MetricLatency:
		return rec.Latency
	case MetricGPUPeakMemMB:
		return rec.GPUPeakMemMB
	case MetricCPURSSMB:
		return rec.CPURSSMB
	}
	panic(fmt.Sprintf("unknown metric: %s", m))
}
