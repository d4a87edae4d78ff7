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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

var requiredColumns = []string{
	"size", "quant", "seed",
	"accuracy", "f1", "throughput", "latency",
	"gpu_peak_mem_mb", "cpu_rss_mb",
}

// ParseCSV reads run records from CSV data with a header row.
// Any malformed row rejects the whole record set - there are no
// partial results.
func ParseCSV(src io.Reader) ([]RunRecord, error) {
	reader := csv.NewReader(src)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("failed to parse records: missing header row")

	} else if err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := colIdx[name]; !ok {
			return nil, fmt.Errorf("failed to parse records: missing column `%s`", name)
		}
	}

	ans := make([]RunRecord, 0, 100)
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break

		} else if err != nil {
			return nil, fmt.Errorf("failed to parse records: %w", err)
		}
		line++
		rec, err := parseRow(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("failed to parse records: line %d: %w", line, err)
		}
		rec.ID = IdempotentID(rec)
		ans = append(ans, rec)
	}
	return ans, nil
}

// LoadCSV reads run records from a CSV file. See ParseCSV for
// the validation semantics.
func LoadCSV(path string) ([]RunRecord, error) {
	fr, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load records from %s: %w", path, err)
	}
	defer fr.Close()
	return ParseCSV(fr)
}

func parseRow(row []string, colIdx map[string]int) (RunRecord, error) {
	var rec RunRecord
	var err error

	rec.Size, err = ParseSize(row[colIdx["size"]])
	if err != nil {
		return rec, err
	}
	rec.Quant, err = ParseQuant(row[colIdx["quant"]])
	if err != nil {
		return rec, err
	}
	if rawSeed := row[colIdx["seed"]]; rawSeed != "" {
		seed, err := strconv.Atoi(rawSeed)
		if err != nil {
			return rec, fmt.Errorf("invalid seed value: %s", rawSeed)
		}
		rec.Seed = &seed
	}
	numCols := []struct {
		name string
		dst  *float64
	}{
		{"accuracy", &rec.Accuracy},
		{"f1", &rec.F1},
		{"throughput", &rec.Throughput},
		{"latency", &rec.Latency},
		{"gpu_peak_mem_mb", &rec.GPUPeakMemMB},
		{"cpu_rss_mb", &rec.CPURSSMB},
	}
	for _, col := range numCols {
		v, err := strconv.ParseFloat(row[colIdx[col.name]], 64)
		if err != nil {
			return rec, fmt.Errorf("invalid %s value: %s", col.name, row[colIdx[col.name]])
		}
		*col.dst = v
	}
	return rec, nil
}
