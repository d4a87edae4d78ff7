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

package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/czcorpus/quantreport/dataset"
	"github.com/rs/zerolog/log"
)

const (
	htmlFileName = "report.html"
	dumpFileName = "report.mp"
)

// WriteAll materializes the report into outDir: the PNG charts, the
// HTML page referencing them and the msgpack dump. A failed chart does
// not stop the remaining outputs - it is added to the report's failure
// summary, which both the page and the dump are written after.
func WriteAll(rep *Report, recs []dataset.RunRecord, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	var chartFiles []string
	renderChart := func(name string, fn func(path string) error) {
		if err := fn(filepath.Join(outDir, name)); err != nil {
			log.Error().Err(err).Str("chart", name).Msg("failed to render chart")
			rep.Failures.Add("chart", name, err.Error())
			return
		}
		chartFiles = append(chartFiles, name)
	}

	for _, m := range ResponseMetrics {
		table, ok := findCITable(rep.CITables, m)
		if !ok {
			continue
		}
		name := fmt.Sprintf("%s_ci.png", m)
		renderChart(name, func(path string) error {
			return RenderCIChart(
				table, fmt.Sprintf("Mean %s with bootstrap CI", m), path)
		})
	}
	if table, ok := findCITable(rep.CITables, dataset.MetricAccuracy); ok {
		renderChart("accuracy_means.png", func(path string) error {
			return RenderMeanBarChart(table, "Mean accuracy by size and group", path)
		})
		renderChart("accuracy_interaction.png", func(path string) error {
			return RenderInteractionPlot(table, "Mean accuracy interaction (size x group)", path)
		})
	}
	renderChart("cost_effectiveness.png", func(path string) error {
		return RenderCostEffectiveness(recs, path)
	})

	htmlPath := filepath.Join(outDir, htmlFileName)
	f, err := os.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	defer f.Close()
	if err := RenderHTML(rep, chartFiles, f); err != nil {
		return err
	}
	log.Info().Str("file", htmlPath).Msg("report page written")

	dumpPath := filepath.Join(outDir, dumpFileName)
	if err := rep.SaveMsgpack(dumpPath); err != nil {
		return err
	}
	log.Info().Str("file", dumpPath).Msg("report dump written")
	return nil
}

func findCITable(tables []CITable, m dataset.Metric) (CITable, bool) {
	for _, table := range tables {
		if table.Metric == m {
			return table, true
		}
	}
	return CITable{}, false
}
