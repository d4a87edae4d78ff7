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
	"io"
	"os"

	"github.com/czcorpus/quantreport/dataset"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 960
	chartHeight = 540
)

// pointStyle renders points only, no connecting line
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    5,
		DotColor:    col,
	}
}

func whiskerStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
	}
}

func groupColor(group dataset.Group) drawing.Color {
	switch group {
	case dataset.GroupBaseBF16:
		return chart.ColorBlue
	case dataset.GroupBase4Bit:
		return chart.ColorOrange
	case dataset.GroupFT4Bit:
		return chart.ColorGreen
	}
	return chart.ColorAlternateGray
}

func writePNG(path string, render func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	defer f.Close()
	if err := render(f); err != nil {
		return fmt.Errorf("failed to render chart %s: %w", path, err)
	}
	return nil
}

// RenderCIChart draws one metric's per-cell means as dots with their
// bootstrap confidence intervals as vertical whiskers. Cells follow the
// table's row order; rows without an interval get a dot only.
func RenderCIChart(table CITable, title, path string) error {
	if len(table.Rows) == 0 {
		return fmt.Errorf("failed to render chart %s: no rows", path)
	}
	series := make([]chart.Series, 0, 2*len(table.Rows))
	ticks := make([]chart.Tick, 0, len(table.Rows)+2)
	ticks = append(ticks, chart.Tick{Value: 0, Label: ""})
	for i, row := range table.Rows {
		x := float64(i + 1)
		col := groupColor(row.Group)
		if row.HasCI {
			series = append(series, chart.ContinuousSeries{
				XValues: []float64{x, x},
				YValues: []float64{row.CILower, row.CIUpper},
				Style:   whiskerStyle(col),
			})
		}
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{x},
			YValues: []float64{row.Mean},
			Style:   pointStyle(col),
		})
		ticks = append(ticks, chart.Tick{
			Value: x,
			Label: fmt.Sprintf("%s %s", row.Size, row.Group),
		})
	}
	ticks = append(ticks, chart.Tick{Value: float64(len(table.Rows) + 1), Label: ""})

	graph := chart.Chart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 40}},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: float64(len(table.Rows) + 1),
			},
		},
		YAxis:  chart.YAxis{Name: string(table.Metric)},
		Series: series,
	}
	return writePNG(path, func(w io.Writer) error {
		return graph.Render(chart.PNG, w)
	})
}

// RenderMeanBarChart draws one metric's per-cell means as a simple bar
// chart, colored by group.
func RenderMeanBarChart(table CITable, title, path string) error {
	if len(table.Rows) == 0 {
		return fmt.Errorf("failed to render chart %s: no rows", path)
	}
	bars := make([]chart.Value, len(table.Rows))
	for i, row := range table.Rows {
		bars[i] = chart.Value{
			Value: row.Mean,
			Label: fmt.Sprintf("%s %s", row.Size, row.Group),
			Style: chart.Style{FillColor: groupColor(row.Group), StrokeWidth: 0},
		}
	}
	graph := chart.BarChart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   60,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 40}},
		YAxis:      chart.YAxis{Name: string(table.Metric)},
		Bars:       bars,
	}
	return writePNG(path, func(w io.Writer) error {
		return graph.Render(chart.PNG, w)
	})
}

// RenderInteractionPlot draws one line of group means across sizes per
// group - non-parallel lines hint at a size x group interaction, which
// the aligned-rank ANOVA then quantifies.
func RenderInteractionPlot(table CITable, title, path string) error {
	byGroup := make(map[dataset.Group][]CIRow)
	for _, row := range table.Rows {
		byGroup[row.Group] = append(byGroup[row.Group], row)
	}
	if len(byGroup) == 0 {
		return fmt.Errorf("failed to render chart %s: no rows", path)
	}
	series := make([]chart.Series, 0, len(dataset.GroupOrder))
	for _, group := range dataset.GroupOrder {
		rows, ok := byGroup[group]
		if !ok {
			continue
		}
		xs := make([]float64, len(rows))
		ys := make([]float64, len(rows))
		for i, row := range rows {
			xs[i] = float64(row.Size.Index() + 1)
			ys[i] = row.Mean
		}
		col := groupColor(group)
		series = append(series, chart.ContinuousSeries{
			Name:    string(group),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotWidth:    4,
				DotColor:    col,
			},
		})
	}
	ticks := make([]chart.Tick, 0, len(dataset.SizeOrder)+2)
	ticks = append(ticks, chart.Tick{Value: 0, Label: ""})
	for i, size := range dataset.SizeOrder {
		ticks = append(ticks, chart.Tick{Value: float64(i + 1), Label: string(size)})
	}
	ticks = append(ticks, chart.Tick{Value: float64(len(dataset.SizeOrder) + 1), Label: ""})

	graph := chart.Chart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 40}},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: float64(len(dataset.SizeOrder) + 1),
			},
		},
		YAxis:  chart.YAxis{Name: string(table.Metric)},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return writePNG(path, func(w io.Writer) error {
		return graph.Render(chart.PNG, w)
	})
}

// RenderCostEffectiveness draws a GPU peak memory vs. accuracy scatter
// plot with one point per run, colored by the derived group. It is the
// report's quick answer to "what does each accuracy point cost in
// memory". Unclassified records are not drawn.
func RenderCostEffectiveness(recs []dataset.RunRecord, path string) error {
	byGroup := make(map[dataset.Group][][2]float64)
	for _, rec := range recs {
		group := rec.Group()
		if group == dataset.GroupUnclassified {
			continue
		}
		byGroup[group] = append(
			byGroup[group], [2]float64{rec.GPUPeakMemMB, rec.Accuracy})
	}
	if len(byGroup) == 0 {
		return fmt.Errorf("failed to render chart %s: no classifiable records", path)
	}
	series := make([]chart.Series, 0, len(dataset.GroupOrder))
	for _, group := range dataset.GroupOrder {
		points, ok := byGroup[group]
		if !ok {
			continue
		}
		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		for i, p := range points {
			xs[i] = p[0]
			ys[i] = p[1]
		}
		series = append(series, chart.ContinuousSeries{
			Name:    string(group),
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(groupColor(group)),
		})
	}
	graph := chart.Chart{
		Title:      "Cost effectiveness (GPU peak memory vs. accuracy)",
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 40}},
		XAxis:      chart.XAxis{Name: "GPU peak memory [MB]"},
		YAxis:      chart.YAxis{Name: "accuracy"},
		Series:     series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return writePNG(path, func(w io.Writer) error {
		return graph.Render(chart.PNG, w)
	})
}
