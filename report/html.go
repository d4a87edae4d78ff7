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
	"html/template"
	"io"
	"math"

	"github.com/czcorpus/quantreport/agg"
	"github.com/czcorpus/quantreport/dataset"
)

type aggTableCtx struct {
	Metrics []dataset.Metric
	Rows    []agg.Row
}

var htmlFuncs = template.FuncMap{
	"f3": func(v float64) string {
		if math.IsNaN(v) {
			return "n/a"
		}
		return fmt.Sprintf("%.3f", v)
	},
	"pval": func(v float64) string {
		if math.IsNaN(v) {
			return "n/a"
		}
		if v < 0.001 {
			return "< 0.001"
		}
		return fmt.Sprintf("%.4f", v)
	},
	"aggCtx": func(metrics []dataset.Metric, rows []agg.Row) aggTableCtx {
		return aggTableCtx{Metrics: metrics, Rows: rows}
	},
	// a missing metric column produces a nil pointer so the template
	// can fall back to its n/a branch
	"metricOf": func(row agg.Row, m dataset.Metric) *agg.Summary {
		if s, ok := row.Metrics[m]; ok {
			return &s
		}
		return nil
	},
	// corrStyle maps a correlation coefficient to a cell background,
	// red for negative, blue for positive, white around zero
	"corrStyle": func(v float64) template.CSS {
		if math.IsNaN(v) {
			return "background-color: #eeeeee"
		}
		alpha := math.Abs(v) * 0.75
		if v < 0 {
			return template.CSS(fmt.Sprintf(
				"background-color: rgba(214, 69, 65, %.2f)", alpha))
		}
		return template.CSS(fmt.Sprintf(
			"background-color: rgba(31, 119, 180, %.2f)", alpha))
	},
}

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Quantization evaluation report</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { font-size: 1.5em; }
h2 { font-size: 1.2em; margin-top: 2em; border-bottom: 1px solid #ccc; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #bbb; padding: 0.3em 0.7em; text-align: right; }
th { background-color: #f0f0f0; }
td.label, th.label { text-align: left; }
p.meta { color: #666; font-size: 0.9em; }
ul.failures li { color: #a33; }
img { max-width: 100%; margin: 1em 0; }
</style>
</head>
<body>
<h1>Quantization evaluation report</h1>
<p class="meta">generated {{.Report.GeneratedAt.Format "2006-01-02 15:04:05 MST"}},
{{.Report.NumRecords}} records ({{.Report.NumUnclassified}} unclassified),
bootstrap: {{.Report.Resamples}} resamples, &alpha; = {{.Report.Alpha}}</p>

{{if not .Report.Failures.Empty}}
<h2>Not computable</h2>
<ul class="failures">
{{range .Report.Failures.Items}}
<li>[{{.Section}}] {{.Cell}}: {{.Reason}}</li>
{{end}}
</ul>
{{end}}

<h2>Summary by model size</h2>
{{template "aggTable" aggCtx .Metrics .Report.BySize}}

<h2>Summary by model size and group</h2>
{{template "aggTable" aggCtx .Metrics .Report.BySizeGroup}}

<h2>Mean confidence intervals</h2>
{{range .Report.CITables}}
<h3>{{.Metric}}</h3>
<table>
<tr><th class="label">size</th><th class="label">group</th><th>n</th><th>mean</th><th>CI lower</th><th>CI upper</th></tr>
{{range .Rows}}
<tr>
<td class="label">{{.Size}}</td>
<td class="label">{{.Group}}</td>
<td>{{.Count}}</td>
<td>{{f3 .Mean}}</td>
{{if .HasCI}}<td>{{f3 .CILower}}</td><td>{{f3 .CIUpper}}</td>{{else}}<td>n/a</td><td>n/a</td>{{end}}
</tr>
{{end}}
</table>
{{end}}

<h2>Hypothesis tests</h2>
{{range .Report.Tests}}
<h3>{{.Metric}}</h3>
{{if .Normality}}
<p>Jarque-Bera residual normality: JB = {{f3 .Normality.Stat}},
p = {{pval .Normality.PValue}} (n = {{.Normality.N}})</p>
{{end}}
{{if .GroupDiff}}
<p>Kruskal-Wallis group difference: H = {{f3 .GroupDiff.H}},
df = {{.GroupDiff.DF}}, p = {{pval .GroupDiff.PValue}}</p>
{{end}}
{{if .Pairwise}}
<p>Pairwise Mann-Whitney, Bonferroni-adjusted p-values
({{.Pairwise.NumComparisons}} comparisons):</p>
<table>
<tr><th class="label"></th>{{range .Pairwise.Names}}<th>{{.}}</th>{{end}}</tr>
{{$pw := .Pairwise}}
{{range $i, $name := .Pairwise.Names}}
<tr><td class="label">{{$name}}</td>
{{range $j, $other := $pw.Names}}<td>{{if eq $i $j}}&mdash;{{else}}{{pval (index $pw.Adjusted $i $j)}}{{end}}</td>{{end}}
</tr>
{{end}}
</table>
{{end}}
{{if .SizeByGroup}}
<p>Aligned-rank two-way ANOVA (size &times; group):</p>
<table>
<tr><th class="label">effect</th><th>F</th><th>df</th><th>p</th></tr>
{{range .SizeByGroup.Effects}}
<tr><td class="label">{{.Name}}</td><td>{{f3 .F}}</td><td>{{.DF1}} / {{.DF2}}</td><td>{{pval .PValue}}</td></tr>
{{end}}
</table>
{{end}}
{{end}}

<h2>Metric correlations</h2>
<table>
<tr><th class="label"></th>{{range .Report.Correlations.Metrics}}<th>{{.}}</th>{{end}}</tr>
{{$corr := .Report.Correlations}}
{{range $i, $m := .Report.Correlations.Metrics}}
<tr><td class="label">{{$m}}</td>
{{range $j, $other := $corr.Metrics}}<td style="{{corrStyle (index $corr.Values $i $j)}}">{{f3 (index $corr.Values $i $j)}}</td>{{end}}
</tr>
{{end}}
</table>

<h2>Charts</h2>
{{range .Charts}}
<img src="{{.}}" alt="{{.}}">
{{end}}

</body>
</html>

{{define "aggTable"}}
<table>
<tr><th class="label">key</th><th>n</th>{{range .Metrics}}<th colspan="3">{{.}}</th>{{end}}</tr>
<tr><th class="label"></th><th></th>{{range .Metrics}}<th>mean</th><th>median</th><th>IQR</th>{{end}}</tr>
{{$metrics := .Metrics}}
{{range .Rows}}
{{$row := .}}
<tr>
<td class="label">{{.Key}}</td>
<td>{{.Count}}</td>
{{range $metrics}}
{{with metricOf $row .}}
<td>{{f3 .Mean}}</td><td>{{f3 .Median}}</td><td>{{f3 (index .Quantiles 0.25)}}&ndash;{{f3 (index .Quantiles 0.75)}}</td>
{{else}}
<td>n/a</td><td>n/a</td><td>n/a</td>
{{end}}
{{end}}
</tr>
{{end}}
</table>
{{end}}`

// RenderHTML writes the human-readable report page. Chart paths are
// embedded as relative image references, so the page expects the PNG
// files next to it in the output directory.
func RenderHTML(rep *Report, chartFiles []string, w io.Writer) error {
	tpl, err := template.New("report").Funcs(htmlFuncs).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	err = tpl.Execute(w, map[string]any{
		"Report":  rep,
		"Metrics": dataset.MetricOrder,
		"Charts":  chartFiles,
	})
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
