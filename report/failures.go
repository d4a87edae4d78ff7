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

import "fmt"

// CellFailure describes one report cell (a group/metric/test
// combination) that could not be computed.
type CellFailure struct {
	Section string `json:"section"`
	Cell    string `json:"cell"`
	Reason  string `json:"reason"`
}

// FailureSummary enumerates everything the pipeline had to skip.
// A failed cell never aborts the computation of other cells - it just
// ends up here.
type FailureSummary struct {
	Items []CellFailure `json:"items"`
}

func (fs *FailureSummary) Add(section, cell, reason string) {
	fs.Items = append(fs.Items, CellFailure{
		Section: section,
		Cell:    cell,
		Reason:  reason,
	})
}

func (fs *FailureSummary) Addf(section, cell, format string, args ...any) {
	fs.Add(section, cell, fmt.Sprintf(format, args...))
}

func (fs *FailureSummary) Empty() bool {
	return len(fs.Items) == 0
}
