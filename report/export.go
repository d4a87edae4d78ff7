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

	"github.com/vmihailenco/msgpack/v5"
)

// SaveMsgpack dumps the complete report, failure summary included, as
// a msgpack blob for downstream machine consumers.
func (rep *Report) SaveMsgpack(path string) error {
	srz, err := msgpack.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	if err := os.WriteFile(path, srz, 0644); err != nil {
		return fmt.Errorf("failed to write report dump: %w", err)
	}
	return nil
}

// LoadMsgpack reads back a report dump produced by SaveMsgpack.
func LoadMsgpack(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report dump: %w", err)
	}
	var rep Report
	if err := msgpack.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to deserialize report: %w", err)
	}
	return &rep, nil
}
