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

// Package htest provides the stateless hypothesis-test routines used by
// the report pipeline. Degenerate inputs (empty groups, too few
// observations, zero variance) produce a NotComputableError instead of
// NaN results, so a skipped report cell is structurally distinguishable
// from a computed zero.
package htest

import (
	"errors"
	"fmt"
)

// NotComputableError signals that a test could not produce a numeric
// result for the provided data. It is an expected outcome, not a
// programming error - callers record the reason and move on to the
// next cell.
type NotComputableError struct {
	Reason string
}

func (err NotComputableError) Error() string {
	return "not computable: " + err.Reason
}

func notComputable(format string, args ...any) NotComputableError {
	return NotComputableError{Reason: fmt.Sprintf(format, args...)}
}

// IsNotComputable tests whether err represents a degenerate-input
// outcome (as opposed to a caller contract violation).
func IsNotComputable(err error) bool {
	var nc NotComputableError
	return errors.As(err, &nc)
}
