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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSizeAppendsSuffix(t *testing.T) {
	s, err := ParseSize("1")
	assert.NoError(t, err)
	assert.Equal(t, Size1B, s)
}

func TestParseSizeKeepsSuffix(t *testing.T) {
	s, err := ParseSize("11B")
	assert.NoError(t, err)
	assert.Equal(t, Size11B, s)
}

func TestParseSizeOutsideCategorySet(t *testing.T) {
	_, err := ParseSize("7")
	assert.Error(t, err)
}

func TestParseQuant(t *testing.T) {
	q, err := ParseQuant("BF16")
	assert.NoError(t, err)
	assert.Equal(t, QuantBF16, q)
	_, err = ParseQuant("8bit")
	assert.Error(t, err)
}

func TestGroupDerivation(t *testing.T) {
	seed := 42
	assert.Equal(t, GroupBaseBF16, RunRecord{Quant: QuantBF16}.Group())
	assert.Equal(t, GroupBase4Bit, RunRecord{Quant: Quant4Bit}.Group())
	assert.Equal(t, GroupFT4Bit, RunRecord{Quant: Quant4Bit, Seed: &seed}.Group())
}

func TestGroupDerivationUnmappedCombination(t *testing.T) {
	seed := 42
	rec := RunRecord{Quant: QuantBF16, Seed: &seed}
	assert.Equal(t, GroupUnclassified, rec.Group())
	assert.Equal(t, -1, rec.Group().Index())
}

func TestIdempotentIDStability(t *testing.T) {
	rec := RunRecord{Size: Size3B, Quant: Quant4Bit, Accuracy: 0.85}
	assert.Equal(t, IdempotentID(rec), IdempotentID(rec))
	rec2 := rec
	rec2.Accuracy = 0.86
	assert.NotEqual(t, IdempotentID(rec), IdempotentID(rec2))
}

func TestIdempotentIDDistinguishesBaseAndSeed(t *testing.T) {
	rec := RunRecord{Size: Size3B, Quant: Quant4Bit, Accuracy: 0.85}
	seed := 7
	rec2 := rec
	rec2.Seed = &seed
	assert.NotEqual(t, IdempotentID(rec), IdempotentID(rec2))
}
