// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package table

import (
	"fmt"
	"testing"

	"github.com/consensys/go-pgm/pkg/variable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Instantiation_01(t *testing.T) {
	x, y := variable.MustRange("x", 2), variable.MustRange("y", 3)
	inst, err := NewInstantiation(x, y)
	require.NoError(t, err)
	// Exhaustive and unique
	seen := make(map[string]bool)
	count := 0
	//
	for inst.SetFirst(); !inst.End(); inst.Inc() {
		key := fmt.Sprint(inst.Vals())
		assert.False(t, seen[key], key)
		seen[key] = true
		count++
	}
	//
	assert.Equal(t, 6, count)
	// Further increments are no-ops
	inst.Inc()
	assert.True(t, inst.End())
	//
	inst.SetFirst()
	assert.False(t, inst.End())
	assert.Equal(t, []uint{0, 0}, inst.Vals())
}

func Test_Instantiation_02(t *testing.T) {
	x, y := variable.MustRange("x", 2), variable.MustRange("y", 3)
	inst, _ := NewInstantiation(x, y)
	// First variable varies fastest
	var order [][]uint
	for ; !inst.End(); inst.Inc() {
		order = append(order, inst.Vals())
	}
	//
	assert.Equal(t, [][]uint{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}, {1, 2}}, order)
}

func Test_Instantiation_03(t *testing.T) {
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 2)
	inst, _ := NewInstantiation(x, y, z)
	require.NoError(t, inst.Chg(x, 1))
	require.NoError(t, inst.Chg(z, 1))
	// Loop over y only
	count := 0
	for inst.SetFirstVar(y); !inst.End(); inst.IncVar(y) {
		xv, _ := inst.Val(x)
		zv, _ := inst.Val(z)
		assert.Equal(t, uint(1), xv)
		assert.Equal(t, uint(1), zv)
		count++
	}
	//
	assert.Equal(t, 3, count)
}

func Test_Instantiation_04(t *testing.T) {
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 2)
	inst, _ := NewInstantiation(x, y, z)
	require.NoError(t, inst.Chg(y, 2))
	// Loop over everything but y
	count := 0
	for inst.SetFirstNotVar(y); !inst.End(); inst.IncNotVar(y) {
		yv, _ := inst.Val(y)
		assert.Equal(t, uint(2), yv)
		count++
	}
	//
	assert.Equal(t, 4, count)
}

func Test_Instantiation_05(t *testing.T) {
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 4)
	inst, _ := NewInstantiation(x, y, z)
	sub := variable.MustSequence(z, x)
	//
	count := 0
	for inst.SetFirstIn(sub); !inst.End(); inst.IncIn(sub) {
		count++
	}
	//
	assert.Equal(t, 8, count)
}

func Test_Instantiation_06(t *testing.T) {
	x, y := variable.MustRange("x", 2), variable.MustRange("y", 3)
	inst, _ := NewInstantiation(x)
	require.NoError(t, inst.Add(y))
	assert.ErrorIs(t, inst.Add(y), variable.ErrDuplicate)
	require.NoError(t, inst.Chg(y, 2))
	//
	other, _ := NewInstantiation(y)
	other.SetVals(inst)
	v, _ := other.Val(y)
	assert.Equal(t, uint(2), v)
	//
	require.NoError(t, inst.Erase(x))
	assert.Equal(t, []uint{2}, inst.Vals())
	assert.ErrorIs(t, inst.Erase(x), ErrNotFound)
	//
	_, err := inst.Val(x)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "<y:2>", inst.String())
}

func Test_Instantiation_07(t *testing.T) {
	// No variables means exactly one configuration
	inst, _ := NewInstantiation()
	count := 0
	//
	for ; !inst.End(); inst.Inc() {
		count++
	}
	//
	assert.Equal(t, 1, count)
}

func Test_Walker_01(t *testing.T) {
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 4)
	tbl := MustFromData(variable.MustSequence(x, y, z), seq(24))
	// Walk in order (z,x) with y fixed at 0, following tbl's layout
	walk := NewWalker([]uint{4, 2}, []uint64{tbl.StrideOf(z), tbl.StrideOf(x)})
	//
	var offsets []uint64
	for ; !walk.Done(); walk.Next() {
		offsets = append(offsets, walk.Offset())
	}
	//
	assert.Equal(t, []uint64{0, 6, 12, 18, 1, 7, 13, 19}, offsets)
	// Reset with a base
	walk.Reset(2)
	assert.Equal(t, uint64(2), walk.Offset())
	walk.Next()
	assert.Equal(t, uint64(8), walk.Offset())
}
