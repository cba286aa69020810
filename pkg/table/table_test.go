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

func Test_Table_01(t *testing.T) {
	x, y := variable.MustRange("x", 2), variable.MustRange("y", 3)
	tbl, err := New(variable.MustSequence(x, y), 1.5)
	require.NoError(t, err)
	//
	assert.Equal(t, uint64(6), tbl.Len())
	assert.Equal(t, uint(2), tbl.Dimension())
	//
	for _, v := range tbl.Data() {
		assert.Equal(t, 1.5, v)
	}
	//
	tbl.Fill(0)
	//
	for _, v := range tbl.Data() {
		assert.Equal(t, 0.0, v)
	}
}

func Test_Table_02(t *testing.T) {
	x, y := variable.MustRange("x", 2), variable.MustRange("y", 2)
	// x varies fastest: (0,0)=1, (1,0)=2, (0,1)=3, (1,1)=4
	tbl := MustFromData(variable.MustSequence(x, y), []int{1, 2, 3, 4})
	inst, _ := NewInstantiation(x, y)
	//
	check_Get(t, tbl, inst, map[[2]uint]int{{0, 0}: 1, {1, 0}: 2, {0, 1}: 3, {1, 1}: 4}, x, y)
}

func Test_Table_03(t *testing.T) {
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 2), variable.MustRange("z", 5)
	tbl := MustFromData(variable.MustSequence(x, y), []int{1, 2, 3, 4})
	// Slicing semantics: z is ignored
	inst, _ := NewInstantiation(z, y, x)
	require.NoError(t, inst.Chg(x, 1))
	require.NoError(t, inst.Chg(y, 1))
	require.NoError(t, inst.Chg(z, 4))
	//
	v, err := tbl.Get(inst)
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	// Missing variable
	partial, _ := NewInstantiation(x)
	_, err = tbl.Get(partial)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, tbl.Set(partial, 1), ErrNotFound)
	// Out of domain
	assert.ErrorIs(t, inst.Chg(z, 5), ErrInvalidArgument)
}

func Test_Table_04(t *testing.T) {
	x, y := variable.MustRange("x", 2), variable.MustRange("y", 3)
	_, err := FromData(variable.MustSequence(x, y), []int{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	//
	s := Scalar(7)
	assert.Equal(t, uint64(1), s.Len())
	assert.Equal(t, uint(0), s.Dimension())
	//
	v, err := s.Get(s.Instantiation())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func Test_Table_05(t *testing.T) {
	x, y := variable.MustRange("x", 2), variable.MustRange("y", 3)
	tbl := MustFromData(variable.MustSequence(x), []int{1, 2})
	// Broadcast along y
	require.NoError(t, tbl.Add(y))
	assert.Equal(t, []int{1, 2, 1, 2, 1, 2}, tbl.Data())
	assert.ErrorIs(t, tbl.Add(y), ErrDuplicate)
	check_ShapeInvariant(t, tbl)
}

func Test_Table_06(t *testing.T) {
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 2)
	tbl := MustFromData(variable.MustSequence(x, y, z), seq(12))
	// Keep only y=0
	require.NoError(t, tbl.Erase(y))
	assert.Equal(t, "(x,z)", tbl.Variables().String())
	assert.Equal(t, []int{0, 1, 6, 7}, tbl.Data())
	check_ShapeInvariant(t, tbl)
	//
	assert.ErrorIs(t, tbl.Erase(y), ErrNotFound)
	//
	require.NoError(t, tbl.Erase(x))
	assert.Equal(t, []int{0, 6}, tbl.Data())
	require.NoError(t, tbl.Erase(z))
	assert.Equal(t, []int{0}, tbl.Data())
	check_ShapeInvariant(t, tbl)
}

func Test_Table_07(t *testing.T) {
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 4)
	tbl := MustFromData(variable.MustSequence(x, y, z), seq(24))
	//
	re, err := tbl.Reorder(variable.MustSequence(z, x, y))
	require.NoError(t, err)
	assert.Equal(t, "(z,x,y)", re.Variables().String())
	// Every configuration holds the same value
	inst, _ := NewInstantiation(x, y, z)
	for ; !inst.End(); inst.Inc() {
		a, _ := tbl.Get(inst)
		b, _ := re.Get(inst)
		assert.Equal(t, a, b, inst.String())
	}
	//
	assert.True(t, Equal(tbl, re))
	//
	_, err = tbl.Reorder(variable.MustSequence(z, x))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func Test_Table_08(t *testing.T) {
	x := variable.MustRange("x", 3)
	a := MustFromData(variable.MustSequence(x), []int{1, 2, 3})
	b := a.Clone()
	b.SetAt(0, 9)
	//
	assert.Equal(t, 1, a.At(0))
	assert.False(t, Equal(a, b))
	//
	c := a.Map(func(v int) int { return v * 10 })
	assert.Equal(t, []int{10, 20, 30}, c.Data())
	assert.Equal(t, "(x)[1, 2, 3]", a.String())
}

func Test_Table_09(t *testing.T) {
	var vars []variable.Variable
	//
	for i := 0; i < 40; i++ {
		vars = append(vars, variable.MustRange(fmt.Sprintf("v%d", i), 4))
	}
	//
	_, err := New(variable.MustSequence(vars...), 0.0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func Test_Table_10(t *testing.T) {
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 4)
	tbl := MustFromData(variable.MustSequence(x, y, z), seq(24))
	//
	assert.Equal(t, uint64(1), tbl.StrideOf(x))
	assert.Equal(t, uint64(2), tbl.StrideOf(y))
	assert.Equal(t, uint64(6), tbl.StrideOf(z))
	assert.Equal(t, uint64(0), tbl.StrideOf(variable.MustRange("w", 2)))
}

func Test_Table_11(t *testing.T) {
	var (
		x     = variable.MustRange("x", 2)
		empty = &emptyVar{"e"}
		tbl   = MustFromData(variable.MustSequence(x), []int{1, 2})
	)
	// Variables with empty domains cannot index a table
	assert.ErrorIs(t, tbl.Add(empty), ErrInvalidArgument)
	assert.Equal(t, uint64(2), tbl.Len())
	assert.False(t, tbl.Contains(empty))
	//
	_, err := NewInstantiation(x, empty)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	//
	inst := tbl.Instantiation()
	assert.ErrorIs(t, inst.Add(empty), ErrInvalidArgument)
	//
	_, err = variable.NewRange("z", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func Test_Table_12(t *testing.T) {
	x, y := variable.MustRange("x", 2), variable.MustRange("y", 3)
	vars := variable.MustSequence(x)
	tbl := MustFromData(vars, []int{1, 2})
	// Growing a table does not affect the sequence it was built from
	require.NoError(t, tbl.Add(y))
	assert.Equal(t, uint(1), vars.Len())
	assert.False(t, vars.Contains(y))
	assert.Equal(t, uint(2), tbl.Dimension())
}

// ===================================================================
// Test Helpers
// ===================================================================

func seq(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}

	return items
}

func check_ShapeInvariant[T any](t *testing.T, tbl *Table[T]) {
	vars := tbl.Variables()
	n, err := vars.DomainSize()
	require.NoError(t, err)
	assert.Equal(t, n, uint64(len(tbl.Data())))
}

func check_Get(t *testing.T, tbl *Table[int], inst *Instantiation, expected map[[2]uint]int,
	x, y variable.Variable) {
	//
	for k, v := range expected {
		require.NoError(t, inst.Chg(x, k[0]))
		require.NoError(t, inst.Chg(y, k[1]))
		//
		actual, err := tbl.Get(inst)
		require.NoError(t, err)
		assert.Equal(t, v, actual)
	}
}

// A variable implementation which (wrongly) reports an empty domain.
type emptyVar struct {
	name string
}

func (p *emptyVar) Name() string {
	return p.name
}

func (p *emptyVar) DomainSize() uint {
	return 0
}

func (p *emptyVar) Label(i uint) string {
	panic("empty domain")
}

func (p *emptyVar) String() string {
	return p.name
}
