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
package algebra

import (
	"math"
	"math/rand"
	"testing"

	"github.com/consensys/go-pgm/pkg/table"
	"github.com/consensys/go-pgm/pkg/variable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Operator_01(t *testing.T) {
	assert.Equal(t, math.Inf(-1), Lowest[float64]())
	assert.Equal(t, math.Inf(1), Highest[float64]())
	assert.Equal(t, float32(math.Inf(1)), Highest[float32]())
	assert.Equal(t, int8(math.MinInt8), Lowest[int8]())
	assert.Equal(t, int8(math.MaxInt8), Highest[int8]())
	assert.Equal(t, int64(math.MinInt64), Lowest[int64]())
	assert.Equal(t, uint16(0), Lowest[uint16]())
	assert.Equal(t, uint16(math.MaxUint16), Highest[uint16]())
}

func Test_Operator_02(t *testing.T) {
	for _, name := range []string{SUM, PRODUCT, MAX, MIN} {
		op, ok := Standard[int](name)
		require.True(t, ok)
		assert.Equal(t, name, op.Name())
		// neutral element is an identity
		for _, v := range []int{-3, 0, 5} {
			assert.Equal(t, v, op.Apply(op.Neutral(), v))
		}
	}
	//
	_, ok := Standard[int]("xor")
	assert.False(t, ok)
	assert.Equal(t, uint64(8), ElemSize[float64]())
}

// Scenario from the design document: combine (X,Y) with (Y,Z) then sum out Y.
func Test_Algebra_01(t *testing.T) {
	x, y, z := variable.MustRange("X", 2), variable.MustRange("Y", 2), variable.MustRange("Z", 2)
	a := table.MustFromData(variable.MustSequence(x, y), []float64{1, 2, 3, 4})
	b := table.MustFromData(variable.MustSequence(y, z), []float64{1, 0, 0, 1})
	//
	ab, err := Combine(a, b, Product[float64]())
	require.NoError(t, err)
	assert.Equal(t, "(X,Y,Z)", ab.Variables().String())
	//
	r, err := Project(ab, variable.MustSequence(y), Sum[float64]())
	require.NoError(t, err)
	assert.Equal(t, "(X,Z)", r.Variables().String())
	assert.Equal(t, []float64{1, 2, 3, 4}, r.Data())
}

func Test_Algebra_02(t *testing.T) {
	// lhs inner loop
	x, y, z, w := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 2),
		variable.MustRange("w", 5)
	check_Combine(t, variable.MustSequence(x, y, w), variable.MustSequence(y, z))
}

func Test_Algebra_03(t *testing.T) {
	// rhs inner loop
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 4)
	check_Combine(t, variable.MustSequence(x, y), variable.MustSequence(y, z))
}

func Test_Algebra_04(t *testing.T) {
	// Disjoint, identical and reversed variable sets
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 4)
	check_Combine(t, variable.MustSequence(x), variable.MustSequence(y, z))
	check_Combine(t, variable.MustSequence(x, y, z), variable.MustSequence(x, y, z))
	check_Combine(t, variable.MustSequence(x, y, z), variable.MustSequence(z, y, x))
	check_Combine(t, variable.MustSequence(z, x), variable.MustSequence(y, x, z))
}

func Test_Algebra_05(t *testing.T) {
	// Degenerate operands
	x, y := variable.MustRange("x", 2), variable.MustRange("y", 3)
	a := table.MustFromData(variable.MustSequence(x, y), []int{1, 2, 3, 4, 5, 6})
	s := table.Scalar(10)
	//
	r, err := Combine(a, s, Sum[int]())
	require.NoError(t, err)
	assert.Equal(t, "(x,y)", r.Variables().String())
	assert.Equal(t, []int{11, 12, 13, 14, 15, 16}, r.Data())
	//
	r, err = Combine(s, a, Product[int]())
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60}, r.Data())
	//
	r, err = Combine(s, table.Scalar(3), Max[int]())
	require.NoError(t, err)
	assert.Equal(t, []int{10}, r.Data())
	// Operands are unchanged
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, a.Data())
}

func Test_Algebra_06(t *testing.T) {
	// Commutativity under relabelling
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 4)
	a := randomTable(variable.MustSequence(x, y), 1)
	b := randomTable(variable.MustSequence(z, y), 2)
	//
	for _, op := range []Operator[int]{Sum[int](), Product[int](), Max[int](), Min[int]()} {
		ab, err := Combine(a, b, op)
		require.NoError(t, err)
		ba, err := Combine(b, a, op)
		require.NoError(t, err)
		//
		assert.False(t, ab.Variables().Equals(ba.Variables()))
		assert.True(t, table.Equal(ab, ba), op.Name())
	}
}

func Test_Algebra_07(t *testing.T) {
	// Projection identity
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 4)
	a := table.MustFromData(variable.MustSequence(x, y, z), []float64{
		0.5, math.Copysign(0, -1), 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, math.Inf(1)})
	//
	for _, op := range []Operator[float64]{Sum[float64](), Product[float64](), Max[float64](), Min[float64]()} {
		r, err := Project(a, variable.MustSequence(), op)
		require.NoError(t, err)
		assert.Equal(t, a.Data(), r.Data())
		assert.True(t, math.Signbit(r.At(1)))
	}
	//
	r, err := Project(a, a.Variables(), Sum[float64]())
	require.NoError(t, err)
	assert.Equal(t, uint(0), r.Dimension())
	assert.Equal(t, Aggregate(a, Sum[float64]()), r.At(0))
	//
	r, err = Project(a, variable.MustSequence(z, x, y), Max[float64]())
	require.NoError(t, err)
	assert.Equal(t, math.Inf(1), r.At(0))
}

func Test_Algebra_08(t *testing.T) {
	// Both traversals, both implementations
	x, y, z, w := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 4),
		variable.MustRange("w", 2)
	src := randomTable(variable.MustSequence(x, y, z, w), 3)
	//
	for _, del := range []variable.Sequence{
		variable.MustSequence(y),
		variable.MustSequence(w, x),
		variable.MustSequence(y, z, w),
		variable.MustSequence(x, y, z, w),
	} {
		check_Project(t, src, del)
	}
}

func Test_Algebra_09(t *testing.T) {
	// Combine-then-project factoring: sum_A (A × B) = B × sum(A)
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 4)
	a := randomTable(variable.MustSequence(x, y), 4)
	b := randomTable(variable.MustSequence(z), 5)
	//
	ab, err := Combine(a, b, Product[int]())
	require.NoError(t, err)
	r, err := Project(ab, a.Variables(), Sum[int]())
	require.NoError(t, err)
	//
	total := Aggregate(a, Sum[int]())
	assert.Equal(t, b.Map(func(v int) int { return v * total }).Data(), r.Data())
}

func Test_Algebra_10(t *testing.T) {
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 4)
	a := randomTable(variable.MustSequence(x, y), 6)
	//
	_, err := Project(a, variable.MustSequence(z), Sum[int]())
	assert.ErrorIs(t, err, table.ErrInvalidArgument)
	// Overflow is detected before allocation
	var vars []variable.Variable
	for i := 0; i < 33; i++ {
		vars = append(vars, variable.MustRange("v", 4))
	}
	//
	_, err = CombinedSize(variable.MustSequence(vars[:17]...), variable.MustSequence(vars[17:]...))
	assert.ErrorIs(t, err, variable.ErrOverflow)
}

func Test_Algebra_11(t *testing.T) {
	x, y := variable.MustRange("x", 2), variable.MustRange("y", 3)
	a := randomTable(variable.MustSequence(x, y), 7)
	b := randomTable(variable.MustSequence(y), 8)
	// Custom operator without a registered specialisation uses the generic path
	diff := NewOperator("absdiff", func(l, r int) int {
		if l > r {
			return l - r
		}
		return r - l
	}, 0)
	//
	r, err := Combine(a, b, diff)
	require.NoError(t, err)
	//
	inst := r.Instantiation()
	for ; !inst.End(); inst.Inc() {
		av, _ := a.Get(inst)
		bv, _ := b.Get(inst)
		rv, _ := r.Get(inst)
		assert.Equal(t, diff.Apply(av, bv), rv)
	}
}

func Test_Algebra_12(t *testing.T) {
	sizes := []uint64{}
	x, y, z := variable.MustRange("x", 2), variable.MustRange("y", 3), variable.MustRange("z", 4)
	//
	n, err := CombinedSize(variable.MustSequence(x, y), variable.MustSequence(y, z))
	require.NoError(t, err)
	sizes = append(sizes, n)
	n, err = ProjectedSize(variable.MustSequence(x, y, z), variable.MustSequence(y))
	require.NoError(t, err)
	sizes = append(sizes, n)
	m, err := MemoryOf[float32](variable.MustSequence(x, y, z))
	require.NoError(t, err)
	sizes = append(sizes, m)
	//
	assert.Equal(t, []uint64{24, 8, 96}, sizes)
	//
	ops, err := ProjectOperations(variable.MustSequence(x, y, z), variable.MustSequence(y))
	require.NoError(t, err)
	assert.Equal(t, 24.0, ops)
}

// ===================================================================
// Test Helpers
// ===================================================================

func randomTable(vars variable.Sequence, seed int64) *table.Table[int] {
	var (
		rng   = rand.New(rand.NewSource(seed))
		tbl   = must(table.New(vars, 0))
		cells = tbl.Data()
	)
	//
	for i := range cells {
		cells[i] = rng.Intn(19) - 9
	}
	//
	return tbl
}

func must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}

	return val
}

func check_Combine(t *testing.T, lvars variable.Sequence, rvars variable.Sequence) {
	lhs := randomTable(lvars, 11)
	rhs := randomTable(rvars, 12)
	//
	for _, op := range []Operator[int]{Sum[int](), Product[int](), Max[int](), Min[int]()} {
		dense := CombineDense(lhs, rhs, op.Func())
		generic := CombineGeneric(lhs, rhs, op.Func())
		//
		assert.Equal(t, generic.Variables().String(), dense.Variables().String())
		assert.Equal(t, generic.Data(), dense.Data(), op.Name())
		// Check against the definition
		inst := dense.Instantiation()
		for ; !inst.End(); inst.Inc() {
			l, _ := lhs.Get(inst)
			r, _ := rhs.Get(inst)
			v, _ := dense.Get(inst)
			require.Equal(t, op.Apply(l, r), v, inst.String())
		}
		// Check shape invariant
		vars := dense.Variables()
		assert.Equal(t, vars.MustDomainSize(), dense.Len())
	}
}

func check_Project(t *testing.T, src *table.Table[int], del variable.Sequence) {
	for _, op := range []Operator[int]{Sum[int](), Product[int](), Max[int](), Min[int]()} {
		dense := ProjectDense(src, del, op)
		generic := ProjectGeneric(src, del, op)
		//
		assert.Equal(t, generic.Variables().String(), dense.Variables().String())
		assert.Equal(t, generic.Data(), dense.Data(), op.Name())
		// Check against the definition
		expected := must(table.New(dense.Variables(), op.Neutral()))
		inst := src.Instantiation()
		//
		for ; !inst.End(); inst.Inc() {
			v, _ := src.Get(inst)
			acc, _ := expected.Get(inst)
			require.NoError(t, expected.Set(inst, op.Apply(acc, v)))
		}
		//
		assert.Equal(t, expected.Data(), dense.Data())
	}
}
