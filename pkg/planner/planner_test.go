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
package planner

import (
	"math/rand/v2"
	"testing"

	"github.com/consensys/go-pgm/pkg/algebra"
	"github.com/consensys/go-pgm/pkg/table"
	"github.com/consensys/go-pgm/pkg/variable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	a = variable.MustRange("a", 2)
	b = variable.MustRange("b", 2)
	c = variable.MustRange("c", 10)
	d = variable.MustRange("d", 2)
)

func seq(vars ...variable.Variable) variable.Sequence {
	return variable.MustSequence(vars...)
}

// ============================================================================
// Combination
// ============================================================================

func Test_Plan_01(t *testing.T) {
	plan, err := Plan([]variable.Sequence{seq(a, c), seq(b, d), seq(a, b)})
	require.NoError(t, err)
	require.Len(t, plan, 2)
	// Smallest pair first
	assert.Equal(t, uint(1), plan[0].Lhs)
	assert.Equal(t, uint(2), plan[0].Rhs)
	assert.Equal(t, uint64(8), plan[0].Size)
	assert.True(t, plan[0].Vars.Equals(seq(b, d, a)))
	//
	assert.Equal(t, uint(0), plan[1].Lhs)
	assert.Equal(t, uint(1), plan[1].Rhs)
	assert.Equal(t, uint64(80), plan[1].Size)
}

func Test_Plan_02(t *testing.T) {
	x := variable.MustRange("x", 2)
	y := variable.MustRange("y", 2)
	z := variable.MustRange("z", 2)
	// All pairs tie, so lowest indices first
	plan, err := Plan([]variable.Sequence{seq(x), seq(y), seq(z)})
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, Merge{0, 1, seq(x, y), 4}, plan[0])
	assert.Equal(t, Merge{0, 2, seq(x, y, z), 8}, plan[1])
}

func Test_Plan_03(t *testing.T) {
	// Fewer than two sequences
	plan, err := Plan(nil)
	require.NoError(t, err)
	assert.Empty(t, plan)
	//
	plan, err = Plan([]variable.Sequence{seq(a)})
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func Test_Combination_01(t *testing.T) {
	p := NewCombination(algebra.Sum[float64]())
	seqs := []variable.Sequence{seq(a, c), seq(b, d), seq(a, b)}
	//
	ops, err := p.NbOperations(seqs...)
	require.NoError(t, err)
	assert.Equal(t, 88.0, ops)
	// Greedy never worse than the fixed orders
	assert.LessOrEqual(t, ops, check_FixedOrderCost(t, seqs[0], seqs[1], seqs[2]))
	assert.LessOrEqual(t, ops, check_FixedOrderCost(t, seqs[0], seqs[2], seqs[1]))
	assert.LessOrEqual(t, ops, check_FixedOrderCost(t, seqs[1], seqs[2], seqs[0]))
	//
	peak, final, err := p.MemoryUsage(seqs...)
	require.NoError(t, err)
	assert.Equal(t, uint64(704), peak)
	assert.Equal(t, uint64(640), final)
}

func Test_Combination_02(t *testing.T) {
	p := NewCombination(algebra.Product[float64]())
	// Trivial costs
	ops, err := p.NbOperations(seq(a))
	require.NoError(t, err)
	assert.Equal(t, 0.0, ops)
	//
	peak, final, err := p.MemoryUsage()
	require.NoError(t, err)
	assert.Zero(t, peak)
	assert.Zero(t, final)
	// But combining is an error
	_, err = p.Combine(table.Scalar(1.0))
	assert.ErrorIs(t, err, ErrTooFewOperands)
	_, err = p.Combine()
	assert.ErrorIs(t, err, ErrTooFewOperands)
}

func Test_Combination_03(t *testing.T) {
	big := []variable.Sequence{
		seq(variable.MustRange("p", 1<<32)),
		seq(variable.MustRange("q", 1<<32)),
		seq(variable.MustRange("r", 1<<32)),
	}
	p := NewCombination(algebra.Sum[float64]())
	//
	_, err := p.NbOperations(big...)
	assert.ErrorIs(t, err, variable.ErrOverflow)
	//
	_, _, err = p.MemoryUsage(big...)
	assert.ErrorIs(t, err, variable.ErrOverflow)
}

func Test_Combination_04(t *testing.T) {
	var (
		rng    = rand.New(rand.NewPCG(1, 2))
		tables = []*table.Table[int]{
			randomTable(rng, seq(a, c)),
			randomTable(rng, seq(b, d)),
			randomTable(rng, seq(a, b)),
			randomTable(rng, seq(d)),
		}
	)
	//
	for _, op := range []algebra.Operator[int]{algebra.Sum[int](), algebra.Product[int](), algebra.Max[int]()} {
		p := NewCombination(op)
		actual, err := p.Combine(tables...)
		require.NoError(t, err)
		// Left-to-right
		expected := tables[0]
		//
		for _, t2 := range tables[1:] {
			expected, err = algebra.Combine(expected, t2, op)
			require.NoError(t, err)
		}
		//
		assert.True(t, actual.EqualFunc(expected, func(x, y int) bool { return x == y }), op.Name())
		// Operands untouched
		assert.Equal(t, uint64(20), tables[0].Len())
	}
}

// ============================================================================
// Combine and Project
// ============================================================================

func Test_CombineAndProject_01(t *testing.T) {
	var (
		x = variable.MustRange("X", 2)
		y = variable.MustRange("Y", 2)
		z = variable.MustRange("Z", 2)
		p = NewCombineAndProject(algebra.Product[float64](), algebra.Sum[float64]())
		A = table.MustFromData(seq(x, y), []float64{1, 2, 3, 4})
		B = table.MustFromData(seq(y, z), []float64{1, 0, 0, 1})
	)
	//
	result, err := p.Execute([]*table.Table[float64]{A, B}, seq(y))
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.True(t, result[0].Variables().Equals(seq(x, z)))
	assert.Equal(t, []float64{1, 2, 3, 4}, result[0].Data())
}

func Test_CombineAndProject_02(t *testing.T) {
	var (
		x = variable.MustRange("X", 2)
		y = variable.MustRange("Y", 3)
		p = NewCombineAndProject(algebra.Product[int](), algebra.Sum[int]())
		A = table.MustFromData(seq(x), []int{1, 2})
		B = table.MustFromData(seq(y), []int{1, 2, 3})
	)
	// Unknown variables are ignored, and untouched tables returned as is
	result, err := p.Execute([]*table.Table[int]{A, B}, seq(variable.MustRange("W", 2)))
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Same(t, A, result[0])
	assert.Same(t, B, result[1])
	// Eliminating a variable mentioned by one table only
	result, err = p.Execute([]*table.Table[int]{A, B}, seq(y))
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Same(t, A, result[0])
	assert.Equal(t, []int{6}, result[1].Data())
	assert.Equal(t, []int{1, 2, 3}, B.Data())
}

func Test_CombineAndProject_03(t *testing.T) {
	var (
		rng    = rand.New(rand.NewPCG(3, 4))
		p      = NewCombineAndProject(algebra.Product[int](), algebra.Sum[int]())
		del    = seq(b, c)
		tables = []*table.Table[int]{
			randomTable(rng, seq(a, b)),
			randomTable(rng, seq(b, c)),
			randomTable(rng, seq(c, d)),
		}
	)
	//
	result, err := p.Execute(tables, del)
	require.NoError(t, err)
	require.Len(t, result, 1)
	// Brute force
	joint, err := NewCombination(algebra.Product[int]()).Combine(tables...)
	require.NoError(t, err)
	expected, err := algebra.Project(joint, del, algebra.Sum[int]())
	require.NoError(t, err)
	//
	assert.True(t, result[0].EqualFunc(expected, func(x, y int) bool { return x == y }))
}

func Test_CombineAndProject_04(t *testing.T) {
	var (
		p    = NewCombineAndProject(algebra.Product[int](), algebra.Sum[int]())
		seqs = []variable.Sequence{seq(a, b), seq(b, d), seq(d, a)}
	)
	//
	plan, err := PlanElimination(seqs, seq(b, d))
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)
	// b first (tie with d), which leaves d still mentioned by slot 2
	assert.Equal(t, []uint{0, 1}, plan.Steps[0].Operands)
	assert.True(t, plan.Steps[0].Deleted.Equals(seq(b)))
	assert.True(t, plan.Steps[0].Vars.Equals(seq(a, d)))
	assert.Equal(t, uint(3), plan.Steps[0].Result)
	//
	assert.Equal(t, []uint{2, 3}, plan.Steps[1].Operands)
	assert.True(t, plan.Steps[1].Deleted.Equals(seq(d)))
	assert.True(t, plan.Steps[1].Vars.Equals(seq(a)))
	assert.Equal(t, []uint{4}, plan.Live)
	// Combine into 8 cells then project, followed by combine into 4 cells then project
	ops, err := p.NbOperations(seqs, seq(b, d))
	require.NoError(t, err)
	assert.Equal(t, 24.0, ops)
	// Peak is 8 combined and 4 projected cells of 8 bytes each
	peak, final, err := p.MemoryUsage(seqs, seq(b, d))
	require.NoError(t, err)
	assert.Equal(t, uint64(96), peak)
	assert.Equal(t, uint64(16), final)
}

func Test_CombineAndProject_05(t *testing.T) {
	var (
		p    = NewCombineAndProject(algebra.Product[float64](), algebra.Sum[float64]())
		huge = variable.MustRange("huge", 1<<33)
		seqs = []variable.Sequence{seq(huge, variable.MustRange("h1", 1<<31)),
			seq(huge, variable.MustRange("h2", 1<<31))}
	)
	//
	_, err := p.NbOperations(seqs, seq(huge))
	assert.ErrorIs(t, err, variable.ErrOverflow)
}

// Cost of combining three tables in a fixed order.
func check_FixedOrderCost(t *testing.T, s1, s2, s3 variable.Sequence) float64 {
	t.Helper()
	//
	first, err := algebra.CombineOperations(s1, s2)
	require.NoError(t, err)
	second, err := algebra.CombineOperations(s1.Union(s2), s3)
	require.NoError(t, err)
	//
	return first + second
}

func randomTable(rng *rand.Rand, vars variable.Sequence) *table.Table[int] {
	data := make([]int, vars.MustDomainSize())
	//
	for i := range data {
		data[i] = rng.IntN(5)
	}
	//
	return table.MustFromData(vars, data)
}
