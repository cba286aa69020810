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
	"errors"
	"fmt"

	"github.com/consensys/go-pgm/pkg/algebra"
	"github.com/consensys/go-pgm/pkg/table"
	"github.com/consensys/go-pgm/pkg/variable"
	log "github.com/sirupsen/logrus"
)

// ErrTooFewOperands is returned when a combination is requested over fewer
// than two tables.
var ErrTooFewOperands = errors.New("at least two tables required")

// Merge is a single step of a combination plan.  The tables held in slots Lhs
// and Rhs are combined and the result placed into slot Lhs, whilst slot Rhs is
// retired.  Slots initially hold the operands in the order given.
type Merge struct {
	Lhs uint
	Rhs uint
	// Variables of the combined table.
	Vars variable.Sequence
	// Number of cells in the combined table.
	Size uint64
}

// Combination combines sets of tables using a fixed binary operator which is
// assumed associative and commutative.  The order in which tables are combined
// is chosen greedily: at each step the pair of live tables whose combination
// is smallest is combined first.  Ties are broken in favour of the lowest
// slot indices.
type Combination[T any] struct {
	op  algebra.Operator[T]
	reg *algebra.Registry[T]
}

// NewCombination constructs a combination planner for a given operator, using
// the default registry for T.
func NewCombination[T any](op algebra.Operator[T]) *Combination[T] {
	return &Combination[T]{op, algebra.Default[T]()}
}

// WithRegistry returns a copy of this planner which looks up implementations
// in a given registry.
func (p *Combination[T]) WithRegistry(reg *algebra.Registry[T]) *Combination[T] {
	return &Combination[T]{p.op, reg}
}

// Operator returns the operator used by this planner.
func (p *Combination[T]) Operator() algebra.Operator[T] {
	return p.op
}

// Registry returns the registry in which implementations are looked up.
func (p *Combination[T]) Registry() *algebra.Registry[T] {
	return p.reg
}

// Combine all the given tables together.  None of the given tables is
// modified, and intermediate results are released as soon as they have been
// consumed.
func (p *Combination[T]) Combine(tables ...*table.Table[T]) (*table.Table[T], error) {
	if len(tables) < 2 {
		return nil, fmt.Errorf("combining %d table(s): %w", len(tables), ErrTooFewOperands)
	}
	//
	seqs := make([]variable.Sequence, len(tables))
	//
	for i, t := range tables {
		seqs[i] = t.Variables()
	}
	//
	plan, err := Plan(seqs)
	if err != nil {
		return nil, err
	}
	//
	slots := make([]*table.Table[T], len(tables))
	copy(slots, tables)
	//
	for _, m := range plan {
		r, err := algebra.CombineWith(p.reg, slots[m.Lhs], slots[m.Rhs], p.op)
		if err != nil {
			return nil, err
		}
		//
		slots[m.Lhs], slots[m.Rhs] = r, nil
	}
	//
	return slots[plan[len(plan)-1].Lhs], nil
}

// NbOperations estimates the number of elementary operations required to
// combine tables over the given sequences of variables, without combining
// anything.  This is zero for fewer than two tables.
func (p *Combination[T]) NbOperations(seqs ...variable.Sequence) (float64, error) {
	if len(seqs) < 2 {
		return 0, nil
	}
	//
	plan, err := Plan(seqs)
	if err != nil {
		return 0, err
	}
	//
	return planOperations(plan), nil
}

// MemoryUsage estimates the memory (in bytes) required to combine tables over
// the given sequences of variables, without combining anything.  This returns
// both the peak memory held by intermediate results during the combination and
// the memory held by the final result.  The operands themselves are not
// counted.  Both are zero for fewer than two tables.
func (p *Combination[T]) MemoryUsage(seqs ...variable.Sequence) (uint64, uint64, error) {
	if len(seqs) < 2 {
		return 0, 0, nil
	}
	//
	plan, err := Plan(seqs)
	if err != nil {
		return 0, 0, err
	}
	//
	var mem memoryTracker
	// Inputs are not owned
	owned := make([]uint64, len(seqs))
	//
	for _, m := range plan {
		size, err := variable.MulSizes(m.Size, algebra.ElemSize[T]())
		if err != nil {
			return 0, 0, err
		}
		//
		if err := mem.alloc(size); err != nil {
			return 0, 0, err
		}
		//
		mem.free(owned[m.Lhs] + owned[m.Rhs])
		owned[m.Lhs], owned[m.Rhs] = size, 0
	}
	//
	return mem.peak, mem.current, nil
}

// Plan determines the greedy order in which tables over the given sequences of
// variables should be combined.  An error is returned if a chosen combination
// has an unrepresentable size.  For fewer than two sequences, the plan is
// empty.
func Plan(seqs []variable.Sequence) ([]Merge, error) {
	var (
		n     = uint(len(seqs))
		live  = make([]bool, n)
		slots = make([]variable.Sequence, n)
		queue = newPairQueue(n)
		plan  []Merge
	)
	//
	for i := range n {
		live[i] = true
		slots[i] = seqs[i]
		//
		for j := range i {
			size, err := algebra.CombinedSize(slots[j], slots[i])
			queue.push(j, i, size, err != nil)
		}
	}
	//
	for queue.len() > 0 {
		c := queue.pop()
		//
		if c.overflow {
			return nil, fmt.Errorf("combining %s with %s: %w", slots[c.i].String(), slots[c.j].String(),
				variable.ErrOverflow)
		}
		//
		log.Debugf("combining slots %d%s and %d%s (%d cells)", c.i, slots[c.i].String(), c.j,
			slots[c.j].String(), c.size)
		//
		merged := slots[c.i].Union(slots[c.j])
		plan = append(plan, Merge{c.i, c.j, merged, c.size})
		// Retire rhs
		live[c.j] = false
		slots[c.i] = merged
		//
		for k := range n {
			if !live[k] || k == c.i {
				continue
			}
			//
			queue.remove(c.j, k)
			//
			size, err := algebra.CombinedSize(slots[c.i], slots[k])
			queue.push(c.i, k, size, err != nil)
		}
	}
	//
	return plan, nil
}

func planOperations(plan []Merge) float64 {
	var ops float64
	//
	for _, m := range plan {
		ops += float64(m.Size)
	}
	//
	return ops
}

// Tracks the current and peak number of bytes allocated by a simulation.
type memoryTracker struct {
	current uint64
	peak    uint64
}

func (p *memoryTracker) alloc(n uint64) error {
	current, err := variable.AddSizes(p.current, n)
	if err != nil {
		return err
	}
	//
	p.current = current
	p.peak = max(p.peak, current)
	//
	return nil
}

func (p *memoryTracker) free(n uint64) {
	p.current -= n
}
