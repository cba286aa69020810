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
	"fmt"
	"math"

	"github.com/consensys/go-pgm/pkg/algebra"
	"github.com/consensys/go-pgm/pkg/table"
	"github.com/consensys/go-pgm/pkg/variable"
	log "github.com/sirupsen/logrus"
)

// Elimination is a single step of a combine-and-project plan.  The tables in
// the given operand slots are combined (according to the given combination
// plan, whose slots are positions within Operands) and the deleted variables
// are then projected out.  The projected table is placed into a fresh slot,
// whilst the operand slots are retired.  Slots initially hold the operands in
// the order given, and fresh slots are numbered consecutively after them.
type Elimination struct {
	Operands    []uint
	Combination []Merge
	// Variables of the combined table (before projection).
	Combined variable.Sequence
	// Variables projected out of the combined table.
	Deleted variable.Sequence
	// Variables of the projected table.
	Vars variable.Sequence
	// Slot holding the projected table.
	Result uint
}

// EliminationPlan is the complete plan for combining and projecting a set of
// tables.
type EliminationPlan struct {
	Steps []Elimination
	// Slots live at the end of the plan, in increasing order.
	Live []uint
}

// CombineAndProject eliminates a set of variables from a set of tables.  Each
// variable is eliminated by combining the tables which mention it and then
// projecting it out, so that the full joint table is never constructed.  At
// each step the variable whose elimination requires the smallest combined
// table is chosen, with ties broken in favour of the earliest variable in the
// deletion sequence.
type CombineAndProject[T any] struct {
	combine algebra.Operator[T]
	project algebra.Operator[T]
	reg     *algebra.Registry[T]
}

// NewCombineAndProject constructs a planner which combines tables using one
// operator and projects using another (e.g. product and sum), using the
// default registry for T.
func NewCombineAndProject[T any](combine algebra.Operator[T], project algebra.Operator[T]) *CombineAndProject[T] {
	return &CombineAndProject[T]{combine, project, algebra.Default[T]()}
}

// WithRegistry returns a copy of this planner which looks up implementations
// in a given registry.
func (p *CombineAndProject[T]) WithRegistry(reg *algebra.Registry[T]) *CombineAndProject[T] {
	return &CombineAndProject[T]{p.combine, p.project, reg}
}

// CombineOperator returns the operator used to combine tables.
func (p *CombineAndProject[T]) CombineOperator() algebra.Operator[T] {
	return p.combine
}

// ProjectOperator returns the operator used to project tables.
func (p *CombineAndProject[T]) ProjectOperator() algebra.Operator[T] {
	return p.project
}

// Registry returns the registry in which implementations are looked up.
func (p *CombineAndProject[T]) Registry() *algebra.Registry[T] {
	return p.reg
}

// Execute eliminates the given variables from the given tables, returning the
// resulting set of tables.  Deleted variables not mentioned by any table are
// ignored.  Tables not involved in any elimination are returned as is, whilst
// none of the given tables is modified.
func (p *CombineAndProject[T]) Execute(tables []*table.Table[T], del variable.Sequence) ([]*table.Table[T], error) {
	seqs := make([]variable.Sequence, len(tables))
	//
	for i, t := range tables {
		seqs[i] = t.Variables()
	}
	//
	plan, err := PlanElimination(seqs, del)
	if err != nil {
		return nil, err
	}
	//
	var (
		slots    = append([]*table.Table[T](nil), tables...)
		combiner = NewCombination(p.combine).WithRegistry(p.reg)
	)
	//
	for _, e := range plan.Steps {
		var (
			combined *table.Table[T]
			err      error
		)
		//
		if len(e.Operands) == 1 {
			combined = slots[e.Operands[0]]
		} else {
			operands := make([]*table.Table[T], len(e.Operands))
			for i, s := range e.Operands {
				operands[i] = slots[s]
			}
			//
			if combined, err = combiner.Combine(operands...); err != nil {
				return nil, err
			}
		}
		//
		projected, err := algebra.ProjectWith(p.reg, combined, e.Deleted, p.project)
		if err != nil {
			return nil, err
		}
		//
		for _, s := range e.Operands {
			slots[s] = nil
		}
		//
		slots = append(slots, projected)
	}
	//
	result := make([]*table.Table[T], len(plan.Live))
	//
	for i, s := range plan.Live {
		result[i] = slots[s]
	}
	//
	return result, nil
}

// NbOperations estimates the number of elementary operations needed to
// eliminate the given variables from tables over the given sequences.
func (p *CombineAndProject[T]) NbOperations(seqs []variable.Sequence, del variable.Sequence) (float64, error) {
	plan, err := PlanElimination(seqs, del)
	if err != nil {
		return 0, err
	}
	//
	var ops float64
	//
	for _, e := range plan.Steps {
		size, err := e.Combined.DomainSize()
		if err != nil {
			return 0, err
		}
		//
		ops += planOperations(e.Combination) + float64(size)
	}
	//
	return ops, nil
}

// MemoryUsage estimates the peak and final memory (in bytes) needed to
// eliminate the given variables from tables over the given sequences.  The
// given tables are not counted, and neither are any returned unchanged.
func (p *CombineAndProject[T]) MemoryUsage(seqs []variable.Sequence, del variable.Sequence) (uint64, uint64, error) {
	plan, err := PlanElimination(seqs, del)
	if err != nil {
		return 0, 0, err
	}
	//
	var (
		mem   memoryTracker
		owned = make([]uint64, len(seqs))
	)
	//
	for _, e := range plan.Steps {
		inner := make([]uint64, len(e.Operands))
		//
		for i, s := range e.Operands {
			inner[i] = owned[s]
			owned[s] = 0
		}
		//
		for _, m := range e.Combination {
			size, err := variable.MulSizes(m.Size, algebra.ElemSize[T]())
			if err != nil {
				return 0, 0, err
			}
			//
			if err := mem.alloc(size); err != nil {
				return 0, 0, err
			}
			//
			mem.free(inner[m.Lhs] + inner[m.Rhs])
			inner[m.Lhs], inner[m.Rhs] = size, 0
		}
		//
		size, err := algebra.MemoryOf[T](e.Vars)
		if err != nil {
			return 0, 0, err
		}
		//
		if err := mem.alloc(size); err != nil {
			return 0, 0, err
		}
		// Release the combined table, if it was a temporary.
		for _, n := range inner {
			mem.free(n)
		}
		//
		owned = append(owned, size)
	}
	//
	return mem.peak, mem.current, nil
}

// PlanElimination determines the order in which variables are eliminated from
// tables over the given sequences.  An error is returned if a chosen step
// requires a table whose size is not representable.
func PlanElimination(seqs []variable.Sequence, del variable.Sequence) (EliminationPlan, error) {
	var (
		slots     = append([]variable.Sequence(nil), seqs...)
		live      = make([]bool, len(seqs))
		remaining []variable.Variable
		steps     []Elimination
	)
	//
	for i := range live {
		live[i] = true
	}
	// Ignore variables no table mentions
	for _, v := range del.Vars() {
		if len(slotsMentioning(slots, live, v)) > 0 {
			remaining = append(remaining, v)
		}
	}
	//
	for len(remaining) > 0 {
		var (
			best     = -1
			bestSize = uint64(math.MaxUint64)
			operands []uint
			union    variable.Sequence
		)
		// Find the cheapest variable to eliminate
		for k, v := range remaining {
			ops := slotsMentioning(slots, live, v)
			vars := unionOf(slots, ops)
			//
			size, err := vars.DomainSize()
			if err != nil {
				continue
			} else if best < 0 || size < bestSize {
				best, bestSize, operands, union = k, size, ops, vars
			}
		}
		//
		if best < 0 {
			return EliminationPlan{}, fmt.Errorf("eliminating %v: %w", remaining, variable.ErrOverflow)
		}
		// Determine everything which can be projected out at this point
		var deleted, rest []variable.Variable
		//
		for _, v := range remaining {
			if union.Contains(v) && onlyIn(slots, live, operands, v) {
				deleted = append(deleted, v)
			} else {
				rest = append(rest, v)
			}
		}
		//
		step, err := planStep(slots, operands, variable.MustSequence(deleted...))
		if err != nil {
			return EliminationPlan{}, err
		}
		//
		log.Debugf("eliminating %s from %d table(s) over %s", step.Deleted.String(), len(operands),
			step.Combined.String())
		//
		for _, s := range operands {
			live[s] = false
		}
		//
		step.Result = uint(len(slots))
		slots = append(slots, step.Vars)
		live = append(live, true)
		steps = append(steps, step)
		remaining = rest
	}
	//
	var result []uint
	//
	for i, l := range live {
		if l {
			result = append(result, uint(i))
		}
	}
	//
	return EliminationPlan{steps, result}, nil
}

func planStep(slots []variable.Sequence, operands []uint, deleted variable.Sequence) (Elimination, error) {
	var (
		seqs     = make([]variable.Sequence, len(operands))
		combined variable.Sequence
		merges   []Merge
		err      error
	)
	//
	for i, s := range operands {
		seqs[i] = slots[s]
	}
	//
	if len(seqs) == 1 {
		combined = seqs[0]
	} else if merges, err = Plan(seqs); err != nil {
		return Elimination{}, err
	} else {
		combined = merges[len(merges)-1].Vars
	}
	//
	return Elimination{
		Operands:    operands,
		Combination: merges,
		Combined:    combined,
		Deleted:     deleted,
		Vars:        combined.Difference(deleted),
	}, nil
}

// Determine the live slots whose tables mention a given variable.
func slotsMentioning(slots []variable.Sequence, live []bool, v variable.Variable) []uint {
	var result []uint
	//
	for i, s := range slots {
		if live[i] && s.Contains(v) {
			result = append(result, uint(i))
		}
	}
	//
	return result
}

// Determine whether a given variable is mentioned by no live slot outside a
// given set of slots.
func onlyIn(slots []variable.Sequence, live []bool, within []uint, v variable.Variable) bool {
	for _, s := range slotsMentioning(slots, live, v) {
		found := false
		//
		for _, w := range within {
			found = found || w == s
		}
		//
		if !found {
			return false
		}
	}
	//
	return true
}

func unionOf(slots []variable.Sequence, within []uint) variable.Sequence {
	var result variable.Sequence
	//
	for _, s := range within {
		result = result.Union(slots[s])
	}
	//
	return result
}
