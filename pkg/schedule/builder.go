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
package schedule

import (
	"fmt"

	"github.com/consensys/go-pgm/pkg/algebra"
	"github.com/consensys/go-pgm/pkg/planner"
	"github.com/consensys/go-pgm/pkg/variable"
)

// ScheduleCombination inserts the operations needed to combine a set of
// tables into a schedule, in the order chosen by a combination planner.
// Intermediate results are deleted once consumed.  The handle of the final
// result is returned.
func ScheduleCombination[T any](s *Schedule[T], p *planner.Combination[T], args ...*MultiDim[T]) (*MultiDim[T],
	error) {
	//
	if len(args) < 2 {
		return nil, fmt.Errorf("combining %d table(s): %w", len(args), planner.ErrTooFewOperands)
	}
	//
	plan, err := planner.Plan(sequencesOf(args))
	if err != nil {
		return nil, err
	}
	//
	result, _, err := scheduleMerges(s, p.Registry(), p.Operator(), plan, args, make([]bool, len(args)))
	//
	return result, err
}

// ScheduleProjection inserts a projection into a schedule, using the default
// registry for T.  The handle of the result is returned.
func ScheduleProjection[T any](s *Schedule[T], op algebra.Operator[T], arg *MultiDim[T],
	del variable.Sequence) (*MultiDim[T], error) {
	//
	proj, err := NewProjection(op, arg, del)
	if err != nil {
		return nil, err
	}
	//
	result, _, err := insertFresh[T](s, proj)
	//
	return result, err
}

// ScheduleCombineAndProject inserts the operations needed to eliminate a set
// of variables from a set of tables into a schedule, in the order chosen by a
// combine-and-project planner.  Intermediate results are deleted once
// consumed.  The handles of the remaining tables are returned.
func ScheduleCombineAndProject[T any](s *Schedule[T], p *planner.CombineAndProject[T], args []*MultiDim[T],
	del variable.Sequence) ([]*MultiDim[T], error) {
	//
	plan, err := planner.PlanElimination(sequencesOf(args), del)
	if err != nil {
		return nil, err
	}
	//
	var (
		slots = append([]*MultiDim[T](nil), args...)
		temps = make([]bool, len(args))
	)
	//
	for _, e := range plan.Steps {
		var (
			operands = make([]*MultiDim[T], len(e.Operands))
			otemps   = make([]bool, len(e.Operands))
		)
		//
		for i, slot := range e.Operands {
			operands[i], otemps[i] = slots[slot], temps[slot]
		}
		//
		combined, temp, err := scheduleMerges(s, p.Registry(), p.CombineOperator(), e.Combination, operands, otemps)
		if err != nil {
			return nil, err
		}
		//
		proj, err := NewProjectionWith(p.Registry(), p.ProjectOperator(), combined, e.Deleted)
		if err != nil {
			return nil, err
		}
		//
		projected, fresh, err := insertFresh[T](s, proj)
		if err != nil {
			return nil, err
		}
		//
		if temp {
			if _, err := s.Insert(NewDeletion(combined)); err != nil {
				return nil, err
			}
		}
		//
		slots = append(slots, projected)
		temps = append(temps, fresh)
	}
	//
	result := make([]*MultiDim[T], len(plan.Live))
	//
	for i, slot := range plan.Live {
		result[i] = slots[slot]
	}
	//
	return result, nil
}

// Insert the combinations of a given plan over a given set of handles, some of
// which may be temporaries (and can therefore be deleted once consumed).  The
// final handle is returned, along with whether it is a temporary.  For an empty
// plan, this is the first handle.
func scheduleMerges[T any](s *Schedule[T], reg *algebra.Registry[T], op algebra.Operator[T], plan []planner.Merge,
	slots []*MultiDim[T], temps []bool) (*MultiDim[T], bool, error) {
	//
	if len(plan) == 0 {
		return slots[0], temps[0], nil
	}
	//
	slots = append([]*MultiDim[T](nil), slots...)
	temps = append([]bool(nil), temps...)
	//
	for _, m := range plan {
		comb, err := NewCombinationWith(reg, op, slots[m.Lhs], slots[m.Rhs])
		if err != nil {
			return nil, false, err
		}
		//
		result, fresh, err := insertFresh[T](s, comb)
		if err != nil {
			return nil, false, err
		}
		// Release consumed temporaries
		for _, i := range []uint{m.Lhs, m.Rhs} {
			if temps[i] {
				if _, err := s.Insert(NewDeletion(slots[i])); err != nil {
					return nil, false, err
				}
			}
		}
		//
		slots[m.Lhs], temps[m.Lhs] = result, fresh
		slots[m.Rhs], temps[m.Rhs] = nil, false
	}
	//
	last := plan[len(plan)-1].Lhs
	//
	return slots[last], temps[last], nil
}

// Insert an operation, returning its result and whether that result is new
// (rather than the result of an identical operation already scheduled).
func insertFresh[T any](s *Schedule[T], op Operation[T]) (*MultiDim[T], bool, error) {
	before := s.Len()
	//
	n, err := s.Insert(op)
	if err != nil {
		return nil, false, err
	}
	//
	return s.ResultOf(n), s.Len() > before, nil
}

func sequencesOf[T any](handles []*MultiDim[T]) []variable.Sequence {
	seqs := make([]variable.Sequence, len(handles))
	//
	for i, h := range handles {
		seqs[i] = h.vars
	}
	//
	return seqs
}
