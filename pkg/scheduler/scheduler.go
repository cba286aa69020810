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
package scheduler

import (
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/go-pgm/pkg/schedule"
	"github.com/consensys/go-pgm/pkg/variable"
)

// All indicates that every remaining operation of a schedule should be
// considered.
const All uint = math.MaxUint

// Scheduler determines the order in which the operations of a schedule are
// executed.  Operations are only ever executed once all of their predecessors
// have been, and ready operations are always considered in increasing order of
// their identifiers.  Execution is resumable: operations already executed are
// skipped, hence executing a schedule one step at a time produces the same
// tables as executing it in one go.
type Scheduler[T any] interface {
	// Execute every remaining operation of a schedule.
	Execute(s *schedule.Schedule[T]) error
	// ExecuteSteps executes at most k of the remaining operations of a
	// schedule, returning whether the schedule is now complete.
	ExecuteSteps(s *schedule.Schedule[T], k uint) (bool, error)
	// NbOperations estimates the number of elementary operations performed by
	// the next k steps of a schedule, without executing anything.
	NbOperations(s *schedule.Schedule[T], k uint) float64
	// MemoryUsage estimates the peak and final memory (in bytes) held by
	// tables produced during the next k steps of a schedule, without executing
	// anything.  Tables materialised before these steps are not counted.
	MemoryUsage(s *schedule.Schedule[T], k uint) (uint64, uint64, error)
}

// Tracks which operations of a schedule are done, and which are ready to be
// executed (i.e. not done, but all of their predecessors are).
type frontier[T any] struct {
	sched *schedule.Schedule[T]
	done  *bitset.BitSet
	ready *bitset.BitSet
}

// Initialise a frontier from the operations of a schedule which have already
// been executed.
func newFrontier[T any](s *schedule.Schedule[T]) *frontier[T] {
	f := &frontier[T]{s, bitset.New(s.Len()), bitset.New(s.Len())}
	//
	for i := range s.Len() {
		if s.Operation(schedule.NodeID(i)).IsExecuted() {
			f.done.Set(i)
		}
	}
	//
	for i := range s.Len() {
		if !f.done.Test(i) && f.enabled(schedule.NodeID(i)) {
			f.ready.Set(i)
		}
	}
	//
	return f
}

// Return the lowest ready operation, if there is one.
func (p *frontier[T]) next() (schedule.NodeID, bool) {
	i, ok := p.ready.NextSet(0)
	//
	return schedule.NodeID(i), ok
}

// Remove an operation from the ready set, without marking it done.
func (p *frontier[T]) take(n schedule.NodeID) {
	p.ready.Clear(uint(n))
}

// Mark an operation done, and make ready those successors which are now
// enabled.
func (p *frontier[T]) complete(n schedule.NodeID) {
	p.done.Set(uint(n))
	p.ready.Clear(uint(n))
	//
	for _, s := range p.sched.Successors(n) {
		if !p.done.Test(uint(s)) && p.enabled(s) {
			p.ready.Set(uint(s))
		}
	}
}

func (p *frontier[T]) enabled(n schedule.NodeID) bool {
	for _, pr := range p.sched.Predecessors(n) {
		if !p.done.Test(uint(pr)) {
			return false
		}
	}
	//
	return true
}

// Walk (without executing) the next k steps of a schedule in rounds of at most
// width ready operations each.  Every operation of a round is ready at the
// start of that round.
func simulate[T any](s *schedule.Schedule[T], k uint, width uint, visit func([]schedule.Operation[T]) error) error {
	var (
		f     = newFrontier(s)
		steps uint
		round []schedule.NodeID
	)
	//
	for steps < k {
		round = round[:0]
		//
		for uint(len(round)) < width && steps < k {
			n, ok := f.next()
			if !ok {
				break
			}
			//
			f.take(n)
			round = append(round, n)
			steps++
		}
		//
		if len(round) == 0 {
			break
		}
		//
		ops := make([]schedule.Operation[T], len(round))
		//
		for i, n := range round {
			ops[i] = s.Operation(n)
		}
		//
		if err := visit(ops); err != nil {
			return err
		}
		//
		for _, n := range round {
			f.complete(n)
		}
	}
	//
	return nil
}

// Estimate the number of elementary operations of the next k steps.
func nbOperations[T any](s *schedule.Schedule[T], k uint, width uint) float64 {
	var total float64
	//
	_ = simulate(s, k, width, func(ops []schedule.Operation[T]) error {
		for _, op := range ops {
			total += op.NbOperations()
		}
		//
		return nil
	})
	//
	return total
}

// Estimate the peak and final memory of the next k steps.  Within a round, all
// allocations happen before any release.
func memoryUsage[T any](s *schedule.Schedule[T], k uint, width uint) (uint64, uint64, error) {
	var (
		current, peak uint64
		// Tables produced within the simulated steps
		produced = bitset.New(s.Tables())
	)
	//
	err := simulate(s, k, width, func(ops []schedule.Operation[T]) error {
		for _, op := range ops {
			alloc, _, err := op.MemoryUsage()
			if err != nil {
				return err
			} else if current, err = variable.AddSizes(current, alloc); err != nil {
				return err
			}
			//
			for _, r := range op.Results() {
				produced.Set(uint(r.ID()))
			}
		}
		//
		peak = max(peak, current)
		//
		for _, op := range ops {
			for _, h := range op.Releases() {
				if !produced.Test(uint(h.ID())) {
					continue
				}
				// Sizes of produced tables are known to be representable
				n, _ := h.Memory()
				current -= n
				//
				produced.Clear(uint(h.ID()))
			}
		}
		//
		return nil
	})
	//
	if err != nil {
		return 0, 0, err
	}
	//
	return peak, current, nil
}
