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
	"fmt"
	"runtime"

	"github.com/consensys/go-pgm/pkg/schedule"
	"github.com/consensys/go-pgm/pkg/util"
)

// Parallel executes independent operations of a schedule concurrently.  The
// chosen algorithm operates in waves: each wave executes (at most) one ready
// operation per worker, and the next wave starts once all of them have
// finished.  Every table has exactly one producer, and the deletion of a table
// follows all of its readers, so no table is ever written whilst being read.
// The tables computed are identical to those computed by a sequential
// scheduler.
type Parallel[T any] struct {
	workers uint
	metrics *Metrics
}

// NewParallel constructs a parallel scheduler with a given number of workers.
// When this is zero, one worker per CPU is used.
func NewParallel[T any](workers uint) *Parallel[T] {
	if workers == 0 {
		workers = uint(runtime.NumCPU())
	}
	//
	return &Parallel[T]{workers, nil}
}

// WithMetrics returns a copy of this scheduler which records its progress in
// a given set of metrics.
func (p *Parallel[T]) WithMetrics(m *Metrics) *Parallel[T] {
	return &Parallel[T]{p.workers, m}
}

// Workers returns the maximum number of operations executed at once.
func (p *Parallel[T]) Workers() uint {
	return p.workers
}

// Execute every remaining operation of a schedule.
func (p *Parallel[T]) Execute(s *schedule.Schedule[T]) error {
	_, err := p.ExecuteSteps(s, All)
	//
	return err
}

// Outcome of executing a single operation.
type outcome struct {
	node schedule.NodeID
	// Value recovered from a panicking operation, if any
	failure any
}

// ExecuteSteps executes at most k of the remaining operations of a schedule,
// returning whether the schedule is now complete.  If an operation panics, the
// panic is propagated to the caller once the other operations of its wave
// have finished.
func (p *Parallel[T]) ExecuteSteps(s *schedule.Schedule[T], k uint) (bool, error) {
	var (
		f     = newFrontier(s)
		steps uint
		wave  uint
		// Construct a communication channel for outcomes.
		ch = make(chan outcome, p.workers)
	)
	//
	for steps < k {
		var (
			stats = util.NewPerfStats()
			batch = p.nextWave(f, k-steps)
		)
		//
		if len(batch) == 0 {
			break
		}
		// Dispatch!
		for _, n := range batch {
			go func(n schedule.NodeID) {
				ch <- p.run(s, n)
			}(n)
		}
		// Collect up all the results
		var failure any
		//
		for range batch {
			if r := <-ch; r.failure != nil {
				failure = r.failure
			}
		}
		// Once we get here, all go routines are complete and we are sequential
		// again.
		if failure != nil {
			panic(failure)
		}
		//
		for _, n := range batch {
			if _, err := s.UpdateAfterExecution(n); err != nil {
				return false, err
			}
			//
			f.complete(n)
		}
		//
		stats.Log(fmt.Sprintf("Wave %d (%d operations)", wave, len(batch)))
		//
		steps += uint(len(batch))
		wave++
	}
	//
	return s.IsComplete(), nil
}

// Select the next wave of at most n ready operations.
func (p *Parallel[T]) nextWave(f *frontier[T], n uint) []schedule.NodeID {
	var batch []schedule.NodeID
	//
	for uint(len(batch)) < min(n, p.workers) {
		next, ok := f.next()
		if !ok {
			break
		}
		//
		f.take(next)
		batch = append(batch, next)
	}
	//
	return batch
}

func (p *Parallel[T]) run(s *schedule.Schedule[T], n schedule.NodeID) (result outcome) {
	result.node = n
	//
	defer func() {
		if r := recover(); r != nil {
			result.failure = fmt.Sprintf("operation %d: %v", n, r)
		}
	}()
	//
	observe(p.metrics, s, s.Operation(n))
	//
	return result
}

// NbOperations estimates the number of elementary operations performed by the
// next k steps of a schedule.
func (p *Parallel[T]) NbOperations(s *schedule.Schedule[T], k uint) float64 {
	return nbOperations(s, k, p.workers)
}

// MemoryUsage estimates the peak and final memory (in bytes) held by tables
// produced during the next k steps of a schedule.  All operations of a wave
// are assumed to hold their results at the same time.
func (p *Parallel[T]) MemoryUsage(s *schedule.Schedule[T], k uint) (uint64, uint64, error) {
	return memoryUsage(s, k, p.workers)
}
