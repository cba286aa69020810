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
	"github.com/consensys/go-pgm/pkg/schedule"
)

// Sequential executes the operations of a schedule one at a time on the
// calling goroutine.
type Sequential[T any] struct {
	metrics *Metrics
}

// NewSequential constructs a sequential scheduler.
func NewSequential[T any]() *Sequential[T] {
	return &Sequential[T]{}
}

// WithMetrics returns a copy of this scheduler which records its progress in
// a given set of metrics.
func (p *Sequential[T]) WithMetrics(m *Metrics) *Sequential[T] {
	return &Sequential[T]{m}
}

// Execute every remaining operation of a schedule.
func (p *Sequential[T]) Execute(s *schedule.Schedule[T]) error {
	_, err := p.ExecuteSteps(s, All)
	//
	return err
}

// ExecuteSteps executes at most k of the remaining operations of a schedule,
// returning whether the schedule is now complete.
func (p *Sequential[T]) ExecuteSteps(s *schedule.Schedule[T], k uint) (bool, error) {
	var (
		f     = newFrontier(s)
		steps uint
	)
	//
	for steps < k {
		n, ok := f.next()
		if !ok {
			break
		}
		//
		observe(p.metrics, s, s.Operation(n))
		//
		if _, err := s.UpdateAfterExecution(n); err != nil {
			return false, err
		}
		//
		f.complete(n)
		steps++
	}
	//
	s.Logger().Debugf("executed %d operation(s)", steps)
	//
	return s.IsComplete(), nil
}

// NbOperations estimates the number of elementary operations performed by the
// next k steps of a schedule.
func (p *Sequential[T]) NbOperations(s *schedule.Schedule[T], k uint) float64 {
	return nbOperations(s, k, 1)
}

// MemoryUsage estimates the peak and final memory (in bytes) held by tables
// produced during the next k steps of a schedule.
func (p *Sequential[T]) MemoryUsage(s *schedule.Schedule[T], k uint) (uint64, uint64, error) {
	return memoryUsage(s, k, 1)
}
