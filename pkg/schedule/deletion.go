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

	"github.com/consensys/go-pgm/pkg/variable"
)

var _ Operation[float64] = &Deletion[float64]{}

// Deletion is a deferred release of a table, used to reclaim the memory of
// intermediate results once all their readers have executed.  Deleting a
// borrowed table only drops the schedule's reference to it.
type Deletion[T any] struct {
	arg      *MultiDim[T]
	executed bool
}

// NewDeletion constructs a deferred release of a given table.
func NewDeletion[T any](arg *MultiDim[T]) *Deletion[T] {
	return &Deletion[T]{arg, false}
}

// Kind implementation for Operation interface.
func (p *Deletion[T]) Kind() Kind {
	return DELETE
}

// Args implementation for Operation interface.
func (p *Deletion[T]) Args() []*MultiDim[T] {
	return []*MultiDim[T]{p.arg}
}

// Results implementation for Operation interface.
func (p *Deletion[T]) Results() []*MultiDim[T] {
	return nil
}

// Releases implementation for Operation interface.
func (p *Deletion[T]) Releases() []*MultiDim[T] {
	return []*MultiDim[T]{p.arg}
}

// Execute implementation for Operation interface.
func (p *Deletion[T]) Execute() {
	if p.executed {
		return
	}
	//
	requireMaterialised[T](p, p.arg)
	//
	p.arg.release()
	p.executed = true
}

// Undo implementation for Operation interface.  A released table cannot be
// recovered, hence this always fails once executed.
func (p *Deletion[T]) Undo() error {
	if p.executed {
		return fmt.Errorf("%s: %w", p.String(), ErrNotUndoable)
	}
	//
	return nil
}

// IsExecuted implementation for Operation interface.
func (p *Deletion[T]) IsExecuted() bool {
	return p.executed
}

// NbOperations implementation for Operation interface.
func (p *Deletion[T]) NbOperations() float64 {
	return 0
}

// MemoryUsage implementation for Operation interface.
func (p *Deletion[T]) MemoryUsage() (uint64, uint64, error) {
	if p.arg.ownership == Borrowed {
		return 0, 0, nil
	}
	//
	n, err := p.arg.Memory()
	//
	return 0, n, err
}

// IsSameOperator implementation for Operation interface.
func (p *Deletion[T]) IsSameOperator(other Operation[T]) bool {
	_, ok := other.(*Deletion[T])
	return ok
}

// HasSameArguments implementation for Operation interface.
func (p *Deletion[T]) HasSameArguments(other Operation[T]) bool {
	o, ok := other.(*Deletion[T])
	return ok && o.arg == p.arg
}

// HasSimilarArguments implementation for Operation interface.
func (p *Deletion[T]) HasSimilarArguments(other Operation[T]) bool {
	o, ok := other.(*Deletion[T])
	return ok && o.arg.vars.Equals(p.arg.vars)
}

// Key implementation for Operation interface.
func (p *Deletion[T]) Key() Key {
	return newKey(DELETE, "", false, variable.Sequence{}, p.arg.id)
}

func (p *Deletion[T]) String() string {
	return fmt.Sprintf("delete(%s)", p.arg.String())
}
