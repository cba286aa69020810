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
	"errors"
	"fmt"

	"github.com/consensys/go-pgm/pkg/variable"
)

var (
	// ErrAbstract is returned when a materialised table is required, but the
	// handle is abstract.
	ErrAbstract = errors.New("table is abstract")
	// ErrCycle is returned when an ordering constraint would make a schedule
	// cyclic.
	ErrCycle = errors.New("cyclic dependency")
	// ErrDeleted is returned when an operation reads a table which another
	// operation of the schedule deletes.
	ErrDeleted = errors.New("table is deleted by schedule")
	// ErrUnknown is returned when a table or operation does not belong to a
	// schedule.
	ErrUnknown = errors.New("not in schedule")
	// ErrNotUndoable is returned when attempting to undo an operation which
	// cannot be undone.
	ErrNotUndoable = errors.New("operation cannot be undone")
	// ErrExecuted is returned when constraining an operation which has
	// already been executed to follow one which has not.
	ErrExecuted = errors.New("operation already executed")
)

// Kind identifies the different kinds of operation.
type Kind uint8

const (
	// COMBINE combines two tables.
	COMBINE Kind = iota
	// PROJECT projects variables out of a table.
	PROJECT
	// DELETE releases a table.
	DELETE
)

func (p Kind) String() string {
	switch p {
	case COMBINE:
		return "combine"
	case PROJECT:
		return "project"
	case DELETE:
		return "delete"
	default:
		return fmt.Sprintf("kind(%d)", uint8(p))
	}
}

// Operation is a deferred computation over the tables of a schedule.  An
// operation is abstract until executed, at which point its results are
// materialised.  Operations are pure, so undoing and re-executing an
// operation recomputes exactly the same results.
type Operation[T any] interface {
	fmt.Stringer
	// Kind of this operation.
	Kind() Kind
	// Args returns the tables read by this operation.
	Args() []*MultiDim[T]
	// Results returns the tables produced by this operation.
	Results() []*MultiDim[T]
	// Releases returns the tables released by this operation.
	Releases() []*MultiDim[T]
	// Execute this operation, materialising its results.  All arguments must
	// already be materialised.  Executing an operation twice has no effect.
	Execute()
	// Undo this operation, making its results abstract again.
	Undo() error
	// IsExecuted checks whether this operation has been executed.
	IsExecuted() bool
	// NbOperations estimates the number of elementary operations needed to
	// execute this operation.
	NbOperations() float64
	// MemoryUsage returns the number of bytes allocated by executing this
	// operation, and the number of bytes it releases.
	MemoryUsage() (uint64, uint64, error)
	// IsSameOperator checks whether another operation is of the same kind
	// and uses the same function.
	IsSameOperator(Operation[T]) bool
	// HasSameArguments checks whether another operation reads exactly the same
	// tables as this one.
	HasSameArguments(Operation[T]) bool
	// HasSimilarArguments checks whether another operation reads tables over
	// the same variables as this one.
	HasSimilarArguments(Operation[T]) bool
	// Key returns a hashable signature of this operation, such that two
	// operations with equal keys compute the same results.
	Key() Key
}

func requireMaterialised[T any](op Operation[T], args ...*MultiDim[T]) {
	for _, arg := range args {
		if arg.IsAbstract() {
			panic(fmt.Sprintf("executing %s with abstract argument %s", op.String(), arg.String()))
		}
	}
}

func sameArgs[T any](lhs []*MultiDim[T], rhs []*MultiDim[T]) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if lhs[i] != rhs[i] {
			return false
		}
	}
	//
	return true
}

func similarArgs[T any](lhs []*MultiDim[T], rhs []*MultiDim[T]) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if !lhs[i].vars.Equals(rhs[i].vars) {
			return false
		}
	}
	//
	return true
}

func memoryOf[T any](handles ...*MultiDim[T]) (uint64, error) {
	var total uint64
	//
	for _, h := range handles {
		n, err := h.Memory()
		if err != nil {
			return 0, err
		}
		//
		if total, err = variable.AddSizes(total, n); err != nil {
			return 0, err
		}
	}
	//
	return total, nil
}
