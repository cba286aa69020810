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
	"github.com/consensys/go-pgm/pkg/table"
	"github.com/consensys/go-pgm/pkg/variable"
)

var _ Operation[float64] = &Projection[float64]{}

// Projection is a deferred projection of a set of variables out of a table.
type Projection[T any] struct {
	op       algebra.Operator[T]
	reg      *algebra.Registry[T]
	arg      *MultiDim[T]
	del      variable.Sequence
	result   *MultiDim[T]
	executed bool
}

// NewProjection constructs a deferred projection using the default registry
// for T.  Every deleted variable must belong to the table being projected.
func NewProjection[T any](op algebra.Operator[T], arg *MultiDim[T], del variable.Sequence) (*Projection[T], error) {
	return NewProjectionWith(algebra.Default[T](), op, arg, del)
}

// NewProjectionWith constructs a deferred projection using the
// implementations of a given registry.
func NewProjectionWith[T any](reg *algebra.Registry[T], op algebra.Operator[T], arg *MultiDim[T],
	del variable.Sequence) (*Projection[T], error) {
	//
	for _, v := range del.Vars() {
		if !arg.vars.Contains(v) {
			return nil, fmt.Errorf("cannot project %s out of %s: %w", v.Name(), arg.String(),
				table.ErrInvalidArgument)
		}
	}
	// Never larger than the argument
	result, err := newAbstract[T](arg.vars.Difference(del))
	if err != nil {
		return nil, err
	}
	//
	return &Projection[T]{op, reg, arg, del.Clone(), result, false}, nil
}

// Operator returns the operator used by this projection.
func (p *Projection[T]) Operator() algebra.Operator[T] {
	return p.op
}

// Deleted returns the variables projected out.
func (p *Projection[T]) Deleted() variable.Sequence {
	return p.del.Clone()
}

// Result returns the table produced by this projection.
func (p *Projection[T]) Result() *MultiDim[T] {
	return p.result
}

// Kind implementation for Operation interface.
func (p *Projection[T]) Kind() Kind {
	return PROJECT
}

// Args implementation for Operation interface.
func (p *Projection[T]) Args() []*MultiDim[T] {
	return []*MultiDim[T]{p.arg}
}

// Results implementation for Operation interface.
func (p *Projection[T]) Results() []*MultiDim[T] {
	return []*MultiDim[T]{p.result}
}

// Releases implementation for Operation interface.
func (p *Projection[T]) Releases() []*MultiDim[T] {
	return nil
}

// Execute implementation for Operation interface.
func (p *Projection[T]) Execute() {
	if p.executed {
		return
	}
	//
	requireMaterialised[T](p, p.arg)
	//
	t, err := algebra.ProjectWith(p.reg, p.arg.Table(), p.del, p.op)
	if err != nil {
		// deleted variables were checked on construction
		panic(err)
	}
	//
	p.result.materialise(t)
	p.executed = true
}

// Undo implementation for Operation interface.
func (p *Projection[T]) Undo() error {
	p.result.release()
	p.executed = false
	//
	return nil
}

// IsExecuted implementation for Operation interface.
func (p *Projection[T]) IsExecuted() bool {
	return p.executed
}

// NbOperations implementation for Operation interface.
func (p *Projection[T]) NbOperations() float64 {
	return float64(p.arg.size)
}

// MemoryUsage implementation for Operation interface.
func (p *Projection[T]) MemoryUsage() (uint64, uint64, error) {
	n, err := p.result.Memory()
	return n, 0, err
}

// IsSameOperator implementation for Operation interface.
func (p *Projection[T]) IsSameOperator(other Operation[T]) bool {
	o, ok := other.(*Projection[T])
	return ok && o.op.Name() == p.op.Name()
}

// HasSameArguments implementation for Operation interface.  Projections must
// also delete the same variables.
func (p *Projection[T]) HasSameArguments(other Operation[T]) bool {
	o, ok := other.(*Projection[T])
	return ok && o.arg == p.arg && o.del.SameSet(p.del)
}

// HasSimilarArguments implementation for Operation interface.
func (p *Projection[T]) HasSimilarArguments(other Operation[T]) bool {
	o, ok := other.(*Projection[T])
	return ok && o.arg.vars.Equals(p.arg.vars) && o.del.SameSet(p.del)
}

// Key implementation for Operation interface.
func (p *Projection[T]) Key() Key {
	return newKey(PROJECT, p.op.Name(), false, p.result.vars, p.arg.id)
}

func (p *Projection[T]) String() string {
	return fmt.Sprintf("%s = project[%s](%s, %s)", p.result.String(), p.op.Name(), p.arg.String(), p.del.String())
}
