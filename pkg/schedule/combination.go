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
)

var _ Operation[float64] = &Combination[float64]{}

// Combination is a deferred combination of two tables.
type Combination[T any] struct {
	op       algebra.Operator[T]
	reg      *algebra.Registry[T]
	lhs      *MultiDim[T]
	rhs      *MultiDim[T]
	result   *MultiDim[T]
	executed bool
}

// NewCombination constructs a deferred combination of two tables using the
// default registry for T.  This fails if the combined table would be too
// large to represent.
func NewCombination[T any](op algebra.Operator[T], lhs *MultiDim[T], rhs *MultiDim[T]) (*Combination[T], error) {
	return NewCombinationWith(algebra.Default[T](), op, lhs, rhs)
}

// NewCombinationWith constructs a deferred combination of two tables using the
// implementations of a given registry.
func NewCombinationWith[T any](reg *algebra.Registry[T], op algebra.Operator[T], lhs *MultiDim[T],
	rhs *MultiDim[T]) (*Combination[T], error) {
	//
	result, err := newAbstract[T](lhs.vars.Union(rhs.vars))
	if err != nil {
		return nil, fmt.Errorf("combining %s and %s: %w", lhs.String(), rhs.String(), err)
	}
	//
	return &Combination[T]{op, reg, lhs, rhs, result, false}, nil
}

// Operator returns the operator used by this combination.
func (p *Combination[T]) Operator() algebra.Operator[T] {
	return p.op
}

// Result returns the table produced by this combination.
func (p *Combination[T]) Result() *MultiDim[T] {
	return p.result
}

// Kind implementation for Operation interface.
func (p *Combination[T]) Kind() Kind {
	return COMBINE
}

// Args implementation for Operation interface.
func (p *Combination[T]) Args() []*MultiDim[T] {
	return []*MultiDim[T]{p.lhs, p.rhs}
}

// Results implementation for Operation interface.
func (p *Combination[T]) Results() []*MultiDim[T] {
	return []*MultiDim[T]{p.result}
}

// Releases implementation for Operation interface.
func (p *Combination[T]) Releases() []*MultiDim[T] {
	return nil
}

// Execute implementation for Operation interface.
func (p *Combination[T]) Execute() {
	if p.executed {
		return
	}
	//
	requireMaterialised[T](p, p.lhs, p.rhs)
	//
	t, err := algebra.CombineWith(p.reg, p.lhs.Table(), p.rhs.Table(), p.op)
	if err != nil {
		// sizes were checked on construction
		panic(err)
	}
	//
	p.result.materialise(t)
	p.executed = true
}

// Undo implementation for Operation interface.
func (p *Combination[T]) Undo() error {
	p.result.release()
	p.executed = false
	//
	return nil
}

// IsExecuted implementation for Operation interface.
func (p *Combination[T]) IsExecuted() bool {
	return p.executed
}

// NbOperations implementation for Operation interface.
func (p *Combination[T]) NbOperations() float64 {
	return float64(p.result.size)
}

// MemoryUsage implementation for Operation interface.
func (p *Combination[T]) MemoryUsage() (uint64, uint64, error) {
	n, err := p.result.Memory()
	return n, 0, err
}

// IsSameOperator implementation for Operation interface.
func (p *Combination[T]) IsSameOperator(other Operation[T]) bool {
	o, ok := other.(*Combination[T])
	return ok && o.op.Name() == p.op.Name()
}

// HasSameArguments implementation for Operation interface.  Since combination
// is commutative, the order of arguments does not matter.
func (p *Combination[T]) HasSameArguments(other Operation[T]) bool {
	o, ok := other.(*Combination[T])
	//
	return ok && (sameArgs(p.Args(), o.Args()) || sameArgs(p.Args(), []*MultiDim[T]{o.rhs, o.lhs}))
}

// HasSimilarArguments implementation for Operation interface.
func (p *Combination[T]) HasSimilarArguments(other Operation[T]) bool {
	o, ok := other.(*Combination[T])
	//
	return ok && (similarArgs(p.Args(), o.Args()) || similarArgs(p.Args(), []*MultiDim[T]{o.rhs, o.lhs}))
}

// Key implementation for Operation interface.
func (p *Combination[T]) Key() Key {
	return newKey(COMBINE, p.op.Name(), true, p.result.vars, p.lhs.id, p.rhs.id)
}

func (p *Combination[T]) String() string {
	return fmt.Sprintf("%s = combine[%s](%s, %s)", p.result.String(), p.op.Name(), p.lhs.String(), p.rhs.String())
}
