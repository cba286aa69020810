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

// TableID identifies a table handle within a schedule.
type TableID uint

// Ownership determines whether a handle is responsible for the table it
// refers to.
type Ownership uint8

const (
	// Owned tables are released when the handle is made abstract.
	Owned Ownership = iota
	// Borrowed tables belong to someone else.  Making the handle abstract
	// merely drops the reference.
	Borrowed
)

func (p Ownership) String() string {
	if p == Owned {
		return "owned"
	}
	//
	return "borrowed"
}

// MultiDim is a handle on a table within a schedule.  A handle always knows
// the variables of its table, but the table itself is only present once it
// has been materialised (i.e. it is not abstract).
type MultiDim[T any] struct {
	id        TableID
	vars      variable.Sequence
	size      uint64
	table     *table.Table[T]
	ownership Ownership
}

func newAbstract[T any](vars variable.Sequence) (*MultiDim[T], error) {
	size, err := vars.DomainSize()
	if err != nil {
		return nil, err
	}
	//
	return &MultiDim[T]{vars: vars, size: size, ownership: Owned}, nil
}

// ID returns the identifier of this handle within its schedule.
func (p *MultiDim[T]) ID() TableID {
	return p.id
}

// Variables returns the variables of the table this handle refers to.
func (p *MultiDim[T]) Variables() variable.Sequence {
	return p.vars.Clone()
}

// DomainSize returns the number of cells in the table this handle refers to.
func (p *MultiDim[T]) DomainSize() uint64 {
	return p.size
}

// Memory returns the number of bytes occupied by the cells of this table.
func (p *MultiDim[T]) Memory() (uint64, error) {
	return variable.MulSizes(p.size, algebra.ElemSize[T]())
}

// IsAbstract checks whether the table of this handle has not (yet) been
// materialised.
func (p *MultiDim[T]) IsAbstract() bool {
	return p.table == nil
}

// Ownership returns whether this handle owns its table or not.
func (p *MultiDim[T]) Ownership() Ownership {
	return p.ownership
}

// Table returns the table of this handle, which must not be abstract.
func (p *MultiDim[T]) Table() *table.Table[T] {
	if p.table == nil {
		panic(fmt.Sprintf("table #%d is abstract", p.id))
	}
	//
	return p.table
}

// Export transfers the table out of this handle, leaving it abstract.
func (p *MultiDim[T]) Export() (*table.Table[T], error) {
	if p.table == nil {
		return nil, fmt.Errorf("exporting #%d: %w", p.id, ErrAbstract)
	}
	//
	t := p.table
	p.table = nil
	//
	return t, nil
}

// Materialise this handle with a newly computed table, which it then owns.
func (p *MultiDim[T]) materialise(t *table.Table[T]) {
	if !t.Variables().Equals(p.vars) {
		panic(fmt.Sprintf("table #%d expects %s, got %s", p.id, p.vars.String(), t.Variables().String()))
	}
	//
	p.table = t
	p.ownership = Owned
}

// Release the table of this handle, making it abstract.
func (p *MultiDim[T]) release() {
	p.table = nil
}

func (p *MultiDim[T]) String() string {
	if p.table == nil {
		return fmt.Sprintf("#%d%s", p.id, p.vars.String())
	}
	//
	return fmt.Sprintf("#%d%s*", p.id, p.vars.String())
}
