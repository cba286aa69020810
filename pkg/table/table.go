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
package table

import (
	"fmt"
	"math"
	"strings"

	"github.com/consensys/go-pgm/pkg/variable"
)

// Kind identifies the dense array representation.  Kinds are used to select
// specialised algorithms for a given pair of operand representations.
const Kind = "array"

// Table is a function from the joint configurations of an ordered sequence of
// discrete variables to values, stored densely.  For variables with domain
// sizes d₀,d₁,…,dₙ₋₁ the configuration (i₀,…,iₙ₋₁) lives at offset
// i₀ + d₀·(i₁ + d₁·(i₂ + …)).  That is, the first variable varies fastest.  A
// table without variables holds exactly one value.
//
// Tables are never shared between independent owners.  Copies are deep.
type Table[T any] struct {
	vars variable.Sequence
	data []T
}

// New constructs a table over a given sequence of variables, with every cell
// holding the given fill value.
func New[T any](vars variable.Sequence, fill T) (*Table[T], error) {
	n, err := allocSize(vars)
	if err != nil {
		return nil, err
	}
	//
	data := make([]T, n)
	//
	for i := range data {
		data[i] = fill
	}
	//
	return &Table[T]{vars.Clone(), data}, nil
}

// FromData constructs a table over a given sequence of variables from data
// given in mixed-radix order (first variable fastest).  The data slice is
// copied.
func FromData[T any](vars variable.Sequence, data []T) (*Table[T], error) {
	n, err := allocSize(vars)
	if err != nil {
		return nil, err
	} else if uint64(len(data)) != n {
		return nil, fmt.Errorf("table over %s expects %d values, got %d: %w", vars.String(), n, len(data),
			ErrInvalidArgument)
	}
	//
	ndata := make([]T, n)
	copy(ndata, data)
	//
	return &Table[T]{vars.Clone(), ndata}, nil
}

// Scalar constructs a table without variables holding a single value.
func Scalar[T any](value T) *Table[T] {
	return &Table[T]{variable.Sequence{}, []T{value}}
}

// MustFromData is like FromData, except that it panics on error.
func MustFromData[T any](vars variable.Sequence, data []T) *Table[T] {
	t, err := FromData(vars, data)
	if err != nil {
		panic(err)
	}

	return t
}

// Kind returns the representation kind of this table.
func (p *Table[T]) Kind() string {
	return Kind
}

// Variables returns (a copy of) the variables of this table in order.
func (p *Table[T]) Variables() variable.Sequence {
	return p.vars.Clone()
}

// Vars returns the variables of this table in order.  The result must not be
// modified.
func (p *Table[T]) Vars() []variable.Variable {
	return p.vars.Vars()
}

// Dimension returns the number of variables of this table.
func (p *Table[T]) Dimension() uint {
	return p.vars.Len()
}

// Contains checks whether this table is defined over a given variable.
func (p *Table[T]) Contains(v variable.Variable) bool {
	return p.vars.Contains(v)
}

// Len returns the number of cells in this table.
func (p *Table[T]) Len() uint64 {
	return uint64(len(p.data))
}

// Data returns the underlying cells in mixed-radix order.  Modifying the
// result modifies the table.
func (p *Table[T]) Data() []T {
	return p.data
}

// At returns the value at a given flat offset.
func (p *Table[T]) At(offset uint64) T {
	return p.data[offset]
}

// SetAt assigns the value at a given flat offset.
func (p *Table[T]) SetAt(offset uint64, value T) {
	p.data[offset] = value
}

// Offset computes the flat offset of the configuration given by an
// instantiation.  Variables of the instantiation which are not in this table
// are ignored, but every variable of this table must be assigned.
func (p *Table[T]) Offset(inst *Instantiation) (uint64, error) {
	var (
		offset uint64
		stride = uint64(1)
	)
	//
	for _, v := range p.vars.Vars() {
		val, err := inst.Val(v)
		if err != nil {
			return 0, err
		}
		//
		offset += stride * uint64(val)
		stride *= uint64(v.DomainSize())
	}
	//
	return offset, nil
}

// Get reads the value of the configuration given by an instantiation.
func (p *Table[T]) Get(inst *Instantiation) (T, error) {
	offset, err := p.Offset(inst)
	if err != nil {
		var empty T
		return empty, err
	}
	//
	return p.data[offset], nil
}

// Set writes the value of the configuration given by an instantiation.
func (p *Table[T]) Set(inst *Instantiation, value T) error {
	offset, err := p.Offset(inst)
	if err != nil {
		return err
	}
	//
	p.data[offset] = value
	//
	return nil
}

// Fill assigns every cell of this table the given value.
func (p *Table[T]) Fill(value T) {
	for i := range p.data {
		p.data[i] = value
	}
}

// Instantiation returns a new instantiation over the variables of this table,
// positioned at the first configuration.
func (p *Table[T]) Instantiation() *Instantiation {
	return NewInstantiationOver(p.vars)
}

// Add appends a new variable to this table.  Existing values are broadcast
// across the new dimension: old offset i is copied to i + k·n for every value
// k of the new variable, where n is the old number of cells.
func (p *Table[T]) Add(v variable.Variable) error {
	if p.vars.Contains(v) {
		return fmt.Errorf("%s: %w", v.Name(), ErrDuplicate)
	} else if v.DomainSize() == 0 {
		return fmt.Errorf("%s: %w", v.Name(), variable.ErrInvalidDomain)
	}
	//
	n := uint64(len(p.data))
	//
	size, err := variable.MulSizes(n, uint64(v.DomainSize()))
	if err != nil || size > math.MaxInt {
		return fmt.Errorf("adding %s to table over %s: %w", v.Name(), p.vars.String(), ErrOutOfBounds)
	}
	//
	data := make([]T, size)
	//
	for k := uint64(0); k < size; k += n {
		copy(data[k:k+n], p.data)
	}
	// Cannot fail, since we checked above
	_ = p.vars.Insert(v)
	p.data = data
	//
	return nil
}

// Erase removes a variable from this table, keeping only the slice where that
// variable takes its first value.  Aggregating over the variable instead is
// the job of projection.
func (p *Table[T]) Erase(v variable.Variable) error {
	pos, ok := p.vars.Pos(v)
	if !ok {
		return fmt.Errorf("%s: %w", v.Name(), ErrNotFound)
	}
	//
	var (
		vars   = p.vars.Vars()
		stride = uint64(1)
		dom    = uint64(v.DomainSize())
	)
	//
	for i := uint(0); i < pos; i++ {
		stride *= uint64(vars[i].DomainSize())
	}
	//
	var (
		outer = uint64(len(p.data)) / (stride * dom)
		data  = make([]T, stride*outer)
	)
	//
	for hi := uint64(0); hi < outer; hi++ {
		copy(data[hi*stride:(hi+1)*stride], p.data[hi*stride*dom:hi*stride*dom+stride])
	}
	//
	vs := p.vars.Clone()
	_ = vs.Erase(v)
	p.vars = vs
	p.data = data
	//
	return nil
}

// Reorder returns a copy of this table laid out according to a different
// ordering of the same variables.  The value of every joint configuration is
// unchanged.
func (p *Table[T]) Reorder(order variable.Sequence) (*Table[T], error) {
	if !p.vars.SameSet(order) {
		return nil, fmt.Errorf("cannot reorder %s as %s: %w", p.vars.String(), order.String(), ErrInvalidArgument)
	}
	//
	var (
		// strides of each variable of the new order within this table
		strides = p.strides()
		perm    = make([]uint64, order.Len())
		doms    = make([]uint, order.Len())
		data    = make([]T, len(p.data))
	)
	//
	for i, v := range order.Vars() {
		pos, _ := p.vars.Pos(v)
		perm[i] = strides[pos]
		doms[i] = v.DomainSize()
	}
	//
	walk := NewWalker(doms, perm)
	//
	for i := range data {
		data[i] = p.data[walk.Offset()]
		walk.Next()
	}
	//
	return &Table[T]{order.Clone(), data}, nil
}

// Map returns a new table over the same variables whose cells are obtained by
// applying a function to the cells of this table.
func (p *Table[T]) Map(fn func(T) T) *Table[T] {
	data := make([]T, len(p.data))
	//
	for i, v := range p.data {
		data[i] = fn(v)
	}
	//
	return &Table[T]{p.vars.Clone(), data}
}

// Clone returns a deep copy of this table.
func (p *Table[T]) Clone() *Table[T] {
	data := make([]T, len(p.data))
	copy(data, p.data)
	//
	return &Table[T]{p.vars.Clone(), data}
}

// EqualFunc checks whether this table and another are defined over the same
// variables and agree on the value of every joint configuration.  The
// variables need not be in the same order.
func (p *Table[T]) EqualFunc(other *Table[T], eq func(T, T) bool) bool {
	if !p.vars.SameSet(other.vars) {
		return false
	} else if !p.vars.Equals(other.vars) {
		// cannot fail, since same set
		other, _ = other.Reorder(p.vars)
	}
	//
	for i, v := range p.data {
		if !eq(v, other.data[i]) {
			return false
		}
	}
	//
	return true
}

// Strides returns, for each variable of this table, the distance in the flat
// data between two configurations differing by one in that variable only.
func (p *Table[T]) strides() []uint64 {
	var (
		vars    = p.vars.Vars()
		strides = make([]uint64, len(vars))
		stride  = uint64(1)
	)
	//
	for i, v := range vars {
		strides[i] = stride
		stride *= uint64(v.DomainSize())
	}
	//
	return strides
}

// StrideOf returns the stride of a given variable in this table, or zero if the
// table is not defined over the variable.
func (p *Table[T]) StrideOf(v variable.Variable) uint64 {
	if pos, ok := p.vars.Pos(v); ok {
		return p.strides()[pos]
	}
	//
	return 0
}

func (p *Table[T]) String() string {
	var builder strings.Builder
	//
	builder.WriteString(p.vars.String())
	builder.WriteString("[")
	//
	for i, v := range p.data {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(fmt.Sprintf("%v", v))
	}
	//
	builder.WriteString("]")
	//
	return builder.String()
}

// Equal checks whether two tables of comparable values agree on every joint
// configuration, irrespective of variable order.
func Equal[T comparable](lhs, rhs *Table[T]) bool {
	return lhs.EqualFunc(rhs, func(a, b T) bool { return a == b })
}

func allocSize(vars variable.Sequence) (uint64, error) {
	n, err := vars.DomainSize()
	if err != nil {
		return 0, err
	} else if n > math.MaxInt {
		return 0, fmt.Errorf("table over %s: %w", vars.String(), ErrOutOfBounds)
	}
	//
	return n, nil
}
