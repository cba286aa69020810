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
package variable

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"
)

// ErrDuplicate is returned when a variable is inserted into a sequence which
// already contains it.
var ErrDuplicate = errors.New("duplicate variable")

// ErrMissing is returned when a variable is expected in a sequence but is not
// there.
var ErrMissing = errors.New("variable not in sequence")

// ErrOverflow is returned when the product of domain sizes exceeds what can be
// represented.
var ErrOverflow = errors.New("domain size out of bounds")

// Sequence is an ordered set of variables.  The insertion order matters, as it
// determines the layout of any table defined over the sequence.  Membership
// tests are constant time.  Sequences behave as values: updating a sequence
// never affects copies of it taken beforehand.
type Sequence struct {
	vars  []Variable
	index map[Variable]uint
}

// NewSequence constructs a sequence from the given variables (in order).
// This fails if the same variable is given twice, or if some variable has an
// empty domain.
func NewSequence(vars ...Variable) (Sequence, error) {
	seq := Sequence{make([]Variable, 0, len(vars)), make(map[Variable]uint, len(vars))}
	//
	for _, v := range vars {
		if err := seq.check(v); err != nil {
			return Sequence{}, err
		}
		//
		seq.push(v)
	}
	//
	return seq, nil
}

// MustSequence is like NewSequence, except that it panics on error.
func MustSequence(vars ...Variable) Sequence {
	seq, err := NewSequence(vars...)
	if err != nil {
		panic(err)
	}

	return seq
}

// Len returns the number of variables in this sequence.
func (p Sequence) Len() uint {
	return uint(len(p.vars))
}

// IsEmpty checks whether this sequence contains any variables.
func (p Sequence) IsEmpty() bool {
	return len(p.vars) == 0
}

// At returns the ith variable of this sequence.
func (p Sequence) At(i uint) Variable {
	return p.vars[i]
}

// Vars returns the variables of this sequence.  The result must not be
// modified.
func (p Sequence) Vars() []Variable {
	return p.vars
}

// Contains checks whether a given variable is in this sequence.
func (p Sequence) Contains(v Variable) bool {
	_, ok := p.index[v]
	return ok
}

// Pos returns the position of a variable in this sequence, or false if it is
// not present.
func (p Sequence) Pos(v Variable) (uint, bool) {
	i, ok := p.index[v]
	return i, ok
}

// Insert appends a variable onto the end of this sequence.  This fails if the
// variable is already present, or if its domain is empty.
func (p *Sequence) Insert(v Variable) error {
	if err := p.check(v); err != nil {
		return err
	}
	// Copies may share state with this sequence
	*p = p.Clone()
	p.push(v)
	//
	return nil
}

// Erase removes a variable from this sequence, shifting any later variables
// down by one.
func (p *Sequence) Erase(v Variable) error {
	pos, ok := p.index[v]
	if !ok {
		return fmt.Errorf("%s: %w", v.Name(), ErrMissing)
	}
	//
	seq := Sequence{make([]Variable, 0, len(p.vars)-1), make(map[Variable]uint, len(p.vars)-1)}
	//
	for i, w := range p.vars {
		if uint(i) != pos {
			seq.push(w)
		}
	}
	//
	*p = seq
	//
	return nil
}

// Check whether a variable can be appended to this sequence.
func (p *Sequence) check(v Variable) error {
	if _, ok := p.index[v]; ok {
		return fmt.Errorf("%s: %w", v.Name(), ErrDuplicate)
	} else if v.DomainSize() == 0 {
		return fmt.Errorf("%s: %w", v.Name(), ErrInvalidDomain)
	}
	//
	return nil
}

// Append a variable known to be absent onto a sequence which shares no state
// with any other.
func (p *Sequence) push(v Variable) {
	if p.index == nil {
		p.index = make(map[Variable]uint)
	}
	//
	p.index[v] = uint(len(p.vars))
	p.vars = append(p.vars, v)
}

// Clone returns a copy of this sequence which shares no state with it.
func (p Sequence) Clone() Sequence {
	var seq Sequence
	//
	if len(p.vars) > 0 {
		seq.vars = make([]Variable, len(p.vars))
		seq.index = make(map[Variable]uint, len(p.vars))
		copy(seq.vars, p.vars)
		//
		for k, v := range p.index {
			seq.index[k] = v
		}
	}
	//
	return seq
}

// Equals checks whether two sequences hold the same variables in the same
// order.
func (p Sequence) Equals(other Sequence) bool {
	if len(p.vars) != len(other.vars) {
		return false
	}
	//
	for i, v := range p.vars {
		if other.vars[i] != v {
			return false
		}
	}
	//
	return true
}

// SameSet checks whether two sequences contain the same variables, regardless
// of order.
func (p Sequence) SameSet(other Sequence) bool {
	if len(p.vars) != len(other.vars) {
		return false
	}
	//
	for _, v := range other.vars {
		if !p.Contains(v) {
			return false
		}
	}
	//
	return true
}

// Union returns a new sequence holding the variables of this sequence (in
// order) followed by those variables of the other sequence not already
// present (in their order).
func (p Sequence) Union(other Sequence) Sequence {
	seq := p.Clone()
	//
	for _, v := range other.vars {
		if !seq.Contains(v) {
			seq.push(v)
		}
	}
	//
	return seq
}

// Difference returns a new sequence holding the variables of this sequence
// which are not in the given set, preserving order.
func (p Sequence) Difference(other Sequence) Sequence {
	var seq Sequence
	//
	for _, v := range p.vars {
		if !other.Contains(v) {
			seq.push(v)
		}
	}
	//
	return seq
}

// Intersects checks whether this sequence shares at least one variable with
// another.
func (p Sequence) Intersects(other Sequence) bool {
	for _, v := range other.vars {
		if p.Contains(v) {
			return true
		}
	}
	//
	return false
}

// DomainSize returns the product of the domain sizes of all variables in this
// sequence.  The empty product is one.  An error is returned if the product
// does not fit in a uint64.
func (p Sequence) DomainSize() (uint64, error) {
	return DomainProduct(p.vars...)
}

// MustDomainSize is like DomainSize, except that it panics on overflow.  This
// is only safe for sequences of tables which have already been allocated.
func (p Sequence) MustDomainSize() uint64 {
	n, err := p.DomainSize()
	if err != nil {
		panic(err)
	}

	return n
}

func (p Sequence) String() string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	//
	for i, v := range p.vars {
		if i != 0 {
			builder.WriteString(",")
		}
		//
		builder.WriteString(v.Name())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}

// DomainProduct computes the product of the domain sizes of a set of variables,
// reporting an error on overflow.
func DomainProduct(vars ...Variable) (uint64, error) {
	size := uint64(1)
	//
	for _, v := range vars {
		hi, lo := bits.Mul64(size, uint64(v.DomainSize()))
		if hi != 0 {
			return 0, fmt.Errorf("product of domains %v: %w", vars, ErrOverflow)
		}
		//
		size = lo
	}
	//
	return size, nil
}

// MulSizes multiplies two sizes, reporting an error on overflow.
func MulSizes(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}

	return lo, nil
}

// AddSizes adds two sizes, reporting an error on overflow.
func AddSizes(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}

	return a + b, nil
}
