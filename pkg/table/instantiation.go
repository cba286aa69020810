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
	"strings"

	"github.com/consensys/go-pgm/pkg/variable"
)

// Instantiation assigns a value to each of a sequence of variables, and acts
// as an odometer over their joint configurations.  The first variable varies
// fastest.  Once the odometer has moved past the last configuration, End()
// holds and further increments have no effect until the instantiation is
// reset.
type Instantiation struct {
	vars     variable.Sequence
	vals     []uint
	overflow bool
}

// NewInstantiation constructs an instantiation over the given variables, with
// every variable set to its first value.
func NewInstantiation(vars ...variable.Variable) (*Instantiation, error) {
	seq, err := variable.NewSequence(vars...)
	if err != nil {
		return nil, err
	}
	//
	return &Instantiation{seq, make([]uint, len(vars)), false}, nil
}

// NewInstantiationOver constructs an instantiation over a given sequence of
// variables, with every variable set to its first value.
func NewInstantiationOver(seq variable.Sequence) *Instantiation {
	return &Instantiation{seq.Clone(), make([]uint, seq.Len()), false}
}

// Variables returns the variables of this instantiation.
func (p *Instantiation) Variables() variable.Sequence {
	return p.vars.Clone()
}

// Len returns the number of variables in this instantiation.
func (p *Instantiation) Len() uint {
	return p.vars.Len()
}

// Contains checks whether a given variable is assigned by this instantiation.
func (p *Instantiation) Contains(v variable.Variable) bool {
	return p.vars.Contains(v)
}

// Add a new variable to this instantiation, initially set to its first value.
func (p *Instantiation) Add(v variable.Variable) error {
	if err := p.vars.Insert(v); err != nil {
		return err
	}
	//
	p.vals = append(p.vals, 0)
	//
	return nil
}

// Erase removes a variable from this instantiation.
func (p *Instantiation) Erase(v variable.Variable) error {
	pos, ok := p.vars.Pos(v)
	if !ok {
		return fmt.Errorf("%s: %w", v.Name(), ErrNotFound)
	}
	//
	if err := p.vars.Erase(v); err != nil {
		return err
	}
	//
	p.vals = append(p.vals[:pos], p.vals[pos+1:]...)
	//
	return nil
}

// Val returns the value currently assigned to a given variable.
func (p *Instantiation) Val(v variable.Variable) (uint, error) {
	pos, ok := p.vars.Pos(v)
	if !ok {
		return 0, fmt.Errorf("%s: %w", v.Name(), ErrNotFound)
	}
	//
	return p.vals[pos], nil
}

// ValAt returns the value assigned to the ith variable.
func (p *Instantiation) ValAt(i uint) uint {
	return p.vals[i]
}

// Vals returns a copy of the current values, in variable order.
func (p *Instantiation) Vals() []uint {
	vals := make([]uint, len(p.vals))
	copy(vals, p.vals)
	//
	return vals
}

// Chg assigns a new value to a given variable.
func (p *Instantiation) Chg(v variable.Variable, val uint) error {
	pos, ok := p.vars.Pos(v)
	//
	switch {
	case !ok:
		return fmt.Errorf("%s: %w", v.Name(), ErrNotFound)
	case val >= v.DomainSize():
		return fmt.Errorf("value %d for %s: %w", val, v.Name(), ErrInvalidArgument)
	}
	//
	p.vals[pos] = val
	p.overflow = false
	//
	return nil
}

// SetVals copies the values of any variables shared with another
// instantiation into this one.  Variables not in the other instantiation are
// left unchanged.
func (p *Instantiation) SetVals(other *Instantiation) {
	for i, v := range p.vars.Vars() {
		if pos, ok := other.vars.Pos(v); ok {
			p.vals[i] = other.vals[pos]
		}
	}
	//
	p.overflow = false
}

// End checks whether the odometer has moved beyond the last configuration.
func (p *Instantiation) End() bool {
	return p.overflow
}

// SetFirst resets every variable to its first value.
func (p *Instantiation) SetFirst() {
	clear(p.vals)
	p.overflow = false
}

// Inc moves the odometer to the next configuration.  The first variable is
// incremented, carrying into the next variable on overflow, and so on.
func (p *Instantiation) Inc() {
	if p.overflow {
		return
	}
	//
	vars := p.vars.Vars()
	//
	for i := range p.vals {
		p.vals[i]++
		//
		if p.vals[i] < vars[i].DomainSize() {
			return
		}
		//
		p.vals[i] = 0
	}
	// Wrapped around (including the case of no variables)
	p.overflow = true
}

// SetFirstVar resets only the given variable to its first value.
func (p *Instantiation) SetFirstVar(v variable.Variable) {
	p.vals[p.mustPos(v)] = 0
	p.overflow = false
}

// IncVar increments only the given variable, leaving all others fixed.  When
// the variable wraps around, End() holds.
func (p *Instantiation) IncVar(v variable.Variable) {
	if p.overflow {
		return
	}
	//
	pos := p.mustPos(v)
	p.vals[pos]++
	//
	if p.vals[pos] >= v.DomainSize() {
		p.vals[pos] = 0
		p.overflow = true
	}
}

// SetFirstNotVar resets every variable except the given one.
func (p *Instantiation) SetFirstNotVar(v variable.Variable) {
	pos := p.mustPos(v)
	//
	for i := range p.vals {
		if uint(i) != pos {
			p.vals[i] = 0
		}
	}
	//
	p.overflow = false
}

// IncNotVar moves the odometer over all variables except the given one, which
// is held fixed.
func (p *Instantiation) IncNotVar(v variable.Variable) {
	if p.overflow {
		return
	}
	//
	var (
		pos  = p.mustPos(v)
		vars = p.vars.Vars()
	)
	//
	for i := range p.vals {
		if uint(i) == pos {
			continue
		}
		//
		p.vals[i]++
		//
		if p.vals[i] < vars[i].DomainSize() {
			return
		}
		//
		p.vals[i] = 0
	}
	//
	p.overflow = true
}

// SetFirstIn resets only those variables in the given sequence.
func (p *Instantiation) SetFirstIn(seq variable.Sequence) {
	for i, v := range p.vars.Vars() {
		if seq.Contains(v) {
			p.vals[i] = 0
		}
	}
	//
	p.overflow = false
}

// IncIn moves the odometer only over those variables in the given sequence,
// in the order they appear in this instantiation.
func (p *Instantiation) IncIn(seq variable.Sequence) {
	if p.overflow {
		return
	}
	//
	for i, v := range p.vars.Vars() {
		if !seq.Contains(v) {
			continue
		}
		//
		p.vals[i]++
		//
		if p.vals[i] < v.DomainSize() {
			return
		}
		//
		p.vals[i] = 0
	}
	//
	p.overflow = true
}

// Clone returns an independent copy of this instantiation.
func (p *Instantiation) Clone() *Instantiation {
	return &Instantiation{p.vars.Clone(), p.Vals(), p.overflow}
}

func (p *Instantiation) String() string {
	var builder strings.Builder
	//
	builder.WriteString("<")
	//
	for i, v := range p.vars.Vars() {
		if i != 0 {
			builder.WriteString("|")
		}
		//
		builder.WriteString(fmt.Sprintf("%s:%s", v.Name(), v.Label(p.vals[i])))
	}
	//
	builder.WriteString(">")
	//
	return builder.String()
}

func (p *Instantiation) mustPos(v variable.Variable) uint {
	pos, ok := p.vars.Pos(v)
	if !ok {
		panic(fmt.Sprintf("variable %s not in instantiation", v.Name()))
	}

	return pos
}
