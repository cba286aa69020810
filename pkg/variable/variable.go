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
	"strconv"
)

// ErrInvalidArgument signals a malformed request, such as a variable with an
// empty domain or data of the wrong length.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInvalidDomain is returned for a variable whose domain is empty.  It is
// a kind of ErrInvalidArgument.
var ErrInvalidDomain = fmt.Errorf("empty domain: %w", ErrInvalidArgument)

// Variable represents a discrete random variable.  The only thing tables need
// from a variable is its domain size, which must remain fixed for as long as
// any table refers to the variable.  Variables are compared by identity, hence
// implementations should be pointer types.
type Variable interface {
	fmt.Stringer
	// Name returns a human-readable name for this variable.  Names are not
	// required to be unique.
	Name() string
	// DomainSize returns the number of values this variable can take.  This
	// is always at least one.
	DomainSize() uint
	// Label returns a human-readable label for the ith value of this
	// variable.
	Label(uint) string
}

// Discrete is the standard implementation of a categorical variable.  Its
// values are either given explicit labels, or are simply the integers 0..n-1.
type Discrete struct {
	name   string
	size   uint
	labels []string
}

var _ Variable = &Discrete{}

// NewRange constructs a new variable with the given name, whose values are
// labelled "0", "1", etc.
func NewRange(name string, size uint) (*Discrete, error) {
	if size == 0 {
		return nil, fmt.Errorf("variable %s: %w", name, ErrInvalidDomain)
	}
	//
	return &Discrete{name, size, nil}, nil
}

// NewLabelled constructs a new variable with the given name and value labels.
// Labels must be unique.
func NewLabelled(name string, labels ...string) (*Discrete, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("variable %s: %w", name, ErrInvalidDomain)
	}
	//
	seen := make(map[string]bool, len(labels))
	//
	for _, l := range labels {
		if seen[l] {
			return nil, fmt.Errorf("variable %s: duplicate label %q: %w", name, l, ErrInvalidArgument)
		}
		//
		seen[l] = true
	}
	//
	return &Discrete{name, uint(len(labels)), labels}, nil
}

// MustRange is like NewRange, but panics on error.  This is convenient for
// tests and for statically known variables.
func MustRange(name string, size uint) *Discrete {
	v, err := NewRange(name, size)
	if err != nil {
		panic(err)
	}

	return v
}

// Name implementation for Variable interface.
func (p *Discrete) Name() string {
	return p.name
}

// DomainSize implementation for Variable interface.
func (p *Discrete) DomainSize() uint {
	return p.size
}

// Label implementation for Variable interface.
func (p *Discrete) Label(i uint) string {
	if i >= p.size {
		panic(fmt.Sprintf("value %d out-of-bounds for variable %s", i, p.name))
	} else if p.labels == nil {
		return strconv.FormatUint(uint64(i), 10)
	}
	//
	return p.labels[i]
}

// Index returns the value index for a given label, or false if no such label
// exists.
func (p *Discrete) Index(label string) (uint, bool) {
	for i := range p.size {
		if p.Label(i) == label {
			return i, true
		}
	}
	//
	return 0, false
}

func (p *Discrete) String() string {
	return fmt.Sprintf("%s<%d>", p.name, p.size)
}
