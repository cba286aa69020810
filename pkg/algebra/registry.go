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
package algebra

import (
	"reflect"
	"sync"

	"github.com/consensys/go-pgm/pkg/table"
	"github.com/consensys/go-pgm/pkg/variable"
	log "github.com/sirupsen/logrus"
)

// CombineFunc computes the pointwise combination of two tables over the union
// of their variables.  Implementations can assume the result is small enough
// to allocate.
type CombineFunc[T any] func(lhs *table.Table[T], rhs *table.Table[T], fn func(T, T) T) *table.Table[T]

// ProjectFunc aggregates a table over a set of its variables, using a given
// operator.  Implementations can assume every deleted variable belongs to the
// table.
type ProjectFunc[T any] func(src *table.Table[T], del variable.Sequence, op Operator[T]) *table.Table[T]

type combineKey struct {
	operator string
	lhs      string
	rhs      string
}

type projectKey struct {
	operator string
	kind     string
}

// Registry maps operator names and operand kinds onto specialised
// implementations.  A registry is populated lazily, exactly once, when first
// used.  Lookups which find nothing fall back onto generic implementations
// driven by instantiations, which work for any operator.
type Registry[T any] struct {
	once         sync.Once
	init         func(*Registry[T])
	mux          sync.RWMutex
	combinations map[combineKey]CombineFunc[T]
	projections  map[projectKey]ProjectFunc[T]
}

// NewRegistry constructs a registry whose contents are provided by a given
// initialisation function.  The function is called at most once, on first
// use.
func NewRegistry[T any](init func(*Registry[T])) *Registry[T] {
	return &Registry[T]{
		init:         init,
		combinations: make(map[combineKey]CombineFunc[T]),
		projections:  make(map[projectKey]ProjectFunc[T]),
	}
}

// RegisterCombination associates an implementation with a given operator
// name and pair of operand kinds, replacing any existing one.
func (p *Registry[T]) RegisterCombination(operator string, lhs string, rhs string, fn CombineFunc[T]) {
	p.ensure()
	p.registerCombination(operator, lhs, rhs, fn)
}

// RegisterProjection associates an implementation with a given operator name
// and operand kind, replacing any existing one.
func (p *Registry[T]) RegisterProjection(operator string, kind string, fn ProjectFunc[T]) {
	p.ensure()
	p.registerProjection(operator, kind, fn)
}

// Combination returns the implementation registered for a given operator name
// and operand kinds, or false if there is none.
func (p *Registry[T]) Combination(operator string, lhs string, rhs string) (CombineFunc[T], bool) {
	p.ensure()
	p.mux.RLock()
	defer p.mux.RUnlock()
	//
	fn, ok := p.combinations[combineKey{operator, lhs, rhs}]
	//
	return fn, ok
}

// Projection returns the implementation registered for a given operator name
// and operand kind, or false if there is none.
func (p *Registry[T]) Projection(operator string, kind string) (ProjectFunc[T], bool) {
	p.ensure()
	p.mux.RLock()
	defer p.mux.RUnlock()
	//
	fn, ok := p.projections[projectKey{operator, kind}]
	//
	return fn, ok
}

// CombinationOrDefault returns the implementation registered for a given
// operator name and operand kinds, or the generic implementation otherwise.
func (p *Registry[T]) CombinationOrDefault(operator string, lhs string, rhs string) CombineFunc[T] {
	if fn, ok := p.Combination(operator, lhs, rhs); ok {
		return fn
	}
	//
	return CombineGeneric[T]
}

// ProjectionOrDefault returns the implementation registered for a given
// operator name and operand kind, or the generic implementation otherwise.
func (p *Registry[T]) ProjectionOrDefault(operator string, kind string) ProjectFunc[T] {
	if fn, ok := p.Projection(operator, kind); ok {
		return fn
	}
	//
	return ProjectGeneric[T]
}

func (p *Registry[T]) ensure() {
	p.once.Do(func() {
		if p.init != nil {
			p.init(p)
		}
	})
}

func (p *Registry[T]) registerCombination(operator string, lhs string, rhs string, fn CombineFunc[T]) {
	p.mux.Lock()
	defer p.mux.Unlock()
	//
	p.combinations[combineKey{operator, lhs, rhs}] = fn
}

func (p *Registry[T]) registerProjection(operator string, kind string, fn ProjectFunc[T]) {
	p.mux.Lock()
	defer p.mux.Unlock()
	//
	p.projections[projectKey{operator, kind}] = fn
}

// RegisterDense registers the strided dense-array implementations of the
// standard operators.  This is the initialisation function of the default
// registries.
func RegisterDense[T any](p *Registry[T]) {
	log.Debugf("registering dense table operators for %s", reflect.TypeFor[T]())
	//
	for _, name := range []string{SUM, PRODUCT, MAX, MIN} {
		// Called from within ensure(), hence must not go through it again.
		p.registerCombination(name, table.Kind, table.Kind, CombineDense[T])
		p.registerProjection(name, table.Kind, ProjectDense[T])
	}
}

// Default registries, one per element type.
var defaults sync.Map

// Default returns the default registry for element type T.  This is created on
// first use and initialised with RegisterDense.
func Default[T any]() *Registry[T] {
	key := reflect.TypeFor[T]()
	//
	if r, ok := defaults.Load(key); ok {
		return r.(*Registry[T])
	}
	//
	r, _ := defaults.LoadOrStore(key, NewRegistry(RegisterDense[T]))
	//
	return r.(*Registry[T])
}
