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
	"fmt"

	"github.com/consensys/go-pgm/pkg/table"
	"github.com/consensys/go-pgm/pkg/variable"
)

// Project aggregates a table over a set of its variables using the default
// registry for T.  The result is defined over the remaining variables (in
// order), and each of its cells holds the aggregate of all source cells which
// agree with it on those variables.  The source is not modified.
func Project[T any](src *table.Table[T], del variable.Sequence, op Operator[T]) (*table.Table[T], error) {
	return ProjectWith(Default[T](), src, del, op)
}

// ProjectWith aggregates a table over a set of its variables using the
// implementation found in a given registry.
func ProjectWith[T any](reg *Registry[T], src *table.Table[T], del variable.Sequence,
	op Operator[T]) (*table.Table[T], error) {
	//
	for _, v := range del.Vars() {
		if !src.Contains(v) {
			return nil, fmt.Errorf("cannot project %s out of %s: %w", v.Name(), src.Variables().String(),
				table.ErrInvalidArgument)
		}
	}
	// Aggregating over nothing is the identity.
	if del.IsEmpty() {
		return src.Clone(), nil
	}
	//
	fn := reg.ProjectionOrDefault(op.Name(), src.Kind())
	//
	return fn(src, del, op), nil
}

// Aggregate folds every cell of a table using a given operator, starting from
// its neutral element.
func Aggregate[T any](src *table.Table[T], op Operator[T]) T {
	acc := op.Neutral()
	//
	for _, v := range src.Data() {
		acc = op.Apply(acc, v)
	}
	//
	return acc
}

// ProjectDense aggregates a dense table by walking its layout directly.  When
// the source has many variables relative to those being deleted, the source
// is walked in order and each cell folded into its result cell.  Otherwise the
// loops are swapped: each result cell is computed in one go by walking the
// deleted variables.  Both visit the source cells of any given result cell in
// the same order.
func ProjectDense[T any](src *table.Table[T], del variable.Sequence, op Operator[T]) *table.Table[T] {
	var (
		vars   = src.Variables()
		kept   = vars.Difference(del)
		result = allocProjection(kept, op.Neutral())
		out    = result.Data()
		data   = src.Data()
		fn     = op.Func()
	)
	//
	if vars.Len() >= 2*del.Len() {
		// Source order, result read via strides (zero for deleted variables)
		doms, strides := dimsOf(vars, result)
		walk := table.NewWalker(doms, strides)
		//
		for _, v := range data {
			r := walk.Offset()
			out[r] = fn(out[r], v)
			walk.Next()
		}
	} else {
		// Result order, source read via strides
		kdoms, kstrides := dimsOf(kept, src)
		// Deleted variables are taken in source order
		ddoms, dstrides := dimsOf(vars.Difference(kept), src)
		kwalk := table.NewWalker(kdoms, kstrides)
		dwalk := table.NewWalker(ddoms, dstrides)
		//
		for r := range out {
			acc := out[r]
			//
			for dwalk.Reset(kwalk.Offset()); !dwalk.Done(); dwalk.Next() {
				acc = fn(acc, data[dwalk.Offset()])
			}
			//
			out[r] = acc
			//
			kwalk.Next()
		}
	}
	//
	return result
}

// ProjectGeneric aggregates a table by enumerating its configurations with an
// instantiation and locating the corresponding result cell through it.  This
// works for any table representation, but is slower than ProjectDense.
func ProjectGeneric[T any](src *table.Table[T], del variable.Sequence, op Operator[T]) *table.Table[T] {
	var (
		vars   = src.Variables()
		result = allocProjection(vars.Difference(del), op.Neutral())
		inst   = src.Instantiation()
	)
	//
	for ; !inst.End(); inst.Inc() {
		v, err := src.Get(inst)
		if err != nil {
			panic(err)
		}
		//
		acc, err := result.Get(inst)
		if err != nil {
			panic(err)
		}
		//
		if err := result.Set(inst, op.Apply(acc, v)); err != nil {
			panic(err)
		}
	}
	//
	return result
}

func allocProjection[T any](kept variable.Sequence, neutral T) *table.Table[T] {
	// Never larger than the source table, hence cannot fail.
	result, err := table.New(kept, neutral)
	if err != nil {
		panic(fmt.Sprintf("allocating projection: %v", err))
	}
	//
	return result
}
