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

// Combine two tables pointwise using the default registry for T.  The result
// is defined over the variables of lhs (in order) followed by those variables
// of rhs not in lhs (in order).  Neither operand is modified.
func Combine[T any](lhs *table.Table[T], rhs *table.Table[T], op Operator[T]) (*table.Table[T], error) {
	return CombineWith(Default[T](), lhs, rhs, op)
}

// CombineWith combines two tables pointwise using the implementation found in
// a given registry.
func CombineWith[T any](reg *Registry[T], lhs *table.Table[T], rhs *table.Table[T],
	op Operator[T]) (*table.Table[T], error) {
	// Fail fast before allocating anything
	if _, err := CombinedSize(lhs.Variables(), rhs.Variables()); err != nil {
		return nil, err
	}
	//
	fn := reg.CombinationOrDefault(op.Name(), lhs.Kind(), rhs.Kind())
	//
	return fn(lhs, rhs, op.Func()), nil
}

// CombineDense combines two dense tables by walking their layouts directly.
// The result is written in order, whilst the operands are read via strides.
// There are two ways to nest the loops: either the cells of lhs are the inner
// loop and the variables only in rhs the outer loop, or vice-versa.  Both give
// identical results and the one requiring fewer offset recomputations is
// chosen.
func CombineDense[T any](lhs *table.Table[T], rhs *table.Table[T], fn func(T, T) T) *table.Table[T] {
	// Degenerate cases
	switch {
	case lhs.Dimension() == 0:
		a := lhs.At(0)
		return rhs.Map(func(b T) T { return fn(a, b) })
	case rhs.Dimension() == 0:
		b := rhs.At(0)
		return lhs.Map(func(a T) T { return fn(a, b) })
	}
	//
	var (
		lvars  = lhs.Variables()
		rvars  = rhs.Variables()
		extra  = rvars.Difference(lvars)
		result = allocCombination[T](lvars, rvars)
		// lhs dimensions, with their strides in rhs
		ldoms, lstrides = dimsOf(lvars, rhs)
		// dimensions only in rhs, with their strides in rhs
		xdoms, xstrides = dimsOf(extra, rhs)
		lsize           = lhs.Len()
		xsize           = result.Len() / lsize
		out             = result.Data()
		ldata           = lhs.Data()
		rdata           = rhs.Data()
		lwalk           = table.NewWalker(ldoms, lstrides)
		xwalk           = table.NewWalker(xdoms, xstrides)
	)
	// Each reset of a walker costs one step per dimension.
	if xsize*uint64(len(ldoms)) <= lsize*uint64(len(xdoms)) {
		// lhs inner, results written sequentially
		r := uint64(0)
		//
		for ; !xwalk.Done(); xwalk.Next() {
			lwalk.Reset(xwalk.Offset())
			//
			for a := uint64(0); a < lsize; a++ {
				out[r] = fn(ldata[a], rdata[lwalk.Offset()])
				lwalk.Next()
				r++
			}
		}
	} else {
		// rhs inner, results written with stride lsize
		for a := uint64(0); a < lsize; a++ {
			xwalk.Reset(lwalk.Offset())
			//
			for r := a; !xwalk.Done(); xwalk.Next() {
				out[r] = fn(ldata[a], rdata[xwalk.Offset()])
				r += lsize
			}
			//
			lwalk.Next()
		}
	}
	//
	return result
}

// CombineGeneric combines two tables by enumerating the configurations of the
// result with an instantiation, and reading each operand through it.  This
// works for any table representation, but is slower than CombineDense.
func CombineGeneric[T any](lhs *table.Table[T], rhs *table.Table[T], fn func(T, T) T) *table.Table[T] {
	var (
		lvars  = lhs.Variables()
		result = allocCombination[T](lvars, rhs.Variables())
		inst   = result.Instantiation()
	)
	//
	for ; !inst.End(); inst.Inc() {
		a, aerr := lhs.Get(inst)
		b, berr := rhs.Get(inst)
		//
		if aerr != nil || berr != nil {
			panic("instantiation does not cover operands")
		}
		//
		if err := result.Set(inst, fn(a, b)); err != nil {
			panic(err)
		}
	}
	//
	return result
}

func allocCombination[T any](lhs variable.Sequence, rhs variable.Sequence) *table.Table[T] {
	var empty T
	//
	result, err := table.New(lhs.Union(rhs), empty)
	// Should be unreachable, since sizes were checked by the caller.
	if err != nil {
		panic(fmt.Sprintf("allocating combination: %v", err))
	}
	//
	return result
}

// Determine the domain sizes of a sequence of variables, along with their
// strides within a given table (zero for variables not in the table).
func dimsOf[T any](vars variable.Sequence, target *table.Table[T]) ([]uint, []uint64) {
	var (
		doms    = make([]uint, vars.Len())
		strides = make([]uint64, vars.Len())
	)
	//
	for i, v := range vars.Vars() {
		doms[i] = v.DomainSize()
		strides[i] = target.StrideOf(v)
	}
	//
	return doms, strides
}
