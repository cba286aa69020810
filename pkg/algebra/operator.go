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
	"math"
	"unsafe"
)

// Names of the standard operators.
const (
	SUM     = "sum"
	PRODUCT = "product"
	MAX     = "max"
	MIN     = "min"
)

// Integer covers the builtin integer types.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Float covers the builtin floating point types.
type Float interface {
	~float32 | ~float64
}

// Number covers the builtin numeric types for which the standard operators are
// available.
type Number interface {
	Integer | Float
}

// Operator is an associative and commutative binary function, together with
// its neutral element.  Operators are used both to combine two tables
// pointwise and to aggregate a table over some of its variables.  Two
// operators with the same name are assumed to compute the same function.
type Operator[T any] struct {
	name    string
	fn      func(T, T) T
	neutral T
}

// NewOperator constructs a custom operator.  The function must be associative
// and commutative, and the neutral element must be an identity for it.
func NewOperator[T any](name string, fn func(T, T) T, neutral T) Operator[T] {
	return Operator[T]{name, fn, neutral}
}

// Name returns the name of this operator.
func (p Operator[T]) Name() string {
	return p.name
}

// Apply this operator to two values.
func (p Operator[T]) Apply(lhs T, rhs T) T {
	return p.fn(lhs, rhs)
}

// Func returns the binary function underlying this operator.
func (p Operator[T]) Func() func(T, T) T {
	return p.fn
}

// Neutral returns the identity element of this operator.
func (p Operator[T]) Neutral() T {
	return p.neutral
}

func (p Operator[T]) String() string {
	return p.name
}

// Sum returns the addition operator, whose neutral element is zero.
func Sum[T Number]() Operator[T] {
	return Operator[T]{SUM, func(a, b T) T { return a + b }, 0}
}

// Product returns the multiplication operator, whose neutral element is one.
func Product[T Number]() Operator[T] {
	return Operator[T]{PRODUCT, func(a, b T) T { return a * b }, 1}
}

// Max returns the maximum operator, whose neutral element is the lowest value
// of T (−∞ for floating point types).
func Max[T Number]() Operator[T] {
	return Operator[T]{MAX, func(a, b T) T {
		if a < b {
			return b
		}

		return a
	}, Lowest[T]()}
}

// Min returns the minimum operator, whose neutral element is the highest value
// of T (+∞ for floating point types).
func Min[T Number]() Operator[T] {
	return Operator[T]{MIN, func(a, b T) T {
		if b < a {
			return b
		}

		return a
	}, Highest[T]()}
}

// Standard returns the standard operator with the given name, or false if
// there is none.
func Standard[T Number](name string) (Operator[T], bool) {
	switch name {
	case SUM:
		return Sum[T](), true
	case PRODUCT:
		return Product[T](), true
	case MAX:
		return Max[T](), true
	case MIN:
		return Min[T](), true
	}
	//
	return Operator[T]{}, false
}

// Lowest returns the lowest value representable by T.  For floating point
// types this is negative infinity.
func Lowest[T Number]() T {
	var zero T
	//
	switch {
	case isFloat[T]():
		inf := math.Inf(-1)
		return T(inf)
	case zero-1 > zero:
		// unsigned
		return zero
	default:
		return signBit[T]()
	}
}

// Highest returns the highest value representable by T.  For floating point
// types this is positive infinity.
func Highest[T Number]() T {
	var zero T
	//
	switch {
	case isFloat[T]():
		inf := math.Inf(1)
		return T(inf)
	case zero-1 > zero:
		// unsigned
		return zero - 1
	default:
		return signBit[T]() - 1
	}
}

// ElemSize returns the number of bytes needed to store one value of type T.
func ElemSize[T any]() uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero))
}

func isFloat[T Number]() bool {
	half := 0.5
	return T(half) != 0
}

// Smallest signed value, obtained by doubling one until it reaches the sign
// bit.  This relies on wrapping integer arithmetic.
func signBit[T Number]() T {
	var (
		val   T = 1
		width   = unsafe.Sizeof(val) * 8
	)
	//
	for i := uintptr(1); i < width; i++ {
		val += val
	}
	//
	return val
}
