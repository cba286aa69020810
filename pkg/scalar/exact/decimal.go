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
package exact

import (
	"errors"

	"github.com/consensys/go-pgm/pkg/algebra"
	"github.com/consensys/go-pgm/pkg/table"
	"github.com/shopspring/decimal"
)

// ErrZeroTotal is returned when normalising a table whose cells sum to zero.
var ErrZeroTotal = errors.New("table sums to zero")

// Sum is decimal addition.
func Sum() algebra.Operator[decimal.Decimal] {
	return algebra.NewOperator(algebra.SUM, decimal.Decimal.Add, decimal.Zero)
}

// Product is decimal multiplication.
func Product() algebra.Operator[decimal.Decimal] {
	return algebra.NewOperator(algebra.PRODUCT, decimal.Decimal.Mul, decimal.NewFromInt(1))
}

// Max is the decimal maximum.  Decimals are unbounded, so a lower bound on all
// values must be given to act as the neutral element.
func Max(lowest decimal.Decimal) algebra.Operator[decimal.Decimal] {
	return algebra.NewOperator(algebra.MAX, func(x, y decimal.Decimal) decimal.Decimal {
		if x.GreaterThanOrEqual(y) {
			return x
		}
		//
		return y
	}, lowest)
}

// Min is the decimal minimum.  Decimals are unbounded, so an upper bound on all
// values must be given to act as the neutral element.
func Min(highest decimal.Decimal) algebra.Operator[decimal.Decimal] {
	return algebra.NewOperator(algebra.MIN, func(x, y decimal.Decimal) decimal.Decimal {
		if x.LessThanOrEqual(y) {
			return x
		}
		//
		return y
	}, highest)
}

// Equal checks whether two decimals denote the same value, regardless of their
// exponents.
func Equal(x, y decimal.Decimal) bool {
	return x.Equal(y)
}

// FromFloats converts a table of floating point values into a table of
// decimals over the same variables.  Each decimal is the shortest one which
// round trips to the same float.
func FromFloats(src *table.Table[float64]) *table.Table[decimal.Decimal] {
	data := make([]decimal.Decimal, src.Len())
	//
	for i, v := range src.Data() {
		data[i] = decimal.NewFromFloat(v)
	}
	//
	return table.MustFromData(src.Variables(), data)
}

// ToFloats converts a table of decimals into the closest table of floating
// point values.
func ToFloats(src *table.Table[decimal.Decimal]) *table.Table[float64] {
	data := make([]float64, src.Len())
	//
	for i, v := range src.Data() {
		data[i] = v.InexactFloat64()
	}
	//
	return table.MustFromData(src.Variables(), data)
}

// Normalise divides every cell of a table by the sum of all its cells, using
// a given number of decimal places for each quotient.
func Normalise(src *table.Table[decimal.Decimal], places int32) (*table.Table[decimal.Decimal], error) {
	total := algebra.Aggregate(src, Sum())
	//
	if total.IsZero() {
		return nil, ErrZeroTotal
	}
	//
	return src.Map(func(v decimal.Decimal) decimal.Decimal {
		return v.DivRound(total, places)
	}), nil
}
