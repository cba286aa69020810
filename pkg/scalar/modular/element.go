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
package modular

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/go-pgm/pkg/algebra"
	"github.com/consensys/go-pgm/pkg/table"
)

// Element is a count held modulo the order of the BLS12-377 scalar field.
// Counts held this way never overflow, and remain exact for as long as the
// true count is below the modulus.
type Element struct {
	fr.Element
}

// New constructs an element holding a given count.
func New(val uint64) Element {
	return Element{fr.NewElement(val)}
}

// Add x + y
func (x Element) Add(y Element) Element {
	var res fr.Element
	//
	res.Add(&x.Element, &y.Element)
	//
	return Element{res}
}

// Mul x * y
func (x Element) Mul(y Element) Element {
	var elem fr.Element
	//
	elem.Mul(&x.Element, &y.Element)
	//
	return Element{elem}
}

// Cmp returns 1 if x > y, 0 if x = y, and -1 if x < y.
func (x Element) Cmp(y Element) int {
	return x.Element.Cmp(&y.Element)
}

// Equals checks whether two elements are the same.
func (x Element) Equals(y Element) bool {
	return x.Element.Equal(&y.Element)
}

// IsZero checks whether x = 0.
func (x Element) IsZero() bool {
	return x.Element.IsZero()
}

// IsOne checks whether x = 1.
func (x Element) IsOne() bool {
	return x.Element.IsOne()
}

// ToUint64 returns the numerical value of x, or false if it does not fit.
func (x Element) ToUint64() (uint64, bool) {
	if !x.IsUint64() {
		return 0, false
	}
	//
	return x.Uint64(), true
}

func (x Element) String() string {
	return x.Element.String()
}

// Text returns the value of x in a given base.
func (x Element) Text(base int) string {
	return x.Element.Text(base)
}

// Sum is the field addition operator.
func Sum() algebra.Operator[Element] {
	return algebra.NewOperator(algebra.SUM, Element.Add, Element{})
}

// Product is the field multiplication operator.
func Product() algebra.Operator[Element] {
	return algebra.NewOperator(algebra.PRODUCT, Element.Mul, New(1))
}

// FromCounts converts a table of machine counts into a table of elements over
// the same variables.
func FromCounts(src *table.Table[uint64]) *table.Table[Element] {
	data := make([]Element, src.Len())
	//
	for i, v := range src.Data() {
		data[i] = New(v)
	}
	//
	return table.MustFromData(src.Variables(), data)
}

// ToCounts converts a table of elements back into a table of machine counts.
// This fails if some element does not fit into 64 bits.
func ToCounts(src *table.Table[Element]) (*table.Table[uint64], error) {
	data := make([]uint64, src.Len())
	//
	for i, v := range src.Data() {
		n, ok := v.ToUint64()
		if !ok {
			return nil, fmt.Errorf("cell %d (%s) exceeds 64 bits", i, v.String())
		}
		//
		data[i] = n
	}
	//
	return table.FromData(src.Variables(), data)
}
