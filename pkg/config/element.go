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
package config

import (
	"fmt"
	"strconv"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/go-pgm/pkg/algebra"
	"github.com/consensys/go-pgm/pkg/scalar/exact"
	"github.com/consensys/go-pgm/pkg/scalar/modular"
	"github.com/consensys/go-pgm/pkg/table"
	"github.com/shopspring/decimal"
)

// Names of the supported element types.
const (
	FLOAT64 = "float64"
	FLOAT32 = "float32"
	DECIMAL = "decimal"
	MODULAR = "modular"
)

// Element describes how cells of a given type are read, written and
// operated upon.
type Element[T any] struct {
	// Name of this element type.
	Name string
	// Parse a cell value from its textual form.
	Parse func(string) (T, error)
	// Format a cell value.
	Format func(T) string
	// Operators available for this element type, indexed by name.
	Operators map[string]algebra.Operator[T]
}

// Operator looks up an operator by name.
func (p Element[T]) Operator(name string) (algebra.Operator[T], error) {
	if op, ok := p.Operators[name]; ok {
		return op, nil
	}
	//
	return algebra.Operator[T]{}, fmt.Errorf("operator %q unavailable for %s: %w", name, p.Name,
		table.ErrNotFound)
}

// Float64 elements support every standard operator.
func Float64() Element[float64] {
	return Element[float64]{
		Name: FLOAT64,
		Parse: func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		},
		Format: func(v float64) string {
			return strconv.FormatFloat(v, 'g', -1, 64)
		},
		Operators: standard[float64](),
	}
}

// Float32 elements support every standard operator.
func Float32() Element[float32] {
	return Element[float32]{
		Name: FLOAT32,
		Parse: func(s string) (float32, error) {
			v, err := strconv.ParseFloat(s, 32)
			return float32(v), err
		},
		Format: func(v float32) string {
			return strconv.FormatFloat(float64(v), 'g', -1, 32)
		},
		Operators: standard[float32](),
	}
}

// Decimal elements support sum and product.
func Decimal() Element[decimal.Decimal] {
	return Element[decimal.Decimal]{
		Name:   DECIMAL,
		Parse:  decimal.NewFromString,
		Format: decimal.Decimal.String,
		Operators: map[string]algebra.Operator[decimal.Decimal]{
			algebra.SUM:     exact.Sum(),
			algebra.PRODUCT: exact.Product(),
		},
	}
}

// Modular elements support sum and product.
func Modular() Element[modular.Element] {
	return Element[modular.Element]{
		Name: MODULAR,
		Parse: func(s string) (modular.Element, error) {
			var e fr.Element
			//
			if _, err := e.SetString(s); err != nil {
				return modular.Element{}, err
			}
			//
			return modular.Element{Element: e}, nil
		},
		Format: modular.Element.String,
		Operators: map[string]algebra.Operator[modular.Element]{
			algebra.SUM:     modular.Sum(),
			algebra.PRODUCT: modular.Product(),
		},
	}
}

func standard[T algebra.Number]() map[string]algebra.Operator[T] {
	ops := make(map[string]algebra.Operator[T])
	//
	for _, name := range []string{algebra.SUM, algebra.PRODUCT, algebra.MAX, algebra.MIN} {
		ops[name], _ = algebra.Standard[T](name)
	}
	//
	return ops
}
