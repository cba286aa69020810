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
	"github.com/consensys/go-pgm/pkg/variable"
)

// CombinedSize returns the number of cells in the combination of two tables
// over the given variables, or an error if this is not representable.
func CombinedSize(lhs variable.Sequence, rhs variable.Sequence) (uint64, error) {
	union := lhs.Union(rhs)
	return union.DomainSize()
}

// ProjectedSize returns the number of cells left after projecting the given
// variables out of a table.
func ProjectedSize(src variable.Sequence, del variable.Sequence) (uint64, error) {
	kept := src.Difference(del)
	return kept.DomainSize()
}

// CombineOperations estimates the number of elementary operations needed to
// combine two tables.  This is one per cell of the result.
func CombineOperations(lhs variable.Sequence, rhs variable.Sequence) (float64, error) {
	n, err := CombinedSize(lhs, rhs)
	return float64(n), err
}

// ProjectOperations estimates the number of elementary operations needed to
// project variables out of a table.  This is one per cell of the source.
func ProjectOperations(src variable.Sequence, del variable.Sequence) (float64, error) {
	n, err := src.DomainSize()
	return float64(n), err
}

// MemoryOf returns the number of bytes occupied by the cells of a table of
// element type T over the given variables.
func MemoryOf[T any](vars variable.Sequence) (uint64, error) {
	n, err := vars.DomainSize()
	if err != nil {
		return 0, err
	}
	//
	return variable.MulSizes(n, ElemSize[T]())
}
