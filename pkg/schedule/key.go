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
package schedule

import (
	"slices"

	"github.com/consensys/go-pgm/pkg/util/collection/hash"
	"github.com/consensys/go-pgm/pkg/variable"
)

var _ hash.Hasher[Key] = Key{}

// Key is the signature of an operation, used to detect identical operations
// within a schedule.
type Key struct {
	kind     Kind
	operator string
	args     []TableID
	vars     variable.Sequence
}

func newKey(kind Kind, operator string, commutative bool, vars variable.Sequence, args ...TableID) Key {
	if commutative {
		args = slices.Clone(args)
		slices.Sort(args)
	}
	//
	return Key{kind, operator, args, vars}
}

// Equals checks whether two keys are identical.
func (p Key) Equals(other Key) bool {
	return p.kind == other.kind && p.operator == other.operator && slices.Equal(p.args, other.args) &&
		p.vars.Equals(other.vars)
}

// Hash returns a hashcode for this key.
func (p Key) Hash() uint64 {
	h := hash.NewBuilder()
	h.Uint(uint64(p.kind)).Text(p.operator)
	//
	for _, arg := range p.args {
		h.Uint(uint64(arg))
	}
	//
	for _, v := range p.vars.Vars() {
		h.Text(v.Name())
	}
	//
	return h.Sum()
}
