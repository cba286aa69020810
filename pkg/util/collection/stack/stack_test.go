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
package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Stack_01(t *testing.T) {
	s := NewStack[uint](1)
	assert.False(t, s.IsEmpty())
	//
	s.Push(2, 3)
	assert.Equal(t, uint(3), s.Len())
	//
	for _, expected := range []uint{3, 2, 1} {
		item, ok := s.Pop()
		assert.True(t, ok)
		assert.Equal(t, expected, item)
	}
	//
	assert.True(t, s.IsEmpty())
	//
	_, ok := s.Pop()
	assert.False(t, ok)
}
