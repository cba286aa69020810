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

// Stack is a reusable LIFO worklist implemented using an array.
type Stack[T any] struct {
	items []T
}

// NewStack returns a stack holding the given items, the last of which is on
// top.
func NewStack[T any](items ...T) *Stack[T] {
	return &Stack[T]{items}
}

// IsEmpty checks whether or not there are still items on the stack
func (p *Stack[T]) IsEmpty() bool {
	return len(p.items) == 0
}

// Len returns the number of items on the stack.
func (p *Stack[T]) Len() uint {
	return uint(len(p.items))
}

// Push zero or more items onto the stack, in order.
func (p *Stack[T]) Push(items ...T) {
	p.items = append(p.items, items...)
}

// Pop the top item off the stack, or return false if the stack is empty.
func (p *Stack[T]) Pop() (T, bool) {
	var (
		n     = len(p.items)
		empty T
	)
	//
	if n == 0 {
		return empty, false
	}
	//
	item := p.items[n-1]
	p.items = p.items[:n-1]
	//
	return item, true
}
