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
package hash

import (
	"fmt"
	"iter"
	"strings"
)

// Map is a hash map whose keys supply their own hashcode and equality.
// Collisions are handled gracefully using buckets, rather than assuming the
// hashcode uniquely identifies a key.
type Map[K Hasher[K], V any] struct {
	// buckets maps hashcodes to *buckets* of items.
	buckets map[uint64]bucket[K, V]
	size    uint
}

// NewMap creates a new Map with a given underlying capacity.
func NewMap[K Hasher[K], V any](size uint) *Map[K, V] {
	return &Map[K, V]{make(map[uint64]bucket[K, V], size), 0}
}

// Size returns the number of unique keys stored in this map.
func (p *Map[K, V]) Size() uint {
	return p.size
}

// All iterates the key-value pairs of this map, in an unspecified order.
func (p *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, b := range p.buckets {
			for i, k := range b.keys {
				if !yield(k, b.values[i]) {
					return
				}
			}
		}
	}
}

// Insert a new item into this map, returning true if the key was already
// contained (in which case its value is replaced) and false otherwise.
func (p *Map[K, V]) Insert(key K, value V) bool {
	hash := key.Hash()
	b := p.buckets[hash]
	//
	for i, k := range b.keys {
		if key.Equals(k) {
			b.values[i] = value
			return true
		}
	}
	//
	b.keys = append(b.keys, key)
	b.values = append(b.values, value)
	p.buckets[hash] = b
	p.size++
	//
	return false
}

// Delete a key from this map, returning true if it was contained.
func (p *Map[K, V]) Delete(key K) bool {
	hash := key.Hash()
	b, ok := p.buckets[hash]
	//
	if !ok {
		return false
	}
	//
	for i, k := range b.keys {
		if key.Equals(k) {
			n := len(b.keys) - 1
			b.keys[i], b.values[i] = b.keys[n], b.values[n]
			b.keys, b.values = b.keys[:n], b.values[:n]
			//
			if n == 0 {
				delete(p.buckets, hash)
			} else {
				p.buckets[hash] = b
			}
			//
			p.size--
			//
			return true
		}
	}
	//
	return false
}

// Get the value associated with a given key, or return false otherwise.
func (p *Map[K, V]) Get(key K) (V, bool) {
	var empty V
	//
	if b, ok := p.buckets[key.Hash()]; ok {
		for i, k := range b.keys {
			if key.Equals(k) {
				return b.values[i], true
			}
		}
	}
	//
	return empty, false
}

func (p *Map[K, V]) String() string {
	var (
		r     strings.Builder
		first = true
	)
	//
	r.WriteString("{")
	//
	for k, v := range p.All() {
		if !first {
			r.WriteString(",")
		}
		//
		first = false
		//
		r.WriteString(fmt.Sprintf("%v:=%v", any(k), any(v)))
	}
	//
	r.WriteString("}")
	//
	return r.String()
}

type bucket[K Hasher[K], V any] struct {
	keys   []K
	values []V
}
