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

// Hasher provides a generic definition of a hashing function suitable for use
// within the hash map.  Since hashcodes may collide, this additionally
// includes equality.
type Hasher[T any] interface {
	// Check whether two items are equal (or not).
	Equals(T) bool
	// Return a suitable hashcode.
	Hash() uint64
}

const (
	offset64 uint64 = 14695981039346656037
	prime64  uint64 = 1099511628211
)

// Builder accumulates a 64-bit FNV1a hashcode from a sequence of words and
// strings.
type Builder struct {
	hash uint64
}

// NewBuilder constructs an empty hash builder.
func NewBuilder() Builder {
	return Builder{offset64}
}

// Uint mixes a word into this hashcode.
func (p *Builder) Uint(v uint64) *Builder {
	for range 8 {
		p.hash ^= v & 0xff
		p.hash *= prime64
		v >>= 8
	}
	//
	return p
}

// Text mixes a string into this hashcode.  The string is terminated so that
// consecutive strings cannot run together.
func (p *Builder) Text(s string) *Builder {
	for i := range len(s) {
		p.hash ^= uint64(s[i])
		p.hash *= prime64
	}
	//
	return p.Uint(uint64(len(s)))
}

// Sum returns the accumulated hashcode.
func (p *Builder) Sum() uint64 {
	return p.hash
}
