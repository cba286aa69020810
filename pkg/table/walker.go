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
package table

// Walker enumerates the joint configurations of a list of dimensions in
// odometer order (first dimension fastest) whilst incrementally tracking the
// flat offset of each configuration within some target table.  The target
// layout is described by giving, for each dimension, its stride in the target
// (zero if the target does not depend on that dimension).  Thus, a walker can
// follow one table's layout whilst reading from another.
//
// Offsets are maintained using wrapping arithmetic, so negative "gains" are
// represented by their two's complement.
type Walker struct {
	doms  []uint
	gains []uint64
	vals  []uint
	base  uint64
	off   uint64
	done  bool
}

// NewWalker constructs a walker for the given dimension sizes and target
// strides, positioned on the first configuration.
func NewWalker(doms []uint, strides []uint64) *Walker {
	var (
		gains = make([]uint64, len(doms))
		// total distance travelled by all lower dimensions when they are at
		// their last value
		span uint64
	)
	//
	for i, d := range doms {
		gains[i] = strides[i] - span
		span += strides[i] * uint64(d-1)
	}
	//
	return &Walker{doms, gains, make([]uint, len(doms)), 0, 0, false}
}

// Offset returns the target offset of the current configuration.
func (p *Walker) Offset() uint64 {
	return p.off
}

// Done checks whether the walker has moved past the last configuration.
func (p *Walker) Done() bool {
	return p.done
}

// Reset moves the walker back to the first configuration, using a given base
// offset for that configuration.
func (p *Walker) Reset(base uint64) {
	clear(p.vals)
	p.base = base
	p.off = base
	p.done = false
}

// Next moves the walker to the next configuration.  After the last
// configuration, the walker is done and its offset returns to its base.
func (p *Walker) Next() {
	for i, d := range p.doms {
		p.vals[i]++
		//
		if p.vals[i] < d {
			p.off += p.gains[i]
			return
		}
		//
		p.vals[i] = 0
	}
	//
	p.off = p.base
	p.done = true
}
