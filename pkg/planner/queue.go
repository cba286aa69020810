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
package planner

import (
	"math"

	sorted "github.com/tobshub/go-sortedmap"
)

// Candidate is an unordered pair of live slots (with i < j), along with the
// estimated number of cells obtained by combining them.
type candidate struct {
	i, j uint
	size uint64
	// Set when the combined size is not representable.
	overflow bool
}

// Priority order on candidates: smallest size first, then lowest slot indices.
func candidateLess(a, b candidate) bool {
	switch {
	case a.size != b.size:
		return a.size < b.size
	case a.i != b.i:
		return a.i < b.i
	default:
		return a.j < b.j
	}
}

type slotPair struct {
	i, j uint
}

// pairQueue is a priority queue of candidate pairs, keyed by pair so that all
// candidates involving a retired slot can be removed.
type pairQueue struct {
	items *sorted.SortedMap[slotPair, candidate]
}

func newPairQueue(n uint) *pairQueue {
	return &pairQueue{sorted.New[slotPair, candidate](int(n*n/2), candidateLess)}
}

func (p *pairQueue) push(i, j uint, size uint64, overflow bool) {
	if i > j {
		i, j = j, i
	}
	//
	if overflow {
		size = math.MaxUint64
	}
	//
	key := slotPair{i, j}
	// Reinsert so that the new priority is respected
	p.items.Delete(key)
	p.items.Insert(key, candidate{i, j, size, overflow})
}

func (p *pairQueue) remove(i, j uint) {
	if i > j {
		i, j = j, i
	}
	//
	p.items.Delete(slotPair{i, j})
}

func (p *pairQueue) len() int {
	return p.items.Len()
}

// Pop the highest priority candidate.  The queue must not be empty.
func (p *pairQueue) pop() candidate {
	iter, err := p.items.IterCh()
	if err != nil {
		panic(err)
	}
	//
	rec, ok := <-iter.Records()
	iter.Close()
	//
	if !ok {
		panic("pop from empty queue")
	}
	//
	p.items.Delete(rec.Key)
	//
	return rec.Val
}
