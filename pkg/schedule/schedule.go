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
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/go-pgm/pkg/table"
	"github.com/consensys/go-pgm/pkg/util/collection/hash"
	"github.com/consensys/go-pgm/pkg/util/collection/stack"
	"github.com/consensys/go-pgm/pkg/variable"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrNotExecuted is returned when an operation is reported as executed, but
// has not been.
var ErrNotExecuted = errors.New("operation not executed")

// NodeID identifies an operation within a schedule.
type NodeID uint

// Schedule is a directed acyclic graph of deferred operations over tables.
// An operation depends upon the operations producing its arguments, and upon
// any others it has been explicitly forced to follow.  A table can be deleted
// by at most one operation, which is automatically ordered after every reader
// of that table.  Schedules are not safe for concurrent use.
type Schedule[T any] struct {
	id     uuid.UUID
	tables []*MultiDim[T]
	ops    []Operation[T]
	preds  [][]NodeID
	succs  [][]NodeID
	// Operation producing each table (if any)
	producer map[TableID]NodeID
	// Operations reading each table
	readers map[TableID][]NodeID
	// Operation deleting each table (if any)
	deleter map[TableID]NodeID
	// Signatures of all operations
	index  *hash.Map[Key, NodeID]
	logger *log.Entry
}

// New constructs an empty schedule with a fresh identifier.
func New[T any]() *Schedule[T] {
	id := uuid.New()
	//
	return &Schedule[T]{
		id:       id,
		producer: make(map[TableID]NodeID),
		readers:  make(map[TableID][]NodeID),
		deleter:  make(map[TableID]NodeID),
		index:    hash.NewMap[Key, NodeID](0),
		logger:   log.WithField("schedule", id.String()),
	}
}

// ID returns the unique identifier of this schedule.
func (p *Schedule[T]) ID() uuid.UUID {
	return p.id
}

// Logger returns a log entry tagged with the identifier of this schedule.
func (p *Schedule[T]) Logger() *log.Entry {
	return p.logger
}

// Len returns the number of operations in this schedule.
func (p *Schedule[T]) Len() uint {
	return uint(len(p.ops))
}

// Operation returns the operation with a given identifier.
func (p *Schedule[T]) Operation(n NodeID) Operation[T] {
	return p.ops[n]
}

// ResultOf returns the table produced by a given operation, or nil if it
// produces none.
func (p *Schedule[T]) ResultOf(n NodeID) *MultiDim[T] {
	if results := p.ops[n].Results(); len(results) > 0 {
		return results[0]
	}
	//
	return nil
}

// Table returns the table handle with a given identifier.
func (p *Schedule[T]) Table(id TableID) *MultiDim[T] {
	return p.tables[id]
}

// Tables returns the number of table handles in this schedule.
func (p *Schedule[T]) Tables() uint {
	return uint(len(p.tables))
}

// Producer returns the operation producing a given table, if any.  Source
// tables have no producer.
func (p *Schedule[T]) Producer(h *MultiDim[T]) (NodeID, bool) {
	if !p.owns(h) {
		return 0, false
	}
	//
	n, ok := p.producer[h.id]
	//
	return n, ok
}

// Predecessors returns the operations which must execute before a given
// operation.  The result must not be modified.
func (p *Schedule[T]) Predecessors(n NodeID) []NodeID {
	return p.preds[n]
}

// Successors returns the operations which must execute after a given
// operation.  The result must not be modified.
func (p *Schedule[T]) Successors(n NodeID) []NodeID {
	return p.succs[n]
}

// InsertTable adds a materialised source table to this schedule.  When clone
// is set, the schedule takes a deep copy of the table and owns it.
// Otherwise, the table is borrowed and must not be modified whilst the
// schedule executes.
func (p *Schedule[T]) InsertTable(t *table.Table[T], clone bool) *MultiDim[T] {
	h := &MultiDim[T]{vars: t.Variables(), size: t.Len(), table: t, ownership: Borrowed}
	//
	if clone {
		h.table, h.ownership = t.Clone(), Owned
	}
	//
	p.register(h)
	//
	return h
}

// InsertAbstract adds a source table to this schedule whose contents are not
// yet known.  This is sufficient to estimate costs, but the table must be
// provided before any operation reading it is executed.
func (p *Schedule[T]) InsertAbstract(vars variable.Sequence) (*MultiDim[T], error) {
	h, err := newAbstract[T](vars.Clone())
	if err != nil {
		return nil, err
	}
	//
	p.register(h)
	//
	return h, nil
}

// Provide the contents of a source table previously inserted as abstract.  As
// for InsertTable, the table is either copied or borrowed.
func (p *Schedule[T]) Provide(h *MultiDim[T], t *table.Table[T], clone bool) error {
	if !p.owns(h) {
		return fmt.Errorf("table %s: %w", h.String(), ErrUnknown)
	} else if _, ok := p.producer[h.id]; ok {
		return fmt.Errorf("table %s is computed by the schedule: %w", h.String(), table.ErrInvalidArgument)
	} else if !t.Variables().Equals(h.vars) {
		return fmt.Errorf("table %s expects %s, got %s: %w", h.String(), h.vars.String(),
			t.Variables().String(), table.ErrInvalidArgument)
	}
	//
	if clone {
		h.table, h.ownership = t.Clone(), Owned
	} else {
		h.table, h.ownership = t, Borrowed
	}
	//
	return nil
}

// Insert an operation into this schedule, returning its identifier.  The
// arguments of the operation must already belong to this schedule, and must
// not be deleted by it.  If an identical operation (i.e. same operator and
// same arguments) is already present, its identifier is returned instead and
// the given operation is discarded.
func (p *Schedule[T]) Insert(op Operation[T]) (NodeID, error) {
	for _, arg := range op.Args() {
		if !p.owns(arg) {
			return 0, fmt.Errorf("argument %s of %s: %w", arg.String(), op.String(), ErrUnknown)
		}
	}
	//
	key := op.Key()
	//
	if n, ok := p.index.Get(key); ok {
		p.logger.Debugf("reusing operation %d for %s", n, op.String())
		return n, nil
	}
	//
	for _, arg := range op.Args() {
		if d, ok := p.deleter[arg.id]; ok {
			return 0, fmt.Errorf("argument %s of %s (deleted by %d): %w", arg.String(), op.String(), d, ErrDeleted)
		}
	}
	//
	for _, r := range op.Results() {
		if p.owns(r) {
			return 0, fmt.Errorf("result %s of %s: %w", r.String(), op.String(), table.ErrDuplicate)
		}
	}
	//
	n := NodeID(len(p.ops))
	p.ops = append(p.ops, op)
	p.preds = append(p.preds, nil)
	p.succs = append(p.succs, nil)
	p.index.Insert(key, n)
	//
	for _, arg := range op.Args() {
		if pr, ok := p.producer[arg.id]; ok {
			p.addEdge(pr, n)
		}
	}
	//
	if op.Kind() == DELETE {
		for _, arg := range op.Releases() {
			for _, r := range p.readers[arg.id] {
				p.addEdge(r, n)
			}
			//
			p.deleter[arg.id] = n
			// Deleted results can no longer be reused
			if pr, ok := p.producer[arg.id]; ok {
				p.index.Delete(p.ops[pr].Key())
			}
		}
	} else {
		for _, arg := range op.Args() {
			p.readers[arg.id] = append(p.readers[arg.id], n)
		}
	}
	//
	for _, r := range op.Results() {
		p.register(r)
		p.producer[r.id] = n
	}
	//
	p.logger.Debugf("inserted operation %d: %s (%d reusable)", n, op.String(), p.index.Size())
	//
	return n, nil
}

// ForceAfter constrains an operation to execute after a given set of other
// operations, in addition to its data dependencies.  This fails if the
// constraint would introduce a cycle, or if the operation has already been
// executed whilst one of the others has not.
func (p *Schedule[T]) ForceAfter(n NodeID, others ...NodeID) error {
	if err := p.checkNodes(others...); err != nil {
		return err
	} else if err := p.checkNodes(n); err != nil {
		return err
	}
	//
	for _, o := range others {
		if o == n || p.reachable(n, o) {
			return fmt.Errorf("forcing %d after %d: %w", n, o, ErrCycle)
		} else if p.ops[n].IsExecuted() && !p.ops[o].IsExecuted() {
			return fmt.Errorf("forcing %d after %d: %w", n, o, ErrExecuted)
		}
	}
	//
	for _, o := range others {
		p.addEdge(o, n)
	}
	//
	return nil
}

// ForceBefore constrains an operation to execute before a given set of other
// operations, in addition to their data dependencies.
func (p *Schedule[T]) ForceBefore(n NodeID, others ...NodeID) error {
	if err := p.checkNodes(others...); err != nil {
		return err
	} else if err := p.checkNodes(n); err != nil {
		return err
	}
	//
	for _, o := range others {
		if err := p.ForceAfter(o, n); err != nil {
			return err
		}
	}
	//
	return nil
}

// OperationsInvolving returns (in increasing order) the operations which read,
// produce or delete a given table.
func (p *Schedule[T]) OperationsInvolving(h *MultiDim[T]) ([]NodeID, error) {
	if !p.owns(h) {
		return nil, fmt.Errorf("table %s: %w", h.String(), ErrUnknown)
	}
	//
	nodes := slices.Clone(p.readers[h.id])
	//
	if n, ok := p.producer[h.id]; ok {
		nodes = append(nodes, n)
	}
	//
	if n, ok := p.deleter[h.id]; ok {
		nodes = append(nodes, n)
	}
	//
	slices.Sort(nodes)
	//
	return nodes, nil
}

// IsAvailable checks whether a given operation is ready to execute, meaning it
// has not been executed but all operations it depends upon have.
func (p *Schedule[T]) IsAvailable(n NodeID) bool {
	if p.ops[n].IsExecuted() {
		return false
	}
	//
	for _, pr := range p.preds[n] {
		if !p.ops[pr].IsExecuted() {
			return false
		}
	}
	//
	return true
}

// AvailableOperations returns (in increasing order) all operations which are
// ready to execute.
func (p *Schedule[T]) AvailableOperations() []NodeID {
	var nodes []NodeID
	//
	for i := range p.ops {
		if p.IsAvailable(NodeID(i)) {
			nodes = append(nodes, NodeID(i))
		}
	}
	//
	return nodes
}

// UpdateAfterExecution records that a given operation has been executed, and
// returns (in increasing order) those operations which have become available
// as a result.
func (p *Schedule[T]) UpdateAfterExecution(n NodeID) ([]NodeID, error) {
	if err := p.checkNodes(n); err != nil {
		return nil, err
	} else if !p.ops[n].IsExecuted() {
		return nil, fmt.Errorf("operation %d: %w", n, ErrNotExecuted)
	}
	//
	p.logger.Debugf("executed operation %d: %s", n, p.ops[n].String())
	//
	var nodes []NodeID
	//
	for _, s := range p.succs[n] {
		if p.IsAvailable(s) {
			nodes = append(nodes, s)
		}
	}
	//
	slices.Sort(nodes)
	//
	return nodes, nil
}

// IsComplete checks whether every operation of this schedule has been
// executed.
func (p *Schedule[T]) IsComplete() bool {
	for _, op := range p.ops {
		if !op.IsExecuted() {
			return false
		}
	}
	//
	return true
}

func (p *Schedule[T]) String() string {
	var builder strings.Builder
	//
	builder.WriteString(fmt.Sprintf("schedule %s {\n", p.id.String()))
	//
	for i, op := range p.ops {
		builder.WriteString(fmt.Sprintf("\t%d: %s", i, op.String()))
		//
		if len(p.preds[i]) > 0 {
			builder.WriteString(fmt.Sprintf(" after %v", p.preds[i]))
		}
		//
		builder.WriteString("\n")
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}

func (p *Schedule[T]) register(h *MultiDim[T]) {
	h.id = TableID(len(p.tables))
	p.tables = append(p.tables, h)
}

func (p *Schedule[T]) owns(h *MultiDim[T]) bool {
	return uint(h.id) < uint(len(p.tables)) && p.tables[h.id] == h
}

func (p *Schedule[T]) checkNodes(nodes ...NodeID) error {
	for _, n := range nodes {
		if uint(n) >= uint(len(p.ops)) {
			return fmt.Errorf("operation %d: %w", n, ErrUnknown)
		}
	}
	//
	return nil
}

func (p *Schedule[T]) addEdge(from NodeID, to NodeID) {
	if !slices.Contains(p.succs[from], to) {
		p.succs[from] = append(p.succs[from], to)
		p.preds[to] = append(p.preds[to], from)
	}
}

// Check whether there is a path from one operation to another.
func (p *Schedule[T]) reachable(from NodeID, to NodeID) bool {
	var (
		visited  = bitset.New(uint(len(p.ops)))
		worklist = stack.NewStack(from)
	)
	//
	for n, ok := worklist.Pop(); ok; n, ok = worklist.Pop() {
		if n == to {
			return true
		} else if visited.Test(uint(n)) {
			continue
		}
		//
		visited.Set(uint(n))
		worklist.Push(p.succs[n]...)
	}
	//
	return false
}
