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

	"github.com/consensys/go-pgm/pkg/planner"
	"github.com/consensys/go-pgm/pkg/schedule"
	"github.com/consensys/go-pgm/pkg/table"
	"github.com/consensys/go-pgm/pkg/variable"
)

// Program is a workload compiled into a schedule.
type Program[T any] struct {
	Element  Element[T]
	Schedule *schedule.Schedule[T]
	// Named tables, whether sources or results.
	handles map[string]*schedule.MultiDim[T]
	// Names of reported tables, in order.
	outputs []string
}

// Output returns the named table handles to be reported, in order.
func (p *Program[T]) Output() []Named[T] {
	result := make([]Named[T], len(p.outputs))
	//
	for i, name := range p.outputs {
		result[i] = Named[T]{name, p.handles[name]}
	}
	//
	return result
}

// Handle returns the table handle with a given name.
func (p *Program[T]) Handle(name string) (*schedule.MultiDim[T], bool) {
	h, ok := p.handles[name]
	return h, ok
}

// Named associates a table handle with its name.
type Named[T any] struct {
	Name   string
	Handle *schedule.MultiDim[T]
}

// Build compiles a workload into a schedule, for a given element type.  No
// operation is executed.
func Build[T any](w *Workload, elem Element[T]) (*Program[T], error) {
	var (
		b = builder[T]{
			elem:    elem,
			vars:    make(map[string]variable.Variable),
			program: &Program[T]{elem, schedule.New[T](), make(map[string]*schedule.MultiDim[T]), nil},
			deleted: make(map[string]bool),
		}
		err error
	)
	//
	for _, v := range w.Variables {
		if err = b.declareVariable(v); err != nil {
			return nil, err
		}
	}
	//
	for _, t := range w.Tables {
		if err = b.declareTable(t); err != nil {
			return nil, err
		}
	}
	//
	for i, op := range w.Operations {
		if err = b.insertOperation(op); err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
	}
	//
	if w.Eliminate != nil {
		if err = b.eliminate(*w.Eliminate); err != nil {
			return nil, fmt.Errorf("elimination: %w", err)
		}
	}
	//
	if err = b.selectOutputs(w.Outputs); err != nil {
		return nil, err
	}
	//
	return b.program, nil
}

type builder[T any] struct {
	elem    Element[T]
	vars    map[string]variable.Variable
	program *Program[T]
	// Results, in order of definition
	results []string
	deleted map[string]bool
}

func (p *builder[T]) declareVariable(spec VariableSpec) error {
	var (
		v   *variable.Discrete
		err error
	)
	//
	if _, ok := p.vars[spec.Name]; ok {
		return fmt.Errorf("variable %s: %w", spec.Name, table.ErrDuplicate)
	} else if len(spec.Labels) > 0 {
		v, err = variable.NewLabelled(spec.Name, spec.Labels...)
	} else {
		v, err = variable.NewRange(spec.Name, spec.Domain)
	}
	//
	if err != nil {
		return err
	}
	//
	p.vars[spec.Name] = v
	//
	return nil
}

func (p *builder[T]) declareTable(spec TableSpec) error {
	vars, err := p.sequence(spec.Variables)
	if err != nil {
		return fmt.Errorf("table %s: %w", spec.Name, err)
	} else if err := p.checkFresh(spec.Name); err != nil {
		return err
	}
	//
	var t *table.Table[T]
	//
	switch {
	case spec.Fill != nil && spec.Values != nil:
		return fmt.Errorf("table %s has both fill and values: %w", spec.Name, table.ErrInvalidArgument)
	case spec.Fill != nil:
		fill, err := p.elem.Parse(string(*spec.Fill))
		if err != nil {
			return fmt.Errorf("table %s: %w", spec.Name, err)
		}
		//
		if t, err = table.New(vars, fill); err != nil {
			return fmt.Errorf("table %s: %w", spec.Name, err)
		}
	default:
		data := make([]T, len(spec.Values))
		//
		for i, v := range spec.Values {
			if data[i], err = p.elem.Parse(string(v)); err != nil {
				return fmt.Errorf("table %s, cell %d: %w", spec.Name, i, err)
			}
		}
		//
		if t, err = table.FromData(vars, data); err != nil {
			return fmt.Errorf("table %s: %w", spec.Name, err)
		}
	}
	//
	p.program.handles[spec.Name] = p.program.Schedule.InsertTable(t, false)
	//
	return nil
}

func (p *builder[T]) insertOperation(spec OperationSpec) error {
	args, err := p.lookup(spec.Args)
	if err != nil {
		return err
	}
	//
	var result *schedule.MultiDim[T]
	//
	switch spec.Kind {
	case COMBINE:
		op, err := p.elem.Operator(spec.Operator)
		if err != nil {
			return err
		}
		//
		result, err = schedule.ScheduleCombination(p.program.Schedule, planner.NewCombination(op), args...)
		if err != nil {
			return err
		}
	case PROJECT:
		op, err := p.elem.Operator(spec.Operator)
		if err != nil {
			return err
		} else if len(args) != 1 {
			return fmt.Errorf("projection of %d tables: %w", len(args), table.ErrInvalidArgument)
		}
		//
		del, err := p.sequence(spec.Vars)
		if err != nil {
			return err
		}
		//
		if result, err = schedule.ScheduleProjection(p.program.Schedule, op, args[0], del); err != nil {
			return err
		}
	case DELETE:
		for i, arg := range args {
			if _, err := p.program.Schedule.Insert(schedule.NewDeletion(arg)); err != nil {
				return err
			}
			//
			p.deleted[spec.Args[i]] = true
		}
		//
		return nil
	default:
		return fmt.Errorf("unknown operation %q: %w", spec.Kind, table.ErrInvalidArgument)
	}
	//
	return p.define(spec.As, result)
}

func (p *builder[T]) eliminate(spec EliminateSpec) error {
	args, err := p.lookup(spec.Tables)
	if err != nil {
		return err
	}
	//
	del, err := p.sequence(spec.Vars)
	if err != nil {
		return err
	}
	//
	combine, err := p.elem.Operator(spec.Combine)
	if err != nil {
		return err
	}
	//
	project, err := p.elem.Operator(spec.Project)
	if err != nil {
		return err
	}
	//
	results, err := schedule.ScheduleCombineAndProject(p.program.Schedule,
		planner.NewCombineAndProject(combine, project), args, del)
	if err != nil {
		return err
	}
	//
	for i, r := range results {
		name := spec.As
		//
		if len(results) > 1 {
			name = fmt.Sprintf("%s%d", spec.As, i)
		}
		//
		if err := p.define(name, r); err != nil {
			return err
		}
	}
	//
	return nil
}

func (p *builder[T]) selectOutputs(names []string) error {
	if len(names) == 0 {
		for _, name := range p.results {
			if !p.deleted[name] {
				names = append(names, name)
			}
		}
	}
	//
	for _, name := range names {
		if _, ok := p.program.handles[name]; !ok {
			return fmt.Errorf("output %s: %w", name, table.ErrNotFound)
		} else if p.deleted[name] {
			return fmt.Errorf("output %s: %w", name, schedule.ErrDeleted)
		}
	}
	//
	p.program.outputs = names
	//
	return nil
}

// Give a name to a result.  Unnamed results are not reported.
func (p *builder[T]) define(name string, h *schedule.MultiDim[T]) error {
	if name == "" {
		return nil
	} else if err := p.checkFresh(name); err != nil {
		return err
	}
	//
	p.program.handles[name] = h
	p.results = append(p.results, name)
	//
	return nil
}

func (p *builder[T]) checkFresh(name string) error {
	if _, ok := p.program.handles[name]; ok {
		return fmt.Errorf("table %s: %w", name, table.ErrDuplicate)
	}
	//
	return nil
}

func (p *builder[T]) lookup(names []string) ([]*schedule.MultiDim[T], error) {
	handles := make([]*schedule.MultiDim[T], len(names))
	//
	for i, name := range names {
		h, ok := p.program.handles[name]
		if !ok {
			return nil, fmt.Errorf("table %s: %w", name, table.ErrNotFound)
		}
		//
		handles[i] = h
	}
	//
	return handles, nil
}

func (p *builder[T]) sequence(names []string) (variable.Sequence, error) {
	vars := make([]variable.Variable, len(names))
	//
	for i, name := range names {
		v, ok := p.vars[name]
		if !ok {
			return variable.Sequence{}, fmt.Errorf("variable %s: %w", name, table.ErrNotFound)
		}
		//
		vars[i] = v
	}
	//
	return variable.NewSequence(vars...)
}
