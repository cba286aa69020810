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
package cmd

import (
	"fmt"
	"io"

	"github.com/consensys/go-pgm/pkg/config"
	"github.com/consensys/go-pgm/pkg/schedule"
	"github.com/consensys/go-pgm/pkg/scheduler"
	"github.com/consensys/go-pgm/pkg/table"
	"github.com/consensys/go-pgm/pkg/util/termio"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Options controlling how a workload is planned or executed.
type options struct {
	// Execute (rather than just plan) the workload.
	execute bool
	// Use the parallel scheduler, with a given number of workers.
	parallel bool
	workers  uint
	// Maximum number of operations to consider.
	steps uint
	// Report scheduler metrics after execution.
	metrics bool
	// Colour the output.
	escapes bool
}

// Plan or execute a workload, dispatching on its element type.
func process(w io.Writer, workload *config.Workload, opts options) error {
	switch workload.Element {
	case config.FLOAT64:
		return processWith(w, workload, config.Float64(), opts)
	case config.FLOAT32:
		return processWith(w, workload, config.Float32(), opts)
	case config.DECIMAL:
		return processWith(w, workload, config.Decimal(), opts)
	case config.MODULAR:
		return processWith(w, workload, config.Modular(), opts)
	default:
		return fmt.Errorf("unknown element type %q", workload.Element)
	}
}

func processWith[T any](w io.Writer, workload *config.Workload, elem config.Element[T], opts options) error {
	program, err := config.Build(workload, elem)
	if err != nil {
		return err
	}
	//
	var (
		registry = prometheus.NewRegistry()
		metrics  *scheduler.Metrics
		steps    = opts.steps
	)
	//
	if opts.metrics {
		metrics = scheduler.NewMetrics(registry)
	}
	//
	if steps == 0 {
		steps = scheduler.All
	}
	//
	sched := newScheduler[T](opts, metrics)
	//
	if !opts.execute {
		return printPlan(w, program.Schedule, sched, steps, opts)
	}
	//
	if _, err = sched.ExecuteSteps(program.Schedule, steps); err != nil {
		return err
	}
	//
	printResults(w, program, opts)
	//
	if opts.metrics {
		return printMetrics(w, registry)
	}
	//
	return nil
}

func newScheduler[T any](opts options, metrics *scheduler.Metrics) scheduler.Scheduler[T] {
	if opts.parallel {
		return scheduler.NewParallel[T](opts.workers).WithMetrics(metrics)
	}
	//
	return scheduler.NewSequential[T]().WithMetrics(metrics)
}

// Print the operations of a schedule, along with their estimated costs.
func printPlan[T any](w io.Writer, s *schedule.Schedule[T], sched scheduler.Scheduler[T], steps uint,
	opts options) error {
	//
	tbl := termio.NewTablePrinter(5, s.Len()+1)
	tbl.SetRow(0, "id", "operation", "after", "cells", "bytes")
	tbl.AlignLeft(1)
	tbl.SetRowEscape(0, termio.BoldAnsiEscape().Build())
	tbl.AnsiEscapes(opts.escapes)
	//
	for i := range s.Len() {
		var (
			n           = schedule.NodeID(i)
			op          = s.Operation(n)
			alloc, _, _ = op.MemoryUsage()
			row         = i + 1
		)
		//
		tbl.SetRow(row, fmt.Sprintf("%d", i), op.String(), fmt.Sprintf("%v", s.Predecessors(n)),
			fmt.Sprintf("%.0f", op.NbOperations()), fmt.Sprintf("%d", alloc))
		//
		if op.IsExecuted() {
			tbl.SetRowEscape(row, termio.NewAnsiEscape().FgColour(termio.GREEN).Build())
		} else if op.Kind() == schedule.DELETE {
			tbl.SetRowEscape(row, termio.NewAnsiEscape().FgColour(termio.YELLOW).Build())
		}
	}
	//
	fmt.Fprintf(w, "schedule %s\n", s.ID().String())
	tbl.Print(w)
	//
	peak, final, err := sched.MemoryUsage(s, steps)
	if err != nil {
		return err
	}
	//
	fmt.Fprintf(w, "operations: %.0f\n", sched.NbOperations(s, steps))
	fmt.Fprintf(w, "memory: %d bytes peak, %d bytes final\n", peak, final)
	//
	return nil
}

// Print the output tables of a program.  Outputs which have not been computed
// yet are reported as such.
func printResults[T any](w io.Writer, program *config.Program[T], opts options) {
	var executed uint
	//
	for i := range program.Schedule.Len() {
		if program.Schedule.Operation(schedule.NodeID(i)).IsExecuted() {
			executed++
		}
	}
	//
	if !program.Schedule.IsComplete() {
		fmt.Fprintf(w, "executed %d of %d operations\n", executed, program.Schedule.Len())
	}
	//
	for _, out := range program.Output() {
		if out.Handle.IsAbstract() {
			fmt.Fprintf(w, "%s: not computed\n", out.Name)
			continue
		}
		//
		fmt.Fprintf(w, "%s%s:\n", out.Name, out.Handle.Variables().String())
		printTable(w, out.Handle.Table(), program.Element, opts)
	}
}

// Print the cells of a table, one configuration per row.
func printTable[T any](w io.Writer, t *table.Table[T], elem config.Element[T], opts options) {
	var (
		vars = t.Vars()
		n    = uint(len(vars))
		tbl  = termio.NewTablePrinter(n+1, uint(t.Len())+1)
		inst = t.Instantiation()
	)
	//
	for i, v := range vars {
		tbl.Set(uint(i), 0, v.Name())
	}
	//
	tbl.Set(n, 0, "value")
	tbl.SetRowEscape(0, termio.BoldAnsiEscape().Build())
	tbl.AnsiEscapes(opts.escapes)
	// Cells are laid out in odometer order
	for row := uint(1); !inst.End(); row++ {
		for i, v := range vars {
			tbl.Set(uint(i), row, v.Label(inst.ValAt(uint(i))))
		}
		//
		tbl.Set(n, row, elem.Format(t.At(uint64(row-1))))
		inst.Inc()
	}
	//
	tbl.Print(w)
}

func printMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	//
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	//
	return nil
}
