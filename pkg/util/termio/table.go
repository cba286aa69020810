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
package termio

import (
	"fmt"
	"io"
	"strings"
)

// TablePrinter lays out a grid of strings in aligned columns, optionally
// decorated with ANSI escapes.  Columns are right-aligned unless marked
// otherwise.
type TablePrinter struct {
	cells [][]cell
	// Columns to be left-aligned
	left []bool
	// Upper bound on column widths (zero for none)
	maxWidth      uint
	enableEscapes bool
}

type cell struct {
	text   string
	escape string
}

// NewTablePrinter constructs a new table with given dimensions.
func NewTablePrinter(width uint, height uint) *TablePrinter {
	cells := make([][]cell, height)
	//
	for i := range height {
		cells[i] = make([]cell, width)
	}
	//
	return &TablePrinter{cells, make([]bool, width), 0, true}
}

// Set the contents of a given cell in this table
func (p *TablePrinter) Set(col uint, row uint, val string) {
	p.cells[row][col].text = val
}

// Get the contents of a given cell in this table
func (p *TablePrinter) Get(col uint, row uint) string {
	return p.cells[row][col].text
}

// Height returns the height of this table.
func (p *TablePrinter) Height() uint {
	return uint(len(p.cells))
}

// SetRow sets the contents of an entire row in this table
func (p *TablePrinter) SetRow(row uint, vals ...string) {
	if len(vals) != len(p.left) {
		panic("incorrect number of columns")
	}
	//
	for col, val := range vals {
		p.cells[row][col].text = val
	}
}

// SetEscape sets the escape to use when printing a given cell.
func (p *TablePrinter) SetEscape(col uint, row uint, escape string) {
	p.cells[row][col].escape = escape
}

// SetRowEscape sets the escape to use when printing every cell of a given row.
func (p *TablePrinter) SetRowEscape(row uint, escape string) {
	for col := range uint(len(p.left)) {
		p.SetEscape(col, row, escape)
	}
}

// AnsiEscapes enables or disables the use of ANSI escapes.  These should be
// disabled when not writing to a terminal.
func (p *TablePrinter) AnsiEscapes(enable bool) {
	p.enableEscapes = enable
}

// AlignLeft left-aligns a given column.
func (p *TablePrinter) AlignLeft(col uint) {
	p.left[col] = true
}

// SetMaxWidths puts an upper bound on the width of any column.  Longer cells
// are truncated.
func (p *TablePrinter) SetMaxWidths(width uint) {
	p.maxWidth = width
}

// Print the table to a given writer.
func (p *TablePrinter) Print(w io.Writer) {
	widths := p.widths()
	//
	for _, row := range p.cells {
		var line strings.Builder
		//
		for j, c := range row {
			escaped := p.enableEscapes && c.escape != ""
			//
			if escaped {
				line.WriteString(c.escape)
			}
			//
			line.WriteString(" ")
			line.WriteString(p.pad(c.text, widths[j], p.left[j]))
			//
			if escaped {
				line.WriteString(ResetAnsiEscape().Build())
			}
			//
			line.WriteString(" |")
		}
		//
		fmt.Fprintln(w, line.String())
	}
}

// Determine the width of each column, respecting the upper bound (if any).
func (p *TablePrinter) widths() []uint {
	widths := make([]uint, len(p.left))
	//
	for _, row := range p.cells {
		for j, c := range row {
			widths[j] = max(widths[j], uint(len(c.text)))
		}
	}
	//
	if p.maxWidth > 0 {
		for j := range widths {
			widths[j] = min(widths[j], p.maxWidth)
		}
	}
	//
	return widths
}

// Pad (or truncate) a given string to a given width.  Truncated strings end in
// "..", space permitting.
func (p *TablePrinter) pad(text string, width uint, left bool) string {
	switch {
	case uint(len(text)) > width && width > 2:
		return text[:width-2] + ".."
	case uint(len(text)) > width:
		return text[:width]
	case left:
		return fmt.Sprintf("%-*s", width, text)
	default:
		return fmt.Sprintf("%*s", width, text)
	}
}
