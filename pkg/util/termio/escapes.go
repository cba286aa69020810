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
	"slices"
	"strings"
)

// Colour identifies one of the standard terminal colours.
type Colour uint

// Standard colours, numbered as in the SGR colour codes.
const (
	RED    Colour = 1
	GREEN  Colour = 2
	YELLOW Colour = 3
	BLUE   Colour = 4
)

// AnsiEscape is a Select Graphic Rendition escape under construction, holding
// the numeric attributes it sets in order.
type AnsiEscape struct {
	attrs []uint
}

// NewAnsiEscape constructs an escape which sets no attributes.
func NewAnsiEscape() AnsiEscape {
	return AnsiEscape{nil}
}

// ResetAnsiEscape constructs an escape which clears all attributes.
func ResetAnsiEscape() AnsiEscape {
	return AnsiEscape{[]uint{0}}
}

// BoldAnsiEscape constructs a bold escape.
func BoldAnsiEscape() AnsiEscape {
	return AnsiEscape{[]uint{1}}
}

// FgColour adds a foreground colour to this escape.
func (p AnsiEscape) FgColour(col Colour) AnsiEscape {
	return AnsiEscape{append(slices.Clone(p.attrs), 30+uint(col))}
}

// Build constructs the final escape.  An escape setting no attributes is
// empty.
func (p AnsiEscape) Build() string {
	if len(p.attrs) == 0 {
		return ""
	}
	//
	codes := make([]string, len(p.attrs))
	//
	for i, a := range p.attrs {
		codes[i] = fmt.Sprintf("%d", a)
	}
	//
	return fmt.Sprintf("\033[%sm", strings.Join(codes, ";"))
}
