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

import (
	"errors"

	"github.com/consensys/go-pgm/pkg/variable"
)

// ErrNotFound signals that a variable required for indexing a table was not
// given a value by an instantiation.
var ErrNotFound = errors.New("variable not found")

// ErrInvalidArgument signals a malformed request, such as data of the wrong
// length, a value outside of a variable's domain or a variable whose domain is
// empty.  This is the same sentinel used by variables.
var ErrInvalidArgument = variable.ErrInvalidArgument

// ErrDuplicate signals an attempt to add a variable which is already present.
// This is the same sentinel used by variable sequences.
var ErrDuplicate = variable.ErrDuplicate

// ErrOutOfBounds signals that a table would be too large to represent.  This
// is the same sentinel used by variable sequences.
var ErrOutOfBounds = variable.ErrOverflow
