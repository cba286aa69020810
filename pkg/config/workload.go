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
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Workload describes a set of tables over discrete variables, together with
// the operations to perform on them.
type Workload struct {
	// Element type of every table (float64, float32, decimal or modular).
	Element    string          `yaml:"element"`
	Variables  []VariableSpec  `yaml:"variables"`
	Tables     []TableSpec     `yaml:"tables"`
	Operations []OperationSpec `yaml:"operations"`
	// Variable elimination performed after all other operations, if any.
	Eliminate *EliminateSpec `yaml:"eliminate"`
	// Tables reported at the end.  When empty, every named result which is
	// not deleted is reported.
	Outputs []string `yaml:"outputs"`
}

// VariableSpec describes a discrete variable, either by the size of its
// domain or by the labels of its values.
type VariableSpec struct {
	Name   string   `yaml:"name"`
	Domain uint     `yaml:"domain"`
	Labels []string `yaml:"labels"`
}

// TableSpec describes a source table.  Exactly one of Fill and Values must be
// given, where values are listed in mixed-radix order (first variable varying
// fastest).
type TableSpec struct {
	Name      string   `yaml:"name"`
	Variables []string `yaml:"variables"`
	Fill      *Scalar  `yaml:"fill"`
	Values    []Scalar `yaml:"values"`
}

// Kinds of operation.
const (
	COMBINE = "combine"
	PROJECT = "project"
	DELETE  = "delete"
)

// OperationSpec describes a single operation over named tables.  Combining
// more than two tables is planned greedily.
type OperationSpec struct {
	Kind     string   `yaml:"kind"`
	Args     []string `yaml:"args"`
	Operator string   `yaml:"operator"`
	// Variables projected out (projections only).
	Vars []string `yaml:"vars"`
	// Name given to the result.
	As string `yaml:"as"`
}

// EliminateSpec describes the elimination of a set of variables from a set of
// tables, by combining with one operator and projecting with another.
type EliminateSpec struct {
	Tables  []string `yaml:"tables"`
	Vars    []string `yaml:"vars"`
	Combine string   `yaml:"combine"`
	Project string   `yaml:"project"`
	// Prefix of the names given to the resulting tables.
	As string `yaml:"as"`
}

// Scalar is the textual form of a cell value.  Values are kept as text until
// the element type is known, so that no precision is lost to an intermediate
// float.
type Scalar string

// UnmarshalYAML implementation for yaml.Unmarshaler interface.
func (p *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected scalar value", node.Line)
	}
	//
	*p = Scalar(node.Value)
	//
	return nil
}

// Load a workload from a YAML file.
func Load(filename string) (*Workload, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading workload %s", filename)
	}
	//
	w, err := Parse(bytes)
	if err != nil {
		return nil, errors.Wrapf(err, "loading workload %s", filename)
	}
	//
	return w, nil
}

// Parse a workload from YAML text.  When no element type is given, float64 is
// assumed.
func Parse(bytes []byte) (*Workload, error) {
	var w Workload
	//
	if err := yaml.Unmarshal(bytes, &w); err != nil {
		return nil, errors.Wrap(err, "decoding workload")
	}
	//
	if w.Element == "" {
		w.Element = FLOAT64
	}
	//
	return &w, nil
}
