/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package model reads generator models from YAML and compiles them
// into execution trees and pipelines.
//
// A model file names a grid, a seed, and either a rule tree (root:),
// a generator pipeline (pipeline:), or both; a pipeline can embed
// rule trees as model: steps.  Everything is validated at load:
// unknown symbols, misshapen rules, and empty branches are
// construction-time errors, not runtime surprises.
package model

import (
	"io/ioutil"

	yaml "gopkg.in/yaml.v2"
)

// Def is a model file's top-level document.
type Def struct {
	Name   string   `yaml:"name"`
	Grid   GridDef  `yaml:"grid"`
	Seed   uint64   `yaml:"seed"`
	Origin bool     `yaml:"origin"`
	Root   *NodeDef `yaml:"root,omitempty"`

	Pipeline []*GenDef `yaml:"pipeline,omitempty"`
}

// GridDef declares the grid: dimensions and alphabet.  Depth
// defaults to 1.
type GridDef struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Depth    int    `yaml:"depth,omitempty"`
	Alphabet string `yaml:"alphabet"`
}

// NodeDef declares one node of a rule tree.  Exactly one field may
// be set.
type NodeDef struct {
	Markov   []*NodeDef    `yaml:"markov,omitempty"`
	Sequence []*NodeDef    `yaml:"sequence,omitempty"`
	One      *RuleSetDef   `yaml:"one,omitempty"`
	All      *RuleSetDef   `yaml:"all,omitempty"`
	Path     *PathDef      `yaml:"path,omitempty"`
	Conv     *ConvDef      `yaml:"convolution,omitempty"`
	Chain    *ConvChainDef `yaml:"convchain,omitempty"`
	Wfc      *WfcDef       `yaml:"wfc,omitempty"`
}

// RuleSetDef declares a One or All node: rewrite rules in "IN=OUT"
// form with an optional symmetry subgroup and application cap.
type RuleSetDef struct {
	Rules    []string `yaml:"rules"`
	Symmetry string   `yaml:"symmetry,omitempty"`
	Steps    int      `yaml:"steps,omitempty"`
}

// PathDef declares a path node.  From, To, and On are symbol sets;
// Draw is the single symbol a route is drawn with.
type PathDef struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	On       string `yaml:"on"`
	Draw     string `yaml:"draw"`
	Inertia  bool   `yaml:"inertia,omitempty"`
	Longest  bool   `yaml:"longest,omitempty"`
	Edges    bool   `yaml:"edges,omitempty"`
	Vertices bool   `yaml:"vertices,omitempty"`
}

// ConvDef declares a convolution node.
type ConvDef struct {
	Rules    []ConvRuleDef `yaml:"rules"`
	Kernel   string        `yaml:"kernel"`
	Periodic bool          `yaml:"periodic,omitempty"`
	Steps    int           `yaml:"steps,omitempty"`
}

// ConvRuleDef declares one convolution rule: rewrite In to Out when
// the count of neighbors holding symbols in Count falls in Sums
// ("3" or "5..8" or "3,5..8"), with probability P (default 1).
type ConvRuleDef struct {
	In    string  `yaml:"in"`
	Out   string  `yaml:"out"`
	Count string  `yaml:"count,omitempty"`
	Sums  string  `yaml:"sums,omitempty"`
	P     float64 `yaml:"p,omitempty"`
}

// ConvChainDef declares a convchain node.  Sample rows use the Black
// and White symbols; cells holding Substrate are the writable
// region.
type ConvChainDef struct {
	N           int      `yaml:"n"`
	Temperature float64  `yaml:"temperature,omitempty"`
	Sample      []string `yaml:"sample"`
	Black       string   `yaml:"black"`
	White       string   `yaml:"white"`
	Substrate   string   `yaml:"substrate"`
	Symmetry    string   `yaml:"symmetry,omitempty"`
	Steps       int      `yaml:"steps,omitempty"`
}

// WfcDef declares a wave function collapse node over an NxN overlap
// model learned from Sample rows.  Allowed constrains values: a grid
// cell holding the key symbol admits only patterns starting with a
// symbol in the value string.
type WfcDef struct {
	N             int               `yaml:"n"`
	Sample        []string          `yaml:"sample"`
	PeriodicInput bool              `yaml:"periodicInput,omitempty"`
	Periodic      bool              `yaml:"periodic,omitempty"`
	Symmetry      string            `yaml:"symmetry,omitempty"`
	Allowed       map[string]string `yaml:"allowed,omitempty"`
}

// GenDef declares one generator of a pipeline.  Exactly one of the
// kind fields may be set; Name overrides the generator's scene-tree
// name.
type GenDef struct {
	Name string `yaml:"name,omitempty"`

	Sequential []*GenDef   `yaml:"sequential,omitempty"`
	Parallel   []*GenDef   `yaml:"parallel,omitempty"`
	Fill       *FillDef    `yaml:"fill,omitempty"`
	Scatter    *ScatterDef `yaml:"scatter,omitempty"`
	Model      *NodeDef    `yaml:"model,omitempty"`
}

// FillDef declares a fill generator.  Condition is "all", "empty",
// "border", or a single symbol to overwrite.
type FillDef struct {
	Value     string `yaml:"value"`
	Condition string `yaml:"condition,omitempty"`
}

// ScatterDef declares a scatter generator.
type ScatterDef struct {
	Value   string  `yaml:"value"`
	Target  string  `yaml:"target"`
	Density float64 `yaml:"density"`
}

// Load parses a model document.
func Load(bs []byte) (*Def, error) {
	var def Def
	if err := yaml.UnmarshalStrict(bs, &def); err != nil {
		return nil, &BadModel{Problem: err.Error()}
	}
	if def.Grid.Depth == 0 {
		def.Grid.Depth = 1
	}
	if def.Root == nil && len(def.Pipeline) == 0 {
		return nil, &BadModel{Problem: "model has neither a root tree nor a pipeline"}
	}
	return &def, nil
}

// LoadFile reads and parses a model file.
func LoadFile(filename string) (*Def, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Load(bs)
}
