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

package core

// These errors are construction-time user errors.  Once an
// interpreter has been built successfully, stepping it doesn't return
// errors: a node that can't act just reports that it's exhausted.

// EmptyBranch occurs when a Markov or Sequence node is built with no
// children.
type EmptyBranch struct {
	Kind string
}

func (e *EmptyBranch) Error() string {
	return `branch node "` + e.Kind + `" has no children`
}

// EmptyRuleSet occurs when a One or All node is built with no rules.
type EmptyRuleSet struct {
	Kind string
}

func (e *EmptyRuleSet) Error() string {
	return `rule node "` + e.Kind + `" has no rules`
}

// SharedNode occurs when the same node instance appears more than
// once in a tree handed to NewInterpreter.  Node state (counters,
// cursors) can't serve two parents, so the tree must really be a
// tree.
type SharedNode struct {
	Kind string
}

func (e *SharedNode) Error() string {
	return `node "` + e.Kind + `" appears more than once in the tree`
}

// BadConfig occurs when a leaf node is built with parameters that
// can't work, like an empty start wave for a path node.
type BadConfig struct {
	Kind    string
	Problem string
}

func (e *BadConfig) Error() string {
	return `bad "` + e.Kind + `" configuration: ` + e.Problem
}

// BadCollapse occurs when a restored wave collapse record can't be
// replayed against the restored grid.
type BadCollapse struct {
	Problem string
}

func (e *BadCollapse) Error() string {
	return `can't restore wave collapse: ` + e.Problem
}

// BadState occurs when node state is restored onto a node of a
// different kind or shape.
type BadState struct {
	Want string
	Got  string
}

func (e *BadState) Error() string {
	return `node state of kind "` + e.Got + `" doesn't fit node "` + e.Want + `"`
}
