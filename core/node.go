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

import "strconv"

// Node is one node in an execution tree.
//
// Go attempts to make progress against the grid in ctx and reports
// whether it did.  Returning false means the node is exhausted in the
// grid's current state; a branch above it may reset it and try again
// later.  Go never returns an error: anything that could fail is
// checked when the tree is built.
//
// The interface has unexported methods on purpose.  The node kinds
// form a closed set; checkpointing and structure reporting enumerate
// them, so outside packages compose trees from these kinds rather
// than adding their own.
type Node interface {
	Go(ctx *Context) bool

	// Reset returns the node (and its subtree) to its initial
	// state.  It does not touch the grid.
	Reset()

	// Kind names the node type: "markov", "sequence", "one",
	// "all", "path", "convolution", "convchain", "wfc".
	Kind() string

	// Children returns the node's children, nil for leaves.
	Children() []Node

	// Save captures the node's mutable state; Load restores it.
	Save() *NodeState
	Load(state *NodeState) error

	segment() string
	setSegment(s string)
}

// NodeState is the serializable mutable state of a node, used by
// checkpoints.  Which fields matter depends on Kind.
type NodeState struct {
	Kind     string       `json:"kind"`
	Counter  int          `json:"counter,omitempty"`
	Active   int          `json:"active,omitempty"`
	Done     bool         `json:"done,omitempty"`
	Seeded   bool         `json:"seeded,omitempty"`
	Moves    [][2]int     `json:"moves,omitempty"`
	Children []*NodeState `json:"children,omitempty"`
}

// Structure describes a tree's shape for external consumers: kind,
// dotted path, rule strings for rule nodes, and children.
type Structure struct {
	Kind     string       `json:"kind"`
	Path     string       `json:"path"`
	Rules    []string     `json:"rules,omitempty"`
	Children []*Structure `json:"children,omitempty"`
}

// ruleLister is implemented by nodes that carry a rule set.
type ruleLister interface {
	ruleStrings() []string
}

// StructureOf reports the shape of the tree rooted at n.  The prefix
// is prepended to every path; pass "" for paths relative to n.
func StructureOf(n Node, prefix string) *Structure {
	path := n.segment()
	if prefix != "" {
		path = prefix + "." + n.segment()
	}
	s := &Structure{
		Kind: n.Kind(),
		Path: path,
	}
	if rl, is := n.(ruleLister); is {
		s.Rules = rl.ruleStrings()
	}
	for _, child := range n.Children() {
		s.Children = append(s.Children, StructureOf(child, path))
	}
	return s
}

// assignSegments gives every node its path segment: the node's kind
// plus its index among siblings, as in "one[0]".  The root gets index
// zero.  Returns a SharedNode error if any node instance occurs twice.
func assignSegments(root Node) error {
	seen := map[Node]bool{}
	var walk func(n Node, index int) error
	walk = func(n Node, index int) error {
		if seen[n] {
			return &SharedNode{Kind: n.Kind()}
		}
		seen[n] = true
		n.setSegment(n.Kind() + "[" + strconv.Itoa(index) + "]")
		for i, child := range n.Children() {
			if err := walk(child, i); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root, 0)
}

// checkState verifies that state fits a node of the given kind with
// the given child count.
func checkState(kind string, children int, state *NodeState) error {
	if state == nil || state.Kind != kind || len(state.Children) != children {
		got := "nil"
		if state != nil {
			got = state.Kind
		}
		return &BadState{Want: kind, Got: got}
	}
	return nil
}
