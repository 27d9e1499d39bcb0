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

// branch is the shared body of the two composite node kinds.
type branch struct {
	seg    string
	nodes  []Node
	active int
}

func (b *branch) Children() []Node   { return b.nodes }
func (b *branch) segment() string    { return b.seg }
func (b *branch) setSegment(s string) { b.seg = s }

func (b *branch) Reset() {
	b.active = 0
	for _, n := range b.nodes {
		n.Reset()
	}
}

func (b *branch) save(kind string) *NodeState {
	s := &NodeState{Kind: kind, Active: b.active}
	for _, n := range b.nodes {
		s.Children = append(s.Children, n.Save())
	}
	return s
}

func (b *branch) load(kind string, state *NodeState) error {
	if err := checkState(kind, len(b.nodes), state); err != nil {
		return err
	}
	// A finished sequence parks its cursor one past the end.
	if state.Active < 0 || len(b.nodes) < state.Active {
		return &BadState{Want: kind, Got: state.Kind}
	}
	for i, n := range b.nodes {
		if err := n.Load(state.Children[i]); err != nil {
			return err
		}
	}
	b.active = state.Active
	return nil
}

// MarkovNode runs its children with Markov priority: as long as the
// active child makes progress it stays active, and whenever it runs
// dry the whole branch is reset and scanned again from the first
// child.  The branch is exhausted only when no child can progress
// even from a fresh state.
type MarkovNode struct {
	branch
}

// NewMarkov builds a Markov branch over the given children.
func NewMarkov(children ...Node) (*MarkovNode, error) {
	if len(children) == 0 {
		return nil, &EmptyBranch{Kind: "markov"}
	}
	return &MarkovNode{branch{nodes: children}}, nil
}

func (m *MarkovNode) Kind() string { return "markov" }

func (m *MarkovNode) Go(ctx *Context) bool {
	ctx.Push(m.seg)
	defer ctx.Pop()

	if m.active < len(m.nodes) && m.nodes[m.active].Go(ctx) {
		return true
	}

	// The active child ran dry.  Reset everything and hand control
	// back to the highest-priority child that can still act.
	for _, n := range m.nodes {
		n.Reset()
	}
	m.active = 0
	for i, n := range m.nodes {
		if n.Go(ctx) {
			m.active = i
			return true
		}
	}
	return false
}

func (m *MarkovNode) Save() *NodeState            { return m.save("markov") }
func (m *MarkovNode) Load(state *NodeState) error { return m.load("markov", state) }

// SequenceNode runs its children in order, one at a time.  When the
// current child is exhausted the cursor moves on and never comes
// back; the branch is exhausted when the cursor runs off the end.
type SequenceNode struct {
	branch
}

// NewSequence builds a Sequence branch over the given children.
func NewSequence(children ...Node) (*SequenceNode, error) {
	if len(children) == 0 {
		return nil, &EmptyBranch{Kind: "sequence"}
	}
	return &SequenceNode{branch{nodes: children}}, nil
}

func (s *SequenceNode) Kind() string { return "sequence" }

func (s *SequenceNode) Go(ctx *Context) bool {
	ctx.Push(s.seg)
	defer ctx.Pop()

	for s.active < len(s.nodes) {
		if s.nodes[s.active].Go(ctx) {
			return true
		}
		s.active++
	}
	return false
}

func (s *SequenceNode) Save() *NodeState            { return s.save("sequence") }
func (s *SequenceNode) Load(state *NodeState) error { return s.load("sequence", state) }
