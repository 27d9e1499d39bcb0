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

import (
	"github.com/rulegrid/rulegrid/grid"
	"github.com/rulegrid/rulegrid/rule"
)

// match is one place a rule fits: rule index plus anchor coordinate.
type match struct {
	r       int
	x, y, z int
}

// ruleNode is the shared body of OneNode and AllNode: a symmetry-
// expanded rule set with an optional application cap.
type ruleNode struct {
	seg     string
	rules   []*rule.Rule
	steps   int
	counter int
}

func (rn *ruleNode) Children() []Node    { return nil }
func (rn *ruleNode) segment() string     { return rn.seg }
func (rn *ruleNode) setSegment(s string) { rn.seg = s }

func (rn *ruleNode) Reset() {
	rn.counter = 0
}

func (rn *ruleNode) ruleStrings() []string {
	ss := make([]string, len(rn.rules))
	for i, r := range rn.rules {
		ss[i] = r.String()
	}
	return ss
}

func (rn *ruleNode) save(kind string) *NodeState {
	return &NodeState{Kind: kind, Counter: rn.counter}
}

func (rn *ruleNode) load(kind string, state *NodeState) error {
	if err := checkState(kind, 0, state); err != nil {
		return err
	}
	rn.counter = state.Counter
	return nil
}

// findMatches scans the whole grid for every position where any rule
// both fits in bounds and matches.  The scan order is fixed (rule
// index, then z, y, x) so that runs are reproducible.
func (rn *ruleNode) findMatches(g *grid.Grid) []match {
	var ms []match
	for ri, r := range rn.rules {
		for z := 0; z <= g.MZ-r.IMZ; z++ {
			for y := 0; y <= g.MY-r.IMY; y++ {
				for x := 0; x <= g.MX-r.IMX; x++ {
					if r.Matches(g, x, y, z) {
						ms = append(ms, match{r: ri, x: x, y: y, z: z})
					}
				}
			}
		}
	}
	return ms
}

// apply writes a rule's output at the anchor, skipping wildcard
// cells, and returns the cells whose values actually changed.
func (rn *ruleNode) apply(g *grid.Grid, m match) []grid.Coord {
	r := rn.rules[m.r]
	mark := len(g.Changed())
	for dz := 0; dz < r.IMZ; dz++ {
		for dy := 0; dy < r.IMY; dy++ {
			for dx := 0; dx < r.IMX; dx++ {
				v := r.Output[dx+dy*r.IMX+dz*r.IMX*r.IMY]
				if v == grid.Wildcard {
					continue
				}
				g.Set(m.x+dx, m.y+dy, m.z+dz, v)
			}
		}
	}
	return g.Changed()[mark:]
}

// OneNode applies exactly one rule per Go call, at a match chosen
// uniformly at random over all matches of all its rules.
type OneNode struct {
	ruleNode
}

// NewOne builds a One node over a symmetry-expanded rule set.  A
// steps cap of zero means uncapped.
func NewOne(rules []*rule.Rule, steps int) (*OneNode, error) {
	if len(rules) == 0 {
		return nil, &EmptyRuleSet{Kind: "one"}
	}
	return &OneNode{ruleNode{rules: rules, steps: steps}}, nil
}

func (o *OneNode) Kind() string { return "one" }

func (o *OneNode) Go(ctx *Context) bool {
	ctx.Push(o.seg)
	defer ctx.Pop()

	if 0 < o.steps && o.steps <= o.counter {
		return false
	}
	ms := o.findMatches(ctx.Grid)
	if len(ms) == 0 {
		return false
	}
	m := ms[ctx.Random.Intn(len(ms))]
	cells := o.apply(ctx.Grid, m)
	ctx.Emit(o.rules[m.r].Desc, cells)
	o.counter++
	return true
}

func (o *OneNode) Save() *NodeState            { return o.save("one") }
func (o *OneNode) Load(state *NodeState) error { return o.load("one", state) }

// AllNode applies a maximal non-conflicting set of matches in one Go
// call.  Matches are shuffled, then taken greedily: a match is kept
// if its output footprint doesn't overlap a footprint already
// claimed this call.  Each kept match is one atomic application.
type AllNode struct {
	ruleNode
	mask []bool
}

// NewAll builds an All node over a symmetry-expanded rule set.  A
// steps cap of zero means uncapped; one Go call is one step.
func NewAll(rules []*rule.Rule, steps int) (*AllNode, error) {
	if len(rules) == 0 {
		return nil, &EmptyRuleSet{Kind: "all"}
	}
	return &AllNode{ruleNode: ruleNode{rules: rules, steps: steps}}, nil
}

func (a *AllNode) Kind() string { return "all" }

// claim reports whether m's non-wildcard output footprint is free in
// the mask, marking it claimed when it is.
func (a *AllNode) claim(g *grid.Grid, m match) bool {
	r := a.rules[m.r]
	for dz := 0; dz < r.IMZ; dz++ {
		for dy := 0; dy < r.IMY; dy++ {
			for dx := 0; dx < r.IMX; dx++ {
				if r.Output[dx+dy*r.IMX+dz*r.IMX*r.IMY] == grid.Wildcard {
					continue
				}
				if a.mask[g.Index(m.x+dx, m.y+dy, m.z+dz)] {
					return false
				}
			}
		}
	}
	for dz := 0; dz < r.IMZ; dz++ {
		for dy := 0; dy < r.IMY; dy++ {
			for dx := 0; dx < r.IMX; dx++ {
				if r.Output[dx+dy*r.IMX+dz*r.IMX*r.IMY] == grid.Wildcard {
					continue
				}
				a.mask[g.Index(m.x+dx, m.y+dy, m.z+dz)] = true
			}
		}
	}
	return true
}

func (a *AllNode) Go(ctx *Context) bool {
	ctx.Push(a.seg)
	defer ctx.Pop()

	if 0 < a.steps && a.steps <= a.counter {
		return false
	}
	ms := a.findMatches(ctx.Grid)
	if len(ms) == 0 {
		return false
	}

	g := ctx.Grid
	if len(a.mask) != len(g.State) {
		a.mask = make([]bool, len(g.State))
	} else {
		for i := range a.mask {
			a.mask[i] = false
		}
	}

	ctx.Random.Shuffle(len(ms), func(i, j int) {
		ms[i], ms[j] = ms[j], ms[i]
	})

	applied := false
	for _, m := range ms {
		if !ctx.Allow() {
			break
		}
		if !a.claim(g, m) {
			continue
		}
		cells := a.apply(g, m)
		ctx.Emit(a.rules[m.r].Desc, cells)
		applied = true
	}
	if applied {
		a.counter++
	}
	return applied
}

func (a *AllNode) Save() *NodeState            { return a.save("all") }
func (a *AllNode) Load(state *NodeState) error { return a.load("all", state) }
