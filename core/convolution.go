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

import "github.com/rulegrid/rulegrid/grid"

// Neighborhood kernels.  A kernel is a 3x3 (2D) or 3x3x3 (3D) weight
// array; the center entry is zero since a cell isn't its own
// neighbor.
var (
	KernelVonNeumann2D = []int{
		0, 1, 0,
		1, 0, 1,
		0, 1, 0,
	}
	KernelMoore2D = []int{
		1, 1, 1,
		1, 0, 1,
		1, 1, 1,
	}
	KernelVonNeumann3D = []int{
		0, 0, 0, 0, 1, 0, 0, 0, 0,
		0, 1, 0, 1, 0, 1, 0, 1, 0,
		0, 0, 0, 0, 1, 0, 0, 0, 0,
	}
	KernelNoCorners3D = []int{
		0, 1, 0, 1, 1, 1, 0, 1, 0,
		1, 1, 1, 1, 0, 1, 1, 1, 1,
		0, 1, 0, 1, 1, 1, 0, 1, 0,
	}
)

// Kernel2D and Kernel3D look up a kernel by name ("VonNeumann",
// "Moore", "NoCorners").
func Kernel2D(name string) ([]int, bool) {
	switch name {
	case "VonNeumann":
		return KernelVonNeumann2D, true
	case "Moore":
		return KernelMoore2D, true
	}
	return nil, false
}

func Kernel3D(name string) ([]int, bool) {
	switch name {
	case "VonNeumann":
		return KernelVonNeumann3D, true
	case "NoCorners":
		return KernelNoCorners3D, true
	}
	return nil, false
}

// ConvolutionRule rewrites a cell of value Input to Output when the
// weighted count of neighbors whose values are in the Values wave
// lands in Sums, with probability P.  A nil Sums means any count.
type ConvolutionRule struct {
	Input  byte
	Output byte
	Values uint32
	Sums   []bool
	P      float64
}

// ConvolutionNode runs cellular-automaton passes.  One Go call is
// one pass: neighbor counts are taken from the state at the start of
// the pass, then every cell is rewritten through the first rule that
// matches it.  A pass is one atomic application.
type ConvolutionNode struct {
	seg string

	rules    []ConvolutionRule
	kernel   []int
	periodic bool
	steps    int
	counter  int

	sumfield [][]int
}

// NewConvolution builds a convolution node.  The kernel length must
// fit the grid: 9 entries for 2D, 27 for 3D.  A steps cap of zero
// means uncapped, which only terminates if the rules reach a fixed
// point; but a pass that changes nothing reports exhaustion anyway.
func NewConvolution(rules []ConvolutionRule, kernel []int, periodic bool, steps int) (*ConvolutionNode, error) {
	if len(rules) == 0 {
		return nil, &EmptyRuleSet{Kind: "convolution"}
	}
	if len(kernel) != 9 && len(kernel) != 27 {
		return nil, &BadConfig{Kind: "convolution", Problem: "kernel must have 9 or 27 weights"}
	}
	for i := range rules {
		if rules[i].P == 0 {
			rules[i].P = 1
		}
	}
	return &ConvolutionNode{rules: rules, kernel: kernel, periodic: periodic, steps: steps}, nil
}

func (c *ConvolutionNode) Kind() string        { return "convolution" }
func (c *ConvolutionNode) Children() []Node    { return nil }
func (c *ConvolutionNode) segment() string     { return c.seg }
func (c *ConvolutionNode) setSegment(s string) { c.seg = s }

func (c *ConvolutionNode) Reset() {
	c.counter = 0
}

func (c *ConvolutionNode) Save() *NodeState {
	return &NodeState{Kind: "convolution", Counter: c.counter}
}

func (c *ConvolutionNode) Load(state *NodeState) error {
	if err := checkState("convolution", 0, state); err != nil {
		return err
	}
	c.counter = state.Counter
	return nil
}

// sums recomputes the per-cell neighbor counts from the grid's
// current state: sumfield[i][v] is the kernel-weighted count of
// neighbors of cell i holding value v.
func (c *ConvolutionNode) sums(g *grid.Grid) {
	n := len(g.State)
	if len(c.sumfield) != n {
		c.sumfield = make([][]int, n)
		for i := range c.sumfield {
			c.sumfield[i] = make([]int, g.C())
		}
	} else {
		for i := range c.sumfield {
			for v := range c.sumfield[i] {
				c.sumfield[i][v] = 0
			}
		}
	}

	// A 9-weight kernel counts within a single layer, even on a 3D
	// grid.
	zlo, zhi := -1, 1
	if g.Is2D() || len(c.kernel) == 9 {
		zlo, zhi = 0, 0
	}
	for z := 0; z < g.MZ; z++ {
		for y := 0; y < g.MY; y++ {
			for x := 0; x < g.MX; x++ {
				i := g.Index(x, y, z)
				for dz := zlo; dz <= zhi; dz++ {
					for dy := -1; dy <= 1; dy++ {
						for dx := -1; dx <= 1; dx++ {
							ki := (dx + 1) + (dy+1)*3
							if len(c.kernel) == 27 {
								ki += (dz + 1) * 9
							}
							w := c.kernel[ki]
							if w == 0 {
								continue
							}
							sx, sy, sz := x+dx, y+dy, z+dz
							if c.periodic {
								sx = wrap(sx, g.MX)
								sy = wrap(sy, g.MY)
								sz = wrap(sz, g.MZ)
							} else if g.Index(sx, sy, sz) < 0 {
								continue
							}
							c.sumfield[i][g.State[g.Index(sx, sy, sz)]] += w
						}
					}
				}
			}
		}
	}
}

func wrap(v, m int) int {
	if v < 0 {
		return v + m
	}
	if m <= v {
		return v - m
	}
	return v
}

func (c *ConvolutionNode) matches(ctx *Context, r *ConvolutionRule, i int) bool {
	if r.P < 1 && r.P <= ctx.Random.Float64() {
		return false
	}
	if r.Sums == nil {
		return true
	}
	total := 0
	for v := 0; v < len(c.sumfield[i]); v++ {
		if r.Values&(1<<uint(v)) != 0 {
			total += c.sumfield[i][v]
		}
	}
	return total < len(r.Sums) && r.Sums[total]
}

func (c *ConvolutionNode) Go(ctx *Context) bool {
	ctx.Push(c.seg)
	defer ctx.Pop()

	if 0 < c.steps && c.steps <= c.counter {
		return false
	}

	g := ctx.Grid
	c.sums(g)

	mark := len(g.Changed())
	change := false
	for i := range g.State {
		input := g.State[i]
		for ri := range c.rules {
			r := &c.rules[ri]
			if input != r.Input || r.Output == g.State[i] {
				continue
			}
			if c.matches(ctx, r, i) {
				co := g.Coord(i)
				g.Set(co.X, co.Y, co.Z, r.Output)
				change = true
				break
			}
		}
	}
	if !change {
		return false
	}
	ctx.Emit("convolution", g.Changed()[mark:])
	c.counter++
	return true
}
