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
	"math"

	"github.com/rulegrid/rulegrid/grid"
	"github.com/rulegrid/rulegrid/rule"
)

// ConvChainNode grows a binary texture that statistically resembles a
// sample, by Metropolis-Hastings sampling over NxN pattern weights
// learned from the sample.  It works on 2D grids (or one layer of a
// 3D grid's first plane).
//
// The first Go call seeds: every cell currently holding the substrate
// value is flipped to C0 or C1 at random and marked writable.  Each
// later call is one sweep of len(state) proposed single-cell flips.
// Every call is one atomic application.
type ConvChainNode struct {
	seg string

	n           int
	temperature float64
	weights     []float64
	c0, c1      byte
	substColor  byte
	steps       int

	counter   int
	substrate []bool
}

// LearnWeights counts every NxN window of a periodic boolean sample,
// expanded under the given symmetry subgroup, into a weight table
// indexed by pattern bitmask.  Unseen patterns get a small floor
// weight so acceptance ratios stay finite.
func LearnWeights(sample []bool, smx, smy, n int, symmetry rule.Subgroup) []float64 {
	weights := make([]float64, 1<<uint(n*n))
	mask := symmetry.Mask()

	for y := 0; y < smy; y++ {
		for x := 0; x < smx; x++ {
			pattern := make([]bool, n*n)
			for dy := 0; dy < n; dy++ {
				for dx := 0; dx < n; dx++ {
					pattern[dx+dy*n] = sample[(x+dx)%smx+((y+dy)%smy)*smx]
				}
			}

			variants := [8][]bool{}
			variants[0] = pattern
			variants[1] = reflectPattern(variants[0], n)
			variants[2] = rotatePattern(variants[0], n)
			variants[3] = reflectPattern(variants[2], n)
			variants[4] = rotatePattern(variants[2], n)
			variants[5] = reflectPattern(variants[4], n)
			variants[6] = rotatePattern(variants[4], n)
			variants[7] = reflectPattern(variants[6], n)
			for i, v := range variants {
				if mask[i] {
					weights[patternIndex(v)]++
				}
			}
		}
	}

	for i, w := range weights {
		if w <= 0 {
			weights[i] = 0.1
		}
	}
	return weights
}

func rotatePattern(p []bool, n int) []bool {
	q := make([]bool, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			q[x+y*n] = p[(n-1-y)+x*n]
		}
	}
	return q
}

func reflectPattern(p []bool, n int) []bool {
	q := make([]bool, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			q[x+y*n] = p[(n-1-x)+y*n]
		}
	}
	return q
}

func patternIndex(p []bool) int {
	ind := 0
	for i, b := range p {
		if b {
			ind |= 1 << uint(i)
		}
	}
	return ind
}

// NewConvChain builds a ConvChain node from a learned weight table.
// A steps cap of zero means the node never reports exhaustion on its
// own; cap it or run it under a step budget.
func NewConvChain(n int, temperature float64, weights []float64, c0, c1, substrateColor byte, steps int) (*ConvChainNode, error) {
	if n < 1 || 5 < n {
		return nil, &BadConfig{Kind: "convchain", Problem: "pattern size out of range"}
	}
	if len(weights) != 1<<uint(n*n) {
		return nil, &BadConfig{Kind: "convchain", Problem: "weight table size doesn't match pattern size"}
	}
	if temperature <= 0 {
		temperature = 1
	}
	return &ConvChainNode{
		n:           n,
		temperature: temperature,
		weights:     weights,
		c0:          c0,
		c1:          c1,
		substColor:  substrateColor,
		steps:       steps,
	}, nil
}

func (c *ConvChainNode) Kind() string        { return "convchain" }
func (c *ConvChainNode) Children() []Node    { return nil }
func (c *ConvChainNode) segment() string     { return c.seg }
func (c *ConvChainNode) setSegment(s string) { c.seg = s }

func (c *ConvChainNode) Reset() {
	c.counter = 0
	c.substrate = nil
}

func (c *ConvChainNode) Save() *NodeState {
	return &NodeState{Kind: "convchain", Counter: c.counter, Seeded: c.substrate != nil}
}

func (c *ConvChainNode) Load(state *NodeState) error {
	if err := checkState("convchain", 0, state); err != nil {
		return err
	}
	c.counter = state.Counter
	if !state.Seeded {
		c.substrate = nil
	}
	return nil
}

// RestoreSubstrate re-marks the writable cells from a restored grid:
// every cell holding C0 or C1 is treated as substrate.  Checkpoint
// restore calls this when the saved node had already seeded.
func (c *ConvChainNode) RestoreSubstrate(g *grid.Grid) {
	c.substrate = make([]bool, len(g.State))
	for i, v := range g.State {
		if v == c.c0 || v == c.c1 {
			c.substrate[i] = true
		}
	}
}

// index computes the pattern bitmask of the NxN window anchored at
// (sx,sy), toroidally.
func (c *ConvChainNode) index(g *grid.Grid, sx, sy int) int {
	ind := 0
	for dy := 0; dy < c.n; dy++ {
		for dx := 0; dx < c.n; dx++ {
			x := wrap(sx+dx, g.MX)
			y := wrap(sy+dy, g.MY)
			if g.State[x+y*g.MX] == c.c1 {
				ind |= 1 << uint(dy*c.n+dx)
			}
		}
	}
	return ind
}

func (c *ConvChainNode) toggle(g *grid.Grid, i int) {
	co := g.Coord(i)
	if g.State[i] == c.c0 {
		g.Set(co.X, co.Y, co.Z, c.c1)
	} else {
		g.Set(co.X, co.Y, co.Z, c.c0)
	}
}

func (c *ConvChainNode) Go(ctx *Context) bool {
	ctx.Push(c.seg)
	defer ctx.Pop()

	if 0 < c.steps && c.steps <= c.counter {
		return false
	}
	g := ctx.Grid
	mark := len(g.Changed())

	if c.substrate == nil {
		c.substrate = make([]bool, len(g.State))
		any := false
		for i, v := range g.State {
			if v != c.substColor {
				continue
			}
			co := g.Coord(i)
			if ctx.Random.Intn(2) == 0 {
				g.Set(co.X, co.Y, co.Z, c.c0)
			} else {
				g.Set(co.X, co.Y, co.Z, c.c1)
			}
			c.substrate[i] = true
			any = true
		}
		if !any {
			return false
		}
		ctx.Emit("convchain", g.Changed()[mark:])
		c.counter++
		return true
	}

	for k := 0; k < len(g.State); k++ {
		r := ctx.Random.Intn(len(g.State))
		if !c.substrate[r] {
			continue
		}
		x, y := r%g.MX, (r/g.MX)%g.MY

		// Acceptance ratio over every window that covers the cell.
		q := 1.0
		for sy := y - c.n + 1; sy <= y+c.n-1; sy++ {
			for sx := x - c.n + 1; sx <= x+c.n-1; sx++ {
				ind := c.index(g, sx, sy)

				// Bit of (x,y) within this window.
				difference := 0
				for dy := 0; dy < c.n && difference == 0; dy++ {
					for dx := 0; dx < c.n; dx++ {
						if wrap(sx+dx, g.MX) == x && wrap(sy+dy, g.MY) == y {
							power := 1 << uint(dy*c.n+dx)
							if g.State[r] == c.c1 {
								difference = power
							} else {
								difference = -power
							}
							break
						}
					}
				}

				if c.weights[ind] > 0 {
					q *= c.weights[ind-difference] / c.weights[ind]
				}
			}
		}

		if q >= 1 {
			c.toggle(g, r)
			continue
		}
		if c.temperature != 1 {
			q = math.Pow(q, 1/c.temperature)
		}
		if q > ctx.Random.Float64() {
			c.toggle(g, r)
		}
	}

	ctx.Emit("convchain", g.Changed()[mark:])
	c.counter++
	return true
}
