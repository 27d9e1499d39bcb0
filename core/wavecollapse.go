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

// Propagation directions for the overlap model: +X, +Y, -X, -Y.
var (
	wcDX       = []int{1, 0, -1, 0}
	wcDY       = []int{0, 1, 0, -1}
	wcOpposite = []int{2, 3, 0, 1}
)

// WaveCollapseNode synthesizes a region with the overlapping-pattern
// wave function collapse model.  It learns NxN patterns from a 2D
// sample, then repeatedly observes the least-constrained cell and
// propagates adjacency constraints.  Each observation is one atomic
// application; when every cell is decided the result is written to
// the grid in a final application.  A contradiction exhausts the node
// without touching the grid.
//
// The model is 2D: the grid must have MZ == 1.
type WaveCollapseNode struct {
	seg string

	n        int
	periodic bool
	patterns [][]byte
	weights  []float64

	// propagator[d][t] lists the patterns allowed next to pattern t
	// in direction d.
	propagator [4][][]int

	// allowed maps each grid value to the wave of pattern first-cell
	// values it admits.  Values absent from the map admit anything.
	allowed map[byte]uint32

	// Run state.  moves records each observation as (cell, chosen
	// pattern) so a checkpoint restore can replay the collapse.
	wave       []bool
	compatible []int
	remaining  []int
	stack      [][2]int
	moves      [][2]int
	observed   int
	started    bool
	done       bool
	failed     bool
}

// NewWaveCollapse builds an overlap-model node from a sample: values
// laid out row-major in an smx by smy rectangle.  Patterns are
// learned from every NxN window (toroidally when periodicInput),
// expanded under the symmetry subgroup, weighted by frequency.
func NewWaveCollapse(n int, sample []byte, smx, smy int, periodicInput, periodic bool, symmetry rule.Subgroup, allowed map[byte]uint32) (*WaveCollapseNode, error) {
	if n < 2 || 5 < n {
		return nil, &BadConfig{Kind: "wfc", Problem: "pattern size out of range"}
	}
	if len(sample) != smx*smy || smx < n || smy < n {
		return nil, &BadConfig{Kind: "wfc", Problem: "sample doesn't fit its stated dimensions"}
	}

	w := &WaveCollapseNode{n: n, periodic: periodic, allowed: allowed}

	// Learn patterns and weights.  Indexing patterns by content
	// keeps the discovery order stable.
	index := map[string]int{}
	extract := func(x, y int) []byte {
		p := make([]byte, n*n)
		for dy := 0; dy < n; dy++ {
			for dx := 0; dx < n; dx++ {
				p[dx+dy*n] = sample[(x+dx)%smx+((y+dy)%smy)*smx]
			}
		}
		return p
	}
	xmax, ymax := smx, smy
	if !periodicInput {
		xmax, ymax = smx-n+1, smy-n+1
	}
	mask := symmetry.Mask()
	for y := 0; y < ymax; y++ {
		for x := 0; x < xmax; x++ {
			variants := [8][]byte{}
			variants[0] = extract(x, y)
			variants[1] = reflectBytes(variants[0], n)
			variants[2] = rotateBytes(variants[0], n)
			variants[3] = reflectBytes(variants[2], n)
			variants[4] = rotateBytes(variants[2], n)
			variants[5] = reflectBytes(variants[4], n)
			variants[6] = rotateBytes(variants[4], n)
			variants[7] = reflectBytes(variants[6], n)
			for i, v := range variants {
				if !mask[i] {
					continue
				}
				if t, seen := index[string(v)]; seen {
					w.weights[t]++
				} else {
					index[string(v)] = len(w.patterns)
					w.patterns = append(w.patterns, v)
					w.weights = append(w.weights, 1)
				}
			}
		}
	}

	for d := 0; d < 4; d++ {
		w.propagator[d] = make([][]int, len(w.patterns))
		for t1 := range w.patterns {
			for t2 := range w.patterns {
				if agrees(w.patterns[t1], w.patterns[t2], wcDX[d], wcDY[d], n) {
					w.propagator[d][t1] = append(w.propagator[d][t1], t2)
				}
			}
		}
	}
	return w, nil
}

func rotateBytes(p []byte, n int) []byte {
	q := make([]byte, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			q[x+y*n] = p[(n-1-y)+x*n]
		}
	}
	return q
}

func reflectBytes(p []byte, n int) []byte {
	q := make([]byte, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			q[x+y*n] = p[(n-1-x)+y*n]
		}
	}
	return q
}

// agrees reports whether two patterns match on the cells where they
// overlap when the second is offset by (dx,dy).
func agrees(p1, p2 []byte, dx, dy, n int) bool {
	xmin, xmax := 0, n
	if dx < 0 {
		xmax = dx + n
	} else {
		xmin = dx
	}
	ymin, ymax := 0, n
	if dy < 0 {
		ymax = dy + n
	} else {
		ymin = dy
	}
	for y := ymin; y < ymax; y++ {
		for x := xmin; x < xmax; x++ {
			if p1[x+y*n] != p2[(x-dx)+(y-dy)*n] {
				return false
			}
		}
	}
	return true
}

func (w *WaveCollapseNode) Kind() string        { return "wfc" }
func (w *WaveCollapseNode) Children() []Node    { return nil }
func (w *WaveCollapseNode) segment() string     { return w.seg }
func (w *WaveCollapseNode) setSegment(s string) { w.seg = s }

func (w *WaveCollapseNode) Reset() {
	w.wave = nil
	w.compatible = nil
	w.remaining = nil
	w.stack = nil
	w.moves = nil
	w.observed = 0
	w.started = false
	w.done = false
	w.failed = false
}

func (w *WaveCollapseNode) Save() *NodeState {
	// The wave arrays aren't serialized.  The recorded moves are:
	// replaying them against the restored grid rebuilds the wave
	// exactly, since startup bans and propagation are deterministic.
	return &NodeState{
		Kind:    "wfc",
		Done:    w.done,
		Seeded:  w.started,
		Counter: w.observed,
		Moves:   append([][2]int(nil), w.moves...),
	}
}

func (w *WaveCollapseNode) Load(state *NodeState) error {
	if err := checkState("wfc", 0, state); err != nil {
		return err
	}
	w.Reset()
	w.done = state.Done
	w.moves = append([][2]int(nil), state.Moves...)
	return nil
}

// RestoreCollapse rebuilds the wave of a mid-run node by replaying
// the loaded moves against the restored grid.  The node is left
// untouched when the replay fails.  Checkpoint restore calls this
// when the saved node had started but not yet written its result.
func (w *WaveCollapseNode) RestoreCollapse(g *grid.Grid) error {
	scratch := *w
	if err := scratch.replay(g); err != nil {
		return err
	}
	*w = scratch
	return nil
}

// CheckCollapse reports whether a recorded move list can be replayed
// against g, without touching the node.
func (w *WaveCollapseNode) CheckCollapse(g *grid.Grid, moves [][2]int) error {
	scratch := *w
	scratch.moves = append([][2]int(nil), moves...)
	return scratch.replay(g)
}

func (w *WaveCollapseNode) replay(g *grid.Grid) error {
	moves := w.moves
	w.moves = nil
	p := len(w.patterns)

	w.started = true
	if !w.start(g) {
		return &BadCollapse{Problem: "restored grid contradicts the constraints"}
	}
	for _, m := range moves {
		cell, chosen := m[0], m[1]
		if cell < 0 || len(w.remaining) <= cell || chosen < 0 || p <= chosen || !w.wave[cell*p+chosen] {
			return &BadCollapse{Problem: "recorded observation doesn't fit the restored wave"}
		}
		for t := 0; t < p; t++ {
			if w.wave[cell*p+t] && t != chosen {
				w.ban(cell, t)
			}
		}
		w.observed++
		if !w.propagate(g) {
			return &BadCollapse{Problem: "recorded observation contradicts the restored wave"}
		}
	}
	w.moves = moves
	return nil
}

// offLimits reports whether a cell can't anchor a pattern in
// non-periodic mode.
func (w *WaveCollapseNode) offLimits(g *grid.Grid, i int) bool {
	if w.periodic {
		return false
	}
	x, y := i%g.MX, i/g.MX
	return g.MX < x+w.n || g.MY < y+w.n
}

func (w *WaveCollapseNode) ban(i, t int) {
	p := len(w.patterns)
	w.wave[i*p+t] = false
	for d := 0; d < 4; d++ {
		w.compatible[(i*p+t)*4+d] = 0
	}
	w.stack = append(w.stack, [2]int{i, t})
	w.remaining[i]--
}

// propagate runs arc consistency from the banned-pattern stack.
// Returns false on contradiction: some cell with no pattern left.
func (w *WaveCollapseNode) propagate(g *grid.Grid) bool {
	p := len(w.patterns)
	for len(w.stack) > 0 {
		top := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		i1, t1 := top[0], top[1]
		x1, y1 := i1%g.MX, i1/g.MX

		for d := 0; d < 4; d++ {
			x2, y2 := x1+wcDX[d], y1+wcDY[d]
			if w.periodic {
				x2, y2 = wrap(x2, g.MX), wrap(y2, g.MY)
			} else if x2 < 0 || y2 < 0 || g.MX < x2+w.n || g.MY < y2+w.n {
				continue
			}
			i2 := x2 + y2*g.MX
			for _, t2 := range w.propagator[d][t1] {
				c := &w.compatible[(i2*p+t2)*4+d]
				*c--
				if *c == 0 && w.wave[i2*p+t2] {
					w.ban(i2, t2)
				}
			}
		}
	}
	for i := range w.remaining {
		if w.remaining[i] == 0 && !w.offLimits(g, i) {
			return false
		}
	}
	return true
}

// start initializes the wave over the grid and applies the value
// constraints.  Returns false on immediate contradiction.
func (w *WaveCollapseNode) start(g *grid.Grid) bool {
	p := len(w.patterns)
	cells := len(g.State)
	w.wave = make([]bool, cells*p)
	w.compatible = make([]int, cells*p*4)
	w.remaining = make([]int, cells)
	w.stack = nil
	w.observed = 0

	for i := 0; i < cells; i++ {
		w.remaining[i] = p
		for t := 0; t < p; t++ {
			w.wave[i*p+t] = true
			for d := 0; d < 4; d++ {
				w.compatible[(i*p+t)*4+d] = len(w.propagator[wcOpposite[d]][t])
			}
		}
	}

	for i := 0; i < cells; i++ {
		if w.offLimits(g, i) {
			continue
		}
		admits, constrained := w.allowed[g.State[i]]
		if !constrained {
			continue
		}
		for t := 0; t < p; t++ {
			if w.wave[i*p+t] && admits&(1<<w.patterns[t][0]) == 0 {
				w.ban(i, t)
			}
		}
	}
	return w.propagate(g)
}

// observe collapses the cell with the fewest remaining patterns to a
// weighted random choice.  Returns false when every cell is decided.
func (w *WaveCollapseNode) observe(ctx *Context) bool {
	g := ctx.Grid
	p := len(w.patterns)

	argmin, min := -1, p+1
	var ties []int
	for i := range w.remaining {
		if w.offLimits(g, i) || w.remaining[i] <= 1 {
			continue
		}
		if w.remaining[i] < min {
			min, argmin = w.remaining[i], i
			ties = ties[:0]
			ties = append(ties, i)
		} else if w.remaining[i] == min {
			ties = append(ties, i)
		}
	}
	if argmin < 0 {
		return false
	}
	cell := ties[ctx.Random.Intn(len(ties))]

	total := 0.0
	for t := 0; t < p; t++ {
		if w.wave[cell*p+t] {
			total += w.weights[t]
		}
	}
	chosen := -1
	threshold := ctx.Random.Float64() * total
	acc := 0.0
	for t := 0; t < p; t++ {
		if !w.wave[cell*p+t] {
			continue
		}
		acc += w.weights[t]
		chosen = t
		if threshold <= acc {
			break
		}
	}
	for t := 0; t < p; t++ {
		if w.wave[cell*p+t] && t != chosen {
			w.ban(cell, t)
		}
	}
	w.moves = append(w.moves, [2]int{cell, chosen})
	w.observed++
	return true
}

// write renders the collapsed wave into the grid: each cell takes the
// value its surviving patterns put there, by majority vote.
func (w *WaveCollapseNode) write(ctx *Context) {
	g := ctx.Grid
	p := len(w.patterns)
	mark := len(g.Changed())

	votes := make([][]int, len(g.State))
	for i := range votes {
		votes[i] = make([]int, g.C())
	}
	for i := range g.State {
		x, y := i%g.MX, i/g.MX
		for t := 0; t < p; t++ {
			if !w.wave[i*p+t] {
				continue
			}
			for dy := 0; dy < w.n; dy++ {
				for dx := 0; dx < w.n; dx++ {
					cell := wrap(x+dx, g.MX) + wrap(y+dy, g.MY)*g.MX
					v := w.patterns[t][dx+dy*w.n]
					if int(v) < g.C() {
						votes[cell][v]++
					}
				}
			}
		}
	}
	for i, v := range votes {
		best, arg := -1.0, byte(0)
		for c, n := range v {
			noisy := float64(n) + 0.1*ctx.Random.Float64()
			if best < noisy {
				best, arg = noisy, byte(c)
			}
		}
		co := g.Coord(i)
		g.Set(co.X, co.Y, co.Z, arg)
	}
	ctx.Emit("wfc", g.Changed()[mark:])
}

func (w *WaveCollapseNode) Go(ctx *Context) bool {
	ctx.Push(w.seg)
	defer ctx.Pop()

	if w.done || !ctx.Grid.Is2D() {
		return false
	}
	if !w.started {
		w.started = true
		if !w.start(ctx.Grid) {
			w.done, w.failed = true, true
			return false
		}
		return true
	}
	if w.observe(ctx) {
		ctx.Emit("observe", nil)
		if !w.propagate(ctx.Grid) {
			w.done, w.failed = true, true
			return false
		}
		return true
	}

	// Fully collapsed.
	w.write(ctx)
	w.done = true
	return true
}

// Failed reports whether the last run ended in a contradiction.
func (w *WaveCollapseNode) Failed() bool {
	return w.failed
}
