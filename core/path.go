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

// PathNode connects regions: it runs a breadth-first search from
// every finish cell across substrate cells, picks a start cell by
// route length (shortest by default, longest with Longest), and
// writes Value along the route.  One drawn route is one atomic
// application.  The node itself is stateless; it is exhausted
// whenever no route exists in the grid's current state.
type PathNode struct {
	seg string

	start     uint32
	finish    uint32
	substrate uint32
	value     byte

	// Inertia prefers continuing in the previous direction while
	// tracing.  Edges admits in-plane diagonal moves, Vertices
	// admits full 3D corner moves.
	Inertia  bool
	Longest  bool
	Edges    bool
	Vertices bool
}

// NewPath builds a path node.  The three waves name which cell
// values count as route starts, route targets, and traversable
// substrate.
func NewPath(start, finish, substrate uint32, value byte) (*PathNode, error) {
	switch {
	case start == 0:
		return nil, &BadConfig{Kind: "path", Problem: "empty start wave"}
	case finish == 0:
		return nil, &BadConfig{Kind: "path", Problem: "empty finish wave"}
	case substrate == 0:
		return nil, &BadConfig{Kind: "path", Problem: "empty substrate wave"}
	}
	return &PathNode{start: start, finish: finish, substrate: substrate, value: value}, nil
}

func (p *PathNode) Kind() string        { return "path" }
func (p *PathNode) Children() []Node    { return nil }
func (p *PathNode) Reset()              {}
func (p *PathNode) segment() string     { return p.seg }
func (p *PathNode) setSegment(s string) { p.seg = s }

func (p *PathNode) Save() *NodeState { return &NodeState{Kind: "path"} }

func (p *PathNode) Load(state *NodeState) error {
	return checkState("path", 0, state)
}

func (p *PathNode) Go(ctx *Context) bool {
	ctx.Push(p.seg)
	defer ctx.Pop()

	g := ctx.Grid

	// Distance from each cell to the nearest finish cell, -1 for
	// unreached.
	generations := make([]int, len(g.State))
	for i := range generations {
		generations[i] = -1
	}

	type pos struct{ x, y, z int }
	var frontier []pos
	var starts []pos

	for z := 0; z < g.MZ; z++ {
		for y := 0; y < g.MY; y++ {
			for x := 0; x < g.MX; x++ {
				i := g.Index(x, y, z)
				v := g.State[i]
				if p.start&(1<<v) != 0 {
					starts = append(starts, pos{x, y, z})
				}
				if p.finish&(1<<v) != 0 {
					generations[i] = 0
					frontier = append(frontier, pos{x, y, z})
				}
			}
		}
	}
	if len(starts) == 0 || len(frontier) == 0 {
		return false
	}

	for len(frontier) > 0 {
		q := frontier[0]
		frontier = frontier[1:]
		t := generations[g.Index(q.x, q.y, q.z)]
		for _, d := range p.directions(g, q.x, q.y, q.z) {
			nx, ny, nz := q.x+d.x, q.y+d.y, q.z+d.z
			i := g.Index(nx, ny, nz)
			v := g.State[i]
			if generations[i] != -1 {
				continue
			}
			if p.substrate&(1<<v) == 0 && p.start&(1<<v) == 0 {
				continue
			}
			generations[i] = t + 1
			// Start cells terminate routes; the search doesn't
			// continue through them.
			if p.substrate&(1<<v) != 0 {
				frontier = append(frontier, pos{nx, ny, nz})
			}
		}
	}

	// Pick the start with the shortest (or longest) route.  A dash
	// of noise breaks ties randomly without disturbing the
	// ordering of distinct route lengths.
	local := NewRandom(ctx.Random.Uint64())
	minGen, maxGen := float64(len(g.State)), -2.0
	argmin, argmax := pos{-1, -1, -1}, pos{-1, -1, -1}
	reachable := false
	for _, s := range starts {
		gen := generations[g.Index(s.x, s.y, s.z)]
		if gen <= 0 {
			continue
		}
		reachable = true
		noisy := float64(gen) + 0.1*local.Float64()
		if noisy < minGen {
			minGen, argmin = noisy, s
		}
		if noisy > maxGen {
			maxGen, argmax = noisy, s
		}
	}
	if !reachable {
		return false
	}

	pen := argmin
	if p.Longest {
		pen = argmax
	}

	mark := len(g.Changed())
	dir := p.descend(g, generations, pen, pos{}, local)
	pen = pos{pen.x + dir.x, pen.y + dir.y, pen.z + dir.z}
	for generations[g.Index(pen.x, pen.y, pen.z)] != 0 {
		g.Set(pen.x, pen.y, pen.z, p.value)
		dir = p.descend(g, generations, pen, dir, local)
		if dir == (pos{}) {
			break
		}
		pen = pos{pen.x + dir.x, pen.y + dir.y, pen.z + dir.z}
	}

	ctx.Emit("path", g.Changed()[mark:])
	return true
}

// directions lists the legal moves from (x,y,z): the in-bounds axis
// moves, plus diagonals under Edges and corner moves under Vertices.
func (p *PathNode) directions(g *grid.Grid, x, y, z int) []struct{ x, y, z int } {
	type d = struct{ x, y, z int }
	var ds []d
	add := func(dx, dy, dz int) {
		if g.Index(x+dx, y+dy, z+dz) >= 0 {
			ds = append(ds, d{dx, dy, dz})
		}
	}
	add(-1, 0, 0)
	add(1, 0, 0)
	add(0, -1, 0)
	add(0, 1, 0)
	if !g.Is2D() {
		add(0, 0, -1)
		add(0, 0, 1)
	}
	if p.Edges {
		add(-1, -1, 0)
		add(-1, 1, 0)
		add(1, -1, 0)
		add(1, 1, 0)
		if !g.Is2D() {
			add(-1, 0, -1)
			add(-1, 0, 1)
			add(1, 0, -1)
			add(1, 0, 1)
			add(0, -1, -1)
			add(0, -1, 1)
			add(0, 1, -1)
			add(0, 1, 1)
		}
	}
	if p.Vertices && !g.Is2D() {
		add(-1, -1, -1)
		add(-1, -1, 1)
		add(-1, 1, -1)
		add(-1, 1, 1)
		add(1, -1, -1)
		add(1, -1, 1)
		add(1, 1, -1)
		add(1, 1, 1)
	}
	return ds
}

// descend picks the next move from cur: any neighbor one generation
// closer to a finish cell, preferring the previous direction under
// Inertia, otherwise uniformly at random.
func (p *PathNode) descend(g *grid.Grid, generations []int, cur, prev struct{ x, y, z int }, local *Random) struct{ x, y, z int } {
	type d = struct{ x, y, z int }
	gen := generations[g.Index(cur.x, cur.y, cur.z)]

	if p.Inertia && prev != (d{}) {
		i := g.Index(cur.x+prev.x, cur.y+prev.y, cur.z+prev.z)
		if i >= 0 && generations[i] == gen-1 {
			return prev
		}
	}

	var candidates []d
	for _, dd := range p.directions(g, cur.x, cur.y, cur.z) {
		if generations[g.Index(cur.x+dd.x, cur.y+dd.y, cur.z+dd.z)] == gen-1 {
			candidates = append(candidates, dd)
		}
	}
	if len(candidates) == 0 {
		return d{}
	}
	return candidates[local.Intn(len(candidates))]
}
