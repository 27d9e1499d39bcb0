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
	"context"

	"github.com/rulegrid/rulegrid/grid"
)

// Interpreter drives an execution tree against a grid.
//
// One Step is one Go call on the root: zero or more atomic rule
// applications.  StepN runs under an exact application budget.  A
// given seed, tree, and budget sequence always replays the same run.
type Interpreter struct {
	// Ctx is the execution state: grid, random stream, counter, and
	// the StepInfo records of the most recent step.
	Ctx *Context

	root Node
	seed uint64

	// Origin seeds the center cell with value 1 on Reset.
	Origin bool

	running bool
}

// NewInterpreter builds an interpreter over the tree rooted at root.
// The tree is validated (a real tree, no shared nodes) and every node
// gets its path segment.  The grid is taken as-is; call Reset to
// clear it and reseed.
func NewInterpreter(root Node, g *grid.Grid, seed uint64) (*Interpreter, error) {
	if err := assignSegments(root); err != nil {
		return nil, err
	}
	return &Interpreter{
		Ctx:     NewContext(g, seed),
		root:    root,
		seed:    seed,
		running: true,
	}, nil
}

// Root returns the tree's root node.
func (ip *Interpreter) Root() Node { return ip.root }

// Seed returns the seed of the current run.
func (ip *Interpreter) Seed() uint64 { return ip.seed }

// Running reports whether the tree can still make progress.  It
// turns false when a Step finds the root exhausted, and true again
// on Reset.
func (ip *Interpreter) Running() bool { return ip.running }

// SetRunning overrides the running flag; checkpoint restore uses it.
func (ip *Interpreter) SetRunning(running bool) { ip.running = running }

// Structure reports the shape of the execution tree.
func (ip *Interpreter) Structure() *Structure {
	return StructureOf(ip.root, "")
}

// Step runs the root once.  It returns false when the tree is
// exhausted: no node anywhere can make progress.  The StepInfo
// records of the step are left in ip.Ctx.Steps.
//
// The context is consulted between applications only at StepN
// granularity; a single Step is not interruptible.
func (ip *Interpreter) Step(ctx context.Context) bool {
	if !ip.running {
		return false
	}
	ip.Ctx.BeginStep()
	ip.Ctx.Limit(-1)
	ip.running = ip.root.Go(ip.Ctx)
	return ip.running
}

// StepN runs until exactly budget atomic rule applications have
// happened, or the tree exhausts first.  It returns the number of
// applications taken and whether the tree can still progress.
// StepInfo records accumulate in infos across the whole call.
func (ip *Interpreter) StepN(ctx context.Context, budget int) (taken int, alive bool, infos []StepInfo) {
	for taken < budget && ip.running {
		if err := ctx.Err(); err != nil {
			break
		}
		ip.Ctx.BeginStep()
		ip.Ctx.Limit(budget - taken)
		before := ip.Ctx.Counter
		ip.running = ip.root.Go(ip.Ctx)
		taken += ip.Ctx.Counter - before
		infos = append(infos, ip.Ctx.Steps...)
	}
	return taken, ip.running, infos
}

// Run steps until the tree exhausts or the context is done, and
// returns the total number of applications.
func (ip *Interpreter) Run(ctx context.Context) int {
	total := ip.Ctx.Counter
	for ip.running {
		if err := ctx.Err(); err != nil {
			break
		}
		ip.Step(ctx)
	}
	return ip.Ctx.Counter - total
}

// Reset restarts the run: the grid is cleared to value zero (plus the
// origin cell if Origin is set), the tree returns to its initial
// state, the counter zeroes, and the random stream reseeds.
func (ip *Interpreter) Reset(seed uint64) {
	ip.seed = seed
	ip.Ctx.Random.Seed(seed)
	ip.Ctx.Counter = 0
	ip.Ctx.Steps = nil
	ip.Ctx.Grid.Clear()
	if ip.Origin {
		g := ip.Ctx.Grid
		g.Set(g.MX/2, g.MY/2, g.MZ/2, 1)
	}
	ip.root.Reset()
	ip.running = true
}
