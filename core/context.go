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
	"strings"

	"github.com/rulegrid/rulegrid/grid"
)

// StepInfo records one atomic rule application: where in the tree it
// happened, which rule fired, which cells it wrote, and the value of
// the global step counter when it fired.
type StepInfo struct {
	// Path is the dotted path of the node that applied the rule,
	// such as "markov[0].one[1]".
	Path string `json:"path"`

	// Rule describes the applied rule ("WB=WW") or the node's
	// operation for nodes that don't fire discrete rules ("path",
	// "convolution").
	Rule string `json:"rule,omitempty"`

	// Cells lists the cells whose values actually changed.
	Cells []grid.Coord `json:"cells,omitempty"`

	// Counter is the step counter at the time of application.
	Counter int `json:"counter"`
}

// Context is the mutable state threaded through node execution: the
// grid, the random stream, the global application counter, the
// current tree path, and the applications recorded during the current
// step.
type Context struct {
	Grid    *grid.Grid
	Random  *Random
	Counter int

	// Steps holds the StepInfo records emitted since the last
	// BeginStep.
	Steps []StepInfo

	path []string

	// remaining is the number of rule applications still allowed
	// in the current step_n window.  Negative means unlimited.
	remaining int
}

// NewContext returns a context over g with a stream seeded by seed.
func NewContext(g *grid.Grid, seed uint64) *Context {
	return &Context{
		Grid:      g,
		Random:    NewRandom(seed),
		remaining: -1,
	}
}

// BeginStep clears the per-step record: the emitted StepInfos and the
// grid's changed-cell log.
func (c *Context) BeginStep() {
	c.Steps = c.Steps[:0]
	c.path = c.path[:0]
	c.Grid.ClearChanged()
}

// Push appends a path segment.  Nodes push their segment on entry and
// pop on exit so that Emit sees the full path.
func (c *Context) Push(segment string) {
	c.path = append(c.path, segment)
}

// Pop removes the most recent path segment.
func (c *Context) Pop() {
	c.path = c.path[:len(c.path)-1]
}

// Path returns the current dotted path.
func (c *Context) Path() string {
	return strings.Join(c.path, ".")
}

// Allow reports whether another rule application fits the current
// budget window.  Nodes that apply several rules in one Go call check
// this before each application.
func (c *Context) Allow() bool {
	return c.remaining != 0
}

// Limit caps the number of applications Emit will admit.  A negative
// n means unlimited.
func (c *Context) Limit(n int) {
	c.remaining = n
}

// Emit records one atomic rule application and advances the step
// counter.  The cells slice is copied.
func (c *Context) Emit(rule string, cells []grid.Coord) {
	var cp []grid.Coord
	if 0 < len(cells) {
		cp = make([]grid.Coord, len(cells))
		copy(cp, cells)
	}
	c.Steps = append(c.Steps, StepInfo{
		Path:    c.Path(),
		Rule:    rule,
		Cells:   cp,
		Counter: c.Counter,
	})
	c.Counter++
	if 0 < c.remaining {
		c.remaining--
	}
}
