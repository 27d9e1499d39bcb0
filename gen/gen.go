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

// Package gen composes grid producers into scene trees.
//
// A Generator writes to a shared grid in increments: Init, some
// number of Step calls, then Teardown.  Sequential and Parallel
// combine generators; Scatter and Fill are primitive producers; the
// Interp generator adapts a core.Interpreter so a whole rule-
// rewriting model drops into a pipeline as one generator.
//
// Each generator has a dotted path in the scene tree, like
// "root.step_1.markov[0].one[0]", and every increment of work is
// recorded in a Registry queryable by path prefix.
package gen

import (
	"context"

	"go.uber.org/zap"

	"github.com/rulegrid/rulegrid/core"
	"github.com/rulegrid/rulegrid/grid"
)

// Context is the state shared by every generator in a scene tree.
type Context struct {
	Grid     *grid.Grid
	Random   *core.Random
	Registry *Registry
	Logger   *zap.Logger

	counter int
}

// NewContext returns a generator context over g.  The logger may be
// nil.
func NewContext(g *grid.Grid, seed uint64, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{
		Grid:     g,
		Random:   core.NewRandom(seed),
		Registry: NewRegistry(),
		Logger:   logger,
	}
}

// Emit records one increment of generator work in the registry.
func (gc *Context) Emit(path, op string, cells []grid.Coord) {
	gc.Registry.Record(core.StepInfo{
		Path:    path,
		Rule:    op,
		Cells:   cells,
		Counter: gc.counter,
	})
	gc.counter++
}

// Generator produces grid content in increments.
//
// Init prepares the generator against the shared context; Step does
// one increment of work and reports whether more remain; Teardown
// releases whatever Init claimed.  The context.Context is honored at
// increment granularity.
//
// The interface has unexported methods: the generator kinds are a
// closed set, composed rather than extended.
type Generator interface {
	Init(ctx context.Context, gc *Context) error
	Step(ctx context.Context, gc *Context) (bool, error)
	Teardown(ctx context.Context, gc *Context) error

	// Done reports whether the generator has finished all its work.
	Done() bool

	// Reset returns the generator to its pre-Init state.
	Reset()

	// Kind names the generator type; Path gives its position in
	// the scene tree.
	Kind() string
	Path() string

	// Structure reports the generator's subtree.
	Structure() *Structure

	name() string
	setName(string)
	setPath(parent string)
	children() []Generator
}

// Structure describes a scene tree's shape.
type Structure struct {
	Kind     string       `json:"kind"`
	Name     string       `json:"name"`
	Path     string       `json:"path"`
	Model    *core.Structure `json:"model,omitempty"`
	Children []*Structure `json:"children,omitempty"`
}

// Rename overrides a generator's scene-tree name.  Call it before
// the tree is assembled into a Runner.
func Rename(g Generator, name string) {
	g.setName(name)
}

// base carries naming shared by all generator kinds.
type base struct {
	nm   string
	path string
}

func (b *base) name() string      { return b.nm }
func (b *base) setName(n string)  { b.nm = n }
func (b *base) Path() string      { return b.path }

// assemble names the root, assigns paths, and verifies the tree has
// no shared generator instances.
func assemble(root Generator) error {
	if root.name() == "" {
		root.setName("root")
	}
	seen := map[Generator]bool{}
	var walk func(g Generator) error
	walk = func(g Generator) error {
		if seen[g] {
			return &SharedGenerator{Kind: g.Kind(), Name: g.name()}
		}
		seen[g] = true
		for _, c := range g.children() {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return err
	}
	root.setPath("")
	return nil
}

func structureOf(g Generator) *Structure {
	s := &Structure{Kind: g.Kind(), Name: g.name(), Path: g.Path()}
	for _, c := range g.children() {
		s.Children = append(s.Children, structureOf(c))
	}
	return s
}
