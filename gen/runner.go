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

package gen

import (
	"context"

	"go.uber.org/zap"

	"github.com/rulegrid/rulegrid/grid"
)

// Runner drives a scene tree against a grid: it validates and names
// the tree, then runs Init, the Step loop, and Teardown.
type Runner struct {
	root Generator
	gc   *Context

	initialized bool
}

// NewRunner assembles the tree rooted at root: the root is named
// "root", every generator gets its scene-tree path, and the tree is
// checked for shared instances.
func NewRunner(root Generator, g *grid.Grid, seed uint64, logger *zap.Logger) (*Runner, error) {
	if err := assemble(root); err != nil {
		return nil, err
	}
	return &Runner{root: root, gc: NewContext(g, seed, logger)}, nil
}

// Context returns the shared generator context, including the
// registry.
func (r *Runner) Context() *Context { return r.gc }

// Root returns the scene tree's root generator.
func (r *Runner) Root() Generator { return r.root }

// Structure reports the scene tree's shape.
func (r *Runner) Structure() *Structure { return r.root.Structure() }

// Step advances the tree one increment, initializing it first if
// needed.  It reports whether more work remains.
func (r *Runner) Step(ctx context.Context) (bool, error) {
	if !r.initialized {
		if err := r.root.Init(ctx, r.gc); err != nil {
			return false, err
		}
		r.initialized = true
	}
	more, err := r.root.Step(ctx, r.gc)
	if err != nil {
		return false, err
	}
	if !more {
		return false, r.root.Teardown(ctx, r.gc)
	}
	return true, nil
}

// Run steps the tree to completion, honoring ctx between increments.
func (r *Runner) Run(ctx context.Context) error {
	steps := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		more, err := r.Step(ctx)
		if err != nil {
			return err
		}
		steps++
		if !more {
			break
		}
	}
	r.gc.Logger.Info("scene tree complete",
		zap.Int("increments", steps),
		zap.Int("records", len(r.gc.Registry.Paths())))
	return nil
}

// Reset returns the tree to its pre-Init state and reseeds the
// shared random stream.  The grid is left as-is.
func (r *Runner) Reset(seed uint64) {
	r.root.Reset()
	r.gc.Random.Seed(seed)
	r.gc.Registry = NewRegistry()
	r.gc.counter = 0
	r.initialized = false
}
