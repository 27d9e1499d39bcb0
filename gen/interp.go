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

	"github.com/rulegrid/rulegrid/core"
)

// Interp adapts a rule-rewriting execution tree into a generator, so
// a whole model runs as one step in a pipeline.  Each generator Step
// spends Budget atomic rule applications (default 1), and every
// application's StepInfo lands in the registry under this
// generator's path.
type Interp struct {
	base

	root core.Node
	seed uint64

	// Budget is the number of rule applications per Step call.
	Budget int

	// ClearGrid makes Init reset the interpreter (clearing the
	// grid) instead of taking the grid as the pipeline left it.
	ClearGrid bool

	// Origin is passed through to the interpreter: on reset, the
	// center cell is seeded with value 1.
	Origin bool

	ip *core.Interpreter
}

// NewInterp wraps an execution tree.  The interpreter itself is
// built at Init against the pipeline's grid.
func NewInterp(root core.Node, seed uint64) *Interp {
	return &Interp{root: root, seed: seed, Budget: 1}
}

func (n *Interp) Kind() string          { return "model" }
func (n *Interp) children() []Generator { return nil }

func (n *Interp) setPath(parent string) {
	if n.nm == "" {
		n.nm = "model"
	}
	n.path = join(parent, n.nm)
}

func (n *Interp) Structure() *Structure {
	s := structureOf(n)
	s.Model = core.StructureOf(n.root, n.path)
	return s
}

func (n *Interp) Done() bool {
	return n.ip != nil && !n.ip.Running()
}

func (n *Interp) Reset() {
	n.ip = nil
}

// Interpreter exposes the wrapped interpreter once Init has run, for
// checkpointing.  Nil before Init.
func (n *Interp) Interpreter() *core.Interpreter {
	return n.ip
}

func (n *Interp) Init(ctx context.Context, gc *Context) error {
	ip, err := core.NewInterpreter(n.root, gc.Grid, n.seed)
	if err != nil {
		return err
	}
	ip.Origin = n.Origin
	if n.ClearGrid {
		ip.Reset(n.seed)
	}
	n.ip = ip
	return nil
}

func (n *Interp) Step(ctx context.Context, gc *Context) (bool, error) {
	if n.ip == nil {
		return false, &NotInitialized{Kind: n.Kind(), Path: n.path}
	}
	budget := n.Budget
	if budget < 1 {
		budget = 1
	}
	_, alive, infos := n.ip.StepN(ctx, budget)
	for _, info := range infos {
		info.Path = join(n.path, info.Path)
		gc.Registry.Record(info)
	}
	return alive, nil
}

func (n *Interp) Teardown(ctx context.Context, gc *Context) error {
	if n.ip != nil {
		gc.Logger.Debug("model complete",
			zap.String("path", n.path),
			zap.Int("applications", n.ip.Ctx.Counter))
	}
	return nil
}
