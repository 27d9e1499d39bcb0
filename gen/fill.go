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

// FillCondition selects which cells a Fill writes.
type FillCondition int

const (
	// FillAll writes every cell.
	FillAll FillCondition = iota
	// FillEmpty writes cells holding value zero.
	FillEmpty
	// FillBorder writes the grid's outermost cells.
	FillBorder
	// FillValue writes cells holding Target.
	FillValue
)

// Fill writes a value into every cell matching its condition, one
// cell per Step.
type Fill struct {
	base
	value     byte
	condition FillCondition
	target    byte

	cursor  int
	total   int
	started bool
}

// NewFill builds a fill generator.  Target only matters with
// FillValue.
func NewFill(value byte, condition FillCondition, target byte) *Fill {
	return &Fill{value: value, condition: condition, target: target}
}

func (f *Fill) Kind() string          { return "fill" }
func (f *Fill) children() []Generator { return nil }
func (f *Fill) Structure() *Structure { return structureOf(f) }
func (f *Fill) Done() bool            { return f.started && f.total <= f.cursor }

func (f *Fill) setPath(parent string) {
	if f.nm == "" {
		f.nm = "fill"
	}
	f.path = join(parent, f.nm)
}

func (f *Fill) Reset() {
	f.cursor = 0
	f.total = 0
	f.started = false
}

func (f *Fill) Init(ctx context.Context, gc *Context) error {
	f.cursor = 0
	f.total = len(gc.Grid.State)
	f.started = true
	return nil
}

func (f *Fill) matches(g *grid.Grid, x, y, z int) bool {
	switch f.condition {
	case FillEmpty:
		return g.At(x, y, z) == 0
	case FillBorder:
		return x == 0 || y == 0 || x == g.MX-1 || y == g.MY-1 ||
			(!g.Is2D() && (z == 0 || z == g.MZ-1))
	case FillValue:
		return g.At(x, y, z) == f.target
	}
	return true
}

func (f *Fill) Step(ctx context.Context, gc *Context) (bool, error) {
	if !f.started {
		return false, &NotInitialized{Kind: f.Kind(), Path: f.path}
	}
	g := gc.Grid
	if f.total <= f.cursor {
		return false, nil
	}

	co := g.Coord(f.cursor)
	if f.matches(g, co.X, co.Y, co.Z) && g.At(co.X, co.Y, co.Z) != f.value {
		g.Set(co.X, co.Y, co.Z, f.value)
		gc.Emit(f.path, "fill", []grid.Coord{co})
	}
	f.cursor++
	return f.cursor < f.total, nil
}

func (f *Fill) Teardown(ctx context.Context, gc *Context) error {
	gc.Logger.Debug("fill complete",
		zap.String("path", f.path),
		zap.Int("cells", f.cursor))
	return nil
}
