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

// Scatter sprinkles a value over cells currently holding a target
// value, each with independent probability Density.  One Step visits
// one cell, so a pipeline can interleave it with other generators and
// a feed can watch it land.
type Scatter struct {
	base
	value   byte
	target  byte
	density float64

	cursor  int
	total   int
	started bool
}

// NewScatter builds a scatter generator.
func NewScatter(value, target byte, density float64) (*Scatter, error) {
	if density < 0 || 1 < density {
		return nil, &BadDensity{}
	}
	return &Scatter{value: value, target: target, density: density}, nil
}

func (s *Scatter) Kind() string          { return "scatter" }
func (s *Scatter) children() []Generator { return nil }
func (s *Scatter) Structure() *Structure { return structureOf(s) }
func (s *Scatter) Done() bool            { return s.started && s.total <= s.cursor }

func (s *Scatter) setPath(parent string) {
	if s.nm == "" {
		s.nm = "scatter"
	}
	s.path = join(parent, s.nm)
}

func (s *Scatter) Reset() {
	s.cursor = 0
	s.total = 0
	s.started = false
}

func (s *Scatter) Init(ctx context.Context, gc *Context) error {
	s.cursor = 0
	s.total = len(gc.Grid.State)
	s.started = true
	return nil
}

func (s *Scatter) Step(ctx context.Context, gc *Context) (bool, error) {
	if !s.started {
		return false, &NotInitialized{Kind: s.Kind(), Path: s.path}
	}
	g := gc.Grid
	if s.total <= s.cursor {
		return false, nil
	}

	co := g.Coord(s.cursor)
	if g.At(co.X, co.Y, co.Z) == s.target && gc.Random.Float64() < s.density {
		g.Set(co.X, co.Y, co.Z, s.value)
		gc.Emit(s.path, "scatter", []grid.Coord{co})
	}
	s.cursor++
	return s.cursor < s.total, nil
}

func (s *Scatter) Teardown(ctx context.Context, gc *Context) error {
	gc.Logger.Debug("scatter complete",
		zap.String("path", s.path),
		zap.Int("cells", s.cursor))
	return nil
}
