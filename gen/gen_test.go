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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rulegrid/rulegrid/core"
	"github.com/rulegrid/rulegrid/grid"
	"github.com/rulegrid/rulegrid/rule"
)

func testGrid(t *testing.T, mx, my, mz int, symbols string) *grid.Grid {
	t.Helper()
	g, err := grid.New(mx, my, mz, symbols)
	require.NoError(t, err)
	return g
}

func TestSequentialRunsInOrder(t *testing.T) {
	g := testGrid(t, 6, 4, 1, "BWR")

	seq, err := NewSequential(
		NewFill(1, FillAll, 0),
		NewFill(2, FillBorder, 0),
	)
	require.NoError(t, err)

	r, err := NewRunner(seq, g, 1, nil)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))

	// The border fill ran second, over the white wash.
	require.Equal(t, byte(2), g.At(0, 0, 0))
	require.Equal(t, byte(2), g.At(5, 3, 0))
	require.Equal(t, byte(1), g.At(2, 2, 0))
	require.True(t, seq.Done())

	paths := r.Context().Registry.Paths()
	require.Contains(t, paths, "root.step_1")
	require.Contains(t, paths, "root.step_2")
}

func TestSequentialStepBeforeInit(t *testing.T) {
	seq, err := NewSequential(NewFill(1, FillAll, 0))
	require.NoError(t, err)

	g := testGrid(t, 2, 2, 1, "BW")
	gc := NewContext(g, 1, nil)
	_, err = seq.Step(context.Background(), gc)
	require.Error(t, err)
}

func TestParallelInterleaves(t *testing.T) {
	g := testGrid(t, 4, 2, 1, "BWR")

	// The first branch whitens one cell per step; the second branch,
	// stepped after it within the same increment, immediately
	// repaints that cell red.
	par, err := NewParallel(
		NewFill(1, FillValue, 0),
		NewFill(2, FillValue, 1),
	)
	require.NoError(t, err)

	r, err := NewRunner(par, g, 1, nil)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))

	require.Equal(t, 8, g.Count(2))
	require.True(t, par.Done())

	paths := r.Context().Registry.Paths()
	require.Contains(t, paths, "root.branch_1")
	require.Contains(t, paths, "root.branch_2")
}

func TestEmptyComposites(t *testing.T) {
	_, err := NewSequential()
	require.Error(t, err)
	_, err = NewParallel()
	require.Error(t, err)
}

func TestSharedGeneratorRejected(t *testing.T) {
	f := NewFill(1, FillAll, 0)
	seq, err := NewSequential(f, f)
	require.NoError(t, err)

	g := testGrid(t, 2, 2, 1, "BW")
	_, err = NewRunner(seq, g, 1, nil)
	require.Error(t, err)
}

func TestScatterDensityExtremes(t *testing.T) {
	g := testGrid(t, 5, 5, 1, "BW")
	s, err := NewScatter(1, 0, 1)
	require.NoError(t, err)

	r, err := NewRunner(s, g, 1, nil)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, 25, g.Count(1))

	g2 := testGrid(t, 5, 5, 1, "BW")
	s2, err := NewScatter(1, 0, 0)
	require.NoError(t, err)
	r2, err := NewRunner(s2, g2, 1, nil)
	require.NoError(t, err)
	require.NoError(t, r2.Run(context.Background()))
	require.Equal(t, 0, g2.Count(1))

	_, err = NewScatter(1, 0, 1.5)
	require.Error(t, err)
}

func TestScatterTargetsOnly(t *testing.T) {
	g := testGrid(t, 4, 4, 1, "BWR")
	w := byte(1)
	for x := 0; x < 4; x++ {
		g.Set(x, 0, 0, w)
	}

	s, err := NewScatter(2, 0, 1)
	require.NoError(t, err)
	r, err := NewRunner(s, g, 1, nil)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))

	require.Equal(t, 4, g.Count(1), "non-target cells stay put")
	require.Equal(t, 12, g.Count(2))
}

func TestScatterDeterminism(t *testing.T) {
	run := func() string {
		g := testGrid(t, 8, 8, 1, "BW")
		s, err := NewScatter(1, 0, 0.5)
		require.NoError(t, err)
		r, err := NewRunner(s, g, 42, nil)
		require.NoError(t, err)
		require.NoError(t, r.Run(context.Background()))
		return g.Render()
	}
	require.Equal(t, run(), run())
}

func TestFillStepsOneCell(t *testing.T) {
	g := testGrid(t, 3, 2, 1, "BW")
	f := NewFill(1, FillAll, 0)
	gc := NewContext(g, 1, nil)
	require.NoError(t, f.Init(context.Background(), gc))

	// The scan cursor advances exactly one cell per Step.
	more, err := f.Step(context.Background(), gc)
	require.NoError(t, err)
	require.True(t, more)
	require.Equal(t, 1, g.Count(1))
	require.Equal(t, byte(1), g.At(0, 0, 0))

	for i := 0; i < 4; i++ {
		more, err = f.Step(context.Background(), gc)
		require.NoError(t, err)
		require.True(t, more)
	}
	require.Equal(t, 5, g.Count(1))
	require.False(t, f.Done())

	more, err = f.Step(context.Background(), gc)
	require.NoError(t, err)
	require.False(t, more)
	require.True(t, f.Done())
	require.Equal(t, 6, g.Count(1))
}

func TestScatterStepsOneCell(t *testing.T) {
	g := testGrid(t, 4, 2, 1, "BW")
	s, err := NewScatter(1, 0, 1)
	require.NoError(t, err)
	gc := NewContext(g, 1, nil)
	require.NoError(t, s.Init(context.Background(), gc))

	more, err := s.Step(context.Background(), gc)
	require.NoError(t, err)
	require.True(t, more)
	require.Equal(t, 1, g.Count(1))
	require.Equal(t, byte(1), g.At(0, 0, 0))
}

func TestFillConditions(t *testing.T) {
	g := testGrid(t, 4, 3, 1, "BWR")
	g.Set(1, 1, 0, 2)

	f := NewFill(1, FillEmpty, 0)
	r, err := NewRunner(f, g, 1, nil)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))

	require.Equal(t, byte(2), g.At(1, 1, 0), "non-empty cells stay put")
	require.Equal(t, 11, g.Count(1))
}

func TestFillBorder3D(t *testing.T) {
	g := testGrid(t, 3, 3, 3, "BW")
	f := NewFill(1, FillBorder, 0)
	r, err := NewRunner(f, g, 1, nil)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))

	// Only the very center of a 3x3x3 cube is interior.
	require.Equal(t, 26, g.Count(1))
	require.Equal(t, byte(0), g.At(1, 1, 1))
}

func TestInterpGenerator(t *testing.T) {
	g := testGrid(t, 3, 3, 1, "BW")
	pr, err := rule.Parse("B", "W", g)
	require.NoError(t, err)
	one, err := core.NewOne(rule.Symmetries(pr, true, rule.SubgroupAll), 0)
	require.NoError(t, err)

	n := NewInterp(one, 7)
	n.Budget = 2

	r, err := NewRunner(n, g, 7, nil)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))

	require.Equal(t, 9, g.Count(1))
	require.True(t, n.Done())
	require.NotNil(t, n.Interpreter())

	// Model applications land in the registry under the generator's
	// path.
	info, found := r.Context().Registry.Latest("root")
	require.True(t, found)
	require.Equal(t, "root.one[0]", info.Path)
	require.Equal(t, "B=W", info.Rule)
}

func TestRunnerReset(t *testing.T) {
	g := testGrid(t, 4, 4, 1, "BW")
	s, err := NewScatter(1, 0, 0.5)
	require.NoError(t, err)
	r, err := NewRunner(s, g, 3, nil)
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))
	first := g.Render()

	g.Clear()
	r.Reset(3)
	require.False(t, s.Done())
	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, first, g.Render())
}

func TestStructure(t *testing.T) {
	inner, err := NewParallel(NewFill(1, FillAll, 0))
	require.NoError(t, err)
	Rename(inner, "terrain")
	seq, err := NewSequential(inner, NewFill(0, FillAll, 0))
	require.NoError(t, err)

	g := testGrid(t, 2, 2, 1, "BW")
	r, err := NewRunner(seq, g, 1, nil)
	require.NoError(t, err)

	s := r.Structure()
	require.Equal(t, "sequential", s.Kind)
	require.Equal(t, "root", s.Path)
	require.Len(t, s.Children, 2)
	require.Equal(t, "root.terrain", s.Children[0].Path)
	require.Equal(t, "root.terrain.branch_1", s.Children[0].Children[0].Path)
	require.Equal(t, "root.step_2", s.Children[1].Path)
}
