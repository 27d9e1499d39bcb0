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
	"testing"

	"github.com/rulegrid/rulegrid/rule"
)

// stripes is a 2x2 sample of vertical BW stripes.
func stripes() []byte {
	return []byte{0, 1, 0, 1}
}

func TestWaveCollapseLearnsPatterns(t *testing.T) {
	node, err := NewWaveCollapse(2, stripes(), 2, 2, true, true, rule.SubgroupNone, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Two column phases, no symmetry expansion.
	if len(node.patterns) != 2 {
		t.Fatal(len(node.patterns))
	}
}

func TestWaveCollapseStripes(t *testing.T) {
	g := testGrid(t, 4, 4, 1, "BW")
	node, err := NewWaveCollapse(2, stripes(), 2, 2, true, true, rule.SubgroupNone, nil)
	if err != nil {
		t.Fatal(err)
	}
	ip := testInterp(t, node, g, 7)

	ip.Run(context.Background())
	if ip.Running() {
		t.Fatal("collapse should finish")
	}
	if node.Failed() {
		t.Fatal("stripes always have a consistent collapse")
	}

	// The output must be vertical stripes: columns uniform, adjacent
	// columns distinct.
	for x := 0; x < g.MX; x++ {
		for y := 1; y < g.MY; y++ {
			if g.At(x, y, 0) != g.At(x, 0, 0) {
				t.Fatal("columns should be uniform\n" + g.Render())
			}
		}
		if g.At(x, 0, 0) == g.At((x+1)%g.MX, 0, 0) {
			t.Fatal("adjacent columns should alternate\n" + g.Render())
		}
	}
}

func TestWaveCollapseObservationsAreSteps(t *testing.T) {
	g := testGrid(t, 4, 4, 1, "BW")
	node, err := NewWaveCollapse(2, stripes(), 2, 2, true, true, rule.SubgroupNone, nil)
	if err != nil {
		t.Fatal(err)
	}
	ip := testInterp(t, node, g, 7)

	observes, wrote := 0, 0
	for ip.Step(context.Background()) {
		for _, info := range ip.Ctx.Steps {
			switch info.Rule {
			case "observe":
				observes++
			case "wfc":
				wrote++
			}
		}
	}
	if observes == 0 {
		t.Fatal("collapse should go through observations")
	}
	if wrote != 1 {
		t.Fatal("exactly one write at the end", wrote)
	}
}

func TestWaveCollapseDeterminism(t *testing.T) {
	run := func() string {
		g := testGrid(t, 6, 6, 1, "BW")
		node, err := NewWaveCollapse(2, stripes(), 2, 2, true, true, rule.SubgroupNone, nil)
		if err != nil {
			t.Fatal(err)
		}
		ip := testInterp(t, node, g, 99)
		ip.Run(context.Background())
		return g.Render()
	}
	if run() != run() {
		t.Fatal("same seed should give the same collapse")
	}
}

func TestWaveCollapseRejects3D(t *testing.T) {
	g := testGrid(t, 3, 3, 3, "BW")
	node, err := NewWaveCollapse(2, stripes(), 2, 2, true, true, rule.SubgroupNone, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := NewContext(g, 1)
	if node.Go(ctx) {
		t.Fatal("the overlap model is 2D only")
	}
}

func TestWaveCollapseConfig(t *testing.T) {
	if _, err := NewWaveCollapse(1, stripes(), 2, 2, true, true, rule.SubgroupNone, nil); err == nil {
		t.Fatal("n out of range should be rejected")
	}
	if _, err := NewWaveCollapse(2, stripes(), 3, 2, true, true, rule.SubgroupNone, nil); err == nil {
		t.Fatal("mismatched sample size should be rejected")
	}
	if _, err := NewWaveCollapse(3, stripes(), 2, 2, true, true, rule.SubgroupNone, nil); err == nil {
		t.Fatal("sample smaller than the pattern should be rejected")
	}
}

func TestWaveCollapseAllowedConstraint(t *testing.T) {
	g := testGrid(t, 4, 4, 1, "BWR")
	r, _ := g.Value('R')
	g.Set(0, 0, 0, r)
	wv, err := g.Wave("B")
	if err != nil {
		t.Fatal(err)
	}
	// The R marker admits only patterns anchored on B, which pins the
	// stripe phase of the whole collapse.
	allowed := map[byte]uint32{r: wv}
	node, err := NewWaveCollapse(2, stripes(), 2, 2, true, true, rule.SubgroupNone, allowed)
	if err != nil {
		t.Fatal(err)
	}
	ip := testInterp(t, node, g, 7)
	ip.Run(context.Background())

	if node.Failed() {
		t.Fatal("a B-phase collapse exists")
	}
	for y := 0; y < g.MY; y++ {
		for x := 0; x < g.MX; x++ {
			want := byte(x % 2)
			if g.At(x, y, 0) != want {
				t.Fatal("the constraint pins the stripe phase\n" + g.Render())
			}
		}
	}
}
