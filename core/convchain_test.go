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
	"testing"

	"github.com/rulegrid/rulegrid/rule"
)

func TestLearnWeights(t *testing.T) {
	// A uniform sample has exactly one pattern.  Every window under
	// every symmetry lands on index 0: 16 windows times 8 variants.
	sample := make([]bool, 16)
	weights := LearnWeights(sample, 4, 4, 2, rule.SubgroupAll)
	if len(weights) != 16 {
		t.Fatal(len(weights))
	}
	if weights[0] != 128 {
		t.Fatal(weights[0])
	}
	// Unseen patterns get the floor weight.
	for i := 1; i < len(weights); i++ {
		if weights[i] != 0.1 {
			t.Fatal(i, weights[i])
		}
	}
}

func TestLearnWeightsSymmetry(t *testing.T) {
	// One true cell in a 2x2 periodic sample.  Under the full group,
	// each of the four corner patterns (1, 2, 4, 8) gets the same
	// total weight.
	sample := []bool{true, false, false, false}
	weights := LearnWeights(sample, 2, 2, 2, rule.SubgroupAll)
	if weights[1] != weights[2] || weights[2] != weights[4] || weights[4] != weights[8] {
		t.Fatal(weights[1], weights[2], weights[4], weights[8])
	}
	if weights[1] <= 0.1 {
		t.Fatal(weights[1])
	}
}

func TestConvChainSeedsAndSweeps(t *testing.T) {
	g := testGrid(t, 6, 6, 1, "DBW")
	weights := LearnWeights(make([]bool, 16), 4, 4, 2, rule.SubgroupAll)
	node, err := NewConvChain(2, 1, weights, 1, 2, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	ctx := NewContext(g, 9)

	// First call flips the whole substrate to the two work values.
	if !node.Go(ctx) {
		t.Fatal("seeding should progress")
	}
	if g.Count(0) != 0 {
		t.Fatal("every substrate cell should be seeded", g.Render())
	}
	if g.Count(1)+g.Count(2) != 36 {
		t.Fatal(g.Render())
	}
	if len(ctx.Steps) != 1 || ctx.Steps[0].Rule != "convchain" {
		t.Fatal(ctx.Steps)
	}

	// Sweeps keep cells inside the work alphabet.
	ctx.BeginStep()
	if !node.Go(ctx) {
		t.Fatal("sweep should progress")
	}
	if g.Count(1)+g.Count(2) != 36 {
		t.Fatal(g.Render())
	}

	// Cap of 3 calls total.
	ctx.BeginStep()
	if !node.Go(ctx) {
		t.Fatal("third call still under the cap")
	}
	ctx.BeginStep()
	if node.Go(ctx) {
		t.Fatal("cap reached")
	}
}

func TestConvChainRespectsNonSubstrate(t *testing.T) {
	g := testGrid(t, 4, 4, 1, "DBWR")
	r, _ := g.Value('R')
	g.Set(0, 0, 0, r)
	g.Set(3, 3, 0, r)

	weights := LearnWeights(make([]bool, 16), 4, 4, 2, rule.SubgroupAll)
	node, err := NewConvChain(2, 1, weights, 1, 2, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	ctx := NewContext(g, 5)

	if !node.Go(ctx) {
		t.Fatal("seeding should progress")
	}
	ctx.BeginStep()
	node.Go(ctx)
	if g.At(0, 0, 0) != r || g.At(3, 3, 0) != r {
		t.Fatal("non-substrate cells must stay put", g.Render())
	}
}

func TestConvChainNoSubstrate(t *testing.T) {
	g := testGrid(t, 4, 4, 1, "DBW")
	g.Fill(1)

	weights := LearnWeights(make([]bool, 16), 4, 4, 2, rule.SubgroupAll)
	node, err := NewConvChain(2, 1, weights, 1, 2, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx := NewContext(g, 1)
	if node.Go(ctx) {
		t.Fatal("no substrate cell to seed")
	}
}

func TestConvChainConfig(t *testing.T) {
	weights := make([]float64, 16)
	if _, err := NewConvChain(0, 1, weights, 1, 2, 0, 0); err == nil {
		t.Fatal("n out of range should be rejected")
	}
	if _, err := NewConvChain(3, 1, weights, 1, 2, 0, 0); err == nil {
		t.Fatal("mismatched weight table should be rejected")
	}
}

func TestConvChainRestoreSubstrate(t *testing.T) {
	g := testGrid(t, 4, 4, 1, "DBWR")
	r, _ := g.Value('R')
	g.Set(1, 1, 0, r)

	weights := LearnWeights(make([]bool, 16), 4, 4, 2, rule.SubgroupAll)
	node, err := NewConvChain(2, 1, weights, 1, 2, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx := NewContext(g, 5)
	if !node.Go(ctx) {
		t.Fatal("seeding should progress")
	}

	// A fresh node pointed at the same grid recovers the writable
	// set from the work values.
	fresh, err := NewConvChain(2, 1, weights, 1, 2, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	fresh.RestoreSubstrate(g)
	ctx.BeginStep()
	if !fresh.Go(ctx) {
		t.Fatal("restored node should keep sweeping")
	}
	if g.At(1, 1, 0) != r {
		t.Fatal("restored substrate must exclude foreign values")
	}
}
