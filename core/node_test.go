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

	"github.com/rulegrid/rulegrid/grid"
	"github.com/rulegrid/rulegrid/rule"
)

func testGrid(t *testing.T, mx, my, mz int, symbols string) *grid.Grid {
	t.Helper()
	g, err := grid.New(mx, my, mz, symbols)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func testRules(t *testing.T, g *grid.Grid, pairs ...string) []*rule.Rule {
	t.Helper()
	var rs []*rule.Rule
	for i := 0; i+1 < len(pairs); i += 2 {
		r, err := rule.Parse(pairs[i], pairs[i+1], g)
		if err != nil {
			t.Fatal(err)
		}
		rs = append(rs, rule.Symmetries(r, g.Is2D(), rule.SubgroupAll)...)
	}
	return rs
}

func testOne(t *testing.T, g *grid.Grid, steps int, pairs ...string) *OneNode {
	t.Helper()
	n, err := NewOne(testRules(t, g, pairs...), steps)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func testAll(t *testing.T, g *grid.Grid, steps int, pairs ...string) *AllNode {
	t.Helper()
	n, err := NewAll(testRules(t, g, pairs...), steps)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func testInterp(t *testing.T, root Node, g *grid.Grid, seed uint64) *Interpreter {
	t.Helper()
	ip, err := NewInterpreter(root, g, seed)
	if err != nil {
		t.Fatal(err)
	}
	return ip
}

func TestOneConvertsEverything(t *testing.T) {
	g := testGrid(t, 3, 3, 1, "BW")
	ip := testInterp(t, testOne(t, g, 0, "B", "W"), g, 1)

	n := ip.Run(context.Background())
	if n != 9 {
		t.Fatal(n)
	}
	if g.Count(1) != 9 {
		t.Fatal(g.Render())
	}
	if ip.Running() {
		t.Fatal("tree should be exhausted")
	}
	if ip.Step(context.Background()) {
		t.Fatal("stepping an exhausted tree should report false")
	}
}

func TestOneStepsCap(t *testing.T) {
	g := testGrid(t, 3, 3, 1, "BW")
	ip := testInterp(t, testOne(t, g, 4, "B", "W"), g, 1)

	if n := ip.Run(context.Background()); n != 4 {
		t.Fatal(n)
	}
	if g.Count(1) != 4 {
		t.Fatal(g.Render())
	}
}

func TestOneEmitsStepInfo(t *testing.T) {
	g := testGrid(t, 2, 1, 1, "BW")
	ip := testInterp(t, testOne(t, g, 0, "B", "W"), g, 1)

	if !ip.Step(context.Background()) {
		t.Fatal("first step should progress")
	}
	if len(ip.Ctx.Steps) != 1 {
		t.Fatal(ip.Ctx.Steps)
	}
	info := ip.Ctx.Steps[0]
	if info.Path != "one[0]" {
		t.Fatal(info.Path)
	}
	if info.Rule != "B=W" {
		t.Fatal(info.Rule)
	}
	if len(info.Cells) != 1 {
		t.Fatal(info.Cells)
	}
	if info.Counter != 0 {
		t.Fatal(info.Counter)
	}
}

func TestAllConvertsInOneCall(t *testing.T) {
	g := testGrid(t, 3, 3, 1, "BW")
	ip := testInterp(t, testAll(t, g, 0, "B", "W"), g, 1)

	if !ip.Step(context.Background()) {
		t.Fatal("first step should progress")
	}
	if g.Count(1) != 9 {
		t.Fatal(g.Render())
	}
	// Each kept match is its own atomic application.
	if len(ip.Ctx.Steps) != 9 {
		t.Fatal(len(ip.Ctx.Steps))
	}
	if ip.Step(context.Background()) {
		t.Fatal("nothing left to do")
	}
}

func TestAllFootprintsDontOverlap(t *testing.T) {
	g := testGrid(t, 4, 1, 1, "BW")
	// BB=WW can claim at most two disjoint footprints on a 4x1 row.
	ip := testInterp(t, testAll(t, g, 0, "BB", "WW"), g, 3)

	if !ip.Step(context.Background()) {
		t.Fatal("first step should progress")
	}
	if n := g.Count(1); n != 4 && n != 2 {
		// Either both disjoint pairs were claimed or one middle
		// match blocked both ends.
		t.Fatal(n, g.Render())
	}
	for _, info := range ip.Ctx.Steps {
		if len(info.Cells) != 2 {
			t.Fatal(info.Cells)
		}
	}
}

func TestStepNBudgetIsExact(t *testing.T) {
	g := testGrid(t, 3, 3, 1, "BW")
	ip := testInterp(t, testAll(t, g, 0, "B", "W"), g, 1)

	taken, alive, infos := ip.StepN(context.Background(), 4)
	if taken != 4 || !alive {
		t.Fatal(taken, alive)
	}
	if len(infos) != 4 {
		t.Fatal(len(infos))
	}
	if g.Count(1) != 4 {
		t.Fatal(g.Render())
	}

	taken, alive, infos = ip.StepN(context.Background(), 100)
	if taken != 5 || alive {
		t.Fatal(taken, alive)
	}
	if len(infos) != 5 {
		t.Fatal(len(infos))
	}
	if g.Count(1) != 9 {
		t.Fatal(g.Render())
	}
}

func TestSequenceNeverGoesBack(t *testing.T) {
	g := testGrid(t, 3, 1, 1, "BWR")
	first := testOne(t, g, 1, "B", "W")
	second := testOne(t, g, 1, "B", "R")
	seq, err := NewSequence(first, second)
	if err != nil {
		t.Fatal(err)
	}
	ip := testInterp(t, seq, g, 1)

	n := ip.Run(context.Background())
	if n != 2 {
		t.Fatal(n)
	}
	// One W, one R, and a B the sequence never came back for.
	if g.Count(1) != 1 || g.Count(2) != 1 || g.Count(0) != 1 {
		t.Fatal(g.Render())
	}
}

func TestMarkovResetsChildren(t *testing.T) {
	g := testGrid(t, 3, 1, 1, "BW")
	// The child is capped at one application, but the Markov branch
	// resets it after every exhaustion, so the whole row converts.
	child := testOne(t, g, 1, "B", "W")
	m, err := NewMarkov(child)
	if err != nil {
		t.Fatal(err)
	}
	ip := testInterp(t, m, g, 1)

	if n := ip.Run(context.Background()); n != 3 {
		t.Fatal(n)
	}
	if g.Count(1) != 3 {
		t.Fatal(g.Render())
	}
}

func TestMarkovPriority(t *testing.T) {
	g := testGrid(t, 1, 1, 1, "BW")
	toW := testOne(t, g, 0, "B", "W")
	toB := testOne(t, g, 0, "W", "B")
	m, err := NewMarkov(toW, toB)
	if err != nil {
		t.Fatal(err)
	}
	ip := testInterp(t, m, g, 1)

	// The two children alternate forever: whenever the first child
	// runs dry the second makes it applicable again, and the branch
	// always rescans from the first.
	want := []byte{1, 0, 1, 0, 1, 0}
	for i, v := range want {
		if !ip.Step(context.Background()) {
			t.Fatal("step", i, "should progress")
		}
		if g.At(0, 0, 0) != v {
			t.Fatal(i, g.At(0, 0, 0))
		}
	}
}

func TestEmptyBranches(t *testing.T) {
	if _, err := NewMarkov(); err == nil {
		t.Fatal("empty markov should be rejected")
	}
	if _, err := NewSequence(); err == nil {
		t.Fatal("empty sequence should be rejected")
	}
	if _, err := NewOne(nil, 0); err == nil {
		t.Fatal("empty rule set should be rejected")
	}
	if _, err := NewAll(nil, 0); err == nil {
		t.Fatal("empty rule set should be rejected")
	}
}

func TestSharedNodeRejected(t *testing.T) {
	g := testGrid(t, 2, 2, 1, "BW")
	one := testOne(t, g, 0, "B", "W")
	seq, err := NewSequence(one, one)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewInterpreter(seq, g, 1); err == nil {
		t.Fatal("a node used twice should be rejected")
	}
}

func TestDeterministicReplay(t *testing.T) {
	run := func() string {
		g := testGrid(t, 8, 8, 1, "BW")
		ip := testInterp(t, testOne(t, g, 20, "B", "W"), g, 42)
		ip.Run(context.Background())
		return g.Render()
	}
	if run() != run() {
		t.Fatal("same seed should replay the same run")
	}
}

func TestResetReplays(t *testing.T) {
	g := testGrid(t, 8, 8, 1, "BW")
	ip := testInterp(t, testOne(t, g, 20, "B", "W"), g, 42)

	ip.Run(context.Background())
	first := g.Render()

	ip.Reset(42)
	if g.Count(1) != 0 {
		t.Fatal("reset should clear the grid")
	}
	if !ip.Running() {
		t.Fatal("reset should revive the tree")
	}
	ip.Run(context.Background())
	if g.Render() != first {
		t.Fatal("reset with the same seed should replay")
	}
}

func TestResetOrigin(t *testing.T) {
	g := testGrid(t, 5, 5, 1, "BW")
	ip := testInterp(t, testOne(t, g, 0, "W", "B"), g, 1)
	ip.Origin = true
	ip.Reset(1)
	if g.At(2, 2, 0) != 1 {
		t.Fatal("origin should seed the center cell")
	}
	if g.Count(1) != 1 {
		t.Fatal(g.Render())
	}
}

func TestStructure(t *testing.T) {
	g := testGrid(t, 2, 2, 1, "BW")
	one := testOne(t, g, 0, "B", "W")
	all := testAll(t, g, 0, "W", "B")
	seq, err := NewSequence(one, all)
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewMarkov(seq)
	if err != nil {
		t.Fatal(err)
	}
	ip := testInterp(t, m, g, 1)

	s := ip.Structure()
	if s.Kind != "markov" || s.Path != "markov[0]" {
		t.Fatal(s.Kind, s.Path)
	}
	if len(s.Children) != 1 {
		t.Fatal(len(s.Children))
	}
	seqS := s.Children[0]
	if seqS.Path != "markov[0].sequence[0]" {
		t.Fatal(seqS.Path)
	}
	if len(seqS.Children) != 2 {
		t.Fatal(len(seqS.Children))
	}
	oneS := seqS.Children[0]
	if oneS.Kind != "one" || oneS.Path != "markov[0].sequence[0].one[0]" {
		t.Fatal(oneS.Kind, oneS.Path)
	}
	if len(oneS.Rules) == 0 || oneS.Rules[0] != "B=W" {
		t.Fatal(oneS.Rules)
	}
	allS := seqS.Children[1]
	if allS.Path != "markov[0].sequence[0].all[1]" {
		t.Fatal(allS.Path)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := testGrid(t, 3, 1, 1, "BWR")
	first := testOne(t, g, 2, "B", "W")
	second := testOne(t, g, 0, "W", "R")
	seq, err := NewSequence(first, second)
	if err != nil {
		t.Fatal(err)
	}
	ip := testInterp(t, seq, g, 1)

	ip.Step(context.Background())
	ip.Step(context.Background())
	state := ip.Root().Save()
	if state.Kind != "sequence" || len(state.Children) != 2 {
		t.Fatal(state)
	}
	if state.Children[0].Counter != 2 {
		t.Fatal(state.Children[0])
	}

	// Fresh tree of the same shape accepts the state.
	g2 := testGrid(t, 3, 1, 1, "BWR")
	seq2, err := NewSequence(testOne(t, g2, 2, "B", "W"), testOne(t, g2, 0, "W", "R"))
	if err != nil {
		t.Fatal(err)
	}
	if err := seq2.Load(state); err != nil {
		t.Fatal(err)
	}

	// A mismatched shape doesn't.
	lone := testOne(t, g2, 2, "B", "W")
	if err := lone.Load(state); err == nil {
		t.Fatal("a one node should reject sequence state")
	}
}
