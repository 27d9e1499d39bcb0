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

package model

import (
	"strconv"
	"strings"

	"github.com/rulegrid/rulegrid/core"
	"github.com/rulegrid/rulegrid/gen"
	"github.com/rulegrid/rulegrid/grid"
	"github.com/rulegrid/rulegrid/rule"
)

// NewGrid builds the model's grid.
func (d *Def) NewGrid() (*grid.Grid, error) {
	g, err := grid.New(d.Grid.Width, d.Grid.Height, d.Grid.Depth, d.Grid.Alphabet)
	if err != nil {
		return nil, &BadModel{Where: "grid", Problem: err.Error()}
	}
	return g, nil
}

// CompileTree builds the model's rule tree against a grid.
func (d *Def) CompileTree(g *grid.Grid) (core.Node, error) {
	if d.Root == nil {
		return nil, &BadModel{Where: "root", Problem: "model has no root tree"}
	}
	return compileNode(d.Root, g, "root")
}

// CompileInterpreter builds the grid, the tree, and an interpreter
// over them, cleared and seeded per the model.
func (d *Def) CompileInterpreter() (*core.Interpreter, error) {
	g, err := d.NewGrid()
	if err != nil {
		return nil, err
	}
	root, err := d.CompileTree(g)
	if err != nil {
		return nil, err
	}
	ip, err := core.NewInterpreter(root, g, d.Seed)
	if err != nil {
		return nil, &BadModel{Where: "root", Problem: err.Error()}
	}
	ip.Origin = d.Origin
	ip.Reset(d.Seed)
	return ip, nil
}

// CompilePipeline builds the model's generator pipeline against a
// grid.  A single pipeline entry becomes the root; several become an
// implicit sequential.
func (d *Def) CompilePipeline(g *grid.Grid) (gen.Generator, error) {
	if len(d.Pipeline) == 0 {
		return nil, &BadModel{Where: "pipeline", Problem: "model has no pipeline"}
	}
	if len(d.Pipeline) == 1 {
		return compileGen(d.Pipeline[0], g, d.Seed, "pipeline")
	}
	kids := make([]gen.Generator, len(d.Pipeline))
	for i, gd := range d.Pipeline {
		k, err := compileGen(gd, g, d.Seed, "pipeline["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		kids[i] = k
	}
	root, err := gen.NewSequential(kids...)
	if err != nil {
		return nil, &BadModel{Where: "pipeline", Problem: err.Error()}
	}
	return root, nil
}

func value(g *grid.Grid, s, where string) (byte, error) {
	rs := []rune(s)
	if len(rs) != 1 {
		return 0, &BadModel{Where: where, Problem: `need exactly one symbol, got "` + s + `"`}
	}
	v, ok := g.Value(rs[0])
	if !ok {
		return 0, &BadModel{Where: where, Problem: `symbol "` + s + `" not in alphabet "` + g.Symbols + `"`}
	}
	return v, nil
}

func wave(g *grid.Grid, s, where string) (uint32, error) {
	w, err := g.Wave(s)
	if err != nil {
		return 0, &BadModel{Where: where, Problem: err.Error()}
	}
	return w, nil
}

func subgroup(s, where string) (rule.Subgroup, error) {
	if s == "" {
		return rule.SubgroupAll, nil
	}
	sg, ok := rule.ParseSubgroup(s)
	if !ok {
		return 0, &BadModel{Where: where, Problem: `unknown symmetry "` + s + `"`}
	}
	return sg, nil
}

func compileRules(def *RuleSetDef, g *grid.Grid, where string) ([]*rule.Rule, error) {
	sg, err := subgroup(def.Symmetry, where)
	if err != nil {
		return nil, err
	}
	var rules []*rule.Rule
	for _, s := range def.Rules {
		parts := strings.Split(s, "=")
		if len(parts) != 2 {
			return nil, &BadModel{Where: where, Problem: `rule "` + s + `" isn't IN=OUT`}
		}
		r, err := rule.Parse(parts[0], parts[1], g)
		if err != nil {
			return nil, &BadModel{Where: where, Problem: err.Error()}
		}
		rules = append(rules, rule.Symmetries(r, g.Is2D(), sg)...)
	}
	return rules, nil
}

// ParseSums reads a sum constraint like "3", "5..8", or "0,2..3"
// into the allowed-count table used by convolution rules.
func ParseSums(s string) ([]bool, error) {
	sums := make([]bool, 28)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi := part, part
		if strings.Contains(part, "..") {
			bounds := strings.SplitN(part, "..", 2)
			lo, hi = bounds[0], bounds[1]
		}
		a, err := strconv.Atoi(lo)
		if err != nil {
			return nil, err
		}
		b, err := strconv.Atoi(hi)
		if err != nil {
			return nil, err
		}
		for i := a; i <= b && i < len(sums); i++ {
			if i >= 0 {
				sums[i] = true
			}
		}
	}
	return sums, nil
}

func compileNode(def *NodeDef, g *grid.Grid, where string) (core.Node, error) {
	kinds := 0
	for _, set := range []bool{
		def.Markov != nil, def.Sequence != nil, def.One != nil, def.All != nil,
		def.Path != nil, def.Conv != nil, def.Chain != nil, def.Wfc != nil,
	} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, &BadModel{Where: where, Problem: "node must declare exactly one kind"}
	}

	switch {
	case def.Markov != nil:
		kids, err := compileChildren(def.Markov, g, where+".markov")
		if err != nil {
			return nil, err
		}
		n, err := core.NewMarkov(kids...)
		if err != nil {
			return nil, &BadModel{Where: where, Problem: err.Error()}
		}
		return n, nil

	case def.Sequence != nil:
		kids, err := compileChildren(def.Sequence, g, where+".sequence")
		if err != nil {
			return nil, err
		}
		n, err := core.NewSequence(kids...)
		if err != nil {
			return nil, &BadModel{Where: where, Problem: err.Error()}
		}
		return n, nil

	case def.One != nil:
		rules, err := compileRules(def.One, g, where+".one")
		if err != nil {
			return nil, err
		}
		n, err := core.NewOne(rules, def.One.Steps)
		if err != nil {
			return nil, &BadModel{Where: where, Problem: err.Error()}
		}
		return n, nil

	case def.All != nil:
		rules, err := compileRules(def.All, g, where+".all")
		if err != nil {
			return nil, err
		}
		n, err := core.NewAll(rules, def.All.Steps)
		if err != nil {
			return nil, &BadModel{Where: where, Problem: err.Error()}
		}
		return n, nil

	case def.Path != nil:
		return compilePath(def.Path, g, where+".path")

	case def.Conv != nil:
		return compileConv(def.Conv, g, where+".convolution")

	case def.Chain != nil:
		return compileChain(def.Chain, g, where+".convchain")

	default:
		return compileWfc(def.Wfc, g, where+".wfc")
	}
}

func compileChildren(defs []*NodeDef, g *grid.Grid, where string) ([]core.Node, error) {
	kids := make([]core.Node, len(defs))
	for i, cd := range defs {
		k, err := compileNode(cd, g, where+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		kids[i] = k
	}
	return kids, nil
}

func compilePath(def *PathDef, g *grid.Grid, where string) (core.Node, error) {
	start, err := wave(g, def.From, where)
	if err != nil {
		return nil, err
	}
	finish, err := wave(g, def.To, where)
	if err != nil {
		return nil, err
	}
	substrate, err := wave(g, def.On, where)
	if err != nil {
		return nil, err
	}
	draw, err := value(g, def.Draw, where)
	if err != nil {
		return nil, err
	}
	n, err := core.NewPath(start, finish, substrate, draw)
	if err != nil {
		return nil, &BadModel{Where: where, Problem: err.Error()}
	}
	n.Inertia = def.Inertia
	n.Longest = def.Longest
	n.Edges = def.Edges
	n.Vertices = def.Vertices
	return n, nil
}

func compileConv(def *ConvDef, g *grid.Grid, where string) (core.Node, error) {
	var kernel []int
	var ok bool
	if g.Is2D() {
		kernel, ok = core.Kernel2D(def.Kernel)
	} else {
		kernel, ok = core.Kernel3D(def.Kernel)
	}
	if !ok {
		return nil, &BadModel{Where: where, Problem: `unknown kernel "` + def.Kernel + `"`}
	}

	rules := make([]core.ConvolutionRule, len(def.Rules))
	for i, rd := range def.Rules {
		in, err := value(g, rd.In, where)
		if err != nil {
			return nil, err
		}
		out, err := value(g, rd.Out, where)
		if err != nil {
			return nil, err
		}
		cr := core.ConvolutionRule{Input: in, Output: out, P: rd.P}
		if rd.Sums != "" {
			if rd.Count == "" {
				return nil, &BadModel{Where: where, Problem: "sums constraint needs a count symbol set"}
			}
			cr.Values, err = wave(g, rd.Count, where)
			if err != nil {
				return nil, err
			}
			cr.Sums, err = ParseSums(rd.Sums)
			if err != nil {
				return nil, &BadModel{Where: where, Problem: err.Error()}
			}
		}
		rules[i] = cr
	}
	n, err := core.NewConvolution(rules, kernel, def.Periodic, def.Steps)
	if err != nil {
		return nil, &BadModel{Where: where, Problem: err.Error()}
	}
	return n, nil
}

// parseSampleBits reads sample rows into a boolean bitmap: true for
// cells holding the white symbol.
func parseSampleBits(rows []string, white, black rune, where string) ([]bool, int, int, error) {
	if len(rows) == 0 {
		return nil, 0, 0, &BadModel{Where: where, Problem: "empty sample"}
	}
	smx := len([]rune(rows[0]))
	var bits []bool
	for _, row := range rows {
		rs := []rune(row)
		if len(rs) != smx {
			return nil, 0, 0, &BadModel{Where: where, Problem: "ragged sample rows"}
		}
		for _, r := range rs {
			switch r {
			case white:
				bits = append(bits, true)
			case black:
				bits = append(bits, false)
			default:
				return nil, 0, 0, &BadModel{Where: where, Problem: `sample symbol "` + string(r) + `" is neither black nor white`}
			}
		}
	}
	return bits, smx, len(rows), nil
}

func compileChain(def *ConvChainDef, g *grid.Grid, where string) (core.Node, error) {
	black, err := value(g, def.Black, where)
	if err != nil {
		return nil, err
	}
	white, err := value(g, def.White, where)
	if err != nil {
		return nil, err
	}
	substrate, err := value(g, def.Substrate, where)
	if err != nil {
		return nil, err
	}
	sg, err := subgroup(def.Symmetry, where)
	if err != nil {
		return nil, err
	}
	whiteRune, _ := g.Symbol(white)
	blackRune, _ := g.Symbol(black)
	bits, smx, smy, err := parseSampleBits(def.Sample, whiteRune, blackRune, where)
	if err != nil {
		return nil, err
	}
	if def.N < 1 {
		return nil, &BadModel{Where: where, Problem: "pattern size must be positive"}
	}
	weights := core.LearnWeights(bits, smx, smy, def.N, sg)
	n, err := core.NewConvChain(def.N, def.Temperature, weights, black, white, substrate, def.Steps)
	if err != nil {
		return nil, &BadModel{Where: where, Problem: err.Error()}
	}
	return n, nil
}

func compileWfc(def *WfcDef, g *grid.Grid, where string) (core.Node, error) {
	if len(def.Sample) == 0 {
		return nil, &BadModel{Where: where, Problem: "empty sample"}
	}
	smx := len([]rune(def.Sample[0]))
	var sample []byte
	for _, row := range def.Sample {
		rs := []rune(row)
		if len(rs) != smx {
			return nil, &BadModel{Where: where, Problem: "ragged sample rows"}
		}
		for _, r := range rs {
			v, ok := g.Value(r)
			if !ok {
				return nil, &BadModel{Where: where, Problem: `sample symbol "` + string(r) + `" not in alphabet`}
			}
			sample = append(sample, v)
		}
	}
	sg, err := subgroup(def.Symmetry, where)
	if err != nil {
		return nil, err
	}
	var allowed map[byte]uint32
	if len(def.Allowed) > 0 {
		allowed = map[byte]uint32{}
		for key, syms := range def.Allowed {
			kv, err := value(g, key, where)
			if err != nil {
				return nil, err
			}
			w, err := wave(g, syms, where)
			if err != nil {
				return nil, err
			}
			allowed[kv] = w
		}
	}
	n, err := core.NewWaveCollapse(def.N, sample, smx, len(def.Sample), def.PeriodicInput, def.Periodic, sg, allowed)
	if err != nil {
		return nil, &BadModel{Where: where, Problem: err.Error()}
	}
	return n, nil
}

func compileGen(def *GenDef, g *grid.Grid, seed uint64, where string) (gen.Generator, error) {
	kinds := 0
	for _, set := range []bool{
		def.Sequential != nil, def.Parallel != nil, def.Fill != nil,
		def.Scatter != nil, def.Model != nil,
	} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, &BadModel{Where: where, Problem: "pipeline entry must declare exactly one kind"}
	}

	var built gen.Generator
	switch {
	case def.Sequential != nil:
		kids, err := compileGens(def.Sequential, g, seed, where+".sequential")
		if err != nil {
			return nil, err
		}
		s, err := gen.NewSequential(kids...)
		if err != nil {
			return nil, &BadModel{Where: where, Problem: err.Error()}
		}
		built = s

	case def.Parallel != nil:
		kids, err := compileGens(def.Parallel, g, seed, where+".parallel")
		if err != nil {
			return nil, err
		}
		p, err := gen.NewParallel(kids...)
		if err != nil {
			return nil, &BadModel{Where: where, Problem: err.Error()}
		}
		built = p

	case def.Fill != nil:
		v, err := value(g, def.Fill.Value, where+".fill")
		if err != nil {
			return nil, err
		}
		cond, target := gen.FillAll, byte(0)
		switch def.Fill.Condition {
		case "", "all":
		case "empty":
			cond = gen.FillEmpty
		case "border":
			cond = gen.FillBorder
		default:
			cond = gen.FillValue
			target, err = value(g, def.Fill.Condition, where+".fill")
			if err != nil {
				return nil, err
			}
		}
		built = gen.NewFill(v, cond, target)

	case def.Scatter != nil:
		v, err := value(g, def.Scatter.Value, where+".scatter")
		if err != nil {
			return nil, err
		}
		t, err := value(g, def.Scatter.Target, where+".scatter")
		if err != nil {
			return nil, err
		}
		s, err := gen.NewScatter(v, t, def.Scatter.Density)
		if err != nil {
			return nil, &BadModel{Where: where, Problem: err.Error()}
		}
		built = s

	default:
		root, err := compileNode(def.Model, g, where+".model")
		if err != nil {
			return nil, err
		}
		built = gen.NewInterp(root, seed)
	}

	if def.Name != "" {
		gen.Rename(built, def.Name)
	}
	return built, nil
}

func compileGens(defs []*GenDef, g *grid.Grid, seed uint64, where string) ([]gen.Generator, error) {
	kids := make([]gen.Generator, len(defs))
	for i, gd := range defs {
		k, err := compileGen(gd, g, seed, where+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		kids[i] = k
	}
	return kids, nil
}
