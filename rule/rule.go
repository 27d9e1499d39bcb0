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

// Package rule implements pattern-rewrite rules.
//
// A rule has an input pattern and an output pattern of identical
// extents.  Patterns are written as strings over a Grid's alphabet:
//
//	"WB"       one row
//	"WB/BW"    rows separated by '/'
//	"WB/BW BB/BB"  Z layers separated by ' '
//
// In the input, '*' matches any symbol.  In the output, '*' means
// "leave the cell alone".  Layers in a pattern string are written
// top-down, so they are reversed into z order when parsed.
//
// Input cells are stored as waves (bitmasks over the alphabet), which
// is what allows wildcards and symbol unions.  Output cells are plain
// values, with grid.Wildcard for '*'.
package rule

import (
	"strings"

	"github.com/rulegrid/rulegrid/grid"
)

// Rule is an immutable input->output rewrite over a particular
// alphabet.
//
// A Rule is built once (usually at model load time along with its
// symmetry expansion) and then shared read-only by whatever node
// applies it.
type Rule struct {
	// Input holds one wave per input cell.
	Input []uint32
	// Output holds one value per output cell; grid.Wildcard means
	// "don't change".
	Output []byte

	// IMX, IMY, IMZ are the pattern extents.  Input and output
	// extents are always equal; the constructor enforces that.
	IMX, IMY, IMZ int

	// C is the alphabet size the rule was built against.
	C int

	// Desc is the human-readable "WB=WW" form, preserved across
	// symmetry transforms so attribution always names the rule as
	// the model author wrote it.
	Desc string
}

// Parse builds a Rule from input and output pattern strings against
// the given grid's alphabet.
func Parse(input, output string, g *grid.Grid) (*Rule, error) {
	in, imx, imy, imz, err := parsePattern(input)
	if err != nil {
		return nil, err
	}
	out, omx, omy, omz, err := parsePattern(output)
	if err != nil {
		return nil, err
	}
	if imx != omx || imy != omy || imz != omz {
		return nil, &ShapeMismatch{input, output}
	}

	waves := make([]uint32, len(in))
	for i, r := range in {
		w, have := g.WaveOf(r)
		if !have {
			return nil, &grid.UnknownSymbol{Symbol: r, Alphabet: g.Symbols}
		}
		waves[i] = w
	}

	values := make([]byte, len(out))
	for i, r := range out {
		if r == '*' {
			values[i] = grid.Wildcard
			continue
		}
		v, have := g.Value(r)
		if !have {
			return nil, &grid.UnknownSymbol{Symbol: r, Alphabet: g.Symbols}
		}
		values[i] = v
	}

	return &Rule{
		Input:  waves,
		Output: values,
		IMX:    imx,
		IMY:    imy,
		IMZ:    imz,
		C:      g.C(),
		Desc:   input + "=" + output,
	}, nil
}

// parsePattern splits a pattern string into runes in x + y*MX +
// z*MX*MY order.  Layers are separated by ' ' and reversed into z
// order; rows are separated by '/'.
func parsePattern(s string) ([]rune, int, int, int, error) {
	if s == "" {
		return nil, 0, 0, 0, &BadPattern{s, "empty pattern"}
	}

	layers := strings.Split(s, " ")
	mz := len(layers)

	firstRows := strings.Split(layers[0], "/")
	my := len(firstRows)
	mx := len([]rune(firstRows[0]))
	if mx == 0 {
		return nil, 0, 0, 0, &BadPattern{s, "empty row"}
	}

	out := make([]rune, mx*my*mz)
	for z := 0; z < mz; z++ {
		rows := strings.Split(layers[mz-1-z], "/")
		if len(rows) != my {
			return nil, 0, 0, 0, &BadPattern{s, "ragged layers"}
		}
		for y, row := range rows {
			rs := []rune(row)
			if len(rs) != mx {
				return nil, 0, 0, 0, &BadPattern{s, "ragged rows"}
			}
			for x, r := range rs {
				out[x+y*mx+z*mx*my] = r
			}
		}
	}
	return out, mx, my, mz, nil
}

// Matches reports whether the rule's input pattern matches the grid
// at (x,y,z).  The caller guarantees the footprint is in bounds.
func (r *Rule) Matches(g *grid.Grid, x, y, z int) bool {
	for dz := 0; dz < r.IMZ; dz++ {
		for dy := 0; dy < r.IMY; dy++ {
			for dx := 0; dx < r.IMX; dx++ {
				w := r.Input[dx+dy*r.IMX+dz*r.IMX*r.IMY]
				v := g.At(x+dx, y+dy, z+dz)
				if w&(1<<uint(v)) == 0 {
					return false
				}
			}
		}
	}
	return true
}

// Fits reports whether the rule's footprint at (x,y,z) lies entirely
// within the grid.
func (r *Rule) Fits(g *grid.Grid, x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 &&
		x+r.IMX <= g.MX && y+r.IMY <= g.MY && z+r.IMZ <= g.MZ
}

// Same reports whether two rules have identical patterns.  Used to
// deduplicate symmetry expansions.
func (r *Rule) Same(other *Rule) bool {
	if r.IMX != other.IMX || r.IMY != other.IMY || r.IMZ != other.IMZ {
		return false
	}
	for i := range r.Input {
		if r.Input[i] != other.Input[i] {
			return false
		}
	}
	for i := range r.Output {
		if r.Output[i] != other.Output[i] {
			return false
		}
	}
	return true
}

func (r *Rule) String() string {
	return r.Desc
}

// ZRotated returns the rule rotated 90 degrees in the XY plane.
func (r *Rule) ZRotated() *Rule {
	nmx, nmy := r.IMY, r.IMX
	in := make([]uint32, len(r.Input))
	out := make([]byte, len(r.Output))
	for z := 0; z < r.IMZ; z++ {
		for y := 0; y < nmy; y++ {
			for x := 0; x < nmx; x++ {
				old := (r.IMX - 1 - y) + x*r.IMX + z*r.IMX*r.IMY
				in[x+y*nmx+z*nmx*nmy] = r.Input[old]
				out[x+y*nmx+z*nmx*nmy] = r.Output[old]
			}
		}
	}
	return &Rule{Input: in, Output: out, IMX: nmx, IMY: nmy, IMZ: r.IMZ, C: r.C, Desc: r.Desc}
}

// YRotated returns the rule rotated 90 degrees in the XZ plane.  Only
// meaningful for 3D patterns; 2D rotation closures never call it.
func (r *Rule) YRotated() *Rule {
	nmx, nmy, nmz := r.IMZ, r.IMY, r.IMX
	in := make([]uint32, len(r.Input))
	out := make([]byte, len(r.Output))
	for z := 0; z < nmz; z++ {
		for y := 0; y < nmy; y++ {
			for x := 0; x < nmx; x++ {
				old := (r.IMX - 1 - z) + y*r.IMX + x*r.IMX*r.IMY
				in[x+y*nmx+z*nmx*nmy] = r.Input[old]
				out[x+y*nmx+z*nmx*nmy] = r.Output[old]
			}
		}
	}
	return &Rule{Input: in, Output: out, IMX: nmx, IMY: nmy, IMZ: nmz, C: r.C, Desc: r.Desc}
}

// Reflected returns the rule mirrored along the X axis.
func (r *Rule) Reflected() *Rule {
	in := make([]uint32, len(r.Input))
	out := make([]byte, len(r.Output))
	for z := 0; z < r.IMZ; z++ {
		for y := 0; y < r.IMY; y++ {
			for x := 0; x < r.IMX; x++ {
				old := (r.IMX - 1 - x) + y*r.IMX + z*r.IMX*r.IMY
				in[x+y*r.IMX+z*r.IMX*r.IMY] = r.Input[old]
				out[x+y*r.IMX+z*r.IMX*r.IMY] = r.Output[old]
			}
		}
	}
	return &Rule{Input: in, Output: out, IMX: r.IMX, IMY: r.IMY, IMZ: r.IMZ, C: r.C, Desc: r.Desc}
}
