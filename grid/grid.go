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

// Package grid provides the dense symbolic grid that rewrite rules
// operate on, together with its symbol alphabet.
//
// A Grid is a flat array of small unsigned integers indexed as
//
//	i = x + y*MX + z*MX*MY
//
// Every value is an index into the Grid's alphabet.  An alphabet is
// just an ordered string of distinct symbol characters ("BW", "WFC",
// ...), and each symbol also has a "wave": a bitmask with the symbol's
// bit set.  Waves let a rule input cell match a union of symbols; the
// full wave (all bits set) is the wildcard.
package grid

import (
	"fmt"
)

// Wildcard is the output-pattern value meaning "leave this cell alone".
//
// Alphabets are therefore limited to 255 symbols, which is far beyond
// anything the rewrite systems we've seen actually use.
const Wildcard = 0xff

// MaxSymbols is the largest alphabet an input wave can represent.
const MaxSymbols = 31

// Coord is a cell position.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Grid owns the cell state for one generation run.
//
// A Grid is created once at the declared bounds and then only mutated
// in place.  It also keeps a log of the coordinates touched since the
// log was last cleared; the interpreter clears the log at the start of
// every step so observers can ask "what just changed?".
type Grid struct {
	// MX, MY, MZ are the grid extents.  MZ is 1 for 2D use.
	MX, MY, MZ int

	// State holds one alphabet index per cell.
	State []byte

	// Symbols is the alphabet, in value order.
	Symbols string

	values map[rune]byte
	waves  map[rune]uint32

	changed []Coord
}

// New creates a Grid with the given extents and alphabet.
//
// Every cell starts at value 0 (the first symbol of the alphabet).
func New(mx, my, mz int, symbols string) (*Grid, error) {
	if mx < 1 || my < 1 || mz < 1 {
		return nil, &BadBounds{mx, my, mz}
	}
	runes := []rune(symbols)
	if len(runes) == 0 || len(runes) > MaxSymbols {
		return nil, &BadAlphabet{symbols}
	}

	values := make(map[rune]byte, len(runes))
	waves := make(map[rune]uint32, len(runes)+1)
	for i, r := range runes {
		if _, have := values[r]; have {
			return nil, &BadAlphabet{symbols}
		}
		values[r] = byte(i)
		waves[r] = 1 << uint(i)
	}
	// The wildcard wave matches everything.
	waves['*'] = (1 << uint(len(runes))) - 1

	return &Grid{
		MX:      mx,
		MY:      my,
		MZ:      mz,
		State:   make([]byte, mx*my*mz),
		Symbols: symbols,
		values:  values,
		waves:   waves,
		changed: make([]Coord, 0, 64),
	}, nil
}

// C returns the alphabet size.
func (g *Grid) C() int {
	return len(g.values)
}

// Is2D reports whether the grid has a single Z layer.
func (g *Grid) Is2D() bool {
	return g.MZ == 1
}

// Index returns the flat index for (x,y,z) or -1 when out of bounds.
func (g *Grid) Index(x, y, z int) int {
	if x < 0 || y < 0 || z < 0 || x >= g.MX || y >= g.MY || z >= g.MZ {
		return -1
	}
	return x + y*g.MX + z*g.MX*g.MY
}

// Coord is the inverse of Index.
func (g *Grid) Coord(i int) Coord {
	x := i % g.MX
	y := (i / g.MX) % g.MY
	z := i / (g.MX * g.MY)
	return Coord{x, y, z}
}

// At returns the value at (x,y,z).  The caller is responsible for
// bounds; an out-of-range coordinate here is a programmer error.
func (g *Grid) At(x, y, z int) byte {
	return g.State[x+y*g.MX+z*g.MX*g.MY]
}

// Set writes value at (x,y,z) and records the change.
func (g *Grid) Set(x, y, z int, value byte) {
	i := x + y*g.MX + z*g.MX*g.MY
	if g.State[i] == value {
		return
	}
	g.State[i] = value
	g.changed = append(g.changed, Coord{x, y, z})
}

// Value returns the alphabet index for a symbol character.
func (g *Grid) Value(r rune) (byte, bool) {
	v, have := g.values[r]
	return v, have
}

// Symbol returns the character for an alphabet index.
func (g *Grid) Symbol(v byte) (rune, bool) {
	runes := []rune(g.Symbols)
	if int(v) >= len(runes) {
		return 0, false
	}
	return runes[v], true
}

// WaveOf returns the wave for a single symbol character.  '*' gives
// the full wave.
func (g *Grid) WaveOf(r rune) (uint32, bool) {
	w, have := g.waves[r]
	return w, have
}

// Wave returns the union wave for a string of symbol characters, which
// is how "any of these" sets are written in model definitions.
func (g *Grid) Wave(symbols string) (uint32, error) {
	var w uint32
	for _, r := range symbols {
		bit, have := g.waves[r]
		if !have {
			return 0, &UnknownSymbol{r, g.Symbols}
		}
		w |= bit
	}
	return w, nil
}

// Fill sets every cell to value without recording changes.  Used by
// hosts to establish the initial state before a run.
func (g *Grid) Fill(value byte) {
	for i := range g.State {
		g.State[i] = value
	}
}

// Clear zeroes the grid and the change log.  Reset-time only.
func (g *Grid) Clear() {
	for i := range g.State {
		g.State[i] = 0
	}
	g.changed = g.changed[:0]
}

// Changed returns the coordinates touched since ClearChanged.  The
// returned slice aliases the log; callers must not retain it across
// steps.
func (g *Grid) Changed() []Coord {
	return g.changed
}

// ClearChanged empties the change log.
func (g *Grid) ClearChanged() {
	g.changed = g.changed[:0]
}

// Count returns how many cells currently hold value.
func (g *Grid) Count(value byte) int {
	n := 0
	for _, v := range g.State {
		if v == value {
			n++
		}
	}
	return n
}

// Render returns the grid as a human-readable string: one line per
// row, a blank line between Z layers.  Handy in tests and in the CLI.
func (g *Grid) Render() string {
	runes := []rune(g.Symbols)
	out := make([]byte, 0, (g.MX+1)*g.MY*g.MZ)
	for z := 0; z < g.MZ; z++ {
		if z > 0 {
			out = append(out, '\n')
		}
		for y := 0; y < g.MY; y++ {
			for x := 0; x < g.MX; x++ {
				v := g.At(x, y, z)
				if int(v) < len(runes) {
					out = append(out, string(runes[v])...)
				} else {
					out = append(out, '?')
				}
			}
			out = append(out, '\n')
		}
	}
	return string(out)
}
