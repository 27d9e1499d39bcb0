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

// Package checkpoint snapshots interpreter runs and resumes them.
//
// A Snapshot is a versioned JSON document holding everything a run
// needs to continue bit-exactly: grid contents, step counter, random
// stream state, and the mutable state of every node in the tree.
// Store persists snapshots in a bbolt database.
package checkpoint

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/rulegrid/rulegrid/core"
	"github.com/rulegrid/rulegrid/grid"
)

// Version is the current snapshot format version.
const Version = 1

// Snapshot is a point-in-time capture of an interpreter run.
type Snapshot struct {
	ID      string    `json:"id"`
	Version int       `json:"version"`
	TakenAt time.Time `json:"takenAt"`

	Seed        uint64 `json:"seed"`
	RandomState uint64 `json:"randomState"`
	Counter     int    `json:"counter"`
	Running     bool   `json:"running"`

	MX      int    `json:"mx"`
	MY      int    `json:"my"`
	MZ      int    `json:"mz"`
	Symbols string `json:"symbols"`
	State   []byte `json:"state"`

	Root *core.NodeState `json:"root"`
}

// Take captures the interpreter's current state.  The snapshot gets
// a fresh ID.
func Take(ip *core.Interpreter) *Snapshot {
	g := ip.Ctx.Grid
	state := make([]byte, len(g.State))
	copy(state, g.State)
	return &Snapshot{
		ID:          uuid.NewString(),
		Version:     Version,
		TakenAt:     time.Now().UTC(),
		Seed:        ip.Seed(),
		RandomState: ip.Ctx.Random.State(),
		Counter:     ip.Ctx.Counter,
		Running:     ip.Running(),
		MX:          g.MX,
		MY:          g.MY,
		MZ:          g.MZ,
		Symbols:     g.Symbols,
		State:       state,
	}
}

// TakeTree captures the interpreter plus the mutable state of its
// execution tree.
func TakeTree(ip *core.Interpreter) *Snapshot {
	snap := Take(ip)
	snap.Root = ip.Root().Save()
	return snap
}

// shapeFits verifies a node-state tree lines up with an execution
// tree without mutating anything.  Branch cursors are range-checked
// here too, so that applying a fitting tree can't fail partway
// through.
func shapeFits(n core.Node, s *core.NodeState) bool {
	if s == nil || s.Kind != n.Kind() {
		return false
	}
	kids := n.Children()
	if len(kids) != len(s.Children) {
		return false
	}
	// A finished sequence parks its cursor one past the end.
	if s.Active < 0 || len(kids) < s.Active {
		return false
	}
	for i, k := range kids {
		if !shapeFits(k, s.Children[i]) {
			return false
		}
	}
	return true
}

// Restore resumes a run from a snapshot.  Everything is validated
// first; on error the interpreter is left untouched.
func Restore(ip *core.Interpreter, snap *Snapshot) error {
	if snap.Version != Version {
		return &BadSnapshot{ID: snap.ID, Problem: "unsupported version"}
	}
	g := ip.Ctx.Grid
	if snap.MX != g.MX || snap.MY != g.MY || snap.MZ != g.MZ {
		return &BadSnapshot{ID: snap.ID, Problem: "grid dimensions don't match"}
	}
	if snap.Symbols != g.Symbols {
		return &BadSnapshot{ID: snap.ID, Problem: "grid alphabet doesn't match"}
	}
	if len(snap.State) != len(g.State) {
		return &BadSnapshot{ID: snap.ID, Problem: "grid state has wrong length"}
	}
	for _, v := range snap.State {
		if int(v) >= g.C() {
			return &BadSnapshot{ID: snap.ID, Problem: "grid state holds a value outside the alphabet"}
		}
	}
	if snap.Root != nil {
		if !shapeFits(ip.Root(), snap.Root) {
			return &BadSnapshot{ID: snap.ID, Problem: "node state doesn't fit the execution tree"}
		}
		// Rehearse mid-run wave collapse replays against a copy of
		// the snapshot grid, so a bad record can't leave the live
		// state half-restored.
		scratch, err := grid.New(g.MX, g.MY, g.MZ, g.Symbols)
		if err != nil {
			return &BadSnapshot{ID: snap.ID, Problem: err.Error()}
		}
		copy(scratch.State, snap.State)
		if err := rehearseTree(ip.Root(), snap.Root, scratch); err != nil {
			return &BadSnapshot{ID: snap.ID, Problem: err.Error()}
		}
	}

	copy(g.State, snap.State)
	g.ClearChanged()
	ip.Ctx.Random.SetState(snap.RandomState)
	ip.Ctx.Counter = snap.Counter
	ip.Ctx.Steps = nil
	ip.SetRunning(snap.Running)

	if snap.Root != nil {
		if err := loadTree(ip, snap.Root); err != nil {
			return &BadSnapshot{ID: snap.ID, Problem: err.Error()}
		}
	} else {
		ip.Root().Reset()
	}
	return nil
}

// rehearseTree runs every fallible part of a tree restore against a
// scratch grid, touching neither the nodes nor the live grid.
func rehearseTree(n core.Node, s *core.NodeState, scratch *grid.Grid) error {
	if wc, is := n.(*core.WaveCollapseNode); is && s.Seeded && !s.Done {
		if err := wc.CheckCollapse(scratch, s.Moves); err != nil {
			return err
		}
	}
	for i, k := range n.Children() {
		if err := rehearseTree(k, s.Children[i], scratch); err != nil {
			return err
		}
	}
	return nil
}

// loadTree applies node state and re-derives what isn't serialized,
// like a convchain's writable-cell set or a mid-run collapse wave.
func loadTree(ip *core.Interpreter, root *core.NodeState) error {
	if err := ip.Root().Load(root); err != nil {
		return err
	}
	var walk func(n core.Node, s *core.NodeState) error
	walk = func(n core.Node, s *core.NodeState) error {
		if cc, is := n.(*core.ConvChainNode); is && s.Seeded {
			cc.RestoreSubstrate(ip.Ctx.Grid)
		}
		if wc, is := n.(*core.WaveCollapseNode); is && s.Seeded && !s.Done {
			if err := wc.RestoreCollapse(ip.Ctx.Grid); err != nil {
				return err
			}
		}
		for i, k := range n.Children() {
			if err := walk(k, s.Children[i]); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(ip.Root(), root)
}

// Encode renders a snapshot as JSON.
func Encode(snap *Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// Decode parses a snapshot, checking the format version.
func Decode(bs []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(bs, &snap); err != nil {
		return nil, &BadSnapshot{Problem: err.Error()}
	}
	if snap.Version != Version {
		return nil, &BadSnapshot{ID: snap.ID, Problem: "unsupported version"}
	}
	return &snap, nil
}
