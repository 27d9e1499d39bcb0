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
	"sort"
	"strings"
	"sync"

	"github.com/rulegrid/rulegrid/core"
)

// Registry collects StepInfo records from a running scene tree.  It
// keeps the most recent record per path and answers prefix queries:
// "what happened most recently anywhere under root.step_2?".
//
// A Registry is safe for concurrent use; a feed can read it while
// the tree runs.
type Registry struct {
	mu     sync.RWMutex
	seq    uint64
	latest map[string]sequenced
}

type sequenced struct {
	seq  uint64
	info core.StepInfo
}

func NewRegistry() *Registry {
	return &Registry{latest: map[string]sequenced{}}
}

// Record stores one StepInfo as the latest for its path.
func (r *Registry) Record(info core.StepInfo) {
	r.mu.Lock()
	r.seq++
	r.latest[info.Path] = sequenced{seq: r.seq, info: info}
	r.mu.Unlock()
}

// matches reports whether path falls under prefix in the dotted
// hierarchy.  An empty prefix matches everything.
func matches(prefix, path string) bool {
	return prefix == "" || path == prefix || strings.HasPrefix(path, prefix+".")
}

// Latest returns the most recent record at or under prefix.
func (r *Registry) Latest(prefix string) (core.StepInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best sequenced
	found := false
	for path, s := range r.latest {
		if matches(prefix, path) && (!found || best.seq < s.seq) {
			best = s
			found = true
		}
	}
	return best.info, found
}

// All returns the latest record of every path under prefix, ordered
// by recency (oldest first).
func (r *Registry) All(prefix string) []core.StepInfo {
	r.mu.RLock()
	var ss []sequenced
	for path, s := range r.latest {
		if matches(prefix, path) {
			ss = append(ss, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(ss, func(i, j int) bool { return ss[i].seq < ss[j].seq })
	infos := make([]core.StepInfo, len(ss))
	for i, s := range ss {
		infos[i] = s.info
	}
	return infos
}

// Paths returns every recorded path, sorted.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	paths := make([]string, 0, len(r.latest))
	for path := range r.latest {
		paths = append(paths, path)
	}
	r.mu.RUnlock()

	sort.Strings(paths)
	return paths
}
